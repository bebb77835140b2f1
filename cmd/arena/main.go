package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/ChizhovVadim/CounterReversi/internal/arena"
	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
)

type Config struct {
	Openings     int
	Concurrency  int
	OpeningPlies int
	Height       int
	MoveTime     time.Duration
	EvalA        string
	EvalB        string
	Hash         int
	Book         string
	Record       bool
}

var config Config

func main() {
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	var err = run(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("arena failed")
	}
}

func run(logger zerolog.Logger) error {
	flag.IntVar(&config.Openings, "openings", 50, "number of openings, each played with both colors")
	flag.IntVar(&config.Concurrency, "concurrency", 4, "number of games played in parallel")
	flag.IntVar(&config.OpeningPlies, "plies", 8, "random opening plies")
	flag.IntVar(&config.Height, "height", 0, "fixed search height, 0 for move time")
	flag.DurationVar(&config.MoveTime, "movetime", time.Second, "time per move")
	flag.StringVar(&config.EvalA, "evala", "positional", "evaluation of engine A")
	flag.StringVar(&config.EvalB, "evalb", "material", "evaluation of engine B")
	flag.IntVar(&config.Hash, "hash", 16, "cache size of each engine in MB")
	flag.StringVar(&config.Book, "book", "", "opening book file")
	flag.BoolVar(&config.Record, "record", false, "count the games in the book and save it")
	flag.Parse()

	logger.Info().Interface("config", config).Msg("arena")

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var reg = registry.New()
	var arenaConfig = arena.Config{
		Openings:     config.Openings,
		Concurrency:  config.Concurrency,
		OpeningPlies: config.OpeningPlies,
		Policy:       engine.Infinite{},
		MoveTime:     config.MoveTime,
		RecordGames:  config.Record,
		NewEngineA:   newEngine(reg, config.EvalA),
		NewEngineB:   newEngine(reg, config.EvalB),
		Logger:       logger,
	}
	if config.Height > 0 {
		arenaConfig.Policy = engine.FixedHeight{Height: config.Height}
		arenaConfig.MoveTime = 0
	}
	var bk *book.Book
	if config.Book != "" {
		var err error
		bk, err = reg.Book(config.Book, book.DefaultBoni(), book.Options{Logger: logger})
		if err != nil {
			return err
		}
		arenaConfig.Book = bk
	}

	var result, err = arena.Run(ctx, arenaConfig)
	if err != nil {
		return err
	}
	logger.Info().
		Int("games", result.Games).
		Int("wins", result.Wins).
		Int("losses", result.Losses).
		Int("draws", result.Draws).
		Float64("score", result.Score).
		Float64("elo", result.Elo).
		Float64("los", result.LOS).
		Float64("margin", result.MeanMargin).
		Float64("marginSd", result.StdMargin).
		Msg("match result")

	if config.Record && bk != nil {
		return bk.Save(config.Book)
	}
	return nil
}

// newEngine builds engines without a book so that only openings come from it.
func newEngine(reg *registry.Registry, evalKey string) func() (arena.IEngine, error) {
	return func() (arena.IEngine, error) {
		var evaluator, err = reg.Evaluator(evalKey)
		if err != nil {
			return nil, err
		}
		var options = engine.NewOptions()
		options.Hash = config.Hash
		options.UseBook = false
		return engine.NewEngine(options, evaluator, endgame.NewSolver()), nil
	}
}
