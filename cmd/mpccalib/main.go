package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"

	"github.com/ChizhovVadim/CounterReversi/internal/calibrate"
	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
)

type Config struct {
	Output      string
	Eval        string
	Samples     int
	MinEmpties  int
	MaxEmpties  int
	MaxHeight   int
	Hash        int
	Concurrency int
}

var config Config

func main() {
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("mpccalib failed")
	}
}

func run(logger zerolog.Logger) error {
	flag.StringVar(&config.Output, "o", "mpc.json", "output table")
	flag.StringVar(&config.Eval, "eval", "", "specifies evaluation function")
	flag.IntVar(&config.Samples, "samples", 2000, "number of random positions")
	flag.IntVar(&config.MinEmpties, "minempties", 14, "fewest empties of a sample")
	flag.IntVar(&config.MaxEmpties, "maxempties", 54, "most empties of a sample")
	flag.IntVar(&config.MaxHeight, "maxheight", 10, "greatest calibrated height")
	flag.IntVar(&config.Hash, "hash", 16, "cache size of each worker in MB")
	flag.IntVar(&config.Concurrency, "concurrency", runtime.NumCPU(), "number of search workers")
	flag.Parse()

	logger.Info().Interface("config", config).Msg("mpccalib")

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var reg = registry.New()
	var table, err = calibrate.Run(ctx, calibrate.Config{
		Samples:     config.Samples,
		MinEmpties:  config.MinEmpties,
		MaxEmpties:  config.MaxEmpties,
		MaxHeight:   config.MaxHeight,
		Concurrency: config.Concurrency,
		Logger:      logger,
		NewSearcher: func() (calibrate.Searcher, error) {
			var evaluator, err = reg.Evaluator(config.Eval)
			if err != nil {
				return nil, err
			}
			var options = engine.NewOptions()
			options.Hash = config.Hash
			options.UseBook = false
			options.MPC = nil
			return engine.NewEngine(options, evaluator, endgame.NewSolver()), nil
		},
	})
	if err != nil {
		return err
	}

	f, err := os.Create(config.Output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := table.Save(f); err != nil {
		return err
	}
	logger.Info().Str("path", config.Output).Msg("table saved")
	return f.Close()
}
