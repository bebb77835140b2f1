package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Book        string
	Eval        string
	Leaves      int
	Height      int
	Prune       int
	Hash        int
	Concurrency int
	Mirror      time.Duration
}

var config Config

func main() {
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("bookgen failed")
	}
}

func run(logger zerolog.Logger) error {
	flag.StringVar(&config.Book, "book", "book.zst", "book file, created when missing")
	flag.StringVar(&config.Eval, "eval", "", "specifies evaluation function")
	flag.IntVar(&config.Leaves, "leaves", 100, "number of leaves to expand")
	flag.IntVar(&config.Height, "height", 12, "search height of an expansion")
	flag.IntVar(&config.Prune, "prune", 2, "MPC prune level of an expansion")
	flag.IntVar(&config.Hash, "hash", 64, "cache size of each worker in MB")
	flag.IntVar(&config.Concurrency, "concurrency", runtime.NumCPU(), "number of search workers")
	flag.DurationVar(&config.Mirror, "mirror", 5*time.Minute, "interval of intermediate saves")
	flag.Parse()

	logger.Info().Interface("config", config).Msg("bookgen")

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var reg = registry.New()
	var newEngine = func() (*engine.Engine, error) {
		var evaluator, err = reg.Evaluator(config.Eval)
		if err != nil {
			return nil, err
		}
		var options = engine.NewOptions()
		options.Hash = config.Hash
		options.UseBook = false
		options.Logger = logger
		return engine.NewEngine(options, evaluator, endgame.NewSolver()), nil
	}

	bk, err := reg.Book(config.Book, book.DefaultBoni(), book.Options{Logger: logger})
	if err != nil {
		return err
	}
	if bk.Len() == 0 {
		bk.StoreLeaf(InitialBoard(), engine.HeightInfo{Height: 1}, 0)
	}

	var hi = engine.HeightInfo{Height: config.Height, Prune: config.Prune}
	if err := expand(ctx, bk, hi, newEngine, logger); err != nil {
		return err
	}

	corrector, err := newEngine()
	if err != nil {
		return err
	}
	bk.SetSearcher(corrector)
	if _, err := bk.Correct(ctx); err != nil {
		return err
	}
	return bk.Save(config.Book)
}

type expansion struct {
	board Board
	move  Move
	value int
}

// expand searches the frontier in parallel. Each worker owns an engine.
// Only the writer changes the book, which is mirrored to disk meanwhile.
func expand(
	ctx context.Context,
	bk *book.Book,
	hi engine.HeightInfo,
	newEngine func() (*engine.Engine, error),
	logger zerolog.Logger,
) error {
	var frontier = bk.Frontier(config.Leaves)
	logger.Info().Int("leaves", len(frontier)).Msg("expanding")

	g, ctx := errgroup.WithContext(ctx)

	var boards = make(chan Board)
	var results = make(chan expansion)

	g.Go(func() error {
		defer close(boards)
		for _, b := range frontier {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case boards <- b:
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			var eng, err = newEngine()
			if err != nil {
				return err
			}
			for b := range boards {
				var move, value, ok = eng.SearchFixed(ctx, b, hi, 0)
				if !ok {
					return ctx.Err()
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case results <- expansion{board: b, move: move, value: value}:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	var mirrorCtx, stopMirror = context.WithCancel(context.Background())
	var mirrorDone = make(chan error, 1)
	go func() {
		mirrorDone <- bk.Mirror(mirrorCtx, config.Book, config.Mirror)
	}()

	g.Go(func() error {
		var n = 0
		for r := range results {
			if err := bk.Expand(r.board, hi, r.move, r.value); err != nil {
				logger.Warn().Err(err).Str("board", r.board.Text(true)).Msg("expand")
				continue
			}
			n++
			if n%10 == 0 {
				logger.Info().Int("expanded", n).Int("entries", bk.Len()).Msg("progress")
			}
		}
		return nil
	})

	var err = g.Wait()
	stopMirror()
	if mirrorErr := <-mirrorDone; err == nil {
		err = mirrorErr
	}
	return err
}
