package arena

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Run plays the match described by config and returns the score of engine A.
func Run(ctx context.Context, config Config) (Result, error) {
	if config.NewEngineA == nil || config.NewEngineB == nil {
		return Result{}, errors.New("arena: engines not configured")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	var logger = config.Logger
	logger.Info().
		Int("openings", config.Openings).
		Int("concurrency", config.Concurrency).
		Msg("arena started")

	g, ctx := errgroup.WithContext(ctx)

	var gameInfos = make(chan gameInfo)
	var gameResults = make(chan gameResult)
	var result Result

	g.Go(func() error {
		defer close(gameInfos)
		return loadOpenings(ctx, config, gameInfos)
	})

	g.Go(func() error {
		var err error
		result, err = collectResults(ctx, config, gameResults)
		return err
	})

	var wg = &sync.WaitGroup{}

	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, config, gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	logger.Info().
		Int("wins", result.Wins).
		Int("losses", result.Losses).
		Int("draws", result.Draws).
		Float64("margin", result.MeanMargin).
		Msg("arena finished")
	return result, nil
}

// playGames owns one pair of engines for the lifetime of the worker.
func playGames(
	ctx context.Context,
	config Config,
	gameInfos <-chan gameInfo,
	gameResults chan<- gameResult,
) error {
	engineA, err := config.NewEngineA()
	if err != nil {
		return err
	}
	engineB, err := config.NewEngineB()
	if err != nil {
		return err
	}
	for gameInfo := range gameInfos {
		var res, err = playGame(ctx, engineA, engineB, config, gameInfo)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}
