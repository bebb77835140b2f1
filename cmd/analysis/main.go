package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/internal/server"
	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
)

var (
	flgAddr string
	flgEval string
	flgBook string
	flgHash int
)

func main() {
	flag.StringVar(&flgAddr, "addr", ":8080", "listen address")
	flag.StringVar(&flgEval, "eval", "", "specifies evaluation function")
	flag.StringVar(&flgBook, "book", "", "opening book file")
	flag.IntVar(&flgHash, "hash", 64, "cache size in MB")
	flag.Parse()

	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("analysis server failed")
	}
}

func run(logger zerolog.Logger) error {
	var reg = registry.New()
	var evaluator, err = reg.Evaluator(flgEval)
	if err != nil {
		return err
	}
	var options = engine.NewOptions()
	options.Hash = flgHash
	options.Logger = logger
	var eng = engine.NewEngine(options, evaluator, endgame.NewSolver())

	var srv *server.Server
	if flgBook != "" {
		bk, err := reg.Book(flgBook, book.DefaultBoni(), book.Options{Logger: logger})
		if err != nil {
			return err
		}
		eng.SetBook(bk)
		srv = server.New(eng, bk, logger)
	} else {
		srv = server.New(eng, nil, logger)
	}

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var httpServer = &http.Server{Addr: flgAddr, Handler: srv.Routes()}
	go func() {
		<-ctx.Done()
		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", flgAddr).Msg("listening")
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
