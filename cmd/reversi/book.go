package main

import (
	"context"
	"os"

	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
)

// bookEngine attaches the book selected by the current boni and contempt
// before every search.
type bookEngine struct {
	*engine.Engine
	registry *registry.Registry
	path     string
	boni     book.Boni
	contempt int
	book     *book.Book
	logger   zerolog.Logger
}

func (e *bookEngine) attachBook() {
	if e.path == "" {
		return
	}
	var bk, err = e.registry.Book(e.path, e.boni, book.Options{Logger: e.logger})
	if err != nil {
		e.logger.Error().Err(err).Msg("book unavailable")
		return
	}
	bk.SetContempt(e.contempt)
	e.book = bk
	e.Engine.SetBook(bk)
}

func (e *bookEngine) Prepare() {
	e.attachBook()
	e.Engine.Prepare()
}

func (e *bookEngine) Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo {
	e.attachBook()
	return e.Engine.Search(ctx, params)
}

func (e *bookEngine) RandomMove(b Board, blackToMove bool) (Move, int, bool) {
	if e.book == nil {
		return MoveNone, 0, false
	}
	return e.book.RandomMove(b, blackToMove)
}

func loadMPCTable(path string) (*engine.MPCTable, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return engine.LoadMPCTable(f)
}
