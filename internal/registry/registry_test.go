package registry

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
)

type constEvaluator int

func (c constEvaluator) Evaluate(b Board, nMovesMover, nMovesOpponent int) int {
	return int(c)
}

func TestEvaluators(t *testing.T) {
	var r = New()
	if keys := r.Keys(); !reflect.DeepEqual(keys, []string{"material", "positional"}) {
		t.Error(keys)
	}
	for _, key := range []string{"", "material", "positional"} {
		var e, err = r.Evaluator(key)
		if err != nil || e == nil {
			t.Error(key, err)
		}
	}
	if _, err := r.Evaluator("nnue"); !errors.Is(err, ErrUnknownEvaluator) {
		t.Error(err)
	}

	r.Register("const", func() engine.Evaluator { return constEvaluator(7) })
	var e, err = r.Evaluator("const")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Evaluate(InitialBoard(), 4, 4); v != 7 {
		t.Error(v)
	}
}

func TestBookShared(t *testing.T) {
	var r = New()
	var path = filepath.Join(t.TempDir(), "book.bin")
	var boni = book.DefaultBoni()

	var a, err = r.Book(path, boni, book.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 0 {
		t.Error(a.Len())
	}
	b, err := r.Book(path, boni, book.Options{})
	if err != nil || a != b {
		t.Error("same key must share the book", err)
	}

	boni.Draw += 50
	c, err := r.Book(path, boni, book.Options{})
	if err != nil || c == a {
		t.Error("different boni must not share the book", err)
	}
}
