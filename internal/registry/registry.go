// Package registry maps configuration keys to constructed evaluators and
// books. A Registry is built once at startup and passed to whoever needs it.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	material "github.com/ChizhovVadim/CounterReversi/pkg/eval/material"
	positional "github.com/ChizhovVadim/CounterReversi/pkg/eval/positional"
	"github.com/samber/lo"
)

var ErrUnknownEvaluator = errors.New("unknown evaluator")

// DefaultEvaluator is the key used when none is configured.
const DefaultEvaluator = "positional"

type EvaluatorFactory func() engine.Evaluator

type bookKey struct {
	path string
	boni book.Boni
}

type Registry struct {
	mu         sync.Mutex
	evaluators map[string]EvaluatorFactory
	books      map[bookKey]*book.Book
}

func New() *Registry {
	var r = &Registry{
		evaluators: make(map[string]EvaluatorFactory),
		books:      make(map[bookKey]*book.Book),
	}
	r.Register("material", func() engine.Evaluator { return material.NewEvaluationService() })
	r.Register("positional", func() engine.Evaluator { return positional.NewEvaluationService() })
	return r
}

// Register adds or replaces the factory for key.
func (r *Registry) Register(key string, f EvaluatorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[key] = f
}

// Evaluator builds a fresh evaluator. Every engine gets its own instance.
func (r *Registry) Evaluator(key string) (engine.Evaluator, error) {
	if key == "" {
		key = DefaultEvaluator
	}
	r.mu.Lock()
	var f, ok = r.evaluators[key]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEvaluator, key)
	}
	return f(), nil
}

func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys = lo.Keys(r.evaluators)
	sort.Strings(keys)
	return keys
}

// Book returns the book stored at path with the given boni, loading it on
// first use. A missing file yields an empty book that will be created on save.
// Books with the same path and boni are shared.
func (r *Registry) Book(path string, boni book.Boni, opts book.Options) (*book.Book, error) {
	var key = bookKey{path: path, boni: boni}
	r.mu.Lock()
	defer r.mu.Unlock()
	if bk, ok := r.books[key]; ok {
		return bk, nil
	}
	var bk, err = book.Load(path, boni, opts)
	if errors.Is(err, fs.ErrNotExist) {
		bk, err = book.New(boni, opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: book %v: %w", path, err)
	}
	r.books[key] = bk
	return bk, nil
}
