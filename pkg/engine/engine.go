package engine

import (
	"context"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// Evaluator is the static evaluation, from the mover's point of view.
type Evaluator interface {
	Evaluate(b Board, nMovesMover, nMovesOpponent int) int
}

// Solver finds the exact value of b, fail-soft with respect to (alpha, beta).
type Solver interface {
	Solve(b Board, alpha, beta int) int
}

// BookOracle is consulted before searching the root.
type BookOracle interface {
	Lookup(b Board) (move Move, value int, ok bool)
}

type SearchParams struct {
	Board     Board
	Policy    RoundPolicy
	Remaining time.Duration
	Progress  func(SearchInfo)
}

type SearchInfo struct {
	Board    Board
	Move     Move
	Value    int
	Height   HeightInfo
	Nodes    int64
	Time     time.Duration
	FromBook bool
	PV       []Move
}

type Engine struct {
	Options    Options
	evaluator  Evaluator
	solver     Solver
	book       BookOracle
	transTable *TransTable
	sc         *SearchContext
	abort      AbortFlag
}

func NewEngine(options Options, evaluator Evaluator, solver Solver) *Engine {
	return &Engine{
		Options:   options,
		evaluator: evaluator,
		solver:    solver,
	}
}

func (e *Engine) SetBook(book BookOracle) {
	e.book = book
}

func (e *Engine) Prepare() {
	if e.transTable == nil ||
		e.transTable.Size() != e.Options.Hash ||
		e.transTable.solverThreshold != e.Options.SolverThreshold {
		e.transTable = NewTransTable(e.Options.Hash, e.Options.SolverThreshold)
	}
	if e.sc == nil {
		e.sc = &SearchContext{stack: new([stackSize]searchStack)}
	}
	*e.sc = SearchContext{
		cache:     e.transTable,
		evaluator: e.evaluator,
		solver:    e.solver,
		options:   &e.Options,
		abort:     &e.abort,
		stack:     e.sc.stack,
	}
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
}

func (e *Engine) TransTable() *TransTable {
	e.Prepare()
	return e.transTable
}

// Abort interrupts the running search. The search returns the last completed round.
func (e *Engine) Abort() {
	e.abort.Set()
}

func (e *Engine) watch(ctx context.Context) func() bool {
	e.abort.Clear()
	if ctx.Err() != nil {
		e.abort.Set()
	}
	return context.AfterFunc(ctx, e.abort.Set)
}

// principalVariation follows cache best moves after the root move.
func (e *Engine) principalVariation(b Board, move Move) []Move {
	var pv = []Move{move}
	var cur = b.MakeMove(int(move))
	for len(pv) < 24 {
		var next, moves, pass = cur.CalcMovesAndPass()
		if pass == PassGameOver {
			break
		}
		var entry = e.transTable.Find(next)
		if entry == nil || !entry.BestMove.IsSquare() || moves&SquareMask(int(entry.BestMove)) == 0 {
			break
		}
		if pass == PassOnce {
			pv = append(pv, MovePass)
		}
		pv = append(pv, entry.BestMove)
		cur = next.MakeMove(int(entry.BestMove))
	}
	return pv
}
