package engine

import (
	"fmt"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// cutoffPenalty pushes down moves whose child is already known to fail low.
const cutoffPenalty = 20 * StoneValue

type searchStack struct {
	moves [maxMoves]orderedMove
}

// SearchContext holds the state of one search.
// It is owned by a single goroutine.
type SearchContext struct {
	cache     *TransTable
	evaluator Evaluator
	solver    Solver
	options   *Options
	abort     *AbortFlag
	nodes     int64
	aborted   bool
	stack     *[stackSize]searchStack
}

func (t *SearchContext) Nodes() int64 {
	return t.nodes
}

func (t *SearchContext) incNodes() {
	t.nodes++
	if t.nodes&t.options.pollMask() == 0 && t.abort.IsSet() {
		t.aborted = true
	}
}

func (t *SearchContext) evaluate(b Board, moves uint64) int {
	return clampValue(t.evaluator.Evaluate(b, PopCount(moves), PopCount(b.OpponentMoves())))
}

// search returns a fail-soft value of b from the mover's point of view.
// After an abort the returned value is meaningless.
func (t *SearchContext) search(b Board, hi HeightInfo, alpha, beta, ply int) int {
	if alpha >= beta {
		panic(fmt.Errorf("bad search window %d >= %d", alpha, beta))
	}
	t.incNodes()
	if t.aborted {
		return -ValueInfinity
	}

	var nEmpty = b.NEmpty()
	if nEmpty <= t.options.SolverThreshold {
		return t.solver.Solve(b, alpha, beta)
	}

	var moves = b.LegalMoves()
	if moves == 0 {
		var passed = b.Pass()
		if !passed.HasMoves() {
			return b.TerminalValue()
		}
		return -t.search(passed, hi, -beta, -alpha, ply+1)
	}

	if hi.Height <= 0 || ply >= maxPly {
		return t.evaluate(b, moves)
	}

	var entry, cacheValue, cut, newAlpha, newBeta = t.cache.Probe(b, hi, alpha, beta)
	if cut {
		return cacheValue
	}
	alpha, beta = newAlpha, newBeta
	var hint = MoveNone
	if entry != nil {
		hint = entry.BestMove
	}

	if hi.Prune > 0 && hi.Height >= MPCMinHeight {
		if value, ok := t.probCut(b, hi, nEmpty, alpha, beta, ply); ok {
			return value
		}
		if t.aborted {
			return -ValueInfinity
		}
	}

	var ml = t.orderMoves(b, moves, hint, hi, alpha, ply)
	var oldAlpha = alpha
	var best = -ValueInfinity
	var bestMove = MoveNone
	var childHeight = hi.Child()

	for i := range ml {
		var child = ml[i].board
		var score int
		if i == 0 {
			score = -t.search(child, childHeight, -beta, -alpha, ply+1)
		} else {
			score = -t.search(child, childHeight, -(alpha + 1), -alpha, ply+1)
			if score > alpha && score < beta && !t.aborted {
				score = -t.search(child, childHeight, -beta, -alpha, ply+1)
			}
		}
		if t.aborted {
			return -ValueInfinity
		}
		if score > best {
			best = score
			bestMove = ml[i].move
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}

	return t.cache.Store(b, hi, nEmpty, bestMove, oldAlpha, beta, best)
}

// probCut tries to prove a cutoff from a shallow null window search.
func (t *SearchContext) probCut(b Board, hi HeightInfo, nEmpty, alpha, beta, ply int) (int, bool) {
	var mpc = t.options.MPC
	var stat, ok = mpc.Stat(hi.Height, nEmpty)
	if !ok {
		return 0, false
	}
	var low, high = stat.Bounds(alpha, beta, mpc.ConfidenceFor(hi.Prune))
	var shallow = HeightInfo{Height: stat.ShallowHeight, Prune: hi.Prune}

	if beta < ValueInfinity && high > -ValueInfinity && high < ValueInfinity {
		var v = t.search(b, shallow, high-1, high, ply)
		if t.aborted {
			return 0, false
		}
		if v >= high {
			return t.cache.Store(b, hi, nEmpty, MoveNone, alpha, beta, beta), true
		}
	}
	if alpha > -ValueInfinity && low > -ValueInfinity && low < ValueInfinity {
		var v = t.search(b, shallow, low, low+1, ply)
		if t.aborted {
			return 0, false
		}
		if v <= low {
			return t.cache.Store(b, hi, nEmpty, MoveNone, alpha, beta, alpha), true
		}
	}
	return 0, false
}

// searchRoot searches the given root moves and returns the best one.
// The cache is updated only when all legal moves were searched.
func (t *SearchContext) searchRoot(b Board, moves uint64, hi HeightInfo, alpha, beta int, first Move) (Move, int) {
	t.incNodes()
	if t.abort.IsSet() {
		t.aborted = true
	}
	var nEmpty = b.NEmpty()
	var ml = t.orderMoves(b, moves, first, hi, alpha, 0)
	var oldAlpha = alpha
	var best = -ValueInfinity
	var bestMove = ml[0].move
	var childHeight = hi.Child()

	for i := range ml {
		var child = ml[i].board
		var score int
		if i == 0 {
			score = -t.search(child, childHeight, -beta, -alpha, 1)
		} else {
			score = -t.search(child, childHeight, -(alpha + 1), -alpha, 1)
			if score > alpha && score < beta && !t.aborted {
				score = -t.search(child, childHeight, -beta, -alpha, 1)
			}
		}
		if t.aborted {
			return bestMove, -ValueInfinity
		}
		if score > best {
			best = score
			bestMove = ml[i].move
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}

	if moves == b.LegalMoves() {
		t.cache.Store(b, hi, nEmpty, bestMove, oldAlpha, beta, best)
	}
	return bestMove, best
}
