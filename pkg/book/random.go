package book

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/samber/lo"
)

type candidate struct {
	move  Move
	value int
	sub   subnode
}

// candidates returns the book and terminal children of b valued for a mover
// of the given color. Draw values are lowered by the contempt.
func (bk *Book) candidates(b Board, value func(sn *subnode) int) []candidate {
	var subs = bk.subnodes(b)
	var result = make([]candidate, 0, len(subs))
	for _, sn := range subs {
		if sn.entry == nil && !sn.terminal {
			continue
		}
		var v = value(&sn)
		if sn.solved && sn.heuristic == 0 {
			v -= bk.contempt
		}
		result = append(result, candidate{move: sn.move, value: v, sub: sn})
	}
	return result
}

// guardSolved drops candidates that contradict a solved result of the node.
// From a loss no deviation that does not lose is offered. From a draw a
// winning deviation is suspicious and dropped.
func (bk *Book) guardSolved(b Board, e *Entry, cands []candidate) []candidate {
	if e == nil || !e.WLDSolved {
		return cands
	}
	switch {
	case e.HeuristicValue < 0:
		return lo.Filter(cands, func(c candidate, _ int) bool {
			return c.sub.heuristic < 0
		})
	case e.HeuristicValue == 0:
		return lo.Filter(cands, func(c candidate, _ int) bool {
			if c.sub.heuristic > 0 {
				bk.logger.Warn().
					Str("board", b.Text(true)).
					Str("move", c.move.String()).
					Msg("winning deviation from a solved draw")
				return false
			}
			return c.sub.heuristic == 0
		})
	}
	return cands
}

// choose selects among the best candidates. Candidates never played are
// skipped unless there is exactly one of them.
func (bk *Book) choose(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	var best = lo.MaxBy(cands, func(a, b candidate) bool {
		return a.value > b.value
	}).value
	var ties = lo.Filter(cands, func(c candidate, _ int) bool {
		return c.value == best
	})
	var played, unplayed = lo.FilterReject(ties, func(c candidate, _ int) bool {
		return c.sub.games() > 0
	})
	var pool = played
	if len(unplayed) == 1 {
		pool = append(pool, unplayed[0])
	}
	if len(pool) == 0 {
		pool = ties
	}
	bk.rngMu.Lock()
	var index = bk.rng.Intn(len(pool))
	bk.rngMu.Unlock()
	return pool[index], true
}

// RandomMove picks one of the best book moves of b for a mover of the given
// color. It fails when b is not a book branch.
func (bk *Book) RandomMove(b Board, blackToMove bool) (Move, int, bool) {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	var e = bk.find(b)
	if e == nil || e.Class() == ClassLeaf {
		return MoveNone, 0, false
	}
	var cands = bk.candidates(b, func(sn *subnode) int {
		if blackToMove {
			return sn.black
		}
		return sn.white
	})
	var c, ok = bk.choose(bk.guardSolved(b, e, cands))
	if !ok {
		return MoveNone, 0, false
	}
	return c.move, c.value, true
}

// Lookup returns a best book move of b by heuristic value. It implements
// engine.BookOracle.
func (bk *Book) Lookup(b Board) (Move, int, bool) {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	var e = bk.find(b)
	if e == nil || e.Class() == ClassLeaf {
		return MoveNone, 0, false
	}
	// a branch whose cutoff beats the book is not ready for play
	if e.Cutoff != NoCutoff && e.Cutoff > e.HeuristicValue {
		return MoveNone, 0, false
	}
	var cands = bk.candidates(b, func(sn *subnode) int {
		return sn.heuristic
	})
	var c, ok = bk.choose(bk.guardSolved(b, e, cands))
	if !ok {
		return MoveNone, 0, false
	}
	return c.move, c.sub.heuristic, true
}
