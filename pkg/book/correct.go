package book

import (
	"context"
	"fmt"
	"slices"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/samber/lo"
)

// minCheckedEmpties is the smallest number of empties at which a solved node
// that disagrees with its children is reported instead of repaired.
const minCheckedEmpties = 10

type CorrectionStats struct {
	Nodes         int
	Searches      int
	Changed       int
	EndgameErrors int
}

// EndgameError reports a solved node whose children prove a different result.
type EndgameError struct {
	Board    Board
	Stored   int
	Computed int
}

func (e *EndgameError) Error() string {
	return fmt.Sprintf("endgame error at %d empties: stored %d, children %d",
		e.Board.NEmpty(), e.Stored, e.Computed)
}

type subnodeMax struct {
	found     bool
	all       bool
	allSolved bool
	heuristic int
	black     int
	white     int
	// bestSolved is true when a solved child has the best heuristic value.
	bestSolved bool
}

func maxSubnodeValues(subs []subnode) subnodeMax {
	var result = subnodeMax{
		all:       true,
		allSolved: true,
		heuristic: -engine.ValueInfinity,
		black:     -engine.ValueInfinity,
		white:     -engine.ValueInfinity,
	}
	for i := range subs {
		var sn = &subs[i]
		if sn.entry == nil && !sn.terminal {
			result.all = false
			result.allSolved = false
			continue
		}
		if !sn.solved {
			result.allSolved = false
		}
		if !result.found || sn.heuristic > result.heuristic ||
			sn.heuristic == result.heuristic && sn.solved {
			result.bestSolved = sn.solved
		}
		result.found = true
		result.heuristic = Max(result.heuristic, sn.heuristic)
		result.black = Max(result.black, sn.black)
		result.white = Max(result.white, sn.white)
	}
	return result
}

func searchFailed(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errSearchFailed
}

func nonBookMoves(subs []subnode) uint64 {
	var result uint64
	for _, sn := range subs {
		if sn.entry == nil && !sn.terminal {
			result |= SquareMask(int(sn.move))
		}
	}
	return result
}

func childHeight(hi engine.HeightInfo) engine.HeightInfo {
	var child = hi.Child()
	if child.Height < 0 {
		child.Height = 0
	}
	return child
}

// Correct restores the negamax relation between every branch and its
// children, from the fewest empties to the most. Children missing from the
// book are searched until the best of them cannot beat the book children.
// Passes repeat until nothing changes, so a second call changes nothing.
func (bk *Book) Correct(ctx context.Context) (CorrectionStats, error) {
	bk.mu.Lock()
	defer bk.mu.Unlock()

	var stats CorrectionStats
	for pass := 1; ; pass++ {
		var changed = stats.Changed
		if err := bk.correctPass(ctx, &stats); err != nil {
			return stats, err
		}
		if stats.Changed == changed {
			break
		}
		if pass >= maxCorrectionPasses {
			bk.logger.Warn().Int("passes", pass).Msg("book correction did not converge")
			break
		}
	}
	bk.logger.Info().
		Int("nodes", stats.Nodes).
		Int("searches", stats.Searches).
		Int("changed", stats.Changed).
		Int("endgameErrors", stats.EndgameErrors).
		Msg("book corrected")
	return stats, nil
}

const maxCorrectionPasses = 16

func (bk *Book) correctPass(ctx context.Context, stats *CorrectionStats) error {
	for nEmpty := range bk.entries {
		var m = bk.entries[nEmpty]
		var keys = lo.Keys(m)
		slices.SortFunc(keys, compareBoards)
		for _, b := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e = m[b]
			if e.Class() == ClassLeaf {
				continue
			}
			stats.Nodes++
			var changed, err = bk.correctNode(ctx, b, e, stats)
			if err != nil {
				return err
			}
			if changed {
				stats.Changed++
			}
		}
	}
	return nil
}

func compareBoards(a, b Board) int {
	if a.Less(b) {
		return -1
	}
	if b.Less(a) {
		return 1
	}
	return 0
}

func (bk *Book) correctNode(ctx context.Context, b Board, e *Entry, stats *CorrectionStats) (bool, error) {
	var before = *e
	if e.WLDSolved {
		bk.checkSolved(b, e, stats)
		return *e != before, nil
	}

	var best subnodeMax
	for {
		var subs, err = bk.adequateSubnodes(ctx, b, e.Height, stats)
		if err != nil {
			return false, err
		}
		best = maxSubnodeValues(subs)
		if best.all {
			e.Cutoff = NoCutoff
			break
		}
		if best.found && e.Cutoff <= best.heuristic {
			break
		}
		if bk.searcher == nil {
			return false, ErrNoSearcher
		}
		var move, value, ok = bk.searcher.SearchFixed(ctx, b, e.Height, nonBookMoves(subs))
		stats.Searches++
		if !ok {
			return false, searchFailed(ctx)
		}
		if best.found && value <= best.heuristic {
			e.Cutoff = value
			break
		}
		var child = b.MakeMove(int(move))
		var next, _, pass = child.CalcMovesAndPass()
		if pass == PassOnce {
			bk.storeLeaf(next, childHeight(e.Height), value)
		} else {
			bk.storeLeaf(next, childHeight(e.Height), -value)
		}
		e.Cutoff = pendingCutoff
	}

	e.HeuristicValue = best.heuristic
	e.BlackValue = best.black
	e.WhiteValue = best.white
	if best.all && best.allSolved || best.bestSolved && best.heuristic > 0 {
		e.WLDSolved = true
	}
	return *e != before, nil
}

// adequateSubnodes deepens leaf children searched below the height that the
// parent requires and returns the children.
func (bk *Book) adequateSubnodes(ctx context.Context, b Board, hi engine.HeightInfo, stats *CorrectionStats) ([]subnode, error) {
	var required = childHeight(hi)
	var subs = bk.subnodes(b)
	var increased = false
	for _, sn := range subs {
		if sn.entry == nil || sn.entry.Class() != ClassLeaf || !sn.entry.Height.Less(required) {
			continue
		}
		if err := bk.increaseHeight(ctx, sn.board, required, stats); err != nil {
			return nil, err
		}
		increased = true
	}
	if increased {
		subs = bk.subnodes(b)
	}
	return subs, nil
}

func (bk *Book) increaseHeight(ctx context.Context, b Board, hi engine.HeightInfo, stats *CorrectionStats) error {
	if bk.searcher == nil {
		return ErrNoSearcher
	}
	var _, value, ok = bk.searcher.SearchFixed(ctx, b, hi, 0)
	stats.Searches++
	if !ok {
		return searchFailed(ctx)
	}
	bk.storeLeaf(b, hi, value)
	return nil
}

// checkSolved compares a solved node with its children. A disagreement in
// sign far from the end is reported and left alone.
func (bk *Book) checkSolved(b Board, e *Entry, stats *CorrectionStats) {
	var best = maxSubnodeValues(bk.subnodes(b))
	var provenWin = best.bestSolved && best.heuristic > 0
	if !best.found || !(best.all && best.allSolved) && !provenWin {
		return
	}
	if Sign(best.heuristic) != Sign(e.HeuristicValue) {
		if b.NEmpty() >= minCheckedEmpties {
			stats.EndgameErrors++
			bk.logger.Error().
				Err(&EndgameError{Board: b, Stored: e.HeuristicValue, Computed: best.heuristic}).
				Str("board", b.Text(true)).
				Msg("RED ALERT")
			return
		}
	} else if !(best.all && best.allSolved) {
		return
	}
	e.HeuristicValue = best.heuristic
	e.BlackValue = best.black
	e.WhiteValue = best.white
}
