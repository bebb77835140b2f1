package engine

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// orderMoves fills the ply buffer with the children of b in search order.
// A usable cache hint keeps the static move set order. Otherwise the
// children are sorted by a one ply evaluation at large heights and by
// opponent mobility at medium heights.
func (t *SearchContext) orderMoves(b Board, moves uint64, hint Move, hi HeightInfo, alpha, ply int) []orderedMove {
	var ml = t.stack[ply].moves[:0]
	var ms = NewMoveSet(moves, hint)
	for m, ok := ms.Next(); ok; m, ok = ms.Next() {
		ml = append(ml, orderedMove{move: m, board: b.MakeMove(int(m))})
	}
	if hint.IsSquare() && moves&SquareMask(int(hint)) != 0 {
		return ml
	}

	switch {
	case hi.Height >= t.options.SortHeight:
		for i := range ml {
			var child = ml[i].board
			var nMover, nOpponent = child.MobilityCounts()
			var key = -clampValue(t.evaluator.Evaluate(child, nMover, nOpponent))
			if entry := t.cache.Find(child); entry != nil && int(entry.Lower) >= -alpha {
				key -= cutoffPenalty
			}
			ml[i].key = key
		}
		sortMoves(ml)
	case hi.Height >= t.options.MobilitySortHeight:
		for i := range ml {
			ml[i].key = -PopCount(ml[i].board.LegalMoves())
		}
		sortMoves(ml)
	}
	return ml
}
