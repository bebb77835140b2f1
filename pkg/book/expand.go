package book

import (
	"fmt"
	"slices"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
)

// Frontier returns up to n leaves worth expanding: the most played first,
// then the ones closest to the start of the game. Leaves where the mover
// has no move are skipped.
func (bk *Book) Frontier(n int) []Board {
	bk.mu.RLock()
	defer bk.mu.RUnlock()

	type leaf struct {
		board Board
		games uint32
	}
	var leaves []leaf
	for nEmpty := len(bk.entries) - 1; nEmpty >= 0; nEmpty-- {
		for b, e := range bk.entries[nEmpty] {
			if e.Class() == ClassLeaf && b.HasMoves() {
				leaves = append(leaves, leaf{board: b, games: e.Games()})
			}
		}
	}
	slices.SortFunc(leaves, func(a, b leaf) int {
		if a.games != b.games {
			if a.games > b.games {
				return -1
			}
			return 1
		}
		if a.board.NEmpty() != b.board.NEmpty() {
			return b.board.NEmpty() - a.board.NEmpty()
		}
		return compareBoards(a.board, b.board)
	})
	var result = make([]Board, 0, Min(n, len(leaves)))
	for i := 0; i < len(leaves) && i < n; i++ {
		result = append(result, leaves[i].board)
	}
	return result
}

// Expand turns b into a branch after a search of height hi found move with
// value, from the point of view of the player to move in b. The child is
// stored as a leaf. Correct searches the remaining children.
func (bk *Book) Expand(b Board, hi engine.HeightInfo, move Move, value int) error {
	if !move.IsSquare() || b.Flips(int(move)) == 0 {
		return fmt.Errorf("%w: expand with %v", ErrIllegalMove, move)
	}
	bk.mu.Lock()
	defer bk.mu.Unlock()

	var child = b.MakeMove(int(move))
	var next, _, pass = child.CalcMovesAndPass()
	switch pass {
	case PassNone:
		bk.storeLeaf(next, childHeight(hi), -value)
	case PassOnce:
		bk.storeLeaf(next, childHeight(hi), value)
	}

	var e, _ = bk.findOrCreate(b)
	if e.Class() != ClassLeaf {
		return nil
	}
	e.IsRoot = true
	if e.Height.Less(hi) {
		e.Height = hi
	}
	e.Cutoff = pendingCutoff
	return nil
}
