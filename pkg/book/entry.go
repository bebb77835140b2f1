package book

import (
	"fmt"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
)

// NoCutoff marks a branch whose children are all in the book.
const NoCutoff = -engine.ValueInfinity

// pendingCutoff marks a branch whose best non-book child is unknown.
const pendingCutoff = engine.ValueInfinity

// Boni bias book values of solved positions: a win for black is worth
// Black more, a win for white White more, and a draw is worth Draw to black.
type Boni struct {
	Black int
	White int
	Draw  int
}

func DefaultBoni() Boni {
	return Boni{}
}

// values returns the value of a node for a black mover and for a white mover.
func (bn Boni) values(value int, solved bool) (black, white int) {
	if !solved {
		return value, value
	}
	switch {
	case value > 0:
		return value + bn.Black, value + bn.White
	case value < 0:
		return value - bn.White, value - bn.Black
	default:
		return bn.Draw, -bn.Draw
	}
}

type Class int

const (
	ClassLeaf Class = iota
	ClassBranch
	ClassSolved
)

func (c Class) String() string {
	switch c {
	case ClassLeaf:
		return "leaf"
	case ClassBranch:
		return "branch"
	case ClassSolved:
		return "solved"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Entry is the book data of one position. All values are from the point of
// view of the player to move.
type Entry struct {
	Height         engine.HeightInfo
	HeuristicValue int
	BlackValue     int
	WhiteValue     int
	WLDSolved      bool
	IsRoot         bool
	Cutoff         int
	GameCounts     [2]uint32
}

func (e *Entry) Class() Class {
	if e.WLDSolved {
		return ClassSolved
	}
	if e.IsRoot {
		return ClassBranch
	}
	return ClassLeaf
}

// MoreImportant orders entries solved > branch > leaf, then by height.
func (e *Entry) MoreImportant(other *Entry) bool {
	if e.Class() != other.Class() {
		return e.Class() > other.Class()
	}
	return other.Height.Less(e.Height)
}

// Value returns the book value for a mover of the given color.
func (e *Entry) Value(blackToMove bool) int {
	if blackToMove {
		return e.BlackValue
	}
	return e.WhiteValue
}

func (e *Entry) Games() uint32 {
	return e.GameCounts[0] + e.GameCounts[1]
}

func (e *Entry) String() string {
	return fmt.Sprintf("%v h=%v v=%d b=%d w=%d cutoff=%d games=%v",
		e.Class(), e.Height, e.HeuristicValue, e.BlackValue, e.WhiteValue, e.Cutoff, e.GameCounts)
}

// subnode is a book child seen from the parent.
type subnode struct {
	move      Move
	board     Board
	entry     *Entry
	terminal  bool
	heuristic int
	black     int
	white     int
	solved    bool
}

// childValues converts the values of child node c into the parent's point
// of view. c is reached with a move, or with a move and a pass.
func childValues(heuristic, black, white int, passed bool) (int, int, int) {
	if passed {
		return heuristic, black, white
	}
	return -heuristic, -white, -black
}

func (s *subnode) games() uint32 {
	if s.entry == nil {
		return 0
	}
	return s.entry.Games()
}
