package engine

import (
	"fmt"
	"sync/atomic"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

const (
	stackSize     = 128
	maxPly        = stackSize - 1
	ValueInfinity = 10000
	maxMoves      = 64
)

// clampValue keeps heuristic values strictly inside the search infinities.
func clampValue(v int) int {
	return Clamp(v, -ValueInfinity+1, ValueInfinity-1)
}

// HeightInfo describes how deep a value was searched.
type HeightInfo struct {
	Height int
	Prune  int
	WLD    bool
}

// Covers reports whether a value searched at hi can answer a request for req.
func (hi HeightInfo) Covers(req HeightInfo) bool {
	return hi.Height > req.Height ||
		hi.Height == req.Height && hi.Prune <= req.Prune
}

// Less orders by height, then lower prune, then exact before WLD.
func (hi HeightInfo) Less(other HeightInfo) bool {
	if hi.Height != other.Height {
		return hi.Height < other.Height
	}
	if hi.Prune != other.Prune {
		return hi.Prune > other.Prune
	}
	return hi.WLD && !other.WLD
}

// Solves reports whether a search at hi reaches the end of the game.
func (hi HeightInfo) Solves(nEmpty int) bool {
	return hi.Height >= nEmpty && hi.Prune == 0
}

func (hi HeightInfo) Child() HeightInfo {
	return HeightInfo{Height: hi.Height - 1, Prune: hi.Prune, WLD: hi.WLD}
}

func (hi HeightInfo) String() string {
	var s = fmt.Sprintf("%d", hi.Height)
	if hi.Prune != 0 {
		s += fmt.Sprintf("@%d", hi.Prune)
	}
	if hi.WLD {
		s += "w"
	}
	return s
}

// AbortFlag is level triggered: once set it stays set until Clear.
type AbortFlag struct {
	flag atomic.Bool
}

func (a *AbortFlag) Set() {
	a.flag.Store(true)
}

func (a *AbortFlag) Clear() {
	a.flag.Store(false)
}

func (a *AbortFlag) IsSet() bool {
	return a.flag.Load()
}

type orderedMove struct {
	move  Move
	board Board
	key   int
}

func sortMoves(moves []orderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].key < t.key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func findMoveIndex(ml []orderedMove, move Move) int {
	for i := range ml {
		if ml[i].move == move {
			return i
		}
	}
	return -1
}

func moveToBegin(ml []orderedMove, index int) {
	if index <= 0 {
		return
	}
	var item = ml[index]
	for i := index; i > 0; i-- {
		ml[i] = ml[i-1]
	}
	ml[0] = item
}
