package eval

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// Weights of one quadrant, a1 to d4. The other quadrants are reflections.
var quadrantWeights = [16]Score{
	S(120, 40), S(-25, 10), S(10, 8), S(5, 6),
	S(-25, 10), S(-45, -5), S(-5, 2), S(-5, 2),
	S(10, 8), S(-5, 2), S(3, 2), S(2, 1),
	S(5, 6), S(-5, 2), S(2, 1), S(0, 0),
}

type Weights struct {
	PST       [64]Score
	Mobility  Score
	Frontier  Score
	Corner    Score
	Parity    Score
	Discs     Score
	StableRow Score
}

func (w *Weights) init() {
	for sq := 0; sq < 64; sq++ {
		var col, row = Column(sq), Row(sq)
		if col >= 4 {
			col = 7 - col
		}
		if row >= 4 {
			row = 7 - row
		}
		w.PST[sq] = quadrantWeights[row*4+col]
	}
	w.Mobility = S(25, 15)
	w.Frontier = S(-12, -4)
	w.Corner = S(30, 20)
	w.Parity = S(0, 40)
	w.Discs = S(-2, 12)
	w.StableRow = S(10, 10)
}
