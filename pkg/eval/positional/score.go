package eval

import "fmt"

// totalPhase is the number of empty squares of the opening position.
const totalPhase = 60

// Score packs an opening weight and an ending weight. The opening weight
// applies with all squares empty, the ending weight on a full board.
type Score int64

func (s Score) Open() int {
	return int(int32((s + 1<<31) >> 32))
}

func (s Score) End() int {
	return int(int32(s))
}

func S(open, end int) Score {
	return Score(open)<<32 + Score(end)
}

// Taper interpolates between the two weights by the number of empty squares.
func (s Score) Taper(nEmpty int) int {
	nEmpty = min(max(nEmpty, 0), totalPhase)
	return (s.Open()*nEmpty + s.End()*(totalPhase-nEmpty)) / totalPhase
}

func (s Score) String() string {
	return fmt.Sprintf("S(%d, %d)", s.Open(), s.End())
}
