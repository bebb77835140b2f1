package eval

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// edges lists the masks of the four board edges.
var edges = [4]uint64{
	0x00000000000000FF,
	0xFF00000000000000,
	0x0101010101010101,
	0x8080808080808080,
}

// EvaluationService is a tapered evaluation of square weights, mobility,
// frontier discs and parity. The phase is the number of empty squares.
type EvaluationService struct {
	Weights
}

func NewEvaluationService() *EvaluationService {
	var es = &EvaluationService{}
	es.Weights.init()
	return es
}

func (e *EvaluationService) Evaluate(b Board, nMovesMover, nMovesOpponent int) int {
	var mover, opponent = b.Mover, b.Opponent()
	var s Score

	for x := mover; x != 0; x &= x - 1 {
		s += e.PST[FirstOne(x)]
	}
	for x := opponent; x != 0; x &= x - 1 {
		s -= e.PST[FirstOne(x)]
	}

	s += e.Mobility * Score(nMovesMover-nMovesOpponent)
	s += e.Frontier * Score(PopCount(Neighbours(b.Empty)&mover)-PopCount(Neighbours(b.Empty)&opponent))
	s += e.Corner * Score(PopCount(mover&CornerMask)-PopCount(opponent&CornerMask))
	s += e.Discs * Score(PopCount(mover)-PopCount(opponent))
	s += e.StableRow * Score(fullEdges(mover)-fullEdges(opponent))

	var nEmpty = b.NEmpty()
	if nEmpty&1 != 0 {
		s += e.Parity
	}
	return s.Taper(nEmpty)
}

// fullEdges counts edges completely owned by discs.
func fullEdges(discs uint64) int {
	var n = 0
	for _, edge := range edges {
		if discs&edge == edge {
			n++
		}
	}
	return n
}
