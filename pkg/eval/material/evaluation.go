package eval

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// EvaluationService counts discs and mobility. It is mainly useful for tests
// and as a weak arena opponent.
type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

func (e *EvaluationService) Evaluate(b Board, nMovesMover, nMovesOpponent int) int {
	var mover, opponent = b.CountDiscs()
	return StoneValue*(nMovesMover-nMovesOpponent) + StoneValue/4*(mover-opponent)
}
