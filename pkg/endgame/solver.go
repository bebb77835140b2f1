package endgame

import (
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// sentinel is the list head. Square indices 0..63 are the list nodes.
const sentinel = 64

// emptyList is a doubly linked list of empty squares stored in arrays
// indexed by square, so that a square can be unlinked and relinked in O(1).
type emptyList struct {
	next [sentinel + 1]int8
	prev [sentinel + 1]int8
}

// init links the empty squares in move set order: corners first.
func (l *emptyList) init(empty uint64) {
	var last = sentinel
	var ms = NewMoveSet(empty, MoveNone)
	for m, ok := ms.Next(); ok; m, ok = ms.Next() {
		l.next[last] = int8(m)
		l.prev[m] = int8(last)
		last = int(m)
	}
	l.next[last] = sentinel
	l.prev[sentinel] = int8(last)
}

func (l *emptyList) remove(sq int) {
	l.next[l.prev[sq]] = l.next[sq]
	l.prev[l.next[sq]] = l.prev[sq]
}

// restore undoes remove. Removals must be restored in reverse order.
func (l *emptyList) restore(sq int) {
	l.next[l.prev[sq]] = int8(sq)
	l.prev[l.next[sq]] = int8(sq)
}

// Solver computes exact game values with fail-soft alpha-beta.
// A Solver is not safe for concurrent use.
type Solver struct {
	empties emptyList
	nodes   int64
}

func NewSolver() *Solver {
	return &Solver{}
}

func (s *Solver) Nodes() int64 {
	return s.nodes
}

// Solve returns the value of b from the mover's point of view.
// A result v <= alpha is an upper bound and v >= beta a lower bound.
func (s *Solver) Solve(b Board, alpha, beta int) int {
	s.empties.init(b.Empty)
	return s.solve(b, alpha, beta)
}

func (s *Solver) solve(b Board, alpha, beta int) int {
	s.nodes++
	var moves = b.LegalMoves()
	if moves == 0 {
		var passed = b.Pass()
		if !passed.HasMoves() {
			return b.TerminalValue()
		}
		return -s.solve(passed, -beta, -alpha)
	}

	var best = -inf
	var l = &s.empties
	for sq := int(l.next[sentinel]); sq != sentinel; sq = int(l.next[sq]) {
		if moves&SquareMask(sq) == 0 {
			continue
		}
		l.remove(sq)
		var score = -s.solve(b.MakeMove(sq), -beta, -Max(alpha, best))
		l.restore(sq)
		if score > best {
			best = score
			if best >= beta {
				break
			}
		}
	}
	return best
}

// SolveMove returns a best move of b and its exact value.
// It returns MovePass when the mover must pass and MoveNone when the game is over.
func (s *Solver) SolveMove(b Board) (Move, int) {
	var board, moves, pass = b.CalcMovesAndPass()
	switch pass {
	case PassGameOver:
		return MoveNone, b.TerminalValue()
	case PassOnce:
		return MovePass, -s.Solve(board, -inf, inf)
	}
	s.empties.init(board.Empty)
	var bestMove = MoveNone
	var best = -inf
	var l = &s.empties
	for sq := int(l.next[sentinel]); sq != sentinel; sq = int(l.next[sq]) {
		if moves&SquareMask(sq) == 0 {
			continue
		}
		l.remove(sq)
		var score = -s.solve(board.MakeMove(sq), -inf, -best)
		l.restore(sq)
		if score > best {
			best = score
			bestMove = Move(sq)
		}
	}
	return bestMove, best
}

// inf is beyond any terminal value.
const inf = 64*StoneValue + 1
