package endgame

import (
	"testing"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"lukechampine.com/frand"
)

func negamax(b Board) int {
	var moves = b.LegalMoves()
	if moves == 0 {
		var passed = b.Pass()
		if !passed.HasMoves() {
			return b.TerminalValue()
		}
		return -negamax(passed)
	}
	var best = -inf
	for _, m := range MovesToSlice(moves) {
		best = Max(best, -negamax(b.MakeMove(int(m))))
	}
	return best
}

func endgameBoards(games, nEmpty int) []Board {
	var rng = frand.NewCustom(make([]byte, 32), 1024, 12)
	var result []Board
	for len(result) < games {
		var b = InitialBoard()
		for b.NEmpty() > nEmpty && !b.IsGameOver() {
			var board, moves, _ = b.CalcMovesAndPass()
			var list = MovesToSlice(moves)
			b = board.MakeMove(int(list[rng.Intn(len(list))]))
		}
		if b.NEmpty() == nEmpty {
			result = append(result, b)
		}
	}
	return result
}

func TestSolveExact(t *testing.T) {
	var s = NewSolver()
	for _, b := range endgameBoards(30, 9) {
		var want = negamax(b)
		if got := s.Solve(b, -inf, inf); got != want {
			t.Error(b, got, want)
		}
	}
	if s.Nodes() == 0 {
		t.Error("nodes not counted")
	}
}

func TestSolveWindow(t *testing.T) {
	var s = NewSolver()
	for _, b := range endgameBoards(20, 8) {
		var exact = negamax(b)
		var tests = []struct {
			alpha, beta int
		}{
			{-1, 1},
			{exact - 1, exact + 1},
			{exact, exact + 1},
			{exact - 1, exact},
			{exact + 200, exact + 400},
			{exact - 400, exact - 200},
		}
		for _, test := range tests {
			var v = s.Solve(b, test.alpha, test.beta)
			switch {
			case v <= test.alpha:
				if exact > v {
					t.Error("bad upper bound", b, test, v, exact)
				}
			case v >= test.beta:
				if exact < v {
					t.Error("bad lower bound", b, test, v, exact)
				}
			default:
				if v != exact {
					t.Error("bad exact value", b, test, v, exact)
				}
			}
		}
	}
}

func TestSolveMove(t *testing.T) {
	var s = NewSolver()
	for _, b := range endgameBoards(20, 8) {
		var move, value = s.SolveMove(b)
		var board, moves, pass = b.CalcMovesAndPass()
		switch pass {
		case PassGameOver:
			if move != MoveNone {
				t.Error(move)
			}
		case PassOnce:
			if move != MovePass || value != -negamax(board) {
				t.Error(move, value)
			}
		default:
			if moves&SquareMask(int(move)) == 0 {
				t.Fatal("illegal move", move)
			}
			if value != negamax(b) || -negamax(b.MakeMove(int(move))) != value {
				t.Error(b, move, value)
			}
		}
	}
}

func TestSolveTerminal(t *testing.T) {
	var s = NewSolver()
	var full = Board{Mover: 0xFFFFFFFFFF000000, Empty: 0}
	if v := s.Solve(full, -inf, inf); v != (40-24)*StoneValue {
		t.Error(v)
	}
	// no moves for either side: empties go to the winner
	var b = Board{Mover: 0x00000000000000FF, Empty: 0xFFFFFFFFFFFFFF00}
	if v := s.Solve(b, -inf, inf); v != 64*StoneValue {
		t.Error(v)
	}
}

func TestEmptyList(t *testing.T) {
	var l emptyList
	var empty = SquareMask(SquareA1) | SquareMask(SquareB2) | SquareMask(SquareD4) | SquareMask(SquareH8)
	l.init(empty)
	var order []int
	for sq := int(l.next[sentinel]); sq != sentinel; sq = int(l.next[sq]) {
		order = append(order, sq)
	}
	var want = []int{SquareA1, SquareH8, SquareD4, SquareB2}
	if len(order) != len(want) {
		t.Fatal(order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatal(order)
		}
	}
	l.remove(SquareD4)
	l.remove(SquareA1)
	if int(l.next[sentinel]) != SquareH8 || int(l.next[SquareH8]) != SquareB2 {
		t.Error("remove")
	}
	l.restore(SquareA1)
	l.restore(SquareD4)
	if int(l.next[SquareH8]) != SquareD4 || int(l.next[sentinel]) != SquareA1 {
		t.Error("restore")
	}
}
