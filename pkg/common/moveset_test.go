package common

import "testing"

func collect(ms *MoveSet) []Move {
	var result []Move
	for {
		var m, ok = ms.Next()
		if !ok {
			return result
		}
		result = append(result, m)
	}
}

func movesOf(squares ...int) uint64 {
	var result uint64
	for _, sq := range squares {
		result |= SquareMask(sq)
	}
	return result
}

func TestMoveSetOrder(t *testing.T) {
	var moves = movesOf(SquareB2, SquareA1, SquareD3, SquareB1, SquareH8, SquareC3)
	var tests = []struct {
		name string
		best Move
		want []Move
	}{
		{"no hint", MoveNone, []Move{SquareA1, SquareH8, SquareC3, SquareD3, SquareB1, SquareB2}},
		{"hint", Move(SquareB2), []Move{SquareB2, SquareA1, SquareH8, SquareC3, SquareD3, SquareB1}},
		{"illegal hint", Move(SquareE5), []Move{SquareA1, SquareH8, SquareC3, SquareD3, SquareB1, SquareB2}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ms = NewMoveSet(moves, test.best)
			var got = collect(&ms)
			if len(got) != len(test.want) {
				t.Fatal(got)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Fatal(got)
				}
			}
			ms.Reset()
			if len(collect(&ms)) != len(test.want) {
				t.Error("reset")
			}
		})
	}
}

func TestMoveSetDelete(t *testing.T) {
	var ms = NewMoveSet(movesOf(SquareA1, SquareC3, SquareD3, SquareB2), Move(SquareD3))
	var first, _ = ms.Next()
	if first != Move(SquareD3) {
		t.Fatal(first)
	}
	ms.Delete(Move(SquareC3))
	ms.Delete(first)
	if ms.Count() != 2 || !ms.HasMoves() {
		t.Fatal(ms.Count())
	}
	var rest = collect(&ms)
	if len(rest) != 2 || rest[0] != Move(SquareA1) || rest[1] != Move(SquareB2) {
		t.Error(rest)
	}
	ms.Delete(Move(SquareA1))
	ms.Delete(Move(SquareB2))
	if ms.HasMoves() {
		t.Error("has moves")
	}
}
