package common

import (
	"fmt"
	"strings"
)

// Move is a square index 0..63 or one of the sentinels below.
type Move int8

const (
	MovePass Move = -1
	MoveNone Move = -2
)

const StoneValue = 100

func (m Move) IsSquare() bool {
	return m >= 0 && m < 64
}

func (m Move) String() string {
	switch {
	case m == MovePass:
		return "pa"
	case m == MoveNone:
		return "--"
	case m.IsSquare():
		return SquareName(int(m))
	}
	return fmt.Sprintf("Move(%d)", int(m))
}

func ParseMove(s string) (Move, error) {
	var ls = strings.ToLower(strings.TrimSpace(s))
	if ls == "pa" || ls == "pass" {
		return MovePass, nil
	}
	var sq, err = ParseSquare(ls)
	if err != nil {
		return MoveNone, err
	}
	return Move(sq), nil
}

// MovesToSlice lists the squares of a move mask in ascending order.
func MovesToSlice(moves uint64) []Move {
	var result = make([]Move, 0, PopCount(moves))
	for x := moves; x != 0; x &= x - 1 {
		result = append(result, Move(FirstOne(x)))
	}
	return result
}
