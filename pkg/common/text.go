package common

import (
	"fmt"
	"strings"
)

// NewBoardFromText parses a 64 square diagram in row-major order.
// Whitespace is ignored. blackToMove selects which color becomes the mover.
func NewBoardFromText(text string, blackToMove bool) (Board, error) {
	var black, white, empty uint64
	var sq = 0
	for i := 0; i < len(text); i++ {
		var ch = text[i]
		switch ch {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if sq >= 64 {
			return Board{}, fmt.Errorf("%w: more than 64 squares", ErrBadBoardText)
		}
		var mask = SquareMask(sq)
		switch ch {
		case '.', '-', '_':
			empty |= mask
		case 'x', 'X', '*', 'b', 'B':
			black |= mask
		case 'o', 'O', 'w', 'W':
			white |= mask
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q at square %v", ErrBadBoardText, ch, sq)
		}
		sq++
	}
	if sq != 64 {
		return Board{}, fmt.Errorf("%w: %v squares", ErrBadBoardText, sq)
	}
	if blackToMove {
		return Board{Mover: black, Empty: empty}, nil
	}
	return Board{Mover: white, Empty: empty}, nil
}

// Text renders the board with black as '*' and white as 'O'.
func (b Board) Text(blackToMove bool) string {
	var black, white = b.Mover, b.Opponent()
	if !blackToMove {
		black, white = white, black
	}
	var sb strings.Builder
	sb.Grow(64)
	for sq := 0; sq < 64; sq++ {
		var mask = SquareMask(sq)
		switch {
		case black&mask != 0:
			sb.WriteByte('*')
		case white&mask != 0:
			sb.WriteByte('O')
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// String draws the mover as '*'.
func (b Board) String() string {
	var text = b.Text(true)
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for row := 0; row < 8; row++ {
		sb.WriteByte(rowNames[row])
		for column := 0; column < 8; column++ {
			sb.WriteByte(' ')
			sb.WriteByte(text[MakeSquare(column, row)])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
