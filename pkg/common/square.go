package common

import (
	"fmt"
	"strings"
)

// Square index is row*8+column. Row 1 is the first row of a board diagram.
const (
	SquareA1 = iota
	SquareB1
	SquareC1
	SquareD1
	SquareE1
	SquareF1
	SquareG1
	SquareH1
	SquareA2
	SquareB2
	SquareC2
	SquareD2
	SquareE2
	SquareF2
	SquareG2
	SquareH2
	SquareA3
	SquareB3
	SquareC3
	SquareD3
	SquareE3
	SquareF3
	SquareG3
	SquareH3
	SquareA4
	SquareB4
	SquareC4
	SquareD4
	SquareE4
	SquareF4
	SquareG4
	SquareH4
	SquareA5
	SquareB5
	SquareC5
	SquareD5
	SquareE5
	SquareF5
	SquareG5
	SquareH5
	SquareA6
	SquareB6
	SquareC6
	SquareD6
	SquareE6
	SquareF6
	SquareG6
	SquareH6
	SquareA7
	SquareB7
	SquareC7
	SquareD7
	SquareE7
	SquareF7
	SquareG7
	SquareH7
	SquareA8
	SquareB8
	SquareC8
	SquareD8
	SquareE8
	SquareF8
	SquareG8
	SquareH8
)

const (
	CornerMask  uint64 = 0x8100000000000081
	XSquareMask uint64 = 0x0042000000004200
	CSquareMask uint64 = 0x4281000000008142
	EdgeMask    uint64 = 0xFF818181818181FF
)

func Column(sq int) int {
	return sq & 7
}

func Row(sq int) int {
	return sq >> 3
}

func MakeSquare(column, row int) int {
	return (row << 3) | column
}

func SquareMask(sq int) uint64 {
	return 1 << uint(sq)
}

const (
	columnNames = "abcdefgh"
	rowNames    = "12345678"
)

func SquareName(sq int) string {
	var column = columnNames[Column(sq)]
	var row = rowNames[Row(sq)]
	return string(column) + string(row)
}

func ParseSquare(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	var column = strings.IndexByte(columnNames, lower(s[0]))
	var row = strings.IndexByte(rowNames, s[1])
	if column < 0 || row < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return MakeSquare(column, row), nil
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
