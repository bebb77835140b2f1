package common

import "math/bits"

func flipHorizontal(x uint64) uint64 {
	const (
		k1 = 0x5555555555555555
		k2 = 0x3333333333333333
		k4 = 0x0f0f0f0f0f0f0f0f
	)
	x = ((x >> 1) & k1) | ((x & k1) << 1)
	x = ((x >> 2) & k2) | ((x & k2) << 2)
	x = ((x >> 4) & k4) | ((x & k4) << 4)
	return x
}

func flipVertical(x uint64) uint64 {
	return bits.ReverseBytes64(x)
}

// transposes (column, row) to (row, column)
func flipDiagonal(x uint64) uint64 {
	const (
		k1 = 0x5500550055005500
		k2 = 0x3333000033330000
		k4 = 0x0f0f0f0f00000000
	)
	var t = k4 & (x ^ (x << 28))
	x ^= t ^ (t >> 28)
	t = k2 & (x ^ (x << 14))
	x ^= t ^ (t >> 14)
	t = k1 & (x ^ (x << 7))
	x ^= t ^ (t >> 7)
	return x
}

func (b Board) FlipHorizontal() Board {
	return Board{Mover: flipHorizontal(b.Mover), Empty: flipHorizontal(b.Empty)}
}

func (b Board) FlipVertical() Board {
	return Board{Mover: flipVertical(b.Mover), Empty: flipVertical(b.Empty)}
}

func (b Board) FlipDiagonal() Board {
	return Board{Mover: flipDiagonal(b.Mover), Empty: flipDiagonal(b.Empty)}
}

// Symmetry numbers the 8 board symmetries. Bit 0 flips horizontally,
// bit 1 flips vertically, bit 2 transposes; applied in that order.
type Symmetry int

const SymmetryCount = 8

func (b Board) Reflect(s Symmetry) Board {
	if s&1 != 0 {
		b = b.FlipHorizontal()
	}
	if s&2 != 0 {
		b = b.FlipVertical()
	}
	if s&4 != 0 {
		b = b.FlipDiagonal()
	}
	return b
}

// Inverse undoes Reflect(s).
func (s Symmetry) Inverse() Symmetry {
	// H and V commute, so only the transposed cases need to swap them.
	if s&4 != 0 && (s&3 == 1 || s&3 == 2) {
		return s ^ 3
	}
	return s
}

// ReflectSquare maps a square the same way Reflect maps the board.
func (s Symmetry) ReflectSquare(sq int) int {
	var column, row = Column(sq), Row(sq)
	if s&1 != 0 {
		column = 7 - column
	}
	if s&2 != 0 {
		row = 7 - row
	}
	if s&4 != 0 {
		column, row = row, column
	}
	return MakeSquare(column, row)
}

func (s Symmetry) ReflectMove(m Move) Move {
	if !m.IsSquare() {
		return m
	}
	return Move(s.ReflectSquare(int(m)))
}

// MinimalReflection returns the smallest of the 8 symmetric boards and the
// symmetry that produces it.
func (b Board) MinimalReflection() (Board, Symmetry) {
	var best, bestSym = b, Symmetry(0)
	for s := Symmetry(1); s < SymmetryCount; s++ {
		var r = b.Reflect(s)
		if r.Less(best) {
			best, bestSym = r, s
		}
	}
	return best, bestSym
}

func (b Board) Canonical() Board {
	var r, _ = b.MinimalReflection()
	return r
}
