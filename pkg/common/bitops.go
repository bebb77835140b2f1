package common

import "math/bits"

// BitOps computes the bit-level primitives of move generation.
// Every implementation must return identical results.
type BitOps interface {
	PopCount(b uint64) int
	MoveMask(mover, opponent uint64) uint64
	Flips(mover, opponent uint64, sq int) uint64
}

const (
	notColumnA uint64 = 0xFEFEFEFEFEFEFEFE
	notColumnH uint64 = 0x7F7F7F7F7F7F7F7F
)

type direction struct {
	shift int
	mask  uint64
}

// positive shift moves towards higher square indices
var directions = [8]direction{
	{1, notColumnA},
	{-1, notColumnH},
	{8, ^uint64(0)},
	{-8, ^uint64(0)},
	{9, notColumnA},
	{7, notColumnH},
	{-7, notColumnA},
	{-9, notColumnH},
}

func (d direction) apply(b uint64) uint64 {
	if d.shift > 0 {
		return (b << uint(d.shift)) & d.mask
	}
	return (b >> uint(-d.shift)) & d.mask
}

// ShiftBitOps is the default fast path: parallel fills along all directions.
type ShiftBitOps struct{}

func (ShiftBitOps) PopCount(b uint64) int {
	return bits.OnesCount64(b)
}

func (ShiftBitOps) MoveMask(mover, opponent uint64) uint64 {
	var empty = ^(mover | opponent)
	var result uint64
	for _, d := range directions {
		var t = opponent & d.apply(mover)
		t |= opponent & d.apply(t)
		t |= opponent & d.apply(t)
		t |= opponent & d.apply(t)
		t |= opponent & d.apply(t)
		t |= opponent & d.apply(t)
		result |= d.apply(t)
	}
	return result & empty
}

func (ShiftBitOps) Flips(mover, opponent uint64, sq int) uint64 {
	var result uint64
	var from = SquareMask(sq)
	for _, d := range directions {
		var run uint64
		var x = d.apply(from)
		for x&opponent != 0 {
			run |= x
			x = d.apply(x)
		}
		if x&mover != 0 {
			result |= run
		}
	}
	return result
}

// PortableBitOps walks squares by row and column without any shifting tricks.
type PortableBitOps struct{}

var portableSteps = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

func (PortableBitOps) PopCount(b uint64) int {
	var n = 0
	for ; b != 0; b &= b - 1 {
		n++
	}
	return n
}

func (o PortableBitOps) MoveMask(mover, opponent uint64) uint64 {
	var result uint64
	for sq := 0; sq < 64; sq++ {
		if (mover|opponent)&SquareMask(sq) != 0 {
			continue
		}
		if o.Flips(mover, opponent, sq) != 0 {
			result |= SquareMask(sq)
		}
	}
	return result
}

func (PortableBitOps) Flips(mover, opponent uint64, sq int) uint64 {
	var result uint64
	for _, step := range portableSteps {
		var run uint64
		var column, row = Column(sq) + step[0], Row(sq) + step[1]
		for column >= 0 && column < 8 && row >= 0 && row < 8 {
			var m = SquareMask(MakeSquare(column, row))
			if opponent&m == 0 {
				if mover&m != 0 {
					result |= run
				}
				break
			}
			run |= m
			column += step[0]
			row += step[1]
		}
	}
	return result
}

var ops BitOps = ShiftBitOps{}

// SetBitOps replaces the implementation used by Board. It is meant to be called
// once at startup, before any search runs.
func SetBitOps(o BitOps) {
	ops = o
}

func PopCount(b uint64) int {
	return ops.PopCount(b)
}

func FirstOne(b uint64) int {
	return bits.TrailingZeros64(b)
}

// Neighbours returns the squares adjacent to any square of x, x excluded.
func Neighbours(x uint64) uint64 {
	var result uint64
	for _, d := range directions {
		result |= d.apply(x)
	}
	return result &^ x
}
