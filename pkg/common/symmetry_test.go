package common

import "testing"

func TestFlipsAreInvolutions(t *testing.T) {
	var rng = newTestRNG()
	for _, b := range randomBoards(rng, 5) {
		if b.FlipHorizontal().FlipHorizontal() != b ||
			b.FlipVertical().FlipVertical() != b ||
			b.FlipDiagonal().FlipDiagonal() != b {
			t.Fatal(b)
		}
	}
}

func TestReflectSquare(t *testing.T) {
	for s := Symmetry(0); s < SymmetryCount; s++ {
		for sq := 0; sq < 64; sq++ {
			var b = Board{Mover: SquareMask(sq), Empty: ^SquareMask(sq)}
			var r = b.Reflect(s)
			if r.Mover != SquareMask(s.ReflectSquare(sq)) {
				t.Fatal(s, SquareName(sq))
			}
			if r.Reflect(s.Inverse()) != b {
				t.Fatal("inverse", s, SquareName(sq))
			}
		}
	}
}

func TestSymmetriesAreDistinct(t *testing.T) {
	var b = Board{Mover: SquareMask(SquareB1), Empty: ^SquareMask(SquareB1)}
	var seen = make(map[Board]bool)
	for s := Symmetry(0); s < SymmetryCount; s++ {
		seen[b.Reflect(s)] = true
	}
	if len(seen) != SymmetryCount {
		t.Error(len(seen))
	}
}

func TestMinimalReflection(t *testing.T) {
	var rng = newTestRNG()
	for _, b := range randomBoards(rng, 10) {
		var minimal, sym = b.MinimalReflection()
		if b.Reflect(sym) != minimal {
			t.Fatal("symmetry", b)
		}
		if minimal.Canonical() != minimal {
			t.Fatal("not idempotent", b)
		}
		for s := Symmetry(0); s < SymmetryCount; s++ {
			if b.Reflect(s).Canonical() != minimal {
				t.Fatal("not invariant", b, s)
			}
		}
	}
}
