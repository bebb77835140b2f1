package engine

import (
	"testing"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

func TestCacheStoreProbe(t *testing.T) {
	var tt = NewTransTable(1, 8)
	var b = InitialBoard()
	var hi = HeightInfo{Height: 6, Prune: 1}

	tt.Store(b, hi, 60, SquareF5, -ValueInfinity, ValueInfinity, 150)
	var e, value, cut, _, _ = tt.Probe(b, hi, -ValueInfinity, ValueInfinity)
	if e == nil || !cut || value != 150 {
		t.Fatal(e, value, cut)
	}
	if e.BestMove != SquareF5 {
		t.Error("best move", e.BestMove)
	}

	// weaker requests are served
	for _, req := range []HeightInfo{{Height: 5, Prune: 1}, {Height: 6, Prune: 2}, {Height: 6, Prune: 1, WLD: true}} {
		if _, _, cut, _, _ := tt.Probe(b, req, -ValueInfinity, ValueInfinity); !cut {
			t.Error("not loadable at", req)
		}
	}
	// stronger requests are not
	for _, req := range []HeightInfo{{Height: 7, Prune: 1}, {Height: 6, Prune: 0}} {
		if _, _, cut, _, _ := tt.Probe(b, req, -ValueInfinity, ValueInfinity); cut {
			t.Error("loadable at", req)
		}
	}
}

func TestCacheBounds(t *testing.T) {
	var tt = NewTransTable(1, 8)
	var b = InitialBoard().MakeMove(SquareF5)
	var hi = HeightInfo{Height: 4}

	// fail high: value is a lower bound
	tt.Store(b, hi, 59, SquareD6, -100, 100, 300)
	var _, value, cut, alpha, beta = tt.Probe(b, hi, -100, 100)
	if !cut || value != 300 {
		t.Error("fail high not cut", value, cut)
	}
	_, _, cut, alpha, beta = tt.Probe(b, hi, 200, 400)
	if cut || alpha != 300 || beta != 400 {
		t.Error("window not narrowed", alpha, beta)
	}

	// fail low on the same height adds an upper bound
	tt.Store(b, hi, 59, MoveNone, 500, 600, 450)
	var e = tt.Find(b)
	if e.Lower != 300 || e.Upper != 450 {
		t.Error("bounds", e.Lower, e.Upper)
	}
	if e.BestMove != SquareD6 {
		t.Error("fail low must keep best move", e.BestMove)
	}
	_, value, cut, _, _ = tt.Probe(b, hi, 450, 500)
	if !cut || value != 450 {
		t.Error("upper bound not cut", value, cut)
	}
}

func TestCacheStrongerResultReplaces(t *testing.T) {
	var tt = NewTransTable(1, 8)
	var b = InitialBoard()
	tt.Store(b, HeightInfo{Height: 3}, 60, MoveNone, -ValueInfinity, ValueInfinity, 100)

	// a weaker result is clamped to the stored bounds and not recorded
	var v = tt.Store(b, HeightInfo{Height: 2}, 60, MoveNone, -ValueInfinity, ValueInfinity, 40)
	if v != 100 {
		t.Error("weaker store value", v)
	}
	var e = tt.Find(b)
	if e.Height != 3 || e.Lower != 100 || e.Upper != 100 {
		t.Error("weaker store changed entry", *e)
	}

	// a stronger result resets the bounds
	tt.Store(b, HeightInfo{Height: 4}, 60, MoveNone, 0, 50, 50)
	e = tt.Find(b)
	if e.Height != 4 || e.Lower != 50 || e.Upper != ValueInfinity {
		t.Error("stronger store", *e)
	}
}

func TestCacheStale(t *testing.T) {
	var tt = NewTransTable(1, 8)
	var b = InitialBoard()
	tt.Store(b, HeightInfo{Height: 10}, 60, SquareC4, -ValueInfinity, ValueInfinity, 0)
	tt.SetStale()
	var e = tt.Find(b)
	if e == nil || e.Height != 10 {
		t.Fatal("stale entry must still be found")
	}
	if tt.Replaceable(e, 0) {
		t.Error("touched entry must be fresh again")
	}
	tt.SetStale()
	if !tt.Replaceable(e, 0) {
		t.Error("stale entry must be replaceable")
	}
	tt.Clear()
	if tt.Find(b) != nil {
		t.Error("clear")
	}
}

func TestCacheImportance(t *testing.T) {
	var tt = NewTransTable(1, 8)
	if tt.Importance(4, 0, 12) != 6 {
		t.Error("exact endgame search is boosted")
	}
	if tt.Importance(4, 1, 12) != 4 || tt.Importance(4, 0, 13) != 4 {
		t.Error("no boost")
	}
}

func TestCacheEviction(t *testing.T) {
	// a single bucket
	var tt = NewTransTable(0, 8)
	var a = InitialBoard()
	var b1 = a.MakeMove(SquareF5)
	var b2 = a.MakeMove(SquareD3)
	tt.Store(a, HeightInfo{Height: 9}, 60, MoveNone, -ValueInfinity, ValueInfinity, 0)
	tt.Store(b1, HeightInfo{Height: 5}, 59, MoveNone, -ValueInfinity, ValueInfinity, 0)
	tt.Store(b2, HeightInfo{Height: 3}, 59, MoveNone, -ValueInfinity, ValueInfinity, 0)
	if tt.Find(b2) != nil {
		t.Error("less important board evicted a more important one")
	}
	tt.Store(b2, HeightInfo{Height: 7}, 59, MoveNone, -ValueInfinity, ValueInfinity, 0)
	if tt.Find(b2) == nil || tt.Find(b1) != nil || tt.Find(a) == nil {
		t.Error("the least important entry should be evicted")
	}
	tt.SetStale()
	tt.Store(b1, HeightInfo{Height: 1}, 59, MoveNone, -ValueInfinity, ValueInfinity, 0)
	if tt.Find(b1) == nil {
		t.Error("stale entries are always replaceable")
	}
}

func TestMPCBounds(t *testing.T) {
	var stat = MPCStat{ShallowHeight: 2, Sd: 100, Ratio: 1}
	var low, high = stat.Bounds(-50, 50, 2)
	if low != -250 || high != 250 {
		t.Error(low, high)
	}
	var table = DefaultMPCTable()
	if table.MaxPrune() != len(table.Confidence)-1 {
		t.Error(table.MaxPrune())
	}
	if _, ok := table.Stat(2, 40); ok {
		t.Error("no statistics below the minimum height")
	}
	if s, ok := table.Stat(8, 40); !ok || s.ShallowHeight >= 8 {
		t.Error(s, ok)
	}
}
