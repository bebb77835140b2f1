package engine

import (
	"fmt"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// CacheEntry holds search bounds for one board. The bounds are only valid for
// requests its Height and Prune cover.
type CacheEntry struct {
	Board    Board
	Lower    int16
	Upper    int16
	Height   int8
	Prune    int8
	NEmpty   int8
	BestMove Move
	date     uint16
}

// Loadable reports whether the entry can answer a search of hi. A deeper entry
// answers shallower requests; only a request deeper than the entry misses.
func (e *CacheEntry) Loadable(hi HeightInfo) bool {
	return HeightInfo{Height: int(e.Height), Prune: int(e.Prune)}.Covers(hi)
}

func (e *CacheEntry) HeightInfo() HeightInfo {
	return HeightInfo{Height: int(e.Height), Prune: int(e.Prune)}
}

type cacheBucket [2]CacheEntry

type CacheStats struct {
	Lookups      uint64
	Hits         uint64
	Stores       uint64
	Replacements uint64
}

// TransTable is a two-way set associative cache of search bounds.
// It is owned by one search at a time.
type TransTable struct {
	megabytes       int
	buckets         []cacheBucket
	mask            uint64
	date            uint16
	solverThreshold int
	stats           CacheStats
}

const cacheEntrySize = 32

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func NewTransTable(megabytes, solverThreshold int) *TransTable {
	var size = roundPowerOfTwo(Max(1, 1024*1024*megabytes/(2*cacheEntrySize)))
	return &TransTable{
		megabytes:       megabytes,
		buckets:         make([]cacheBucket, size),
		mask:            uint64(size - 1),
		date:            1,
		solverThreshold: solverThreshold,
	}
}

func (tt *TransTable) Size() int {
	return tt.megabytes
}

func (tt *TransTable) Stats() CacheStats {
	return tt.stats
}

// Importance ranks a (height, prune, empties) request. Searches that are
// provably exact to the end of the game get a boost.
func (tt *TransTable) Importance(height, prune, nEmpty int) int {
	if prune == 0 && nEmpty <= tt.solverThreshold+height {
		return height + 2
	}
	return height
}

func (tt *TransTable) entryImportance(e *CacheEntry) int {
	return tt.Importance(int(e.Height), int(e.Prune), int(e.NEmpty))
}

func (tt *TransTable) isStale(e *CacheEntry) bool {
	return e.date != tt.date
}

// SetStale marks every entry stale in O(1). Stale entries are still found
// and become fresh again when touched.
func (tt *TransTable) SetStale() {
	tt.date++
	if tt.date == 0 {
		tt.date = 1
	}
}

func (tt *TransTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = cacheBucket{}
	}
	tt.date = 1
	tt.stats = CacheStats{}
}

func (tt *TransTable) bucket(b Board) *cacheBucket {
	return &tt.buckets[b.Hash()&tt.mask]
}

func (tt *TransTable) Find(b Board) *CacheEntry {
	tt.stats.Lookups++
	var bucket = tt.bucket(b)
	for i := range bucket {
		var e = &bucket[i]
		if e.date != 0 && e.Board == b {
			e.date = tt.date
			tt.stats.Hits++
			return e
		}
	}
	return nil
}

// Replaceable reports whether a request at the given importance may evict e.
func (tt *TransTable) Replaceable(e *CacheEntry, importance int) bool {
	return e.date == 0 || tt.isStale(e) || importance > tt.entryImportance(e)
}

// FindOrCreate returns the entry for b, evicting the more replaceable slot of
// the bucket when b is absent. It returns nil when neither slot may be evicted.
func (tt *TransTable) FindOrCreate(b Board, hi HeightInfo, nEmpty int) *CacheEntry {
	var bucket = tt.bucket(b)
	for i := range bucket {
		var e = &bucket[i]
		if e.date != 0 && e.Board == b {
			e.date = tt.date
			return e
		}
	}
	var victim = &bucket[0]
	if tt.moreReplaceable(&bucket[1], victim) {
		victim = &bucket[1]
	}
	if !tt.Replaceable(victim, tt.Importance(hi.Height, hi.Prune, nEmpty)) {
		return nil
	}
	tt.stats.Replacements++
	*victim = CacheEntry{
		Board:    b,
		Lower:    -ValueInfinity,
		Upper:    ValueInfinity,
		Height:   int8(hi.Height),
		Prune:    int8(hi.Prune),
		NEmpty:   int8(nEmpty),
		BestMove: MoveNone,
		date:     tt.date,
	}
	return victim
}

func (tt *TransTable) moreReplaceable(a, b *CacheEntry) bool {
	if (a.date == 0) != (b.date == 0) {
		return a.date == 0
	}
	if tt.isStale(a) != tt.isStale(b) {
		return tt.isStale(a)
	}
	return tt.entryImportance(a) < tt.entryImportance(b)
}

// Probe looks up b for a search at hi in the window (alpha, beta). When the
// stored bounds decide the node, cut is true and value is returned. Otherwise
// the window is narrowed to the stored bounds.
func (tt *TransTable) Probe(b Board, hi HeightInfo, alpha, beta int) (e *CacheEntry, value int, cut bool, newAlpha, newBeta int) {
	newAlpha, newBeta = alpha, beta
	e = tt.Find(b)
	if e == nil || !e.Loadable(hi) {
		return
	}
	var lower, upper = int(e.Lower), int(e.Upper)
	if lower >= beta || lower == upper {
		return e, lower, true, alpha, beta
	}
	if upper <= alpha {
		return e, upper, true, alpha, beta
	}
	newAlpha = Max(alpha, lower)
	newBeta = Min(beta, upper)
	return
}

// Store records a fail-soft search result for b searched in (alpha, beta).
// A result weaker than what is stored does not change the entry; the value is
// clamped into the stored bounds instead.
func (tt *TransTable) Store(b Board, hi HeightInfo, nEmpty int, bestMove Move, alpha, beta, value int) int {
	if bestMove != MoveNone && bestMove != MovePass && !bestMove.IsSquare() {
		panic(fmt.Errorf("cache store: bad best move %d", int(bestMove)))
	}
	var e = tt.FindOrCreate(b, hi, nEmpty)
	if e == nil {
		return value
	}
	var stored = e.HeightInfo()
	var importance = tt.Importance(hi.Height, hi.Prune, nEmpty)
	if !hi.Covers(stored) || importance < tt.entryImportance(e) {
		return Clamp(value, int(e.Lower), int(e.Upper))
	}
	tt.stats.Stores++
	if hi.Height != stored.Height || hi.Prune != stored.Prune {
		e.Lower = -ValueInfinity
		e.Upper = ValueInfinity
		e.Height = int8(hi.Height)
		e.Prune = int8(hi.Prune)
		e.NEmpty = int8(nEmpty)
	}
	var v = int16(value)
	if value < beta && v < e.Upper {
		e.Upper = v
		if v < e.Lower {
			e.Lower = v
		}
	}
	if value > alpha && v > e.Lower {
		e.Lower = v
		if v > e.Upper {
			e.Upper = v
		}
	}
	if bestMove.IsSquare() && (value > alpha || e.BestMove == MoveNone) {
		e.BestMove = bestMove
	}
	if e.Lower > e.Upper {
		panic(fmt.Errorf("cache bounds crossed: %d > %d", e.Lower, e.Upper))
	}
	return value
}
