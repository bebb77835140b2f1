package book

import (
	"context"
	"errors"
	"sync"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"
)

var (
	ErrChecksum   = errors.New("book: checksum mismatch")
	ErrVersion    = errors.New("book: unsupported file version")
	ErrNoSearcher = errors.New("book: correction needs a searcher")

	errSearchFailed = errors.New("book: search failed")
)

// Searcher runs fixed height searches for the correction.
type Searcher interface {
	SearchFixed(ctx context.Context, b Board, hi engine.HeightInfo, moves uint64) (Move, int, bool)
}

type Options struct {
	Contempt int
	Searcher Searcher
	Logger   zerolog.Logger
	RNG      *frand.RNG
}

// Book maps positions, keyed by minimal reflection, to their entries.
// Entries are grouped by the number of empty squares.
type Book struct {
	boni     Boni
	contempt int
	searcher Searcher
	logger   zerolog.Logger
	mu       sync.RWMutex
	entries  [61]map[Board]*Entry
	rngMu    sync.Mutex
	rng      *frand.RNG
}

func New(boni Boni, opts Options) *Book {
	var bk = &Book{
		boni:     boni,
		contempt: opts.Contempt,
		searcher: opts.Searcher,
		logger:   opts.Logger,
		rng:      opts.RNG,
	}
	if bk.rng == nil {
		bk.rng = frand.New()
	}
	for i := range bk.entries {
		bk.entries[i] = make(map[Board]*Entry)
	}
	return bk
}

func (bk *Book) SetSearcher(s Searcher) {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	bk.searcher = s
}

// SetContempt changes the value a mover gives up for a solved draw.
func (bk *Book) SetContempt(contempt int) {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	bk.contempt = contempt
}

func (bk *Book) Boni() Boni {
	return bk.boni
}

func (bk *Book) Len() int {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	var n = 0
	for _, m := range bk.entries {
		n += len(m)
	}
	return n
}

func (bk *Book) CountByEmpties() [61]int {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	var result [61]int
	for i, m := range bk.entries {
		result[i] = len(m)
	}
	return result
}

// Find returns a copy of the entry of b.
func (bk *Book) Find(b Board) (Entry, bool) {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	var e = bk.find(b)
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

func (bk *Book) Classify(b Board) (Class, bool) {
	var e, ok = bk.Find(b)
	return e.Class(), ok
}

func (bk *Book) find(b Board) *Entry {
	var nEmpty = b.NEmpty()
	return bk.entries[nEmpty][b.Canonical()]
}

func (bk *Book) findOrCreate(b Board) (*Entry, bool) {
	var key = b.Canonical()
	var m = bk.entries[b.NEmpty()]
	if e, ok := m[key]; ok {
		return e, false
	}
	var e = &Entry{Cutoff: pendingCutoff}
	m[key] = e
	return e, true
}

// StoreLeaf records a search value of b. A stored branch or solved entry is
// not changed, nor is a leaf searched at a greater height.
func (bk *Book) StoreLeaf(b Board, hi engine.HeightInfo, value int) bool {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	return bk.storeLeaf(b, hi, value)
}

func (bk *Book) storeLeaf(b Board, hi engine.HeightInfo, value int) bool {
	var e, created = bk.findOrCreate(b)
	if !created && (e.Class() != ClassLeaf || hi.Less(e.Height)) {
		return false
	}
	e.Height = hi
	e.HeuristicValue = value
	e.WLDSolved = hi.Solves(b.NEmpty())
	e.BlackValue, e.WhiteValue = bk.boni.values(value, e.WLDSolved)
	return true
}

// StoreRoot marks b as searched from the root. cutoff is the best value of
// the moves that are not in the book, or NoCutoff.
func (bk *Book) StoreRoot(b Board, hi engine.HeightInfo, cutoff int) {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	var e, _ = bk.findOrCreate(b)
	e.IsRoot = true
	if e.Height.Less(hi) {
		e.Height = hi
	}
	e.Cutoff = cutoff
}

// AddGame counts a played game for every book position in boards.
func (bk *Book) AddGame(boards []Board, public bool) int {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	var index = 0
	if public {
		index = 1
	}
	var n = 0
	for _, b := range boards {
		if e := bk.find(b); e != nil {
			e.GameCounts[index]++
			n++
		}
	}
	return n
}

// Join merges other into bk. The more important entry of a position wins
// and game counts are added.
func (bk *Book) Join(other *Book) int {
	if bk == other {
		return 0
	}
	bk.mu.Lock()
	defer bk.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	var added = 0
	for i := range other.entries {
		for key, oe := range other.entries[i] {
			var e, ok = bk.entries[i][key]
			if !ok {
				var copied = *oe
				bk.entries[i][key] = &copied
				added++
				continue
			}
			var games = [2]uint32{e.GameCounts[0] + oe.GameCounts[0], e.GameCounts[1] + oe.GameCounts[1]}
			if oe.MoreImportant(e) {
				*e = *oe
			}
			e.GameCounts = games
		}
	}
	return added
}

// subnodes lists the children of b. Children that are neither in the book
// nor terminal have a nil entry.
func (bk *Book) subnodes(b Board) []subnode {
	var result []subnode
	for moves := b.LegalMoves(); moves != 0; moves &= moves - 1 {
		var sq = FirstOne(moves)
		var child = b.MakeMove(sq)
		var next, _, pass = child.CalcMovesAndPass()
		var sn = subnode{move: Move(sq), board: next}
		switch pass {
		case PassGameOver:
			var value = child.TerminalValue()
			var black, white = bk.boni.values(value, true)
			sn.terminal = true
			sn.solved = true
			sn.heuristic, sn.black, sn.white = childValues(value, black, white, false)
		default:
			sn.entry = bk.find(next)
			if sn.entry != nil {
				sn.solved = sn.entry.WLDSolved
				sn.heuristic, sn.black, sn.white = childValues(sn.entry.HeuristicValue,
					sn.entry.BlackValue, sn.entry.WhiteValue, pass == PassOnce)
			}
		}
		result = append(result, sn)
	}
	return result
}
