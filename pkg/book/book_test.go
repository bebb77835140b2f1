package book

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	eval "github.com/ChizhovVadim/CounterReversi/pkg/eval/material"
	"lukechampine.com/frand"
)

func newTestRNG(seed byte) *frand.RNG {
	var key = make([]byte, 32)
	key[0] = seed
	return frand.NewCustom(key, 1024, 12)
}

func newTestEngine() *engine.Engine {
	var options = engine.NewOptions()
	options.Hash = 1
	options.SolverThreshold = 6
	options.MidgamePrune = 0
	options.EndgamePrune = 0
	options.UseBook = false
	return engine.NewEngine(options, eval.NewEvaluationService(), endgame.NewSolver())
}

func newTestBook(seed byte) *Book {
	return New(DefaultBoni(), Options{
		Searcher: newTestEngine(),
		RNG:      newTestRNG(seed),
	})
}

// randomBoard plays random moves until the position has nEmpty empties and a
// legal move.
func randomBoard(rng *frand.RNG, nEmpty int) Board {
	for {
		var b = InitialBoard()
		for b.NEmpty() > nEmpty && !b.IsGameOver() {
			var board, moves, _ = b.CalcMovesAndPass()
			var list = MovesToSlice(moves)
			b = board.MakeMove(int(list[rng.Intn(len(list))]))
		}
		if b.NEmpty() == nEmpty && b.HasMoves() {
			return b
		}
	}
}

// distinctChildren returns moves of b leading to positions that are not
// reflections of each other and need no pass.
func distinctChildren(b Board) []Move {
	var seen = make(map[Board]bool)
	var result []Move
	for _, m := range MovesToSlice(b.LegalMoves()) {
		var child = b.MakeMove(int(m))
		if !child.HasMoves() {
			continue
		}
		var key = child.Canonical()
		if !seen[key] {
			seen[key] = true
			result = append(result, m)
		}
	}
	return result
}

func TestBoni(t *testing.T) {
	var bn = Boni{Black: 3, White: 5, Draw: 2}
	var tests = []struct {
		value        int
		solved       bool
		black, white int
	}{
		{100, true, 103, 105},
		{-100, true, -105, -103},
		{0, true, 2, -2},
		{40, false, 40, 40},
	}
	for _, test := range tests {
		var black, white = bn.values(test.value, test.solved)
		if black != test.black || white != test.white {
			t.Error(test, black, white)
		}
	}
}

func TestStoreLeafAndClassify(t *testing.T) {
	var bk = newTestBook(1)
	var b = InitialBoard().MakeMove(SquareF5)

	if _, ok := bk.Classify(b); ok {
		t.Fatal("empty book")
	}
	if !bk.StoreLeaf(b, engine.HeightInfo{Height: 4}, 120) {
		t.Fatal("store leaf")
	}
	if bk.StoreLeaf(b, engine.HeightInfo{Height: 3}, 50) {
		t.Error("weaker leaf overwrote a stronger one")
	}
	// reflections share the entry
	var e, ok = bk.Find(b.FlipDiagonal())
	if !ok || e.HeuristicValue != 120 || e.Class() != ClassLeaf {
		t.Fatal(e, ok)
	}

	bk.StoreRoot(b, engine.HeightInfo{Height: 4}, pendingCutoff)
	if c, _ := bk.Classify(b); c != ClassBranch {
		t.Error(c)
	}
	if bk.StoreLeaf(b, engine.HeightInfo{Height: 8}, 0) {
		t.Error("leaf overwrote a branch")
	}
	if c, _ := bk.Classify(b); c != ClassBranch {
		t.Error("branch reverted", c)
	}

	var end = randomBoard(newTestRNG(2), 10)
	bk.StoreLeaf(end, engine.HeightInfo{Height: 10}, -300)
	if c, _ := bk.Classify(end); c != ClassSolved {
		t.Error(c)
	}
	if bk.Len() != 2 || bk.CountByEmpties()[10] != 1 {
		t.Error(bk.Len(), bk.CountByEmpties())
	}
}

func TestCorrectIsIdempotent(t *testing.T) {
	var bk = newTestBook(3)
	var rng = newTestRNG(3)
	for i := 0; i < 3; i++ {
		var b = randomBoard(rng, 16)
		bk.StoreRoot(b, engine.HeightInfo{Height: 3}, pendingCutoff)
	}
	var stats, err = bk.Correct(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches == 0 || stats.Changed == 0 {
		t.Error("first correction did nothing", stats)
	}

	stats, err = bk.Correct(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches != 0 || stats.Changed != 0 {
		t.Error("second correction changed the book", stats)
	}

	// every branch is worth its best book child and no missing child beats it
	for _, m := range bk.entries {
		for b, e := range m {
			if e.Class() == ClassLeaf {
				continue
			}
			var best = maxSubnodeValues(bk.subnodes(b))
			if !best.found || best.heuristic != e.HeuristicValue {
				t.Error("branch value", e, best)
			}
			if e.Cutoff != NoCutoff && e.Cutoff > e.HeuristicValue {
				t.Error("cutoff beats book", e)
			}
		}
	}
}

func TestCorrectSolvesFullBranch(t *testing.T) {
	var solver = endgame.NewSolver()
	var rng = newTestRNG(4)
	for i := 0; i < 5; i++ {
		var bk = newTestBook(4)
		var b = randomBoard(rng, 10)
		for _, m := range MovesToSlice(b.LegalMoves()) {
			var next, _, pass = b.MakeMove(int(m)).CalcMovesAndPass()
			if pass == PassGameOver {
				continue
			}
			bk.StoreLeaf(next, engine.HeightInfo{Height: 9}, solver.Solve(next, -10000, 10000))
		}
		bk.StoreRoot(b, engine.HeightInfo{Height: 10}, pendingCutoff)
		if _, err := bk.Correct(context.Background()); err != nil {
			t.Fatal(err)
		}
		var e, _ = bk.Find(b)
		var _, exact = solver.SolveMove(b)
		if e.Class() != ClassSolved || e.HeuristicValue != exact || e.Cutoff != NoCutoff {
			t.Error(b, e, exact)
		}
	}
}

func TestCorrectReportsEndgameError(t *testing.T) {
	var solver = endgame.NewSolver()
	var rng = newTestRNG(5)
	for _, nEmpty := range []int{12, 8} {
		var bk = newTestBook(5)
		var b Board
		var exact int
		for {
			b = randomBoard(rng, nEmpty)
			_, exact = solver.SolveMove(b)
			if exact != 0 {
				break
			}
		}
		for _, m := range MovesToSlice(b.LegalMoves()) {
			var next, _, pass = b.MakeMove(int(m)).CalcMovesAndPass()
			if pass == PassGameOver {
				continue
			}
			bk.StoreLeaf(next, engine.HeightInfo{Height: 60}, solver.Solve(next, -10000, 10000))
		}
		var wrong = -Sign(exact) * 500
		bk.StoreLeaf(b, engine.HeightInfo{Height: 60}, wrong)

		var stats, err = bk.Correct(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		var e, _ = bk.Find(b)
		if nEmpty >= minCheckedEmpties {
			if stats.EndgameErrors != 1 || e.HeuristicValue != wrong {
				t.Error("endgame error not reported", stats, e)
			}
		} else {
			if stats.EndgameErrors != 0 || e.HeuristicValue != exact {
				t.Error("small endgame not repaired", stats, e)
			}
		}
		if e.Class() != ClassSolved {
			t.Error("solved node reverted", e)
		}
	}
}

func TestCorrectNeedsSearcher(t *testing.T) {
	var bk = New(DefaultBoni(), Options{})
	bk.StoreRoot(InitialBoard(), engine.HeightInfo{Height: 2}, pendingCutoff)
	if _, err := bk.Correct(context.Background()); !errors.Is(err, ErrNoSearcher) {
		t.Error(err)
	}
}

func TestCorrectCancelled(t *testing.T) {
	var bk = newTestBook(6)
	bk.StoreRoot(InitialBoard(), engine.HeightInfo{Height: 2}, pendingCutoff)
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if _, err := bk.Correct(ctx); !errors.Is(err, context.Canceled) {
		t.Error(err)
	}
}

// branchWithValues builds a branch at b whose children have the given values
// from the parent's point of view.
func branchWithValues(bk *Book, b Board, hi engine.HeightInfo, moves []Move, values []int) {
	for i, m := range moves {
		bk.StoreLeaf(b.MakeMove(int(m)), hi, -values[i])
	}
	bk.StoreRoot(b, hi, NoCutoff)
}

func findBranchBoard(rng *frand.RNG, nEmpty, nChildren int) (Board, []Move) {
	for {
		var b = randomBoard(rng, nEmpty)
		var moves = distinctChildren(b)
		if len(moves) == PopCount(b.LegalMoves()) && len(moves) >= nChildren {
			return b, moves[:nChildren]
		}
	}
}

func TestRandomMoveTies(t *testing.T) {
	var bk = newTestBook(7)
	var b, moves = findBranchBoard(newTestRNG(7), 44, 4)
	var all = distinctChildren(b)
	var values = make([]int, len(all))
	for i := range values {
		values[i] = -1000
	}
	copy(values, []int{300, 300, 300, 100})
	branchWithValues(bk, b, engine.HeightInfo{Height: 2}, all, values)
	if _, err := bk.Correct(context.Background()); err != nil {
		t.Fatal(err)
	}

	var seen = make(map[Move]bool)
	for i := 0; i < 50; i++ {
		var m, v, ok = bk.RandomMove(b, true)
		if !ok || v != 300 {
			t.Fatal(m, v, ok)
		}
		seen[m] = true
	}
	if len(seen) != 3 || seen[moves[3]] {
		t.Error("ties not sampled", seen)
	}

	// with two unplayed ties left, only the played move is offered
	bk.AddGame([]Board{b.MakeMove(int(moves[2]))}, false)
	for i := 0; i < 20; i++ {
		if m, _, _ := bk.RandomMove(b, false); m != moves[2] {
			t.Fatal("unplayed tie chosen", m)
		}
	}

	// a single unplayed tie competes with the played ones
	bk.AddGame([]Board{b.MakeMove(int(moves[1]))}, true)
	seen = make(map[Move]bool)
	for i := 0; i < 50; i++ {
		var m, _, _ = bk.RandomMove(b, true)
		seen[m] = true
	}
	if len(seen) != 3 {
		t.Error(seen)
	}

	var m, v, ok = bk.Lookup(b)
	if !ok || v != 300 || m == moves[3] {
		t.Error("lookup", m, v, ok)
	}
}

func TestRandomMoveSolvedGuards(t *testing.T) {
	var rng = newTestRNG(8)
	var solvedHeight = engine.HeightInfo{Height: 60}

	// a solved draw never offers a winning deviation
	var bk = newTestBook(8)
	var b, moves = findBranchBoard(rng, 44, 2)
	var values = []int{200, 0}
	for i, m := range moves {
		bk.StoreLeaf(b.MakeMove(int(m)), solvedHeight, -values[i])
	}
	bk.StoreLeaf(b, solvedHeight, 0)
	bk.StoreRoot(b, solvedHeight, 0)
	for i := 0; i < 20; i++ {
		if m, _, ok := bk.RandomMove(b, true); !ok || m != moves[1] {
			t.Fatal("winning deviation offered from a draw", m, ok)
		}
	}

	// a solved loss never offers a move that does not lose
	bk = newTestBook(9)
	values = []int{100, -200}
	for i, m := range moves {
		bk.StoreLeaf(b.MakeMove(int(m)), solvedHeight, -values[i])
	}
	bk.StoreLeaf(b, solvedHeight, -200)
	bk.StoreRoot(b, solvedHeight, -200)
	for i := 0; i < 20; i++ {
		if m, v, ok := bk.RandomMove(b, false); !ok || m != moves[1] || v != -200 {
			t.Fatal("non-losing deviation offered from a loss", m, v, ok)
		}
	}
}

func TestRandomMoveContempt(t *testing.T) {
	var rng = newTestRNG(10)
	var b, moves = findBranchBoard(rng, 44, 2)
	var solvedHeight = engine.HeightInfo{Height: 60}
	for _, contempt := range []int{-50, 50} {
		var bk = New(DefaultBoni(), Options{Contempt: contempt, RNG: newTestRNG(10)})
		// a small heuristic edge against a sure draw
		bk.StoreLeaf(b.MakeMove(int(moves[0])), engine.HeightInfo{Height: 4}, -20)
		bk.StoreLeaf(b.MakeMove(int(moves[1])), solvedHeight, 0)
		bk.StoreRoot(b, engine.HeightInfo{Height: 5}, NoCutoff)
		var m, _, ok = bk.RandomMove(b, true)
		if !ok {
			t.Fatal("no move")
		}
		if contempt < 0 && m != moves[1] || contempt > 0 && m != moves[0] {
			t.Error(contempt, m)
		}
	}
}

func TestJoin(t *testing.T) {
	var a = newTestBook(11)
	var b = newTestBook(12)
	var p = InitialBoard().MakeMove(SquareF5)
	var q = InitialBoard().MakeMove(SquareF5).MakeMove(SquareF6)
	a.StoreLeaf(p, engine.HeightInfo{Height: 3}, 10)
	a.AddGame([]Board{p}, false)
	b.StoreLeaf(p, engine.HeightInfo{Height: 5}, 20)
	b.AddGame([]Board{p}, true)
	b.StoreLeaf(q, engine.HeightInfo{Height: 5}, 30)

	if added := a.Join(b); added != 1 {
		t.Error(added)
	}
	var e, _ = a.Find(p)
	if e.HeuristicValue != 20 || e.GameCounts != [2]uint32{1, 1} {
		t.Error(e)
	}
	if _, ok := a.Find(q); !ok || a.Len() != 2 {
		t.Error("missing joined entry")
	}
}

func fillBook(bk *Book) {
	var rng = newTestRNG(13)
	for i := 0; i < 30; i++ {
		var b = randomBoard(rng, 20+i)
		bk.StoreLeaf(b, engine.HeightInfo{Height: i % 6, Prune: i % 3, WLD: i%2 == 0}, 10*i-150)
		if i%4 == 0 {
			bk.StoreRoot(b, engine.HeightInfo{Height: 6}, -40)
		}
		bk.AddGame([]Board{b}, i%2 == 1)
	}
}

func sameBooks(t *testing.T, a, b *Book) {
	t.Helper()
	if a.Len() != b.Len() {
		t.Fatal(a.Len(), b.Len())
	}
	for i := range a.entries {
		for key, e := range a.entries[i] {
			var other, ok = b.entries[i][key]
			if !ok || *other != *e {
				t.Fatal(key, e, other)
			}
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	var bk = newTestBook(13)
	fillBook(bk)
	var buf bytes.Buffer
	if err := bk.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	var data = buf.Bytes()

	var loaded = New(DefaultBoni(), Options{})
	if err := loaded.Decode(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	sameBooks(t, bk, loaded)

	// the heuristic value of the first record
	var corrupt = bytes.Clone(data)
	corrupt[8+19] ^= 0x40
	if err := New(DefaultBoni(), Options{}).Decode(bytes.NewReader(corrupt)); !errors.Is(err, ErrChecksum) {
		t.Error("corruption not detected", err)
	}

	var future = bytes.Clone(data)
	future[0] = 2
	if err := New(DefaultBoni(), Options{}).Decode(bytes.NewReader(future)); !errors.Is(err, ErrVersion) {
		t.Error(err)
	}

	if err := New(DefaultBoni(), Options{}).Decode(bytes.NewReader(data[:len(data)-2])); err == nil {
		t.Error("truncated file accepted")
	}
}

func TestSaveLoad(t *testing.T) {
	var bk = newTestBook(14)
	fillBook(bk)
	for _, name := range []string{"book.bin", "book.bin.zst"} {
		var path = filepath.Join(t.TempDir(), name)
		if err := bk.Save(path); err != nil {
			t.Fatal(err)
		}
		var loaded, err = Load(path, DefaultBoni(), Options{})
		if err != nil {
			t.Fatal(name, err)
		}
		sameBooks(t, bk, loaded)
	}
}

func TestLoadAppliesBoni(t *testing.T) {
	var bk = newTestBook(16)
	var leaf = randomBoard(newTestRNG(16), 30)
	bk.StoreLeaf(leaf, engine.HeightInfo{Height: 60}, 400)

	var b, _ = findBranchBoard(newTestRNG(17), 12, 2)
	var moves = distinctChildren(b)
	var values = make([]int, len(moves))
	for i := range values {
		values[i] = 200 * (i + 1)
	}
	branchWithValues(bk, b, engine.HeightInfo{Height: 60}, moves, values)
	if _, err := bk.Correct(context.Background()); err != nil {
		t.Fatal(err)
	}
	var best = values[len(values)-1]
	if e, _ := bk.Find(b); e.BlackValue != best || e.WhiteValue != best {
		t.Fatal(e.String())
	}

	var path = filepath.Join(t.TempDir(), "boni.bin")
	if err := bk.Save(path); err != nil {
		t.Fatal(err)
	}
	var boni = Boni{Black: 300, White: 500, Draw: 50}
	var loaded, err = Load(path, boni, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		board        Board
		black, white int
	}{
		{leaf, 400 + boni.Black, 400 + boni.White},
		{b, best + boni.Black, best + boni.White},
	}
	for _, test := range tests {
		var e, ok = loaded.Find(test.board)
		if !ok {
			t.Fatal("missing entry")
		}
		if e.BlackValue != test.black || e.WhiteValue != test.white {
			t.Error(e.String(), test.black, test.white)
		}
	}

	// loading with the original boni restores the saved values
	again, err := Load(path, DefaultBoni(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	sameBooks(t, bk, again)
}

func TestMirror(t *testing.T) {
	var bk = newTestBook(15)
	fillBook(bk)
	var path = filepath.Join(t.TempDir(), "mirror.bin")
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if err := bk.Mirror(ctx, path, time.Hour); err != nil {
		t.Fatal(err)
	}
	var loaded, err = Load(path, DefaultBoni(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	sameBooks(t, bk, loaded)
}

func TestChecksumRemainders(t *testing.T) {
	var sums = make(map[uint32]bool)
	for n := 0; n < 8; n++ {
		var cs checksum
		cs.Write(bytes.Repeat([]byte{0}, n))
		sums[cs.Sum32()] = true
	}
	if len(sums) != 8 {
		t.Error("lengths of zero bytes collide", len(sums))
	}
}
