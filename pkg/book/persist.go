package book

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"os"
	"slices"
	"strings"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
)

const fileVersion = 1

const (
	flagWLD = 1 << iota
	flagSolved
	flagRoot
)

type fileHeader struct {
	Version int32
	Count   int32
}

type fileRecord struct {
	Mover     uint64
	Empty     uint64
	Height    int8
	Prune     int8
	Flags     uint8
	Heuristic int16
	Black     int16
	White     int16
	Cutoff    int16
	Games     [2]uint32
}

func newFileRecord(b Board, e *Entry) fileRecord {
	var flags uint8
	if e.Height.WLD {
		flags |= flagWLD
	}
	if e.WLDSolved {
		flags |= flagSolved
	}
	if e.IsRoot {
		flags |= flagRoot
	}
	return fileRecord{
		Mover:     b.Mover,
		Empty:     b.Empty,
		Height:    int8(e.Height.Height),
		Prune:     int8(e.Height.Prune),
		Flags:     flags,
		Heuristic: int16(e.HeuristicValue),
		Black:     int16(e.BlackValue),
		White:     int16(e.WhiteValue),
		Cutoff:    int16(e.Cutoff),
		Games:     e.GameCounts,
	}
}

func (r *fileRecord) entry() (Board, *Entry) {
	return Board{Mover: r.Mover, Empty: r.Empty}, &Entry{
		Height: engine.HeightInfo{
			Height: int(r.Height),
			Prune:  int(r.Prune),
			WLD:    r.Flags&flagWLD != 0,
		},
		HeuristicValue: int(r.Heuristic),
		BlackValue:     int(r.Black),
		WhiteValue:     int(r.White),
		WLDSolved:      r.Flags&flagSolved != 0,
		IsRoot:         r.Flags&flagRoot != 0,
		Cutoff:         int(r.Cutoff),
		GameCounts:     r.Games,
	}
}

// checksum folds a byte stream into three accumulators, one 32 bit word at
// a time. A trailing 2 and 1 byte remainder are folded separately.
type checksum struct {
	a, b, c uint32
	pending [4]byte
	n       int
}

func (cs *checksum) Write(p []byte) (int, error) {
	for _, x := range p {
		cs.pending[cs.n] = x
		cs.n++
		if cs.n == len(cs.pending) {
			cs.mix(binary.LittleEndian.Uint32(cs.pending[:]))
			cs.n = 0
		}
	}
	return len(p), nil
}

func (cs *checksum) mix(w uint32) {
	cs.a += w + 0x9E3779B9
	cs.b = bits.RotateLeft32(cs.b^cs.a, 5) + w
	cs.c = (cs.c*31 + cs.b) ^ (cs.a >> 3)
}

func (cs checksum) Sum32() uint32 {
	var rest = cs.pending[:cs.n]
	if len(rest) >= 2 {
		cs.mix(uint32(binary.LittleEndian.Uint16(rest)) | 2<<16)
		rest = rest[2:]
	}
	if len(rest) == 1 {
		cs.mix(uint32(rest[0]) | 1<<16)
	}
	return cs.a ^ bits.RotateLeft32(cs.b, 11) ^ bits.RotateLeft32(cs.c, 22)
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Encode writes the book in file format: header, records from the most
// empties to the fewest, checksum.
func (bk *Book) Encode(w io.Writer) error {
	bk.mu.RLock()
	defer bk.mu.RUnlock()
	return bk.encode(w)
}

func (bk *Book) encode(w io.Writer) error {
	var bw = bufio.NewWriter(w)
	var cs checksum
	var mw = io.MultiWriter(bw, &cs)

	var count = 0
	for _, m := range bk.entries {
		count += len(m)
	}
	if err := binary.Write(mw, binary.LittleEndian, fileHeader{Version: fileVersion, Count: int32(count)}); err != nil {
		return err
	}
	for nEmpty := len(bk.entries) - 1; nEmpty >= 0; nEmpty-- {
		var m = bk.entries[nEmpty]
		var keys = lo.Keys(m)
		slices.SortFunc(keys, compareBoards)
		for _, b := range keys {
			if err := binary.Write(mw, binary.LittleEndian, newFileRecord(b, m[b])); err != nil {
				return err
			}
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, cs.Sum32()); err != nil {
		return err
	}
	return bw.Flush()
}

// Decode replaces the book content with the book read from r. Colored values
// are recomputed for the boni of bk.
func (bk *Book) Decode(r io.Reader) error {
	var br = bufio.NewReader(r)
	var cs checksum
	var tr = io.TeeReader(br, &cs)

	var header fileHeader
	if err := binary.Read(tr, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("book: read header: %w", err)
	}
	if header.Version != fileVersion {
		return fmt.Errorf("%w: %d", ErrVersion, header.Version)
	}
	if header.Count < 0 {
		return fmt.Errorf("book: bad entry count %d", header.Count)
	}

	var entries [61]map[Board]*Entry
	for i := range entries {
		entries[i] = make(map[Board]*Entry)
	}
	for i := 0; i < int(header.Count); i++ {
		var rec fileRecord
		if err := binary.Read(tr, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("book: read record %d: %w", i, err)
		}
		var b, e = rec.entry()
		if !b.IsValid() || b.NEmpty() > 60 {
			return fmt.Errorf("book: bad board in record %d", i)
		}
		entries[b.NEmpty()][b.Canonical()] = e
	}

	var sum uint32
	if err := binary.Read(br, binary.LittleEndian, &sum); err != nil {
		return fmt.Errorf("book: read checksum: %w", err)
	}
	if sum != cs.Sum32() {
		return ErrChecksum
	}

	bk.mu.Lock()
	defer bk.mu.Unlock()
	bk.entries = entries
	bk.applyBoni()
	return nil
}

// applyBoni recomputes the colored values of every entry for the boni of bk,
// children before parents. The stored values depend on the boni the file was
// written with. Leaves take the boni directly, branches the best of their
// book children.
func (bk *Book) applyBoni() {
	for nEmpty := range bk.entries {
		for b, e := range bk.entries[nEmpty] {
			if e.IsRoot {
				if best := maxSubnodeValues(bk.subnodes(b)); best.found {
					e.BlackValue, e.WhiteValue = best.black, best.white
					continue
				}
			}
			e.BlackValue, e.WhiteValue = bk.boni.values(e.HeuristicValue, e.WLDSolved)
		}
	}
}

// Save writes the book to path through a temporary file. A path ending in
// .zst is zstd compressed.
func (bk *Book) Save(path string) error {
	bk.mu.RLock()
	defer bk.mu.RUnlock()

	var tmp = path + ".tmp"
	var f, err = os.Create(tmp)
	if err != nil {
		return err
	}
	if err := bk.writeFile(f, isCompressed(path)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("book: save %v: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (bk *Book) writeFile(w io.Writer, compress bool) error {
	if !compress {
		return bk.encode(w)
	}
	var zw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := bk.encode(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Load reads a book file. A checksum mismatch is an error: the book must
// not be used.
func Load(path string, boni Boni, opts Options) (*Book, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		var zr, err = zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("book: create zstd decoder: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var bk = New(boni, opts)
	if err := bk.Decode(r); err != nil {
		bk.logger.Error().Err(err).Str("path", path).Msg("book load failed")
		return nil, err
	}
	bk.logger.Info().Str("path", path).Int("entries", bk.Len()).Msg("book loaded")
	return bk, nil
}

// Mirror saves the book to path every interval until ctx is done, then
// saves it once more.
func (bk *Book) Mirror(ctx context.Context, path string, interval time.Duration) error {
	var ticker = time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return bk.Save(path)
		case <-ticker.C:
			if err := bk.Save(path); err != nil {
				return err
			}
			bk.logger.Debug().Str("path", path).Msg("book mirrored")
		}
	}
}
