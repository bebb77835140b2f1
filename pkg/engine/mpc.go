package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// MPCStat relates a deep search to a shallow one: deep ~ shallow/Ratio with
// standard deviation Sd.
type MPCStat struct {
	ShallowHeight int     `json:"shallow"`
	Sd            float64 `json:"sd"`
	Ratio         float64 `json:"ratio"`
}

// MPCTable holds MPC statistics indexed by height and empties, and the
// confidence multiplier of each prune level.
type MPCTable struct {
	Confidence []float64   `json:"confidence"`
	Stats      [][]MPCStat `json:"stats"`
}

const (
	MPCMinHeight = 3
	mpcMaxHeight = 32
)

func (t *MPCTable) Stat(height, nEmpty int) (MPCStat, bool) {
	if t == nil || height < 0 || height >= len(t.Stats) {
		return MPCStat{}, false
	}
	var row = t.Stats[height]
	if nEmpty < 0 || nEmpty >= len(row) {
		return MPCStat{}, false
	}
	var stat = row[nEmpty]
	if stat.ShallowHeight <= 0 || stat.ShallowHeight >= height || stat.Ratio <= 0 {
		return MPCStat{}, false
	}
	return stat, true
}

func (t *MPCTable) ConfidenceFor(prune int) float64 {
	if t == nil || prune <= 0 || len(t.Confidence) == 0 {
		return 0
	}
	return t.Confidence[Min(prune, len(t.Confidence)-1)]
}

func (t *MPCTable) MaxPrune() int {
	if t == nil {
		return 0
	}
	return len(t.Confidence) - 1
}

func (t *MPCTable) Set(height, nEmpty int, stat MPCStat) {
	for len(t.Stats) <= height {
		t.Stats = append(t.Stats, nil)
	}
	for len(t.Stats[height]) <= nEmpty {
		t.Stats[height] = append(t.Stats[height], MPCStat{})
	}
	t.Stats[height][nEmpty] = stat
}

// Bounds returns the shallow search bounds that predict a deep fail high
// above beta and a deep fail low below alpha.
func (s MPCStat) Bounds(alpha, beta int, confidence float64) (low, high int) {
	var margin = confidence * s.Sd
	high = int(math.Ceil((float64(beta) + margin) * s.Ratio))
	low = int(math.Floor((float64(alpha) - margin) * s.Ratio))
	return
}

// ShallowHeight is the height of the probing search for a deep search of height.
// Both have the same parity.
func ShallowHeight(height int) int {
	var shallow = height / 2
	if (height-shallow)%2 != 0 {
		shallow--
	}
	return Max(shallow, 1)
}

// DefaultMPCTable returns approximate statistics. Calibrated tables from
// cmd/mpccalib should replace it for serious play.
func DefaultMPCTable() *MPCTable {
	var t = &MPCTable{
		Confidence: []float64{0, 2.0, 1.6, 1.2, 0.8},
	}
	for height := MPCMinHeight; height <= mpcMaxHeight; height++ {
		var shallow = ShallowHeight(height)
		for nEmpty := 0; nEmpty <= 60; nEmpty++ {
			var sd = StoneValue * (1.5 + 0.1*float64(height-shallow) + 0.03*float64(nEmpty))
			t.Set(height, nEmpty, MPCStat{ShallowHeight: shallow, Sd: sd, Ratio: 1})
		}
	}
	return t
}

func LoadMPCTable(r io.Reader) (*MPCTable, error) {
	var t MPCTable
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("mpc table: %w", err)
	}
	if len(t.Confidence) == 0 {
		return nil, fmt.Errorf("mpc table: no confidence levels")
	}
	return &t, nil
}

func (t *MPCTable) Save(w io.Writer) error {
	var enc = json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(t)
}
