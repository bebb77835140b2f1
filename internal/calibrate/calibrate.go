// Package calibrate fits MPC statistics from pairs of shallow and deep
// searches of random positions.
package calibrate

import (
	"context"
	"errors"
	"runtime"
	"sync"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"
)

// Searcher runs fixed height searches. Calibration needs MPC disabled.
type Searcher interface {
	Clear()
	SearchFixed(ctx context.Context, b Board, hi engine.HeightInfo, moves uint64) (Move, int, bool)
}

type Config struct {
	Samples    int
	MinEmpties  int
	MaxEmpties  int
	MaxHeight   int
	// EmptiesBucket positions with nearby empties share one fit.
	EmptiesBucket int
	// MinPairs is the least number of pairs for a fit.
	MinPairs    int
	Concurrency int
	Confidence  []float64
	NewSearcher func() (Searcher, error)
	RNG         *frand.RNG
	Logger      zerolog.Logger
}

func (c *Config) setDefaults() {
	if c.MinEmpties <= 0 {
		c.MinEmpties = 20
	}
	if c.MaxEmpties <= 0 || c.MaxEmpties > 60 {
		c.MaxEmpties = 54
	}
	if c.MaxHeight < engine.MPCMinHeight {
		c.MaxHeight = 8
	}
	if c.EmptiesBucket <= 0 {
		c.EmptiesBucket = 6
	}
	if c.MinPairs <= 0 {
		c.MinPairs = 8
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if len(c.Confidence) == 0 {
		c.Confidence = engine.DefaultMPCTable().Confidence
	}
	if c.RNG == nil {
		c.RNG = frand.New()
	}
}

type pair struct {
	height  int
	nEmpty  int
	shallow float64
	deep    float64
}

type cellKey struct {
	height int
	bucket int
}

// Run searches Config.Samples random positions and fits a table. Cells
// without enough pairs are left empty so that MPC is not tried there.
func Run(ctx context.Context, config Config) (*engine.MPCTable, error) {
	if config.NewSearcher == nil {
		return nil, errors.New("calibrate: searcher not configured")
	}
	config.setDefaults()

	g, ctx := errgroup.WithContext(ctx)

	var boards = make(chan Board)
	var pairs = make(chan pair)

	g.Go(func() error {
		defer close(boards)
		for i := 0; i < config.Samples; i++ {
			var nEmpty = config.MinEmpties + config.RNG.Intn(config.MaxEmpties-config.MinEmpties+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case boards <- randomBoard(config.RNG, nEmpty):
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			var searcher, err = config.NewSearcher()
			if err != nil {
				return err
			}
			for b := range boards {
				if err := searchPairs(ctx, searcher, config.MaxHeight, b, pairs); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(pairs)
		return nil
	})

	var cells = make(map[cellKey][]pair)
	g.Go(func() error {
		for p := range pairs {
			var key = cellKey{p.height, p.nEmpty / config.EmptiesBucket}
			cells[key] = append(cells[key], p)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var table = &engine.MPCTable{Confidence: config.Confidence}
	for key, cell := range cells {
		if len(cell) < config.MinPairs {
			continue
		}
		var st, ok = fit(cell)
		if !ok {
			continue
		}
		st.ShallowHeight = engine.ShallowHeight(key.height)
		for nEmpty := key.bucket * config.EmptiesBucket; nEmpty < (key.bucket+1)*config.EmptiesBucket && nEmpty <= 60; nEmpty++ {
			table.Set(key.height, nEmpty, st)
		}
		config.Logger.Debug().
			Int("height", key.height).
			Int("empties", key.bucket*config.EmptiesBucket).
			Int("pairs", len(cell)).
			Float64("sd", st.Sd).
			Float64("ratio", st.Ratio).
			Msg("mpc fit")
	}
	return table, nil
}

// searchPairs sends a shallow and deep value for every calibrated height
// that does not reach the end of the game.
func searchPairs(ctx context.Context, searcher Searcher, maxHeight int, b Board, pairs chan<- pair) error {
	var nEmpty = b.NEmpty()
	searcher.Clear()
	for height := engine.MPCMinHeight; height <= maxHeight && height < nEmpty; height++ {
		var _, shallow, ok = searcher.SearchFixed(ctx, b,
			engine.HeightInfo{Height: engine.ShallowHeight(height)}, 0)
		if !ok {
			return ctx.Err()
		}
		_, deep, ok := searcher.SearchFixed(ctx, b, engine.HeightInfo{Height: height}, 0)
		if !ok {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pairs <- pair{height: height, nEmpty: nEmpty, shallow: float64(shallow), deep: float64(deep)}:
		}
	}
	return nil
}

// fit regresses shallow on deep through the origin. Sd is the spread of the
// deep value predicted from the shallow one.
func fit(cell []pair) (engine.MPCStat, bool) {
	var xs = make([]float64, len(cell))
	var ys = make([]float64, len(cell))
	for i, p := range cell {
		xs[i] = p.deep
		ys[i] = p.shallow
	}
	var _, ratio = stat.LinearRegression(xs, ys, nil, true)
	if !(ratio > 0) {
		return engine.MPCStat{}, false
	}
	var residuals = make([]float64, len(cell))
	for i := range cell {
		residuals[i] = ys[i]/ratio - xs[i]
	}
	return engine.MPCStat{
		Sd:    stat.StdDev(residuals, nil),
		Ratio: ratio,
	}, true
}

// randomBoard plays random moves from the initial position until nEmpty
// squares are left, starting over when the game ends first.
func randomBoard(rng *frand.RNG, nEmpty int) Board {
	for {
		var b = InitialBoard()
		for b.NEmpty() > nEmpty {
			var next, moves, pass = b.CalcMovesAndPass()
			if pass == PassGameOver {
				break
			}
			var candidates = MovesToSlice(moves)
			b = next.MakeMove(int(candidates[rng.Intn(len(candidates))]))
		}
		if b.NEmpty() == nEmpty && !b.IsGameOver() {
			return b
		}
	}
}
