package engine

import (
	"context"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// firstHeight returns the first round of an iterative deepening search.
func (e *Engine) firstHeight(nEmpty int) HeightInfo {
	if nEmpty <= e.Options.SolverThreshold {
		return HeightInfo{Height: nEmpty}
	}
	var hi, _ = e.nextHeight(HeightInfo{Prune: e.Options.midgamePrune()}, nEmpty)
	return hi
}

// nextHeight returns the round after hi. Midgame heights grow by one until
// the solver is in reach. Then the endgame is searched for win/loss/draw with
// decreasing prune, and finally exactly.
func (e *Engine) nextHeight(hi HeightInfo, nEmpty int) (HeightInfo, bool) {
	if hi.Height < nEmpty {
		var height = hi.Height + 1
		if height+e.Options.SolverThreshold >= nEmpty {
			return HeightInfo{Height: nEmpty, Prune: e.Options.endgamePrune(), WLD: true}, true
		}
		return HeightInfo{Height: height, Prune: e.Options.midgamePrune()}, true
	}
	if hi.Prune > 0 {
		return HeightInfo{Height: nEmpty, Prune: hi.Prune - 1, WLD: hi.WLD}, true
	}
	if hi.WLD {
		return HeightInfo{Height: nEmpty}, true
	}
	return hi, false
}

func rootWindow(hi HeightInfo) (alpha, beta int) {
	if hi.WLD {
		return -1, 1
	}
	return -ValueInfinity, ValueInfinity
}

// Search runs iterative deepening rounds from params.Board until the policy
// refuses a round, the schedule ends or ctx is cancelled. The result of an
// interrupted round is discarded. A single legal move is searched for one round.
func (e *Engine) Search(ctx context.Context, params SearchParams) SearchInfo {
	var start = time.Now()
	e.Prepare()
	var logger = e.Options.Logger

	var board, moves, pass = params.Board.CalcMovesAndPass()
	switch pass {
	case PassGameOver:
		return SearchInfo{
			Board: params.Board,
			Move:  MoveNone,
			Value: params.Board.TerminalValue(),
			Time:  time.Since(start),
		}
	case PassOnce:
		return e.searchPassed(ctx, params, board)
	}

	if e.Options.UseBook && e.book != nil {
		if move, value, ok := e.book.Lookup(board); ok {
			logger.Debug().
				Str("move", move.String()).
				Int("value", value).
				Msg("book move")
			return SearchInfo{
				Board:    board,
				Move:     move,
				Value:    value,
				FromBook: true,
				PV:       []Move{move},
				Time:     time.Since(start),
			}
		}
	}

	var ms = NewMoveSet(moves, MoveNone)
	var first, _ = ms.Next()
	var result = SearchInfo{Board: board, Move: first, PV: []Move{first}}
	// a forced move gets only the first round, which gives its value
	var forced = ms.Count() == 1

	var nEmpty = board.NEmpty()
	var policy = params.Policy
	if policy == nil {
		policy = Infinite{}
	}
	if hl, ok := policy.(hardLimiter); ok && params.Remaining > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, start.Add(hl.HardLimit(nEmpty, params.Remaining)))
		defer cancel()
	}
	var stop = e.watch(ctx)
	defer stop()

	var t = e.sc
	for hi, ok := e.firstHeight(nEmpty), true; ok; hi, ok = e.nextHeight(hi, nEmpty) {
		var elapsed = time.Since(start)
		if !forced && !policy.RoundOK(hi, nEmpty, elapsed, params.Remaining-elapsed) ||
			e.abort.IsSet() {
			break
		}
		t.cache.SetStale()
		var alpha, beta = rootWindow(hi)
		var move, value = t.searchRoot(board, moves, hi, alpha, beta, result.Move)
		if t.aborted {
			logger.Debug().Str("height", hi.String()).Msg("round aborted")
			break
		}
		result = SearchInfo{
			Board:  board,
			Move:   move,
			Value:  value,
			Height: hi,
			Nodes:  t.nodes,
			Time:   time.Since(start),
			PV:     e.principalVariation(board, move),
		}
		logger.Debug().
			Str("height", hi.String()).
			Str("move", move.String()).
			Int("value", value).
			Int64("nodes", t.nodes).
			Dur("time", result.Time).
			Msg("round complete")
		if params.Progress != nil {
			params.Progress(result)
		}
		if forced {
			break
		}
	}

	result.Nodes = t.nodes
	result.Time = time.Since(start)
	return result
}

// searchPassed searches the position after a forced pass and reports it as
// a pass from the point of view of the player who passes.
func (e *Engine) searchPassed(ctx context.Context, params SearchParams, passed Board) SearchInfo {
	var fromPassed = func(si SearchInfo) SearchInfo {
		si.Board = params.Board
		si.Move = MovePass
		si.Value = -si.Value
		si.PV = append([]Move{MovePass}, si.PV...)
		return si
	}
	var child = params
	child.Board = passed
	if params.Progress != nil {
		child.Progress = func(si SearchInfo) {
			params.Progress(fromPassed(si))
		}
	}
	return fromPassed(e.Search(ctx, child))
}

// SearchFixed searches b to height hi, considering only the moves in the
// mask (all legal moves when the mask is zero). The value is from the point of
// view of the player to move in b. ok is false when the search was cancelled
// or no candidate move exists.
func (e *Engine) SearchFixed(ctx context.Context, b Board, hi HeightInfo, moves uint64) (move Move, value int, ok bool) {
	e.Prepare()
	var board, legal, pass = b.CalcMovesAndPass()
	if pass == PassGameOver {
		return MoveNone, b.TerminalValue(), true
	}
	if pass == PassOnce || moves == 0 {
		moves = legal
	} else {
		moves &= legal
	}
	if moves == 0 {
		return MoveNone, 0, false
	}

	var stop = e.watch(ctx)
	defer stop()

	var t = e.sc
	var nEmpty = board.NEmpty()
	if hi.Height >= nEmpty {
		hi.Height = nEmpty
	}
	hi.Prune = clampPrune(hi.Prune, e.Options.MPC)

	move = MoveNone
	for height := 1; height < hi.Height && height+e.Options.SolverThreshold < nEmpty; height++ {
		t.cache.SetStale()
		move, _ = t.searchRoot(board, moves, HeightInfo{Height: height, Prune: hi.Prune}, -ValueInfinity, ValueInfinity, move)
		if t.aborted {
			return MoveNone, 0, false
		}
	}
	t.cache.SetStale()
	var alpha, beta = rootWindow(hi)
	move, value = t.searchRoot(board, moves, hi, alpha, beta, move)
	if t.aborted {
		return MoveNone, 0, false
	}
	if pass == PassOnce {
		return MovePass, -value, true
	}
	return move, value, true
}
