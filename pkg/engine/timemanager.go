package engine

import (
	"time"
)

// RoundPolicy decides whether the next iterative deepening round may start.
type RoundPolicy interface {
	RoundOK(hi HeightInfo, nEmpty int, elapsed, remaining time.Duration) bool
}

// hardLimiter is implemented by policies that also bound a running round.
type hardLimiter interface {
	HardLimit(nEmpty int, remaining time.Duration) time.Duration
}

// FixedHeight searches up to Height. When Height reaches the end of the
// game every endgame round is allowed.
type FixedHeight struct {
	Height int
}

func (p FixedHeight) RoundOK(hi HeightInfo, nEmpty int, elapsed, remaining time.Duration) bool {
	if hi.Height >= nEmpty {
		return p.Height >= nEmpty
	}
	return hi.Height <= p.Height
}

type Infinite struct{}

func (Infinite) RoundOK(hi HeightInfo, nEmpty int, elapsed, remaining time.Duration) bool {
	return true
}

// TimeControl spends a share of the remaining game time on each move.
type TimeControl struct {
	Increment time.Duration
}

func (tc TimeControl) RoundOK(hi HeightInfo, nEmpty int, elapsed, remaining time.Duration) bool {
	var soft, _ = calcLimits(elapsed+remaining, tc.Increment, nEmpty)
	return elapsed < soft
}

func (tc TimeControl) HardLimit(nEmpty int, remaining time.Duration) time.Duration {
	var _, hard = calcLimits(remaining, tc.Increment, nEmpty)
	return hard
}

func calcLimits(main, inc time.Duration, nEmpty int) (soft, hard time.Duration) {
	const (
		MoveOverhead = 100 * time.Millisecond
		MinTimeLimit = 1 * time.Millisecond
		// endgame moves after this are solved almost instantly
		SolvedEmpties = 12
	)

	main -= MoveOverhead
	if main < MinTimeLimit {
		main = MinTimeLimit
	}

	var moves = (nEmpty-SolvedEmpties)/2 + 1
	if moves < 1 {
		moves = 1
	}
	soft = (main/time.Duration(moves+1) + inc) * 7 / 10
	hard = (main/time.Duration(moves+1) + inc) * 21 / 10

	hard = limitDuration(hard, MinTimeLimit, main)
	soft = limitDuration(soft, MinTimeLimit, main)
	return
}

func limitDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
