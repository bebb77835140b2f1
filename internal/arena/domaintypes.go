package arena

import (
	"context"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"
)

const (
	gameResultDraw = iota
	gameResultBlackWins
	gameResultWhiteWins
)

type IEngine interface {
	Clear()
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

// OpeningBook supplies opening moves and counts the games played through it.
type OpeningBook interface {
	RandomMove(b Board, blackToMove bool) (Move, int, bool)
	AddGame(boards []Board, public bool) int
}

type Config struct {
	// Openings is the number of openings. Each one is played twice with
	// colors reversed.
	Openings    int
	Concurrency int
	// OpeningPlies random plies are played from the initial position,
	// taken from Book where it has a move.
	OpeningPlies int
	Policy       engine.RoundPolicy
	MoveTime     time.Duration
	Book         OpeningBook
	// RecordGames adds the finished games to Book.
	RecordGames bool
	NewEngineA  func() (IEngine, error)
	NewEngineB  func() (IEngine, error)
	RNG         *frand.RNG
	Logger      zerolog.Logger
}

type gameInfo struct {
	opening        []Board
	blackToMove    bool
	engineAIsBlack bool
	gameNumber     int
}

type gameResult struct {
	gameInfo gameInfo
	boards   []Board
	// margin is the final disc difference for black.
	margin  int
	result  int
	comment string
}

// Result summarizes a match from the point of view of engine A.
type Result struct {
	Games      int
	Wins       int
	Losses     int
	Draws      int
	MeanMargin float64
	StdMargin  float64
	Score      float64
	Elo        float64
	LOS        float64
}
