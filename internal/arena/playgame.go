package arena

import (
	"context"
	"fmt"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
)

func playGame(
	ctx context.Context,
	engineA, engineB IEngine,
	config Config,
	info gameInfo,
) (gameResult, error) {

	config.Logger.Debug().Int("game", info.gameNumber).Msg("started game")

	engineA.Clear()
	engineB.Clear()

	var boards = append([]Board(nil), info.opening...)
	var blackToMove = info.blackToMove

	for {
		if err := ctx.Err(); err != nil {
			return gameResult{}, err
		}
		var cur = boards[len(boards)-1]
		var next, moves, pass = cur.CalcMovesAndPass()
		if pass == PassGameOver {
			return finishGame(info, boards, cur, blackToMove), nil
		}
		if pass == PassOnce {
			blackToMove = !blackToMove
			boards = append(boards, next)
		}

		var eng = engineB
		if blackToMove == info.engineAIsBlack {
			eng = engineA
		}
		var searchCtx, cancel = moveContext(ctx, config)
		var si = eng.Search(searchCtx, engine.SearchParams{
			Board:  next,
			Policy: config.Policy,
		})
		cancel()
		if !si.Move.IsSquare() || moves&SquareMask(int(si.Move)) == 0 {
			return gameResult{}, fmt.Errorf("game %v: bad move %v", info.gameNumber, si.Move)
		}
		boards = append(boards, next.MakeMove(int(si.Move)))
		blackToMove = !blackToMove
	}
}

func moveContext(ctx context.Context, config Config) (context.Context, context.CancelFunc) {
	if config.MoveTime > 0 {
		return context.WithTimeout(ctx, config.MoveTime)
	}
	return context.WithCancel(ctx)
}

func finishGame(info gameInfo, boards []Board, final Board, blackToMove bool) gameResult {
	var margin = final.NetDiscs()
	if !blackToMove {
		margin = -margin
	}
	var result = gameResultDraw
	switch {
	case margin > 0:
		result = gameResultBlackWins
	case margin < 0:
		result = gameResultWhiteWins
	}
	return gameResult{
		gameInfo: info,
		boards:   boards,
		margin:   margin,
		result:   result,
		comment:  fmt.Sprintf("%+d", margin),
	}
}
