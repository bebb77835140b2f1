package arena

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"
)

func collectResults(
	ctx context.Context,
	config Config,
	gameResults <-chan gameResult,
) (Result, error) {
	var wins, losses, draws int
	var margins []float64
	for gameResult := range gameResults {
		var margin = gameResult.margin
		if !gameResult.gameInfo.engineAIsBlack {
			margin = -margin
		}
		switch {
		case margin > 0:
			wins++
		case margin < 0:
			losses++
		default:
			draws++
		}
		margins = append(margins, float64(margin))
		if config.RecordGames && config.Book != nil {
			config.Book.AddGame(gameResult.boards, false)
		}
		config.Logger.Info().
			Int("game", gameResult.gameInfo.gameNumber).
			Str("result", gameResultString(gameResult.result)).
			Str("margin", gameResult.comment).
			Int("wins", wins).
			Int("losses", losses).
			Int("draws", draws).
			Msg("finished game")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return computeStat(wins, losses, draws, margins), nil
}

// https://www.chessprogramming.org/Match_Statistics
func computeStat(wins, losses, draws int, margins []float64) Result {
	var result = Result{
		Games:  wins + losses + draws,
		Wins:   wins,
		Losses: losses,
		Draws:  draws,
	}
	if result.Games == 0 {
		return result
	}
	result.Score = (float64(wins) + 0.5*float64(draws)) / float64(result.Games)
	result.Elo = -math.Log(1/result.Score-1) * 400 / math.Ln10
	if wins+losses > 0 {
		result.LOS = 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	}
	result.MeanMargin, result.StdMargin = stat.MeanStdDev(margins, nil)
	if len(margins) < 2 {
		result.StdMargin = 0
	}
	return result
}

func gameResultString(v int) string {
	switch v {
	case gameResultBlackWins:
		return "black"
	case gameResultWhiteWins:
		return "white"
	case gameResultDraw:
		return "draw"
	}
	return ""
}
