package arena

import (
	"context"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"lukechampine.com/frand"
)

// loadOpenings sends every opening twice, once for each color of engine A.
func loadOpenings(
	ctx context.Context,
	config Config,
	gameInfos chan<- gameInfo,
) error {
	var rng = config.RNG
	if rng == nil {
		rng = frand.New()
	}
	for i := 0; i < config.Openings; i++ {
		var boards, blackToMove = randomOpening(rng, config.Book, config.OpeningPlies)
		for j, aIsBlack := range [2]bool{true, false} {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameInfos <- gameInfo{
				opening:        boards,
				blackToMove:    blackToMove,
				engineAIsBlack: aIsBlack,
				gameNumber:     1 + 2*i + j,
			}:
			}
		}
	}
	return nil
}

// randomOpening plays plies moves from the initial position. Book moves are
// preferred, otherwise a legal move is chosen uniformly. The opening stops
// early at the end of the game.
func randomOpening(rng *frand.RNG, book OpeningBook, plies int) ([]Board, bool) {
	var b = InitialBoard()
	var blackToMove = true
	var boards = []Board{b}
	for i := 0; i < plies; i++ {
		var next, moves, pass = b.CalcMovesAndPass()
		if pass == PassGameOver {
			break
		}
		if pass == PassOnce {
			blackToMove = !blackToMove
			boards = append(boards, next)
		}
		var move Move
		var ok bool
		if book != nil {
			move, _, ok = book.RandomMove(next, blackToMove)
		}
		if !ok {
			var candidates = MovesToSlice(moves)
			move = candidates[rng.Intn(len(candidates))]
		}
		b = next.MakeMove(int(move))
		blackToMove = !blackToMove
		boards = append(boards, b)
	}
	return boards, blackToMove
}
