package common

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrBadSquare    = errors.New("bad square")
	ErrBadBoardText = errors.New("bad board text")
)

// Board is a position seen from the side to move. Opponent discs are the
// squares that are neither Mover nor Empty.
type Board struct {
	Mover uint64
	Empty uint64
}

const (
	PassNone = iota
	PassOnce
	PassGameOver
)

func InitialBoard() Board {
	return Board{
		Mover: SquareMask(SquareE4) | SquareMask(SquareD5),
		Empty: ^(SquareMask(SquareD4) | SquareMask(SquareE4) | SquareMask(SquareD5) | SquareMask(SquareE5)),
	}
}

func (b Board) Opponent() uint64 {
	return ^(b.Mover | b.Empty)
}

func (b Board) IsValid() bool {
	return b.Mover&b.Empty == 0
}

func (b Board) NEmpty() int {
	return PopCount(b.Empty)
}

func (b Board) Less(other Board) bool {
	if b.Mover != other.Mover {
		return b.Mover < other.Mover
	}
	return b.Empty < other.Empty
}

func (b Board) LegalMoves() uint64 {
	return ops.MoveMask(b.Mover, b.Opponent())
}

func (b Board) OpponentMoves() uint64 {
	return ops.MoveMask(b.Opponent(), b.Mover)
}

func (b Board) HasMoves() bool {
	return b.LegalMoves() != 0
}

func (b Board) MobilityCounts() (mover, opponent int) {
	return PopCount(b.LegalMoves()), PopCount(b.OpponentMoves())
}

func (b Board) Flips(sq int) uint64 {
	if sq < 0 || sq >= 64 || b.Empty&SquareMask(sq) == 0 {
		return 0
	}
	return ops.Flips(b.Mover, b.Opponent(), sq)
}

// Play places a disc for the mover and returns the position with the opponent to move.
func (b Board) Play(move Move) (Board, error) {
	if move == MovePass {
		if b.HasMoves() {
			return Board{}, fmt.Errorf("%w: pass with legal moves", ErrIllegalMove)
		}
		return b.Pass(), nil
	}
	if !move.IsSquare() {
		return Board{}, fmt.Errorf("%w: %v", ErrIllegalMove, move)
	}
	var sq = int(move)
	if b.Empty&SquareMask(sq) == 0 {
		return Board{}, fmt.Errorf("%w: %v is occupied", ErrIllegalMove, move)
	}
	var flips = b.Flips(sq)
	if flips == 0 {
		return Board{}, fmt.Errorf("%w: %v flips nothing", ErrIllegalMove, move)
	}
	return b.playFlips(sq, flips), nil
}

// MakeMove is Play without validation; the caller guarantees the move is legal.
func (b Board) MakeMove(sq int) Board {
	return b.playFlips(sq, ops.Flips(b.Mover, b.Opponent(), sq))
}

func (b Board) playFlips(sq int, flips uint64) Board {
	var mover = b.Mover | flips | SquareMask(sq)
	var empty = b.Empty &^ SquareMask(sq)
	return Board{
		Mover: ^(mover | empty),
		Empty: empty,
	}
}

func (b Board) Pass() Board {
	return Board{
		Mover: b.Opponent(),
		Empty: b.Empty,
	}
}

// CalcMovesAndPass passes while the side to move has no legal move.
// The pass code is PassNone, PassOnce or PassGameOver.
func (b Board) CalcMovesAndPass() (Board, uint64, int) {
	var moves = b.LegalMoves()
	if moves != 0 {
		return b, moves, PassNone
	}
	var passed = b.Pass()
	moves = passed.LegalMoves()
	if moves != 0 {
		return passed, moves, PassOnce
	}
	return b, 0, PassGameOver
}

func (b Board) IsGameOver() bool {
	return !b.HasMoves() && !b.Pass().HasMoves()
}

// CountDiscs returns mover discs and opponent discs.
func (b Board) CountDiscs() (mover, opponent int) {
	return PopCount(b.Mover), PopCount(b.Opponent())
}

// NetDiscs is mover discs minus opponent discs, empties going to the side that is ahead.
func (b Board) NetDiscs() int {
	var mover, opponent = b.CountDiscs()
	var net = mover - opponent
	var empties = b.NEmpty()
	if net > 0 {
		net += empties
	} else if net < 0 {
		net -= empties
	}
	return net
}

func (b Board) TerminalValue() int {
	return b.NetDiscs() * StoneValue
}

func (b Board) Hash() uint64 {
	var h = b.Mover*0x9E3779B97F4A7C15 ^ bits.RotateLeft64(b.Empty*0xC2B2AE3D27D4EB4F, 31)
	h ^= h >> 29
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 32
	return h
}
