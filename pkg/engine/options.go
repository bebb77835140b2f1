package engine

import (
	"github.com/rs/zerolog"
)

type Options struct {
	Hash               int
	SolverThreshold    int
	MidgamePrune       int
	EndgamePrune       int
	SortHeight         int
	MobilitySortHeight int
	PollInterval       int
	UseBook            bool
	MPC                *MPCTable
	Logger             zerolog.Logger
}

func NewOptions() Options {
	return Options{
		Hash:               16,
		SolverThreshold:    8,
		MidgamePrune:       2,
		EndgamePrune:       3,
		SortHeight:         4,
		MobilitySortHeight: 2,
		PollInterval:       1024,
		UseBook:            true,
		MPC:                DefaultMPCTable(),
		Logger:             zerolog.Nop(),
	}
}

func (o *Options) midgamePrune() int {
	return clampPrune(o.MidgamePrune, o.MPC)
}

func (o *Options) endgamePrune() int {
	return clampPrune(o.EndgamePrune, o.MPC)
}

func clampPrune(prune int, mpc *MPCTable) int {
	if prune < 0 {
		return 0
	}
	if prune > mpc.MaxPrune() {
		return mpc.MaxPrune()
	}
	return prune
}

func (o *Options) pollMask() int64 {
	return int64(roundPowerOfTwo(o.PollInterval) - 1)
}
