package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/ChizhovVadim/CounterReversi/internal/registry"
	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/ChizhovVadim/CounterReversi/pkg/protocol"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

/*
CounterReversi Copyright (C) 2017-2023 Vadim Chizhov
This program is free software: you can redistribute it and/or modify it under the terms of the GNU General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.
This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for more details.
You should have received a copy of the GNU General Public License along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

const (
	name = "CounterReversi"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
	flgEval     string
	flgBook     string
	flgMPC      string
	flgProfile  string
	flgDebug    bool
)

func main() {
	flag.StringVar(&flgEval, "eval", "", "specifies evaluation function")
	flag.StringVar(&flgBook, "book", "", "opening book file")
	flag.StringVar(&flgMPC, "mpc", "", "calibrated MPC table (json)")
	flag.StringVar(&flgProfile, "profile", "", "cpu or mem profile of the session")
	flag.BoolVar(&flgDebug, "debug", false, "log every search round")
	flag.Parse()

	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !flgDebug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	switch flgProfile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	logger.Info().
		Str("VersionName", versionName).
		Str("BuildDate", buildDate).
		Str("GitRevision", gitRevision).
		Str("RuntimeVersion", runtime.Version()).
		Str("GOARCH", runtime.GOARCH).
		Str("GOOS", runtime.GOOS).
		Int("NumCPU", runtime.NumCPU()).
		Msg(name)

	var reg = registry.New()
	evaluator, err := reg.Evaluator(flgEval)
	if err != nil {
		logger.Fatal().Err(err).Strs("known", reg.Keys()).Msg("bad eval")
	}

	var options = engine.NewOptions()
	options.Logger = logger
	if flgMPC != "" {
		table, err := loadMPCTable(flgMPC)
		if err != nil {
			logger.Fatal().Err(err).Msg("load mpc table")
		}
		options.MPC = table
	}

	var eng = &bookEngine{
		Engine:   engine.NewEngine(options, evaluator, endgame.NewSolver()),
		registry: reg,
		path:     flgBook,
		boni:     book.DefaultBoni(),
		logger:   logger,
	}

	var p = protocol.New(name, versionName, eng, eng,
		[]protocol.Option{
			&protocol.IntOption{Key: "Hash", Min: 0, Max: 1 << 14, Value: &eng.Options.Hash},
			&protocol.IntOption{Key: "SolverThreshold", Min: 0, Max: 20, Value: &eng.Options.SolverThreshold},
			&protocol.IntOption{Key: "MidgamePrune", Min: 0, Max: options.MPC.MaxPrune(), Value: &eng.Options.MidgamePrune},
			&protocol.IntOption{Key: "EndgamePrune", Min: 0, Max: options.MPC.MaxPrune(), Value: &eng.Options.EndgamePrune},
			&protocol.BoolOption{Key: "UseBook", Value: &eng.Options.UseBook},
			&protocol.DiscOption{Key: "Contempt", Limit: 64, Value: &eng.contempt},
			&protocol.DiscOption{Key: "BlackBonus", Limit: 64, Value: &eng.boni.Black},
			&protocol.DiscOption{Key: "WhiteBonus", Limit: 64, Value: &eng.boni.White},
			&protocol.DiscOption{Key: "DrawBonus", Limit: 64, Value: &eng.boni.Draw},
		},
		os.Stdin, os.Stdout,
	)
	p.Run(logger)
}
