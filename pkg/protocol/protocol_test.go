package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/endgame"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	eval "github.com/ChizhovVadim/CounterReversi/pkg/eval/material"
	"github.com/rs/zerolog"
)

func newTestProtocol(input string) (*Protocol, *engine.Engine, *bytes.Buffer) {
	var options = engine.NewOptions()
	options.Hash = 1
	var eng = engine.NewEngine(options, eval.NewEvaluationService(), endgame.NewSolver())
	var out = &bytes.Buffer{}
	var p = New("test", "dev", eng, nil,
		[]Option{
			&IntOption{Key: "Hash", Min: 1, Max: 1024, Value: &eng.Options.Hash},
			&BoolOption{Key: "UseBook", Value: &eng.Options.UseBook},
		},
		strings.NewReader(input), out)
	return p, eng, out
}

func TestPositionCommand(t *testing.T) {
	var p, _, _ = newTestProtocol("")
	if err := p.handle("position startpos moves f5 d6 c3"); err != nil {
		t.Fatal(err)
	}
	var want = InitialBoard().MakeMove(SquareF5).MakeMove(SquareD6).MakeMove(SquareC3)
	if pos := p.current(); pos.board != want || pos.blackToMove {
		t.Error(pos)
	}

	if err := p.handle("position startpos moves a1"); !errors.Is(err, ErrIllegalMove) {
		t.Error(err)
	}
	if err := p.handle("position startpos moves pa"); !errors.Is(err, ErrIllegalMove) {
		t.Error(err)
	}

	var text = InitialBoard().MakeMove(SquareF5).Text(false)
	if err := p.handle("position board " + text + " white moves f6"); err != nil {
		t.Fatal(err)
	}
	if pos := p.current(); !pos.blackToMove || pos.board != InitialBoard().MakeMove(SquareF5).MakeMove(SquareF6) {
		t.Error(pos)
	}
	if err := p.handle("position board ...* black"); !errors.Is(err, ErrBadBoardText) {
		t.Error(err)
	}
}

func TestSetOption(t *testing.T) {
	var p, eng, _ = newTestProtocol("")
	if err := p.handle("setoption name hash value 64"); err != nil {
		t.Fatal(err)
	}
	if eng.Options.Hash != 64 {
		t.Error(eng.Options.Hash)
	}
	if err := p.handle("setoption name Hash value 4096"); err == nil {
		t.Error("out of range value accepted")
	}
	if err := p.handle("setoption name UseBook value false"); err != nil || eng.Options.UseBook {
		t.Error(err)
	}
	if err := p.handle("fly"); !errors.Is(err, errCommandNotFound) {
		t.Error(err)
	}
}

func TestDiscOption(t *testing.T) {
	var value = 150
	var opt = &DiscOption{Key: "Contempt", Limit: 64, Value: &value}
	if got := opt.String(); got != "option name Contempt type string default 1.5" {
		t.Error(got)
	}
	if err := opt.Set("-2.25"); err != nil || value != -225 {
		t.Error(err, value)
	}
	for _, bad := range []string{"65", "x", "NaN"} {
		if err := opt.Set(bad); err == nil {
			t.Error("accepted", bad)
		}
	}
	if value != -225 {
		t.Error("rejected value was stored", value)
	}
}

func TestParseLimits(t *testing.T) {
	var l = parseLimits(strings.Fields("btime 60000 wtime 30000 binc 1000 winc 500"), false)
	if l.remaining != 30*time.Second || l.increment != 500*time.Millisecond {
		t.Error(l)
	}
	if _, ok := l.policy().(engine.TimeControl); !ok {
		t.Error(l.policy())
	}
	l = parseLimits(strings.Fields("height 7"), true)
	if l.policy() != (engine.FixedHeight{Height: 7}) {
		t.Error(l.policy())
	}
	l = parseLimits(strings.Fields("infinite"), true)
	if !l.infinite {
		t.Error(l)
	}
	// a missing value does not panic
	parseLimits(strings.Fields("height"), true)
}

func TestRunGo(t *testing.T) {
	var p, _, out = newTestProtocol("protocol\nisready\nposition startpos moves f5\ngo height 3\n")
	p.Run(zerolog.Nop())

	var lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "id name test") {
		t.Error(lines[0])
	}
	if !strings.Contains(out.String(), "protocolok") || !strings.Contains(out.String(), "readyok") {
		t.Error(out.String())
	}
	var last = lines[len(lines)-1]
	if !strings.HasPrefix(last, "bestmove ") {
		t.Fatal(last)
	}
	var m, err = ParseMove(strings.TrimPrefix(last, "bestmove "))
	if err != nil {
		t.Fatal(err)
	}
	var b = InitialBoard().MakeMove(SquareF5)
	if b.LegalMoves()&SquareMask(int(m)) == 0 {
		t.Error("illegal best move", m)
	}
	if !strings.Contains(out.String(), "info height 3") {
		t.Error(out.String())
	}
}

func TestRunQuitStopsSearch(t *testing.T) {
	var p, _, out = newTestProtocol("go infinite\nquit\n")
	var done = make(chan struct{})
	go func() {
		p.Run(zerolog.Nop())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("quit did not stop the search")
	}
	if !strings.Contains(out.String(), "bestmove ") {
		t.Error(out.String())
	}
}
