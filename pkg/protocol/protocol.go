package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/rs/zerolog"
)

var (
	errCommandNotFound = errors.New("command not found")
	errSearchRunning   = errors.New("search still run")
)

type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

// BookMover suggests book moves for a player of a given color.
type BookMover interface {
	RandomMove(b Board, blackToMove bool) (Move, int, bool)
}

type position struct {
	board       Board
	blackToMove bool
}

func (p position) play(m Move) (position, error) {
	if m == MovePass {
		if p.board.HasMoves() {
			return position{}, fmt.Errorf("%w: pass with legal moves", ErrIllegalMove)
		}
		return position{board: p.board.Pass(), blackToMove: !p.blackToMove}, nil
	}
	var child, err = p.board.Play(m)
	if err != nil {
		return position{}, err
	}
	return position{board: child, blackToMove: !p.blackToMove}, nil
}

// Protocol is a line oriented control surface in the manner of UCI.
type Protocol struct {
	name         string
	version      string
	options      []Option
	engine       Engine
	book         BookMover
	in           io.Reader
	out          io.Writer
	positions    []position
	thinking     bool
	engineOutput chan engine.SearchInfo
	cancel       context.CancelFunc
}

func New(name, version string, eng Engine, book BookMover, options []Option, in io.Reader, out io.Writer) *Protocol {
	return &Protocol{
		name:      name,
		version:   version,
		engine:    eng,
		book:      book,
		options:   options,
		in:        in,
		out:       out,
		positions: []position{{board: InitialBoard(), blackToMove: true}},
	}
}

// Run processes commands until quit or the end of input. At the end of input
// a running search is completed, quit stops it.
func (p *Protocol) Run(logger zerolog.Logger) {
	var commands = make(chan string)

	go func() {
		defer close(commands)
		p.readCommands(commands)
	}()

	var searchResult engine.SearchInfo
	for commands != nil || p.thinking {
		select {
		case si, ok := <-p.engineOutput:
			if ok {
				fmt.Fprintln(p.out, searchInfoString(si))
				searchResult = si
			} else {
				fmt.Fprintf(p.out, "bestmove %v\n", searchResult.Move)
				p.thinking = false
				p.cancel = nil
				p.engineOutput = nil
				searchResult = engine.SearchInfo{}
			}
		case commandLine, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if commandLine == "quit" {
				commands = nil
				if p.thinking {
					p.cancel()
				}
				continue
			}
			var err = p.handle(commandLine)
			if err != nil {
				logger.Warn().Err(err).Str("command", commandLine).Msg("command failed")
			}
		}
	}
}

func (p *Protocol) readCommands(commands chan<- string) {
	var scanner = bufio.NewScanner(p.in)
	for scanner.Scan() {
		var commandLine = strings.TrimSpace(scanner.Text())
		if commandLine != "" {
			commands <- commandLine
		}
		if commandLine == "quit" {
			return
		}
	}
}

func (p *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if p.thinking {
		if commandName == "stop" {
			p.cancel()
			return nil
		}
		return errSearchRunning
	}

	var h func(fields []string) error

	switch commandName {
	case "protocol":
		h = p.protocolCommand
	case "setoption":
		h = p.setOptionCommand
	case "isready":
		h = p.isReadyCommand
	case "newgame":
		h = p.newGameCommand
	case "position":
		h = p.positionCommand
	case "go":
		h = p.goCommand
	case "book":
		h = p.bookCommand
	case "show":
		h = p.showCommand
	case "stop":
		return nil
	}

	if h == nil {
		return errCommandNotFound
	}

	return h(fields)
}

func (p *Protocol) protocolCommand(fields []string) error {
	fmt.Fprintf(p.out, "id name %s %s\n", p.name, p.version)
	for _, option := range p.options {
		fmt.Fprintln(p.out, option.String())
	}
	fmt.Fprintln(p.out, "protocolok")
	return nil
}

func (p *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 {
		return errors.New("invalid setoption arguments")
	}
	var name, value = fields[1], fields[3]
	for _, option := range p.options {
		if strings.EqualFold(option.Name(), name) {
			return option.Set(value)
		}
	}
	return errors.New("unhandled option")
}

func (p *Protocol) isReadyCommand(fields []string) error {
	p.engine.Prepare()
	fmt.Fprintln(p.out, "readyok")
	return nil
}

func (p *Protocol) newGameCommand(fields []string) error {
	p.engine.Clear()
	p.positions = []position{{board: InitialBoard(), blackToMove: true}}
	return nil
}

func (p *Protocol) current() position {
	return p.positions[len(p.positions)-1]
}

// position startpos [moves f5 d6 ...]
// position board <64 squares> black|white [moves ...]
func (p *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("unknown position command")
	}
	var movesIndex = findIndexString(fields, "moves")
	var start position
	switch fields[0] {
	case "startpos":
		start = position{board: InitialBoard(), blackToMove: true}
	case "board":
		if len(fields) < 3 {
			return errors.New("position board needs squares and a side to move")
		}
		var blackToMove bool
		switch fields[2] {
		case "black":
			blackToMove = true
		case "white":
			blackToMove = false
		default:
			return fmt.Errorf("bad side to move %v", fields[2])
		}
		var b, err = NewBoardFromText(fields[1], blackToMove)
		if err != nil {
			return err
		}
		start = position{board: b, blackToMove: blackToMove}
	default:
		return errors.New("unknown position command")
	}
	var positions = []position{start}
	if movesIndex >= 0 {
		for _, smove := range fields[movesIndex+1:] {
			var m, err = ParseMove(smove)
			if err != nil {
				return err
			}
			next, err := positions[len(positions)-1].play(m)
			if err != nil {
				return fmt.Errorf("move %v: %w", smove, err)
			}
			positions = append(positions, next)
		}
	}
	p.positions = positions
	return nil
}

type limits struct {
	height    int
	remaining time.Duration
	increment time.Duration
	moveTime  time.Duration
	infinite  bool
}

func parseLimits(args []string, blackToMove bool) (result limits) {
	for i := 0; i < len(args); i++ {
		var value string
		if i+1 < len(args) {
			value = args[i+1]
		}
		switch args[i] {
		case "btime", "wtime":
			if (args[i] == "btime") == blackToMove {
				result.remaining = parseMillis(value)
			}
			i++
		case "binc", "winc":
			if (args[i] == "binc") == blackToMove {
				result.increment = parseMillis(value)
			}
			i++
		case "height":
			result.height, _ = strconv.Atoi(value)
			i++
		case "movetime":
			result.moveTime = parseMillis(value)
			i++
		case "infinite":
			result.infinite = true
		}
	}
	return
}

func parseMillis(s string) time.Duration {
	var ms, _ = strconv.Atoi(s)
	return time.Duration(ms) * time.Millisecond
}

func (l limits) policy() engine.RoundPolicy {
	switch {
	case l.infinite || l.moveTime > 0:
		return engine.Infinite{}
	case l.height > 0:
		return engine.FixedHeight{Height: l.height}
	case l.remaining > 0:
		return engine.TimeControl{Increment: l.increment}
	}
	return engine.Infinite{}
}

func (p *Protocol) goCommand(fields []string) error {
	var pos = p.current()
	var limits = parseLimits(fields, pos.blackToMove)
	var ctx context.Context
	var cancel context.CancelFunc
	if limits.moveTime > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), limits.moveTime)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	p.cancel = cancel
	p.thinking = true
	p.engineOutput = make(chan engine.SearchInfo, 3)
	go func() {
		defer cancel()
		var searchResult = p.engine.Search(ctx, engine.SearchParams{
			Board:     pos.board,
			Policy:    limits.policy(),
			Remaining: limits.remaining,
			Progress: func(si engine.SearchInfo) {
				select {
				case p.engineOutput <- si:
				default:
				}
			},
		})
		p.engineOutput <- searchResult
		close(p.engineOutput)
	}()
	return nil
}

func (p *Protocol) bookCommand(fields []string) error {
	if p.book == nil {
		return errors.New("no book")
	}
	var pos = p.current()
	var m, value, ok = p.book.RandomMove(pos.board, pos.blackToMove)
	if !ok {
		fmt.Fprintln(p.out, "book none")
		return nil
	}
	fmt.Fprintf(p.out, "book %v value %v\n", m, value)
	return nil
}

func (p *Protocol) showCommand(fields []string) error {
	var pos = p.current()
	fmt.Fprint(p.out, pos.board.String())
	fmt.Fprintln(p.out, pos.board.Text(pos.blackToMove))
	return nil
}

func searchInfoString(si engine.SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info height %v value %v", si.Height, si.Value)
	if si.FromBook {
		sb.WriteString(" book")
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.PV) != 0 {
		fmt.Fprintf(sb, " pv")
		for _, move := range si.PV {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}
