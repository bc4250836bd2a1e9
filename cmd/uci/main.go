// Command uci is a line-oriented text-protocol front-end. It owns no chess
// logic of its own: it only translates stdin lines into calls against
// goosemg.Board and engine.Think and formats the replies.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kshade/chessforge/engine"
	gm "github.com/kshade/chessforge/goosemg"
)

func main() {
	loop(os.Stdin, os.Stdout)
}

type session struct {
	board   *gm.Board
	history []uint64
	tt      *engine.TransTable
	opts    *engine.Options
	cancel  bool
}

func newSession() *session {
	s := &session{
		opts: engine.NewOptions(),
	}
	s.tt = engine.NewTransTable(s.opts.GetInt(engine.OptHashMB, 64))
	s.reset()
	return s
}

func (s *session) reset() {
	b := gm.ParseFen(gm.Startpos)
	s.board = &b
	s.history = s.history[:0]
	s.cancel = false
}

func loop(in io.Reader, out io.Writer) {
	s := newSession()
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "uci":
			fmt.Fprintln(w, "id name chessforge")
			fmt.Fprintln(w, "id author chessforge contributors")
			fmt.Fprintln(w, "option name Hash type spin default 64 min 1 max 4096")
			fmt.Fprintln(w, "option name Threads type spin default 1 min 1 max 1")
			fmt.Fprintln(w, "option name Move Overhead type spin default 30 min 0 max 5000")
			fmt.Fprintln(w, "uciok")
		case "isready":
			fmt.Fprintln(w, "readyok")
		case "ucinewgame":
			s.reset()
			s.tt.Clear()
		case "position":
			s.handlePosition(fields[1:], w)
		case "setoption":
			s.handleSetOption(fields[1:], w)
		case "go":
			s.handleGo(fields[1:], w)
		case "stop":
			s.cancel = true
		case "quit":
			w.Flush()
			return
		default:
			fmt.Fprintln(w, "info string unknown command", fields[0])
		}
		w.Flush()
	}
}

func (s *session) handlePosition(args []string, w *bufio.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(w, "info string malformed position command")
		return
	}

	idx := 0
	switch strings.ToLower(args[0]) {
	case "startpos":
		b := gm.ParseFen(gm.Startpos)
		s.board = &b
		idx = 1
	case "fen":
		idx = 1
		fenFields := []string{}
		for idx < len(args) && strings.ToLower(args[idx]) != "moves" {
			fenFields = append(fenFields, args[idx])
			idx++
		}
		fen := strings.Join(fenFields, " ")
		parsed, err := gm.ParseFEN(fen)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidFEN) {
				fmt.Fprintln(w, "info string invalid fen:", err)
			} else {
				fmt.Fprintln(w, "info string position fen failed:", err)
			}
			return
		}
		s.board = parsed
	default:
		fmt.Fprintln(w, "info string invalid position subcommand")
		return
	}

	s.history = s.history[:0]
	if idx < len(args) && strings.ToLower(args[idx]) == "moves" {
		for _, moveStr := range args[idx+1:] {
			if _, err := s.board.PlayUCIMove(moveStr); err != nil {
				if errors.Is(err, engine.ErrIllegalMove) {
					fmt.Fprintln(w, "info string move", moveStr, "not legal for position", s.board.ToFen())
				} else {
					fmt.Fprintln(w, "info string move", moveStr, "rejected:", err)
				}
				break
			}
			s.history = append(s.history, s.board.Hash())
		}
	}
}

func (s *session) handleSetOption(args []string, w *bufio.Writer) {
	// Expect: name <key...> value <v>
	joined := strings.ToLower(strings.Join(args, " "))
	parts := strings.SplitN(joined, "value", 2)
	if len(parts) != 2 {
		fmt.Fprintln(w, "info string malformed setoption command")
		return
	}
	name := strings.TrimSpace(strings.TrimPrefix(parts[0], "name"))
	value := strings.TrimSpace(parts[1])

	switch name {
	case "hash":
		if v, err := strconv.Atoi(value); err == nil {
			s.opts.SetInt(engine.OptHashMB, v)
			if err := s.tt.Resize(v); err != nil {
				fmt.Fprintln(w, "info string", err)
			}
		}
	case "threads":
		if v, err := strconv.Atoi(value); err == nil {
			s.opts.SetInt(engine.OptThreads, v)
		}
	case "move overhead":
		if v, err := strconv.Atoi(value); err == nil {
			s.opts.SetInt(engine.OptMoveOverheadMS, v)
		}
	default:
		fmt.Fprintln(w, "info string unknown option", name)
	}
}

func (s *session) handleGo(args []string, w *bufio.Writer) {
	limits := engine.Limits{}
	wtime, btime, winc, binc := 0, 0, 0, 0

	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "infinite":
			limits.Infinite = true
		case "depth":
			i++
			if i < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i])
			}
		case "movetime":
			i++
			if i < len(args) {
				limits.MoveTimeMS, _ = strconv.Atoi(args[i])
			}
		case "wtime":
			i++
			if i < len(args) {
				wtime, _ = strconv.Atoi(args[i])
			}
		case "btime":
			i++
			if i < len(args) {
				btime, _ = strconv.Atoi(args[i])
			}
		case "winc":
			i++
			if i < len(args) {
				winc, _ = strconv.Atoi(args[i])
			}
		case "binc":
			i++
			if i < len(args) {
				binc, _ = strconv.Atoi(args[i])
			}
		case "nodes":
			i++
			if i < len(args) {
				n, _ := strconv.Atoi(args[i])
				limits.MaxNodes = uint64(n)
			}
		}
	}

	if limits.MoveTimeMS == 0 && !limits.Infinite && limits.Depth == 0 {
		if s.board.SideToMove() == gm.White {
			limits.TimeMS, limits.IncMS = wtime, winc
		} else {
			limits.TimeMS, limits.IncMS = btime, binc
		}
	}

	s.cancel = false
	result := engine.Think(s.board, limits, s.tt, s.opts, s.history, &s.cancel, func(info engine.InfoLine) {
		if info.Mate != 0 {
			fmt.Fprintln(w, "info depth", info.Depth, "score mate", info.Mate, "nodes", info.Nodes, "time", info.Elapsed, "nps", info.NPS, "pv", info.PV)
		} else {
			fmt.Fprintln(w, "info depth", info.Depth, "score cp", info.ScoreCP, "nodes", info.Nodes, "time", info.Elapsed, "nps", info.NPS, "pv", info.PV)
		}
		w.Flush()
	})

	fmt.Fprintln(w, "bestmove", result.BestMove.String())
}
