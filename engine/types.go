package engine

import (
	"time"

	gm "github.com/kshade/chessforge/goosemg"
)

// Score constants. A mate is scored Checkmate minus the ply at which it
// occurs, so a deeper mate is worth less than a shallower one; MaxScore
// bounds the search window above every mate score.
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 30000
	DrawScore int32 = 0
)

// MaxPly bounds every per-ply array owned by a SearchContext.
const MaxPly = 128

// CutStatistics counts why nodes were pruned or cut, for diagnostic info
// output. It lives inside a SearchContext instead of as a package global so
// that concurrent searches never share counters.
type CutStatistics struct {
	TTCutoffs         uint64
	NullMoveCutoffs   uint64
	StaticNullCutoffs uint64
	RazoringCutoffs   uint64
	FutilityPrunes    uint64
	LateMovePrunes    uint64
	BetaCutoffs       uint64
	QStandPatCutoffs  uint64
	QBetaCutoffs      uint64
}

type repetitionRecord struct {
	hash          uint64
	halfmoveClock int
}

// SearchContext holds every piece of mutable state a single think() call
// touches below the root. Two SearchContexts never interfere with each
// other's heuristics even when they share a *TransTable.
type SearchContext struct {
	TT *TransTable

	Killers   [2][MaxPly]gm.Move
	History   [2][64][64]int32
	Countermove [2][64][64]gm.Move

	Nodes    uint64
	CutStats CutStatistics

	history []repetitionRecord

	Cancel   *bool
	Deadline time.Time
	HasDeadline bool
	MaxNodes uint64

	stopped bool
}

// NewSearchContext builds a context ready for a single think() call, seeded
// with the position currently on the board (so repetition detection sees the
// moves already played in the game, not just those made during search).
func NewSearchContext(tt *TransTable, gameHistory []uint64, halfmoveClock int, cancel *bool) *SearchContext {
	sc := &SearchContext{TT: tt, Cancel: cancel}
	sc.history = make([]repetitionRecord, 0, len(gameHistory)+MaxPly)
	n := len(gameHistory)
	for i, h := range gameHistory {
		clock := halfmoveClock - (n - 1 - i)
		if clock < 0 {
			clock = 0
		}
		sc.history = append(sc.history, repetitionRecord{hash: h, halfmoveClock: clock})
	}
	return sc
}

func (sc *SearchContext) pushHistory(hash uint64, halfmoveClock int) {
	sc.history = append(sc.history, repetitionRecord{hash: hash, halfmoveClock: halfmoveClock})
}

func (sc *SearchContext) popHistory() {
	sc.history = sc.history[:len(sc.history)-1]
}

// isDraw reports three-fold repetition or the fifty-move rule for the
// position just pushed onto the history stack.
func (sc *SearchContext) isDraw() bool {
	n := len(sc.history)
	if n == 0 {
		return false
	}
	cur := sc.history[n-1]
	if cur.halfmoveClock >= 100 {
		return true
	}
	reps := 0
	for i := n - 2; i >= 0 && cur.halfmoveClock-(n-1-i) >= 0; i-- {
		rec := sc.history[i]
		if n-1-i > cur.halfmoveClock {
			break
		}
		if rec.hash == cur.hash {
			reps++
			if reps >= 2 {
				return true
			}
		}
	}
	return false
}

// isUpcomingRepetition reports whether a position already seen is reachable
// again one ply from now, used to bias search toward the draw score before
// a repetition has fully materialized.
func (sc *SearchContext) isUpcomingRepetition() bool {
	n := len(sc.history)
	if n < 3 {
		return false
	}
	cur := sc.history[n-1]
	for i := n - 3; i >= 0 && cur.halfmoveClock-(n-1-i) >= 0; i -= 2 {
		if sc.history[i].hash == cur.hash {
			return true
		}
	}
	return false
}

// checkBudget polls the cancellation flag, deadline and node budget. It is
// called periodically rather than every node to keep the check cheap.
func (sc *SearchContext) checkBudget() bool {
	if sc.stopped {
		return true
	}
	if sc.Cancel != nil && *sc.Cancel {
		sc.stopped = true
		return true
	}
	if sc.HasDeadline && time.Now().After(sc.Deadline) {
		sc.stopped = true
		return true
	}
	if sc.MaxNodes != 0 && sc.Nodes >= sc.MaxNodes {
		sc.stopped = true
		return true
	}
	return false
}

func (sc *SearchContext) recordKiller(move gm.Move, ply int) {
	if ply < 0 || ply >= MaxPly {
		return
	}
	if sc.Killers[0][ply] != move {
		sc.Killers[1][ply] = sc.Killers[0][ply]
		sc.Killers[0][ply] = move
	}
}

func (sc *SearchContext) isKiller(move gm.Move, ply int) bool {
	if ply < 0 || ply >= MaxPly {
		return false
	}
	return sc.Killers[0][ply] == move || sc.Killers[1][ply] == move
}

func sideIndex(side gm.Color) int {
	if side == gm.White {
		return 0
	}
	return 1
}

func (sc *SearchContext) recordCountermove(side gm.Color, prevMove, move gm.Move) {
	if prevMove == 0 {
		return
	}
	sc.Countermove[sideIndex(side)][prevMove.From()][prevMove.To()] = move
}

func (sc *SearchContext) countermove(side gm.Color, prevMove gm.Move) gm.Move {
	if prevMove == 0 {
		return 0
	}
	return sc.Countermove[sideIndex(side)][prevMove.From()][prevMove.To()]
}

const historyMax = 1 << 14

func (sc *SearchContext) addHistory(side gm.Color, move gm.Move, depth int) {
	idx := sideIndex(side)
	v := &sc.History[idx][move.From()][move.To()]
	*v += int32(depth * depth)
	if *v > historyMax {
		for f := 0; f < 64; f++ {
			for t := 0; t < 64; t++ {
				sc.History[idx][f][t] /= 2
			}
		}
	}
}

func (sc *SearchContext) subHistory(side gm.Color, move gm.Move, depth int) {
	idx := sideIndex(side)
	v := &sc.History[idx][move.From()][move.To()]
	*v -= int32(depth * depth)
	if *v < -historyMax {
		*v = -historyMax
	}
}

func (sc *SearchContext) historyScore(side gm.Color, move gm.Move) int32 {
	return sc.History[sideIndex(side)][move.From()][move.To()]
}

// PVLine is a slice-backed principal-variation buffer threaded through
// negamax by pointer; a child's line is copied into the parent's once a move
// is known to improve alpha.
type PVLine struct {
	Moves []gm.Move
}

func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

func (pv *PVLine) Update(move gm.Move, child PVLine) {
	pv.Moves = append(pv.Moves[:0], move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

func (pv *PVLine) Clone() PVLine {
	out := make([]gm.Move, len(pv.Moves))
	copy(out, pv.Moves)
	return PVLine{Moves: out}
}

func (pv *PVLine) GetPVMove() gm.Move {
	if len(pv.Moves) == 0 {
		return 0
	}
	return pv.Moves[0]
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
