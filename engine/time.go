package engine

import "time"

// Limits bounds a single think() call. A zero value means "unbounded" for
// that dimension; at least one of Depth, MoveTimeMS, or (TimeMS) should be
// set or the search only stops on Infinite being false and an external
// cancellation flag.
type Limits struct {
	Depth      int
	MoveTimeMS int
	TimeMS     int
	IncMS      int
	MaxNodes   uint64
	Infinite   bool
}

// TimeManager turns a Limits value into a concrete soft/hard deadline,
// honoring the move-overhead option and a stability extension:
// once the position has produced a stable best move across iterations, the
// soft deadline is not extended; an unstable score (the best move keeps
// changing) borrows a bit more of the remaining budget.
type TimeManager struct {
	start            time.Time
	soft             time.Duration
	hard             time.Duration
	extended         bool
	stableIterations int
	lastBestMove     uint32
	lastScore        int32
}

// Start computes the soft and hard budgets for this search. moveOverheadMS
// is subtracted from the soft budget to leave headroom for non-search
// latency (GUI/network round trips).
func (tm *TimeManager) Start(l Limits, moveOverheadMS int) {
	tm.start = time.Now()
	tm.extended = false
	tm.stableIterations = 0
	tm.lastBestMove = 0
	tm.lastScore = 0

	switch {
	case l.MoveTimeMS > 0:
		soft := time.Duration(l.MoveTimeMS-moveOverheadMS) * time.Millisecond
		if soft < 10*time.Millisecond {
			soft = 10 * time.Millisecond
		}
		tm.soft = soft
		tm.hard = soft
	case l.TimeMS > 0:
		ms := l.TimeMS/30 + int(0.6*float64(l.IncMS))
		ms -= moveOverheadMS
		if ms < 10 {
			ms = 10
		}
		tm.soft = time.Duration(ms) * time.Millisecond
		tm.hard = tm.soft * 3
	default:
		tm.soft = 0
		tm.hard = 0
	}
}

func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.start) }

// SoftExpired reports whether the search should not begin another
// iterative-deepening iteration.
func (tm *TimeManager) SoftExpired() bool {
	if tm.soft == 0 {
		return false
	}
	budget := tm.soft
	if tm.extended {
		budget = budget * 3 / 2
	}
	return tm.Elapsed() >= budget
}

// HardExpired reports whether the search must stop immediately, even
// mid-iteration.
func (tm *TimeManager) HardExpired() bool {
	if tm.hard == 0 {
		return false
	}
	return tm.Elapsed() >= tm.hard
}

// Deadline returns an absolute time a SearchContext can poll against; used
// when the hard budget is set.
func (tm *TimeManager) Deadline() (time.Time, bool) {
	if tm.hard == 0 {
		return time.Time{}, false
	}
	return tm.start.Add(tm.hard), true
}

// NoteIteration records the result of a completed iterative-deepening
// iteration and decides whether the soft budget should be extended: a best
// move that keeps changing, or a score that just dropped sharply, borrows
// extra time before the next iteration starts.
func (tm *TimeManager) NoteIteration(bestMove uint32, score int32) {
	if bestMove == tm.lastBestMove {
		tm.stableIterations++
	} else {
		tm.stableIterations = 0
	}
	if tm.stableIterations < 2 || score < tm.lastScore-50 {
		tm.extended = true
	} else {
		tm.extended = false
	}
	tm.lastBestMove = bestMove
	tm.lastScore = score
}
