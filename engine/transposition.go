package engine

import (
	"fmt"
	"unsafe"

	gm "github.com/kshade/chessforge/goosemg"
)

// Bound flags for a stored score.
const (
	BoundNone  int8 = iota
	BoundExact      // score is exact
	BoundLower      // score is a lower bound (caused a beta cutoff)
	BoundUpper      // score is an upper bound (no move beat alpha)
)

// Historically this package used Alpha/Beta/Exact naming; keep aliases so
// callers written against either vocabulary read naturally.
const (
	AlphaFlag = BoundUpper
	BetaFlag  = BoundLower
	ExactFlag = BoundExact
)

const defaultTTSizeMB = 64

// TTEntry is one transposition-table slot.
type TTEntry struct {
	Key       uint64
	Depth     int8
	Score     int16
	StaticEval int16
	Move      gm.Move
	Bound     int8
	Age       uint8
}

// TransTable is a fixed-size, depth-preferred transposition table with an
// age tiebreak: an entry from a previous search loses to any fresh probe
// regardless of depth, since it is not reliable advice for the search
// currently running.
type TransTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8
}

// NewTransTable allocates a table sized to fit sizeMB megabytes, rounded
// down to a power of two number of entries so the index can be a mask.
func NewTransTable(sizeMB int) *TransTable {
	tt := &TransTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table for a new memory budget. On success the
// table is cleared; on failure (sizeMB <= 0) the previous table, if any, is
// left intact.
func (tt *TransTable) Resize(sizeMB int) error {
	if sizeMB <= 0 {
		return fmt.Errorf("%w: requested %d MB", ErrResizeFailed, sizeMB)
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	if entrySize == 0 {
		entrySize = 1
	}
	wanted := uint64(sizeMB) * 1024 * 1024 / entrySize
	if wanted == 0 {
		wanted = 1
	}
	n := uint64(1)
	for n*2 <= wanted {
		n *= 2
	}
	tt.entries = make([]TTEntry, n)
	tt.mask = n - 1
	tt.age = 0
	return nil
}

// Clear zeroes every entry and advances the table's age so that every
// previously stored entry is immediately treated as stale.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age++
}

// NewSearch bumps the age without clearing entries, so stale entries from
// the previous search lose replacement priority but are still probeable
// until overwritten.
func (tt *TransTable) NewSearch() { tt.age++ }

func (tt *TransTable) index(key uint64) uint64 { return key & tt.mask }

// Probe returns the entry for key, if present.
func (tt *TransTable) Probe(key uint64) (TTEntry, bool) {
	if len(tt.entries) == 0 {
		return TTEntry{}, false
	}
	e := tt.entries[tt.index(key)]
	if e.Key != key || e.Bound == BoundNone {
		return TTEntry{}, false
	}
	return e, true
}

// Store records a search result. score is the search score at ply; Store
// widens a mate score with widenMateScore before persisting it, and
// AdjustedScore narrows it back on the probe side.
func (tt *TransTable) Store(key uint64, depth int8, ply int, score int32, staticEval int32, bound int8, move gm.Move) {
	if len(tt.entries) == 0 {
		return
	}
	idx := tt.index(key)
	incumbent := &tt.entries[idx]

	widened := widenMateScore(score, ply)

	replace := incumbent.Key != key || incumbent.Depth <= depth || incumbent.Age != tt.age
	if !replace {
		return
	}
	if move == 0 && incumbent.Key == key {
		move = incumbent.Move
	}

	incumbent.Key = key
	incumbent.Depth = depth
	incumbent.Score = clampInt16(widened)
	incumbent.StaticEval = clampInt16(staticEval)
	incumbent.Move = move
	incumbent.Bound = bound
	incumbent.Age = tt.age
}

// AdjustedScore narrows a stored (from-root-absolute) mate score back to a
// value relative to the current ply.
func (e TTEntry) AdjustedScore(ply int) int32 {
	return narrowMateScore(int32(e.Score), ply)
}

const mateThreshold = Checkmate - int32(MaxPly)

func widenMateScore(score int32, ply int) int32 {
	if score > mateThreshold {
		return score + int32(ply)
	}
	if score < -mateThreshold {
		return score - int32(ply)
	}
	return score
}

func narrowMateScore(score int32, ply int) int32 {
	if score > mateThreshold {
		return score - int32(ply)
	}
	if score < -mateThreshold {
		return score + int32(ply)
	}
	return score
}

func clampInt16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
