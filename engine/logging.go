package engine

import (
	"log/slog"
	"os"
)

// Logger is the structured logger used for search diagnostics and engine
// lifecycle events. No third-party structured-logging package is imported
// anywhere in the retrieval pack (go-logr/logr only appears transitively
// through an unrelated GUI stack's dependencies, never exercised by any
// teacher code), so this uses the standard library's slog rather than
// introducing an ungrounded dependency; see DESIGN.md.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogLevel adjusts verbosity at runtime (e.g. in response to a debug
// front-end command).
func SetLogLevel(level slog.Level) {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// InfoLine is the per-iteration search progress record, logged structurally
// instead of printed with fmt.Println.
type InfoLine struct {
	Depth   int
	ScoreCP int32
	Mate    int
	Nodes   uint64
	Elapsed int64 // milliseconds
	NPS     uint64
	PV      string
}

func logInfo(l InfoLine) {
	attrs := []any{
		"depth", l.Depth,
		"nodes", l.Nodes,
		"time_ms", l.Elapsed,
		"nps", l.NPS,
		"pv", l.PV,
	}
	if l.Mate != 0 {
		attrs = append([]any{"mate", l.Mate}, attrs...)
	} else {
		attrs = append([]any{"score_cp", l.ScoreCP}, attrs...)
	}
	Logger.Info("search iteration", attrs...)
}

func logCutStats(c CutStatistics) {
	Logger.Debug("cut statistics",
		"tt_cutoffs", c.TTCutoffs,
		"null_move_cutoffs", c.NullMoveCutoffs,
		"static_null_cutoffs", c.StaticNullCutoffs,
		"razoring_cutoffs", c.RazoringCutoffs,
		"futility_prunes", c.FutilityPrunes,
		"late_move_prunes", c.LateMovePrunes,
		"beta_cutoffs", c.BetaCutoffs,
		"q_standpat_cutoffs", c.QStandPatCutoffs,
		"q_beta_cutoffs", c.QBetaCutoffs,
	)
}
