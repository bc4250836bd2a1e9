package goosemg_test

import (
	"testing"

	myengine "github.com/kshade/chessforge/goosemg"
)

func TestMoveGenerationInitial(t *testing.T) {
	board, err := myengine.ParseFEN(myengine.FENStartPos)
	if err != nil {
		t.Fatalf("ParseFEN failed for initial position: %v", err)
	}
	moves := board.GenerateMoves()
	if len(moves) != 20 {
		t.Errorf("Initial position: expected 20 moves, got %d", len(moves))
	}
}

// En passant must always appear in the pseudo-legal stream, even when it
// would expose the king, since pseudo-legal moves are filtered for
// king-safety downstream rather than during generation itself.
func TestPseudoLegalAlwaysIncludesEnPassant(t *testing.T) {
	board, err := myengine.ParseFEN("8/8/8/8/4Pp2/8/6k1/7K b - e3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	found := false
	for _, m := range board.GeneratePseudoMoves() {
		if m.Flags() == myengine.FlagEnPassant {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected an en passant move in the pseudo-legal move list")
	}
}
