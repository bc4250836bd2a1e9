package engine

import (
	"testing"

	gm "github.com/kshade/chessforge/goosemg"
)

func TestSEEAccountsForRevealedSlider(t *testing.T) {
	const fen = "6k1/4q1p1/4n3/8/2B5/8/8/6K1 w - - 0 1"

	applied, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move, err := applied.PlayUCIMove("c4e6")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}

	board, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("reparse FEN: %v", err)
	}

	score := see(board, move, false)
	if score != 0 {
		t.Fatalf("expected SEE score 0, got %d", score)
	}
}

func TestSEEHandlesEnPassantCapture(t *testing.T) {
	board, err := gm.ParseFEN("8/8/8/3pP3/8/8/8/6K1 w - d6 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	move := gm.NewMove(square("e5"), square("d6"), gm.WhitePawn, gm.BlackPawn, gm.NoPiece, gm.FlagEnPassant)
	if move.Flags()&gm.FlagEnPassant == 0 {
		t.Fatalf("expected en passant flag to be set, got %d", move.Flags())
	}
	pawnValue := SeePieceValue[dtPieceOf(gm.PieceTypePawn)]
	if pawnValue != 100 {
		t.Fatalf("unexpected pawn SEE value: %d", pawnValue)
	}
	if board.BlackBitboards().Pawns&(uint64(1)<<uint(square("d5"))) == 0 {
		t.Fatalf("expected black pawn at d5")
	}

	score := see(board, move, false)
	if score != pawnValue {
		t.Fatalf("expected SEE score %d, got %d", pawnValue, score)
	}
}

// TestSEEHangingPieceIsFullValue covers the plain hanging-piece category:
// the captured knight has no defender at all, so the exchange stops after
// one capture and the SEE score is exactly the knight's value.
func TestSEEHangingPieceIsFullValue(t *testing.T) {
	const fen = "n6k/8/8/8/8/8/8/R6K w - - 0 1"

	applied, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move, err := applied.PlayUCIMove("a1a8")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}

	board, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("reparse FEN: %v", err)
	}

	const wantScore = 300 // undefended knight, no recapture
	if score := see(board, move, false); score != wantScore {
		t.Fatalf("expected SEE score %d, got %d", wantScore, score)
	}
}

// TestSEEPawnDefendedPieceIsEvenTrade covers the pawn-defended-piece
// category: a knight captures a knight that a pawn guards, so the pawn
// recaptures and the exchange nets to zero (knight for knight).
func TestSEEPawnDefendedPieceIsEvenTrade(t *testing.T) {
	const fen = "6k1/8/3p4/4n3/2N5/8/8/6K1 w - - 0 1"

	applied, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move, err := applied.PlayUCIMove("c4e5")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}

	board, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("reparse FEN: %v", err)
	}

	const wantScore = 0 // Nxe5, pawn recaptures: knight for knight
	if score := see(board, move, false); score != wantScore {
		t.Fatalf("expected SEE score %d, got %d", wantScore, score)
	}
}

// TestSEEOverloadedDefenderStillLosesMaterial covers the overloaded-defender
// category: a single pawn must answer for a knight attacked by both a
// bishop and a rook on the same square. The pawn recaptures the (cheaper)
// bishop, but the rook then recaptures the pawn — the defender cannot
// handle both raiders and the side to move still nets material.
func TestSEEOverloadedDefenderStillLosesMaterial(t *testing.T) {
	const fen = "6k1/8/3p4/4n3/8/2B5/8/4R1K1 w - - 0 1"

	applied, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move, err := applied.PlayUCIMove("c3e5")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}

	board, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("reparse FEN: %v", err)
	}

	// Bxe5 (+knight -300, captured 300), dxe5 (-bishop, -300), Rxe5 (+pawn, +100):
	// net +300 -300 +100 = +100 for the side to move.
	const wantScore = 100
	if score := see(board, move, false); score != wantScore {
		t.Fatalf("expected SEE score %d, got %d", wantScore, score)
	}
}

func square(coord string) gm.Square {
	if len(coord) != 2 {
		panic("invalid coordinate")
	}
	file := int(coord[0] - 'a')
	rank := int(coord[1] - '1')
	return gm.Square(rank*8 + file)
}
