package engine

import (
	"math/bits"

	gm "github.com/kshade/chessforge/goosemg"
)

// pieceValue is indexed by gm.PieceType. The king carries no material value;
// mate is detected at leaf nodes instead.
var pieceValue = [7]int32{
	gm.PieceTypeNone:   0,
	gm.PieceTypePawn:   100,
	gm.PieceTypeKnight: 320,
	gm.PieceTypeBishop: 330,
	gm.PieceTypeRook:   500,
	gm.PieceTypeQueen:  900,
	gm.PieceTypeKing:   0,
}

// Evaluator scores a position from the side-to-move's perspective. It is an
// interface so a richer positional evaluator can replace the material
// baseline without touching search code.
type Evaluator interface {
	Evaluate(b *gm.Board) int32
}

// MaterialEvaluator implements Evaluator with pure material counting.
type MaterialEvaluator struct{}

func (MaterialEvaluator) Evaluate(b *gm.Board) int32 {
	white := b.WhiteBitboards()
	black := b.BlackBitboards()

	score := materialOf(white) - materialOf(black)
	if b.SideToMove() == gm.Black {
		score = -score
	}
	return score
}

func materialOf(bb gm.Bitboards) int32 {
	return int32(bits.OnesCount64(bb.Pawns))*pieceValue[gm.PieceTypePawn] +
		int32(bits.OnesCount64(bb.Knights))*pieceValue[gm.PieceTypeKnight] +
		int32(bits.OnesCount64(bb.Bishops))*pieceValue[gm.PieceTypeBishop] +
		int32(bits.OnesCount64(bb.Rooks))*pieceValue[gm.PieceTypeRook] +
		int32(bits.OnesCount64(bb.Queens))*pieceValue[gm.PieceTypeQueen]
}

// DefaultEvaluator is the evaluator used by Think when the caller does not
// supply one.
var DefaultEvaluator Evaluator = MaterialEvaluator{}
