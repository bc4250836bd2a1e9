package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
	gm "github.com/kshade/chessforge/goosemg"
)

// SeePieceValue is the exchange-value table, separate from pieceValue and
// with its own values (knight and bishop both 300, king 5000), indexed by
// dragontoothmg's own Piece enum (Nothing=0, Pawn=1 .. King=6), since see() bridges into
// dragontoothmg's independent bitboard attack generator for the exchange
// simulation rather than reusing the engine's own tables. This keeps the two
// attack implementations grounded separately so a differential test can
// catch a bug in either.
var SeePieceValue = [7]int{
	dragontoothmg.Pawn:   100,
	dragontoothmg.Knight: 300,
	dragontoothmg.Bishop: 300,
	dragontoothmg.Rook:   500,
	dragontoothmg.Queen:  900,
	dragontoothmg.King:   5000,
}

var knightMasks [64]uint64
var kingMasksSEE [64]uint64

func init() {
	for sq := 0; sq < 64; sq++ {
		knightMasks[sq] = computeKnightMask(sq)
		kingMasksSEE[sq] = computeKingMask(sq)
	}
}

func computeKnightMask(sq int) uint64 {
	file, rank := sq%8, sq/8
	var out uint64
	for _, d := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
		f, r := file+d[0], rank+d[1]
		if f >= 0 && f < 8 && r >= 0 && r < 8 {
			out |= 1 << uint(r*8+f)
		}
	}
	return out
}

func computeKingMask(sq int) uint64 {
	file, rank := sq%8, sq/8
	var out uint64
	for df := -1; df <= 1; df++ {
		for dr := -1; dr <= 1; dr++ {
			if df == 0 && dr == 0 {
				continue
			}
			f, r := file+df, rank+dr
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				out |= 1 << uint(r*8+f)
			}
		}
	}
	return out
}

func pawnCaptureBitboards(bb uint64, white bool) (east, west uint64) {
	const fileA, fileH = 0x0101010101010101, 0x8080808080808080
	if white {
		east = (bb &^ fileH) << 9
		west = (bb &^ fileA) << 7
	} else {
		east = (bb &^ fileH) >> 7
		west = (bb &^ fileA) >> 9
	}
	return east, west
}

// see runs a static exchange evaluation for move on pos, returning the net
// material swing (in centipawns) to the side to move from the first
// capture. Ported onto dragontoothmg.Board via a FEN round-trip so the
// exchange simulation is checked against an attack generator independent
// of the engine's own.
func see(pos *gm.Board, move gm.Move, debug bool) int {
	dtBoard := dragontoothmg.ParseFen(pos.ToFen())
	return seeOnBoard(&dtBoard, uint8(move.From()), uint8(move.To()), debug)
}

func seeOnBoard(b *dragontoothmg.Board, from, to uint8, debug bool) int {
	gain := [32]int{}
	depth := uint8(0)
	sideToMove := b.Wtomove

	whiteAttackers := attackersOnSquare(to, b.White, b.Black, true)
	blackAttackers := attackersOnSquare(to, b.Black, b.White, false)
	attadef := whiteAttackers | blackAttackers

	var targetPiece, attacker dragontoothmg.Piece
	if sideToMove {
		targetPiece, _ = pieceAt(to, &b.Black)
		attacker, _ = pieceAt(from, &b.White)
	} else {
		targetPiece, _ = pieceAt(to, &b.White)
		attacker, _ = pieceAt(from, &b.Black)
	}
	// En-passant captures leave no piece on the destination square itself.
	if targetPiece == dragontoothmg.Pawn && SeePieceValue[targetPiece] == 0 {
		targetPiece = dragontoothmg.Pawn
	}

	attackerBB := uint64(1) << from
	gain[depth] = SeePieceValue[targetPiece]
	sideToMove = !sideToMove

	for done := true; done; done = attackerBB != 0 {
		depth++
		if int(depth) >= len(gain) {
			break
		}
		gain[depth] = SeePieceValue[attacker] - gain[depth-1]

		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attadef ^= attackerBB
		attackerBB, attacker = closestAttacker(b, attadef, sideToMove, to)
		sideToMove = !sideToMove
	}

	for x := depth - 1; x > 0; x-- {
		gain[x-1] = -max(-gain[x-1], gain[x])
	}
	if debug {
		Logger.Debug("see", "gain", gain[0])
	}
	return gain[0]
}

// dtPieceOf maps goosemg's colorless piece type onto dragontoothmg's own
// Piece enum so callers outside this file can index SeePieceValue without
// knowing dragontoothmg's layout.
func dtPieceOf(pt gm.PieceType) dragontoothmg.Piece {
	switch pt {
	case gm.PieceTypePawn:
		return dragontoothmg.Pawn
	case gm.PieceTypeKnight:
		return dragontoothmg.Knight
	case gm.PieceTypeBishop:
		return dragontoothmg.Bishop
	case gm.PieceTypeRook:
		return dragontoothmg.Rook
	case gm.PieceTypeQueen:
		return dragontoothmg.Queen
	default:
		return dragontoothmg.King
	}
}

func pieceAt(sq uint8, bb *dragontoothmg.Bitboards) (dragontoothmg.Piece, bool) {
	mask := uint64(1) << sq
	switch {
	case bb.Pawns&mask != 0:
		return dragontoothmg.Pawn, true
	case bb.Knights&mask != 0:
		return dragontoothmg.Knight, true
	case bb.Bishops&mask != 0:
		return dragontoothmg.Bishop, true
	case bb.Rooks&mask != 0:
		return dragontoothmg.Rook, true
	case bb.Queens&mask != 0:
		return dragontoothmg.Queen, true
	case bb.Kings&mask != 0:
		return dragontoothmg.King, true
	default:
		return dragontoothmg.Pawn, false
	}
}

// attackersOnSquare computes, from the "supersquare" of target, which of
// usBB's pieces attack it, x-raying through same-color sliders and pawns so
// that a piece behind another of the same color is still counted once the
// front piece has been captured away in a later step of the exchange.
func attackersOnSquare(target uint8, usBB, enemyBB dragontoothmg.Bitboards, white bool) uint64 {
	orthoXray := dragontoothmg.CalculateRookMoveBitboard(target, (usBB.All&^(usBB.Rooks|usBB.Queens))|(enemyBB.All&^(enemyBB.Rooks|enemyBB.Queens))) &^
		(usBB.All &^ (usBB.Rooks | usBB.Queens | enemyBB.Rooks | enemyBB.Queens))

	var pawnBB uint64
	targetBB := uint64(1) << target
	for x := usBB.Pawns; x != 0; x &= x - 1 {
		sq := bits.TrailingZeros64(x)
		bb := uint64(1) << uint(sq)
		east, west := pawnCaptureBitboards(bb, white)
		if (east|west)&targetBB != 0 {
			pawnBB |= bb
		}
	}

	diagXray := dragontoothmg.CalculateBishopMoveBitboard(target, (usBB.All&^(usBB.Bishops|usBB.Queens|pawnBB))|enemyBB.All) &^
		(usBB.All &^ (usBB.Bishops | usBB.Queens))

	hit := pawnBB
	hit |= orthoXray & (usBB.Rooks | usBB.Queens)
	hit |= diagXray & (usBB.Bishops | usBB.Queens)
	hit |= knightMasks[target] & usBB.Knights
	hit |= kingMasksSEE[target] & usBB.Kings
	return hit
}

func closestAttacker(b *dragontoothmg.Board, attadef uint64, white bool, target uint8) (uint64, dragontoothmg.Piece) {
	usBB := b.Black
	if white {
		usBB = b.White
	}

	diag := dragontoothmg.CalculateBishopMoveBitboard(target, attadef) &^ (usBB.All &^ (usBB.Bishops | usBB.Queens)) & attadef
	ortho := dragontoothmg.CalculateRookMoveBitboard(target, attadef) &^ (usBB.All &^ (usBB.Rooks | usBB.Queens)) & attadef
	east, west := pawnCaptureBitboards(uint64(1)<<target, !white)

	candidates := (east | west | diag | ortho | (knightMasks[target] & usBB.Knights) | (kingMasksSEE[target] & usBB.Kings)) & attadef
	return minAttacker(candidates, usBB)
}

func minAttacker(attadef uint64, bb dragontoothmg.Bitboards) (uint64, dragontoothmg.Piece) {
	var subset uint64
	var piece dragontoothmg.Piece

	switch {
	case attadef&bb.Pawns != 0:
		subset, piece = attadef&bb.Pawns, dragontoothmg.Pawn
	case attadef&bb.Knights != 0:
		subset, piece = attadef&bb.Knights, dragontoothmg.Knight
	case attadef&bb.Bishops != 0:
		subset, piece = attadef&bb.Bishops, dragontoothmg.Bishop
	case attadef&bb.Rooks != 0:
		subset, piece = attadef&bb.Rooks, dragontoothmg.Rook
	case attadef&bb.Queens != 0:
		subset, piece = attadef&bb.Queens, dragontoothmg.Queen
	case attadef&bb.Kings != 0:
		subset, piece = attadef&bb.Kings, dragontoothmg.King
	}

	if subset != 0 {
		return uint64(1) << uint(bits.TrailingZeros64(subset)), piece
	}
	return 0, piece
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
