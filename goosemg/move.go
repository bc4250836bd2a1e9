package goosemg

import (
	"math/bits"
	"strings"
)

// Move encodes a chess move in a 32-bit value.
type Move uint32

// Bitfield layout within Move (from LSB to MSB). The square fields come
// first so From/To are a single shift-and-mask each; the flag sits right
// above them since castling/en-passant dispatch is checked far more often
// than the piece fields are read.
const (
	moveFromShift    = 0  // 6 bits: origin square
	moveToShift      = 6  // 6 bits: destination square
	moveFlagShift    = 12 // 2 bits: special-move flag
	movePromoteShift = 14 // 4 bits: promotion piece (or NoPiece)
	movePieceShift   = 18 // 4 bits: moved piece
	moveCaptureShift = 22 // 4 bits: captured piece (or NoPiece)
)

const (
	moveSquareMask = 0x3F
	moveFlagMask   = 0x3
	movePieceMask  = 0xF
)

// Move flags
const (
	FlagNone      = 0
	FlagCastle    = 1
	FlagEnPassant = 2
	// (Promotion is indicated by a promotion piece other than NoPiece)
)

// NewMove constructs a Move value from components.
func NewMove(from, to Square, piece, captured Piece, promotion Piece, flag uint8) Move {
	m := uint32(from&moveSquareMask) |
		(uint32(to&moveSquareMask) << moveToShift) |
		(uint32(flag&moveFlagMask) << moveFlagShift) |
		(uint32(promotion&movePieceMask) << movePromoteShift) |
		(uint32(piece&movePieceMask) << movePieceShift) |
		(uint32(captured&movePieceMask) << moveCaptureShift)
	return Move(m)
}

// From returns the source square of the move.
func (m Move) From() Square { return Square((uint32(m) >> moveFromShift) & moveSquareMask) }

// To returns the destination square of the move.
func (m Move) To() Square { return Square((uint32(m) >> moveToShift) & moveSquareMask) }

// MovedPiece returns the piece code that is moved.
func (m Move) MovedPiece() Piece { return Piece((uint32(m) >> movePieceShift) & movePieceMask) }

// CapturedPiece returns the piece code that was captured (or NoPiece if none).
func (m Move) CapturedPiece() Piece { return Piece((uint32(m) >> moveCaptureShift) & movePieceMask) }

// PromotionPiece returns the promotion piece code (or NoPiece if not a promotion).
func (m Move) PromotionPiece() Piece { return Piece((uint32(m) >> movePromoteShift) & movePieceMask) }

// PromotionPieceType returns the colorless type of the promoted piece (or PieceTypeNone).
func (m Move) PromotionPieceType() PieceType { return m.PromotionPiece().Type() }

// Flags returns the special move flags.
func (m Move) Flags() uint8 { return uint8((uint32(m) >> moveFlagShift) & moveFlagMask) }

// String produces a simple string representation of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	fromSq := m.From()
	toSq := m.To()
	promo := m.PromotionPiece()

	fileFrom := fromSq % 8
	rankFrom := fromSq / 8
	fileTo := toSq % 8
	rankTo := toSq / 8

	var sb strings.Builder
	sb.WriteByte('a' + byte(fileFrom))
	sb.WriteByte('1' + byte(rankFrom))
	sb.WriteByte('a' + byte(fileTo))
	sb.WriteByte('1' + byte(rankTo))
	if promo != NoPiece {
		sb.WriteByte(strings.ToLower(string(charFromPiece(promo)))[0])
	}
	return sb.String()
}

// GivesCheck reports whether the move (assumed legal for the current side to move)
// results in the opponent's king being in check. It performs a lightweight
// post-move attack query without mutating board state.
func (b *Board) GivesCheck(m Move) bool {
	us := int(b.sideToMove)
	them := 1 - us
	usBase := us * 6
	themBase := them * 6

	kingBB := b.pieceBB[themBase+5]
	if kingBB == 0 {
		return false
	}
	ksq := bits.TrailingZeros64(kingBB)

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	promo := m.PromotionPiece()
	flag := m.Flags()
	captured := m.CapturedPiece()

	fromBB := uint64(1) << uint(from)
	toBB := uint64(1) << uint(to)

	// Local copies of our piece bitboards and occupancy, mutated to reflect
	// the position after the move without touching the real board state.
	pieces := b.pieceBB
	occUs := b.colorBB[us]
	occThem := b.colorBB[them]

	if flag == FlagEnPassant {
		var capSq Square
		if b.sideToMove == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occThem &^= uint64(1) << uint(capSq)
	} else if captured != NoPiece {
		occThem &^= toBB
	}

	occUs &^= fromBB
	pieces[moved] &^= fromBB

	pieceTo := moved
	if promo != NoPiece {
		pieceTo = promo
	}
	occUs |= toBB
	pieces[pieceTo] |= toBB

	if flag == FlagCastle {
		rFrom, rTo := NoSquare, NoSquare
		var rook Piece
		if moved == WhiteKing {
			rook = WhiteRook
			if to == 6 {
				rFrom, rTo = 7, 5
			} else if to == 2 {
				rFrom, rTo = 0, 3
			}
		} else if moved == BlackKing {
			rook = BlackRook
			if to == 62 {
				rFrom, rTo = 63, 61
			} else if to == 58 {
				rFrom, rTo = 56, 59
			}
		}
		if rFrom != NoSquare {
			rFromBB := uint64(1) << uint(rFrom)
			rToBB := uint64(1) << uint(rTo)
			pieces[rook] &^= rFromBB
			occUs &^= rFromBB
			pieces[rook] |= rToBB
			occUs |= rToBB
		}
	}

	occAll := occUs | occThem

	pawnsUs := pieces[usBase+0]
	knightsUs := pieces[usBase+1]
	bishopsUs := pieces[usBase+2]
	rooksUs := pieces[usBase+3]
	queensUs := pieces[usBase+4]
	kingsUs := pieces[usBase+5]

	if b.sideToMove == White {
		if pawnAttacks[Black][ksq]&pawnsUs != 0 {
			return true
		}
	} else {
		if pawnAttacks[White][ksq]&pawnsUs != 0 {
			return true
		}
	}

	if knightMoves[ksq]&knightsUs != 0 {
		return true
	}

	if kingMoves[ksq]&kingsUs != 0 {
		return true
	}

	rq := rooksUs | queensUs
	if rq != 0 {
		if blockers := rookRays[ksq][0] & occAll; blockers != 0 {
			lsb := blockers & -blockers
			if lsb&rq != 0 {
				return true
			}
		}
		if blockers := rookRays[ksq][1] & occAll; blockers != 0 {
			first := 63 - bits.LeadingZeros64(blockers)
			if (uint64(1)<<uint(first))&rq != 0 {
				return true
			}
		}
		if blockers := rookRays[ksq][2] & occAll; blockers != 0 {
			lsb := blockers & -blockers
			if lsb&rq != 0 {
				return true
			}
		}
		if blockers := rookRays[ksq][3] & occAll; blockers != 0 {
			first := 63 - bits.LeadingZeros64(blockers)
			if (uint64(1)<<uint(first))&rq != 0 {
				return true
			}
		}
	}

	bq := bishopsUs | queensUs
	if bq != 0 {
		if blockers := bishopRays[ksq][0] & occAll; blockers != 0 {
			lsb := blockers & -blockers
			if lsb&bq != 0 {
				return true
			}
		}
		if blockers := bishopRays[ksq][1] & occAll; blockers != 0 {
			lsb := blockers & -blockers
			if lsb&bq != 0 {
				return true
			}
		}
		if blockers := bishopRays[ksq][2] & occAll; blockers != 0 {
			first := 63 - bits.LeadingZeros64(blockers)
			if (uint64(1)<<uint(first))&bq != 0 {
				return true
			}
		}
		if blockers := bishopRays[ksq][3] & occAll; blockers != 0 {
			first := 63 - bits.LeadingZeros64(blockers)
			if (uint64(1)<<uint(first))&bq != 0 {
				return true
			}
		}
	}

	return false
}
