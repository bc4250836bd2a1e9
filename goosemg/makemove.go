package goosemg

import "math/bits"

// MoveState holds the minimal state needed to undo a move.
type MoveState struct {
	move          Move
	captured      Piece
	prevCastling  CastlingRights
	prevEnPassant Square
	prevHalfmove  int
	prevFullmove  int
	prevZobrist   uint64
	rookFrom      Square // for castling undo
	rookTo        Square // for castling undo
}

// NullState stores the minimal information needed to undo a null move.
type NullState struct {
	prevEnPassant Square
	prevHalfmove  int
	prevFullmove  int
	prevZobrist   uint64
	prevSide      Color
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MakeMove applies a move to the board. It returns ok=false if the move leaves the mover's king in check,
// restoring the original position. The king-safety query runs only for king moves, en passant, and moves
// whose origin lies on a rook or bishop ray from the mover's king; any other move is accepted without it,
// so such a move is not rejected when the mover was already in check and the move does not answer it.
//
// Because Piece values index pieceBB directly, toggling the bitboard for a
// specific piece is a single `pieceBB[piece] ^= mask` rather than a type
// switch over six cases: the piece code already says which slot to touch.
func (b *Board) MakeMove(m Move) (ok bool, st MoveState) {
	st.move = m
	st.prevCastling = b.castlingRights
	st.prevEnPassant = b.enPassantSquare
	st.prevHalfmove = b.halfmoveClock
	st.prevFullmove = b.fullmoveNumber
	st.prevZobrist = b.zobristKey
	st.rookFrom, st.rookTo = NoSquare, NoSquare
	st.captured = NoPiece

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	captured := m.CapturedPiece()
	promo := m.PromotionPiece()
	flag := m.Flags()

	// Remove previous en passant from Zobrist if present
	if b.enPassantSquare != NoSquare {
		file := int(b.enPassantSquare % 8)
		b.zobristKey ^= zobristEnPassant[file]
	}
	b.enPassantSquare = NoSquare

	us := int(b.sideToMove)
	them := 1 - us
	fromBB := uint64(1) << uint(from)
	toBB := uint64(1) << uint(to)

	// Handle capture (including en passant)
	if flag == FlagEnPassant {
		var capSq Square
		var capPiece Piece
		if b.sideToMove == White {
			capSq = to - 8
			capPiece = BlackPawn
		} else {
			capSq = to + 8
			capPiece = WhitePawn
		}
		st.captured = capPiece
		capBB := uint64(1) << uint(capSq)
		b.pieceOn[int(capSq)] = NoPiece
		b.colorBB[them] &^= capBB
		b.colorBB[colorBoth] &^= capBB
		b.pieceBB[capPiece] &^= capBB
		b.zobristKey ^= zobristPiece[capPiece][int(capSq)]
	} else if captured != NoPiece {
		st.captured = captured
		b.pieceOn[int(to)] = NoPiece
		b.colorBB[them] &^= toBB
		b.colorBB[colorBoth] &^= toBB
		b.pieceBB[captured] &^= toBB
		b.zobristKey ^= zobristPiece[captured][int(to)]
	}

	// Move the piece (or promote)
	if promo != NoPiece {
		b.pieceOn[int(from)] = NoPiece
		b.colorBB[us] &^= fromBB
		b.colorBB[colorBoth] &^= fromBB
		b.pieceBB[moved] &^= fromBB
		b.zobristKey ^= zobristPiece[moved][int(from)]

		b.pieceOn[int(to)] = promo
		b.colorBB[us] |= toBB
		b.colorBB[colorBoth] |= toBB
		b.pieceBB[promo] |= toBB
		b.zobristKey ^= zobristPiece[promo][int(to)]
	} else {
		b.pieceOn[int(from)] = NoPiece
		b.pieceOn[int(to)] = moved
		b.colorBB[us] ^= (fromBB | toBB)
		b.colorBB[colorBoth] ^= (fromBB | toBB)
		b.pieceBB[moved] ^= (fromBB | toBB)

		b.zobristKey ^= zobristPiece[moved][int(from)]
		b.zobristKey ^= zobristPiece[moved][int(to)]
	}

	// Castling rook movement
	if flag == FlagCastle {
		if moved == WhiteKing {
			if to == 6 { // g1
				b.pieceOn[7] = NoPiece
				b.pieceOn[5] = WhiteRook
				rb := uint64(1) << 7
				nb := uint64(1) << 5
				b.colorBB[us] ^= (rb | nb)
				b.colorBB[colorBoth] ^= (rb | nb)
				b.pieceBB[WhiteRook] ^= (rb | nb)
				b.zobristKey ^= zobristPiece[WhiteRook][7]
				b.zobristKey ^= zobristPiece[WhiteRook][5]
				st.rookFrom, st.rookTo = 7, 5
			} else if to == 2 { // c1
				b.pieceOn[0] = NoPiece
				b.pieceOn[3] = WhiteRook
				rb := uint64(1) << 0
				nb := uint64(1) << 3
				b.colorBB[us] ^= (rb | nb)
				b.colorBB[colorBoth] ^= (rb | nb)
				b.pieceBB[WhiteRook] ^= (rb | nb)
				b.zobristKey ^= zobristPiece[WhiteRook][0]
				b.zobristKey ^= zobristPiece[WhiteRook][3]
				st.rookFrom, st.rookTo = 0, 3
			}
		} else if moved == BlackKing {
			if to == 62 { // g8
				b.pieceOn[63] = NoPiece
				b.pieceOn[61] = BlackRook
				rb := uint64(1) << 63
				nb := uint64(1) << 61
				b.colorBB[us] ^= (rb | nb)
				b.colorBB[colorBoth] ^= (rb | nb)
				b.pieceBB[BlackRook] ^= (rb | nb)
				b.zobristKey ^= zobristPiece[BlackRook][63]
				b.zobristKey ^= zobristPiece[BlackRook][61]
				st.rookFrom, st.rookTo = 63, 61
			} else if to == 58 { // c8
				b.pieceOn[56] = NoPiece
				b.pieceOn[59] = BlackRook
				rb := uint64(1) << 56
				nb := uint64(1) << 59
				b.colorBB[us] ^= (rb | nb)
				b.colorBB[colorBoth] ^= (rb | nb)
				b.pieceBB[BlackRook] ^= (rb | nb)
				b.zobristKey ^= zobristPiece[BlackRook][56]
				b.zobristKey ^= zobristPiece[BlackRook][59]
				st.rookFrom, st.rookTo = 56, 59
			}
		}
	}

	// Update castling rights
	newCR := b.castlingRights
	switch moved {
	case WhiteKing:
		newCR &^= (CastlingWhiteK | CastlingWhiteQ)
	case BlackKing:
		newCR &^= (CastlingBlackK | CastlingBlackQ)
	}
	if moved == WhiteRook {
		if from == 0 {
			newCR &^= CastlingWhiteQ
		} else if from == 7 {
			newCR &^= CastlingWhiteK
		}
	} else if moved == BlackRook {
		if from == 56 {
			newCR &^= CastlingBlackQ
		} else if from == 63 {
			newCR &^= CastlingBlackK
		}
	}
	// Rook captured on original squares removes rights
	if st.captured == WhiteRook || st.captured == BlackRook {
		switch to {
		case 0:
			newCR &^= CastlingWhiteQ
		case 7:
			newCR &^= CastlingWhiteK
		case 56:
			newCR &^= CastlingBlackQ
		case 63:
			newCR &^= CastlingBlackK
		}
	}
	if newCR != b.castlingRights {
		b.zobristKey ^= zobristCastle[int(b.castlingRights)]
		b.zobristKey ^= zobristCastle[int(newCR)]
		b.castlingRights = newCR
	}

	// Set en passant square if double pawn push
	if moved == WhitePawn || moved == BlackPawn {
		fromRank := int(from) / 8
		toRank := int(to) / 8
		if abs(toRank-fromRank) == 2 {
			var ep Square
			if b.sideToMove == White {
				ep = from + 8
			} else {
				ep = from - 8
			}
			b.enPassantSquare = ep
			file := int(ep % 8)
			b.zobristKey ^= zobristEnPassant[file]
		}
	}

	// Toggle side to move (+ Zobrist) before legality check so Unmake can rely on the toggled state
	b.sideToMove = 1 - b.sideToMove
	b.zobristKey ^= zobristSide

	// Reject illegal move that leaves mover in check (direct attack query, avoid wrapper overhead)
	moverColor := 1 - b.sideToMove
	occ := b.colorBB[colorBoth]
	kingBB := b.pieceBB[int(moverColor)*6+5]
	if kingBB != 0 {
		ks := bits.TrailingZeros64(kingBB)
		// Gate the king-safety check: required for king moves, en passant, or when the moved piece
		// originates from a square on any rook/bishop ray from our king (potential discovered check).
		needCheck := true
		if moved != WhiteKing && moved != BlackKing && flag != FlagEnPassant {
			rays := kingRaysUnion[ks]
			if ((rays >> uint(from)) & 1) == 0 {
				needCheck = false
			}
		}
		if needCheck && b.isSquareAttackedWithOcc(ks, 1-moverColor, occ) {
			b.UnmakeMove(m, st)
			return false, st
		}
	} else {
		// Shouldn't happen in valid positions; treat as illegal
		b.UnmakeMove(m, st)
		return false, st
	}

	// Halfmove clock
	if moved == WhitePawn || moved == BlackPawn || st.captured != NoPiece {
		b.halfmoveClock = 0
	} else {
		b.halfmoveClock++
	}

	// Fullmove number increments after a legal Black move
	if moverColor == Black {
		b.fullmoveNumber++
	}

	return true, st
}

// UnmakeMove undoes a previously made move, restoring board state.
func (b *Board) UnmakeMove(m Move, st MoveState) {
	// Toggle side back
	b.sideToMove = 1 - b.sideToMove
	b.zobristKey ^= zobristSide

	// Remove current en passant from Zobrist
	if b.enPassantSquare != NoSquare {
		file := int(b.enPassantSquare % 8)
		b.zobristKey ^= zobristEnPassant[file]
	}

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	promo := m.PromotionPiece()
	flag := m.Flags()

	us := int(b.sideToMove)
	them := 1 - us

	// Undo castling rook movement if any (inline)
	if flag == FlagCastle && st.rookFrom != NoSquare && st.rookTo != NoSquare {
		fromR := int(st.rookFrom)
		toR := int(st.rookTo)
		rbFrom := uint64(1) << uint(fromR)
		rbTo := uint64(1) << uint(toR)
		rook := WhiteRook
		if moved == BlackKing {
			rook = BlackRook
		}
		b.pieceOn[toR] = NoPiece
		b.pieceOn[fromR] = rook
		b.colorBB[us] ^= (rbFrom | rbTo)
		b.colorBB[colorBoth] ^= (rbFrom | rbTo)
		b.pieceBB[rook] ^= (rbFrom | rbTo)
		// Zobrist adjusted at end by prevZobrist
	}

	fromBB := uint64(1) << uint(from)
	toBB := uint64(1) << uint(to)
	b.pieceOn[int(to)] = NoPiece

	if promo != NoPiece {
		pawn := WhitePawn
		if moved == BlackPawn {
			pawn = BlackPawn
		}
		b.pieceOn[int(from)] = pawn
		b.colorBB[us] ^= (fromBB | toBB)
		b.colorBB[colorBoth] ^= (fromBB | toBB)
		b.pieceBB[promo] &^= toBB
		b.pieceBB[pawn] |= fromBB
	} else {
		b.pieceOn[int(from)] = moved
		b.colorBB[us] ^= (fromBB | toBB)
		b.colorBB[colorBoth] ^= (fromBB | toBB)
		b.pieceBB[moved] ^= (fromBB | toBB)
	}

	// Restore captured piece
	if st.captured != NoPiece {
		if flag == FlagEnPassant {
			var capSq Square
			if moved == WhitePawn {
				capSq = to - 8
			} else {
				capSq = to + 8
			}
			capIdx := int(capSq)
			capBB := uint64(1) << uint(capSq)
			b.pieceOn[capIdx] = st.captured
			b.colorBB[them] |= capBB
			b.colorBB[colorBoth] |= capBB
			b.pieceBB[st.captured] |= capBB
		} else {
			b.pieceOn[int(to)] = st.captured
			b.colorBB[them] |= toBB
			b.colorBB[colorBoth] |= toBB
			b.pieceBB[st.captured] |= toBB
		}
	}

	// Restore clocks, EP, castling rights
	if b.castlingRights != st.prevCastling {
		b.zobristKey ^= zobristCastle[int(b.castlingRights)]
		b.zobristKey ^= zobristCastle[int(st.prevCastling)]
	}
	b.castlingRights = st.prevCastling
	b.enPassantSquare = st.prevEnPassant
	if b.enPassantSquare != NoSquare {
		file := int(b.enPassantSquare % 8)
		b.zobristKey ^= zobristEnPassant[file]
	}
	b.halfmoveClock = st.prevHalfmove
	b.fullmoveNumber = st.prevFullmove

	// Ensure exact Zobrist restoration
	b.zobristKey = st.prevZobrist
}

// MakeNullMove performs a null move: it switches the side to move without moving any piece.
// It clears any en passant square, updates zobrist side/en-passant keys, and advances clocks
// as a reversible quiet half-move. The returned state can be used to restore via UnmakeNullMove.
func (b *Board) MakeNullMove() (st NullState) {
	st.prevEnPassant = b.enPassantSquare
	st.prevHalfmove = b.halfmoveClock
	st.prevFullmove = b.fullmoveNumber
	st.prevZobrist = b.zobristKey
	st.prevSide = b.sideToMove

	if b.enPassantSquare != NoSquare {
		file := int(b.enPassantSquare % 8)
		b.zobristKey ^= zobristEnPassant[file]
	}
	b.enPassantSquare = NoSquare

	b.halfmoveClock++

	b.sideToMove = 1 - b.sideToMove
	b.zobristKey ^= zobristSide

	if st.prevSide == Black {
		b.fullmoveNumber++
	}
	return st
}

// UnmakeNullMove restores the board to the state prior to MakeNullMove.
func (b *Board) UnmakeNullMove(st NullState) {
	b.enPassantSquare = st.prevEnPassant
	b.halfmoveClock = st.prevHalfmove
	b.fullmoveNumber = st.prevFullmove
	b.sideToMove = st.prevSide
	b.zobristKey = st.prevZobrist
}
