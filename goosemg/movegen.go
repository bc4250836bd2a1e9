package goosemg

import "math/bits"

// Precomputed attack masks for knights and kings from each square.
var knightMoves [64]uint64
var kingMoves [64]uint64

// Pawn attack masks: pawnAttacks[color][sq] gives bitboard of squares that a pawn of 'color' attacks from 'sq'.
var pawnAttacks [2][64]uint64

// Precomputed rays for sliders. For each square and direction, the bitboard of
// squares in that ray (excluding the origin square).
// Rook directions: 0=N, 1=S, 2=E, 3=W
var rookRays [64][4]uint64

// Bishop directions: 0=NE, 1=NW, 2=SE, 3=SW
var bishopRays [64][4]uint64

// Precomputed union of all rook and bishop rays from each square (for quick king-ray tests)
var kingRaysUnion [64]uint64

// Masks and lookup tables for magic-like slider attacks (using software pext/pdep).
var rookMask [64]uint64
var bishopMask [64]uint64
var rookAttTable [64][]uint64
var bishopAttTable [64][]uint64

func init() {
	initAttackTables()
	initRays()
	initSliderTables()
}

// initAttackTables precomputes move attack bitboards for knights, kings, and pawn captures.
func initAttackTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8
		var mask uint64
		for _, off := range knightOffsets {
			rf := rank + off[0]
			ff := file + off[1]
			if rf >= 0 && rf < 8 && ff >= 0 && ff < 8 {
				mask |= uint64(1) << uint(rf*8+ff)
			}
		}
		knightMoves[sq] = mask
	}

	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8
		var mask uint64
		for _, off := range kingOffsets {
			rf := rank + off[0]
			ff := file + off[1]
			if rf >= 0 && rf < 8 && ff >= 0 && ff < 8 {
				mask |= uint64(1) << uint(rf*8+ff)
			}
		}
		kingMoves[sq] = mask
	}

	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8

		if rank < 7 {
			if file > 0 {
				pawnAttacks[White][sq] |= uint64(1) << uint((rank+1)*8+file-1)
			}
			if file < 7 {
				pawnAttacks[White][sq] |= uint64(1) << uint((rank+1)*8+file+1)
			}
		}
		if rank > 0 {
			if file > 0 {
				pawnAttacks[Black][sq] |= uint64(1) << uint((rank-1)*8+file-1)
			}
			if file < 7 {
				pawnAttacks[Black][sq] |= uint64(1) << uint((rank-1)*8+file+1)
			}
		}
	}
}

// initRays precomputes directional rays for rook and bishop moves.
func initRays() {
	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8

		var ray uint64
		for r := rank + 1; r < 8; r++ {
			ray |= 1 << uint(r*8+file)
		}
		rookRays[sq][0] = ray

		ray = 0
		for r := rank - 1; r >= 0; r-- {
			ray |= 1 << uint(r*8+file)
			if r == 0 {
				break
			}
		}
		rookRays[sq][1] = ray

		ray = 0
		for f := file + 1; f < 8; f++ {
			ray |= 1 << uint(rank*8+f)
		}
		rookRays[sq][2] = ray

		ray = 0
		for f := file - 1; f >= 0; f-- {
			ray |= 1 << uint(rank*8+f)
			if f == 0 {
				break
			}
		}
		rookRays[sq][3] = ray

		ray = 0
		for r, f := rank+1, file+1; r < 8 && f < 8; r, f = r+1, f+1 {
			ray |= 1 << uint(r*8+f)
		}
		bishopRays[sq][0] = ray

		ray = 0
		for r, f := rank+1, file-1; r < 8 && f >= 0; r, f = r+1, f-1 {
			ray |= 1 << uint(r*8+f)
			if f == 0 {
				break
			}
		}
		bishopRays[sq][1] = ray

		ray = 0
		for r, f := rank-1, file+1; r >= 0 && f < 8; r, f = r-1, f+1 {
			ray |= 1 << uint(r*8+f)
			if r == 0 {
				break
			}
		}
		bishopRays[sq][2] = ray

		ray = 0
		for r, f := rank-1, file-1; r >= 0 && f >= 0; r, f = r-1, f-1 {
			ray |= 1 << uint(r*8+f)
			if r == 0 || f == 0 {
				break
			}
		}
		bishopRays[sq][3] = ray

		kingRaysUnion[sq] =
			rookRays[sq][0] | rookRays[sq][1] | rookRays[sq][2] | rookRays[sq][3] |
				bishopRays[sq][0] | bishopRays[sq][1] | bishopRays[sq][2] | bishopRays[sq][3]
	}
}

// initSliderTables builds per-square occupancy masks and attack tables.
func initSliderTables() {
	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8

		var rm uint64
		for r := rank + 1; r < 7; r++ {
			rm |= 1 << uint(r*8+file)
		}
		for r := rank - 1; r > 0; r-- {
			rm |= 1 << uint(r*8+file)
		}
		for f := file + 1; f < 7; f++ {
			rm |= 1 << uint(rank*8+f)
		}
		for f := file - 1; f > 0; f-- {
			rm |= 1 << uint(rank*8+f)
		}
		rookMask[sq] = rm

		var bm uint64
		for r, f := rank+1, file+1; r < 7 && f < 7; r, f = r+1, f+1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank+1, file-1; r < 7 && f > 0; r, f = r+1, f-1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank-1, file+1; r > 0 && f < 7; r, f = r-1, f+1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank-1, file-1; r > 0 && f > 0; r, f = r-1, f-1 {
			bm |= 1 << uint(r*8+f)
		}
		bishopMask[sq] = bm

		rBits := bits.OnesCount64(rm)
		bBits := bits.OnesCount64(bm)
		rookAttTable[sq] = make([]uint64, 1<<rBits)
		bishopAttTable[sq] = make([]uint64, 1<<bBits)

		for idx := 0; idx < (1 << rBits); idx++ {
			rookAttTable[sq][idx] = rookAttacks(sq, pdep(uint64(idx), rm))
		}
		for idx := 0; idx < (1 << bBits); idx++ {
			bishopAttTable[sq][idx] = bishopAttacks(sq, pdep(uint64(idx), bm))
		}
	}
}

// pext extracts the bits of x at positions set in mask, packing them into the low bits of the result.
func pext(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		bit := uint(bits.TrailingZeros64(m & -m))
		if (x>>bit)&1 != 0 {
			res |= 1 << idx
		}
		idx++
	}
	return res
}

// pdep deposits the low bits of x into the positions set in mask.
func pdep(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		bit := uint(bits.TrailingZeros64(m & -m))
		if (x>>idx)&1 != 0 {
			res |= 1 << bit
		}
		idx++
	}
	return res
}

func rookAttacksMagic(sq int, occ uint64) uint64 {
	return rookAttTable[sq][pext(occ, rookMask[sq])]
}

func bishopAttacksMagic(sq int, occ uint64) uint64 {
	return bishopAttTable[sq][pext(occ, bishopMask[sq])]
}

func queenAttacksMagic(sq int, occ uint64) uint64 {
	return rookAttacksMagic(sq, occ) | bishopAttacksMagic(sq, occ)
}

// computeCheckAndPins computes check state and pin masks for the side to move.
// Returns:
//   - inCheck: whether king is in check
//   - doubleCheck: whether there are two or more checkers
//   - checkMask: if single check, the set of squares that non-king moves may move to (block or capture)
//   - pinLine: for each origin square, the mask of squares a pinned piece there is still allowed to
//     move to along the pin line; zero means the piece on that square is not pinned
func (b *Board) computeCheckAndPins(side Color, occ uint64) (inCheck bool, doubleCheck bool, checkMask uint64, pinLine [64]uint64) {
	us := int(side)
	them := 1 - us
	themBase := them * 6

	kingBB := b.pieceBB[us*6+5]
	if kingBB == 0 {
		return false, false, 0, pinLine
	}
	ksq := bits.TrailingZeros64(kingBB)

	var checkers uint64
	if side == White {
		checkers |= pawnAttacks[White][ksq] & b.pieceBB[themBase+0]
	} else {
		checkers |= pawnAttacks[Black][ksq] & b.pieceBB[themBase+0]
	}
	checkers |= knightMoves[ksq] & b.pieceBB[themBase+1]
	checkers |= bishopAttacks(ksq, occ) & (b.pieceBB[themBase+2] | b.pieceBB[themBase+4])
	checkers |= rookAttacks(ksq, occ) & (b.pieceBB[themBase+3] | b.pieceBB[themBase+4])

	inCheck = checkers != 0
	doubleCheck = inCheck && (checkers&(checkers-1)) != 0

	if inCheck && !doubleCheck {
		c := bits.TrailingZeros64(checkers)
		cbb := uint64(1) << uint(c)

		switch typeOf(b.pieceOn[c]) {
		case PieceTypeRook:
			checkMask = raySliceTo(ksq, c, rookRays)
		case PieceTypeBishop:
			checkMask = raySliceTo(ksq, c, bishopRays)
		case PieceTypeQueen:
			if m := raySliceTo(ksq, c, rookRays); m != 0 {
				checkMask = m
			} else {
				checkMask = raySliceTo(ksq, c, bishopRays)
			}
		default:
			checkMask = cbb
		}
	}

	findPin(ksq, occ, b.colorBB[us], side, rookRays, rookIncreasing, func(p Piece) bool { return typeOf(p) == PieceTypeRook || typeOf(p) == PieceTypeQueen }, b.pieceOn, &pinLine)
	findPin(ksq, occ, b.colorBB[us], side, bishopRays, bishopIncreasing, func(p Piece) bool { return typeOf(p) == PieceTypeBishop || typeOf(p) == PieceTypeQueen }, b.pieceOn, &pinLine)

	return inCheck, doubleCheck, checkMask, pinLine
}

// rookIncreasing and bishopIncreasing record, per direction index, whether that ray's squares
// run toward increasing board indices. Rook rays are ordered N,S,E,W; bishop rays NE,NW,SE,SW.
var rookIncreasing = [4]bool{true, false, true, false}
var bishopIncreasing = [4]bool{true, true, false, false}

// raySliceTo finds the direction from origin to target among rays (rookRays or bishopRays)
// and returns the segment of that ray on origin's side of target, i.e. the squares a
// defender could block on or capture the checker at target.
func raySliceTo(origin, target int, rays [64][4]uint64) uint64 {
	tbb := uint64(1) << uint(target)
	for d := 0; d < 4; d++ {
		if rays[origin][d]&tbb != 0 {
			return rays[origin][d] &^ rays[target][d]
		}
	}
	return 0
}

// findPin walks the four directions of a ray table from the king square looking for a
// "our piece then their slider" pattern, and records the pin line for the pinned piece.
func findPin(ksq int, occ, ownOcc uint64, side Color, rays [64][4]uint64, increasing [4]bool, isPinner func(Piece) bool, pieceOn [64]Piece, pinLine *[64]uint64) {
	for d := 0; d < 4; d++ {
		ray := rays[ksq][d]
		blockers := ray & occ
		if blockers == 0 {
			continue
		}
		first := nearestBit(blockers, increasing[d])

		firstBB := uint64(1) << uint(first)
		if firstBB&ownOcc == 0 {
			continue
		}

		beyond := rays[first][d] & occ
		if beyond == 0 {
			continue
		}
		next := nearestBit(beyond, increasing[d])

		if isPinner(pieceOn[next]) && colorOf(pieceOn[next]) != side {
			pinLine[first] = rays[ksq][d] &^ rays[next][d]
		}
	}
}

// nearestBit returns the set bit of blockers closest to the ray's origin: the lowest index
// if the ray runs toward increasing indices, otherwise the highest.
func nearestBit(blockers uint64, increasing bool) int {
	if increasing {
		return bits.TrailingZeros64(blockers)
	}
	return 63 - bits.LeadingZeros64(blockers)
}


// ==========================
// Sliding attacks
// ==========================

// rookAttacks returns rook attack bitboard from sq given current occupancy.
func rookAttacks(sq int, occ uint64) uint64 {
	var attacks uint64
	for d := 0; d < 4; d++ {
		ray := rookRays[sq][d]
		if blockers := ray & occ; blockers != 0 {
			first := nearestBit(blockers, rookIncreasing[d])
			ray &^= rookRays[first][d]
		}
		attacks |= ray
	}
	return attacks
}

// bishopAttacks returns bishop attack bitboard from sq given current occupancy.
func bishopAttacks(sq int, occ uint64) uint64 {
	var attacks uint64
	for d := 0; d < 4; d++ {
		ray := bishopRays[sq][d]
		if blockers := ray & occ; blockers != 0 {
			first := nearestBit(blockers, bishopIncreasing[d])
			ray &^= bishopRays[first][d]
		}
		attacks |= ray
	}
	return attacks
}

// ==========================
// Attack queries
// ==========================

// IsSquareAttacked reports whether the given square is attacked by the given color.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.isSquareAttackedWithOcc(int(sq), by, b.AllOccupancy())
}

func (b *Board) isSquareAttackedWithOcc(s int, by Color, occ uint64) bool {
	base := int(by) * 6

	if by == White {
		if pawnAttacks[Black][s]&b.pieceBB[base+0] != 0 {
			return true
		}
	} else if pawnAttacks[White][s]&b.pieceBB[base+0] != 0 {
		return true
	}

	if knightMoves[s]&b.pieceBB[base+1] != 0 {
		return true
	}
	if kingMoves[s]&b.pieceBB[base+5] != 0 {
		return true
	}

	rq := b.pieceBB[base+3] | b.pieceBB[base+4]
	bq := b.pieceBB[base+2] | b.pieceBB[base+4]

	for d := 0; d < 4; d++ {
		if blockers := rookRays[s][d] & occ; blockers != 0 {
			first := nearestBit(blockers, rookIncreasing[d])
			if (uint64(1)<<uint(first))&rq != 0 {
				return true
			}
		}
	}
	for d := 0; d < 4; d++ {
		if blockers := bishopRays[s][d] & occ; blockers != 0 {
			first := nearestBit(blockers, bishopIncreasing[d])
			if (uint64(1)<<uint(first))&bq != 0 {
				return true
			}
		}
	}

	return false
}

// InCheck reports whether the specified color's king is currently in check.
func (b *Board) InCheck(color Color) bool {
	kingBB := b.pieceBB[int(color)*6+5]
	if kingBB == 0 {
		return false
	}
	ks := bits.TrailingZeros64(kingBB)
	return b.IsSquareAttacked(Square(ks), 1-color)
}

// filter modes for selective generation
const (
	genAll = iota
	genCaptures
	genQuiets
)

// sliderAttacks computes one slider piece's reachable squares given full-board occupancy.
type sliderAttacks func(sq int, occ uint64) uint64

// genCtx bundles the state every per-piece move generator needs so each one can be a short,
// focused function instead of hand-duplicating pin/check/filter logic per piece type.
type genCtx struct {
	b           *Board
	filter      int
	ownOcc      uint64
	oppOcc      uint64
	allOcc      uint64
	inCheck     bool
	doubleCheck bool
	checkMask   uint64
	pinLine     [64]uint64
}

// stepMoves generates moves for a non-sliding piece (knight or king-without-safety-check)
// whose reachable squares are given directly by a precomputed table, applying the shared
// pin/check pruning and capture/quiet filter.
func (g *genCtx) stepMoves(moves []Move, fromBB uint64, code Piece, table *[64]uint64) []Move {
	for fromBB != 0 {
		from := popLSB(&fromBB)
		targets := table[from] &^ g.ownOcc
		if pin := g.pinLine[from]; pin != 0 {
			targets &= pin
		}
		if g.inCheck {
			targets &= g.checkMask
		}
		moves = g.emit(moves, Square(from), code, targets)
	}
	return moves
}

// sliderMoves generates moves for every piece of one slider type (bishop, rook, or queen),
// consolidating what would otherwise be three near-identical loops into one.
func (g *genCtx) sliderMoves(moves []Move, fromBB uint64, code Piece, attacks sliderAttacks) []Move {
	for fromBB != 0 {
		from := popLSB(&fromBB)
		targets := attacks(from, g.allOcc) &^ g.ownOcc
		if pin := g.pinLine[from]; pin != 0 {
			targets &= pin
		}
		if g.inCheck {
			targets &= g.checkMask
		}
		moves = g.emit(moves, Square(from), code, targets)
	}
	return moves
}

// emit applies the capture/quiet filter to a candidate target set and appends the resulting moves.
func (g *genCtx) emit(moves []Move, from Square, code Piece, targets uint64) []Move {
	if g.filter == genCaptures {
		targets &= g.oppOcc
	} else if g.filter == genQuiets {
		targets &^= g.oppOcc
	}
	for targets != 0 {
		to := popLSB(&targets)
		cap := NoPiece
		if (g.oppOcc>>uint(to))&1 != 0 {
			cap = g.b.pieceOn[to]
		}
		moves = append(moves, NewMove(from, Square(to), code, cap, NoPiece, FlagNone))
	}
	return moves
}

// generateMovesFilteredInto is the core generator. It appends legal moves matching the filter into dst.
func (b *Board) generateMovesFilteredInto(dst []Move, filter int) []Move {
	moves := dst[:0]
	side := b.sideToMove
	us := int(side)
	them := 1 - us
	usBase := us * 6

	ownOcc := b.colorBB[us]
	oppOcc := b.colorBB[them]
	allOcc := ownOcc | oppOcc

	kingBB := b.pieceBB[usBase+5]
	ks := -1
	if kingBB != 0 {
		ks = bits.TrailingZeros64(kingBB)
	}

	inCheck, doubleCheck, checkMask, pinLine := b.computeCheckAndPins(side, allOcc)

	moves = b.generatePawnMoves(moves, side, filter, ownOcc, oppOcc, allOcc, ks, true, doubleCheck, inCheck, checkMask, pinLine)

	if !doubleCheck {
		g := &genCtx{b: b, filter: filter, ownOcc: ownOcc, oppOcc: oppOcc, allOcc: allOcc, inCheck: inCheck, doubleCheck: doubleCheck, checkMask: checkMask, pinLine: pinLine}
		moves = g.stepMoves(moves, b.pieceBB[usBase+1], PieceFromType(side, PieceTypeKnight), &knightMoves)
		moves = g.sliderMoves(moves, b.pieceBB[usBase+2], PieceFromType(side, PieceTypeBishop), bishopAttacksMagic)
		moves = g.sliderMoves(moves, b.pieceBB[usBase+3], PieceFromType(side, PieceTypeRook), rookAttacksMagic)
		moves = g.sliderMoves(moves, b.pieceBB[usBase+4], PieceFromType(side, PieceTypeQueen), queenAttacksMagic)
	}

	moves = b.generateKingMoves(moves, side, filter, ownOcc, allOcc, them, inCheck)

	return moves
}

// generatePawnMoves handles pushes, double-pushes, captures, promotions, and en passant for the side to move.
func (b *Board) generatePawnMoves(moves []Move, side Color, filter int, ownOcc, oppOcc, allOcc uint64, ks int, checkEPSafety bool, doubleCheck, inCheck bool, checkMask uint64, pinLine [64]uint64) []Move {
	us := int(side)
	them := 1 - us
	pawns := b.pieceBB[us*6+0]
	forward := 8
	startRank, promoRank := 1, 7
	var attackTable *[64]uint64
	var promoPieces [4]Piece
	var epCaptured Piece
	if side == White {
		attackTable = &pawnAttacks[White]
		promoPieces = [4]Piece{WhiteQueen, WhiteRook, WhiteBishop, WhiteKnight}
		epCaptured = BlackPawn
	} else {
		forward = -8
		startRank, promoRank = 6, 0
		attackTable = &pawnAttacks[Black]
		promoPieces = [4]Piece{BlackQueen, BlackRook, BlackBishop, BlackKnight}
		epCaptured = WhitePawn
	}

	allowed := func(toBB uint64, pinMask uint64) bool {
		if doubleCheck {
			return false
		}
		if pinMask != 0 && toBB&pinMask == 0 {
			return false
		}
		if inCheck && toBB&checkMask == 0 {
			return false
		}
		return true
	}

	for pawns != 0 {
		from := popLSB(&pawns)
		fromSq := Square(from)
		moved := b.pieceOn[from]
		pinMask := pinLine[from]

		one := from + forward
		if one >= 0 && one < 64 && (allOcc>>uint(one))&1 == 0 {
			toBB := uint64(1) << uint(one)
			if one/8 == promoRank {
				if allowed(toBB, pinMask) && filter != genCaptures {
					for _, pp := range promoPieces {
						moves = append(moves, NewMove(fromSq, Square(one), moved, NoPiece, pp, FlagNone))
					}
				}
			} else {
				if allowed(toBB, pinMask) && filter != genCaptures {
					moves = append(moves, NewMove(fromSq, Square(one), moved, NoPiece, NoPiece, FlagNone))
				}
				if from/8 == startRank {
					two := from + 2*forward
					if (allOcc>>uint(two))&1 == 0 {
						toBB2 := uint64(1) << uint(two)
						if allowed(toBB2, pinMask) && filter != genCaptures {
							moves = append(moves, NewMove(fromSq, Square(two), moved, NoPiece, NoPiece, FlagNone))
						}
					}
				}
			}
		}

		caps := attackTable[from]
		capTargets := caps & oppOcc
		for capTargets != 0 {
			to := popLSB(&capTargets)
			toSq := Square(to)
			capPiece := b.pieceOn[to]
			toBB := uint64(1) << uint(to)
			if !allowed(toBB, pinMask) {
				continue
			}
			if to/8 == promoRank {
				if filter != genQuiets {
					for _, pp := range promoPieces {
						moves = append(moves, NewMove(fromSq, toSq, moved, capPiece, pp, FlagNone))
					}
				}
			} else if filter != genQuiets {
				moves = append(moves, NewMove(fromSq, toSq, moved, capPiece, NoPiece, FlagNone))
			}
		}

		if b.enPassantSquare != NoSquare {
			ep := int(b.enPassantSquare)
			if caps&(uint64(1)<<uint(ep)) != 0 {
				toBB := uint64(1) << uint(ep)
				if !doubleCheck && !(pinMask != 0 && toBB&pinMask == 0) && filter != genQuiets {
					safe := !checkEPSafety
					if checkEPSafety && ks >= 0 {
						occp := allOcc &^ (uint64(1) << uint(from))
						capSq := ep - forward
						occp &^= uint64(1) << uint(capSq)
						occp |= toBB
						safe = !b.isSquareAttackedWithOcc(ks, Color(them), occp)
					} else if checkEPSafety {
						safe = false
					}
					if safe {
						moves = append(moves, NewMove(fromSq, Square(ep), moved, epCaptured, NoPiece, FlagEnPassant))
					}
				}
			}
		}
	}
	return moves
}

// generateKingMoves handles normal king steps (with a post-move safety check, since the king
// has no pin/checkmask shortcut) plus castling candidates.
func (b *Board) generateKingMoves(moves []Move, side Color, filter int, ownOcc, allOcc uint64, them int, inCheck bool) []Move {
	us := int(side)
	kbb := b.pieceBB[us*6+5]
	if kbb == 0 {
		return moves
	}
	from := bits.TrailingZeros64(kbb)
	fromSq := Square(from)
	moved := b.pieceOn[from]
	oppOcc := b.colorBB[them]

	targets := kingMoves[from] &^ ownOcc
	for t := targets; t != 0; {
		to := popLSB(&t)
		isCap := (oppOcc>>uint(to))&1 != 0
		if (filter == genCaptures && !isCap) || (filter == genQuiets && isCap) {
			continue
		}
		occp := (allOcc &^ (uint64(1) << uint(from))) | (uint64(1) << uint(to))
		if b.isSquareAttackedWithOcc(to, Color(them), occp) {
			continue
		}
		cap := NoPiece
		if isCap {
			cap = b.pieceOn[to]
		}
		moves = append(moves, NewMove(fromSq, Square(to), moved, cap, NoPiece, FlagNone))
	}

	if filter == genCaptures {
		return moves
	}

	type castleCandidate struct {
		right            CastlingRights
		empty            [3]int
		rookSq           int
		rook             Piece
		kingFrom, kingTo int
		pathCheck        [2]int
	}

	var candidates []castleCandidate
	if side == White {
		candidates = []castleCandidate{
			{CastlingWhiteK, [3]int{5, 6, -1}, 7, WhiteRook, 4, 6, [2]int{5, 6}},
			{CastlingWhiteQ, [3]int{1, 2, 3}, 0, WhiteRook, 4, 2, [2]int{3, 2}},
		}
	} else {
		candidates = []castleCandidate{
			{CastlingBlackK, [3]int{61, 62, -1}, 63, BlackRook, 60, 62, [2]int{61, 62}},
			{CastlingBlackQ, [3]int{57, 58, 59}, 56, BlackRook, 60, 58, [2]int{59, 58}},
		}
	}

	oppColor := White
	if side == White {
		oppColor = Black
	}

	for _, c := range candidates {
		if b.castlingRights&c.right == 0 || inCheck {
			continue
		}
		pathClear := b.pieceOn[c.rookSq] == c.rook
		for _, sq := range c.empty {
			if sq == -1 {
				continue
			}
			if b.pieceOn[sq] != NoPiece {
				pathClear = false
			}
		}
		if !pathClear {
			continue
		}
		if b.isSquareAttackedWithOcc(c.pathCheck[0], oppColor, allOcc) || b.isSquareAttackedWithOcc(c.pathCheck[1], oppColor, allOcc) {
			continue
		}
		moves = append(moves, NewMove(Square(c.kingFrom), Square(c.kingTo), moved, NoPiece, NoPiece, FlagCastle))
	}

	return moves
}

// GenerateMoves generates all legal moves for the current side to move.
// It allocates a new slice; prefer GenerateMovesInto to reuse buffers in hot paths.
func (b *Board) GenerateMoves() []Move { return b.GenerateMovesInto(make([]Move, 0, 128)) }

// GenerateMovesInto appends all legal moves for the side to move into dst and returns it.
// The dst slice is truncated (len=0) and reused to avoid allocations when capacity suffices.
func (b *Board) GenerateMovesInto(dst []Move) []Move {
	return b.generateMovesFilteredInto(dst, genAll)
}

// GenerateCapturesInto appends all legal captures (including en passant and capture promotions).
func (b *Board) GenerateCapturesInto(dst []Move) []Move {
	return b.generateMovesFilteredInto(dst, genCaptures)
}

// GenerateQuietsInto appends all legal non-capturing moves (includes non-capturing promotions and castling).
func (b *Board) GenerateQuietsInto(dst []Move) []Move {
	return b.generateMovesFilteredInto(dst, genQuiets)
}

// GenerateCaptures returns a newly allocated slice of legal capture moves.
func (b *Board) GenerateCaptures() []Move { return b.GenerateCapturesInto(make([]Move, 0, 128)) }

// GenerateQuiets returns a newly allocated slice of legal non-capturing moves.
func (b *Board) GenerateQuiets() []Move { return b.GenerateQuietsInto(make([]Move, 0, 128)) }

// GenerateChecksInto appends all legal checking moves (moves that give check) into dst and returns it.
// Implementation: generate legal moves then filter by simulating board occupancy after each move.
func (b *Board) GenerateChecksInto(dst []Move) []Move {
	moves := b.GenerateMovesInto(dst)
	if len(moves) == 0 {
		return moves[:0]
	}

	us := int(b.sideToMove)
	them := 1 - us
	occ := b.AllOccupancy()
	kbb := b.pieceBB[them*6+5]
	if kbb == 0 {
		return moves[:0]
	}
	ks := bits.TrailingZeros64(kbb)
	kBit := uint64(1) << uint(ks)
	rq := b.pieceBB[us*6+3] | b.pieceBB[us*6+4]
	bq := b.pieceBB[us*6+2] | b.pieceBB[us*6+4]

	out := moves[:0]
	for _, m := range moves {
		if b.moveGivesCheckSim(m, occ, ks, kBit, rq, bq) {
			out = append(out, m)
		}
	}
	return out
}

// moveGivesCheckSim simulates the occupancy change caused by m and reports whether it gives check.
// Used by GenerateChecksInto, which needs to test many already-legal candidate moves cheaply
// without calling the heavier MakeMove/UnmakeMove pair for each.
func (b *Board) moveGivesCheckSim(m Move, occ uint64, ks int, kBit, rq, bq uint64) bool {
	from := int(m.From())
	to := int(m.To())
	moved := m.MovedPiece()
	promo := m.PromotionPiece()
	flag := m.Flags()

	fromBB := uint64(1) << uint(from)
	toBB := uint64(1) << uint(to)
	occp := occ &^ fromBB

	if flag == FlagEnPassant {
		capSq := to - 8
		if b.sideToMove == Black {
			capSq = to + 8
		}
		occp &^= uint64(1) << uint(capSq)
		occp |= toBB
	} else {
		occp |= toBB
		if flag == FlagCastle {
			if b.sideToMove == White {
				if to == 6 {
					occp &^= uint64(1) << 7
					occp |= uint64(1) << 5
				} else if to == 2 {
					occp &^= uint64(1) << 0
					occp |= uint64(1) << 3
				}
			} else {
				if to == 62 {
					occp &^= uint64(1) << 63
					occp |= uint64(1) << 61
				} else if to == 58 {
					occp &^= uint64(1) << 56
					occp |= uint64(1) << 59
				}
			}
		}
	}

	dpiece := moved
	if promo != NoPiece {
		dpiece = promo
	}

	gives := false
	switch typeOf(dpiece) {
	case PieceTypePawn:
		if b.sideToMove == White {
			gives = pawnAttacks[White][to]&kBit != 0
		} else {
			gives = pawnAttacks[Black][to]&kBit != 0
		}
	case PieceTypeKnight:
		gives = knightMoves[to]&kBit != 0
	case PieceTypeBishop:
		gives = bishopAttacksMagic(to, occp)&kBit != 0
	case PieceTypeRook:
		gives = rookAttacksMagic(to, occp)&kBit != 0
	case PieceTypeQueen:
		gives = queenAttacksMagic(to, occp)&kBit != 0
	case PieceTypeKing:
		gives = kingMoves[to]&kBit != 0
	}

	if !gives && flag == FlagCastle {
		rTo := -1
		if b.sideToMove == White {
			if to == 6 {
				rTo = 5
			} else if to == 2 {
				rTo = 3
			}
		} else {
			if to == 62 {
				rTo = 61
			} else if to == 58 {
				rTo = 59
			}
		}
		if rTo >= 0 && rookAttacksMagic(rTo, occp)&kBit != 0 {
			gives = true
		}
	}

	if !gives {
		if rookAttacksMagic(ks, occp)&rq != 0 || bishopAttacksMagic(ks, occp)&bq != 0 {
			gives = true
		}
	}

	return gives
}

// GenerateChecks returns a newly allocated slice of legal checking moves.
func (b *Board) GenerateChecks() []Move { return b.GenerateChecksInto(make([]Move, 0, 128)) }

// GeneratePseudoMovesInto appends all pseudo-legal moves (no king-safety filtering) into dst and returns it.
// Pseudo-legal obeys piece rules and blockers; castling requires rights and empty path but ignores attack-on-path.
func (b *Board) GeneratePseudoMovesInto(dst []Move) []Move {
	moves := dst[:0]
	side := b.sideToMove
	us := int(side)
	them := 1 - us
	usBase := us * 6

	ownOcc := b.colorBB[us]
	oppOcc := b.colorBB[them]
	allOcc := ownOcc | oppOcc

	var zeroPins [64]uint64
	moves = b.generatePawnMoves(moves, side, genAll, ownOcc, oppOcc, allOcc, -1, false, false, false, 0, zeroPins)

	g := &genCtx{b: b, filter: genAll, ownOcc: ownOcc, oppOcc: oppOcc, allOcc: allOcc}
	moves = g.stepMoves(moves, b.pieceBB[usBase+1], PieceFromType(side, PieceTypeKnight), &knightMoves)
	moves = g.sliderMoves(moves, b.pieceBB[usBase+2], PieceFromType(side, PieceTypeBishop), bishopAttacksMagic)
	moves = g.sliderMoves(moves, b.pieceBB[usBase+3], PieceFromType(side, PieceTypeRook), rookAttacksMagic)
	moves = g.sliderMoves(moves, b.pieceBB[usBase+4], PieceFromType(side, PieceTypeQueen), queenAttacksMagic)

	kingBB := b.pieceBB[usBase+5]
	if kingBB != 0 {
		from := bits.TrailingZeros64(kingBB)
		fromSq := Square(from)
		moved := b.pieceOn[from]
		targets := kingMoves[from] &^ ownOcc
		for t := targets; t != 0; {
			to := popLSB(&t)
			cap := b.pieceOn[to]
			moves = append(moves, NewMove(fromSq, Square(to), moved, cap, NoPiece, FlagNone))
		}

		if side == White {
			if b.castlingRights&CastlingWhiteK != 0 && b.pieceOn[5] == NoPiece && b.pieceOn[6] == NoPiece && b.pieceOn[7] == WhiteRook {
				moves = append(moves, NewMove(4, 6, WhiteKing, NoPiece, NoPiece, FlagCastle))
			}
			if b.castlingRights&CastlingWhiteQ != 0 && b.pieceOn[1] == NoPiece && b.pieceOn[2] == NoPiece && b.pieceOn[3] == NoPiece && b.pieceOn[0] == WhiteRook {
				moves = append(moves, NewMove(4, 2, WhiteKing, NoPiece, NoPiece, FlagCastle))
			}
		} else {
			if b.castlingRights&CastlingBlackK != 0 && b.pieceOn[61] == NoPiece && b.pieceOn[62] == NoPiece && b.pieceOn[63] == BlackRook {
				moves = append(moves, NewMove(60, 62, BlackKing, NoPiece, NoPiece, FlagCastle))
			}
			if b.castlingRights&CastlingBlackQ != 0 && b.pieceOn[57] == NoPiece && b.pieceOn[58] == NoPiece && b.pieceOn[59] == NoPiece && b.pieceOn[56] == BlackRook {
				moves = append(moves, NewMove(60, 58, BlackKing, NoPiece, NoPiece, FlagCastle))
			}
		}
	}

	return moves
}

// GeneratePseudoMoves returns all pseudo-legal moves (allocates a new slice).
func (b *Board) GeneratePseudoMoves() []Move { return b.GeneratePseudoMovesInto(make([]Move, 0, 128)) }

// GenerateLegalMoves exposes the same API name as dragontoothmg for legal move generation.
func (b *Board) GenerateLegalMoves() []Move { return b.GenerateMoves() }

// CalculateRookMoveBitboard returns rook attacks from the given square for the supplied occupancy mask.
func CalculateRookMoveBitboard(square uint8, occupancy uint64) uint64 {
	return rookAttacksMagic(int(square), occupancy)
}

// CalculateBishopMoveBitboard returns bishop attacks from the given square for the supplied occupancy mask.
func CalculateBishopMoveBitboard(square uint8, occupancy uint64) uint64 {
	return bishopAttacksMagic(int(square), occupancy)
}

// Perft counts leaf nodes (move sequences) from the position for a given depth.
// Optimized to reuse per-depth buffers to avoid allocations.
func Perft(b *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	pc := perftCtx{bufs: make([][]Move, depth+1)}
	return perftRec(b, depth, &pc)
}

type perftCtx struct {
	bufs [][]Move
}

func (pc *perftCtx) bufFor(depth int) []Move {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(pc.bufs) {
		pc.bufs = append(pc.bufs, nil)
	}
	buf := pc.bufs[depth]
	if buf == nil {
		buf = make([]Move, 0, 256)
		pc.bufs[depth] = buf
	}
	return buf[:0]
}

func perftRec(b *Board, depth int, pc *perftCtx) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	moves := b.GenerateMovesInto(pc.bufFor(depth))
	for _, m := range moves {
		if ok, st := b.MakeMove(m); ok {
			nodes += perftRec(b, depth-1, pc)
			b.UnmakeMove(m, st)
		}
	}
	return nodes
}

// PerftDivide returns a map from each legal root move to the number of leaf nodes
// reachable from that move at the given depth. Useful for debugging.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth <= 0 {
		return result
	}
	moves := b.GenerateMoves()
	for _, m := range moves {
		if ok, st := b.MakeMove(m); ok {
			cnt := Perft(b, depth-1)
			b.UnmakeMove(m, st)
			result[m] = cnt
		}
	}
	return result
}
