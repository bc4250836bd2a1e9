package goosemg

import (
	"errors"
	"fmt"
	"strings"
)

// Startpos constant.
const Startpos = FENStartPos

// FEN parser that panics on invalid input. Kept for callers that already
// guarantee well-formed input (tests, fixtures) and would rather crash loudly
// than thread an error through call sites that cannot fail in practice.
func ParseFen(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return *b
}

// ToFen exposes the camel-case variant expected by existing engine code.
func (b *Board) ToFen() string { return b.ToFEN() }

// Apply plays a move and returns an undo closure.
func (b *Board) Apply(m Move) func() {
	ok, st := b.MakeMove(m)
	if !ok {
		panic("goosemg.Apply: illegal move applied")
	}
	return func() { b.UnmakeMove(m, st) }
}

// ApplyNullMove performs a null move and returns the corresponding undo closure.
func (b *Board) ApplyNullMove() func() {
	st := b.MakeNullMove()
	return func() { b.UnmakeNullMove(st) }
}

// OurKingInCheck reports whether the side to move has its king in check.
func (b *Board) OurKingInCheck() bool { return b.InCheck(b.sideToMove) }

// IsCapture reports whether the given move captures a piece (including en passant).
func IsCapture(m Move, b *Board) bool {
	toBB := uint64(1) << uint(m.To())
	if (toBB & b.AllOccupancy()) != 0 {
		return true
	}
	if b.enPassantSquare == NoSquare {
		return false
	}
	fromBB := uint64(1) << uint(m.From())
	originIsPawn := (fromBB & (b.pieceBB[WhitePawn] | b.pieceBB[BlackPawn])) != 0
	epBB := uint64(1) << uint(b.enPassantSquare)
	return originIsPawn && (toBB&epBB) != 0
}

// ErrIllegalMove is the sentinel wrapped by PlayUCIMove when the move text
// names no legal move for the side to move. Callers distinguish it from
// ErrInvalidMoveText with errors.Is.
var ErrIllegalMove = errors.New("goosemg: illegal move")

// ErrInvalidMoveText is returned by PlayUCIMove when the text itself is malformed.
var ErrInvalidMoveText = errors.New("goosemg: invalid move text")

// PlayUCIMove parses a 4- or 5-character move ("e2e4", "e7e8q"), finds the
// matching legal move by (from, to, promotion type) and applies it. The
// promotion piece, if any, is resolved against the side actually to move
// rather than a fixed color.
func (b *Board) PlayUCIMove(text string) (Move, error) {
	from, to, promoType, err := parseUCIMoveText(text)
	if err != nil {
		return 0, err
	}
	for _, m := range b.GenerateLegalMoves() {
		if m.From() == from && m.To() == to && m.PromotionPieceType() == promoType {
			if ok, _ := b.MakeMove(m); ok {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrIllegalMove, text)
}

func parseUCIMoveText(text string) (from, to Square, promoType PieceType, err error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if len(text) < 4 || len(text) > 5 {
		return 0, 0, PieceTypeNone, ErrInvalidMoveText
	}
	fi, err := algebraicToIndex(text[0:2])
	if err != nil {
		return 0, 0, PieceTypeNone, ErrInvalidMoveText
	}
	ti, err := algebraicToIndex(text[2:4])
	if err != nil {
		return 0, 0, PieceTypeNone, ErrInvalidMoveText
	}
	from, to = Square(fi), Square(ti)
	if len(text) == 5 {
		switch text[4] {
		case 'q':
			promoType = PieceTypeQueen
		case 'r':
			promoType = PieceTypeRook
		case 'b':
			promoType = PieceTypeBishop
		case 'n':
			promoType = PieceTypeKnight
		default:
			return 0, 0, PieceTypeNone, ErrInvalidMoveText
		}
	}
	return from, to, promoType, nil
}

func algebraicToIndex(alg string) (int, error) {
	if len(alg) != 2 {
		return 0, ErrInvalidMoveText
	}
	file := alg[0]
	rank := alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, ErrInvalidMoveText
	}
	return int(file-'a') + int(rank-'1')*8, nil
}
