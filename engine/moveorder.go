package engine

import (
	gm "github.com/kshade/chessforge/goosemg"
)

// Ordering scores are banded so that one category never outranks another
// regardless of the tiebreak value added within it.
const (
	scoreTTMove       int32 = 1_000_000
	scoreCountermove  int32 = 900_000
	scoreKillerFirst  int32 = 800_000
	scoreKillerSecond int32 = 790_000
	scoreCapture      int32 = 600_000
	scorePromotion    int32 = 500_000
	scoreQuiet        int32 = 0
)

// mvvLva[victim][attacker] biases captures toward taking the most valuable
// piece with the least valuable one.
var mvvLva [7][7]int32

func init() {
	for victim := gm.PieceTypePawn; victim <= gm.PieceTypeKing; victim++ {
		for attacker := gm.PieceTypePawn; attacker <= gm.PieceTypeKing; attacker++ {
			mvvLva[victim][attacker] = pieceValue[victim]*16 - pieceValue[attacker]
		}
	}
}

type scoredMove struct {
	move  gm.Move
	score int32
}

type moveList struct {
	moves []scoredMove
}

// scoreMoveList assigns an ordering score to every move in moves. prevMove
// is the opponent's last move (used for the countermove lookup); ttMove is
// the move recalled from the transposition table for this position, if any.
func (sc *SearchContext) scoreMoveList(b *gm.Board, moves []gm.Move, ply int, ttMove, prevMove gm.Move) moveList {
	side := b.SideToMove()
	counter := sc.countermove(side, prevMove)

	out := moveList{moves: make([]scoredMove, len(moves))}
	for i, m := range moves {
		out.moves[i] = scoredMove{move: m, score: sc.scoreMove(b, m, ply, ttMove, counter)}
	}
	return out
}

func (sc *SearchContext) scoreMove(b *gm.Board, m gm.Move, ply int, ttMove, counter gm.Move) int32 {
	if m == ttMove {
		return scoreTTMove
	}

	if gm.IsCapture(m, b) {
		victim := m.CapturedPiece().Type()
		if victim == gm.PieceTypeNone {
			victim = gm.PieceTypePawn // en passant: captured piece field is set, but guard anyway
		}
		attacker := m.MovedPiece().Type()
		return scoreCapture + mvvLva[victim][attacker]
	}

	if m.PromotionPieceType() != gm.PieceTypeNone {
		return scorePromotion + pieceValue[m.PromotionPieceType()]
	}

	if m == counter {
		return scoreCountermove
	}
	if ply >= 0 && ply < MaxPly {
		if sc.Killers[0][ply] == m {
			return scoreKillerFirst
		}
		if sc.Killers[1][ply] == m {
			return scoreKillerSecond
		}
	}

	return scoreQuiet + sc.historyScore(b.SideToMove(), m)
}

// orderNext selects the highest-scoring remaining move at or after index
// and swaps it into place, turning the move list into a lazily-sorted
// selection sort driven by the search loop.
func orderNext(index int, list *moveList) {
	best := index
	for i := index + 1; i < len(list.moves); i++ {
		if list.moves[i].score > list.moves[best].score {
			best = i
		}
	}
	if best != index {
		list.moves[index], list.moves[best] = list.moves[best], list.moves[index]
	}
}
