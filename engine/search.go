package engine

import (
	"time"

	gm "github.com/kshade/chessforge/goosemg"
)

// Margins for pruning decisions, grouped by the pruning technique they
// belong to.
var (
	razorMarginPerDepth      int32 = 125
	staticNullMarginPerDepth int32 = 120
	deltaMargin              int32 = 100
	seePruneMargin                 = -50
)

var lateMovePruningLimits = [3]int{0, 4, 6}

const defaultMaxDepth = 64

// aspirationWindowCP is the initial half-width, in centipawns, of the
// aspiration window re-search around the previous iteration's score.
const aspirationWindowCP int32 = 50

// Result is what Think reports once a search ends, by budget exhaustion,
// cancellation, or reaching the requested depth.
type Result struct {
	BestMove gm.Move
	Score    int32
	Depth    int
	Nodes    uint64
}

// Think runs iterative deepening from position until the limits are
// exhausted or cancel is set, reporting one InfoLine per completed
// iteration through onInfo (which may be nil).
func Think(position *gm.Board, limits Limits, tt *TransTable, opts *Options, gameHistory []uint64, cancel *bool, onInfo func(InfoLine)) Result {
	eval := DefaultEvaluator
	tt.NewSearch()

	sc := NewSearchContext(tt, gameHistory, position.HalfmoveClock(), cancel)
	if n := len(gameHistory); n == 0 || gameHistory[n-1] != position.Hash() {
		sc.pushHistory(position.Hash(), position.HalfmoveClock())
	}

	var tm TimeManager
	tm.Start(limits, opts.GetInt(OptMoveOverheadMS, defaultMoveOverheadMS))
	if tm.hard > 0 {
		deadline, ok := tm.Deadline()
		sc.Deadline, sc.HasDeadline = deadline, ok
	}
	sc.MaxNodes = limits.MaxNodes

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	var (
		alpha, beta    int32 = -MaxScore, MaxScore
		window         int32 = aspirationWindowCP
		prevScore      int32
		bestMove       gm.Move
		bestScore      int32
		lastCompletePV PVLine
		completedDepth int
	)

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 {
			if sc.checkBudget() {
				break
			}
			if !limits.Infinite && tm.SoftExpired() {
				break
			}
			alpha = prevScore - window
			beta = prevScore + window
			if alpha < -MaxScore {
				alpha = -MaxScore
			}
			if beta > MaxScore {
				beta = MaxScore
			}
		}

		var pv PVLine
		start := time.Now()

		for {
			var childPV PVLine
			score := negamax(sc, position, eval, alpha, beta, int8(depth), 0, &childPV, 0, false)
			pv = childPV

			if sc.stopped {
				break
			}
			if score <= alpha {
				alpha = max32(-MaxScore, alpha-window)
				window *= 2
				continue
			}
			if score >= beta {
				beta = min32(MaxScore, beta+window)
				window *= 2
				continue
			}
			bestScore = score
			break
		}

		if sc.stopped {
			break
		}

		window = aspirationWindowCP
		prevScore = bestScore
		completedDepth = depth
		if len(pv.Moves) > 0 {
			bestMove = pv.Moves[0]
			lastCompletePV = pv.Clone()
		}

		elapsed := time.Since(start)
		if onInfo != nil {
			nps := uint64(0)
			if elapsed > 0 {
				nps = uint64(float64(sc.Nodes) / elapsed.Seconds())
			}
			info := InfoLine{
				Depth:   depth,
				Nodes:   sc.Nodes,
				Elapsed: elapsed.Milliseconds(),
				NPS:     nps,
				PV:      pvString(lastCompletePV),
			}
			if abs32(bestScore) > mateThreshold {
				info.Mate = mateDistance(bestScore)
			} else {
				info.ScoreCP = bestScore
			}
			onInfo(info)
		}

		tm.NoteIteration(uint32(bestMove), bestScore)

		if abs32(bestScore) > mateThreshold {
			break
		}
	}

	logCutStats(sc.CutStats)

	if bestMove == 0 {
		if legal := position.GenerateLegalMoves(); len(legal) > 0 {
			bestMove = legal[0]
		}
	}

	return Result{BestMove: bestMove, Score: bestScore, Depth: completedDepth, Nodes: sc.Nodes}
}

func mateDistance(score int32) int {
	plies := Checkmate - abs32(score)
	moves := (int(plies) + 1) / 2
	if score < 0 {
		return -moves
	}
	return moves
}

func pvString(pv PVLine) string {
	s := ""
	for i, m := range pv.Moves {
		if i > 0 {
			s += " "
		}
		s += m.String()
	}
	return s
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// negamax implements alpha-beta search with PVS, LMR, null-move pruning,
// razoring, static null-move pruning, late-move pruning and a
// transposition-table probe/store, all routed through sc instead of package
// globals.
func negamax(sc *SearchContext, b *gm.Board, eval Evaluator, alpha, beta int32, depth, ply int8, pv *PVLine, prevMove gm.Move, didNull bool) int32 {
	sc.Nodes++
	if sc.Nodes&2047 == 0 && sc.checkBudget() {
		return alpha
	}

	isRoot := ply == 0
	isPVNode := beta-alpha > 1
	inCheck := b.OurKingInCheck()

	if !isRoot {
		if sc.isDraw() {
			return DrawScore
		}
		if alpha < DrawScore && sc.isUpcomingRepetition() {
			alpha = DrawScore
			if alpha >= beta {
				return alpha
			}
		}
	}

	if int(ply) >= MaxPly {
		return eval.Evaluate(b)
	}

	if depth <= 0 {
		return quiescence(sc, b, eval, alpha, beta, pv, ply)
	}

	staticEval := eval.Evaluate(b)

	// Razoring: a position far below alpha with no check is unlikely to
	// recover within one or two plies; drop straight to quiescence.
	if !inCheck && depth <= 2 && staticEval+razorMarginPerDepth*int32(depth) <= alpha {
		var razorPV PVLine
		score := quiescence(sc, b, eval, alpha, beta, &razorPV, ply)
		if score <= alpha {
			sc.CutStats.RazoringCutoffs++
			return score
		}
	}

	key := b.Hash()
	var ttMove gm.Move
	if entry, ok := sc.TT.Probe(key); ok {
		ttMove = entry.Move
		if int8(entry.Depth) >= depth && !isRoot {
			score := entry.AdjustedScore(int(ply))
			switch entry.Bound {
			case BoundExact:
				sc.CutStats.TTCutoffs++
				return score
			case BoundUpper:
				if score <= alpha {
					sc.CutStats.TTCutoffs++
					return score
				}
			case BoundLower:
				if score >= beta {
					sc.CutStats.TTCutoffs++
					return score
				}
			}
		}
	}

	// Static null-move pruning: our position is already so good that even
	// giving the opponent a margin leaves us above beta.
	if !inCheck && !isPVNode && depth <= 3 && !isRoot {
		margin := staticNullMarginPerDepth * int32(depth)
		if staticEval-margin >= beta {
			sc.CutStats.StaticNullCutoffs++
			return staticEval - margin
		}
	}

	// Null-move pruning.
	if !inCheck && !isPVNode && !didNull && depth >= 3 && !isRoot && hasNonPawnMaterial(b) {
		undo := b.ApplyNullMove()
		sc.pushHistory(b.Hash(), b.HalfmoveClock())
		r := int8(2)
		if depth >= 5 {
			r = 3
		}
		reducedDepth := depth - 1 - r
		if reducedDepth < 0 {
			reducedDepth = 0
		}
		var childPV PVLine
		score := -negamax(sc, b, eval, -beta, -beta+1, reducedDepth, ply+1, &childPV, prevMove, true)
		sc.popHistory()
		undo()

		if sc.stopped {
			return alpha
		}
		if score >= beta && abs32(score) < mateThreshold {
			sc.CutStats.NullMoveCutoffs++
			return beta
		}
	}

	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return -Checkmate + int32(ply)
		}
		return DrawScore
	}

	improving := ply >= 2 && !inCheck && staticEval > alpha

	ordered := sc.scoreMoveList(b, moves, int(ply), ttMove, prevMove)

	var (
		bestScore int32 = -MaxScore
		bestMove  gm.Move
		ttFlag    int8 = BoundUpper
		legal     int
		quietsTried = make([]gm.Move, 0, 16)
	)

	for i := 0; i < len(ordered.moves); i++ {
		orderNext(i, &ordered)
		move := ordered.moves[i].move
		legal++

		isCapture := gm.IsCapture(move, b)
		isPromotion := move.PromotionPieceType() != gm.PieceTypeNone
		givesCheck := b.GivesCheck(move)
		tactical := isCapture || isPromotion || givesCheck

		// Late-move pruning: skip quiet moves late in the list at shallow
		// depth away from the PV.
		if depth <= 2 && !isPVNode && !isRoot && !tactical && legal > 1 {
			limit := lateMovePruningLimits[Min(int(depth), len(lateMovePruningLimits)-1)]
			if legal > limit {
				sc.CutStats.LateMovePrunes++
				continue
			}
		}

		if !isCapture {
			quietsTried = append(quietsTried, move)
		}

		undo := b.Apply(move)
		sc.pushHistory(b.Hash(), b.HalfmoveClock())

		var childPV PVLine
		var score int32
		nextDepth := depth - 1

		if legal == 1 {
			score = -negamax(sc, b, eval, -beta, -alpha, nextDepth, ply+1, &childPV, move, false)
		} else {
			reduction := int8(0)
			if depth >= 3 && !tactical {
				reduction = lmrTable[Min(int(depth), 63)][Min(legal, 127)]
				if !improving {
					reduction++
				}
				if nextDepth-reduction < 0 {
					reduction = nextDepth
				}
			}

			score = -negamax(sc, b, eval, -alpha-1, -alpha, nextDepth-reduction, ply+1, &childPV, move, false)
			if score > alpha && reduction > 0 {
				score = -negamax(sc, b, eval, -alpha-1, -alpha, nextDepth, ply+1, &childPV, move, false)
			}
			if score > alpha && score < beta {
				score = -negamax(sc, b, eval, -beta, -alpha, nextDepth, ply+1, &childPV, move, false)
			}
		}

		sc.popHistory()
		undo()

		if sc.stopped {
			return alpha
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}

		if score >= beta {
			sc.CutStats.BetaCutoffs++
			ttFlag = BoundLower
			if !isCapture {
				sc.recordKiller(move, int(ply))
				sc.recordCountermove(b.SideToMove(), prevMove, move)
				sc.addHistory(b.SideToMove(), move, int(depth))
				for _, failed := range quietsTried {
					if failed != move {
						sc.subHistory(b.SideToMove(), failed, int(depth))
					}
				}
			}
			break
		}

		if score > alpha {
			alpha = score
			ttFlag = BoundExact
			pv.Update(move, childPV)
			if !isCapture {
				sc.addHistory(b.SideToMove(), move, int(depth))
			}
		}
	}

	if !sc.stopped {
		sc.TT.Store(key, depth, int(ply), bestScore, staticEval, ttFlag, bestMove)
	}

	return bestScore
}

// quiescence searches captures and promotions only, using stand-pat,
// delta pruning and SEE pruning to avoid exploring losing exchanges.
func quiescence(sc *SearchContext, b *gm.Board, eval Evaluator, alpha, beta int32, pv *PVLine, ply int8) int32 {
	sc.Nodes++
	if sc.Nodes&2047 == 0 && sc.checkBudget() {
		return alpha
	}

	inCheck := b.OurKingInCheck()
	standPat := eval.Evaluate(b)

	if !inCheck {
		if standPat >= beta {
			sc.CutStats.QStandPatCutoffs++
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	bestScore := standPat
	if inCheck {
		bestScore = -Checkmate + int32(ply)
	}

	moves := tacticalMoves(b, inCheck)
	ordered := sc.scoreMoveList(b, moves, int(ply), 0, 0)

	for i := 0; i < len(ordered.moves); i++ {
		orderNext(i, &ordered)
		move := ordered.moves[i].move

		if !inCheck {
			if see(b, move, false) < seePruneMargin {
				continue
			}

			gain := int32(0)
			if captured := move.CapturedPiece(); captured != gm.NoPiece {
				gain = pieceValue[captured.Type()]
			}
			if promo := move.PromotionPieceType(); promo != gm.PieceTypeNone {
				gain += pieceValue[promo] - pieceValue[gm.PieceTypePawn]
			}
			if standPat+gain+deltaMargin < alpha {
				continue
			}
		}

		undo := b.Apply(move)
		var childPV PVLine
		score := -quiescence(sc, b, eval, -beta, -alpha, &childPV, ply+1)
		undo()

		if sc.stopped {
			return alpha
		}

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			sc.CutStats.QBetaCutoffs++
			return score
		}
		if score > alpha {
			alpha = score
			pv.Update(move, childPV)
		}
	}

	return bestScore
}

// tacticalMoves returns every move quiescence should consider: all legal
// moves while in check (to find an escape), otherwise captures plus
// non-capturing promotions.
func tacticalMoves(b *gm.Board, inCheck bool) []gm.Move {
	if inCheck {
		return b.GenerateLegalMoves()
	}
	moves := b.GenerateCaptures()
	for _, m := range b.GenerateQuiets() {
		if m.PromotionPieceType() != gm.PieceTypeNone {
			moves = append(moves, m)
		}
	}
	return moves
}

func hasNonPawnMaterial(b *gm.Board) bool {
	bb := b.Bitboards(b.SideToMove())
	return bb.Knights|bb.Bishops|bb.Rooks|bb.Queens != 0
}
