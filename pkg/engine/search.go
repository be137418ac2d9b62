package engine

import (
	. "github.com/Gero-Marten/SugaR/pkg/common"
)

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// drawValue keeps repetition scores off exact zero so the search cannot
// oscillate between equivalent draws; one node-counter bit is noise enough.
func (w *worker) drawValue() int {
	return ValueDraw - 1 + int(w.nodes&2)
}

func boundCoversBeta(bound, value, beta int) bool {
	if value >= beta {
		return bound&boundLower != 0
	}
	return bound&boundUpper != 0
}

func (w *worker) evaluate(height int) int {
	var frame = w.frame(height)
	var v = w.evaluator.EvaluateQuick(&frame.position)
	if !IsValid(v) {
		// collaborator soft failure: fall back to a flat score rather
		// than poisoning the bounds
		v = ValueDraw
	}
	return Clamp(v, -ValueTBWinInMaxPly+1, ValueTBWinInMaxPly-1)
}

// correctionValue blends the four correction histories into one signed
// adjustment for the raw static eval.
func (w *worker) correctionValue(height int) int {
	var frame = w.frame(height)
	var pos = &frame.position
	var stm = pos.SideToMove()
	var h = &w.history

	var pawnIdx = int(pos.PawnKey() % correctionSize)
	var minorIdx = int(pos.MinorKey() % correctionSize)
	var npwIdx = int(pos.NonPawnKey(SideWhite) % correctionSize)
	var npbIdx = int(pos.NonPawnKey(SideBlack) % correctionSize)

	var cv = 9536*int(h.pawnCorrection[pawnIdx][stm]) +
		8494*int(h.minorCorrection[minorIdx][stm]) +
		10132*(int(h.nonPawnCorrection[npwIdx][SideWhite][stm])+
			int(h.nonPawnCorrection[npbIdx][SideBlack][stm]))/2

	var prior2 = w.frame(height - 2)
	var prior1 = w.frame(height - 1)
	if prior2.contCorr != nil && prior1.pieceTo >= 0 {
		cv += 7156 * int(prior2.contCorr[prior1.pieceTo])
	}
	return cv
}

func correctedEval(raw, correction int) int {
	return Clamp(raw+correction/131072, -ValueTBWinInMaxPly+1, ValueTBWinInMaxPly-1)
}

func (w *worker) updateCorrectionHistories(height, bonus int) {
	var frame = w.frame(height)
	var pos = &frame.position
	var stm = pos.SideToMove()
	var h = &w.history
	bonus = Clamp(bonus, -correctionMax/4, correctionMax/4)

	gravity(&h.pawnCorrection[pos.PawnKey()%correctionSize][stm], bonus, correctionMax)
	gravity(&h.minorCorrection[pos.MinorKey()%correctionSize][stm], bonus, correctionMax)
	gravity(&h.nonPawnCorrection[pos.NonPawnKey(SideWhite)%correctionSize][SideWhite][stm], bonus, correctionMax)
	gravity(&h.nonPawnCorrection[pos.NonPawnKey(SideBlack)%correctionSize][SideBlack][stm], bonus, correctionMax)

	var prior2 = w.frame(height - 2)
	var prior1 = w.frame(height - 1)
	if prior2.contCorr != nil && prior1.pieceTo >= 0 {
		gravity(&prior2.contCorr[prior1.pieceTo], bonus, correctionMax)
	}
}

// updateContinuation feeds a bonus through the continuation tables of the
// plies 1, 2 and 4 behind height for the move about to be credited.
func (w *worker) updateContinuation(height, side int, m Move, bonus int) {
	var pieceTo = pieceSquareIndex(side, m.MovingPiece(), m.To())
	for _, back := range [...]int{1, 2, 4} {
		if t := w.contHistAt(height, back); t != nil {
			gravity(&t[pieceTo], bonus, contHistoryMax)
		}
	}
}

func (w *worker) updateQuietHistories(height int, m Move, bonus int) {
	var frame = w.frame(height)
	var pos = &frame.position
	var side = pos.SideToMove()
	w.history.updateMain(side, m, bonus)
	w.history.updatePawn(int(pos.PawnKey()%pawnHistorySize), side, m, bonus)
	w.history.updateLowPly(height, side, m, bonus)
	w.updateContinuation(height, side, m, bonus)
}

// updateAllStats is the step-8 bookkeeping after a node found a best move.
func (w *worker) updateAllStats(height int, bestMove Move, quiets, captures []Move, depth, moveCount int, bestIsTTMove bool) {
	var frame = w.frame(height)
	var side = frame.position.SideToMove()
	var bonus = historyBonus(depth) + 302*b2i(bestIsTTMove)
	var malus = historyMalus(depth, moveCount)

	if !isCaptureOrPromotion(bestMove) {
		w.updateQuietHistories(height, bestMove, bonus)
		for _, m := range quiets {
			if m != bestMove {
				w.updateQuietHistories(height, m, -malus)
			}
		}
	} else {
		w.history.updateCapture(side, bestMove, bonus)
	}
	for _, m := range captures {
		if m != bestMove {
			w.history.updateCapture(side, m, -malus)
		}
	}
}

// search is the principal-variation recursion. Node character is carried
// at runtime: rootNode by height, pvNode by window width, cutNode by the
// caller's expectation.
func (w *worker) search(alpha, beta, depth, height int, cutNode bool) int {
	if depth <= 0 {
		return w.qsearch(alpha, beta, height)
	}
	depth = Min(depth, MaxPly-1)

	var e = w.engine
	var rootNode = height == 0
	var pvNode = beta != alpha+1
	var allNode = !pvNode && !cutNode
	var frame = w.frame(height)
	var pos = &frame.position
	var excluded = frame.excludedMove

	// Step 1: an upcoming forced repetition bounds the score at draw
	if !rootNode && alpha < ValueDraw && w.hasUpcomingRepetition(height) {
		alpha = w.drawValue()
		if alpha >= beta {
			return alpha
		}
	}

	if pvNode {
		frame.pv.clear()
		if w.selDepth < height+1 {
			w.selDepth = height + 1
		}
	}

	var inCheck = pos.IsCheck()
	frame.inCheck = inCheck
	frame.moveCount = 0

	// Step 2: terminal states and mate-distance pruning
	if !rootNode {
		if height >= MaxPly {
			if inCheck {
				return ValueDraw
			}
			return w.evaluate(height)
		}
		if isDraw(pos) || w.isRepeat(height) {
			return w.drawValue()
		}
		alpha = Max(alpha, MatedIn(height))
		beta = Min(beta, MateIn(height+1))
		if alpha >= beta {
			return alpha
		}
	}

	var prior = w.frame(height - 1)
	var priorReduction = prior.reduction
	prior.reduction = 0

	// Step 3: transposition table
	var ttDepth, ttValue, ttEval, ttBound int
	var ttWire uint16
	var ttPvFlag, ttHit bool
	ttValue = ValueNone
	ttEval = ValueNone
	if excluded == MoveEmpty {
		var raw int
		ttDepth, raw, ttEval, ttBound, ttWire, ttPvFlag, ttHit = e.transTable.Read(pos.Key)
		ttValue = ValueFromTT(raw, height, pos.Rule50)
		frame.ttHit = ttHit
		frame.ttPv = pvNode || (ttHit && ttPvFlag)
	}

	if rootNode {
		ttWire = uint16(w.rootMoves[w.pvIdx].PV[0].Wire())
	}

	if !pvNode && excluded == MoveEmpty && ttHit && IsValid(ttValue) &&
		ttDepth > depth-b2i(ttValue <= beta) &&
		boundCoversBeta(ttBound, ttValue, beta) &&
		pos.Rule50 < 96 &&
		w.verifyTTCutoff(height, depth, beta, ttWire, ttValue) {
		// a quiet TT move that cuts keeps earning its ordering credit
		if ttWire != 0 && ttValue >= beta {
			if m, ok := w.resolveWire(height, ttWire); ok && !isCaptureOrPromotion(m) {
				w.updateQuietHistories(height, m, historyBonus(depth))
			}
			if prior.currentMove != MoveEmpty && !isCapture(prior.currentMove) && prior.moveCount <= 2 {
				w.updateContinuation(height-1, w.frame(height-1).position.SideToMove(),
					prior.currentMove, -historyMalus(depth+1, prior.moveCount))
			}
		}
		return ttValue
	}

	// Step 4: tablebase probe
	var maxValue = ValueInfinity
	if !rootNode && excluded == MoveEmpty && w.tbConfig.Cardinality > 0 &&
		pos.PieceCount() <= w.tbConfig.Cardinality &&
		(pos.PieceCount() < w.tbConfig.Cardinality || depth >= w.tbConfig.ProbeDepth) &&
		pos.Rule50 == 0 {
		if wdl, ok := e.Tablebases.ProbeWDL(pos); ok {
			w.tbHits++
			var drawScore = b2i(w.tbConfig.UseRule50)
			var tbValue int
			var bound int
			switch {
			case wdl < -drawScore:
				tbValue = -ValueTB + height + 1
				bound = boundUpper
			case wdl > drawScore:
				tbValue = ValueTB - height - 1
				bound = boundLower
			default:
				tbValue = ValueDraw + 2*wdl*drawScore
				bound = boundExact
			}
			if bound == boundExact ||
				(bound == boundLower && tbValue >= beta) ||
				(bound == boundUpper && tbValue <= alpha) {
				e.transTable.Update(pos.Key, Min(depth+6, MaxPly-1),
					ValueToTT(tbValue, height), ValueNone, bound, frame.ttPv, 0)
				return tbValue
			}
			if pvNode {
				if bound == boundLower {
					alpha = Max(alpha, tbValue)
				} else {
					maxValue = tbValue
				}
			}
		}
	}

	// Step 5: static evaluation, corrected and possibly sharpened by the TT
	var unadjustedEval = ValueNone
	var eval int
	var improving, opponentWorsening bool
	var correction = w.correctionValue(height)

	if inCheck {
		frame.staticEval = w.frame(height - 2).staticEval
		eval = frame.staticEval
		goto movesLoop
	}
	if excluded != MoveEmpty {
		unadjustedEval = frame.staticEval
		eval = frame.staticEval
	} else if ttHit {
		unadjustedEval = ttEval
		if !IsValid(unadjustedEval) {
			unadjustedEval = w.evaluate(height)
		}
		frame.staticEval = correctedEval(unadjustedEval, correction)
		eval = frame.staticEval
		if IsValid(ttValue) && boundCoversBeta(ttBound, ttValue, eval+1) {
			eval = ttValue
		}
	} else {
		unadjustedEval = w.evaluate(height)
		frame.staticEval = correctedEval(unadjustedEval, correction)
		eval = frame.staticEval
	}

	improving = false
	if IsValid(w.frame(height - 2).staticEval) {
		improving = frame.staticEval > w.frame(height-2).staticEval
	} else if IsValid(w.frame(height - 4).staticEval) {
		improving = frame.staticEval > w.frame(height-4).staticEval
	}
	opponentWorsening = IsValid(prior.staticEval) && frame.staticEval+prior.staticEval > 2

	// hindsight adjustments from the reduction the parent applied to us
	if priorReduction >= 3 && !opponentWorsening {
		depth++
	}
	if priorReduction >= 1 && depth >= 2 &&
		IsValid(prior.staticEval) && frame.staticEval+prior.staticEval > 175 {
		depth--
	}

	// Step 6: the pruning gauntlet
	if !rootNode && excluded == MoveEmpty {
		// razoring
		if !pvNode && eval < alpha-514-294*depth*depth {
			var v = w.qsearch(alpha-1, alpha, height)
			if v < alpha && !IsDecisive(v) {
				return v
			}
		}

		// child-node futility
		if !frame.ttPv && depth < 14 && !IsLoss(beta) && !IsWin(eval) &&
			eval-futilityMargin(depth, improving, opponentWorsening, prior.statScore, correction) >= beta {
			return (2*beta + eval) / 3
		}

		// null-move pruning
		if cutNode && prior.currentMove != MoveEmpty &&
			frame.staticEval >= beta-18*depth+390 &&
			!IsLoss(beta) &&
			pos.NonPawnMaterial(pos.SideToMove()) > 0 &&
			height >= w.nmpMinPly {
			var r = Min(6+depth/3, depth)
			w.makeNullMove(height)
			var nullValue = -w.search(-beta, -beta+1, depth-r, height+1, false)
			w.unmakeMove()
			if nullValue >= beta && !IsWin(nullValue) {
				if w.nmpMinPly != 0 || depth < 16 {
					return nullValue
				}
				// verification search at high depth with null moves
				// disabled down to nmpMinPly
				w.nmpMinPly = height + 3*(depth-r)/4
				var v = w.search(beta-1, beta, depth-r, height, false)
				w.nmpMinPly = 0
				if v >= beta {
					return nullValue
				}
			}
		}

		// internal iterative reduction
		if !allNode && depth >= 6 && ttWire == 0 && priorReduction <= 3 {
			depth--
		}

		// ProbCut
		var probCutBeta = beta + 224 - 64*b2i(improving)
		if depth >= 3 && !IsDecisive(beta) &&
			!(IsValid(ttValue) && ttValue < probCutBeta) {
			if v, ok := w.probCut(height, depth, probCutBeta, cutNode); ok {
				return v
			}
		}
	}

movesLoop:
	var mp movePicker
	mp.init(w, height, ttWire)
	var ttMove = mp.ttMove
	var ttCapture = ttMove != MoveEmpty && isCaptureOrPromotion(ttMove)

	var bestValue = -ValueInfinity
	var bestMove = MoveEmpty
	var value int
	var moveCount = 0
	var quietsBuf [32]Move
	var capturesBuf [16]Move
	var quietsSearched = quietsBuf[:0]
	var capturesSearched = capturesBuf[:0]
	var child = w.frame(height + 1)
	child.cutoffCnt = 0

	// Step 7: the move loop
	for m := mp.Next(); m != MoveEmpty; m = mp.Next() {
		if m == excluded {
			continue
		}
		if rootNode && findRootMove(w.rootMoves[w.pvIdx:w.pvLast], m) < 0 {
			continue
		}

		moveCount++
		frame.moveCount = moveCount

		var capture = isCaptureOrPromotion(m)
		var side = pos.SideToMove()
		var delta = beta - alpha

		// base reduction, in 1024ths of a ply
		var r = reductions[Min(depth, 255)] * reductions[Min(moveCount, 255)]
		r -= delta * 757 / Max(1, w.rootDelta)
		r += b2i(!improving) * 218 * reductions[Min(depth, 255)] / 512
		r += 1200

		if frame.ttPv {
			r -= 946 +
				954*b2i(IsValid(ttValue) && ttValue > alpha) +
				982*b2i(IsValid(ttValue) && ttDepth >= depth)
		}
		r += 843 - 66*moveCount
		if cutNode {
			r += 3094 + 1056*b2i(ttWire == 0)
		}
		if ttCapture && !capture {
			r += 1415
		}
		if child.cutoffCnt > 2 {
			r += 1311
		}
		if m == ttMove {
			r -= 2000
		}

		if capture {
			frame.statScore = 7 * seePieceValues100(m.CapturedPiece()) / 2
			frame.statScore += w.history.captureValue(side, m) - 5000
		} else {
			frame.statScore = 2 * w.history.mainValue(side, m)
			frame.statScore += w.contHistValue(height, side, m)
			frame.statScore -= 3500
		}
		r -= frame.statScore * 794 / 8192

		var newDepth = depth - 1
		var lmrDepth = Max(0, newDepth-r/1024)

		// shallow-depth pruning
		if !rootNode && pos.NonPawnMaterial(side) > 0 && !IsLoss(bestValue) {
			if moveCount >= (3+depth*depth)/(2-b2i(improving)) {
				mp.SkipQuietMoves()
			}
			if capture {
				var captHist = w.history.captureValue(side, m)
				if !inCheck && lmrDepth < 7 {
					var futilityValue = frame.staticEval + 242 +
						seePieceValues100(m.CapturedPiece()) +
						seePieceValues100(m.Promotion()) +
						captHist/7 + 277*lmrDepth
					if futilityValue <= alpha {
						continue
					}
				}
				if !pos.SeeGE(m, -Max(157*depth+captHist/29, 0)) {
					continue
				}
			} else {
				var contVal = w.contHistValue(height, side, m)
				if contVal < -4312*depth {
					continue
				}
				if !inCheck && lmrDepth < 13 {
					var futilityValue = frame.staticEval + 47 +
						171*b2i(bestMove == MoveEmpty) +
						134*lmrDepth + 90*b2i(frame.staticEval > alpha)
					if futilityValue <= alpha {
						if bestValue < futilityValue && !IsDecisive(futilityValue) {
							bestValue = futilityValue
						}
						continue
					}
				}
				if !pos.SeeGE(m, -27*lmrDepth*lmrDepth) {
					continue
				}
			}
		}

		// singular extension / multi-cut on the TT move
		var extension = 0
		if !rootNode && m == ttMove && excluded == MoveEmpty &&
			depth >= 6+b2i(frame.ttPv) &&
			IsValid(ttValue) && !IsDecisive(ttValue) &&
			ttBound&boundLower != 0 && ttDepth >= depth-3 &&
			height < 2*w.rootDepth {
			var singularBeta = ttValue - (56+81*b2i(frame.ttPv && !pvNode))*depth/60
			frame.excludedMove = m
			var singularValue = w.search(singularBeta-1, singularBeta, newDepth/2, height, cutNode)
			frame.excludedMove = MoveEmpty

			if singularValue < singularBeta {
				extension = 1
				var doubleMargin = 11 + 201*b2i(pvNode)
				var tripleMargin = 77 + 296*b2i(pvNode)
				if singularValue < singularBeta-doubleMargin {
					extension = 2
				}
				if singularValue < singularBeta-tripleMargin {
					extension = 3
				}
			} else if singularValue >= beta && !IsDecisive(singularValue) {
				// multi-cut: even without the TT move this node beats beta
				return singularValue
			} else if ttValue >= beta {
				extension = -3
			} else if cutNode {
				extension = -2
			}
		}

		newDepth += extension

		var nodesBefore = w.nodes
		w.makeMove(m, height)

		// Late-move reductions and the PVS re-search ladder
		if depth >= 2 && moveCount > 1 {
			var d = Max(1, Min(newDepth-r/1024, newDepth+b2i(!allNode)))
			frame.reduction = newDepth - d
			value = -w.search(-(alpha + 1), -alpha, d, height+1, true)
			frame.reduction = 0

			if value > alpha && d < newDepth {
				var doDeeper = value > bestValue+43+2*newDepth
				var doShallower = value < bestValue+9
				var nd = newDepth + b2i(doDeeper) - b2i(doShallower)
				if nd > d {
					value = -w.search(-(alpha + 1), -alpha, nd, height+1, !cutNode)
				}
				if value >= beta && !isCaptureOrPromotion(m) {
					w.updateContinuation(height, side, m, historyBonus(newDepth))
				}
			}
		} else if !pvNode || moveCount > 1 {
			value = -w.search(-(alpha + 1), -alpha, newDepth, height+1, !cutNode)
		}

		if pvNode && (moveCount == 1 || value > alpha) {
			value = -w.search(-beta, -alpha, newDepth, height+1, false)
		}

		w.unmakeMove()

		if rootNode {
			var idx = findRootMove(w.rootMoves, m)
			var rm = &w.rootMoves[idx]
			rm.Effort += w.nodes - nodesBefore

			if moveCount == 1 || value > alpha {
				rm.Score = value
				rm.UciScore = value
				rm.SelDepth = w.selDepth
				rm.ScoreLowerbound = false
				rm.ScoreUpperbound = false
				if value >= beta {
					rm.ScoreLowerbound = true
					rm.UciScore = beta
				} else if value <= alpha {
					rm.ScoreUpperbound = true
					rm.UciScore = alpha
				}
				rm.PV = rm.PV[:1]
				rm.PV = append(rm.PV, child.pv.items[:child.pv.size]...)

				if rm.AverageScore != -ValueInfinity {
					rm.AverageScore = (value + rm.AverageScore) / 2
				} else {
					rm.AverageScore = value
				}
				if rm.MeanSquaredScore != minMeanSquared {
					rm.MeanSquaredScore = (int64(value)*int64(Abs(value)) + rm.MeanSquaredScore) / 2
				} else {
					rm.MeanSquaredScore = int64(value) * int64(Abs(value))
				}

				if moveCount > 1 && w.pvIdx == 0 {
					w.published.bestMoveChanges.Add(256)
				}
			} else {
				rm.Score = -ValueInfinity
			}
		}

		if value > bestValue {
			bestValue = value
			if value > alpha {
				bestMove = m
				if pvNode && !rootNode {
					frame.pv.assign(m, &child.pv)
				}
				if value >= beta {
					frame.cutoffCnt += 1 + b2i(extension < 2)
					break
				}
				// fail-high is far off; save effort on the remainder
				if depth > 2 && depth < 14 && !IsDecisive(value) {
					depth -= 2
				}
				alpha = value
			}
		}

		if m != bestMove && moveCount <= 32 {
			if capture {
				if len(capturesSearched) < cap(capturesSearched) {
					capturesSearched = append(capturesSearched, m)
				}
			} else if len(quietsSearched) < cap(quietsSearched) {
				quietsSearched = append(quietsSearched, m)
			}
		}
	}

	// Step 8: terminals and statistics
	if moveCount == 0 {
		if excluded != MoveEmpty {
			return alpha
		}
		if inCheck {
			return MatedIn(height)
		}
		return ValueDraw
	}

	if bestMove != MoveEmpty {
		w.updateAllStats(height, bestMove, quietsSearched, capturesSearched, depth, moveCount, bestMove == ttMove)
	} else if prior.currentMove != MoveEmpty && !isCapture(prior.currentMove) {
		// no move beat alpha; the previous ply's quiet choice looks good
		w.updateContinuation(height-1, w.frame(height-1).position.SideToMove(),
			prior.currentMove, historyBonus(depth))
	}

	if pvNode {
		bestValue = Min(bestValue, maxValue)
	}

	if !inCheck && (bestMove == MoveEmpty || !isCaptureOrPromotion(bestMove)) &&
		!(bestValue >= beta && bestValue <= frame.staticEval) &&
		!(bestMove == MoveEmpty && bestValue >= frame.staticEval) &&
		IsValid(frame.staticEval) && !IsDecisive(bestValue) {
		w.updateCorrectionHistories(height, (bestValue-frame.staticEval)*depth/8)
	}

	// Step 9: transposition table write
	if excluded == MoveEmpty && !(rootNode && w.pvIdx > 0) {
		var bound = boundUpper
		if bestValue >= beta {
			bound = boundLower
		} else if pvNode && bestMove != MoveEmpty {
			bound = boundExact
		}
		e.transTable.Update(pos.Key, depth, ValueToTT(bestValue, height),
			unadjustedEval, bound, frame.ttPv, uint16(bestMove.Wire()))
	}

	return bestValue
}

const minMeanSquared = int64(0)

func futilityMargin(depth int, improving, opponentWorsening bool, priorStatScore, correction int) int {
	var futilityMult = 93
	var margin = futilityMult * depth
	if improving {
		margin -= futilityMult * 2
	}
	if opponentWorsening {
		margin -= futilityMult / 3
	}
	margin += priorStatScore / 356
	margin += Abs(correction) / 171290
	return margin
}

var pieceValues100 = [...]int{Empty: 0, Pawn: 100, Knight: 400, Bishop: 400, Rook: 600, Queen: 1200, King: 0}

func seePieceValues100(piece int) int {
	return pieceValues100[piece]
}

func (w *worker) contHistValue(height, side int, m Move) int {
	var pieceTo = pieceSquareIndex(side, m.MovingPiece(), m.To())
	var total = 0
	for _, back := range [...]int{1, 2, 4} {
		if t := w.contHistAt(height, back); t != nil {
			total += int(t[pieceTo])
		}
	}
	return total
}

// resolveWire finds the rich move matching a TT wire move among the legal
// moves of the node, guaranteeing pseudo-legality before any use.
func (w *worker) resolveWire(height int, wire uint16) (Move, bool) {
	var buffer [MaxMoves]OrderedMove
	var ml = w.frame(height).position.GenerateMoves(buffer[:])
	for i := range ml {
		if uint16(ml[i].Move.Wire()) == wire {
			return ml[i].Move, true
		}
	}
	return MoveEmpty, false
}

// verifyTTCutoff is the one-step look-ahead guard on deep TT cutoffs: the
// stored move is played and the child entry must agree the bound crosses
// beta. Shallow cutoffs skip the cost.
func (w *worker) verifyTTCutoff(height, depth, beta int, wire uint16, ttValue int) bool {
	if depth < 9 || wire == 0 {
		return true
	}
	var m, ok = w.resolveWire(height, wire)
	if !ok {
		return false
	}
	var frame = w.frame(height)
	var child = w.frame(height + 1)
	frame.position.MakeMove(m, &child.position)
	var cDepth, cValueRaw, _, cBound, _, _, cHit = w.engine.transTable.Read(child.position.Key)
	if !cHit {
		return false
	}
	var cValue = ValueFromTT(cValueRaw, height+1, child.position.Rule50)
	if !IsValid(cValue) || cDepth < depth-3 {
		return false
	}
	// child value is from the opponent's perspective
	return boundCoversBeta(cBound, -cValue, beta) && -cValue >= beta
}

// probCut tries good captures at a raised beta with a quiescence check
// followed by a reduced verification search.
func (w *worker) probCut(height, depth, probCutBeta int, cutNode bool) (int, bool) {
	var frame = w.frame(height)
	var pos = &frame.position
	var buffer [MaxMoves]OrderedMove
	var ml, _ = pos.GenerateNoisyMoves(buffer[:])

	var threshold = probCutBeta - frame.staticEval
	for i := range ml {
		var m = ml[i].Move
		if !isCapture(m) || !pos.SeeGE(m, threshold) {
			continue
		}
		w.makeMove(m, height)
		var value = -w.qsearch(-probCutBeta, -probCutBeta+1, height+1)
		if value >= probCutBeta {
			value = -w.search(-probCutBeta, -probCutBeta+1, depth-4, height+1, !cutNode)
		}
		w.unmakeMove()
		if value >= probCutBeta && !IsDecisive(value) {
			w.engine.transTable.Update(pos.Key, depth-3,
				ValueToTT(value, height), ValueNone, boundLower, frame.ttPv, uint16(m.Wire()))
			return value, true
		}
	}
	return 0, false
}
