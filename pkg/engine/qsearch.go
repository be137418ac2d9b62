package engine

import (
	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// qsearch stabilises the horizon: captures and promotions only, evasions
// when in check, stand-pat otherwise. Depth is pinned at the quiescence
// level for every table interaction.
func (w *worker) qsearch(alpha, beta, height int) int {
	var e = w.engine
	var pvNode = beta != alpha+1
	var frame = w.frame(height)
	var pos = &frame.position

	if alpha < ValueDraw && w.hasUpcomingRepetition(height) {
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

	if height >= MaxPly {
		if pos.IsCheck() {
			return ValueDraw
		}
		return w.evaluate(height)
	}
	if isDraw(pos) || w.isRepeat(height) {
		return w.drawValue()
	}

	var inCheck = pos.IsCheck()
	frame.inCheck = inCheck

	var _, ttValueRaw, ttEval, ttBound, ttWire, ttPvFlag, ttHit = e.transTable.Read(pos.Key)
	var ttValue = ValueFromTT(ttValueRaw, height, pos.Rule50)
	frame.ttHit = ttHit
	frame.ttPv = pvNode || (ttHit && ttPvFlag)

	if !pvNode && ttHit && IsValid(ttValue) &&
		boundCoversBeta(ttBound, ttValue, beta) {
		return ttValue
	}

	var bestValue = -ValueInfinity
	var bestMove = MoveEmpty
	var unadjustedEval = ValueNone
	var futilityBase = -ValueInfinity

	if !inCheck {
		// Step 2: stand pat on the corrected static eval
		if ttHit && IsValid(ttEval) {
			unadjustedEval = ttEval
		} else {
			unadjustedEval = w.evaluate(height)
		}
		frame.staticEval = correctedEval(unadjustedEval, w.correctionValue(height))
		bestValue = frame.staticEval

		if ttHit && IsValid(ttValue) && boundCoversBeta(ttBound, ttValue, bestValue+1) {
			bestValue = ttValue
		}

		if bestValue >= beta {
			if !IsDecisive(bestValue) {
				bestValue = (bestValue + beta) / 2
			}
			if !ttHit {
				e.transTable.Update(pos.Key, 0, ValueToTT(bestValue, height),
					unadjustedEval, boundLower, false, 0)
			}
			return bestValue
		}
		if bestValue > alpha {
			alpha = bestValue
		}
		futilityBase = frame.staticEval + 352
	} else {
		frame.staticEval = w.frame(height - 2).staticEval
	}

	var mp movePicker
	mp.initQS(w, height, ttWire)
	var moveCount = 0
	var side = pos.SideToMove()

	for m := mp.Next(); m != MoveEmpty; m = mp.Next() {
		if !inCheck && !IsLoss(bestValue) {
			// Step 3: futility and exchange gates on quiet targets
			if moveCount > 2 && m.Promotion() == Empty {
				continue
			}
			var futilityValue = futilityBase + seePieceValues100(m.CapturedPiece())
			if m.Promotion() == Empty && futilityValue <= alpha {
				if bestValue < futilityValue {
					bestValue = futilityValue
				}
				continue
			}
			if futilityBase <= alpha && !pos.SeeGE(m, 1) {
				if bestValue < futilityBase {
					bestValue = futilityBase
				}
				continue
			}
			if !pos.SeeGE(m, -78-w.checkSacrificeTolerance) {
				continue
			}
		}

		moveCount++
		w.makeMove(m, height)
		var value = -w.qsearch(-beta, -alpha, height+1)
		w.unmakeMove()

		if value > bestValue {
			bestValue = value
			if value > alpha {
				bestMove = m
				if pvNode {
					frame.pv.assign(m, &w.frame(height+1).pv)
				}
				if value >= beta {
					break
				}
				alpha = value
			}
		}
	}

	// Step 4: mate and the bare-king stalemate trap
	if inCheck && bestValue == -ValueInfinity {
		return MatedIn(height)
	}
	if !inCheck && bestMove == MoveEmpty && moveCount == 0 &&
		bestValue < alpha && pos.NonPawnMaterial(side) == 0 &&
		w.isStalemate(height) {
		return ValueDraw
	}
	if !IsDecisive(bestValue) && bestValue > beta {
		bestValue = (bestValue + beta) / 2
	}

	// Step 5: store at quiescence depth
	var bound = boundUpper
	if bestValue >= beta {
		bound = boundLower
	}
	e.transTable.Update(pos.Key, 0, ValueToTT(bestValue, height),
		unadjustedEval, bound, frame.ttPv, uint16(bestMove.Wire()))

	return bestValue
}

// isStalemate does the full legality check; only reached when the side to
// move has bare pawns and kings and nothing noisy to try.
func (w *worker) isStalemate(height int) bool {
	var buffer [MaxMoves]OrderedMove
	var ml = w.frame(height).position.GenerateMoves(buffer[:])
	return len(ml) == 0
}
