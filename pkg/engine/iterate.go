package engine

import (
	"math"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// iterativeDeepening is one worker's whole life for a search: deepen until
// halted, keep the root list sorted and stable, and let the main worker
// drive the clock. The halt-time bookkeeping after deepeningLoop guards
// against reporting an unproven mated-in line from an aborted iteration and
// applies the skill handicap swap.
func (w *worker) iterativeDeepening() {
	var e = w.engine

	for i := 0; i < stackSize; i++ {
		var frame = &w.stack[i]
		frame.staticEval = ValueNone
		frame.currentMove = MoveEmpty
		frame.excludedMove = MoveEmpty
		frame.contHist = nil
		frame.contCorr = nil
		frame.pieceTo = -1
		frame.moveCount = 0
		frame.cutoffCnt = 0
		frame.reduction = 0
		frame.inCheck = false
		frame.ttPv = false
		frame.ttHit = false
		frame.pv.clear()
	}

	var rootPos = &w.frame(0).position
	w.evaluator.Init(rootPos)

	w.skill = newSkill(e.Options.SkillLevel, let(e.Options.UCILimitStrength, e.Options.UCIElo, 0))
	w.multiPV = Max(1, e.Options.MultiPV)
	if w.skill.enabled() {
		w.multiPV = Max(w.multiPV, 4)
	}
	w.multiPV = Min(w.multiPV, len(w.rootMoves))
	w.failInfo = newFailInfoGate(&e.Options)
	w.failInfo.reset()
	w.checkSacrificeTolerance = e.Options.CheckSacrificeTolerance

	if w.bestPrevScore == 0 {
		w.bestPrevScore = ValueInfinity
		w.bestPrevAvgScore = ValueInfinity
	}
	for i := range w.iterValue {
		if w.bestPrevScore == ValueInfinity {
			w.iterValue[i] = ValueDraw
		} else {
			w.iterValue[i] = w.bestPrevScore
		}
	}
	w.lastBestPV = nil
	w.lastBest = -ValueInfinity
	w.lastBestDep = 0

	var timeReduction = w.deepeningLoop()

	w.published.nodes.Store(w.nodes)
	w.published.tbHits.Store(w.tbHits)

	if len(w.lastBestPV) != 0 && IsLoss(w.rootMoves[0].Score) &&
		w.rootMoves[0].PV[0] != w.lastBestPV[0] {
		// aborted with an unproven loss on top: fall back to the last
		// stable line so the emitted bestmove stays trustworthy
		if idx := findRootMove(w.rootMoves, w.lastBestPV[0]); idx > 0 {
			w.rootMoves[0], w.rootMoves[idx] = w.rootMoves[idx], w.rootMoves[0]
		}
		w.rootMoves[0].PV = append([]Move(nil), w.lastBestPV...)
		w.rootMoves[0].Score = w.lastBest
		w.rootMoves[0].UciScore = w.lastBest
	}

	if !w.mainThread {
		return
	}

	w.prevTimeReduction = timeReduction
	w.bestPrevScore = w.rootMoves[0].Score
	w.bestPrevAvgScore = w.rootMoves[0].AverageScore

	if w.skill.enabled() {
		var best = w.skill.best
		if best == MoveEmpty {
			best = w.skill.pickBest(w.prng, w.rootMoves, w.multiPV)
		}
		if idx := findRootMove(w.rootMoves, best); idx > 0 {
			w.rootMoves[0], w.rootMoves[idx] = w.rootMoves[idx], w.rootMoves[0]
		}
	}
}

// deepeningLoop runs the iterations until a limit fires. A stop arrives as
// the errSearchTimeout panic from incNodes and is absorbed here, so the
// caller always gets to run the halt-time bookkeeping.
func (w *worker) deepeningLoop() (timeReduction float64) {
	defer func() {
		if r := recover(); r != nil && r != errSearchTimeout {
			panic(r)
		}
	}()

	var e = w.engine
	var rootPos = &w.frame(0).position
	var iterIdx = 0
	timeReduction = 1.0

	for rootDepth := 1; rootDepth < MaxPly && !e.stop.Load() &&
		!(w.limits.Depth > 0 && w.mainThread && rootDepth > w.limits.Depth); rootDepth++ {
		w.rootDepth = rootDepth
		// per-iteration thread-local resets: EMA-style signals restart here
		if w.mainThread {
			e.totBestMoveChanges /= 2
		}

		for i := range w.rootMoves {
			w.rootMoves[i].PreviousScore = w.rootMoves[i].Score
		}

		if !e.increaseDepth.Load() {
			w.searchAgainCounter++
		}

		var pvFirst = 0
		w.pvLast = 0

		for w.pvIdx = 0; w.pvIdx < w.multiPV; w.pvIdx++ {
			if w.pvIdx == w.pvLast {
				pvFirst = w.pvLast
				for w.pvLast++; w.pvLast < len(w.rootMoves); w.pvLast++ {
					if w.rootMoves[w.pvLast].TbRank != w.rootMoves[pvFirst].TbRank {
						break
					}
				}
			}

			w.selDepth = 0

			var rm = &w.rootMoves[w.pvIdx]
			var avg = rm.AverageScore
			var delta = 5 + w.index%8 + int(abs64(rm.MeanSquaredScore)/9000)
			var alpha, beta = -ValueInfinity, ValueInfinity
			var useAspiration = rootDepth >= 4 && avg != -ValueInfinity && !IsDecisive(avg)
			if useAspiration {
				alpha = Max(avg-delta, -ValueInfinity)
				beta = Min(avg+delta, ValueInfinity)
			} else if avg == -ValueInfinity {
				avg = 0
			}

			w.optimism[rootPos.SideToMove()] = 137 * avg / (Abs(avg) + 91)
			w.optimism[rootPos.SideToMove()^1] = -w.optimism[rootPos.SideToMove()]

			var failedHighCnt = 0
			for {
				var adjustedDepth = Max(1, rootDepth-failedHighCnt-3*(w.searchAgainCounter+1)/4)
				w.rootDelta = beta - alpha
				var bestValue = w.search(alpha, beta, adjustedDepth, 0, false)

				stableSortRootMoves(w.rootMoves, w.pvIdx, w.pvLast)

				if bestValue <= alpha || bestValue >= beta {
					w.reportFail(rootDepth)
				}

				if bestValue <= alpha {
					beta = (alpha + beta) / 2
					alpha = Max(bestValue-delta, -ValueInfinity)
					failedHighCnt = 0
					if w.mainThread {
						e.stopOnPonderhit.Store(false)
					}
				} else if bestValue >= beta {
					beta = Min(bestValue+delta, ValueInfinity)
					failedHighCnt++
				} else {
					break
				}

				delta += delta / 3
			}

			stableSortRootMoves(w.rootMoves, pvFirst, w.pvIdx+1)

			if w.mainThread &&
				(w.pvIdx+1 == w.multiPV || e.visitedNodes() > 10_000_000) &&
				!IsLoss(w.rootMoves[0].UciScore) {
				w.reportLines(rootDepth)
			}
		}

		w.completed = rootDepth
		w.published.nodes.Store(w.nodes)
		w.published.tbHits.Store(w.tbHits)

		if w.rootMoves[0].PV[0] != firstMove(w.lastBestPV) {
			w.lastBestPV = append([]Move(nil), w.rootMoves[0].PV...)
			w.lastBest = w.rootMoves[0].Score
			w.lastBestDep = rootDepth
		}

		if !w.mainThread {
			continue
		}

		// proven mate-in-x request satisfied
		if w.limits.Mate > 0 && w.rootMoves[0].Score == w.rootMoves[0].UciScore &&
			((w.rootMoves[0].Score >= ValueMateInMaxPly &&
				ValueMate-w.rootMoves[0].Score <= 2*w.limits.Mate) ||
				(w.rootMoves[0].Score != -ValueInfinity &&
					w.rootMoves[0].Score <= -ValueMateInMaxPly &&
					ValueMate+w.rootMoves[0].Score <= 2*w.limits.Mate)) {
			e.stop.Store(true)
		}

		if w.skill.enabled() && w.skill.timeToPick(rootDepth) {
			w.skill.pickBest(w.prng, w.rootMoves, w.multiPV)
		}

		for i := range e.threads {
			e.totBestMoveChanges += float64(e.threads[i].published.bestMoveChanges.Swap(0)) / 256
		}

		if w.limits.Nodes > 0 && e.visitedNodes() >= w.limits.Nodes {
			e.stop.Store(true)
		}

		if e.tm.useClock && !e.stop.Load() && !e.stopOnPonderhit.Load() {
			var nodesEffort = w.rootMoves[0].Effort * 100000 / max64(1, w.nodes)

			var bestValue = w.rootMoves[0].Score
			var fallingEval = (11.325 +
				2.115*float64(w.bestPrevAvgScore-bestValue) +
				0.987*float64(w.iterValue[iterIdx]-bestValue)) / 100.0
			fallingEval = clampFloat(fallingEval, 0.5688, 1.5698)

			var k = 0.5189
			var center = float64(w.lastBestDep) + 11.57
			timeReduction = 0.723 + 0.79/(1.104+math.Exp(-k*(float64(w.completed)-center)))
			var reduction = (1.455 + w.prevTimeReduction) / (2.2375 * timeReduction)
			var instability = 1.04 + 1.8956*e.totBestMoveChanges/float64(len(e.threads))

			var totalTime = float64(e.tm.Optimum().Milliseconds()) * fallingEval * reduction * instability
			if e.rootMoveCount == 1 {
				totalTime = math.Min(502.0, totalTime)
			}

			var elapsed = float64(e.tm.Elapsed().Milliseconds())

			if w.completed >= 10 && nodesEffort >= 92425 && elapsed > totalTime*0.666 &&
				!e.ponder.Load() {
				e.stop.Store(true)
			}

			if elapsed > math.Min(totalTime, float64(e.tm.Maximum().Milliseconds())) {
				if e.ponder.Load() {
					e.stopOnPonderhit.Store(true)
				} else {
					e.stop.Store(true)
				}
			} else {
				e.increaseDepth.Store(e.ponder.Load() || elapsed <= totalTime*0.503)
			}
		}

		w.iterValue[iterIdx] = w.rootMoves[0].Score
		iterIdx = (iterIdx + 1) & 3
	}

	return
}

func firstMove(pv []Move) Move {
	if len(pv) == 0 {
		return MoveEmpty
	}
	return pv[0]
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func let(ok bool, yes, no int) int {
	if ok {
		return yes
	}
	return no
}

// incNodes is the cooperative cancellation point: every 512 nodes the
// worker publishes its counters and checks the stop flag; the main worker
// also enforces the wall clock and the node budget here.
func (w *worker) incNodes() {
	w.nodes++
	if w.nodes&511 == 0 {
		w.published.nodes.Store(w.nodes)
		w.published.tbHits.Store(w.tbHits)
		var e = w.engine
		if w.mainThread {
			w.checkLimits()
		}
		if e.stop.Load() {
			panic(errSearchTimeout)
		}
	}
}

func (w *worker) checkLimits() {
	var e = w.engine
	if w.limits.Nodes > 0 && e.visitedNodes() >= w.limits.Nodes {
		e.stop.Store(true)
		return
	}
	if e.ponder.Load() {
		return
	}
	if e.tm.useClock && e.tm.Elapsed() >= e.tm.Maximum() {
		e.stop.Store(true)
	}
}

func (w *worker) makeMove(m Move, height int) {
	var frame = w.frame(height)
	var child = w.frame(height + 1)
	frame.position.MakeMove(m, &child.position)
	var side = frame.position.SideToMove()
	frame.currentMove = m
	frame.pieceTo = pieceSquareIndex(side, m.MovingPiece(), m.To())
	frame.contHist = w.history.contTable(frame.inCheck, isCaptureOrPromotion(m), side, m)
	frame.contCorr = &w.history.contCorrection[frame.pieceTo]
	child.excludedMove = MoveEmpty
	w.evaluator.MakeMove(&frame.position, m)
	w.incNodes()
}

func (w *worker) makeNullMove(height int) {
	var frame = w.frame(height)
	var child = w.frame(height + 1)
	frame.position.MakeNullMove(&child.position)
	frame.currentMove = MoveEmpty
	frame.pieceTo = -1
	frame.contHist = nil
	frame.contCorr = nil
	child.excludedMove = MoveEmpty
	w.evaluator.MakeMove(&frame.position, MoveEmpty)
	w.incNodes()
}

func (w *worker) unmakeMove() {
	w.evaluator.UnmakeMove()
}

func (w *worker) contHistAt(height, back int) *[pieceSquareSize]int16 {
	return w.frame(height - back).contHist
}
