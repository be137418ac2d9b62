package engine

import (
	"sync/atomic"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

type atomicBool = atomic.Bool

// publishedCounters are the per-worker counters other threads may read
// while the search runs.
type publishedCounters struct {
	nodes  atomic.Int64
	tbHits atomic.Int64
	// bestMoveChanges in 1/256ths, drained by the main worker
	bestMoveChanges atomic.Int64
}

func (c *publishedCounters) reset() {
	c.nodes.Store(0)
	c.tbHits.Store(0)
	c.bestMoveChanges.Store(0)
}

func isCaptureOrPromotion(move Move) bool {
	return move.CapturedPiece() != Empty || move.Promotion() != Empty
}

func isCapture(move Move) bool {
	return move.CapturedPiece() != Empty
}

// isDraw covers the draw states detectable from the position alone; the
// repetition scan lives with the worker because it needs the search stack.
func isDraw(p *Position) bool {
	if p.Rule50 > 100 {
		return true
	}
	if p.Pawns()|p.Rooks()|p.Queens() == 0 &&
		!MoreThanOne(p.Knights()|p.Bishops()) {
		return true
	}
	return false
}

// isRepeat scans the search line first and falls back to the game history
// counts collected at search start.
func (w *worker) isRepeat(height int) bool {
	var p = &w.frame(height).position
	if p.Rule50 == 0 || p.LastMove == MoveEmpty {
		return false
	}
	for i := height - 1; i >= 0; i-- {
		var prev = &w.frame(i).position
		if prev.Key == p.Key {
			return true
		}
		if prev.Rule50 == 0 || prev.LastMove == MoveEmpty {
			return false
		}
	}
	return w.engine.historyKeys[p.Key] >= 2
}

// hasUpcomingRepetition reports whether the side to move can force a
// repetition of a position already on the line, the cheap stand-in for the
// cuckoo detector.
func (w *worker) hasUpcomingRepetition(height int) bool {
	var p = &w.frame(height).position
	if p.Rule50 < 3 {
		return false
	}
	for i := height - 2; i >= 0 && i >= height-p.Rule50; i -= 2 {
		if w.frame(i).position.Key == p.Key {
			return true
		}
	}
	return w.engine.historyKeys[p.Key] >= 1 && p.LastMove != MoveEmpty
}

func findRootMove(moves []RootMove, m Move) int {
	for i := range moves {
		if moves[i].PV[0] == m {
			return i
		}
	}
	return -1
}

// stableSortRootMoves orders moves[first:last] by score descending. The
// sort must be stable so that unsearched moves keep their iteration order.
func stableSortRootMoves(moves []RootMove, first, last int) {
	for i := first + 1; i < last; i++ {
		var item = moves[i]
		var j = i
		for ; j > first && rootMoveLess(&moves[j-1], &item); j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = item
	}
}

func rootMoveLess(a, b *RootMove) bool {
	if a.TbRank != b.TbRank {
		return a.TbRank < b.TbRank
	}
	return a.Score < b.Score
}
