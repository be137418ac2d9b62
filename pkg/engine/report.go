package engine

import (
	"time"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// failInfoGate throttles fail-high/low progress lines: nothing before the
// first-ms/min-nodes gate opens, then at most one line per rate window. The
// anchor resets at the first root depth of every search.
type failInfoGate struct {
	enabled    bool
	firstMs    int64
	minNodes   int64
	rateMs     int64
	lastInfoMs int64
}

func newFailInfoGate(o *Options) failInfoGate {
	return failInfoGate{
		enabled:    o.FailInfoEnabled,
		firstMs:    int64(o.FailInfoFirstMs),
		minNodes:   o.FailInfoMinNodes,
		rateMs:     int64(o.FailInfoRateMs),
		lastInfoMs: -100000,
	}
}

func (g *failInfoGate) reset() {
	g.lastInfoMs = -100000
}

func (g *failInfoGate) allow(nowMs, nodes int64) bool {
	if !g.enabled {
		return false
	}
	var rateOk = nowMs-g.lastInfoMs >= g.rateMs
	var firstGate = nowMs >= g.firstMs || nodes >= g.minNodes
	if rateOk && firstGate {
		g.lastInfoMs = nowMs
		return true
	}
	return false
}

// workerSearchInfo builds one report line from a worker's root list.
func (e *Engine) workerSearchInfo(w *worker, depth, pvIdx int) SearchInfo {
	var elapsed = time.Since(e.start)
	var nodes = e.visitedNodes()
	var si = SearchInfo{
		Depth:    depth,
		MultiPV:  pvIdx + 1,
		Nodes:    nodes,
		TbHits:   e.tbHitCount(),
		Hashfull: e.transTable.Hashfull(),
		Time:     elapsed,
	}
	if pvIdx < len(w.rootMoves) {
		var rm = &w.rootMoves[pvIdx]
		si.SelDepth = rm.SelDepth
		si.Score = NewUciScore(rm.UciScore)
		si.Score.Lowerbound = rm.ScoreLowerbound
		si.Score.Upperbound = rm.ScoreUpperbound
		si.MainLine = append([]Move(nil), rm.PV...)
	}
	return si
}

// reportLines emits every searched PV line of the current iteration.
func (w *worker) reportLines(depth int) {
	var e = w.engine
	if e.progress == nil || !w.mainThread {
		return
	}
	if e.visitedNodes() < e.Options.ProgressMinNodes {
		return
	}
	for i := 0; i <= w.pvIdx && i < w.multiPV; i++ {
		e.progress(e.workerSearchInfo(w, depth, i))
	}
}

// reportFail emits the single-line fail-high/low update, subject to the
// throttle gate.
func (w *worker) reportFail(depth int) {
	var e = w.engine
	if e.progress == nil || !w.mainThread || w.multiPV != 1 {
		return
	}
	if !w.failInfo.allow(time.Since(e.start).Milliseconds(), e.visitedNodes()) {
		return
	}
	e.progress(e.workerSearchInfo(w, depth, 0))
}
