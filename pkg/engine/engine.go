package engine

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

const (
	sentinelPlies = 7
	stackSize     = sentinelPlies + MaxPly + 3
)

// Engine is the search core: a shared transposition table, a pool of
// workers and the coordination that turns limits into a bestmove. The
// board, the evaluator and the tablebases stay behind their contracts.
type Engine struct {
	Options    Options
	Tablebases Tablebases

	evalBuilder func() interface{}
	transTable  *transTable
	threads     []worker
	historyKeys map[uint64]int
	progress    func(SearchInfo)
	tm          *timeManager
	start       time.Time

	stop            atomicBool
	ponder          atomicBool
	stopOnPonderhit atomicBool
	increaseDepth   atomicBool
	rootMoveCount   int

	totBestMoveChanges float64
}

// IEvaluator is the minimal evaluator contract. Scores are centipawns from
// the side to move's perspective.
type IEvaluator interface {
	Evaluate(p *Position) int
}

// IUpdatableEvaluator lets incrementally-updated evaluators (NNUE) follow
// the search line. Plain evaluators are adapted automatically.
type IUpdatableEvaluator interface {
	Init(p *Position)
	MakeMove(p *Position, m Move)
	UnmakeMove()
	EvaluateQuick(p *Position) int
}

// Tablebases is the endgame-table contract. A nil value disables probing.
type Tablebases interface {
	// ProbeWDL returns the WDL outcome from the side to move's
	// perspective (-2 loss .. 2 win, cursed results at ±1) and false on
	// probe failure.
	ProbeWDL(p *Position) (int, bool)
	// RankRootMoves ranks the root moves in place and returns the
	// probe configuration that applies for the rest of the search.
	RankRootMoves(p *Position, moves []RootMove, options *Options) TBConfig
}

// TBConfig is what the root ranking decided: Cardinality is the maximum
// piece count worth probing, zero when tablebases are unusable.
type TBConfig struct {
	Cardinality int
	ProbeDepth  int
	UseRule50   bool
	RootInTB    bool
}

// RootMove is one root move with everything the driver tracks across
// iterations. Order is stable between iterations on purpose.
type RootMove struct {
	PV               []Move
	Score            int
	PreviousScore    int
	AverageScore     int
	UciScore         int
	MeanSquaredScore int64
	SelDepth         int
	TbRank           int
	TbScore          int
	Effort           int64
	ScoreLowerbound  bool
	ScoreUpperbound  bool
}

type pvLine struct {
	items [MaxPly + 1]Move
	size  int
}

func (pv *pvLine) clear() {
	pv.size = 0
}

func (pv *pvLine) assign(m Move, child *pvLine) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pvLine) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

type stackFrame struct {
	position     Position
	pv           pvLine
	currentMove  Move
	excludedMove Move
	staticEval   int
	statScore    int
	moveCount    int
	cutoffCnt    int
	reduction    int
	inCheck      bool
	ttPv         bool
	ttHit        bool
	pieceTo      int
	contHist     *[pieceSquareSize]int16
	contCorr     *[pieceSquareSize]int16
}

type worker struct {
	engine     *Engine
	index      int
	mainThread bool
	evaluator  IUpdatableEvaluator
	history    history
	prng       *frand.RNG

	stack [stackSize]stackFrame

	nodes       int64
	tbHits      int64
	published   publishedCounters
	selDepth    int
	nmpMinPly   int
	optimism    [2]int
	rootDepth   int
	rootDelta   int
	completed   int
	pvIdx       int
	pvLast      int
	multiPV     int
	rootMoves   []RootMove
	tbConfig    TBConfig
	skill       skill
	limits      LimitsType
	failInfo    failInfoGate
	lastBestPV  []Move
	lastBest    int
	lastBestDep int

	checkSacrificeTolerance int

	searchAgainCounter int
	iterValue          [4]int
	bestPrevScore      int
	bestPrevAvgScore   int
	prevTimeReduction  float64
}

// frame translates a search height into the sentinel-padded stack so that
// negative lookbacks down to ss-7 never bounds-check.
func (w *worker) frame(height int) *stackFrame {
	return &w.stack[sentinelPlies+height]
}

var errSearchTimeout = errors.New("search timeout")

func NewEngine(evalBuilder func() interface{}) *Engine {
	return &Engine{
		Options:     NewOptions(),
		evalBuilder: evalBuilder,
	}
}

// Prepare allocates whatever the current options require. It runs only
// between searches: resizing the table while workers run is not supported,
// which is exactly the drain the shared-resource policy asks for.
func (e *Engine) Prepare() error {
	if e.transTable == nil || e.transTable.Size() != e.Options.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		var tt, err = newTransTable(e.Options.Hash)
		if err != nil {
			return err
		}
		e.transTable = tt
		log.Debug().Int("megabytes", e.Options.Hash).Msg("transposition table allocated")
	}
	if e.Options.Threads < 1 {
		return errors.New("thread count out of range")
	}
	if len(e.threads) != e.Options.Threads {
		e.threads = make([]worker, e.Options.Threads)
		for i := range e.threads {
			var w = &e.threads[i]
			w.engine = e
			w.index = i
			w.mainThread = i == 0
			w.prng = frand.New()
			var err error
			w.evaluator, err = e.buildEvaluator()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) buildEvaluator() (IUpdatableEvaluator, error) {
	var service = e.evalBuilder()
	if ue, ok := service.(IUpdatableEvaluator); ok {
		return ue, nil
	}
	if ev, ok := service.(IEvaluator); ok {
		return &evaluatorAdapter{evaluator: ev}, nil
	}
	return nil, errors.New("evaluator builder returned no usable evaluator")
}

type evaluatorAdapter struct {
	evaluator IEvaluator
}

func (e *evaluatorAdapter) Init(p *Position)             {}
func (e *evaluatorAdapter) MakeMove(p *Position, m Move) {}
func (e *evaluatorAdapter) UnmakeMove()                  {}
func (e *evaluatorAdapter) EvaluateQuick(p *Position) int {
	return e.evaluator.Evaluate(p)
}

// Clear wipes the transposition table and every worker's histories, the
// "ucinewgame" reset.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		e.threads[i].history.NewGame()
	}
}

// Stop requests a halt; workers notice at their next node batch.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Ponderhit converts a ponder search into a timed one. If the stop decision
// already fired while pondering, it takes effect now.
func (e *Engine) Ponderhit() {
	e.ponder.Store(false)
	if e.stopOnPonderhit.Load() {
		e.stop.Store(true)
	}
}

// Search runs a full search for the last position in params, blocking until
// the halt condition. The returned info carries the final PV; intermediate
// lines flow through params.Progress.
func (e *Engine) Search(ctx context.Context, params SearchParams) (SearchInfo, error) {
	e.start = time.Now()
	if err := e.Prepare(); err != nil {
		return SearchInfo{}, err
	}

	var p = &params.Positions[len(params.Positions)-1]
	e.tm = newTimeManager(e.start, params.Limits, p.WhiteMove, len(params.Positions), &e.Options)
	e.transTable.NewSearch()
	e.historyKeys = historyKeysOf(params.Positions)
	e.progress = params.Progress
	e.stop.Store(false)
	e.stopOnPonderhit.Store(false)
	e.ponder.Store(params.Limits.Ponder)
	e.increaseDepth.Store(true)
	e.totBestMoveChanges = 0

	var rootMoves = e.genRootMoves(p)
	e.rootMoveCount = len(rootMoves)
	if len(rootMoves) == 0 {
		var v = ValueDraw
		if p.IsCheck() {
			v = MatedIn(0)
		}
		return SearchInfo{Depth: 0, Score: NewUciScore(v), Time: time.Since(e.start)}, nil
	}

	var tbConfig TBConfig
	if e.Tablebases != nil {
		tbConfig = e.Tablebases.RankRootMoves(p, rootMoves, &e.Options)
	}

	for i := range e.threads {
		var w = &e.threads[i]
		w.nodes = 0
		w.tbHits = 0
		w.published.reset()
		w.limits = params.Limits
		w.tbConfig = tbConfig
		w.completed = 0
		w.nmpMinPly = 0
		w.searchAgainCounter = 0
		w.rootMoves = cloneRootMoves(rootMoves)
		w.frame(0).position = *p
		w.history.NewSearch()
	}

	var watchDone = make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.stop.Store(true)
		case <-watchDone:
		}
	}()

	lazySmp(e)
	close(watchDone)

	var best = e.bestWorker()
	var result = e.workerSearchInfo(best, best.completed, 0)
	log.Debug().
		Int("depth", result.Depth).
		Int64("nodes", result.Nodes).
		Str("bestmove", bestMoveOf(result)).
		Msg("search finished")
	return result, nil
}

func bestMoveOf(si SearchInfo) string {
	if len(si.MainLine) == 0 {
		return "(none)"
	}
	return si.MainLine[0].String()
}

func historyKeysOf(positions []Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

func cloneRootMoves(src []RootMove) []RootMove {
	var result = make([]RootMove, len(src))
	copy(result, src)
	for i := range result {
		result[i].PV = append([]Move(nil), src[i].PV...)
	}
	return result
}

func (e *Engine) genRootMoves(p *Position) []RootMove {
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])
	var result = make([]RootMove, 0, len(ml))
	for i := range ml {
		result = append(result, RootMove{
			PV:            []Move{ml[i].Move},
			Score:         -ValueInfinity,
			PreviousScore: -ValueInfinity,
			AverageScore:  -ValueInfinity,
			UciScore:      -ValueInfinity,
		})
	}
	return result
}

// bestWorker implements the halt-time selection: best score first, and
// among workers sharing it the one that completed the deepest iteration.
func (e *Engine) bestWorker() *worker {
	var candidates = make([]*worker, 0, len(e.threads))
	for i := range e.threads {
		if len(e.threads[i].rootMoves) != 0 {
			candidates = append(candidates, &e.threads[i])
		}
	}
	var best = lo.MaxBy(candidates, func(a, b *worker) bool {
		var sa, sb = a.rootMoves[0].Score, b.rootMoves[0].Score
		if sa != sb {
			return sa > sb
		}
		return a.completed > b.completed
	})
	if best == nil {
		best = &e.threads[0]
	}
	return best
}

func (e *Engine) visitedNodes() int64 {
	var total int64
	for i := range e.threads {
		total += e.threads[i].published.nodes.Load()
	}
	return total
}

func (e *Engine) tbHitCount() int64 {
	var total int64
	for i := range e.threads {
		total += e.threads[i].published.tbHits.Load()
	}
	return total
}
