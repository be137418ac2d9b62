package engine

import (
	"context"
	"testing"

	. "github.com/Gero-Marten/SugaR/pkg/common"

	eval "github.com/Gero-Marten/SugaR/pkg/eval/material"
)

func newTestEngine() *Engine {
	var e = NewEngine(func() interface{} { return eval.NewEvaluationService() })
	e.Options.Hash = 16
	e.Options.Threads = 1
	return e
}

func searchFEN(t *testing.T, e *Engine, fen string, limits LimitsType, progress func(SearchInfo)) SearchInfo {
	t.Helper()
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	si, err := e.Search(context.Background(), SearchParams{
		Positions: []Position{p},
		Limits:    limits,
		Progress:  progress,
	})
	if err != nil {
		t.Fatal(err)
	}
	return si
}

func TestMateInOne(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", LimitsType{Depth: 5}, nil)
	if si.Score.Mate != 1 {
		t.Fatalf("expected mate 1, got %+v", si.Score)
	}
	if len(si.MainLine) == 0 || si.MainLine[0].String() != "d1d8" {
		t.Fatalf("expected d1d8, got %v", si.MainLine)
	}
}

// replaying the reported mate PV must end in an actual checkmate
func TestMateSoundness(t *testing.T) {
	var e = newTestEngine()
	var fen = "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"
	var si = searchFEN(t, e, fen, LimitsType{Depth: 6}, nil)
	if si.Score.Mate <= 0 {
		t.Fatalf("expected a winning mate score, got %+v", si.Score)
	}

	var p, _ = NewPositionFromFEN(fen)
	for _, m := range si.MainLine {
		var next, ok = p.MakeMoveLAN(m.String())
		if !ok {
			t.Fatalf("pv move %v is not legal", m)
		}
		p = next
	}
	var buffer [MaxMoves]OrderedMove
	if !p.IsCheck() || len(p.GenerateMoves(buffer[:])) != 0 {
		t.Error("pv does not end in checkmate")
	}
}

func TestMatedPosition(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e,
		"r1bqkbnr/pppp1Qpp/2n5/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 3",
		LimitsType{Depth: 1}, nil)
	if len(si.MainLine) != 0 {
		t.Errorf("a mated side has no bestmove, got %v", si.MainLine)
	}
	if si.Score.Mate != 0 || si.Score.Centipawns != 0 {
		t.Errorf("expected mate 0, got %+v", si.Score)
	}
}

func TestStalematePosition(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "8/8/8/8/8/3k4/3p4/3K4 w - - 0 1", LimitsType{Depth: 10}, nil)
	if len(si.MainLine) != 0 {
		t.Errorf("stalemate has no bestmove, got %v", si.MainLine)
	}
	if si.Score.Centipawns != 0 || si.Score.Mate != 0 {
		t.Errorf("stalemate scores as a draw, got %+v", si.Score)
	}
}

func TestStartposSanity(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, InitialPositionFen, LimitsType{Depth: 6}, nil)
	if len(si.MainLine) == 0 {
		t.Fatal("no pv from the initial position")
	}
	if si.Score.Mate != 0 {
		t.Fatalf("no mate exists at depth 6, got %+v", si.Score)
	}
	if Abs(si.Score.Centipawns) > 150 {
		t.Errorf("startpos score implausible: %+v", si.Score)
	}

	var p, _ = NewPositionFromFEN(InitialPositionFen)
	if _, ok := ParseMoveLAN(&p, si.MainLine[0].String()); !ok {
		t.Errorf("bestmove %v is not a legal opening move", si.MainLine[0])
	}
	if si.Depth != 6 {
		t.Errorf("depth-limited search must complete depth 6, got %v", si.Depth)
	}
}

func TestPawnEndgameProgress(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", LimitsType{Depth: 12}, nil)
	if len(si.MainLine) == 0 {
		t.Fatal("no pv in the pawn endgame")
	}
	if si.Score.Mate < 0 || (si.Score.Mate == 0 && si.Score.Centipawns < 50) {
		t.Errorf("white keeps at least the extra pawn, got %+v", si.Score)
	}
}

func TestPromotionRace(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "3k4/3P4/3K4/8/8/8/8/8 w - - 0 1", LimitsType{Depth: 14}, nil)
	if si.Score.Mate <= 0 && si.Score.Centipawns < 500 {
		t.Errorf("the d-pawn promotes after Ke6/Kc6, got %+v", si.Score)
	}
}

func TestNodeLimitedDeterminism(t *testing.T) {
	var limits = LimitsType{Nodes: 30000}
	var first = searchFEN(t, newTestEngine(),
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", limits, nil)
	var second = searchFEN(t, newTestEngine(),
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", limits, nil)

	if len(first.MainLine) == 0 || len(second.MainLine) == 0 {
		t.Fatal("both searches must produce a bestmove")
	}
	if first.MainLine[0] != second.MainLine[0] {
		t.Errorf("bestmove differs: %v vs %v", first.MainLine[0], second.MainLine[0])
	}
	if first.Score != second.Score {
		t.Errorf("score differs: %+v vs %+v", first.Score, second.Score)
	}
	if first.Nodes != second.Nodes {
		t.Errorf("node count differs: %v vs %v", first.Nodes, second.Nodes)
	}
}

func TestMonotoneNodeCount(t *testing.T) {
	var fen = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	var shallow = searchFEN(t, newTestEngine(), fen, LimitsType{Depth: 4}, nil)
	var deep = searchFEN(t, newTestEngine(), fen, LimitsType{Depth: 6}, nil)
	if deep.Nodes < shallow.Nodes {
		t.Errorf("deeper searches visit at least as many nodes: %v < %v", deep.Nodes, shallow.Nodes)
	}
}

func TestMultiPV(t *testing.T) {
	var e = newTestEngine()
	e.Options.MultiPV = 3

	var lines = map[int]SearchInfo{}
	searchFEN(t, e, InitialPositionFen, LimitsType{Depth: 5}, func(info SearchInfo) {
		if info.Depth == 5 {
			lines[info.MultiPV] = info
		}
	})

	if len(lines) < 3 {
		t.Fatalf("expected 3 pv lines, got %v", len(lines))
	}
	var firstMoves = map[Move]bool{}
	for idx := 1; idx <= 3; idx++ {
		var line, ok = lines[idx]
		if !ok || len(line.MainLine) == 0 {
			t.Fatalf("missing pv line %v", idx)
		}
		firstMoves[line.MainLine[0]] = true
	}
	if len(firstMoves) != 3 {
		t.Errorf("pv lines must lead with distinct moves, got %v", firstMoves)
	}
	if lines[1].Score.Centipawns < lines[2].Score.Centipawns ||
		lines[2].Score.Centipawns < lines[3].Score.Centipawns {
		t.Error("multipv scores must be sorted descending")
	}
}

func TestDrawishRepetitionBand(t *testing.T) {
	// a bare-kings position is a static draw whatever the depth
	var e = newTestEngine()
	var si = searchFEN(t, e, "4k3/8/8/8/8/8/8/4K3 w - - 0 1", LimitsType{Depth: 8}, nil)
	if IsDecisive(si.Score.Centipawns) || si.Score.Mate != 0 {
		t.Errorf("bare kings are drawn, got %+v", si.Score)
	}
	if Abs(si.Score.Centipawns) > 1 {
		t.Errorf("draw scores stay within one centipawn of zero, got %+v", si.Score)
	}
}

func TestStopBeforeSearch(t *testing.T) {
	var e = newTestEngine()
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	si, err := e.Search(ctx, SearchParams{Positions: []Position{p}, Limits: LimitsType{Depth: 30}})
	if err != nil {
		t.Fatal(err)
	}
	if len(si.MainLine) == 0 {
		t.Error("a bestmove is always emitted, even on instant cancel")
	}
}

func TestSkillLevelPicksLegalMove(t *testing.T) {
	var e = newTestEngine()
	e.Options.SkillLevel = 3
	var si = searchFEN(t, e, InitialPositionFen, LimitsType{Depth: 5}, nil)
	if len(si.MainLine) == 0 {
		t.Fatal("skill-limited search still yields a bestmove")
	}
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	if _, ok := ParseMoveLAN(&p, si.MainLine[0].String()); !ok {
		t.Errorf("skill pick %v is not legal", si.MainLine[0])
	}
}

func TestOptionsSet(t *testing.T) {
	var o = NewOptions()
	if err := o.Set("Hash", "64"); err != nil || o.Hash != 64 {
		t.Errorf("set hash failed: %v %v", err, o.Hash)
	}
	if err := o.Set("MultiPV", "4"); err != nil || o.MultiPV != 4 {
		t.Errorf("set multipv failed: %v %v", err, o.MultiPV)
	}
	if err := o.Set("NoSuchOption", "1"); err == nil {
		t.Error("unknown options must be rejected")
	}
}

func TestClearBetweenGames(t *testing.T) {
	var e = newTestEngine()
	searchFEN(t, e, InitialPositionFen, LimitsType{Depth: 4}, nil)
	e.Clear()
	var si = searchFEN(t, e, InitialPositionFen, LimitsType{Depth: 4}, nil)
	if len(si.MainLine) == 0 {
		t.Error("search after Clear must still work")
	}
}
