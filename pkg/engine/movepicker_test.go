package engine

import (
	"testing"

	. "github.com/Gero-Marten/SugaR/pkg/common"

	eval "github.com/Gero-Marten/SugaR/pkg/eval/material"
)

func newTestWorker(t *testing.T, fen string) *worker {
	t.Helper()
	var e = NewEngine(func() interface{} { return eval.NewEvaluationService() })
	e.Options.Hash = 1
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	var w = &e.threads[0]
	w.frame(0).position = p
	e.historyKeys = map[uint64]int{}
	return w
}

func drainPicker(mp *movePicker) []Move {
	var result []Move
	for m := mp.Next(); m != MoveEmpty; m = mp.Next() {
		result = append(result, m)
	}
	return result
}

func TestPickerYieldsEveryLegalMoveOnce(t *testing.T) {
	var w = newTestWorker(t, InitialPositionFen)
	var mp movePicker
	mp.init(w, 0, 0)
	var moves = drainPicker(&mp)
	if len(moves) != 20 {
		t.Fatalf("expected 20 moves, got %v", len(moves))
	}
	var seen = map[Move]bool{}
	for _, m := range moves {
		if seen[m] {
			t.Errorf("duplicate move %v", m)
		}
		seen[m] = true
	}
}

func TestPickerTTMoveFirst(t *testing.T) {
	var w = newTestWorker(t, InitialPositionFen)
	var p = &w.frame(0).position
	var ttMove, _ = ParseMoveLAN(p, "b1c3")

	var mp movePicker
	mp.init(w, 0, uint16(ttMove.Wire()))
	var first = mp.Next()
	if first != ttMove {
		t.Errorf("tt move must come first, got %v", first)
	}
	if mp.ttMove != ttMove {
		t.Error("picker must remember the resolved tt move")
	}
}

func TestPickerCapturesBeforeQuiets(t *testing.T) {
	// white to move can take the d5 pawn with exd5 and has many quiets
	var w = newTestWorker(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	var mp movePicker
	mp.init(w, 0, 0)
	var moves = drainPicker(&mp)

	var firstQuiet = -1
	var lastGoodCapture = -1
	for i, m := range moves {
		if isCaptureOrPromotion(m) {
			var p = &w.frame(0).position
			if p.SeeGEZero(m) {
				lastGoodCapture = i
			}
		} else if firstQuiet < 0 {
			firstQuiet = i
		}
	}
	if lastGoodCapture < 0 {
		t.Fatal("exd5 must be generated")
	}
	if firstQuiet >= 0 && lastGoodCapture > firstQuiet {
		t.Error("good captures must be tried before quiet moves")
	}
}

func TestPickerSkipQuietMoves(t *testing.T) {
	var w = newTestWorker(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	var mp movePicker
	mp.init(w, 0, 0)
	mp.SkipQuietMoves()
	for m := mp.Next(); m != MoveEmpty; m = mp.Next() {
		if !isCaptureOrPromotion(m) {
			t.Errorf("quiet move %v yielded after SkipQuietMoves", m)
		}
	}
}

func TestPickerEvasionsWhenInCheck(t *testing.T) {
	var w = newTestWorker(t, "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	var mp movePicker
	mp.initQS(w, 0, 0)
	if !mp.inCheck {
		t.Fatal("white is in check from the rook")
	}
	var moves = drainPicker(&mp)
	if len(moves) == 0 {
		t.Fatal("evasions must be generated in check")
	}
}

func TestPickerQSCapturesOnly(t *testing.T) {
	var w = newTestWorker(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	var mp movePicker
	mp.initQS(w, 0, 0)
	for m := mp.Next(); m != MoveEmpty; m = mp.Next() {
		if !isCaptureOrPromotion(m) {
			t.Errorf("quiescence yielded quiet move %v", m)
		}
	}
}
