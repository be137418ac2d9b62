package common

import "testing"

// Positions from the classic SEE test set.
func TestSeeWinningCapture(t *testing.T) {
	var p, err = NewPositionFromFEN("1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m, ok = ParseMoveLAN(&p, "e1e5")
	if !ok {
		t.Fatal("Rxe5 must be legal")
	}
	if !p.SeeGEZero(m) {
		t.Error("Rxe5 wins an undefended pawn")
	}
	if !p.SeeGE(m, 1) {
		t.Error("Rxe5 gains a full pawn")
	}
	if p.SeeGE(m, 2) {
		t.Error("Rxe5 gains exactly one pawn, not more")
	}
}

func TestSeeLosingCapture(t *testing.T) {
	var p, err = NewPositionFromFEN("1k1r3q/1ppn3p/p4b2/4p3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m, ok = ParseMoveLAN(&p, "d3e5")
	if !ok {
		t.Fatal("Nxe5 must be legal")
	}
	if p.SeeGEZero(m) {
		t.Error("Nxe5 loses material against the e5 defenders")
	}
}

func TestSeeQuietMove(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var m, _ = ParseMoveLAN(&p, "g1f3")
	if !p.SeeGEZero(m) {
		t.Error("a safe quiet move never loses material")
	}
	var pawn, _ = ParseMoveLAN(&p, "e2e4")
	if pawn.String() != "e2e4" {
		t.Error("lan formatting")
	}
}
