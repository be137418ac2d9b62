package common

import "testing"

func TestInitialPosition(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	if !p.WhiteMove {
		t.Error("white to move in the initial position")
	}
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])
	if len(ml) != 20 {
		t.Errorf("expected 20 legal moves, got %v", len(ml))
	}
	if p.IsCheck() {
		t.Error("initial position is not check")
	}
	if p.Rule50 != 0 {
		t.Errorf("rule50 = %v", p.Rule50)
	}
}

func TestMakeMoveBookkeeping(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var afterPawn, ok = p.MakeMoveLAN("e2e4")
	if !ok {
		t.Fatal("e2e4 must be legal")
	}
	if afterPawn.Rule50 != 0 {
		t.Errorf("pawn move must reset rule50, got %v", afterPawn.Rule50)
	}
	if afterPawn.WhiteMove {
		t.Error("side to move must flip")
	}
	if afterPawn.LastMove.MovingPiece() != Pawn {
		t.Errorf("moving piece = %v", afterPawn.LastMove.MovingPiece())
	}

	var afterKnight, _ = p.MakeMoveLAN("g1f3")
	if afterKnight.Rule50 != 1 {
		t.Errorf("quiet knight move must advance rule50, got %v", afterKnight.Rule50)
	}
	if afterKnight.Key == p.Key {
		t.Error("key must change after a move")
	}
}

func TestKeyRepetition(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var q = p
	for _, lan := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		var next, ok = q.MakeMoveLAN(lan)
		if !ok {
			t.Fatalf("%v must be legal", lan)
		}
		q = next
	}
	if q.Key != p.Key {
		t.Error("knight shuffle must restore the zobrist key")
	}
	if q.Rule50 != 4 {
		t.Errorf("rule50 after four quiet plies = %v", q.Rule50)
	}
}

func TestEnPassantCapture(t *testing.T) {
	var p, err = NewPositionFromFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2")
	if err != nil {
		t.Fatal(err)
	}
	var m, ok = ParseMoveLAN(&p, "d4e3")
	if !ok {
		t.Fatal("en passant capture must be generated")
	}
	if m.CapturedPiece() != Pawn {
		t.Errorf("en passant must record a captured pawn, got %v", m.CapturedPiece())
	}
	var child Position
	p.MakeMove(m, &child)
	if child.Rule50 != 0 {
		t.Error("capture must reset rule50")
	}
}

func TestPromotionMove(t *testing.T) {
	var p, err = NewPositionFromFEN("8/4P1k1/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m, ok = ParseMoveLAN(&p, "e7e8q")
	if !ok {
		t.Fatal("queen promotion must be generated")
	}
	if m.Promotion() != Queen || m.MovingPiece() != Pawn {
		t.Errorf("promotion fields wrong: %v %v", m.Promotion(), m.MovingPiece())
	}
}

func TestStructureKeys(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var q, _ = p.MakeMoveLAN("e2e4")
	if p.PawnKey() == q.PawnKey() {
		t.Error("pawn key must change when a pawn moves")
	}
	var r, _ = p.MakeMoveLAN("g1f3")
	if p.PawnKey() != r.PawnKey() {
		t.Error("pawn key must ignore piece moves")
	}
	if p.MinorKey() == r.MinorKey() {
		t.Error("minor key must track minor pieces")
	}
}
