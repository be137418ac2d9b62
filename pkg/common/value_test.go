package common

import "testing"

func TestValuePredicates(t *testing.T) {
	if !IsWin(MateIn(3)) || IsLoss(MateIn(3)) {
		t.Error("mate scores must be wins")
	}
	if !IsLoss(MatedIn(3)) || IsWin(MatedIn(3)) {
		t.Error("mated scores must be losses")
	}
	if IsDecisive(250) || IsDecisive(-250) {
		t.Error("normal evals are not decisive")
	}
	if !IsValid(0) || !IsValid(ValueMate) || IsValid(ValueNone) {
		t.Error("validity predicate broken")
	}
	if !IsWin(ValueTBWinInMaxPly) || IsWin(ValueTBWinInMaxPly-1) {
		t.Error("tablebase band boundary broken")
	}
}

func TestValueTTRoundTrip(t *testing.T) {
	// mate and tablebase entries carry their distance in the score, so
	// they only round-trip while the distance reaches past the storing ply
	var values = []int{
		0, 1, -1, 250, -250,
		MateIn(45), MateIn(90), MatedIn(45), MatedIn(90),
		ValueTB - 50, -(ValueTB - 50),
	}
	for _, v := range values {
		for _, ply := range []int{0, 1, 7, 42} {
			var got = ValueFromTT(ValueToTT(v, ply), ply, 0)
			if got != v {
				t.Errorf("round trip failed: v=%v ply=%v got=%v", v, ply, got)
			}
		}
	}

	if got := ValueFromTT(ValueToTT(MateIn(1), 1), 1, 0); got != MateIn(1) {
		t.Errorf("mate in one round trip failed: %v", got)
	}
}

func TestValueFromTTRule50Guard(t *testing.T) {
	// a mate-in-60 score cannot be trusted when only 30 rule-50 plies remain
	var stored = ValueToTT(MateIn(60), 0)
	var got = ValueFromTT(stored, 0, 70)
	if got >= ValueMateInMaxPly {
		t.Errorf("expected degraded mate score, got %v", got)
	}
	if !IsWin(got) {
		t.Errorf("degraded score should stay winning, got %v", got)
	}
}

func TestUciScore(t *testing.T) {
	if s := NewUciScore(MateIn(3)); s.Mate != 2 {
		t.Errorf("mate in 3 plies is mate 2, got %v", s.Mate)
	}
	if s := NewUciScore(MatedIn(4)); s.Mate != -2 {
		t.Errorf("mated in 4 plies is mate -2, got %v", s.Mate)
	}
	if s := NewUciScore(123); s.Centipawns != 123 || s.Mate != 0 {
		t.Errorf("plain centipawns mangled: %+v", s)
	}
}
