package engine

import (
	. "github.com/Gero-Marten/SugaR/pkg/common"
)

const (
	mainHistoryMax    = 7183
	lowPlyHistoryMax  = 7183
	captureHistoryMax = 10692
	pawnHistoryMax    = 8192
	contHistoryMax    = 30000
	correctionMax     = 1024

	pawnHistorySize   = 512
	correctionSize    = 16384
	pieceSquareSize   = 14 * 64
	lowPlyCount       = 8
	lowPlyHistorySeed = 97
)

// history owns every per-worker table. Updates follow the gravity rule
// h += bonus - h*|bonus|/limit, which saturates at the limit instead of
// overflowing and slowly forgets stale signals.
type history struct {
	main    [2][64 * 64]int16
	capture [pieceSquareSize][King + 1]int16
	pawn    [pawnHistorySize][pieceSquareSize]int16
	lowPly  [lowPlyCount][64 * 64]int16

	// continuation[inCheck][capture] is selected when a move is made; the
	// frame keeps the resulting index so deeper plies can read through it.
	continuation [2][2][pieceSquareSize][pieceSquareSize]int16

	pawnCorrection    [correctionSize][2]int16
	minorCorrection   [correctionSize][2]int16
	nonPawnCorrection [correctionSize][2][2]int16
	contCorrection    [pieceSquareSize][pieceSquareSize]int16
}

func historyBonus(depth int) int {
	return Min(151*depth-91, 1730)
}

func historyMalus(depth, moveCount int) int {
	return Max(Min(951*depth-156, 2468)-30*moveCount, 1)
}

func gravity(v *int16, bonus, limit int) {
	bonus = Clamp(bonus, -limit, limit)
	*v += int16(bonus - int(*v)*Abs(bonus)/limit)
}

func pieceSquareIndex(side int, piece, to int) int {
	return (MakePiece(piece, side == SideWhite) << 6) | to
}

func MakePiece(pieceType int, white bool) int {
	if white {
		return pieceType
	}
	return pieceType + 7
}

func sideFromToIndex(side int, m Move) int {
	return (m.From() << 6) | m.To()
}

func (h *history) NewGame() {
	*h = history{}
}

// NewSearch re-seeds the tables that are meant to decay between searches.
func (h *history) NewSearch() {
	for i := range h.lowPly {
		for j := range h.lowPly[i] {
			h.lowPly[i][j] = lowPlyHistorySeed
		}
	}
}

func (h *history) mainValue(side int, m Move) int {
	return int(h.main[side][sideFromToIndex(side, m)])
}

func (h *history) updateMain(side int, m Move, bonus int) {
	gravity(&h.main[side][sideFromToIndex(side, m)], bonus, mainHistoryMax)
}

func (h *history) captureValue(side int, m Move) int {
	var captured = m.CapturedPiece()
	if p := m.Promotion(); p != Empty && captured == Empty {
		captured = p
	}
	return int(h.capture[pieceSquareIndex(side, m.MovingPiece(), m.To())][captured])
}

func (h *history) updateCapture(side int, m Move, bonus int) {
	var captured = m.CapturedPiece()
	if p := m.Promotion(); p != Empty && captured == Empty {
		captured = p
	}
	gravity(&h.capture[pieceSquareIndex(side, m.MovingPiece(), m.To())][captured], bonus, captureHistoryMax)
}

func (h *history) pawnValue(pawnIdx, side int, m Move) int {
	return int(h.pawn[pawnIdx][pieceSquareIndex(side, m.MovingPiece(), m.To())])
}

func (h *history) updatePawn(pawnIdx, side int, m Move, bonus int) {
	gravity(&h.pawn[pawnIdx][pieceSquareIndex(side, m.MovingPiece(), m.To())], bonus, pawnHistoryMax)
}

func (h *history) lowPlyValue(ply, side int, m Move) int {
	if ply >= lowPlyCount {
		return 0
	}
	return int(h.lowPly[ply][sideFromToIndex(side, m)])
}

func (h *history) updateLowPly(ply, side int, m Move, bonus int) {
	if ply >= lowPlyCount {
		return
	}
	gravity(&h.lowPly[ply][sideFromToIndex(side, m)], bonus, lowPlyHistoryMax)
}

// contTable picks the continuation table for a move that was just made at a
// node with the given check/capture properties.
func (h *history) contTable(inCheck, isCapture bool, side int, m Move) *[pieceSquareSize]int16 {
	var a, b = 0, 0
	if inCheck {
		a = 1
	}
	if isCapture {
		b = 1
	}
	return &h.continuation[a][b][pieceSquareIndex(side, m.MovingPiece(), m.To())]
}
