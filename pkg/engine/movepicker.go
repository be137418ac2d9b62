package engine

import (
	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// Ordering key bands. Stages are expressed as disjoint key ranges over one
// generated list: the picker stays lazy by selecting the best remaining key
// on demand, and SkipQuietMoves lifts a whole band out of consideration.
const (
	keyTTMove      = int32(1) << 30
	keyGoodCapture = int32(1) << 24
	keyBadCapture  = int32(-1) << 24
)

// movePicker owns its move storage: verification and exclusion sub-searches
// recurse at the same height, so per-frame buffers would alias.
type movePicker struct {
	buffer     [MaxMoves]OrderedMove
	moves      []OrderedMove
	ttMove     Move
	index      int
	skipQuiets bool
	inCheck    bool
}

// init prepares the full-width picker for a search node. The TT move is
// validated by membership in the legal list, so a corrupted table can never
// inject an illegal move.
func (mp *movePicker) init(w *worker, height int, ttWire uint16) {
	var p = &w.frame(height).position
	mp.moves = p.GenerateMoves(mp.buffer[:])
	mp.inCheck = p.IsCheck()
	mp.score(w, height, ttWire)
}

// initQS prepares the quiescence picker: captures and promotions, or every
// evasion when in check.
func (mp *movePicker) initQS(w *worker, height int, ttWire uint16) {
	var p = &w.frame(height).position
	mp.moves, mp.inCheck = p.GenerateNoisyMoves(mp.buffer[:])
	mp.score(w, height, ttWire)
}

func (mp *movePicker) score(w *worker, height int, ttWire uint16) {
	var p = &w.frame(height).position
	var side = p.SideToMove()
	var pawnIdx = int(p.PawnKey() % pawnHistorySize)

	var cont1 = w.contHistAt(height, 1)
	var cont2 = w.contHistAt(height, 2)
	var cont4 = w.contHistAt(height, 4)

	for i := range mp.moves {
		var m = mp.moves[i].Move
		var key int32
		if ttWire != 0 && uint16(m.Wire()) == ttWire {
			mp.ttMove = m
			key = keyTTMove
		} else if isCaptureOrPromotion(m) {
			var value = mvvlva(m)*16 + w.history.captureValue(side, m)/8
			if p.SeeGE(m, -value/18) {
				key = keyGoodCapture + int32(value)
			} else {
				key = keyBadCapture + int32(value)
			}
		} else {
			var value = 2 * w.history.mainValue(side, m)
			value += w.history.pawnValue(pawnIdx, side, m)
			var pieceTo = pieceSquareIndex(side, m.MovingPiece(), m.To())
			if cont1 != nil {
				value += 2 * int(cont1[pieceTo])
			}
			if cont2 != nil {
				value += int(cont2[pieceTo])
			}
			if cont4 != nil {
				value += int(cont4[pieceTo])
			}
			value += 2 * w.history.lowPlyValue(height, side, m)
			key = int32(value)
		}
		mp.moves[i].Key = key
	}
}

func (mp *movePicker) SkipQuietMoves() {
	mp.skipQuiets = true
}

// Next returns MoveEmpty when exhausted. Selection is lazy: each call
// brings the best remaining key to the front, which keeps the common
// cutoff-after-few-moves case cheap.
func (mp *movePicker) Next() Move {
	for {
		if mp.index >= len(mp.moves) {
			return MoveEmpty
		}
		moveToTop(mp.moves[mp.index:])
		var om = mp.moves[mp.index]
		mp.index++
		if mp.skipQuiets && !mp.inCheck &&
			om.Key < keyGoodCapture/2 && om.Key > keyBadCapture/2 && om.Move != mp.ttMove {
			continue
		}
		return om.Move
	}
}

var mvvPieceValues = [...]int{Empty: 0, Pawn: 1, Knight: 2, Bishop: 3, Rook: 4, Queen: 5, King: 6}

func mvvlva(move Move) int {
	return 8*(mvvPieceValues[move.CapturedPiece()]+
		mvvPieceValues[move.Promotion()]) -
		mvvPieceValues[move.MovingPiece()]
}

func moveToTop(ml []OrderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].Key > ml[bestIndex].Key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
