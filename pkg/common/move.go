package common

import (
	"strings"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

const (
	Empty int = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	SideWhite = iota
	SideBlack
)

// Move carries the generator's wire move in the low 16 bits and caches the
// square and piece facts move ordering and the history tables keep asking
// for. The upper bits are derived from the position the move was generated
// in, so two encodings of the same wire move in one position are equal.
type Move uint64

const MoveEmpty = Move(0)

func makeMove(wire dragon.Move, from, to, movingPiece, capturedPiece, promotion int) Move {
	return Move(uint64(wire) |
		uint64(from)<<16 |
		uint64(to)<<22 |
		uint64(movingPiece)<<28 |
		uint64(capturedPiece)<<31 |
		uint64(promotion)<<34)
}

// Wire returns the generator's native encoding, the form that is applied to
// the board and stored in the transposition table.
func (m Move) Wire() dragon.Move {
	return dragon.Move(m & 0xffff)
}

func (m Move) From() int {
	return int(m>>16) & 63
}

func (m Move) To() int {
	return int(m>>22) & 63
}

func (m Move) MovingPiece() int {
	return int(m>>28) & 7
}

func (m Move) CapturedPiece() int {
	return int(m>>31) & 7
}

func (m Move) Promotion() int {
	return int(m>>34) & 7
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if p := m.Promotion(); p != Empty {
		sPromotion = string("nbrq"[p-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}

// ParseMoveLAN resolves a long-algebraic move string against the legal moves
// of p, so only moves that actually exist in the position are produced.
func ParseMoveLAN(p *Position, lan string) (Move, bool) {
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])
	for i := range ml {
		if strings.EqualFold(ml[i].Move.String(), lan) {
			return ml[i].Move, true
		}
	}
	return MoveEmpty, false
}
