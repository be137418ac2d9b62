package common

import (
	"errors"
	"strconv"
	"strings"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var errInvalidFen = errors.New("invalid fen")

// Position wraps the move-generator board with the bookkeeping the search
// needs per node: the zobrist key, a pawn-structure key, the rule-50 counter
// and the move that produced the position. Make into a child frame instead
// of unmake: the search stack owns one Position per ply.
type Position struct {
	board     dragon.Board
	WhiteMove bool
	Key       uint64
	Rule50    int
	LastMove  Move
}

func NewPositionFromFEN(fen string) (Position, error) {
	var fields = strings.Fields(fen)
	if len(fields) < 4 {
		return Position{}, errInvalidFen
	}
	var p Position
	p.board = dragon.ParseFen(fen)
	p.WhiteMove = p.board.Wtomove
	p.Key = p.board.Hash()
	if len(fields) >= 5 {
		if r50, err := strconv.Atoi(fields[4]); err == nil {
			p.Rule50 = r50
		}
	}
	if p.board.Bbs[dragon.White][dragon.All] == 0 ||
		p.board.Bbs[dragon.Black][dragon.All] == 0 {
		return Position{}, errInvalidFen
	}
	return p, nil
}

func (p *Position) String() string {
	return p.board.ToFen()
}

func (p *Position) IsCheck() bool {
	return p.board.OurKingInCheck()
}

func (p *Position) AllPieces() uint64 {
	return p.board.Bbs[dragon.White][dragon.All] |
		p.board.Bbs[dragon.Black][dragon.All]
}

func (p *Position) PieceCount() int {
	return PopCount(p.AllPieces())
}

func (p *Position) Colours(side int) uint64 {
	if side == SideWhite {
		return p.board.Bbs[dragon.White][dragon.All]
	}
	return p.board.Bbs[dragon.Black][dragon.All]
}

func (p *Position) SideToMove() int {
	if p.WhiteMove {
		return SideWhite
	}
	return SideBlack
}

func (p *Position) Pawns() uint64 {
	return p.board.Bbs[dragon.White][dragon.Pawn] | p.board.Bbs[dragon.Black][dragon.Pawn]
}

func (p *Position) Knights() uint64 {
	return p.board.Bbs[dragon.White][dragon.Knight] | p.board.Bbs[dragon.Black][dragon.Knight]
}

func (p *Position) Bishops() uint64 {
	return p.board.Bbs[dragon.White][dragon.Bishop] | p.board.Bbs[dragon.Black][dragon.Bishop]
}

func (p *Position) Rooks() uint64 {
	return p.board.Bbs[dragon.White][dragon.Rook] | p.board.Bbs[dragon.Black][dragon.Rook]
}

func (p *Position) Queens() uint64 {
	return p.board.Bbs[dragon.White][dragon.Queen] | p.board.Bbs[dragon.Black][dragon.Queen]
}

func (p *Position) Kings() uint64 {
	return p.board.Bbs[dragon.White][dragon.King] | p.board.Bbs[dragon.Black][dragon.King]
}

func (p *Position) WhatPiece(sq int) int {
	var b = SquareMask[sq]
	if p.AllPieces()&b == 0 {
		return Empty
	}
	if p.Pawns()&b != 0 {
		return Pawn
	}
	if p.Knights()&b != 0 {
		return Knight
	}
	if p.Bishops()&b != 0 {
		return Bishop
	}
	if p.Rooks()&b != 0 {
		return Rook
	}
	if p.Queens()&b != 0 {
		return Queen
	}
	return King
}

// NonPawnMaterial returns the conventional piece-value sum for side,
// excluding pawns and the king. Zero means null-move territory is unsafe.
func (p *Position) NonPawnMaterial(side int) int {
	var c = p.Colours(side)
	return 3*PopCount((p.Knights()|p.Bishops())&c) +
		5*PopCount(p.Rooks()&c) +
		9*PopCount(p.Queens()&c)
}

// PawnKey mixes both pawn bitboards into a key for the pawn-indexed history
// and correction tables. It is not the generator's zobrist key, but it only
// has to distribute pawn structures, not identify positions.
func (p *Position) PawnKey() uint64 {
	var x = p.board.Bbs[dragon.White][dragon.Pawn]*0x9E3779B97F4A7C15 ^
		p.board.Bbs[dragon.Black][dragon.Pawn]*0xC2B2AE3D27D4EB4F
	x ^= x >> 29
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 32
	return x
}

// MinorKey distributes minor-piece-and-king placement for the correction
// histories, same mixing scheme as PawnKey.
func (p *Position) MinorKey() uint64 {
	var minors = p.Knights() | p.Bishops() | p.Kings()
	var x = minors*0x9E3779B97F4A7C15 ^
		(p.Colours(SideWhite)&minors)*0xD6E8FEB86659FD93
	x ^= x >> 29
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 32
	return x
}

// NonPawnKey distributes the non-pawn material placement of one side.
func (p *Position) NonPawnKey(side int) uint64 {
	var c = p.Colours(side) &^ p.Pawns()
	var x = c * 0xC2B2AE3D27D4EB4F
	x ^= x >> 29
	x *= 0x94D049BB133111EB
	x ^= x >> 32
	return x
}

func (p *Position) richMove(wire dragon.Move) Move {
	var from = int(wire.From())
	var to = int(wire.To())
	var movingPiece = p.WhatPiece(from)
	var capturedPiece = p.WhatPiece(to)
	if movingPiece == Pawn && capturedPiece == Empty && File(from) != File(to) {
		capturedPiece = Pawn // en passant
	}
	var promotion = Empty
	switch wire.Promote() {
	case dragon.Knight:
		promotion = Knight
	case dragon.Bishop:
		promotion = Bishop
	case dragon.Rook:
		promotion = Rook
	case dragon.Queen:
		promotion = Queen
	}
	return makeMove(wire, from, to, movingPiece, capturedPiece, promotion)
}

// GenerateMoves fills buffer with every legal move. Keys are left zeroed,
// ordering belongs to the caller.
func (p *Position) GenerateMoves(buffer []OrderedMove) []OrderedMove {
	var wires = p.board.GenerateLegalMoves()
	var count = 0
	for _, wire := range wires {
		buffer[count] = OrderedMove{Move: p.richMove(wire)}
		count++
	}
	return buffer[:count]
}

// GenerateNoisyMoves fills buffer with captures, promotions and, when the
// side to move is in check, every evasion. The second result reports check.
func (p *Position) GenerateNoisyMoves(buffer []OrderedMove) ([]OrderedMove, bool) {
	var wires, isCheck = p.board.GenerateLegalMoves2(true)
	var count = 0
	for _, wire := range wires {
		buffer[count] = OrderedMove{Move: p.richMove(wire)}
		count++
	}
	return buffer[:count], isCheck
}

// MakeMove plays m into the child frame. Moves must come from this
// position's move generation; the result for foreign moves is undefined.
func (p *Position) MakeMove(m Move, child *Position) bool {
	child.board = p.board
	var save dragon.BoardSaveT
	child.board.MakeMove(m.Wire(), &save)
	child.WhiteMove = !p.WhiteMove
	child.Key = child.board.Hash()
	child.LastMove = m
	if m.MovingPiece() == Pawn || m.CapturedPiece() != Empty {
		child.Rule50 = 0
	} else {
		child.Rule50 = p.Rule50 + 1
	}
	return true
}

func (p *Position) MakeNullMove(child *Position) {
	child.board = p.board
	child.board.ApplyNullMove()
	child.WhiteMove = !p.WhiteMove
	child.Key = child.board.Hash()
	child.LastMove = MoveEmpty
	child.Rule50 = p.Rule50 + 1
}

// MakeMoveLAN is a convenience for hosts and tests: it resolves lan against
// the legal moves and returns the resulting position.
func (p *Position) MakeMoveLAN(lan string) (Position, bool) {
	var m, ok = ParseMoveLAN(p, lan)
	if !ok {
		return Position{}, false
	}
	var child = Position{}
	p.MakeMove(m, &child)
	return child, true
}
