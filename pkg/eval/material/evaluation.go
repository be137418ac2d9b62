package eval

import (
	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// EvaluationService is the stand-in evaluator: material plus a few square
// bonuses, enough for the search tests and for hosts that bring no network.
// Scores are from the side to move's perspective like every evaluator the
// engine consumes.
type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

var pieceValues = [...]int{Empty: 0, Pawn: 100, Knight: 400, Bishop: 400, Rook: 600, Queen: 1200, King: 0}

// Pawn bonus by rank from the owner's point of view. Advanced pawns matter:
// without this a bare-material evaluator cannot steer promotions.
var pawnRankBonus = [8]int{0, 0, 2, 6, 14, 30, 60, 0}

var centerBonus = [64]int{
	0, 1, 2, 3, 3, 2, 1, 0,
	1, 3, 4, 5, 5, 4, 3, 1,
	2, 4, 6, 8, 8, 6, 4, 2,
	3, 5, 8, 10, 10, 8, 5, 3,
	3, 5, 8, 10, 10, 8, 5, 3,
	2, 4, 6, 8, 8, 6, 4, 2,
	1, 3, 4, 5, 5, 4, 3, 1,
	0, 1, 2, 3, 3, 2, 1, 0,
}

func (e *EvaluationService) Evaluate(p *Position) int {
	var score = 0

	for side := SideWhite; side <= SideBlack; side++ {
		var own = p.Colours(side)
		var sideScore = 0

		for x := p.Pawns() & own; x != 0; x &= x - 1 {
			var sq = FirstOne(x)
			var rank = Rank(sq)
			if side == SideBlack {
				rank = 7 - rank
			}
			sideScore += pieceValues[Pawn] + pawnRankBonus[rank]
		}
		for x := p.Knights() & own; x != 0; x &= x - 1 {
			sideScore += pieceValues[Knight] + 2*centerBonus[FirstOne(x)]
		}
		for x := p.Bishops() & own; x != 0; x &= x - 1 {
			sideScore += pieceValues[Bishop] + centerBonus[FirstOne(x)]
		}
		for x := p.Rooks() & own; x != 0; x &= x - 1 {
			sideScore += pieceValues[Rook]
		}
		for x := p.Queens() & own; x != 0; x &= x - 1 {
			sideScore += pieceValues[Queen] + centerBonus[FirstOne(x)]
		}

		if PopCount(p.Bishops()&own) >= 2 {
			sideScore += 30
		}

		if side == SideWhite {
			score += sideScore
		} else {
			score -= sideScore
		}
	}

	if !p.WhiteMove {
		score = -score
	}
	return score
}
