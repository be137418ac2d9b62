package engine

import (
	"math"

	"lukechampine.com/frand"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// skill implements the strength handicap: with a level below 20 the driver
// runs a hidden MultiPV search and picks, with some noise, a move that may
// not be the best one.
type skill struct {
	level float64
	best  Move
}

func newSkill(level int, uciElo int) skill {
	var s = skill{level: float64(level)}
	if uciElo != 0 {
		var e = float64(uciElo-1320) / (3190 - 1320)
		s.level = ((37.2473*e-40.8525)*e+22.2943)*e - 0.311438
		s.level = math.Min(math.Max(s.level, 0), 19)
	}
	return s
}

func (s *skill) enabled() bool {
	return s.level < 20
}

func (s *skill) timeToPick(depth int) bool {
	return depth == 1+int(s.level)
}

// pickBest chooses among the multiPV lines with a weakness-weighted value:
// a worse line can win the pick when the deficit is small relative to the
// handicap. Statistically the chosen move deteriorates with the level.
func (s *skill) pickBest(prng *frand.RNG, rootMoves []RootMove, multiPV int) Move {
	multiPV = Min(multiPV, len(rootMoves))
	var topScore = rootMoves[0].Score
	var delta = Min(topScore-rootMoves[multiPV-1].Score, 100) // pawn value
	var weakness = 120 - 2*s.level
	var maxScore = -ValueInfinity

	s.best = MoveEmpty
	for i := 0; i < multiPV; i++ {
		var push = int(weakness*float64(topScore-rootMoves[i].Score)+
			float64(delta)*float64(prng.Uint64n(uint64(int(weakness)+1)))) / 120
		if rootMoves[i].Score+push >= maxScore {
			maxScore = rootMoves[i].Score + push
			s.best = rootMoves[i].PV[0]
		}
	}
	return s.best
}
