package engine

import (
	"time"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

// timeManager turns the clock state into an optimum and a maximum budget
// for this move. The iterative-deepening driver owns the stop decision; the
// manager only measures and allocates.
type timeManager struct {
	start    time.Time
	optimum  time.Duration
	maximum  time.Duration
	useClock bool
}

func newTimeManager(start time.Time, limits LimitsType, whiteMove bool, ply int, options *Options) *timeManager {
	var tm = &timeManager{start: start}

	if limits.MoveTime > 0 {
		tm.useClock = true
		tm.optimum = time.Duration(limits.MoveTime) * time.Millisecond
		tm.maximum = tm.optimum
		return tm
	}
	if !limits.UseTimeManagement() {
		return tm
	}

	var myTime, myInc int
	if whiteMove {
		myTime, myInc = limits.WhiteTime, limits.WhiteIncrement
	} else {
		myTime, myInc = limits.BlackTime, limits.BlackIncrement
	}

	var mtg = limits.MovesToGo
	if mtg == 0 || mtg > 50 {
		mtg = Clamp(50-ply/4, 10, 50)
	}

	var timeLeft = myTime + myInc*(mtg-1) - options.MoveOverhead*(2+mtg)
	if timeLeft < 1 {
		timeLeft = 1
	}

	var optimumMs = timeLeft/mtg + myInc*3/4
	optimumMs = optimumMs * options.SlowMover / 100
	optimumMs = Max(optimumMs, options.MinimumThinkingTime)

	var maximumMs = Min(optimumMs*6, myTime*8/10-options.MoveOverhead)
	maximumMs = Max(maximumMs, Min(optimumMs, myTime/2))
	maximumMs = Max(maximumMs, 1)

	tm.useClock = true
	tm.optimum = time.Duration(optimumMs) * time.Millisecond
	tm.maximum = time.Duration(maximumMs) * time.Millisecond
	return tm
}

func (tm *timeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

func (tm *timeManager) Optimum() time.Duration {
	return tm.optimum
}

func (tm *timeManager) Maximum() time.Duration {
	return tm.maximum
}
