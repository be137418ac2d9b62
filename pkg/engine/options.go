package engine

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Options is the engine configuration registry. Hosts mutate it between
// searches only; every worker snapshots the hot-path values at search start
// so the inner loops never touch it.
type Options struct {
	Hash    int
	Threads int
	MultiPV int

	SkillLevel       int
	UCILimitStrength bool
	UCIElo           int

	MoveOverhead        int
	SlowMover           int
	MinimumThinkingTime int

	SyzygyProbeDepth int
	SyzygyProbeLimit int
	Syzygy50MoveRule bool

	FailInfoEnabled  bool
	FailInfoFirstMs  int
	FailInfoMinNodes int64
	FailInfoRateMs   int

	// Experimental knobs, neutral by default.
	CheckSacrificeTolerance int
	ProgressMinNodes        int64
}

func NewOptions() Options {
	return Options{
		Hash:                16,
		Threads:             1,
		MultiPV:             1,
		SkillLevel:          20,
		UCIElo:              3190,
		MoveOverhead:        10,
		SlowMover:           100,
		MinimumThinkingTime: 20,
		SyzygyProbeDepth:    1,
		SyzygyProbeLimit:    7,
		Syzygy50MoveRule:    true,
		FailInfoEnabled:     true,
		FailInfoFirstMs:     4000,
		FailInfoMinNodes:    10_000_000,
		FailInfoRateMs:      400,
		ProgressMinNodes:    0,
	}
}

var errUnknownOption = errors.New("unknown option")

// Set gives hosts a string-keyed way into the registry, shaped like UCI
// "setoption" names.
func (o *Options) Set(name, value string) error {
	var intVal, intErr = strconv.Atoi(value)
	var boolVal = strings.EqualFold(value, "true")
	switch strings.ToLower(name) {
	case "hash":
		o.Hash = intVal
	case "threads":
		o.Threads = intVal
	case "multipv":
		o.MultiPV = intVal
	case "skill level":
		o.SkillLevel = intVal
	case "uci_limitstrength":
		o.UCILimitStrength = boolVal
		return nil
	case "uci_elo":
		o.UCIElo = intVal
	case "move overhead":
		o.MoveOverhead = intVal
	case "slow mover":
		o.SlowMover = intVal
	case "minimum thinking time":
		o.MinimumThinkingTime = intVal
	case "syzygyprobedepth":
		o.SyzygyProbeDepth = intVal
	case "syzygyprobelimit":
		o.SyzygyProbeLimit = intVal
	case "syzygy50moverule":
		o.Syzygy50MoveRule = boolVal
		return nil
	case "failinfo enabled":
		o.FailInfoEnabled = boolVal
		return nil
	case "failinfo first ms":
		o.FailInfoFirstMs = intVal
	case "failinfo min nodes":
		o.FailInfoMinNodes = int64(intVal)
	case "failinfo rate ms":
		o.FailInfoRateMs = intVal
	default:
		return errUnknownOption
	}
	return intErr
}

// reductions[i] holds the shared logarithmic reduction magnitude, in
// 1024ths of a ply once multiplied with its pair.
var reductions [256]int

func init() {
	for i := 1; i < len(reductions); i++ {
		reductions[i] = int(2809.0 / 128.0 * math.Log(float64(i)))
	}
}
