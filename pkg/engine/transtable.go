package engine

import (
	"errors"
	"sync/atomic"

	. "github.com/Gero-Marten/SugaR/pkg/common"
)

const (
	boundNone = iota
	boundUpper
	boundLower
	boundExact = boundUpper | boundLower
)

const clusterSize = 3

// Two words per entry:
//
//	word0: key16 | move16<<16 | value16<<32 | eval16<<48
//	word1: depth8 | genBound8<<8  (bound 2 bits, pv bit, generation 5 bits)
//
// Readers take both words with plain atomic loads and validate what they
// got; a torn pair fails the key or bound checks and is discarded. Writers
// store both words last-writer-wins. No locks anywhere.
type transTable struct {
	words     []uint64
	megabytes int
	clusters  uint64
	shift     uint
	gen       uint8
}

var errTTSize = errors.New("transposition table size out of range")

func newTransTable(megabytes int) (*transTable, error) {
	if megabytes < 1 || megabytes > 1<<20 {
		return nil, errTTSize
	}
	var clusters = uint64(1)
	for clusters<<1 <= uint64(megabytes)*1024*1024/(clusterSize*16) {
		clusters <<= 1
	}
	var shift = uint(64)
	for c := clusters; c > 1; c >>= 1 {
		shift--
	}
	return &transTable{
		words:     make([]uint64, clusters*clusterSize*2),
		megabytes: megabytes,
		clusters:  clusters,
		shift:     shift,
	}, nil
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) NewSearch() {
	tt.gen = (tt.gen + 1) & 31
}

func (tt *transTable) Clear() {
	tt.gen = 0
	for i := range tt.words {
		tt.words[i] = 0
	}
}

func (tt *transTable) clusterBase(key uint64) int {
	return int(key>>tt.shift) * clusterSize * 2
}

func packEntry(key uint64, wire uint16, value, eval, depth int, bound int, isPv bool, gen uint8) (uint64, uint64) {
	var word0 = uint64(uint16(key)) |
		uint64(wire)<<16 |
		uint64(uint16(int16(value)))<<32 |
		uint64(uint16(int16(eval)))<<48
	var genBound = uint8(bound) | let8(isPv, 4, 0) | gen<<3
	var word1 = uint64(uint8(depth)) | uint64(genBound)<<8
	return word0, word1
}

func let8(ok bool, yes, no uint8) uint8 {
	if ok {
		return yes
	}
	return no
}

// Read probes the cluster for key. Values come back exactly as stored, still
// ply-relative; the caller owns the ValueFromTT conversion.
func (tt *transTable) Read(key uint64) (depth, value, eval, bound int, wire uint16, isPv, ok bool) {
	var base = tt.clusterBase(key)
	for i := 0; i < clusterSize; i++ {
		var word0 = atomic.LoadUint64(&tt.words[base+2*i])
		var word1 = atomic.LoadUint64(&tt.words[base+2*i+1])
		if uint16(word0) != uint16(key) {
			continue
		}
		var genBound = uint8(word1 >> 8)
		bound = int(genBound & 3)
		if bound == boundNone {
			continue
		}
		depth = int(uint8(word1))
		value = int(int16(uint16(word0 >> 32)))
		eval = int(int16(uint16(word0 >> 48)))
		wire = uint16(word0 >> 16)
		isPv = genBound&4 != 0
		// refresh the generation so the entry survives replacement
		if gen := genBound >> 3; gen != tt.gen {
			var refreshed = uint64(uint8(word1)) | uint64(genBound&7|tt.gen<<3)<<8
			atomic.StoreUint64(&tt.words[base+2*i+1], refreshed)
		}
		ok = true
		return
	}
	return 0, ValueNone, ValueNone, boundNone, 0, false, false
}

func (tt *transTable) Update(key uint64, depth, value, eval, bound int, isPv bool, wire uint16) {
	var base = tt.clusterBase(key)

	var slot = -1
	var slotScore = 1 << 30
	for i := 0; i < clusterSize; i++ {
		var word0 = atomic.LoadUint64(&tt.words[base+2*i])
		var word1 = atomic.LoadUint64(&tt.words[base+2*i+1])
		var genBound = uint8(word1 >> 8)
		if uint16(word0) == uint16(key) && genBound&3 != boundNone {
			// an exact entry is not degraded by a shallower non-exact write
			if genBound&3 == boundExact && bound != boundExact && depth < int(uint8(word1)) {
				return
			}
			isPv = isPv || genBound&4 != 0
			if wire == 0 {
				wire = uint16(word0 >> 16)
			}
			slot = i
			break
		}
		var relAge = int((32 + tt.gen - genBound>>3) & 31)
		var score = int(uint8(word1)) - 8*relAge
		if genBound&3 == boundNone {
			score = -(1 << 20)
		}
		if score < slotScore {
			slotScore = score
			slot = i
		}
	}

	var word0, word1 = packEntry(key, wire, value, eval, depth, bound, isPv, tt.gen)
	atomic.StoreUint64(&tt.words[base+2*slot], word0)
	atomic.StoreUint64(&tt.words[base+2*slot+1], word1)
}

// Hashfull estimates table saturation in permille from the first thousand
// entries of the current generation.
func (tt *transTable) Hashfull() int {
	var used, sampled = 0, 0
	for i := 0; sampled < 1000 && i < len(tt.words)/2; i++ {
		var word1 = atomic.LoadUint64(&tt.words[2*i+1])
		var genBound = uint8(word1 >> 8)
		sampled++
		if genBound&3 != boundNone && genBound>>3 == tt.gen {
			used++
		}
	}
	if sampled == 0 {
		return 0
	}
	return used * 1000 / sampled
}
