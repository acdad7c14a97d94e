package ember

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// EntropySource supplies the seed material consumed once per transition at
// construction. The process-wide default draws from the operating system;
// tests substitute a FixedEntropy to make transition patterns
// deterministic.
type EntropySource interface {
	Seed() (uint64, uint64)
}

// systemEntropy is the process-wide default entropy source.
var systemEntropy EntropySource = osEntropy{}

type osEntropy struct{}

// Seed reads 16 bytes from the operating system's entropy pool.
func (osEntropy) Seed() (uint64, uint64) {
	var buf [16]byte
	// crypto/rand.Read never fails on supported platforms; it panics
	// internally instead of returning garbage.
	_, _ = crand.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
}

// FixedEntropy is an EntropySource returning a constant seed pair, for
// reproducible transition patterns in tests.
type FixedEntropy struct {
	A, B uint64
}

// Seed returns the fixed pair.
func (f FixedEntropy) Seed() (uint64, uint64) {
	return f.A, f.B
}

// transitionSeeds derives four 32-bit values from one seed consumption:
// the entropy source seeds a deterministic PCG generator whose first four
// outputs become the transition's fixed random values.
func transitionSeeds(src EntropySource) [4]uint32 {
	a, b := src.Seed()
	r := rand.New(rand.NewPCG(a, b))
	return [4]uint32{r.Uint32(), r.Uint32(), r.Uint32(), r.Uint32()}
}
