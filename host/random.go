package host

import (
	"math/rand"
	"time"
)

var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is the random number source of the machine.
type Random struct {
	// Use a zero seed rather than the time based seed, for runs that
	// must be repeatable.
	ZeroSeed bool

	rng *rand.Rand
}

// Reset restarts the random sequence.
func (rnd *Random) Reset() {
	seed := baseSeed
	if rnd.ZeroSeed {
		seed = 0
	}
	rnd.rng = rand.New(rand.NewSource(seed))
}

// Rand returns a non-negative random integer.
func (rnd *Random) Rand() int {
	if rnd.rng == nil {
		rnd.Reset()
	}
	return rnd.rng.Int()
}
