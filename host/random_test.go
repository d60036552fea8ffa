package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandom(t *testing.T) {
	assert := assert.New(t)

	a := &Random{ZeroSeed: true}
	b := &Random{ZeroSeed: true}

	for range 256 {
		n := a.Rand()
		assert.GreaterOrEqual(n, 0)
		assert.Equal(n, b.Rand())
	}

	a.Rand()
	a.Reset()
	b.Reset()
	assert.Equal(a.Rand(), b.Rand())
}
