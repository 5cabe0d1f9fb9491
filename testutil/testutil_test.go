package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesDeterministic(t *testing.T) {
	a := NewRNG(4711).Bytes(64)
	b := NewRNG(4711).Bytes(64)
	assert.Equal(t, a, b)

	rng := NewRNG(4711)
	first := rng.Bytes(64)
	rng.Reset()
	assert.Equal(t, first, rng.Bytes(64))
}

func TestRanges(t *testing.T) {
	rng := NewRNG(4711)

	for _, r := range rng.Ranges(200, 100) {
		assert.GreaterOrEqual(t, r.Offset, int64(0))
		assert.GreaterOrEqual(t, r.Length, int64(0))
		assert.LessOrEqual(t, r.Offset+r.Length, int64(100))
	}
}

func TestBadRanges(t *testing.T) {
	rng := NewRNG(4711)

	for _, r := range rng.BadRanges(200, 100) {
		bad := r.Offset < 0 || r.Length < 0 || r.Offset+r.Length > 100
		assert.True(t, bad, "range %+v is in bounds", r)
	}
}

func TestPattern(t *testing.T) {
	p := Pattern(600)
	assert.Equal(t, byte(0), p[0])
	assert.Equal(t, byte(250), p[250])
	assert.Equal(t, byte(0), p[251])
}
