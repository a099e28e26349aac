package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPRNG_Deterministic(t *testing.T) {
	a := NewPRNG(432)
	b := NewPRNG(432)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.NextUint64(), b.NextUint64())
	}
}

func TestPRNG_DifferentSeedsDiverge(t *testing.T) {
	a := NewPRNG(1)
	b := NewPRNG(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.NextUint64() != b.NextUint64() {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestPRNG_NextFloat32Range(t *testing.T) {
	p := NewPRNG(7)
	for i := 0; i < 1000; i++ {
		f := p.NextFloat32Range(-0.5, 0.5)
		assert.GreaterOrEqual(t, f, float32(-0.5))
		assert.LessOrEqual(t, f, float32(0.5))
	}
}

func TestPRNG_NextIntnBounds(t *testing.T) {
	p := NewPRNG(99)
	for i := 0; i < 1000; i++ {
		n := p.NextIntn(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
}

func TestPRNG_GenStrayMatchesWorkedExample(t *testing.T) {
	top, wt := parseTop(t, "{3.0 (gen/stray from: 3.0 by: 0.5)}")
	tl, err := ExtractTraits(top, wt)
	assert.NoError(t, err)
	g, err := BuildFromSeed(tl, 432)
	assert.NoError(t, err)
	assert.InDelta(t, 3.178, g.Genes[0].F, 0.01)
}

func TestPRNG_Clone(t *testing.T) {
	p := NewPRNG(11)
	p.NextUint64()
	clone := p.Clone()
	assert.Equal(t, p.NextUint64(), clone.NextUint64())
}
