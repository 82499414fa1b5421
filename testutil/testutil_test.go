package testutil

import (
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/stretchr/testify/assert"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.UniformPoints(8, 3)

	assert.Equal(t, 8, len(p))
	assert.Equal(t, 3, len(p[0]))
	assert.Less(t, p[0][0], 1.0)
	assert.GreaterOrEqual(t, p[1][0], 0.0)
}

func TestDiagonalPoints(t *testing.T) {
	rng := NewRNG(4711)

	for _, p := range rng.DiagonalPoints(100, 2, 0.01) {
		assert.InDelta(t, p[0], p[1], 0.02)
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.ClusteredPoints(100, 4, 5, 0.1)

	assert.Equal(t, 100, len(p))
	assert.Equal(t, 4, len(p[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(1, 10)
	rng.Reset()
	p2 := rng.UniformPoints(1, 10)
	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestBoxesInsideExtent(t *testing.T) {
	rng := NewRNG(1)
	data := rng.UniformPoints(100, 2)
	for _, b := range rng.Boxes(data, 20, 0.1) {
		assert.NoError(t, b.Validate())
	}
}

func TestBruteForce(t *testing.T) {
	data := []geom.Point{{0, 0}, {1, 1}, {2, 2}}
	got := BruteForceRange(data, geom.Box{Min: geom.Point{0.5, 0.5}, Max: geom.Point{2, 2}})
	SamePoints(t, []geom.Point{{2, 2}, {1, 1}}, got)

	assert.InDelta(t, 1.4142135, KthDistance(data, geom.Point{0, 0}, 2), 1e-6)
}
