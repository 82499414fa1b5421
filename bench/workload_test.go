package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/testutil"
)

func TestSamplePoints(t *testing.T) {
	points := testutil.NewRNG(1).UniformPoints(500, 2)

	a := SamplePoints(points, 20, 7)
	b := SamplePoints(points, 20, 7)
	require.Len(t, a, 20)
	assert.Equal(t, a, b)

	// Samples are copies.
	a[0][0] = -1
	for _, p := range points {
		assert.NotEqual(t, -1.0, p[0])
	}

	assert.Nil(t, SamplePoints(nil, 5, 0))
	assert.Nil(t, SamplePoints(points, 0, 0))
}

func TestSampleBoxes(t *testing.T) {
	points := testutil.NewRNG(2).UniformPoints(2000, 3)
	mbr := geom.MBR(points)

	for _, sel := range DefaultSelectivities {
		boxes := SampleBoxes(points, 10, sel, 0)
		require.Len(t, boxes, 10)
		for _, b := range boxes {
			require.NoError(t, b.Validate())
			assert.True(t, mbr.Covers(b), "box %v escapes %v", b, mbr)
		}
	}
}

func TestSampleBoxesSelectivity(t *testing.T) {
	points := testutil.NewRNG(3).UniformPoints(20000, 2)

	// Boxes near the max corner are clipped, so the mean falls below the
	// target but stays within the same order of magnitude.
	boxes := SampleBoxes(points, 50, 0.01, 0)
	total := 0
	for _, b := range boxes {
		total += len(testutil.BruteForceRange(points, b))
	}
	mean := float64(total) / float64(len(boxes)) / float64(len(points))
	assert.InDelta(t, 0.01, mean, 0.008)
}

func TestNewWorkload(t *testing.T) {
	points := testutil.NewRNG(4).GaussianPoints(1500, 2)

	cfg := DefaultWorkloadConfig()
	cfg.KNNQueries = 5
	cfg.RangeQueries = 4

	w, err := NewWorkload(points, cfg)
	require.NoError(t, err)

	require.Len(t, w.Ranges, len(DefaultSelectivities))
	for _, g := range w.Ranges {
		require.Len(t, g.Queries, 4)
		for _, q := range g.Queries {
			assert.Equal(t, len(testutil.BruteForceRange(points, q.Box)), q.Expected)
		}
	}

	// 10000 exceeds the point count.
	var ks []int
	for _, g := range w.KNN {
		ks = append(ks, g.K)
		require.Len(t, g.Queries, 5)
		for _, q := range g.Queries {
			assert.GreaterOrEqual(t, q.KthDist, 0.0)
		}
	}
	assert.Equal(t, []int{1, 10, 100, 500, 1000}, ks)
	assert.Equal(t, 5*4+5*5, w.Len())
}

func TestNewWorkloadSkip(t *testing.T) {
	points := testutil.NewRNG(5).UniformPoints(100, 2)

	cfg := DefaultWorkloadConfig()
	cfg.SkipRange = true
	w, err := NewWorkload(points, cfg)
	require.NoError(t, err)
	assert.Empty(t, w.Ranges)
	assert.NotEmpty(t, w.KNN)

	cfg = DefaultWorkloadConfig()
	cfg.SkipKNN = true
	w, err = NewWorkload(points, cfg)
	require.NoError(t, err)
	assert.Empty(t, w.KNN)
	assert.NotEmpty(t, w.Ranges)
}

func TestNewWorkloadErrors(t *testing.T) {
	_, err := NewWorkload(nil, DefaultWorkloadConfig())
	assert.Error(t, err)

	cfg := DefaultWorkloadConfig()
	cfg.Selectivities = []float64{1.5}
	_, err = NewWorkload(testutil.NewRNG(6).UniformPoints(10, 2), cfg)
	assert.ErrorContains(t, err, "selectivity")
}
