package zm

import (
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/morton"
	"github.com/hupe1980/learnedbench/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeExact(t *testing.T) {
	rng := testutil.NewRNG(42)

	tests := []struct {
		name   string
		points []geom.Point
		res    int
	}{
		{"uniform 2d", rng.UniformPoints(5000, 2), 0},
		{"gaussian 3d", rng.GaussianPoints(4000, 3), 0},
		{"lognormal 2d coarse", rng.LognormalPoints(3000, 2, 1), 4},
		{"clustered 4d", rng.ClusteredPoints(3000, 4, 8, 0.05), 0},
		{"diagonal 2d", rng.DiagonalPoints(2000, 2, 0.01), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(tt.points, func(o *Options) { o.Resolution = tt.res })
			require.NoError(t, err)

			boxes := append(rng.Boxes(tt.points, 30, 0.05), rng.Boxes(tt.points, 10, 0.5)...)
			// Boxes reaching past the data bounds clamp to the border cells.
			low := make(geom.Point, len(tt.points[0]))
			for d := range low {
				low[d] = -100
			}
			boxes = append(boxes, geom.Box{Min: low, Max: tt.points[0].Clone()})
			testutil.CheckRange(t, idx, tt.points, boxes)
		})
	}
}

func TestKeysSorted(t *testing.T) {
	rng := testutil.NewRNG(44)
	points := rng.UniformPoints(2000, 2)
	points = append(points, geom.Point{0.5, 0.5}, geom.Point{0.5, 0.5})

	idx, err := New(points)
	require.NoError(t, err)
	assert.Equal(t, 44, idx.Resolution())

	keys := idx.Keys()
	for i := 1; i < len(keys); i++ {
		require.LessOrEqual(t, keys[i-1], keys[i], "position %d", i)
	}
}

func TestResolutionCapped(t *testing.T) {
	rng := testutil.NewRNG(45)
	points := rng.UniformPoints(200, 8)

	idx, err := New(points, func(o *Options) { o.Resolution = 1 << 20 })
	require.NoError(t, err)
	assert.Equal(t, morton.MaxResolution(8), idx.Resolution())

	testutil.CheckRange(t, idx, points, rng.Boxes(points, 10, 0.5))
}

func TestKNN(t *testing.T) {
	rng := testutil.NewRNG(43)
	points := rng.UniformPoints(3000, 3)

	idx, err := New(points)
	require.NoError(t, err)

	queries := append(rng.UniformPoints(20, 3), geom.Point{5, 5, 5}, geom.Point{-1, 0.5, 0.5})
	testutil.CheckKNN(t, idx, points, queries, []int{1, 10, 100})
}

func TestConstantDimension(t *testing.T) {
	points := []geom.Point{{0, 1}, {0.5, 1}, {1, 1}, {0.25, 1}}

	idx, err := New(points)
	require.NoError(t, err)

	got, err := idx.RangeQuery(geom.Box{Min: geom.Point{0.2, 1}, Max: geom.Point{0.6, 1}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	nn, err := idx.KNNQuery(geom.Point{0.9, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, geom.Point{1, 1}, nn[0])
}

func TestErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, index.ErrEmptyPointSet)

	_, err = New([]geom.Point{{1, 2}}, func(o *Options) { o.Resolution = -1 })
	assert.ErrorIs(t, err, index.ErrInvalidOption)

	rng := testutil.NewRNG(5)
	idx, err := New(rng.UniformPoints(100, 2))
	require.NoError(t, err)
	testutil.CheckErrors(t, idx)
	assert.Positive(t, idx.SizeBytes())
}
