package rtree

import (
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeExact(t *testing.T) {
	rng := testutil.NewRNG(42)

	tests := []struct {
		name   string
		points []geom.Point
	}{
		{"uniform 2d", rng.UniformPoints(3000, 2)},
		{"gaussian 3d", rng.GaussianPoints(2000, 3)},
		{"clustered 4d", rng.ClusteredPoints(2000, 4, 8, 0.05)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(tt.points)
			require.NoError(t, err)
			assert.Positive(t, idx.Depth())

			boxes := append(rng.Boxes(tt.points, 20, 0.05), rng.Boxes(tt.points, 5, 0.5)...)
			testutil.CheckRange(t, idx, tt.points, boxes)
		})
	}
}

func TestPointOnBoxFace(t *testing.T) {
	points := []geom.Point{{0, 0}, {1, 1}, {0.5, 1}, {2, 2}}

	idx, err := New(points, func(o *Options) {
		o.MinChildren = 2
		o.MaxChildren = 4
	})
	require.NoError(t, err)

	testutil.CheckRange(t, idx, points, []geom.Box{
		{Min: geom.Point{0, 0}, Max: geom.Point{1, 1}},
		{Min: geom.Point{0.5, 1}, Max: geom.Point{0.5, 1}},
	})
}

func TestKNN(t *testing.T) {
	rng := testutil.NewRNG(43)
	points := rng.UniformPoints(2000, 3)

	idx, err := New(points)
	require.NoError(t, err)

	queries := append(rng.UniformPoints(10, 3), geom.Point{5, 5, 5})
	testutil.CheckKNN(t, idx, points, queries, []int{1, 10, 100})
}

func TestErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, index.ErrEmptyPointSet)

	_, err = New([]geom.Point{{1, 2}}, func(o *Options) { o.MaxChildren = 3 })
	assert.ErrorIs(t, err, index.ErrInvalidOption)

	rng := testutil.NewRNG(5)
	idx, err := New(rng.UniformPoints(100, 2))
	require.NoError(t, err)
	testutil.CheckErrors(t, idx)
	assert.Positive(t, idx.SizeBytes())
}
