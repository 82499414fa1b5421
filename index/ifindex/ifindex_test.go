package ifindex

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
		name     string
		points   []geom.Point
		capacity int
		sortDim  int
	}{
		{"uniform 2d", rng.UniformPoints(5000, 2), 200, 0},
		{"gaussian 3d", rng.GaussianPoints(4000, 3), 150, 1},
		{"lognormal 2d", rng.LognormalPoints(3000, 2, 1), 2000, 0},
		{"clustered 4d", rng.ClusteredPoints(3000, 4, 8, 0.05), 100, 3},
		{"diagonal 2d", rng.DiagonalPoints(2000, 2, 0.01), 64, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(tt.points, func(o *Options) {
				o.LeafNodeCap = tt.capacity
				o.SortDim = tt.sortDim
			})
			require.NoError(t, err)
			assert.Equal(t, len(tt.points), idx.Count())
			assert.GreaterOrEqual(t, idx.Leaves(), (len(tt.points)+tt.capacity-1)/tt.capacity)

			boxes := append(rng.Boxes(tt.points, 30, 0.05), rng.Boxes(tt.points, 10, 0.5)...)
			boxes = append(boxes, geom.MBR(tt.points))
			testutil.CheckRange(t, idx, tt.points, boxes)
		})
	}
}

func TestLeafModelErrorBound(t *testing.T) {
	rng := testutil.NewRNG(7)
	points := rng.UniformPoints(3000, 2)

	idx, err := New(points, func(o *Options) { o.LeafNodeCap = 500 })
	require.NoError(t, err)

	for _, l := range idx.leaves {
		for i, p := range l.points {
			from, to := l.window(p[0], p[0])
			require.LessOrEqual(t, from, i)
			require.GreaterOrEqual(t, to, i)
		}
		if i := len(l.points) - 1; i > 0 {
			assert.LessOrEqual(t, l.points[i-1][0], l.points[i][0])
		}
	}
	assert.Less(t, idx.MaxError(), 500)
}

func TestConstantSortDimension(t *testing.T) {
	points := make([]geom.Point, 300)
	for i := range points {
		points[i] = geom.Point{1, float64(i) / 300}
	}

	idx, err := New(points, func(o *Options) { o.LeafNodeCap = 50 })
	require.NoError(t, err)

	testutil.CheckRange(t, idx, points, []geom.Box{
		{Min: geom.Point{1, 0.1}, Max: geom.Point{1, 0.2}},
		{Min: geom.Point{0, 0}, Max: geom.Point{0.5, 1}},
	})
}

func TestKNN(t *testing.T) {
	rng := testutil.NewRNG(43)
	points := rng.UniformPoints(3000, 3)

	idx, err := New(points, func(o *Options) { o.LeafNodeCap = 100 })
	require.NoError(t, err)

	queries := append(rng.UniformPoints(20, 3), geom.Point{5, 5, 5}, geom.Point{-1, 0.5, 0.5})
	testutil.CheckKNN(t, idx, points, queries, []int{1, 10, 100})
}

func TestErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, index.ErrEmptyPointSet)

	_, err = New([]geom.Point{{1, 2}}, func(o *Options) { o.SortDim = 5 })
	assert.ErrorIs(t, err, index.ErrInvalidOption)

	_, err = New([]geom.Point{{1, 2}}, func(o *Options) { o.LeafNodeCap = 0 })
	assert.ErrorIs(t, err, index.ErrInvalidOption)

	rng := testutil.NewRNG(5)
	idx, err := New(rng.UniformPoints(100, 2))
	require.NoError(t, err)
	testutil.CheckErrors(t, idx)
	assert.Positive(t, idx.SizeBytes())
	assert.Equal(t, "ifi", idx.Name())
}
