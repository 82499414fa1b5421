package mlindex

import (
	"context"
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
		name       string
		points     []geom.Point
		partitions int
	}{
		{"uniform 2d", rng.UniformPoints(4000, 2), 10},
		{"gaussian 3d", rng.GaussianPoints(3000, 3), 16},
		{"lognormal 2d", rng.LognormalPoints(3000, 2, 1), 5},
		{"clustered 4d", rng.ClusteredPoints(3000, 4, 8, 0.05), 8},
		{"single cluster", rng.UniformPoints(500, 2), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(tt.points, func(o *Options) { o.Partitions = tt.partitions })
			require.NoError(t, err)
			assert.Len(t, idx.Centers(), tt.partitions)

			boxes := append(rng.Boxes(tt.points, 30, 0.05), rng.Boxes(tt.points, 10, 0.5)...)
			testutil.CheckRange(t, idx, tt.points, boxes)
		})
	}
}

func TestKeysStrictlyIncreasing(t *testing.T) {
	rng := testutil.NewRNG(44)
	points := rng.UniformPoints(2000, 2)
	points = append(points, geom.Point{0.5, 0.5}, geom.Point{0.5, 0.5}, geom.Point{0.5, 0.5})

	idx, err := New(points)
	require.NoError(t, err)

	keys := idx.Keys()
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i], "position %d", i)
	}
}

func TestProjectionBands(t *testing.T) {
	rng := testutil.NewRNG(46)
	points := rng.ClusteredPoints(2000, 2, 4, 0.02)

	idx, err := New(points, func(o *Options) { o.Partitions = 4 })
	require.NoError(t, err)

	var total float64
	for _, r := range idx.Radii() {
		assert.GreaterOrEqual(t, r, 0.0)
		total += r
	}
	for _, p := range points {
		key := idx.Project(p)
		assert.GreaterOrEqual(t, key, 0.0)
		assert.LessOrEqual(t, key, total+1e-9)
	}
}

func TestEmptyBucket(t *testing.T) {
	rng := testutil.NewRNG(22)
	points := rng.DiagonalPoints(2000, 2, 0.01)

	idx, err := New(points, func(o *Options) { o.Partitions = 8 })
	require.NoError(t, err)

	box := geom.Box{Min: geom.Point{0, 0.9}, Max: geom.Point{0.05, 1}}
	require.Empty(t, testutil.BruteForceRange(points, box))

	got, err := idx.RangeQuery(box)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKNN(t *testing.T) {
	rng := testutil.NewRNG(43)
	points := rng.GaussianPoints(3000, 3)

	idx, err := New(points)
	require.NoError(t, err)

	queries := append(rng.GaussianPoints(20, 3), geom.Point{5, 5, 5}, geom.Point{-4, 0.5, 0.5})
	testutil.CheckKNN(t, idx, points, queries, []int{1, 10, 100, 3000})
}

func TestIdempotentBuild(t *testing.T) {
	rng := testutil.NewRNG(3)
	points := rng.GaussianPoints(1500, 2)

	a, err := New(points, func(o *Options) { o.Seed = 7 })
	require.NoError(t, err)
	b, err := New(points, func(o *Options) { o.Seed = 7 })
	require.NoError(t, err)

	assert.Equal(t, a.Centers(), b.Centers())
	assert.Equal(t, a.Keys(), b.Keys())
	assert.Equal(t, a.Points(), b.Points())
}

func TestSinglePoint(t *testing.T) {
	points := []geom.Point{{0.3, 0.7}}

	idx, err := New(points)
	require.NoError(t, err)
	assert.Len(t, idx.Centers(), 1)

	for _, q := range []geom.Point{{0.3, 0.7}, {100, -100}} {
		got, err := idx.KNNQuery(q, 1)
		require.NoError(t, err)
		assert.Equal(t, points[0], got[0])
	}
}

func TestCancelledBuild(t *testing.T) {
	rng := testutil.NewRNG(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithContext(ctx, rng.UniformPoints(500, 2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, index.ErrEmptyPointSet)

	_, err = New([]geom.Point{{1, 2}}, func(o *Options) { o.Partitions = 0 })
	assert.ErrorIs(t, err, index.ErrInvalidOption)

	rng := testutil.NewRNG(5)
	idx, err := New(rng.UniformPoints(100, 2))
	require.NoError(t, err)
	testutil.CheckErrors(t, idx)
	assert.Positive(t, idx.SizeBytes())
	assert.Equal(t, "mli", idx.Name())
}
