package knn

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxCollector(points []geom.Point, calls *int) Collector {
	return func(r float64, dst []geom.Point) ([]geom.Point, error) {
		*calls++
		return geom.Filter(dst, points, geom.Around(q0, r)), nil
	}
}

var q0 = geom.Point{0.5, 0.5}

func kthDist(points []geom.Point, q geom.Point, k int) float64 {
	d := make([]float64, len(points))
	for i, p := range points {
		d[i] = geom.Dist(p, q)
	}
	sort.Float64s(d)
	return d[k-1]
}

func TestSearchExact(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	points := make([]geom.Point, 2000)
	for i := range points {
		points[i] = geom.Point{rng.Float64(), rng.Float64()}
	}
	mbr := geom.MBR(points)

	for _, k := range []int{1, 5, 50, 2000} {
		calls := 0
		got, err := Search(q0, k, 1e-4, MaxRadius(q0, mbr), boxCollector(points, &calls))
		require.NoError(t, err)
		require.Len(t, got, k)

		want := kthDist(points, q0, k)
		assert.LessOrEqual(t, geom.Dist(got[k-1], q0), want+1e-12, "k=%d", k)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, geom.SquaredDist(got[i-1], q0), geom.SquaredDist(got[i], q0))
		}
	}
}

func TestSearchCorrectsCornerCandidates(t *testing.T) {
	// The box of radius 1 holds the far corner point, but the true nearest point
	// sits just outside the box on an axis.
	points := []geom.Point{{0.5 + 0.99, 0.5 + 0.99}, {0.5 + 1.01, 0.5}}
	calls := 0
	got, err := Search(q0, 1, 1, 10, boxCollector(points, &calls))
	require.NoError(t, err)
	assert.Equal(t, points[1], got[0])
	assert.Equal(t, 2, calls)
}

func TestSearchSinglePointTerminates(t *testing.T) {
	points := []geom.Point{{3, -2}}
	for _, q := range []geom.Point{{3, -2}, {100, 100}, {-1e6, 0}} {
		mbr := geom.MBR(points)
		collect := func(r float64, dst []geom.Point) ([]geom.Point, error) {
			return geom.Filter(dst, points, geom.Around(q, r)), nil
		}
		got, err := Search(q, 1, 1e-9, MaxRadius(q, mbr), collect)
		require.NoError(t, err)
		assert.Equal(t, points[0], got[0])
	}
}

func TestSearchTinyStartRadius(t *testing.T) {
	points := []geom.Point{{-1, 0}, {1, 0}, {0.25, 0.75}}
	mbr := geom.MBR(points)
	q := geom.Point{5e-324, 0}

	for _, r0 := range []float64{5e-324, math.SmallestNonzeroFloat64 * 3, 1e-300} {
		calls := 0
		collect := func(r float64, dst []geom.Point) ([]geom.Point, error) {
			calls++
			return geom.Filter(dst, points, geom.Around(q, r)), nil
		}
		got, err := Search(q, len(points), r0, MaxRadius(q, mbr), collect)
		require.NoError(t, err, "r0=%v", r0)
		assert.Len(t, got, len(points))
		assert.LessOrEqual(t, calls, MaxRetries)
	}
}

func TestSearchExhausted(t *testing.T) {
	empty := func(r float64, dst []geom.Point) ([]geom.Point, error) { return dst, nil }
	_, err := Search(q0, 1, 1, 4, empty)
	assert.ErrorIs(t, err, index.ErrSearchExhausted)
}

func TestSearchPropagatesCollectorError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(r float64, dst []geom.Point) ([]geom.Point, error) { return nil, boom }
	_, err := Search(q0, 1, 1, 4, failing)
	assert.ErrorIs(t, err, boom)
}

func TestNearestStableTies(t *testing.T) {
	cands := []geom.Point{{1, 0}, {0, 1}, {-1, 0}, {0, 0.5}}
	got := Nearest(geom.Point{0, 0}, cands, 3)
	assert.Equal(t, []geom.Point{{0, 0.5}, {1, 0}, {0, 1}}, got)
	assert.Len(t, Nearest(geom.Point{0, 0}, cands, 10), 4)
	assert.False(t, math.IsNaN(MaxRadius(geom.Point{0, 0}, geom.MBR(cands))))
}
