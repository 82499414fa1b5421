package testutil

import (
	"cmp"
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SortPoints orders points lexicographically in place.
func SortPoints(pts []geom.Point) {
	slices.SortFunc(pts, func(a, b geom.Point) int {
		for i := range a {
			if c := cmp.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
		return 0
	})
}

// SamePoints asserts that want and got hold the same multiset of points.
func SamePoints(t testing.TB, want, got []geom.Point, msgAndArgs ...any) bool {
	t.Helper()
	w := slices.Clone(want)
	g := slices.Clone(got)
	SortPoints(w)
	SortPoints(g)
	if !assert.Equal(t, len(w), len(g), msgAndArgs...) {
		return false
	}
	for i := range w {
		if !w[i].Equal(g[i]) {
			return assert.Equal(t, w[i], g[i], msgAndArgs...)
		}
	}
	return true
}

// CheckRange asserts that every box returns exactly the brute-force answer.
func CheckRange(t *testing.T, idx index.SpatialIndex, data []geom.Point, boxes []geom.Box) {
	t.Helper()
	for i, b := range boxes {
		got, err := idx.RangeQuery(b)
		require.NoError(t, err)
		SamePoints(t, BruteForceRange(data, b), got, "%s box %d", idx.Name(), i)
	}
}

// CheckKNN asserts that every answer has k points, is ordered by distance and
// that its farthest point is no farther than the brute-force k-th distance.
func CheckKNN(t *testing.T, idx index.SpatialIndex, data []geom.Point, queries []geom.Point, ks []int) {
	t.Helper()
	for _, k := range ks {
		if k > len(data) {
			continue
		}
		for i, q := range queries {
			got, err := idx.KNNQuery(q, k)
			require.NoError(t, err)
			require.Len(t, got, k, "%s k=%d query %d", idx.Name(), k, i)

			for j := 1; j < len(got); j++ {
				require.LessOrEqual(t, geom.SquaredDist(got[j-1], q), geom.SquaredDist(got[j], q))
			}
			want := KthDistance(data, q, k)
			require.LessOrEqual(t, geom.Dist(got[k-1], q), want+1e-9, "%s k=%d query %d", idx.Name(), k, i)
		}
	}
}

// CheckErrors asserts the common argument errors of a SpatialIndex.
func CheckErrors(t *testing.T, idx index.SpatialIndex) {
	t.Helper()
	dim := idx.Dimension()
	q := make(geom.Point, dim)

	_, err := idx.KNNQuery(q, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
	_, err = idx.KNNQuery(q, idx.Count()+1)
	assert.ErrorIs(t, err, index.ErrInvalidK)

	var dimErr *index.ErrDimensionMismatch
	_, err = idx.KNNQuery(make(geom.Point, dim+1), 1)
	assert.ErrorAs(t, err, &dimErr)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		nonFinite := make(geom.Point, dim)
		nonFinite[0] = v
		_, err = idx.KNNQuery(nonFinite, 1)
		assert.ErrorIs(t, err, index.ErrInvalidCoordinate, "query %v", nonFinite)
	}

	bad := geom.Box{Min: make(geom.Point, dim), Max: make(geom.Point, dim)}
	bad.Min[0] = 1
	_, err = idx.RangeQuery(bad)
	assert.ErrorIs(t, err, index.ErrInvalidBox)
}
