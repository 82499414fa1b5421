package keyspace

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeStrict(t *testing.T) {
	keys := []float64{1, 1, 1, 2, 2, 3, 1e20, 1e20}
	shift := MakeStrict(keys)

	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i], "position %d", i)
	}
	assert.InDelta(t, 2e-11, keys[2]-1, 1e-15)
	assert.Positive(t, shift)
	// Huge keys need a full ulp rather than the fixed step.
	assert.Greater(t, shift, 1e-11)
}

func TestNewStrictKeysIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	keys := make([]float64, 10000)
	for i := range keys {
		keys[i] = float64(rng.Intn(300)) + float64(rng.Intn(3))*0.25
	}
	sort.Float64s(keys)

	s, err := NewStrict(keys, 32)
	require.NoError(t, err)
	for i := 1; i < s.Len(); i++ {
		require.Less(t, s.Keys()[i-1], s.Keys()[i])
	}
}

func TestRangeMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	orig := make([]float64, 5000)
	for i := range orig {
		orig[i] = float64(rng.Intn(1000)) / 10
	}
	sort.Float64s(orig)

	keys := append([]float64(nil), orig...)
	s, err := NewStrict(keys, 16)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		lo := rng.Float64() * 100
		hi := lo + rng.Float64()*10
		from, to := s.Range(lo, hi)

		// Every original key in [lo, hi] must sit inside [from, to).
		for pos, v := range orig {
			if v >= lo && v <= hi {
				require.GreaterOrEqual(t, pos, from)
				require.Less(t, pos, to)
			}
		}
	}
}

func TestBoundsWithBadWindow(t *testing.T) {
	// Heavy duplication makes the model window miss in-between keys; the
	// exponential fallback must still find the right answer.
	keys := make([]float64, 0, 4000)
	for i := 0; i < 2000; i++ {
		keys = append(keys, 1)
	}
	for i := 0; i < 2000; i++ {
		keys = append(keys, 2+float64(i))
	}
	s, err := New(keys, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, s.LowerBound(1))
	assert.Equal(t, 2000, s.UpperBound(1))
	assert.Equal(t, 2000, s.LowerBound(1.5))
	assert.Equal(t, 4000, s.LowerBound(1e9))
	assert.Equal(t, 0, s.LowerBound(-5))
}

func TestRangeEmpty(t *testing.T) {
	s, err := New(nil, 4)
	require.NoError(t, err)
	from, to := s.Range(0, 1)
	assert.Equal(t, 0, from)
	assert.Equal(t, 0, to)

	s, err = New([]float64{1, 2, 3}, 4)
	require.NoError(t, err)
	from, to = s.Range(3, 2)
	assert.Equal(t, from, to)
}

func TestSortStable(t *testing.T) {
	points := []geom.Point{{0}, {1}, {2}, {3}}
	keys := []float64{2, 1, 2, 0}

	sorted, sortedKeys := Sort(points, keys)
	assert.Equal(t, []float64{0, 1, 2, 2}, sortedKeys)
	assert.Equal(t, []geom.Point{{3}, {1}, {0}, {2}}, sorted)

	sorted[0][0] = 42
	assert.Equal(t, 3.0, points[3][0])
}
