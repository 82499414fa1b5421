package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/testutil"
)

func TestDuplicatePoints(t *testing.T) {
	rng := testutil.NewRNG(200)
	points := rng.UniformPoints(1000, 2)
	for i := 0; i < 200; i++ {
		points = append(points, geom.Point{0.25, 0.75})
	}

	box := geom.Box{Min: geom.Point{0.2, 0.7}, Max: geom.Point{0.3, 0.8}}
	for _, kind := range learnedbench.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			idx, err := learnedbench.Build(context.Background(), kind, points)
			require.NoError(t, err)

			testutil.CheckRange(t, idx, points, []geom.Box{box})

			got, err := idx.KNNQuery(geom.Point{0.25, 0.75}, 150)
			require.NoError(t, err)
			for _, p := range got {
				assert.Equal(t, geom.Point{0.25, 0.75}, p)
			}
		})
	}
}

func TestSinglePointAllKinds(t *testing.T) {
	points := []geom.Point{{3, -2}}

	for _, kind := range learnedbench.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			idx, err := learnedbench.Build(context.Background(), kind, points)
			if err != nil {
				// Grid partitions of a single point have no volume.
				require.ErrorIs(t, err, learnedbench.ErrDegeneratePartition)
				return
			}

			for _, q := range []geom.Point{{3, -2}, {1e6, 1e6}, {-1e6, 0}} {
				got, err := idx.KNNQuery(q, 1)
				require.NoError(t, err)
				assert.Equal(t, points[0], got[0])
			}

			got, err := idx.RangeQuery(geom.Box{Min: geom.Point{0, -5}, Max: geom.Point{5, 0}})
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestBoxOutsideData(t *testing.T) {
	points := testutil.NewRNG(201).UniformPoints(2000, 2)
	outside := []geom.Box{
		{Min: geom.Point{2, 2}, Max: geom.Point{3, 3}},
		{Min: geom.Point{-3, -3}, Max: geom.Point{-2, -2}},
		{Min: geom.Point{-1, 2}, Max: geom.Point{2, 3}},
	}
	covering := geom.Box{Min: geom.Point{-10, -10}, Max: geom.Point{10, 10}}

	for _, kind := range learnedbench.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			idx, err := learnedbench.Build(context.Background(), kind, points)
			require.NoError(t, err)

			for _, b := range outside {
				got, err := idx.RangeQuery(b)
				require.NoError(t, err)
				assert.Empty(t, got)
			}

			got, err := idx.RangeQuery(covering)
			require.NoError(t, err)
			assert.Len(t, got, len(points))

			got, err = idx.KNNQuery(geom.Point{0.5, 0.5}, len(points))
			require.NoError(t, err)
			assert.Len(t, got, len(points))
		})
	}
}

func TestQueryErrorsAllKinds(t *testing.T) {
	points := testutil.NewRNG(202).UniformPoints(200, 3)

	for _, kind := range learnedbench.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			idx, err := learnedbench.Build(context.Background(), kind, points)
			require.NoError(t, err)
			testutil.CheckErrors(t, idx)
		})
	}
}
