package integration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/testutil"
)

// TestExactnessAllKinds checks every kind against brute force on skewed and
// higher-dimensional data.
func TestExactnessAllKinds(t *testing.T) {
	rng := testutil.NewRNG(100)

	datasets := []struct {
		name   string
		points []geom.Point
	}{
		{"uniform 2d", rng.UniformPoints(4000, 2)},
		{"lognormal 2d", rng.LognormalPoints(4000, 2, 1.5)},
		{"clustered 3d", rng.ClusteredPoints(3000, 3, 6, 0.02)},
		{"diagonal 2d", rng.DiagonalPoints(3000, 2, 0.005)},
		{"gaussian 5d", rng.GaussianPoints(2000, 5)},
	}

	for _, ds := range datasets {
		boxes := append(rng.Boxes(ds.points, 15, 0.02), rng.Boxes(ds.points, 10, 0.3)...)
		queries := append(rng.UniformPoints(10, len(ds.points[0])), ds.points[0], ds.points[len(ds.points)-1])

		for _, kind := range learnedbench.Kinds() {
			t.Run(fmt.Sprintf("%s/%s", ds.name, kind), func(t *testing.T) {
				idx, err := learnedbench.Build(context.Background(), kind, ds.points)
				require.NoError(t, err)

				testutil.CheckRange(t, idx, ds.points, boxes)
				testutil.CheckKNN(t, idx, ds.points, queries, []int{1, 7, 64})
			})
		}
	}
}
