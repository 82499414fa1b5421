package benchmark_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/bench"
	"github.com/hupe1980/learnedbench/dataset"
	"github.com/hupe1980/learnedbench/geom"
)

const (
	benchN   = 100_000
	benchDim = 2
)

type fixture struct {
	points  []geom.Point
	boxes   map[float64][]geom.Box
	queries []geom.Point
}

var (
	fixturesMu sync.Mutex
	fixtures   = map[string]*fixture{}
)

// loadFixture generates (once per process) a dataset and its query sample.
func loadFixture(b *testing.B, dist dataset.Distribution) *fixture {
	b.Helper()

	fixturesMu.Lock()
	defer fixturesMu.Unlock()

	if f, ok := fixtures[string(dist)]; ok {
		return f
	}

	scale := 1.0
	if dist == dataset.DistClustered || dist == dataset.DistDiagonal {
		scale = 0.02
	}
	points, err := dataset.Spec{Distribution: dist, N: benchN, Dim: benchDim, Scale: scale, Seed: 1}.Generate()
	if err != nil {
		b.Fatal(err)
	}

	f := &fixture{
		points:  points,
		boxes:   map[float64][]geom.Box{},
		queries: bench.SamplePoints(points, 100, 0),
	}
	for _, sel := range bench.DefaultSelectivities {
		f.boxes[sel] = bench.SampleBoxes(points, 10, sel, 0)
	}
	fixtures[string(dist)] = f
	return f
}

func buildIndex(b *testing.B, kind learnedbench.Kind, points []geom.Point) *learnedbench.Index {
	b.Helper()
	idx, err := learnedbench.Build(context.Background(), kind, points)
	if err != nil {
		b.Fatalf("%s: %v", kind, err)
	}
	return idx
}

func selName(sel float64) string { return fmt.Sprintf("sel=%g", sel) }
