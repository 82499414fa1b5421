package bench

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index/fullscan"
)

var (
	// DefaultKs are the k values of the kNN workload.
	DefaultKs = []int{1, 10, 100, 500, 1000, 10000}
	// DefaultSelectivities are the target selectivities of the range workload.
	DefaultSelectivities = []float64{0.001, 0.01, 0.05, 0.1, 0.2}
)

// WorkloadConfig describes the queries to sample.
type WorkloadConfig struct {
	// KNNQueries is the number of query points shared by every k.
	KNNQueries int `yaml:"knn_queries"`
	// RangeQueries is the number of boxes per selectivity.
	RangeQueries  int       `yaml:"range_queries"`
	Ks            []int     `yaml:"ks"`
	Selectivities []float64 `yaml:"selectivities"`
	Seed          uint64    `yaml:"seed"`
	// SkipKNN and SkipRange drop a query type.
	SkipKNN   bool `yaml:"skip_knn"`
	SkipRange bool `yaml:"skip_range"`
}

// DefaultWorkloadConfig returns 100 kNN points and 10 boxes per selectivity,
// sampled with seed 0.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		KNNQueries:    100,
		RangeQueries:  10,
		Ks:            slices.Clone(DefaultKs),
		Selectivities: slices.Clone(DefaultSelectivities),
	}
}

// RangeQuery is a query box with its true result count.
type RangeQuery struct {
	Box      geom.Box
	Expected int
}

// RangeGroup holds the boxes sampled for one selectivity.
type RangeGroup struct {
	Selectivity float64
	Queries     []RangeQuery
}

// KNNQuery is a query point with its true k-th nearest distance.
type KNNQuery struct {
	Point   geom.Point
	KthDist float64
}

// KNNGroup holds the queries of one k.
type KNNGroup struct {
	K       int
	Queries []KNNQuery
}

// Workload is a fixed set of queries with ground truth.
type Workload struct {
	Ranges []RangeGroup
	KNN    []KNNGroup
}

// Len returns the total number of queries.
func (w Workload) Len() int {
	n := 0
	for _, g := range w.Ranges {
		n += len(g.Queries)
	}
	for _, g := range w.KNN {
		n += len(g.Queries)
	}
	return n
}

// SamplePoints draws n data points with replacement.
func SamplePoints(points []geom.Point, n int, seed uint64) []geom.Point {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, 0))
	out := make([]geom.Point, n)
	for i := range out {
		out[i] = points[rng.IntN(len(points))].Clone()
	}
	return out
}

// SampleBoxes draws n boxes whose lower corner is a data point. Each side
// spans (max-min)·sel^(1/D) of the data extent, clamped to the data maximum,
// so a box holds about sel·N points under uniformity.
func SampleBoxes(points []geom.Point, n int, sel float64, seed uint64) []geom.Box {
	corners := SamplePoints(points, n, seed)
	if len(corners) == 0 {
		return nil
	}
	mbr := geom.MBR(points)
	dim := len(points[0])
	scale := math.Pow(sel, 1/float64(dim))

	boxes := make([]geom.Box, len(corners))
	for i, c := range corners {
		hi := make(geom.Point, dim)
		for d := range hi {
			hi[d] = math.Min(c[d]+(mbr.Max[d]-mbr.Min[d])*scale, mbr.Max[d])
		}
		boxes[i] = geom.Box{Min: c, Max: hi}
	}
	return boxes
}

// NewWorkload samples cfg's queries over points and records the truth from a
// full scan. Ks above len(points) are dropped.
func NewWorkload(points []geom.Point, cfg WorkloadConfig) (Workload, error) {
	oracle, err := fullscan.New(points)
	if err != nil {
		return Workload{}, err
	}

	var w Workload

	if !cfg.SkipRange {
		for _, sel := range cfg.Selectivities {
			if !(sel > 0 && sel <= 1) {
				return Workload{}, fmt.Errorf("bench: selectivity %v out of (0, 1]", sel)
			}
			g := RangeGroup{Selectivity: sel}
			for _, box := range SampleBoxes(points, cfg.RangeQueries, sel, cfg.Seed) {
				res, err := oracle.RangeQuery(box)
				if err != nil {
					return Workload{}, err
				}
				g.Queries = append(g.Queries, RangeQuery{Box: box, Expected: len(res)})
			}
			w.Ranges = append(w.Ranges, g)
		}
	}

	if !cfg.SkipKNN {
		qs := SamplePoints(points, cfg.KNNQueries, cfg.Seed)
		for _, k := range cfg.Ks {
			if k <= 0 || k > len(points) {
				continue
			}
			g := KNNGroup{K: k}
			for _, q := range qs {
				res, err := oracle.KNNQuery(q, k)
				if err != nil {
					return Workload{}, err
				}
				g.Queries = append(g.Queries, KNNQuery{Point: q, KthDist: geom.Dist(q, res[k-1])})
			}
			w.KNN = append(w.KNN, g)
		}
	}

	return w, nil
}
