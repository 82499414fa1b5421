// Package grid provides the grid baselines: a uniform grid with equal-width
// cells and an equal-depth grid whose cells hold about the same number of
// points. Points are stored bucketed by cell id, so a range of cell ids is a
// contiguous run of the point array.
package grid

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/partition"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the grid index.
type Options struct {
	// K is the number of cells per dimension.
	K int `yaml:"k"`

	// EqualDepth switches from equal-width to equal-depth cuts.
	EqualDepth bool `yaml:"equal_depth"`

	// MaxRanges caps the cell id ranges one query may fold into.
	MaxRanges int `yaml:"max_ranges"`
}

// DefaultOptions contains the default configuration options for the grid index.
var DefaultOptions = Options{
	K:          10,
	EqualDepth: false,
	MaxRanges:  4096,
}

// Index is an immutable grid index.
type Index struct {
	opts   Options
	dim    int
	grid   *partition.Grid
	start  []int // start[c] is the first position of cell c; len = cells+1
	mbr    geom.Box
	points []geom.Point
}

// New builds a grid index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.K < 1 {
		return nil, fmt.Errorf("%w: K=%d", index.ErrInvalidOption, opts.K)
	}
	if opts.EqualDepth {
		opts.K = min(opts.K, len(points))
	}

	mbr := geom.MBR(points)
	cuts := make([]partition.Cuts, dim)
	values := make([]float64, len(points))
	for d := 0; d < dim; d++ {
		if !opts.EqualDepth {
			cuts[d] = partition.Uniform(mbr.Min[d], mbr.Max[d], opts.K)
			continue
		}
		for i, p := range points {
			values[i] = p[d]
		}
		cuts[d] = partition.EqualDepth(values, opts.K)
	}

	g, err := partition.NewGrid(cuts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidOption, err)
	}

	cells := make([]int, len(points))
	idx := make([]int, dim)
	counts := make([]int, g.Layout().Cells()+1)
	for i, p := range points {
		cells[i] = g.Cell(p, idx)
		counts[cells[i]+1]++
	}
	for c := 1; c < len(counts); c++ {
		counts[c] += counts[c-1]
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cells[a] - cells[b] })

	bucketed := make([]geom.Point, len(points))
	for i, j := range order {
		bucketed[i] = points[j]
	}

	return &Index{
		opts:   opts,
		dim:    dim,
		grid:   g,
		start:  counts,
		mbr:    mbr,
		points: index.ClonePoints(bucketed),
	}, nil
}

// Name returns "edg" for equal-depth and "ug" for uniform grids.
func (ix *Index) Name() string {
	if ix.opts.EqualDepth {
		return "edg"
	}
	return "ug"
}

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// CellCount returns the number of points in cell c.
func (ix *Index) CellCount(c int) int { return ix.start[c+1] - ix.start[c] }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	return ix.collect(box, nil), nil
}

func (ix *Index) collect(box geom.Box, dst []geom.Point) []geom.Point {
	for _, r := range ix.grid.Ranges(box, ix.opts.MaxRanges) {
		dst = geom.Filter(dst, ix.points[ix.start[r.Lo]:ix.start[r.Hi+1]], box)
	}
	return dst
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	r0 := ix.grid.BoundaryDist(q)
	if !(r0 > 0) || math.IsInf(r0, 1) {
		r0 = ix.grid.MinWidth() / (2 * float64(ix.opts.K))
	}

	return knn.Search(q, k, r0, knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.collect(geom.Around(q, r), dst), nil
	})
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	return index.PointsSize(len(ix.points), ix.dim) + ix.grid.SizeBytes() + len(ix.start)*8
}
