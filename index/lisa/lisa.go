// Package lisa implements a grid-projection learned index.
//
// Space is cut into K equal-depth slabs per dimension. A point's key is its cell
// id plus the fraction of the cell volume spanned between the cell's lower corner
// and the point, so keys order points by cell first and by position inside the
// cell second. A segment model over the sorted keys resolves cell id ranges to
// array positions.
package lisa

import (
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/candidate"
	"github.com/hupe1980/learnedbench/internal/keyspace"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/partition"
	"github.com/hupe1980/learnedbench/internal/pgm"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the LISA index.
type Options struct {
	// K is the number of slabs per dimension. Zero picks the smallest K with
	// K^D >= N/1024. K is clamped to the number of points.
	K int `yaml:"k"`

	// Epsilon is the error bound of the segment model.
	Epsilon int `yaml:"epsilon"`

	// MaxRanges caps the cell id ranges one query may fold into.
	MaxRanges int `yaml:"max_ranges"`
}

// DefaultOptions contains the default configuration options for the LISA index.
var DefaultOptions = Options{
	K:         0,
	Epsilon:   pgm.DefaultEpsilon,
	MaxRanges: 4096,
}

// Index is an immutable LISA index.
type Index struct {
	opts    Options
	dim     int
	grid    *partition.Grid
	volumes []float64
	mins    geom.Point
	maxs    geom.Point
	mbr     geom.Box
	points  []geom.Point
	keys    *keyspace.Space
}

// New builds a LISA index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.K < 0 || opts.Epsilon < 0 {
		return nil, fmt.Errorf("%w: K=%d epsilon=%d", index.ErrInvalidOption, opts.K, opts.Epsilon)
	}
	if opts.K == 0 {
		opts.K = partition.GridK(len(points), dim)
	}
	opts.K = min(opts.K, len(points))

	mbr := geom.MBR(points)
	cuts := make([]partition.Cuts, dim)
	values := make([]float64, len(points))
	for d := 0; d < dim; d++ {
		for i, p := range points {
			values[i] = p[d]
		}
		cuts[d] = partition.EqualDepth(values, opts.K)
	}

	grid, err := partition.NewGrid(cuts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidOption, err)
	}

	volumes := make([]float64, grid.Layout().Cells())
	for id := range volumes {
		v := grid.Volume(id)
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: cell %d has volume %v", index.ErrDegeneratePartition, id, v)
		}
		volumes[id] = v
	}

	ix := &Index{
		opts:    opts,
		dim:     dim,
		grid:    grid,
		volumes: volumes,
		mins:    mbr.Min,
		maxs:    mbr.Max,
		mbr:     mbr,
	}

	keys := make([]float64, len(points))
	idx := make([]int, dim)
	for i, p := range points {
		keys[i] = ix.project(p, idx)
	}

	sorted, sortedKeys := keyspace.Sort(points, keys)
	ks, err := keyspace.NewStrict(sortedKeys, opts.Epsilon)
	if err != nil {
		return nil, err
	}
	ix.points = sorted
	ix.keys = ks

	return ix, nil
}

// project returns the key of p: its cell id plus the relative volume between
// the cell's lower corner and p.
func (ix *Index) project(p geom.Point, idx []int) float64 {
	id := ix.grid.Cell(p, idx)
	vol := 10.0
	for d, v := range p {
		lower := ix.grid.Cuts(d).Lower(idx[d])
		switch {
		case v <= ix.mins[d]:
			vol = 0
		case v >= ix.maxs[d]:
			vol *= 100 * (ix.maxs[d] - lower)
		default:
			vol *= 100 * (v - lower)
		}
	}
	return float64(id) + vol/ix.volumes[id]
}

// Name returns the kind name.
func (*Index) Name() string { return "lisa" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// K returns the number of slabs per dimension.
func (ix *Index) K() int { return ix.opts.K }

// Keys returns the sorted projection keys.
func (ix *Index) Keys() []float64 { return ix.keys.Keys() }

// Points returns the points in key order. The slice must not be modified.
func (ix *Index) Points() []geom.Point { return ix.points }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	return ix.collect(box, nil), nil
}

func (ix *Index) collect(box geom.Box, dst []geom.Point) []geom.Point {
	set := candidate.Get()
	defer candidate.Put(set)

	for _, r := range ix.grid.Ranges(box, ix.opts.MaxRanges) {
		set.AddRange(ix.keys.Range(float64(r.Lo), float64(r.Hi+1)))
	}
	return set.Filter(dst, ix.points, box)
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	r := ix.grid.BoundaryDist(q)
	if r <= 0 {
		r = ix.grid.MinWidth() / (2 * float64(ix.opts.K))
	}

	return knn.Search(q, k, r, knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.collect(geom.Around(q, r), dst), nil
	})
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	return ix.grid.SizeBytes() + len(ix.volumes)*8 + ix.keys.SizeBytes() + index.PointsSize(len(ix.points), ix.dim)
}
