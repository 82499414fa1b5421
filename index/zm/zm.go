// Package zm implements a Z-order learned index.
//
// Space is cut into a uniform res^D grid over the data bounds. Every point is
// keyed by the Morton code of its cell and a segment model over the sorted codes
// maps code intervals to array positions. Morton order is monotone in every
// coordinate, so the codes of a box's corners bound the codes of all cells in
// the box.
package zm

import (
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/keyspace"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/morton"
	"github.com/hupe1980/learnedbench/internal/pgm"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the ZM index.
type Options struct {
	// Resolution is the number of cells per dimension. Zero picks floor(N^(1/D)).
	// It is capped so that codes stay exact as float64.
	Resolution int `yaml:"resolution"`

	// Epsilon is the error bound of the segment model.
	Epsilon int `yaml:"epsilon"`
}

// DefaultOptions contains the default configuration options for the ZM index.
var DefaultOptions = Options{
	Resolution: 0,
	Epsilon:    pgm.DefaultEpsilon,
}

// Index is an immutable ZM index.
type Index struct {
	opts   Options
	dim    int
	bits   int
	mbr    geom.Box
	scale  []float64
	points []geom.Point
	keys   *keyspace.Space
}

// New builds a ZM index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.Resolution < 0 || opts.Epsilon < 0 {
		return nil, fmt.Errorf("%w: resolution=%d, epsilon=%d", index.ErrInvalidOption, opts.Resolution, opts.Epsilon)
	}

	n := len(points)
	if opts.Resolution == 0 {
		opts.Resolution = max(1, int(math.Floor(math.Pow(float64(n), 1/float64(dim)))))
	}
	opts.Resolution = min(opts.Resolution, morton.MaxResolution(dim))

	ix := &Index{
		opts:  opts,
		dim:   dim,
		bits:  morton.BitsFor(opts.Resolution),
		mbr:   geom.MBR(points),
		scale: make([]float64, dim),
	}
	for d := range ix.scale {
		if w := ix.mbr.Max[d] - ix.mbr.Min[d]; w > 0 {
			ix.scale[d] = float64(opts.Resolution) / w
		}
	}

	keys := make([]float64, n)
	cells := make([]uint32, dim)
	for i, p := range points {
		keys[i] = ix.code(p, cells)
	}

	sorted, sortedKeys := keyspace.Sort(points, keys)
	ks, err := keyspace.New(sortedKeys, opts.Epsilon)
	if err != nil {
		return nil, err
	}
	ix.points = sorted
	ix.keys = ks

	return ix, nil
}

// code returns the Morton code of the cell holding p as a float64. Coordinates
// outside the data bounds clamp to the border cells.
func (ix *Index) code(p geom.Point, cells []uint32) float64 {
	last := float64(ix.opts.Resolution - 1)
	for d, v := range p {
		c := math.Floor((v - ix.mbr.Min[d]) * ix.scale[d])
		cells[d] = uint32(math.Max(0, math.Min(c, last)))
	}
	return float64(morton.Encode(cells, ix.bits))
}

// Name returns the kind name.
func (*Index) Name() string { return "zm" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// Resolution returns the number of cells per dimension.
func (ix *Index) Resolution() int { return ix.opts.Resolution }

// Keys returns the sorted Morton codes. The slice must not be modified.
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
	cells := make([]uint32, ix.dim)
	lo := ix.code(box.Min, cells)
	hi := ix.code(box.Max, cells)

	from, to := ix.keys.Range(lo, hi)
	return geom.Filter(dst, ix.points[from:to], box)
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	var extent float64
	for d := range q {
		extent = math.Max(extent, ix.mbr.Max[d]-ix.mbr.Min[d])
	}
	r0 := math.Pow(float64(k)/float64(len(ix.points)), 1/float64(ix.dim)) * extent / 2

	return knn.Search(q, k, r0, knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.collect(geom.Around(q, r), dst), nil
	})
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	return index.PointsSize(len(ix.points), ix.dim) + ix.keys.SizeBytes() + ix.dim*24
}
