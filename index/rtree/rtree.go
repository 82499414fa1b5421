// Package rtree provides an R-tree baseline backed by github.com/dhconnelly/rtreego.
package rtree

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/rect"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the R-tree.
type Options struct {
	MinChildren int `yaml:"min_children"`
	MaxChildren int `yaml:"max_children"`
}

// DefaultOptions contains the default configuration options for the R-tree.
var DefaultOptions = Options{
	MinChildren: 25,
	MaxChildren: 50,
}

type entry struct {
	p    geom.Point
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index is a bulk-loaded R-tree over points.
type Index struct {
	opts  Options
	dim   int
	count int
	tree  *rtreego.Rtree
}

// New bulk-loads an R-tree over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.MinChildren < 1 || opts.MaxChildren < 2*opts.MinChildren-1 {
		return nil, fmt.Errorf("%w: children=[%d, %d]", index.ErrInvalidOption, opts.MinChildren, opts.MaxChildren)
	}

	stored := index.ClonePoints(points)
	objs := make([]rtreego.Spatial, len(stored))
	for i, p := range stored {
		r, err := rect.FromPoint(p)
		if err != nil {
			return nil, err
		}
		objs[i] = &entry{p: p, rect: r}
	}

	return &Index{
		opts:  opts,
		dim:   dim,
		count: len(points),
		tree:  rtreego.NewTree(dim, opts.MinChildren, opts.MaxChildren, objs...),
	}, nil
}

// Name returns the kind name.
func (*Index) Name() string { return "rtree" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return ix.count }

// Depth returns the height of the tree.
func (ix *Index) Depth() int { return ix.tree.Depth() }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	r, err := rect.FromBox(box)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidBox, err)
	}

	var result []geom.Point
	for _, obj := range ix.tree.SearchIntersect(r) {
		if p := obj.(*entry).p; box.Contains(p) {
			result = append(result, p)
		}
	}
	return result, nil
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, ix.count); err != nil {
		return nil, err
	}

	result := make([]geom.Point, 0, k)
	for _, obj := range ix.tree.NearestNeighbors(k, rtreego.Point(q)) {
		if obj == nil {
			continue
		}
		result = append(result, obj.(*entry).p)
	}
	if len(result) < k {
		return nil, index.ErrSearchExhausted
	}

	// The tree ranks by distance to the padded rectangles.
	slices.SortStableFunc(result, func(a, b geom.Point) int {
		return cmp.Compare(geom.SquaredDist(a, q), geom.SquaredDist(b, q))
	})
	return result, nil
}

// SizeBytes estimates the memory held by the tree: one entry and its rectangle
// per point plus the inner nodes.
func (ix *Index) SizeBytes() int {
	size := index.PointsSize(ix.count, ix.dim)
	size += ix.count * (16 + 2*ix.dim*8 + 48)
	nodes := (ix.count + ix.opts.MinChildren - 1) / ix.opts.MinChildren
	size += nodes * (ix.opts.MaxChildren*16 + 2*ix.dim*8 + 48)
	return size
}
