// Package ifindex implements an R-tree whose leaves are augmented with
// regression models.
//
// Points are packed into large leaves with the Sort-Tile-Recursive rule. Inside
// every leaf the points are ordered by one dimension and an ordinary least
// squares line predicts a point's rank from its value on that dimension, with a
// recorded worst-case error. The leaf bounding boxes are indexed by an R-tree.
// A range query scans only the predicted rank window of partially covered leaves.
package ifindex

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/rect"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the IF-Index.
type Options struct {
	// LeafNodeCap is the number of points per leaf.
	LeafNodeCap int `yaml:"leaf_node_cap"`

	// SortDim is the dimension each leaf is ordered and regressed on.
	SortDim int `yaml:"sort_dim"`

	// MinChildren and MaxChildren size the nodes of the leaf directory.
	MinChildren int `yaml:"min_children"`
	MaxChildren int `yaml:"max_children"`
}

// DefaultOptions contains the default configuration options for the IF-Index.
var DefaultOptions = Options{
	LeafNodeCap: 2000,
	SortDim:     0,
	MinChildren: 16,
	MaxChildren: 32,
}

// leaf is a run of points ordered by the sort dimension together with its
// rank model.
type leaf struct {
	points    []geom.Point
	mbr       geom.Box
	rect      rtreego.Rect
	intercept float64
	slope     float64
	maxErr    int
}

// Bounds implements rtreego.Spatial.
func (l *leaf) Bounds() rtreego.Rect { return l.rect }

// predict returns the estimated rank of v clamped to the leaf.
func (l *leaf) predict(v float64) int {
	guess := l.intercept + l.slope*v
	switch {
	case math.IsNaN(guess) || guess < 0:
		return 0
	case guess > float64(len(l.points)-1):
		return len(l.points) - 1
	}
	return int(guess)
}

// window returns the inclusive rank interval that may hold values in [lo, hi].
func (l *leaf) window(lo, hi float64) (int, int) {
	from := max(0, l.predict(lo)-l.maxErr)
	to := min(len(l.points)-1, l.predict(hi)+l.maxErr)
	return from, to
}

// Index is an immutable IF-Index.
type Index struct {
	opts   Options
	dim    int
	count  int
	mbr    geom.Box
	leaves []*leaf
	dir    *rtreego.Rtree
}

// New builds an IF-Index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.LeafNodeCap < 1 || opts.SortDim < 0 || opts.SortDim >= dim || opts.MinChildren < 1 || opts.MaxChildren < 2*opts.MinChildren-1 {
		return nil, fmt.Errorf("%w: leaf cap=%d, sort dim=%d of %d, children=[%d, %d]",
			index.ErrInvalidOption, opts.LeafNodeCap, opts.SortDim, dim, opts.MinChildren, opts.MaxChildren)
	}

	ix := &Index{
		opts:  opts,
		dim:   dim,
		count: len(points),
		mbr:   geom.MBR(points),
	}

	stored := index.ClonePoints(points)
	groups := strPack(stored, opts.LeafNodeCap)
	objs := make([]rtreego.Spatial, 0, len(groups))
	for _, ids := range groups {
		l, err := newLeaf(stored, ids, opts.SortDim)
		if err != nil {
			return nil, err
		}
		ix.leaves = append(ix.leaves, l)
		objs = append(objs, l)
	}
	ix.dir = rtreego.NewTree(dim, opts.MinChildren, opts.MaxChildren, objs...)

	return ix, nil
}

func newLeaf(points []geom.Point, ids []int, sortDim int) (*leaf, error) {
	slices.SortStableFunc(ids, func(a, b int) int { return cmp.Compare(points[a][sortDim], points[b][sortDim]) })

	l := &leaf{points: make([]geom.Point, len(ids))}
	xs := make([]float64, len(ids))
	ys := make([]float64, len(ids))
	for i, id := range ids {
		l.points[i] = points[id]
		xs[i] = points[id][sortDim]
		ys[i] = float64(i)
	}
	l.mbr = geom.MBR(l.points)

	if len(ids) > 1 && xs[0] < xs[len(xs)-1] {
		l.intercept, l.slope = stat.LinearRegression(xs, ys, nil, false)
	}
	if !(l.slope >= 0) || math.IsInf(l.slope, 0) {
		l.intercept, l.slope = 0, 0
	}
	for i, x := range xs {
		if err := abs(l.predict(x) - i); err > l.maxErr {
			l.maxErr = err
		}
	}

	r, err := rect.FromBox(l.mbr)
	if err != nil {
		return nil, err
	}
	l.rect = r
	return l, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Name returns the kind name.
func (*Index) Name() string { return "ifi" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return ix.count }

// Leaves returns the number of leaves.
func (ix *Index) Leaves() int { return len(ix.leaves) }

// MaxError returns the largest rank error of any leaf model.
func (ix *Index) MaxError() int {
	var e int
	for _, l := range ix.leaves {
		e = max(e, l.maxErr)
	}
	return e
}

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	return ix.collect(box, nil)
}

func (ix *Index) collect(box geom.Box, dst []geom.Point) ([]geom.Point, error) {
	r, err := rect.FromBox(box)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidBox, err)
	}

	s := ix.opts.SortDim
	for _, obj := range ix.dir.SearchIntersect(r) {
		l := obj.(*leaf)
		if box.Covers(l.mbr) {
			dst = append(dst, l.points...)
			continue
		}
		if !box.Intersects(l.mbr) {
			continue
		}
		from, to := l.window(box.Min[s], box.Max[s])
		if from > to {
			continue
		}
		dst = geom.Filter(dst, l.points[from:to+1], box)
	}
	return dst, nil
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, ix.count); err != nil {
		return nil, err
	}

	var r0 float64
	if near := ix.dir.NearestNeighbors(1, rtreego.Point(q)); len(near) > 0 && near[0] != nil {
		l := near[0].(*leaf)
		var extent float64
		for d := range q {
			extent = math.Max(extent, l.mbr.Max[d]-l.mbr.Min[d])
		}
		r0 = l.mbr.MinDist(q) + math.Pow(float64(k)/float64(len(l.points)), 1/float64(ix.dim))*extent/2
	}

	return knn.Search(q, k, r0, knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.collect(geom.Around(q, r), dst)
	})
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	size := index.PointsSize(ix.count, ix.dim)
	size += len(ix.leaves) * (4*ix.dim*8 + 24 + 24)
	// Directory nodes hold one entry per child.
	nodes := (len(ix.leaves) + ix.opts.MinChildren - 1) / ix.opts.MinChildren
	size += nodes * (ix.opts.MaxChildren*16 + 2*ix.dim*8)
	return size
}
