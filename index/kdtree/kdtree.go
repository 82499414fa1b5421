// Package kdtree provides a kd-tree baseline backed by gonum's spatial/kdtree.
package kdtree

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Index is a kd-tree over points.
type Index struct {
	dim   int
	count int
	tree  *kdtree.Tree
}

// New builds a kd-tree over points. The input slice is not retained.
func New(points []geom.Point) (*Index, error) {
	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}

	stored := index.ClonePoints(points)
	pts := make(kdtree.Points, len(stored))
	for i, p := range stored {
		pts[i] = kdtree.Point(p)
	}

	return &Index{
		dim:   dim,
		count: len(points),
		tree:  kdtree.New(pts, false),
	}, nil
}

// Name returns the kind name.
func (*Index) Name() string { return "kdtree" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return ix.count }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}

	// The traversal skips a subtree when the bound equals the splitting value,
	// so the bound is widened by one ulp and the answer filtered exactly.
	lo := make(kdtree.Point, ix.dim)
	hi := make(kdtree.Point, ix.dim)
	for d := range lo {
		lo[d] = math.Nextafter(box.Min[d], math.Inf(-1))
		hi[d] = math.Nextafter(box.Max[d], math.Inf(1))
	}

	var result []geom.Point
	ix.tree.DoBounded(&kdtree.Bounding{Min: lo, Max: hi}, func(c kdtree.Comparable, _ *kdtree.Bounding, _ int) bool {
		if p := geom.Point(c.(kdtree.Point)); box.Contains(p) {
			result = append(result, p)
		}
		return false
	})
	return result, nil
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, ix.count); err != nil {
		return nil, err
	}

	keeper := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keeper, kdtree.Point(q))

	result := make([]geom.Point, 0, k)
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		result = append(result, geom.Point(c.Comparable.(kdtree.Point)))
	}
	if len(result) < k {
		return nil, index.ErrSearchExhausted
	}

	slices.SortStableFunc(result, func(a, b geom.Point) int {
		return cmp.Compare(geom.SquaredDist(a, q), geom.SquaredDist(b, q))
	})
	return result, nil
}

// SizeBytes estimates the memory held by the tree: the points plus one node
// per point.
func (ix *Index) SizeBytes() int {
	return index.PointsSize(ix.count, ix.dim) + ix.count*64
}
