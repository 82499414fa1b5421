// Package fullscan provides a linear-scan index. It is the baseline every other
// index is compared with and the oracle recall is measured against.
package fullscan

import (
	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/queue"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Index stores points in input order and answers every query by scanning them.
type Index struct {
	dim    int
	points []geom.Point
}

// New builds a full scan index over points. The input slice is not retained.
func New(points []geom.Point) (*Index, error) {
	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	return &Index{dim: dim, points: index.ClonePoints(points)}, nil
}

// Name returns the kind name.
func (*Index) Name() string { return "fs" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// RangeQuery returns all points inside box in input order.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	return geom.Filter(nil, ix.points, box), nil
}

// KNNQuery returns the k points nearest to q. Ties go to the earlier point.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	top := queue.NewTopK(k)
	for i, p := range ix.points {
		top.Offer(i, geom.SquaredDist(p, q))
	}

	items := top.Items()
	result := make([]geom.Point, len(items))
	for i, it := range items {
		result[i] = ix.points[it.Pos]
	}
	return result, nil
}

// SizeBytes returns the memory held by the points.
func (ix *Index) SizeBytes() int {
	return index.PointsSize(len(ix.points), ix.dim)
}
