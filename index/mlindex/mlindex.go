// Package mlindex implements a cluster-distance learned index.
//
// Points are clustered with k-means. A point's key is the running sum of the
// radii of all preceding clusters plus its distance to its own center, which
// lays the clusters out as consecutive key bands. Range and ball queries turn
// into one key interval per intersecting cluster.
package mlindex

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/candidate"
	"github.com/hupe1980/learnedbench/internal/keyspace"
	"github.com/hupe1980/learnedbench/internal/kmeans"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/pgm"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// ballSlack absorbs rounding in the triangle inequality of ball lookups.
const ballSlack = 1e-9

// Options contains configuration options for the ML-Index.
type Options struct {
	// Partitions is the number of k-means clusters. It is clamped to N.
	Partitions int `yaml:"partitions"`

	// Epsilon is the error bound of the segment model.
	Epsilon int `yaml:"epsilon"`

	// Seed seeds the k-means initialisation.
	Seed int64 `yaml:"seed"`

	// MaxIter caps the Lloyd iterations.
	MaxIter int `yaml:"max_iter"`
}

// DefaultOptions contains the default configuration options for the ML-Index.
var DefaultOptions = Options{
	Partitions: 10,
	Epsilon:    pgm.DefaultEpsilon,
	Seed:       0,
	MaxIter:    100,
}

// Index is an immutable ML-Index.
type Index struct {
	opts    Options
	dim     int
	centers []geom.Point
	radius  []float64
	offset  []float64
	mbr     geom.Box
	points  []geom.Point
	keys    *keyspace.Space
}

// New builds an ML-Index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	return NewWithContext(context.Background(), points, optFns...)
}

// NewWithContext is New with cancellation of the k-means training.
func NewWithContext(ctx context.Context, points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.Partitions < 1 || opts.Epsilon < 0 || opts.MaxIter < 1 {
		return nil, fmt.Errorf("%w: partitions=%d, epsilon=%d, max iter=%d", index.ErrInvalidOption, opts.Partitions, opts.Epsilon, opts.MaxIter)
	}
	opts.Partitions = min(opts.Partitions, len(points))

	res, err := kmeans.Train(ctx, points, opts.Partitions, opts.Seed, opts.MaxIter)
	if err != nil {
		return nil, fmt.Errorf("mlindex: clustering: %w", err)
	}

	ix := &Index{
		opts:    opts,
		dim:     dim,
		centers: res.Centers,
		radius:  make([]float64, opts.Partitions),
		offset:  make([]float64, opts.Partitions),
		mbr:     geom.MBR(points),
	}

	dists := make([]float64, len(points))
	for i, p := range points {
		c := res.Assign[i]
		dists[i] = geom.Dist(p, ix.centers[c])
		ix.radius[c] = math.Max(ix.radius[c], dists[i])
	}
	for c := 1; c < len(ix.offset); c++ {
		ix.offset[c] = ix.offset[c-1] + ix.radius[c-1]
	}

	keys := make([]float64, len(points))
	for i := range points {
		keys[i] = ix.offset[res.Assign[i]] + dists[i]
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

// Name returns the kind name.
func (*Index) Name() string { return "mli" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// Centers returns the cluster centers. The slice must not be modified.
func (ix *Index) Centers() []geom.Point { return ix.centers }

// Radii returns the per-cluster radii. The slice must not be modified.
func (ix *Index) Radii() []float64 { return ix.radius }

// Keys returns the sorted keys. The slice must not be modified.
func (ix *Index) Keys() []float64 { return ix.keys.Keys() }

// Points returns the points in key order. The slice must not be modified.
func (ix *Index) Points() []geom.Point { return ix.points }

// Project returns the key of p: the offset of its nearest cluster plus its
// distance to that cluster's center.
func (ix *Index) Project(p geom.Point) float64 {
	c, d := kmeans.Nearest(p, ix.centers)
	return ix.offset[c] + d
}

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}

	set := candidate.Get()
	defer candidate.Put(set)

	for c, center := range ix.centers {
		lo := box.MinDist(center)
		if lo > ix.radius[c] {
			continue
		}
		hi := math.Min(ix.radius[c], box.MaxDist(center))
		from, to := ix.keys.Range(ix.offset[c]+lo, ix.offset[c]+hi)
		set.AddRange(from, to)
	}

	return set.Filter(nil, ix.points, box), nil
}

// ball appends every point within distance r of q. Candidates come from the
// key band [d(q,c)-r, d(q,c)+r] of every cluster whose ball meets the query.
func (ix *Index) ball(q geom.Point, r float64, dst []geom.Point) []geom.Point {
	set := candidate.Get()
	defer candidate.Put(set)

	for c, center := range ix.centers {
		dc := geom.Dist(q, center)
		slack := ballSlack * (dc + r + ix.radius[c])
		if dc-r-slack > ix.radius[c] {
			continue
		}
		lo := math.Max(0, dc-r-slack)
		hi := math.Min(ix.radius[c], dc+r+slack)
		from, to := ix.keys.Range(ix.offset[c]+lo, ix.offset[c]+hi)
		set.AddRange(from, to)
	}

	limit := r * r * (1 + ballSlack)
	set.ForEach(func(pos int) bool {
		if p := ix.points[pos]; geom.SquaredDist(p, q) <= limit {
			dst = append(dst, p)
		}
		return true
	})
	return dst
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	c, _ := kmeans.Nearest(q, ix.centers)
	frac := float64(ix.opts.Partitions) * float64(k) / float64(len(ix.points))
	r0 := ix.radius[c] * math.Pow(frac, 1/float64(ix.dim))

	return knn.Search(q, k, r0, knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.ball(q, r, dst), nil
	})
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	size := index.PointsSize(len(ix.points), ix.dim) + ix.keys.SizeBytes()
	size += len(ix.centers) * (ix.dim*8 + 24 + 16)
	return size
}
