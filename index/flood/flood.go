// Package flood implements a bucketed-CDF learned index.
//
// One dimension is reserved as the sort dimension. Every other dimension is
// divided into K buckets by rank, using a segment model over that dimension's
// sorted values as its CDF. Points are grouped into the K^(D-1) resulting cells;
// inside each cell they are sorted by the sort dimension and a local segment
// model over those values narrows a range query to a short scan.
package flood

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/keyspace"
	"github.com/hupe1980/learnedbench/internal/knn"
	"github.com/hupe1980/learnedbench/internal/partition"
	"github.com/hupe1980/learnedbench/internal/pgm"
)

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Options contains configuration options for the Flood index.
type Options struct {
	// SortDim is the dimension used for ordering points inside a cell.
	SortDim int `yaml:"sort_dim"`

	// K is the number of buckets on every non-sort dimension. Zero picks the
	// smallest K with K^(D-1) >= N/1024.
	K int `yaml:"k"`

	// Epsilon is the error bound of every segment model.
	Epsilon int `yaml:"epsilon"`

	// MaxRanges caps the cell id ranges one query may fold into.
	MaxRanges int `yaml:"max_ranges"`

	// Workers bounds the goroutines training cell models. 1 builds sequentially.
	Workers int `yaml:"workers"`
}

// DefaultOptions contains the default configuration options for the Flood index.
var DefaultOptions = Options{
	SortDim:   0,
	K:         0,
	Epsilon:   pgm.DefaultEpsilon,
	MaxRanges: 4096,
	Workers:   1,
}

// cell is the contiguous slice [start, start+len(local.Keys())) of the point
// array together with its local model over the sort dimension.
type cell struct {
	start int
	local *keyspace.Space
}

// Index is an immutable Flood index.
type Index struct {
	opts    Options
	dim     int
	gridDim []int // non-sort dimensions in layout order
	cdf     []*keyspace.Space
	bounds  []partition.Cuts
	layout  partition.Layout
	cells   []cell
	points  []geom.Point
	mbr     geom.Box
}

// New builds a Flood index over points. The input slice is not retained.
func New(points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	return NewWithContext(context.Background(), points, optFns...)
}

// NewWithContext is New with cancellation of the parallel cell training.
func NewWithContext(ctx context.Context, points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dim, err := index.ValidatePoints(points)
	if err != nil {
		return nil, err
	}
	if opts.SortDim < 0 || opts.SortDim >= dim || opts.K < 0 || opts.Epsilon < 0 {
		return nil, fmt.Errorf("%w: sort dim %d of %d, K=%d, epsilon=%d", index.ErrInvalidOption, opts.SortDim, dim, opts.K, opts.Epsilon)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	n := len(points)
	gridDim := make([]int, 0, dim-1)
	for d := 0; d < dim; d++ {
		if d != opts.SortDim {
			gridDim = append(gridDim, d)
		}
	}
	if opts.K == 0 {
		opts.K = 1
		if len(gridDim) > 0 {
			opts.K = partition.GridK(n, len(gridDim))
		}
	}
	opts.K = min(opts.K, n)

	layout, err := partition.NewLayout(opts.K, len(gridDim))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidOption, err)
	}

	ix := &Index{
		opts:    opts,
		dim:     dim,
		gridDim: gridDim,
		cdf:     make([]*keyspace.Space, len(gridDim)),
		bounds:  make([]partition.Cuts, len(gridDim)),
		layout:  layout,
		mbr:     geom.MBR(points),
	}

	for i, d := range gridDim {
		values := make([]float64, n)
		for j, p := range points {
			values[j] = p[d]
		}
		sort.Float64s(values)
		s, err := keyspace.New(values, opts.Epsilon)
		if err != nil {
			return nil, err
		}
		ix.cdf[i] = s
		ix.bounds[i] = rankBounds(values, opts.K)
	}

	// Group point positions by cell.
	members := make([][]int, layout.Cells())
	idx := make([]int, len(gridDim))
	for j, p := range points {
		c := ix.cellOf(p, idx)
		members[c] = append(members[c], j)
	}

	ix.cells = make([]cell, layout.Cells())
	ordered := make([]geom.Point, 0, n)
	for c, m := range members {
		slices.SortStableFunc(m, func(a, b int) int {
			return cmp.Compare(points[a][opts.SortDim], points[b][opts.SortDim])
		})
		ix.cells[c].start = len(ordered)
		for _, j := range m {
			ordered = append(ordered, points[j])
		}
	}
	ix.points = index.ClonePoints(ordered)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for c := range ix.cells {
		size := len(members[c])
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := ix.cells[c].start
			keys := make([]float64, size)
			for i, p := range ix.points[start : start+size] {
				keys[i] = p[opts.SortDim]
			}
			s, err := keyspace.New(keys, opts.Epsilon)
			if err != nil {
				return err
			}
			ix.cells[c].local = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ix, nil
}

// rankBounds returns the value at which each rank bucket starts, for use as an
// initial kNN radius.
func rankBounds(sorted []float64, k int) partition.Cuts {
	n := len(sorted)
	c := make(partition.Cuts, k+1)
	c[0] = sorted[0]
	for j := 1; j < k; j++ {
		r := (j*n + k - 1) / k
		c[j] = sorted[min(r, n-1)]
	}
	c[k] = sorted[n-1]
	return c
}

// bucket maps a value on grid dimension i to its rank bucket. It is monotone
// in v, which keeps every point of a box inside the folded cell ranges.
func (ix *Index) bucket(i int, v float64) int {
	n := ix.cdf[i].Len()
	rank := ix.cdf[i].LowerBound(v)
	return min(rank*ix.opts.K/n, ix.opts.K-1)
}

func (ix *Index) cellOf(p geom.Point, idx []int) int {
	for i, d := range ix.gridDim {
		idx[i] = ix.bucket(i, p[d])
	}
	return ix.layout.ID(idx)
}

// Name returns the kind name.
func (*Index) Name() string { return "flood" }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return len(ix.points) }

// Cells returns the number of grid cells.
func (ix *Index) Cells() int { return len(ix.cells) }

// Points returns the points in cell order. The slice must not be modified.
func (ix *Index) Points() []geom.Point { return ix.points }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	if err := index.ValidateBox(box, ix.dim); err != nil {
		return nil, err
	}
	return ix.collect(box, nil), nil
}

func (ix *Index) collect(box geom.Box, dst []geom.Point) []geom.Point {
	lo := make([]int, len(ix.gridDim))
	hi := make([]int, len(ix.gridDim))
	for i, d := range ix.gridDim {
		lo[i] = ix.bucket(i, box.Min[d])
		hi[i] = ix.bucket(i, box.Max[d])
	}

	s := ix.opts.SortDim
	for _, r := range ix.layout.Fold(lo, hi, ix.opts.MaxRanges) {
		for c := r.Lo; c <= r.Hi; c++ {
			cl := ix.cells[c]
			if cl.local.Len() == 0 {
				continue
			}
			from, to := cl.local.Range(box.Min[s], box.Max[s])
			dst = geom.Filter(dst, ix.points[cl.start+from:cl.start+to], box)
		}
	}
	return dst
}

// KNNQuery returns the k points nearest to q.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	if err := index.ValidateKNN(q, k, ix.dim, len(ix.points)); err != nil {
		return nil, err
	}

	return knn.Search(q, k, ix.initialRadius(q), knn.MaxRadius(q, ix.mbr), func(r float64, dst []geom.Point) ([]geom.Point, error) {
		return ix.collect(geom.Around(q, r), dst), nil
	})
}

// initialRadius is the distance from q to the nearest face of its cell, falling
// back to a fraction of the narrowest data extent.
func (ix *Index) initialRadius(q geom.Point) float64 {
	r := math.Inf(1)
	for i, d := range ix.gridDim {
		b := ix.bounds[i]
		c := ix.bucket(i, q[d])
		r = math.Min(r, q[d]-b.Lower(c))
		r = math.Min(r, b.Upper(c)-q[d])
	}
	if r > 0 && !math.IsInf(r, 1) {
		return r
	}

	w := math.Inf(1)
	for d := range q {
		if e := ix.mbr.Max[d] - ix.mbr.Min[d]; e > 0 {
			w = math.Min(w, e)
		}
	}
	if math.IsInf(w, 1) {
		return 0
	}
	return w / (2 * float64(ix.opts.K))
}

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int {
	size := index.PointsSize(len(ix.points), ix.dim)
	for i := range ix.cdf {
		size += ix.cdf[i].SizeBytes() + len(ix.bounds[i])*8
	}
	for _, c := range ix.cells {
		size += 8 + c.local.Model().SizeBytes()
	}
	return size
}
