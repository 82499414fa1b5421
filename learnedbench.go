package learnedbench

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/index/flood"
	"github.com/hupe1980/learnedbench/index/fullscan"
	"github.com/hupe1980/learnedbench/index/grid"
	"github.com/hupe1980/learnedbench/index/ifindex"
	"github.com/hupe1980/learnedbench/index/kdtree"
	"github.com/hupe1980/learnedbench/index/lisa"
	"github.com/hupe1980/learnedbench/index/mlindex"
	"github.com/hupe1980/learnedbench/index/rtree"
	"github.com/hupe1980/learnedbench/index/zm"
)

// Kind names an index variant.
type Kind string

// Registered index kinds.
const (
	KindLISA       Kind = "lisa"
	KindFlood      Kind = "flood"
	KindZM         Kind = "zm"
	KindMLIndex    Kind = "mli"
	KindIFIndex    Kind = "ifi"
	KindFullScan   Kind = "fs"
	KindUniform    Kind = "ug"
	KindEqualDepth Kind = "edg"
	KindRTree      Kind = "rtree"
	KindKDTree     Kind = "kdtree"
)

// Learned reports whether k is one of the learned variants.
func (k Kind) Learned() bool {
	switch k {
	case KindLISA, KindFlood, KindZM, KindMLIndex, KindIFIndex:
		return true
	}
	return false
}

// IndexOptions holds the options of every kind. Build reads only the field of
// the requested kind.
type IndexOptions struct {
	LISA    lisa.Options    `yaml:"lisa"`
	Flood   flood.Options   `yaml:"flood"`
	ZM      zm.Options      `yaml:"zm"`
	MLIndex mlindex.Options `yaml:"mli"`
	IFIndex ifindex.Options `yaml:"ifi"`
	Grid    grid.Options    `yaml:"grid"`
	RTree   rtree.Options   `yaml:"rtree"`
}

// DefaultIndexOptions returns every kind's DefaultOptions.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		LISA:    lisa.DefaultOptions,
		Flood:   flood.DefaultOptions,
		ZM:      zm.DefaultOptions,
		MLIndex: mlindex.DefaultOptions,
		IFIndex: ifindex.DefaultOptions,
		Grid:    grid.DefaultOptions,
		RTree:   rtree.DefaultOptions,
	}
}

type builder func(ctx context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error)

var registry = map[Kind]builder{
	KindLISA: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return lisa.New(points, func(opts *lisa.Options) { *opts = o.LISA })
	},
	KindFlood: func(ctx context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return flood.NewWithContext(ctx, points, func(opts *flood.Options) { *opts = o.Flood })
	},
	KindZM: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return zm.New(points, func(opts *zm.Options) { *opts = o.ZM })
	},
	KindMLIndex: func(ctx context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return mlindex.NewWithContext(ctx, points, func(opts *mlindex.Options) { *opts = o.MLIndex })
	},
	KindIFIndex: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return ifindex.New(points, func(opts *ifindex.Options) { *opts = o.IFIndex })
	},
	KindFullScan: func(_ context.Context, points []geom.Point, _ IndexOptions) (index.SpatialIndex, error) {
		return fullscan.New(points)
	},
	KindUniform: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return grid.New(points, func(opts *grid.Options) {
			*opts = o.Grid
			opts.EqualDepth = false
		})
	},
	KindEqualDepth: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return grid.New(points, func(opts *grid.Options) {
			*opts = o.Grid
			opts.EqualDepth = true
		})
	},
	KindRTree: func(_ context.Context, points []geom.Point, o IndexOptions) (index.SpatialIndex, error) {
		return rtree.New(points, func(opts *rtree.Options) { *opts = o.RTree })
	},
	KindKDTree: func(_ context.Context, points []geom.Point, _ IndexOptions) (index.SpatialIndex, error) {
		return kdtree.New(points)
	},
}

// kindOrder lists the kinds learned variants first, as the original testbed
// reports them.
var kindOrder = []Kind{
	KindLISA, KindFlood, KindZM, KindMLIndex, KindIFIndex,
	KindFullScan, KindUniform, KindEqualDepth, KindRTree, KindKDTree,
}

// Kinds returns the registered kinds.
func Kinds() []Kind {
	return slices.Clone(kindOrder)
}

// ParseKind returns the kind named s, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Compile time check to ensure Index satisfies the SpatialIndex interface.
var _ index.SpatialIndex = (*Index)(nil)

// Index is a built index of one kind. It times, logs and reports every query.
// It is safe for concurrent use.
type Index struct {
	kind      Kind
	inner     index.SpatialIndex
	buildTime time.Duration
	logger    *Logger
	metrics   MetricsCollector

	rangeNanos atomic.Int64
	rangeCount atomic.Int64
	knnNanos   atomic.Int64
	knnCount   atomic.Int64
}

// Build builds an index of the given kind over points. The input slice is not
// retained. ctx cancels long builds of kinds that check it; every other kind
// checks it once before starting.
func Build(ctx context.Context, kind Kind, points []geom.Point, optFns ...Option) (*Index, error) {
	build, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := applyOptions(optFns)
	logger := o.logger.WithKind(kind)
	if len(points) > 0 {
		logger = logger.WithDimension(len(points[0]))
	}

	start := time.Now()
	inner, err := build(ctx, points, o.indexOptions)
	elapsed := time.Since(start)

	o.metricsCollector.RecordBuild(kind, len(points), elapsed, err)
	if err != nil {
		logger.LogBuild(ctx, len(points), elapsed, 0, err)
		return nil, translateError(err)
	}
	logger.LogBuild(ctx, len(points), elapsed, inner.SizeBytes(), nil)

	return &Index{
		kind:      kind,
		inner:     inner,
		buildTime: elapsed,
		logger:    logger,
		metrics:   o.metricsCollector,
	}, nil
}

// Kind returns the index kind.
func (ix *Index) Kind() Kind { return ix.kind }

// Name returns the kind name.
func (ix *Index) Name() string { return ix.inner.Name() }

// Dimension returns the number of coordinates per point.
func (ix *Index) Dimension() int { return ix.inner.Dimension() }

// Count returns the number of indexed points.
func (ix *Index) Count() int { return ix.inner.Count() }

// SizeBytes returns the memory held by the index.
func (ix *Index) SizeBytes() int { return ix.inner.SizeBytes() }

// Unwrap returns the variant index, e.g. *lisa.Index.
func (ix *Index) Unwrap() index.SpatialIndex { return ix.inner }

// RangeQuery returns all points inside box.
func (ix *Index) RangeQuery(box geom.Box) ([]geom.Point, error) {
	start := time.Now()
	res, err := ix.inner.RangeQuery(box)
	elapsed := time.Since(start)

	ix.rangeNanos.Add(elapsed.Nanoseconds())
	ix.rangeCount.Add(1)
	ix.metrics.RecordRange(ix.kind, len(res), elapsed, err)
	ix.logger.LogRange(context.Background(), len(res), elapsed, err)

	return res, translateError(err)
}

// KNNQuery returns the k points nearest to q, nearest first.
func (ix *Index) KNNQuery(q geom.Point, k int) ([]geom.Point, error) {
	start := time.Now()
	res, err := ix.inner.KNNQuery(q, k)
	elapsed := time.Since(start)

	ix.knnNanos.Add(elapsed.Nanoseconds())
	ix.knnCount.Add(1)
	ix.metrics.RecordKNN(ix.kind, k, elapsed, err)
	ix.logger.LogKNN(context.Background(), k, elapsed, err)

	return res, translateError(err)
}

// BuildTime returns how long Build took.
func (ix *Index) BuildTime() time.Duration { return ix.buildTime }

// RangeTime returns the total time spent in RangeQuery since the last reset.
func (ix *Index) RangeTime() time.Duration { return time.Duration(ix.rangeNanos.Load()) }

// KNNTime returns the total time spent in KNNQuery since the last reset.
func (ix *Index) KNNTime() time.Duration { return time.Duration(ix.knnNanos.Load()) }

// RangeCount returns the number of range queries since the last reset.
func (ix *Index) RangeCount() int64 { return ix.rangeCount.Load() }

// KNNCount returns the number of kNN queries since the last reset.
func (ix *Index) KNNCount() int64 { return ix.knnCount.Load() }

// AvgRangeTime returns the mean range query latency, or 0 before any query.
func (ix *Index) AvgRangeTime() time.Duration {
	return time.Duration(avg(ix.rangeNanos.Load(), ix.rangeCount.Load()))
}

// AvgKNNTime returns the mean kNN query latency, or 0 before any query.
func (ix *Index) AvgKNNTime() time.Duration {
	return time.Duration(avg(ix.knnNanos.Load(), ix.knnCount.Load()))
}

// ResetTimer clears the query timers and counters. BuildTime is kept.
func (ix *Index) ResetTimer() {
	ix.rangeNanos.Store(0)
	ix.rangeCount.Store(0)
	ix.knnNanos.Store(0)
	ix.knnCount.Store(0)
}
