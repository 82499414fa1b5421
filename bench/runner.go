package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/internal/resource"
)

// ErrMemoryLimitExceeded is returned by Reserve when an index does not fit.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

// recallSlack absorbs rounding when comparing kNN distances to the truth.
const recallSlack = 1e-9

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Readers is the number of concurrent query goroutines.
	Readers int
	// QueriesPerSec caps the query rate. Zero means unlimited.
	QueriesPerSec float64
	// MemoryLimitBytes caps the size of the indexes alive at once.
	MemoryLimitBytes int64
	// Verify computes recall against the workload's ground truth.
	Verify bool
}

// Runner issues a workload against an index.
type Runner struct {
	opts RunnerOptions
	ctrl *resource.Controller
}

// NewRunner creates a Runner. The defaults are one reader, no rate limit and
// verification on.
func NewRunner(optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{Readers: 1, Verify: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Readers <= 0 {
		opts.Readers = 1
	}

	return &Runner{
		opts: opts,
		ctrl: resource.NewController(resource.Config{
			MemoryLimitBytes: opts.MemoryLimitBytes,
			MaxReaders:       int64(opts.Readers),
			QueriesPerSec:    opts.QueriesPerSec,
		}),
	}
}

// Reserve accounts idx against the memory limit. The returned func releases it.
func (r *Runner) Reserve(idx *learnedbench.Index) (func(), error) {
	n := int64(idx.SizeBytes())
	if err := r.ctrl.AcquireMemory(n); err != nil {
		return nil, fmt.Errorf("%w: index holds %d bytes, %d of %d in use", err, n, r.ctrl.MemoryUsage(), r.ctrl.MemoryLimit())
	}
	return func() { r.ctrl.ReleaseMemory(n) }, nil
}

// MemoryUsage returns the bytes currently reserved.
func (r *Runner) MemoryUsage() int64 { return r.ctrl.MemoryUsage() }

// MemoryLimit returns the memory limit in bytes, zero when unlimited.
func (r *Runner) MemoryLimit() int64 { return r.ctrl.MemoryLimit() }

// Readers returns the number of concurrent query slots.
func (r *Runner) Readers() int { return r.ctrl.MaxReaders() }

// Run executes w against idx.
func (r *Runner) Run(ctx context.Context, idx *learnedbench.Index, w Workload) (*Result, error) {
	res := &Result{
		Kind:      idx.Kind(),
		Count:     idx.Count(),
		Dimension: idx.Dimension(),
		SizeBytes: idx.SizeBytes(),
		BuildTime: idx.BuildTime(),
		Verified:  r.opts.Verify,
	}

	for _, g := range w.Ranges {
		gr, err := r.runRange(ctx, idx, g)
		if err != nil {
			return nil, err
		}
		res.Ranges = append(res.Ranges, gr)
	}

	for _, g := range w.KNN {
		gr, err := r.runKNN(ctx, idx, g)
		if err != nil {
			return nil, err
		}
		res.KNN = append(res.KNN, gr)
	}

	return res, nil
}

func (r *Runner) runRange(ctx context.Context, idx *learnedbench.Index, g RangeGroup) (GroupResult, error) {
	out := newGroupResult(len(g.Queries))
	out.Selectivity = g.Selectivity

	err := r.fanOut(ctx, len(g.Queries), func(i int) error {
		q := g.Queries[i]

		start := time.Now()
		pts, err := idx.RangeQuery(q.Box)
		out.Latencies[i] = time.Since(start)
		if err != nil {
			return err
		}

		out.Results[i] = len(pts)
		if r.opts.Verify {
			out.Recalls[i] = rangeRecall(pts, q)
		}
		return nil
	})

	return out, err
}

func (r *Runner) runKNN(ctx context.Context, idx *learnedbench.Index, g KNNGroup) (GroupResult, error) {
	out := newGroupResult(len(g.Queries))
	out.K = g.K

	err := r.fanOut(ctx, len(g.Queries), func(i int) error {
		q := g.Queries[i]

		start := time.Now()
		pts, err := idx.KNNQuery(q.Point, g.K)
		out.Latencies[i] = time.Since(start)
		if err != nil {
			return err
		}

		out.Results[i] = len(pts)
		if r.opts.Verify {
			out.Recalls[i] = knnRecall(pts, q, g.K)
		}
		return nil
	})

	return out, err
}

// fanOut runs fn for every query index, bounded by the reader slots and the
// rate limit. Each fn writes only its own slot of the result slices.
func (r *Runner) fanOut(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		if err := r.ctrl.AcquireReader(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer r.ctrl.ReleaseReader()
			if err := r.ctrl.WaitQuery(gctx); err != nil {
				return err
			}
			return fn(i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func rangeRecall(got []geom.Point, q RangeQuery) float64 {
	if q.Expected == 0 {
		if len(got) == 0 {
			return 1
		}
		return 0
	}
	hits := 0
	for _, p := range got {
		if q.Box.Contains(p) {
			hits++
		}
	}
	return float64(min(hits, q.Expected)) / float64(q.Expected)
}

func knnRecall(got []geom.Point, q KNNQuery, k int) float64 {
	bound := q.KthDist*(1+recallSlack) + recallSlack
	hits := 0
	for _, p := range got {
		if geom.Dist(q.Point, p) <= bound {
			hits++
		}
	}
	return float64(min(hits, k)) / float64(k)
}
