package bench

import (
	"context"
	"fmt"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/geom"
)

// Suite builds each configured kind in turn and runs the workload on it.
type Suite struct {
	cfg    Config
	kinds  []learnedbench.Kind
	runner *Runner
	logger *learnedbench.Logger
	opts   []learnedbench.Option
}

// NewSuite creates a Suite from cfg. buildOpts are passed to every
// learnedbench.Build call after the config's index options.
func NewSuite(cfg Config, logger *learnedbench.Logger, buildOpts ...learnedbench.Option) (*Suite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kinds, _ := cfg.ParseKinds()
	limit, _ := cfg.MemoryLimitBytes()
	if logger == nil {
		logger = learnedbench.NoopLogger()
	}

	opts := append([]learnedbench.Option{
		learnedbench.WithIndexOptions(func(o *learnedbench.IndexOptions) { *o = cfg.Index }),
		learnedbench.WithWorkers(cfg.Workers),
		learnedbench.WithLogger(logger),
	}, buildOpts...)

	return &Suite{
		cfg:   cfg,
		kinds: kinds,
		runner: NewRunner(func(o *RunnerOptions) {
			o.Readers = cfg.Readers
			o.QueriesPerSec = cfg.QueriesPerSec
			o.MemoryLimitBytes = limit
			o.Verify = cfg.Verify
		}),
		logger: logger,
		opts:   opts,
	}, nil
}

// Run samples the workload over points and benchmarks every kind. Indexes are
// built one at a time and dropped before the next build.
func (s *Suite) Run(ctx context.Context, points []geom.Point) ([]*Result, error) {
	w, err := NewWorkload(points, s.cfg.Workload)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "workload sampled",
		"queries", w.Len(),
		"points", len(points),
		"readers", s.runner.Readers(),
		"memory_limit", s.runner.MemoryLimit(),
	)

	results := make([]*Result, 0, len(s.kinds))
	for _, kind := range s.kinds {
		res, err := s.runKind(ctx, kind, points, w)
		if err != nil {
			return results, fmt.Errorf("bench: %s: %w", kind, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Suite) runKind(ctx context.Context, kind learnedbench.Kind, points []geom.Point, w Workload) (*Result, error) {
	idx, err := learnedbench.Build(ctx, kind, points, s.opts...)
	if err != nil {
		return nil, err
	}

	release, err := s.runner.Reserve(idx)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.runner.Run(ctx, idx, w)
	if err != nil {
		return nil, err
	}

	s.logger.WithKind(kind).InfoContext(ctx, "kind finished",
		"avg_range", idx.AvgRangeTime(),
		"avg_knn", idx.AvgKNNTime(),
	)
	return res, nil
}
