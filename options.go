package learnedbench

import (
	"log/slog"
)

type options struct {
	indexOptions     IndexOptions
	workers          int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Build.
type Option func(*options)

// WithIndexOptions adjusts the per-kind options. Each fn sees the options
// already set by earlier calls, starting from DefaultIndexOptions.
//
// Example:
//
//	idx, _ := learnedbench.Build(ctx, learnedbench.KindZM, points,
//	    learnedbench.WithIndexOptions(func(o *learnedbench.IndexOptions) {
//	        o.ZM.Resolution = 1024
//	    }),
//	)
func WithIndexOptions(fns ...func(*IndexOptions)) Option {
	return func(o *options) {
		for _, fn := range fns {
			fn(&o.indexOptions)
		}
	}
}

// WithWorkers sets the build parallelism for kinds that train models
// concurrently. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &learnedbench.BasicMetricsCollector{}
//	idx, _ := learnedbench.Build(ctx, learnedbench.KindLISA, points, learnedbench.WithMetricsCollector(metrics))
//	// ... query idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Range queries: %d, Avg latency: %dns\n", stats.RangeCount, stats.RangeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := learnedbench.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	idx, _ := learnedbench.Build(ctx, kind, points, learnedbench.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger on stderr with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(nil, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		indexOptions:     DefaultIndexOptions(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.workers > 0 {
		o.indexOptions.Flood.Workers = o.workers
	}
	return o
}
