package learnedbench

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// observability.PrometheusCollector is such an implementation.
type MetricsCollector interface {
	// RecordBuild is called after each index build. count is the number of
	// points, err is nil if successful.
	RecordBuild(kind Kind, count int, duration time.Duration, err error)

	// RecordRange is called after each range query with the number of results.
	RecordRange(kind Kind, results int, duration time.Duration, err error)

	// RecordKNN is called after each kNN query with the requested k.
	RecordKNN(kind Kind, k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(Kind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRange(Kind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordKNN(Kind, int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	RangeCount      atomic.Int64
	RangeErrors     atomic.Int64
	RangeResults    atomic.Int64
	RangeTotalNanos atomic.Int64
	KNNCount        atomic.Int64
	KNNErrors       atomic.Int64
	KNNTotalNanos   atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ Kind, _ int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRange(_ Kind, results int, duration time.Duration, err error) {
	b.RangeCount.Add(1)
	b.RangeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RangeErrors.Add(1)
		return
	}
	b.RangeResults.Add(int64(results))
}

// RecordKNN implements MetricsCollector.
func (b *BasicMetricsCollector) RecordKNN(_ Kind, _ int, duration time.Duration, err error) {
	b.KNNCount.Add(1)
	b.KNNTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.KNNErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		BuildAvgNanos: avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		RangeCount:    b.RangeCount.Load(),
		RangeErrors:   b.RangeErrors.Load(),
		RangeResults:  b.RangeResults.Load(),
		RangeAvgNanos: avg(b.RangeTotalNanos.Load(), b.RangeCount.Load()),
		KNNCount:      b.KNNCount.Load(),
		KNNErrors:     b.KNNErrors.Load(),
		KNNAvgNanos:   avg(b.KNNTotalNanos.Load(), b.KNNCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount    int64
	BuildErrors   int64
	BuildAvgNanos int64
	RangeCount    int64
	RangeErrors   int64
	RangeResults  int64
	RangeAvgNanos int64
	KNNCount      int64
	KNNErrors     int64
	KNNAvgNanos   int64
}
