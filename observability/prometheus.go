// Package observability exports learnedbench metrics to Prometheus.
package observability

import (
	"time"

	"github.com/hupe1980/learnedbench"
	"github.com/prometheus/client_golang/prometheus"
)

// Compile time check to ensure PrometheusCollector satisfies MetricsCollector.
var _ learnedbench.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements learnedbench.MetricsCollector with
// Prometheus histograms and counters labelled by index kind.
type PrometheusCollector struct {
	opLatency    *prometheus.HistogramVec
	ops          *prometheus.CounterVec
	buildPoints  *prometheus.GaugeVec
	rangeResults *prometheus.HistogramVec
	knnK         *prometheus.HistogramVec
}

// NewPrometheusCollector creates the collector and registers its metrics on
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnedbench_operation_latency_seconds",
			Help:    "Latency of index builds and queries",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 14),
		}, []string{"kind", "op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnedbench_operations_total",
			Help: "Total index builds and queries",
		}, []string{"kind", "op", "status"}),
		buildPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "learnedbench_index_points",
			Help: "Number of points in the last index built per kind",
		}, []string{"kind"}),
		rangeResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnedbench_range_results",
			Help:    "Number of points returned by range queries",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"kind"}),
		knnK: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnedbench_knn_k",
			Help:    "Requested k of kNN queries",
			Buckets: []float64{1, 10, 100, 500, 1000, 10000},
		}, []string{"kind"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.ops, c.buildPoints, c.rangeResults, c.knnK} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *PrometheusCollector) observe(kind learnedbench.Kind, op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(string(kind), op, s).Observe(d.Seconds())
	c.ops.WithLabelValues(string(kind), op, s).Inc()
}

// RecordBuild implements learnedbench.MetricsCollector.
func (c *PrometheusCollector) RecordBuild(kind learnedbench.Kind, count int, d time.Duration, err error) {
	c.observe(kind, "build", d, err)
	if err == nil {
		c.buildPoints.WithLabelValues(string(kind)).Set(float64(count))
	}
}

// RecordRange implements learnedbench.MetricsCollector.
func (c *PrometheusCollector) RecordRange(kind learnedbench.Kind, results int, d time.Duration, err error) {
	c.observe(kind, "range", d, err)
	if err == nil {
		c.rangeResults.WithLabelValues(string(kind)).Observe(float64(results))
	}
}

// RecordKNN implements learnedbench.MetricsCollector.
func (c *PrometheusCollector) RecordKNN(kind learnedbench.Kind, k int, d time.Duration, err error) {
	c.observe(kind, "knn", d, err)
	c.knnK.WithLabelValues(string(kind)).Observe(float64(k))
}
