package bench

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/hupe1980/learnedbench"
)

// Result holds the raw measurements of one index.
type Result struct {
	Kind      learnedbench.Kind
	Count     int
	Dimension int
	SizeBytes int
	BuildTime time.Duration
	Verified  bool
	Ranges    []GroupResult
	KNN       []GroupResult
}

// GroupResult holds per-query measurements for one selectivity or one k.
type GroupResult struct {
	Selectivity float64
	K           int
	Latencies   []time.Duration
	Results     []int
	Recalls     []float64
}

func newGroupResult(n int) GroupResult {
	return GroupResult{
		Latencies: make([]time.Duration, n),
		Results:   make([]int, n),
		Recalls:   make([]float64, n),
	}
}

// Label names the group, e.g. "sel=0.01" or "k=10".
func (g GroupResult) Label() string {
	if g.K > 0 {
		return fmt.Sprintf("k=%d", g.K)
	}
	return fmt.Sprintf("sel=%g", g.Selectivity)
}

// Summary aggregates the latencies of a group.
type Summary struct {
	Label      string        `json:"label"`
	Queries    int           `json:"queries"`
	Avg        time.Duration `json:"avg_ns"`
	P50        time.Duration `json:"p50_ns"`
	P95        time.Duration `json:"p95_ns"`
	P99        time.Duration `json:"p99_ns"`
	AvgResults float64       `json:"avg_results"`
	Recall     *float64      `json:"recall,omitempty"`
}

// Summarize computes the latency percentiles of g. Recall is set only when
// verified is true.
func (g GroupResult) Summarize(verified bool) (Summary, error) {
	s := Summary{Label: g.Label(), Queries: len(g.Latencies)}
	if len(g.Latencies) == 0 {
		return s, nil
	}

	lat := make(stats.Float64Data, len(g.Latencies))
	for i, d := range g.Latencies {
		lat[i] = float64(d)
	}

	mean, err := lat.Mean()
	if err != nil {
		return s, err
	}
	s.Avg = time.Duration(mean)

	for _, p := range []struct {
		dst     *time.Duration
		percent float64
	}{
		{&s.P50, 50},
		{&s.P95, 95},
		{&s.P99, 99},
	} {
		v, err := lat.Percentile(p.percent)
		if err != nil {
			return s, err
		}
		*p.dst = time.Duration(v)
	}

	results := make(stats.Float64Data, len(g.Results))
	for i, n := range g.Results {
		results[i] = float64(n)
	}
	if s.AvgResults, err = results.Mean(); err != nil {
		return s, err
	}

	if verified {
		recall, err := stats.Mean(g.Recalls)
		if err != nil {
			return s, err
		}
		s.Recall = &recall
	}

	return s, nil
}
