package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/bench"
	"github.com/hupe1980/learnedbench/dataset"
)

// BenchmarkWorkload runs one full sampled workload per iteration through the
// concurrent runner.
func BenchmarkWorkload(b *testing.B) {
	f := loadFixture(b, dataset.DistUniform)

	cfg := bench.DefaultWorkloadConfig()
	cfg.Ks = []int{1, 10, 100}
	w, err := bench.NewWorkload(f.points, cfg)
	if err != nil {
		b.Fatal(err)
	}

	for _, kind := range []learnedbench.Kind{learnedbench.KindLISA, learnedbench.KindZM, learnedbench.KindMLIndex, learnedbench.KindIFIndex} {
		idx := buildIndex(b, kind, f.points)
		runner := bench.NewRunner(func(o *bench.RunnerOptions) {
			o.Readers = 4
			o.Verify = false
		})

		b.Run(string(kind), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := runner.Run(context.Background(), idx, w); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(w.Len()), "queries/op")
		})
	}
}
