// Package learnedbench is a testbed for learned multidimensional spatial
// indexes.
//
// It builds LISA, Flood, ZM-Index, ML-Index and IF-Index, each of which maps a
// point to an approximate position in a sorted array through a bounded-error
// segment model and then refines the answer with an exact geometric filter.
// The classic baselines (full scan, uniform and equal-depth grids, R-tree and
// kd-tree) sit behind the same interface so every kind can be timed and
// checked against the others.
//
// # Quick Start
//
//	points := dataset.Uniform(100_000, 2, 1, 42)
//	idx, err := learnedbench.Build(ctx, learnedbench.KindLISA, points)
//	if err != nil {
//	    return err
//	}
//
//	in, _ := idx.RangeQuery(geom.Box{Min: geom.Point{0.1, 0.1}, Max: geom.Point{0.2, 0.2}})
//	nn, _ := idx.KNNQuery(geom.Point{0.5, 0.5}, 10)
//	fmt.Println(len(in), len(nn), idx.AvgRangeTime(), idx.AvgKNNTime())
//
// # Per-Kind Options
//
// Every kind reads its parameters from IndexOptions:
//
//	idx, err := learnedbench.Build(ctx, learnedbench.KindFlood, points,
//	    learnedbench.WithIndexOptions(func(o *learnedbench.IndexOptions) {
//	        o.Flood.SortDim = 1
//	        o.Flood.Workers = 8
//	    }),
//	)
//
// # Observability
//
// Build and query calls are logged through a slog based Logger and reported to
// a MetricsCollector. The observability package exports them to Prometheus.
//
// The bench package drives whole workloads against a set of kinds and renders
// a latency report. The command learnedbench wires both to datasets stored
// locally or in S3 compatible object storage.
package learnedbench
