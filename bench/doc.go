// Package bench drives benchmark runs over learnedbench indexes.
//
// A Workload is sampled once per dataset: kNN query points drawn from the data
// and range boxes sized for target selectivities, each paired with its true
// answer from a full scan. A Runner issues the workload against one index over
// concurrent readers and records per-query latencies and recall. A Suite ties
// both together for every configured kind, and a Report renders the results.
//
//	cfg, _ := bench.LoadConfigFile("bench.yaml")
//	points, name, _ := cfg.LoadPoints(ctx)
//	suite, _ := bench.NewSuite(cfg, logger)
//	results, _ := suite.Run(ctx, points)
//	rep, _ := bench.NewReport(name, results)
//	_ = rep.WriteText(os.Stdout)
package bench
