// Package testutil provides testing utilities for learnedbench.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets, computing exact
// range and nearest-neighbour answers, and checking an index against them.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, 2)     // uniform [0, 1)
//	pts = rng.DiagonalPoints(1000, 2, 0.01) // skewed along the diagonal
//
// # Ground Truth
//
//	want := testutil.BruteForceRange(points, box)
//	dk := testutil.KthDistance(points, q, k)
//
// # Conformance
//
//	testutil.CheckRange(t, idx, points, boxes)
//	testutil.CheckKNN(t, idx, points, queries, ks)
package testutil
