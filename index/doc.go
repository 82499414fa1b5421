// Package index defines the SpatialIndex capability shared by the learned indexes
// and the baselines, together with their error taxonomy and input validation.
//
// Every implementation lives in its own sub-package and is built once from a static
// point set with New. A built index is immutable, so any number of goroutines may
// call RangeQuery and KNNQuery concurrently.
package index
