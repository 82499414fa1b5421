// Package resource implements the Controller that governs a benchmark run.
//
// The Controller manages three resource types:
//
//   - Memory: a budget for built indexes (non-blocking, fail-fast)
//   - Concurrency: the number of concurrent query readers
//   - Rate: a token bucket limiting issued queries per second
//
// # Memory Budget
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB
//	})
//
//	if err := rc.AcquireMemory(int64(idx.SizeBytes())); err != nil {
//	    // ErrMemoryLimitExceeded - the runner skips the index
//	}
//	defer rc.ReleaseMemory(int64(idx.SizeBytes()))
//
// # Readers and Query Rate
//
//	rc := resource.NewController(resource.Config{
//	    MaxReaders:    8,
//	    QueriesPerSec: 500,
//	})
//
//	if err := rc.AcquireReader(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseReader()
//	if err := rc.WaitQuery(ctx); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
