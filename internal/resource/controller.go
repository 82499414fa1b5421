package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for the indexes alive at once.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxReaders is the maximum number of concurrent query readers.
	// If 0, defaults to 1.
	MaxReaders int64

	// QueriesPerSec caps the rate at which queries are issued.
	// If 0, unlimited.
	QueriesPerSec float64
}

// Controller manages the limits of a benchmark run.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	readerSem *semaphore.Weighted

	// Rate
	limiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxReaders <= 0 {
		cfg.MaxReaders = 1
	}

	c := &Controller{
		cfg:       cfg,
		readerSem: semaphore.NewWeighted(cfg.MaxReaders),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.QueriesPerSec > 0 {
		burst := int(cfg.QueriesPerSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSec), burst)
	}

	return c
}

// MaxReaders returns the configured number of reader slots.
func (c *Controller) MaxReaders() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxReaders)
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireReader reserves a reader slot. Blocks if all slots are busy.
func (c *Controller) AcquireReader(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.readerSem.Acquire(ctx, 1)
}

// ReleaseReader releases a reader slot.
func (c *Controller) ReleaseReader() {
	if c == nil {
		return
	}
	c.readerSem.Release(1)
}

// WaitQuery blocks until the rate limit allows one more query.
func (c *Controller) WaitQuery(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
