package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err = c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Readers(t *testing.T) {
	c := NewController(Config{MaxReaders: 2})
	assert.Equal(t, 2, c.MaxReaders())

	// Acquire 2
	require.NoError(t, c.AcquireReader(t.Context()))
	require.NoError(t, c.AcquireReader(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireReader(ctx))

	// Release 1
	c.ReleaseReader()

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	assert.NoError(t, c.AcquireReader(ctx2))
}

func TestController_Rate(t *testing.T) {
	c := NewController(Config{QueriesPerSec: 2})

	// The burst of two passes, the third query waits about half a second.
	require.NoError(t, c.WaitQuery(t.Context()))
	require.NoError(t, c.WaitQuery(t.Context()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, c.WaitQuery(ctx))

	// Unlimited
	c2 := NewController(Config{})
	for i := 0; i < 100; i++ {
		require.NoError(t, c2.WaitQuery(t.Context()))
	}
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	assert.NoError(t, c.AcquireReader(context.Background()))
	assert.NoError(t, c.WaitQuery(context.Background()))
	assert.Equal(t, 1, c.MaxReaders())
	assert.Zero(t, c.MemoryLimit())
	c.ReleaseMemory(10) // Should not panic
	c.ReleaseReader()
}
