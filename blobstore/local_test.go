package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	data := []byte("0123456789 learned index points")
	require.NoError(t, store.Put(ctx, "osm/points.lbd", data))
	require.NoError(t, store.Put(ctx, "uniform.bin", []byte("x")))

	_, err := os.Stat(filepath.Join(tmpDir, "osm", "points.lbd"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, "osm/points.lbd")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(buf, 2)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, "2345", string(buf))

	all, err := ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"osm/points.lbd", "uniform.bin"}, names)

	names, err = store.List(ctx, "osm/")
	require.NoError(t, err)
	assert.Equal(t, []string{"osm/points.lbd"}, names)
}

func TestLocalStore_Overwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.bin", []byte("first")))
	require.NoError(t, store.Put(ctx, "a.bin", []byte("second")))

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()

	all, err := ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "second", string(all))

	// No temporary files survive a successful write.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin"}, names)
}

func TestLocalStore_Missing(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	ctx := context.Background()

	_, err := store.Open(ctx, "missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))
	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	all, err := ReadAll(blob)
	require.NoError(t, err)
	assert.Empty(t, all)
}
