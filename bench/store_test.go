package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnedbench/blobstore"
	"github.com/hupe1980/learnedbench/blobstore/minio"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, loc := range []string{dir, "file://" + dir} {
		s, err := OpenStore(ctx, loc)
		require.NoError(t, err)
		assert.IsType(t, &blobstore.LocalStore{}, s)
	}

	s, err := OpenStore(ctx, "mem://")
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, s)

	s, err = OpenStore(ctx, "minio://localhost:9000/bucket/data")
	require.NoError(t, err)
	assert.IsType(t, &minio.Store{}, s)
}

func TestOpenStoreErrors(t *testing.T) {
	ctx := context.Background()

	for _, loc := range []string{
		"ftp://host/x",
		"s3:///prefix",
		"minio://localhost:9000",
		"minio:///bucket",
	} {
		_, err := OpenStore(ctx, loc)
		assert.Error(t, err, loc)
	}
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "", keyPrefix(""))
	assert.Equal(t, "", keyPrefix("/"))
	assert.Equal(t, "a/b/", keyPrefix("/a/b/"))
}
