package mmap

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestOpenReadClose(t *testing.T) {
	raw := make([]byte, 0, 24)
	for _, v := range []float64{0.5, -1, 42} {
		raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
	}

	m, err := Open(writeFile(t, raw))
	require.NoError(t, err)

	assert.EqualValues(t, 24, m.Size())
	assert.Equal(t, raw, m.Bytes())
	require.NoError(t, m.Advise(AccessSequential))

	buf := make([]byte, 8)
	n, err := m.ReadAt(buf, 16)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.InDelta(t, 42.0, math.Float64frombits(binary.LittleEndian.Uint64(buf)), 0)

	n, err = m.ReadAt(make([]byte, 16), 16)
	assert.Equal(t, 8, n)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, 100)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Equal(t, ErrClosed, m.Advise(AccessRandom))

	_, err = m.ReadAt(buf, 0)
	assert.Equal(t, ErrClosed, err)
}

func TestEmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Zero(t, m.Size())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(AccessWillNeed))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
