package dataset

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/hupe1980/learnedbench/blobstore"
	"github.com/hupe1980/learnedbench/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockFormat(t *testing.T) {
	points := Gaussian(10_000, 3, 1, 1)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := Encode(points, func(o *Options) {
				o.Compression = c
				o.BlockPoints = 999
			})
			require.NoError(t, err)
			require.True(t, IsBlockFormat(data))

			h, err := ReadHeader(data)
			require.NoError(t, err)
			assert.Equal(t, Header{Version: Version, Compression: c, Dim: 3, Count: 10_000, BlockPoints: 999}, h)

			for _, workers := range []int{0, 1, 4} {
				got, err := Decode(context.Background(), data, workers)
				require.NoError(t, err)
				assert.Equal(t, points, got)
			}
		})
	}
}

func TestCompressionShrinksRedundantData(t *testing.T) {
	points := make([]geom.Point, 4096)
	for i := range points {
		points[i] = geom.Point{float64(i % 4), 1}
	}

	plain, err := Encode(points, func(o *Options) { o.Compression = CompressionNone })
	require.NoError(t, err)
	packed, err := Encode(points, func(o *Options) { o.Compression = CompressionZSTD })
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain)/4)
}

func TestDecodeCorrupt(t *testing.T) {
	data, err := Encode(Uniform(100, 2, 1, 3), func(o *Options) { o.BlockPoints = 10 })
	require.NoError(t, err)

	_, err = Decode(context.Background(), data[:len(data)-3], 2)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Decode(context.Background(), append(data, 0), 2)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint16(bad[4:], 9)
	_, err = ReadHeader(bad)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ReadHeader([]byte("LBD"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	oversized := []struct {
		name        string
		dim         uint32
		count       uint64
		blockPoints uint32
	}{
		{"max dim", 0xFFFFFFFF, 0x7FFFFFFF, 1},
		{"many blocks", 1000, 1<<31 - 1, 8192},
		{"huge block", 1 << 20, 10, 1 << 20},
	}
	for _, tt := range oversized {
		t.Run(tt.name, func(t *testing.T) {
			hdr := append([]byte(nil), data[:headerSize]...)
			binary.LittleEndian.PutUint32(hdr[8:], tt.dim)
			binary.LittleEndian.PutUint64(hdr[12:], tt.count)
			binary.LittleEndian.PutUint32(hdr[20:], tt.blockPoints)

			_, err := Decode(context.Background(), hdr, 2)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestDecodeCancelled(t *testing.T) {
	data, err := Encode(Uniform(1000, 2, 1, 3), func(o *Options) { o.BlockPoints = 10 })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Decode(ctx, data, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Encode([]geom.Point{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = Encode([]geom.Point{{1}}, func(o *Options) { o.BlockPoints = 0 })
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRawFormat(t *testing.T) {
	points := Lognormal(50, 4, 1, 9)

	data, err := EncodeRaw(points)
	require.NoError(t, err)
	assert.Len(t, data, 50*4*8)
	assert.False(t, IsBlockFormat(data))

	got, err := DecodeRaw(data, 4)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	_, err = DecodeRaw(data, 3)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = DecodeRaw(data, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	points := Uniform(3000, 2, 10, 4)

	require.NoError(t, Save(ctx, store, "uniform.lbd", points, func(o *Options) { o.Compression = CompressionZSTD }))

	got, err := Load(ctx, store, "uniform.lbd")
	require.NoError(t, err)
	assert.Equal(t, points, got)

	got, err = Load(ctx, store, "uniform.lbd", func(o *LoadOptions) { o.Limit = 10 })
	require.NoError(t, err)
	assert.Equal(t, points[:10], got)

	raw, err := EncodeRaw(points)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "uniform.bin", raw))

	got, err = Load(ctx, store, "uniform.bin", func(o *LoadOptions) { o.Dim = 2 })
	require.NoError(t, err)
	assert.Equal(t, points, got)

	_, err = Load(ctx, store, "uniform.bin")
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = Load(ctx, store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoadLocalStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	points := Clustered(2000, 3, 5, 0.01, 5)

	require.NoError(t, Save(ctx, store, "real/clustered.lbd", points))
	got, err := Load(ctx, store, "real/clustered.lbd", func(o *LoadOptions) { o.Workers = 3 })
	require.NoError(t, err)
	assert.Equal(t, points, got)
}

func TestReadCSV(t *testing.T) {
	in := "lon,lat\n1.5,2\n-3,4e2\n\n0,0\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []geom.Point{{1.5, 2}, {-3, 400}, {0, 0}}, got)

	got, err = ReadCSV(strings.NewReader("1;2;3\n4;5;6\n"), func(o *CSVOptions) {
		o.Comma = ';'
		o.Columns = []int{2, 0}
	})
	require.NoError(t, err)
	assert.Equal(t, []geom.Point{{3, 1}, {6, 4}}, got)

	_, err = ReadCSV(strings.NewReader("1,2\n3\n"))
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = ReadCSV(strings.NewReader("1,2\n3,x\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		spec  Spec
		check func(t *testing.T, p geom.Point)
	}{
		{Spec{Distribution: DistUniform, N: 1000, Dim: 3, Scale: 5}, func(t *testing.T, p geom.Point) {
			for _, v := range p {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.Less(t, v, 5.0)
			}
		}},
		{Spec{Distribution: DistLognormal, N: 1000, Dim: 2, Scale: 1}, func(t *testing.T, p geom.Point) {
			for _, v := range p {
				assert.Positive(t, v)
			}
		}},
		{Spec{Distribution: DistDiagonal, N: 1000, Dim: 2, Scale: 0.01}, func(t *testing.T, p geom.Point) {
			assert.LessOrEqual(t, math.Abs(p[0]-p[1]), 0.02+1e-12)
		}},
		{Spec{Distribution: DistGaussian, N: 1000, Dim: 2, Scale: 1}, func(*testing.T, geom.Point) {}},
		{Spec{Distribution: DistClustered, N: 1000, Dim: 2, Scale: 0.01, Clusters: 3}, func(*testing.T, geom.Point) {}},
	}

	for _, tt := range tests {
		t.Run(string(tt.spec.Distribution), func(t *testing.T) {
			points, err := tt.spec.Generate()
			require.NoError(t, err)
			require.Len(t, points, tt.spec.N)
			for _, p := range points {
				require.Len(t, p, tt.spec.Dim)
				tt.check(t, p)
			}

			again, err := tt.spec.Generate()
			require.NoError(t, err)
			assert.Equal(t, points, again)
		})
	}

	_, err := Spec{Distribution: "zipf", N: 1, Dim: 1, Scale: 1}.Generate()
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Spec{Distribution: DistUniform, N: 1, Dim: 0, Scale: 1}.Generate()
	assert.ErrorIs(t, err, ErrInvalidDimension)

	assert.Equal(t, "uniform_1000_2_1.lbd", Spec{Distribution: DistUniform, N: 1000, Dim: 2, Scale: 1}.Name())
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	var u Compression
	require.NoError(t, u.UnmarshalText([]byte("lz4")))
	assert.Equal(t, CompressionLZ4, u)

	_, err = ParseCompression("snappy")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
