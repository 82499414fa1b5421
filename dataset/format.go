package dataset

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidFormat is returned for malformed or unsupported dataset bytes.
	ErrInvalidFormat = errors.New("invalid dataset format")
	// ErrInvalidDimension is returned when a dimension is missing or does not
	// divide the data.
	ErrInvalidDimension = errors.New("invalid dataset dimension")
)

// Magic starts every block format dataset.
var Magic = [4]byte{'L', 'B', 'D', '1'}

// Version is the block format version written by Encode.
const Version = 1

// headerSize is magic(4) version(2) compression(1) reserved(1) dim(4)
// count(8) blockPoints(4).
const headerSize = 24

// Header describes a block format dataset.
type Header struct {
	Version     uint16
	Compression Compression
	Dim         int
	Count       int
	BlockPoints int
}

// Options configures Encode.
type Options struct {
	// Compression is the block compression.
	Compression Compression
	// BlockPoints is the number of points per block.
	BlockPoints int
}

// DefaultOptions contains the default block format options.
var DefaultOptions = Options{
	Compression: CompressionLZ4,
	BlockPoints: 8192,
}

// IsBlockFormat reports whether data starts with Magic.
func IsBlockFormat(data []byte) bool {
	return len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic[:])
}

// Encode writes points in the block format. All points must share one
// dimension.
func Encode(points []geom.Point, optFns ...func(o *Options)) ([]byte, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockPoints <= 0 {
		return nil, fmt.Errorf("%w: block points %d", ErrInvalidFormat, opts.BlockPoints)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidFormat)
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, ErrInvalidDimension
	}
	if opts.BlockPoints*dim*8 > math.MaxUint32 {
		return nil, fmt.Errorf("%w: block of %d points too large", ErrInvalidFormat, opts.BlockPoints)
	}

	out := make([]byte, 0, headerSize+len(points)*dim*8/2)
	out = append(out, Magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, Version)
	out = append(out, byte(opts.Compression), 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(dim))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(points)))
	out = binary.LittleEndian.AppendUint32(out, uint32(opts.BlockPoints))

	raw := make([]byte, 0, opts.BlockPoints*dim*8)
	for start := 0; start < len(points); start += opts.BlockPoints {
		raw = raw[:0]
		for i, p := range points[start:min(start+opts.BlockPoints, len(points))] {
			if len(p) != dim {
				return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d", ErrInvalidDimension, start+i, len(p), dim)
			}
			for _, v := range p {
				raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
			}
		}

		var err error
		if out, err = appendBlock(out, raw, opts.Compression); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// ReadHeader parses the block format header.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < headerSize || !IsBlockFormat(data) {
		return Header{}, fmt.Errorf("%w: missing %s header", ErrInvalidFormat, Magic[:])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Compression: Compression(data[6]),
		Dim:         int(binary.LittleEndian.Uint32(data[8:])),
		BlockPoints: int(binary.LittleEndian.Uint32(data[20:])),
	}
	count := binary.LittleEndian.Uint64(data[12:])

	switch {
	case h.Version != Version:
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, h.Version)
	case h.Compression > CompressionZSTD:
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrInvalidFormat, h.Compression)
	case h.Dim <= 0:
		return Header{}, fmt.Errorf("%w: dimension %d", ErrInvalidDimension, h.Dim)
	case h.BlockPoints <= 0:
		return Header{}, fmt.Errorf("%w: block points %d", ErrInvalidFormat, h.BlockPoints)
	case count > math.MaxInt32 || count > math.MaxInt/8/uint64(h.Dim):
		return Header{}, fmt.Errorf("%w: count %d", ErrInvalidFormat, count)
	case uint64(h.BlockPoints)*uint64(h.Dim) > math.MaxUint32/8:
		return Header{}, fmt.Errorf("%w: block of %d points too large", ErrInvalidFormat, h.BlockPoints)
	}
	h.Count = int(count)

	return h, nil
}

// Decode parses a block format dataset. Blocks are decompressed by up to
// workers goroutines; workers <= 0 uses one per block.
func Decode(ctx context.Context, data []byte, workers int) ([]geom.Point, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	blocks, err := scanBlocks(data[headerSize:], h)
	if err != nil {
		return nil, err
	}

	flat := make([]float64, h.Count*h.Dim)

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, b := range blocks {
		start := i * h.BlockPoints
		dst := flat[start*h.Dim : start*h.Dim+b.size/8]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf := make([]byte, b.size)
			if err := decodeBlock(buf, b.payload, b.compressed, h.Compression); err != nil {
				return fmt.Errorf("%w: block at point %d: %w", ErrInvalidFormat, start, err)
			}
			for i := range dst {
				dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return split(flat, h.Dim), nil
}

type block struct {
	payload    []byte
	size       int
	compressed bool
}

// scanBlocks walks the block headers after the file header and checks that
// they account for exactly h.Count points before anything is allocated for
// them.
func scanBlocks(rest []byte, h Header) ([]block, error) {
	n := (h.Count + h.BlockPoints - 1) / h.BlockPoints
	if n > len(rest)/blockHeaderSize {
		return nil, fmt.Errorf("%w: %d blocks declared, data holds at most %d", ErrInvalidFormat, n, len(rest)/blockHeaderSize)
	}

	blocks := make([]block, 0, n)
	for start := 0; start < h.Count; start += h.BlockPoints {
		payload, size, compressed, next, err := nextBlock(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: block at point %d: %w", ErrInvalidFormat, start, err)
		}
		rest = next

		want := min(h.BlockPoints, h.Count-start) * h.Dim * 8
		if size != want {
			return nil, fmt.Errorf("%w: block at point %d holds %d bytes, want %d", ErrInvalidFormat, start, size, want)
		}
		blocks = append(blocks, block{payload: payload, size: size, compressed: compressed})
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidFormat, len(rest))
	}

	return blocks, nil
}

// split views flat as points of dim coordinates.
func split(flat []float64, dim int) []geom.Point {
	out := make([]geom.Point, len(flat)/dim)
	for i := range out {
		out[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return out
}
