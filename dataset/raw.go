package dataset

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
)

// DecodeRaw parses a raw dataset: N·dim little-endian float64 values with no
// header.
func DecodeRaw(data []byte, dim int) ([]geom.Point, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: raw datasets need a dimension, got %d", ErrInvalidDimension, dim)
	}
	if len(data)%(8*dim) != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d-d points", ErrInvalidDimension, len(data), dim)
	}

	flat := make([]float64, len(data)/8)
	for i := range flat {
		flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return split(flat, dim), nil
}

// EncodeRaw writes points in the raw format.
func EncodeRaw(points []geom.Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, nil
	}
	dim := len(points[0])
	out := make([]byte, 0, len(points)*dim*8)
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d", ErrInvalidDimension, i, len(p), dim)
		}
		for _, v := range p {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
		}
	}
	return out, nil
}
