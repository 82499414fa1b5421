package index

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/learnedbench/geom"
)

var (
	// ErrEmptyPointSet is returned when an index is built from no points.
	ErrEmptyPointSet = errors.New("empty point set")
	// ErrInvalidDimension is returned when points have zero coordinates.
	ErrInvalidDimension = errors.New("dimension must be positive")
	// ErrInvalidCoordinate is returned when a point holds NaN or an infinity.
	ErrInvalidCoordinate = errors.New("coordinate must be finite")
	// ErrInvalidK is returned when k is zero or exceeds the number of points.
	ErrInvalidK = errors.New("k must be in [1, count]")
	// ErrDegeneratePartition is returned when a partition has zero volume.
	ErrDegeneratePartition = errors.New("degenerate partition")
	// ErrSearchExhausted is returned when an expanding search hits its retry cap.
	ErrSearchExhausted = errors.New("expanding search exhausted")
	// ErrInvalidOption is returned when an index option is out of range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidBox is returned for query boxes with Min > Max.
	ErrInvalidBox = geom.ErrInvalidBox
)

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SpatialIndex is implemented by every index variant.
type SpatialIndex interface {
	// Name returns the short kind name, e.g. "lisa".
	Name() string

	// Dimension returns the number of coordinates per point.
	Dimension() int

	// Count returns the number of indexed points.
	Count() int

	// RangeQuery returns every point p with box.Min <= p <= box.Max.
	RangeQuery(box geom.Box) ([]geom.Point, error)

	// KNNQuery returns the k points closest to q, nearest first.
	KNNQuery(q geom.Point, k int) ([]geom.Point, error)

	// SizeBytes estimates the memory held by the index, points included.
	SizeBytes() int
}

// ValidatePoints checks that points is non-empty, uniformly dimensioned and finite.
// It returns the common dimension.
func ValidatePoints(points []geom.Point) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptyPointSet
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, ErrInvalidDimension
	}
	for i, p := range points {
		if len(p) != dim {
			return 0, fmt.Errorf("point %d: %w", i, &ErrDimensionMismatch{Expected: dim, Actual: len(p)})
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("point %d: %w", i, ErrInvalidCoordinate)
			}
		}
	}
	return dim, nil
}

// ValidateBox checks a query box against the index dimension.
func ValidateBox(box geom.Box, dim int) error {
	if err := box.Validate(); err != nil {
		return err
	}
	if box.Dim() != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: box.Dim()}
	}
	return nil
}

// ValidateKNN checks a kNN query point and k against the index.
func ValidateKNN(q geom.Point, k, dim, count int) error {
	if len(q) != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: len(q)}
	}
	for _, v := range q {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("query point: %w", ErrInvalidCoordinate)
		}
	}
	if k <= 0 || k > count {
		return fmt.Errorf("%w: k=%d, count=%d", ErrInvalidK, k, count)
	}
	return nil
}

// ClonePoints deep-copies points into one contiguous backing array.
func ClonePoints(points []geom.Point) []geom.Point {
	if len(points) == 0 {
		return nil
	}
	dim := len(points[0])
	flat := make([]float64, len(points)*dim)
	out := make([]geom.Point, len(points))
	for i, p := range points {
		row := flat[i*dim : (i+1)*dim : (i+1)*dim]
		copy(row, p)
		out[i] = row
	}
	return out
}

// PointsSize returns the bytes held by n points of the given dimension.
func PointsSize(n, dim int) int {
	return n*dim*8 + n*24
}
