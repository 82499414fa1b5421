package learnedbench

import (
	"errors"
	"fmt"

	"github.com/hupe1980/learnedbench/index"
)

var (
	// ErrEmptyPointSet is returned when an index is built from no points.
	ErrEmptyPointSet = index.ErrEmptyPointSet
	// ErrInvalidDimension is returned when points have zero coordinates.
	ErrInvalidDimension = index.ErrInvalidDimension
	// ErrInvalidCoordinate is returned when a point holds NaN or an infinity.
	ErrInvalidCoordinate = index.ErrInvalidCoordinate
	// ErrInvalidK is returned when k is zero or exceeds the number of points.
	ErrInvalidK = index.ErrInvalidK
	// ErrInvalidBox is returned for query boxes with Min > Max.
	ErrInvalidBox = index.ErrInvalidBox
	// ErrDegeneratePartition is returned when a partition has zero volume.
	ErrDegeneratePartition = index.ErrDegeneratePartition
	// ErrSearchExhausted is returned when a kNN search hits its retry cap.
	ErrSearchExhausted = index.ErrSearchExhausted
	// ErrInvalidOption is returned when an index option is out of range.
	ErrInvalidOption = index.ErrInvalidOption
	// ErrUnknownKind is returned by Build and ParseKind for unregistered kinds.
	ErrUnknownKind = errors.New("unknown index kind")
)

// ErrDimensionMismatch indicates a point/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	return err
}
