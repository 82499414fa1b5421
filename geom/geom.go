// Package geom provides the point and box primitives shared by every index.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBox is returned when a box has mismatched corners or Min > Max.
var ErrInvalidBox = errors.New("geom: invalid box")

// Point is a fixed-size ordered list of coordinates.
type Point []float64

// Dim returns the number of coordinates.
func (p Point) Dim() int { return len(p) }

// Clone returns a copy of p that shares no memory with it.
func (p Point) Clone() Point {
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// Equal reports whether p and o have identical coordinates.
func (p Point) Equal(o Point) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// SquaredDist returns the squared Euclidean distance between a and b.
func SquaredDist(a, b Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Sqrt(SquaredDist(a, b))
}

// Box is an axis-aligned box given by its min and max corners.
type Box struct {
	Min Point
	Max Point
}

// NewBox validates the corners and returns the box.
func NewBox(min, max Point) (Box, error) {
	b := Box{Min: min, Max: max}
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

// Validate checks that both corners have the same dimension and Min <= Max.
func (b Box) Validate() error {
	if len(b.Min) == 0 || len(b.Min) != len(b.Max) {
		return fmt.Errorf("%w: corner dimensions %d and %d", ErrInvalidBox, len(b.Min), len(b.Max))
	}
	for i := range b.Min {
		if math.IsNaN(b.Min[i]) || math.IsNaN(b.Max[i]) || b.Min[i] > b.Max[i] {
			return fmt.Errorf("%w: dimension %d has min %v > max %v", ErrInvalidBox, i, b.Min[i], b.Max[i])
		}
	}
	return nil
}

// Dim returns the dimension of the box.
func (b Box) Dim() int { return len(b.Min) }

// Contains reports whether p lies inside b. Both faces are inclusive.
func (b Box) Contains(p Point) bool {
	for i, v := range p {
		if v < b.Min[i] || v > b.Max[i] {
			return false
		}
	}
	return true
}

// Covers reports whether o lies entirely inside b.
func (b Box) Covers(o Box) bool {
	for i := range b.Min {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether b and o share at least one point.
func (b Box) Intersects(o Box) bool {
	for i := range b.Min {
		if o.Max[i] < b.Min[i] || o.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Extend grows b in place so that it contains p.
func (b *Box) Extend(p Point) {
	for i, v := range p {
		if v < b.Min[i] {
			b.Min[i] = v
		}
		if v > b.Max[i] {
			b.Max[i] = v
		}
	}
}

// Around returns the box of half-width r centred on q.
func Around(q Point, r float64) Box {
	b := Box{Min: make(Point, len(q)), Max: make(Point, len(q))}
	for i, v := range q {
		b.Min[i] = v - r
		b.Max[i] = v + r
	}
	return b
}

// MinDist returns the smallest Euclidean distance from q to any point of b.
func (b Box) MinDist(q Point) float64 {
	var sum float64
	for i, v := range q {
		var d float64
		switch {
		case v < b.Min[i]:
			d = b.Min[i] - v
		case v > b.Max[i]:
			d = v - b.Max[i]
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// MaxDist returns the largest Euclidean distance from q to any point of b.
func (b Box) MaxDist(q Point) float64 {
	var sum float64
	for i, v := range q {
		d := math.Max(math.Abs(v-b.Min[i]), math.Abs(b.Max[i]-v))
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Clone returns a deep copy of b.
func (b Box) Clone() Box {
	return Box{Min: b.Min.Clone(), Max: b.Max.Clone()}
}

// MBR returns the minimum bounding rectangle of points. It panics on an empty slice.
func MBR(points []Point) Box {
	b := Box{Min: points[0].Clone(), Max: points[0].Clone()}
	for _, p := range points[1:] {
		b.Extend(p)
	}
	return b
}

// Filter appends every point of src contained in b to dst and returns it.
func Filter(dst []Point, src []Point, b Box) []Point {
	for _, p := range src {
		if b.Contains(p) {
			dst = append(dst, p)
		}
	}
	return dst
}
