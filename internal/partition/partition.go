// Package partition provides per-dimension cut tables and the raster-scan cell
// layout that turns multidimensional cell coordinates into scalar ids.
package partition

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// FirstCutNudge moves the first equal-depth cut below the minimum value.
const FirstCutNudge = 1e-6

// MaxCells bounds the number of cells a Layout may address.
const MaxCells = 1 << 26

// ErrTooManyCells is returned when K^dims exceeds MaxCells.
var ErrTooManyCells = errors.New("partition: too many cells")

// Cuts holds the K lower bounds of the buckets on one dimension followed by the
// upper bound of the last bucket.
type Cuts []float64

// EqualDepth returns cuts that give every bucket about len(values)/k values.
// values is not modified.
func EqualDepth(values []float64, k int) Cuts {
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	n := len(sorted)

	c := make(Cuts, k+1)
	bs := n / k
	for j := 0; j < k; j++ {
		if j == 0 {
			c[j] = sorted[0] - FirstCutNudge
			continue
		}
		a := sorted[min(j*bs, n-1)]
		b := sorted[min(j*bs+1, n-1)]
		c[j] = (a + b) / 2
	}
	c[k] = sorted[n-1]
	return c
}

// Uniform returns k equal-width buckets over [lo, hi].
func Uniform(lo, hi float64, k int) Cuts {
	c := make(Cuts, k+1)
	w := (hi - lo) / float64(k)
	for j := 0; j < k; j++ {
		c[j] = lo + float64(j)*w
	}
	c[k] = hi
	return c
}

// K returns the number of buckets.
func (c Cuts) K() int { return len(c) - 1 }

// Index returns the bucket holding v. Values outside the cut range clamp to the
// first or last bucket.
func (c Cuts) Index(v float64) int {
	k := len(c) - 1
	if v <= c[0] {
		return 0
	}
	i := sort.Search(k, func(i int) bool { return c[i] > v }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// Lower returns the lower bound of bucket i.
func (c Cuts) Lower(i int) float64 { return c[i] }

// Upper returns the upper bound of bucket i.
func (c Cuts) Upper(i int) float64 { return c[i+1] }

// Width returns the extent of bucket i.
func (c Cuts) Width(i int) float64 { return c[i+1] - c[i] }

// GridK returns the smallest K >= 2 with K^dims >= n/1024.
func GridK(n, dims int) int {
	k := 2
	for Ipow(k, dims) < n/1024 {
		k++
	}
	return k
}

// Ipow returns base^exp for small non-negative exponents. It saturates at
// math.MaxInt instead of overflowing.
func Ipow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		if base != 0 && r > math.MaxInt/base {
			return math.MaxInt
		}
		r *= base
	}
	return r
}

// Range is an inclusive interval of cell ids.
type Range struct {
	Lo int
	Hi int
}

// Layout maps cell coordinates to raster-scan ids. Dimension i has stride K^i.
type Layout struct {
	k       int
	offsets []int
	cells   int
}

// NewLayout returns the layout of a k^dims grid.
func NewLayout(k, dims int) (Layout, error) {
	if k < 1 || dims < 0 {
		return Layout{}, fmt.Errorf("partition: invalid grid %d^%d", k, dims)
	}
	cells := Ipow(k, dims)
	if cells > MaxCells {
		return Layout{}, fmt.Errorf("%w: %d^%d", ErrTooManyCells, k, dims)
	}
	offsets := make([]int, dims)
	for i := range offsets {
		offsets[i] = Ipow(k, i)
	}
	return Layout{k: k, offsets: offsets, cells: cells}, nil
}

// K returns the number of buckets per dimension.
func (l Layout) K() int { return l.k }

// Dims returns the number of dimensions.
func (l Layout) Dims() int { return len(l.offsets) }

// Cells returns the total number of cells.
func (l Layout) Cells() int { return l.cells }

// ID returns the raster id of the given coordinates.
func (l Layout) ID(idx []int) int {
	id := 0
	for i, v := range idx {
		id += v * l.offsets[i]
	}
	return id
}

// Fold converts the per-dimension inclusive intervals [lo[i], hi[i]] into raster
// id ranges, one dimension at a time. Adjacent ranges are merged. When the result
// would exceed maxRanges it collapses to the single range [ID(lo), ID(hi)], which
// is a superset because ids are monotone in every coordinate. maxRanges <= 0
// disables the cap.
func (l Layout) Fold(lo, hi []int, maxRanges int) []Range {
	if len(l.offsets) == 0 {
		return []Range{{0, 0}}
	}

	total := 1
	for i := 1; i < len(lo); i++ {
		n := hi[i] - lo[i] + 1
		if total > math.MaxInt/n {
			total = math.MaxInt
			break
		}
		total *= n
	}
	if maxRanges > 0 && total > maxRanges && !l.contiguous(lo, hi) {
		return []Range{{Lo: l.ID(lo), Hi: l.ID(hi)}}
	}

	ranges := []Range{{Lo: lo[0], Hi: hi[0]}}
	for i := 1; i < len(l.offsets); i++ {
		next := make([]Range, 0, len(ranges)*(hi[i]-lo[i]+1))
		for idx := lo[i]; idx <= hi[i]; idx++ {
			off := idx * l.offsets[i]
			for _, r := range ranges {
				next = appendMerged(next, Range{Lo: r.Lo + off, Hi: r.Hi + off})
			}
		}
		ranges = next
	}
	return ranges
}

// contiguous reports whether the box covers full rows on all leading dimensions,
// in which case folding yields a single range anyway.
func (l Layout) contiguous(lo, hi []int) bool {
	for i := 0; i < len(lo)-1; i++ {
		if lo[i] != 0 || hi[i] != l.k-1 {
			return false
		}
	}
	return true
}

func appendMerged(ranges []Range, r Range) []Range {
	if n := len(ranges); n > 0 && ranges[n-1].Hi+1 == r.Lo {
		ranges[n-1].Hi = r.Hi
		return ranges
	}
	return append(ranges, r)
}
