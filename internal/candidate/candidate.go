// Package candidate collects array positions produced by model lookups and
// refines them with an exact geometric filter.
package candidate

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/learnedbench/geom"
)

// Set is a deduplicated set of array positions.
// Overlapping model windows from neighbouring key ranges collapse into one scan.
type Set struct {
	rb *roaring.Bitmap
}

// setPool reuses bitmaps across queries on the hot path.
var setPool = sync.Pool{
	New: func() any {
		return &Set{rb: roaring.New()}
	},
}

// Get returns an empty set from the pool. Call Put when done.
func Get() *Set {
	s := setPool.Get().(*Set)
	s.rb.Clear()
	return s
}

// Put returns s to the pool.
func Put(s *Set) {
	if s == nil {
		return
	}
	s.rb.Clear()
	setPool.Put(s)
}

// AddRange adds the half-open position interval [from, to).
func (s *Set) AddRange(from, to int) {
	if to <= from {
		return
	}
	s.rb.AddRange(uint64(from), uint64(to))
}

// ForEach calls fn for every position in ascending order until fn returns false.
func (s *Set) ForEach(fn func(pos int) bool) {
	it := s.rb.Iterator()
	for it.HasNext() {
		if !fn(int(it.Next())) {
			return
		}
	}
}

// Filter appends points[pos] for every position whose point lies in box.
func (s *Set) Filter(dst []geom.Point, points []geom.Point, box geom.Box) []geom.Point {
	s.ForEach(func(pos int) bool {
		if p := points[pos]; box.Contains(p) {
			dst = append(dst, p)
		}
		return true
	})
	return dst
}
