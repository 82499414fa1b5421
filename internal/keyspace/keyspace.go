// Package keyspace couples a sorted projection key array with its segment model
// and resolves key intervals to exact array positions.
package keyspace

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
	"github.com/hupe1980/learnedbench/internal/pgm"
)

// PerturbStep is the gap placed between colliding keys by MakeStrict.
const PerturbStep = 1e-11

// MakeStrict nudges duplicate keys of a sorted slice upward so that the slice is
// strictly increasing. It returns the largest amount any key moved.
func MakeStrict(keys []float64) float64 {
	var shift float64
	for i := 1; i < len(keys); i++ {
		if keys[i] > keys[i-1] {
			continue
		}
		orig := keys[i]
		keys[i] = math.Max(keys[i-1]+PerturbStep, math.Nextafter(keys[i-1], math.Inf(1)))
		if d := keys[i] - orig; d > shift {
			shift = d
		}
	}
	return shift
}

// Sort returns copies of points and keys ordered by key. Equal keys keep their
// input order, so the result is deterministic.
func Sort(points []geom.Point, keys []float64) ([]geom.Point, []float64) {
	perm := make([]int, len(points))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int { return cmp.Compare(keys[a], keys[b]) })

	view := make([]geom.Point, len(perm))
	sortedKeys := make([]float64, len(perm))
	for i, j := range perm {
		view[i] = points[j]
		sortedKeys[i] = keys[j]
	}
	return index.ClonePoints(view), sortedKeys
}

// Space is a sorted key array plus the model trained on it.
type Space struct {
	keys  []float64
	model *pgm.Model
	shift float64
}

// New builds a Space over non-decreasing keys. Duplicates are kept.
func New(keys []float64, epsilon int) (*Space, error) {
	m, err := pgm.New(keys, epsilon)
	if err != nil {
		return nil, err
	}
	return &Space{keys: keys, model: m}, nil
}

// NewStrict perturbs duplicate keys in place before training, so the stored keys
// are strictly increasing. Interval lookups are widened by the recorded shift.
func NewStrict(keys []float64, epsilon int) (*Space, error) {
	shift := MakeStrict(keys)
	s, err := New(keys, epsilon)
	if err != nil {
		return nil, err
	}
	s.shift = shift
	return s, nil
}

// Keys returns the stored keys. The slice must not be modified.
func (s *Space) Keys() []float64 { return s.keys }

// Len returns the number of keys.
func (s *Space) Len() int { return len(s.keys) }

// Shift returns the largest perturbation applied by NewStrict.
func (s *Space) Shift() float64 { return s.shift }

// Model returns the underlying segment model.
func (s *Space) Model() *pgm.Model { return s.model }

// LowerBound returns the first position whose key is >= k.
func (s *Space) LowerBound(k float64) int {
	return s.search(k, func(v float64) bool { return v >= k })
}

// UpperBound returns the first position whose key is > k.
func (s *Space) UpperBound(k float64) int {
	return s.search(k, func(v float64) bool { return v > k })
}

// Range returns the half-open position interval holding every stored key whose
// original value lies in [lo, hi].
func (s *Space) Range(lo, hi float64) (int, int) {
	if hi < lo {
		return 0, 0
	}
	from := s.LowerBound(lo)
	to := s.UpperBound(hi + s.shift)
	if to < from {
		to = from
	}
	return from, to
}

// search finds the first position where pred holds. pred must be monotone over
// the keys. The model window is verified and widened exponentially when it does
// not bracket the answer.
func (s *Space) search(k float64, pred func(float64) bool) int {
	n := len(s.keys)
	if n == 0 {
		return 0
	}
	a := s.model.Search(k)
	lo, hi := a.Lo, a.Hi

	for step := 1; lo > 0 && pred(s.keys[lo-1]); step *= 2 {
		lo -= step
		if lo < 0 {
			lo = 0
		}
	}
	for step := 1; hi < n && !pred(s.keys[hi]); step *= 2 {
		hi += step
		if hi > n {
			hi = n
		}
	}

	return lo + sort.Search(hi-lo, func(i int) bool { return pred(s.keys[lo+i]) })
}

// SizeBytes returns the memory held by keys and model.
func (s *Space) SizeBytes() int {
	return len(s.keys)*8 + s.model.SizeBytes()
}
