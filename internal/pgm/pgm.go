// Package pgm implements a bounded-error piecewise linear model over a sorted key
// array.
//
// The model is fitted greedily with a shrinking slope cone: every segment is
// anchored at its first key and extended while some slope keeps all covered
// training points within Epsilon positions of the line. Duplicate keys are allowed;
// only the first occurrence of each key is a training point, so Search approximates
// the lower bound position of a key.
package pgm

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnsorted is returned when the keys handed to New are not non-decreasing.
var ErrUnsorted = errors.New("pgm: keys must be sorted")

// ErrInvalidEpsilon is returned for a negative error bound.
var ErrInvalidEpsilon = errors.New("pgm: epsilon must be non-negative")

// DefaultEpsilon is the error bound used by the learned indexes.
const DefaultEpsilon = 64

// Approx is the result of a model lookup. The true lower bound position lies in
// [Lo, Hi].
type Approx struct {
	Lo  int
	Pos int
	Hi  int
}

type segment struct {
	key   float64
	pos   int
	slope float64
}

// Model is an immutable piecewise linear approximation of key -> position.
type Model struct {
	segments []segment
	n        int
	epsilon  int
}

// New fits a model over keys with the given error bound.
func New(keys []float64, epsilon int) (*Model, error) {
	if epsilon < 0 {
		return nil, ErrInvalidEpsilon
	}
	m := &Model{n: len(keys), epsilon: epsilon}
	if len(keys) == 0 {
		return m, nil
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] || math.IsNaN(keys[i]) {
			return nil, fmt.Errorf("%w: keys[%d]=%v < keys[%d]=%v", ErrUnsorted, i, keys[i], i-1, keys[i-1])
		}
	}

	eps := float64(epsilon)
	seg := segment{key: keys[0], pos: 0}
	lo, hi := math.Inf(-1), math.Inf(1)

	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1] {
			continue
		}
		dx := keys[i] - seg.key
		dy := float64(i - seg.pos)
		nlo := math.Max(lo, (dy-eps)/dx)
		nhi := math.Min(hi, (dy+eps)/dx)
		if nlo <= nhi {
			lo, hi = nlo, nhi
			continue
		}
		seg.slope = pickSlope(lo, hi)
		m.segments = append(m.segments, seg)
		seg = segment{key: keys[i], pos: i}
		lo, hi = math.Inf(-1), math.Inf(1)
	}
	seg.slope = pickSlope(lo, hi)
	m.segments = append(m.segments, seg)

	return m, nil
}

// pickSlope returns a non-negative slope inside [lo, hi].
func pickSlope(lo, hi float64) float64 {
	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return 0
	case math.IsInf(lo, -1):
		return math.Max(hi, 0)
	}
	s := (lo + hi) / 2
	if s < 0 {
		// hi is always positive because positions strictly increase.
		s = math.Max(lo, 0)
	}
	return s
}

// Search returns the approximate position of key.
func (m *Model) Search(key float64) Approx {
	if m.n == 0 {
		return Approx{}
	}
	j := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].key > key }) - 1
	if j < 0 {
		j = 0
	}
	seg := m.segments[j]
	upper := m.n
	if j+1 < len(m.segments) {
		upper = m.segments[j+1].pos
	}

	pred := float64(seg.pos) + seg.slope*(key-seg.key)
	if pred < float64(seg.pos) || math.IsNaN(pred) {
		pred = float64(seg.pos)
	}
	if pred > float64(upper) {
		pred = float64(upper)
	}
	pos := int(pred)

	return Approx{
		Lo:  clamp(pos-m.epsilon, 0, m.n),
		Pos: clamp(pos, 0, m.n),
		Hi:  clamp(pos+m.epsilon+2, 0, m.n),
	}
}

// Len returns the number of keys the model was trained on.
func (m *Model) Len() int { return m.n }

// Segments returns the number of linear pieces.
func (m *Model) Segments() int { return len(m.segments) }

// Epsilon returns the configured error bound.
func (m *Model) Epsilon() int { return m.epsilon }

// SizeBytes returns the memory held by the model.
func (m *Model) SizeBytes() int {
	return len(m.segments)*24 + 40
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
