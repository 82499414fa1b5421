// Package knn implements the expanding-radius k-nearest-neighbour search shared
// by the grid and learned indexes.
package knn

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/learnedbench/geom"
	"github.com/hupe1980/learnedbench/index"
)

// MaxRetries caps the number of collection rounds of one search.
const MaxRetries = 64

// Collector appends to dst every indexed point within distance r of the query.
// It may append points that are farther away, but it must not miss any point
// inside the radius.
type Collector func(r float64, dst []geom.Point) ([]geom.Point, error)

// MaxRadius returns a radius around q that reaches every point of mbr.
func MaxRadius(q geom.Point, mbr geom.Box) float64 {
	return mbr.MaxDist(q) * (1 + 1e-9)
}

// Search grows r from r0, doubling until the collector returns at least k points,
// and returns the k closest of them ordered by distance. r never exceeds rMax,
// where the collector is expected to return every point. Starting radii too
// small to reach rMax in MaxRetries rounds are raised.
//
// A box of radius r can hold k points while closer ones sit just outside it, so
// once k candidates exist the collection is repeated at the k-th distance when
// that distance exceeds r. The result is exact up to the order of ties, which
// keep collection order.
func Search(q geom.Point, k int, r0, rMax float64, collect Collector) ([]geom.Point, error) {
	r := r0
	if r <= 0 || math.IsNaN(r) || r > rMax {
		r = rMax
	}
	// rMax must stay reachable within MaxRetries doublings.
	r = math.Max(r, math.Ldexp(rMax, -(MaxRetries-2)))

	var cands []geom.Point
	for attempt := 0; attempt < MaxRetries; attempt++ {
		var err error
		cands, err = collect(r, cands[:0])
		if err != nil {
			return nil, err
		}

		if len(cands) >= k {
			ranked := rank(q, cands)
			if dk := math.Sqrt(ranked[k-1].d2); dk > r && r < rMax {
				cands, err = collect(math.Min(dk, rMax), cands[:0])
				if err != nil {
					return nil, err
				}
				ranked = rank(q, cands)
			}
			return take(ranked, k), nil
		}

		if r >= rMax {
			break
		}
		r = math.Min(r*2, rMax)
	}

	return nil, index.ErrSearchExhausted
}

type neighbor struct {
	p  geom.Point
	d2 float64
}

func rank(q geom.Point, cands []geom.Point) []neighbor {
	out := make([]neighbor, len(cands))
	for i, p := range cands {
		out[i] = neighbor{p: p, d2: geom.SquaredDist(p, q)}
	}
	slices.SortStableFunc(out, func(a, b neighbor) int { return cmp.Compare(a.d2, b.d2) })
	return out
}

func take(ranked []neighbor, k int) []geom.Point {
	out := make([]geom.Point, k)
	for i := range out {
		out[i] = ranked[i].p
	}
	return out
}

// Nearest returns the k points of cands closest to q. It is used to rank a
// candidate set that is already known to contain the answer.
func Nearest(q geom.Point, cands []geom.Point, k int) []geom.Point {
	if k > len(cands) {
		k = len(cands)
	}
	return take(rank(q, cands), k)
}
