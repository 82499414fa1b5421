package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/learnedbench/geom"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// points allocates num points of the given dimension on one backing array and
// fills every coordinate with gen.
func points(num, dim int, gen func() float64) []geom.Point {
	data := make([]float64, num*dim)
	out := make([]geom.Point, num)
	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = gen()
		}
		out[i] = p
	}
	return out
}

// UniformPoints generates points with coordinates in [0, 1).
func (r *RNG) UniformPoints(num, dim int) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return points(num, dim, r.rand.Float64)
}

// GaussianPoints generates points from a standard normal distribution.
func (r *RNG) GaussianPoints(num, dim int) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return points(num, dim, r.rand.NormFloat64)
}

// LognormalPoints generates points whose coordinates are exp(N(0, sigma)).
func (r *RNG) LognormalPoints(num, dim int, sigma float64) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return points(num, dim, func() float64 { return math.Exp(r.rand.NormFloat64() * sigma) })
}

// ClusteredPoints generates points around random centers in [0, 1).
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := points(clusters, dim, r.rand.Float64)
	out := make([]geom.Point, num)
	for i := range out {
		c := centers[r.rand.Intn(clusters)]
		p := make(geom.Point, dim)
		for j := range p {
			p[j] = c[j] + r.rand.NormFloat64()*spread
		}
		out[i] = p
	}
	return out
}

// DiagonalPoints generates points near the main diagonal of the unit cube, so
// that off-diagonal grid cells stay empty.
func (r *RNG) DiagonalPoints(num, dim int, noise float64) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]geom.Point, num)
	for i := range out {
		t := r.rand.Float64()
		p := make(geom.Point, dim)
		for j := range p {
			p[j] = t + (r.rand.Float64()*2-1)*noise
		}
		out[i] = p
	}
	return out
}

// Boxes generates num query boxes anchored at random data points, each spanning
// frac of the data extent per dimension.
func (r *RNG) Boxes(data []geom.Point, num int, frac float64) []geom.Box {
	mbr := geom.MBR(data)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]geom.Box, num)
	for i := range out {
		p := data[r.rand.Intn(len(data))]
		b := geom.Box{Min: p.Clone(), Max: p.Clone()}
		for d := range p {
			b.Max[d] += (mbr.Max[d] - mbr.Min[d]) * frac * r.rand.Float64()
		}
		out[i] = b
	}
	return out
}

// BruteForceRange returns the points of data inside box.
func BruteForceRange(data []geom.Point, box geom.Box) []geom.Point {
	return geom.Filter(nil, data, box)
}

// KthDistance returns the k-th smallest distance from q to the points of data.
func KthDistance(data []geom.Point, q geom.Point, k int) float64 {
	d := make([]float64, len(data))
	for i, p := range data {
		d[i] = geom.Dist(p, q)
	}
	sort.Float64s(d)
	return d[k-1]
}
