package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/hupe1980/learnedbench/geom"
)

// Distribution names a synthetic data distribution.
type Distribution string

// Supported distributions.
const (
	DistUniform   Distribution = "uniform"
	DistGaussian  Distribution = "gaussian"
	DistLognormal Distribution = "lognormal"
	DistClustered Distribution = "clustered"
	DistDiagonal  Distribution = "diagonal"
)

// Spec describes a synthetic dataset.
type Spec struct {
	Distribution Distribution `yaml:"distribution"`
	N            int          `yaml:"n"`
	Dim          int          `yaml:"dim"`
	// Scale is the range of uniform data, the sigma of gaussian and lognormal
	// data, the cluster spread, or the diagonal noise.
	Scale float64 `yaml:"scale"`
	// Clusters is the number of cluster centers of clustered data.
	Clusters int    `yaml:"clusters"`
	Seed     uint64 `yaml:"seed"`
}

// Name returns a file name for the dataset, e.g. "uniform_1000_2_1.lbd".
func (s Spec) Name() string {
	return fmt.Sprintf("%s_%d_%d_%g.lbd", s.Distribution, s.N, s.Dim, s.Scale)
}

// Generate draws the dataset described by s.
func (s Spec) Generate() ([]geom.Point, error) {
	if s.N <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidFormat, s.N)
	}
	if s.Dim <= 0 {
		return nil, fmt.Errorf("%w: dim=%d", ErrInvalidDimension, s.Dim)
	}
	if s.Scale <= 0 || math.IsInf(s.Scale, 0) || math.IsNaN(s.Scale) {
		return nil, fmt.Errorf("%w: scale=%v", ErrInvalidFormat, s.Scale)
	}

	switch Distribution(strings.ToLower(string(s.Distribution))) {
	case DistUniform:
		return Uniform(s.N, s.Dim, s.Scale, s.Seed), nil
	case DistGaussian:
		return Gaussian(s.N, s.Dim, s.Scale, s.Seed), nil
	case DistLognormal:
		return Lognormal(s.N, s.Dim, s.Scale, s.Seed), nil
	case DistClustered:
		clusters := s.Clusters
		if clusters <= 0 {
			clusters = 10
		}
		return Clustered(s.N, s.Dim, clusters, s.Scale, s.Seed), nil
	case DistDiagonal:
		return Diagonal(s.N, s.Dim, s.Scale, s.Seed), nil
	}
	return nil, fmt.Errorf("%w: unknown distribution %q", ErrInvalidFormat, s.Distribution)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// fill allocates n points on one backing array and sets every coordinate to gen.
func fill(n, d int, gen func() float64) []geom.Point {
	flat := make([]float64, n*d)
	for i := range flat {
		flat[i] = gen()
	}
	return split(flat, d)
}

// Uniform draws n points with coordinates uniform in [0, r).
func Uniform(n, d int, r float64, seed uint64) []geom.Point {
	rng := newRand(seed)
	return fill(n, d, func() float64 { return rng.Float64() * r })
}

// Gaussian draws n points with coordinates from N(0, sigma²).
func Gaussian(n, d int, sigma float64, seed uint64) []geom.Point {
	rng := newRand(seed)
	return fill(n, d, func() float64 { return rng.NormFloat64() * sigma })
}

// Lognormal draws n points with coordinates exp(N(0, sigma²)).
func Lognormal(n, d int, sigma float64, seed uint64) []geom.Point {
	rng := newRand(seed)
	return fill(n, d, func() float64 { return math.Exp(rng.NormFloat64() * sigma) })
}

// Clustered draws n points around clusters uniform centers in [0, 1)^d with
// gaussian spread.
func Clustered(n, d, clusters int, spread float64, seed uint64) []geom.Point {
	rng := newRand(seed)
	centers := fill(clusters, d, rng.Float64)

	flat := make([]float64, n*d)
	for i := 0; i < n; i++ {
		c := centers[rng.IntN(clusters)]
		for j := 0; j < d; j++ {
			flat[i*d+j] = c[j] + rng.NormFloat64()*spread
		}
	}
	return split(flat, d)
}

// Diagonal draws n points along the main diagonal of the unit cube, each
// coordinate offset by uniform noise in [-noise, noise].
func Diagonal(n, d int, noise float64, seed uint64) []geom.Point {
	rng := newRand(seed)

	flat := make([]float64, n*d)
	for i := 0; i < n; i++ {
		t := rng.Float64()
		for j := 0; j < d; j++ {
			flat[i*d+j] = t + (rng.Float64()*2-1)*noise
		}
	}
	return split(flat, d)
}
