package kmeans

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/hupe1980/learnedbench/geom"
)

// ErrNotEnoughPoints is returned when there are fewer points than clusters.
var ErrNotEnoughPoints = errors.New("kmeans: fewer points than clusters")

// Result holds the trained centers and the final nearest-center assignment.
type Result struct {
	Centers    []geom.Point
	Assign     []int
	Iterations int
}

// Train clusters points into k groups using k-means++ seeding followed by Lloyd
// iterations. The same seed always produces the same result.
func Train(ctx context.Context, points []geom.Point, k int, seed int64, maxIter int) (*Result, error) {
	n := len(points)
	if k <= 0 || n < k {
		return nil, ErrNotEnoughPoints
	}
	dim := len(points[0])
	rng := rand.New(rand.NewSource(seed))

	centers := seedCenters(points, k, rng)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	counts := make([]int, k)
	sums := make([]float64, k*dim)

	iter := 0
	for ; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false

		// Assignment step
		for i, p := range points {
			best, _ := Nearest(p, centers)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		clear(sums)
		clear(counts)
		for i, p := range points {
			c := assign[i]
			for d, v := range p {
				sums[c*dim+d] += v
			}
			counts[c]++
		}

		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Re-seed an empty cluster from a random point.
				copy(centers[j], points[rng.Intn(n)])
				continue
			}
			scale := 1 / float64(counts[j])
			for d := 0; d < dim; d++ {
				centers[j][d] = sums[j*dim+d] * scale
			}
		}
	}

	// The loop may stop on the iteration cap, so assign once more against the
	// final centers.
	for i, p := range points {
		assign[i], _ = Nearest(p, centers)
	}

	return &Result{Centers: centers, Assign: assign, Iterations: iter}, nil
}

// seedCenters picks k initial centers with the k-means++ rule.
func seedCenters(points []geom.Point, k int, rng *rand.Rand) []geom.Point {
	n := len(points)
	centers := make([]geom.Point, 0, k)
	centers = append(centers, points[rng.Intn(n)].Clone())

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = geom.SquaredDist(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, v := range d2 {
			total += v
		}

		next := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			for i, v := range d2 {
				target -= v
				if target <= 0 && v > 0 {
					next = i
					break
				}
			}
		}

		c := points[next].Clone()
		centers = append(centers, c)
		for i, p := range points {
			if d := geom.SquaredDist(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centers
}

// Nearest returns the index of the center closest to p and the distance to it.
// Ties go to the lower index.
func Nearest(p geom.Point, centers []geom.Point) (int, float64) {
	best := -1
	minDist := math.Inf(1)
	for j, c := range centers {
		if d := geom.SquaredDist(p, c); d < minDist {
			minDist = d
			best = j
		}
	}
	return best, math.Sqrt(minDist)
}
