package partition

import (
	"math"

	"github.com/hupe1980/learnedbench/geom"
)

// Grid is one cut table per dimension, addressed in raster order.
type Grid struct {
	cuts   []Cuts
	layout Layout
}

// NewGrid builds a grid from per-dimension cuts. All tables must have the same K.
func NewGrid(cuts []Cuts) (*Grid, error) {
	l, err := NewLayout(cuts[0].K(), len(cuts))
	if err != nil {
		return nil, err
	}
	return &Grid{cuts: cuts, layout: l}, nil
}

// Cuts returns the cut table of dimension d.
func (g *Grid) Cuts(d int) Cuts { return g.cuts[d] }

// Layout returns the raster layout.
func (g *Grid) Layout() Layout { return g.layout }

// Cell writes the per-dimension bucket of p into idx and returns the cell id.
func (g *Grid) Cell(p geom.Point, idx []int) int {
	id := 0
	for d, c := range g.cuts {
		i := c.Index(p[d])
		idx[d] = i
		id += i * g.layout.offsets[d]
	}
	return id
}

// Ranges returns the cell id ranges that cover box.
func (g *Grid) Ranges(box geom.Box, maxRanges int) []Range {
	lo := make([]int, len(g.cuts))
	hi := make([]int, len(g.cuts))
	for d, c := range g.cuts {
		lo[d] = c.Index(box.Min[d])
		hi[d] = c.Index(box.Max[d])
	}
	return g.layout.Fold(lo, hi, maxRanges)
}

// Volume returns the scaled volume 10 * prod(100 * width) of a cell.
func (g *Grid) Volume(id int) float64 {
	vol := 10.0
	for d, c := range g.cuts {
		i := (id / g.layout.offsets[d]) % g.layout.k
		vol *= 100 * c.Width(i)
	}
	return vol
}

// BoundaryDist returns the distance from q to the nearest face of its cell. It
// is zero or negative when q lies on a face or outside the grid.
func (g *Grid) BoundaryDist(q geom.Point) float64 {
	r := math.Inf(1)
	for d, c := range g.cuts {
		i := c.Index(q[d])
		r = math.Min(r, q[d]-c.Lower(i))
		r = math.Min(r, c.Upper(i)-q[d])
	}
	return r
}

// MinWidth returns the smallest data extent over all dimensions.
func (g *Grid) MinWidth() float64 {
	w := math.Inf(1)
	for _, c := range g.cuts {
		w = math.Min(w, c[len(c)-1]-c[0])
	}
	return w
}

// SizeBytes returns the memory held by the cut tables.
func (g *Grid) SizeBytes() int {
	n := 0
	for _, c := range g.cuts {
		n += len(c) * 8
	}
	return n + len(g.layout.offsets)*8
}
