package ifindex

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/learnedbench/geom"
)

// strPack groups point positions into leaves of at most capacity points with
// the Sort-Tile-Recursive rule: sort by one dimension, cut into vertical slabs
// of whole leaves, recurse on the next dimension inside every slab. The last
// dimension is cut directly into leaves.
func strPack(points []geom.Point, capacity int) [][]int {
	ids := make([]int, len(points))
	for i := range ids {
		ids[i] = i
	}
	var leaves [][]int
	tile(points, ids, 0, capacity, &leaves)
	return leaves
}

func tile(points []geom.Point, ids []int, d, capacity int, leaves *[][]int) {
	dim := len(points[0])
	slices.SortStableFunc(ids, func(a, b int) int { return cmp.Compare(points[a][d], points[b][d]) })

	if d == dim-1 || len(ids) <= capacity {
		for start := 0; start < len(ids); start += capacity {
			end := min(start+capacity, len(ids))
			*leaves = append(*leaves, slices.Clone(ids[start:end]))
		}
		return
	}

	pages := (len(ids) + capacity - 1) / capacity
	slabs := int(math.Ceil(math.Pow(float64(pages), 1/float64(dim-d))))
	slabSize := ((pages + slabs - 1) / slabs) * capacity

	for start := 0; start < len(ids); start += slabSize {
		end := min(start+slabSize, len(ids))
		tile(points, ids[start:end], d+1, capacity, leaves)
	}
}
