// Package rect converts boxes and points to rtreego rectangles.
//
// rtreego rejects zero extents and treats rectangles that only touch as
// disjoint, so every rectangle is grown by one ulp on each side. Callers
// filter the tree's answers exactly afterwards.
package rect

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/hupe1980/learnedbench/geom"
)

// FromBox returns b grown by one ulp per side.
func FromBox(b geom.Box) (rtreego.Rect, error) {
	return fromCorners(b.Min, b.Max)
}

// FromPoint returns the rectangle of p grown by one ulp per side.
func FromPoint(p geom.Point) (rtreego.Rect, error) {
	return fromCorners(p, p)
}

func fromCorners(min, max geom.Point) (rtreego.Rect, error) {
	lo := make(rtreego.Point, len(min))
	hi := make(rtreego.Point, len(max))
	for i := range lo {
		lo[i] = math.Nextafter(min[i], math.Inf(-1))
		hi[i] = math.Nextafter(max[i], math.Inf(1))
	}
	r, err := rtreego.NewRectFromPoints(lo, hi)
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("rect: %w", err)
	}
	return r, nil
}
