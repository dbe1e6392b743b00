package livevalidate

import (
	"math"

	"github.com/paulmach/orb"
)

// nearestPoints returns the closest pair of points between two
// LineStrings and their distance, by brute-force segment comparison. This
// duplicates pkg/constraints's helper of the same shape rather than
// introduce a cross-package dependency for a few lines of math.
func nearestPoints(a, b orb.LineString) (orb.Point, orb.Point, float64) {
	best := math.Inf(1)
	var bestA, bestB orb.Point
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			pa, pb, d := nearestBetweenSegments(a[i], a[i+1], b[j], b[j+1])
			if d < best {
				best, bestA, bestB = d, pa, pb
			}
		}
	}
	return bestA, bestB, best
}

func nearestBetweenSegments(p1, p2, p3, p4 orb.Point) (orb.Point, orb.Point, float64) {
	const samples = 20
	best := math.Inf(1)
	var bestA, bestB orb.Point
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		pa := lerp(p1, p2, t)
		pb, d := closestPointOnSegment(pa, p3, p4)
		if d < best {
			best, bestA, bestB = d, pa, pb
		}
	}
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		pb := lerp(p3, p4, t)
		pa, d := closestPointOnSegment(pb, p1, p2)
		if d < best {
			best, bestA, bestB = d, pa, pb
		}
	}
	return bestA, bestB, best
}

func closestPointOnSegment(p, a, b orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	var t float64
	if lenSq > 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	closest := orb.Point{a[0] + t*dx, a[1] + t*dy}
	return closest, math.Hypot(p[0]-closest[0], p[1]-closest[1])
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

func midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// boundCenter approximates a geometry's location with its bounding-box
// center, used whenever a violation needs a single representative point
// and no more precise location (intersection centroid, nearest-point
// midpoint) applies.
func boundCenter(g orb.Geometry) orb.Point {
	b := g.Bound()
	return orb.Point{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2}
}
