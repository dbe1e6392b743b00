package geomkernel

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultMaxSagitta is the chord-deviation bound §4.1 requires of any curve
// densified for export: 0.15m (6 in).
const DefaultMaxSagitta = 0.15

// maxCircumradius: point triples whose circumscribed circle exceeds this
// radius are treated as collinear, per §4.1's "R > 10^8" escape hatch.
const maxCircumradius = 1e8

// Densify subdivides g so that every original triple of consecutive
// vertices whose circumscribed-circle arc deviates from its chord by more
// than maxSagitta gains interpolated points lying on that circle, per
// §4.1's curve-densification contract. Collinear triples (or those with an
// absurdly large circumradius) are left unchanged. Points pass through
// untouched.
func Densify(g orb.Geometry, maxSagitta float64) orb.Geometry {
	if maxSagitta <= 0 {
		maxSagitta = DefaultMaxSagitta
	}
	switch v := g.(type) {
	case orb.Point, orb.MultiPoint:
		return g
	case orb.LineString:
		return densifyOpen(v, maxSagitta)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, l := range v {
			out[i] = densifyOpen(l, maxSagitta)
		}
		return out
	case orb.Ring:
		return orb.Ring(densifyClosed(orb.LineString(v), maxSagitta))
	case orb.Polygon:
		return densifyPolygon(v, maxSagitta)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = densifyPolygon(p, maxSagitta)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(v))
		for i, e := range v {
			out[i] = Densify(e, maxSagitta)
		}
		return out
	default:
		return g
	}
}

func densifyPolygon(p orb.Polygon, maxSagitta float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = orb.Ring(densifyClosed(orb.LineString(r), maxSagitta))
	}
	return out
}

// densifyOpen densifies a non-closed polyline: each segment p[i]->p[i+1]
// is fitted with the circle through p[i], p[i+1], p[i+2]; the last segment
// has no p[i+2] and is left as a straight chord.
func densifyOpen(pts orb.LineString, maxSagitta float64) orb.LineString {
	if len(pts) < 3 {
		return pts
	}
	result := orb.LineString{pts[0]}
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		if i+2 < len(pts) {
			if seg, ok := densifySegment(p0, p1, pts[i+2], maxSagitta); ok {
				result = append(result, seg[1:]...)
				continue
			}
		}
		result = append(result, p1)
	}
	return result
}

// densifyClosed densifies a closed ring, wrapping the triple window around
// the seam so curvature is preserved across the closing edge.
func densifyClosed(pts orb.LineString, maxSagitta float64) orb.LineString {
	n := len(pts)
	if n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
		n--
	}
	if n < 3 {
		return append(orb.LineString{}, pts...)
	}
	result := orb.LineString{pts[0]}
	for i := 0; i < n; i++ {
		p0 := pts[i]
		p1 := pts[(i+1)%n]
		p2 := pts[(i+2)%n]
		if seg, ok := densifySegment(p0, p1, p2, maxSagitta); ok {
			result = append(result, seg[1:]...)
		} else {
			result = append(result, p1)
		}
	}
	// close the ring
	result = append(result, result[0])
	return result
}

// densifySegment fits the circumscribed circle of (p0,p1,p2) and, if valid,
// returns p0..p1 subdivided so the sagitta bound holds.
func densifySegment(p0, p1, p2 orb.Point, maxSagitta float64) (orb.LineString, bool) {
	cx, cy, r, ok := circumcircle(p0, p1, p2)
	if !ok || r > maxCircumradius {
		return nil, false
	}
	center := orb.Point{cx, cy}
	return subdivideArc(p0, p1, center, r, maxSagitta), true
}

// circumcircle returns the center and radius of the circle through three
// points. ok is false when the points are (numerically) collinear.
func circumcircle(a, b, c orb.Point) (cx, cy, r float64, ok bool) {
	ax, ay := a[0], a[1]
	bx, by := b[0], b[1]
	ccx, ccy := c[0], c[1]

	d := 2 * (ax*(by-ccy) + bx*(ccy-ay) + ccx*(ay-by))
	if math.Abs(d) < 1e-9 {
		return 0, 0, 0, false
	}

	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := ccx*ccx + ccy*ccy

	ux := (a2*(by-ccy) + b2*(ccy-ay) + c2*(ay-by)) / d
	uy := (a2*(ccx-bx) + b2*(ax-ccx) + c2*(bx-ax)) / d

	r = math.Hypot(ax-ux, ay-uy)
	return ux, uy, r, true
}

// subdivideArc recursively splits the arc from p0 to p1 (on the circle
// centered at center with radius r) until the sagitta between each chord
// and its arc is at most maxSagitta. Returns the full point sequence from
// p0 to p1 inclusive.
func subdivideArc(p0, p1, center orb.Point, r, maxSagitta float64) orb.LineString {
	halfChord := math.Hypot(p1[0]-p0[0], p1[1]-p0[1]) / 2
	if halfChord > r {
		halfChord = r
	}
	sagitta := r - math.Sqrt(math.Max(0, r*r-halfChord*halfChord))
	if sagitta <= maxSagitta {
		return orb.LineString{p0, p1}
	}

	mid := arcMidpoint(p0, p1, center, r)
	left := subdivideArc(p0, mid, center, r, maxSagitta)
	right := subdivideArc(mid, p1, center, r, maxSagitta)
	return append(left[:len(left)-1], right...)
}

// arcMidpoint returns the point on the circle (center, r) angularly midway
// between p0 and p1, taking the shorter angular path between them.
func arcMidpoint(p0, p1, center orb.Point, r float64) orb.Point {
	a0 := math.Atan2(p0[1]-center[1], p0[0]-center[0])
	a1 := math.Atan2(p1[1]-center[1], p1[0]-center[0])
	da := a1 - a0
	for da > math.Pi {
		da -= 2 * math.Pi
	}
	for da <= -math.Pi {
		da += 2 * math.Pi
	}
	mid := a0 + da/2
	return orb.Point{center[0] + r*math.Cos(mid), center[1] + r*math.Sin(mid)}
}
