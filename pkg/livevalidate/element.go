package livevalidate

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// ElementKind is the shape family of a pending design element, per §4.7.
type ElementKind int

const (
	KindPath ElementKind = iota
	KindPolygon
	KindText
	KindClipart
	KindCircle
	KindRectangle
	KindLine
	KindArc
)

// PendingElement is one not-yet-carved design element awaiting validation.
// Its geometry must resolve identically to what the carve engine would
// apply: closed kinds and text/clipart resolve to raw polygons; open
// strokes resolve to their centerline buffered by Width/2 with round caps.
type PendingElement struct {
	ID       string
	Kind     ElementKind
	Points   []orb.Point
	Width    float64
	Closed   bool
	Rotation float64 // degrees, applied about the point centroid before resolving geometry
}

// isPolygonal reports whether e resolves to a raw polygon rather than a
// buffered centerline.
func (e PendingElement) isPolygonal() bool {
	switch e.Kind {
	case KindPolygon, KindText, KindClipart, KindCircle, KindRectangle:
		return true
	default:
		return e.Closed
	}
}

// centerline is the element's raw, un-buffered geometry: the shape e
// would carve if it were a stroke (for pairwise centerline-crossing
// checks) or the polygon itself for closed kinds.
func (e PendingElement) centerline() (orb.Geometry, error) {
	pts := e.rotatedPoints()
	if e.isPolygonal() {
		ring := make(orb.Ring, len(pts))
		copy(ring, pts)
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		return orb.Polygon{ring}, nil
	}
	if len(pts) < 2 {
		return nil, engineerr.Newf("livevalidate.PendingElement", engineerr.InvalidInput, "open element %q needs >= 2 points", e.ID)
	}
	return orb.LineString(pts), nil
}

// geometry resolves e to the geometry the carve engine would actually
// apply: the raw polygon for closed kinds, or the buffered centerline for
// open strokes.
func (e PendingElement) geometry(k *geomkernel.Kernel) (orb.Geometry, error) {
	line, err := e.centerline()
	if err != nil {
		return nil, err
	}
	if e.isPolygonal() {
		return line, nil
	}
	if e.Width <= 0 {
		return nil, engineerr.Newf("livevalidate.PendingElement", engineerr.InvalidInput, "open element %q needs width > 0", e.ID)
	}
	opts := geomkernel.InternalBufferOptions(geomkernel.CapRound, geomkernel.JoinRound)
	bufferedWKT, err := k.Buffer(geomkernel.FromOrb(line), e.Width/2, opts)
	if err != nil {
		return nil, engineerr.New("livevalidate.PendingElement", engineerr.GeometricFailure, err)
	}
	return geomkernel.ToOrb(bufferedWKT)
}

func (e PendingElement) rotatedPoints() []orb.Point {
	if e.Rotation == 0 || len(e.Points) == 0 {
		return e.Points
	}
	pivot := centroidOfPoints(e.Points)
	out := make([]orb.Point, len(e.Points))
	for i, p := range e.Points {
		out[i] = geomkernel.RotatePoint(p, pivot, e.Rotation)
	}
	return out
}

func centroidOfPoints(pts []orb.Point) orb.Point {
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	if n == 0 {
		return orb.Point{}
	}
	return orb.Point{sx / n, sy / n}
}
