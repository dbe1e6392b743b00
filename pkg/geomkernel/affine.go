package geomkernel

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ToOrb decodes a WKT string into an orb.Geometry.
func ToOrb(w WKT) (orb.Geometry, error) {
	g, err := wkt.UnmarshalString(string(w))
	if err != nil {
		return nil, newError("to_orb", "decode WKT: %v", err)
	}
	return g, nil
}

// FromOrb encodes an orb.Geometry as WKT.
func FromOrb(g orb.Geometry) WKT {
	return WKT(wkt.MarshalString(g))
}

// Centroid returns the arithmetic mean of a ring's vertices (excluding the
// closing duplicate), used as the pivot for the row generator's
// rotations. This is a vertex average, not an area-weighted centroid; it is
// the cheap pivot used by §4.4's "rotate about its centroid" step.
func Centroid(ring orb.Ring) orb.Point {
	pts := ring
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}

// RotatePoint rotates p about pivot by degrees counter-clockwise-positive in
// a standard math frame. The row generator passes its clockwise-from-north
// planting bearing unconverted: it rotates the working area by +bearing and
// the vertical scan lines back by -bearing, which leaves rows at that bearing.
func RotatePoint(p, pivot orb.Point, degrees float64) orb.Point {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx, dy := p[0]-pivot[0], p[1]-pivot[1]
	return orb.Point{
		pivot[0] + dx*cos - dy*sin,
		pivot[1] + dx*sin + dy*cos,
	}
}

// TranslatePoint offsets p by (dx, dy).
func TranslatePoint(p orb.Point, dx, dy float64) orb.Point {
	return orb.Point{p[0] + dx, p[1] + dy}
}

// RotateGeometry rotates every coordinate of g about pivot by degrees.
func RotateGeometry(g orb.Geometry, pivot orb.Point, degrees float64) orb.Geometry {
	return mapPoints(g, func(p orb.Point) orb.Point { return RotatePoint(p, pivot, degrees) })
}

// TranslateGeometry offsets every coordinate of g by (dx, dy).
func TranslateGeometry(g orb.Geometry, dx, dy float64) orb.Geometry {
	return mapPoints(g, func(p orb.Point) orb.Point { return TranslatePoint(p, dx, dy) })
}

// ScaleGeometry scales every coordinate of g about origin by factor. Used by
// text-glyph and SVG-path carve intents to resize rendered geometry to a
// requested physical size (§4.5).
func ScaleGeometry(g orb.Geometry, factor float64) orb.Geometry {
	return mapPoints(g, func(p orb.Point) orb.Point { return orb.Point{p[0] * factor, p[1] * factor} })
}

// Bound returns the axis-aligned bounding box of g.
func Bound(g orb.Geometry) orb.Bound {
	return g.Bound()
}

func mapPoints(g orb.Geometry, fn func(orb.Point) orb.Point) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		return fn(v)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(v))
		for i, p := range v {
			out[i] = fn(p)
		}
		return out
	case orb.LineString:
		return mapLineString(v, fn)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, l := range v {
			out[i] = mapLineString(l, fn)
		}
		return out
	case orb.Ring:
		return orb.Ring(mapLineString(orb.LineString(v), fn))
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			out[i] = orb.Ring(mapLineString(orb.LineString(r), fn))
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = mapPoints(p, fn).(orb.Polygon)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(v))
		for i, e := range v {
			out[i] = mapPoints(e, fn)
		}
		return out
	default:
		return g
	}
}

func mapLineString(l orb.LineString, fn func(orb.Point) orb.Point) orb.LineString {
	out := make(orb.LineString, len(l))
	for i, p := range l {
		out[i] = fn(p)
	}
	return out
}
