package projection

import (
	"fmt"
	"math"

	"github.com/im7mortal/UTM"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// DetectUTMZone implements detect_utm_zone(lon): zone = clamp(floor((lon +
// 180) / 6) + 1, 1, 60).
func DetectUTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	switch {
	case zone < 1:
		return 1
	case zone > 60:
		return 60
	default:
		return zone
	}
}

// UTMCRS implements utm_crs(zone, northern): EPSG code = (northern ? 32600 :
// 32700) + zone.
func UTMCRS(zone int, northern bool) string {
	base := 32700
	if northern {
		base = 32600
	}
	return fmt.Sprintf("EPSG:%d", base+zone)
}

// Offset is a centering translation: subtracting it moves a geometry to
// the engine's origin-relative working frame, adding it back recovers the
// pre-centering position.
type Offset struct {
	DX, DY float64
}

// Zone identifies the UTM zone and hemisphere-band letter a geometry was
// projected into. ZoneLetter is the MGRS latitude-band letter UTM.ToLatLon
// needs to invert the projection; Northern is the simple hemisphere flag
// §4.2's EPSG arithmetic uses.
type Zone struct {
	Number     int
	ZoneLetter string
	Northern   bool
}

// CRS returns the EPSG identifier for z per §4.2.
func (z Zone) CRS() string {
	return UTMCRS(z.Number, z.Northern)
}

// ProjectToUTM implements project_to_utm(geom, source_crs): the UTM zone is
// picked from geom's centroid longitude, then every vertex is
// forward-projected. geom's coordinates are read as (x, y) = (lon, lat) in
// WGS84, per §4.2's axis-order requirement.
func ProjectToUTM(geom orb.Geometry) (orb.Geometry, Zone, error) {
	center, _ := planar.CentroidArea(geom)
	zoneNum := DetectUTMZone(center[0])
	northern := center[1] >= 0

	var zoneLetter string
	projected, err := mapCoords(geom, func(lon, lat float64) (float64, float64, error) {
		e, n, _, letter, err := UTM.FromLatLon(lat, lon, zoneNum, northern)
		if err != nil {
			return 0, 0, fmt.Errorf("project_to_utm: %w", err)
		}
		zoneLetter = letter
		return e, n, nil
	})
	if err != nil {
		return nil, Zone{}, err
	}

	return projected, Zone{Number: zoneNum, ZoneLetter: zoneLetter, Northern: northern}, nil
}

// UnprojectFromUTM reverses ProjectToUTM, recovering WGS84 (lon, lat)
// coordinates from UTM (easting, northing) in zone z.
func UnprojectFromUTM(geom orb.Geometry, z Zone) (orb.Geometry, error) {
	return mapCoords(geom, func(e, n float64) (float64, float64, error) {
		lat, lon, err := UTM.ToLatLon(e, n, z.Number, z.ZoneLetter)
		if err != nil {
			return 0, 0, fmt.Errorf("unproject_from_utm: %w", err)
		}
		return lon, lat, nil
	})
}

// CenterAboutBounds centers geom about the center of its own bounding box,
// per §4.2's "centered about the centroid of its projected bounds" rule.
// The returned Offset is what must be reapplied (via Uncenter) to recover
// geom's original projected position.
func CenterAboutBounds(geom orb.Geometry) (orb.Geometry, Offset) {
	center := geom.Bound().Center()
	off := Offset{DX: center[0], DY: center[1]}
	return geomkernel.TranslateGeometry(geom, -off.DX, -off.DY), off
}

// Uncenter reverses CenterAboutBounds.
func Uncenter(geom orb.Geometry, off Offset) orb.Geometry {
	return geomkernel.TranslateGeometry(geom, off.DX, off.DY)
}

// mapCoords applies fn to every coordinate pair of g, propagating the
// first error encountered. Structurally identical to geomkernel's internal
// point mapper, but threaded through an error-returning fn since UTM
// conversion can fail per-point (e.g. a point outside the fixed zone).
func mapCoords(g orb.Geometry, fn func(x, y float64) (float64, float64, error)) (orb.Geometry, error) {
	apply := func(p orb.Point) (orb.Point, error) {
		x, y, err := fn(p[0], p[1])
		if err != nil {
			return orb.Point{}, err
		}
		return orb.Point{x, y}, nil
	}

	switch v := g.(type) {
	case orb.Point:
		return apply(v)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(v))
		for i, p := range v {
			np, err := apply(p)
			if err != nil {
				return nil, err
			}
			out[i] = np
		}
		return out, nil
	case orb.LineString:
		return mapLineString(v, apply)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, l := range v {
			ml, err := mapLineString(l, apply)
			if err != nil {
				return nil, err
			}
			out[i] = ml
		}
		return out, nil
	case orb.Ring:
		ls, err := mapLineString(orb.LineString(v), apply)
		return orb.Ring(ls), err
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			ls, err := mapLineString(orb.LineString(r), apply)
			if err != nil {
				return nil, err
			}
			out[i] = orb.Ring(ls)
		}
		return out, nil
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			mp, err := mapCoords(p, fn)
			if err != nil {
				return nil, err
			}
			out[i] = mp.(orb.Polygon)
		}
		return out, nil
	case orb.Collection:
		out := make(orb.Collection, len(v))
		for i, e := range v {
			me, err := mapCoords(e, fn)
			if err != nil {
				return nil, err
			}
			out[i] = me
		}
		return out, nil
	default:
		return g, nil
	}
}

func mapLineString(l orb.LineString, apply func(orb.Point) (orb.Point, error)) (orb.LineString, error) {
	out := make(orb.LineString, len(l))
	for i, p := range l {
		np, err := apply(p)
		if err != nil {
			return nil, err
		}
		out[i] = np
	}
	return out, nil
}
