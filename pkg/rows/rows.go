package rows

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Config is the row generator's input tuple per §4.4.
type Config struct {
	SpacingM       float64 // row_spacing, must be > 0
	DirectionDeg   float64 // planting direction; 0 = north, 90 = east
	HeadlandInsetM float64 // >= 0
}

// Generate lays the standing-row multi-polyline for f per §4.4's
// rotate/scan/union/rotate-back/clip algorithm:
//  1. buffer the field inward by the headland inset to get the working area
//  2. rotate the working area by direction_deg about its own centroid
//  3. scan a family of vertical lines across the rotated bound, clipped to
//     the rotated working area
//  4. union the clipped segments, rotate back about the same centroid
//  5. clip once more against the (unrotated) working area to remove any
//     numerical overshoot
//
// The row count is deterministic given the same field and cfg.
func Generate(f field.Field, cfg Config, k *geomkernel.Kernel) (orb.MultiLineString, error) {
	if cfg.SpacingM <= 0 {
		return nil, engineerr.Newf("rows.Generate", engineerr.InvalidInput, "row spacing must be > 0, got %g", cfg.SpacingM)
	}
	if cfg.HeadlandInsetM < 0 {
		return nil, engineerr.Newf("rows.Generate", engineerr.InvalidInput, "headland inset must be >= 0, got %g", cfg.HeadlandInsetM)
	}

	working := f.Polygon()
	if cfg.HeadlandInsetM > 0 {
		insetWKT, err := k.Buffer(f.WKT(), -cfg.HeadlandInsetM, geomkernel.InternalBufferOptions(geomkernel.CapRound, geomkernel.JoinRound))
		if err != nil {
			return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
		}
		if k.IsEmpty(insetWKT) {
			return nil, engineerr.Newf("rows.Generate", engineerr.GeometricFailure, "headland inset of %gm consumed the entire field", cfg.HeadlandInsetM)
		}
		g, err := geomkernel.ToOrb(insetWKT)
		if err != nil {
			return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
		}
		p, err := largestPolygon(g)
		if err != nil {
			return nil, err
		}
		working = p
	}

	centroid := geomkernel.Centroid(working[0])
	rotated, ok := geomkernel.RotateGeometry(working, centroid, cfg.DirectionDeg).(orb.Polygon)
	if !ok {
		return nil, engineerr.Newf("rows.Generate", engineerr.GeometricFailure, "rotated working area is not a polygon")
	}
	rotatedWKT := geomkernel.FromOrb(rotated)
	bound := rotated.Bound()

	var segments []orb.Geometry
	for x := bound.Min[0]; x <= bound.Max[0]+cfg.SpacingM; x += cfg.SpacingM {
		line := orb.LineString{
			{x, bound.Min[1] - cfg.SpacingM},
			{x, bound.Max[1] + cfg.SpacingM},
		}
		clipped, err := k.Intersection(geomkernel.FromOrb(line), rotatedWKT)
		if err != nil {
			return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
		}
		if k.IsEmpty(clipped) {
			continue
		}
		g, err := geomkernel.ToOrb(clipped)
		if err != nil {
			return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
		}
		segments = append(segments, g)
	}

	unioned, err := unionAll(segments, k)
	if err != nil {
		return nil, err
	}

	back := geomkernel.RotateGeometry(unioned, centroid, -cfg.DirectionDeg)
	final, err := k.Intersection(geomkernel.FromOrb(back), geomkernel.FromOrb(working))
	if err != nil {
		return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
	}
	g, err := geomkernel.ToOrb(final)
	if err != nil {
		return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
	}
	return toMultiLineString(g), nil
}

// largestPolygon reduces a buffer result to its largest ring by area,
// matching the field import rule for a MultiPolygon headland inset.
func largestPolygon(g orb.Geometry) (orb.Polygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return v, nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return nil, engineerr.Newf("rows.Generate", engineerr.GeometricFailure, "headland buffer produced an empty multipolygon")
		}
		best := v[0]
		bestArea := ringArea(best[0])
		for _, p := range v[1:] {
			if a := ringArea(p[0]); a > bestArea {
				best, bestArea = p, a
			}
		}
		return best, nil
	default:
		return nil, engineerr.Newf("rows.Generate", engineerr.GeometricFailure, "headland buffer produced a non-polygon result (%T)", g)
	}
}

func ringArea(ring orb.Ring) float64 {
	pts := ring
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

func unionAll(geoms []orb.Geometry, k *geomkernel.Kernel) (orb.Geometry, error) {
	if len(geoms) == 0 {
		return orb.MultiLineString{}, nil
	}
	acc := geomkernel.FromOrb(geoms[0])
	for _, g := range geoms[1:] {
		u, err := k.Union(acc, geomkernel.FromOrb(g))
		if err != nil {
			return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
		}
		acc = u
	}
	out, err := geomkernel.ToOrb(acc)
	if err != nil {
		return nil, engineerr.New("rows.Generate", engineerr.GeometricFailure, err)
	}
	return out, nil
}

func toMultiLineString(g orb.Geometry) orb.MultiLineString {
	switch v := g.(type) {
	case orb.LineString:
		return orb.MultiLineString{v}
	case orb.MultiLineString:
		return v
	case orb.Collection:
		var out orb.MultiLineString
		for _, e := range v {
			out = append(out, toMultiLineString(e)...)
		}
		return out
	default:
		return orb.MultiLineString{}
	}
}
