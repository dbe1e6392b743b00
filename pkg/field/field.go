package field

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
	"github.com/cornmazecad/engine/pkg/projection"
)

// MinAreaM2 and MaxAreaM2 are the field-area bounds §4.3/§3 require: 1000
// m^2 to 10 km^2.
const (
	MinAreaM2 = 1000
	MaxAreaM2 = 1e7
)

// Field is the authoritative field boundary: an exterior ring plus any
// number of interior rings (obstacles), already projected and centered
// about its own bounds (§3, §4.2). Immutable for the lifetime of a
// session; replacing it is the caller's job (see pkg/session), which also
// resets every piece of state derived from the old field.
type Field struct {
	Exterior orb.Ring
	Holes    []orb.Ring
	CRS      string
	Offset   projection.Offset
}

// Warning is a non-fatal note attached to a successful Import (§7): things
// like "counter-clockwise ring" or "multi-polygon keeping largest" that
// don't block the import but are worth surfacing.
type Warning struct {
	Message string
}

// ImportResult bundles an imported Field with any warnings raised while
// importing it.
type ImportResult struct {
	Field    Field
	Warnings []Warning
}

// Polygon reconstructs the orb.Polygon (exterior ring + holes) backing f.
func (f Field) Polygon() orb.Polygon {
	rings := make(orb.Polygon, 0, 1+len(f.Holes))
	rings = append(rings, f.Exterior)
	rings = append(rings, f.Holes...)
	return rings
}

// WKT encodes f's polygon.
func (f Field) WKT() geomkernel.WKT {
	return geomkernel.FromOrb(f.Polygon())
}

// Area returns f's area in square metres.
func (f Field) Area(k *geomkernel.Kernel) (float64, error) {
	return k.Area(f.WKT())
}

// Import validates and centers geom into a Field, per §4.3. geom is
// expected to already be projected into a metric CRS (see pkg/projection);
// crs is recorded on the result as-is. geom must be an orb.Polygon or
// orb.MultiPolygon — any other geometry, including a closed LineString
// that merely looks like a polygon, is rejected with InvalidInput; the
// caller is expected to offer ring-to-polygon conversion and retry rather
// than have Import guess the intent.
func Import(geom orb.Geometry, crs string, k *geomkernel.Kernel) (ImportResult, error) {
	var warnings []Warning

	poly, warn, err := asPolygon(geom, k)
	if err != nil {
		return ImportResult{}, err
	}
	if warn != "" {
		warnings = append(warnings, Warning{Message: warn})
	}

	wkt := geomkernel.FromOrb(poly)
	if !k.IsValid(wkt) {
		repaired, rerr := k.Repair(wkt)
		if rerr != nil {
			return ImportResult{}, engineerr.New("field.Import", engineerr.InvalidInput, rerr)
		}
		g, derr := geomkernel.ToOrb(repaired)
		if derr != nil {
			return ImportResult{}, engineerr.New("field.Import", engineerr.InvalidInput, derr)
		}
		p, ok := g.(orb.Polygon)
		if !ok {
			return ImportResult{}, engineerr.Newf("field.Import", engineerr.InvalidInput,
				"repaired field geometry is not a polygon (got %T)", g)
		}
		poly, wkt = p, geomkernel.FromOrb(p)
	}

	if k.IsEmpty(wkt) {
		return ImportResult{}, engineerr.Newf("field.Import", engineerr.InvalidInput, "field geometry is empty")
	}

	area, err := k.Area(wkt)
	if err != nil {
		return ImportResult{}, engineerr.New("field.Import", engineerr.GeometricFailure, err)
	}
	if area < MinAreaM2 || area > MaxAreaM2 {
		return ImportResult{}, engineerr.Newf("field.Import", engineerr.InvalidInput,
			"field area %.1f m^2 outside [%.0f, %.0f]", area, MinAreaM2, MaxAreaM2)
	}

	if len(poly) > 0 && signedArea(poly[0]) < 0 {
		warnings = append(warnings, Warning{Message: "exterior ring is clockwise, expected counter-clockwise"})
	}

	centered, off := projection.CenterAboutBounds(poly)
	cp := centered.(orb.Polygon)

	f := Field{
		Exterior: cp[0],
		Holes:    cp[1:],
		CRS:      crs,
		Offset:   off,
	}
	return ImportResult{Field: f, Warnings: warnings}, nil
}

// asPolygon accepts an orb.Polygon directly, reduces an orb.MultiPolygon to
// its largest member by area (with a warning), or rejects any other
// geometry type.
func asPolygon(geom orb.Geometry, k *geomkernel.Kernel) (orb.Polygon, string, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		return g, "", nil
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, "", engineerr.Newf("field.Import", engineerr.InvalidInput, "empty multipolygon")
		}
		best := g[0]
		bestArea, err := k.Area(geomkernel.FromOrb(best))
		if err != nil {
			return nil, "", engineerr.New("field.Import", engineerr.GeometricFailure, err)
		}
		for _, p := range g[1:] {
			a, err := k.Area(geomkernel.FromOrb(p))
			if err != nil {
				return nil, "", engineerr.New("field.Import", engineerr.GeometricFailure, err)
			}
			if a > bestArea {
				best, bestArea = p, a
			}
		}
		return best, "multi-polygon field: kept the largest ring by area, discarded the rest", nil
	default:
		return nil, "", engineerr.Newf("field.Import", engineerr.InvalidInput,
			"field geometry must be a polygon or multi-polygon, got %T", geom)
	}
}

// signedArea is the shoelace-formula signed area of ring: positive for a
// counter-clockwise ring, negative for clockwise.
func signedArea(ring orb.Ring) float64 {
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
	return sum / 2
}
