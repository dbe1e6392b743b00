package carve

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// MinPolygonAreaM2 is the minimum area (after repair) a closed-polygon
// carve intent may have, per §4.5.
const MinPolygonAreaM2 = 0.1

// ClosedPolygon is a ring of >=3 points explicitly flagged as a closed
// shape; its eraser is the polygon itself after validity repair.
type ClosedPolygon struct {
	Ring orb.Ring
}

func (ClosedPolygon) Kind() Kind { return KindClosedPolygon }

func (c ClosedPolygon) Build(k *geomkernel.Kernel) (Built, error) {
	if len(c.Ring) < 3 {
		return Built{}, engineerr.Newf("carve.ClosedPolygon", engineerr.InvalidInput, "closed polygon needs >= 3 points, got %d", len(c.Ring))
	}

	ring := c.Ring
	if ring[0] != ring[len(ring)-1] {
		ring = append(append(orb.Ring{}, ring...), ring[0])
	}
	poly := orb.Polygon{ring}
	wkt := geomkernel.FromOrb(poly)

	if !k.IsValid(wkt) {
		repaired, err := k.Repair(wkt)
		if err != nil {
			return Built{}, engineerr.New("carve.ClosedPolygon", engineerr.InvalidInput, err)
		}
		wkt = repaired
	}

	area, err := k.Area(wkt)
	if err != nil {
		return Built{}, engineerr.New("carve.ClosedPolygon", engineerr.GeometricFailure, err)
	}
	if area < MinPolygonAreaM2 {
		return Built{}, engineerr.Newf("carve.ClosedPolygon", engineerr.InvalidInput,
			"closed polygon area %g m^2 below minimum %g m^2", area, MinPolygonAreaM2)
	}

	eraser, err := geomkernel.ToOrb(wkt)
	if err != nil {
		return Built{}, engineerr.New("carve.ClosedPolygon", engineerr.GeometricFailure, err)
	}
	return Built{Eraser: eraser}, nil
}
