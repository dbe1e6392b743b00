package carve

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Stroke is an ordered polyline of >=2 points carved at a fixed width.
// Its eraser is a smooth round-capped buffer of the polyline by half its
// width, per §4.5.
type Stroke struct {
	Points []orb.Point
	Width  float64 // > 0
}

func (Stroke) Kind() Kind { return KindStroke }

func (s Stroke) Build(k *geomkernel.Kernel) (Built, error) {
	if len(s.Points) < 2 {
		return Built{}, engineerr.Newf("carve.Stroke", engineerr.InvalidInput, "stroke needs >= 2 points, got %d", len(s.Points))
	}
	if s.Width <= 0 {
		return Built{}, engineerr.Newf("carve.Stroke", engineerr.InvalidInput, "stroke width must be > 0, got %g", s.Width)
	}

	line := orb.LineString(s.Points)
	opts := geomkernel.ExportBufferOptions(geomkernel.CapRound, geomkernel.JoinRound)
	eraserWKT, err := k.Buffer(geomkernel.FromOrb(line), s.Width/2, opts)
	if err != nil {
		return Built{}, engineerr.New("carve.Stroke", engineerr.GeometricFailure, err)
	}
	eraser, err := geomkernel.ToOrb(eraserWKT)
	if err != nil {
		return Built{}, engineerr.New("carve.Stroke", engineerr.GeometricFailure, err)
	}

	return Built{
		Eraser: eraser,
		Path:   &PathRecord{Points: append([]orb.Point(nil), s.Points...), Width: s.Width},
	}, nil
}
