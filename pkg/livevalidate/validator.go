package livevalidate

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Kind enumerates the three §4.7 live checks.
type Kind int

const (
	WallWidthPairwise Kind = iota
	WallWidthCarved
	EdgeBufferKind
)

// Violation is one live-validation finding against a pending element or
// pair of pending elements.
type Violation struct {
	Kind        Kind
	ElementIDs  []string
	Message     string
	Location    orb.Point
	ActualValue float64
	Overlap     bool         // true when the elements actually intersect, not merely too close
	Highlight   orb.Geometry // nil when the check has no highlight region
}

// Validate runs the three §4.7 checks against pending, in the fixed order
// pairwise, vs-carved, edge-buffer. carvedAreaWKT may be empty (no carves
// yet).
func Validate(pending []PendingElement, carvedAreaWKT geomkernel.WKT, fld field.Field, cfg constraints.Config, k *geomkernel.Kernel) ([]Violation, error) {
	geoms := make([]orb.Geometry, len(pending))
	centerlines := make([]orb.Geometry, len(pending))
	for i, e := range pending {
		g, err := e.geometry(k)
		if err != nil {
			return nil, err
		}
		geoms[i] = g
		cl, err := e.centerline()
		if err != nil {
			return nil, err
		}
		centerlines[i] = cl
	}

	var out []Violation

	for i := 0; i < len(pending); i++ {
		for j := i + 1; j < len(pending); j++ {
			v, err := pairwiseCheck(pending[i], pending[j], geoms[i], geoms[j], centerlines[i], centerlines[j], cfg, k)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, *v)
			}
		}
	}

	if carvedAreaWKT != "" && !k.IsEmpty(carvedAreaWKT) {
		for i, e := range pending {
			v, err := carvedCheck(e, geoms[i], carvedAreaWKT, cfg, k)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, *v)
			}
		}
	}

	insetWKT, err := k.Buffer(fld.WKT(), -cfg.EdgeBuffer, geomkernel.InternalBufferOptions(geomkernel.CapRound, geomkernel.JoinRound))
	if err != nil {
		return nil, engineerr.New("livevalidate.Validate", engineerr.GeometricFailure, err)
	}
	for i, e := range pending {
		v, err := edgeCheck(e, geoms[i], fld, insetWKT, cfg, k)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, *v)
		}
	}

	return out, nil
}

func pairwiseCheck(a, b PendingElement, ga, gb, cla, clb orb.Geometry, cfg constraints.Config, k *geomkernel.Kernel) (*Violation, error) {
	aOpen, bOpen := !a.isPolygonal(), !b.isPolygonal()

	if aOpen && bOpen {
		la, aok := cla.(orb.LineString)
		lb, bok := clb.(orb.LineString)
		if !aok || !bok {
			return nil, engineerr.Newf("livevalidate.pairwiseCheck", engineerr.InvalidInput, "open elements must resolve to linestrings")
		}

		crosses, err := k.Intersects(geomkernel.FromOrb(la), geomkernel.FromOrb(lb))
		if err != nil {
			return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
		}
		if crosses {
			return nil, nil
		}

		_, _, centerDist := nearestPoints(la, lb)

		bufferedIntersect, err := k.Intersects(geomkernel.FromOrb(ga), geomkernel.FromOrb(gb))
		if err != nil {
			return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
		}
		if bufferedIntersect {
			if centerDist >= cfg.MinWallWidth {
				return nil, nil
			}
			interWKT, err := k.Intersection(geomkernel.FromOrb(ga), geomkernel.FromOrb(gb))
			if err != nil {
				return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
			}
			interGeom, err := geomkernel.ToOrb(interWKT)
			if err != nil {
				return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
			}
			return &Violation{
				Kind:        WallWidthPairwise,
				ElementIDs:  []string{a.ID, b.ID},
				Message:     fmt.Sprintf("walls %.2f m apart at their crossing, want at least %.2f m", centerDist, cfg.MinWallWidth),
				Location:    boundCenter(interGeom),
				ActualValue: centerDist,
				Overlap:     true,
				Highlight:   interGeom,
			}, nil
		}
		if centerDist < cfg.MinWallWidth {
			pa, pb, _ := nearestPoints(la, lb)
			return &Violation{
				Kind:        WallWidthPairwise,
				ElementIDs:  []string{a.ID, b.ID},
				Message:     fmt.Sprintf("walls only %.2f m apart, want at least %.2f m", centerDist, cfg.MinWallWidth),
				Location:    midpoint(pa, pb),
				ActualValue: centerDist,
			}, nil
		}
		return nil, nil
	}

	intersects, err := k.Intersects(geomkernel.FromOrb(ga), geomkernel.FromOrb(gb))
	if err != nil {
		return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
	}
	if intersects {
		return &Violation{
			Kind:       WallWidthPairwise,
			ElementIDs: []string{a.ID, b.ID},
			Message:    "elements overlap",
			Location:   boundCenter(ga),
			Overlap:    true,
		}, nil
	}

	dist, err := k.Distance(geomkernel.FromOrb(ga), geomkernel.FromOrb(gb))
	if err != nil {
		return nil, engineerr.New("livevalidate.pairwiseCheck", engineerr.GeometricFailure, err)
	}
	if dist < cfg.MinWallWidth {
		return &Violation{
			Kind:        WallWidthPairwise,
			ElementIDs:  []string{a.ID, b.ID},
			Message:     fmt.Sprintf("elements only %.2f m apart, want at least %.2f m", dist, cfg.MinWallWidth),
			Location:    boundCenter(ga),
			ActualValue: dist,
		}, nil
	}
	return nil, nil
}

func carvedCheck(e PendingElement, g orb.Geometry, carvedWKT geomkernel.WKT, cfg constraints.Config, k *geomkernel.Kernel) (*Violation, error) {
	gWKT := geomkernel.FromOrb(g)

	intersects, err := k.Intersects(gWKT, carvedWKT)
	if err != nil {
		return nil, engineerr.New("livevalidate.carvedCheck", engineerr.GeometricFailure, err)
	}
	if intersects {
		return &Violation{
			Kind:       WallWidthCarved,
			ElementIDs: []string{e.ID},
			Message:    "overlaps with existing carved path",
			Location:   boundCenter(g),
			Overlap:    true,
		}, nil
	}

	dist, err := k.Distance(gWKT, carvedWKT)
	if err != nil {
		return nil, engineerr.New("livevalidate.carvedCheck", engineerr.GeometricFailure, err)
	}
	if dist < cfg.MinWallWidth {
		return &Violation{
			Kind:        WallWidthCarved,
			ElementIDs:  []string{e.ID},
			Message:     fmt.Sprintf("only %.2f m from existing carved path, want at least %.2f m", dist, cfg.MinWallWidth),
			Location:    boundCenter(g),
			ActualValue: dist,
		}, nil
	}
	return nil, nil
}

func edgeCheck(e PendingElement, g orb.Geometry, fld field.Field, insetWKT geomkernel.WKT, cfg constraints.Config, k *geomkernel.Kernel) (*Violation, error) {
	gWKT := geomkernel.FromOrb(g)

	outsideWKT, err := k.Difference(gWKT, insetWKT)
	if err != nil {
		return nil, engineerr.New("livevalidate.edgeCheck", engineerr.GeometricFailure, err)
	}
	if k.IsEmpty(outsideWKT) {
		return nil, nil
	}

	dist, err := k.Distance(gWKT, geomkernel.FromOrb(fld.Exterior))
	if err != nil {
		return nil, engineerr.New("livevalidate.edgeCheck", engineerr.GeometricFailure, err)
	}
	outsideGeom, err := geomkernel.ToOrb(outsideWKT)
	if err != nil {
		return nil, engineerr.New("livevalidate.edgeCheck", engineerr.GeometricFailure, err)
	}
	return &Violation{
		Kind:        EdgeBufferKind,
		ElementIDs:  []string{e.ID},
		Message:     fmt.Sprintf("element comes within %.2f m of the field edge, want at least %.2f m", dist, cfg.EdgeBuffer),
		Location:    boundCenter(g),
		ActualValue: dist,
		Highlight:   outsideGeom,
	}, nil
}
