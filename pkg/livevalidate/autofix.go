package livevalidate

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// AutoFix is the single best-effort translate pass §4.7 describes. It does
// not re-validate internally and is explicitly heuristic: the same design
// may need several passes to converge, or may never converge. Callers
// observe the violation count after each run to decide whether to stop.
func AutoFix(pending []PendingElement, violations []Violation, fld field.Field, carvedAreaWKT geomkernel.WKT, cfg constraints.Config, k *geomkernel.Kernel) []PendingElement {
	byID := make(map[string]int, len(pending))
	fixed := make([]PendingElement, len(pending))
	copy(fixed, pending)
	for i, e := range fixed {
		byID[e.ID] = i
	}

	fieldCentroid := boundCenter(fld.Polygon())
	var carvedCentroid orb.Point
	haveCarved := carvedAreaWKT != "" && !k.IsEmpty(carvedAreaWKT)
	if haveCarved {
		if g, err := geomkernel.ToOrb(carvedAreaWKT); err == nil {
			carvedCentroid = boundCenter(g)
		}
	}

	for _, v := range violations {
		switch v.Kind {
		case EdgeBufferKind:
			applyEdgeBufferFix(&fixed, byID, v, fieldCentroid, cfg)
		case WallWidthPairwise:
			applyPairwiseFix(&fixed, byID, v, cfg)
		case WallWidthCarved:
			applyCarvedFix(&fixed, byID, v, carvedCentroid, cfg)
		}
	}
	return fixed
}

func applyEdgeBufferFix(fixed *[]PendingElement, byID map[string]int, v Violation, fieldCentroid orb.Point, cfg constraints.Config) {
	idx, ok := byID[v.ElementIDs[0]]
	if !ok {
		return
	}
	e := &(*fixed)[idx]
	center := centroidOfPoints(e.Points)
	dir, ok := unitTowards(center, fieldCentroid)
	if !ok {
		dir = orb.Point{1 / math.Sqrt2, 1 / math.Sqrt2}
	}
	dist := cfg.EdgeBuffer - v.ActualValue + 0.5
	translate(e, dir[0]*dist, dir[1]*dist)
}

func applyPairwiseFix(fixed *[]PendingElement, byID map[string]int, v Violation, cfg constraints.Config) {
	if len(v.ElementIDs) != 2 {
		return
	}
	i1, ok1 := byID[v.ElementIDs[0]]
	i2, ok2 := byID[v.ElementIDs[1]]
	if !ok1 || !ok2 {
		return
	}
	e1, e2 := &(*fixed)[i1], &(*fixed)[i2]
	c1, c2 := centroidOfPoints(e1.Points), centroidOfPoints(e2.Points)

	dir, ok := unitTowards(c2, c1) // from e2 towards e1: e1 is pushed along +dir, e2 along -dir
	if !ok {
		dir = orb.Point{1 / math.Sqrt2, 1 / math.Sqrt2}
	}

	var push float64
	if v.Overlap {
		push = cfg.MinWallWidth/2 + 0.5
	} else {
		push = (cfg.MinWallWidth-v.ActualValue)/2 + 0.25
	}
	translate(e1, dir[0]*push, dir[1]*push)
	translate(e2, -dir[0]*push, -dir[1]*push)
}

func applyCarvedFix(fixed *[]PendingElement, byID map[string]int, v Violation, carvedCentroid orb.Point, cfg constraints.Config) {
	idx, ok := byID[v.ElementIDs[0]]
	if !ok {
		return
	}
	e := &(*fixed)[idx]
	center := centroidOfPoints(e.Points)
	dir, ok := unitTowards(carvedCentroid, center) // away from the carved-area centroid
	if !ok {
		dir = orb.Point{1 / math.Sqrt2, 1 / math.Sqrt2}
	}

	var push float64
	if v.Overlap {
		push = cfg.MinWallWidth + 0.5
	} else {
		push = (cfg.MinWallWidth - v.ActualValue) + 0.25
	}
	translate(e, dir[0]*push, dir[1]*push)
}

// unitTowards returns the unit vector pointing from a to b, or false if
// they are too close (< 0.01 m) for a direction to be meaningful.
func unitTowards(a, b orb.Point) (orb.Point, bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	dist := math.Hypot(dx, dy)
	if dist < 0.01 {
		return orb.Point{}, false
	}
	return orb.Point{dx / dist, dy / dist}, true
}

func translate(e *PendingElement, dx, dy float64) {
	pts := make([]orb.Point, len(e.Points))
	for i, p := range e.Points {
		pts[i] = orb.Point{p[0] + dx, p[1] + dy}
	}
	e.Points = pts
}
