package carve

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// emptyGeometryWKT is the GEOS representation of "nothing carved yet".
const emptyGeometryWKT geomkernel.WKT = "GEOMETRYCOLLECTION EMPTY"

// ElementPolygon is one entry of the carved per-element polygon list
// (§3): the eraser geometry of a single design element, kept distinct
// from the merged carved area so interior holes (the counter of an "O")
// survive for export and letter-counter bookkeeping.
type ElementPolygon struct {
	WKT         geomkernel.WKT
	ElementType string
}

// State is the carve engine's accumulated, session-owned output: the
// merged carved area, the per-element polygon list, and the carved-path
// list. Per §9's design note, the per-element and merged forms are
// independent and each carve writes to both — neither is derived from
// the other at runtime.
type State struct {
	CarvedArea geomkernel.WKT
	Elements   []ElementPolygon
	Paths      []PathRecord
}

// NewState returns an empty carve State.
func NewState() State {
	return State{CarvedArea: emptyGeometryWKT}
}

// ApplyResult is the outcome of a successful Apply or Uncarve: the
// updated rows, the updated State, and a warning if the eraser fell
// entirely outside the field (§4.5).
type ApplyResult struct {
	Rows    orb.MultiLineString
	State   State
	Warning string
}

// Apply resolves intent into an eraser and subtracts it from rows,
// recording the eraser in both the merged carved area and as a new
// per-element polygon entry tagged elementType. Applying the same intent
// twice is idempotent: rows − eraser − eraser == rows − eraser, and
// carved_area ∪ eraser ∪ eraser == carved_area ∪ eraser.
func Apply(rows orb.MultiLineString, fieldWKT geomkernel.WKT, state State, elementType string, intent Intent, k *geomkernel.Kernel) (ApplyResult, error) {
	built, err := intent.Build(k)
	if err != nil {
		return ApplyResult{}, err
	}
	eraserWKT := geomkernel.FromOrb(built.Eraser)

	var warning string
	if fieldWKT != "" {
		intersects, err := k.Intersects(eraserWKT, fieldWKT)
		if err != nil {
			return ApplyResult{}, engineerr.New("carve.Apply", engineerr.GeometricFailure, err)
		}
		if !intersects {
			warning = "carve lay entirely outside field"
		}
	}

	newRowsWKT, err := k.Difference(geomkernel.FromOrb(rows), eraserWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Apply", engineerr.GeometricFailure, err)
	}
	newRowsGeom, err := geomkernel.ToOrb(newRowsWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Apply", engineerr.GeometricFailure, err)
	}

	carvedArea := state.CarvedArea
	if carvedArea == "" {
		carvedArea = emptyGeometryWKT
	}
	mergedWKT, err := k.Union(carvedArea, eraserWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Apply", engineerr.GeometricFailure, err)
	}

	elements := append(append([]ElementPolygon{}, state.Elements...), ElementPolygon{WKT: eraserWKT, ElementType: elementType})
	paths := state.Paths
	if built.Path != nil {
		paths = append(append([]PathRecord{}, state.Paths...), *built.Path)
	}

	return ApplyResult{
		Rows: toMultiLineString(newRowsGeom),
		State: State{
			CarvedArea: mergedWKT,
			Elements:   elements,
			Paths:      paths,
		},
		Warning: warning,
	}, nil
}

// Uncarve restores standing corn within region: current_rows ∪
// (original_rows ∩ region), and carved_area := carved_area − region. Per
// §4.5, per-element polygons are never retroactively split by an
// uncarve.
func Uncarve(rows, originalRows orb.MultiLineString, region orb.Polygon, state State, k *geomkernel.Kernel) (ApplyResult, error) {
	regionWKT := geomkernel.FromOrb(region)

	restoredWKT, err := k.Intersection(geomkernel.FromOrb(originalRows), regionWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Uncarve", engineerr.GeometricFailure, err)
	}
	newRowsWKT, err := k.Union(geomkernel.FromOrb(rows), restoredWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Uncarve", engineerr.GeometricFailure, err)
	}
	newRowsGeom, err := geomkernel.ToOrb(newRowsWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Uncarve", engineerr.GeometricFailure, err)
	}

	carvedArea := state.CarvedArea
	if carvedArea == "" {
		carvedArea = emptyGeometryWKT
	}
	newCarvedWKT, err := k.Difference(carvedArea, regionWKT)
	if err != nil {
		return ApplyResult{}, engineerr.New("carve.Uncarve", engineerr.GeometricFailure, err)
	}

	return ApplyResult{
		Rows: toMultiLineString(newRowsGeom),
		State: State{
			CarvedArea: newCarvedWKT,
			Elements:   state.Elements,
			Paths:      state.Paths,
		},
	}, nil
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
