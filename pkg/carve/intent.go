package carve

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Kind identifies a carve intent's variant.
type Kind int

const (
	KindStroke Kind = iota
	KindClosedPolygon
	KindTextGlyph
	KindRasterVectorization
	KindSVGPath
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindClosedPolygon:
		return "closed_polygon"
	case KindTextGlyph:
		return "text_glyph"
	case KindRasterVectorization:
		return "raster_vectorization"
	case KindSVGPath:
		return "svg_path"
	default:
		return "unknown"
	}
}

// PathRecord is one entry of the carved-path list (§3): the raw polyline
// and width of a tractor pass. Area carves (polygons, glyphs, raster,
// SVG) may produce no path record at all — the caller chooses whether to
// synthesize one.
type PathRecord struct {
	Points []orb.Point
	Width  float64
}

// Built is the result of resolving an Intent into concrete geometry: the
// eraser polygon to subtract from the standing rows, and an optional
// carved-path record.
type Built struct {
	Eraser orb.Geometry
	Path   *PathRecord
}

// Intent is one design-intent variant. Each concrete type (Stroke,
// ClosedPolygon, TextGlyph, RasterVectorization, SVGPath) carries its own
// typed payload and knows how to resolve itself into an eraser.
type Intent interface {
	Kind() Kind
	Build(k *geomkernel.Kernel) (Built, error)
}
