package carve

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// GlyphRenderer is the externally provided callback that turns a
// (family, weight, text) tuple into a flat set of closed rings, per §9's
// "the engine does not own font loading" design note. Rings may be
// outer contours or interior holes (e.g. the counter of an "O"); Build
// classifies them.
type GlyphRenderer interface {
	RenderGlyphs(family string, weight int, text string) ([]orb.Ring, error)
}

// GlyphMode selects whether a text glyph carve fills its rings or traces
// only their outline.
type GlyphMode int

const (
	GlyphFill GlyphMode = iota
	GlyphStroke
)

// TextGlyph renders text through an external GlyphRenderer and resolves
// it to an eraser per §4.5's glyph pipeline.
type TextGlyph struct {
	Renderer    GlyphRenderer
	Family      string
	Weight      int
	Text        string
	FontSizeM   float64   // target rendered height, metres
	Mode        GlyphMode
	StrokeWidth float64   // metres; only used when Mode == GlyphStroke
	Position    orb.Point // target position of the geometry's bottom-left corner
}

func (TextGlyph) Kind() Kind { return KindTextGlyph }

func (t TextGlyph) Build(k *geomkernel.Kernel) (Built, error) {
	if t.FontSizeM <= 0 {
		return Built{}, engineerr.Newf("carve.TextGlyph", engineerr.InvalidInput, "font size must be > 0, got %g", t.FontSizeM)
	}
	rings, err := t.Renderer.RenderGlyphs(t.Family, t.Weight, t.Text)
	if err != nil {
		return Built{}, engineerr.New("carve.TextGlyph", engineerr.InvalidInput, err)
	}
	if len(rings) == 0 {
		return Built{}, engineerr.Newf("carve.TextGlyph", engineerr.InvalidInput, "no glyph rings rendered for text %q", t.Text)
	}

	sort.Slice(rings, func(i, j int) bool {
		return absRingArea(rings[i]) > absRingArea(rings[j])
	})

	var outers, holes []orb.Ring
	for _, r := range rings {
		hole := false
		for _, o := range outers {
			contains, err := k.Contains(ringWKT(o), ringWKT(r))
			if err != nil {
				return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
			}
			if contains {
				hole = true
				break
			}
		}
		if hole {
			holes = append(holes, r)
		} else {
			outers = append(outers, r)
		}
	}

	outerUnionWKT, err := unionRings(outers, k)
	if err != nil {
		return Built{}, err
	}

	var finalWKT geomkernel.WKT
	if t.Mode == GlyphStroke {
		if t.StrokeWidth <= 0 {
			return Built{}, engineerr.Newf("carve.TextGlyph", engineerr.InvalidInput, "stroke width must be > 0, got %g", t.StrokeWidth)
		}
		outerOpts := geomkernel.ExportBufferOptions(geomkernel.CapRound, geomkernel.JoinRound)
		outward, err := k.Buffer(outerUnionWKT, t.StrokeWidth/2, outerOpts)
		if err != nil {
			return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
		}
		inward, err := k.Buffer(outerUnionWKT, -t.StrokeWidth/2, outerOpts)
		if err != nil {
			return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
		}
		finalWKT, err = k.Difference(outward, inward)
		if err != nil {
			return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
		}
	} else {
		holeUnionWKT, err := unionRings(holes, k)
		if err != nil {
			return Built{}, err
		}
		if holeUnionWKT == "" {
			finalWKT = outerUnionWKT
		} else {
			finalWKT, err = k.Difference(outerUnionWKT, holeUnionWKT)
			if err != nil {
				return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
			}
		}
	}

	geom, err := geomkernel.ToOrb(finalWKT)
	if err != nil {
		return Built{}, engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
	}

	positioned, err := scaleToHeightAndPosition(geom, t.FontSizeM, t.Position)
	if err != nil {
		return Built{}, err
	}
	return Built{Eraser: positioned}, nil
}

func ringWKT(r orb.Ring) geomkernel.WKT {
	return geomkernel.FromOrb(orb.Polygon{r})
}

func unionRings(rings []orb.Ring, k *geomkernel.Kernel) (geomkernel.WKT, error) {
	if len(rings) == 0 {
		return "", nil
	}
	acc := ringWKT(rings[0])
	for _, r := range rings[1:] {
		u, err := k.Union(acc, ringWKT(r))
		if err != nil {
			return "", engineerr.New("carve.TextGlyph", engineerr.GeometricFailure, err)
		}
		acc = u
	}
	return acc, nil
}

func absRingArea(ring orb.Ring) float64 {
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

// scaleToHeightAndPosition scales g uniformly so its bound's height
// equals targetHeight, then translates it so its (post-scale) bottom-left
// corner lands on position. Used by the text glyph carve.
func scaleToHeightAndPosition(g orb.Geometry, targetHeight float64, position orb.Point) (orb.Geometry, error) {
	b := g.Bound()
	height := b.Max[1] - b.Min[1]
	if height <= 0 {
		return nil, engineerr.Newf("carve.scaleToHeightAndPosition", engineerr.GeometricFailure, "glyph geometry has zero height")
	}
	factor := targetHeight / height
	scaled := geomkernel.ScaleGeometry(g, factor)
	sb := scaled.Bound()
	dx := position[0] - sb.Min[0]
	dy := position[1] - sb.Min[1]
	return geomkernel.TranslateGeometry(scaled, dx, dy), nil
}
