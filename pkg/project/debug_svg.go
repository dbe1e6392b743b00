package project

import (
	"bytes"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// DebugSVGOptions configures the in-core debug preview rendering of a
// session's design state: the field, rows, carved area, and point sets,
// nothing else. The real export formats (KML/DXF/GPX/Shapefile/PNG) are
// external collaborators per §6.
type DebugSVGOptions struct {
	Width, Height int
	Margin        int
}

// DefaultDebugSVGOptions returns a sensible 1000x1000 canvas with a 40px margin.
func DefaultDebugSVGOptions() DebugSVGOptions {
	return DebugSVGOptions{Width: 1000, Height: 1000, Margin: 40}
}

// Preview is the snapshot of session state a debug SVG renders: field
// boundary, standing rows, merged carved area (as WKT), and the point
// sets.
type Preview struct {
	FieldWKT       geomkernel.WKT
	RowsWKT        geomkernel.WKT
	CarvedAreaWKT  geomkernel.WKT
	Entrances      []orb.Point
	Exits          []orb.Point
	EmergencyExits []orb.Point
}

// RenderDebugSVG draws p onto an SVG canvas: a background rect, then
// draw order field, carved area, rows, point markers.
func RenderDebugSVG(p Preview, opts DebugSVGOptions, k *geomkernel.Kernel) ([]byte, error) {
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 1000
	}
	if opts.Margin <= 0 {
		opts.Margin = 40
	}

	fieldGeom, err := geomkernel.ToOrb(p.FieldWKT)
	if err != nil {
		return nil, engineerr.New("project.RenderDebugSVG", engineerr.InvalidInput, err)
	}
	bound := fieldGeom.Bound()

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#f4f1e8")

	project := screenProjector(bound, opts)

	if poly, ok := fieldGeom.(orb.Polygon); ok {
		drawPolygon(canvas, poly, project, "fill:none;stroke:#3a3a3a;stroke-width:2")
	}

	if p.CarvedAreaWKT != "" && !k.IsEmpty(p.CarvedAreaWKT) {
		carved, err := geomkernel.ToOrb(p.CarvedAreaWKT)
		if err == nil {
			drawGeometry(canvas, carved, project, "fill:#e4cfa0;stroke:none")
		}
	}

	if p.RowsWKT != "" {
		rows, err := geomkernel.ToOrb(p.RowsWKT)
		if err == nil {
			drawGeometry(canvas, rows, project, "fill:none;stroke:#4a7c3a;stroke-width:1")
		}
	}

	drawMarkers(canvas, p.Entrances, project, "#2a6fd6")
	drawMarkers(canvas, p.Exits, project, "#d62a2a")
	drawMarkers(canvas, p.EmergencyExits, project, "#d6a92a")

	canvas.End()
	return buf.Bytes(), nil
}

// SaveDebugSVG renders p and writes it to filepath.
func SaveDebugSVG(p Preview, filepath string, opts DebugSVGOptions, k *geomkernel.Kernel) error {
	data, err := RenderDebugSVG(p, opts, k)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return engineerr.New("project.SaveDebugSVG", engineerr.ResourceFailure, err)
	}
	return nil
}

func screenProjector(bound orb.Bound, opts DebugSVGOptions) func(orb.Point) (int, int) {
	w := bound.Max[0] - bound.Min[0]
	h := bound.Max[1] - bound.Min[1]
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	drawW := float64(opts.Width - 2*opts.Margin)
	drawH := float64(opts.Height - 2*opts.Margin)
	scale := drawW / w
	if hs := drawH / h; hs < scale {
		scale = hs
	}
	return func(p orb.Point) (int, int) {
		x := opts.Margin + int((p[0]-bound.Min[0])*scale)
		y := opts.Height - opts.Margin - int((p[1]-bound.Min[1])*scale)
		return x, y
	}
}

func drawPolygon(canvas *svg.SVG, poly orb.Polygon, project func(orb.Point) (int, int), style string) {
	for _, ring := range poly {
		xs := make([]int, len(ring))
		ys := make([]int, len(ring))
		for i, pt := range ring {
			xs[i], ys[i] = project(pt)
		}
		canvas.Polygon(xs, ys, style)
	}
}

func drawLineString(canvas *svg.SVG, ls orb.LineString, project func(orb.Point) (int, int), style string) {
	xs := make([]int, len(ls))
	ys := make([]int, len(ls))
	for i, pt := range ls {
		xs[i], ys[i] = project(pt)
	}
	canvas.Polyline(xs, ys, style)
}

func drawGeometry(canvas *svg.SVG, g orb.Geometry, project func(orb.Point) (int, int), style string) {
	switch v := g.(type) {
	case orb.Polygon:
		drawPolygon(canvas, v, project, style)
	case orb.MultiPolygon:
		for _, poly := range v {
			drawPolygon(canvas, poly, project, style)
		}
	case orb.LineString:
		drawLineString(canvas, v, project, style)
	case orb.MultiLineString:
		for _, ls := range v {
			drawLineString(canvas, ls, project, style)
		}
	case orb.Collection:
		for _, e := range v {
			drawGeometry(canvas, e, project, style)
		}
	}
}

func drawMarkers(canvas *svg.SVG, pts []orb.Point, project func(orb.Point) (int, int), color string) {
	for _, p := range pts {
		x, y := project(p)
		canvas.Circle(x, y, 5, "fill:"+color+";stroke:#1a1a1a;stroke-width:1")
	}
}
