package project

import (
	"encoding/json"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/carve"
	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
	"github.com/cornmazecad/engine/pkg/projection"
)

// CurrentVersion is the project file format version this package writes
// and reads, per §4.13/§6. A document whose Version exceeds this fails
// to load; unknown fields are dropped silently, with no warning reported.
const CurrentVersion = 2

// FieldDoc is the persisted form of a field.Field: its polygon as WKT plus
// the CRS and centroid offset needed to reverse centering for geographic
// export.
type FieldDoc struct {
	WKT       string  `json:"wkt"`
	CRS       string  `json:"crs"`
	OffsetDX  float64 `json:"offsetDx"`
	OffsetDY  float64 `json:"offsetDy"`
}

// ElementDoc is the persisted form of one carve.ElementPolygon.
type ElementDoc struct {
	WKT         string `json:"wkt"`
	ElementType string `json:"elementType"`
}

// PathDoc is the persisted form of one carve.PathRecord.
type PathDoc struct {
	Points []orb.Point `json:"points"`
	Width  float64     `json:"width"`
}

// Document is the full `.cmz` project file contents, per §4.13. UI carries
// opaque camera/grid settings the core never interprets; Metadata is
// caller-defined key/value notes.
type Document struct {
	Version        int                `json:"version"`
	Name           string             `json:"name"`
	SavedAt        string             `json:"savedAt"` // UTC ISO-8601
	Field          FieldDoc           `json:"field"`
	Walls          [][]orb.Point      `json:"walls"`
	HeadlandWalls  [][]orb.Point      `json:"headlandWalls,omitempty"`
	Elements       []ElementDoc       `json:"carvedElements"`
	Paths          []PathDoc          `json:"carvedPaths"`
	Entrances      []orb.Point        `json:"entrances"`
	Exits          []orb.Point        `json:"exits"`
	EmergencyExits []orb.Point        `json:"emergencyExits"`
	Constraints    constraints.Config `json:"constraints"`
	UI             json.RawMessage    `json:"ui,omitempty"`
	Metadata       map[string]string  `json:"metadata,omitempty"`
}

// FieldToDoc converts a field.Field into its persisted representation.
func FieldToDoc(f field.Field) FieldDoc {
	return FieldDoc{
		WKT:      string(f.WKT()),
		CRS:      f.CRS,
		OffsetDX: f.Offset.DX,
		OffsetDY: f.Offset.DY,
	}
}

// FieldFromDoc reconstructs a field.Field from its persisted representation.
func FieldFromDoc(d FieldDoc) (field.Field, error) {
	geom, err := geomkernel.ToOrb(geomkernel.WKT(d.WKT))
	if err != nil {
		return field.Field{}, err
	}
	poly, ok := geom.(orb.Polygon)
	if !ok {
		return field.Field{}, errNotAPolygon(d.WKT)
	}
	var holes []orb.Ring
	if len(poly) > 1 {
		holes = poly[1:]
	}
	return field.Field{
		Exterior: poly[0],
		Holes:    holes,
		CRS:      d.CRS,
		Offset:   projection.Offset{DX: d.OffsetDX, DY: d.OffsetDY},
	}, nil
}

// WallsToDoc flattens a row multi-linestring to a plain polyline list.
func WallsToDoc(rows orb.MultiLineString) [][]orb.Point {
	out := make([][]orb.Point, len(rows))
	for i, ls := range rows {
		out[i] = []orb.Point(ls)
	}
	return out
}

// WallsFromDoc reconstructs a row multi-linestring from its flattened form.
func WallsFromDoc(polylines [][]orb.Point) orb.MultiLineString {
	out := make(orb.MultiLineString, len(polylines))
	for i, pts := range polylines {
		out[i] = orb.LineString(pts)
	}
	return out
}

// ElementsToDoc converts a carve.State's per-element polygon list.
func ElementsToDoc(elems []carve.ElementPolygon) []ElementDoc {
	out := make([]ElementDoc, len(elems))
	for i, e := range elems {
		out[i] = ElementDoc{WKT: string(e.WKT), ElementType: e.ElementType}
	}
	return out
}

// ElementsFromDoc reverses ElementsToDoc.
func ElementsFromDoc(docs []ElementDoc) []carve.ElementPolygon {
	out := make([]carve.ElementPolygon, len(docs))
	for i, d := range docs {
		out[i] = carve.ElementPolygon{WKT: geomkernel.WKT(d.WKT), ElementType: d.ElementType}
	}
	return out
}

// PathsToDoc converts a carve.State's carved-path list.
func PathsToDoc(paths []carve.PathRecord) []PathDoc {
	out := make([]PathDoc, len(paths))
	for i, p := range paths {
		out[i] = PathDoc{Points: p.Points, Width: p.Width}
	}
	return out
}

// PathsFromDoc reverses PathsToDoc.
func PathsFromDoc(docs []PathDoc) []carve.PathRecord {
	out := make([]carve.PathRecord, len(docs))
	for i, d := range docs {
		out[i] = carve.PathRecord{Points: d.Points, Width: d.Width}
	}
	return out
}
