package geomkernel

import (
	"github.com/twpayne/go-geos"
)

// Kernel performs boolean and buffer operations backed by GEOS. A Kernel is
// not safe for concurrent use by multiple goroutines; callers that need
// concurrency should create one Kernel per goroutine, matching §5's
// session-owns-its-state rule.
type Kernel struct {
	ctx *geos.Context
}

// NewKernel creates a Kernel with a fresh GEOS context.
func NewKernel() *Kernel {
	return &Kernel{ctx: geos.NewContext()}
}

// parse decodes WKT into a GEOS geometry, wrapping parse failures in the
// package's *Error.
func (k *Kernel) parse(op string, w WKT) (geom *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(op, "geos panic parsing WKT: %v", r)
		}
	}()
	geom, err = k.ctx.NewGeomFromWKT(string(w))
	if err != nil {
		return nil, newError(op, "parse WKT: %v", err)
	}
	return geom, nil
}

func capStyle(c CapStyle) geos.BufferCapStyle {
	if c == CapFlat {
		return geos.BufferCapStyleFlat
	}
	return geos.BufferCapStyleRound
}

func joinStyle(j JoinStyle) geos.BufferJoinStyle {
	switch j {
	case JoinMitre:
		return geos.BufferJoinStyleMitre
	case JoinBevel:
		return geos.BufferJoinStyleBevel
	default:
		return geos.BufferJoinStyleRound
	}
}

// Buffer returns the geometry expanded (or, for negative distance, shrunk)
// by distance, per §4.1. Export-bound callers must pass
// ExportBufferOptions so the chord deviation bound holds.
func (k *Kernel) Buffer(w WKT, distance float64, opts BufferOptions) (result WKT, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError("buffer", "geos panic: %v", r)
		}
	}()

	g, err := k.parse("buffer", w)
	if err != nil {
		return "", err
	}

	quadsegs := opts.QuadrantSegments
	if quadsegs <= 0 {
		quadsegs = InternalQuadrantSegments
	}

	params := geos.NewBufferParams(
		geos.BufferParamsSetEndCapStyle(capStyle(opts.CapStyle)),
		geos.BufferParamsSetJoinStyle(joinStyle(opts.JoinStyle)),
		geos.BufferParamsSetQuadrantSegments(quadsegs),
		geos.BufferParamsSetMitreLimit(opts.MitreLimit),
	)

	buffered := g.BufferWithParams(params, distance)
	if buffered == nil {
		return "", newError("buffer", "GEOS returned nil buffering distance=%g", distance)
	}
	return WKT(buffered.ToWKT()), nil
}

// Union returns the union of a and b, repairing either input first if
// invalid (§4.1's validity rule).
func (k *Kernel) Union(a, b WKT) (WKT, error) {
	return k.binary("union", a, b, (*geos.Geom).Union)
}

// Intersection returns the intersection of a and b.
func (k *Kernel) Intersection(a, b WKT) (WKT, error) {
	return k.binary("intersection", a, b, (*geos.Geom).Intersection)
}

// Difference returns a minus b.
func (k *Kernel) Difference(a, b WKT) (WKT, error) {
	return k.binary("difference", a, b, (*geos.Geom).Difference)
}

func (k *Kernel) binary(op string, a, b WKT, fn func(*geos.Geom, *geos.Geom) *geos.Geom) (result WKT, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(op, "geos panic: %v", r)
		}
	}()

	ga, err := k.repairedGeom(op, a)
	if err != nil {
		return "", err
	}
	gb, err := k.repairedGeom(op, b)
	if err != nil {
		return "", err
	}

	out := fn(ga, gb)
	if out == nil {
		return "", newError(op, "GEOS returned nil")
	}
	if out.IsEmpty() {
		return WKT(out.ToWKT()), nil
	}
	return WKT(out.ToWKT()), nil
}

// repairedGeom parses w and, if invalid, attempts the buffer-by-zero repair
// idiom before giving up. This is the validity rule every union/difference
// call in §4.1 must apply before operating.
func (k *Kernel) repairedGeom(op string, w WKT) (*geos.Geom, error) {
	g, err := k.parse(op, w)
	if err != nil {
		return nil, err
	}
	if g.IsValid() {
		return g, nil
	}
	repaired := g.Buffer(0, 8)
	if repaired == nil || !repaired.IsValid() {
		return nil, newError(op, "input invalid and buffer-by-zero repair failed")
	}
	return repaired, nil
}

// Repair returns a valid version of w, using the buffer-by-zero idiom and
// falling back to GEOS's MakeValid. Fails if neither produces a valid
// result.
func (k *Kernel) Repair(w WKT) (result WKT, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError("repair", "geos panic: %v", r)
		}
	}()

	g, err := k.parse("repair", w)
	if err != nil {
		return "", err
	}
	if g.IsValid() {
		return w, nil
	}
	if z := g.Buffer(0, 8); z != nil && z.IsValid() {
		return WKT(z.ToWKT()), nil
	}
	if mv := g.MakeValid(); mv != nil && mv.IsValid() {
		return WKT(mv.ToWKT()), nil
	}
	return "", newError("repair", "geometry remains invalid after buffer-by-zero and MakeValid")
}

// IsValid reports whether w is a valid geometry.
func (k *Kernel) IsValid(w WKT) bool {
	g, err := k.parse("is_valid", w)
	if err != nil {
		return false
	}
	return g.IsValid()
}

// IsEmpty reports whether w denotes the empty geometry.
func (k *Kernel) IsEmpty(w WKT) bool {
	g, err := k.parse("is_empty", w)
	if err != nil {
		return true
	}
	return g.IsEmpty()
}

// Area returns the planar area of w in the geometry's own units.
func (k *Kernel) Area(w WKT) (float64, error) {
	g, err := k.parse("area", w)
	if err != nil {
		return 0, err
	}
	return g.Area(), nil
}

// Distance returns the shortest distance between a and b.
func (k *Kernel) Distance(a, b WKT) (float64, error) {
	ga, err := k.parse("distance", a)
	if err != nil {
		return 0, err
	}
	gb, err := k.parse("distance", b)
	if err != nil {
		return 0, err
	}
	return ga.Distance(gb), nil
}

// Intersects reports whether a and b share any point.
func (k *Kernel) Intersects(a, b WKT) (bool, error) {
	ga, err := k.parse("intersects", a)
	if err != nil {
		return false, err
	}
	gb, err := k.parse("intersects", b)
	if err != nil {
		return false, err
	}
	return ga.Intersects(gb), nil
}

// Contains reports whether a fully contains b.
func (k *Kernel) Contains(a, b WKT) (bool, error) {
	ga, err := k.parse("contains", a)
	if err != nil {
		return false, err
	}
	gb, err := k.parse("contains", b)
	if err != nil {
		return false, err
	}
	return ga.Contains(gb), nil
}

// Close releases the underlying GEOS context. Callers that create many
// short-lived Kernels (e.g. one per session) should call Close when the
// session ends.
func (k *Kernel) Close() {
	if k.ctx != nil {
		k.ctx.Close()
		k.ctx = nil
	}
}
