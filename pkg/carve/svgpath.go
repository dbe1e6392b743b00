package carve

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// SVGPath carves the outline described by an SVG path `d` attribute, per
// §4.5's deliberately non-adaptive flattening scheme: cubic and quadratic
// Bezier segments are sampled at exactly t=1/3 and t=2/3 (never adaptively
// refined), and elliptical arcs are approximated by a fixed-step line fan.
type SVGPath struct {
	D        string
	SizeM    float64   // target size of the geometry's longer dimension, metres
	Position orb.Point // target centroid position
}

func (SVGPath) Kind() Kind { return KindSVGPath }

func (s SVGPath) Build(k *geomkernel.Kernel) (Built, error) {
	if s.SizeM <= 0 {
		return Built{}, engineerr.Newf("carve.SVGPath", engineerr.InvalidInput, "size must be > 0, got %g", s.SizeM)
	}
	subpaths, err := parseSVGPath(s.D)
	if err != nil {
		return Built{}, engineerr.New("carve.SVGPath", engineerr.InvalidInput, err)
	}
	if len(subpaths) == 0 {
		return Built{}, engineerr.Newf("carve.SVGPath", engineerr.InvalidInput, "path produced no subpaths")
	}

	rings := make(orb.Polygon, 0, len(subpaths))
	for _, sp := range subpaths {
		// Flip Y (SVG user space points down) and force-close each
		// subpath to its first point, per §4.5 — regardless of whether
		// the path data itself contained a Z command.
		flipped := make(orb.Ring, len(sp))
		for i, p := range sp {
			flipped[i] = orb.Point{p[0], -p[1]}
		}
		if flipped[0] != flipped[len(flipped)-1] {
			flipped = append(flipped, flipped[0])
		}
		rings = append(rings, flipped)
	}

	wkt := geomkernel.FromOrb(rings)
	if !k.IsValid(wkt) {
		repaired, rerr := k.Repair(wkt)
		if rerr != nil {
			return Built{}, engineerr.New("carve.SVGPath", engineerr.InvalidInput, rerr)
		}
		wkt = repaired
	}
	geom, err := geomkernel.ToOrb(wkt)
	if err != nil {
		return Built{}, engineerr.New("carve.SVGPath", engineerr.GeometricFailure, err)
	}

	positioned, err := scaleToSizeAndCentroid(geom, s.SizeM, s.Position)
	if err != nil {
		return Built{}, err
	}
	return Built{Eraser: positioned}, nil
}

// scaleToSizeAndCentroid scales g uniformly so its longer bound dimension
// equals sizeM, then translates its (post-scale) area centroid to
// position. Used by the SVG path carve.
func scaleToSizeAndCentroid(g orb.Geometry, sizeM float64, position orb.Point) (orb.Geometry, error) {
	b := g.Bound()
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	longer := math.Max(w, h)
	if longer <= 0 {
		return nil, engineerr.Newf("carve.scaleToSizeAndCentroid", engineerr.GeometricFailure, "geometry has zero extent")
	}
	factor := sizeM / longer
	scaled := geomkernel.ScaleGeometry(g, factor)
	center, _ := planar.CentroidArea(scaled)
	return geomkernel.TranslateGeometry(scaled, position[0]-center[0], position[1]-center[1]), nil
}

const arcFanSteps = 16

// parseSVGPath tokenizes and flattens an SVG path `d` string into
// subpaths of (unflipped, unscaled) points in path-local space. Each
// subpath is whatever points a M...[Z] run produced; closing is the
// caller's job.
func parseSVGPath(d string) ([]orb.Ring, error) {
	sc := &pathScanner{s: d}

	var subpaths []orb.Ring
	var current orb.Ring
	var cur, start orb.Point
	var lastCmd byte

	flushSubpath := func() {
		if len(current) > 0 {
			subpaths = append(subpaths, current)
		}
		current = nil
	}

	for {
		sc.skipSeparators()
		if sc.eof() {
			break
		}
		cmd := lastCmd
		if isCommandLetter(sc.peek()) {
			cmd = sc.next()
		} else if lastCmd == 0 {
			return nil, fmt.Errorf("path must start with a command letter")
		} else if lastCmd == 'M' {
			cmd = 'L' // implicit lineto repeats after an initial moveto
		} else if lastCmd == 'm' {
			cmd = 'l'
		}
		rel := cmd >= 'a' && cmd <= 'z'
		upper := toUpperCmd(cmd)

		switch upper {
		case 'M':
			x, y, err := sc.point()
			if err != nil {
				return nil, err
			}
			if rel && lastCmd != 0 {
				x, y = cur[0]+x, cur[1]+y
			}
			flushSubpath()
			cur = orb.Point{x, y}
			start = cur
			current = orb.Ring{cur}
		case 'L':
			x, y, err := sc.point()
			if err != nil {
				return nil, err
			}
			if rel {
				x, y = cur[0]+x, cur[1]+y
			}
			cur = orb.Point{x, y}
			current = append(current, cur)
		case 'H':
			x, err := sc.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur[0]
			}
			cur = orb.Point{x, cur[1]}
			current = append(current, cur)
		case 'V':
			y, err := sc.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur[1]
			}
			cur = orb.Point{cur[0], y}
			current = append(current, cur)
		case 'C':
			x1, y1, err := sc.point()
			if err != nil {
				return nil, err
			}
			x2, y2, err := sc.point()
			if err != nil {
				return nil, err
			}
			x, y, err := sc.point()
			if err != nil {
				return nil, err
			}
			if rel {
				x1, y1 = cur[0]+x1, cur[1]+y1
				x2, y2 = cur[0]+x2, cur[1]+y2
				x, y = cur[0]+x, cur[1]+y
			}
			p1, p2, end := orb.Point{x1, y1}, orb.Point{x2, y2}, orb.Point{x, y}
			current = append(current, sampleCubic(cur, p1, p2, end)...)
			cur = end
		case 'Q':
			x1, y1, err := sc.point()
			if err != nil {
				return nil, err
			}
			x, y, err := sc.point()
			if err != nil {
				return nil, err
			}
			if rel {
				x1, y1 = cur[0]+x1, cur[1]+y1
				x, y = cur[0]+x, cur[1]+y
			}
			ctrl, end := orb.Point{x1, y1}, orb.Point{x, y}
			current = append(current, sampleQuadratic(cur, ctrl, end)...)
			cur = end
		case 'A':
			rx, err := sc.number()
			if err != nil {
				return nil, err
			}
			ry, err := sc.number()
			if err != nil {
				return nil, err
			}
			xrot, err := sc.number()
			if err != nil {
				return nil, err
			}
			largeArc, err := sc.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := sc.flag()
			if err != nil {
				return nil, err
			}
			x, y, err := sc.point()
			if err != nil {
				return nil, err
			}
			if rel {
				x, y = cur[0]+x, cur[1]+y
			}
			end := orb.Point{x, y}
			current = append(current, sampleArc(cur, end, rx, ry, xrot, largeArc, sweep)...)
			cur = end
		case 'Z':
			if len(current) > 0 && current[0] != cur {
				current = append(current, start)
			}
			cur = start
		default:
			return nil, fmt.Errorf("unsupported path command %q", cmd)
		}
		lastCmd = cmd
	}
	flushSubpath()
	return subpaths, nil
}

func isCommandLetter(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'Q', 'q', 'A', 'a', 'Z', 'z':
		return true
	default:
		return false
	}
}

func toUpperCmd(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// sampleCubic flattens a cubic Bezier (p0,p1,p2,p3) by sampling at
// exactly t=1/3 and t=2/3, per §4.5 — not an adaptive subdivision.
func sampleCubic(p0, p1, p2, p3 orb.Point) []orb.Point {
	at := func(t float64) orb.Point {
		u := 1 - t
		x := u*u*u*p0[0] + 3*u*u*t*p1[0] + 3*u*t*t*p2[0] + t*t*t*p3[0]
		y := u*u*u*p0[1] + 3*u*u*t*p1[1] + 3*u*t*t*p2[1] + t*t*t*p3[1]
		return orb.Point{x, y}
	}
	return []orb.Point{at(1.0 / 3), at(2.0 / 3), p3}
}

// sampleQuadratic flattens a quadratic Bezier by sampling at t=1/3, 2/3.
func sampleQuadratic(p0, p1, p2 orb.Point) []orb.Point {
	at := func(t float64) orb.Point {
		u := 1 - t
		x := u*u*p0[0] + 2*u*t*p1[0] + t*t*p2[0]
		y := u*u*p0[1] + 2*u*t*p1[1] + t*t*p2[1]
		return orb.Point{x, y}
	}
	return []orb.Point{at(1.0 / 3), at(2.0 / 3), p2}
}

// sampleArc approximates an SVG elliptical arc by a fixed-step line fan
// over its center-parameterized angle sweep (the SVG spec's endpoint-to-
// center conversion), per §4.5.
func sampleArc(p0, p1 orb.Point, rx, ry, xrotDeg float64, largeArc, sweep bool) []orb.Point {
	if rx == 0 || ry == 0 {
		return []orb.Point{p1}
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := xrotDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (p0[0]-p1[0])/2, (p0[1]-p1[1])/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		scale := math.Sqrt(lambda)
		rx *= scale
		ry *= scale
	}

	sign := 1.0
	if largeArc == sweep {
		sign = -1
	}
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	co := 0.0
	if den != 0 && num > 0 {
		co = sign * math.Sqrt(num/den)
	}
	cxp := co * (rx * y1p / ry)
	cyp := co * (-ry * x1p / rx)

	cx := cosPhi*cxp - sinPhi*cyp + (p0[0]+p1[0])/2
	cy := sinPhi*cxp + cosPhi*cyp + (p0[1]+p1[1])/2

	angle := func(ux, uy, vx, vy float64) float64 {
		dot := ux*vx + uy*vy
		lenProd := math.Hypot(ux, uy) * math.Hypot(vx, vy)
		a := math.Acos(clamp(dot/lenProd, -1, 1))
		if ux*vy-uy*vx < 0 {
			return -a
		}
		return a
	}
	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dtheta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	steps := arcFanSteps
	pts := make([]orb.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := theta1 + dtheta*float64(i)/float64(steps)
		x := cx + rx*math.Cos(t)*cosPhi - ry*math.Sin(t)*sinPhi
		y := cy + rx*math.Cos(t)*sinPhi + ry*math.Sin(t)*cosPhi
		pts = append(pts, orb.Point{x, y})
	}
	pts[len(pts)-1] = p1
	return pts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pathScanner is a minimal hand-rolled scanner for SVG path data, tolerant
// of SVG's permissive number syntax (optional separators, glued decimals).
type pathScanner struct {
	s   string
	pos int
}

func (p *pathScanner) eof() bool { return p.pos >= len(p.s) }
func (p *pathScanner) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}
func (p *pathScanner) next() byte {
	b := p.s[p.pos]
	p.pos++
	return b
}

func (p *pathScanner) skipSeparators() {
	for !p.eof() {
		c := p.s[p.pos]
		if c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *pathScanner) number() (float64, error) {
	p.skipSeparators()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
		p.pos++
	}
	sawDigit := false
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
		sawDigit = true
	}
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
			sawDigit = true
		}
	}
	if !sawDigit {
		return 0, fmt.Errorf("expected a number at offset %d", start)
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		save := p.pos
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}
		expDigit := false
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
			expDigit = true
		}
		if !expDigit {
			p.pos = save
		}
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", p.s[start:p.pos], err)
	}
	return v, nil
}

func (p *pathScanner) point() (float64, float64, error) {
	x, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	y, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// flag reads a single SVG path flag (0 or 1), which may be glued directly
// to the next token with no separator.
func (p *pathScanner) flag() (bool, error) {
	p.skipSeparators()
	if p.eof() || (p.s[p.pos] != '0' && p.s[p.pos] != '1') {
		return false, fmt.Errorf("expected a flag (0 or 1) at offset %d", p.pos)
	}
	v := p.s[p.pos] == '1'
	p.pos++
	return v, nil
}
