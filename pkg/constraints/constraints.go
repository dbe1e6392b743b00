package constraints

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

const (
	pathTooNarrowCap   = 50
	wallTooThinCap     = 50
	edgeBufferPieceCap = 10
	edgeBufferCap      = 20
	interPathBufferCap = 50
	deadEndCap         = 50

	pathSampleSpacing  = 3.0
	pathRowClearance   = 0.1
	wallAdjacencyWidth = 50
	snapGrid           = 0.5
)

// Validate runs the five §4.6 checks against rows and field in a fixed
// order and returns their combined violations.
func Validate(rows orb.MultiLineString, fld field.Field, cfg Config, k *geomkernel.Kernel) ([]Violation, error) {
	var out []Violation

	v, err := pathTooNarrow(rows, fld, cfg, k)
	if err != nil {
		return nil, err
	}
	out = append(out, v...)

	out = append(out, wallTooThin(rows, cfg)...)

	v, err = edgeBuffer(rows, fld, cfg, k)
	if err != nil {
		return nil, err
	}
	out = append(out, v...)

	out = append(out, interPathBuffer(rows, cfg)...)

	v, err = deadEndTooLong(rows, cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, v...)

	return out, nil
}

// pathTooNarrow samples the field interior on a 3 m grid; a sample more
// than 0.1 m but less than min_path_width/2 from the rows is a path
// that's narrower than required.
func pathTooNarrow(rows orb.MultiLineString, fld field.Field, cfg Config, k *geomkernel.Kernel) ([]Violation, error) {
	fieldWKT := fld.WKT()
	rowsWKT := geomkernel.FromOrb(rows)
	bound := fld.Polygon().Bound()

	var out []Violation
	for y := bound.Min[1]; y <= bound.Max[1] && len(out) < pathTooNarrowCap; y += pathSampleSpacing {
		for x := bound.Min[0]; x <= bound.Max[0] && len(out) < pathTooNarrowCap; x += pathSampleSpacing {
			p := orb.Point{x, y}
			pointWKT := geomkernel.FromOrb(p)

			inside, err := k.Contains(fieldWKT, pointWKT)
			if err != nil {
				return nil, engineerr.New("constraints.pathTooNarrow", engineerr.GeometricFailure, err)
			}
			if !inside {
				continue
			}

			d, err := k.Distance(pointWKT, rowsWKT)
			if err != nil {
				return nil, engineerr.New("constraints.pathTooNarrow", engineerr.GeometricFailure, err)
			}
			if d <= pathRowClearance || d >= cfg.MinPathWidth/2 {
				continue
			}

			out = append(out, Violation{
				Kind:          PathTooNarrow,
				Severity:      Warning,
				Message:       fmt.Sprintf("path is only %.2f m wide here, want at least %.2f m", 2*d, cfg.MinPathWidth),
				Location:      p,
				ActualValue:   2 * d,
				RequiredValue: cfg.MinPathWidth,
			})
		}
	}
	return out, nil
}

// wallTooThin checks nearby row-segment pairs for a standing-corn wall
// narrower than min_wall_width.
func wallTooThin(rows orb.MultiLineString, cfg Config) []Violation {
	var out []Violation
	for i := 0; i < len(rows) && len(out) < wallTooThinCap; i++ {
		for j := i + 1; j < len(rows) && j < i+wallAdjacencyWidth && len(out) < wallTooThinCap; j++ {
			pa, pb, dist := nearestPoints(rows[i], rows[j])
			if dist <= 0 || dist >= cfg.MinWallWidth {
				continue
			}
			out = append(out, Violation{
				Kind:          WallTooThin,
				Severity:      Error,
				Message:       fmt.Sprintf("standing wall only %.2f m thick, want at least %.2f m", dist, cfg.MinWallWidth),
				Location:      midpoint(pa, pb),
				ActualValue:   dist,
				RequiredValue: cfg.MinWallWidth,
			})
		}
	}
	return out
}

// edgeBuffer flags rows that fall within edge_buffer of the field's
// exterior, capped at 10 distinct pieces / 20 total violations.
func edgeBuffer(rows orb.MultiLineString, fld field.Field, cfg Config, k *geomkernel.Kernel) ([]Violation, error) {
	insetWKT, err := k.Buffer(fld.WKT(), -cfg.EdgeBuffer, geomkernel.InternalBufferOptions(geomkernel.CapRound, geomkernel.JoinRound))
	if err != nil {
		return nil, engineerr.New("constraints.edgeBuffer", engineerr.GeometricFailure, err)
	}

	outsideWKT, err := k.Difference(geomkernel.FromOrb(rows), insetWKT)
	if err != nil {
		return nil, engineerr.New("constraints.edgeBuffer", engineerr.GeometricFailure, err)
	}
	if k.IsEmpty(outsideWKT) {
		return nil, nil
	}

	outsideGeom, err := geomkernel.ToOrb(outsideWKT)
	if err != nil {
		return nil, engineerr.New("constraints.edgeBuffer", engineerr.GeometricFailure, err)
	}
	pieces := toLineStrings(outsideGeom)

	var out []Violation
	for i, piece := range pieces {
		if i >= edgeBufferPieceCap || len(out) >= edgeBufferCap {
			break
		}
		mid := midpointAlong(piece)
		d, err := k.Distance(geomkernel.FromOrb(piece), geomkernel.FromOrb(fld.Exterior))
		if err != nil {
			return nil, engineerr.New("constraints.edgeBuffer", engineerr.GeometricFailure, err)
		}
		out = append(out, Violation{
			Kind:          EdgeBuffer,
			Severity:      Warning,
			Message:       fmt.Sprintf("row comes within %.2f m of the field edge, want at least %.2f m", d, cfg.EdgeBuffer),
			Location:      mid,
			ActualValue:   d,
			RequiredValue: cfg.EdgeBuffer,
		})
	}
	return out, nil
}

// interPathBuffer is wallTooThin with a wider threshold, skipping the
// range already owned by the tighter wall-thin check.
func interPathBuffer(rows orb.MultiLineString, cfg Config) []Violation {
	var out []Violation
	for i := 0; i < len(rows) && len(out) < interPathBufferCap; i++ {
		for j := i + 1; j < len(rows) && j < i+wallAdjacencyWidth && len(out) < interPathBufferCap; j++ {
			_, _, dist := nearestPoints(rows[i], rows[j])
			if dist <= cfg.MinWallWidth || dist >= cfg.InterPathBuffer {
				continue
			}
			pa, pb, _ := nearestPoints(rows[i], rows[j])
			standingRows := int(math.Floor(dist / cfg.CornRowSpacing))
			out = append(out, Violation{
				Kind:          InterPathBuffer,
				Severity:      Warning,
				Message: fmt.Sprintf("paths only %.2f m apart (want %.2f m), leaves room for about %d standing rows",
					dist, cfg.InterPathBuffer, standingRows),
				Location:      midpoint(pa, pb),
				ActualValue:   dist,
				RequiredValue: cfg.InterPathBuffer,
			})
		}
	}
	return out
}

// deadEndTooLong snaps row endpoints to a grid, builds an undirected
// multigraph, and walks from every degree-1 node through degree-2 nodes
// summing edge lengths until it reaches a junction (degree >= 3) or a
// terminus, flagging walks that exceed max_dead_end_length.
func deadEndTooLong(rows orb.MultiLineString, cfg Config) ([]Violation, error) {
	g, lengths, coords, err := buildSnappedGraph(rows)
	if err != nil {
		return nil, err
	}

	var out []Violation
	for id := range coords {
		if len(out) >= deadEndCap {
			break
		}
		_, _, undirected, err := g.Degree(id)
		if err != nil {
			return nil, engineerr.New("constraints.deadEndTooLong", engineerr.GeometricFailure, err)
		}
		if undirected != 1 {
			continue
		}

		total, err := walkDeadEnd(g, lengths, id)
		if err != nil {
			return nil, err
		}
		if total <= cfg.MaxDeadEndLength {
			continue
		}
		out = append(out, Violation{
			Kind:          DeadEndTooLong,
			Severity:      Warning,
			Message:       fmt.Sprintf("dead-end spur runs %.1f m, want at most %.1f m", total, cfg.MaxDeadEndLength),
			Location:      coords[id],
			ActualValue:   total,
			RequiredValue: cfg.MaxDeadEndLength,
		})
	}
	return out, nil
}

// walkDeadEnd follows the graph from a degree-1 node through degree-2
// nodes, summing edge lengths, until it reaches a node of degree >= 3 or
// can go no further.
func walkDeadEnd(g *core.Graph, lengths map[string]float64, start string) (float64, error) {
	var total float64
	prevEdge := ""
	cur := start

	for {
		neighbors, err := g.Neighbors(cur)
		if err != nil {
			return 0, engineerr.New("constraints.walkDeadEnd", engineerr.GeometricFailure, err)
		}
		var next *core.Edge
		for _, e := range neighbors {
			if e.ID == prevEdge {
				continue
			}
			next = e
			break
		}
		if next == nil {
			break
		}
		total += lengths[next.ID]
		prevEdge = next.ID
		if next.From == cur {
			cur = next.To
		} else {
			cur = next.From
		}

		_, _, undirected, err := g.Degree(cur)
		if err != nil {
			return 0, engineerr.New("constraints.walkDeadEnd", engineerr.GeometricFailure, err)
		}
		if undirected >= 3 || undirected == 1 {
			break
		}
	}
	return total, nil
}

// buildSnappedGraph snaps every row endpoint to a 0.5 m grid and builds an
// undirected multigraph keyed by snapped coordinate, one edge per row
// segment, with each edge's true (unsnapped) length tracked separately.
func buildSnappedGraph(rows orb.MultiLineString) (*core.Graph, map[string]float64, map[string]orb.Point, error) {
	g := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	lengths := make(map[string]float64)
	coords := make(map[string]orb.Point)

	for _, line := range rows {
		if len(line) < 2 {
			continue
		}
		fromID, fromPt := snapKey(line[0])
		toID, toPt := snapKey(line[len(line)-1])

		if !g.HasVertex(fromID) {
			if err := g.AddVertex(fromID); err != nil {
				return nil, nil, nil, engineerr.New("constraints.buildSnappedGraph", engineerr.GeometricFailure, err)
			}
			coords[fromID] = fromPt
		}
		if !g.HasVertex(toID) {
			if err := g.AddVertex(toID); err != nil {
				return nil, nil, nil, engineerr.New("constraints.buildSnappedGraph", engineerr.GeometricFailure, err)
			}
			coords[toID] = toPt
		}

		length := lineLength(line)
		edgeID, err := g.AddEdge(fromID, toID, int64(length*1000))
		if err != nil {
			return nil, nil, nil, engineerr.New("constraints.buildSnappedGraph", engineerr.GeometricFailure, err)
		}
		lengths[edgeID] = length
	}
	return g, lengths, coords, nil
}

func snapKey(p orb.Point) (string, orb.Point) {
	sx := math.Round(p[0]/snapGrid) * snapGrid
	sy := math.Round(p[1]/snapGrid) * snapGrid
	return fmt.Sprintf("%.2f,%.2f", sx, sy), orb.Point{sx, sy}
}

func lineLength(ls orb.LineString) float64 {
	var total float64
	for i := 0; i+1 < len(ls); i++ {
		total += math.Hypot(ls[i+1][0]-ls[i][0], ls[i+1][1]-ls[i][1])
	}
	return total
}

// nearestPoints returns the closest pair of points between two
// LineStrings and their distance, by brute-force segment comparison.
func nearestPoints(a, b orb.LineString) (orb.Point, orb.Point, float64) {
	best := math.Inf(1)
	var bestA, bestB orb.Point
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			pa, pb, d := nearestBetweenSegments(a[i], a[i+1], b[j], b[j+1])
			if d < best {
				best, bestA, bestB = d, pa, pb
			}
		}
	}
	return bestA, bestB, best
}

// nearestBetweenSegments returns the closest pair of points on segments
// p1-p2 and p3-p4 and their distance.
func nearestBetweenSegments(p1, p2, p3, p4 orb.Point) (orb.Point, orb.Point, float64) {
	const samples = 20
	best := math.Inf(1)
	var bestA, bestB orb.Point
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		pa := lerp(p1, p2, t)
		pb, d := closestPointOnSegment(pa, p3, p4)
		if d < best {
			best, bestA, bestB = d, pa, pb
		}
	}
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		pb := lerp(p3, p4, t)
		pa, d := closestPointOnSegment(pb, p1, p2)
		if d < best {
			best, bestA, bestB = d, pa, pb
		}
	}
	return bestA, bestB, best
}

func closestPointOnSegment(p, a, b orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	var t float64
	if lenSq > 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	closest := orb.Point{a[0] + t*dx, a[1] + t*dy}
	return closest, math.Hypot(p[0]-closest[0], p[1]-closest[1])
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

func midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// midpointAlong returns the point at half the cumulative length of ls.
func midpointAlong(ls orb.LineString) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 {
		return ls[0]
	}
	target := lineLength(ls) / 2
	var acc float64
	for i := 0; i+1 < len(ls); i++ {
		seg := math.Hypot(ls[i+1][0]-ls[i][0], ls[i+1][1]-ls[i][1])
		if acc+seg >= target {
			t := 0.0
			if seg > 0 {
				t = (target - acc) / seg
			}
			return lerp(ls[i], ls[i+1], t)
		}
		acc += seg
	}
	return ls[len(ls)-1]
}

// toLineStrings flattens a geometry (possibly a GeometryCollection from a
// boolean op) into its component LineStrings.
func toLineStrings(g orb.Geometry) []orb.LineString {
	switch v := g.(type) {
	case orb.LineString:
		return []orb.LineString{v}
	case orb.MultiLineString:
		return []orb.LineString(v)
	case orb.Collection:
		var out []orb.LineString
		for _, e := range v {
			out = append(out, toLineStrings(e)...)
		}
		return out
	default:
		return nil
	}
}
