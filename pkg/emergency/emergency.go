package emergency

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/raster"
)

// worstUncoveredCap is §4.11's cap on the worst-uncovered-cells report.
const worstUncoveredCap = 20

// suggestCap bounds the greedy suggestion loop.
const suggestCap = 20

// UncoveredCell is one open cell farther than the configured max distance
// from any emergency exit.
type UncoveredCell struct {
	Point    orb.Point
	Distance float64
}

// ExitArea is the coverage area attributed to a single emergency exit: the
// count of open cells for which it is the nearest exit, times the cell
// area (resolution^2).
type ExitArea struct {
	Exit orb.Point
	Area float64
}

// Coverage is the result of a coverage analysis over a grid and an exit
// set, per §4.11.
type Coverage struct {
	CoveragePercent float64
	OpenCellCount   int
	CoveredCount    int
	WorstUncovered  []UncoveredCell
	PerExit         []ExitArea
}

// Analyze computes per-cell distance to the nearest point in exits (skipping
// walls — §4.11 explicitly models line-of-sight, not traversal) and derives
// coverage percent, the worst-uncovered cells (capped), and per-exit
// coverage area.
func Analyze(g *raster.Grid, exits []orb.Point, maxDistance float64) Coverage {
	if len(exits) == 0 {
		return uncoveredEverything(g)
	}

	var openCount, coveredCount int
	var uncovered []UncoveredCell
	exitCellArea := make([]float64, len(exits))
	cellArea := g.Resolution * g.Resolution

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.At(row, col) {
				continue
			}
			openCount++
			center := g.CellCenter(row, col)
			nearestIdx, dist := nearestExit(center, exits)
			if dist <= maxDistance {
				coveredCount++
				exitCellArea[nearestIdx] += cellArea
			} else {
				uncovered = append(uncovered, UncoveredCell{Point: center, Distance: dist})
			}
		}
	}

	sort.Slice(uncovered, func(i, j int) bool { return uncovered[i].Distance > uncovered[j].Distance })
	if len(uncovered) > worstUncoveredCap {
		uncovered = uncovered[:worstUncoveredCap]
	}

	perExit := make([]ExitArea, len(exits))
	for i, e := range exits {
		perExit[i] = ExitArea{Exit: e, Area: exitCellArea[i]}
	}

	percent := 0.0
	if openCount > 0 {
		percent = 100 * float64(coveredCount) / float64(openCount)
	}

	return Coverage{
		CoveragePercent: percent,
		OpenCellCount:   openCount,
		CoveredCount:    coveredCount,
		WorstUncovered:  uncovered,
		PerExit:         perExit,
	}
}

func uncoveredEverything(g *raster.Grid) Coverage {
	var openCount int
	var uncovered []UncoveredCell
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.At(row, col) {
				continue
			}
			openCount++
			uncovered = append(uncovered, UncoveredCell{Point: g.CellCenter(row, col), Distance: math.Inf(1)})
		}
	}
	if len(uncovered) > worstUncoveredCap {
		uncovered = uncovered[:worstUncoveredCap]
	}
	return Coverage{OpenCellCount: openCount, WorstUncovered: uncovered}
}

func nearestExit(p orb.Point, exits []orb.Point) (idx int, dist float64) {
	best := math.Inf(1)
	bestIdx := 0
	for i, e := range exits {
		d := math.Hypot(p[0]-e[0], p[1]-e[1])
		if d < best {
			best, bestIdx = d, i
		}
	}
	return bestIdx, best
}

// SuggestExits greedily adds emergency-exit points on the field's exterior
// ring until coverage reaches maxDistance for every open cell (or the
// suggestCap iteration limit is hit), per §4.11. It does not mutate
// existing; it returns existing plus the newly suggested points.
func SuggestExits(g *raster.Grid, fld field.Field, existing []orb.Point, maxDistance float64) ([]orb.Point, error) {
	if g == nil {
		return nil, engineerr.Newf("emergency.SuggestExits", engineerr.InvalidInput, "nil grid")
	}
	current := append([]orb.Point{}, existing...)

	for i := 0; i < suggestCap; i++ {
		farCell, farDist, ok := farthestOpenCell(g, current)
		if !ok || farDist <= maxDistance {
			break
		}
		projected := nearestPointOnRing(farCell, fld.Exterior)
		current = append(current, projected)
	}
	return current, nil
}

// farthestOpenCell finds the open cell with the greatest distance to its
// nearest point in exits. If exits is empty every open cell is "infinitely"
// far, so the first open cell found is returned.
func farthestOpenCell(g *raster.Grid, exits []orb.Point) (orb.Point, float64, bool) {
	found := false
	var bestPoint orb.Point
	bestDist := -1.0
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.At(row, col) {
				continue
			}
			found = true
			center := g.CellCenter(row, col)
			var dist float64
			if len(exits) == 0 {
				dist = math.Inf(1)
			} else {
				_, dist = nearestExit(center, exits)
			}
			if dist > bestDist {
				bestDist, bestPoint = dist, center
			}
		}
	}
	return bestPoint, bestDist, found
}

// nearestPointOnRing projects p onto the closest point lying on ring's
// boundary (brute-force segment scan, matching the hand-rolled
// segment-distance style used by pkg/constraints and pkg/livevalidate —
// no GEOS call gives the nearest boundary *point*, only the distance).
func nearestPointOnRing(p orb.Point, ring orb.Ring) orb.Point {
	if len(ring) == 0 {
		return p
	}
	best := math.Inf(1)
	var bestPoint orb.Point
	for i := 0; i+1 < len(ring); i++ {
		cp, d := closestPointOnSegment(p, ring[i], ring[i+1])
		if d < best {
			best, bestPoint = d, cp
		}
	}
	return bestPoint
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
