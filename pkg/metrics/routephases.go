package metrics

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/pathfind"
	"github.com/cornmazecad/engine/pkg/raster"
)

// detourOffset is how many cell-widths off the easy route the medium route's
// forced waypoint is pushed, per the §12 supplement.
const detourOffset = 3.0

// cornerFraction places the four candidate hard-route waypoints this far in
// from each field corner, to stay clear of the edge buffer.
const cornerFraction = 0.15

// RoutePhase is one named, independently-solved difficulty tier: a shortest
// "easy" route, a "medium" route forced through an off-path detour, and a
// "hard" route forced through the field corner farthest from both endpoints.
type RoutePhase struct {
	Name       string
	Difficulty string
	Path       []orb.Point
	Length     float64
	Solvable   bool
}

// RoutePhasesResult is the outcome of RoutePhases: the requested phases and
// whether every one of them was independently solvable.
type RoutePhasesResult struct {
	Phases      []RoutePhase
	AllSolvable bool
}

// RoutePhases builds up to numPhases (clamped to [1,3]) alternate routes
// between start and goal over g, the §12 supplement grounded on
// core-engine/analysis/difficulty_phases.py: a maze design that serves
// multiple skill levels by offering progressively longer, more convoluted
// routes through the same standing corn rather than a single solution path.
//
//   - Easy: the shortest A* path.
//   - Medium: forced through a waypoint offset perpendicular to the easy
//     path's midpoint segment, by detourOffset grid cells.
//   - Hard: forced through whichever of the field's four interior corner
//     points lies farthest (summed) from start and goal.
//
// Each detour is itself two A* legs stitched together at the waypoint. If a
// medium leg fails to solve (or the easy path is too short to detour from),
// the medium phase repeats the easy route and its solvability; if a hard
// leg fails, the hard phase is reported unsolvable with no path.
func RoutePhases(g *raster.Grid, fieldBounds orb.Bound, start, goal orb.Point, numPhases int) RoutePhasesResult {
	if numPhases < 1 {
		numPhases = 1
	}
	if numPhases > 3 {
		numPhases = 3
	}

	var phases []RoutePhase

	easyPath, easyOK := pathfind.FindPath(g, start, goal)
	easyLen := pathfind.PathLength(easyPath)
	phases = append(phases, RoutePhase{
		Name:       "Easy Route",
		Difficulty: "easy",
		Path:       easyPath,
		Length:     easyLen,
		Solvable:   easyOK,
	})

	if numPhases >= 2 {
		phases = append(phases, mediumPhase(g, start, goal, easyPath, easyOK, easyLen))
	}

	if numPhases >= 3 {
		phases = append(phases, hardPhase(g, fieldBounds, start, goal))
	}

	allSolvable := true
	for _, p := range phases {
		if !p.Solvable {
			allSolvable = false
			break
		}
	}

	return RoutePhasesResult{Phases: phases, AllSolvable: allSolvable}
}

func mediumPhase(g *raster.Grid, start, goal orb.Point, easyPath []orb.Point, easyOK bool, easyLen float64) RoutePhase {
	fallback := RoutePhase{
		Name:       "Medium Route",
		Difficulty: "medium",
		Path:       easyPath,
		Length:     easyLen,
		Solvable:   easyOK,
	}
	if !easyOK || len(easyPath) <= 4 {
		return fallback
	}

	midIdx := len(easyPath) / 2
	if midIdx == 0 {
		return fallback
	}
	dx := easyPath[midIdx][0] - easyPath[midIdx-1][0]
	dy := easyPath[midIdx][1] - easyPath[midIdx-1][1]
	segLen := math.Hypot(dx, dy)
	if segLen == 0 {
		return fallback
	}

	waypoint := orb.Point{
		easyPath[midIdx][0] + (-dy/segLen)*g.Resolution*detourOffset,
		easyPath[midIdx][1] + (dx/segLen)*g.Resolution*detourOffset,
	}

	leg1, ok1 := pathfind.FindPath(g, start, waypoint)
	leg2, ok2 := pathfind.FindPath(g, waypoint, goal)
	if !ok1 || !ok2 {
		return fallback
	}

	path := stitchLegs(leg1, leg2)
	return RoutePhase{
		Name:       "Medium Route",
		Difficulty: "medium",
		Path:       path,
		Length:     pathfind.PathLength(path),
		Solvable:   true,
	}
}

func hardPhase(g *raster.Grid, bounds orb.Bound, start, goal orb.Point) RoutePhase {
	minX, minY := bounds.Min[0], bounds.Min[1]
	maxX, maxY := bounds.Max[0], bounds.Max[1]
	width, height := maxX-minX, maxY-minY

	corners := []orb.Point{
		{minX + width*cornerFraction, minY + height*cornerFraction},
		{minX + width*(1-cornerFraction), minY + height*cornerFraction},
		{minX + width*cornerFraction, minY + height*(1-cornerFraction)},
		{minX + width*(1-cornerFraction), minY + height*(1-cornerFraction)},
	}

	var bestCorner orb.Point
	bestDist := -1.0
	for _, c := range corners {
		dStart := math.Hypot(c[0]-start[0], c[1]-start[1])
		dGoal := math.Hypot(c[0]-goal[0], c[1]-goal[1])
		total := dStart + dGoal
		if total > bestDist {
			bestDist, bestCorner = total, c
		}
	}

	leg1, ok1 := pathfind.FindPath(g, start, bestCorner)
	leg2, ok2 := pathfind.FindPath(g, bestCorner, goal)
	if !ok1 || !ok2 {
		return RoutePhase{Name: "Hard Route", Difficulty: "hard", Solvable: false}
	}

	path := stitchLegs(leg1, leg2)
	return RoutePhase{
		Name:       "Hard Route",
		Difficulty: "hard",
		Path:       path,
		Length:     pathfind.PathLength(path),
		Solvable:   true,
	}
}

func stitchLegs(leg1, leg2 []orb.Point) []orb.Point {
	if len(leg2) == 0 {
		return leg1
	}
	out := make([]orb.Point, 0, len(leg1)+len(leg2)-1)
	out = append(out, leg1...)
	out = append(out, leg2[1:]...)
	return out
}
