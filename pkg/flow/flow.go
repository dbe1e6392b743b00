package flow

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/raster"
	"github.com/cornmazecad/engine/pkg/rng"
)

// Config configures one flow simulation run, per §4.12.
type Config struct {
	Seed        uint64
	VisitorCost int // N, number of simulated visitors
}

// Bottleneck is one of the top-20 most-visited cells, reported when its
// visit count clears the 90th-percentile threshold.
type Bottleneck struct {
	Point orb.Point
	Count int
}

// Result is a completed flow simulation's output.
type Result struct {
	Heatmap        map[int]int // cellID -> visit count
	Bottlenecks    []Bottleneck
	CompletionRate float64
	AvgSolveSteps  float64
}

// Run simulates cfg.VisitorCost visitors, each starting at a random
// entrance grid-cell and targeting a random exit, biased-random-walking
// toward it per §4.12. The simulation is deterministic for a given seed,
// grid, entrances, and exits.
func Run(g *raster.Grid, entrances, exits []orb.Point, cfg Config) (Result, error) {
	if len(entrances) == 0 {
		return Result{}, engineerr.Newf("flow.Run", engineerr.MissingPrerequisite, "no entrances to start visitors from")
	}
	if len(exits) == 0 {
		return Result{}, engineerr.Newf("flow.Run", engineerr.MissingPrerequisite, "no exits for visitors to target")
	}

	r := rng.NewRNG(cfg.Seed, "flow_simulation", nil)
	maxSteps := g.Rows*g.Cols*2 + 1

	exitCells := make(map[int]bool, len(exits))
	for _, e := range exits {
		exitCells[cellID(g, e)] = true
	}

	heatmap := make(map[int]int)
	var solvedCount int
	var totalSolveSteps int

	for v := 0; v < cfg.VisitorCost; v++ {
		start := snapOpen(g, entrances[r.Intn(len(entrances))])
		target := snapOpen(g, exits[r.Intn(len(exits))])

		visited := map[int]bool{start: true}
		cur := start
		steps := 0
		solved := false

		for ; steps < maxSteps; steps++ {
			heatmap[cur]++
			if exitCells[cur] {
				solved = true
				break
			}

			neighbors := validNeighbors(g, cur)
			if len(neighbors) == 0 {
				break
			}

			var next int
			if r.Float64() < 0.7 {
				biased := append([]int{}, neighbors...)
				sort.Slice(biased, func(i, j int) bool {
					return manhattan(g, biased[i], target) < manhattan(g, biased[j], target)
				})
				pool := filterUnvisited(biased, visited)
				if len(pool) == 0 {
					pool = biased
				}
				if r.Float64() < 0.8 {
					next = pool[0]
				} else {
					next = pool[r.Intn(len(pool))]
				}
			} else {
				next = neighbors[r.Intn(len(neighbors))]
			}

			visited[next] = true
			cur = next
		}

		if solved {
			solvedCount++
			totalSolveSteps += steps
		}
	}

	bottlenecks := topBottlenecks(g, heatmap)

	completion := 0.0
	if cfg.VisitorCost > 0 {
		completion = float64(solvedCount) / float64(cfg.VisitorCost)
	}
	avgSteps := 0.0
	if solvedCount > 0 {
		avgSteps = float64(totalSolveSteps) / float64(solvedCount)
	}

	return Result{
		Heatmap:        heatmap,
		Bottlenecks:    bottlenecks,
		CompletionRate: completion,
		AvgSolveSteps:  avgSteps,
	}, nil
}

func cellID(g *raster.Grid, p orb.Point) int {
	row, col := g.WorldToCell(p)
	return row*g.Cols + col
}

// snapOpen resolves p to an open cell ID, falling back to a full grid scan
// for the nearest open cell if p's own cell is blocked.
func snapOpen(g *raster.Grid, p orb.Point) int {
	row, col := g.WorldToCell(p)
	if g.At(row, col) {
		return row*g.Cols + col
	}
	best := -1
	bestDist := math.Inf(1)
	for rr := 0; rr < g.Rows; rr++ {
		for cc := 0; cc < g.Cols; cc++ {
			if !g.At(rr, cc) {
				continue
			}
			d := math.Hypot(float64(rr-row), float64(cc-col))
			if d < bestDist {
				bestDist, best = d, rr*g.Cols+cc
			}
		}
	}
	if best < 0 {
		return row*g.Cols + col
	}
	return best
}

var fourNeighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func validNeighbors(g *raster.Grid, id int) []int {
	row, col := id/g.Cols, id%g.Cols
	var out []int
	for _, off := range fourNeighborOffsets {
		nr, nc := row+off[0], col+off[1]
		if g.At(nr, nc) {
			out = append(out, nr*g.Cols+nc)
		}
	}
	return out
}

func manhattan(g *raster.Grid, a, b int) int {
	ar, ac := a/g.Cols, a%g.Cols
	br, bc := b/g.Cols, b%g.Cols
	return absInt(ar-br) + absInt(ac-bc)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func filterUnvisited(ids []int, visited map[int]bool) []int {
	var out []int
	for _, id := range ids {
		if !visited[id] {
			out = append(out, id)
		}
	}
	return out
}

// topBottlenecks returns the top-20 most-visited cells whose visit count
// clears the 90th-percentile threshold across all visited cells.
func topBottlenecks(g *raster.Grid, heatmap map[int]int) []Bottleneck {
	if len(heatmap) == 0 {
		return nil
	}
	counts := make([]int, 0, len(heatmap))
	for _, c := range heatmap {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	idx := int(math.Ceil(0.9*float64(len(counts)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(counts) {
		idx = len(counts) - 1
	}
	threshold := counts[idx]

	var candidates []Bottleneck
	for id, c := range heatmap {
		if c >= threshold {
			row, col := id/g.Cols, id%g.Cols
			candidates = append(candidates, Bottleneck{Point: g.CellCenter(row, col), Count: c})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Point[0] < candidates[j].Point[0]
	})
	if len(candidates) > 20 {
		candidates = candidates[:20]
	}
	return candidates
}
