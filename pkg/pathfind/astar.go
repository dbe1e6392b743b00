package pathfind

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/raster"
)

type node struct {
	cellID int
	g, f   float64
	seq    int
	index  int
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

var neighborOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// FindPath runs A* from start to goal over g's open cells, using 8-
// connectivity (orthogonal step cost 1, diagonal √2, in grid-cell units)
// and a Euclidean-distance heuristic. Open-set ties on f break on lower g,
// then on insertion order. Both endpoints are snapped to the nearest open cell
// by spiral search if they fall in a blocked cell. It returns the ordered
// world-space path and true, or (nil, false) if no path exists.
func FindPath(g *raster.Grid, start, goal orb.Point) ([]orb.Point, bool) {
	startRow, startCol, ok := snapToOpen(g, start)
	if !ok {
		return nil, false
	}
	goalRow, goalCol, ok := snapToOpen(g, goal)
	if !ok {
		return nil, false
	}

	if startRow == goalRow && startCol == goalCol {
		return []orb.Point{g.CellCenter(startRow, startCol)}, true
	}

	startID := startRow*g.Cols + startCol
	goalID := goalRow*g.Cols + goalCol

	open := &nodeHeap{}
	heap.Init(open)
	cameFrom := map[int]int{}
	gScore := map[int]float64{startID: 0}
	seq := 0

	push := func(cellID int, gVal float64) {
		f := gVal + heuristic(g, cellID, goalID)
		heap.Push(open, &node{cellID: cellID, g: gVal, f: f, seq: seq})
		seq++
	}
	push(startID, 0)

	closed := map[int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.cellID] {
			continue
		}
		closed[cur.cellID] = true

		if cur.cellID == goalID {
			return reconstruct(g, cameFrom, startID, goalID), true
		}

		curRow, curCol := cur.cellID/g.Cols, cur.cellID%g.Cols
		for _, off := range neighborOffsets {
			nr, nc := curRow+off[0], curCol+off[1]
			if !g.At(nr, nc) {
				continue
			}
			nID := nr*g.Cols + nc
			if closed[nID] {
				continue
			}
			step := 1.0
			if off[0] != 0 && off[1] != 0 {
				step = math.Sqrt2
			}
			tentativeG := cur.g + step
			if existing, ok := gScore[nID]; ok && tentativeG >= existing {
				continue
			}
			gScore[nID] = tentativeG
			cameFrom[nID] = cur.cellID
			push(nID, tentativeG)
		}
	}

	return nil, false
}

func heuristic(g *raster.Grid, fromID, toID int) float64 {
	fr, fc := fromID/g.Cols, fromID%g.Cols
	tr, tc := toID/g.Cols, toID%g.Cols
	return math.Hypot(float64(tr-fr), float64(tc-fc))
}

func reconstruct(g *raster.Grid, cameFrom map[int]int, startID, goalID int) []orb.Point {
	ids := []int{goalID}
	cur := goalID
	for cur != startID {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		ids = append(ids, prev)
		cur = prev
	}
	pts := make([]orb.Point, len(ids))
	for i, id := range ids {
		row, col := id/g.Cols, id%g.Cols
		pts[len(ids)-1-i] = g.CellCenter(row, col)
	}
	return pts
}

// snapToOpen returns the grid cell containing p, or — if that cell is
// blocked — the nearest open cell found by spiraling outward in
// increasing Chebyshev radius. ok is false if no open cell is found
// within rows+cols radius steps.
func snapToOpen(g *raster.Grid, p orb.Point) (row, col int, ok bool) {
	row, col = g.WorldToCell(p)
	if g.At(row, col) {
		return row, col, true
	}
	maxRadius := g.Rows + g.Cols
	for radius := 1; radius <= maxRadius; radius++ {
		for dr := -radius; dr <= radius; dr++ {
			for dc := -radius; dc <= radius; dc++ {
				if abs(dr) != radius && abs(dc) != radius {
					continue
				}
				nr, nc := row+dr, col+dc
				if g.At(nr, nc) {
					return nr, nc, true
				}
			}
		}
	}
	return 0, 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PathLength sums Euclidean distances between consecutive points of a path
// returned by FindPath.
func PathLength(path []orb.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		dx := path[i][0] - path[i-1][0]
		dy := path[i][1] - path[i-1][1]
		total += math.Hypot(dx, dy)
	}
	return total
}
