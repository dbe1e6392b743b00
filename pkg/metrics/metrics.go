package metrics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

const snapGrid = 0.5

// Metrics summarizes a maze's row layout: dead ends and junctions of the
// snapped row graph, total path segment count and wall length, and a
// composite difficulty score.
type Metrics struct {
	TotalSegments   int
	TotalWallLength float64
	DeadEndCount    int
	JunctionCount   int
	DifficultyScore float64
	FieldAreaM2     float64
	WallDensity     float64
}

// Compute snaps row endpoints to a 0.5 m grid to coalesce near-coincident
// nodes, then derives dead-end/junction counts, wall length, and the
// difficulty score from the resulting multigraph.
func Compute(rows orb.MultiLineString, fld field.Field, k *geomkernel.Kernel) (Metrics, error) {
	g, lengths, err := buildSnappedGraph(rows)
	if err != nil {
		return Metrics{}, err
	}

	var deadEnds, junctions int
	var wallLength float64
	for _, l := range lengths {
		wallLength += l
	}

	for _, id := range g.Vertices() {
		_, _, degree, err := g.Degree(id)
		if err != nil {
			return Metrics{}, engineerr.New("metrics.Compute", engineerr.GeometricFailure, err)
		}
		switch {
		case degree == 1:
			deadEnds++
		case degree >= 3:
			junctions++
		}
	}

	fieldArea, err := fld.Area(k)
	if err != nil {
		return Metrics{}, err
	}
	perimeter := ringLength(fld.Exterior)

	sqrtArea := math.Sqrt(fieldArea)
	var deadEndScore, junctionScore, wallDensity float64
	if sqrtArea > 0 {
		deadEndScore = math.Min(1, 5*float64(deadEnds)/sqrtArea)
		junctionScore = math.Min(1, 3*float64(junctions)/sqrtArea)
	}
	if perimeter > 0 {
		wallDensity = math.Min(1, wallLength/(5*perimeter))
	}
	score := 0.35*deadEndScore + 0.35*junctionScore + 0.30*wallDensity
	score = math.Max(0, math.Min(1, score))
	score = math.Round(score*1000) / 1000

	var wallDensityPerSqrtArea float64
	if sqrtArea > 0 {
		wallDensityPerSqrtArea = wallLength / sqrtArea
	}

	return Metrics{
		TotalSegments:   len(rows),
		TotalWallLength: wallLength,
		DeadEndCount:    deadEnds,
		JunctionCount:   junctions,
		DifficultyScore: score,
		FieldAreaM2:     fieldArea,
		WallDensity:     wallDensityPerSqrtArea,
	}, nil
}

func buildSnappedGraph(rows orb.MultiLineString) (*core.Graph, map[string]float64, error) {
	g := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	lengths := make(map[string]float64)

	for _, line := range rows {
		if len(line) < 2 {
			continue
		}
		fromID, _ := snapKey(line[0])
		toID, _ := snapKey(line[len(line)-1])

		if !g.HasVertex(fromID) {
			if err := g.AddVertex(fromID); err != nil {
				return nil, nil, engineerr.New("metrics.buildSnappedGraph", engineerr.GeometricFailure, err)
			}
		}
		if !g.HasVertex(toID) {
			if err := g.AddVertex(toID); err != nil {
				return nil, nil, engineerr.New("metrics.buildSnappedGraph", engineerr.GeometricFailure, err)
			}
		}

		length := lineLength(line)
		edgeID, err := g.AddEdge(fromID, toID, int64(length*1000))
		if err != nil {
			return nil, nil, engineerr.New("metrics.buildSnappedGraph", engineerr.GeometricFailure, err)
		}
		lengths[edgeID] = length
	}
	return g, lengths, nil
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

func ringLength(r orb.Ring) float64 {
	var total float64
	for i := 0; i+1 < len(r); i++ {
		total += math.Hypot(r[i+1][0]-r[i][0], r[i+1][1]-r[i][1])
	}
	return total
}
