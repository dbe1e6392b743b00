package raster

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Grid is the boolean walkability grid §4.8 describes: a flat, row-major
// open/blocked map over a field's bounds at a fixed resolution.
type Grid struct {
	Open       []bool // row-major, Open[row*Cols+col]; true = walkable
	Rows, Cols int
	OriginX    float64
	OriginY    float64
	Resolution float64
}

// Build computes the walkability grid for fld with walls (standing-corn
// wall geometry as WKT of any type, e.g. row lines; may be empty) at the given
// resolution. A cell is open iff its center lies inside the field and
// outside the walls buffered by 0.4*resolution.
func Build(fld field.Field, wallsWKT geomkernel.WKT, resolution float64, k *geomkernel.Kernel) (*Grid, error) {
	if resolution <= 0 {
		return nil, engineerr.Newf("raster.Build", engineerr.InvalidInput, "resolution must be > 0, got %g", resolution)
	}

	bound := fld.Polygon().Bound()
	cols := int(math.Ceil((bound.Max[0] - bound.Min[0]) / resolution))
	rows := int(math.Ceil((bound.Max[1] - bound.Min[1]) / resolution))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	hasWalls := wallsWKT != "" && !k.IsEmpty(wallsWKT)
	var bufferedWallsWKT geomkernel.WKT
	if hasWalls {
		bw, err := k.Buffer(wallsWKT, 0.4*resolution, geomkernel.InternalBufferOptions(geomkernel.CapRound, geomkernel.JoinRound))
		if err != nil {
			return nil, engineerr.New("raster.Build", engineerr.GeometricFailure, err)
		}
		bufferedWallsWKT = bw
	}

	fieldWKT := fld.WKT()
	open := make([]bool, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cx := bound.Min[0] + (float64(col)+0.5)*resolution
			cy := bound.Min[1] + (float64(row)+0.5)*resolution
			pointWKT := geomkernel.FromOrb(orb.Point{cx, cy})

			inside, err := k.Contains(fieldWKT, pointWKT)
			if err != nil {
				return nil, engineerr.New("raster.Build", engineerr.GeometricFailure, err)
			}
			if !inside {
				continue
			}
			if hasWalls {
				blocked, err := k.Contains(bufferedWallsWKT, pointWKT)
				if err != nil {
					return nil, engineerr.New("raster.Build", engineerr.GeometricFailure, err)
				}
				if blocked {
					continue
				}
			}
			open[row*cols+col] = true
		}
	}

	return &Grid{
		Open:       open,
		Rows:       rows,
		Cols:       cols,
		OriginX:    bound.Min[0],
		OriginY:    bound.Min[1],
		Resolution: resolution,
	}, nil
}

// InBounds reports whether (row, col) is within the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// At reports whether (row, col) is an open (walkable) cell. Out-of-bounds
// cells are never open.
func (g *Grid) At(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.Open[row*g.Cols+col]
}

// CellCenter returns the world-space center of (row, col).
func (g *Grid) CellCenter(row, col int) orb.Point {
	return orb.Point{
		g.OriginX + (float64(col)+0.5)*g.Resolution,
		g.OriginY + (float64(row)+0.5)*g.Resolution,
	}
}

// WorldToCell returns the (row, col) whose cell contains p. The result may
// be out of bounds; callers should check InBounds.
func (g *Grid) WorldToCell(p orb.Point) (row, col int) {
	col = int(math.Floor((p[0] - g.OriginX) / g.Resolution))
	row = int(math.Floor((p[1] - g.OriginY) / g.Resolution))
	return row, col
}
