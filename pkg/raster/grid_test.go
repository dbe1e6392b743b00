package raster

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

func square(side float64) field.Field {
	half := side / 2
	return field.Field{
		Exterior: orb.Ring{{-half, -half}, {half, -half}, {half, half}, {-half, half}, {-half, -half}},
	}
}

func TestBuildOpenFieldAllCellsOpen(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	g, err := Build(square(20), "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Rows != 10 || g.Cols != 10 {
		t.Fatalf("expected a 10x10 grid, got %dx%d", g.Rows, g.Cols)
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.At(row, col) {
				t.Fatalf("expected cell (%d,%d) open in an empty field", row, col)
			}
		}
	}
}

func TestBuildBlocksWallBufferedCells(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	wall := geomkernel.FromOrb(orb.Polygon{{{-1, -10}, {1, -10}, {1, 10}, {-1, 10}, {-1, -10}}})
	g, err := Build(square(20), wall, 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	center := orb.Point{0, 0}
	row, col := g.WorldToCell(center)
	if g.At(row, col) {
		t.Fatal("expected the cell at the wall's center to be blocked")
	}

	edge := orb.Point{9, 0}
	row, col = g.WorldToCell(edge)
	if !g.At(row, col) {
		t.Fatal("expected a cell far from the wall to remain open")
	}
}

func TestBuildRejectsNonPositiveResolution(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	if _, err := Build(square(10), "", 0, k); err == nil {
		t.Fatal("expected an error for a zero resolution")
	}
	if _, err := Build(square(10), "", -1, k); err == nil {
		t.Fatal("expected an error for a negative resolution")
	}
}

func TestBuildExcludesCellsOutsideField(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	// An L-shaped field: its bounding box includes a notch (the top-right
	// quadrant) that lies outside the polygon itself.
	lShaped := field.Field{
		Exterior: orb.Ring{
			{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}, {0, 0},
		},
	}
	g, err := Build(lShaped, "", 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	row, col := g.WorldToCell(orb.Point{8, 8})
	if g.At(row, col) {
		t.Fatal("expected a cell in the notched-out corner to be excluded")
	}
	row, col = g.WorldToCell(orb.Point{2, 2})
	if !g.At(row, col) {
		t.Fatal("expected a cell inside the L's body to remain open")
	}
}

func TestCellCenterAndWorldToCellRoundTrip(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	g, err := Build(square(20), "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			p := g.CellCenter(row, col)
			gotRow, gotCol := g.WorldToCell(p)
			if gotRow != row || gotCol != col {
				t.Fatalf("round trip mismatch at (%d,%d): got (%d,%d)", row, col, gotRow, gotCol)
			}
		}
	}
}

func TestInBoundsRejectsOutOfRangeIndices(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	g, err := Build(square(10), "", 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.InBounds(-1, 0) || g.InBounds(0, -1) || g.InBounds(g.Rows, 0) || g.InBounds(0, g.Cols) {
		t.Fatal("expected out-of-range indices to report not in bounds")
	}
	if g.At(-1, 0) || g.At(g.Rows, g.Cols) {
		t.Fatal("expected At to return false for out-of-range indices rather than panic")
	}
}
