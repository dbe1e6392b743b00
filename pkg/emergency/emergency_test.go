package emergency

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
	"github.com/cornmazecad/engine/pkg/raster"
)

func squareField(side float64) field.Field {
	half := side / 2
	return field.Field{
		Exterior: orb.Ring{
			{-half, -half}, {half, -half}, {half, half}, {-half, half}, {-half, -half},
		},
		CRS: "EPSG:32633",
	}
}

func TestAnalyzeNoExitsIsWhollyUncovered(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(20)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cov := Analyze(g, nil, 10)
	if cov.CoveredCount != 0 {
		t.Fatalf("expected 0 covered cells with no exits, got %d", cov.CoveredCount)
	}
	if cov.OpenCellCount == 0 {
		t.Fatal("expected a nonzero open-cell count for a bare square field")
	}
	for _, u := range cov.WorstUncovered {
		if !math.IsInf(u.Distance, 1) {
			t.Fatalf("expected infinite distance with no exits, got %g", u.Distance)
		}
	}
}

func TestAnalyzeExitAtCenterCoversEverythingWithinRadius(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(10)
	g, err := raster.Build(f, "", 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cov := Analyze(g, []orb.Point{{0, 0}}, 100)
	if cov.CoveragePercent != 100 {
		t.Fatalf("expected 100%% coverage with a generous max distance, got %g", cov.CoveragePercent)
	}
	if len(cov.PerExit) != 1 {
		t.Fatalf("expected one PerExit entry, got %d", len(cov.PerExit))
	}
	if cov.PerExit[0].Area <= 0 {
		t.Fatal("expected the single exit to claim positive coverage area")
	}
}

func TestAnalyzeWorstUncoveredCapped(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(60)
	g, err := raster.Build(f, "", 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cov := Analyze(g, []orb.Point{{0, 0}}, 0.001)
	if len(cov.WorstUncovered) > worstUncoveredCap {
		t.Fatalf("worst-uncovered list exceeded cap: got %d, cap %d", len(cov.WorstUncovered), worstUncoveredCap)
	}
	for i := 1; i < len(cov.WorstUncovered); i++ {
		if cov.WorstUncovered[i].Distance > cov.WorstUncovered[i-1].Distance {
			t.Fatal("worst-uncovered list is not sorted by descending distance")
		}
	}
}

func TestSuggestExitsImprovesCoverage(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(40)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	before := Analyze(g, nil, 8)
	suggested, err := SuggestExits(g, f, nil, 8)
	if err != nil {
		t.Fatalf("SuggestExits: %v", err)
	}
	if len(suggested) == 0 {
		t.Fatal("expected SuggestExits to propose at least one exit for an uncovered field")
	}
	after := Analyze(g, suggested, 8)
	if after.CoveragePercent < before.CoveragePercent {
		t.Fatalf("coverage got worse after suggestion: before=%g after=%g", before.CoveragePercent, after.CoveragePercent)
	}
	for _, e := range suggested {
		d := nearestPointOnRing(e, f.Exterior)
		if math.Hypot(e[0]-d[0], e[1]-d[1]) > 1e-6 {
			t.Fatalf("suggested exit %v does not lie on the field boundary", e)
		}
	}
}

func TestSuggestExitsNilGridRejected(t *testing.T) {
	f := squareField(10)
	if _, err := SuggestExits(nil, f, nil, 5); err == nil {
		t.Fatal("expected an error for a nil grid")
	}
}
