package flow

import (
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

func TestRunRequiresEntrancesAndExits(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(20)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := Run(g, nil, []orb.Point{{0, 0}}, Config{Seed: 1, VisitorCost: 5}); err == nil {
		t.Fatal("expected an error with no entrances")
	}
	if _, err := Run(g, []orb.Point{{0, 0}}, nil, Config{Seed: 1, VisitorCost: 5}); err == nil {
		t.Fatal("expected an error with no exits")
	}
}

func TestRunIsDeterministicForSameSeed(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(30)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entrances := []orb.Point{{-14, -14}}
	exits := []orb.Point{{14, 14}}
	cfg := Config{Seed: 42, VisitorCost: 50}

	a, err := Run(g, entrances, exits, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(g, entrances, exits, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.CompletionRate != b.CompletionRate || a.AvgSolveSteps != b.AvgSolveSteps {
		t.Fatalf("flow simulation is not deterministic: a=%+v b=%+v", a, b)
	}
	if len(a.Heatmap) != len(b.Heatmap) {
		t.Fatalf("heatmap sizes diverged across identical runs: %d vs %d", len(a.Heatmap), len(b.Heatmap))
	}
	for id, count := range a.Heatmap {
		if b.Heatmap[id] != count {
			t.Fatalf("heatmap cell %d diverged: %d vs %d", id, count, b.Heatmap[id])
		}
	}
}

func TestRunDifferentSeedsCanDiverge(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(40)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entrances := []orb.Point{{-19, -19}}
	exits := []orb.Point{{19, 19}}

	a, err := Run(g, entrances, exits, Config{Seed: 1, VisitorCost: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(g, entrances, exits, Config{Seed: 2, VisitorCost: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.CompletionRate == b.CompletionRate && a.AvgSolveSteps == b.AvgSolveSteps && len(a.Heatmap) == len(b.Heatmap) {
		t.Skip("seeds happened to produce identical aggregate statistics; not a failure on its own")
	}
}

func TestRunCompletionRateBounded(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(20)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, err := Run(g, []orb.Point{{-9, -9}}, []orb.Point{{9, 9}}, Config{Seed: 7, VisitorCost: 30})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CompletionRate < 0 || res.CompletionRate > 1 {
		t.Fatalf("completion rate out of [0,1]: %g", res.CompletionRate)
	}
}

func TestRunBottlenecksCapped(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(50)
	g, err := raster.Build(f, "", 1, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, err := Run(g, []orb.Point{{-24, -24}}, []orb.Point{{24, 24}}, Config{Seed: 3, VisitorCost: 300})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Bottlenecks) > 20 {
		t.Fatalf("bottleneck list exceeded cap: got %d", len(res.Bottlenecks))
	}
	for i := 1; i < len(res.Bottlenecks); i++ {
		if res.Bottlenecks[i].Count > res.Bottlenecks[i-1].Count {
			t.Fatal("bottleneck list is not sorted by descending count")
		}
	}
}

func TestRunZeroVisitorsProducesEmptyResult(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(20)
	g, err := raster.Build(f, "", 2, k)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, err := Run(g, []orb.Point{{-9, -9}}, []orb.Point{{9, 9}}, Config{Seed: 1, VisitorCost: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CompletionRate != 0 {
		t.Fatalf("expected 0 completion rate with 0 visitors, got %g", res.CompletionRate)
	}
	if len(res.Heatmap) != 0 {
		t.Fatalf("expected an empty heatmap with 0 visitors, got %d entries", len(res.Heatmap))
	}
}
