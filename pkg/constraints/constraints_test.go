package constraints

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

func TestValidateCleanFieldHasNoViolations(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	fld := square(100)
	var rows orb.MultiLineString
	for x := -40.0; x <= 40; x += 5 {
		rows = append(rows, orb.LineString{{x, -45}, {x, 45}})
	}

	cfg := DefaultConfig()
	violations, err := Validate(rows, fld, cfg, k)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, v := range violations {
		if v.Kind == WallTooThin || v.Kind == InterPathBuffer {
			t.Fatalf("unexpected wall-spacing violation on a 5m-spaced field: %+v", v)
		}
	}
}

func TestWallTooThinDetectsCloseRows(t *testing.T) {
	rows := orb.MultiLineString{
		{{0, 0}, {0, 20}},
		{{0.5, 0}, {0.5, 20}},
	}
	cfg := DefaultConfig()
	violations := wallTooThin(rows, cfg)
	if len(violations) != 1 {
		t.Fatalf("expected 1 wall-too-thin violation, got %d", len(violations))
	}
	if violations[0].ActualValue >= cfg.MinWallWidth {
		t.Fatalf("expected actual < MinWallWidth, got %g", violations[0].ActualValue)
	}
}

func TestEdgeBufferFlagsRowsNearEdge(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	fld := square(40)
	rows := orb.MultiLineString{{{-19.9, -15}, {-19.9, 15}}}
	cfg := DefaultConfig()

	violations, err := edgeBuffer(rows, fld, cfg, k)
	if err != nil {
		t.Fatalf("edgeBuffer: %v", err)
	}
	if len(violations) == 0 {
		t.Fatal("expected at least one edge-buffer violation for a row hugging the boundary")
	}
	for _, v := range violations {
		if v.Kind != EdgeBuffer {
			t.Fatalf("unexpected kind %v", v.Kind)
		}
	}
}

func TestDeadEndTooLongFlagsLongSpur(t *testing.T) {
	rows := orb.MultiLineString{
		{{0, 0}, {0, 60}},
		{{0, 60}, {10, 60}},
		{{0, 60}, {-10, 60}},
	}
	cfg := DefaultConfig()
	violations, err := deadEndTooLong(rows, cfg)
	if err != nil {
		t.Fatalf("deadEndTooLong: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("expected exactly 1 dead-end violation (the 60m spur into the junction), got %d", len(violations))
	}
	if violations[0].ActualValue < cfg.MaxDeadEndLength {
		t.Fatalf("expected actual length > %g, got %g", cfg.MaxDeadEndLength, violations[0].ActualValue)
	}
}

func TestDeadEndShortSpurNotFlagged(t *testing.T) {
	rows := orb.MultiLineString{
		{{0, 0}, {0, 10}},
		{{0, 10}, {10, 10}},
		{{0, 10}, {-10, 10}},
	}
	cfg := DefaultConfig()
	violations, err := deadEndTooLong(rows, cfg)
	if err != nil {
		t.Fatalf("deadEndTooLong: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations for short spurs, got %d", len(violations))
	}
}

func TestNearestPointsBetweenParallelSegments(t *testing.T) {
	a := orb.LineString{{0, 0}, {0, 10}}
	b := orb.LineString{{3, 0}, {3, 10}}
	_, _, dist := nearestPoints(a, b)
	if dist < 2.9 || dist > 3.1 {
		t.Fatalf("expected distance ~3, got %g", dist)
	}
}
