package rows

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/geomkernel"
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

func TestGenerateDeterministic(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(100)
	cfg := Config{SpacingM: 10, DirectionDeg: 0}

	a, err := Generate(f, cfg, k)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(f, cfg, k)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if geomkernel.FromOrb(a) != geomkernel.FromOrb(b) {
		t.Fatal("row generation is not deterministic for identical inputs")
	}
}

func TestGenerateRowsInsideField(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(100)
	rows, err := Generate(f, Config{SpacingM: 15, DirectionDeg: 20}, k)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one row for a 100x100 field at 15m spacing")
	}
	for _, line := range rows {
		for _, p := range line {
			if math.Abs(p[0]) > 50+1e-6 || math.Abs(p[1]) > 50+1e-6 {
				t.Fatalf("row point %v lies outside the field bound", p)
			}
		}
	}
}

func TestGenerateHeadlandInsetShrinksBound(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(100)
	cfg := Config{SpacingM: 10, DirectionDeg: 0}

	plain, err := Generate(f, cfg, k)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cfg.HeadlandInsetM = 10
	inset, err := Generate(f, cfg, k)
	if err != nil {
		t.Fatalf("Generate with headland inset: %v", err)
	}

	plainBound := orb.MultiLineString(plain).Bound()
	insetBound := orb.MultiLineString(inset).Bound()
	if insetBound.Max[1]-insetBound.Min[1] >= plainBound.Max[1]-plainBound.Min[1] {
		t.Fatalf("headland inset did not shrink row extent: plain=%v inset=%v", plainBound, insetBound)
	}
}

func TestGenerateRejectsNonPositiveSpacing(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(100)
	if _, err := Generate(f, Config{SpacingM: 0, DirectionDeg: 0}, k); err == nil {
		t.Fatal("expected an error for zero row spacing")
	}
	if _, err := Generate(f, Config{SpacingM: -5, DirectionDeg: 0}, k); err == nil {
		t.Fatal("expected an error for negative row spacing")
	}
}

func TestGenerateRejectsNegativeHeadlandInset(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	f := squareField(100)
	if _, err := Generate(f, Config{SpacingM: 10, HeadlandInsetM: -1}, k); err == nil {
		t.Fatal("expected an error for a negative headland inset")
	}
}
