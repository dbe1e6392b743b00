package field

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/geomkernel"
)

func square(side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0},
	}}
}

func TestImportValidSquareNoWarnings(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	res, err := Import(square(50), "EPSG:32633", k) // 2500 m^2, CCW
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
	area, err := res.Field.Area(k)
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if area < 2499 || area > 2501 {
		t.Fatalf("area = %g, want ~2500", area)
	}
}

func TestImportClockwiseRingWarns(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	cw := orb.Polygon{orb.Ring{
		{0, 0}, {0, 50}, {50, 50}, {50, 0}, {0, 0},
	}}
	res, err := Import(cw, "EPSG:32633", k)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", res.Warnings)
	}
}

func TestImportTooSmallRejected(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	if _, err := Import(square(5), "EPSG:32633", k); err == nil { // 25 m^2
		t.Fatal("expected an error for a field below the minimum area")
	}
}

func TestImportRejectsLineString(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}, {0, 0}}
	if _, err := Import(line, "EPSG:32633", k); err == nil {
		t.Fatal("expected a closed LineString to be rejected, not silently accepted as a polygon")
	}
}

func TestImportMultiPolygonKeepsLargest(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	small := square(40)                                       // 1600 m^2
	big := projectionTranslated(square(60), 1000, 1000)        // 3600 m^2, far away
	mp := orb.MultiPolygon{small, big}

	res, err := Import(mp, "EPSG:32633", k)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected a multi-polygon warning, got %v", res.Warnings)
	}
	area, err := res.Field.Area(k)
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if area < 3599 || area > 3601 {
		t.Fatalf("expected the larger polygon to have been kept, area = %g", area)
	}
}

func TestImportCentersAboutBounds(t *testing.T) {
	k := geomkernel.NewKernel()
	defer k.Close()

	res, err := Import(projectionTranslated(square(40), 5000, 5000), "EPSG:32633", k)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	b := res.Field.Polygon().Bound()
	cx, cy := (b.Min[0]+b.Max[0])/2, (b.Min[1]+b.Max[1])/2
	if cx < -1e-6 || cx > 1e-6 || cy < -1e-6 || cy > 1e-6 {
		t.Fatalf("field bound not centered at origin: center=(%g,%g)", cx, cy)
	}
	if res.Field.Offset.DX == 0 && res.Field.Offset.DY == 0 {
		t.Fatal("expected a non-zero centering offset for a translated square")
	}
}

func projectionTranslated(p orb.Polygon, dx, dy float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		nr := make(orb.Ring, len(r))
		for j, pt := range r {
			nr[j] = orb.Point{pt[0] + dx, pt[1] + dy}
		}
		out[i] = nr
	}
	return out
}
