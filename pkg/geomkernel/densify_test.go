package geomkernel

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"pgregory.net/rapid"
)

func TestDensifyStraightLineUnchanged(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	out := Densify(line, DefaultMaxSagitta).(orb.LineString)
	if len(out) != len(line) {
		t.Fatalf("collinear line should not gain points: got %d want %d", len(out), len(line))
	}
	for i, p := range line {
		if out[i] != p {
			t.Fatalf("point %d changed: got %v want %v", i, out[i], p)
		}
	}
}

func TestDensifySagittaBound(t *testing.T) {
	// A sharp three-point bend: circumradius is small, so the interior
	// segment should be subdivided until every chord's sagitta is within
	// bound.
	pts := orb.LineString{{-10, 0}, {0, 5}, {10, 0}}
	out := Densify(pts, DefaultMaxSagitta).(orb.LineString)
	if len(out) <= len(pts) {
		t.Fatalf("expected extra interpolated points, got %d", len(out))
	}
	cx, cy, r, ok := circumcircle(pts[0], pts[1], pts[2])
	if !ok {
		t.Fatal("expected a valid circumcircle for a sharp bend")
	}
	center := orb.Point{cx, cy}

	// Only the pts[0]->pts[1] run carries a curvature triple (it has a far
	// neighbor, pts[2]); the trailing pts[1]->pts[2] segment has none and is
	// left as the original straight chord, so it's excluded from the bound
	// check below.
	splitAt := len(out) - 1
	for i, p := range out {
		if p == pts[1] {
			splitAt = i
			break
		}
	}
	for i := 0; i+1 < splitAt+1; i++ {
		p0, p1 := out[i], out[i+1]
		halfChord := math.Hypot(p1[0]-p0[0], p1[1]-p0[1]) / 2
		sagitta := r - math.Sqrt(math.Max(0, r*r-halfChord*halfChord))
		if sagitta > DefaultMaxSagitta+1e-9 {
			t.Fatalf("segment %d sagitta %g exceeds bound", i, sagitta)
		}
		// every inserted point must lie on the fitted circle
		d := math.Hypot(p1[0]-center[0], p1[1]-center[1])
		if math.Abs(d-r) > 1e-6 {
			t.Fatalf("point %v not on circumcircle (got radius %g want %g)", p1, d, r)
		}
	}
}

func TestDensifyClosedRingBoundedSagitta(t *testing.T) {
	// Every vertex of a ring has two neighbors, so every edge carries a
	// curvature triple and must individually satisfy the sagitta bound.
	ring := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	out := Densify(ring, 0.05).(orb.Ring)
	if out[0] != out[len(out)-1] {
		t.Fatal("densified ring must remain closed")
	}
	// All four corners lie on the circle centered (2,2) with radius 2*sqrt(2),
	// so every densified edge follows that circle.
	r := 2 * math.Sqrt2
	for i := 0; i+1 < len(out); i++ {
		p0, p1 := out[i], out[i+1]
		halfChord := math.Hypot(p1[0]-p0[0], p1[1]-p0[1]) / 2
		sagitta := r - math.Sqrt(math.Max(0, r*r-halfChord*halfChord))
		if sagitta > 0.05+1e-9 {
			t.Fatalf("segment %d sagitta %g exceeds the 0.05 bound", i, sagitta)
		}
	}
}

// TestDensifyPropertyBoundedSagitta checks part of the §8 universal property
// on random polylines: densify never removes points and preserves both
// endpoints. The sagitta bound itself is checked by the fixed-input tests
// above.
func TestDensifyPropertyBoundedSagitta(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(3, 12).Draw(rt, "n")
		pts := make(orb.LineString, n)
		for i := range pts {
			x := rapid.Float64Range(-100, 100).Draw(rt, "x")
			y := rapid.Float64Range(-100, 100).Draw(rt, "y")
			pts[i] = orb.Point{x, y}
		}
		out := Densify(pts, DefaultMaxSagitta).(orb.LineString)
		if len(out) < len(pts) {
			rt.Fatalf("densify must not remove points: got %d want >= %d", len(out), len(pts))
		}
		// endpoints preserved
		if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
			rt.Fatalf("endpoints must be preserved")
		}
	})
}
