package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

func straightChain(n int, seg float64) []geometry.Vector2D {
	points := make([]geometry.Vector2D, n)
	for i := range points {
		points[i] = geometry.Vector2D{X: 50 - float64(i)*seg, Y: 50}
	}
	return points
}

func segmentLengths(points []geometry.Vector2D) []float64 {
	out := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		out[i-1] = points[i].DistanceTo(points[i-1])
	}
	return out
}

func TestChainRelaxation_SnapRestoresLength(t *testing.T) {
	c := chainRelaxation{segment: 0.5, factor: 1, iterations: 1}
	points := straightChain(10, 0.5)
	points[0] = points[0].Add(geometry.Vector2D{X: 0.3, Y: 0.4})

	c.relax(points)

	for i, l := range segmentLengths(points) {
		if math.Abs(l-0.5) > 1e-12 {
			t.Errorf("segment %d length = %v; want 0.5", i, l)
		}
	}
}

func TestChainRelaxation_FractionalConverges(t *testing.T) {
	c := chainRelaxation{segment: 0.5, factor: 0.5, iterations: 1}
	points := straightChain(5, 0.5)
	points[0] = points[0].Add(geometry.Vector2D{X: 0.4})

	// one sweep closes half of the first segment's error
	c.relax(points)
	if got := points[1].DistanceTo(points[0]); math.Abs(got-0.7) > 1e-12 {
		t.Fatalf("first segment after one sweep = %v; want 0.7", got)
	}

	for i := 0; i < 200; i++ {
		c.relax(points)
	}
	for i, l := range segmentLengths(points) {
		if math.Abs(l-0.5) > 1e-6 {
			t.Errorf("segment %d length = %v; want 0.5 after convergence", i, l)
		}
	}
}

func TestChainRelaxation_BendingKeepsExactLength(t *testing.T) {
	c := chainRelaxation{segment: 0.5, factor: 0.5, iterations: 1, stiffness: 0.99}
	points := straightChain(30, 0.5)

	// drag the head sideways a few times
	for step := 0; step < 20; step++ {
		points[0] = points[0].Add(geometry.Vector2D{X: 0.4, Y: 0.3})
		c.relax(points)
		for i, l := range segmentLengths(points) {
			if math.Abs(l-0.5) > 1e-9 {
				t.Fatalf("step %d segment %d length = %v; want 0.5", step, i, l)
			}
		}
	}
}

func TestChainRelaxation_StraightChainUnchanged(t *testing.T) {
	c := chainRelaxation{segment: 0.5, factor: 0.5, iterations: 3, stiffness: 0.99}
	points := straightChain(8, 0.5)
	want := straightChain(8, 0.5)

	c.relax(points)

	for i := range points {
		if !points[i].Eq(want[i]) {
			t.Errorf("point %d moved to %v; want %v", i, points[i], want[i])
		}
	}
}

func TestChainRelaxation_CoincidentPointsSkipped(t *testing.T) {
	c := chainRelaxation{segment: 0.5, factor: 1, iterations: 1, stiffness: 0.5}
	points := []geometry.Vector2D{{X: 1, Y: 1}, {X: 1, Y: 1}}

	c.relax(points)

	for _, p := range points {
		if !p.IsFinite() {
			t.Fatalf("relax produced non-finite point %v", p)
		}
	}
}

func TestChainRelaxation_BendingOverridesFactor(t *testing.T) {
	relaxWith := func(factor, stiffness float64) []geometry.Vector2D {
		c := chainRelaxation{segment: 0.5, factor: factor, iterations: 1, stiffness: stiffness}
		points := straightChain(5, 0.5)
		points[0] = points[0].Add(geometry.Vector2D{X: 0.4})
		c.relax(points)
		return points
	}

	gentle, snap := relaxWith(0.2, 0.99), relaxWith(1, 0.99)
	for i := range gentle {
		if gentle[i].DistanceTo(snap[i]) > 1e-12 {
			t.Errorf("point %d = %v with factor 0.2, %v with factor 1; want equal", i, gentle[i], snap[i])
		}
	}
	if got := gentle[1].DistanceTo(gentle[0]); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("first segment with bending = %v; want 0.5", got)
	}

	// without bending the factor decides how much of the error is closed
	if got := relaxWith(0.2, 0)[1].DistanceTo(gentle[0]); math.Abs(got-0.82) > 1e-12 {
		t.Errorf("first segment without bending = %v; want 0.82", got)
	}
}
