package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVectorPolar(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		theta  float64
		want   Vector2D
	}{
		{"Zero radius", 0, 0, Vector2D{0, 0}},
		{"Zero angle (X-axis)", 10, 0, Vector2D{10, 0}},
		{"90 degrees (Y-axis)", 10, math.Pi / 2, Vector2D{0, 10}},
		{"180 degrees (Negative X)", 10, math.Pi, Vector2D{-10, 0}},
		{"45 degrees", math.Sqrt(2), math.Pi / 4, Vector2D{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVectorPolar(tt.radius, tt.theta)
			if !got.Eq(tt.want) {
				t.Errorf("NewVectorPolar(%v, %v) = %v; want %v", tt.radius, tt.theta, got, tt.want)
			}
		})
	}
}

func TestUnit(t *testing.T) {
	for _, theta := range []float64{0, 0.3, math.Pi / 2, math.Pi, 4, 2*math.Pi - 0.1} {
		u := Unit(theta)
		if !floatEquals(u.Len(), 1) {
			t.Errorf("Unit(%v) length = %v; want 1", theta, u.Len())
		}
		if !floatEquals(u.X, math.Cos(theta)) || !floatEquals(u.Y, math.Sin(theta)) {
			t.Errorf("Unit(%v) = %v", theta, u)
		}
	}
}

func TestVector_String(t *testing.T) {
	v := Vector2D{1.234, 5.678}
	want := "(1.23, 5.68)"
	if got := v.String(); got != want {
		t.Errorf("Vector2D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector2D{1, 2}
	v2 := Vector2D{3, 4}

	t.Run("Add", func(t *testing.T) {
		want := Vector2D{4, 6}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector2D{-2, -2}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector2D{2, 4}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("Dot", func(t *testing.T) {
		if got := v1.Dot(v2); got != 11 {
			t.Errorf("%v.Dot(%v) = %v; want 11", v1, v2, got)
		}
	})
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector2D{3, 4} // 3-4-5 triangle

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); got != 5 {
			t.Errorf("Len = %v; want 5", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 25 {
			t.Errorf("LenSqr = %v; want 25", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		got := v.Normalize()
		want := Vector2D{0.6, 0.8}
		if !got.Eq(want) {
			t.Errorf("Normalize = %v; want %v", got, want)
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		zero := Vector2D{0, 0}
		if got := zero.Normalize(); !got.Eq(zero) {
			t.Errorf("Normalize(0,0) = %v; want (0,0)", got)
		}
	})
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector2D{1, 1}
	v2 := Vector2D{4, 5} // dx=3, dy=4, dist=5

	if got := v1.DistanceTo(v2); got != 5 {
		t.Errorf("DistanceTo = %v; want 5", got)
	}
	if got := v1.DistanceSquaredTo(v2); got != 25 {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}
}

func TestVector_Lerp(t *testing.T) {
	got := Vector2D{0, 0}.Lerp(Vector2D{10, 10}, 0.5)
	if want := (Vector2D{5, 5}); !got.Eq(want) {
		t.Errorf("Lerp(0.5) = %v; want %v", got, want)
	}
}

func TestVector_IsFinite(t *testing.T) {
	tests := []struct {
		v    Vector2D
		want bool
	}{
		{Vector2D{1, 2}, true},
		{Vector2D{math.NaN(), 0}, false},
		{Vector2D{0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsFinite(); got != tt.want {
			t.Errorf("%v.IsFinite() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_Eq(t *testing.T) {
	v := Vector2D{1, 2}

	if !v.Eq(Vector2D{1, 2}) {
		t.Error("Eq exact match failed")
	}
	if !v.Eq(Vector2D{1 + Epsilon/2, 2 - Epsilon/2}) {
		t.Error("Eq epsilon match failed")
	}
	if v.Eq(Vector2D{1.1, 2}) {
		t.Error("Eq mismatch failed")
	}
}
