package geometry

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// WrapAngle maps any finite angle into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// a tiny negative input plus 2π can round up to exactly 2π
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngleDelta returns the signed smallest rotation taking b onto a, in [-π, π).
func AngleDelta(a, b float64) float64 {
	return WrapAngle(a-b+math.Pi) - math.Pi
}

// AxisAngle returns the unsigned smallest angle between headings a and b, in [0, π].
func AxisAngle(a, b float64) float64 {
	return math.Abs(AngleDelta(a, b))
}
