package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

// boundary reflects heads at the walls of [0, size]².
type boundary struct {
	size float64
}

// reflect clamps the head into the domain and mirrors the headings of a
// filament that left it. Trailing points are left to the next relaxation.
// It reports whether a wall was hit.
func (b boundary) reflect(f *Filament) bool {
	head := f.Points[0]
	hit := false

	if head.X < 0 || head.X > b.size {
		head.X = math.Min(math.Max(head.X, 0), b.size)
		f.Theta = math.Pi - f.Theta
		f.SmoothedTheta = math.Pi - f.SmoothedTheta
		hit = true
	}
	if head.Y < 0 || head.Y > b.size {
		head.Y = math.Min(math.Max(head.Y, 0), b.size)
		f.Theta = -f.Theta
		f.SmoothedTheta = -f.SmoothedTheta
		hit = true
	}

	f.Theta = geometry.WrapAngle(f.Theta)
	f.SmoothedTheta = geometry.WrapAngle(f.SmoothedTheta)
	f.Points[0] = head
	return hit
}
