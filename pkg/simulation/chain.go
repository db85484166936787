package simulation

import "github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"

// minSegmentDistance below which a segment has no usable direction.
const minSegmentDistance = 1e-8

// chainRelaxation restores segment spacing after the head moved.
type chainRelaxation struct {
	segment    float64
	factor     float64 // fraction of the length error corrected per sweep, 1 snaps
	iterations int
	stiffness  float64 // 0 disables the bending pass
}

// relax runs the fractional sweeps, then the bending pass when stiffness is
// positive. The bending pass fixes every segment at rest length, so only the
// directions left by the sweeps survive it.

func (c chainRelaxation) relax(points []geometry.Vector2D) {
	for it := 0; it < c.iterations; it++ {
		for i := 1; i < len(points); i++ {
			d := points[i].Sub(points[i-1])
			dist := d.Len()
			if dist < minSegmentDistance {
				continue
			}
			points[i] = points[i].Sub(d.Mul(c.factor * (dist - c.segment) / dist))
		}
	}
	if c.stiffness > 0 {
		c.bend(points)
	}
}

// bend re-places each point at exactly one segment length from its
// predecessor, along its direction blended with the previous segment's.
func (c chainRelaxation) bend(points []geometry.Vector2D) {
	for i := 1; i < len(points); i++ {
		dir := points[i-1].Sub(points[i])
		if dir.Len() < minSegmentDistance {
			continue
		}
		dir = dir.Normalize()

		if i > 1 {
			prev := points[i-2].Sub(points[i-1])
			if prev.Len() >= minSegmentDistance {
				blended := prev.Normalize().Mul(c.stiffness).Add(dir.Mul(1 - c.stiffness))
				if blended.Len() >= minSegmentDistance {
					dir = blended.Normalize()
				}
			}
		}
		points[i] = points[i-1].Sub(dir.Mul(c.segment))
	}
}
