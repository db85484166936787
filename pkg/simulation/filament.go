package simulation

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

// Filament is one self-propelled worm-like chain. Points[0] is the head.
type Filament struct {
	ID            int
	Points        []geometry.Vector2D
	Theta         float64 // alignment bookkeeping heading, always in [0, 2π)
	SmoothedTheta float64 // movement heading when smoothing is enabled
	Polarity      int     // +1 or -1
	Speed         float64

	// Bonding state. StuckTo indexes the population and is -1 while free;
	// it never owns the partner. Once set, a bond is permanent.
	Stuck          bool
	StuckTo        int
	StuckDirection int

	rng Source
}

// kinetics holds the per-step constants derived once from Config.
type kinetics struct {
	dt           float64
	noiseScale   float64 // sqrt(2·D_omega·dt)
	reversalProb float64 // reversal_rate·dt
	smoothing    bool
	alpha        float64
	chain        chainRelaxation
	bounds       boundary
}

func newKinetics(cfg *Config) kinetics {
	return kinetics{
		dt:           cfg.Dt,
		noiseScale:   math.Sqrt(2 * cfg.DOmega() * cfg.Dt),
		reversalProb: cfg.ReversalRate * cfg.Dt,
		smoothing:    cfg.Smoothing,
		alpha:        cfg.SmoothingAlpha,
		chain: chainRelaxation{
			segment:    cfg.SegmentLength(),
			factor:     cfg.RelaxFactor,
			iterations: cfg.RelaxIterations,
			stiffness:  cfg.BendingStiffness,
		},
		bounds: boundary{size: cfg.DomainSize},
	}
}

// newFilament lays the body out straight behind the head, against the heading.
func newFilament(id int, head geometry.Vector2D, theta float64, cfg *Config, rng Source) Filament {
	theta = geometry.WrapAngle(theta)
	back := geometry.Unit(theta).Mul(-cfg.SegmentLength())
	points := make([]geometry.Vector2D, cfg.NumSegments)
	for i := range points {
		points[i] = head.Add(back.Mul(float64(i)))
	}
	return Filament{
		ID:            id,
		Points:        points,
		Theta:         theta,
		SmoothedTheta: theta,
		Polarity:      1,
		Speed:         cfg.V0Mean,
		StuckTo:       -1,
		rng:           rng,
	}
}

// Head returns the leading point.
func (f *Filament) Head() geometry.Vector2D {
	return f.Points[0]
}

// update integrates one step given the alignment increment and sliding velocity.
// It fails when the new state is not finite.
func (f *Filament) update(k *kinetics, alignment float64, slide geometry.Vector2D) error {
	if f.rng.Float64() < k.reversalProb {
		f.Polarity = -f.Polarity
	}

	noise := k.noiseScale * f.rng.NormFloat64()
	f.Theta = geometry.WrapAngle(f.Theta + noise + alignment)

	direction := f.Theta
	if k.smoothing {
		f.SmoothedTheta = geometry.WrapAngle(f.SmoothedTheta + k.alpha*geometry.AngleDelta(f.Theta, f.SmoothedTheta))
		direction = f.SmoothedTheta
	} else {
		f.SmoothedTheta = f.Theta
	}

	velocity := geometry.Unit(direction).Mul(f.Speed * float64(f.Polarity)).Add(slide)
	f.Points[0] = f.Points[0].Add(velocity.Mul(k.dt))

	k.chain.relax(f.Points)
	k.bounds.reflect(f)
	return f.checkFinite()
}

func (f *Filament) checkFinite() error {
	if math.IsNaN(f.Theta) || math.IsInf(f.Theta, 0) || math.IsNaN(f.SmoothedTheta) {
		return fmt.Errorf("filament %d: non-finite heading %v", f.ID, f.Theta)
	}
	for i, p := range f.Points {
		if !p.IsFinite() {
			return fmt.Errorf("filament %d: non-finite point %d %v", f.ID, i, p)
		}
	}
	return nil
}
