package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

// ForceModel turns a neighbourhood into an alignment increment and a sliding velocity.
type ForceModel struct {
	AlignmentStrength float64
	AlignmentRadius   float64

	SlideProbability      float64
	SlideDistance         float64
	SlideVelocity         float64
	ParallelThreshold     float64
	AntiparallelThreshold float64
}

// NewForceModel extracts the interaction parameters from cfg.
func NewForceModel(cfg *Config) ForceModel {
	return ForceModel{
		AlignmentStrength:     cfg.AlignmentStrength,
		AlignmentRadius:       cfg.NeighborRadius(),
		SlideProbability:      cfg.SlideProbability,
		SlideDistance:         cfg.SlideDistance,
		SlideVelocity:         cfg.SlideVelocity,
		ParallelThreshold:     cfg.ParallelThreshold,
		AntiparallelThreshold: cfg.AntiparallelThreshold,
	}
}

// QueryRadius is the single radius covering both alignment and bonding neighbours.
func (m ForceModel) QueryRadius() float64 {
	return math.Max(m.AlignmentRadius, m.SlideDistance)
}

// NematicTorque returns the alignment increment −strength·2·mean(sin(2(θi−θj)))
// over the neighbour headings. Heads and tails are equivalent under the
// doubled angle, and no neighbours give 0.
func NematicTorque(theta float64, neighbors []float64, strength float64) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	var sum float64
	for _, other := range neighbors {
		sum += math.Sin(2 * (theta - other))
	}
	torque := 2 * sum / float64(len(neighbors))
	return -strength * torque
}

// BondDirection is +1 for nearly parallel headings, -1 for nearly
// antiparallel ones and 0 when a bond cannot form.
func (m ForceModel) BondDirection(thetaA, thetaB float64) int {
	d := geometry.AxisAngle(thetaA, thetaB)
	switch {
	case d < m.ParallelThreshold:
		return 1
	case d > m.AntiparallelThreshold:
		return -1
	default:
		return 0
	}
}

// SlideAlong is the sliding velocity contributed by a partner heading.
func (m ForceModel) SlideAlong(partnerTheta float64, direction int) geometry.Vector2D {
	return geometry.Unit(partnerTheta).Mul(float64(direction) * m.SlideVelocity)
}

// force is the outcome of the force phase for one filament.
type force struct {
	alignment float64
	slide     geometry.Vector2D
}

// bondCandidate is a neighbour that passed the probability draw and the
// heading test. Candidates are kept in ascending partner order.
type bondCandidate struct {
	partner   int
	direction int
}

// forceScratch is reused across filaments handled by one worker.
type forceScratch struct {
	neighbors []int
	thetas    []float64
}
