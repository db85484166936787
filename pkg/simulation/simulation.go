package simulation

import (
	"fmt"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// Placement fixes the initial head position and heading of one filament.
type Placement struct {
	Head  geometry.Vector2D `json:"head"`
	Theta float64           `json:"theta"`
}

// FilamentView is a read-only copy of a filament handed to observers.
type FilamentView struct {
	ID       int                 `json:"id"`
	Points   []geometry.Vector2D `json:"points"`
	Theta    float64             `json:"theta"`
	Polarity int                 `json:"polarity"`
	Stuck    bool                `json:"stuck"`
	StuckTo  int                 `json:"stuckTo"`
}

// Option customises a Simulation at construction.
type Option func(*Simulation)

// WithLogger routes population and bonding events to logger.
func WithLogger(logger golog.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithPlacements replaces random placement. One entry per filament is required.
func WithPlacements(placements []Placement) Option {
	return func(s *Simulation) {
		s.placements = placements
	}
}

// WithWorkers overrides Config.Workers.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		s.workers = n
	}
}

// Simulation owns the population and advances it in discrete steps.
// It is not safe for concurrent use; wrap it in a SimulationActor to share it.
type Simulation struct {
	cfg        Config
	kin        kinetics
	model      ForceModel
	filaments  []Filament
	grid       *SpatialIndex
	logger     golog.Logger
	workers    int
	placements []Placement

	// Per-step buffers. heads and thetas freeze the state seen by the force phase.
	heads      []geometry.Vector2D
	thetas     []float64
	forces     []force
	candidates [][]bondCandidate
	claimed    []bool

	step  int
	bonds int
}

// New builds a population from cfg. A nil src seeds a PCG stream from cfg.Seed.
func New(cfg *Config, src Source, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewSource(cfg.Seed)
	}

	s := &Simulation{
		cfg:     *cfg,
		kin:     newKinetics(cfg),
		model:   NewForceModel(cfg),
		logger:  golog.DiscardLogger,
		workers: cfg.Workers,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.grid = NewSpatialIndex(s.model.QueryRadius())

	if err := s.populate(src); err != nil {
		return nil, err
	}

	n := len(s.filaments)
	s.heads = make([]geometry.Vector2D, n)
	s.thetas = make([]float64, n)
	s.forces = make([]force, n)
	s.candidates = make([][]bondCandidate, n)
	s.claimed = make([]bool, n)

	s.logger.Infof("population of %d filaments in a %.0f µm domain, D_omega=%.4g, workers=%d",
		n, cfg.DomainSize, cfg.DOmega(), s.workers)
	return s, nil
}

func (s *Simulation) populate(src Source) error {
	cfg := &s.cfg
	n := cfg.NumFilaments
	s.filaments = make([]Filament, n)

	if s.placements != nil {
		if len(s.placements) != n {
			return fmt.Errorf("%w: %d placements for %d filaments", ErrInvalidConfig, len(s.placements), n)
		}
		for i, p := range s.placements {
			if !p.Head.IsFinite() || math.IsNaN(p.Theta) || math.IsInf(p.Theta, 0) {
				return fmt.Errorf("%w: placement %d is not finite", ErrInvalidConfig, i)
			}
			if p.Head.X < 0 || p.Head.X > cfg.DomainSize || p.Head.Y < 0 || p.Head.Y > cfg.DomainSize {
				return fmt.Errorf("%w: placement %d head %v outside the domain", ErrInvalidConfig, i, p.Head)
			}
			s.filaments[i] = newFilament(i, p.Head, p.Theta, cfg, splitSource(src))
		}
		return nil
	}

	margin := cfg.Margin()
	span := cfg.DomainSize - 2*margin
	if n > 0 && span <= 0 {
		return fmt.Errorf("%w: domainSize %v leaves no room for a %v margin", ErrInvalidConfig, cfg.DomainSize, margin)
	}
	for i := range s.filaments {
		rng := splitSource(src)
		theta := rng.Float64() * geometry.TwoPi
		head := geometry.NewVector(margin+rng.Float64()*span, margin+rng.Float64()*span)
		s.filaments[i] = newFilament(i, head, theta, cfg, rng)
	}
	return nil
}

// Step advances every filament by one dt. Forces are computed from a frozen
// copy of heads and headings, then applied, so the result does not depend
// on iteration order or on the number of workers.
func (s *Simulation) Step() {
	for i := range s.filaments {
		s.heads[i] = s.filaments[i].Head()
		s.thetas[i] = s.filaments[i].Theta
		s.claimed[i] = false
	}
	s.grid.Build(s.heads)

	if err := s.parallel(s.computeForces); err != nil {
		panic(err)
	}
	s.commitBonds()
	if err := s.parallel(s.integrate); err != nil {
		panic(err)
	}
	s.step++
}

// parallel splits [0, n) into contiguous chunks, one per worker, and returns
// the first chunk error.
func (s *Simulation) parallel(fn func(lo, hi int) error) error {
	n := len(s.filaments)
	if s.workers <= 1 || n < 2*s.workers {
		return fn(0, n)
	}

	chunk := (n + s.workers - 1) / s.workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}

func (s *Simulation) computeForces(lo, hi int) error {
	var sc forceScratch
	for i := lo; i < hi; i++ {
		s.forces[i] = s.forceOn(i, &sc)
	}
	return nil
}

func (s *Simulation) integrate(lo, hi int) error {
	for i := lo; i < hi; i++ {
		if err := s.filaments[i].update(&s.kin, s.forces[i].alignment, s.forces[i].slide); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) forceOn(i int, sc *forceScratch) force {
	head, theta := s.heads[i], s.thetas[i]

	// Ascending indices keep the first-match bonding rule independent of the grid layout.
	sc.neighbors = s.grid.QueryRadius(head, s.model.QueryRadius(), sc.neighbors[:0])
	slices.Sort(sc.neighbors)

	alignSq := s.model.AlignmentRadius * s.model.AlignmentRadius
	sc.thetas = sc.thetas[:0]
	for _, j := range sc.neighbors {
		if j != i && s.heads[j].DistanceSquaredTo(head) <= alignSq {
			sc.thetas = append(sc.thetas, s.thetas[j])
		}
	}

	f := &s.filaments[i]
	var slide geometry.Vector2D
	if f.Stuck {
		slide = s.model.SlideAlong(s.thetas[f.StuckTo], f.StuckDirection)
	} else {
		s.candidates[i] = s.bondCandidates(i, sc.neighbors, s.candidates[i][:0])
	}

	return force{
		alignment: NematicTorque(theta, sc.thetas, s.model.AlignmentStrength),
		slide:     slide,
	}
}

// bondCandidates draws once per neighbour within the slide distance and keeps
// those whose headings allow a bond. Only filament i's own stream is used.
func (s *Simulation) bondCandidates(i int, neighbors []int, dst []bondCandidate) []bondCandidate {
	f := &s.filaments[i]
	slideSq := s.model.SlideDistance * s.model.SlideDistance
	for _, j := range neighbors {
		if j == i || s.heads[j].DistanceSquaredTo(s.heads[i]) > slideSq {
			continue
		}
		if f.rng.Float64() >= s.model.SlideProbability {
			continue
		}
		if dir := s.model.BondDirection(s.thetas[i], s.thetas[j]); dir != 0 {
			dst = append(dst, bondCandidate{partner: j, direction: dir})
		}
	}
	return dst
}

// commitBonds turns candidates into bonds in ascending filament order. A
// filament takes part in at most one new bond per step, as initiator or as
// partner; an initiator falls through to its next candidate when one is taken.
func (s *Simulation) commitBonds() {
	for i := range s.filaments {
		f := &s.filaments[i]
		if f.Stuck || s.claimed[i] {
			continue
		}
		for _, c := range s.candidates[i] {
			if s.claimed[c.partner] {
				continue
			}
			s.claimed[i] = true
			s.claimed[c.partner] = true

			f.Stuck = true
			f.StuckTo = c.partner
			f.StuckDirection = c.direction
			s.forces[i].slide = s.model.SlideAlong(s.thetas[c.partner], c.direction)
			s.bonds++
			s.logger.Debugf("step %d: filament %d bonded to %d (direction %+d)", s.step, i, c.partner, c.direction)
			break
		}
		s.candidates[i] = s.candidates[i][:0]
	}
}

// Snapshot returns deep copies of every filament, in population order.
func (s *Simulation) Snapshot() []FilamentView {
	views := make([]FilamentView, len(s.filaments))
	for i := range s.filaments {
		f := &s.filaments[i]
		views[i] = FilamentView{
			ID:       f.ID,
			Points:   slices.Clone(f.Points),
			Theta:    f.Theta,
			Polarity: f.Polarity,
			Stuck:    f.Stuck,
			StuckTo:  f.StuckTo,
		}
	}
	return views
}

// GlobalOrder is the nematic order parameter of the whole population.
func (s *Simulation) GlobalOrder() float64 {
	thetas := make([]float64, len(s.filaments))
	for i := range s.filaments {
		thetas[i] = s.filaments[i].Theta
	}
	return globalOrder(thetas)
}

// BlockOrder averages the local nematic order over square blocks of edge l.
func (s *Simulation) BlockOrder(l float64) float64 {
	heads := make([]geometry.Vector2D, len(s.filaments))
	thetas := make([]float64, len(s.filaments))
	for i := range s.filaments {
		heads[i] = s.filaments[i].Head()
		thetas[i] = s.filaments[i].Theta
	}
	return blockOrder(heads, thetas, s.cfg.DomainSize, l)
}

// StepCount is the number of completed steps.
func (s *Simulation) StepCount() int {
	return s.step
}

// BondCount is the number of bonds formed so far. Bonds are never released.
func (s *Simulation) BondCount() int {
	return s.bonds
}

// Len is the population size.
func (s *Simulation) Len() int {
	return len(s.filaments)
}

// Config returns a copy of the parameters the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}
