// Package sweep measures the block order parameter as a function of filament density.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ctxCheckEvery is how many steps a run takes between cancellation checks.
const ctxCheckEvery = 50

// Params describes one density sweep.
type Params struct {
	Counts  []int   // population sizes to sample
	Steps   int     // steps per run before measuring
	Repeats int     // independent runs per population size
	Block   float64 // block edge for BlockOrder, 0 uses the config value
	Workers int     // concurrent runs, 0 uses GOMAXPROCS
}

// Point is the aggregated result for one population size.
type Point struct {
	N       int       `json:"n"`
	Density float64   `json:"density"` // filaments per mm²
	Mean    float64   `json:"mean"`
	Std     float64   `json:"std"` // population standard deviation
	Samples []float64 `json:"samples"`
}

// Density converts a population size in a square domain of edge domainSize µm
// into filaments per mm².
func Density(n int, domainSize float64) float64 {
	mm := domainSize / 1000
	return float64(n) / (mm * mm)
}

func (p Params) validate() error {
	var errs []error
	if len(p.Counts) == 0 {
		errs = append(errs, errors.New("at least one population size is required"))
	}
	seen := make(map[int]bool, len(p.Counts))
	for _, n := range p.Counts {
		if n < 0 {
			errs = append(errs, fmt.Errorf("population size must be >= 0, got %d", n))
		}
		if seen[n] {
			errs = append(errs, fmt.Errorf("population size %d listed twice", n))
		}
		seen[n] = true
	}
	if p.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must be >= 0, got %d", p.Steps))
	}
	if p.Repeats < 1 {
		errs = append(errs, fmt.Errorf("repeats must be >= 1, got %d", p.Repeats))
	}
	if p.Block < 0 {
		errs = append(errs, fmt.Errorf("block must be >= 0, got %v", p.Block))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", simulation.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Run executes Repeats simulations of Steps steps for every population size
// in Counts and returns one Point per size, sorted by density.
func Run(ctx context.Context, base *simulation.Config, p Params, logger golog.Logger) ([]Point, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}
	block := p.Block
	if block == 0 {
		block = base.BlockSize
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	samples := make([][]float64, len(p.Counts))
	for i := range samples {
		samples[i] = make([]float64, p.Repeats)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, n := range p.Counts {
		for r := 0; r < p.Repeats; r++ {
			cfg := *base
			cfg.NumFilaments = n
			cfg.Workers = 1
			cfg.Seed = runSeed(base.Seed, i*p.Repeats+r)

			g.Go(func() error {
				s, err := runOnce(ctx, &cfg, p.Steps, block)
				if err != nil {
					return fmt.Errorf("run n=%d repeat=%d: %w", n, r, err)
				}
				samples[i][r] = s
				logger.Debugf("sweep n=%d repeat=%d S=%.3f", n, r, s)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := make([]Point, len(p.Counts))
	for i, n := range p.Counts {
		mean, std := stat.PopMeanStdDev(samples[i], nil)
		points[i] = Point{
			N:       n,
			Density: Density(n, base.DomainSize),
			Mean:    mean,
			Std:     std,
			Samples: samples[i],
		}
		logger.Infof("N=%d density=%.1f/mm² S=%.3f ± %.3f", n, points[i].Density, mean, std)
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		switch {
		case a.Density < b.Density:
			return -1
		case a.Density > b.Density:
			return 1
		default:
			return 0
		}
	})
	return points, nil
}

func runOnce(ctx context.Context, cfg *simulation.Config, steps int, block float64) (float64, error) {
	sim, err := simulation.New(cfg, nil)
	if err != nil {
		return 0, err
	}
	for i := 0; i < steps; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		sim.Step()
	}
	return sim.BlockOrder(block), nil
}

// runSeed spreads run indices over the seed space.
func runSeed(base uint64, idx int) uint64 {
	return base + uint64(idx+1)*0x9e3779b97f4a7c15
}
