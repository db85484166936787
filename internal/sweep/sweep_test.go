package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
)

func smallConfig() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.NumSegments = 10
	return cfg
}

func TestDensity(t *testing.T) {
	tests := []struct {
		n      int
		domain float64
		want   float64
	}{
		{200, 100, 20000},
		{0, 100, 0},
		{10, 1000, 10},
	}
	for _, tt := range tests {
		if got := Density(tt.n, tt.domain); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Density(%d, %v) = %v; want %v", tt.n, tt.domain, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	params := Params{Counts: []int{30, 10}, Steps: 10, Repeats: 3, Workers: 2}

	points, err := Run(context.Background(), smallConfig(), params, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Run() returned %d points; want 2", len(points))
	}
	if points[0].N != 10 || points[1].N != 30 {
		t.Errorf("points not sorted by density: %d, %d", points[0].N, points[1].N)
	}
	for _, p := range points {
		if len(p.Samples) != params.Repeats {
			t.Errorf("N=%d has %d samples; want %d", p.N, len(p.Samples), params.Repeats)
		}
		if p.Mean < 0 || p.Mean > 1 || p.Std < 0 {
			t.Errorf("N=%d mean=%v std=%v out of range", p.N, p.Mean, p.Std)
		}
		for _, s := range p.Samples {
			if s < 0 || s > 1 {
				t.Errorf("N=%d sample %v outside [0, 1]", p.N, s)
			}
		}
	}
}

func TestRun_Reproducible(t *testing.T) {
	params := Params{Counts: []int{20}, Steps: 5, Repeats: 2}

	first, err := Run(context.Background(), smallConfig(), params, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), smallConfig(), params, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first[0].Samples {
		if first[0].Samples[i] != second[0].Samples[i] {
			t.Errorf("sample %d differs: %v vs %v", i, first[0].Samples[i], second[0].Samples[i])
		}
	}
}

func TestRun_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"no counts", Params{Steps: 1, Repeats: 1}},
		{"no repeats", Params{Counts: []int{1}, Steps: 1}},
		{"negative steps", Params{Counts: []int{1}, Steps: -1, Repeats: 1}},
		{"negative count", Params{Counts: []int{-3}, Steps: 1, Repeats: 1}},
		{"duplicate count", Params{Counts: []int{4, 4}, Steps: 1, Repeats: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), smallConfig(), tt.params, nil)
			if !errors.Is(err, simulation.ErrInvalidConfig) {
				t.Errorf("Run() error = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallConfig(), Params{Counts: []int{10}, Steps: 100, Repeats: 2}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v; want context.Canceled", err)
	}
}
