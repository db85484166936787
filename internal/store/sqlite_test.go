package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/sweep"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveAndLoadSweep(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	cfg := simulation.DefaultConfig()

	points := []sweep.Point{
		{N: 100, Density: 10000, Mean: 0.4, Std: 0.05, Samples: []float64{0.35, 0.45}},
		{N: 50, Density: 5000, Mean: 0.2, Std: 0.1, Samples: []float64{0.1, 0.3}},
	}

	runID, err := s.SaveSweep(ctx, cfg, points)
	if err != nil {
		t.Fatalf("SaveSweep() error = %v", err)
	}

	got, err := s.LoadSweep(ctx, runID)
	if err != nil {
		t.Fatalf("LoadSweep() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadSweep() returned %d points; want 2", len(got))
	}
	if got[0].N != 50 || got[1].N != 100 {
		t.Errorf("points not ordered by density: %d, %d", got[0].N, got[1].N)
	}
	if !slices.Equal(got[1].Samples, points[0].Samples) || got[1].Mean != 0.4 || got[1].Std != 0.05 {
		t.Errorf("point mismatch: %+v", got[1])
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Kind != KindSweep || run.Config != *cfg {
		t.Errorf("GetRun() = %+v", run)
	}
}

func TestStore_Samples(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	runID, err := s.CreateRun(ctx, KindHeadless, simulation.DefaultConfig())
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	first := []simulation.Status{{Step: 10, GlobalOrder: 0.1}, {Step: 0, GlobalOrder: 0.05}}
	if err := s.AppendSamples(ctx, runID, first); err != nil {
		t.Fatalf("AppendSamples() error = %v", err)
	}
	// re-recording a step replaces it
	if err := s.AppendSamples(ctx, runID, []simulation.Status{{Step: 10, GlobalOrder: 0.2, BlockOrder: 0.3, Bonds: 4}}); err != nil {
		t.Fatalf("AppendSamples() error = %v", err)
	}

	got, err := s.Samples(ctx, runID)
	if err != nil {
		t.Fatalf("Samples() error = %v", err)
	}
	want := []simulation.Status{
		{Step: 0, GlobalOrder: 0.05},
		{Step: 10, GlobalOrder: 0.2, BlockOrder: 0.3, Bonds: 4},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Samples() = %+v; want %+v", got, want)
	}
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, kind := range []string{KindHeadless, KindSweep} {
		if _, err := s.CreateRun(ctx, kind, simulation.DefaultConfig()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 || runs[0].Kind != KindSweep || runs[1].Kind != KindHeadless {
		t.Errorf("Runs() = %+v; want newest first", runs)
	}
}

func TestStore_MissingRun(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadSweep(context.Background(), 42); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadSweep() error = %v; want ErrRunNotFound", err)
	}
}

func TestStore_Closed(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v; want nil", err)
	}
	if _, err := s.CreateRun(context.Background(), KindSweep, simulation.DefaultConfig()); err == nil {
		t.Error("CreateRun() on a closed store succeeded")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("Open(\"\") succeeded")
	}
}
