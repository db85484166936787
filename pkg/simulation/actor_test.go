package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

func TestSimulationActor_AdvanceAndStatus(t *testing.T) {
	// 1. Setup
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.NumFilaments = 20
	sim, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	system, err := actor.NewActorSystem("CyanoTest", actor.WithLogger(golog.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem() error = %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	frames := make(chan *Frame, 8)
	pid, err := system.Spawn(ctx, "simulation", NewSimulationActor(sim, frames))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	// 2. Execute
	if err := actor.Tell(ctx, pid, Advance(5)); err != nil {
		t.Fatalf("Tell() error = %v", err)
	}
	status, err := QueryStatus(ctx, pid, 5*time.Second)
	if err != nil {
		t.Fatalf("QueryStatus() error = %v", err)
	}

	// 3. Verify
	if status.Step != 5 {
		t.Errorf("status.Step = %d; want 5", status.Step)
	}
	if status.GlobalOrder < -1 || status.GlobalOrder > 1 || status.BlockOrder < 0 || status.BlockOrder > 1 {
		t.Errorf("order parameters out of range: %+v", status)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case f := <-frames:
			if f.Step == 5 {
				if len(f.Filaments) != cfg.NumFilaments {
					t.Errorf("frame has %d filaments; want %d", len(f.Filaments), cfg.NumFilaments)
				}
				return
			}
		case <-deadline:
			t.Fatal("no frame for step 5")
		}
	}
}
