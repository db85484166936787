package main

import (
	"context"
	"fmt"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

// startSimulationActor boots an actor system hosting one SimulationActor.
// The caller stops the returned system.
func startSimulationActor(ctx context.Context, logger golog.Logger, sim *simulation.Simulation, frames chan<- *simulation.Frame) (actor.ActorSystem, *actor.PID, error) {
	system, err := actor.NewActorSystem("CyanoSim",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	pid, err := system.Spawn(ctx, "simulation", simulation.NewSimulationActor(sim, frames))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, nil, fmt.Errorf("failed to spawn simulation actor: %w", err)
	}
	return system, pid, nil
}
