package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/viewer"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/actor"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open a window and watch the simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, os.Stderr)
			if err != nil {
				return err
			}
			sim, err := simulation.New(cfg, nil, simulation.WithLogger(logger))
			if err != nil {
				return err
			}

			frames := make(chan *simulation.Frame, 2)
			system, pid, err := startSimulationActor(ctx, logger, sim, frames)
			if err != nil {
				return err
			}
			defer system.Stop(ctx)

			advance := func(steps int) {
				if err := actor.Tell(ctx, pid, simulation.Advance(int64(steps))); err != nil {
					logger.Errorf("advance request failed: %v", err)
				}
			}
			game := viewer.NewGame(frames, advance, cfg.DomainSize, cfg.BlockSize)

			ebiten.SetWindowSize(viewer.ScreenWidth, viewer.ScreenHeight)
			ebiten.SetWindowTitle(fmt.Sprintf("Cyanobacteria: %d filaments", cfg.NumFilaments))
			return ebiten.RunGame(game)
		},
	}
}
