package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/plot"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/store"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/actor"
)

const statusTimeout = 30 * time.Second

func newHeadlessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run a fixed number of steps and report the order parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()
			steps, _ := cmd.Flags().GetInt("steps")
			every, _ := cmd.Flags().GetInt("every")
			dbPath, _ := cmd.Flags().GetString("db")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if steps < 0 {
				return fmt.Errorf("--steps must be >= 0, got %d", steps)
			}
			if every <= 0 {
				return fmt.Errorf("--every must be > 0, got %d", every)
			}

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

			system, pid, err := startSimulationActor(ctx, logger, sim, nil)
			if err != nil {
				return err
			}
			defer system.Stop(ctx)

			// The mailbox orders each Advance before the following status request.
			first, err := simulation.QueryStatus(ctx, pid, statusTimeout)
			if err != nil {
				return err
			}
			samples := []simulation.Status{first}
			for done := 0; done < steps; {
				n := min(every, steps-done)
				if err := actor.Tell(ctx, pid, simulation.Advance(int64(n))); err != nil {
					return fmt.Errorf("advance request failed: %w", err)
				}
				status, err := simulation.QueryStatus(ctx, pid, statusTimeout)
				if err != nil {
					return err
				}
				samples = append(samples, status)
				done += n
			}

			if dbPath != "" {
				if err := saveSamples(ctx, dbPath, cfg, samples); err != nil {
					return err
				}
			}

			final := samples[len(samples)-1]
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"config":  cfg,
					"final":   final,
					"samples": samples,
				})
			}
			fmt.Fprintf(out, "step %d: S global %.4f, S block %.4f, bonds %d\n",
				final.Step, final.GlobalOrder, final.BlockOrder, final.Bonds)
			if len(samples) > 1 {
				fmt.Fprintln(out, plot.OrderSeries(samples))
			}
			return nil
		},
	}

	cmd.Flags().Int("steps", 1000, "Number of steps to run")
	cmd.Flags().Int("every", 10, "Record the order parameters every N steps")
	cmd.Flags().String("db", "", "SQLite file receiving the order series")
	return cmd
}

func saveSamples(ctx context.Context, path string, cfg *simulation.Config, samples []simulation.Status) error {
	st, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.CreateRun(ctx, store.KindHeadless, cfg)
	if err != nil {
		return err
	}
	return st.AppendSamples(ctx, runID, samples)
}
