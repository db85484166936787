package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/plot"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/store"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure the block order parameter across filament densities",
		Long: `sweep runs independent simulations for every population size in --n and
reports mean and standard deviation of the block order parameter against
density (filaments per mm²).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()
			counts, _ := cmd.Flags().GetIntSlice("n")
			steps, _ := cmd.Flags().GetInt("steps")
			repeats, _ := cmd.Flags().GetInt("repeats")
			block, _ := cmd.Flags().GetFloat64("block")
			parallel, _ := cmd.Flags().GetInt("parallel")
			dbPath, _ := cmd.Flags().GetString("db")
			pngPath, _ := cmd.Flags().GetString("png")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, os.Stderr)
			if err != nil {
				return err
			}

			points, err := sweep.Run(ctx, cfg, sweep.Params{
				Counts:  counts,
				Steps:   steps,
				Repeats: repeats,
				Block:   block,
				Workers: parallel,
			}, logger)
			if err != nil {
				return err
			}

			if dbPath != "" {
				st, err := store.Open(ctx, dbPath)
				if err != nil {
					return err
				}
				defer st.Close()
				runID, err := st.SaveSweep(ctx, cfg, points)
				if err != nil {
					return err
				}
				logger.Infof("sweep stored as run %d in %s", runID, dbPath)
			}

			if pngPath != "" {
				if err := writePNG(pngPath, points); err != nil {
					return err
				}
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(points)
			}
			fmt.Fprintf(out, "%8s %14s %10s %10s\n", "N", "density/mm²", "mean S", "std S")
			for _, p := range points {
				fmt.Fprintf(out, "%8d %14.1f %10.4f %10.4f\n", p.N, p.Density, p.Mean, p.Std)
			}
			if len(points) > 1 {
				fmt.Fprintln(out, plot.SweepASCII(points))
			}
			return nil
		},
	}

	cmd.Flags().IntSlice("n", []int{50, 100, 150, 200, 250, 300}, "Population sizes to sample")
	cmd.Flags().Int("steps", 500, "Steps per run before measuring")
	cmd.Flags().Int("repeats", 5, "Independent runs per population size")
	cmd.Flags().Float64("block", 0, "Block edge in µm (0 uses the config blockSize)")
	cmd.Flags().Int("parallel", 0, "Concurrent runs (0 uses GOMAXPROCS)")
	cmd.Flags().String("db", "", "SQLite file receiving the sweep results")
	cmd.Flags().String("png", "", "Write a density chart to this PNG file")
	return cmd
}

func writePNG(path string, points []sweep.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := plot.SweepPNG(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
