package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/store"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/sweep"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "cyanosim version "+version) {
		t.Errorf("version output = %q", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil || v["version"] != version {
		t.Errorf("version --json output = %q (%v)", out, err)
	}
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("numFilaments: 33\nseed: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		filaments int
		seed      uint64
		wantErr   bool
	}{
		{"defaults", nil, simulation.DefaultConfig().NumFilaments, simulation.DefaultConfig().Seed, false},
		{"file", []string{"--config", path}, 33, 9, false},
		{"flags override file", []string{"--config", path, "--seed", "4", "--filaments", "12"}, 12, 4, false},
		{"missing file", []string{"--config", filepath.Join(dir, "nope.json")}, 0, 0, true},
		{"invalid override", []string{"--filaments", "-1"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			if err := root.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := resolveConfig(root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveConfig() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.NumFilaments != tt.filaments || cfg.Seed != tt.seed {
				t.Errorf("resolveConfig() = N %d seed %d; want N %d seed %d", cfg.NumFilaments, cfg.Seed, tt.filaments, tt.seed)
			}
		})
	}
}

func TestHeadlessCmd_StoresSamples(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "headless", "--steps", "5", "--every", "2", "--filaments", "10",
		"--log-level", "error", "--db", db)
	if err != nil {
		t.Fatalf("headless error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "step 5:") {
		t.Errorf("headless output lacks the final step:\n%s", out)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	runs, err := st.Runs(ctx)
	if err != nil || len(runs) != 1 {
		t.Fatalf("Runs() = %v, %v; want one run", runs, err)
	}
	samples, err := st.Samples(ctx, runs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	// steps 0, 2, 4 and 5
	var steps []int
	for _, s := range samples {
		steps = append(steps, s.Step)
	}
	if len(steps) != 4 || steps[0] != 0 || steps[3] != 5 {
		t.Errorf("recorded steps = %v; want [0 2 4 5]", steps)
	}
}

func TestHeadlessCmd_RejectsBadFlags(t *testing.T) {
	if _, err := execute(t, "headless", "--every", "0", "--log-level", "error"); err == nil {
		t.Error("headless --every 0 succeeded")
	}
	if _, err := execute(t, "headless", "--log-level", "loud"); err == nil {
		t.Error("headless with an unknown log level succeeded")
	}
}

func TestSweepCmd_JSON(t *testing.T) {
	png := filepath.Join(t.TempDir(), "sweep.png")
	out, err := execute(t, "sweep", "--n", "20,10", "--steps", "3", "--repeats", "2",
		"--log-level", "error", "--json", "--png", png)
	if err != nil {
		t.Fatalf("sweep error = %v\n%s", err, out)
	}

	var points []sweep.Point
	if err := json.Unmarshal([]byte(out), &points); err != nil {
		t.Fatalf("sweep output is not JSON: %v\n%s", err, out)
	}
	if len(points) != 2 || points[0].N != 10 || len(points[1].Samples) != 2 {
		t.Errorf("sweep points = %+v", points)
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Errorf("sweep did not write %s: %v", png, err)
	}
}
