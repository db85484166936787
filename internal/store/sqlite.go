// Package store records sweep results and order parameter series in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/sweep"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"

	_ "modernc.org/sqlite" // SQLite driver
)

// Run kinds.
const (
	KindSweep    = "sweep"
	KindHeadless = "headless"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded invocation.
type Run struct {
	ID        int64
	Kind      string
	CreatedAt time.Time
	Config    simulation.Config
}

// Store is a SQLite-backed results store.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates or opens the database at path and initialises the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. It is safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	return s.db, nil
}

// CreateRun records a new run and returns its id.
func (s *Store) CreateRun(ctx context.Context, kind string, cfg *simulation.Config) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	return insertRun(ctx, db, kind, cfg)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRun(ctx context.Context, db execer, kind string, cfg *simulation.Config) (int64, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("encode config: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO runs (kind, created_at, config) VALUES (?, ?, ?)`,
		kind, time.Now().UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}

	var (
		run       Run
		createdAt string
		payload   []byte
	)
	err = db.QueryRowContext(ctx, `SELECT id, kind, created_at, config FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Kind, &createdAt, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
		}
		return Run{}, err
	}
	return decodeRun(run, createdAt, payload)
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, kind, created_at, config FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
			payload   []byte
		)
		if err := rows.Scan(&run.ID, &run.Kind, &createdAt, &payload); err != nil {
			return nil, err
		}
		run, err = decodeRun(run, createdAt, payload)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeRun(run Run, createdAt string, payload []byte) (Run, error) {
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("decode run %d time: %w", run.ID, err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal(payload, &run.Config); err != nil {
		return Run{}, fmt.Errorf("decode run %d config: %w", run.ID, err)
	}
	return run, nil
}

// SaveSweep records a sweep run and its points in one transaction.
func (s *Store) SaveSweep(ctx context.Context, cfg *simulation.Config, points []sweep.Point) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID, err := insertRun(ctx, tx, KindSweep, cfg)
	if err != nil {
		return 0, err
	}
	for _, p := range points {
		samples, err := json.Marshal(p.Samples)
		if err != nil {
			return 0, fmt.Errorf("encode samples: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sweep_points (run_id, n, density, mean, std, samples)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, p.N, p.Density, p.Mean, p.Std, samples); err != nil {
			return 0, fmt.Errorf("insert sweep point n=%d: %w", p.N, err)
		}
	}
	return runID, tx.Commit()
}

// LoadSweep returns the points of a sweep run ordered by density.
func (s *Store) LoadSweep(ctx context.Context, runID int64) ([]sweep.Point, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT n, density, mean, std, samples FROM sweep_points
		WHERE run_id = ? ORDER BY density, n
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []sweep.Point
	for rows.Next() {
		var (
			p       sweep.Point
			samples []byte
		)
		if err := rows.Scan(&p.N, &p.Density, &p.Mean, &p.Std, &samples); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(samples, &p.Samples); err != nil {
			return nil, fmt.Errorf("decode samples n=%d: %w", p.N, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// AppendSamples adds order parameter samples to a run. A sample for a step
// already recorded replaces the old one.
func (s *Store) AppendSamples(ctx context.Context, runID int64, samples []simulation.Status) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_samples (run_id, step, global_order, block_order, bonds)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO UPDATE SET
			global_order = excluded.global_order,
			block_order = excluded.block_order,
			bonds = excluded.bonds
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, runID, sample.Step, sample.GlobalOrder, sample.BlockOrder, sample.Bonds); err != nil {
			return fmt.Errorf("insert sample step=%d: %w", sample.Step, err)
		}
	}
	return tx.Commit()
}

// Samples returns the recorded series of a run in step order.
func (s *Store) Samples(ctx context.Context, runID int64) ([]simulation.Status, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT step, global_order, block_order, bonds FROM order_samples
		WHERE run_id = ? ORDER BY step
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []simulation.Status
	for rows.Next() {
		var st simulation.Status
		if err := rows.Scan(&st.Step, &st.GlobalOrder, &st.BlockOrder, &st.Bonds); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
