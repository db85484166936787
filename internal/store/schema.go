package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	created_at TEXT NOT NULL,
	config BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS sweep_points (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	n INTEGER NOT NULL,
	density REAL NOT NULL,
	mean REAL NOT NULL,
	std REAL NOT NULL,
	samples TEXT NOT NULL,
	PRIMARY KEY (run_id, n)
);
CREATE TABLE IF NOT EXISTS order_samples (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	step INTEGER NOT NULL,
	global_order REAL NOT NULL,
	block_order REAL NOT NULL,
	bonds INTEGER NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// createSchema creates every table in one transaction.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return tx.Commit()
}
