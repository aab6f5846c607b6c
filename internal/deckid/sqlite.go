// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deckid

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/spire-tally/pkg/types"
)

// SQLiteStore records issued IDs in a sqlite table. Rows are only ever
// inserted; it is the same append-only log as FileStore with the issue time
// and run ID kept alongside.
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

// NewSQLiteStore opens or creates the database at path and its schema.
func NewSQLiteStore(path, runID string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating id store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, runID: runID}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS deck_ids (
			id TEXT PRIMARY KEY,
			issued_at TEXT NOT NULL,
			run_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deck_ids_run ON deck_ids(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Load returns every recorded ID in issue order.
func (s *SQLiteStore) Load(ctx context.Context) ([]types.DeckID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM deck_ids ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying deck ids: %w", err)
	}
	defer rows.Close()

	var ids []types.DeckID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning deck id: %w", err)
		}
		ids = append(ids, types.DeckID(id))
	}
	return ids, rows.Err()
}

// Append inserts id. Inserting an ID that is already present is an error.
func (s *SQLiteStore) Append(ctx context.Context, id types.DeckID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deck_ids (id, issued_at, run_id) VALUES (?, ?, ?)`,
		string(id), time.Now().UTC().Format(time.RFC3339Nano), s.runID,
	)
	if err != nil {
		return fmt.Errorf("inserting deck id %s: %w", id, err)
	}
	return nil
}

// IssuedBy returns the IDs recorded under runID.
func (s *SQLiteStore) IssuedBy(ctx context.Context, runID string) ([]types.DeckID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM deck_ids WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying deck ids for run %s: %w", runID, err)
	}
	defer rows.Close()

	var ids []types.DeckID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning deck id: %w", err)
		}
		ids = append(ids, types.DeckID(id))
	}
	return ids, rows.Err()
}
