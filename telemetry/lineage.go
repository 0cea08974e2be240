package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// LineageStore persists births and deaths to SQLite so parentage can be
// queried after a run. Every run gets its own id.
type LineageStore struct {
	path  string
	runID string

	mu sync.RWMutex
	db *sql.DB
}

// NewLineageStore creates a store writing to the database at path.
func NewLineageStore(path string) *LineageStore {
	return &LineageStore{path: path, runID: uuid.NewString()}
}

// RunID returns the id of this run.
func (s *LineageStore) RunID() string {
	return s.runID
}

// Init opens the database, creates the tables and registers the run.
func (s *LineageStore) Init(ctx context.Context, seed uint64, width, height, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("creating lineage tables: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, width, height, capacity)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.runID, time.Now().UTC().Format(time.RFC3339), int64(seed), width, height, capacity)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("registering run: %w", err)
	}

	s.db = db
	return nil
}

// Record writes a batch of events in one transaction.
func (s *LineageStore) Record(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, tick, kind, slot, parent, lineage, age)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, s.runID, ev.Tick, ev.Type.String(), ev.Slot, ev.Parent, ev.Lineage, ev.Age); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting %s event: %w", ev.Type, err)
		}
	}
	return tx.Commit()
}

// Counts returns the number of births and deaths recorded for this run.
func (s *LineageStore) Counts(ctx context.Context) (births, deaths int, err error) {
	db, err := s.getDB()
	if err != nil {
		return 0, 0, err
	}
	err = db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'birth' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'death' THEN 1 ELSE 0 END), 0)
		FROM events WHERE run_id = ?
	`, s.runID).Scan(&births, &deaths)
	return births, deaths, err
}

// Descendants returns the number of births in lineage for this run.
func (s *LineageStore) Descendants(ctx context.Context, lineage int) (int, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events
		WHERE run_id = ? AND kind = 'birth' AND lineage = ?
	`, s.runID, lineage).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *LineageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LineageStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("lineage store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			capacity INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL REFERENCES runs(id),
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			slot INTEGER NOT NULL,
			parent INTEGER NOT NULL,
			lineage INTEGER NOT NULL,
			age INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS events_run_lineage ON events (run_id, lineage);
	`)
	return err
}
