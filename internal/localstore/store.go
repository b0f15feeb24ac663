package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"campustask-sync-server/internal/reconciler"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS routines (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state);
CREATE INDEX IF NOT EXISTS idx_routines_state ON routines(state);
`

// Session keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyDeviceID     = "device_id"
	KeyLastSync     = "last_sync"
)

// Store is the device-local database. Records are kept as JSON documents
// with their sync state in a separate column so pending mutations survive
// restarts.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at dataDir/campustask.db.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "campustask.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadTasks(ctx context.Context) ([]*reconciler.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM tasks")
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var records []*reconciler.TaskRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		record := &reconciler.TaskRecord{}
		if err := json.Unmarshal([]byte(doc), record); err != nil {
			return nil, fmt.Errorf("failed to decode task document: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveTasks replaces the whole collection inside a transaction so a crash
// mid-save never leaves a mix of old and new records.
func (s *Store) SaveTasks(ctx context.Context, records []*reconciler.TaskRecord) error {
	return s.replaceAll(ctx, "tasks", len(records), func(i int) (string, string, []byte, error) {
		doc, err := json.Marshal(records[i])
		return records[i].Task.ID, string(records[i].State), doc, err
	})
}

func (s *Store) LoadRoutines(ctx context.Context) ([]*reconciler.RoutineRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM routines")
	if err != nil {
		return nil, fmt.Errorf("failed to query routines: %w", err)
	}
	defer rows.Close()

	var records []*reconciler.RoutineRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan routine row: %w", err)
		}
		record := &reconciler.RoutineRecord{}
		if err := json.Unmarshal([]byte(doc), record); err != nil {
			return nil, fmt.Errorf("failed to decode routine document: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) SaveRoutines(ctx context.Context, records []*reconciler.RoutineRecord) error {
	return s.replaceAll(ctx, "routines", len(records), func(i int) (string, string, []byte, error) {
		doc, err := json.Marshal(records[i])
		return records[i].Routine.ID, string(records[i].State), doc, err
	})
}

func (s *Store) replaceAll(ctx context.Context, table string, n int, row func(i int) (id, state string, doc []byte, err error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (id, state, doc) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		id, state, doc, err := row(i)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, id, state, string(doc)); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// GetValue returns the session value for key, or "" when unset.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session value: %w", err)
	}
	return value, nil
}

func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO session (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write session value: %w", err)
	}
	return nil
}

func (s *Store) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete session value: %w", err)
	}
	return nil
}
