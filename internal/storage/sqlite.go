// Package storage persists run progression as JSON documents in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Document names used by the session layer.
const (
	DocGameData        = "GameData"
	DocPlayerProgress  = "PlayerProgressionData"
	DocSessionManifest = "SessionManifest"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store wraps a SQLite database holding named JSON documents.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite handles one writer at a time; a larger pool just queues on
	// the file lock.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveDocument serializes value as JSON under name, replacing any
// previous payload.
func (s *Store) SaveDocument(ctx context.Context, name string, value any) error {
	if s == nil || s.db == nil {
		return errors.New("storage: store is closed")
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// LoadDocument decodes the document stored under name into out. The
// boolean reports whether a document existed.
func (s *Store) LoadDocument(ctx context.Context, name string, out any) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("storage: store is closed")
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// DeleteDocument removes the named document if present.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return errors.New("storage: store is closed")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
