// Package sqlite stores documents in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

var _ storage.Documents = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    name       TEXT    PRIMARY KEY,
    body       BLOB    NOT NULL,
    updated_at INTEGER NOT NULL
);`

// Store persists documents in one SQLite table.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path and ensures the documents table exists.
//
// Precondition: path must be non-empty.
// Postcondition: Returns an open Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Load selects the document body.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", name, err)
	}
	return body, nil
}

// Save upserts the document body.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing document %q: %w", name, err)
	}
	return nil
}

// Delete removes the document row.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting document %q: %w", name, err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
