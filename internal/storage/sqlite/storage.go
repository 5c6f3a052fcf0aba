package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/mcoot/spiderleague/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_entries (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`

// Storage keeps local entries in a single SQLite table
type Storage struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dsn
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewWithDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing database handle and ensures the schema exists
func NewWithDB(ctx context.Context, db *sql.DB) (*Storage, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create local_entries table: %w", err)
	}
	return &Storage{db: db}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry[%s]: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set entry[%s]: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete entry[%s]: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
