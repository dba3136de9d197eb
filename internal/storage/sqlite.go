package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var sqliteQueries = sqlQueries{
	create: `
		CREATE TABLE IF NOT EXISTS knowledge_bases (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	get: `SELECT data FROM knowledge_bases WHERE key = ?`,
	upsert: `
		INSERT INTO knowledge_bases (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
}

// NewSQLiteBackend opens (creating if needed) the SQLite database at path.
func NewSQLiteBackend(path string) (Backend, error) {
	if path == "" {
		return nil, errors.New("sqlite storage requires a database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return backend(newSQLBackend(ctx, "sqlite", db, sqliteQueries))
}
