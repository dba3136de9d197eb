package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqlQueries holds the dialect-specific statements for a knowledge_bases
// table keyed by the persistence key.
type sqlQueries struct {
	create string
	get    string
	upsert string
}

// sqlBackend is the shared database/sql implementation behind the sqlite
// and postgres backends.
type sqlBackend struct {
	name string
	db   *sql.DB
	q    sqlQueries
}

func newSQLBackend(ctx context.Context, name string, db *sql.DB, q sqlQueries) (*sqlBackend, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, q.create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create knowledge_bases table: %w", err)
	}
	return &sqlBackend{name: name, db: db, q: q}, nil
}

func (s *sqlBackend) Name() string { return s.name }

func (s *sqlBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read knowledge base %q: %w", key, err)
	}
	return []byte(data), nil
}

func (s *sqlBackend) Put(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.upsert, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write knowledge base %q: %w", key, err)
	}
	return nil
}

func (s *sqlBackend) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlBackend) Close() error {
	return s.db.Close()
}
