// Package storage persists opaque knowledge-base records under string keys.
//
// # Supported Backends
//
//   - file: one JSON file per key in a directory (the default)
//   - sqlite: a single SQLite database file (modernc.org/sqlite, no cgo)
//   - postgres: a PostgreSQL table (lib/pq)
//   - badger: an embedded Badger key-value directory
//   - s3: objects in an S3-compatible bucket (minio-go)
//   - memory: an in-process map; nothing survives the process
//
// Every backend stores one record per key and overwrites it on Put, so the
// whole knowledge base is read and written as a unit.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeanpaul/learnbot/internal/config"
)

// ErrNotFound is returned by Get when nothing has been stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a keyed blob store.
type Backend interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the record stored under key.
	Put(ctx context.Context, key string, data []byte) error
	// Ping reports whether the medium is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend type in logs and health output.
	Name() string
	Close() error
}

// New creates the backend selected by cfg.Type.
func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "file", "":
		return backend(NewFileBackend(cfg.Path))
	case "sqlite":
		return NewSQLiteBackend(cfg.Path)
	case "postgres":
		return remote(NewPostgresBackend(cfg.DSN, nil))
	case "badger":
		return backend(NewBadgerBackend(cfg.Path))
	case "s3":
		return remote(backend(NewS3Backend(cfg.S3)))
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: file, sqlite, postgres, badger, s3, memory)", cfg.Type)
	}
}

// backend drops the typed nil a failed constructor returns.
func backend[T Backend](b T, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// remote wraps a network backend with retries.
func remote(b Backend, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return WithRetry(b, 3), nil
}
