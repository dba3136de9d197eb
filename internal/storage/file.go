package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps each record in <dir>/<key>.json.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file storage requires a directory")
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Name() string { return "file" }

// Path is the file a key is stored in.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes to a temp file in the same directory and renames it over the
// target, so readers see either the old or the new record.
func (f *FileBackend) Put(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}
	target := f.Path(key)

	tmp, err := os.CreateTemp(f.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (f *FileBackend) Ping(_ context.Context) error {
	st, err := os.Stat(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Created on first Put; the parent must be usable.
			return f.pingParent()
		}
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", f.dir)
	}
	return nil
}

func (f *FileBackend) pingParent() error {
	parent := filepath.Dir(f.dir)
	for {
		st, err := os.Stat(parent)
		if err == nil {
			if !st.IsDir() {
				return fmt.Errorf("%s is not a directory", parent)
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return err
		}
		next := filepath.Dir(parent)
		if next == parent {
			return err
		}
		parent = next
	}
}

func (f *FileBackend) Close() error { return nil }

// sanitizeKey maps a key to a file-safe name. Letters, digits, '-' and '_'
// pass through; every other byte, and a leading '.', becomes %XX. Distinct
// keys always give distinct names.
func sanitizeKey(s string) string {
	if s == "" {
		return "%"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		case c == '.' && i > 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
