package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/learnbot/internal/config"
)

// exerciseBackend runs the Get/Put contract every backend must honor.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, "general", []byte(`{"questions":[]}`)))
	got, err := b.Get(ctx, "general")
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[]}`, string(got))

	// Put overwrites.
	require.NoError(t, b.Put(ctx, "general", []byte(`{"questions":[{"question":"q","answer":"a"}]}`)))
	got, err = b.Get(ctx, "general")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"answer":"a"`)

	// Keys are independent.
	require.NoError(t, b.Put(ctx, "healthcare", []byte(`{"questions":[]}`)))
	got, err = b.Get(ctx, "general")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"question":"q"`)

	assert.NoError(t, b.Ping(ctx))
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "knowledge")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())

	// Ping succeeds before the directory exists.
	assert.NoError(t, b.Ping(context.Background()))

	exerciseBackend(t, b)

	_, err = os.Stat(filepath.Join(dir, "general.json"))
	assert.NoError(t, err)

	// No temp files are left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileBackend_RequiresDir(t *testing.T) {
	_, err := NewFileBackend("")
	assert.Error(t, err)
}

func TestFileBackend_PingNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	b, err := NewFileBackend(path)
	require.NoError(t, err)
	assert.Error(t, b.Ping(context.Background()))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	assert.Equal(t, "memory", b.Name())
	exerciseBackend(t, b)
}

func TestMemoryBackend_CopiesData(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	data := []byte("original")
	require.NoError(t, b.Put(ctx, "k", data))
	data[0] = 'X'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestSQLiteBackend(t *testing.T) {
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "db", "learnbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, "sqlite", b.Name())
	exerciseBackend(t, b)
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnbot.db")
	ctx := context.Background()

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "general", []byte("persisted")))
	require.NoError(t, b.Close())

	b2, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b2.Close() })

	got, err := b2.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestBadgerBackend(t *testing.T) {
	b, err := NewBadgerBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, "badger", b.Name())
	exerciseBackend(t, b)
}

func TestBadgerBackend_PingAfterClose(t *testing.T) {
	b, err := NewBadgerBackend(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Error(t, b.Ping(context.Background()))
}

func TestNewS3Backend_RequiresBucket(t *testing.T) {
	_, err := NewS3Backend(config.S3Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestS3Backend_ObjectName(t *testing.T) {
	b, err := NewS3Backend(config.S3Config{Endpoint: "localhost:9000", Bucket: "kb", Prefix: "learnbot/"})
	require.NoError(t, err)
	assert.Equal(t, "learnbot/healthcare.json", b.objectName("healthcare"))
	assert.Equal(t, "learnbot/a%2Fb.json", b.objectName("a/b"))
}

func TestNewPostgresBackend_RequiresDSN(t *testing.T) {
	b, err := NewPostgresBackend("", nil)
	assert.Error(t, err)
	assert.Nil(t, b)
}

func TestNew(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name     string
		cfg      config.StorageConfig
		wantName string
		wantErr  bool
	}{
		{name: "default is file", cfg: config.StorageConfig{Path: tmp}, wantName: "file"},
		{name: "file", cfg: config.StorageConfig{Type: "file", Path: tmp}, wantName: "file"},
		{name: "memory", cfg: config.StorageConfig{Type: "memory"}, wantName: "memory"},
		{name: "sqlite", cfg: config.StorageConfig{Type: "sqlite", Path: filepath.Join(tmp, "kb.db")}, wantName: "sqlite"},
		{name: "badger", cfg: config.StorageConfig{Type: "badger", Path: filepath.Join(tmp, "badger")}, wantName: "badger"},
		{name: "file without path", cfg: config.StorageConfig{Type: "file"}, wantErr: true},
		{name: "postgres without dsn", cfg: config.StorageConfig{Type: "postgres"}, wantErr: true},
		{name: "unknown", cfg: config.StorageConfig{Type: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			assert.Equal(t, tt.wantName, b.Name())
		})
	}
}

func TestFileBackend_SimilarKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	long := strings.Repeat("k", 200)
	keys := []string{"my store", "my_store", "my/store", long, long + "x"}
	for _, k := range keys {
		require.NoError(t, b.Put(ctx, k, []byte(k)))
	}
	for _, k := range keys {
		got, err := b.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, k, string(got))
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"general", "general"},
		{"health-care_v2", "health-care_v2"},
		{"kb.v2", "kb.v2"},
		{"../etc/passwd", "%2E.%2Fetc%2Fpasswd"},
		{"my store", "my%20store"},
		{"my_store", "my_store"},
		{"100%", "100%25"},
		{"", "%"},
		{"...", "%2E.."},
		{"café", "caf%C3%A9"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeKey(tt.in))
		})
	}
}
