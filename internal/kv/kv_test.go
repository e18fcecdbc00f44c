package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unievents/uni/internal/core"
)

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s core.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "local_events")
	assert.True(t, errors.Is(err, core.ErrNotFound), "missing key should be ErrNotFound, got %v", err)

	require.NoError(t, s.Set(ctx, "local_events", []byte(`[{"id":1,"title":"A"}]`)))
	got, err := s.Get(ctx, "local_events")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"A"}]`, string(got))

	require.NoError(t, s.Set(ctx, "local_events", []byte(`[]`)))
	got, err = s.Get(ctx, "local_events")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, "local_events"))
	_, err = s.Get(ctx, "local_events")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	// Deleting twice is fine
	require.NoError(t, s.Delete(ctx, "local_events"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStorage(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "theme", []byte(`"dark"`)))

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := s2.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))

	info, err := os.Stat(filepath.Join(dir, "theme.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Set(context.Background(), "../escape", []byte("x")))
	_, err = s.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "uni.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uni.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "token", []byte(`"mock-token"`)))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, `"mock-token"`, string(got))
}

func TestRedisStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStoreWithClient(client)
	ctx := context.Background()

	mock.ExpectGet("uni:theme").RedisNil()
	mock.ExpectSet("uni:theme", []byte("dark"), 0).SetVal("OK")
	mock.ExpectGet("uni:theme").SetVal("dark")
	mock.ExpectDel("uni:theme").SetVal(1)

	_, err := s.Get(ctx, "theme")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, s.Set(ctx, "theme", []byte("dark")))

	got, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", string(got))

	require.NoError(t, s.Delete(ctx, "theme"))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, s.Close())
}

func TestRedisStore_PropagatesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStoreWithClient(client)

	mock.ExpectGet("uni:user").SetErr(errors.New("connection refused"))

	_, err := s.Get(context.Background(), "user")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNotFound))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(Config{Backend: "etcd"})
	assert.Error(t, err)
}
