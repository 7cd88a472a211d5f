package store_test

import (
	"context"
	"testing"

	mrd "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
)

func newMiniStore(t *testing.T, key string) (*store.RedisStore, *mrd.Miniredis) {
	t.Helper()
	mr := mrd.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedisStore(rdb, key)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_MissingKeyIsEmpty(t *testing.T) {
	s, _ := newMiniStore(t, "")

	tasks, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, mr := newMiniStore(t, "tests:tasks")
	ctx := context.Background()

	want := sampleTasks()
	require.NoError(t, s.Save(ctx, want))
	assert.True(t, mr.Exists("tests:tasks"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_DefaultKey(t *testing.T) {
	s, mr := newMiniStore(t, "")

	require.NoError(t, s.Save(context.Background(), nil))

	raw, err := mr.Get(store.DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", raw)
}

func TestRedisStore_SkipsMalformedRecords(t *testing.T) {
	s, mr := newMiniStore(t, "k")
	require.NoError(t, mr.Set("k", `[
		{"id":"ok","title":"Fine","due_date":"2025-03-14T12:00:00Z","status":"pending","created_at":"2025-03-14T08:00:00Z"},
		{"id":"bad","title":"Bad","due_date":"2025-03-14T12:00:00Z","status":"archived","created_at":"2025-03-14T08:00:00Z"}
	]`))

	got, err := s.Load(context.Background())
	assert.True(t, store.IsPartialLoad(err))
	require.Len(t, got, 1)
	assert.Equal(t, model.PriorityMedium, got[0].Priority)
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newMiniStore(t, "k")
	mr.Close()

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.False(t, store.IsPartialLoad(err))
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	fs, err := store.Open(model.StorageConfig{Backend: model.BackendFile, Path: dir + "/tasks.json"}, "")
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, fs)

	ss, err := store.Open(model.StorageConfig{Backend: model.BackendSQLite, Path: dir + "/tasks.db"}, "")
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, ss)
	require.NoError(t, ss.Close())

	rs, err := store.Open(model.StorageConfig{
		Backend: model.BackendRedis,
		Redis:   model.RedisConfig{Addr: "localhost:0", Key: "k"},
	}, "")
	require.NoError(t, err)
	assert.IsType(t, &store.RedisStore{}, rs)
	require.NoError(t, rs.Close())

	_, err = store.Open(model.StorageConfig{Backend: "s3"}, "")
	assert.Error(t, err)
}
