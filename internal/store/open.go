package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/task-reminder/internal/model"
)

// Open builds the TaskStore selected by cfg.Backend. redisPassword is
// only used by the redis backend.
func Open(cfg model.StorageConfig, redisPassword string) (TaskStore, error) {
	switch cfg.Backend {
	case model.BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case model.BackendSQLite:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case model.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: redisPassword,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(rdb, cfg.Redis.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ensureDir creates the parent directory of a database file. In-memory
// databases are left alone.
func ensureDir(dbPath string) error {
	if dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}

// OpenNotificationLog opens a sqlite reminder log at dbPath.
func OpenNotificationLog(dbPath string) (*SQLiteStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}
	return NewSQLiteStore(dbPath)
}
