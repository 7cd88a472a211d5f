package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/task-reminder/internal/model"
)

// DefaultRedisKey holds the task document when no key is configured.
const DefaultRedisKey = "taskreminder:tasks"

// RedisStore keeps the task collection as one JSON document under a
// single Redis key. A SET replaces the document atomically.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

// NewRedisStore returns a store that reads and writes key on rdb.
func NewRedisStore(rdb redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Load fetches and decodes the task document. A missing key is an empty
// collection.
func (s *RedisStore) Load(ctx context.Context) ([]model.Task, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading redis key %s: %w", s.key, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		return tasks, fmt.Errorf("loading redis key %s: %w", s.key, err)
	}
	return tasks, nil
}

// Save encodes the collection and overwrites the key.
func (s *RedisStore) Save(ctx context.Context, tasks []model.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing redis key %s: %w", s.key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
