package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nhle/task-reminder/internal/model"
)

// FileStore keeps the task collection in a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the JSON file at path. The file
// and its directory are created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the tasks file. A missing file is not an error.
func (s *FileStore) Load(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks file %s: %w", s.path, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		if !IsPartialLoad(err) {
			return nil, s.quarantine(err)
		}
		return tasks, fmt.Errorf("loading tasks file %s: %w", s.path, err)
	}
	return tasks, nil
}

// quarantine renames an undecodable tasks file aside so the next Save
// cannot overwrite it. Called with s.mu held.
func (s *FileStore) quarantine(cause error) error {
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("loading tasks file %s: %w", s.path, errors.Join(cause, err))
	}
	return fmt.Errorf("loading tasks file %s (moved to %s): %w", s.path, aside, cause)
}

// Save writes the collection to a temporary file in the same directory
// and renames it over the previous file.
func (s *FileStore) Save(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating tasks directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("creating temp tasks file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp tasks file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp tasks file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp tasks file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing tasks file %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error {
	return nil
}
