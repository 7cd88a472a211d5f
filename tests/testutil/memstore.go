package testutil

import (
	"context"
	"sync"

	"github.com/nhle/task-reminder/internal/model"
)

// MemStore is an in-memory TaskStore that records every Save.
type MemStore struct {
	mu      sync.Mutex
	tasks   []model.Task
	saves   int
	loadErr error
	saveErr error
}

// NewMemStore returns a store preloaded with tasks.
func NewMemStore(tasks ...model.Task) *MemStore {
	return &MemStore{tasks: cloneAll(tasks)}
}

// Load returns the stored tasks and the configured load error.
func (m *MemStore) Load(ctx context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.tasks), m.loadErr
}

// Save replaces the stored tasks unless a save error is configured.
func (m *MemStore) Save(ctx context.Context, tasks []model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = cloneAll(tasks)
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }

// Saved returns a copy of the last successfully saved collection.
func (m *MemStore) Saved() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.tasks)
}

// Saves counts Save calls, failed ones included.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailLoad makes Load return err alongside the stored tasks.
func (m *MemStore) FailLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// FailSave makes Save return err without storing anything.
func (m *MemStore) FailSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func cloneAll(tasks []model.Task) []model.Task {
	if tasks == nil {
		return nil
	}
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
