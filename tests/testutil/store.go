package testutil

import (
	"testing"
	"time"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Epoch is the fixed "now" used by tests that need a deterministic clock.
var Epoch = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// PendingTask returns a valid pending task due at due.
func PendingTask(id, title string, due time.Time) model.Task {
	return model.Task{
		ID:        id,
		Title:     title,
		DueAt:     due,
		Priority:  model.PriorityMedium,
		Category:  model.DefaultCategory,
		Status:    model.StatusPending,
		CreatedAt: Epoch.Add(-time.Hour),
	}
}
