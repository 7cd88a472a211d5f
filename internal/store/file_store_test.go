package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
	"github.com/nhle/task-reminder/tests/testutil"
)

func sampleTasks() []model.Task {
	due := testutil.Epoch.Add(2 * time.Hour)
	manual := due.Add(-15 * time.Minute)
	last := testutil.Epoch.Add(-5 * time.Minute)
	completedAt := testutil.Epoch.Add(-time.Minute)

	pending := testutil.PendingTask("a1", "Pay bill", due)
	pending.Description = "electricity"
	pending.Priority = model.PriorityHigh
	pending.Category = "Home"
	pending.RemindersSent = 2
	pending.LastReminderAt = &last
	pending.ManualReminderAt = &manual

	done := testutil.PendingTask("b2", "Call mom", testutil.Epoch.Add(time.Hour))
	done.Status = model.StatusCompleted
	done.CompletedAt = &completedAt
	done.ManualReminderSent = true

	return []model.Task{pending, done}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "nope", "tasks.json"))

	tasks, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tasks.json")
	s := store.NewFileStore(path)
	ctx := context.Background()

	want := sampleTasks()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Only the final file remains in the directory.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestFileStore_SaveReplacesPreviousContents(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTasks()))
	require.NoError(t, s.Save(ctx, sampleTasks()[:1]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestFileStore_SaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := store.NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileStore_DefaultsMissingPriorityAndCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	doc := `[{"id":"x","title":"Old task","due_date":"2025-03-14T12:00:00Z",
		"status":"pending","created_at":"2025-03-14T08:00:00Z",
		"completed_at":null,"reminders_sent":0,"last_reminder_sent":null,
		"manual_reminder_time":null,"manual_reminder_sent":false}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.PriorityMedium, got[0].Priority)
	assert.Equal(t, model.DefaultCategory, got[0].Category)
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), got[0].DueAt)
}

func TestFileStore_LoadsNaiveTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	doc := `[
  {
    "id": "task_1_1710405000",
    "title": "Pay bill",
    "description": "",
    "due_date": "2025-03-14T09:30:00.123456",
    "priority": "High",
    "category": "Work",
    "status": "pending",
    "created_at": "2025-03-14T08:00:00",
    "completed_at": null,
    "reminders_sent": 1,
    "last_reminder_sent": "2025-03-14T09:05:00.5",
    "manual_reminder_time": "2025-03-14T09:15:00.123456",
    "manual_reminder_sent": false
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	task := got[0]
	assert.Equal(t, "task_1_1710405000", task.ID)
	assert.True(t, time.Date(2025, 3, 14, 9, 30, 0, 123456000, time.Local).Equal(task.DueAt))
	assert.True(t, time.Date(2025, 3, 14, 8, 0, 0, 0, time.Local).Equal(task.CreatedAt))
	assert.Nil(t, task.CompletedAt)
	require.NotNil(t, task.LastReminderAt)
	assert.True(t, time.Date(2025, 3, 14, 9, 5, 0, 500000000, time.Local).Equal(*task.LastReminderAt))
	require.NotNil(t, task.ManualReminderAt)
	assert.Equal(t, 15*time.Minute, task.DueAt.Sub(*task.ManualReminderAt))
}

func TestFileStore_SkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	doc := `[
		{"id":"good","title":"Fine","due_date":"2025-03-14T12:00:00Z","status":"pending","created_at":"2025-03-14T08:00:00Z"},
		{"id":"bad-date","title":"Broken","due_date":"tomorrow","status":"pending","created_at":"2025-03-14T08:00:00Z"},
		{"id":"no-title","title":"","due_date":"2025-03-14T12:00:00Z","status":"pending","created_at":"2025-03-14T08:00:00Z"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, store.IsPartialLoad(err))

	var loadErr *store.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Len(t, loadErr.Skipped, 2)

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)
}

func TestFileStore_NonArrayDocumentIsHardError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o600))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.False(t, store.IsPartialLoad(err))
	assert.Empty(t, got)

	assert.NoFileExists(t, path)
	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	data, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, `{"not":"a list"}`, string(data))
}

func TestFileStore_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_CanceledContext(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, sampleTasks()), context.Canceled)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
