package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
	"github.com/nhle/task-reminder/tests/testutil"
)

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	s := testutil.NewTestStore(t)

	tasks, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSQLiteStore_RoundTripKeepsOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	want := sampleTasks()
	// Reverse so order is not accidentally alphabetical.
	want[0], want[1] = want[1], want[0]
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStore_SaveReplacesCollection(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTasks()))
	require.NoError(t, s.Save(ctx, sampleTasks()[1:]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ID)

	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTasks()))

	dup := sampleTasks()
	dup[1].ID = dup[0].ID
	require.Error(t, s.Save(ctx, dup))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)
}

func TestSQLiteStore_ReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleTasks()))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteStore_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(ctx, sampleTasks()[:1]))

	raw, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(`INSERT INTO tasks (id, position, title, due_date, created_at)
		VALUES ('broken', 1, 'Broken', 'not a time', '2025-03-14T08:00:00Z')`)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, store.IsPartialLoad(err))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestSQLiteStore_Notifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := model.Notification{
		ID:        "n1",
		TaskID:    "a1",
		TaskTitle: "Pay bill",
		Kind:      model.ReminderAuto,
		Message:   "REMINDER: 'Pay bill' is due in 20 minutes!",
		DueAt:     testutil.Epoch.Add(20 * time.Minute),
		CreatedAt: testutil.Epoch,
	}
	second := model.Notification{
		TaskID:    "a1",
		TaskTitle: "Pay bill",
		Kind:      model.ReminderManual,
		Message:   "MANUAL REMINDER: 'Pay bill'",
		DueAt:     testutil.Epoch.Add(20 * time.Minute),
		CreatedAt: testutil.Epoch.Add(time.Minute),
	}
	require.NoError(t, s.CreateNotification(ctx, first))
	require.NoError(t, s.CreateNotification(ctx, second))

	all, err := s.ListNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.ReminderManual, all[0].Kind, "newest first")
	assert.NotEmpty(t, all[0].ID, "generated id")
	assert.Equal(t, first, all[1])

	limited, err := s.ListNotifications(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, s.MarkNotificationRead(ctx, "n1"))
	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, model.ReminderManual, unread[0].Kind)

	assert.Error(t, s.MarkNotificationRead(ctx, "missing"))
}

func TestSQLiteStore_NotificationsOrderByTime(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	created := map[string]time.Time{
		"whole":  testutil.Epoch,
		"half":   testutil.Epoch.Add(500 * time.Millisecond),
		"offset": testutil.Epoch.Add(-time.Hour).In(plusTwo),
	}
	for id, at := range created {
		require.NoError(t, s.CreateNotification(ctx, model.Notification{
			ID:        id,
			TaskID:    "a1",
			Kind:      model.ReminderAuto,
			Message:   id,
			DueAt:     testutil.Epoch.Add(time.Hour),
			CreatedAt: at,
		}))
	}

	all, err := s.ListNotifications(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, n := range all {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"half", "whole", "offset"}, ids)
	assert.True(t, created["offset"].Equal(all[2].CreatedAt))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 3)
	assert.Equal(t, "offset", unread[0].ID)
	assert.Equal(t, "half", unread[2].ID)
}

func TestSQLiteStore_RejectsUnknownReminderKind(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.CreateNotification(context.Background(), model.Notification{
		TaskID:    "a1",
		Kind:      "sms",
		Message:   "hi",
		DueAt:     testutil.Epoch,
		CreatedAt: testutil.Epoch,
	})
	assert.Error(t, err)
}
