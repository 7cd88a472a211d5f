package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-reminder/internal/model"
)

type notificationRow struct {
	ID        string `db:"id"`
	TaskID    string `db:"task_id"`
	TaskTitle string `db:"task_title"`
	Kind      string `db:"kind"`
	Message   string `db:"message"`
	DueAt     string `db:"due_at"`
	Read      int    `db:"read"`
	CreatedAt string `db:"created_at"`
}

// CreateNotification inserts a new notification record. Generates a UUID
// if ID is empty.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, task_id, task_title, kind, message, due_at, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.TaskTitle, string(n.Kind), n.Message,
		formatSortableTime(n.DueAt), boolToInt(n.Read), formatSortableTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// GetUnreadNotifications returns all unread notifications, oldest first.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	return s.queryNotifications(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at ASC")
}

// ListNotifications returns the most recent notifications, newest first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	query := "SELECT * FROM notifications ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryNotifications(ctx, query)
}

// MarkNotificationRead marks a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// sortableTimeLayout is fixed width and always UTC, so text order in
// ORDER BY matches time order.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSortableTime(t time.Time) string {
	return t.UTC().Format(sortableTimeLayout)
}

func (s *SQLiteStore) queryNotifications(ctx context.Context, query string) ([]model.Notification, error) {
	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}

	notifications := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toNotification()
		if err != nil {
			return nil, fmt.Errorf("scanning notification %s: %w", row.ID, err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r notificationRow) toNotification() (model.Notification, error) {
	n := model.Notification{
		ID:        r.ID,
		TaskID:    r.TaskID,
		TaskTitle: r.TaskTitle,
		Kind:      model.ReminderKind(r.Kind),
		Message:   r.Message,
		Read:      r.Read != 0,
	}

	var err error
	if n.DueAt, err = parseTime(r.DueAt); err != nil {
		return model.Notification{}, fmt.Errorf("due_at: %w", err)
	}
	if n.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return model.Notification{}, fmt.Errorf("created_at: %w", err)
	}
	return n, nil
}
