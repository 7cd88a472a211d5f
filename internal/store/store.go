package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/task-reminder/internal/model"
)

// TaskStore persists the whole task collection. It holds no business
// logic: the registry decides what to save and when.
type TaskStore interface {
	// Load returns the persisted tasks in order. Missing state yields an
	// empty slice and a nil error. Malformed records are skipped and
	// reported through a *LoadError alongside the tasks that did load.
	Load(ctx context.Context) ([]model.Task, error)

	// Save overwrites the persisted collection with tasks. Readers never
	// observe a partially written collection.
	Save(ctx context.Context, tasks []model.Task) error

	// Close releases the underlying resources.
	Close() error
}

// NotificationLog records fired reminders for later review.
type NotificationLog interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	ListNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// LoadError reports task records skipped during Load. The tasks that
// decoded cleanly are still returned.
type LoadError struct {
	Skipped []error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("skipped %d malformed task record(s): %v",
		len(e.Skipped), errors.Join(e.Skipped...))
}

// Unwrap exposes the per-record errors to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return e.Skipped
}

// IsPartialLoad reports whether err (or any error in its chain) is a
// LoadError, meaning some records were skipped but the rest loaded.
func IsPartialLoad(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// normalize fills defaults older files may omit and validates the record.
func normalize(t model.Task) (model.Task, error) {
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Category == "" {
		t.Category = model.DefaultCategory
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}
