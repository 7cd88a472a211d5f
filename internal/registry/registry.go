// Package registry owns the in-memory task collection. It is the single
// writer to the task store and serialises every mutation with the
// persist that follows it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
)

// ErrInvalidInput is returned by Create when the request is rejected.
// The registry is left unchanged.
var ErrInvalidInput = errors.New("invalid input")

const defaultWriteTimeout = 5 * time.Second

// NewTask holds the user-supplied fields for Create.
type NewTask struct {
	Title       string
	Description string
	DueAt       time.Time
	Priority    model.Priority
	Category    string

	// ManualOffsetMinutes schedules a one-shot reminder that many minutes
	// before DueAt. Zero disables it.
	ManualOffsetMinutes int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new task IDs.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithWriteTimeout bounds each persist call.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// Registry is the authoritative task collection for the running process.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks []model.Task // insertion order

	store        store.TaskStore
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
	writeTimeout time.Duration
}

// New creates an empty registry backed by s. Call Load to populate it.
func New(s store.TaskStore, opts ...Option) *Registry {
	r := &Registry{
		store:        s,
		logger:       slog.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory collection with the store's contents.
// Skipped records are logged and the rest are kept. Tasks repeating an
// earlier ID are dropped. A store that cannot be read is logged and
// leaves the registry empty. Only a done ctx is returned.
func (r *Registry) Load(ctx context.Context) error {
	tasks, err := r.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("loading tasks: %w", err)
	case store.IsPartialLoad(err):
		r.logger.Warn("some task records could not be loaded", "error", err)
	default:
		r.logger.Error("loading tasks failed, starting empty", "error", err)
		tasks = nil
	}

	seen := make(map[string]bool, len(tasks))
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			r.logger.Warn("dropping task with duplicate id", "id", t.ID, "title", t.Title)
			continue
		}
		seen[t.ID] = true
		kept = append(kept, t)
	}

	r.mu.Lock()
	r.tasks = kept
	r.mu.Unlock()

	r.logger.Debug("tasks loaded", "count", len(kept))
	return nil
}

// Create validates req, adds a pending task and persists. It returns the
// new task's ID.
func (r *Registry) Create(ctx context.Context, req NewTask) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.ManualOffsetMinutes < 0 {
		return "", fmt.Errorf("%w: manual reminder offset must not be negative", ErrInvalidInput)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, req.Priority)
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !req.DueAt.After(now) {
		return "", fmt.Errorf("%w: due date %s is not in the future",
			ErrInvalidInput, req.DueAt.Format(time.RFC3339))
	}

	task := model.Task{
		ID:          r.newID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		DueAt:       req.DueAt,
		Priority:    priority,
		Category:    category,
		Status:      model.StatusPending,
		CreatedAt:   now,
	}
	if req.ManualOffsetMinutes > 0 {
		at := req.DueAt.Add(-time.Duration(req.ManualOffsetMinutes) * time.Minute)
		task.ManualReminderAt = &at
	}

	r.tasks = append(r.tasks, task)
	r.persistLocked(ctx)

	r.logger.Info("task created", "id", task.ID, "title", task.Title, "due", task.DueAt)
	return task.ID, nil
}

// Complete marks a pending task completed. It reports false when the ID
// is unknown or the task was already completed.
func (r *Registry) Complete(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 || !r.tasks[i].IsPending() {
		return false
	}

	now := r.now()
	r.tasks[i].Status = model.StatusCompleted
	r.tasks[i].CompletedAt = &now
	r.persistLocked(ctx)

	r.logger.Info("task completed", "id", id)
	return true
}

// Delete removes the task if present. The collection is persisted even
// when nothing was removed.
func (r *Registry) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexLocked(id); i >= 0 {
		r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
		r.logger.Info("task deleted", "id", id)
	}
	r.persistLocked(ctx)
}

// ListPending returns copies of all pending tasks in insertion order.
func (r *Registry) ListPending() []model.Task {
	return r.filter(model.Task.IsPending)
}

// ListCompleted returns copies of all completed tasks in insertion order.
func (r *Registry) ListCompleted() []model.Task {
	return r.filter(model.Task.IsCompleted)
}

// All returns copies of every task in insertion order.
func (r *Registry) All() []model.Task {
	return r.filter(func(model.Task) bool { return true })
}

// Get returns a copy of the task with the given ID.
func (r *Registry) Get(id string) (model.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return r.tasks[i].Clone(), true
}

// Len returns the number of tasks held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// RecordAutoReminder counts an automatic reminder fired at at. Unknown
// and completed tasks are left alone.
func (r *Registry) RecordAutoReminder(ctx context.Context, id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 || !r.tasks[i].IsPending() {
		return
	}
	r.tasks[i].RemindersSent++
	r.tasks[i].LastReminderAt = &at
	r.persistLocked(ctx)
}

// RecordManualReminder marks the task's one-shot reminder as sent.
// Unknown IDs are ignored.
func (r *Registry) RecordManualReminder(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return
	}
	r.tasks[i].ManualReminderSent = true
	r.persistLocked(ctx)
}

func (r *Registry) filter(keep func(model.Task) bool) []model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// indexLocked returns the position of id or -1. Callers hold r.mu.
func (r *Registry) indexLocked(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked saves a snapshot of the collection. Failures are logged;
// the in-memory change stands. Callers hold the write lock.
func (r *Registry) persistLocked(ctx context.Context) {
	snapshot := make([]model.Task, len(r.tasks))
	for i, t := range r.tasks {
		snapshot[i] = t.Clone()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
	defer cancel()

	if err := r.store.Save(ctx, snapshot); err != nil {
		r.logger.Error("persisting tasks failed", "count", len(snapshot), "error", err)
	}
}
