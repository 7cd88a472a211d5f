package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a task. Completed is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "General"

// Task is a user-defined item with a due time and reminder bookkeeping.
// The JSON keys match the tasks.json layout written by earlier versions.
type Task struct {
	// ID is the unique, stable identifier of the task.
	ID string `json:"id" db:"id"`

	// Title is the short, non-empty summary.
	Title string `json:"title" db:"title"`

	// Description holds optional free text.
	Description string `json:"description" db:"description"`

	// DueAt is when the task is due.
	DueAt time.Time `json:"due_date" db:"due_date"`

	Priority Priority `json:"priority" db:"priority"`
	Category string   `json:"category" db:"category"`
	Status   Status   `json:"status" db:"status"`

	// CreatedAt is set once when the task is created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CompletedAt is non-nil iff Status is StatusCompleted.
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`

	// RemindersSent counts automatic reminder firings.
	RemindersSent int `json:"reminders_sent" db:"reminders_sent"`

	// LastReminderAt is when the last automatic reminder fired.
	LastReminderAt *time.Time `json:"last_reminder_sent" db:"last_reminder_sent"`

	// ManualReminderAt is DueAt minus the user's offset, nil when no
	// manual reminder was configured.
	ManualReminderAt *time.Time `json:"manual_reminder_time" db:"manual_reminder_time"`

	// ManualReminderSent flips to true once and never back.
	ManualReminderSent bool `json:"manual_reminder_sent" db:"manual_reminder_sent"`
}

// IsPending reports whether the task is still open.
func (t Task) IsPending() bool { return t.Status == StatusPending }

// IsCompleted reports whether the task reached its terminal state.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// TimeUntilDue returns DueAt - now. Negative values mean overdue.
func (t Task) TimeUntilDue(now time.Time) time.Duration {
	return t.DueAt.Sub(now)
}

// SortByDue orders tasks by due time, earliest first. Ties keep their
// relative order.
func SortByDue(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return a.DueAt.Compare(b.DueAt)
	})
}

// Clone returns a deep copy so callers cannot alias the nullable
// timestamps of a task held by the registry.
func (t Task) Clone() Task {
	c := t
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.LastReminderAt = cloneTime(t.LastReminderAt)
	c.ManualReminderAt = cloneTime(t.ManualReminderAt)
	return c
}

// Validate checks the per-record invariants of a task. Stores use it to
// skip malformed records on load.
func (t Task) Validate() error {
	var errs []error
	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, errors.New("id is empty"))
	}
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	if t.DueAt.IsZero() {
		errs = append(errs, errors.New("due date is missing"))
	}
	if t.CreatedAt.IsZero() {
		errs = append(errs, errors.New("created_at is missing"))
	}
	switch t.Status {
	case StatusPending:
		if t.CompletedAt != nil {
			errs = append(errs, errors.New("pending task has completed_at"))
		}
	case StatusCompleted:
		if t.CompletedAt == nil {
			errs = append(errs, errors.New("completed task has no completed_at"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", t.Status))
	}
	if t.Priority != "" && !t.Priority.Valid() {
		errs = append(errs, fmt.Errorf("unknown priority %q", t.Priority))
	}
	if t.RemindersSent < 0 {
		errs = append(errs, errors.New("reminders_sent is negative"))
	}
	if t.ManualReminderAt != nil && t.ManualReminderAt.After(t.DueAt) {
		errs = append(errs, errors.New("manual reminder is after due date"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("task %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
