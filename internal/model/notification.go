package model

import "time"

// ReminderKind tells which trigger produced a reminder.
type ReminderKind string

const (
	ReminderAuto   ReminderKind = "auto"
	ReminderManual ReminderKind = "manual"
)

// Notification is a recorded reminder event surfaced to the user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// TaskID links this notification to the reminded task.
	TaskID string `json:"task_id" db:"task_id"`

	// TaskTitle is the title at the time the reminder fired.
	TaskTitle string `json:"task_title" db:"task_title"`

	// Kind is the trigger that fired the reminder.
	Kind ReminderKind `json:"kind" db:"kind"`

	// Message is the human-readable reminder text.
	Message string `json:"message" db:"message"`

	// DueAt is the task's due time when the reminder fired.
	DueAt time.Time `json:"due_at" db:"due_at"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when the reminder fired.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
