// Package reminder decides when tasks need a reminder and delivers them
// from a background worker.
package reminder

import (
	"time"

	"github.com/nhle/task-reminder/internal/model"
)

// Default policy thresholds.
const (
	DefaultLead     = 30 * time.Minute
	DefaultCooldown = 10 * time.Minute
)

// Policy holds the thresholds for automatic reminders. Its methods are
// pure functions of the task and the supplied time.
type Policy struct {
	// Lead is the due-soon window before DueAt.
	Lead time.Duration

	// Cooldown is the minimum spacing between automatic reminders for
	// the same task.
	Cooldown time.Duration
}

// DefaultPolicy returns a 30 minute window with a 10 minute cooldown.
func DefaultPolicy() Policy {
	return Policy{Lead: DefaultLead, Cooldown: DefaultCooldown}
}

// IsAutoReminderDue reports whether t is pending, due within Lead of now
// (and not yet overdue), and has not had an automatic reminder in the
// last Cooldown.
func (p Policy) IsAutoReminderDue(t model.Task, now time.Time) bool {
	if !p.IsDueSoon(t, now) {
		return false
	}
	return t.LastReminderAt == nil || now.Sub(*t.LastReminderAt) > p.Cooldown
}

// IsDueSoon reports whether t is pending and due within Lead of now,
// ignoring the cooldown.
func (p Policy) IsDueSoon(t model.Task, now time.Time) bool {
	if !t.IsPending() || t.DueAt.IsZero() {
		return false
	}
	untilDue := t.TimeUntilDue(now)
	return untilDue >= 0 && untilDue <= p.Lead
}

// CountDueSoon returns how many of tasks are due soon.
func (p Policy) CountDueSoon(tasks []model.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if p.IsDueSoon(t, now) {
			n++
		}
	}
	return n
}

// IsManualReminderDue reports whether t has an unsent manual reminder
// whose time has come. Completed tasks never qualify.
func (p Policy) IsManualReminderDue(t model.Task, now time.Time) bool {
	if !t.IsPending() || t.ManualReminderAt == nil || t.ManualReminderSent {
		return false
	}
	return !t.ManualReminderAt.After(now)
}
