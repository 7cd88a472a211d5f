package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/task-reminder/internal/registry"
)

// actionResultMsg reports the outcome of a task action for the status
// bar.
type actionResultMsg struct {
	text   string
	failed bool
}

func okResult(format string, args ...any) tea.Msg {
	return actionResultMsg{text: fmt.Sprintf(format, args...)}
}

func failResult(format string, args ...any) tea.Msg {
	return actionResultMsg{text: fmt.Sprintf(format, args...), failed: true}
}

// createTask returns a command that adds the submitted task.
func (m Model) createTask(req registry.NewTask) tea.Cmd {
	reg := m.registry
	return func() tea.Msg {
		if _, err := reg.Create(context.Background(), req); err != nil {
			if errors.Is(err, registry.ErrInvalidInput) {
				return failResult("Task not added: %v", err)
			}
			return failResult("Adding task failed: %v", err)
		}
		return okResult("Task '%s' added.", req.Title)
	}
}

// completeTask returns a command that marks a task done.
func (m Model) completeTask(id string) tea.Cmd {
	reg := m.registry
	return func() tea.Msg {
		t, _ := reg.Get(id)
		if !reg.Complete(context.Background(), id) {
			return failResult("Task is already completed.")
		}
		return okResult("Task '%s' marked as completed.", t.Title)
	}
}

// deleteTask returns a command that removes a task.
func (m Model) deleteTask(id string) tea.Cmd {
	reg := m.registry
	return func() tea.Msg {
		t, ok := reg.Get(id)
		reg.Delete(context.Background(), id)
		if !ok {
			return failResult("Task not found.")
		}
		return okResult("Task '%s' deleted.", t.Title)
	}
}

// remindNow returns a command that fires a manual reminder for a task
// immediately.
func (m Model) remindNow(id string) tea.Cmd {
	w := m.worker
	return func() tea.Msg {
		sent, err := w.RemindNow(context.Background(), id)
		switch {
		case err != nil:
			return failResult("Reminder not delivered: %v", err)
		case !sent:
			return failResult("Only pending tasks can be reminded.")
		}
		return okResult("Reminder sent.")
	}
}

// checkNow returns a command that runs one poll cycle outside the
// schedule.
func (m Model) checkNow() tea.Cmd {
	w := m.worker
	return func() tea.Msg {
		r := w.Poll(context.Background())
		if r.Failed > 0 {
			return failResult("Checked %d task(s): %d reminder(s) sent, %d failed.",
				r.Considered, r.Auto+r.Manual, r.Failed)
		}
		return okResult("Checked %d task(s): %d reminder(s) sent.",
			r.Considered, r.Auto+r.Manual)
	}
}

// toggleService starts or stops the reminder worker.
func (m Model) toggleService() tea.Cmd {
	w := m.worker
	if w.Running() {
		w.Stop()
		return func() tea.Msg { return okResult("Reminder service stopped.") }
	}
	w.Start()
	return func() tea.Msg {
		return okResult("Reminder service started, checking every %s.", w.Interval())
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the notification log
// for the number of unread reminders.
func (m Model) fetchUnreadCount() tea.Cmd {
	log := m.notifLog
	if log == nil {
		return nil
	}
	return func() tea.Msg {
		notifications, err := log.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}
