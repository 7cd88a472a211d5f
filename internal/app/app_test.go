package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/registry"
	"github.com/nhle/task-reminder/internal/reminder"
	"github.com/nhle/task-reminder/internal/ui/command"
	"github.com/nhle/task-reminder/internal/ui/taskform"
	"github.com/nhle/task-reminder/internal/ui/tasklist"
	"github.com/nhle/task-reminder/tests/testutil"
)

type sentReminder struct {
	id   string
	kind reminder.Kind
}

type fixture struct {
	reg   *registry.Registry
	clock *testutil.Clock

	mu   sync.Mutex
	sent []sentReminder
}

func (f *fixture) Notify(_ context.Context, t model.Task, kind reminder.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReminder{id: t.ID, kind: kind})
	return nil
}

func (f *fixture) reminders() []sentReminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentReminder(nil), f.sent...)
}

func newTestModel(t *testing.T, tasks ...model.Task) (Model, *fixture) {
	t.Helper()
	f := &fixture{clock: testutil.NewClock(testutil.Epoch)}
	f.reg = registry.New(testutil.NewMemStore(tasks...), registry.WithClock(f.clock.Now))
	require.NoError(t, f.reg.Load(context.Background()))

	worker := reminder.NewWorker(f.reg, f, reminder.WithWorkerClock(f.clock.Now))
	t.Cleanup(func() {
		worker.Stop()
		worker.Wait()
	})

	m := New(Deps{Registry: f.reg, Worker: worker, Lead: 30 * time.Minute})
	m.now = f.clock.Now

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, tickMsg(f.clock.Now()))
	return m, f
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and runs the resulting action, feeding its result
// back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if res, ok := cmd().(actionResultMsg); ok {
		m = update(t, m, res)
	}
	return m
}

func TestModel_ListsPendingTasks(t *testing.T) {
	m, _ := newTestModel(t,
		testutil.PendingTask("t1", "Pay bill", testutil.Epoch.Add(45*time.Minute)))

	id, ok := m.taskList.SelectedID()
	require.True(t, ok)
	assert.Equal(t, "t1", id)

	view := m.View()
	assert.Contains(t, view, "Task Reminder")
	assert.Contains(t, view, "Pay bill")
	assert.Contains(t, view, "reminders: stopped")
}

func TestModel_SortsPendingAndCountsInHeader(t *testing.T) {
	completedAt := testutil.Epoch.Add(-time.Hour)
	done := testutil.PendingTask("t3", "Filed taxes", testutil.Epoch.Add(time.Hour))
	done.Status = model.StatusCompleted
	done.CompletedAt = &completedAt

	m, _ := newTestModel(t,
		testutil.PendingTask("t1", "Write report", testutil.Epoch.Add(2*time.Hour)),
		done,
		testutil.PendingTask("t2", "Standup", testutil.Epoch.Add(20*time.Minute)),
	)

	id, ok := m.taskList.SelectedID()
	require.True(t, ok)
	assert.Equal(t, "t2", id, "earliest due first")

	view := m.View()
	assert.Contains(t, view, "2 pending · 1 completed · 1 due soon")
	assert.Less(t, strings.Index(view, "Standup"), strings.Index(view, "Write report"))

	m = press(t, m, "d")
	assert.Contains(t, m.View(), "1 pending · 2 completed · 0 due soon")
}

func TestModel_RemindNow(t *testing.T) {
	m, f := newTestModel(t,
		testutil.PendingTask("t1", "Pay bill", testutil.Epoch.Add(3*time.Hour)))

	m = press(t, m, "r")

	assert.Equal(t, []sentReminder{{id: "t1", kind: reminder.KindManual}}, f.reminders())
	assert.Equal(t, "Reminder sent.", m.flash)
	assert.False(t, m.flashErr)

	task, _ := f.reg.Get("t1")
	assert.True(t, task.ManualReminderSent)
}

func TestModel_CompleteAndSwitchTab(t *testing.T) {
	m, f := newTestModel(t,
		testutil.PendingTask("t1", "Pay bill", testutil.Epoch.Add(time.Hour)))

	m = press(t, m, "d")
	assert.Empty(t, f.reg.ListPending())
	assert.Contains(t, m.flash, "marked as completed")
	_, ok := m.taskList.SelectedID()
	assert.False(t, ok, "pending tab is empty")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, tasklist.TabCompleted, m.taskList.Tab())
	id, ok := m.taskList.SelectedID()
	require.True(t, ok)
	assert.Equal(t, "t1", id)
}

func TestModel_Delete(t *testing.T) {
	m, f := newTestModel(t,
		testutil.PendingTask("t1", "Pay bill", testutil.Epoch.Add(time.Hour)))

	m = press(t, m, "x")
	assert.Equal(t, 0, f.reg.Len())
	assert.Equal(t, "Task 'Pay bill' deleted.", m.flash)
}

func TestModel_CheckNow(t *testing.T) {
	m, f := newTestModel(t,
		testutil.PendingTask("t1", "Pay bill", testutil.Epoch.Add(20*time.Minute)))

	m = press(t, m, "c")
	assert.Equal(t, []sentReminder{{id: "t1", kind: reminder.KindAuto}}, f.reminders())
	assert.Equal(t, "Checked 1 task(s): 1 reminder(s) sent.", m.flash)
}

func TestModel_ToggleService(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "s")
	assert.True(t, m.worker.Running())
	assert.Contains(t, m.View(), "reminders: running")

	m = press(t, m, "s")
	assert.False(t, m.worker.Running())
	assert.Equal(t, "Reminder service stopped.", m.flash)
}

func TestModel_SubmitForm(t *testing.T) {
	m, f := newTestModel(t)

	m = press(t, m, "n")
	assert.Equal(t, ViewForm, m.currentView)

	next, cmd := m.Update(taskform.SubmittedMsg{Task: registry.NewTask{
		Title: "Call Sam",
		DueAt: testutil.Epoch.Add(time.Hour),
	}})
	m = next.(Model)
	assert.Equal(t, ViewList, m.currentView)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, "Task 'Call Sam' added.", m.flash)
	require.Len(t, f.reg.ListPending(), 1)
}

func TestModel_SubmitForm_Invalid(t *testing.T) {
	m, f := newTestModel(t)

	_, cmd := m.Update(taskform.SubmittedMsg{Task: registry.NewTask{
		Title: "Too late",
		DueAt: testutil.Epoch.Add(-time.Minute),
	}})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.True(t, m.flashErr)
	assert.Contains(t, m.flash, "Task not added")
	assert.Equal(t, 0, f.reg.Len())
}

// typeCommand types input into the open palette and presses enter.
func typeCommand(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	for _, r := range input {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_Commands(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, command.CommandMsg{Name: command.Completed})
	assert.Equal(t, tasklist.TabCompleted, m.taskList.Tab())

	m = update(t, m, command.CommandMsg{Name: command.Pending})
	assert.Equal(t, tasklist.TabPending, m.taskList.Tab())

	m = update(t, m, command.CommandMsg{Name: command.Start})
	assert.True(t, m.worker.Running())
	m = update(t, m, command.CommandMsg{Name: command.Stop})
	assert.False(t, m.worker.Running())
}

func TestModel_CommandPalette(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	require.Equal(t, ViewCommand, m.currentView)

	m, cmd := typeCommand(t, m, "reboot")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewCommand, m.currentView, "rejected input keeps the palette open")
	assert.Contains(t, m.View(), `unknown command "reboot"`)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewList, m.currentView)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	assert.Empty(t, m.commandView.Err(), "reopening clears the last error")

	m, cmd = typeCommand(t, m, "co")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, tasklist.TabCompleted, m.taskList.Tab())
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "?")
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = press(t, m, "?")
	assert.Equal(t, ViewList, m.currentView)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
