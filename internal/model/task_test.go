package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func validTask() Task {
	return Task{
		ID:        "t1",
		Title:     "Pay bill",
		DueAt:     epoch.Add(time.Hour),
		Priority:  PriorityMedium,
		Category:  DefaultCategory,
		Status:    StatusPending,
		CreatedAt: epoch,
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "low", want: PriorityLow},
		{in: "Medium", want: PriorityMedium},
		{in: " HIGH ", want: PriorityHigh},
		{in: "urgent", want: PriorityUrgent},
		{in: "someday", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskValidate(t *testing.T) {
	completedAt := epoch.Add(time.Minute)
	lateManual := epoch.Add(2 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "empty id", mutate: func(t *Task) { t.ID = " " }, wantErr: "id is empty"},
		{name: "empty title", mutate: func(t *Task) { t.Title = "" }, wantErr: "title is empty"},
		{name: "no due date", mutate: func(t *Task) { t.DueAt = time.Time{} }, wantErr: "due date is missing"},
		{name: "no created_at", mutate: func(t *Task) { t.CreatedAt = time.Time{} }, wantErr: "created_at is missing"},
		{name: "pending with completed_at", mutate: func(t *Task) { t.CompletedAt = &completedAt }, wantErr: "pending task has completed_at"},
		{name: "completed without completed_at", mutate: func(t *Task) { t.Status = StatusCompleted }, wantErr: "completed task has no completed_at"},
		{name: "completed", mutate: func(t *Task) {
			t.Status = StatusCompleted
			t.CompletedAt = &completedAt
		}},
		{name: "unknown status", mutate: func(t *Task) { t.Status = "archived" }, wantErr: "unknown status"},
		{name: "unknown priority", mutate: func(t *Task) { t.Priority = "Someday" }, wantErr: "unknown priority"},
		{name: "negative counter", mutate: func(t *Task) { t.RemindersSent = -1 }, wantErr: "reminders_sent is negative"},
		{name: "manual after due", mutate: func(t *Task) { t.ManualReminderAt = &lateManual }, wantErr: "manual reminder is after due date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)
			err := task.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTaskClone(t *testing.T) {
	last := epoch
	task := validTask()
	task.LastReminderAt = &last

	c := task.Clone()
	*c.LastReminderAt = epoch.Add(time.Hour)

	assert.Equal(t, epoch, *task.LastReminderAt)
	assert.Nil(t, c.CompletedAt)
}

func TestTimeUntilDue(t *testing.T) {
	task := validTask()
	assert.Equal(t, time.Hour, task.TimeUntilDue(epoch))
	assert.Equal(t, -time.Minute, task.TimeUntilDue(epoch.Add(61*time.Minute)))
}

func TestSortByDue(t *testing.T) {
	at := func(id string, d time.Duration) Task {
		task := validTask()
		task.ID = id
		task.DueAt = epoch.Add(d)
		return task
	}
	tasks := []Task{at("late", 3*time.Hour), at("first", time.Hour), at("early", 30*time.Minute), at("second", time.Hour)}

	SortByDue(tasks)

	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{"early", "first", "second", "late"}, ids)
}
