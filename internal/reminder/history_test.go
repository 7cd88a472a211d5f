package reminder_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminder/internal/reminder"
)

func TestHistory_KeepsNewest(t *testing.T) {
	h := reminder.NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(reminder.Event{TaskID: fmt.Sprint(i)})
	}

	events := h.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "2", events[0].TaskID)
	assert.Equal(t, "4", events[2].TaskID)
	assert.Equal(t, 3, h.Len())
}

func TestHistory_Recent(t *testing.T) {
	h := reminder.NewHistory(0)
	assert.Empty(t, h.Recent(3))

	for i := 0; i < 12; i++ {
		h.Add(reminder.Event{TaskID: fmt.Sprint(i)})
	}
	assert.Equal(t, reminder.DefaultHistorySize, h.Len())

	recent := h.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"11", "10", "9"},
		[]string{recent[0].TaskID, recent[1].TaskID, recent[2].TaskID})
	assert.Len(t, h.Recent(50), reminder.DefaultHistorySize)
}

func TestHistory_EventsIsACopy(t *testing.T) {
	h := reminder.NewHistory(2)
	h.Add(reminder.Event{TaskID: "a"})

	events := h.Events()
	events[0].TaskID = "changed"
	assert.Equal(t, "a", h.Events()[0].TaskID)
}
