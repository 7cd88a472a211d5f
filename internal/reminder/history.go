package reminder

import (
	"sync"
	"time"

	"github.com/nhle/task-reminder/internal/model"
)

// DefaultHistorySize is how many recent events History keeps.
const DefaultHistorySize = 10

// Event is one delivered reminder.
type Event struct {
	TaskID    string
	TaskTitle string
	Kind      Kind
	Message   string
	DueAt     time.Time
	At        time.Time
}

// History keeps the most recent reminder events, oldest first.
type History struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewHistory returns a History holding at most limit events.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &History{limit: limit}
}

// Add appends e, evicting the oldest event when full.
func (h *History) Add(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, e)
	if over := len(h.events) - h.limit; over > 0 {
		h.events = append([]Event(nil), h.events[over:]...)
	}
}

// Events returns a copy of the held events, oldest first.
func (h *History) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Recent returns up to n of the newest events, newest first.
func (h *History) Recent(n int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > len(h.events) {
		n = len(h.events)
	}
	out := make([]Event, 0, n)
	for i := len(h.events) - 1; i >= len(h.events)-n; i-- {
		out = append(out, h.events[i])
	}
	return out
}

// Len returns the number of held events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (e Event) notification() model.Notification {
	return model.Notification{
		TaskID:    e.TaskID,
		TaskTitle: e.TaskTitle,
		Kind:      e.Kind,
		Message:   e.Message,
		DueAt:     e.DueAt,
		CreatedAt: e.At,
	}
}
