package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/nhle/task-reminder/internal/model"
)

// encodeTasks renders the task collection as an indented JSON array.
// Absent timestamps are written as null.
func encodeTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeTasks parses a JSON array of tasks record by record. A record
// that fails to decode or validate is skipped and reported through a
// *LoadError; a document that is not an array at all is a hard error.
func decodeTasks(data []byte) ([]model.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding task document: %w", err)
	}

	tasks := make([]model.Task, 0, len(records))
	var skipped []error
	for i, raw := range records {
		var rec taskRecord
		if err := sonic.Unmarshal(raw, &rec); err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		t, err := rec.task()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		t, err = normalize(t)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		tasks = append(tasks, t)
	}

	if len(skipped) > 0 {
		return tasks, &LoadError{Skipped: skipped}
	}
	return tasks, nil
}

// naiveISOLayout matches timestamps written without an offset, as in
// files produced by earlier versions. They are read as local time.
const naiveISOLayout = "2006-01-02T15:04:05.999999999"

// taskRecord is the on-disk shape of a task with timestamps left as
// text so both RFC 3339 and naive ISO values decode.
type taskRecord struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	DueAt              string  `json:"due_date"`
	Priority           string  `json:"priority"`
	Category           string  `json:"category"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"created_at"`
	CompletedAt        *string `json:"completed_at"`
	RemindersSent      int     `json:"reminders_sent"`
	LastReminderAt     *string `json:"last_reminder_sent"`
	ManualReminderAt   *string `json:"manual_reminder_time"`
	ManualReminderSent bool    `json:"manual_reminder_sent"`
}

func (r taskRecord) task() (model.Task, error) {
	t := model.Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Priority:           model.Priority(r.Priority),
		Category:           r.Category,
		Status:             model.Status(r.Status),
		RemindersSent:      r.RemindersSent,
		ManualReminderSent: r.ManualReminderSent,
	}

	var err error
	if t.DueAt, err = parseTimestamp("due_date", r.DueAt); err != nil {
		return t, err
	}
	if t.CreatedAt, err = parseTimestamp("created_at", r.CreatedAt); err != nil {
		return t, err
	}
	if t.CompletedAt, err = parseOptionalTimestamp("completed_at", r.CompletedAt); err != nil {
		return t, err
	}
	if t.LastReminderAt, err = parseOptionalTimestamp("last_reminder_sent", r.LastReminderAt); err != nil {
		return t, err
	}
	if t.ManualReminderAt, err = parseOptionalTimestamp("manual_reminder_time", r.ManualReminderAt); err != nil {
		return t, err
	}
	return t, nil
}

// parseTimestamp accepts RFC 3339 first and falls back to a naive ISO
// timestamp in local time. An empty value yields the zero time, which
// Validate reports.
func parseTimestamp(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveISOLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: unrecognised timestamp %q", field, s)
	}
	return t, nil
}

func parseOptionalTimestamp(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
