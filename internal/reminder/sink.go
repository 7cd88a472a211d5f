package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/store"
)

// Kind tells which trigger produced a reminder.
type Kind = model.ReminderKind

const (
	KindAuto   = model.ReminderAuto
	KindManual = model.ReminderManual
)

// ErrUndelivered marks a notification the user never saw. The worker
// leaves the task's bookkeeping untouched so the next cycle retries.
// Any other Notify error is treated as cosmetic: the reminder counts as
// delivered.
var ErrUndelivered = errors.New("reminder not delivered")

// Sink delivers reminders to the user.
type Sink interface {
	Notify(ctx context.Context, t model.Task, kind Kind) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, t model.Task, kind Kind) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, t model.Task, kind Kind) error {
	return f(ctx, t, kind)
}

// Message renders the one-line reminder text for t at now.
func Message(t model.Task, kind Kind, now time.Time) string {
	if kind == KindManual {
		return fmt.Sprintf("MANUAL REMINDER: '%s'", t.Title)
	}
	minutes := int(t.TimeUntilDue(now) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("REMINDER: '%s' is due in %d minutes!", t.Title, minutes)
}

const bannerRule = "============================================================"

// BellSink prints a banner and rings the terminal bell. Delivered
// reminders are appended to History and, when set, to Log.
type BellSink struct {
	// Out receives the banner. A failed write means the reminder was
	// not delivered.
	Out io.Writer

	// Bell receives the bell characters; nil uses Out.
	Bell io.Writer

	// Bells is how many times the bell rings, BellPause apart.
	Bells     int
	BellPause time.Duration

	History *History
	Log     store.NotificationLog

	Now func() time.Time
}

// NewBellSink returns a sink writing to out with two bells half a
// second apart and a default-sized history.
func NewBellSink(out io.Writer) *BellSink {
	return &BellSink{
		Out:       out,
		Bells:     2,
		BellPause: 500 * time.Millisecond,
		History:   NewHistory(DefaultHistorySize),
		Now:       time.Now,
	}
}

// Notify implements Sink.
func (s *BellSink) Notify(ctx context.Context, t model.Task, kind Kind) error {
	now := s.now()
	msg := Message(t, kind, now)

	var b strings.Builder
	b.WriteString(bannerRule + "\n")
	b.WriteString("*** TASK REMINDER ***\n")
	b.WriteString(msg + "\n")
	fmt.Fprintf(&b, "Due at: %s\n", t.DueAt.Local().Format("2006-01-02 15:04"))
	if t.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", t.Description)
	}
	b.WriteString(bannerRule + "\n")

	if _, err := io.WriteString(s.Out, b.String()); err != nil {
		return fmt.Errorf("%w: writing banner for %s: %v", ErrUndelivered, t.ID, err)
	}

	var cosmetic []error
	if err := s.ring(ctx); err != nil {
		cosmetic = append(cosmetic, fmt.Errorf("ringing bell: %w", err))
	}

	event := Event{
		TaskID:    t.ID,
		TaskTitle: t.Title,
		Kind:      kind,
		Message:   msg,
		DueAt:     t.DueAt,
		At:        now,
	}
	if s.History != nil {
		s.History.Add(event)
	}
	if s.Log != nil {
		if err := s.Log.CreateNotification(ctx, event.notification()); err != nil {
			cosmetic = append(cosmetic, fmt.Errorf("recording notification: %w", err))
		}
	}

	return errors.Join(cosmetic...)
}

func (s *BellSink) ring(ctx context.Context) error {
	w := s.Bell
	if w == nil {
		w = s.Out
	}
	for i := 0; i < s.Bells; i++ {
		if i > 0 && s.BellPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.BellPause):
			}
		}
		if _, err := io.WriteString(w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

func (s *BellSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
