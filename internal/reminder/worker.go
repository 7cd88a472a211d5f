package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/task-reminder/internal/model"
)

// DefaultInterval is the pause between poll cycles.
const DefaultInterval = 30 * time.Second

// deliveryTimeout is the default bound on a single Notify call.
const deliveryTimeout = 10 * time.Second

// Tasks is the part of the registry the worker needs.
type Tasks interface {
	ListPending() []model.Task
	Get(id string) (model.Task, bool)
	RecordAutoReminder(ctx context.Context, id string, at time.Time)
	RecordManualReminder(ctx context.Context, id string)
}

// CycleResult summarises one poll cycle.
type CycleResult struct {
	At         time.Time
	Auto       int
	Manual     int
	Failed     int
	Considered int
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) WorkerOption {
	return func(w *Worker) { w.policy = p }
}

// WithDeliveryTimeout bounds each Notify call.
func WithDeliveryTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.deliveryTimeout = d
		}
	}
}

// WithWorkerClock replaces time.Now.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWorkerLogger sets the logger for delivery failures.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// Worker polls the task collection and delivers due reminders. One
// goroutine runs the loop between Start and Stop.
type Worker struct {
	tasks  Tasks
	sink   Sink
	policy Policy
	logger *slog.Logger
	now    func() time.Time

	interval        time.Duration
	deliveryTimeout time.Duration

	// cycleMu serialises poll cycles and RemindNow, so neither a loop
	// restarted while the previous one is finishing nor a manual
	// reminder racing a cycle double-delivers.
	cycleMu sync.Mutex

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastPoll time.Time
	last     CycleResult
}

// NewWorker creates a stopped worker delivering to sink.
func NewWorker(tasks Tasks, sink Sink, opts ...WorkerOption) *Worker {
	w := &Worker{
		tasks:           tasks,
		sink:            sink,
		policy:          DefaultPolicy(),
		logger:          slog.Default(),
		now:             time.Now,
		interval:        DefaultInterval,
		deliveryTimeout: deliveryTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the poll loop. The first cycle runs immediately. It is
// a no-op when already running.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.loop(w.stopCh, w.doneCh)
	w.logger.Info("reminder service started", "interval", w.interval)
}

// Stop asks the loop to exit. A cycle in progress is finished first; the
// loop exits at its next wait. It is a no-op when already stopped.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
	w.logger.Info("reminder service stopped")
}

// Wait blocks until the most recently started loop has exited.
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.doneCh
	w.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Running reports whether the loop is started.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// LastPoll returns when the last cycle ran, or the zero time.
func (w *Worker) LastPoll() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastPoll
}

// NextPoll estimates when the next cycle runs. It is zero when stopped.
func (w *Worker) NextPoll() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.lastPoll.IsZero() {
		return time.Time{}
	}
	return w.lastPoll.Add(w.interval)
}

// LastResult returns the summary of the last cycle.
func (w *Worker) LastResult() CycleResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Interval returns the pause between cycles.
func (w *Worker) Interval() time.Duration {
	return w.interval
}

func (w *Worker) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Poll(context.Background())

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.Poll(context.Background())
		}
	}
}

// Poll runs one cycle: automatic reminders first, then manual ones, for
// the pending tasks as of the start of the cycle. No registry lock is
// held while the sink runs.
func (w *Worker) Poll(ctx context.Context) CycleResult {
	w.cycleMu.Lock()
	defer w.cycleMu.Unlock()

	now := w.now()
	pending := w.tasks.ListPending()
	result := CycleResult{At: now, Considered: len(pending)}

	for _, t := range pending {
		if !w.policy.IsAutoReminderDue(t, now) {
			continue
		}
		if w.deliver(ctx, t, KindAuto) {
			w.tasks.RecordAutoReminder(ctx, t.ID, now)
			result.Auto++
		} else {
			result.Failed++
		}
	}

	for _, t := range pending {
		if !w.policy.IsManualReminderDue(t, now) {
			continue
		}
		if w.deliver(ctx, t, KindManual) {
			w.tasks.RecordManualReminder(ctx, t.ID)
			result.Manual++
		} else {
			result.Failed++
		}
	}

	w.mu.Lock()
	w.lastPoll = now
	w.last = result
	w.mu.Unlock()

	if result.Auto+result.Manual+result.Failed > 0 {
		w.logger.Info("poll cycle finished",
			"auto", result.Auto, "manual", result.Manual, "failed", result.Failed)
	}
	return result
}

// RemindNow sends a manual reminder for a pending task straight away,
// whatever its scheduled manual time. It reports false for unknown or
// completed tasks, and returns the error when delivery failed. It runs
// between poll cycles, never during one.
func (w *Worker) RemindNow(ctx context.Context, id string) (bool, error) {
	w.cycleMu.Lock()
	defer w.cycleMu.Unlock()

	t, ok := w.tasks.Get(id)
	if !ok || !t.IsPending() {
		return false, nil
	}

	if err := w.notify(ctx, t, KindManual); err != nil && isHardFailure(err) {
		return false, err
	}
	w.tasks.RecordManualReminder(ctx, t.ID)
	return true, nil
}

// deliver notifies the sink and reports whether bookkeeping should
// advance.
func (w *Worker) deliver(ctx context.Context, t model.Task, kind Kind) bool {
	err := w.notify(ctx, t, kind)
	return err == nil || !isHardFailure(err)
}

func (w *Worker) notify(ctx context.Context, t model.Task, kind Kind) error {
	ctx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	defer cancel()

	err := w.sink.Notify(ctx, t, kind)
	switch {
	case err == nil:
		w.logger.Debug("reminder delivered", "id", t.ID, "kind", kind)
	case isHardFailure(err):
		w.logger.Warn("reminder not delivered, will retry",
			"id", t.ID, "title", t.Title, "kind", kind, "error", err)
	default:
		w.logger.Warn("reminder delivered with errors",
			"id", t.ID, "title", t.Title, "kind", kind, "error", err)
	}
	return err
}

// isHardFailure reports whether err means the user never saw the
// reminder. Sinks that give up on a timeout wrap ErrUndelivered.
func isHardFailure(err error) bool {
	return errors.Is(err, ErrUndelivered)
}
