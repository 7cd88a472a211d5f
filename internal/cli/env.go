package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/task-reminder/internal/credential"
	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/registry"
	"github.com/nhle/task-reminder/internal/reminder"
	"github.com/nhle/task-reminder/internal/store"
)

// env holds the services one command invocation runs against.
type env struct {
	cfg      *model.AppConfig
	logger   *slog.Logger
	store    store.TaskStore
	notifLog store.NotificationLog
	registry *registry.Registry
	history  *reminder.History
	sink     *reminder.BellSink
	worker   *reminder.Worker

	closers []io.Closer
}

// openEnv loads the configuration and builds the store, registry, sink
// and worker. Banners go to out. For the TUI, banners are dropped and
// logs only go to the configured file so the screen stays intact.
func (r *RootCommand) openEnv(ctx context.Context, tui bool) (*env, error) {
	cfg, err := model.LoadConfig(r.configPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	logOut := r.errOut
	if tui {
		logOut = io.Discard
	}
	if e.logger, err = e.newLogger(cfg.Log, logOut); err != nil {
		return nil, err
	}

	password, err := credential.Lookup(cfg.Storage.Redis.PasswordKeyringKey)
	if err != nil {
		return nil, fmt.Errorf("reading redis password: %w", err)
	}

	if e.store, err = store.Open(cfg.Storage, password); err != nil {
		return nil, err
	}
	e.closers = append(e.closers, e.store)

	if err := e.openNotificationLog(); err != nil {
		return nil, err
	}

	e.registry = registry.New(e.store,
		registry.WithLogger(e.logger),
		registry.WithClock(r.now),
		registry.WithWriteTimeout(cfg.Storage.WriteTimeout()),
	)
	if err := e.registry.Load(ctx); err != nil {
		return nil, err
	}

	e.history = reminder.NewHistory(cfg.Notifications.HistorySize)
	e.sink = reminder.NewBellSink(r.out)
	e.sink.Bells = cfg.Reminders.Bells
	e.sink.History = e.history
	e.sink.Log = e.notifLog
	e.sink.Now = r.now
	if tui {
		e.sink.Out = io.Discard
		e.sink.Bell = r.errOut
	}

	e.worker = reminder.NewWorker(e.registry, e.sink,
		reminder.WithInterval(cfg.Reminders.PollInterval()),
		reminder.WithPolicy(reminder.Policy{
			Lead:     cfg.Reminders.Lead(),
			Cooldown: cfg.Reminders.Cooldown(),
		}),
		reminder.WithDeliveryTimeout(cfg.Reminders.DeliveryTimeout()),
		reminder.WithWorkerClock(r.now),
		reminder.WithWorkerLogger(e.logger),
	)

	ok = true
	return e, nil
}

// openNotificationLog uses the task database when the backend is sqlite,
// otherwise a separate database when notifications.db_path is set.
func (e *env) openNotificationLog() error {
	if s, isSQLite := e.store.(*store.SQLiteStore); isSQLite {
		e.notifLog = s
		return nil
	}
	if e.cfg.Notifications.DBPath == "" {
		return nil
	}
	s, err := store.OpenNotificationLog(e.cfg.Notifications.DBPath)
	if err != nil {
		return fmt.Errorf("opening reminder log: %w", err)
	}
	e.notifLog = s
	e.closers = append(e.closers, s)
	return nil
}

func (e *env) newLogger(cfg model.LogConfig, fallback io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}

	w := fallback
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		e.closers = append(e.closers, f)
		w = f
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// Close releases everything openEnv acquired, newest first.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
