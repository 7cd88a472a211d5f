package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/task-reminder/internal/model"
)

// SQLiteStore implements TaskStore and NotificationLog on a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection serialises writers and keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// taskRow is the column layout of the tasks table.
type taskRow struct {
	ID                 string         `db:"id"`
	Position           int            `db:"position"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	DueDate            string         `db:"due_date"`
	Priority           string         `db:"priority"`
	Category           string         `db:"category"`
	Status             string         `db:"status"`
	CreatedAt          string         `db:"created_at"`
	CompletedAt        sql.NullString `db:"completed_at"`
	RemindersSent      int            `db:"reminders_sent"`
	LastReminderSent   sql.NullString `db:"last_reminder_sent"`
	ManualReminderTime sql.NullString `db:"manual_reminder_time"`
	ManualReminderSent int            `db:"manual_reminder_sent"`
}

// Load returns all tasks ordered by their saved position. Rows with
// unparseable timestamps are skipped and reported via *LoadError.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, position, title, description, due_date, priority, category,
			status, created_at, completed_at, reminders_sent, last_reminder_sent,
			manual_reminder_time, manual_reminder_sent
		FROM tasks
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	var skipped []error
	for _, row := range rows {
		task, err := row.toTask()
		if err == nil {
			task, err = normalize(task)
		}
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %s: %w", row.ID, err))
			continue
		}
		tasks = append(tasks, task)
	}

	if len(skipped) > 0 {
		return tasks, &LoadError{Skipped: skipped}
	}
	return tasks, nil
}

// Save replaces the tasks table contents in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}

	const query = `
		INSERT INTO tasks (
			id, position, title, description, due_date, priority, category,
			status, created_at, completed_at, reminders_sent, last_reminder_sent,
			manual_reminder_time, manual_reminder_sent
		) VALUES (
			:id, :position, :title, :description, :due_date, :priority, :category,
			:status, :created_at, :completed_at, :reminders_sent, :last_reminder_sent,
			:manual_reminder_time, :manual_reminder_sent
		)`

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.ExecContext(ctx, taskToRow(i, t)); err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func taskToRow(position int, t model.Task) taskRow {
	return taskRow{
		ID:                 t.ID,
		Position:           position,
		Title:              t.Title,
		Description:        t.Description,
		DueDate:            formatTime(t.DueAt),
		Priority:           string(t.Priority),
		Category:           t.Category,
		Status:             string(t.Status),
		CreatedAt:          formatTime(t.CreatedAt),
		CompletedAt:        formatNullTime(t.CompletedAt),
		RemindersSent:      t.RemindersSent,
		LastReminderSent:   formatNullTime(t.LastReminderAt),
		ManualReminderTime: formatNullTime(t.ManualReminderAt),
		ManualReminderSent: boolToInt(t.ManualReminderSent),
	}
}

func (r taskRow) toTask() (model.Task, error) {
	task := model.Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Priority:           model.Priority(r.Priority),
		Category:           r.Category,
		Status:             model.Status(r.Status),
		RemindersSent:      r.RemindersSent,
		ManualReminderSent: r.ManualReminderSent != 0,
	}

	var err error
	if task.DueAt, err = parseTime(r.DueDate); err != nil {
		return model.Task{}, fmt.Errorf("due_date: %w", err)
	}
	if task.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return model.Task{}, fmt.Errorf("created_at: %w", err)
	}
	if task.CompletedAt, err = parseNullTime(r.CompletedAt); err != nil {
		return model.Task{}, fmt.Errorf("completed_at: %w", err)
	}
	if task.LastReminderAt, err = parseNullTime(r.LastReminderSent); err != nil {
		return model.Task{}, fmt.Errorf("last_reminder_sent: %w", err)
	}
	if task.ManualReminderAt, err = parseNullTime(r.ManualReminderTime); err != nil {
		return model.Task{}, fmt.Errorf("manual_reminder_time: %w", err)
	}
	return task, nil
}

// formatTime renders t as RFC 3339 with nanoseconds, keeping its offset.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
