package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// Timestamps are stored as RFC 3339 text so every record round-trips
// exactly and a malformed value only affects its own row.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id                   TEXT PRIMARY KEY,
	position             INTEGER NOT NULL,
	title                TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	due_date             TEXT NOT NULL,
	priority             TEXT NOT NULL DEFAULT 'Medium',
	category             TEXT NOT NULL DEFAULT 'General',
	status               TEXT NOT NULL DEFAULT 'pending',
	created_at           TEXT NOT NULL,
	completed_at         TEXT,
	reminders_sent       INTEGER NOT NULL DEFAULT 0,
	last_reminder_sent   TEXT,
	manual_reminder_time TEXT,
	manual_reminder_sent INTEGER NOT NULL DEFAULT 0 CHECK(manual_reminder_sent IN (0, 1))
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	task_title TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL CHECK(kind IN ('auto', 'manual')),
	message    TEXT NOT NULL,
	due_at     TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notifications_task_id
	ON notifications(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
UPDATE notifications SET
	created_at = COALESCE(strftime('%Y-%m-%dT%H:%M:%f000000Z', created_at), created_at),
	due_at     = COALESCE(strftime('%Y-%m-%dT%H:%M:%f000000Z', due_at), due_at);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
