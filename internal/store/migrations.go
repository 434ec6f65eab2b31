package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'info',
	read       INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	seq        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS dedup_markers (
	task_id    INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_seq ON notifications(seq);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
