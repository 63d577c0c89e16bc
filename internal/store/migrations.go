package store

// migration is a single versioned schema change. Migrations are applied in
// order; the current version is tracked in schema_version.
type migration struct {
	version int
	sql     string
}

// Version 1 predates the deleted_tasks table; version 3 adds the position a
// deleted task previously held, so undo can reinsert it exactly where it was.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS tasks (
				id         TEXT PRIMARY KEY,
				title      TEXT NOT NULL,
				memo       TEXT NOT NULL DEFAULT '',
				is_done    INTEGER NOT NULL DEFAULT 0,
				archived   INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				owner_tag  TEXT NOT NULL DEFAULT '',
				sync_state TEXT NOT NULL DEFAULT 'local',
				position   INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
	{
		version: 2,
		sql: `
			CREATE TABLE IF NOT EXISTS deleted_tasks (
				id         TEXT PRIMARY KEY,
				title      TEXT NOT NULL,
				memo       TEXT NOT NULL DEFAULT '',
				is_done    INTEGER NOT NULL DEFAULT 0,
				archived   INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				owner_tag  TEXT NOT NULL DEFAULT '',
				sync_state TEXT NOT NULL DEFAULT 'local',
				position   INTEGER NOT NULL DEFAULT 0,
				deleted_at TIMESTAMP NOT NULL
			);

			INSERT INTO schema_version (version) VALUES (2);
		`,
	},
	{
		version: 3,
		sql: `
			ALTER TABLE deleted_tasks ADD COLUMN prior_position INTEGER NOT NULL DEFAULT 0;

			INSERT INTO schema_version (version) VALUES (3);
		`,
	},
}
