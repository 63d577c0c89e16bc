// Package store persists the engine's two collections — active tasks and
// deleted tasks — across restarts. The engine owns ordering and business
// rules; the store is a dumb snapshot of both slices, positions included.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/haedeune/fivetodo/internal/model"
)

// Profile selects how a snapshot is loaded.
type Profile string

const (
	// ProfileGuest merges the demo seed into the loaded snapshot by ID:
	// seed entries whose ID is not already present are appended.
	ProfileGuest Profile = "guest"
	// ProfileAccount loads the snapshot as-is; authenticated state is
	// replaced wholesale by reconciliation, never seeded.
	ProfileAccount Profile = "account"
)

// SQLiteStore implements snapshot persistence on a local SQLite database.
type SQLiteStore struct {
	db      *sqlx.DB
	profile Profile
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables
// WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, profile Profile) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, profile: profile}
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

// SaveSnapshot replaces both persisted collections with the given state.
// Positions record slice order so a reload reproduces it exactly.
func (s *SQLiteStore) SaveSnapshot(
	ctx context.Context,
	tasks []model.Task,
	deleted []model.DeletedTask,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM deleted_tasks"); err != nil {
		return fmt.Errorf("clearing deleted tasks: %w", err)
	}

	for i, t := range tasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, title, memo, is_done, archived,
				created_at, owner_tag, sync_state, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Memo, boolToInt(t.IsDone), boolToInt(t.Archived),
			t.CreatedAt.UTC(), t.OwnerTag, string(t.SyncState), i,
		)
		if err != nil {
			return fmt.Errorf("saving task %s: %w", t.ID, err)
		}
	}

	for i, d := range deleted {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deleted_tasks (
				id, title, memo, is_done, archived,
				created_at, owner_tag, sync_state, position, deleted_at,
				prior_position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Title, d.Memo, boolToInt(d.IsDone), boolToInt(d.Archived),
			d.CreatedAt.UTC(), d.OwnerTag, string(d.SyncState), i, d.DeletedAt.UTC(),
			d.PriorIndex,
		)
		if err != nil {
			return fmt.Errorf("saving deleted task %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads both collections in persisted order. Under the guest
// profile the demo seed is merged in by ID afterwards.
func (s *SQLiteStore) LoadSnapshot(
	ctx context.Context,
) ([]model.Task, []model.DeletedTask, error) {
	tasks, err := s.loadTasks(ctx)
	if err != nil {
		return nil, nil, err
	}
	deleted, err := s.loadDeleted(ctx)
	if err != nil {
		return nil, nil, err
	}

	if s.profile == ProfileGuest {
		tasks = mergeSeedTasks(tasks, seedTasks())
		deleted = mergeSeedDeleted(deleted, seedDeletedTasks())
	}

	return tasks, deleted, nil
}

func (s *SQLiteStore) loadTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM tasks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) loadDeleted(ctx context.Context) ([]model.DeletedTask, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM deleted_tasks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying deleted tasks: %w", err)
	}
	defer rows.Close()

	var deleted []model.DeletedTask
	for rows.Next() {
		d, err := scanDeletedTask(rows)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, d)
	}
	return deleted, rows.Err()
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	var (
		t         model.Task
		isDone    int
		archived  int
		createdAt time.Time
		syncState string
		position  int
	)

	err := rows.Scan(
		&t.ID, &t.Title, &t.Memo, &isDone, &archived,
		&createdAt, &t.OwnerTag, &syncState, &position,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	t.IsDone = isDone != 0
	t.Archived = archived != 0
	t.CreatedAt = createdAt
	t.SyncState = model.SyncState(syncState)

	return t, nil
}

// scanDeletedTask scans a deleted_task row from a sqlx.Rows result set.
func scanDeletedTask(rows *sqlx.Rows) (model.DeletedTask, error) {
	var (
		d          model.DeletedTask
		isDone     int
		archived   int
		createdAt  time.Time
		syncState  string
		position   int
		deletedAt  time.Time
		priorIndex int
	)

	// prior_position scans last: ALTER TABLE appends it after deleted_at.
	err := rows.Scan(
		&d.ID, &d.Title, &d.Memo, &isDone, &archived,
		&createdAt, &d.OwnerTag, &syncState, &position, &deletedAt,
		&priorIndex,
	)
	if err != nil {
		return model.DeletedTask{}, fmt.Errorf("scanning deleted task row: %w", err)
	}

	d.IsDone = isDone != 0
	d.Archived = archived != 0
	d.CreatedAt = createdAt
	d.SyncState = model.SyncState(syncState)
	d.DeletedAt = deletedAt
	d.PriorIndex = priorIndex

	return d, nil
}

// mergeSeedTasks appends seed entries whose ID is not already present.
func mergeSeedTasks(items, seeds []model.Task) []model.Task {
	existing := make(map[string]bool, len(items))
	for _, item := range items {
		existing[item.ID] = true
	}
	for _, seed := range seeds {
		if !existing[seed.ID] {
			items = append(items, seed)
		}
	}
	return items
}

// mergeSeedDeleted appends seed entries whose ID is not already present.
func mergeSeedDeleted(items, seeds []model.DeletedTask) []model.DeletedTask {
	existing := make(map[string]bool, len(items))
	for _, item := range items {
		existing[item.ID] = true
	}
	for _, seed := range seeds {
		if !existing[seed.ID] {
			items = append(items, seed)
		}
	}
	return items
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
