package engine

import (
	"context"

	"github.com/haedeune/fivetodo/internal/model"
	"github.com/haedeune/fivetodo/internal/remote"
)

// Pull fetches the full remote task set — the active/pending partition and
// the archived partition — and replaces the local active collection with
// it. Remote state wins wholesale; there is no merge. On failure the local
// state is left as-is (stale) rather than cleared, so a transient network
// error mid-session never costs data.
func (e *Engine) Pull(ctx context.Context) error {
	if e.client == nil {
		return nil
	}

	active, err := e.client.ListTasks(ctx)
	if err != nil {
		e.log.Warn("pull failed", "partition", "active", "error", err)
		return err
	}
	archived, err := e.client.ListArchive(ctx)
	if err != nil {
		e.log.Warn("pull failed", "partition", "archive", "error", err)
		return err
	}

	tasks := make([]model.Task, 0, len(active)+len(archived))
	for _, rec := range active {
		tasks = append(tasks, e.taskFromRecord(rec, false))
	}
	for _, rec := range archived {
		tasks = append(tasks, e.taskFromRecord(rec, true))
	}

	e.mu.Lock()
	e.tasks = tasks
	e.persistLocked(ctx)
	e.mu.Unlock()
	return nil
}

// Clear wipes both collections. Invoked on credential loss: the engine is
// not a durable offline store for authenticated sessions.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.tasks = nil
	e.deleted = nil
	e.persistLocked(ctx)
	e.mu.Unlock()
}

// taskFromRecord normalizes a remote record into a Task. The archive
// partition implies archived regardless of the record's own flag.
func (e *Engine) taskFromRecord(rec remote.TaskRecord, fromArchive bool) model.Task {
	createdAt, err := remote.ParseDueDate(rec.DueDate)
	if err != nil {
		e.log.Warn("remote record has unparseable due_date", "task_id", rec.ID, "error", err)
		createdAt = e.now()
	}
	return model.Task{
		ID:        rec.ID,
		Title:     rec.Title,
		Memo:      rec.Description,
		IsDone:    rec.Status == model.StatusCompleted,
		Archived:  rec.IsArchived || fromArchive,
		CreatedAt: createdAt.Local(),
		OwnerTag:  e.ownerTag,
		SyncState: model.SyncSynced,
	}
}
