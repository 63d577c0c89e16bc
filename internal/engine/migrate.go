package engine

import (
	"context"

	"github.com/haedeune/fivetodo/internal/model"
	"github.com/haedeune/fivetodo/internal/remote"
)

// Migrate uploads every locally created, never-synced task to the remote
// service. It runs once per login/link transition, before the first pull.
//
// The service does not accept status or archive flags at creation, so each
// done or archived task takes a two-step commit: create, then one follow-up
// patch carrying the flags. Per-task failures are logged and skipped;
// migration is best-effort and never aborts on a single failure. Afterwards
// Pull runs unconditionally so the final state reflects the authoritative
// remote record — tasks that failed to migrate drop out of the visible set.
func (e *Engine) Migrate(ctx context.Context) {
	if e.client == nil {
		return
	}

	e.mu.Lock()
	var local []model.Task
	for _, t := range e.tasks {
		if t.SyncState == model.SyncLocal || t.SyncState == model.SyncFailed {
			local = append(local, t)
		}
	}
	e.mu.Unlock()

	for _, t := range local {
		rec, err := e.client.CreateTask(ctx, remote.CreateRequest{
			Title:       t.Title,
			Description: t.Memo,
			DueDate:     remote.FormatDueDate(t.CreatedAt),
		})
		if err != nil {
			e.log.Warn("migrating task failed", "task_id", t.ID, "title", t.Title, "error", err)
			continue
		}

		if t.IsDone || t.Archived {
			patch := remote.TaskPatch{}
			if t.IsDone {
				status := model.StatusCompleted
				patch.Status = &status
			}
			if t.Archived {
				archived := true
				patch.IsArchived = &archived
			}
			if err := e.client.PatchTask(ctx, rec.ID, patch); err != nil {
				e.log.Warn("carrying flags over failed", "task_id", rec.ID, "error", err)
			}
		}

		e.mu.Lock()
		if cur := e.findLocked(t.ID); cur != nil {
			cur.ID = rec.ID
			if canonical, err := remote.ParseDueDate(rec.DueDate); err == nil {
				cur.CreatedAt = canonical.Local()
			}
			cur.SyncState = model.SyncSynced
			e.persistLocked(ctx)
		}
		e.mu.Unlock()
	}

	if err := e.Pull(ctx); err != nil {
		e.log.Warn("post-migration pull failed", "error", err)
	}
}
