package model

import "time"

// SyncState describes where a task stands relative to the remote service.
// It is a first-class field set at creation and updated on sync transitions,
// never inferred from the shape of the identifier.
type SyncState string

const (
	// SyncLocal marks a task created locally and never uploaded.
	SyncLocal SyncState = "local"
	// SyncSyncing marks a task whose remote create call is in flight.
	SyncSyncing SyncState = "syncing"
	// SyncSynced marks a task that carries a remote-assigned identifier.
	SyncSynced SyncState = "synced"
	// SyncFailed marks a task whose upload was attempted and rejected.
	SyncFailed SyncState = "sync_failed"
)

// Remote task status values used by the task service.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Task is a single to-do entry. CreatedAt anchors the task to its owning
// calendar day in the viewer's local time zone; it is mutated only by the
// restore operation.
type Task struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Memo      string    `json:"memo" db:"memo"`
	IsDone    bool      `json:"is_done" db:"is_done"`
	Archived  bool      `json:"archived" db:"archived"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	OwnerTag  string    `json:"owner_tag,omitempty" db:"owner_tag"`
	SyncState SyncState `json:"sync_state" db:"sync_state"`
}

// Remote reports whether the task carries a remote-assigned identifier,
// i.e. whether update/delete calls against the service are meaningful.
func (t Task) Remote() bool {
	return t.SyncState == SyncSynced
}

// DeletedTask is a task that was removed from the active collection.
// It is produced exactly once, by the remove operation. PriorIndex records
// where the task sat in the active collection, so undo can put it back in
// the exact spot it came from.
type DeletedTask struct {
	Task
	DeletedAt  time.Time `json:"deleted_at" db:"deleted_at"`
	PriorIndex int       `json:"prior_index" db:"prior_position"`
}

// Result reports the outcome of a validated mutation. A false OK with a
// Reason is a normal domain outcome (quota reached, bad input), not a fault.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Task   *Task  `json:"task,omitempty"`
}

// Ok returns a successful result carrying the affected task.
func Ok(t *Task) Result {
	return Result{OK: true, Task: t}
}

// Fail returns a rejected result with a user-facing reason.
func Fail(reason string) Result {
	return Result{OK: false, Reason: reason}
}
