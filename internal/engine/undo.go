package engine

import (
	"context"
	"sync"
	"time"

	"github.com/haedeune/fivetodo/internal/model"
)

// DefaultUndoWindow is how long a deletion remains reversible.
const DefaultUndoWindow = 3 * time.Second

// pendingDelete is the single undoable action: the removed task, the index
// it came from, and the instant the window closes.
type pendingDelete struct {
	task     model.DeletedTask
	index    int
	deadline time.Time
	timer    *time.Timer
}

// UndoBuffer holds at most one pending deletion. Starting a new deletion
// while one is pending cancels the previous timer and discards it — at most
// one undoable action exists at a time. Expiry takes no further action: the
// task already lives in the deleted collection.
type UndoBuffer struct {
	mu      sync.Mutex
	engine  *Engine
	window  time.Duration
	pending *pendingDelete
}

// NewUndoBuffer creates an UndoBuffer over the engine. A non-positive
// window falls back to DefaultUndoWindow.
func NewUndoBuffer(e *Engine, window time.Duration) *UndoBuffer {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoBuffer{engine: e, window: window}
}

// Begin registers a fresh deletion as the undoable action, replacing any
// pending one.
func (u *UndoBuffer) Begin(task model.DeletedTask, index int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.pending != nil {
		u.pending.timer.Stop()
	}
	p := &pendingDelete{
		task:     task,
		index:    index,
		deadline: time.Now().Add(u.window),
	}
	p.timer = time.AfterFunc(u.window, func() { u.expire(p) })
	u.pending = p
}

// Undo cancels the pending deletion, if any, and reinserts the task at its
// prior position. Returns false when the window already elapsed.
func (u *UndoBuffer) Undo(ctx context.Context) bool {
	u.mu.Lock()
	p := u.pending
	if p == nil {
		u.mu.Unlock()
		return false
	}
	p.timer.Stop()
	u.pending = nil
	u.mu.Unlock()

	u.engine.InsertBack(ctx, p.task, p.index)
	return true
}

// Pending reports the task currently held for undo.
func (u *UndoBuffer) Pending() (model.DeletedTask, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending == nil {
		return model.DeletedTask{}, false
	}
	return u.pending.task, true
}

// Close cancels any outstanding timer. Owners must call it on teardown so
// no stray callback fires after the buffer's context is gone.
func (u *UndoBuffer) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending != nil {
		u.pending.timer.Stop()
		u.pending = nil
	}
}

// expire finalizes a deletion once its window elapses. Only the entry that
// armed this timer is cleared; a newer pending deletion is left alone.
func (u *UndoBuffer) expire(p *pendingDelete) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending == p {
		u.pending = nil
	}
}
