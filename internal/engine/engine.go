// Package engine owns the in-process task collections and every mutation
// against them. Operations validate first, mutate local state optimistically,
// and then issue a best-effort call to the remote task service when a
// credential is present. Except for creation, a remote failure is logged and
// swallowed: local state has already advanced and stays advanced until the
// next successful pull.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/haedeune/fivetodo/internal/model"
	"github.com/haedeune/fivetodo/internal/policy"
	"github.com/haedeune/fivetodo/internal/remote"
)

// Content limits, enforced at creation and edit.
const (
	MaxTitleLen = 40
	MaxMemoLen  = 500
)

// User-facing validation reasons.
const (
	ReasonEmptyTitle   = "할 일 제목을 입력해주세요."
	ReasonTitleTooLong = "제목은 40자 이내로 입력해주세요."
	ReasonMemoTooLong  = "메모는 500자 이내로 입력해주세요."
	ReasonInvalidDate  = "등록 날짜가 올바르지 않아요."
	ReasonPastDate     = "과거 날짜의 할 일은 등록할 수 없어요."
	ReasonFutureDate   = "미래 날짜의 할 일은 등록할 수 없어요."
	ReasonRemoteCreate = "서버에 할 일을 저장하지 못했어요."
)

// Snapshotter persists the engine's collections across restarts.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, tasks []model.Task, deleted []model.DeletedTask) error
	LoadSnapshot(ctx context.Context) ([]model.Task, []model.DeletedTask, error)
}

// Clock supplies "now"; tests substitute a fixed instant to control the
// quota day and the date lock.
type Clock func() time.Time

// Config wires an Engine's collaborators.
type Config struct {
	// Client talks to the remote task service. Nil disables all remote
	// calls regardless of credential state.
	Client *remote.Client
	// Tokens reports whether a bearer credential is present.
	Tokens remote.TokenSource
	// Store persists snapshots. Nil keeps state in memory only.
	Store Snapshotter
	// OwnerTag is attached to locally created tasks.
	OwnerTag string
	Logger   *slog.Logger
	Clock    Clock
}

// Engine is the task lifecycle and synchronization engine. All collection
// access goes through its methods; the mutex keeps UI callbacks, the undo
// timer, and remote acknowledgments from racing.
type Engine struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	tasks   []model.Task
	deleted []model.DeletedTask

	client   *remote.Client
	tokens   remote.TokenSource
	store    Snapshotter
	ownerTag string
	log      *slog.Logger
	now      Clock
}

// New creates an Engine. Collections start empty; call Load to restore a
// persisted snapshot.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = remote.StaticToken("")
	}
	return &Engine{
		client:   cfg.Client,
		tokens:   tokens,
		store:    cfg.Store,
		ownerTag: cfg.OwnerTag,
		log:      logger,
		now:      clock,
	}
}

// Load restores both collections from the persisted snapshot.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	tasks, deleted, err := e.store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.tasks = tasks
	e.deleted = deleted
	e.mu.Unlock()
	return nil
}

// Create validates and registers a new task for today. createdAtOverride is
// an optional RFC 3339 instant; empty means "now". The new task is prepended
// locally before any network traffic. When a credential is present the
// remote create is issued synchronously and its failure is surfaced in the
// result — the caller needs to know whether the task truly exists for quota
// purposes — but the local task is kept either way, tagged sync_failed.
func (e *Engine) Create(ctx context.Context, title, memo, createdAtOverride string) model.Result {
	now := e.now()

	e.mu.Lock()
	activeToday := 0
	for _, t := range e.tasks {
		if !t.Archived && policy.SameDay(t.CreatedAt, now) {
			activeToday++
		}
	}
	if ok, reason := policy.CanCreate(activeToday); !ok {
		e.mu.Unlock()
		return model.Fail(reason)
	}

	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		e.mu.Unlock()
		return model.Fail(ReasonEmptyTitle)
	}
	if utf8.RuneCountInString(cleanTitle) > MaxTitleLen {
		e.mu.Unlock()
		return model.Fail(ReasonTitleTooLong)
	}
	cleanMemo := strings.TrimSpace(memo)
	if utf8.RuneCountInString(cleanMemo) > MaxMemoLen {
		e.mu.Unlock()
		return model.Fail(ReasonMemoTooLong)
	}

	createdAt := now
	if createdAtOverride != "" {
		parsed, err := time.Parse(time.RFC3339, createdAtOverride)
		if err != nil {
			e.mu.Unlock()
			return model.Fail(ReasonInvalidDate)
		}
		createdAt = parsed
	}
	if policy.IsPastDay(createdAt, now) {
		e.mu.Unlock()
		return model.Fail(ReasonPastDate)
	}
	if !policy.SameDay(createdAt, now) {
		e.mu.Unlock()
		return model.Fail(ReasonFutureDate)
	}

	task := model.Task{
		ID:        uuid.NewString(),
		Title:     cleanTitle,
		Memo:      cleanMemo,
		CreatedAt: createdAt,
		OwnerTag:  e.ownerTag,
		SyncState: model.SyncLocal,
	}

	authed := e.authenticated()
	if authed {
		task.SyncState = model.SyncSyncing
	}
	e.tasks = append([]model.Task{task}, e.tasks...)
	e.persistLocked(ctx)
	e.mu.Unlock()

	if !authed {
		return model.Ok(&task)
	}

	rec, err := e.client.CreateTask(ctx, remote.CreateRequest{
		Title:       task.Title,
		Description: task.Memo,
		DueDate:     remote.FormatDueDate(task.CreatedAt),
	})
	if err != nil {
		e.log.Warn("remote create failed", "task_id", task.ID, "error", err)
		e.mu.Lock()
		if t := e.findLocked(task.ID); t != nil && t.SyncState == model.SyncSyncing {
			t.SyncState = model.SyncFailed
			e.persistLocked(ctx)
		}
		e.mu.Unlock()
		return model.Fail(ReasonRemoteCreate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.findLocked(task.ID)
	if t == nil || t.SyncState != model.SyncSyncing {
		// The task was removed or re-mutated while the create call was in
		// flight; a stale acknowledgment must not resurrect old state.
		e.log.Debug("discarding stale create acknowledgment", "task_id", task.ID)
		return model.Ok(&task)
	}
	t.ID = rec.ID
	if canonical, err := remote.ParseDueDate(rec.DueDate); err == nil {
		t.CreatedAt = canonical.Local()
	}
	t.SyncState = model.SyncSynced
	e.persistLocked(ctx)
	synced := *t
	return model.Ok(&synced)
}

// ToggleDone flips a task's completion flag. Unknown identifiers are a
// silent no-op: the UI routinely fires callbacks against already-removed
// tasks.
func (e *Engine) ToggleDone(ctx context.Context, id string) {
	e.mu.Lock()
	t := e.findLocked(id)
	if t == nil {
		e.mu.Unlock()
		return
	}
	t.IsDone = !t.IsDone
	status := model.StatusPending
	if t.IsDone {
		status = model.StatusCompleted
	}
	fireRemote := e.authenticated() && t.Remote()
	remoteID := t.ID
	e.persistLocked(ctx)
	e.mu.Unlock()

	if fireRemote {
		e.dispatch(func() {
			e.bestEffortPatch(remoteID, remote.TaskPatch{Status: &status})
		})
	}
}

// UpdatePatch selects which content fields an Update call changes.
type UpdatePatch struct {
	Title *string
	Memo  *string
}

// Update edits a task's content. The date lock is deliberately not
// re-checked here: callers are expected to consult policy.CanEdit first,
// keeping the store a plain data mutator. Length invariants still apply.
func (e *Engine) Update(ctx context.Context, id string, patch UpdatePatch) model.Result {
	var cleanTitle, cleanMemo string
	if patch.Title != nil {
		cleanTitle = strings.TrimSpace(*patch.Title)
		if cleanTitle == "" {
			return model.Fail(ReasonEmptyTitle)
		}
		if utf8.RuneCountInString(cleanTitle) > MaxTitleLen {
			return model.Fail(ReasonTitleTooLong)
		}
	}
	if patch.Memo != nil {
		cleanMemo = strings.TrimSpace(*patch.Memo)
		if utf8.RuneCountInString(cleanMemo) > MaxMemoLen {
			return model.Fail(ReasonMemoTooLong)
		}
	}

	e.mu.Lock()
	t := e.findLocked(id)
	if t == nil {
		e.mu.Unlock()
		return model.Result{OK: true}
	}
	var rp remote.TaskPatch
	if patch.Title != nil {
		t.Title = cleanTitle
		rp.Title = &cleanTitle
	}
	if patch.Memo != nil {
		t.Memo = cleanMemo
		rp.Description = &cleanMemo
	}
	// An empty patch changed nothing; a PATCH {} would be a pointless call.
	fireRemote := (rp.Title != nil || rp.Description != nil) &&
		e.authenticated() && t.Remote()
	remoteID := t.ID
	updated := *t
	e.persistLocked(ctx)
	e.mu.Unlock()

	if fireRemote {
		e.dispatch(func() { e.bestEffortPatch(remoteID, rp) })
	}
	return model.Ok(&updated)
}

// Archive moves a task to the archive. Archiving a completed task is a
// no-op; done and archived never combine through this operation.
func (e *Engine) Archive(ctx context.Context, id string) {
	e.mu.Lock()
	t := e.findLocked(id)
	if t == nil || t.IsDone || t.Archived {
		e.mu.Unlock()
		return
	}
	t.Archived = true
	fireRemote := e.authenticated() && t.Remote()
	remoteID := t.ID
	e.persistLocked(ctx)
	e.mu.Unlock()

	if fireRemote {
		archived := true
		e.dispatch(func() {
			e.bestEffortPatch(remoteID, remote.TaskPatch{IsArchived: &archived})
		})
	}
}

// Remove moves a task to the deleted collection, stamping deleted_at, and
// returns the removed entry with its prior index so the caller can drive
// the undo buffer. The remote delete fires only for synced tasks.
func (e *Engine) Remove(ctx context.Context, id string) (model.DeletedTask, int, bool) {
	e.mu.Lock()
	index := -1
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		e.mu.Unlock()
		return model.DeletedTask{}, 0, false
	}

	removed := model.DeletedTask{
		Task:       e.tasks[index],
		DeletedAt:  e.now(),
		PriorIndex: index,
	}
	e.tasks = append(e.tasks[:index], e.tasks[index+1:]...)
	e.deleted = append([]model.DeletedTask{removed}, e.deleted...)
	fireRemote := e.authenticated() && removed.Remote()
	e.persistLocked(ctx)
	e.mu.Unlock()

	if fireRemote {
		e.dispatch(func() {
			if err := e.client.DeleteTask(context.Background(), removed.ID); err != nil {
				e.log.Warn("remote delete failed", "task_id", removed.ID, "error", err)
			}
		})
	}
	return removed, index, true
}

// InsertBack re-admits a removed task at the given position (clamped to
// bounds) and drops the matching entry from the deleted collection. Used
// exclusively by undo; the remote delete already committed or was never
// applicable, so no remote call is made.
func (e *Engine) InsertBack(ctx context.Context, removed model.DeletedTask, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 {
		index = 0
	}
	if index > len(e.tasks) {
		index = len(e.tasks)
	}
	e.tasks = append(e.tasks[:index], append([]model.Task{removed.Task}, e.tasks[index:]...)...)

	kept := e.deleted[:0]
	for _, d := range e.deleted {
		if d.ID != removed.ID {
			kept = append(kept, d)
		}
	}
	e.deleted = kept
	e.persistLocked(ctx)
}

// Restore re-admits an archived task to the active lifecycle as a fresh
// "today" entry: archived and done are cleared and created_at is stamped
// with the current instant. Non-archived tasks are untouched.
func (e *Engine) Restore(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.findLocked(id)
	if t == nil || !t.Archived {
		return
	}
	t.Archived = false
	t.IsDone = false
	t.CreatedAt = e.now()
	e.persistLocked(ctx)
}

// Tasks returns a copy of the active collection, most recent first.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// Deleted returns a copy of the deleted collection, most recent first.
func (e *Engine) Deleted() []model.DeletedTask {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.DeletedTask, len(e.deleted))
	copy(out, e.deleted)
	return out
}

// ActiveToday returns the unarchived tasks owned by the current calendar
// day — the set counted against the quota.
func (e *Engine) ActiveToday() []model.Task {
	now := e.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.tasks {
		if !t.Archived && policy.SameDay(t.CreatedAt, now) {
			out = append(out, t)
		}
	}
	return out
}

// ArchivedTasks returns every archived task.
func (e *Engine) ArchivedTasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.tasks {
		if t.Archived {
			out = append(out, t)
		}
	}
	return out
}

// TasksOn returns the unarchived tasks owned by day's calendar date,
// for the calendar history view.
func (e *Engine) TasksOn(day time.Time) []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.tasks {
		if !t.Archived && policy.SameDay(t.CreatedAt, day) {
			out = append(out, t)
		}
	}
	return out
}

// DoneCountOn returns how many tasks owned by day's date are completed
// (0 through 5) — the calendar sticker level.
func (e *Engine) DoneCountOn(day time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, t := range e.tasks {
		if !t.Archived && t.IsDone && policy.SameDay(t.CreatedAt, day) {
			count++
		}
	}
	return count
}

func (e *Engine) authenticated() bool {
	if e.client == nil {
		return false
	}
	_, ok := e.tokens.Token()
	return ok
}

// findLocked returns a pointer into the active collection. Caller holds mu.
func (e *Engine) findLocked(id string) *model.Task {
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			return &e.tasks[i]
		}
	}
	return nil
}

// persistLocked writes the current snapshot best-effort. Caller holds mu.
// Persistence failure never unwinds a mutation that already happened.
func (e *Engine) persistLocked(ctx context.Context) {
	if e.store == nil {
		return
	}
	tasks := make([]model.Task, len(e.tasks))
	copy(tasks, e.tasks)
	deleted := make([]model.DeletedTask, len(e.deleted))
	copy(deleted, e.deleted)
	if err := e.store.SaveSnapshot(ctx, tasks, deleted); err != nil {
		e.log.Error("persisting snapshot failed", "error", err)
	}
}

// dispatch runs a best-effort remote call on its own goroutine, tracked so
// Wait can drain it.
func (e *Engine) dispatch(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// Wait blocks until every in-flight best-effort remote call has resolved.
// One-shot callers must drain before exiting or the calls die with the
// process, unsent and unlogged.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) bestEffortPatch(id string, patch remote.TaskPatch) {
	if err := e.client.PatchTask(context.Background(), id, patch); err != nil {
		e.log.Warn("remote patch failed", "task_id", id, "error", err)
	}
}

