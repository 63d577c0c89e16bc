package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haedeune/fivetodo/internal/model"
)

func newTestStore(t *testing.T, profile Profile) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", profile)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t, ProfileAccount)
	ctx := context.Background()

	createdAt := time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		{
			ID: "a", Title: "first", Memo: "with a memo",
			CreatedAt: createdAt, OwnerTag: "guest", SyncState: model.SyncSynced,
		},
		{
			ID: "b", Title: "second", IsDone: true,
			CreatedAt: createdAt.Add(time.Hour), OwnerTag: "guest",
			SyncState: model.SyncLocal,
		},
		{
			ID: "c", Title: "third", Archived: true,
			CreatedAt: createdAt.Add(2 * time.Hour), OwnerTag: "guest",
			SyncState: model.SyncFailed,
		},
	}
	deleted := []model.DeletedTask{
		{
			Task: model.Task{
				ID: "d", Title: "gone", CreatedAt: createdAt,
				OwnerTag: "guest", SyncState: model.SyncLocal,
			},
			DeletedAt:  createdAt.Add(3 * time.Hour),
			PriorIndex: 2,
		},
	}

	require.NoError(t, s.SaveSnapshot(ctx, tasks, deleted))

	gotTasks, gotDeleted, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, gotTasks, 3)
	require.Len(t, gotDeleted, 1)

	for i, want := range tasks {
		got := gotTasks[i]
		require.Equal(t, want.ID, got.ID)
		require.Equal(t, want.Title, got.Title)
		require.Equal(t, want.Memo, got.Memo)
		require.Equal(t, want.IsDone, got.IsDone)
		require.Equal(t, want.Archived, got.Archived)
		require.Equal(t, want.OwnerTag, got.OwnerTag)
		require.Equal(t, want.SyncState, got.SyncState)
		require.True(t, got.CreatedAt.Equal(want.CreatedAt),
			"task %s created_at drifted: %v != %v", want.ID, got.CreatedAt, want.CreatedAt)
	}

	require.Equal(t, "d", gotDeleted[0].ID)
	require.Equal(t, 2, gotDeleted[0].PriorIndex)
	require.True(t, gotDeleted[0].DeletedAt.Equal(deleted[0].DeletedAt))
}

func TestSnapshotPreservesOrder(t *testing.T) {
	s := newTestStore(t, ProfileAccount)
	ctx := context.Background()

	// Insert in non-alphabetical order; position, not id, controls reload order.
	tasks := []model.Task{
		{ID: "z", Title: "newest", CreatedAt: time.Now(), SyncState: model.SyncLocal},
		{ID: "a", Title: "older", CreatedAt: time.Now(), SyncState: model.SyncLocal},
		{ID: "m", Title: "oldest", CreatedAt: time.Now(), SyncState: model.SyncLocal},
	}
	require.NoError(t, s.SaveSnapshot(ctx, tasks, nil))

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "m"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	s := newTestStore(t, ProfileAccount)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, []model.Task{
		{ID: "old", Title: "stale", CreatedAt: time.Now(), SyncState: model.SyncLocal},
	}, nil))
	require.NoError(t, s.SaveSnapshot(ctx, []model.Task{
		{ID: "new", Title: "fresh", CreatedAt: time.Now(), SyncState: model.SyncLocal},
	}, nil))

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].ID)
}

func TestGuestProfileMergesSeed(t *testing.T) {
	s := newTestStore(t, ProfileGuest)
	ctx := context.Background()

	// Fresh guest store: the demo seed is the whole state.
	tasks, deleted, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, len(seedTasks()), len(tasks))
	require.Equal(t, len(seedDeletedTasks()), len(deleted))

	// A persisted row with a seed ID wins over the seed entry.
	edited := seedTasks()[0]
	edited.Title = "edited by the user"
	require.NoError(t, s.SaveSnapshot(ctx, []model.Task{edited}, nil))

	tasks, _, err = s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, len(seedTasks()), len(tasks))
	require.Equal(t, "edited by the user", tasks[0].Title)

	seen := map[string]int{}
	for _, task := range tasks {
		seen[task.ID]++
	}
	for id, n := range seen {
		require.Equal(t, 1, n, "duplicate id %s after merge", id)
	}
}

func TestAccountProfileSkipsSeed(t *testing.T) {
	s := newTestStore(t, ProfileAccount)

	tasks, deleted, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, tasks)
	require.Empty(t, deleted)
}
