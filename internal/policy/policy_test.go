package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haedeune/fivetodo/internal/model"
)

func TestCanCreate(t *testing.T) {
	for count := 0; count < MaxDailyTasks; count++ {
		ok, reason := CanCreate(count)
		require.True(t, ok, "count %d should be allowed", count)
		require.Empty(t, reason)
	}

	ok, reason := CanCreate(MaxDailyTasks)
	require.False(t, ok)
	require.Equal(t, ReasonQuotaExceeded, reason)

	ok, _ = CanCreate(MaxDailyTasks + 3)
	require.False(t, ok)
}

func TestSameDay(t *testing.T) {
	base := time.Date(2026, 2, 20, 9, 30, 0, 0, time.Local)

	require.True(t, SameDay(base, base))
	require.True(t, SameDay(base, time.Date(2026, 2, 20, 23, 59, 0, 0, time.Local)))
	require.True(t, SameDay(base, time.Date(2026, 2, 20, 0, 0, 0, 0, time.Local)))
	require.False(t, SameDay(base, base.AddDate(0, 0, 1)))
	require.False(t, SameDay(base, base.AddDate(0, 0, -1)))
	require.False(t, SameDay(base, base.AddDate(1, 0, 0)))
}

func TestIsPastDay(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 30, 0, 0, time.Local)

	// Same calendar day is never past, regardless of wall-clock distance.
	require.False(t, IsPastDay(time.Date(2026, 2, 20, 0, 0, 1, 0, time.Local), now))
	require.False(t, IsPastDay(now, now))

	// Late last night is past even though less than 24h elapsed.
	require.True(t, IsPastDay(time.Date(2026, 2, 19, 23, 59, 0, 0, time.Local), now))
	require.True(t, IsPastDay(now.AddDate(0, 0, -7), now))

	require.False(t, IsPastDay(now.AddDate(0, 0, 1), now))
}

func TestCanEdit(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 30, 0, 0, time.Local)

	today := model.Task{CreatedAt: time.Date(2026, 2, 20, 8, 0, 0, 0, time.Local)}
	yesterday := model.Task{CreatedAt: time.Date(2026, 2, 19, 8, 0, 0, 0, time.Local)}

	require.True(t, CanEdit(today, now))
	require.False(t, CanEdit(yesterday, now))
}

func TestDayKey(t *testing.T) {
	require.Equal(t, "2026-02-05",
		DayKey(time.Date(2026, 2, 5, 23, 10, 0, 0, time.Local)))
}
