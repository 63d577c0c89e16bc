// Package policy holds the pure business rules of the tracker: the daily
// creation quota and the date lock on past entries. Nothing here touches
// stores, clocks, or the network; callers supply "now".
package policy

import (
	"time"

	"github.com/haedeune/fivetodo/internal/model"
)

// MaxDailyTasks is the quota of active tasks per calendar day.
const MaxDailyTasks = 5

// ReasonQuotaExceeded is the user-facing rejection for a full day.
const ReasonQuotaExceeded = "오늘 할 일은 최대 5개까지 가능합니다."

// CanCreate decides whether a new active task may be created today, given
// the count of active tasks already owned by today. Rejection is a normal
// outcome, reported with a user-facing reason.
func CanCreate(activeTodayCount int) (bool, string) {
	if activeTodayCount >= MaxDailyTasks {
		return false, ReasonQuotaExceeded
	}
	return true, ""
}

// SameDay reports whether a and b fall on the same calendar day in the
// local time zone. Comparison is by year/month/day triple, not elapsed time.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// IsPastDay reports whether t falls on a calendar day strictly before now's
// day, in the local time zone.
func IsPastDay(t, now time.Time) bool {
	ny, nm, nd := now.Local().Date()
	startOfToday := time.Date(ny, nm, nd, 0, 0, 0, 0, time.Local)
	return t.Local().Before(startOfToday)
}

// CanEdit reports whether a task's content (title, memo) may still be
// changed: only tasks owned by the current day are editable. Toggling,
// archiving, deleting and restoring are not subject to the date lock.
func CanEdit(t model.Task, now time.Time) bool {
	return !IsPastDay(t.CreatedAt, now)
}

// DayKey renders t's owning calendar day as "YYYY-MM-DD" in local time.
// Used for quota counting and calendar grouping.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
