package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dayplan/backend/domain"
)

func taskDue(id string, due time.Time, hasTime bool) domain.Task {
	return domain.Task{ID: id, Owner: "alice", Title: id, DueDate: &due, HasDueTime: hasTime}
}

func TestSplitTodayOverdue(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	pastTimed := taskDue("past-timed", now.Add(-2*time.Hour), true)
	pastAllDay := taskDue("past-all-day", now.AddDate(0, 0, -1), false)
	laterToday := taskDue("later-today", now.Add(3*time.Hour), true)
	allDayToday := taskDue("all-day-today", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), false)

	overdue, today := SplitTodayOverdue(
		[]domain.Task{pastAllDay, pastTimed, allDayToday, laterToday}, now)

	// "all-day-today" is due today at midnight, which is already < now by
	// midday, so it counts as overdue like any other past due instant
	assert.Equal(t, []string{"past-all-day", "past-timed", "all-day-today"}, ids(overdue))
	assert.Equal(t, []string{"later-today"}, ids(today))
}

func TestSplitTodayOverdue_AllDayGap(t *testing.T) {
	// an all-day task whose due instant has not yet passed carries no due
	// time, so it lands in neither list
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	allDay := taskDue("all-day", now, false)

	overdue, today := SplitTodayOverdue([]domain.Task{allDay}, now)
	assert.Empty(t, overdue)
	assert.Empty(t, today)
}

func TestSplitTodayOverdue_MinuteBoundary(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	atNow := taskDue("at-now", now, true)

	overdue, today := SplitTodayOverdue([]domain.Task{atNow}, now)
	assert.Empty(t, overdue)
	assert.Equal(t, []string{"at-now"}, ids(today))
}

func TestCountBuckets(t *testing.T) {
	b := Buckets{
		Unscheduled: make([]domain.Task, 3),
		Overdue:     make([]domain.Task, 2),
		Today:       make([]domain.Task, 1),
		Upcoming:    make([]domain.Task, 4),
		Completed:   make([]domain.Task, 9),
	}

	counts := CountBuckets(b)
	assert.Equal(t, 3, counts.Unscheduled)
	assert.Equal(t, 3, counts.Today) // today + overdue
	assert.Equal(t, 4, counts.Upcoming)
}

func ids(tasks []domain.Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
