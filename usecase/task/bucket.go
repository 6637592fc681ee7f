package task

import (
	"time"

	"github.com/dayplan/backend/domain"
)

// Buckets is a pre-partitioned view of one user's tasks.
type Buckets struct {
	Unscheduled []domain.Task `json:"unscheduled"`
	Overdue     []domain.Task `json:"overdue"`
	Today       []domain.Task `json:"today"`
	Upcoming    []domain.Task `json:"upcoming"`
	Completed   []domain.Task `json:"completed"`
}

// Counts are the badge numbers shown next to each view.
type Counts struct {
	Unscheduled int `json:"unscheduled"`
	Today       int `json:"today"`
	Upcoming    int `json:"upcoming"`
}

// SplitTodayOverdue partitions the today-and-overdue query result by a
// minute-granularity clock value. A task with a due time is "today" until
// its due instant passes, then overdue; a task without a due time only
// becomes overdue once its calendar day has passed.
//
// TODO: an all-day task due today sits in neither list until the next
// calendar day; decide whether such tasks belong in Today.
func SplitTodayOverdue(tasks []domain.Task, nowMinute time.Time) (overdue, today []domain.Task) {
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		switch {
		case t.DueDate.Before(nowMinute):
			overdue = append(overdue, t)
		case t.HasDueTime:
			today = append(today, t)
		}
	}
	return overdue, today
}

// CountBuckets derives the badge counts; the today badge covers both the
// today and overdue lists.
func CountBuckets(b Buckets) Counts {
	return Counts{
		Unscheduled: len(b.Unscheduled),
		Today:       len(b.Today) + len(b.Overdue),
		Upcoming:    len(b.Upcoming),
	}
}
