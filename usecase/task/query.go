package task

import (
	"context"
	"time"

	"github.com/dayplan/backend/domain"
)

// Unscheduled returns open tasks without a due date, newest first.
func (uc *UseCase) Unscheduled(ctx context.Context, identity string) ([]domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	return uc.tasks.ListUnscheduled(ctx, identity)
}

// TodayAndOverdue returns open tasks due before the caller's end of local
// day, most overdue first. The boundary is client-computed; a fabricated
// value can only misclassify the caller's own buckets.
func (uc *UseCase) TodayAndOverdue(ctx context.Context, identity string, endOfLocalDay time.Time) ([]domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	if endOfLocalDay.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "end of local day is required")
	}
	return uc.tasks.ListDueBefore(ctx, identity, endOfLocalDay)
}

// Upcoming returns open tasks due at or after the caller's end of local
// day, soonest first.
func (uc *UseCase) Upcoming(ctx context.Context, identity string, endOfLocalDay time.Time) ([]domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	if endOfLocalDay.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "end of local day is required")
	}
	return uc.tasks.ListDueFrom(ctx, identity, endOfLocalDay)
}

// Completed returns up to limit completed tasks, newest-created first.
func (uc *UseCase) Completed(ctx context.Context, identity string, limit int) ([]domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	return uc.tasks.ListCompleted(ctx, identity, limit)
}
