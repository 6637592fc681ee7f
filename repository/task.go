package repository

import (
	"context"
	"time"

	"github.com/dayplan/backend/domain"
)

// TaskRepository is the owner-scoped task store. Listing methods answer the
// four bucket queries directly so drivers can serve them from an index keyed
// on (owner, is_completed, due_date).
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ListUnscheduled returns open tasks without a due date, newest first.
	ListUnscheduled(ctx context.Context, owner string) ([]domain.Task, error)
	// ListDueBefore returns open tasks with due_date < before, ascending.
	ListDueBefore(ctx context.Context, owner string, before time.Time) ([]domain.Task, error)
	// ListDueFrom returns open tasks with due_date >= from, ascending.
	ListDueFrom(ctx context.Context, owner string, from time.Time) ([]domain.Task, error)
	// ListCompleted returns completed tasks, newest-created first, capped.
	ListCompleted(ctx context.Context, owner string, limit int) ([]domain.Task, error)

	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update replaces the mutable fields, leaving completion state alone.
	Update(ctx context.Context, task *domain.Task) error
	// SetCompletion toggles is_completed and completed_at in one write.
	SetCompletion(ctx context.Context, id string, completed bool, completedAt *time.Time) error
	// SetDue reschedules the task in one write.
	SetDue(ctx context.Context, id string, due time.Time, hasDueTime bool) error
	Delete(ctx context.Context, id string) error
}

// MaxCompletedLimit bounds the completed-bucket result size.
const MaxCompletedLimit = 100

// ClampLimit normalizes a caller-supplied limit into (0, MaxCompletedLimit].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxCompletedLimit {
		return MaxCompletedLimit
	}
	return limit
}
