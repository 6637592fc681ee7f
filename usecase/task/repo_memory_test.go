package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayplan/backend/domain"
	"github.com/dayplan/backend/repository"
)

// memoryRepo is a map-backed TaskRepository mirroring the ordering the real
// drivers produce.
type memoryRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	seq   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: make(map[string]domain.Task)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *memoryRepo) ListUnscheduled(ctx context.Context, owner string) ([]domain.Task, error) {
	return r.list(func(t domain.Task) bool {
		return t.Owner == owner && !t.IsCompleted && t.DueDate == nil
	}, byCreatedDesc), nil
}

func (r *memoryRepo) ListDueBefore(ctx context.Context, owner string, before time.Time) ([]domain.Task, error) {
	return r.list(func(t domain.Task) bool {
		return t.Owner == owner && !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(before)
	}, byDueAsc), nil
}

func (r *memoryRepo) ListDueFrom(ctx context.Context, owner string, from time.Time) ([]domain.Task, error) {
	return r.list(func(t domain.Task) bool {
		return t.Owner == owner && !t.IsCompleted && t.DueDate != nil && !t.DueDate.Before(from)
	}, byDueAsc), nil
}

func (r *memoryRepo) ListCompleted(ctx context.Context, owner string, limit int) ([]domain.Task, error) {
	tasks := r.list(func(t domain.Task) bool {
		return t.Owner == owner && t.IsCompleted
	}, byCreatedDesc)
	if limit = repository.ClampLimit(limit); len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *memoryRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Normalize()
	r.seq++
	task.CreatedAt = time.Unix(0, int64(r.seq)*int64(time.Second)).UTC()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *memoryRepo) Update(ctx context.Context, task *domain.Task) error {
	return r.patch(task.ID, func(stored *domain.Task) {
		stored.Title = task.Title
		stored.Description = task.Description
		stored.DueDate = task.DueDate
		stored.HasDueTime = task.HasDueTime
		stored.Priority = task.Priority
	})
}

func (r *memoryRepo) SetCompletion(ctx context.Context, id string, completed bool, completedAt *time.Time) error {
	return r.patch(id, func(stored *domain.Task) {
		stored.IsCompleted = completed
		stored.CompletedAt = completedAt
	})
}

func (r *memoryRepo) SetDue(ctx context.Context, id string, due time.Time, hasDueTime bool) error {
	return r.patch(id, func(stored *domain.Task) {
		stored.DueDate = &due
		stored.HasDueTime = hasDueTime
	})
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memoryRepo) patch(id string, fn func(*domain.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	fn(&stored)
	stored.Normalize()
	stored.UpdatedAt = time.Now().UTC()
	r.tasks[id] = stored
	return nil
}

func (r *memoryRepo) list(keep func(domain.Task) bool, less func(a, b domain.Task) bool) []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreatedDesc(a, b domain.Task) bool { return a.CreatedAt.After(b.CreatedAt) }

func byDueAsc(a, b domain.Task) bool {
	if a.DueDate.Equal(*b.DueDate) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.DueDate.Before(*b.DueDate)
}

var _ repository.TaskRepository = (*memoryRepo)(nil)
