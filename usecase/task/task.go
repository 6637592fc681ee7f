package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dayplan/backend/domain"
	"github.com/dayplan/backend/internal/notify"
	"github.com/dayplan/backend/pkg/titledate"
	"github.com/dayplan/backend/repository"
)

// UseCase owns every task read and write. The caller identity is an
// explicit argument on each call; there is no ambient current user.
type UseCase struct {
	tasks  repository.TaskRepository
	broker notify.Broker
	logger *zap.Logger
	now    func() time.Time

	clock  *cron.Cron
	tickMu sync.Mutex
	ticks  map[int]chan time.Time
	nextID int
}

func New(tasks repository.TaskRepository, broker notify.Broker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		broker: broker,
		logger: logger,
		now:    time.Now,
		ticks:  make(map[int]chan time.Time),
	}
}

// Input carries the mutable fields for add and update operations.
type Input struct {
	Title       string
	Description string
	DueDate     *time.Time
	HasDueTime  bool
	Priority    int
	// Reference is the caller's wall clock used to resolve date phrases in
	// the title; the server clock is used when zero.
	Reference time.Time
}

// Add creates a task owned by identity. When no due date was fixed
// explicitly, date phrases in the title are extracted, stripped from the
// stored title and used as the due date.
func (uc *UseCase) Add(ctx context.Context, identity string, in Input) (*domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}

	task := &domain.Task{
		Owner:       identity,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		HasDueTime:  in.HasDueTime,
		Priority:    in.Priority,
	}

	if in.DueDate == nil {
		ref := in.Reference
		if ref.IsZero() {
			ref = uc.now()
		}
		extracted := titledate.Extract(in.Title, ref)
		if extracted.DueDate != nil {
			task.Title = extracted.CleanTitle
			task.DueDate = extracted.DueDate
			task.HasDueTime = extracted.HasDueTime
		}
	}

	task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, identity, created.ID, notify.EventCreated)
	return created, nil
}

// Update replaces the mutable fields of a task. Completion state is not
// touched.
func (uc *UseCase) Update(ctx context.Context, identity, id string, in Input) (*domain.Task, error) {
	current, err := uc.authorize(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	current.Title = in.Title
	current.Description = in.Description
	current.DueDate = in.DueDate
	current.HasDueTime = in.HasDueTime
	current.Priority = in.Priority
	current.Normalize()

	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, current); err != nil {
		return nil, err
	}
	uc.publish(ctx, identity, id, notify.EventUpdated)
	return current, nil
}

// Complete marks a task done. Completing an already completed task is a
// state no-op but still authorization-checked.
func (uc *UseCase) Complete(ctx context.Context, identity, id string) error {
	current, err := uc.authorize(ctx, identity, id)
	if err != nil {
		return err
	}
	if current.IsCompleted {
		return nil
	}
	completedAt := uc.now().UTC()
	if err := uc.tasks.SetCompletion(ctx, id, true, &completedAt); err != nil {
		return err
	}
	uc.publish(ctx, identity, id, notify.EventCompleted)
	return nil
}

// Uncomplete reopens a task and clears its completion timestamp.
func (uc *UseCase) Uncomplete(ctx context.Context, identity, id string) error {
	current, err := uc.authorize(ctx, identity, id)
	if err != nil {
		return err
	}
	if !current.IsCompleted {
		return nil
	}
	if err := uc.tasks.SetCompletion(ctx, id, false, nil); err != nil {
		return err
	}
	uc.publish(ctx, identity, id, notify.EventUncompleted)
	return nil
}

// Delete permanently removes a task. There is no tombstone.
func (uc *UseCase) Delete(ctx context.Context, identity, id string) error {
	if _, err := uc.authorize(ctx, identity, id); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, identity, id, notify.EventDeleted)
	return nil
}

// MoveToToday reschedules a task to the start of the caller's local day and
// drops any time of day.
func (uc *UseCase) MoveToToday(ctx context.Context, identity, id string, startOfLocalDay time.Time) error {
	if startOfLocalDay.IsZero() {
		return domain.NewError(domain.ErrCodeInvalid, "start of local day is required")
	}
	if _, err := uc.authorize(ctx, identity, id); err != nil {
		return err
	}
	if err := uc.tasks.SetDue(ctx, id, startOfLocalDay, false); err != nil {
		return err
	}
	uc.publish(ctx, identity, id, notify.EventRescheduled)
	return nil
}

// authorize fetches the record and verifies ownership. Cross-user access is
// logged as such; callers surface it as not-found so task ids of other
// users are indistinguishable from missing ones.
func (uc *UseCase) authorize(ctx context.Context, identity, id string) (*domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Owner != identity {
		uc.logger.Warn("cross-user task access denied",
			zap.String("task_id", id),
			zap.String("identity", identity),
		)
		return nil, domain.ErrUnauthorized
	}
	return task, nil
}

func (uc *UseCase) publish(ctx context.Context, owner, id string, kind notify.EventKind) {
	if uc.broker == nil {
		return
	}
	event := notify.Event{Owner: owner, TaskID: id, Kind: kind, At: uc.now().UTC()}
	if err := uc.broker.Publish(ctx, event); err != nil {
		uc.logger.Error("failed to publish task event",
			zap.String("task_id", id),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
