package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/dayplan/backend/domain"
	"github.com/dayplan/backend/repository"
)

func newTestRepo(t *testing.T) repository.TaskRepository {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "tasks.db"), 0o600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewTaskRepository(db)
	require.NoError(t, err)
	return repo
}

func mustCreate(t *testing.T, repo repository.TaskRepository, task *domain.Task) *domain.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	// creation nanos double as the sort tiebreak, keep them distinct
	time.Sleep(time.Millisecond)
	return created
}

func due(t time.Time) *time.Time { return &t }

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "Buy milk"})

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, domain.PriorityNone, got.Priority)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListUnscheduled_NewestFirstAndScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "first"})
	second := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "second"})
	mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "scheduled", DueDate: due(now.Add(time.Hour))})
	mustCreate(t, repo, &domain.Task{Owner: "bob", Title: "not yours"})

	tasks, err := repo.ListUnscheduled(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestListDueBeforeAndFrom(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	endOfDay := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	yesterday := endOfDay.AddDate(0, 0, -2)
	thisEvening := endOfDay.Add(-4 * time.Hour)
	nextWeek := endOfDay.AddDate(0, 0, 6)

	overdue := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "overdue", DueDate: due(yesterday)})
	today := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "today", DueDate: due(thisEvening), HasDueTime: true})
	upcoming := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "upcoming", DueDate: due(nextWeek)})
	mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "unscheduled"})

	before, err := repo.ListDueBefore(ctx, "alice", endOfDay)
	require.NoError(t, err)
	require.Len(t, before, 2)
	// earliest / most overdue first
	assert.Equal(t, overdue.ID, before[0].ID)
	assert.Equal(t, today.ID, before[1].ID)

	from, err := repo.ListDueFrom(ctx, "alice", endOfDay)
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, upcoming.ID, from[0].ID)
}

func TestListDueBefore_ExactBoundaryExcluded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	endOfDay := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "at boundary", DueDate: due(endOfDay)})

	before, err := repo.ListDueBefore(ctx, "alice", endOfDay)
	require.NoError(t, err)
	assert.Empty(t, before)

	from, err := repo.ListDueFrom(ctx, "alice", endOfDay)
	require.NoError(t, err)
	assert.Len(t, from, 1)
}

func TestListCompleted_LimitAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		task := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: title})
		require.NoError(t, repo.SetCompletion(ctx, task.ID, true, &now))
		ids = append(ids, task.ID)
	}

	tasks, err := repo.ListCompleted(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// the two most recently created completed tasks, newest first
	assert.Equal(t, ids[2], tasks[0].ID)
	assert.Equal(t, ids[1], tasks[1].ID)
}

func TestSetCompletion_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	task := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "toggle me", Priority: 2})

	require.NoError(t, repo.SetCompletion(ctx, task.ID, true, &now))
	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, repo.SetCompletion(ctx, task.ID, false, nil))
	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)
	// untouched fields survive the round trip
	assert.Equal(t, "toggle me", got.Title)
	assert.Equal(t, 2, got.Priority)
}

func TestSetCompletion_MovesBetweenBuckets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	task := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "done soon"})
	require.NoError(t, repo.SetCompletion(ctx, task.ID, true, &now))

	open, err := repo.ListUnscheduled(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, open)

	completed, err := repo.ListCompleted(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestSetDue_Reschedules(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	nextWeek := time.Now().UTC().AddDate(0, 0, 7)
	startOfDay := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	task := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "move me", DueDate: due(nextWeek), HasDueTime: true})
	require.NoError(t, repo.SetDue(ctx, task.ID, startOfDay, false))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(startOfDay))
	assert.False(t, got.HasDueTime)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task := mustCreate(t, repo, &domain.Task{Owner: "alice", Title: "gone"})
	require.NoError(t, repo.Delete(ctx, task.ID))

	_, err := repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), domain.ErrTaskNotFound)
}
