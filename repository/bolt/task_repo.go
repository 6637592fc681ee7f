// Package bolt implements the task store on an embedded bbolt file for
// single-node deployments.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/dayplan/backend/domain"
	"github.com/dayplan/backend/repository"
)

var (
	bucketTasks = []byte("tasks")
	bucketIndex = []byte("tasks_idx")
)

type taskRepository struct {
	db *bolt.DB
}

// NewTaskRepository ensures the data and index buckets exist and returns a
// bbolt-backed implementation of TaskRepository.
func NewTaskRepository(db *bolt.DB) (repository.TaskRepository, error) {
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketTasks); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketIndex)
		return err
	}); err != nil {
		return nil, err
	}
	return &taskRepository{db: db}, nil
}

// The index key mirrors the relational (owner, is_completed, due_date)
// index: owner and completion scope the prefix, the due flag byte keeps
// unscheduled tasks apart from any real due date, and due/created nanos give
// the range-scan ordering.
func indexKey(t *domain.Task) []byte {
	completed := 0
	if t.IsCompleted {
		completed = 1
	}
	dueFlag, dueNanos := 0, int64(0)
	if t.DueDate != nil {
		dueFlag = 1
		dueNanos = t.DueDate.UTC().UnixNano()
	}
	return []byte(fmt.Sprintf("%s|%d|%d|%020d|%020d|%s",
		t.Owner, completed, dueFlag, dueNanos, t.CreatedAt.UTC().UnixNano(), t.ID))
}

func indexPrefix(owner string, completed bool, dueFlag int) []byte {
	c := 0
	if completed {
		c = 1
	}
	return []byte(fmt.Sprintf("%s|%d|%d|", owner, c, dueFlag))
}

func completionPrefix(owner string, completed bool) []byte {
	c := 0
	if completed {
		c = 1
	}
	return []byte(fmt.Sprintf("%s|%d|", owner, c))
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		task = &domain.Task{}
		return json.Unmarshal(raw, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) ListUnscheduled(ctx context.Context, owner string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		prefix := indexPrefix(owner, false, 0)
		c := tx.Bucket(bucketIndex).Cursor()

		// newest-created first: walk the prefix range backwards
		upper := append(append([]byte{}, prefix...), 0xFF)
		k, id := c.Seek(upper)
		if k == nil {
			k, id = c.Last()
		} else {
			k, id = c.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, id = c.Prev() {
			task, err := loadTask(tx, id)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return nil
	})
	return tasks, err
}

func (r *taskRepository) ListDueBefore(ctx context.Context, owner string, before time.Time) ([]domain.Task, error) {
	return r.scanDue(owner, func(prefix []byte, c *bolt.Cursor, emit func(id []byte) error) error {
		bound := dueBound(prefix, before)
		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix) && bytes.Compare(k, bound) < 0; k, id = c.Next() {
			if err := emit(id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepository) ListDueFrom(ctx context.Context, owner string, from time.Time) ([]domain.Task, error) {
	return r.scanDue(owner, func(prefix []byte, c *bolt.Cursor, emit func(id []byte) error) error {
		for k, id := c.Seek(dueBound(prefix, from)); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			if err := emit(id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepository) ListCompleted(ctx context.Context, owner string, limit int) ([]domain.Task, error) {
	limit = repository.ClampLimit(limit)
	var tasks []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		prefix := completionPrefix(owner, true)
		c := tx.Bucket(bucketIndex).Cursor()
		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			task, err := loadTask(tx, id)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the index orders this scope by due date; the completed view wants
	// newest-created first
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Normalize()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	err := r.db.Update(func(tx *bolt.Tx) error {
		return putTask(tx, task, nil)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.patch(task.ID, func(stored *domain.Task) {
		stored.Title = task.Title
		stored.Description = task.Description
		stored.DueDate = task.DueDate
		stored.HasDueTime = task.HasDueTime
		stored.Priority = task.Priority
	})
}

func (r *taskRepository) SetCompletion(ctx context.Context, id string, completed bool, completedAt *time.Time) error {
	return r.patch(id, func(stored *domain.Task) {
		stored.IsCompleted = completed
		stored.CompletedAt = completedAt
	})
}

func (r *taskRepository) SetDue(ctx context.Context, id string, due time.Time, hasDueTime bool) error {
	return r.patch(id, func(stored *domain.Task) {
		stored.DueDate = &due
		stored.HasDueTime = hasDueTime
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var stored domain.Task
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		if err := tx.Bucket(bucketIndex).Delete(indexKey(&stored)); err != nil {
			return err
		}
		return tx.Bucket(bucketTasks).Delete([]byte(id))
	})
}

// patch applies fn to the stored record and swaps the index entry inside a
// single write transaction.
func (r *taskRepository) patch(id string, fn func(*domain.Task)) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var stored domain.Task
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		oldKey := indexKey(&stored)
		fn(&stored)
		stored.Normalize()
		stored.UpdatedAt = time.Now().UTC()
		return putTask(tx, &stored, oldKey)
	})
}

func putTask(tx *bolt.Tx, task *domain.Task, oldIndexKey []byte) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if oldIndexKey != nil {
		if err := tx.Bucket(bucketIndex).Delete(oldIndexKey); err != nil {
			return err
		}
	}
	if err := tx.Bucket(bucketIndex).Put(indexKey(task), []byte(task.ID)); err != nil {
		return err
	}
	return tx.Bucket(bucketTasks).Put([]byte(task.ID), payload)
}

func loadTask(tx *bolt.Tx, id []byte) (*domain.Task, error) {
	raw := tx.Bucket(bucketTasks).Get(id)
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) scanDue(owner string, walk func(prefix []byte, c *bolt.Cursor, emit func(id []byte) error) error) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		prefix := indexPrefix(owner, false, 1)
		c := tx.Bucket(bucketIndex).Cursor()
		return walk(prefix, c, func(id []byte) error {
			task, err := loadTask(tx, id)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
			return nil
		})
	})
	return tasks, err
}

func dueBound(prefix []byte, at time.Time) []byte {
	return append(append([]byte{}, prefix...), []byte(fmt.Sprintf("%020d", at.UTC().UnixNano()))...)
}
