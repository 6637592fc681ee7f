package domain

import "time"

const (
	MaxTitleLen       = 50
	MaxDescriptionLen = 50

	PriorityHighest = 1
	PriorityNone    = 4
)

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	HasDueTime  bool       `json:"has_due_time"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsScheduled reports whether the task carries a due date.
func (t *Task) IsScheduled() bool {
	return t != nil && t.DueDate != nil
}

// Validate checks the mutable fields against the record constraints.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return NewError(ErrCodeInvalid, "title must not be empty")
	}
	if len([]rune(t.Title)) > MaxTitleLen {
		return NewError(ErrCodeInvalid, "title must be at most 50 characters")
	}
	if len([]rune(t.Description)) > MaxDescriptionLen {
		return NewError(ErrCodeInvalid, "description must be at most 50 characters")
	}
	if t.Priority < PriorityHighest || t.Priority > PriorityNone {
		return NewError(ErrCodeInvalid, "priority must be between 1 and 4")
	}
	if t.HasDueTime && t.DueDate == nil {
		return NewError(ErrCodeInvalid, "due time requires a due date")
	}
	return nil
}

// Normalize fills defaults so the completion invariant and the priority
// range always hold before a write.
func (t *Task) Normalize() {
	if t == nil {
		return
	}
	if t.Priority == 0 {
		t.Priority = PriorityNone
	}
	if !t.IsCompleted {
		t.CompletedAt = nil
	}
	if t.DueDate == nil {
		t.HasDueTime = false
	}
}
