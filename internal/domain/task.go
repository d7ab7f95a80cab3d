package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 100

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is nil.
	ErrTaskIDEmpty = NewValidationError("id", "cannot be empty", ErrInvalidID)

	// ErrTaskUserIDEmpty is returned when a task has no owner.
	ErrTaskUserIDEmpty = NewValidationError("user_id", "cannot be empty", ErrInvalidID)

	// ErrTaskTitleEmpty is returned when a task title is blank.
	ErrTaskTitleEmpty = NewValidationError("title", "cannot be empty", nil)

	// ErrTaskTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTaskTitleTooLong = NewValidationError("title", "must be at most 100 characters", nil)
)

// Task is the aggregate root of the domain: a unit of work owned by exactly
// one user, together with its label set. The label set is persisted with the
// task as a single unit.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Labels      []Label    `json:"labels"`

	// Version is the optimistic concurrency token maintained by storage.
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by ownerID.
// It generates a new UUID for the task and deduplicates the initial label names.
// Timestamps are left for storage to assign.
// Returns an error if validation fails.
func NewTask(
	ownerID uuid.UUID,
	title string,
	description string,
	status TaskStatus,
	labelNames []string,
) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
	}

	if err := ValidateLabelNames(labelNames); err != nil {
		return nil, err
	}
	task.SetLabels(labelNames)

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if err := validateTitle(t.Title); err != nil {
		return err
	}

	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of OPEN, IN_PROGRESS, DONE", ErrInvalidTaskStatus)
	}

	seen := make(map[string]struct{}, len(t.Labels))
	for _, l := range t.Labels {
		if err := validateLabelName(l.Name); err != nil {
			return err
		}
		if _, dup := seen[l.Name]; dup {
			return NewValidationError("labels", "contains duplicate name "+l.Name, nil)
		}
		seen[l.Name] = struct{}{}
	}

	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTaskTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}
	return nil
}

// IsOwnedBy reports whether callerID owns the task.
func (t *Task) IsOwnedBy(callerID uuid.UUID) bool {
	return callerID != uuid.Nil && t.UserID == callerID
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Labels != nil {
		c.Labels = make([]Label, len(t.Labels))
		copy(c.Labels, t.Labels)
	}
	return &c
}

// TaskPatch describes a partial update. Nil fields are left untouched.
// A non-nil Labels replaces the whole label set.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Labels      *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Labels == nil
}

// ApplyPatch applies p to the task atomically: either every field is applied
// or, when any check fails, the task is left exactly as it was.
// The status guard runs before anything else.
func (t *Task) ApplyPatch(p TaskPatch) error {
	if p.Status != nil {
		if err := CheckTransition(t.Status, *p.Status); err != nil {
			return err
		}
	}

	if p.Labels != nil {
		if err := ValidateLabelNames(*p.Labels); err != nil {
			return err
		}
	}

	candidate := t.Clone()
	if p.Title != nil {
		candidate.Title = *p.Title
	}
	if p.Description != nil {
		candidate.Description = *p.Description
	}
	if p.Status != nil {
		candidate.Status = *p.Status
	}
	if p.Labels != nil {
		candidate.SetLabels(*p.Labels)
	}

	if err := candidate.Validate(); err != nil {
		return err
	}

	*t = *candidate
	return nil
}
