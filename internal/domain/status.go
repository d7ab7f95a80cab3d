package domain

import "strings"

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

// Possible task status values, listed in their progression order.
const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// statusOrder is the total order tasks move through.
var statusOrder = map[TaskStatus]int{
	TaskStatusOpen:       0,
	TaskStatusInProgress: 1,
	TaskStatusDone:       2,
}

// TaskStatuses returns every valid status in progression order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusOpen, TaskStatusInProgress, TaskStatusDone}
}

// IsValid reports whether s is one of the defined statuses.
func (s TaskStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Order returns the position of s in the status order, or -1 for unknown values.
func (s TaskStatus) Order() int {
	if o, ok := statusOrder[s]; ok {
		return o
	}
	return -1
}

// String implements fmt.Stringer.
func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus converts raw input into a TaskStatus.
// Matching is case-insensitive; the result is always the canonical form.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", NewValidationError("status", "must be one of OPEN, IN_PROGRESS, DONE", ErrInvalidTaskStatus)
	}
	return s, nil
}

// CanTransition reports whether a task in status current may move to requested.
// Statuses may hold or advance, never regress. Skipping a step is allowed.
func CanTransition(current, requested TaskStatus) bool {
	if !current.IsValid() || !requested.IsValid() {
		return false
	}
	return requested.Order() >= current.Order()
}

// CheckTransition is CanTransition returning a *StatusTransitionError on rejection.
func CheckTransition(current, requested TaskStatus) error {
	if !CanTransition(current, requested) {
		return &StatusTransitionError{From: current, To: requested}
	}
	return nil
}
