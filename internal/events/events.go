package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// EventType names what happened to a task.
type EventType string

// Task lifecycle events.
const (
	TaskCreated       EventType = "task.created"
	TaskUpdated       EventType = "task.updated"
	TaskDeleted       EventType = "task.deleted"
	TaskLabelsAdded   EventType = "task.labels_added"
	TaskLabelsRemoved EventType = "task.labels_removed"
)

// TaskEvent records a committed change to a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   EventType `json:"type"`
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`

	// Payload carries event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TaskSnapshot is the payload of created and updated events.
type TaskSnapshot struct {
	Title  string            `json:"title"`
	Status domain.TaskStatus `json:"status"`
	Labels []string          `json:"labels"`
}

// LabelChange is the payload of label events. It lists only the names that
// were actually added or removed.
type LabelChange struct {
	Names []string `json:"names"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates an event of the given type about task.
// A nil payload leaves Payload empty.
func NewTaskEvent(eventType EventType, task *domain.Task, payload any) (*TaskEvent, error) {
	event := &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    task.ID,
		UserID:    task.UserID,
		CreatedAt: time.Now().UTC(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = raw
	}

	return event, nil
}

// SnapshotOf builds the TaskSnapshot payload for task.
func SnapshotOf(task *domain.Task) TaskSnapshot {
	return TaskSnapshot{
		Title:  task.Title,
		Status: task.Status,
		Labels: task.LabelNames(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
