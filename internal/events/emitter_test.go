package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*TaskEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	log, _ := logger.NewCaptureLogger()

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		event, err := NewTaskEvent(TaskCreated, newTask(t), nil)
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event, err := NewTaskEvent(TaskUpdated, newTask(t), nil)
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*TaskEvent{event}, h1.events)
		assert.Equal(t, []*TaskEvent{event}, h2.events)
	})

	t.Run("failing handler does not stop later handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		failing := &recordingHandler{err: errors.New("handler error")}
		after := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(after)

		event, err := NewTaskEvent(TaskDeleted, newTask(t), nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, after.events, 1)
	})
}

func TestLoggingHandler(t *testing.T) {
	log, buf := logger.NewCaptureLogger()
	handler := NewLoggingHandler(log)
	task := newTask(t)

	event, err := NewTaskEvent(TaskLabelsAdded, task, LabelChange{Names: []string{"urgent"}})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task event", entries[0]["msg"])
	assert.Equal(t, "task.labels_added", entries[0]["event_type"])
	assert.Equal(t, task.ID.String(), entries[0]["task_id"])
	assert.Equal(t, "task_audit", entries[0]["component"])
	assert.Contains(t, entries[0]["payload"], "urgent")
}
