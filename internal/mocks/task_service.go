package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTaskService implements service.TaskService for testing.
// Each method calls its function field when set and otherwise returns the
// default Task, Page and DefaultError values.
type MockTaskService struct {
	CreateTaskFn   func(ctx context.Context, ownerID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error)
	GetTaskFn      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	GetOwnedTaskFn func(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error)
	ListTasksFn    func(
		ctx context.Context,
		ownerID uuid.UUID,
		filter store.TaskFilter,
		sort store.TaskSort,
		page store.Pagination,
	) (*store.TaskPage, error)
	UpdateTaskFn   func(ctx context.Context, id, callerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTaskFn   func(ctx context.Context, id, callerID uuid.UUID) error
	AddLabelsFn    func(ctx context.Context, id, callerID uuid.UUID, names []string) (*domain.Task, error)
	RemoveLabelsFn func(ctx context.Context, id, callerID uuid.UUID, names []string) error

	// Default return values
	Task         *domain.Task
	Page         *store.TaskPage
	DefaultError error
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements service.TaskService
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	params service.CreateTaskParams,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, ownerID, params)
	}
	return m.Task, m.DefaultError
}

// GetTask implements service.TaskService
func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return m.Task, m.DefaultError
}

// GetOwnedTask implements service.TaskService
func (m *MockTaskService) GetOwnedTask(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error) {
	if m.GetOwnedTaskFn != nil {
		return m.GetOwnedTaskFn(ctx, id, callerID)
	}
	return m.Task, m.DefaultError
}

// ListTasks implements service.TaskService
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	sort store.TaskSort,
	page store.Pagination,
) (*store.TaskPage, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, ownerID, filter, sort, page)
	}
	return m.Page, m.DefaultError
}

// UpdateTask implements service.TaskService
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	id, callerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, callerID, patch)
	}
	return m.Task, m.DefaultError
}

// DeleteTask implements service.TaskService
func (m *MockTaskService) DeleteTask(ctx context.Context, id, callerID uuid.UUID) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id, callerID)
	}
	return m.DefaultError
}

// AddLabels implements service.TaskService
func (m *MockTaskService) AddLabels(
	ctx context.Context,
	id, callerID uuid.UUID,
	names []string,
) (*domain.Task, error) {
	if m.AddLabelsFn != nil {
		return m.AddLabelsFn(ctx, id, callerID, names)
	}
	return m.Task, m.DefaultError
}

// RemoveLabels implements service.TaskService
func (m *MockTaskService) RemoveLabels(ctx context.Context, id, callerID uuid.UUID, names []string) error {
	if m.RemoveLabelsFn != nil {
		return m.RemoveLabelsFn(ctx, id, callerID, names)
	}
	return m.DefaultError
}
