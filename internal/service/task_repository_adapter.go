package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// NewTaskRepositoryAdapter creates a new adapter that allows a store.TaskStore
// to be used where a TaskRepository is expected.
func NewTaskRepositoryAdapter(taskStore store.TaskStore) TaskRepository {
	return &taskRepositoryAdapter{taskStore: taskStore}
}

// taskRepositoryAdapter adapts a store.TaskStore to the TaskRepository interface
type taskRepositoryAdapter struct {
	taskStore store.TaskStore
}

// GetByID implements TaskRepository.GetByID
func (a *taskRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return a.taskStore.GetByID(ctx, id)
}

// FindMany implements TaskRepository.FindMany
func (a *taskRepositoryAdapter) FindMany(ctx context.Context, q store.TaskQuery) (*store.TaskPage, error) {
	return a.taskStore.FindMany(ctx, q)
}

// Create implements TaskRepository.Create
func (a *taskRepositoryAdapter) Create(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Create(ctx, task)
}

// Save implements TaskRepository.Save
func (a *taskRepositoryAdapter) Save(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Save(ctx, task)
}

// Delete implements TaskRepository.Delete
func (a *taskRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.taskStore.Delete(ctx, id)
}
