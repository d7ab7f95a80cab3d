package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// A task and its label set are always read and written as one unit.
type TaskStore interface {
	// GetByID retrieves a task with its labels.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// FindMany returns one page of the owner's tasks matching q together with
	// the total number of matches before pagination.
	// Returns an empty page, never nil tasks, when nothing matches.
	FindMany(ctx context.Context, q TaskQuery) (*TaskPage, error)

	// Create inserts a new task and its labels atomically.
	// It assigns CreatedAt, UpdatedAt and Version on the passed task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// Save persists every field of an existing task and replaces its stored
	// label set, atomically. The write only succeeds when the stored version
	// still equals task.Version; on success Version and UpdatedAt are advanced.
	// Returns ErrTaskNotFound if the task vanished and ErrVersionConflict if it
	// was modified concurrently.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Labels go with it through ON DELETE CASCADE.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TaskStore that runs every statement inside tx.
	// The transaction is created and managed by the caller.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return taskStore.WithTx(tx).Save(ctx, task)
	//   })
	WithTx(tx *sql.Tx) TaskStore
}
