package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskRepository defines the repository interface for the task service.
// Every method operates on a task and its labels as one unit.
type TaskRepository interface {
	// GetByID retrieves a task with its labels.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// FindMany returns one page of tasks matching q plus the total match count.
	FindMany(ctx context.Context, q store.TaskQuery) (*store.TaskPage, error)

	// Create inserts a new task with its labels.
	Create(ctx context.Context, task *domain.Task) error

	// Save persists the task and replaces its label set.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its labels.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateTaskParams holds the caller-supplied fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Labels      []string
}

// TaskService provides task lifecycle operations.
// Mutating operations check existence before ownership, so a caller probing
// an unknown ID always gets ErrTaskNotFound and never ErrNotOwned.
type TaskService interface {
	// CreateTask creates a task owned by ownerID.
	CreateTask(ctx context.Context, ownerID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// GetTask retrieves a task by ID without an ownership check.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetOwnedTask retrieves a task by ID and fails with ErrNotOwned when
	// callerID is not its owner.
	GetOwnedTask(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error)

	// ListTasks returns one page of the owner's tasks. The owner constraint is
	// always applied regardless of the filter.
	ListTasks(
		ctx context.Context,
		ownerID uuid.UUID,
		filter store.TaskFilter,
		sort store.TaskSort,
		page store.Pagination,
	) (*store.TaskPage, error)

	// UpdateTask applies patch to the task. A status regression fails with
	// domain.ErrInvalidStatusTransition and nothing is changed.
	UpdateTask(ctx context.Context, id, callerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes the task.
	DeleteTask(ctx context.Context, id, callerID uuid.UUID) error

	// AddLabels adds the names the task does not carry yet.
	AddLabels(ctx context.Context, id, callerID uuid.UUID, names []string) (*domain.Task, error)

	// RemoveLabels removes the named labels. Unknown names are ignored.
	RemoveLabels(ctx context.Context, id, callerID uuid.UUID, names []string) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo     TaskRepository
	emitter  events.EventEmitter
	defaults store.QueryDefaults
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	repo TaskRepository,
	emitter events.EventEmitter,
	defaults store.QueryDefaults,
	logger *slog.Logger,
) (TaskService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		repo:     repo,
		emitter:  emitter,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, params.Title, params.Description, params.Status, params.Labels)
	if err != nil {
		log.Debug("invalid task", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			redact.ErrorAttr(err),
			slog.String("user_id", ownerID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))

	s.emit(ctx, events.TaskCreated, task, events.SnapshotOf(task))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.load(ctx, "get_task", id)
}

// GetOwnedTask implements TaskService.GetOwnedTask
func (s *taskServiceImpl) GetOwnedTask(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error) {
	return s.loadOwned(ctx, "get_task", id, callerID)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	sort store.TaskSort,
	page store.Pagination,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q, err := store.NewTaskQuery(ownerID, filter, sort, page, s.defaults)
	if err != nil {
		log.Debug("invalid task query", slog.String("error", err.Error()))
		return nil, err
	}

	result, err := s.repo.FindMany(ctx, q)
	if err != nil {
		log.Error("failed to list tasks",
			redact.ErrorAttr(err),
			slog.String("user_id", ownerID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to query tasks", err)
	}

	return result, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id, callerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.loadOwned(ctx, "update_task", id, callerID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return task, nil
	}

	if err := task.ApplyPatch(patch); err != nil {
		log.Debug("task update rejected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	if err := s.save(ctx, "update_task", task); err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(task.Status)))

	s.emit(ctx, events.TaskUpdated, task, events.SnapshotOf(task))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id, callerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.loadOwned(ctx, "delete_task", id, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		log.Error("failed to delete task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", id.String()))

	s.emit(ctx, events.TaskDeleted, task, nil)
	return nil
}

// AddLabels implements TaskService.AddLabels
func (s *taskServiceImpl) AddLabels(
	ctx context.Context,
	id, callerID uuid.UUID,
	names []string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateLabelNames(names); err != nil {
		return nil, err
	}

	task, err := s.loadOwned(ctx, "add_labels", id, callerID)
	if err != nil {
		return nil, err
	}

	added := task.AddLabels(names)
	if len(added) == 0 {
		log.Debug("labels already present", slog.String("task_id", id.String()))
		return task, nil
	}

	if err := s.save(ctx, "add_labels", task); err != nil {
		return nil, err
	}

	log.Info("labels added",
		slog.String("task_id", id.String()),
		slog.Int("added", len(added)))

	s.emit(ctx, events.TaskLabelsAdded, task, events.LabelChange{Names: added})
	return task, nil
}

// RemoveLabels implements TaskService.RemoveLabels
func (s *taskServiceImpl) RemoveLabels(ctx context.Context, id, callerID uuid.UUID, names []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.loadOwned(ctx, "remove_labels", id, callerID)
	if err != nil {
		return err
	}

	removed := task.RemoveLabels(names)
	if len(removed) == 0 {
		log.Debug("no matching labels to remove", slog.String("task_id", id.String()))
		return nil
	}

	if err := s.save(ctx, "remove_labels", task); err != nil {
		return err
	}

	log.Info("labels removed",
		slog.String("task_id", id.String()),
		slog.Int("removed", len(removed)))

	s.emit(ctx, events.TaskLabelsRemoved, task, events.LabelChange{Names: removed})
	return nil
}

// load fetches a task, translating a missing row into ErrTaskNotFound.
func (s *taskServiceImpl) load(ctx context.Context, op string, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, ErrTaskNotFound
		}
		log.Error("failed to retrieve task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return nil, NewTaskServiceError(op, "failed to retrieve task", err)
	}
	return task, nil
}

// loadOwned fetches a task and then checks that callerID owns it.
func (s *taskServiceImpl) loadOwned(ctx context.Context, op string, id, callerID uuid.UUID) (*domain.Task, error) {
	task, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if !task.IsOwnedBy(callerID) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task access denied",
			slog.String("task_id", id.String()),
			slog.String("caller_id", callerID.String()))
		return nil, ErrNotOwned
	}
	return task, nil
}

func (s *taskServiceImpl) save(ctx context.Context, op string, task *domain.Task) error {
	err := s.repo.Save(ctx, task)
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	if domain.IsValidationError(err) {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("failed to save task",
		redact.ErrorAttr(err),
		slog.String("task_id", task.ID.String()))
	return NewTaskServiceError(op, "failed to save task", err)
}

// emit publishes an event for a committed mutation. Failures are logged only.
func (s *taskServiceImpl) emit(ctx context.Context, eventType events.EventType, task *domain.Task, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, task, payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit task event",
			slog.String("event_type", string(eventType)),
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
	}
}
