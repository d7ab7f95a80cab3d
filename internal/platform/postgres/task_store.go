package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
// Tasks live in the tasks table and their labels in task_labels.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db, which may be a *sql.DB
// or a *sql.Tx. When db is a *sql.DB, writes open their own transaction;
// otherwise they join the caller's. If logger is nil, a default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// inTx runs fn atomically: in a new transaction when the store holds a
// *sql.DB, or directly on the caller's transaction otherwise.
func (s *PostgresTaskStore) inTx(ctx context.Context, fn func(ctx context.Context, db store.DBTX) error) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, tx)
		})
	}
	return fn(ctx, s.db)
}

const selectTaskColumns = `SELECT id, user_id, title, description, status, version, created_at, updated_at FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.Labels = []domain.Label{}
	return &task, nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, selectTaskColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	if err := s.loadLabels(ctx, []*domain.Task{task}); err != nil {
		log.Error("failed to load task labels",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// loadLabels fills in the labels of every task in tasks with one query.
// Labels come back ordered by name.
func (s *PostgresTaskStore) loadLabels(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID.String())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, name FROM task_labels WHERE task_id = ANY($1::uuid[]) ORDER BY task_id, name`,
		ids)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.TaskID, &l.Name); err != nil {
			return err
		}
		if t, ok := byID[l.TaskID]; ok {
			t.Labels = append(t.Labels, l)
		}
	}
	return rows.Err()
}

// FindMany implements store.TaskStore.FindMany.
func (s *PostgresTaskStore) FindMany(ctx context.Context, q store.TaskQuery) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	built, err := buildTaskListQuery(q)
	if err != nil {
		return nil, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, built.countSQL, built.countArgs...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			redact.ErrorAttr(err),
			slog.String("user_id", q.OwnerID.String()))
		return nil, MapError(err)
	}

	page := &store.TaskPage{
		Tasks:  []*domain.Task{},
		Total:  total,
		Limit:  q.Pagination.Limit,
		Offset: q.Pagination.Offset,
	}
	if total == 0 || q.Pagination.Offset >= total {
		return page, nil
	}

	rows, err := s.db.QueryContext(ctx, built.pageSQL, built.pageArgs...)
	if err != nil {
		log.Error("failed to query tasks",
			redact.ErrorAttr(err),
			slog.String("user_id", q.OwnerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", redact.ErrorAttr(err))
		}
	}()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", redact.ErrorAttr(err))
			return nil, err
		}
		page.Tasks = append(page.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", redact.ErrorAttr(err))
		return nil, err
	}

	if err := s.loadLabels(ctx, page.Tasks); err != nil {
		log.Error("failed to load labels for task page", redact.ErrorAttr(err))
		return nil, err
	}

	log.Debug("found tasks",
		slog.String("user_id", q.OwnerID.String()),
		slog.Int("count", len(page.Tasks)),
		slog.Int("total", total))
	return page, nil
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	var stored domain.Task
	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		err := db.QueryRowContext(ctx, `
			INSERT INTO tasks (id, user_id, title, description, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING version, created_at, updated_at`,
			task.ID,
			task.UserID,
			task.Title,
			task.Description,
			string(task.Status),
		).Scan(&stored.Version, &stored.CreatedAt, &stored.UpdatedAt)
		if err != nil {
			return MapError(err)
		}
		return insertLabels(ctx, db, task.ID, task.Labels)
	})
	if err != nil {
		log.Error("failed to create task",
			redact.ErrorAttr(err),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	task.Version = stored.Version
	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = stored.UpdatedAt

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.Int("label_count", len(task.Labels)))
	return nil
}

// Save implements store.TaskStore.Save.
func (s *PostgresTaskStore) Save(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during save",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	var stored domain.Task
	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		err := db.QueryRowContext(ctx, `
			UPDATE tasks
			SET title = $3, description = $4, status = $5, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $2
			RETURNING version, updated_at`,
			task.ID,
			task.Version,
			task.Title,
			task.Description,
			string(task.Status),
		).Scan(&stored.Version, &stored.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return missingOrConflict(ctx, db, task.ID)
		}
		if err != nil {
			return MapError(err)
		}

		if _, err := db.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = $1`, task.ID); err != nil {
			return MapError(err)
		}
		return insertLabels(ctx, db, task.ID, task.Labels)
	})
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrTaskNotFound) {
			log.Warn("task save rejected",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.Int("version", task.Version))
		} else {
			log.Error("failed to save task",
				redact.ErrorAttr(err),
				slog.String("task_id", task.ID.String()))
		}
		return err
	}

	task.Version = stored.Version
	task.UpdatedAt = stored.UpdatedAt

	log.Info("task saved",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.Int("version", task.Version))
	return nil
}

// missingOrConflict tells apart the two reasons an optimistic update can
// match no row.
func missingOrConflict(ctx context.Context, db store.DBTX, id uuid.UUID) error {
	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrTaskNotFound
	}
	return store.ErrVersionConflict
}

// insertLabels writes labels for taskID with a single multi-row INSERT.
func insertLabels(ctx context.Context, db store.DBTX, taskID uuid.UUID, labels []domain.Label) error {
	if len(labels) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO task_labels (id, task_id, name) VALUES `)
	args := make([]any, 0, len(labels)*3)
	for i, l := range labels {
		if i > 0 {
			sb.WriteString(", ")
		}
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		args = append(args, id, taskID, l.Name)
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", len(args)-2, len(args)-1, len(args))
	}

	if _, err := db.ExecContext(ctx, sb.String(), args...); err != nil {
		return MapError(err)
	}
	return nil
}

// Delete implements store.TaskStore.Delete.
// Labels are removed by ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}
