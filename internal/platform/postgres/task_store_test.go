//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(
	t *testing.T,
	ctx context.Context,
	s store.TaskStore,
	owner uuid.UUID,
	title string,
	status domain.TaskStatus,
	labels ...string,
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner, title, "", status, labels)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, task))
	return task
}

func listQuery(t *testing.T, owner uuid.UUID, f store.TaskFilter, s store.TaskSort, p store.Pagination) store.TaskQuery {
	t.Helper()
	q, err := store.NewTaskQuery(owner, f, s, p, store.DefaultQueryDefaults())
	require.NoError(t, err)
	return q
}

func titles(page *store.TaskPage) []string {
	out := make([]string, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestPostgresTaskStore_RoundTrip(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)

		task := createTask(t, ctx, s, owner, "Write report", domain.TaskStatusOpen, "work", "urgent")
		assert.Equal(t, 1, task.Version)
		assert.False(t, task.CreatedAt.IsZero())

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, []string{"urgent", "work"}, got.LabelNames())

		require.NoError(t, got.ApplyPatch(domain.TaskPatch{
			Status: statusPtr(domain.TaskStatusInProgress),
			Labels: &[]string{"work", "q3"},
		}))
		require.NoError(t, s.Save(ctx, got))
		assert.Equal(t, 2, got.Version)

		reloaded, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, reloaded.Status)
		assert.Equal(t, []string{"q3", "work"}, reloaded.LabelNames())
		assert.Equal(t, 2, reloaded.Version)

		require.NoError(t, s.Delete(ctx, task.ID))
		_, err = s.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_StaleSaveConflicts(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)
		task := createTask(t, ctx, s, owner, "Shared", domain.TaskStatusOpen)

		first, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		second, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)

		first.Title = "First writer"
		require.NoError(t, s.Save(ctx, first))

		second.Title = "Second writer"
		err = s.Save(ctx, second)
		assert.ErrorIs(t, err, store.ErrVersionConflict)

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "First writer", got.Title)
	})
}

func TestPostgresTaskStore_UnknownOwner(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresTaskStore(tx, nil)
		task, err := domain.NewTask(uuid.New(), "Orphan", "", domain.TaskStatusOpen, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, s.Create(ctx, task), store.ErrUserNotFound)
	})
}

func TestPostgresTaskStore_FindMany(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)
		other := testdb.CreateTestUser(t, tx)

		createTask(t, ctx, s, owner, "Buy milk", domain.TaskStatusOpen, "home")
		createTask(t, ctx, s, owner, "Fix 100% of bugs", domain.TaskStatusInProgress, "work")
		createTask(t, ctx, s, owner, "Ship release", domain.TaskStatusDone, "work", "release")
		createTask(t, ctx, s, other, "Buy bread", domain.TaskStatusOpen, "home")

		t.Run("owner scope", func(t *testing.T) {
			page, err := s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{}, store.TaskSort{}, store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, 3, page.Total)
			assert.NotContains(t, titles(page), "Buy bread")
		})

		t.Run("status filter", func(t *testing.T) {
			status := domain.TaskStatusDone
			page, err := s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{Status: &status}, store.TaskSort{}, store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, []string{"Ship release"}, titles(page))
			assert.Equal(t, []string{"release", "work"}, page.Tasks[0].LabelNames())
		})

		t.Run("search treats wildcards literally", func(t *testing.T) {
			page, err := s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{Search: "100%"}, store.TaskSort{}, store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, []string{"Fix 100% of bugs"}, titles(page))

			page, err = s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{Search: "BUY"}, store.TaskSort{}, store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, []string{"Buy milk"}, titles(page))
		})

		t.Run("label filter matches any", func(t *testing.T) {
			page, err := s.FindMany(ctx, listQuery(t, owner,
				store.TaskFilter{Labels: []string{"home", "release"}},
				store.TaskSort{Field: store.SortByTitle, Direction: store.SortAsc},
				store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, []string{"Buy milk", "Ship release"}, titles(page))
		})

		t.Run("status sort uses progression order", func(t *testing.T) {
			page, err := s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{},
				store.TaskSort{Field: store.SortByStatus, Direction: store.SortAsc}, store.Pagination{}))
			require.NoError(t, err)
			assert.Equal(t, []string{"Buy milk", "Fix 100% of bugs", "Ship release"}, titles(page))
		})

		t.Run("pagination keeps total", func(t *testing.T) {
			page, err := s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{},
				store.TaskSort{Field: store.SortByTitle, Direction: store.SortAsc},
				store.Pagination{Limit: 2, Offset: 2}))
			require.NoError(t, err)
			assert.Equal(t, 3, page.Total)
			assert.Equal(t, []string{"Ship release"}, titles(page))

			page, err = s.FindMany(ctx, listQuery(t, owner, store.TaskFilter{}, store.TaskSort{},
				store.Pagination{Limit: 2, Offset: 10}))
			require.NoError(t, err)
			assert.Equal(t, 3, page.Total)
			assert.Empty(t, page.Tasks)
		})
	})
}

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }
