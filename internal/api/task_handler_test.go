package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedTaskID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	fixedTime   = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

func newTestTask(status domain.TaskStatus, labels ...string) *domain.Task {
	task := &domain.Task{
		ID:        fixedTaskID,
		UserID:    fixedUserID,
		Title:     "Write report",
		Status:    status,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
	task.SetLabels(labels)
	return task
}

// newTestRouter mounts the handler the same way the server does, minus the
// JWT middleware. userID is injected directly; uuid.Nil means unauthenticated.
func newTestRouter(svc *mocks.MockTaskService, userID uuid.UUID) http.Handler {
	h := NewTaskHandler(svc, slog.Default())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Get("/api/tasks/{id}", h.GetTask)
	r.Patch("/api/tasks/{id}", h.UpdateTask)
	r.Delete("/api/tasks/{id}", h.DeleteTask)
	r.Post("/api/tasks/{id}/labels", h.AddLabels)
	r.Delete("/api/tasks/{id}/labels", h.RemoveLabels)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestNewTaskHandler_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(nil, slog.Default()) })
	assert.Panics(t, func() { NewTaskHandler(&mocks.MockTaskService{}, nil) })
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Run("defaults status to OPEN", func(t *testing.T) {
		var got service.CreateTaskParams
		svc := &mocks.MockTaskService{
			CreateTaskFn: func(ctx context.Context, ownerID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error) {
				assert.Equal(t, fixedUserID, ownerID)
				got = params
				return newTestTask(params.Status, params.Labels...), nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPost, "/api/tasks", map[string]interface{}{
			"title":  "Write report",
			"labels": []map[string]string{{"name": "work"}, {"name": "urgent"}},
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, domain.TaskStatusOpen, got.Status)
		assert.Equal(t, []string{"work", "urgent"}, got.Labels)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, fixedTaskID.String(), resp.ID)
		assert.Equal(t, "OPEN", resp.Status)
		require.Len(t, resp.Labels, 2)
		assert.Equal(t, "work", resp.Labels[0].Name)
	})

	t.Run("explicit status is passed through", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			CreateTaskFn: func(ctx context.Context, ownerID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error) {
				assert.Equal(t, domain.TaskStatusInProgress, params.Status)
				return newTestTask(params.Status), nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPost, "/api/tasks",
			CreateTaskRequest{Title: "x", Status: "IN_PROGRESS"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	tests := []struct {
		name           string
		userID         uuid.UUID
		body           interface{}
		serviceErr     error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "unauthenticated",
			userID:         uuid.Nil,
			body:           CreateTaskRequest{Title: "x"},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "User ID not found or invalid",
		},
		{
			name:           "malformed json",
			userID:         fixedUserID,
			body:           `{"title":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request format",
		},
		{
			name:           "unknown field",
			userID:         fixedUserID,
			body:           `{"title":"x","owner":"someone"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request format",
		},
		{
			name:           "missing title",
			userID:         fixedUserID,
			body:           CreateTaskRequest{},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid title: required field",
		},
		{
			name:           "unknown status",
			userID:         fixedUserID,
			body:           CreateTaskRequest{Title: "x", Status: "BLOCKED"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid status: invalid value",
		},
		{
			name:           "store failure",
			userID:         fixedUserID,
			body:           CreateTaskRequest{Title: "x"},
			serviceErr:     service.NewTaskServiceError("create_task", "failed to save task", errors.New("db down")),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Failed to create task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockTaskService{Task: newTestTask(domain.TaskStatusOpen), DefaultError: tt.serviceErr}
			rec := doRequest(t, newTestRouter(svc, tt.userID), http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedMsg, decodeError(t, rec))
		})
	}
}

func TestTaskHandler_GetTask(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "found", path: "/api/tasks/" + fixedTaskID.String(), expectedStatus: http.StatusOK},
		{name: "invalid id", path: "/api/tasks/not-a-uuid", expectedStatus: http.StatusBadRequest},
		{
			name:           "not found",
			path:           "/api/tasks/" + fixedTaskID.String(),
			serviceErr:     service.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not owned",
			path:           "/api/tasks/" + fixedTaskID.String(),
			serviceErr:     service.ErrNotOwned,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockTaskService{
				GetOwnedTaskFn: func(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error) {
					assert.Equal(t, fixedTaskID, id)
					assert.Equal(t, fixedUserID, callerID)
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return newTestTask(domain.TaskStatusOpen), nil
				},
			}

			rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Run("parses query parameters", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			ListTasksFn: func(
				ctx context.Context,
				ownerID uuid.UUID,
				filter store.TaskFilter,
				sort store.TaskSort,
				page store.Pagination,
			) (*store.TaskPage, error) {
				assert.Equal(t, fixedUserID, ownerID)
				require.NotNil(t, filter.Status)
				assert.Equal(t, domain.TaskStatusInProgress, *filter.Status)
				assert.Equal(t, "report", filter.Search)
				assert.Equal(t, []string{"work", "home"}, filter.Labels)
				assert.Equal(t, store.SortByTitle, sort.Field)
				assert.Equal(t, store.SortAsc, sort.Direction)
				assert.Equal(t, store.Pagination{Limit: 5, Offset: 10}, page)

				return &store.TaskPage{
					Tasks:  []*domain.Task{newTestTask(domain.TaskStatusInProgress, "work")},
					Total:  11,
					Limit:  5,
					Offset: 10,
				}, nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodGet,
			"/api/tasks?status=in_progress&search=report&labels=work,home&sort_by=title&sort_order=ASC&limit=5&offset=10",
			nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, PageMeta{Total: 11, Limit: 5, Offset: 10}, resp.Meta)
	})

	t.Run("no parameters leaves defaults to the service", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			ListTasksFn: func(
				ctx context.Context,
				ownerID uuid.UUID,
				filter store.TaskFilter,
				sort store.TaskSort,
				page store.Pagination,
			) (*store.TaskPage, error) {
				assert.Equal(t, store.TaskFilter{}, filter)
				assert.Equal(t, store.TaskSort{}, sort)
				assert.Equal(t, store.Pagination{}, page)
				return &store.TaskPage{Limit: 10}, nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodGet, "/api/tasks", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":[],"meta":{"total":0,"limit":10,"offset":0}}`, rec.Body.String())
	})

	badQueries := map[string]string{
		"bad status":     "/api/tasks?status=BLOCKED",
		"bad sort field": "/api/tasks?sort_by=password",
		"bad sort order": "/api/tasks?sort_order=up",
		"bad limit":      "/api/tasks?limit=ten",
		"bad offset":     "/api/tasks?offset=-x",
	}
	for name, path := range badQueries {
		t.Run(name, func(t *testing.T) {
			svc := &mocks.MockTaskService{
				ListTasksFn: func(
					context.Context, uuid.UUID, store.TaskFilter, store.TaskSort, store.Pagination,
				) (*store.TaskPage, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
			}
			rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(&mocks.MockTaskService{}, uuid.Nil), http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	path := "/api/tasks/" + fixedTaskID.String()

	t.Run("builds patch from present fields", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			UpdateTaskFn: func(ctx context.Context, id, callerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				assert.Nil(t, patch.Title)
				assert.Nil(t, patch.Description)
				require.NotNil(t, patch.Status)
				assert.Equal(t, domain.TaskStatusDone, *patch.Status)
				require.NotNil(t, patch.Labels)
				assert.Equal(t, []string{"a"}, *patch.Labels)
				return newTestTask(domain.TaskStatusDone, "a"), nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPatch, path,
			`{"status":"DONE","labels":[{"name":"a"}]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("empty labels list clears labels", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			UpdateTaskFn: func(ctx context.Context, id, callerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				require.NotNil(t, patch.Labels)
				assert.Empty(t, *patch.Labels)
				return newTestTask(domain.TaskStatusOpen), nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPatch, path, `{"labels":[]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("status regression is a bad request", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			DefaultError: domain.CheckTransition(domain.TaskStatusDone, domain.TaskStatusOpen),
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPatch, path, `{"status":"OPEN"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot change status from DONE to OPEN", decodeError(t, rec))
	})

	t.Run("concurrent modification is a conflict", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			DefaultError: service.NewTaskServiceError("update_task", "failed to save task", store.ErrVersionConflict),
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPatch, path, `{"title":"new"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	path := "/api/tasks/" + fixedTaskID.String()

	t.Run("success", func(t *testing.T) {
		called := false
		svc := &mocks.MockTaskService{
			DeleteTaskFn: func(ctx context.Context, id, callerID uuid.UUID) error {
				called = true
				assert.Equal(t, fixedTaskID, id)
				return nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, called)
	})

	t.Run("not owned", func(t *testing.T) {
		svc := &mocks.MockTaskService{DefaultError: service.ErrNotOwned}
		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskHandler_Labels(t *testing.T) {
	path := "/api/tasks/" + fixedTaskID.String() + "/labels"

	t.Run("add labels", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			AddLabelsFn: func(ctx context.Context, id, callerID uuid.UUID, names []string) (*domain.Task, error) {
				assert.Equal(t, []string{"x", "y"}, names)
				return newTestTask(domain.TaskStatusOpen, names...), nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodPost, path,
			[]LabelRequest{{Name: "x"}, {Name: "y"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Labels, 2)
	})

	t.Run("add rejects empty name", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(&mocks.MockTaskService{}, fixedUserID), http.MethodPost, path,
			[]LabelRequest{{Name: ""}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remove labels", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			RemoveLabelsFn: func(ctx context.Context, id, callerID uuid.UUID, names []string) error {
				assert.Equal(t, []string{"x"}, names)
				return nil
			},
		}

		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodDelete, path, []string{"x"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("remove on missing task", func(t *testing.T) {
		svc := &mocks.MockTaskService{DefaultError: service.ErrTaskNotFound}
		rec := doRequest(t, newTestRouter(svc, fixedUserID), http.MethodDelete, path, []string{"x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
