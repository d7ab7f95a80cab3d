package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "invalid token", err: auth.ErrInvalidToken, expectedStatus: http.StatusUnauthorized},
		{
			name:           "wrapped expired token",
			err:            fmt.Errorf("authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{name: "unauthorized", err: domain.ErrUnauthorized, expectedStatus: http.StatusUnauthorized},
		{name: "not owned", err: service.ErrNotOwned, expectedStatus: http.StatusForbidden},
		{name: "service not found", err: service.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{name: "store not found", err: store.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{name: "version conflict", err: store.ErrVersionConflict, expectedStatus: http.StatusConflict},
		{
			name:           "status regression",
			err:            domain.CheckTransition(domain.TaskStatusDone, domain.TaskStatusOpen),
			expectedStatus: http.StatusBadRequest,
		},
		{name: "domain validation", err: domain.ErrTaskTitleEmpty, expectedStatus: http.StatusBadRequest},
		{name: "invalid entity", err: store.ErrInvalidEntity, expectedStatus: http.StatusBadRequest},
		{
			name:           "service error",
			err:            service.NewTaskServiceError("list_tasks", "failed", errors.New("db down")),
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "unknown", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "An unexpected error occurred"},
		{name: "expired", err: auth.ErrExpiredToken, expected: "Token expired"},
		{name: "not owned", err: service.ErrNotOwned, expected: "You can only access your own tasks"},
		{name: "not found", err: service.ErrTaskNotFound, expected: "Task not found"},
		{
			name:     "status regression",
			err:      domain.CheckTransition(domain.TaskStatusDone, domain.TaskStatusInProgress),
			expected: "Cannot change status from DONE to IN_PROGRESS",
		},
		{name: "validation", err: domain.ErrTaskTitleEmpty, expected: "Invalid title: cannot be empty"},
		{
			name:     "internal details hidden",
			err:      errors.New("pq: relation tasks does not exist at 10.0.0.5"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := validator.New().Struct(&CreateTaskRequest{})
	require.Error(t, err)

	assert.Equal(t, "Invalid title: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("server error uses fallback message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

		HandleAPIError(rec, req, errors.New("connection refused"), "Failed to list tasks")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to list tasks")
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("client error keeps safe message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/x", nil)

		HandleAPIError(rec, req, service.ErrTaskNotFound, "Failed to retrieve task")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Task not found")
	})
}
