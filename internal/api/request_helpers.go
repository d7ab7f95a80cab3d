package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// getUserIDFromContext extracts the authenticated user's UUID from the request context.
// The user ID is expected to be placed in the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID extracts and parses a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handleUserIDAndPathUUID is a composite helper that extracts both the user ID from context
// and a UUID from the path parameters. It writes an error response if either extraction fails.
//
// Returns:
//   - (userID, pathID, true): both values were extracted
//   - (uuid.Nil, uuid.Nil, false): extraction failed and an error response was written
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// listParams is the parsed query string of GET /api/tasks.
type listParams struct {
	filter store.TaskFilter
	sort   store.TaskSort
	page   store.Pagination
}

// parseListParams reads the list query parameters. Absent parameters stay at
// their zero value so the service applies its defaults.
func parseListParams(r *http.Request) (listParams, error) {
	var p listParams
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return p, err
		}
		p.filter.Status = &status
	}

	p.filter.Search = q.Get("search")

	if raw := q.Get("labels"); raw != "" {
		p.filter.Labels = strings.Split(raw, ",")
	}

	if raw := q.Get("sort_by"); raw != "" {
		field, err := store.ParseSortField(raw)
		if err != nil {
			return p, err
		}
		p.sort.Field = field
	}

	if raw := q.Get("sort_order"); raw != "" {
		dir, err := store.ParseSortDirection(raw)
		if err != nil {
			return p, err
		}
		p.sort.Direction = dir
	}

	var err error
	if p.page.Limit, err = parseIntParam(q.Get("limit"), "limit"); err != nil {
		return p, err
	}
	if p.page.Offset, err = parseIntParam(q.Get("offset"), "offset"); err != nil {
		return p, err
	}

	return p, nil
}

func parseIntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}
