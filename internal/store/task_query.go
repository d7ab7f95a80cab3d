package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// Pagination bounds.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 10000
)

// SortField names a column tasks may be ordered by.
type SortField string

// Sortable task fields. Anything else is rejected.
const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
)

// IsValid reports whether f is a whitelisted sort field.
func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByStatus:
		return true
	}
	return false
}

// SortDirection is the ordering direction.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid reports whether d is asc or desc.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// ParseSortField converts raw, case-insensitively, into a whitelisted SortField.
func ParseSortField(raw string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(raw)))
	if !f.IsValid() {
		return "", domain.NewValidationError(
			"sort_by", "must be one of created_at, updated_at, title, status", nil)
	}
	return f, nil
}

// ParseSortDirection converts raw, case-insensitively, into a SortDirection.
func ParseSortDirection(raw string) (SortDirection, error) {
	d := SortDirection(strings.ToLower(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", domain.NewValidationError("sort_order", "must be asc or desc", nil)
	}
	return d, nil
}

// TaskFilter holds the optional list criteria. Zero values mean "no constraint".
type TaskFilter struct {
	Status *domain.TaskStatus
	Search string
	Labels []string
}

// TaskSort selects the ordering. Empty fields fall back to QueryDefaults.
type TaskSort struct {
	Field     SortField
	Direction SortDirection
}

// Pagination selects a page. A zero Limit falls back to QueryDefaults.
type Pagination struct {
	Limit  int
	Offset int
}

// QueryDefaults supplies the sort and page size used when a request leaves them unset.
type QueryDefaults struct {
	SortField     SortField
	SortDirection SortDirection
	Limit         int
}

// DefaultQueryDefaults returns created_at desc with a page size of 10.
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		SortField:     SortByCreatedAt,
		SortDirection: SortDesc,
		Limit:         DefaultPageLimit,
	}
}

func (d QueryDefaults) withFallbacks() QueryDefaults {
	fallback := DefaultQueryDefaults()
	if !d.SortField.IsValid() {
		d.SortField = fallback.SortField
	}
	if !d.SortDirection.IsValid() {
		d.SortDirection = fallback.SortDirection
	}
	if d.Limit < 1 || d.Limit > MaxPageLimit {
		d.Limit = fallback.Limit
	}
	return d
}

// TaskQuery is a fully resolved list request. It is only built through
// NewTaskQuery, so every field has already been validated.
type TaskQuery struct {
	OwnerID    uuid.UUID
	Filter     TaskFilter
	Sort       TaskSort
	Pagination Pagination
}

// NewTaskQuery validates and normalizes a list request for ownerID.
// The owner constraint always comes from the authenticated caller, never from
// the filter. Labels are deduplicated and blank entries dropped, the search
// term is trimmed, and unset sort or limit values take the defaults.
// Returns a *domain.ValidationError for any out-of-range input.
func NewTaskQuery(
	ownerID uuid.UUID,
	filter TaskFilter,
	sort TaskSort,
	page Pagination,
	defaults QueryDefaults,
) (TaskQuery, error) {
	if ownerID == uuid.Nil {
		return TaskQuery{}, domain.NewValidationError("owner_id", "cannot be empty", domain.ErrInvalidID)
	}

	if filter.Status != nil && !filter.Status.IsValid() {
		return TaskQuery{}, domain.NewValidationError(
			"status", "must be one of OPEN, IN_PROGRESS, DONE", domain.ErrInvalidTaskStatus)
	}

	defaults = defaults.withFallbacks()

	if sort.Field == "" {
		sort.Field = defaults.SortField
	} else if !sort.Field.IsValid() {
		return TaskQuery{}, domain.NewValidationError(
			"sort_by", "must be one of created_at, updated_at, title, status", nil)
	}
	if sort.Direction == "" {
		sort.Direction = defaults.SortDirection
	} else if !sort.Direction.IsValid() {
		return TaskQuery{}, domain.NewValidationError("sort_order", "must be asc or desc", nil)
	}

	if page.Limit == 0 {
		page.Limit = defaults.Limit
	}
	if page.Limit < 1 || page.Limit > MaxPageLimit {
		return TaskQuery{}, domain.NewValidationError("limit", "must be between 1 and 10000", nil)
	}
	if page.Offset < 0 {
		return TaskQuery{}, domain.NewValidationError("offset", "cannot be negative", nil)
	}

	var labels []string
	for _, name := range domain.DedupeLabelNames(filter.Labels) {
		if strings.TrimSpace(name) != "" {
			labels = append(labels, name)
		}
	}

	return TaskQuery{
		OwnerID: ownerID,
		Filter: TaskFilter{
			Status: filter.Status,
			Search: strings.TrimSpace(filter.Search),
			Labels: labels,
		},
		Sort:       sort,
		Pagination: page,
	}, nil
}

// TaskPage is one page of list results.
type TaskPage struct {
	Tasks  []*domain.Task
	Total  int
	Limit  int
	Offset int
}
