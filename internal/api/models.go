package api

import (
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// LabelRequest is one label in a create or add-labels request.
type LabelRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string         `json:"title"       validate:"required,max=100"`
	Description string         `json:"description"`
	Status      string         `json:"status"      validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	Labels      []LabelRequest `json:"labels"      validate:"omitempty,dive"`
}

// UpdateTaskRequest defines the payload for PATCH /api/tasks/{id}.
// Absent fields are left untouched; a present labels list replaces the set.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"       validate:"omitempty,max=100"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"      validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	Labels      *[]LabelRequest `json:"labels"      validate:"omitempty,dive"`
}

// LabelResponse represents one label of a task.
type LabelResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Labels      []LabelResponse `json:"labels"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PageMeta carries the pagination details of a list response.
type PageMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// TaskListResponse is the body of GET /api/tasks.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

func labelNames(labels []LabelRequest) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

func taskToResponse(task *domain.Task) TaskResponse {
	labels := make([]LabelResponse, 0, len(task.Labels))
	for _, l := range task.Labels {
		labels = append(labels, LabelResponse{ID: l.ID.String(), Name: l.Name})
	}
	return TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Labels:      labels,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func pageToResponse(page *store.TaskPage) TaskListResponse {
	data := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		data = append(data, taskToResponse(task))
	}
	return TaskListResponse{
		Data: data,
		Meta: PageMeta{Total: page.Total, Limit: page.Limit, Offset: page.Offset},
	}
}
