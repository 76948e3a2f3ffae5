package api

import (
	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/manager"
)

// ViewResponse is the HTTP response for the filtered view.
type ViewResponse struct {
	Filter  domain.Filter `json:"filter"`
	Tasks   []domain.Task `json:"tasks"`
	Total   int           `json:"total"`
	Stats   domain.Stats  `json:"stats"`
	Loading bool          `json:"loading"`
}

// ListTasksResponse is the HTTP response for the unfiltered collection.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// FilterRequest is the HTTP request for changing the active filter.
type FilterRequest struct {
	Filter string `json:"filter"`
}

// ValidateResponse is the HTTP response for form validation.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Fields domain.FormResult `json:"fields"`
}

// CurrentErrorResponse is the HTTP response for the error being shown.
type CurrentErrorResponse struct {
	Showing bool            `json:"showing"`
	Report  *manager.Report `json:"report,omitempty"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error      string                       `json:"error"`
	Message    string                       `json:"message"`
	Hint       domain.RecoveryHint          `json:"hint,omitempty"`
	Validation []domain.ValidationErrorKind `json:"validation,omitempty"`
}
