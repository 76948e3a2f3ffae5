package task

import (
	"context"
	"errors"

	domain "github.com/example/todo-tracker/domain/task"
)

// TaskRequest carries a full task record for add-task and update-task.
type TaskRequest struct {
	Task domain.Task `json:"task"`
}

// TaskIDRequest addresses a stored task for toggle-task and delete-task.
type TaskIDRequest struct {
	TaskID string `json:"task_id"`
}

// TaskResponse is the response for services returning one task.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for delete-task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// ClearRequest is the request for clear-completed and clear-all.
type ClearRequest struct{}

// ClearResponse is the response for clear-completed and clear-all.
type ClearResponse struct {
	Removed int           `json:"removed"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// ListTasksRequest is the request for list-tasks.
type ListTasksRequest struct{}

// ListTasksResponse is the response for list-tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload transports a domain error through a service reply so the
// caller can rebuild an error that still matches the domain sentinels.
type ErrorPayload struct {
	Kind       domain.ErrorKind         `json:"kind"`
	Message    string                   `json:"message"`
	Validation []domain.ValidationError `json:"validation,omitempty"`
}

// NewErrorPayload describes err, or returns nil for a nil error.
func NewErrorPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	p := &ErrorPayload{Kind: domain.KindOf(err), Message: err.Error()}
	var vErr *domain.ValidationFailedError
	if errors.As(err, &vErr) {
		p.Validation = vErr.Result.Errors
	}
	return p
}

// Err rebuilds the error described by the payload.
func (p *ErrorPayload) Err() error {
	if p == nil {
		return nil
	}
	if len(p.Validation) > 0 {
		return &domain.ValidationFailedError{Result: domain.Result{Errors: p.Validation}}
	}
	return &RemoteError{Kind: p.Kind, Message: p.Message}
}

// RemoteError is a domain error reported by the task module.
type RemoteError struct {
	Kind    domain.ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for the error kind, if any.
func (e *RemoteError) Unwrap() error {
	return e.Kind.Sentinel()
}

// TaskPort defines the task operations offered by the core (hexagonal port).
// Driving adapters such as the manager and the HTTP API depend only on this.
type TaskPort interface {
	AddTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	ToggleCompletion(ctx context.Context, t domain.Task) (domain.Task, error)
	DeleteTask(ctx context.Context, t domain.Task) error
	ClearCompletedTasks(ctx context.Context) (int, error)
	ClearAllTasks(ctx context.Context) (int, error)
	FetchTasks(ctx context.Context) ([]domain.Task, error)
}
