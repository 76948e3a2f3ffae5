package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskAddedEvent is emitted when a new task is persisted.
type TaskAddedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	IsDaily   bool      `json:"is_daily"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskAddedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-added
var TaskAddedV1 = helper.EventDefinition[TaskAddedEvent](
	"task", "TaskAdded", "v1",
)

// TaskUpdatedEvent is emitted when a task's fields are edited.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task edits.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskCompletionToggledEvent is emitted when a task is completed or reopened.
type TaskCompletionToggledEvent struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ToggledAt   time.Time  `json:"toggled_at"`
}

// TaskCompletionToggledV1 is the typed event definition for completion changes.
// Subject: events.task.v1.task-completion-toggled
var TaskCompletionToggledV1 = helper.EventDefinition[TaskCompletionToggledEvent](
	"task", "TaskCompletionToggled", "v1",
)

// TaskDeletedEvent is emitted when a single task is removed.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// Clear scopes.
const (
	ClearScopeCompleted = "completed"
	ClearScopeAll       = "all"
)

// TasksClearedEvent is emitted after a bulk removal.
type TasksClearedEvent struct {
	Scope     string    `json:"scope"`
	Removed   int       `json:"removed"`
	ClearedAt time.Time `json:"cleared_at"`
}

// TasksClearedV1 is the typed event definition for bulk removal.
// Subject: events.task.v1.tasks-cleared
var TasksClearedV1 = helper.EventDefinition[TasksClearedEvent](
	"task", "TasksCleared", "v1",
)
