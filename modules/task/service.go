package task

import (
	"context"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/events"
	"github.com/go-monolith/mono"
)

// Domain failures are returned inside the response payload rather than as the
// handler error, so their kind survives the request-reply hop.

// addTask handles the add-task service request.
func (m *TaskModule) addTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	added, err := m.usecase.AddTask(ctx, req.Task)
	if err != nil {
		m.logger.Warn("Add task rejected", "title", req.Task.Title, "kind", domain.KindOf(err), "error", err)
		return TaskResponse{Error: NewErrorPayload(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskAddedEvent{
			TaskID:    added.ID,
			Title:     added.Title,
			Priority:  string(added.Priority),
			IsDaily:   added.IsDaily,
			CreatedAt: added.CreatedAt,
		}
		m.logPublishError(events.TaskAddedV1.Publish(m.eventBus, event, nil), "TaskAdded", added.ID)
	}

	return TaskResponse{Task: &added}, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	updated, err := m.usecase.UpdateTask(ctx, req.Task)
	if err != nil {
		m.logger.Warn("Update task rejected", "task_id", req.Task.ID, "kind", domain.KindOf(err), "error", err)
		return TaskResponse{Error: NewErrorPayload(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Title:     updated.Title,
			UpdatedAt: time.Now(),
		}
		m.logPublishError(events.TaskUpdatedV1.Publish(m.eventBus, event, nil), "TaskUpdated", updated.ID)
	}

	return TaskResponse{Task: &updated}, nil
}

// toggleTask handles the toggle-task service request.
func (m *TaskModule) toggleTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	toggled, err := m.usecase.ToggleCompletion(ctx, domain.Task{ID: req.TaskID})
	if err != nil {
		m.logger.Warn("Toggle task failed", "task_id", req.TaskID, "kind", domain.KindOf(err), "error", err)
		return TaskResponse{Error: NewErrorPayload(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCompletionToggledEvent{
			TaskID:      toggled.ID,
			Title:       toggled.Title,
			Completed:   toggled.Completed(),
			CompletedAt: toggled.CompletedAt,
			ToggledAt:   time.Now(),
		}
		m.logPublishError(events.TaskCompletionToggledV1.Publish(m.eventBus, event, nil), "TaskCompletionToggled", toggled.ID)
	}

	return TaskResponse{Task: &toggled}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	removed, err := m.usecase.DeleteTask(ctx, domain.Task{ID: req.TaskID})
	if err != nil {
		m.logger.Warn("Delete task failed", "task_id", req.TaskID, "kind", domain.KindOf(err), "error", err)
		return DeleteTaskResponse{Error: NewErrorPayload(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    removed.ID,
			Title:     removed.Title,
			DeletedAt: time.Now(),
		}
		m.logPublishError(events.TaskDeletedV1.Publish(m.eventBus, event, nil), "TaskDeleted", removed.ID)
	}

	return DeleteTaskResponse{Deleted: true}, nil
}

// clearCompleted handles the clear-completed service request.
func (m *TaskModule) clearCompleted(ctx context.Context, _ ClearRequest, _ *mono.Msg) (ClearResponse, error) {
	removed, err := m.usecase.ClearCompletedTasks(ctx)
	return m.clearResponse(events.ClearScopeCompleted, removed, err), nil
}

// clearAll handles the clear-all service request.
func (m *TaskModule) clearAll(ctx context.Context, _ ClearRequest, _ *mono.Msg) (ClearResponse, error) {
	removed, err := m.usecase.ClearAllTasks(ctx)
	return m.clearResponse(events.ClearScopeAll, removed, err), nil
}

func (m *TaskModule) clearResponse(scope string, removed int, err error) ClearResponse {
	if err != nil {
		m.logger.Warn("Clear tasks failed", "scope", scope, "error", err)
		return ClearResponse{Error: NewErrorPayload(err)}
	}

	if m.eventBus != nil {
		event := events.TasksClearedEvent{
			Scope:     scope,
			Removed:   removed,
			ClearedAt: time.Now(),
		}
		m.logPublishError(events.TasksClearedV1.Publish(m.eventBus, event, nil), "TasksCleared", scope)
	}

	return ClearResponse{Removed: removed}
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.usecase.FetchTasks(ctx)
	if err != nil {
		m.logger.Error("List tasks failed", "error", err)
		return ListTasksResponse{Error: NewErrorPayload(err)}, nil
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

// logPublishError logs a failed publish. Publishing is best-effort and never
// fails the operation.
func (m *TaskModule) logPublishError(err error, event, ref string) {
	if err != nil {
		m.logger.Warn("Failed to publish event", "event", event, "ref", ref, "error", err)
	}
}
