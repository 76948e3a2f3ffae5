package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// AddTask adds a task via the add-task service.
func (a *taskAdapter) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	req := TaskRequest{Task: t}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"add-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("add-task service call failed: %w", err)
	}
	return resp.result("add-task")
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	req := TaskRequest{Task: t}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("update-task service call failed: %w", err)
	}
	return resp.result("update-task")
}

// ToggleCompletion toggles a task via the toggle-task service.
func (a *taskAdapter) ToggleCompletion(ctx context.Context, t domain.Task) (domain.Task, error) {
	req := TaskIDRequest{TaskID: t.ID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"toggle-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("toggle-task service call failed: %w", err)
	}
	return resp.result("toggle-task")
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, t domain.Task) error {
	req := TaskIDRequest{TaskID: t.ID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if resp.Error != nil {
		return resp.Error.Err()
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", t.ID)
	}
	return nil
}

// ClearCompletedTasks removes completed tasks via the clear-completed service.
func (a *taskAdapter) ClearCompletedTasks(ctx context.Context) (int, error) {
	req := ClearRequest{}
	var resp ClearResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"clear-completed",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return 0, fmt.Errorf("clear-completed service call failed: %w", err)
	}
	return resp.Removed, resp.Error.Err()
}

// ClearAllTasks removes every task via the clear-all service.
func (a *taskAdapter) ClearAllTasks(ctx context.Context) (int, error) {
	req := ClearRequest{}
	var resp ClearResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"clear-all",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return 0, fmt.Errorf("clear-all service call failed: %w", err)
	}
	return resp.Removed, resp.Error.Err()
}

// FetchTasks lists every task via the list-tasks service.
func (a *taskAdapter) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	req := ListTasksRequest{}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error.Err()
	}
	return resp.Tasks, nil
}

func (r TaskResponse) result(service string) (domain.Task, error) {
	if r.Error != nil {
		return domain.Task{}, r.Error.Err()
	}
	if r.Task == nil {
		return domain.Task{}, fmt.Errorf("%s service returned no task", service)
	}
	return *r.Task, nil
}
