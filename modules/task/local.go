package task

import (
	"context"

	domain "github.com/example/todo-tracker/domain/task"
)

// localAdapter serves TaskPort straight from a UseCase, without the service
// container. Useful for embedding the core in a single process.
type localAdapter struct {
	uc *UseCase
}

// NewLocalAdapter creates a TaskPort backed by uc.
func NewLocalAdapter(uc *UseCase) TaskPort {
	return &localAdapter{uc: uc}
}

func (a *localAdapter) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	return a.uc.AddTask(ctx, t)
}

func (a *localAdapter) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	return a.uc.UpdateTask(ctx, t)
}

func (a *localAdapter) ToggleCompletion(ctx context.Context, t domain.Task) (domain.Task, error) {
	return a.uc.ToggleCompletion(ctx, t)
}

func (a *localAdapter) DeleteTask(ctx context.Context, t domain.Task) error {
	_, err := a.uc.DeleteTask(ctx, t)
	return err
}

func (a *localAdapter) ClearCompletedTasks(ctx context.Context) (int, error) {
	return a.uc.ClearCompletedTasks(ctx)
}

func (a *localAdapter) ClearAllTasks(ctx context.Context) (int, error) {
	return a.uc.ClearAllTasks(ctx)
}

func (a *localAdapter) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	return a.uc.FetchTasks(ctx)
}
