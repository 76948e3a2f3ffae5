package task

import (
	"context"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/google/uuid"
)

// UseCase applies the task business rules before each repository call.
type UseCase struct {
	repo      *Repository
	validator *domain.Validator
	now       func() time.Time
	newID     func() string
}

// UseCaseOption configures a UseCase.
type UseCaseOption func(*UseCase)

// WithClock sets the clock used for creation and completion timestamps.
func WithClock(now func() time.Time) UseCaseOption {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// WithIDGenerator replaces the UUID generator for new tasks.
func WithIDGenerator(newID func() string) UseCaseOption {
	return func(uc *UseCase) {
		uc.newID = newID
	}
}

// NewUseCase creates a UseCase. A nil validator gets one sharing the use
// case's clock.
func NewUseCase(repo *Repository, validator *domain.Validator, opts ...UseCaseOption) *UseCase {
	uc := &UseCase{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	if validator == nil {
		validator = domain.NewValidator(domain.WithClock(uc.now))
	}
	uc.validator = validator
	return uc
}

// Validator returns the validator used by the use case.
func (uc *UseCase) Validator() *domain.Validator {
	return uc.validator
}

// AddTask validates t against the stored tasks and appends it. An empty ID or
// CreatedAt is filled in; the returned task is what was stored.
func (uc *UseCase) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = uc.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = uc.now()
	}
	prepare(&t)

	if err := uc.repo.Save(ctx, t, uc.validate); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// UpdateTask validates t, excluding its own title from the duplicate check,
// and replaces the stored record.
func (uc *UseCase) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	prepare(&t)
	return uc.repo.Update(ctx, t, uc.validate)
}

// ToggleCompletion flips the completion state of the stored task with t.ID.
// Only the id is used, so a stale copy of t cannot undo a concurrent toggle.
func (uc *UseCase) ToggleCompletion(ctx context.Context, t domain.Task) (domain.Task, error) {
	return uc.repo.Toggle(ctx, t.ID, uc.now())
}

// DeleteTask removes the task with t.ID and returns the removed record.
func (uc *UseCase) DeleteTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	return uc.repo.Delete(ctx, t.ID)
}

// ClearCompletedTasks removes every completed task.
func (uc *UseCase) ClearCompletedTasks(ctx context.Context) (int, error) {
	return uc.repo.ClearCompleted(ctx)
}

// ClearAllTasks removes every task.
func (uc *UseCase) ClearAllTasks(ctx context.Context) (int, error) {
	return uc.repo.ClearAll(ctx)
}

// FetchTasks returns the full collection, unfiltered, in storage order.
func (uc *UseCase) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	return uc.repo.FetchAll(ctx)
}

func (uc *UseCase) validate(candidate domain.Task, existing []domain.Task) error {
	if res := uc.validator.ValidateAll(candidate, existing); !res.Valid() {
		return &domain.ValidationFailedError{Result: res}
	}
	return nil
}

// prepare pads times and derives the legacy completion flag.
func prepare(t *domain.Task) {
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	} else if p, err := domain.ParsePriority(string(t.Priority)); err == nil {
		t.Priority = p
	}
	t.DueTime = domain.NormalizeTimeOfDay(t.DueTime)
	t.DailyTime = domain.NormalizeTimeOfDay(t.DailyTime)
	t.Normalize()
}
