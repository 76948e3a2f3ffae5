package task

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseCase_AddTask(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(newFaultyStorage())

	added, err := uc.AddTask(ctx, domain.Task{Title: "Buy milk", DueDate: dayOffset(1), DueTime: "21:05"})
	require.NoError(t, err)
	assert.Equal(t, "task-1", added.ID)
	assert.Equal(t, testNow, added.CreatedAt)
	assert.Equal(t, domain.PriorityMedium, added.Priority)
	assert.Equal(t, "21:05", added.DueTime)
	assert.False(t, added.Completed())

	tasks, err := uc.FetchTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{added}, tasks)
}

func TestUseCase_AddTaskAcceptsAnyPriorityCasing(t *testing.T) {
	uc := newTestUseCase(newFaultyStorage())

	added, err := uc.AddTask(context.Background(), domain.Task{Title: "Call mom", Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, added.Priority)
}

func TestUseCase_AddTaskRejections(t *testing.T) {
	existing := domain.Task{Title: "Buy milk", Priority: domain.PriorityLow}

	tests := []struct {
		name      string
		task      domain.Task
		wantKind  domain.ErrorKind
		wantRules []domain.ValidationErrorKind
		isTitle   bool
	}{
		{
			name:      "empty title",
			task:      domain.Task{Title: "   "},
			wantKind:  domain.KindInvalidTitle,
			wantRules: []domain.ValidationErrorKind{domain.EmptyTitle},
			isTitle:   true,
		},
		{
			name:      "duplicate title ignoring case",
			task:      domain.Task{Title: "BUY MILK"},
			wantKind:  domain.KindInvalidTitle,
			wantRules: []domain.ValidationErrorKind{domain.DuplicateTitle},
			isTitle:   true,
		},
		{
			name:      "title too long",
			task:      domain.Task{Title: strings.Repeat("a", domain.MaxTitleLength+1)},
			wantKind:  domain.KindInvalidTitle,
			wantRules: []domain.ValidationErrorKind{domain.TitleTooLong},
			isTitle:   true,
		},
		{
			name:      "time without date",
			task:      domain.Task{Title: "Call mom", DueTime: "18:00"},
			wantKind:  domain.KindValidationFailed,
			wantRules: []domain.ValidationErrorKind{domain.TimeWithoutDate},
		},
		{
			name:      "past due date",
			task:      domain.Task{Title: "Call mom", DueDate: dayOffset(-1)},
			wantKind:  domain.KindValidationFailed,
			wantRules: []domain.ValidationErrorKind{domain.PastDate},
		},
		{
			name:      "unknown priority",
			task:      domain.Task{Title: "Call mom", Priority: "Urgent"},
			wantKind:  domain.KindValidationFailed,
			wantRules: []domain.ValidationErrorKind{domain.InvalidPriority},
		},
		{
			name:      "daily end before today",
			task:      domain.Task{Title: "Stretch", IsDaily: true, DailyTime: "18:00", DailyEndDate: dayOffset(-2)},
			wantKind:  domain.KindValidationFailed,
			wantRules: []domain.ValidationErrorKind{domain.DailyEndDateBeforeStart, domain.InvalidDailyEndDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newFaultyStorage()
			uc := newTestUseCase(store)
			_, err := uc.AddTask(ctx, existing)
			require.NoError(t, err)
			saves := store.saveCount()

			_, err = uc.AddTask(ctx, tt.task)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.Equal(t, tt.isTitle, errors.Is(err, domain.ErrInvalidTitle))
			assert.Equal(t, tt.wantKind, domain.KindOf(err))

			var vErr *domain.ValidationFailedError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantRules, vErr.Result.Kinds())

			assert.Equal(t, saves, store.saveCount(), "rejected task must not be persisted")
			tasks, _ := uc.FetchTasks(ctx)
			assert.Len(t, tasks, 1)
		})
	}
}

func TestUseCase_SaveFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStorage()
	uc := newTestUseCase(store)
	store.set(func(s *faultyStorage) { s.failSave = true })

	_, err := uc.AddTask(ctx, domain.Task{Title: "Buy milk"})
	assert.ErrorIs(t, err, domain.ErrSaveFailed)
	assert.Equal(t, domain.KindSaveFailed, domain.KindOf(err))
	assert.Equal(t, domain.HintCheckStorageAndRetry, domain.HintFor(err))
}

func TestUseCase_UpdateTask(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(newFaultyStorage())

	milk, err := uc.AddTask(ctx, domain.Task{Title: "Buy milk"})
	require.NoError(t, err)
	_, err = uc.AddTask(ctx, domain.Task{Title: "Walk dog"})
	require.NoError(t, err)

	t.Run("own title is not a duplicate", func(t *testing.T) {
		milk.Description = "two litres"
		updated, err := uc.UpdateTask(ctx, milk)
		require.NoError(t, err)
		assert.Equal(t, "two litres", updated.Description)
	})

	t.Run("another task's title is a duplicate", func(t *testing.T) {
		changed := milk
		changed.Title = "walk dog"
		_, err := uc.UpdateTask(ctx, changed)
		assert.ErrorIs(t, err, domain.ErrInvalidTitle)
	})

	t.Run("mixed schedule is rejected", func(t *testing.T) {
		changed := milk
		changed.IsDaily = true
		changed.DailyTime = "20:00"
		changed.DueDate = dayOffset(2)
		_, err := uc.UpdateTask(ctx, changed)
		var vErr *domain.ValidationFailedError
		require.ErrorAs(t, err, &vErr)
		assert.True(t, vErr.Result.Has(domain.ConflictingScheduleFields))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := uc.UpdateTask(ctx, domain.Task{ID: "nope", Title: "Ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.HintRefreshAndRetry, domain.HintFor(err))
	})
}

func TestUseCase_DailyTaskUsesCreationDayAsStart(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(newFaultyStorage())

	daily, err := uc.AddTask(ctx, domain.Task{Title: "Stretch", IsDaily: true, DailyTime: "18:30", DailyEndDate: dayOffset(0)})
	require.NoError(t, err)
	assert.Equal(t, testNow, daily.CreatedAt)
	assert.True(t, daily.IsDaily)
}

func TestUseCase_ToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(newFaultyStorage())

	added, err := uc.AddTask(ctx, domain.Task{Title: "Buy milk"})
	require.NoError(t, err)

	stale := added
	toggled, err := uc.ToggleCompletion(ctx, stale)
	require.NoError(t, err)
	require.NotNil(t, toggled.CompletedAt)
	assert.Equal(t, testNow, *toggled.CompletedAt)
	assert.True(t, toggled.IsCompleted)

	// Toggling from the same stale copy flips the stored state again.
	back, err := uc.ToggleCompletion(ctx, stale)
	require.NoError(t, err)
	assert.False(t, back.Completed())

	removed, err := uc.DeleteTask(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, added.ID, removed.ID)

	_, err = uc.DeleteTask(ctx, added)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUseCase_Clear(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(newFaultyStorage())

	for _, title := range []string{"a", "b", "c"} {
		_, err := uc.AddTask(ctx, domain.Task{Title: title})
		require.NoError(t, err)
	}
	_, err := uc.ToggleCompletion(ctx, domain.Task{ID: "task-2"})
	require.NoError(t, err)

	removed, err := uc.ClearCompletedTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = uc.ClearCompletedTasks(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = uc.ClearAllTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	tasks, err := uc.FetchTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUseCase_ValidatorSharesClock(t *testing.T) {
	uc := newTestUseCase(newFaultyStorage())
	assert.Equal(t, testNow, uc.Validator().Now())
}
