package manager

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_InitialState(t *testing.T) {
	m, _, errs := newTestManager(t)

	assert.Equal(t, domain.FilterPending, m.Filter())
	assert.Empty(t, m.View())
	assert.Empty(t, m.Tasks())
	assert.False(t, m.IsLoading())
	assert.False(t, errs.Showing())

	require.NoError(t, await(t, m.Refresh(context.Background())))
	assert.Empty(t, m.Tasks())
}

func TestManager_AddCommitsAndRecomputesView(t *testing.T) {
	ctx := context.Background()
	m, _, errs := newTestManager(t)

	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Later", Priority: domain.PriorityHigh})))
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Tomorrow", DueDate: dayOffset(1), Priority: domain.PriorityLow})))
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Tonight", DueDate: dayOffset(0), DueTime: "20:00"})))

	assert.Equal(t, []string{"Later", "Tomorrow", "Tonight"}, titles(m.Tasks()))
	assert.Equal(t, []string{"Tonight", "Tomorrow", "Later"}, titles(m.View()))
	assert.False(t, errs.Showing())
	assert.Equal(t, 3, m.Stats().Pending)
}

func TestManager_FailureIsReportedAndNothingCommitted(t *testing.T) {
	ctx := context.Background()
	m, port, errs := newTestManager(t)
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Keep"})))
	kept := m.Tasks()[0]

	port.setFail(domain.ErrSaveFailed)

	tests := []struct {
		name string
		run  func() <-chan error
	}{
		{"add", func() <-chan error { return m.AddTask(ctx, domain.Task{Title: "New"}) }},
		{"update", func() <-chan error {
			changed := kept
			changed.Title = "Renamed"
			return m.UpdateTask(ctx, changed)
		}},
		{"toggle", func() <-chan error { return m.ToggleCompletion(ctx, kept) }},
		{"delete", func() <-chan error { return m.DeleteTask(ctx, kept) }},
		{"clear completed", func() <-chan error { return m.ClearCompleted(ctx) }},
		{"clear all", func() <-chan error { return m.ClearAll(ctx) }},
		{"refresh", func() <-chan error { return m.Refresh(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs.Clear()

			err := await(t, tt.run())
			assert.ErrorIs(t, err, domain.ErrSaveFailed)

			report, ok := errs.Current()
			require.True(t, ok)
			assert.Equal(t, domain.KindSaveFailed, report.Kind)
			assert.Equal(t, domain.HintCheckStorageAndRetry, report.Hint)
			assert.Equal(t, []domain.Task{kept}, m.Tasks())
			assert.False(t, m.IsLoading())
		})
	}
}

func TestManager_ValidationFailureCarriesRules(t *testing.T) {
	ctx := context.Background()
	m, _, errs := newTestManager(t)
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Buy milk"})))

	err := await(t, m.AddTask(ctx, domain.Task{Title: "buy milk"}))
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	report, ok := errs.Current()
	require.True(t, ok)
	assert.Equal(t, domain.KindInvalidTitle, report.Kind)
	assert.Equal(t, domain.HintUseDifferentTitle, report.Hint)
	assert.Equal(t, []domain.ValidationErrorKind{domain.DuplicateTitle}, report.Validation)
	assert.Equal(t, testNow, report.At)
	assert.Len(t, m.Tasks(), 1)

	assert.True(t, errs.Clear())
	assert.False(t, errs.Showing())
	assert.False(t, errs.Clear())
}

func TestManager_ToggleMovesTaskBetweenViews(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Stretch", IsDaily: true, DailyTime: "18:00"})))
	stretch := m.Tasks()[0]

	require.NoError(t, await(t, m.ToggleCompletion(ctx, stretch)))
	assert.Empty(t, m.View())

	require.NoError(t, m.SetFilter(domain.FilterCompleted))
	assert.Equal(t, []string{"Stretch"}, titles(m.View()))

	require.NoError(t, m.SetFilter(domain.FilterDaily))
	assert.Equal(t, []string{"Stretch"}, titles(m.View()))

	stats := m.Stats()
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1.0, stats.CompletionRatio)

	assert.Error(t, m.SetFilter("Overdue"))
	assert.Equal(t, domain.FilterDaily, m.Filter())
}

func TestManager_UpdateDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: title})))
	}
	tasks := m.Tasks()

	changed := tasks[0]
	changed.Title = "A"
	require.NoError(t, await(t, m.UpdateTask(ctx, changed)))
	require.NoError(t, await(t, m.DeleteTask(ctx, tasks[1])))
	assert.Equal(t, []string{"A", "c"}, titles(m.Tasks()))

	require.NoError(t, await(t, m.ToggleCompletion(ctx, tasks[2])))
	require.NoError(t, await(t, m.ClearCompleted(ctx)))
	assert.Equal(t, []string{"A"}, titles(m.Tasks()))

	require.NoError(t, await(t, m.ClearAll(ctx)))
	assert.Empty(t, m.Tasks())
	assert.Empty(t, m.View())
}

func TestManager_IsLoadingWhileInFlight(t *testing.T) {
	ctx := context.Background()
	m, port, _ := newTestManager(t)

	release := port.hold()
	result := m.AddTask(ctx, domain.Task{Title: "Slow"})

	assert.True(t, m.IsLoading())
	assert.Empty(t, m.Tasks(), "nothing is committed before the round trip ends")
	assert.True(t, m.Snapshot().Loading)

	release()
	require.NoError(t, await(t, result))
	assert.False(t, m.IsLoading())
	assert.Len(t, m.Tasks(), 1)
}

func TestManager_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	ctx := context.Background()
	m, port, _ := newTestManager(t)

	release := port.hold()
	first := m.Refresh(ctx)
	require.Eventually(t, func() bool { return port.fetchCount() == 1 }, time.Second, time.Millisecond)
	second := m.Refresh(ctx)
	require.Eventually(t, func() bool { return m.IsLoading() }, time.Second, time.Millisecond)

	release()
	require.NoError(t, await(t, first))
	require.NoError(t, await(t, second))
	assert.LessOrEqual(t, port.fetchCount(), 2)
}

func TestManager_CancelledRefreshDoesNotFailSharedFetch(t *testing.T) {
	ctx := context.Background()
	m, port, _ := newTestManager(t)
	require.NoError(t, await(t, m.AddTask(ctx, validTask("Kept"))))

	release := port.hold()
	firstCtx, cancelFirst := context.WithCancel(ctx)
	first := m.Refresh(firstCtx)
	require.Eventually(t, func() bool { return port.fetchCount() == 1 }, time.Second, time.Millisecond)
	second := m.Refresh(ctx)
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, await(t, first), context.Canceled)

	release()
	require.NoError(t, await(t, second))
	assert.Equal(t, []string{"Kept"}, titles(m.Tasks()))
}

func TestManager_MutationBeforeRunHonorsContext(t *testing.T) {
	m := New(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, await(t, m.AddTask(ctx, validTask("Early"))), context.DeadlineExceeded)
	assert.ErrorIs(t, await(t, m.Refresh(ctx)), context.DeadlineExceeded)
}

func TestManager_ViewDropsExpiredDailyTaskWithoutMutation(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	m, _, _ := newTestManager(t, WithClock(clock.Now))

	daily := domain.Task{
		Title:        "Daily",
		Priority:     domain.PriorityMedium,
		IsDaily:      true,
		DailyTime:    "20:00",
		DailyEndDate: dayOffset(0),
	}
	require.NoError(t, await(t, m.AddTask(ctx, daily)))
	assert.Equal(t, []string{"Daily"}, titles(m.View()))

	clock.Advance(48 * time.Hour)

	assert.Empty(t, m.View())
	snap := m.Snapshot()
	assert.Empty(t, snap.Tasks)
	assert.Equal(t, 1, snap.Stats.Expired)
	assert.Equal(t, 0, snap.Stats.Pending)

	require.NoError(t, m.SetFilter(domain.FilterDaily))
	assert.Empty(t, m.View())
	assert.Len(t, m.Tasks(), 1, "the mirror keeps the expired task")
}

func TestManager_ConcurrentMutationsAllCommit(t *testing.T) {
	ctx := context.Background()
	m, _, errs := newTestManager(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: fmt.Sprintf("task %d", i)})))
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.Tasks(), n)
	assert.False(t, errs.Showing())

	require.NoError(t, await(t, m.Refresh(ctx)))
	assert.ElementsMatch(t, titles(m.Tasks()), titles(m.View()))
}

func TestManager_OperationTimeout(t *testing.T) {
	ctx := context.Background()
	m, port, errs := newTestManager(t, WithOperationTimeout(20*time.Millisecond))

	release := port.hold()
	defer release()

	err := await(t, m.AddTask(ctx, domain.Task{Title: "Stuck"}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, errs.Showing())
	assert.Empty(t, m.Tasks())
}

func TestManager_Stopped(t *testing.T) {
	m := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	cancel()
	m.Wait()

	assert.ErrorIs(t, await(t, m.AddTask(context.Background(), domain.Task{Title: "x"})), ErrStopped)
	assert.ErrorIs(t, m.SetFilter(domain.FilterDaily), ErrStopped)
	assert.Nil(t, m.View())
}

func TestManager_ValidateForm(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	require.NoError(t, await(t, m.AddTask(ctx, domain.Task{Title: "Buy milk"})))
	existing := m.Tasks()[0]

	res := m.ValidateForm(domain.Form{Title: "BUY MILK", DueTime: "10:00"}, "")
	assert.False(t, res.Valid())
	require.NotNil(t, res.Title)
	assert.Equal(t, domain.DuplicateTitle, res.Title.Kind)
	require.NotNil(t, res.Time)
	assert.Equal(t, domain.TimeWithoutDate, res.Time.Kind)

	res = m.ValidateForm(domain.Form{Title: "Buy milk"}, existing.ID)
	assert.True(t, res.Valid())
}
