package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/task"
	"golang.org/x/sync/singleflight"
)

// ErrStopped is returned for operations issued after Run has returned.
var ErrStopped = errors.New("manager stopped")

// Manager holds the in-memory mirror of the task collection and the active
// filter. Both are owned by the Run goroutine;
// every read and every commit is a message processed by that loop, so state
// is never touched from two goroutines at once.
//
// Mutations do their I/O on their own goroutine and then hand the result back
// to the loop. Concurrent mutations of the same task are not deduplicated and
// commit in completion order. The view is derived on every read, so daily
// tasks drop out of it as soon as their end date has passed.
type Manager struct {
	port      task.TaskPort
	reporter  ErrorReporter
	validator *domain.Validator
	now       func() time.Time
	timeout   time.Duration

	ops     chan func(*state)
	done    chan struct{}
	fetches singleflight.Group

	state state
}

type state struct {
	tasks   []domain.Task
	filter  domain.Filter
	loading int
}

// Snapshot is a consistent read of the manager state.
type Snapshot struct {
	Filter  domain.Filter `json:"filter"`
	Tasks   []domain.Task `json:"tasks"`
	Stats   domain.Stats  `json:"stats"`
	Loading bool          `json:"loading"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for views, statistics and form validation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithOperationTimeout bounds each repository round trip. Zero means no bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// New creates a Manager. A nil reporter gets an ErrorHandler without logging.
// Every other method blocks until Run is started.
func New(port task.TaskPort, reporter ErrorReporter, opts ...Option) *Manager {
	if reporter == nil {
		reporter = NewErrorHandler(nil)
	}
	m := &Manager{
		port:     port,
		reporter: reporter,
		now:      time.Now,
		ops:      make(chan func(*state)),
		done:     make(chan struct{}),
		state: state{
			filter: domain.FilterPending,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.validator = domain.NewValidator(domain.WithClock(m.now))
	return m
}

// Run processes reads and commits until ctx is cancelled. Call it once.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(m.done)
			return
		case op := <-m.ops:
			op(&m.state)
		}
	}
}

// Wait blocks until Run has returned.
func (m *Manager) Wait() {
	<-m.done
}

// call runs fn on the loop and waits for it. It fails with ErrStopped once
// the loop has returned, or with ctx's error if ctx ends before the loop picks
// fn up (for example while Run has not been started yet).
func (m *Manager) call(ctx context.Context, fn func(*state)) error {
	finished := make(chan struct{})
	select {
	case m.ops <- func(s *state) { fn(s); close(finished) }:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// read runs fn on the loop. Reads wait for Run to start.
func (m *Manager) read(fn func(*state)) {
	_ = m.call(context.Background(), fn)
}

// AddTask stores t and appends the stored record to the mirror.
func (m *Manager) AddTask(ctx context.Context, t domain.Task) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		added, err := m.port.AddTask(ctx, t)
		if err != nil {
			return nil, err
		}
		return func(s *state) { s.tasks = append(s.tasks, added) }, nil
	})
}

// UpdateTask stores t and replaces the mirrored record.
func (m *Manager) UpdateTask(ctx context.Context, t domain.Task) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		updated, err := m.port.UpdateTask(ctx, t)
		if err != nil {
			return nil, err
		}
		return func(s *state) { s.replace(updated) }, nil
	})
}

// ToggleCompletion flips the stored completion state of t.
func (m *Manager) ToggleCompletion(ctx context.Context, t domain.Task) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		toggled, err := m.port.ToggleCompletion(ctx, t)
		if err != nil {
			return nil, err
		}
		return func(s *state) { s.replace(toggled) }, nil
	})
}

// DeleteTask removes t.
func (m *Manager) DeleteTask(ctx context.Context, t domain.Task) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		if err := m.port.DeleteTask(ctx, t); err != nil {
			return nil, err
		}
		return func(s *state) { s.remove(t.ID) }, nil
	})
}

// ClearCompleted removes every completed task.
func (m *Manager) ClearCompleted(ctx context.Context) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		if _, err := m.port.ClearCompletedTasks(ctx); err != nil {
			return nil, err
		}
		return func(s *state) {
			s.tasks = slices.DeleteFunc(s.tasks, func(t domain.Task) bool { return t.Completed() })
		}, nil
	})
}

// ClearAll removes every task.
func (m *Manager) ClearAll(ctx context.Context) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		if _, err := m.port.ClearAllTasks(ctx); err != nil {
			return nil, err
		}
		return func(s *state) { s.tasks = nil }, nil
	})
}

// Refresh reloads the mirror from the repository. Concurrent refreshes share
// one fetch. The shared fetch is detached from the caller that started it, so
// one cancelled caller does not fail the others; it is still bounded by the
// operation timeout.
func (m *Manager) Refresh(ctx context.Context) <-chan error {
	return m.mutate(ctx, func(ctx context.Context) (func(*state), error) {
		fetch := m.fetches.DoChan("fetch", func() (any, error) {
			fetchCtx, cancel := m.operationContext(context.WithoutCancel(ctx))
			defer cancel()
			return m.port.FetchTasks(fetchCtx)
		})

		var res singleflight.Result
		select {
		case res = <-fetch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		tasks := domain.CloneAll(res.Val.([]domain.Task))
		return func(s *state) { s.tasks = tasks }, nil
	})
}

// mutate runs work off the loop and commits its result on the loop. The
// returned channel yields exactly one value and is then closed. A failure is
// reported and nothing is committed.
func (m *Manager) mutate(ctx context.Context, work func(context.Context) (func(*state), error)) <-chan error {
	result := make(chan error, 1)
	if err := m.call(ctx, func(s *state) { s.loading++ }); err != nil {
		result <- err
		close(result)
		return result
	}

	go func() {
		defer close(result)

		opCtx, cancel := m.operationContext(ctx)
		defer cancel()
		commit, err := work(opCtx)

		// The commit must reach the loop even if ctx has ended meanwhile.
		callErr := m.call(context.Background(), func(s *state) {
			s.loading--
			if err != nil {
				m.reporter.Report(err)
				return
			}
			commit(s)
		})
		if callErr != nil {
			if err != nil {
				m.reporter.Report(err)
			} else {
				err = ErrStopped
			}
		}
		result <- err
	}()
	return result
}

func (m *Manager) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}

// SetFilter changes the active filter.
func (m *Manager) SetFilter(f domain.Filter) error {
	if !slices.Contains(domain.Filters, f) {
		return fmt.Errorf("unknown filter %q", f)
	}
	return m.call(context.Background(), func(s *state) { s.filter = f })
}

// View returns the mirror filtered by the active filter and sorted, as of now.
func (m *Manager) View() []domain.Task {
	var out []domain.Task
	m.read(func(s *state) { out = domain.View(s.tasks, s.filter, m.now()) })
	return out
}

// Tasks returns the whole mirror in storage order.
func (m *Manager) Tasks() []domain.Task {
	var out []domain.Task
	m.read(func(s *state) { out = domain.CloneAll(s.tasks) })
	return out
}

// Filter returns the active filter.
func (m *Manager) Filter() domain.Filter {
	var f domain.Filter
	m.read(func(s *state) { f = s.filter })
	return f
}

// Stats summarizes the mirror.
func (m *Manager) Stats() domain.Stats {
	var st domain.Stats
	m.read(func(s *state) { st = domain.Summarize(s.tasks, m.now()) })
	return st
}

// IsLoading reports whether any operation is in flight.
func (m *Manager) IsLoading() bool {
	var loading bool
	m.read(func(s *state) { loading = s.loading > 0 })
	return loading
}

// Snapshot reads filter, view, statistics and loading state in one step, all
// against the same instant.
func (m *Manager) Snapshot() Snapshot {
	var snap Snapshot
	m.read(func(s *state) {
		now := m.now()
		snap = Snapshot{
			Filter:  s.filter,
			Tasks:   domain.View(s.tasks, s.filter, now),
			Stats:   domain.Summarize(s.tasks, now),
			Loading: s.loading > 0,
		}
	})
	return snap
}

// ValidateForm validates f against the mirror. excludeID is the id of the
// task being edited, or empty for a new one.
func (m *Manager) ValidateForm(f domain.Form, excludeID string) domain.FormResult {
	return m.validator.ValidateForm(f, m.Tasks(), excludeID)
}

// Validator returns the validator sharing the manager's clock.
func (m *Manager) Validator() *domain.Validator {
	return m.validator
}

func (s *state) replace(t domain.Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
	s.tasks = append(s.tasks, t)
}

func (s *state) remove(id string) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}
