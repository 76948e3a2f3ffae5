package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/storage"
	"github.com/example/todo-tracker/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dayOffset(n int) *time.Time {
	d := time.Date(2025, 6, 15+n, 0, 0, 0, 0, time.UTC)
	return &d
}

// testClock is a clock tests can move forward.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBackend = errors.New("backend unavailable")

// gatedPort forwards to a real TaskPort. It can fail every call and can hold
// calls until released.
type gatedPort struct {
	task.TaskPort
	mu      sync.Mutex
	fail    error
	gate    chan struct{}
	fetches int
}

func (p *gatedPort) before(ctx context.Context) error {
	p.mu.Lock()
	gate, fail := p.gate, p.fail
	p.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fail
}

func (p *gatedPort) setFail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

// hold makes every following call wait until the returned func is called.
func (p *gatedPort) hold() (release func()) {
	gate := make(chan struct{})
	p.mu.Lock()
	p.gate = gate
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.gate = nil
		p.mu.Unlock()
		close(gate)
	}
}

func (p *gatedPort) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if err := p.before(ctx); err != nil {
		return domain.Task{}, err
	}
	return p.TaskPort.AddTask(ctx, t)
}

func (p *gatedPort) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if err := p.before(ctx); err != nil {
		return domain.Task{}, err
	}
	return p.TaskPort.UpdateTask(ctx, t)
}

func (p *gatedPort) ToggleCompletion(ctx context.Context, t domain.Task) (domain.Task, error) {
	if err := p.before(ctx); err != nil {
		return domain.Task{}, err
	}
	return p.TaskPort.ToggleCompletion(ctx, t)
}

func (p *gatedPort) DeleteTask(ctx context.Context, t domain.Task) error {
	if err := p.before(ctx); err != nil {
		return err
	}
	return p.TaskPort.DeleteTask(ctx, t)
}

func (p *gatedPort) ClearCompletedTasks(ctx context.Context) (int, error) {
	if err := p.before(ctx); err != nil {
		return 0, err
	}
	return p.TaskPort.ClearCompletedTasks(ctx)
}

func (p *gatedPort) ClearAllTasks(ctx context.Context) (int, error) {
	if err := p.before(ctx); err != nil {
		return 0, err
	}
	return p.TaskPort.ClearAllTasks(ctx)
}

func (p *gatedPort) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	p.mu.Lock()
	p.fetches++
	p.mu.Unlock()
	if err := p.before(ctx); err != nil {
		return nil, err
	}
	return p.TaskPort.FetchTasks(ctx)
}

func (p *gatedPort) fetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetches
}

// newTestManager starts a Manager over an in-memory task core.
func newTestManager(t *testing.T, opts ...Option) (*Manager, *gatedPort, *ErrorHandler) {
	t.Helper()

	repo := task.NewRepository(storage.NewMemoryStorage(), "")
	uc := task.NewUseCase(repo, nil, task.WithClock(fixedClock))
	port := &gatedPort{TaskPort: task.NewLocalAdapter(uc)}
	errs := NewErrorHandler(nil)
	errs.now = fixedClock

	m := New(port, errs, append([]Option{WithClock(fixedClock)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(func() {
		cancel()
		m.Wait()
	})
	return m, port, errs
}

// await reads the single result of an operation.
func await(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(5 * time.Second):
		require.FailNow(t, "operation did not complete")
		return nil
	}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func validTask(title string) domain.Task {
	return domain.Task{Title: title, Priority: domain.PriorityMedium}
}
