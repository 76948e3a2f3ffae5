package task

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/storage"
	"github.com/go-monolith/mono/pkg/types"
)

var errDiskFull = errors.New("disk full")

// faultyStorage wraps MemoryStorage and fails selected operations on demand.
type faultyStorage struct {
	*storage.MemoryStorage
	mu         sync.Mutex
	failLoad   bool
	failSave   bool
	failDelete bool
	saves      int
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (s *faultyStorage) set(fn func(*faultyStorage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *faultyStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	fail := s.failLoad
	s.mu.Unlock()
	if fail {
		return nil, false, errDiskFull
	}
	return s.MemoryStorage.Load(ctx, key)
}

func (s *faultyStorage) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	fail := s.failSave
	if !fail {
		s.saves++
	}
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.MemoryStorage.Save(ctx, key, value)
}

func (s *faultyStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := s.failDelete
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.MemoryStorage.Delete(ctx, key)
}

func (s *faultyStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dayOffset(n int) *time.Time {
	d := time.Date(2025, 6, 15+n, 0, 0, 0, 0, time.UTC)
	return &d
}

// sequentialIDs returns an id generator yielding task-1, task-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "task-" + strconv.Itoa(n)
	}
}

func newTestUseCase(store storage.Storage) *UseCase {
	repo := NewRepository(store, "")
	return NewUseCase(repo, nil, WithClock(fixedClock), WithIDGenerator(sequentialIDs()))
}

func newTask(id, title string) domain.Task {
	return domain.Task{ID: id, Title: title, Priority: domain.PriorityMedium, CreatedAt: testNow}
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
