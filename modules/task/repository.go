package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/storage"
)

// DefaultStorageKey is the key the task list is stored under.
const DefaultStorageKey = "tasks"

// Check inspects a candidate record against the current collection before a
// write. A non-nil error aborts the write and is returned unchanged.
type Check func(candidate domain.Task, existing []domain.Task) error

// Repository is the single authoritative copy of the task collection. The
// collection is loaded from storage on first use and every write goes through
// to storage before it is applied in memory, so a failed write changes nothing.
// All access is serialized by one mutex.
type Repository struct {
	store  storage.Storage
	key    string
	mu     sync.Mutex
	tasks  []domain.Task
	loaded bool
}

// NewRepository creates a repository persisting under key.
func NewRepository(store storage.Storage, key string) *Repository {
	if key == "" {
		key = DefaultStorageKey
	}
	return &Repository{store: store, key: key}
}

// FetchAll returns a copy of every task in storage order.
func (r *Repository) FetchAll(ctx context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}
	return domain.CloneAll(r.tasks), nil
}

// Save appends a new task.
func (r *Repository) Save(ctx context.Context, t domain.Task, checks ...Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSaveFailed, err)
	}
	if r.indexOf(t.ID) >= 0 {
		return fmt.Errorf("%w: id %s already exists", domain.ErrSaveFailed, t.ID)
	}
	if err := runChecks(t, r.tasks, checks); err != nil {
		return err
	}

	next := append(domain.CloneAll(r.tasks), t.Clone())
	if err := r.persist(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSaveFailed, err)
	}
	r.tasks = next
	return nil
}

// Update replaces the task with t.ID and returns the stored record. The
// original CreatedAt is kept.
func (r *Repository) Update(ctx context.Context, t domain.Task, checks ...Check) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrUpdateFailed, err)
	}
	idx := r.indexOf(t.ID)
	if idx < 0 {
		return domain.Task{}, fmt.Errorf("update %s: %w", t.ID, domain.ErrNotFound)
	}

	t.CreatedAt = r.tasks[idx].CreatedAt
	if err := runChecks(t, r.tasks, checks); err != nil {
		return domain.Task{}, err
	}

	next := domain.CloneAll(r.tasks)
	next[idx] = t.Clone()
	if err := r.persist(ctx, next); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrUpdateFailed, err)
	}
	r.tasks = next
	return t.Clone(), nil
}

// Toggle flips the completion state of the stored task with id.
func (r *Repository) Toggle(ctx context.Context, id string, now time.Time) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrUpdateFailed, err)
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Task{}, fmt.Errorf("toggle %s: %w", id, domain.ErrNotFound)
	}

	next := domain.CloneAll(r.tasks)
	next[idx].Toggle(now)
	if err := r.persist(ctx, next); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrUpdateFailed, err)
	}
	r.tasks = next
	return next[idx].Clone(), nil
}

// Delete removes the task with id and returns it.
func (r *Repository) Delete(ctx context.Context, id string) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrDeleteFailed, err)
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Task{}, fmt.Errorf("delete %s: %w", id, domain.ErrNotFound)
	}

	removed := r.tasks[idx].Clone()
	next := make([]domain.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:idx]...)
	next = append(next, r.tasks[idx+1:]...)
	if err := r.persist(ctx, next); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrDeleteFailed, err)
	}
	r.tasks = next
	return removed, nil
}

// ClearCompleted removes every completed task and returns how many were removed.
func (r *Repository) ClearCompleted(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIOFailed, err)
	}

	next := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.Completed() {
			next = append(next, t)
		}
	}
	removed := len(r.tasks) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := r.persist(ctx, next); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIOFailed, err)
	}
	r.tasks = next
	return removed, nil
}

// ClearAll removes every task and deletes the stored key.
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIOFailed, err)
	}
	if err := r.store.Delete(ctx, r.key); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIOFailed, err)
	}
	removed := len(r.tasks)
	r.tasks = nil
	return removed, nil
}

// load reads the collection from storage once. Callers hold mu.
func (r *Repository) load(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	data, found, err := r.store.Load(ctx, r.key)
	if err != nil {
		return err
	}
	var tasks []domain.Task
	if found {
		if tasks, err = decodeTasks(data); err != nil {
			return err
		}
	}
	r.tasks = tasks
	r.loaded = true
	return nil
}

func (r *Repository) persist(ctx context.Context, tasks []domain.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, r.key, data)
}

func (r *Repository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func runChecks(candidate domain.Task, existing []domain.Task, checks []Check) error {
	for _, check := range checks {
		if err := check(candidate, existing); err != nil {
			return err
		}
	}
	return nil
}

func encodeTasks(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return data, nil
}

func decodeTasks(data []byte) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks, nil
}
