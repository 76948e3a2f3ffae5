package task

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks a task inside a sorted view.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities so that High sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ParsePriority accepts any casing of Low, Medium or High.
func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Filter is a named partition of the task collection.
type Filter string

const (
	FilterPending   Filter = "Pending"
	FilterCompleted Filter = "Completed"
	FilterDaily     Filter = "Daily"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterPending, FilterCompleted, FilterDaily}

// ParseFilter accepts any casing of Pending, Completed or Daily.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Task is the core domain entity: either a one-off item with an optional due
// date and time, or a daily item that repeats until an optional end date.
//
// CompletedAt is the source of truth for completion. IsCompleted is kept only
// for compatibility with stored records and is rewritten by Normalize.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	IsCompleted  bool       `json:"is_completed"`
	CreatedAt    time.Time  `json:"created_at"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	DueTime      string     `json:"due_time,omitempty"`
	IsDaily      bool       `json:"is_daily"`
	DailyTime    string     `json:"daily_time,omitempty"`
	DailyEndDate *time.Time `json:"daily_end_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the task has a completion timestamp.
func (t Task) Completed() bool {
	return t.CompletedAt != nil
}

// DailyExpired reports whether a daily task's end date lies strictly before
// the calendar day of now.
func (t Task) DailyExpired(now time.Time) bool {
	if !t.IsDaily || t.DailyEndDate == nil {
		return false
	}
	return DayBefore(*t.DailyEndDate, now)
}

// MarkCompleted stamps the task as completed at the given instant.
func (t *Task) MarkCompleted(at time.Time) {
	t.CompletedAt = &at
	t.IsCompleted = true
}

// MarkPending clears the completion state.
func (t *Task) MarkPending() {
	t.CompletedAt = nil
	t.IsCompleted = false
}

// Toggle flips completion, using now when the task becomes completed.
func (t *Task) Toggle(now time.Time) {
	if t.Completed() {
		t.MarkPending()
		return
	}
	t.MarkCompleted(now)
}

// Normalize derives the legacy IsCompleted flag from CompletedAt.
func (t *Task) Normalize() {
	t.IsCompleted = t.CompletedAt != nil
}

// Clone returns a deep copy so callers can mutate the result freely.
func (t Task) Clone() Task {
	c := t
	c.DueDate = cloneTime(t.DueDate)
	c.DailyEndDate = cloneTime(t.DailyEndDate)
	c.CompletedAt = cloneTime(t.CompletedAt)
	return c
}

// CloneAll deep copies a slice of tasks.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
