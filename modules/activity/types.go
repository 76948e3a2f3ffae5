package activity

import (
	"sync"
	"time"
)

// Entry types.
const (
	TypeTaskAdded     = "task_added"
	TypeTaskUpdated   = "task_updated"
	TypeTaskCompleted = "task_completed"
	TypeTaskReopened  = "task_reopened"
	TypeTaskDeleted   = "task_deleted"
	TypeTasksCleared  = "tasks_cleared"
)

// Entry is one recorded task event.
type Entry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultMaxEntries is the default number of entries the log retains.
const DefaultMaxEntries = 1000

// Log keeps the most recent entries in arrival order.
type Log struct {
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
}

// NewLog creates a log holding at most maxEntries entries.
func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		entries:    make([]Entry, 0),
		maxEntries: maxEntries,
	}
}

// Append records e, dropping the oldest entries beyond the limit.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	if excess := len(l.entries) - l.maxEntries; excess > 0 {
		l.entries = l.entries[excess:]
	}
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (l *Log) Recent(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ListActivityRequest is the request for list-activity.
type ListActivityRequest struct {
	Limit int `json:"limit"`
}

// ListActivityResponse is the response for list-activity.
type ListActivityResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}
