package task

import (
	"cmp"
	"slices"
	"time"
)

// Matches reports whether t belongs to the filter's partition at now.
// Daily-expired tasks match no filter.
func (f Filter) Matches(t Task, now time.Time) bool {
	if t.DailyExpired(now) {
		return false
	}
	switch f {
	case FilterPending:
		return !t.Completed()
	case FilterCompleted:
		return t.Completed()
	case FilterDaily:
		return t.IsDaily
	}
	return false
}

// View filters tasks and sorts the result by due date (missing dates last),
// then due time (missing times compare as NoDueTimeSentinel), then priority
// with High first. The sort is stable, so ties keep storage order. The input
// slice is not modified.
func View(tasks []Task, filter Filter, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t, now) {
			out = append(out, t.Clone())
		}
	}
	slices.SortStableFunc(out, Compare)
	return out
}

// Compare orders two tasks for a view.
func Compare(a, b Task) int {
	switch {
	case a.DueDate == nil && b.DueDate != nil:
		return 1
	case a.DueDate != nil && b.DueDate == nil:
		return -1
	case a.DueDate != nil && b.DueDate != nil:
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(sortableDueTime(a), sortableDueTime(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
}

func sortableDueTime(t Task) string {
	if t.DueTime == "" {
		return NoDueTimeSentinel
	}
	return t.DueTime
}

// Stats summarizes a task collection.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Daily     int `json:"daily"`
	Expired   int `json:"expired"`
	// CompletionRatio is Completed over Total, in [0,1]. Expired daily tasks
	// count towards Total only.
	CompletionRatio float64 `json:"completion_ratio"`
}

// Summarize counts tasks per filter at now.
func Summarize(tasks []Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.DailyExpired(now) {
			s.Expired++
			continue
		}
		if t.Completed() {
			s.Completed++
		} else {
			s.Pending++
		}
		if t.IsDaily {
			s.Daily++
		}
	}
	if s.Total > 0 {
		s.CompletionRatio = float64(s.Completed) / float64(s.Total)
	}
	return s
}
