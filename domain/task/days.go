package task

import "time"

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBefore reports whether the calendar day of a is strictly before the
// calendar day of b. Both are compared in b's location.
func DayBefore(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).Before(StartOfDay(b))
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).Equal(StartOfDay(b))
}

// Date builds a midnight time in loc. It is a convenience for adapters and tests.
func Date(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
