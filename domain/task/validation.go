package task

import (
	"fmt"
	"regexp"
)

const (
	MinTitleLength       = 1
	MaxTitleLength       = 100
	MaxDescriptionLength = 500

	// NoDueTimeSentinel stands in for an absent due time when sorting. It
	// compares after every valid HH:MM string.
	NoDueTimeSentinel = "24:00"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidationErrorKind identifies a broken business rule.
type ValidationErrorKind string

const (
	EmptyTitle                ValidationErrorKind = "empty_title"
	TitleTooLong              ValidationErrorKind = "title_too_long"
	DescriptionTooLong        ValidationErrorKind = "description_too_long"
	InvalidTimeFormat         ValidationErrorKind = "invalid_time_format"
	PastDate                  ValidationErrorKind = "past_date"
	PastTime                  ValidationErrorKind = "past_time"
	DailyEndDateBeforeStart   ValidationErrorKind = "daily_end_date_before_start"
	InvalidDailyEndDate       ValidationErrorKind = "invalid_daily_end_date"
	TimeWithoutDate           ValidationErrorKind = "time_without_date"
	DuplicateTitle            ValidationErrorKind = "duplicate_title"
	InvalidPriority           ValidationErrorKind = "invalid_priority"
	ConflictingScheduleFields ValidationErrorKind = "conflicting_schedule_fields"
	DueDateAfterDailyEnd      ValidationErrorKind = "due_date_after_daily_end"
)

// IsTitleRule reports whether the kind comes from title validation.
func (k ValidationErrorKind) IsTitleRule() bool {
	return k == EmptyTitle || k == TitleTooLong || k == DuplicateTitle
}

// ValidationError is a single broken rule. Max carries the limit for the
// length rules and is zero otherwise.
type ValidationError struct {
	Kind ValidationErrorKind `json:"kind"`
	Max  int                 `json:"max,omitempty"`
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case EmptyTitle:
		return "title cannot be empty"
	case TitleTooLong:
		return fmt.Sprintf("title cannot exceed %d characters", e.Max)
	case DescriptionTooLong:
		return fmt.Sprintf("description cannot exceed %d characters", e.Max)
	case InvalidTimeFormat:
		return "time must use the HH:MM format"
	case PastDate:
		return "date cannot be in the past"
	case PastTime:
		return "time cannot be in the past"
	case DailyEndDateBeforeStart:
		return "daily end date cannot precede the start date"
	case InvalidDailyEndDate:
		return "daily end date cannot be in the past"
	case TimeWithoutDate:
		return "a due time requires a due date"
	case DuplicateTitle:
		return "a task with this title already exists"
	case InvalidPriority:
		return "priority must be Low, Medium or High"
	case ConflictingScheduleFields:
		return "daily and one-off schedule fields cannot be combined"
	case DueDateAfterDailyEnd:
		return "due date cannot be after the daily end date"
	}
	return string(e.Kind)
}

// Result is the outcome of a validation: an ordered list of broken rules.
type Result struct {
	Errors []ValidationError `json:"errors"`
}

// Valid reports whether no rule was broken.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// FirstError returns the head of the error list, used for single-message display.
func (r Result) FirstError() (ValidationError, bool) {
	if len(r.Errors) == 0 {
		return ValidationError{}, false
	}
	return r.Errors[0], true
}

// Has reports whether the result contains kind.
func (r Result) Has(kind ValidationErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds returns the error kinds in order.
func (r Result) Kinds() []ValidationErrorKind {
	kinds := make([]ValidationErrorKind, len(r.Errors))
	for i, e := range r.Errors {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *Result) add(kind ValidationErrorKind) {
	r.Errors = append(r.Errors, ValidationError{Kind: kind})
}

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
}
