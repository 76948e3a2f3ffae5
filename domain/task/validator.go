package task

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validator runs the task business rules. It holds no state besides the clock,
// so one instance can be shared between goroutines.
type Validator struct {
	now func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock replaces time.Now as the source of "now".
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Now returns the validator's current time.
func (v *Validator) Now() time.Time {
	return v.now()
}

// ValidateTitle checks emptiness, length and case-insensitive uniqueness
// against existing tasks other than excludeID. An empty title reports only
// EmptyTitle.
func (v *Validator) ValidateTitle(title string, existing []Task, excludeID string) Result {
	var r Result

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		r.add(EmptyTitle)
		return r
	}

	n := utf8.RuneCountInString(trimmed)
	if n > MaxTitleLength {
		r.Errors = append(r.Errors, ValidationError{Kind: TitleTooLong, Max: MaxTitleLength})
	}
	if n < MinTitleLength {
		r.add(EmptyTitle)
	}

	for _, t := range existing {
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(t.Title), trimmed) {
			r.add(DuplicateTitle)
			break
		}
	}
	return r
}

// ValidateDescription checks the trimmed description length.
func (v *Validator) ValidateDescription(text string) Result {
	var r Result
	if utf8.RuneCountInString(strings.TrimSpace(text)) > MaxDescriptionLength {
		r.Errors = append(r.Errors, ValidationError{Kind: DescriptionTooLong, Max: MaxDescriptionLength})
	}
	return r
}

// ValidateTimeFormat checks an HH:MM string. An empty string is valid. A
// well-formed time is also rejected with PastTime when that time of day has
// already passed today, whatever date it is later paired with.
func (v *Validator) ValidateTimeFormat(hhmm string) Result {
	var r Result
	if hhmm == "" {
		return r
	}

	hour, minute, ok := parseTimeOfDay(hhmm)
	if !ok {
		r.add(InvalidTimeFormat)
		return r
	}

	now := v.now()
	y, m, d := now.Date()
	if time.Date(y, m, d, hour, minute, 0, 0, now.Location()).Before(now) {
		r.add(PastTime)
	}
	return r
}

// ValidateDate rejects dates before today. A missing date is valid unless required.
func (v *Validator) ValidateDate(date *time.Time, required bool) Result {
	var r Result
	if date == nil {
		if required {
			r.add(PastDate)
		}
		return r
	}
	if DayBefore(*date, v.now()) {
		r.add(PastDate)
	}
	return r
}

// ValidateDueDateTime checks a one-off schedule.
func (v *Validator) ValidateDueDateTime(dueDate *time.Time, dueTime string) Result {
	var r Result
	if dueTime != "" && dueDate == nil {
		r.add(TimeWithoutDate)
		return r
	}
	r.merge(v.ValidateDate(dueDate, false))
	r.merge(v.ValidateTimeFormat(dueTime))
	return r
}

// ValidateDailyTask checks a daily schedule that starts on startDate. A zero
// startDate skips the start comparison.
func (v *Validator) ValidateDailyTask(dailyTime string, dailyEndDate *time.Time, startDate time.Time) Result {
	var r Result
	r.merge(v.ValidateTimeFormat(dailyTime))

	if dailyEndDate == nil {
		return r
	}
	if !startDate.IsZero() && DayBefore(*dailyEndDate, startDate) {
		r.add(DailyEndDateBeforeStart)
	}
	if DayBefore(*dailyEndDate, v.now()) {
		r.add(InvalidDailyEndDate)
	}
	return r
}

// ValidateSchedule checks that one-off and daily fields are not mixed.
func (v *Validator) ValidateSchedule(t Task) Result {
	var r Result
	if t.IsDaily {
		if t.DueDate != nil || t.DueTime != "" {
			r.add(ConflictingScheduleFields)
		}
	} else if t.DailyTime != "" || t.DailyEndDate != nil {
		r.add(ConflictingScheduleFields)
	}
	if t.DueDate != nil && t.DailyEndDate != nil && t.DueDate.After(*t.DailyEndDate) {
		r.add(DueDateAfterDailyEnd)
	}
	return r
}

// ValidateAll aggregates every rule for t in a fixed order: title,
// description, priority, due date and time, daily schedule, schedule
// consistency.
func (v *Validator) ValidateAll(t Task, existing []Task) Result {
	var r Result
	r.merge(v.ValidateTitle(t.Title, existing, t.ID))
	r.merge(v.ValidateDescription(t.Description))
	if !t.Priority.Valid() {
		r.add(InvalidPriority)
	}
	r.merge(v.ValidateDueDateTime(t.DueDate, t.DueTime))
	if t.IsDaily {
		r.merge(v.ValidateDailyTask(t.DailyTime, t.DailyEndDate, t.CreatedAt))
	}
	r.merge(v.ValidateSchedule(t))
	return r
}

func parseTimeOfDay(s string) (hour, minute int, ok bool) {
	if !timeOfDayPattern.MatchString(s) {
		return 0, 0, false
	}
	h, m, _ := strings.Cut(s, ":")
	hour, _ = strconv.Atoi(h)
	minute, _ = strconv.Atoi(m)
	return hour, minute, true
}

// NormalizeTimeOfDay pads a valid H:MM value to HH:MM so that the lexical
// sort on due time stays correct. Invalid input is returned unchanged.
func NormalizeTimeOfDay(s string) string {
	hour, minute, ok := parseTimeOfDay(s)
	if !ok {
		return s
	}
	return twoDigits(hour) + ":" + twoDigits(minute)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
