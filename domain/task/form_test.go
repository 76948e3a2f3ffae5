package task

import (
	"errors"
	"fmt"
	"testing"
)

func TestForm_BuildDropsInactiveSchedule(t *testing.T) {
	f := Form{
		Title:        "Gym",
		DueDate:      daysFromNow(1),
		DueTime:      "7:30",
		DailyTime:    "6:00",
		DailyEndDate: daysFromNow(10),
	}

	oneOff := f.Build("id-1", testNow)
	if oneOff.DailyTime != "" || oneOff.DailyEndDate != nil {
		t.Errorf("Build() kept daily fields on a one-off task: %+v", oneOff)
	}
	if oneOff.DueTime != "07:30" {
		t.Errorf("DueTime = %q, want 07:30", oneOff.DueTime)
	}
	if oneOff.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want Medium", oneOff.Priority)
	}

	f.IsDaily = true
	daily := f.Build("id-1", testNow)
	if daily.DueDate != nil || daily.DueTime != "" {
		t.Errorf("Build() kept due fields on a daily task: %+v", daily)
	}
	if daily.DailyTime != "06:00" {
		t.Errorf("DailyTime = %q, want 06:00", daily.DailyTime)
	}
}

func TestForm_BuildNormalizesPriority(t *testing.T) {
	tests := []struct {
		in   Priority
		want Priority
	}{
		{"", PriorityMedium},
		{"high", PriorityHigh},
		{"LOW", PriorityLow},
		{" medium ", PriorityMedium},
		{"Urgent", "Urgent"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got := Form{Title: "Read", Priority: tt.in}.Build("id-1", testNow)
			if got.Priority != tt.want {
				t.Errorf("Priority = %q, want %q", got.Priority, tt.want)
			}
		})
	}

	res := newTestValidator().ValidateAll(Form{Title: "Read", Priority: "high"}.Build("id-1", testNow), nil)
	if !res.Valid() {
		t.Errorf("lower-case priority rejected: %v", res.Kinds())
	}
}

func TestValidator_ValidateForm(t *testing.T) {
	v := newTestValidator()
	existing := []Task{{ID: "1", Title: "Gym"}}

	res := v.ValidateForm(Form{Title: "gym", DueTime: "18:00"}, existing, "")
	if res.Title == nil || res.Title.Kind != DuplicateTitle {
		t.Errorf("Title error = %v, want DuplicateTitle", res.Title)
	}
	if res.Time == nil || res.Time.Kind != TimeWithoutDate {
		t.Errorf("Time error = %v, want TimeWithoutDate", res.Time)
	}
	if res.Date != nil {
		t.Errorf("Date error = %v, want none", res.Date)
	}
	if res.Valid() {
		t.Error("Valid() = true for a form with errors")
	}

	res = v.ValidateForm(Form{Title: "Gym", IsDaily: true, DailyEndDate: daysFromNow(-1), DueDate: daysFromNow(-5)}, existing, "1")
	if res.Title != nil {
		t.Errorf("Title error = %v, want none when editing the same task", res.Title)
	}
	if res.Daily == nil || res.Daily.Kind != DailyEndDateBeforeStart {
		t.Errorf("Daily error = %v, want DailyEndDateBeforeStart", res.Daily)
	}
	if res.Time != nil || res.Date != nil {
		t.Error("one-off field errors reported for a daily form")
	}
	if res.All.Has(PastDate) || res.All.Has(ConflictingScheduleFields) {
		t.Errorf("All = %v, want inactive due date ignored", res.All.Kinds())
	}

	res = v.ValidateForm(Form{Title: "Read", Priority: PriorityHigh, DueDate: daysFromNow(1), DueTime: "20:00"}, existing, "")
	if !res.Valid() {
		t.Errorf("Valid() = false, errors %v", res.All.Kinds())
	}
}

func TestErrors_KindOf(t *testing.T) {
	validation := &ValidationFailedError{Result: Result{Errors: []ValidationError{{Kind: PastDate}}}}
	titleValidation := &ValidationFailedError{Result: Result{Errors: []ValidationError{{Kind: DuplicateTitle}, {Kind: PastDate}}}}

	tests := []struct {
		name string
		err  error
		want ErrorKind
		hint RecoveryHint
	}{
		{"not found", fmt.Errorf("update %s: %w", "x", ErrNotFound), KindNotFound, HintRefreshAndRetry},
		{"save failed with cause", fmt.Errorf("%w: %w", ErrSaveFailed, errors.New("disk full")), KindSaveFailed, HintCheckStorageAndRetry},
		{"load failed", ErrLoadFailed, KindLoadFailed, HintCheckStorageAndRetry},
		{"validation", validation, KindValidationFailed, HintChooseFutureDateTime},
		{"title validation", fmt.Errorf("add: %w", titleValidation), KindInvalidTitle, HintUseDifferentTitle},
		{"unknown", errors.New("boom"), KindUnknown, HintRetryLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
			if got := HintFor(tt.err); got != tt.hint {
				t.Errorf("HintFor() = %v, want %v", got, tt.hint)
			}
		})
	}
}

func TestValidationFailedError_Is(t *testing.T) {
	titleErr := &ValidationFailedError{Result: Result{Errors: []ValidationError{{Kind: EmptyTitle}}}}
	otherErr := &ValidationFailedError{Result: Result{Errors: []ValidationError{{Kind: InvalidPriority}}}}

	if !errors.Is(titleErr, ErrValidationFailed) || !errors.Is(titleErr, ErrInvalidTitle) {
		t.Error("title failure should match ErrValidationFailed and ErrInvalidTitle")
	}
	if !errors.Is(otherErr, ErrValidationFailed) || errors.Is(otherErr, ErrInvalidTitle) {
		t.Error("non-title failure should match ErrValidationFailed only")
	}
	if KindOf(nil) != "" {
		t.Error("KindOf(nil) should be empty")
	}
	if KindNotFound.Sentinel() != ErrNotFound || KindUnknown.Sentinel() != nil {
		t.Error("Sentinel() mismatch")
	}
}
