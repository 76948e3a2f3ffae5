package task

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTitle indicates the title broke a title rule.
	ErrInvalidTitle = errors.New("invalid task title")
	// ErrValidationFailed indicates the task broke at least one business rule.
	ErrValidationFailed = errors.New("task validation failed")
	// ErrNotFound indicates the task id is not in the store.
	ErrNotFound = errors.New("task not found")
	// ErrSaveFailed indicates a new task could not be persisted.
	ErrSaveFailed = errors.New("failed to save task")
	// ErrLoadFailed indicates the task collection could not be read.
	ErrLoadFailed = errors.New("failed to load tasks")
	// ErrDeleteFailed indicates a task could not be removed.
	ErrDeleteFailed = errors.New("failed to delete task")
	// ErrUpdateFailed indicates a task change could not be persisted.
	ErrUpdateFailed = errors.New("failed to update task")
	// ErrIOFailed indicates a bulk storage operation failed.
	ErrIOFailed = errors.New("storage operation failed")
)

// ErrorKind classifies a domain error.
type ErrorKind string

const (
	KindInvalidTitle     ErrorKind = "invalid_title"
	KindValidationFailed ErrorKind = "validation_failed"
	KindNotFound         ErrorKind = "not_found"
	KindSaveFailed       ErrorKind = "save_failed"
	KindLoadFailed       ErrorKind = "load_failed"
	KindDeleteFailed     ErrorKind = "delete_failed"
	KindUpdateFailed     ErrorKind = "update_failed"
	KindIOFailed         ErrorKind = "io_failed"
	KindUnknown          ErrorKind = "unknown"
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindSaveFailed, ErrSaveFailed},
	{KindLoadFailed, ErrLoadFailed},
	{KindDeleteFailed, ErrDeleteFailed},
	{KindUpdateFailed, ErrUpdateFailed},
	{KindIOFailed, ErrIOFailed},
	{KindInvalidTitle, ErrInvalidTitle},
	{KindValidationFailed, ErrValidationFailed},
}

// Sentinel returns the sentinel error for kind, or nil for KindUnknown.
func (k ErrorKind) Sentinel() error {
	for _, ks := range kindSentinels {
		if ks.kind == k {
			return ks.err
		}
	}
	return nil
}

// ValidationFailedError carries the validation result that rejected a task.
type ValidationFailedError struct {
	Result Result
}

func (e *ValidationFailedError) Error() string {
	if first, ok := e.Result.FirstError(); ok {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, first.Error())
	}
	return ErrValidationFailed.Error()
}

// Kind is InvalidTitle when a title rule failed first and ValidationFailed otherwise.
func (e *ValidationFailedError) Kind() ErrorKind {
	if first, ok := e.Result.FirstError(); ok && first.Kind.IsTitleRule() {
		return KindInvalidTitle
	}
	return KindValidationFailed
}

// Is matches ErrValidationFailed and, for title failures, ErrInvalidTitle.
func (e *ValidationFailedError) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return true
	case ErrInvalidTitle:
		return e.Kind() == KindInvalidTitle
	}
	return false
}

// KindOf classifies err. Unrecognized errors are KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return vErr.Kind()
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindUnknown
}

// RecoveryHint is a stable code naming what the user can do about an error.
// Rendering it as text is up to the presentation layer.
type RecoveryHint string

const (
	HintEnterTitle           RecoveryHint = "enter-title"
	HintShortenTitle         RecoveryHint = "shorten-title"
	HintShortenDescription   RecoveryHint = "shorten-description"
	HintUseTimeFormat        RecoveryHint = "use-hh-mm-format"
	HintChooseFutureDateTime RecoveryHint = "choose-future-date-or-time"
	HintChooseLaterEndDate   RecoveryHint = "choose-later-end-date"
	HintChooseValidEndDate   RecoveryHint = "choose-valid-end-date"
	HintSetDateOrClearTime   RecoveryHint = "set-date-or-clear-time"
	HintUseDifferentTitle    RecoveryHint = "use-different-title"
	HintChoosePriority       RecoveryHint = "choose-valid-priority"
	HintChooseOneSchedule    RecoveryHint = "choose-one-schedule"
	HintMoveDueDate          RecoveryHint = "move-due-date-before-end-date"
	HintEnterValidTitle      RecoveryHint = "enter-valid-title"
	HintCorrectInput         RecoveryHint = "correct-input"
	HintRefreshAndRetry      RecoveryHint = "refresh-and-retry"
	HintCheckStorageAndRetry RecoveryHint = "check-storage-and-retry"
	HintRetryLater           RecoveryHint = "retry-later"
)

// Hint returns the recovery hint for a validation error kind.
func (k ValidationErrorKind) Hint() RecoveryHint {
	switch k {
	case EmptyTitle:
		return HintEnterTitle
	case TitleTooLong:
		return HintShortenTitle
	case DescriptionTooLong:
		return HintShortenDescription
	case InvalidTimeFormat:
		return HintUseTimeFormat
	case PastDate, PastTime:
		return HintChooseFutureDateTime
	case DailyEndDateBeforeStart:
		return HintChooseLaterEndDate
	case InvalidDailyEndDate:
		return HintChooseValidEndDate
	case TimeWithoutDate:
		return HintSetDateOrClearTime
	case DuplicateTitle:
		return HintUseDifferentTitle
	case InvalidPriority:
		return HintChoosePriority
	case ConflictingScheduleFields:
		return HintChooseOneSchedule
	case DueDateAfterDailyEnd:
		return HintMoveDueDate
	}
	return HintCorrectInput
}

// Hint returns the recovery hint for a domain error kind.
func (k ErrorKind) Hint() RecoveryHint {
	switch k {
	case KindInvalidTitle:
		return HintEnterValidTitle
	case KindValidationFailed:
		return HintCorrectInput
	case KindNotFound:
		return HintRefreshAndRetry
	case KindSaveFailed, KindLoadFailed, KindDeleteFailed, KindUpdateFailed, KindIOFailed:
		return HintCheckStorageAndRetry
	}
	return HintRetryLater
}

// HintFor picks the most specific hint for err: the first validation error's
// hint when err is a validation failure, the kind's hint otherwise.
func HintFor(err error) RecoveryHint {
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		if first, ok := vErr.Result.FirstError(); ok {
			return first.Kind.Hint()
		}
	}
	return KindOf(err).Hint()
}
