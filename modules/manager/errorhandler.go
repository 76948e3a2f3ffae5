package manager

import (
	"errors"
	"sync"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/go-monolith/mono/pkg/types"
)

// ErrorReporter receives every failed mutation or load. Implementations must
// be safe for concurrent use.
type ErrorReporter interface {
	Report(err error)
}

// Report describes the error currently shown to the user.
type Report struct {
	Kind       domain.ErrorKind             `json:"kind"`
	Hint       domain.RecoveryHint          `json:"hint"`
	Message    string                       `json:"message"`
	Validation []domain.ValidationErrorKind `json:"validation,omitempty"`
	At         time.Time                    `json:"at"`
}

// ErrorHandler keeps the most recent report until it is acknowledged.
type ErrorHandler struct {
	mu      sync.RWMutex
	current *Report
	now     func() time.Time
	logger  types.Logger
}

var _ ErrorReporter = (*ErrorHandler)(nil)

// NewErrorHandler creates an ErrorHandler. A nil logger disables logging.
func NewErrorHandler(logger types.Logger) *ErrorHandler {
	return &ErrorHandler{now: time.Now, logger: logger}
}

// Report replaces the current report with one describing err.
func (h *ErrorHandler) Report(err error) {
	if err == nil {
		return
	}

	r := Report{
		Kind:    domain.KindOf(err),
		Hint:    domain.HintFor(err),
		Message: err.Error(),
		At:      h.now(),
	}
	var vErr *domain.ValidationFailedError
	if errors.As(err, &vErr) {
		r.Validation = vErr.Result.Kinds()
	}

	h.mu.Lock()
	h.current = &r
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Warn("Operation failed", "kind", r.Kind, "hint", r.Hint, "error", err)
	}
}

// Current returns the report being shown, if any.
func (h *ErrorHandler) Current() (Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Report{}, false
	}
	return *h.current, true
}

// Showing reports whether an unacknowledged error exists.
func (h *ErrorHandler) Showing() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current != nil
}

// Clear acknowledges the current report. It returns false when nothing was shown.
func (h *ErrorHandler) Clear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	shown := h.current != nil
	h.current = nil
	return shown
}
