package task

import "time"

// Form is the editable input behind a create or edit screen. Both schedule
// kinds may be filled in while editing; Build keeps only the active one.
type Form struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	DueTime      string     `json:"due_time,omitempty"`
	IsDaily      bool       `json:"is_daily"`
	DailyTime    string     `json:"daily_time,omitempty"`
	DailyEndDate *time.Time `json:"daily_end_date,omitempty"`
}

// Build turns the form into a task. Fields of the inactive schedule kind are
// dropped and times are zero padded. Priority is matched case-insensitively;
// an empty one becomes Medium and an unknown one is kept for the validator
// to reject.
func (f Form) Build(id string, createdAt time.Time) Task {
	t := Task{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		CreatedAt:   createdAt,
		IsDaily:     f.IsDaily,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	} else if p, err := ParsePriority(string(t.Priority)); err == nil {
		t.Priority = p
	}
	if f.IsDaily {
		t.DailyTime = NormalizeTimeOfDay(f.DailyTime)
		t.DailyEndDate = cloneTime(f.DailyEndDate)
	} else {
		t.DueDate = cloneTime(f.DueDate)
		t.DueTime = NormalizeTimeOfDay(f.DueTime)
	}
	return t
}

// FormResult holds the first error per field group plus the full result for
// the task the form builds.
type FormResult struct {
	Title       *ValidationError `json:"title,omitempty"`
	Description *ValidationError `json:"description,omitempty"`
	Time        *ValidationError `json:"time,omitempty"`
	Date        *ValidationError `json:"date,omitempty"`
	Daily       *ValidationError `json:"daily,omitempty"`
	All         Result           `json:"all"`
}

// Valid reports whether the built task passes every rule.
func (r FormResult) Valid() bool {
	return r.All.Valid()
}

// ValidateForm validates each field group the way an edit screen shows them
// and then the task the form would build. excludeID is the id of the task
// being edited, or empty for a new task.
func (v *Validator) ValidateForm(f Form, existing []Task, excludeID string) FormResult {
	var res FormResult

	res.Title = first(v.ValidateTitle(f.Title, existing, excludeID))
	res.Description = first(v.ValidateDescription(f.Description))
	if !f.IsDaily {
		res.Time = first(v.ValidateDueDateTime(f.DueDate, f.DueTime))
		res.Date = first(v.ValidateDate(f.DueDate, false))
	} else {
		res.Daily = first(v.ValidateDailyTask(f.DailyTime, f.DailyEndDate, v.now()))
	}

	res.All = v.ValidateAll(f.Build(excludeID, v.now()), existing)
	return res
}

func first(r Result) *ValidationError {
	e, ok := r.FirstError()
	if !ok {
		return nil
	}
	return &e
}
