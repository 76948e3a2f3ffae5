package api

import (
	"errors"
	"time"

	domain "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/manager"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check endpoint
	app.Get("/health", m.healthHandler)

	// API v1 routes
	api := app.Group("/api/v1")

	// Task endpoints. Static paths come before /:id.
	tasks := api.Group("/tasks")
	tasks.Get("/", m.getView)
	tasks.Get("/all", m.listTasks)
	tasks.Get("/stats", m.getStats)
	tasks.Post("/", m.createTask)
	tasks.Post("/validate", m.validateTask)
	tasks.Delete("/completed", m.clearCompleted)
	tasks.Delete("/", m.clearAll)
	tasks.Put("/:id", m.updateTask)
	tasks.Post("/:id/toggle", m.toggleTask)
	tasks.Delete("/:id", m.deleteTask)

	api.Put("/filter", m.setFilter)

	errs := api.Group("/errors")
	errs.Get("/current", m.currentError)
	errs.Delete("/current", m.clearError)

	api.Get("/activity", m.listActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":        "api",
			"loading":       m.manager.IsLoading(),
			"showing_error": m.errors.Showing(),
		},
	})
}

// getView handles GET /api/v1/tasks. An optional filter query switches the
// active filter first.
func (m *APIModule) getView(c *fiber.Ctx) error {
	if raw := c.Query("filter"); raw != "" {
		f, err := domain.ParseFilter(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_filter",
				Message: err.Error(),
			})
		}
		if err := m.manager.SetFilter(f); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(m.viewResponse())
}

// listTasks handles GET /api/v1/tasks/all.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	tasks := nonNil(m.manager.Tasks())
	return c.JSON(ListTasksResponse{
		Tasks: tasks,
		Total: len(tasks),
	})
}

// getStats handles GET /api/v1/tasks/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	return c.JSON(m.manager.Stats())
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var form domain.Form
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c)
	}

	if err := <-m.manager.AddTask(c.UserContext(), form.Build("", time.Time{})); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m.viewResponse())
}

// validateTask handles POST /api/v1/tasks/validate. The optional exclude_id
// query names the task being edited.
func (m *APIModule) validateTask(c *fiber.Ctx) error {
	var form domain.Form
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c)
	}

	res := m.manager.ValidateForm(form, c.Query("exclude_id"))
	return c.JSON(ValidateResponse{
		Valid:  res.Valid(),
		Fields: res,
	})
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var form domain.Form
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c)
	}

	t := form.Build(c.Params("id"), time.Time{})
	// The form does not carry completion; keep what the mirror knows.
	for _, existing := range m.manager.Tasks() {
		if existing.ID == t.ID {
			t.CompletedAt = existing.CompletedAt
			t.IsCompleted = existing.IsCompleted
			break
		}
	}
	if err := <-m.manager.UpdateTask(c.UserContext(), t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(m.viewResponse())
}

// toggleTask handles POST /api/v1/tasks/:id/toggle.
func (m *APIModule) toggleTask(c *fiber.Ctx) error {
	if err := <-m.manager.ToggleCompletion(c.UserContext(), domain.Task{ID: c.Params("id")}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(m.viewResponse())
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	if err := <-m.manager.DeleteTask(c.UserContext(), domain.Task{ID: c.Params("id")}); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// clearCompleted handles DELETE /api/v1/tasks/completed.
func (m *APIModule) clearCompleted(c *fiber.Ctx) error {
	if err := <-m.manager.ClearCompleted(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// clearAll handles DELETE /api/v1/tasks.
func (m *APIModule) clearAll(c *fiber.Ctx) error {
	if err := <-m.manager.ClearAll(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// setFilter handles PUT /api/v1/filter.
func (m *APIModule) setFilter(c *fiber.Ctx) error {
	var req FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	f, err := domain.ParseFilter(req.Filter)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
	}
	if err := m.manager.SetFilter(f); err != nil {
		return writeError(c, err)
	}
	return c.JSON(m.viewResponse())
}

// currentError handles GET /api/v1/errors/current.
func (m *APIModule) currentError(c *fiber.Ctx) error {
	report, ok := m.errors.Current()
	if !ok {
		return c.JSON(CurrentErrorResponse{Showing: false})
	}
	return c.JSON(CurrentErrorResponse{Showing: true, Report: &report})
}

// clearError handles DELETE /api/v1/errors/current.
func (m *APIModule) clearError(c *fiber.Ctx) error {
	m.errors.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// listActivity handles GET /api/v1/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	resp, err := m.activity.ListActivity(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(resp)
}

func (m *APIModule) viewResponse() ViewResponse {
	snap := m.manager.Snapshot()
	tasks := nonNil(snap.Tasks)
	return ViewResponse{
		Filter:  snap.Filter,
		Tasks:   tasks,
		Total:   len(tasks),
		Stats:   snap.Stats,
		Loading: snap.Loading,
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

// writeError maps a domain error to its HTTP status.
func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, manager.ErrStopped) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "unavailable",
			Message: err.Error(),
			Hint:    domain.HintRetryLater,
		})
	}

	kind := domain.KindOf(err)
	resp := ErrorResponse{
		Error:   string(kind),
		Message: err.Error(),
		Hint:    domain.HintFor(err),
	}
	var vErr *domain.ValidationFailedError
	if errors.As(err, &vErr) {
		resp.Validation = vErr.Result.Kinds()
	}
	return c.Status(statusFor(kind)).JSON(resp)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidTitle, domain.KindValidationFailed:
		return fiber.StatusUnprocessableEntity
	case domain.KindNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
