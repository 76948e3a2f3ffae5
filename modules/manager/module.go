package manager

import (
	"context"
	"fmt"

	"github.com/example/todo-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module runs the Manager loop for the lifetime of the application.
type Module struct {
	manager *Manager
	errors  *ErrorHandler
	logger  types.Logger
	cancel  context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the manager module. The Manager is available right away
// but only serves calls once the module has started.
func NewModule(logger types.Logger, opts ...Option) *Module {
	l := logger.WithModule("manager")
	errs := NewErrorHandler(l)
	return &Module{
		manager: New(nil, errs, opts...),
		errors:  errs,
		logger:  l,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "manager"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer binds the Manager to the task services.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.manager.port = task.NewTaskAdapter(container)
	}
}

// Start launches the loop and performs the initial load. A failed load is
// reported like any other failure and does not stop the application.
func (m *Module) Start(ctx context.Context) error {
	if m.manager.port == nil {
		return fmt.Errorf("task dependency not set")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.manager.Run(runCtx)

	if err := <-m.manager.Refresh(ctx); err != nil {
		m.logger.Warn("Initial load failed", "error", err)
	}
	m.logger.Info("Module started", "tasks", len(m.manager.Tasks()), "filter", m.manager.Filter())
	return nil
}

// Stop ends the loop. Operations still in flight resolve with ErrStopped.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.manager.Wait()
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health reports the mirror size and whether an error awaits acknowledgement.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.cancel == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	snap := m.manager.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tasks":         snap.Stats.Total,
			"filter":        snap.Filter,
			"loading":       snap.Loading,
			"showing_error": m.errors.Showing(),
		},
	}
}

// Manager returns the state holder.
func (m *Module) Manager() *Manager {
	return m.manager
}

// Errors returns the error handler fed by the Manager.
func (m *Module) Errors() *ErrorHandler {
	return m.errors
}
