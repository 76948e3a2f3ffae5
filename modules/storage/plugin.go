package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// PluginModule owns the storage backend as a mono plugin.
// Plugins start first and stop last, so the backend outlives every module using it.
type PluginModule struct {
	container types.ServiceContainer
	storage   Storage
	cfg       Config
	open      func(context.Context, Config) (Storage, error)
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a storage plugin for the configured backend. The
// backend is opened in Start.
func NewPluginModule(cfg Config) *PluginModule {
	return &PluginModule{cfg: cfg, open: Open}
}

// NewPluginModuleWithStorage creates a plugin around an already open backend.
func NewPluginModuleWithStorage(s Storage, backend Backend) *PluginModule {
	return &PluginModule{
		cfg:     Config{Backend: backend},
		storage: s,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "storage"
}

// Start opens the backend unless one was supplied at construction.
func (m *PluginModule) Start(ctx context.Context) error {
	if m.storage == nil {
		s, err := m.open(ctx, m.cfg)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", m.cfg.Backend, err)
		}
		m.storage = s
	}
	log.Printf("[storage] Plugin started (backend: %s)", m.cfg.Backend)
	return nil
}

// Stop closes the backend.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.storage != nil {
		if err := m.storage.Close(); err != nil {
			log.Printf("[storage] Error closing backend: %v", err)
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	log.Println("[storage] Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the storage for consumers. It is nil until Start has run.
func (m *PluginModule) Port() Storage {
	return m.storage
}

// Backend returns the configured backend name.
func (m *PluginModule) Backend() Backend {
	return m.cfg.Backend
}

// Health pings the backend.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.storage == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "storage not initialized",
		}
	}

	if err := m.storage.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": string(m.cfg.Backend),
		},
	}
}
