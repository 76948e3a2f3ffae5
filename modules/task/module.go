package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/todo-tracker/events"
	"github.com/example/todo-tracker/modules/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
)

// Plugin aliases the task module accepts. Exactly one must be registered.
const (
	StoragePluginAlias = "storage"
	KVPluginAlias      = "kv"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	storagePlugin *storage.PluginModule
	kv            *kvjetstream.PluginModule
	bucket        string
	storageKey    string
	store         storage.Storage
	repo          *Repository
	usecase       *UseCase
	eventBus      mono.EventBus
	logger        types.Logger
	opts          []UseCaseOption
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.UsePluginModule = (*TaskModule)(nil)
var _ mono.EventBusAwareModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module. storageKey names the record holding the
// task list; bucket names the kv-jetstream bucket used when the kv plugin is
// registered instead of the storage plugin.
func NewModule(storageKey, bucket string, logger types.Logger, opts ...UseCaseOption) *TaskModule {
	if storageKey == "" {
		storageKey = DefaultStorageKey
	}
	if bucket == "" {
		bucket = DefaultStorageKey
	}
	return &TaskModule{
		storageKey: storageKey,
		bucket:     bucket,
		logger:     logger.WithModule("task"),
		opts:       opts,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

// SetPlugin receives the storage backend from the framework.
// This is called before Start() when the module implements UsePluginModule.
func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case StoragePluginAlias:
		p, ok := plugin.(*storage.PluginModule)
		if !ok {
			m.logger.Error("Invalid plugin type", "alias", alias, "expected", "*storage.PluginModule")
			return
		}
		m.storagePlugin = p
	case KVPluginAlias:
		p, ok := plugin.(*kvjetstream.PluginModule)
		if !ok {
			m.logger.Error("Invalid plugin type", "alias", alias, "expected", "*kvjetstream.PluginModule")
			return
		}
		m.kv = p
	default:
		return
	}
	m.logger.Info("Received storage plugin", "alias", alias)
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskAddedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletionToggledV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TasksClearedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "add-task", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "toggle-task", json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register toggle-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "clear-completed", json.Unmarshal, json.Marshal, m.clearCompleted,
	); err != nil {
		return fmt.Errorf("failed to register clear-completed service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "clear-all", json.Unmarshal, json.Marshal, m.clearAll,
	); err != nil {
		return fmt.Errorf("failed to register clear-all service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "add-task, update-task, toggle-task, delete-task, clear-completed, clear-all, list-tasks")
	return nil
}

// Start binds the repository to whichever storage plugin was registered and
// warms the task cache.
func (m *TaskModule) Start(ctx context.Context) error {
	switch {
	case m.storagePlugin != nil:
		m.store = m.storagePlugin.Port()
		if m.store == nil {
			return fmt.Errorf("storage plugin not started")
		}
	case m.kv != nil:
		bucket := m.kv.Bucket(m.bucket)
		if bucket == nil {
			return fmt.Errorf("kv bucket %q not configured", m.bucket)
		}
		m.store = storage.NewKVStorage(bucket)
	default:
		return fmt.Errorf("storage plugin not set - register a %q or %q plugin", StoragePluginAlias, KVPluginAlias)
	}

	m.repo = NewRepository(m.store, m.storageKey)
	m.usecase = NewUseCase(m.repo, nil, m.opts...)

	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, events will not be published")
	}

	tasks, err := m.repo.FetchAll(ctx)
	if err != nil {
		// Not fatal: the next operation retries the load.
		m.logger.Warn("Initial task load failed", "error", err)
	} else {
		m.logger.Info("Module started", "tasks", len(tasks), "key", m.storageKey)
	}
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Health pings the bound storage.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "storage not bound",
		}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("storage ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"key": m.storageKey,
		},
	}
}

// UseCase exposes the module's use case once started, for in-process callers.
func (m *TaskModule) UseCase() *UseCase {
	return m.usecase
}
