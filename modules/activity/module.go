package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/todo-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// maxListLimit caps a single list-activity reply.
const maxListLimit = 500

// ActivityModule records task events as a driven adapter. It only records;
// nothing is delivered anywhere.
type ActivityModule struct {
	log    *Log
	logger types.Logger
	now    func() time.Time
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

// NewModule creates the activity module retaining at most maxEntries entries.
func NewModule(maxEntries int, logger types.Logger) *ActivityModule {
	return &ActivityModule{
		log:    NewLog(maxEntries),
		logger: logger.WithModule("activity"),
		now:    time.Now,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskAddedV1, m.handleTaskAdded, m); err != nil {
		return fmt.Errorf("failed to register TaskAdded consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletionToggledV1, m.handleCompletionToggled, m); err != nil {
		return fmt.Errorf("failed to register TaskCompletionToggled consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TasksClearedV1, m.handleTasksCleared, m); err != nil {
		return fmt.Errorf("failed to register TasksCleared consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", "TaskAdded, TaskUpdated, TaskCompletionToggled, TaskDeleted, TasksCleared")
	return nil
}

func (m *ActivityModule) handleTaskAdded(_ context.Context, event events.TaskAddedEvent, _ *mono.Msg) error {
	kind := "task"
	if event.IsDaily {
		kind = "daily task"
	}
	m.record(TypeTaskAdded, event.TaskID, fmt.Sprintf("New %s '%s' added with %s priority", kind, event.Title, event.Priority))
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record(TypeTaskUpdated, event.TaskID, fmt.Sprintf("Task '%s' updated", event.Title))
	return nil
}

func (m *ActivityModule) handleCompletionToggled(_ context.Context, event events.TaskCompletionToggledEvent, _ *mono.Msg) error {
	if event.Completed {
		m.record(TypeTaskCompleted, event.TaskID, fmt.Sprintf("Task '%s' completed", event.Title))
	} else {
		m.record(TypeTaskReopened, event.TaskID, fmt.Sprintf("Task '%s' reopened", event.Title))
	}
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(TypeTaskDeleted, event.TaskID, fmt.Sprintf("Task '%s' deleted", event.Title))
	return nil
}

func (m *ActivityModule) handleTasksCleared(_ context.Context, event events.TasksClearedEvent, _ *mono.Msg) error {
	m.record(TypeTasksCleared, "", fmt.Sprintf("Cleared %d %s task(s)", event.Removed, event.Scope))
	return nil
}

func (m *ActivityModule) record(entryType, taskID, message string) {
	m.log.Append(Entry{
		ID:        uuid.New().String(),
		Type:      entryType,
		TaskID:    taskID,
		Message:   message,
		Timestamp: m.now(),
	})
	m.logger.Debug("Recorded activity", "type", entryType, "task_id", taskID)
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-activity", json.Unmarshal, json.Marshal, m.listActivity,
	); err != nil {
		return fmt.Errorf("failed to register list-activity service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-activity")
	return nil
}

// listActivity handles the list-activity service request.
func (m *ActivityModule) listActivity(_ context.Context, req ListActivityRequest, _ *mono.Msg) (ListActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return ListActivityResponse{
		Entries: m.log.Recent(limit),
		Total:   m.log.Len(),
	}, nil
}

// Log returns the underlying activity log.
func (m *ActivityModule) Log() *Log {
	return m.log
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}
