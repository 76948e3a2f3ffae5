package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort defines the interface for reading the activity log.
// Consumers should use this interface instead of directly referencing the module.
type ActivityPort interface {
	ListActivity(ctx context.Context, limit int) (ListActivityResponse, error)
}

// activityAdapter implements ActivityPort using the service container.
type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new adapter for the activity service.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	return &activityAdapter{container: container}
}

// ListActivity retrieves up to limit entries, newest first.
func (a *activityAdapter) ListActivity(ctx context.Context, limit int) (ListActivityResponse, error) {
	req := ListActivityRequest{Limit: limit}
	var resp ListActivityResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-activity",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return ListActivityResponse{}, fmt.Errorf("list-activity service call failed: %w", err)
	}
	return resp, nil
}
