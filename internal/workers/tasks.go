// internal/workers/tasks.go
package workers

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

const (
	TypeAnalyticsRecompute      = "analytics:recompute"
	TypeAnalyticsRecomputeStale = "analytics:recompute_stale"
	TypeAnalyticsSnapshot       = "analytics:snapshot"
	TypeNotificationRedeliver   = "notification:redeliver"
)

// RecomputePayload targets one analytic, one user, or both.
type RecomputePayload struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"userId"`
}

// RedeliveryPayload carries a stored notification that could not be published.
type RedeliveryPayload struct {
	Notification domain.Notification `json:"notification"`
}

// NewRecomputeTask builds an analytics:recompute task.
func NewRecomputeTask(id, userID string) (*asynq.Task, error) {
	b, err := json.Marshal(RecomputePayload{ID: id, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recompute payload: %w", err)
	}
	return asynq.NewTask(TypeAnalyticsRecompute, b), nil
}

// NewRedeliveryTask builds a notification:redeliver task.
func NewRedeliveryTask(n *domain.Notification) (*asynq.Task, error) {
	b, err := json.Marshal(RedeliveryPayload{Notification: *n})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal redelivery payload: %w", err)
	}
	return asynq.NewTask(TypeNotificationRedeliver, b), nil
}
