// internal/workers/redelivery_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// RedeliveryProcessor publishes notifications the API could not deliver.
// A failed publish is returned so asynq retries it with backoff.
type RedeliveryProcessor struct {
	notifications ports.NotificationService
	logger        *slog.Logger
}

func NewRedeliveryProcessor(notifications ports.NotificationService, logger *slog.Logger) *RedeliveryProcessor {
	return &RedeliveryProcessor{
		notifications: notifications,
		logger:        logger.With(slog.String("processor", "redelivery")),
	}
}

// Redeliver handles notification:redeliver.
func (p *RedeliveryProcessor) Redeliver(ctx context.Context, t *asynq.Task) error {
	var payload RedeliveryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	n := payload.Notification

	if err := p.notifications.Deliver(ctx, &n); err != nil {
		retried, _ := asynq.GetRetryCount(ctx)
		p.logger.WarnContext(ctx, "notification redelivery failed",
			slog.String("id", n.ID),
			slog.String("user_id", n.UserID),
			slog.Int("retry", retried),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to redeliver notification %s: %w", n.ID, err)
	}

	p.logger.InfoContext(ctx, "notification redelivered",
		slog.String("id", n.ID),
		slog.String("user_id", n.UserID))
	return nil
}
