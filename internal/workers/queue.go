// internal/workers/queue.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// Enqueuer is the part of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DeliveryQueue schedules notification redeliveries on asynq.
type DeliveryQueue struct {
	client   Enqueuer
	delay    time.Duration
	maxRetry int
	logger   *slog.Logger
}

var _ ports.DeliveryQueue = (*DeliveryQueue)(nil)

// NewDeliveryQueue creates a queue that delays the first redelivery attempt
// by delay and lets asynq retry up to maxRetry times after that.
func NewDeliveryQueue(client Enqueuer, delay time.Duration, maxRetry int, logger *slog.Logger) *DeliveryQueue {
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &DeliveryQueue{
		client:   client,
		delay:    delay,
		maxRetry: maxRetry,
		logger:   logger.With(slog.String("component", "delivery_queue")),
	}
}

func (q *DeliveryQueue) EnqueueRedelivery(ctx context.Context, n *domain.Notification) error {
	task, err := NewRedeliveryTask(n)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.ProcessIn(q.delay),
		asynq.MaxRetry(q.maxRetry),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to enqueue redelivery: %w", err)
	}

	q.logger.InfoContext(ctx, "redelivery enqueued",
		slog.String("task_id", info.ID),
		slog.String("notification_id", n.ID))
	return nil
}

// EnqueueRecompute queues an analytics:recompute task for the worker.
func EnqueueRecompute(ctx context.Context, client Enqueuer, id, userID string) (string, error) {
	task, err := NewRecomputeTask(id, userID)
	if err != nil {
		return "", err
	}

	info, err := client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue recompute: %w", err)
	}
	return info.ID, nil
}
