// internal/core/services/notification.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

// NotificationService persists notifications and hands them to the queue.
type NotificationService struct {
	repo      ports.NotificationRepository
	publisher ports.NotificationPublisher
	queue     ports.DeliveryQueue
	logger    *slog.Logger
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a new notification service. queue may be
// nil, in which case an undeliverable notification fails the call.
func NewNotificationService(
	repo ports.NotificationRepository,
	publisher ports.NotificationPublisher,
	queue ports.DeliveryQueue,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		queue:     queue,
		logger:    logger.With(slog.String("service", "notifications")),
	}
}

func (s *NotificationService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult[domain.Notification], error) {
	status := domain.NotificationStatus(params.Status)
	if status != "" && !status.IsValid() {
		return nil, domain.NewValidationError("status", "must be SEEN or NOT SEEN")
	}

	limit, offset := normalizePage(&params)
	items, total, err := s.repo.FindAll(ctx, ports.NotificationFilter{
		UserID: params.UserID,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return newListResult(items, params, total), nil
}

// Create stores the notification and publishes it. When the queue cannot take
// it, a redelivery is scheduled and the outcome is DeliveryDeferred.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) (domain.DeliveryOutcome, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	n.PrepareForStorage()

	if err := s.repo.Create(ctx, n); err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	err := s.Deliver(ctx, n)
	if err == nil {
		return domain.DeliveryDelivered, nil
	}
	if !errors.Is(err, domain.ErrUndeliverable) || s.queue == nil {
		return "", err
	}

	if qErr := s.queue.EnqueueRedelivery(ctx, n); qErr != nil {
		s.logger.ErrorContext(ctx, "failed to schedule notification redelivery",
			slog.String("id", n.ID),
			slog.String("error", qErr.Error()))
		return "", fmt.Errorf("%w: %w", err, qErr)
	}
	metrics.NotificationRedeliveriesEnqueued.Inc()

	s.logger.WarnContext(ctx, "notification deferred for redelivery",
		slog.String("id", n.ID),
		slog.String("user_id", n.UserID),
		slog.String("error", err.Error()))
	return domain.DeliveryDeferred, nil
}

// Deliver publishes an already stored notification.
func (s *NotificationService) Deliver(ctx context.Context, n *domain.Notification) error {
	return s.publisher.Publish(ctx, n)
}

func (s *NotificationService) MarkSeen(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := s.repo.UpdateStatus(ctx, id, domain.NotificationSeen)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification seen: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	s.logger.InfoContext(ctx, "notification deleted", slog.String("id", id))
	return nil
}
