// internal/adapters/queue/publisher.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

const (
	DefaultTopic       = "notification"
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = time.Second
)

var errNotReady = errors.New("queue connection not ready")

// NotificationPublisher publishes notifications to the message queue once the
// connection reports ready.
type NotificationPublisher struct {
	publisher   message.Publisher
	readiness   Readiness
	topic       string
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

var _ ports.NotificationPublisher = (*NotificationPublisher)(nil)

// Option configures a NotificationPublisher.
type Option func(*NotificationPublisher)

func WithTopic(topic string) Option {
	return func(p *NotificationPublisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// WithMaxAttempts sets how many times readiness is re-checked before giving up.
func WithMaxAttempts(n int) Option {
	return func(p *NotificationPublisher) {
		if n >= 0 {
			p.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(p *NotificationPublisher) {
		if d > 0 {
			p.retryDelay = d
		}
	}
}

// NewNotificationPublisher creates a publisher on top of a watermill publisher.
func NewNotificationPublisher(publisher message.Publisher, readiness Readiness, logger *slog.Logger, opts ...Option) *NotificationPublisher {
	p := &NotificationPublisher{
		publisher:   publisher,
		readiness:   readiness,
		topic:       DefaultTopic,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      logger.With(slog.String("component", "notification_publisher")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// notificationPayload is the message body consumers of the topic expect.
type notificationPayload struct {
	ID                 string                    `json:"id"`
	UserID             string                    `json:"userId"`
	Config             domain.NotificationConfig `json:"config"`
	Type               domain.NotificationType   `json:"type"`
	ResourceID         string                    `json:"resourceId"`
	NotificationStatus domain.NotificationStatus `json:"notificationStatus"`
	CreatedAt          time.Time                 `json:"createdAt"`
}

// Publish sends n to the topic. Every failure wraps domain.ErrUndeliverable.
func (p *NotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	if err := p.waitReady(ctx); err != nil {
		metrics.NotificationPublishTotal.WithLabelValues("undeliverable").Inc()
		p.logger.ErrorContext(ctx, "notification dropped, queue not ready",
			slog.String("notification_id", n.ID),
			slog.Int("attempts", p.maxAttempts),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", domain.ErrUndeliverable, err)
	}

	data, err := json.Marshal(notificationPayload{
		ID:                 n.ID,
		UserID:             n.UserID,
		Config:             n.Config,
		Type:               n.Type,
		ResourceID:         n.ResourceID,
		NotificationStatus: n.NotificationStatus,
		CreatedAt:          n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal notification: %w", domain.ErrUndeliverable, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", string(n.Type))
	msg.Metadata.Set("user_id", n.UserID)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		metrics.NotificationPublishTotal.WithLabelValues("failed").Inc()
		p.logger.ErrorContext(ctx, "failed to publish notification",
			slog.String("notification_id", n.ID),
			slog.String("topic", p.topic),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", domain.ErrUndeliverable, err)
	}

	metrics.NotificationPublishTotal.WithLabelValues("delivered").Inc()
	p.logger.DebugContext(ctx, "notification published",
		slog.String("notification_id", n.ID),
		slog.String("message_uuid", msg.UUID))

	return nil
}

// waitReady checks readiness once, then waits up to maxAttempts more times,
// each wait bounded by retryDelay. A reconnect ends the current wait early.
func (p *NotificationPublisher) waitReady(ctx context.Context) error {
	if p.readiness.IsReady() {
		return nil
	}

	for retry := 0; retry < p.maxAttempts; retry++ {
		metrics.NotificationReadinessChecks.Inc()
		p.logger.WarnContext(ctx, "queue not ready, retrying",
			slog.Int("retries_left", p.maxAttempts-retry),
			slog.Duration("delay", p.retryDelay))

		if p.readiness.AwaitReady(ctx, p.retryDelay) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return errNotReady
}
