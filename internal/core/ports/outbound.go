// internal/core/ports/outbound.go
package ports

import (
	"context"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

// ItineraryClient fetches itineraries owned by a user from the itineraries service.
type ItineraryClient interface {
	FetchByUser(ctx context.Context, userID string) ([]domain.Itinerary, error)
}

// ServiceResolver maps a logical service name to a base URL.
type ServiceResolver interface {
	Resolve(ctx context.Context, service string) (string, error)
}

// NotificationPublisher hands notifications to the message queue.
// Failures wrap domain.ErrUndeliverable.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// DeliveryQueue schedules a later redelivery attempt for a notification.
type DeliveryQueue interface {
	EnqueueRedelivery(ctx context.Context, n *domain.Notification) error
}

// ObjectStore persists binary artifacts such as analytics snapshots.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
