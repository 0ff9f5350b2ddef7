// internal/core/ports/repositories.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

// AnalyticRepository defines the persistence port for user analytics.
// Lookups by id return domain.ErrNotFound when nothing matches.
type AnalyticRepository interface {
	Create(ctx context.Context, a *domain.UserAnalytic) error
	Update(ctx context.Context, a *domain.UserAnalytic) error
	FindByID(ctx context.Context, id string) (*domain.UserAnalytic, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.UserAnalytic, error)
	FindByUserAndResource(ctx context.Context, userID, resourceID string) (*domain.UserAnalytic, error)
	FindAll(ctx context.Context, filter AnalyticFilter) ([]*domain.UserAnalytic, int64, error)
	FindStale(ctx context.Context, filter StaleFilter) ([]*domain.UserAnalytic, error)
	Delete(ctx context.Context, id string) error

	// Modify loads the record under a row lock, hands it to fn and persists
	// it when fn reports a change. The lock is held until the write commits.
	Modify(ctx context.Context, id string, fn ModifyFunc) (*domain.UserAnalytic, error)
}

// ModifyFunc mutates a locked analytic in place.
type ModifyFunc func(a *domain.UserAnalytic) (changed bool, err error)

// AnalyticFilter narrows FindAll. Zero values mean "any".
type AnalyticFilter struct {
	UserID      string
	ResourceID  string
	StaleBefore *time.Time
	Limit       int
	Offset      int
}

// StaleFilter selects analytics whose analysisDate is older than Cutoff.
// ID and UserID are optional.
type StaleFilter struct {
	ID     string
	UserID string
	Cutoff time.Time
}

// ReportRepository defines the persistence port for reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	Update(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Report, error)
	FindAll(ctx context.Context, filter ReportFilter) ([]*domain.Report, int64, error)
	Delete(ctx context.Context, id string) error
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	UserID     string
	Type       domain.ReportType
	Status     domain.ReportStatus
	ResourceID string
	Limit      int
	Offset     int
}

// NotificationRepository defines the persistence port for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	FindAll(ctx context.Context, filter NotificationFilter) ([]*domain.Notification, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus) (*domain.Notification, error)
	Delete(ctx context.Context, id string) error
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UserID string
	Status domain.NotificationStatus
	Limit  int
	Offset int
}
