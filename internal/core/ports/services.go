// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

// ListParams holds paging plus the filters shared by the list endpoints.
type ListParams struct {
	Page       int
	PageSize   int
	UserID     string
	ResourceID string
	StaleOnly  bool
	Type       string
	Status     string
}

// ListResult is one page of T.
type ListResult[T any] struct {
	Items      []*T  `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// AnalyticService defines the application service port for analytics.
type AnalyticService interface {
	GetByID(ctx context.Context, id string) (*domain.UserAnalytic, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.UserAnalytic, error)
	List(ctx context.Context, params ListParams) (*ListResult[domain.UserAnalytic], error)
	Create(ctx context.Context, a *domain.UserAnalytic) error
	Update(ctx context.Context, id string, patch *domain.UserAnalyticPatch) (*domain.UserAnalytic, error)
	Delete(ctx context.Context, id string) error
	// Save creates, refreshes (when stale) or leaves untouched (when fresh).
	Save(ctx context.Context, id string, a *domain.UserAnalytic) (*domain.UserAnalytic, domain.SaveOutcome, error)
	GetOrCreate(ctx context.Context, id string, a *domain.UserAnalytic) (*domain.UserAnalytic, bool, error)
	ComputeForUser(ctx context.Context, userID string, scope domain.AggregateScope) ([]*domain.UserAnalytic, error)
}

// ReportService defines the application service port for reports.
type ReportService interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Report, error)
	List(ctx context.Context, params ListParams) (*ListResult[domain.Report], error)
	Create(ctx context.Context, r *domain.Report) error
	Update(ctx context.Context, id string, patch *domain.ReportPatch) (*domain.Report, error)
	Delete(ctx context.Context, id string) error
}

// NotificationService defines the application service port for notifications.
type NotificationService interface {
	List(ctx context.Context, params ListParams) (*ListResult[domain.Notification], error)
	Create(ctx context.Context, n *domain.Notification) (domain.DeliveryOutcome, error)
	MarkSeen(ctx context.Context, id string) (*domain.Notification, error)
	Delete(ctx context.Context, id string) error
	Deliver(ctx context.Context, n *domain.Notification) error
}

// RecomputeRunner refreshes stale analytics.
type RecomputeRunner interface {
	Run(ctx context.Context, recordID, userID string) (*RecomputeSummary, error)
	RunStale(ctx context.Context) (*RecomputeSummary, error)
}

// RecomputeSummary counts what a recompute pass did.
type RecomputeSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
