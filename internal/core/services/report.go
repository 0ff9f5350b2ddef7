// internal/core/services/report.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// ReportService handles report business logic. The reporter is notified when
// a report is filed and whenever its status changes.
type ReportService struct {
	repo          ports.ReportRepository
	notifications ports.NotificationService
	logger        *slog.Logger
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service. notifications may be nil.
func NewReportService(repo ports.ReportRepository, notifications ports.NotificationService, logger *slog.Logger) *ReportService {
	return &ReportService{
		repo:          repo,
		notifications: notifications,
		logger:        logger.With(slog.String("service", "reports")),
	}
}

func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// GetByUserID lists a user's reports. A user with none gets an empty list.
func (s *ReportService) GetByUserID(ctx context.Context, userID string) ([]*domain.Report, error) {
	items, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports for user: %w", err)
	}
	if items == nil {
		items = []*domain.Report{}
	}
	return items, nil
}

func (s *ReportService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult[domain.Report], error) {
	v := &domain.ValidationError{}
	typ := domain.ReportType(params.Type)
	if typ != "" && !typ.IsValid() {
		v.Add("type", "must be one of publication, itinerary")
	}
	status := domain.ReportStatus(params.Status)
	if status != "" && !status.IsValid() {
		v.Add("status", "must be one of pending, resolved, rejected")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	limit, offset := normalizePage(&params)
	items, total, err := s.repo.FindAll(ctx, ports.ReportFilter{
		UserID:     params.UserID,
		Type:       typ,
		Status:     status,
		ResourceID: params.ResourceID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return newListResult(items, params, total), nil
}

func (s *ReportService) Create(ctx context.Context, r *domain.Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.PrepareForStorage()

	if err := s.repo.Create(ctx, r); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.InfoContext(ctx, "report created",
		slog.String("id", r.ID),
		slog.String("type", string(r.Type)),
		slog.String("resource_id", r.ResourceID))

	s.notifyReporter(ctx, r)
	return nil
}

// Update changes reason, description or status. Type and resource are fixed.
func (s *ReportService) Update(ctx context.Context, id string, patch *domain.ReportPatch) (*domain.Report, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	previous := r.Status
	if err := r.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	s.logger.InfoContext(ctx, "report updated",
		slog.String("id", id),
		slog.String("status", string(r.Status)))

	if r.Status != previous {
		s.notifyReporter(ctx, r)
	}
	return r, nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// notifyReporter never fails the report write; a deferred or failed
// notification is only logged.
func (s *ReportService) notifyReporter(ctx context.Context, r *domain.Report) {
	if s.notifications == nil {
		return
	}

	outcome, err := s.notifications.Create(ctx, &domain.Notification{
		UserID:     r.UserID,
		Type:       domain.NotificationReport,
		ResourceID: r.ID,
		Config:     domain.NotificationConfig{Email: true},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to notify reporter",
			slog.String("report_id", r.ID),
			slog.String("user_id", r.UserID),
			slog.String("error", err.Error()))
		return
	}

	s.logger.DebugContext(ctx, "reporter notified",
		slog.String("report_id", r.ID),
		slog.String("outcome", string(outcome)))
}
