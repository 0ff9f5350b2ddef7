// internal/handlers/requests.go
package handlers

import (
	"time"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

// Request DTOs

type ItineraryAnalyticRequest struct {
	TotalCommentsCount            int     `json:"totalCommentsCount" validate:"gte=0"`
	AvgComments                   float64 `json:"avgComments" validate:"gte=0"`
	TotalReviewsCount             int     `json:"totalReviewsCount" validate:"gte=0"`
	AverageReviewScore            float64 `json:"averageReviewScore" validate:"gte=0,lte=5"`
	BestItineraryByAvgReviewScore *string `json:"bestItineraryByAvgReviewScore" validate:"omitempty,objectid"`
}

type PublicationAnalyticRequest struct {
	TotalCommentsCount     int     `json:"totalCommentsCount" validate:"gte=0"`
	CommentsPerPublication float64 `json:"commentsPerPublication" validate:"gte=0"`
	TotalLikesCount        int     `json:"totalLikesCount" validate:"gte=0"`
	AverageLikes           float64 `json:"averageLikes" validate:"gte=0"`
}

// AnalyticRequest is the body of create, save and getOrCreate.
type AnalyticRequest struct {
	ID                      string                     `json:"id,omitempty" validate:"omitempty,objectid"`
	UserID                  string                     `json:"userId" validate:"required,objectid"`
	ResourceID              string                     `json:"resourceId,omitempty" validate:"omitempty,objectid"`
	UserItineraryAnalytic   ItineraryAnalyticRequest   `json:"userItineraryAnalytic"`
	UserPublicationAnalytic PublicationAnalyticRequest `json:"userPublicationAnalytic"`
	AnalysisDate            *time.Time                 `json:"analysisDate,omitempty"`
}

func (r *AnalyticRequest) ToDomain() *domain.UserAnalytic {
	a := &domain.UserAnalytic{
		ID:         r.ID,
		UserID:     r.UserID,
		ResourceID: r.ResourceID,
		UserItineraryAnalytic: domain.ItineraryAnalytic{
			TotalCommentsCount:            r.UserItineraryAnalytic.TotalCommentsCount,
			AvgComments:                   r.UserItineraryAnalytic.AvgComments,
			TotalReviewsCount:             r.UserItineraryAnalytic.TotalReviewsCount,
			AverageReviewScore:            r.UserItineraryAnalytic.AverageReviewScore,
			BestItineraryByAvgReviewScore: r.UserItineraryAnalytic.BestItineraryByAvgReviewScore,
		},
		UserPublicationAnalytic: domain.PublicationAnalytic{
			TotalCommentsCount:     r.UserPublicationAnalytic.TotalCommentsCount,
			CommentsPerPublication: r.UserPublicationAnalytic.CommentsPerPublication,
			TotalLikesCount:        r.UserPublicationAnalytic.TotalLikesCount,
			AverageLikes:           r.UserPublicationAnalytic.AverageLikes,
		},
	}
	if r.AnalysisDate != nil {
		a.AnalysisDate = r.AnalysisDate.UTC()
	}
	return a
}

// CreateReportRequest is the body of POST /api/v1/reports.
type CreateReportRequest struct {
	UserID      string `json:"userId" validate:"required,objectid"`
	Type        string `json:"type" validate:"required,oneof=publication itinerary"`
	ResourceID  string `json:"resourceId" validate:"required,objectid"`
	Reason      string `json:"reason" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending resolved rejected"`
}

func (r *CreateReportRequest) ToDomain() *domain.Report {
	return &domain.Report{
		UserID:      r.UserID,
		Type:        domain.ReportType(r.Type),
		ResourceID:  r.ResourceID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      domain.ReportStatus(r.Status),
	}
}

// UpdateReportRequest mirrors domain.ReportPatch with boundary checks.
type UpdateReportRequest struct {
	Type        *string `json:"type,omitempty"`
	ResourceID  *string `json:"resourceId,omitempty"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending resolved rejected"`
}

func (r *UpdateReportRequest) ToDomain() *domain.ReportPatch {
	p := &domain.ReportPatch{
		ResourceID:  r.ResourceID,
		Reason:      r.Reason,
		Description: r.Description,
	}
	if r.Type != nil {
		t := domain.ReportType(*r.Type)
		p.Type = &t
	}
	if r.Status != nil {
		s := domain.ReportStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// CreateNotificationRequest is the body of POST /api/v1/notifications.
type CreateNotificationRequest struct {
	UserID             string                    `json:"userId" validate:"required,objectid"`
	Type               string                    `json:"type" validate:"required,oneof=message friend_request publication_comment publication_like itinerary_comment itinerary_rating report"`
	ResourceID         string                    `json:"resourceId" validate:"required,objectid"`
	Config             domain.NotificationConfig `json:"config"`
	NotificationStatus string                    `json:"notificationStatus,omitempty" validate:"omitempty,oneof='SEEN' 'NOT SEEN'"`
}

func (r *CreateNotificationRequest) ToDomain() *domain.Notification {
	return &domain.Notification{
		UserID:             r.UserID,
		Type:               domain.NotificationType(r.Type),
		ResourceID:         r.ResourceID,
		Config:             r.Config,
		NotificationStatus: domain.NotificationStatus(r.NotificationStatus),
	}
}

// RecomputeRequest is the body of POST /api/updateAnalytics.
type RecomputeRequest struct {
	ID     string `json:"id,omitempty" validate:"omitempty,objectid"`
	UserID string `json:"userId" validate:"required,objectid"`
}
