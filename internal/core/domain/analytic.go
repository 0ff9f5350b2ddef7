// internal/core/domain/analytic.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// StalenessWindow is how long an analytic stays authoritative after analysisDate.
	StalenessWindow = 24 * time.Hour
	// MaxReviewScore bounds individual review scores and every average derived from them.
	MaxReviewScore = 5.0
)

// ItineraryAnalytic aggregates engagement on a user's itineraries.
type ItineraryAnalytic struct {
	TotalCommentsCount            int     `json:"totalCommentsCount"`
	AvgComments                   float64 `json:"avgComments"`
	TotalReviewsCount             int     `json:"totalReviewsCount"`
	AverageReviewScore            float64 `json:"averageReviewScore"`
	BestItineraryByAvgReviewScore *string `json:"bestItineraryByAvgReviewScore"`
}

// PublicationAnalytic aggregates engagement on a user's publications.
type PublicationAnalytic struct {
	TotalCommentsCount     int     `json:"totalCommentsCount"`
	CommentsPerPublication float64 `json:"commentsPerPublication"`
	TotalLikesCount        int     `json:"totalLikesCount"`
	AverageLikes           float64 `json:"averageLikes"`
}

// UserAnalytic is the stored aggregate for a user, optionally scoped to one resource.
type UserAnalytic struct {
	ID                      string              `json:"id"`
	UserID                  string              `json:"userId"`
	ResourceID              string              `json:"resourceId,omitempty"`
	UserItineraryAnalytic   ItineraryAnalytic   `json:"userItineraryAnalytic"`
	UserPublicationAnalytic PublicationAnalytic `json:"userPublicationAnalytic"`
	AnalysisDate            time.Time           `json:"analysisDate"`
	CreatedAt               time.Time           `json:"createdAt"`
	UpdatedAt               time.Time           `json:"updatedAt"`
}

// UserAnalyticPatch is a partial update; nil fields are left untouched.
type UserAnalyticPatch struct {
	UserItineraryAnalytic   *ItineraryAnalyticPatch   `json:"userItineraryAnalytic,omitempty"`
	UserPublicationAnalytic *PublicationAnalyticPatch `json:"userPublicationAnalytic,omitempty"`
	AnalysisDate            *time.Time                `json:"analysisDate,omitempty"`
}

type ItineraryAnalyticPatch struct {
	TotalCommentsCount            *int     `json:"totalCommentsCount,omitempty"`
	AvgComments                   *float64 `json:"avgComments,omitempty"`
	TotalReviewsCount             *int     `json:"totalReviewsCount,omitempty"`
	AverageReviewScore            *float64 `json:"averageReviewScore,omitempty"`
	BestItineraryByAvgReviewScore *string  `json:"bestItineraryByAvgReviewScore,omitempty"`
}

type PublicationAnalyticPatch struct {
	TotalCommentsCount     *int     `json:"totalCommentsCount,omitempty"`
	CommentsPerPublication *float64 `json:"commentsPerPublication,omitempty"`
	TotalLikesCount        *int     `json:"totalLikesCount,omitempty"`
	AverageLikes           *float64 `json:"averageLikes,omitempty"`
}

// IsStale reports whether the analytic is older than the staleness window at now.
func (a *UserAnalytic) IsStale(now time.Time) bool {
	return a.AnalysisDate.Before(now.Add(-StalenessWindow))
}

// Validate checks the nested aggregates: counts and averages must be
// non-negative and the review score must stay within MaxReviewScore.
func (a *UserAnalytic) Validate() error {
	v := &ValidationError{}
	if a.UserID == "" {
		v.Add("userId", "is required")
	}

	it := a.UserItineraryAnalytic
	if it.TotalCommentsCount < 0 {
		v.Add("userItineraryAnalytic.totalCommentsCount", "must be non-negative")
	}
	if it.AvgComments < 0 {
		v.Add("userItineraryAnalytic.avgComments", "must be non-negative")
	}
	if it.TotalReviewsCount < 0 {
		v.Add("userItineraryAnalytic.totalReviewsCount", "must be non-negative")
	}
	if it.AverageReviewScore < 0 || it.AverageReviewScore > MaxReviewScore {
		v.Add("userItineraryAnalytic.averageReviewScore", "must be between 0 and 5")
	}

	pub := a.UserPublicationAnalytic
	if pub.TotalCommentsCount < 0 {
		v.Add("userPublicationAnalytic.totalCommentsCount", "must be non-negative")
	}
	if pub.CommentsPerPublication < 0 {
		v.Add("userPublicationAnalytic.commentsPerPublication", "must be non-negative")
	}
	if pub.TotalLikesCount < 0 {
		v.Add("userPublicationAnalytic.totalLikesCount", "must be non-negative")
	}
	if pub.AverageLikes < 0 {
		v.Add("userPublicationAnalytic.averageLikes", "must be non-negative")
	}

	return v.OrNil()
}

// PrepareForStorage fills the id and timestamps. analysisDate defaults to creation time.
func (a *UserAnalytic) PrepareForStorage() {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.AnalysisDate.IsZero() {
		a.AnalysisDate = a.CreatedAt
	}
	a.UpdatedAt = now
}

// Refresh replaces the aggregates and stamps the analysis date.
func (a *UserAnalytic) Refresh(itinerary ItineraryAnalytic, publication PublicationAnalytic, now time.Time) {
	a.UserItineraryAnalytic = itinerary
	a.UserPublicationAnalytic = publication
	a.AnalysisDate = now
	a.UpdatedAt = now
}

// Apply merges a patch into the analytic.
func (a *UserAnalytic) Apply(p *UserAnalyticPatch) {
	if p == nil {
		return
	}
	if it := p.UserItineraryAnalytic; it != nil {
		if it.TotalCommentsCount != nil {
			a.UserItineraryAnalytic.TotalCommentsCount = *it.TotalCommentsCount
		}
		if it.AvgComments != nil {
			a.UserItineraryAnalytic.AvgComments = *it.AvgComments
		}
		if it.TotalReviewsCount != nil {
			a.UserItineraryAnalytic.TotalReviewsCount = *it.TotalReviewsCount
		}
		if it.AverageReviewScore != nil {
			a.UserItineraryAnalytic.AverageReviewScore = *it.AverageReviewScore
		}
		if it.BestItineraryByAvgReviewScore != nil {
			a.UserItineraryAnalytic.BestItineraryByAvgReviewScore = it.BestItineraryByAvgReviewScore
		}
	}
	if pub := p.UserPublicationAnalytic; pub != nil {
		if pub.TotalCommentsCount != nil {
			a.UserPublicationAnalytic.TotalCommentsCount = *pub.TotalCommentsCount
		}
		if pub.CommentsPerPublication != nil {
			a.UserPublicationAnalytic.CommentsPerPublication = *pub.CommentsPerPublication
		}
		if pub.TotalLikesCount != nil {
			a.UserPublicationAnalytic.TotalLikesCount = *pub.TotalLikesCount
		}
		if pub.AverageLikes != nil {
			a.UserPublicationAnalytic.AverageLikes = *pub.AverageLikes
		}
	}
	if p.AnalysisDate != nil {
		a.AnalysisDate = *p.AnalysisDate
	}
}

// SaveOutcome tells the caller what an upsert did.
type SaveOutcome string

const (
	SaveCreated   SaveOutcome = "created"
	SaveUpdated   SaveOutcome = "updated"
	SaveUnchanged SaveOutcome = "unchanged"
)

// AggregateScope selects between one record per user or one per itinerary.
type AggregateScope string

const (
	ScopeUser      AggregateScope = "user"
	ScopeItinerary AggregateScope = "itinerary"
)
