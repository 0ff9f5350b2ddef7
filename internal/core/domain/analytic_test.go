package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

func TestUserAnalytic_Validate(t *testing.T) {
	tests := []struct {
		name       string
		analytic   *domain.UserAnalytic
		wantError  bool
		wantFields []string
	}{
		{
			name: "valid_analytic",
			analytic: &domain.UserAnalytic{
				UserID: "u1",
				UserItineraryAnalytic: domain.ItineraryAnalytic{
					TotalCommentsCount: 2,
					AvgComments:        2,
					TotalReviewsCount:  2,
					AverageReviewScore: 4.5,
				},
			},
		},
		{
			name:       "missing_user_id",
			analytic:   &domain.UserAnalytic{},
			wantError:  true,
			wantFields: []string{"userId"},
		},
		{
			name: "negative_counts",
			analytic: &domain.UserAnalytic{
				UserID: "u1",
				UserItineraryAnalytic: domain.ItineraryAnalytic{
					TotalCommentsCount: -1,
				},
				UserPublicationAnalytic: domain.PublicationAnalytic{
					TotalLikesCount: -3,
				},
			},
			wantError: true,
			wantFields: []string{
				"userItineraryAnalytic.totalCommentsCount",
				"userPublicationAnalytic.totalLikesCount",
			},
		},
		{
			name: "review_score_above_bound",
			analytic: &domain.UserAnalytic{
				UserID: "u1",
				UserItineraryAnalytic: domain.ItineraryAnalytic{
					AverageReviewScore: 7,
				},
			},
			wantError:  true,
			wantFields: []string{"userItineraryAnalytic.averageReviewScore"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.analytic.Validate()

			if !tt.wantError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestUserAnalytic_IsStale(t *testing.T) {
	now := time.Now()

	stale := &domain.UserAnalytic{AnalysisDate: now.Add(-25 * time.Hour)}
	fresh := &domain.UserAnalytic{AnalysisDate: now.Add(-1 * time.Hour)}

	assert.True(t, stale.IsStale(now))
	assert.False(t, fresh.IsStale(now))
}

func TestUserAnalytic_PrepareForStorage(t *testing.T) {
	a := &domain.UserAnalytic{UserID: "u1"}
	a.PrepareForStorage()

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.AnalysisDate)

	// an explicit id survives
	b := &domain.UserAnalytic{ID: "given-id", UserID: "u1"}
	b.PrepareForStorage()
	assert.Equal(t, "given-id", b.ID)
}

func TestUserAnalytic_Apply(t *testing.T) {
	best := "itin-9"
	comments := 10
	likes := 4

	a := &domain.UserAnalytic{
		UserID: "u1",
		UserItineraryAnalytic: domain.ItineraryAnalytic{
			TotalCommentsCount: 1,
			TotalReviewsCount:  3,
		},
	}

	a.Apply(&domain.UserAnalyticPatch{
		UserItineraryAnalytic: &domain.ItineraryAnalyticPatch{
			TotalCommentsCount:            &comments,
			BestItineraryByAvgReviewScore: &best,
		},
		UserPublicationAnalytic: &domain.PublicationAnalyticPatch{
			TotalLikesCount: &likes,
		},
	})

	assert.Equal(t, 10, a.UserItineraryAnalytic.TotalCommentsCount)
	assert.Equal(t, 3, a.UserItineraryAnalytic.TotalReviewsCount)
	require.NotNil(t, a.UserItineraryAnalytic.BestItineraryByAvgReviewScore)
	assert.Equal(t, "itin-9", *a.UserItineraryAnalytic.BestItineraryByAvgReviewScore)
	assert.Equal(t, 4, a.UserPublicationAnalytic.TotalLikesCount)
}
