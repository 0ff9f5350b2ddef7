// internal/core/services/aggregator.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ammerola/analytics-reports/internal/core/domain"
)

// averagePlaces is the rounding applied to every derived mean.
const averagePlaces = 2

// AggregateUser folds all of a user's itineraries into one user-wide analytic.
// Every comment and review on the itineraries counts, regardless of author.
func AggregateUser(userID string, itineraries []domain.Itinerary) (*domain.UserAnalytic, error) {
	summary, err := summarize(itineraries)
	if err != nil {
		return nil, err
	}

	return &domain.UserAnalytic{
		UserID:                userID,
		UserItineraryAnalytic: summary,
	}, nil
}

// AggregateByItinerary produces one resource-scoped analytic per itinerary,
// keyed by the itinerary id.
func AggregateByItinerary(userID string, itineraries []domain.Itinerary) ([]*domain.UserAnalytic, error) {
	if len(itineraries) == 0 {
		return nil, domain.ErrNoItineraries
	}

	out := make([]*domain.UserAnalytic, 0, len(itineraries))
	for _, it := range itineraries {
		summary, err := summarize([]domain.Itinerary{it})
		if err != nil {
			return nil, fmt.Errorf("itinerary %s: %w", it.ID, err)
		}
		out = append(out, &domain.UserAnalytic{
			UserID:                userID,
			ResourceID:            it.ID,
			UserItineraryAnalytic: summary,
		})
	}
	return out, nil
}

// AggregateForResource recomputes the aggregate a stored analytic describes:
// user-wide when resourceID is empty, otherwise the matching itinerary only.
func AggregateForResource(resourceID string, itineraries []domain.Itinerary) (domain.ItineraryAnalytic, error) {
	if resourceID == "" {
		return summarize(itineraries)
	}
	for _, it := range itineraries {
		if it.ID == resourceID {
			return summarize([]domain.Itinerary{it})
		}
	}
	return domain.ItineraryAnalytic{}, fmt.Errorf("itinerary %s: %w", resourceID, domain.ErrNotFound)
}

func summarize(itineraries []domain.Itinerary) (domain.ItineraryAnalytic, error) {
	if len(itineraries) == 0 {
		return domain.ItineraryAnalytic{}, domain.ErrNoItineraries
	}

	var (
		totalComments int
		totalReviews  int
		scoreSum      = decimal.Zero
		bestID        *string
		bestMean      decimal.Decimal
	)

	for i := range itineraries {
		it := &itineraries[i]
		totalComments += len(it.Comments)
		totalReviews += len(it.Reviews)

		if len(it.Reviews) == 0 {
			continue
		}

		itSum := decimal.Zero
		for _, r := range it.Reviews {
			if r.Score < 0 || r.Score > domain.MaxReviewScore {
				return domain.ItineraryAnalytic{}, domain.NewValidationError(
					"reviews.score", fmt.Sprintf("score %v on itinerary %s is outside 0..5", r.Score, it.ID))
			}
			itSum = itSum.Add(decimal.NewFromFloat(r.Score))
		}
		scoreSum = scoreSum.Add(itSum)

		mean := itSum.Div(decimal.NewFromInt(int64(len(it.Reviews))))
		// strict comparison keeps the first itinerary on ties
		if bestID == nil || mean.GreaterThan(bestMean) {
			id := it.ID
			bestID = &id
			bestMean = mean
		}
	}

	avgComments := decimal.NewFromInt(int64(totalComments)).
		Div(decimal.NewFromInt(int64(len(itineraries)))).
		Round(averagePlaces)

	avgScore := decimal.Zero
	if totalReviews > 0 {
		avgScore = scoreSum.Div(decimal.NewFromInt(int64(totalReviews))).Round(averagePlaces)
	}

	return domain.ItineraryAnalytic{
		TotalCommentsCount:            totalComments,
		AvgComments:                   avgComments.InexactFloat64(),
		TotalReviewsCount:             totalReviews,
		AverageReviewScore:            avgScore.InexactFloat64(),
		BestItineraryByAvgReviewScore: bestID,
	}, nil
}
