// internal/core/services/recompute.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

// RecomputeJob refreshes analytics whose analysis date has fallen out of the
// staleness window. Each record is handled on its own; one failure does not
// stop the batch.
type RecomputeJob struct {
	repo   ports.AnalyticRepository
	client ports.ItineraryClient
	cache  ports.CacheRepository
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.RecomputeRunner = (*RecomputeJob)(nil)

// NewRecomputeJob creates a new recompute job. cache may be nil.
func NewRecomputeJob(
	repo ports.AnalyticRepository,
	client ports.ItineraryClient,
	cache ports.CacheRepository,
	logger *slog.Logger,
) *RecomputeJob {
	return &RecomputeJob{
		repo:   repo,
		client: client,
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With(slog.String("service", "recompute")),
	}
}

// Run refreshes the stale analytics matching recordID and userID. When
// nothing matches at all, a user-wide analytic is created.
func (j *RecomputeJob) Run(ctx context.Context, recordID, userID string) (*ports.RecomputeSummary, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}

	now := j.now()
	stale, err := j.repo.FindStale(ctx, ports.StaleFilter{
		ID:     recordID,
		UserID: userID,
		Cutoff: now.Add(-domain.StalenessWindow),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find stale analytics: %w", err)
	}

	summary := &ports.RecomputeSummary{}

	if len(stale) == 0 {
		exists, err := j.exists(ctx, recordID, userID)
		if err != nil {
			return nil, err
		}
		if exists {
			summary.Skipped++
			j.record("skipped")
			return summary, nil
		}

		itineraries, err := j.client.FetchByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch itineraries: %w", err)
		}
		if err := j.create(ctx, recordID, userID, itineraries); err != nil {
			return nil, err
		}
		summary.Created++
		j.record("created")
		return summary, nil
	}

	itineraries, err := j.client.FetchByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch itineraries: %w", err)
	}
	j.refreshAll(ctx, stale, itineraries, now, summary)

	j.logger.InfoContext(ctx, "recompute finished",
		slog.String("user_id", userID),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// RunStale is the daily sweep over every stale analytic. Itineraries are
// fetched once per user.
func (j *RecomputeJob) RunStale(ctx context.Context) (*ports.RecomputeSummary, error) {
	now := j.now()
	stale, err := j.repo.FindStale(ctx, ports.StaleFilter{Cutoff: now.Add(-domain.StalenessWindow)})
	if err != nil {
		return nil, fmt.Errorf("failed to find stale analytics: %w", err)
	}

	var order []string
	byUser := make(map[string][]*domain.UserAnalytic)
	for _, a := range stale {
		if _, seen := byUser[a.UserID]; !seen {
			order = append(order, a.UserID)
		}
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}

	summary := &ports.RecomputeSummary{}
	for _, userID := range order {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		records := byUser[userID]
		itineraries, err := j.client.FetchByUser(ctx, userID)
		if err != nil {
			j.logger.ErrorContext(ctx, "failed to fetch itineraries for recompute",
				slog.String("user_id", userID),
				slog.Int("records", len(records)),
				slog.String("error", err.Error()))
			summary.Failed += len(records)
			metrics.RecomputeRecordsTotal.WithLabelValues("failed").Add(float64(len(records)))
			continue
		}
		j.refreshAll(ctx, records, itineraries, now, summary)
	}

	if summary.Updated > 0 {
		j.dropUserLists(ctx)
	}

	j.logger.InfoContext(ctx, "stale sweep finished",
		slog.Int("users", len(order)),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// dropUserLists evicts every cached per-user list. Lists read while the sweep
// was running may mix refreshed and stale records.
func (j *RecomputeJob) dropUserLists(ctx context.Context) {
	if j.cache == nil {
		return
	}
	if err := j.cache.DeletePattern(ctx, userAnalyticsKey("*")); err != nil {
		j.logger.WarnContext(ctx, "failed to drop cached analytics lists",
			slog.String("error", err.Error()))
	}
}

func (j *RecomputeJob) refreshAll(ctx context.Context, records []*domain.UserAnalytic, itineraries []domain.Itinerary, now time.Time, summary *ports.RecomputeSummary) {
	for _, rec := range records {
		changed, err := j.refresh(ctx, rec, itineraries, now)
		switch {
		case err != nil:
			j.logger.ErrorContext(ctx, "failed to recompute analytic",
				slog.String("id", rec.ID),
				slog.String("user_id", rec.UserID),
				slog.String("error", err.Error()))
			summary.Failed++
			j.record("failed")
		case changed:
			summary.Updated++
			j.record("updated")
		default:
			summary.Skipped++
			j.record("skipped")
		}
	}
}

// refresh recomputes the itinerary aggregate a record describes and carries
// its publication aggregate forward.
func (j *RecomputeJob) refresh(ctx context.Context, rec *domain.UserAnalytic, itineraries []domain.Itinerary, now time.Time) (bool, error) {
	aggregate, err := AggregateForResource(rec.ResourceID, itineraries)
	if err != nil {
		return false, err
	}

	changed := false
	updated, err := j.repo.Modify(ctx, rec.ID, func(a *domain.UserAnalytic) (bool, error) {
		// refreshed by someone else since FindStale
		if !a.IsStale(now) {
			return false, nil
		}
		a.Refresh(aggregate, a.UserPublicationAnalytic, now)
		changed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		invalidateAnalytic(ctx, j.cache, j.logger, updated)
	}
	return changed, nil
}

func (j *RecomputeJob) create(ctx context.Context, recordID, userID string, itineraries []domain.Itinerary) error {
	a, err := AggregateUser(userID, itineraries)
	if err != nil {
		return err
	}
	a.ID = recordID
	a.PrepareForStorage()
	a.AnalysisDate = j.now()

	if err := j.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create analytic: %w", err)
	}
	invalidateAnalytic(ctx, j.cache, j.logger, a)

	j.logger.InfoContext(ctx, "analytic created by recompute",
		slog.String("id", a.ID),
		slog.String("user_id", userID))
	return nil
}

// exists reports whether the record id or any analytic of the user is
// already stored. Either one means there is nothing to create.
func (j *RecomputeJob) exists(ctx context.Context, recordID, userID string) (bool, error) {
	if recordID != "" {
		_, err := j.repo.FindByID(ctx, recordID)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("failed to look up analytic: %w", err)
		}
	}

	items, err := j.repo.FindByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to look up analytics: %w", err)
	}
	return len(items) > 0, nil
}

func (j *RecomputeJob) record(outcome string) {
	metrics.RecomputeRecordsTotal.WithLabelValues(outcome).Inc()
}
