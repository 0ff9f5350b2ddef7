// internal/core/services/analytic.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

const (
	// DefaultCacheTTL bounds how long a cached analytic may be served.
	DefaultCacheTTL = 5 * time.Minute
	computeLockTTL  = 30 * time.Second
)

func analyticKey(id string) string         { return "analytic:" + id }
func userAnalyticsKey(userID string) string { return "analytics:user:" + userID }
func computeLockKey(userID string) string   { return "lock:recompute:" + userID }

// AnalyticService handles analytics business logic
type AnalyticService struct {
	repo     ports.AnalyticRepository
	client   ports.ItineraryClient
	cache    ports.CacheRepository
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Statically assert that *AnalyticService implements the AnalyticService interface.
var _ ports.AnalyticService = (*AnalyticService)(nil)

// NewAnalyticService creates a new analytics service. cache may be nil.
func NewAnalyticService(
	repo ports.AnalyticRepository,
	client ports.ItineraryClient,
	cache ports.CacheRepository,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *AnalyticService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &AnalyticService{
		repo:     repo,
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("service", "analytics")),
	}
}

// GetByID retrieves an analytic, reading through the cache.
func (s *AnalyticService) GetByID(ctx context.Context, id string) (*domain.UserAnalytic, error) {
	if s.cache == nil {
		return s.repo.FindByID(ctx, id)
	}

	var a domain.UserAnalytic
	err := s.cache.GetOrSet(ctx, analyticKey(id), &a, func() (interface{}, error) {
		return s.repo.FindByID(ctx, id)
	}, s.cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytic: %w", err)
	}
	return &a, nil
}

// GetByUserID lists a user's analytics. A user with none gets an empty list.
func (s *AnalyticService) GetByUserID(ctx context.Context, userID string) ([]*domain.UserAnalytic, error) {
	load := func() ([]*domain.UserAnalytic, error) {
		items, err := s.repo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*domain.UserAnalytic{}
		}
		return items, nil
	}

	if s.cache == nil {
		return load()
	}

	var items []*domain.UserAnalytic
	err := s.cache.GetOrSet(ctx, userAnalyticsKey(userID), &items, func() (interface{}, error) {
		return load()
	}, s.cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics for user: %w", err)
	}
	if items == nil {
		items = []*domain.UserAnalytic{}
	}
	return items, nil
}

// List retrieves analytics with filtering and pagination
func (s *AnalyticService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult[domain.UserAnalytic], error) {
	limit, offset := normalizePage(&params)

	filter := ports.AnalyticFilter{
		UserID:     params.UserID,
		ResourceID: params.ResourceID,
		Limit:      limit,
		Offset:     offset,
	}
	if params.StaleOnly {
		cutoff := s.now().Add(-domain.StalenessWindow)
		filter.StaleBefore = &cutoff
	}

	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}

	return newListResult(items, params, total), nil
}

// Create validates and inserts a new analytic.
func (s *AnalyticService) Create(ctx context.Context, a *domain.UserAnalytic) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.PrepareForStorage()

	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create analytic: %w", err)
	}
	s.invalidate(ctx, a)

	s.logger.InfoContext(ctx, "analytic created",
		slog.String("id", a.ID),
		slog.String("user_id", a.UserID),
		slog.String("resource_id", a.ResourceID))
	return nil
}

// Update applies a partial update to the nested aggregates.
func (s *AnalyticService) Update(ctx context.Context, id string, patch *domain.UserAnalyticPatch) (*domain.UserAnalytic, error) {
	updated, err := s.repo.Modify(ctx, id, func(a *domain.UserAnalytic) (bool, error) {
		a.Apply(patch)
		if err := a.Validate(); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update analytic: %w", err)
	}
	s.invalidate(ctx, updated)

	s.logger.InfoContext(ctx, "analytic updated", slog.String("id", id))
	return updated, nil
}

// Delete removes an analytic and evicts it from the cache.
func (s *AnalyticService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find analytic: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete analytic: %w", err)
	}
	s.invalidate(ctx, existing)

	s.logger.InfoContext(ctx, "analytic deleted", slog.String("id", id))
	return nil
}

// Save upserts by staleness. A record older than the staleness window gets
// the new aggregates and a fresh analysis date. A fresh record is returned
// untouched. A missing record, or an empty id, is created.
func (s *AnalyticService) Save(ctx context.Context, id string, a *domain.UserAnalytic) (*domain.UserAnalytic, domain.SaveOutcome, error) {
	if err := a.Validate(); err != nil {
		return nil, "", err
	}

	if id == "" {
		a.ID = ""
		return s.createForSave(ctx, a)
	}

	saved, outcome, err := s.refreshIfStale(ctx, id, a)
	if errors.Is(err, domain.ErrNotFound) {
		a.ID = id
		saved, outcome, err = s.createForSave(ctx, a)
		if errors.Is(err, domain.ErrConflict) {
			// lost a create race; the winner's row is now there to compare against
			saved, outcome, err = s.refreshIfStale(ctx, id, a)
		}
	}
	if err != nil {
		return nil, "", err
	}
	return saved, outcome, nil
}

func (s *AnalyticService) createForSave(ctx context.Context, a *domain.UserAnalytic) (*domain.UserAnalytic, domain.SaveOutcome, error) {
	if err := s.Create(ctx, a); err != nil {
		return nil, "", err
	}
	metrics.AnalyticsSaveTotal.WithLabelValues(string(domain.SaveCreated)).Inc()
	return a, domain.SaveCreated, nil
}

func (s *AnalyticService) refreshIfStale(ctx context.Context, id string, incoming *domain.UserAnalytic) (*domain.UserAnalytic, domain.SaveOutcome, error) {
	now := s.now()
	outcome := domain.SaveUnchanged

	saved, err := s.repo.Modify(ctx, id, func(existing *domain.UserAnalytic) (bool, error) {
		if !existing.IsStale(now) {
			return false, nil
		}
		existing.Refresh(incoming.UserItineraryAnalytic, incoming.UserPublicationAnalytic, now)
		outcome = domain.SaveUpdated
		return true, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to save analytic: %w", err)
	}

	if outcome == domain.SaveUpdated {
		s.invalidate(ctx, saved)
	}
	metrics.AnalyticsSaveTotal.WithLabelValues(string(outcome)).Inc()

	s.logger.DebugContext(ctx, "analytic saved",
		slog.String("id", id),
		slog.String("outcome", string(outcome)))
	return saved, outcome, nil
}

// GetOrCreate returns the analytic with id, creating it from a when absent.
// The bool reports whether a record was created.
func (s *AnalyticService) GetOrCreate(ctx context.Context, id string, a *domain.UserAnalytic) (*domain.UserAnalytic, bool, error) {
	if id != "" {
		existing, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to get analytic: %w", err)
		}
	}

	a.ID = id
	if err := s.Create(ctx, a); err != nil {
		if id != "" && errors.Is(err, domain.ErrConflict) {
			existing, findErr := s.repo.FindByID(ctx, id)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return a, true, nil
}

// ComputeForUser fetches the user's itineraries, aggregates them and upserts
// each result by (user, resource) with the staleness rule.
func (s *AnalyticService) ComputeForUser(ctx context.Context, userID string, scope domain.AggregateScope) ([]*domain.UserAnalytic, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}

	release, err := s.acquireComputeLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	itineraries, err := s.client.FetchByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch itineraries: %w", err)
	}

	var computed []*domain.UserAnalytic
	if scope == domain.ScopeUser {
		a, aggErr := AggregateUser(userID, itineraries)
		if aggErr != nil {
			return nil, aggErr
		}
		computed = []*domain.UserAnalytic{a}
	} else {
		computed, err = AggregateByItinerary(userID, itineraries)
		if err != nil {
			return nil, err
		}
	}

	results := make([]*domain.UserAnalytic, 0, len(computed))
	for _, c := range computed {
		saved, err := s.upsertByPair(ctx, c)
		if err != nil {
			return nil, err
		}
		results = append(results, saved)
	}

	s.logger.InfoContext(ctx, "analytics computed",
		slog.String("user_id", userID),
		slog.String("scope", string(scope)),
		slog.Int("records", len(results)))
	return results, nil
}

func (s *AnalyticService) upsertByPair(ctx context.Context, computed *domain.UserAnalytic) (*domain.UserAnalytic, error) {
	var lastErr error
	// a second pass picks up a row inserted concurrently between lookup and create
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.FindByUserAndResource(ctx, computed.UserID, computed.ResourceID)
		switch {
		case err == nil:
			computed.UserPublicationAnalytic = existing.UserPublicationAnalytic
			saved, _, err := s.Save(ctx, existing.ID, computed)
			return saved, err
		case errors.Is(err, domain.ErrNotFound):
			saved, _, err := s.Save(ctx, "", computed)
			if !errors.Is(err, domain.ErrConflict) {
				return saved, err
			}
			lastErr = err
		default:
			return nil, fmt.Errorf("failed to look up analytic: %w", err)
		}
	}
	return nil, lastErr
}

// acquireComputeLock keeps two computations for one user from interleaving.
// Each holder stores its own token, so releasing after the TTL lapsed never
// drops a lock taken by the next caller. A cache outage degrades to running
// unlocked.
func (s *AnalyticService) acquireComputeLock(ctx context.Context, userID string) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}

	key := computeLockKey(userID)
	token := uuid.NewString()
	ok, err := s.cache.SetNX(ctx, key, token, computeLockTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "compute lock unavailable, continuing without it",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return noop, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: analytics computation already running for user %s", domain.ErrConflict, userID)
	}

	return func() {
		released, err := s.cache.DeleteIfEqual(context.WithoutCancel(ctx), key, token)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "failed to release compute lock",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		case !released:
			s.logger.WarnContext(ctx, "compute lock expired before release",
				slog.String("user_id", userID),
				slog.Duration("ttl", computeLockTTL))
		}
	}, nil
}

func (s *AnalyticService) invalidate(ctx context.Context, a *domain.UserAnalytic) {
	invalidateAnalytic(ctx, s.cache, s.logger, a)
}

func invalidateAnalytic(ctx context.Context, cache ports.CacheRepository, logger *slog.Logger, a *domain.UserAnalytic) {
	if cache == nil || a == nil {
		return
	}
	if err := cache.Delete(ctx, analyticKey(a.ID), userAnalyticsKey(a.UserID)); err != nil {
		logger.WarnContext(ctx, "failed to invalidate analytic cache",
			slog.String("id", a.ID),
			slog.String("error", err.Error()))
	}
}
