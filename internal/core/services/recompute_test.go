package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/core/services"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

func TestRecomputeJob_Run(t *testing.T) {
	itineraries := []domain.Itinerary{
		helpers.CreateTestItinerary("itin-1", "user-1", 3, 5),
		helpers.CreateTestItinerary("itin-2", "user-1", 1, 2, 4),
	}

	tests := []struct {
		name            string
		recordID        string
		setupMocks      func(*mocks.MockAnalyticRepository, *mocks.MockItineraryClient)
		expectedSummary ports.RecomputeSummary
		expectedErr     error
	}{
		{
			name:     "refreshes_stale_records",
			recordID: "",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				wide := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "wide" }, helpers.Stale)
				scoped := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
					a.ID = "scoped"
					a.ResourceID = "itin-2"
				}, helpers.Stale)

				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f ports.StaleFilter) ([]*domain.UserAnalytic, error) {
						assert.Equal(t, "user-1", f.UserID)
						assert.WithinDuration(t, time.Now().Add(-domain.StalenessWindow), f.Cutoff, time.Minute)
						return []*domain.UserAnalytic{wide, scoped}, nil
					})
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(itineraries, nil).Times(1)
				repo.EXPECT().Modify(gomock.Any(), "wide", gomock.Any()).
					DoAndReturn(func(ctx context.Context, id string, fn ports.ModifyFunc) (*domain.UserAnalytic, error) {
						a, err := modifyWith(wide)(ctx, id, fn)
						assert.Equal(t, 4, a.UserItineraryAnalytic.TotalCommentsCount)
						assert.Equal(t, 10, a.UserPublicationAnalytic.TotalLikesCount)
						return a, err
					})
				repo.EXPECT().Modify(gomock.Any(), "scoped", gomock.Any()).
					DoAndReturn(func(ctx context.Context, id string, fn ports.ModifyFunc) (*domain.UserAnalytic, error) {
						a, err := modifyWith(scoped)(ctx, id, fn)
						assert.Equal(t, 1, a.UserItineraryAnalytic.TotalCommentsCount)
						assert.Equal(t, 3.0, a.UserItineraryAnalytic.AverageReviewScore)
						return a, err
					})
			},
			expectedSummary: ports.RecomputeSummary{Updated: 2},
		},
		{
			name:     "skips_record_refreshed_concurrently",
			recordID: "a1",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				staleView := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "a1" }, helpers.Stale)
				current := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "a1" })

				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return([]*domain.UserAnalytic{staleView}, nil)
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(itineraries, nil)
				repo.EXPECT().Modify(gomock.Any(), "a1", gomock.Any()).DoAndReturn(modifyWith(current))
			},
			expectedSummary: ports.RecomputeSummary{Skipped: 1},
		},
		{
			name:     "fresh_record_is_skipped",
			recordID: "a1",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return(nil, nil)
				repo.EXPECT().FindByID(gomock.Any(), "a1").Return(helpers.CreateTestAnalytic(), nil)
			},
			expectedSummary: ports.RecomputeSummary{Skipped: 1},
		},
		{
			name:     "unknown_id_skipped_when_user_has_analytics",
			recordID: "new-id",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return(nil, nil)
				repo.EXPECT().FindByID(gomock.Any(), "new-id").Return(nil, domain.ErrNotFound)
				repo.EXPECT().FindByUserID(gomock.Any(), "user-1").
					Return([]*domain.UserAnalytic{helpers.CreateTestAnalytic()}, nil)
			},
			expectedSummary: ports.RecomputeSummary{Skipped: 1},
		},
		{
			name:     "creates_with_requested_id",
			recordID: "new-id",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return(nil, nil)
				repo.EXPECT().FindByID(gomock.Any(), "new-id").Return(nil, domain.ErrNotFound)
				repo.EXPECT().FindByUserID(gomock.Any(), "user-1").Return(nil, nil)
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(itineraries, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *domain.UserAnalytic) error {
						assert.Equal(t, "new-id", a.ID)
						return nil
					})
			},
			expectedSummary: ports.RecomputeSummary{Created: 1},
		},
		{
			name:     "creates_when_user_has_no_analytics",
			recordID: "",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return(nil, nil)
				repo.EXPECT().FindByUserID(gomock.Any(), "user-1").Return(nil, nil)
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(itineraries, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *domain.UserAnalytic) error {
						assert.NotEmpty(t, a.ID)
						assert.Empty(t, a.ResourceID)
						assert.Equal(t, 4, a.UserItineraryAnalytic.TotalCommentsCount)
						return nil
					})
			},
			expectedSummary: ports.RecomputeSummary{Created: 1},
		},
		{
			name:     "one_failure_does_not_stop_batch",
			recordID: "",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				gone := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
					a.ID = "gone"
					a.ResourceID = "deleted-itinerary"
				}, helpers.Stale)
				ok := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "ok" }, helpers.Stale)

				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return([]*domain.UserAnalytic{gone, ok}, nil)
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(itineraries, nil)
				repo.EXPECT().Modify(gomock.Any(), "ok", gomock.Any()).DoAndReturn(modifyWith(ok))
			},
			expectedSummary: ports.RecomputeSummary{Updated: 1, Failed: 1},
		},
		{
			name:     "upstream_failure_fails_run",
			recordID: "",
			setupMocks: func(repo *mocks.MockAnalyticRepository, client *mocks.MockItineraryClient) {
				repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).
					Return([]*domain.UserAnalytic{helpers.CreateTestAnalytic(helpers.Stale)}, nil)
				client.EXPECT().FetchByUser(gomock.Any(), "user-1").Return(nil, domain.ErrUpstreamUnreachable)
			},
			expectedErr: domain.ErrUpstreamUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockAnalyticRepository(ctrl)
			client := mocks.NewMockItineraryClient(ctrl)
			tt.setupMocks(repo, client)

			job := services.NewRecomputeJob(repo, client, nil, helpers.TestLogger())

			summary, err := job.Run(context.Background(), tt.recordID, "user-1")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSummary, *summary)
		})
	}
}

func TestRecomputeJob_Run_RequiresUser(t *testing.T) {
	job := services.NewRecomputeJob(nil, nil, nil, helpers.TestLogger())

	_, err := job.Run(context.Background(), "a1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecomputeJob_RunStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAnalyticRepository(ctrl)
	client := mocks.NewMockItineraryClient(ctrl)
	cache, r := newTestCache(t)

	u1a := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "u1a"; a.UserID = "u1" }, helpers.Stale)
	u2 := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "u2"; a.UserID = "u2" }, helpers.Stale)
	u1b := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ID = "u1b"
		a.UserID = "u1"
		a.ResourceID = "itin-1"
	}, helpers.Stale)

	require.NoError(t, r.Server.Set("analytic:u1a", "{}"))
	require.NoError(t, r.Server.Set("analytics:user:u3", "[]"))
	require.NoError(t, r.Server.Set("svc:itineraries", `"http://itineraries"`))

	repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ports.StaleFilter) ([]*domain.UserAnalytic, error) {
			assert.Empty(t, f.UserID)
			assert.Empty(t, f.ID)
			return []*domain.UserAnalytic{u1a, u2, u1b}, nil
		})
	client.EXPECT().FetchByUser(gomock.Any(), "u1").
		Return([]domain.Itinerary{helpers.CreateTestItinerary("itin-1", "u1", 2, 4)}, nil).Times(1)
	client.EXPECT().FetchByUser(gomock.Any(), "u2").
		Return(nil, errors.New("dial tcp: connection refused")).Times(1)
	repo.EXPECT().Modify(gomock.Any(), "u1a", gomock.Any()).DoAndReturn(modifyWith(u1a))
	repo.EXPECT().Modify(gomock.Any(), "u1b", gomock.Any()).DoAndReturn(modifyWith(u1b))

	job := services.NewRecomputeJob(repo, client, cache, helpers.TestLogger())

	summary, err := job.RunStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.RecomputeSummary{Updated: 2, Failed: 1}, *summary)
	assert.False(t, r.Server.Exists("analytic:u1a"), "refreshed record evicted from cache")
	assert.False(t, r.Server.Exists("analytics:user:u3"), "cached lists dropped after the sweep")
	assert.True(t, r.Server.Exists("svc:itineraries"))
}

func TestRecomputeJob_RunStale_NothingUpdatedKeepsLists(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAnalyticRepository(ctrl)
	client := mocks.NewMockItineraryClient(ctrl)
	cache, r := newTestCache(t)
	require.NoError(t, r.Server.Set("analytics:user:u3", "[]"))

	repo.EXPECT().FindStale(gomock.Any(), gomock.Any()).Return(nil, nil)

	job := services.NewRecomputeJob(repo, client, cache, helpers.TestLogger())

	summary, err := job.RunStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.RecomputeSummary{}, *summary)
	assert.True(t, r.Server.Exists("analytics:user:u3"))
}
