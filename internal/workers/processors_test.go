package workers_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/export"
	"github.com/ammerola/analytics-reports/internal/pkg/logger"
	"github.com/ammerola/analytics-reports/internal/workers"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

func TestRecomputeProcessor_Recompute(t *testing.T) {
	tests := []struct {
		name          string
		payload       []byte
		setupMocks    func(*mocks.MockRecomputeRunner)
		expectedError bool
		skipRetry     bool
	}{
		{
			name:    "runs_job_for_payload",
			payload: []byte(`{"id":"analytic-1","userId":"user-1"}`),
			setupMocks: func(runner *mocks.MockRecomputeRunner) {
				runner.EXPECT().Run(gomock.Any(), "analytic-1", "user-1").
					Return(&ports.RecomputeSummary{Updated: 1}, nil)
			},
		},
		{
			name:          "malformed_payload_is_not_retried",
			payload:       []byte(`{not json`),
			setupMocks:    func(*mocks.MockRecomputeRunner) {},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name:    "validation_error_is_not_retried",
			payload: []byte(`{"id":"analytic-1"}`),
			setupMocks: func(runner *mocks.MockRecomputeRunner) {
				runner.EXPECT().Run(gomock.Any(), "analytic-1", "").
					Return(nil, domain.NewValidationError("userId", "is required"))
			},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name:    "upstream_failure_is_retried",
			payload: []byte(`{"userId":"user-1"}`),
			setupMocks: func(runner *mocks.MockRecomputeRunner) {
				runner.EXPECT().Run(gomock.Any(), "", "user-1").
					Return(nil, fmt.Errorf("failed to fetch itineraries: %w", domain.ErrUpstreamUnreachable))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runner := mocks.NewMockRecomputeRunner(ctrl)
			tt.setupMocks(runner)

			processor := workers.NewRecomputeProcessor(runner, helpers.TestLogger())
			err := processor.Recompute(context.Background(), asynq.NewTask(workers.TypeAnalyticsRecompute, tt.payload))

			if !tt.expectedError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestRecomputeProcessor_RecomputeStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRecomputeRunner(ctrl)
	processor := workers.NewRecomputeProcessor(runner, helpers.TestLogger())

	runner.EXPECT().RunStale(gomock.Any()).Return(&ports.RecomputeSummary{Updated: 3, Failed: 1}, nil)
	require.NoError(t, processor.RecomputeStale(context.Background(), asynq.NewTask(workers.TypeAnalyticsRecomputeStale, nil)))

	runner.EXPECT().RunStale(gomock.Any()).Return(nil, errors.New("db down"))
	assert.Error(t, processor.RecomputeStale(context.Background(), asynq.NewTask(workers.TypeAnalyticsRecomputeStale, nil)))
}

func TestSnapshotProcessor_Snapshot(t *testing.T) {
	t.Run("uploads_workbook_of_every_page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analytics := mocks.NewMockAnalyticService(ctrl)
		store := mocks.NewMockObjectStore(ctrl)

		first := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "a-1" })
		second := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.ID = "a-2" })

		gomock.InOrder(
			analytics.EXPECT().List(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p ports.ListParams) (*ports.ListResult[domain.UserAnalytic], error) {
					assert.Equal(t, 1, p.Page)
					return &ports.ListResult[domain.UserAnalytic]{
						Items: []*domain.UserAnalytic{first}, Page: 1, PageSize: 1, TotalCount: 2, TotalPages: 2,
					}, nil
				}),
			analytics.EXPECT().List(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p ports.ListParams) (*ports.ListResult[domain.UserAnalytic], error) {
					assert.Equal(t, 2, p.Page)
					return &ports.ListResult[domain.UserAnalytic]{
						Items: []*domain.UserAnalytic{second}, Page: 2, PageSize: 1, TotalCount: 2, TotalPages: 2,
					}, nil
				}),
		)

		store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), export.ContentType).
			DoAndReturn(func(_ context.Context, key string, data []byte, _ string) (string, error) {
				assert.True(t, strings.HasPrefix(key, "archive/analytics-"), key)
				assert.True(t, strings.HasSuffix(key, ".xlsx"), key)

				file, err := xlsx.OpenBinary(data)
				require.NoError(t, err)
				require.Len(t, file.Sheets, 1)
				assert.Equal(t, 3, file.Sheets[0].MaxRow)
				return "file:///tmp/" + key, nil
			})

		processor := workers.NewSnapshotProcessor(analytics, store, "archive", helpers.TestLogger())
		require.NoError(t, processor.Snapshot(context.Background(), asynq.NewTask(workers.TypeAnalyticsSnapshot, nil)))
	})

	t.Run("upload_failure_is_returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analytics := mocks.NewMockAnalyticService(ctrl)
		store := mocks.NewMockObjectStore(ctrl)

		analytics.EXPECT().List(gomock.Any(), gomock.Any()).
			Return(&ports.ListResult[domain.UserAnalytic]{Page: 1, TotalPages: 0}, nil)
		store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("access denied"))

		processor := workers.NewSnapshotProcessor(analytics, store, "", helpers.TestLogger())
		err := processor.Snapshot(context.Background(), asynq.NewTask(workers.TypeAnalyticsSnapshot, nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestRedeliveryProcessor_Redeliver(t *testing.T) {
	notification := helpers.CreateTestNotification(func(n *domain.Notification) { n.ID = "notif-1" })
	task, err := workers.NewRedeliveryTask(notification)
	require.NoError(t, err)

	tests := []struct {
		name          string
		task          *asynq.Task
		setupMocks    func(*mocks.MockNotificationService)
		expectedError error
		skipRetry     bool
	}{
		{
			name: "publishes_stored_notification",
			task: task,
			setupMocks: func(svc *mocks.MockNotificationService) {
				svc.EXPECT().Deliver(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *domain.Notification) error {
						assert.Equal(t, "notif-1", n.ID)
						assert.Equal(t, notification.UserID, n.UserID)
						assert.True(t, n.Config.Email)
						return nil
					})
			},
		},
		{
			name: "undeliverable_is_returned_for_retry",
			task: task,
			setupMocks: func(svc *mocks.MockNotificationService) {
				svc.EXPECT().Deliver(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("queue not ready: %w", domain.ErrUndeliverable))
			},
			expectedError: domain.ErrUndeliverable,
		},
		{
			name:          "malformed_payload_is_not_retried",
			task:          asynq.NewTask(workers.TypeNotificationRedeliver, []byte(`[]`)),
			setupMocks:    func(*mocks.MockNotificationService) {},
			expectedError: asynq.SkipRetry,
			skipRetry:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockNotificationService(ctrl)
			tt.setupMocks(svc)

			processor := workers.NewRedeliveryProcessor(svc, helpers.TestLogger())
			err := processor.Redeliver(context.Background(), tt.task)

			if tt.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestNewServeMux_RoutesTaskTypes(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRecomputeRunner(ctrl)
	svc := mocks.NewMockNotificationService(ctrl)

	mux := workers.NewServeMux(workers.Processors{
		Recompute:  workers.NewRecomputeProcessor(runner, helpers.TestLogger()),
		Redelivery: workers.NewRedeliveryProcessor(svc, helpers.TestLogger()),
	})

	runner.EXPECT().RunStale(gomock.Any()).DoAndReturn(func(ctx context.Context) (*ports.RecomputeSummary, error) {
		assert.Equal(t, workers.TypeAnalyticsRecomputeStale, ctx.Value(logger.ContextKeyTaskType))
		return &ports.RecomputeSummary{}, nil
	})
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(workers.TypeAnalyticsRecomputeStale, nil)))

	task, err := workers.NewRecomputeTask("", "user-9")
	require.NoError(t, err)
	runner.EXPECT().Run(gomock.Any(), "", "user-9").Return(&ports.RecomputeSummary{Created: 1}, nil)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	// no snapshot processor was registered
	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask(workers.TypeAnalyticsSnapshot, nil)))
}

func TestTaskPayloads(t *testing.T) {
	task, err := workers.NewRecomputeTask("analytic-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, workers.TypeAnalyticsRecompute, task.Type())
	assert.JSONEq(t, `{"id":"analytic-1","userId":"user-1"}`, string(task.Payload()))

	n := helpers.CreateTestNotification()
	task, err = workers.NewRedeliveryTask(n)
	require.NoError(t, err)
	assert.Equal(t, workers.TypeNotificationRedeliver, task.Type())

	var payload workers.RedeliveryPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, n.ID, payload.Notification.ID)
	assert.Equal(t, domain.NotificationMessage, payload.Notification.Type)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first_retry", attempt: 0, expected: time.Second},
		{name: "third_retry", attempt: 3, expected: 8 * time.Second},
		{name: "capped", attempt: 12, expected: 10 * time.Minute},
		{name: "huge_attempt_does_not_overflow", attempt: 80, expected: 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, workers.ExponentialBackoff(tt.attempt, nil, nil))
		})
	}
}
