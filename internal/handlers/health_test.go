package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/handlers"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

type stubInspector struct{ err error }

func (s stubInspector) Queues() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"default"}, nil
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 3, Pending: 2, Retry: 1}, nil
}

type stubReadiness bool

func (s stubReadiness) IsReady() bool { return bool(s) }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		inspector      handlers.QueueInspector
		messagingReady bool
		expectedStatus int
		expectedState  string
	}{
		{
			name:           "all_dependencies_healthy",
			inspector:      stubInspector{},
			messagingReady: true,
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name:           "database_down_degrades",
			dbErr:          errors.New("connection refused"),
			messagingReady: true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "degraded",
		},
		{
			name:           "messaging_down_is_reported_not_degraded",
			messagingReady: false,
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name:           "asynq_unreachable_degrades",
			inspector:      stubInspector{err: errors.New("redis down")},
			messagingReady: true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			dbChecker := mocks.NewMockHealthChecker(ctrl)
			cacheChecker := mocks.NewMockHealthChecker(ctrl)

			dbChecker.EXPECT().Ping(gomock.Any()).Return(tt.dbErr)
			if tt.dbErr == nil {
				dbChecker.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_conns": 4})
			}
			cacheChecker.EXPECT().Ping(gomock.Any()).Return(nil)
			cacheChecker.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"hits": 1})

			h := handlers.NewHealthHandler(
				map[string]ports.HealthChecker{"database": dbChecker, "redis": cacheChecker},
				tt.inspector,
				map[string]handlers.Readiness{
					"messaging": stubReadiness(tt.messagingReady),
					"itinerary": stubReadiness(true),
				},
				helpers.LoadTestConfig(),
				helpers.TestLogger(),
			)
			mux := http.NewServeMux()
			h.Routes(mux)

			w := serve(mux, http.MethodGet, "/health", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)

			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Contains(t, status.Services, "messaging")
			assert.False(t, status.Services["messaging"].Critical)
			assert.Contains(t, status.Services, "itinerary")
		})
	}
}

func TestHealthHandler_ReadinessAndLiveness(t *testing.T) {
	ctrl := gomock.NewController(t)
	dbChecker := mocks.NewMockHealthChecker(ctrl)
	dbChecker.EXPECT().Ping(gomock.Any()).Return(errors.New("timeout"))

	h := handlers.NewHealthHandler(map[string]ports.HealthChecker{"database": dbChecker}, nil, nil,
		helpers.LoadTestConfig(), helpers.TestLogger())
	mux := http.NewServeMux()
	h.Routes(mux)

	w := serve(mux, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"ready":false,"details":{"database":"not ready"}}`, w.Body.String())

	w = serve(mux, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
