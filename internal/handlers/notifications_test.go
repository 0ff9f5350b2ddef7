package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/handlers"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

func newNotificationsMux(t *testing.T) (*http.ServeMux, *mocks.MockNotificationService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockNotificationService(ctrl)

	mux := http.NewServeMux()
	handlers.NewNotificationsHandler(svc, helpers.TestLogger()).Routes(mux)
	return mux, svc
}

func TestNotificationsHandler_Create(t *testing.T) {
	body := map[string]any{
		"userId":     "user-1",
		"type":       "friend_request",
		"resourceId": "user-2",
		"config":     map[string]any{"email": true},
	}

	tests := []struct {
		name           string
		body           map[string]any
		setupMocks     func(*mocks.MockNotificationService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "delivered",
			body: body,
			setupMocks: func(m *mocks.MockNotificationService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *domain.Notification) (domain.DeliveryOutcome, error) {
						assert.True(t, n.Config.Email)
						assert.Equal(t, domain.NotificationFriendRequest, n.Type)
						return domain.DeliveryDelivered, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "notification delivered",
		},
		{
			name: "deferred_for_redelivery",
			body: body,
			setupMocks: func(m *mocks.MockNotificationService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.DeliveryDeferred, nil)
			},
			expectedStatus: http.StatusAccepted,
			expectedMsg:    "notification queued for redelivery",
		},
		{
			name: "undeliverable",
			body: body,
			setupMocks: func(m *mocks.MockNotificationService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(domain.DeliveryOutcome(""), fmt.Errorf("queue not ready: %w", domain.ErrUndeliverable))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "notification could not be delivered",
		},
		{
			name: "unknown_type",
			body: map[string]any{
				"userId":     "user-1",
				"type":       "poke",
				"resourceId": "user-2",
			},
			setupMocks:     func(*mocks.MockNotificationService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed",
		},
		{
			name: "status_with_space_is_accepted",
			body: map[string]any{
				"userId":             "user-1",
				"type":               "message",
				"resourceId":         "message-1",
				"notificationStatus": "NOT SEEN",
			},
			setupMocks: func(m *mocks.MockNotificationService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.DeliveryDelivered, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "notification delivered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, svc := newNotificationsMux(t)
			tt.setupMocks(svc)

			w := serve(mux, http.MethodPost, "/api/v1/notifications", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedMsg, decodeEnvelope(t, w).Message)
		})
	}
}

func TestNotificationsHandler_ListSeenDelete(t *testing.T) {
	mux, svc := newNotificationsMux(t)

	svc.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.ListParams) (*ports.ListResult[domain.Notification], error) {
			assert.Equal(t, "user-1", p.UserID)
			assert.Equal(t, "NOT SEEN", p.Status)
			return &ports.ListResult[domain.Notification]{Items: []*domain.Notification{helpers.CreateTestNotification()}, Page: 1, TotalPages: 1}, nil
		})
	w := serve(mux, http.MethodGet, "/api/v1/notifications?userId=user-1&status=NOT%20SEEN", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	seen := helpers.CreateTestNotification(func(n *domain.Notification) { n.NotificationStatus = domain.NotificationSeen })
	svc.EXPECT().MarkSeen(gomock.Any(), "notif-1").Return(seen, nil)
	w = serve(mux, http.MethodPut, "/api/v1/notifications/notif-1/seen", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notificationStatus":"SEEN"`)

	svc.EXPECT().Delete(gomock.Any(), "notif-1").Return(domain.ErrNotFound)
	w = serve(mux, http.MethodDelete, "/api/v1/notifications/notif-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
