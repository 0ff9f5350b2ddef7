package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/core/services"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

func TestReportService_Create(t *testing.T) {
	tests := []struct {
		name        string
		report      *domain.Report
		setupMocks  func(*mocks.MockReportRepository, *mocks.MockNotificationService)
		expectedErr error
	}{
		{
			name:   "stores_and_notifies_reporter",
			report: helpers.CreateTestReport(func(r *domain.Report) { r.Status = "" }),
			setupMocks: func(repo *mocks.MockReportRepository, notifications *mocks.MockNotificationService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *domain.Report) error {
						assert.Equal(t, domain.ReportStatusPending, r.Status)
						return nil
					})
				notifications.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *domain.Notification) (domain.DeliveryOutcome, error) {
						assert.Equal(t, domain.NotificationReport, n.Type)
						assert.Equal(t, "user-1", n.UserID)
						assert.True(t, n.Config.Email)
						return domain.DeliveryDelivered, nil
					})
			},
		},
		{
			name:   "notification_failure_does_not_fail_report",
			report: helpers.CreateTestReport(),
			setupMocks: func(repo *mocks.MockReportRepository, notifications *mocks.MockNotificationService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				notifications.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.DeliveryOutcome(""), errors.New("queue down"))
			},
		},
		{
			name: "rejects_unknown_type",
			report: helpers.CreateTestReport(func(r *domain.Report) {
				r.Type = "comment"
			}),
			setupMocks:  func(*mocks.MockReportRepository, *mocks.MockNotificationService) {},
			expectedErr: domain.ErrValidation,
		},
		{
			name: "requires_reason",
			report: helpers.CreateTestReport(func(r *domain.Report) {
				r.Reason = ""
			}),
			setupMocks:  func(*mocks.MockReportRepository, *mocks.MockNotificationService) {},
			expectedErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockReportRepository(ctrl)
			notifications := mocks.NewMockNotificationService(ctrl)
			tt.setupMocks(repo, notifications)

			service := services.NewReportService(repo, notifications, helpers.TestLogger())

			err := service.Create(context.Background(), tt.report)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReportService_Update(t *testing.T) {
	resolved := domain.ReportStatusResolved
	reason := "harassment"
	otherType := domain.ReportTypeItinerary

	tests := []struct {
		name        string
		patch       *domain.ReportPatch
		notify      bool
		expectedErr error
	}{
		{name: "status_change_notifies", patch: &domain.ReportPatch{Status: &resolved}, notify: true},
		{name: "reason_change_is_quiet", patch: &domain.ReportPatch{Reason: &reason}, notify: false},
		{name: "type_is_immutable", patch: &domain.ReportPatch{Type: &otherType}, expectedErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockReportRepository(ctrl)
			notifications := mocks.NewMockNotificationService(ctrl)

			repo.EXPECT().FindByID(gomock.Any(), "r1").Return(helpers.CreateTestReport(func(r *domain.Report) { r.ID = "r1" }), nil)
			if tt.expectedErr == nil {
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			}
			if tt.notify {
				notifications.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *domain.Notification) (domain.DeliveryOutcome, error) {
						assert.Equal(t, "r1", n.ResourceID)
						return domain.DeliveryDeferred, nil
					})
			}

			service := services.NewReportService(repo, notifications, helpers.TestLogger())

			updated, err := service.Update(context.Background(), "r1", tt.patch)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "r1", updated.ID)
		})
	}
}

func TestReportService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReportRepository(ctrl)
	service := services.NewReportService(repo, nil, helpers.TestLogger())

	repo.EXPECT().FindAll(gomock.Any(), ports.ReportFilter{
		Type:   domain.ReportTypeItinerary,
		Status: domain.ReportStatusPending,
		Limit:  10,
		Offset: 20,
	}).Return(nil, int64(25), nil)

	result, err := service.List(context.Background(), ports.ListParams{
		Page: 3, PageSize: 10, Type: "itinerary", Status: "pending",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Equal(t, 3, result.TotalPages)

	_, err = service.List(context.Background(), ports.ListParams{Type: "video"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_GetByUserID_EmptyList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReportRepository(ctrl)
	repo.EXPECT().FindByUserID(gomock.Any(), "user-9").Return(nil, nil)

	service := services.NewReportService(repo, nil, helpers.TestLogger())

	items, err := service.GetByUserID(context.Background(), "user-9")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
