package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/handlers"
	"github.com/ammerola/analytics-reports/test/helpers"
	"github.com/ammerola/analytics-reports/test/mocks"
)

func newReportsMux(t *testing.T) (*http.ServeMux, *mocks.MockReportService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockReportService(ctrl)

	mux := http.NewServeMux()
	handlers.NewReportsHandler(svc, helpers.TestLogger()).Routes(mux)
	return mux, svc
}

func TestReportsHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		setupMocks     func(*mocks.MockReportService)
		expectedStatus int
		expectedFields []string
	}{
		{
			name: "creates_pending_report",
			body: map[string]any{
				"userId":     "user-1",
				"type":       "publication",
				"resourceId": "publication-1",
				"reason":     "spam",
			},
			setupMocks: func(m *mocks.MockReportService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *domain.Report) error {
						assert.Equal(t, domain.ReportTypePublication, r.Type)
						r.ID = "report-1"
						r.Status = domain.ReportStatusPending
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "rejects_unknown_type_and_missing_reason",
			body: map[string]any{
				"userId":     "user-1",
				"type":       "comment",
				"resourceId": "publication-1",
			},
			setupMocks:     func(*mocks.MockReportService) {},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"type", "reason"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, svc := newReportsMux(t)
			tt.setupMocks(svc)

			w := serve(mux, http.MethodPost, "/api/v1/reports", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			if tt.expectedFields != nil {
				assert.ElementsMatch(t, tt.expectedFields, fieldNames(env.Errors))
				return
			}

			var got domain.Report
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, "report-1", got.ID)
			assert.Equal(t, domain.ReportStatusPending, got.Status)
		})
	}
}

func TestReportsHandler_Update(t *testing.T) {
	t.Run("changes_status", func(t *testing.T) {
		mux, svc := newReportsMux(t)
		svc.EXPECT().Update(gomock.Any(), "report-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, id string, p *domain.ReportPatch) (*domain.Report, error) {
				require.NotNil(t, p.Status)
				assert.Equal(t, domain.ReportStatusResolved, *p.Status)
				r := helpers.CreateTestReport(func(r *domain.Report) { r.ID = id })
				require.NoError(t, r.Apply(p))
				return r, nil
			})

		w := serve(mux, http.MethodPut, "/api/v1/reports/report-1", map[string]any{"status": "resolved"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("immutable_fields_are_rejected_by_service", func(t *testing.T) {
		mux, svc := newReportsMux(t)
		svc.EXPECT().Update(gomock.Any(), "report-1", gomock.Any()).
			Return(nil, domain.NewValidationError("type", "cannot be changed"))

		w := serve(mux, http.MethodPut, "/api/v1/reports/report-1", map[string]any{"type": "itinerary"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"type"}, fieldNames(decodeEnvelope(t, w).Errors))
	})

	t.Run("bad_status_rejected_at_boundary", func(t *testing.T) {
		mux, _ := newReportsMux(t)

		w := serve(mux, http.MethodPut, "/api/v1/reports/report-1", map[string]any{"status": "closed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportsHandler_GetByUser(t *testing.T) {
	mux, svc := newReportsMux(t)
	svc.EXPECT().GetByUserID(gomock.Any(), "user-9").Return([]*domain.Report{}, nil)

	w := serve(mux, http.MethodGet, "/api/v1/reports/user/user-9", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
}

func TestReportsHandler_ListAndExport(t *testing.T) {
	mux, svc := newReportsMux(t)
	reports := []*domain.Report{helpers.CreateTestReport(), helpers.CreateTestReport()}

	svc.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.ListParams) (*ports.ListResult[domain.Report], error) {
			assert.Equal(t, "pending", p.Status)
			return &ports.ListResult[domain.Report]{Items: reports, Page: 1, PageSize: p.PageSize, TotalCount: 2, TotalPages: 1}, nil
		}).Times(2)

	w := serve(mux, http.MethodGet, "/api/v1/reports?status=pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(mux, http.MethodGet, "/api/v1/reports/export?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, file.Sheets[0].MaxRow)
}

func TestReportsHandler_GetAndDelete(t *testing.T) {
	mux, svc := newReportsMux(t)

	svc.EXPECT().GetByID(gomock.Any(), "report-1").Return(helpers.CreateTestReport(), nil)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodGet, "/api/v1/reports/report-1", nil).Code)

	svc.EXPECT().Delete(gomock.Any(), "report-1").Return(nil)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodDelete, "/api/v1/reports/report-1", nil).Code)

	svc.EXPECT().GetByID(gomock.Any(), "report-2").Return(nil, domain.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, serve(mux, http.MethodGet, "/api/v1/reports/report-2", nil).Code)
}
