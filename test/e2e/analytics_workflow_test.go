//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/adapters/itinerary"
	"github.com/ammerola/analytics-reports/internal/adapters/queue"
	redis_a "github.com/ammerola/analytics-reports/internal/adapters/redis_adapter"
	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/core/services"
	"github.com/ammerola/analytics-reports/internal/handlers"
	"github.com/ammerola/analytics-reports/internal/handlers/middleware"
	"github.com/ammerola/analytics-reports/test/helpers"
)

const notificationTopic = "notification"

type envelope struct {
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors"`
}

type AnalyticsE2ESuite struct {
	suite.Suite
	server        *httptest.Server
	itineraries   *httptest.Server
	client        *http.Client
	baseURL       string
	testDB        *helpers.TestDB
	testRedis     *helpers.TestRedis
	pubSub        *gochannel.GoChannel
	notifications <-chan *message.Message
	analyticRepo  *db.AnalyticRepository
}

func (s *AnalyticsE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.itineraries = httptest.NewServer(http.HandlerFunc(serveItineraries))

	s.pubSub = gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
		Persistent:          true,
	}, watermill.NopLogger{})
	msgs, err := s.pubSub.Subscribe(context.Background(), notificationTopic)
	s.Require().NoError(err)
	s.notifications = msgs

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL
}

func (s *AnalyticsE2ESuite) TearDownSuite() {
	s.server.Close()
	s.itineraries.Close()
	_ = s.pubSub.Close()
}

func (s *AnalyticsE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

func (s *AnalyticsE2ESuite) TestComputeAndReadBack() {
	resp := s.makeRequest(http.MethodPost, "/api/v1/analytics/user/user-1?scope=user", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var computed []domain.UserAnalytic
	env := s.decodeResponse(resp, &computed)
	s.Equal("analytics computed", env.Message)
	s.Require().Len(computed, 1)
	s.Equal(5, computed[0].UserItineraryAnalytic.TotalCommentsCount)
	s.Equal(3, computed[0].UserItineraryAnalytic.TotalReviewsCount)
	s.Require().NotNil(computed[0].UserItineraryAnalytic.BestItineraryByAvgReviewScore)
	s.Equal("it-1", *computed[0].UserItineraryAnalytic.BestItineraryByAvgReviewScore)

	resp = s.makeRequest(http.MethodGet, "/api/v1/analytics/user/user-1", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stored []domain.UserAnalytic
	s.decodeResponse(resp, &stored)
	s.Require().Len(stored, 1)
	s.Equal(computed[0].ID, stored[0].ID)
}

func (s *AnalyticsE2ESuite) TestComputeForUserWithoutItineraries() {
	resp := s.makeRequest(http.MethodPost, "/api/v1/analytics/user/nobody", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	env := s.decodeResponse(resp, nil)
	s.Equal("no itineraries found for user", env.Message)
}

func (s *AnalyticsE2ESuite) TestSaveAnalyticRespectsStaleness() {
	fresh := helpers.CreateTestAnalytic()
	stale := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.UserID = "user-2" }, helpers.Stale)
	helpers.SeedAnalytics(s.T(), s.analyticRepo, fresh, stale)

	body := map[string]any{
		"userId": "user-1",
		"userItineraryAnalytic": map[string]any{
			"totalCommentsCount": 99,
		},
	}

	resp := s.makeRequest(http.MethodPost, "/api/v1/analytics/saveAnalytic/"+fresh.ID, body)
	s.Equal(http.StatusOK, resp.StatusCode)
	env := s.decodeResponse(resp, nil)
	s.Equal("analytic is fresh; not modified", env.Message)

	body["userId"] = "user-2"
	resp = s.makeRequest(http.MethodPost, "/api/v1/analytics/saveAnalytic/"+stale.ID, body)
	s.Equal(http.StatusOK, resp.StatusCode)
	var refreshed domain.UserAnalytic
	env = s.decodeResponse(resp, &refreshed)
	s.Equal("stale analytic refreshed", env.Message)
	s.Equal(99, refreshed.UserItineraryAnalytic.TotalCommentsCount)
	s.False(refreshed.IsStale(time.Now()))
}

func (s *AnalyticsE2ESuite) TestRecomputeRefreshesStaleRecord() {
	stale := helpers.CreateTestAnalytic(helpers.Stale)
	helpers.SeedAnalytics(s.T(), s.analyticRepo, stale)

	resp := s.makeRequest(http.MethodPost, "/api/updateAnalytics", map[string]string{
		"id":     stale.ID,
		"userId": stale.UserID,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var summary ports.RecomputeSummary
	s.decodeResponse(resp, &summary)
	s.Equal(1, summary.Updated)

	resp = s.makeRequest(http.MethodGet, "/api/v1/analytics/"+stale.ID, nil)
	var got domain.UserAnalytic
	s.decodeResponse(resp, &got)
	s.False(got.IsStale(time.Now()))
	s.Equal(5, got.UserItineraryAnalytic.TotalCommentsCount)
}

func (s *AnalyticsE2ESuite) TestReportPublishesNotification() {
	resp := s.makeRequest(http.MethodPost, "/api/v1/reports", map[string]string{
		"userId":     "user-1",
		"type":       "itinerary",
		"resourceId": "it-1",
		"reason":     "spam",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var report domain.Report
	s.decodeResponse(resp, &report)
	s.Equal(domain.ReportStatusPending, report.Status)

	select {
	case msg := <-s.notifications:
		msg.Ack()
		var payload map[string]any
		s.Require().NoError(json.Unmarshal(msg.Payload, &payload))
		s.Equal("user-1", payload["userId"])
		s.Equal(report.ID, payload["resourceId"])
		s.Equal("report", payload["type"])
	case <-time.After(5 * time.Second):
		s.Fail("no notification published for the new report")
	}

	resp = s.makeRequest(http.MethodGet, "/api/v1/notifications?userId=user-1", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var page ports.ListResult[domain.Notification]
	s.decodeResponse(resp, &page)
	s.EqualValues(1, page.TotalCount)
}

func (s *AnalyticsE2ESuite) TestExportDownloadsWorkbook() {
	helpers.SeedAnalytics(s.T(), s.analyticRepo,
		helpers.CreateTestAnalytic(),
		helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) { a.UserID = "user-2" }),
	)

	resp := s.makeRequest(http.MethodGet, "/api/v1/analytics/export", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	wb, err := xlsx.OpenBinary(data)
	s.Require().NoError(err)
	s.Require().NotEmpty(wb.Sheets)
	s.Equal(3, wb.Sheets[0].MaxRow)
}

func (s *AnalyticsE2ESuite) TestHealthCheck() {
	resp := s.makeRequest(http.MethodGet, "/health/live", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *AnalyticsE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)
	client := itinerary.NewClient(itinerary.Config{
		ServiceName: "itineraries",
		Secret:      cfg.Security.JWTSecret,
		Timeout:     2 * time.Second,
		TokenTTL:    time.Minute,
	}, itinerary.StaticResolver{"itineraries": s.itineraries.URL}, logger)

	state := queue.NewConnectionState()
	state.MarkReady()
	publisher := queue.NewNotificationPublisher(s.pubSub, state, logger, queue.WithTopic(notificationTopic))

	s.analyticRepo = db.NewAnalyticRepository(s.testDB.Database, logger)
	reportRepo := db.NewReportRepository(s.testDB.Database, logger)
	notificationRepo := db.NewNotificationRepository(s.testDB.Database, logger)

	analyticService := services.NewAnalyticService(s.analyticRepo, client, cache, time.Minute, logger)
	notificationService := services.NewNotificationService(notificationRepo, publisher, nil, logger)
	reportService := services.NewReportService(reportRepo, notificationService, logger)
	recomputeJob := services.NewRecomputeJob(s.analyticRepo, client, cache, logger)

	mux := http.NewServeMux()
	handlers.NewAnalyticsHandler(analyticService, logger).Routes(mux)
	handlers.NewReportsHandler(reportService, logger).Routes(mux)
	handlers.NewNotificationsHandler(notificationService, logger).Routes(mux)
	handlers.NewRecomputeHandler(recomputeJob, nil, logger).Routes(mux)
	handlers.NewHealthHandler(map[string]ports.HealthChecker{
		"database": s.testDB.Database,
		"redis":    cache,
	}, nil, map[string]handlers.Readiness{"messaging": state, "itinerary": client}, cfg, logger).Routes(mux)

	var handler http.Handler = mux
	handler = middleware.Identity(cfg.Security.UserIDHeader)(handler)
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return httptest.NewServer(handler)
}

// serveItineraries stands in for the itineraries service. user-1 owns two
// itineraries; everybody else owns none.
func serveItineraries(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/itineraries" {
		http.NotFound(w, r)
		return
	}

	var owned []domain.Itinerary
	if r.URL.Query().Get("userId") == "user-1" {
		owned = []domain.Itinerary{
			helpers.CreateTestItinerary("it-1", "user-1", 3, 5, 4),
			helpers.CreateTestItinerary("it-2", "user-1", 2, 3),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(owned)
}

func (s *AnalyticsE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

// decodeResponse reads the envelope and, when v is set, its data.
func (s *AnalyticsE2ESuite) decodeResponse(resp *http.Response, v interface{}) envelope {
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	if v != nil {
		s.Require().NoError(json.Unmarshal(env.Data, v))
	}
	return env
}

func TestAnalyticsE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(AnalyticsE2ESuite))
}
