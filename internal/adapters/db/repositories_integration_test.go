//go:build integration
// +build integration

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/test/helpers"
)

type RepositorySuite struct {
	suite.Suite
	testDB        *helpers.TestDB
	analytics     *db.AnalyticRepository
	reports       *db.ReportRepository
	notifications *db.NotificationRepository
	ctx           context.Context
}

func (s *RepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.analytics = db.NewAnalyticRepository(s.testDB.Database, helpers.TestLogger())
	s.reports = db.NewReportRepository(s.testDB.Database, helpers.TestLogger())
	s.notifications = db.NewNotificationRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *RepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *RepositorySuite) TestAnalyticRoundTrip() {
	a := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ResourceID = "itin-1"
	})
	s.Require().NoError(s.analytics.Create(s.ctx, a))

	found, err := s.analytics.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.UserID, found.UserID)
	s.Equal("itin-1", found.ResourceID)
	s.Equal(a.UserItineraryAnalytic, found.UserItineraryAnalytic)
	s.Equal(a.UserPublicationAnalytic, found.UserPublicationAnalytic)
	s.WithinDuration(a.AnalysisDate, found.AnalysisDate, time.Millisecond)
}

func (s *RepositorySuite) TestAnalyticNotFound() {
	_, err := s.analytics.FindByID(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)

	s.ErrorIs(s.analytics.Delete(s.ctx, "missing"), domain.ErrNotFound)

	_, err = s.analytics.FindByUserAndResource(s.ctx, "nobody", "")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestAnalyticUniquePerUserAndResource() {
	first := helpers.CreateTestAnalytic()
	s.Require().NoError(s.analytics.Create(s.ctx, first))

	second := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ID = "another-id"
		a.UserID = first.UserID
	})
	s.ErrorIs(s.analytics.Create(s.ctx, second), domain.ErrConflict)

	scoped := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ID = "scoped-id"
		a.UserID = first.UserID
		a.ResourceID = "itin-9"
	})
	s.NoError(s.analytics.Create(s.ctx, scoped))

	userWide, err := s.analytics.FindByUserAndResource(s.ctx, first.UserID, "")
	s.Require().NoError(err)
	s.Equal(first.ID, userWide.ID)
}

func (s *RepositorySuite) TestAnalyticFindAllAndStale() {
	now := time.Now().UTC()
	fresh := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ID = "fresh"
		a.UserID = "u-fresh"
		a.AnalysisDate = now
	})
	stale := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.ID = "stale"
		a.UserID = "u-stale"
		a.AnalysisDate = now.Add(-48 * time.Hour)
	})
	s.Require().NoError(s.analytics.Create(s.ctx, fresh))
	s.Require().NoError(s.analytics.Create(s.ctx, stale))

	items, total, err := s.analytics.FindAll(s.ctx, ports.AnalyticFilter{Limit: 1})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(items, 1)
	s.Equal("fresh", items[0].ID)

	cutoff := now.Add(-domain.StalenessWindow)
	staleItems, err := s.analytics.FindStale(s.ctx, ports.StaleFilter{Cutoff: cutoff})
	s.Require().NoError(err)
	s.Require().Len(staleItems, 1)
	s.Equal("stale", staleItems[0].ID)

	byUser, err := s.analytics.FindByUserID(s.ctx, "u-nobody")
	s.NoError(err)
	s.Empty(byUser)
}

func (s *RepositorySuite) TestAnalyticModifySerializesWriters() {
	a := helpers.CreateTestAnalytic(func(a *domain.UserAnalytic) {
		a.AnalysisDate = time.Now().UTC().Add(-48 * time.Hour)
	})
	s.Require().NoError(s.analytics.Create(s.ctx, a))

	var (
		mu      sync.Mutex
		changed int
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.analytics.Modify(s.ctx, a.ID, func(cur *domain.UserAnalytic) (bool, error) {
				if !cur.IsStale(time.Now()) {
					return false, nil
				}
				cur.AnalysisDate = time.Now().UTC()
				mu.Lock()
				changed++
				mu.Unlock()
				return true, nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(1, changed)

	_, err := s.analytics.Modify(s.ctx, "missing", func(*domain.UserAnalytic) (bool, error) {
		return true, nil
	})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestReportLifecycle() {
	rep := helpers.CreateTestReport()
	s.Require().NoError(s.reports.Create(s.ctx, rep))

	rep.Status = domain.ReportStatusResolved
	rep.Reason = "spam"
	s.Require().NoError(s.reports.Update(s.ctx, rep))

	found, err := s.reports.FindByID(s.ctx, rep.ID)
	s.Require().NoError(err)
	s.Equal(domain.ReportStatusResolved, found.Status)
	s.Equal("spam", found.Reason)

	items, total, err := s.reports.FindAll(s.ctx, ports.ReportFilter{Status: domain.ReportStatusPending})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(items)

	s.NoError(s.reports.Delete(s.ctx, rep.ID))
	_, err = s.reports.FindByID(s.ctx, rep.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestNotificationStatus() {
	n := helpers.CreateTestNotification()
	s.Require().NoError(s.notifications.Create(s.ctx, n))

	updated, err := s.notifications.UpdateStatus(s.ctx, n.ID, domain.NotificationSeen)
	s.Require().NoError(err)
	s.Equal(domain.NotificationSeen, updated.NotificationStatus)
	s.Equal(n.Config, updated.Config)

	unseen, total, err := s.notifications.FindAll(s.ctx, ports.NotificationFilter{
		UserID: n.UserID,
		Status: domain.NotificationNotSeen,
	})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(unseen)

	_, err = s.notifications.UpdateStatus(s.ctx, "missing", domain.NotificationSeen)
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}
