// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/config"
	"github.com/ammerola/analytics-reports/internal/pkg/logger"
)

var reportReasons = []string{"spam", "offensive content", "misleading information", "copyright"}

var notificationTypes = []domain.NotificationType{
	domain.NotificationMessage,
	domain.NotificationFriendRequest,
	domain.NotificationPublicationComment,
	domain.NotificationPublicationLike,
	domain.NotificationItineraryComment,
	domain.NotificationItineraryRating,
}

// Generator builds deterministic fixture records for a set of users.
type Generator struct {
	rng        *rand.Rand
	now        time.Time
	staleRatio float64
}

func NewGenerator(seed uint64, staleRatio float64, now time.Time) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:        now.UTC(),
		staleRatio: staleRatio,
	}
}

// Analytic returns an aggregate for userID. A staleRatio share of them is
// dated two days back so the recompute sweep has work to do.
func (g *Generator) Analytic(userID string) *domain.UserAnalytic {
	itineraries := g.rng.IntN(6)
	reviews := g.rng.IntN(20)
	comments := g.rng.IntN(40)
	publications := g.rng.IntN(8)
	pubComments := g.rng.IntN(30)
	likes := g.rng.IntN(120)

	a := &domain.UserAnalytic{
		UserID:       userID,
		AnalysisDate: g.now,
		UserItineraryAnalytic: domain.ItineraryAnalytic{
			TotalCommentsCount: comments,
			TotalReviewsCount:  reviews,
		},
		UserPublicationAnalytic: domain.PublicationAnalytic{
			TotalCommentsCount: pubComments,
			TotalLikesCount:    likes,
		},
	}
	if itineraries > 0 {
		a.UserItineraryAnalytic.AvgComments = float64(comments) / float64(itineraries)
		best := uuid.NewString()
		a.UserItineraryAnalytic.BestItineraryByAvgReviewScore = &best
	}
	if reviews > 0 {
		a.UserItineraryAnalytic.AverageReviewScore = float64(1+g.rng.IntN(40)) / 10
		if a.UserItineraryAnalytic.AverageReviewScore > domain.MaxReviewScore {
			a.UserItineraryAnalytic.AverageReviewScore = domain.MaxReviewScore
		}
	}
	if publications > 0 {
		a.UserPublicationAnalytic.CommentsPerPublication = float64(pubComments) / float64(publications)
		a.UserPublicationAnalytic.AverageLikes = float64(likes) / float64(publications)
	}
	if g.rng.Float64() < g.staleRatio {
		a.AnalysisDate = g.now.Add(-2 * domain.StalenessWindow)
	}
	return a
}

func (g *Generator) Report(userID string) *domain.Report {
	typ := domain.ReportTypeItinerary
	if g.rng.IntN(2) == 0 {
		typ = domain.ReportTypePublication
	}
	return &domain.Report{
		UserID:     userID,
		Type:       typ,
		ResourceID: uuid.NewString(),
		Reason:     reportReasons[g.rng.IntN(len(reportReasons))],
		Status:     domain.ReportStatusPending,
	}
}

func (g *Generator) Notification(userID string) *domain.Notification {
	status := domain.NotificationNotSeen
	if g.rng.IntN(3) == 0 {
		status = domain.NotificationSeen
	}
	return &domain.Notification{
		UserID:             userID,
		Type:               notificationTypes[g.rng.IntN(len(notificationTypes))],
		ResourceID:         uuid.NewString(),
		NotificationStatus: status,
		Config:             domain.NotificationConfig{Email: g.rng.IntN(2) == 0},
	}
}

// Summary counts what a seeding run wrote.
type Summary struct {
	Analytics     int
	Stale         int
	Reports       int
	Notifications int
	Failed        []string
}

// Seeder writes generated records through the repositories.
type Seeder struct {
	analytics     ports.AnalyticRepository
	reports       ports.ReportRepository
	notifications ports.NotificationRepository
	gen           *Generator
	dryRun        bool
	logger        *slog.Logger
}

func (s *Seeder) SeedUser(ctx context.Context, userID string, reportsPerUser, notificationsPerUser int, sum *Summary) {
	a := s.gen.Analytic(userID)
	if err := a.Validate(); err != nil {
		sum.Failed = append(sum.Failed, fmt.Sprintf("analytic %s: %v", userID, err))
		return
	}
	a.PrepareForStorage()
	if !s.dryRun {
		if err := s.analytics.Create(ctx, a); err != nil {
			s.logger.Error("failed to seed analytic",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			sum.Failed = append(sum.Failed, fmt.Sprintf("analytic %s", userID))
			return
		}
	}
	sum.Analytics++
	if a.IsStale(s.gen.now) {
		sum.Stale++
	}

	for range reportsPerUser {
		r := s.gen.Report(userID)
		r.PrepareForStorage()
		if !s.dryRun {
			if err := s.reports.Create(ctx, r); err != nil {
				s.logger.Error("failed to seed report",
					slog.String("user_id", userID),
					slog.String("error", err.Error()))
				sum.Failed = append(sum.Failed, fmt.Sprintf("report %s", r.ID))
				continue
			}
		}
		sum.Reports++
	}

	for range notificationsPerUser {
		n := s.gen.Notification(userID)
		n.PrepareForStorage()
		if !s.dryRun {
			if err := s.notifications.Create(ctx, n); err != nil {
				s.logger.Error("failed to seed notification",
					slog.String("user_id", userID),
					slog.String("error", err.Error()))
				sum.Failed = append(sum.Failed, fmt.Sprintf("notification %s", n.ID))
				continue
			}
		}
		sum.Notifications++
	}
}

func main() {
	var (
		users         = flag.Int("users", 25, "Number of users to seed")
		reports       = flag.Int("reports", 2, "Reports per user")
		notifications = flag.Int("notifications", 5, "Notifications per user")
		staleRatio    = flag.Float64("stale", 0.3, "Share of analytics dated outside the staleness window")
		seed          = flag.Uint64("seed", 42, "Random seed")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun        = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json")
	log := slogger.Logger

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	s := &Seeder{
		gen:    NewGenerator(*seed, *staleRatio, time.Now()),
		dryRun: *dryRun,
		logger: log,
	}

	if !*dryRun {
		database, err := db.NewDatabase(ctx, &db.Config{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Database:       cfg.Database.Name,
			SSLMode:        cfg.Database.SSLMode,
			MaxConnections: 4,
			MinConnections: 1,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		}, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		s.analytics = db.NewAnalyticRepository(database, log)
		s.reports = db.NewReportRepository(database, log)
		s.notifications = db.NewNotificationRepository(database, log)
	}

	var sum Summary
	for i := range *users {
		userID := uuid.NewString()
		fmt.Printf("PROGRESS: Seeding user %d/%d: %s\n", i+1, *users, userID)
		s.SeedUser(ctx, userID, *reports, *notifications, &sum)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Analytics: %d (%d stale)\n", sum.Analytics, sum.Stale)
	fmt.Printf("Reports: %d\n", sum.Reports)
	fmt.Printf("Notifications: %d\n", sum.Notifications)
	if len(sum.Failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(sum.Failed))
		for _, f := range sum.Failed {
			fmt.Printf("  - %s\n", f)
		}
	}

	log.Info("seed operation completed",
		slog.Int("analytics", sum.Analytics),
		slog.Int("stale", sum.Stale),
		slog.Int("reports", sum.Reports),
		slog.Int("notifications", sum.Notifications),
		slog.Int("failed", len(sum.Failed)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}
