// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// SetupTestDB starts a PostgreSQL container and applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_analytics",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_analytics",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    30 * time.Minute,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     10 * time.Second,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: dbConfig.URL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}
	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-memory Redis for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a configuration that passes BasicValidator.
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "analytics-reports-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           "test_analytics",
			SSLMode:        "disable",
			MaxConnections: 10,
			MinConnections: 2,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Asynq: config.AsynqConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 2,
			Queues:      map[string]int{"critical": 6, "default": 3, "low": 1},
		},
		AWS: config.AWSConfig{
			Region:          "us-east-1",
			LocalStorageDir: os.TempDir(),
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-test-secret-test-secret",
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			UserIDHeader:      "X-User-ID",
		},
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Itinerary: config.ItineraryConfig{
			ServiceName: "itineraries",
			StaticURL:   "http://localhost:3001",
			Timeout:     2 * time.Second,
			TokenTTL:    time.Minute,
		},
		Messaging: config.MessagingConfig{
			NATSURL:     "nats://localhost:4222",
			Topic:       "notifications",
			MaxAttempts: 5,
			RetryDelay:  time.Millisecond,
		},
		Analytics: config.AnalyticsConfig{
			CacheTTL:       time.Minute,
			RecomputeCron:  "0 0 * * *",
			SnapshotCron:   "30 0 * * *",
			SnapshotPrefix: "snapshots",
			Timezone:       "UTC",
		},
		Secrets: config.SecretsConfig{
			Provider: "env",
		},
	}
}

// CreateTestAnalytic returns a fresh user-wide analytic.
func CreateTestAnalytic(overrides ...func(*domain.UserAnalytic)) *domain.UserAnalytic {
	now := time.Now().UTC().Truncate(time.Microsecond)
	best := "itinerary-1"
	a := &domain.UserAnalytic{
		ID:     uuid.NewString(),
		UserID: "user-1",
		UserItineraryAnalytic: domain.ItineraryAnalytic{
			TotalCommentsCount:            6,
			AvgComments:                   3,
			TotalReviewsCount:             4,
			AverageReviewScore:            4.25,
			BestItineraryByAvgReviewScore: &best,
		},
		UserPublicationAnalytic: domain.PublicationAnalytic{
			TotalCommentsCount:     2,
			CommentsPerPublication: 1,
			TotalLikesCount:        10,
			AverageLikes:           5,
		},
		AnalysisDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, override := range overrides {
		override(a)
	}

	return a
}

// Stale marks an analytic as analysed two days ago.
func Stale(a *domain.UserAnalytic) {
	a.AnalysisDate = time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)
}

// CreateTestItinerary builds an itinerary with the given number of comments
// and one review per score.
func CreateTestItinerary(id, userID string, comments int, scores ...float64) domain.Itinerary {
	it := domain.Itinerary{
		ID:       id,
		UserID:   userID,
		Comments: make([]domain.Comment, 0, comments),
		Reviews:  make([]domain.Review, 0, len(scores)),
	}
	for i := 0; i < comments; i++ {
		it.Comments = append(it.Comments, domain.Comment{UserID: fmt.Sprintf("commenter-%d", i)})
	}
	for i, s := range scores {
		it.Reviews = append(it.Reviews, domain.Review{UserID: fmt.Sprintf("reviewer-%d", i), Score: s})
	}
	return it
}

// CreateTestReport returns a pending publication report.
func CreateTestReport(overrides ...func(*domain.Report)) *domain.Report {
	now := time.Now().UTC().Truncate(time.Microsecond)
	r := &domain.Report{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		Type:        domain.ReportTypePublication,
		ResourceID:  "publication-1",
		Reason:      "spam",
		Description: "repeated promotional content",
		Status:      domain.ReportStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(r)
	}

	return r
}

// CreateTestNotification returns an unseen message notification.
func CreateTestNotification(overrides ...func(*domain.Notification)) *domain.Notification {
	now := time.Now().UTC().Truncate(time.Microsecond)
	n := &domain.Notification{
		ID:                 uuid.NewString(),
		UserID:             "user-1",
		Config:             domain.NotificationConfig{Email: true},
		Type:               domain.NotificationMessage,
		ResourceID:         "message-1",
		NotificationStatus: domain.NotificationNotSeen,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	for _, override := range overrides {
		override(n)
	}

	return n
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"notifications", "reports", "user_analytics"} {
		_, err := pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedAnalytics inserts analytics through the repository.
func SeedAnalytics(t *testing.T, repo *db.AnalyticRepository, items ...*domain.UserAnalytic) {
	t.Helper()

	for _, a := range items {
		require.NoError(t, repo.Create(context.Background(), a), "Failed to seed analytic %s", a.ID)
	}
}
