// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/adapters/itinerary"
	"github.com/ammerola/analytics-reports/internal/adapters/queue"
	redis_a "github.com/ammerola/analytics-reports/internal/adapters/redis_adapter"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/core/services"
	"github.com/ammerola/analytics-reports/internal/handlers"
	"github.com/ammerola/analytics-reports/internal/handlers/middleware"
	"github.com/ammerola/analytics-reports/internal/pkg/config"
	"github.com/ammerola/analytics-reports/internal/pkg/logger"
	"github.com/ammerola/analytics-reports/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting analytics and reports service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if err := config.ResolveSecrets(ctx, cfg, slogger.Logger); err != nil {
		slogger.Error("failed to resolve secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
			// the schema may already be current; keep serving
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	server := setupHTTPServer(serveCtx, cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	redisCache     *redis_a.Cache
	natsPublisher  message.Publisher
	natsState      *queue.ConnectionState
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	analyticsHandler     *handlers.AnalyticsHandler
	reportsHandler       *handlers.ReportsHandler
	notificationsHandler *handlers.NotificationsHandler
	recomputeHandler     *handlers.RecomputeHandler
	healthHandler        *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.natsPublisher != nil {
		d.natsPublisher.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))

	redisClient := newRedisClient(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	itineraryClient := newItineraryClient(cfg, deps.redisCache, logger)

	logger.Info("connecting to NATS", slog.String("url", cfg.Messaging.NATSURL))

	deps.natsState = queue.NewConnectionState()
	natsPublisher, err := queue.NewNATSPublisher(queue.NATSConfig{
		URL:           cfg.Messaging.NATSURL,
		ClientName:    cfg.Messaging.ClientName,
		MaxReconnects: cfg.Messaging.MaxReconnects,
		ReconnectWait: cfg.Messaging.ReconnectWait,
	}, deps.natsState, logger)
	if err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}
	deps.natsPublisher = natsPublisher

	notificationPublisher := queue.NewNotificationPublisher(natsPublisher, deps.natsState, logger,
		queue.WithTopic(cfg.Messaging.Topic),
		queue.WithMaxAttempts(cfg.Messaging.MaxAttempts),
		queue.WithRetryDelay(cfg.Messaging.RetryDelay),
	)

	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	deliveryQueue := workers.NewDeliveryQueue(deps.asynqClient, cfg.Messaging.RedeliverDelay, cfg.Asynq.RetryMax, logger)

	// Repositories
	analyticRepo := db.NewAnalyticRepository(database, logger)
	reportRepo := db.NewReportRepository(database, logger)
	notificationRepo := db.NewNotificationRepository(database, logger)

	// Services
	analyticService := services.NewAnalyticService(analyticRepo, itineraryClient, deps.redisCache, cfg.Analytics.CacheTTL, logger)
	notificationService := services.NewNotificationService(notificationRepo, notificationPublisher, deliveryQueue, logger)
	reportService := services.NewReportService(reportRepo, notificationService, logger)
	recomputeJob := services.NewRecomputeJob(analyticRepo, itineraryClient, deps.redisCache, logger)

	// Handlers
	deps.analyticsHandler = handlers.NewAnalyticsHandler(analyticService, logger)
	deps.reportsHandler = handlers.NewReportsHandler(reportService, logger)
	deps.notificationsHandler = handlers.NewNotificationsHandler(notificationService, logger)
	deps.recomputeHandler = handlers.NewRecomputeHandler(recomputeJob, deps.asynqClient, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		map[string]ports.HealthChecker{
			"database": database,
			"redis":    deps.redisCache,
		},
		deps.asynqInspector,
		map[string]handlers.Readiness{
			"messaging": deps.natsState,
			"itinerary": itineraryClient,
		},
		cfg,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddress(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
}

// newItineraryClient prefers a fixed service URL and falls back to asking
// the gateway.
func newItineraryClient(cfg *config.Config, cache ports.CacheRepository, logger *slog.Logger) *itinerary.Client {
	var resolver ports.ServiceResolver
	if cfg.Itinerary.StaticURL != "" {
		resolver = itinerary.StaticResolver{cfg.Itinerary.ServiceName: cfg.Itinerary.StaticURL}
	} else {
		resolver = itinerary.NewGatewayResolver(cfg.Itinerary.GatewayURL, cache, cfg.Itinerary.ResolverCacheTTL, logger)
	}

	return itinerary.NewClient(itinerary.Config{
		ServiceName:      cfg.Itinerary.ServiceName,
		Secret:           cfg.Security.JWTSecret,
		Timeout:          cfg.Itinerary.Timeout,
		TokenTTL:         cfg.Itinerary.TokenTTL,
		BreakerRequests:  cfg.Itinerary.BreakerRequests,
		BreakerInterval:  cfg.Itinerary.BreakerInterval,
		BreakerTimeout:   cfg.Itinerary.BreakerTimeout,
		BreakerThreshold: cfg.Itinerary.BreakerThreshold,
	}, resolver, logger)
}

func setupHTTPServer(ctx context.Context, cfg *config.Config, deps *dependencies, l *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux
	handler = middleware.Identity(cfg.Security.UserIDHeader)(handler)

	if cfg.Server.RequestTimeout > 0 {
		handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(ctx, cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration, cfg.Security.UserIDHeader)(handler)
	}

	if cfg.Server.EnableMetrics {
		handler = middleware.Metrics(func(r *http.Request) string {
			_, pattern := mux.Handler(r)
			return pattern
		})(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	handler = middleware.Recovery(l.Logger)(handler)
	handler = middleware.Logger(l)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(l.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	if cfg.Server.EnableHealthCheck {
		deps.healthHandler.Routes(mux)
	}

	deps.analyticsHandler.Routes(mux)
	deps.reportsHandler.Routes(mux)
	deps.notificationsHandler.Routes(mux)
	deps.recomputeHandler.Routes(mux)

	if cfg.Server.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	return db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, logger, 3)
}
