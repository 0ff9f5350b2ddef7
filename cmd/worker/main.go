// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/internal/adapters/itinerary"
	"github.com/ammerola/analytics-reports/internal/adapters/queue"
	redis_a "github.com/ammerola/analytics-reports/internal/adapters/redis_adapter"
	"github.com/ammerola/analytics-reports/internal/adapters/storage"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/core/services"
	"github.com/ammerola/analytics-reports/internal/pkg/config"
	"github.com/ammerola/analytics-reports/internal/pkg/logger"
	"github.com/ammerola/analytics-reports/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

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

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log := slogger.Logger
	log.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	database, err := initDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, log)

	store, err := initStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize snapshot storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	natsState := queue.NewConnectionState()
	natsPublisher, err := queue.NewNATSPublisher(queue.NATSConfig{
		URL:           cfg.Messaging.NATSURL,
		ClientName:    cfg.Messaging.ClientName + "-worker",
		MaxReconnects: cfg.Messaging.MaxReconnects,
		ReconnectWait: cfg.Messaging.ReconnectWait,
	}, natsState, log)
	if err != nil {
		log.Error("failed to initialize NATS publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer natsPublisher.Close()

	itineraryClient := itinerary.NewClient(itinerary.Config{
		ServiceName:      cfg.Itinerary.ServiceName,
		Secret:           cfg.Security.JWTSecret,
		Timeout:          cfg.Itinerary.Timeout,
		TokenTTL:         cfg.Itinerary.TokenTTL,
		BreakerRequests:  cfg.Itinerary.BreakerRequests,
		BreakerInterval:  cfg.Itinerary.BreakerInterval,
		BreakerTimeout:   cfg.Itinerary.BreakerTimeout,
		BreakerThreshold: cfg.Itinerary.BreakerThreshold,
	}, newResolver(cfg, cache, log), log)

	analyticRepo := db.NewAnalyticRepository(database, log)
	notificationRepo := db.NewNotificationRepository(database, log)

	analyticService := services.NewAnalyticService(analyticRepo, itineraryClient, cache, cfg.Analytics.CacheTTL, log)
	publisher := queue.NewNotificationPublisher(natsPublisher, natsState, log,
		queue.WithTopic(cfg.Messaging.Topic),
		queue.WithMaxAttempts(cfg.Messaging.MaxAttempts),
		queue.WithRetryDelay(cfg.Messaging.RetryDelay),
	)
	// redelivery is driven by asynq retries here, so no queue is attached
	notificationService := services.NewNotificationService(notificationRepo, publisher, nil, log)
	recomputeJob := services.NewRecomputeJob(analyticRepo, itineraryClient, cache, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    workers.ErrorHandler(log),
		RetryDelayFunc:  workers.ExponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: func(err error) {
			if err != nil {
				log.Error("worker health check failed", slog.String("error", err.Error()))
			}
		},
		Logger: workers.NewAsynqLogger(log),
	})

	mux := workers.NewServeMux(workers.Processors{
		Recompute:  workers.NewRecomputeProcessor(recomputeJob, log),
		Snapshot:   workers.NewSnapshotProcessor(analyticService, store, cfg.Analytics.SnapshotPrefix, log),
		Redelivery: workers.NewRedeliveryProcessor(notificationService, log),
	})

	scheduler, err := workers.NewScheduler(redisOpt, workers.Schedule{
		RecomputeCron: cfg.Analytics.RecomputeCron,
		SnapshotCron:  cfg.Analytics.SnapshotCron,
		Timezone:      cfg.Analytics.Timezone,
	}, log)
	if err != nil {
		log.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	log.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("recompute_cron", cfg.Analytics.RecomputeCron),
		slog.String("snapshot_cron", cfg.Analytics.SnapshotCron))

	sig := <-shutdown
	log.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	log.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	return db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
}

// initStorage uses S3 when a bucket is configured and the local directory
// otherwise.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ObjectStore, error) {
	if cfg.AWS.S3Bucket == "" {
		logger.Info("using local snapshot storage", slog.String("dir", cfg.AWS.LocalStorageDir))
		return storage.NewLocalStorage(cfg.AWS.LocalStorageDir, logger), nil
	}

	s3Store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 storage: %w", err)
	}
	return s3Store, nil
}

func newResolver(cfg *config.Config, cache ports.CacheRepository, logger *slog.Logger) ports.ServiceResolver {
	if cfg.Itinerary.StaticURL != "" {
		return itinerary.StaticResolver{cfg.Itinerary.ServiceName: cfg.Itinerary.StaticURL}
	}
	return itinerary.NewGatewayResolver(cfg.Itinerary.GatewayURL, cache, cfg.Itinerary.ResolverCacheTTL, logger)
}
