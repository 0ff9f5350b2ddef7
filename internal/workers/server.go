// internal/workers/server.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/pkg/logger"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

// Processors groups the handlers served by the worker.
type Processors struct {
	Recompute  *RecomputeProcessor
	Snapshot   *SnapshotProcessor
	Redelivery *RedeliveryProcessor
}

// NewServeMux routes every task type to its processor. A nil processor
// leaves its task types unhandled.
func NewServeMux(p Processors) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(instrument)
	if p.Recompute != nil {
		mux.HandleFunc(TypeAnalyticsRecompute, p.Recompute.Recompute)
		mux.HandleFunc(TypeAnalyticsRecomputeStale, p.Recompute.RecomputeStale)
	}
	if p.Snapshot != nil {
		mux.HandleFunc(TypeAnalyticsSnapshot, p.Snapshot.Snapshot)
	}
	if p.Redelivery != nil {
		mux.HandleFunc(TypeNotificationRedeliver, p.Redelivery.Redeliver)
	}
	return mux
}

// instrument tags the task context so log records carry task_type, and
// records the outcome.
func instrument(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		ctx = context.WithValue(ctx, logger.ContextKeyTaskType, t.Type())
		started := time.Now()
		err := next.ProcessTask(ctx, t)
		metrics.RecordTask(t.Type(), err, time.Since(started))
		return err
	})
}

// ErrorHandler logs tasks that exhausted an attempt.
func ErrorHandler(logger *slog.Logger) asynq.ErrorHandler {
	return asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.ErrorContext(ctx, "task processing failed",
			slog.String("type", task.Type()),
			slog.String("payload", string(task.Payload())),
			slog.Int("retry", retried),
			slog.Int("max_retry", maxRetry),
			slog.String("error", err.Error()))
	})
}

// ExponentialBackoff doubles the delay per attempt from one second, capped at
// ten minutes.
func ExponentialBackoff(n int, _ error, _ *asynq.Task) time.Duration {
	const (
		baseDelay = time.Second
		maxDelay  = 10 * time.Minute
	)
	if n < 0 {
		n = 0
	}
	if n > 20 {
		return maxDelay
	}
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// AsynqLogger adapts slog for asynq.
type AsynqLogger struct {
	logger *slog.Logger
}

var _ asynq.Logger = (*AsynqLogger)(nil)

func NewAsynqLogger(logger *slog.Logger) *AsynqLogger {
	return &AsynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
