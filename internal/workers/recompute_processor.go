// internal/workers/recompute_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// RecomputeProcessor runs the recompute job for queued and scheduled tasks.
type RecomputeProcessor struct {
	runner ports.RecomputeRunner
	logger *slog.Logger
}

// NewRecomputeProcessor creates a new recompute processor
func NewRecomputeProcessor(runner ports.RecomputeRunner, logger *slog.Logger) *RecomputeProcessor {
	return &RecomputeProcessor{
		runner: runner,
		logger: logger.With(slog.String("processor", "recompute")),
	}
}

// Recompute handles analytics:recompute.
func (p *RecomputeProcessor) Recompute(ctx context.Context, t *asynq.Task) error {
	var payload RecomputePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	summary, err := p.runner.Run(ctx, payload.ID, payload.UserID)
	if err != nil {
		// bad input will not get better on retry
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to recompute analytics: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to recompute analytics: %w", err)
	}

	p.logger.InfoContext(ctx, "recompute task completed",
		slog.String("id", payload.ID),
		slog.String("user_id", payload.UserID),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return nil
}

// RecomputeStale handles the scheduled analytics:recompute_stale sweep.
func (p *RecomputeProcessor) RecomputeStale(ctx context.Context, _ *asynq.Task) error {
	summary, err := p.runner.RunStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to recompute stale analytics: %w", err)
	}

	p.logger.InfoContext(ctx, "stale sweep completed",
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return nil
}
