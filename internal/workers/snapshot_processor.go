// internal/workers/snapshot_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/export"
)

// SnapshotProcessor archives every analytic as a dated workbook.
type SnapshotProcessor struct {
	analytics ports.AnalyticService
	store     ports.ObjectStore
	prefix    string
	now       func() time.Time
	logger    *slog.Logger
}

// NewSnapshotProcessor creates a new snapshot processor. prefix defaults to
// "snapshots".
func NewSnapshotProcessor(analytics ports.AnalyticService, store ports.ObjectStore, prefix string, logger *slog.Logger) *SnapshotProcessor {
	return &SnapshotProcessor{
		analytics: analytics,
		store:     store,
		prefix:    prefix,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("processor", "snapshot")),
	}
}

// Snapshot handles analytics:snapshot.
func (p *SnapshotProcessor) Snapshot(ctx context.Context, _ *asynq.Task) error {
	now := p.now()

	items, err := export.CollectAll[domain.UserAnalytic](ctx, p.analytics.List, ports.ListParams{PageSize: 100})
	if err != nil {
		return fmt.Errorf("failed to collect analytics: %w", err)
	}

	data, err := export.AnalyticsWorkbook(items, now)
	if err != nil {
		return fmt.Errorf("failed to build snapshot workbook: %w", err)
	}

	key := export.SnapshotKey(p.prefix, now)
	location, err := p.store.Upload(ctx, key, data, export.ContentType)
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	p.logger.InfoContext(ctx, "analytics snapshot stored",
		slog.String("key", key),
		slog.String("location", location),
		slog.Int("records", len(items)),
		slog.Int("bytes", len(data)))
	return nil
}
