package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/pkg/logger"
)

func TestGenerator_Analytic(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		staleRatio float64
		wantStale  bool
	}{
		{name: "all_fresh", staleRatio: 0, wantStale: false},
		{name: "all_stale", staleRatio: 1, wantStale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(7, tt.staleRatio, now)
			for range 20 {
				a := gen.Analytic("user-1")
				require.NoError(t, a.Validate())
				assert.Equal(t, tt.wantStale, a.IsStale(now))
				assert.LessOrEqual(t, a.UserItineraryAnalytic.AverageReviewScore, 5.0)
			}
		})
	}
}

func TestGenerator_ReportsAndNotificationsValidate(t *testing.T) {
	gen := NewGenerator(1, 0, time.Now())
	for range 20 {
		require.NoError(t, gen.Report("user-1").Validate())
		require.NoError(t, gen.Notification("user-1").Validate())
	}
}

func TestSeeder_DryRunCountsWithoutRepositories(t *testing.T) {
	s := &Seeder{
		gen:    NewGenerator(3, 1, time.Now()),
		dryRun: true,
		logger: logger.NewNop(),
	}

	var sum Summary
	s.SeedUser(context.Background(), "user-1", 2, 3, &sum)
	s.SeedUser(context.Background(), "user-2", 2, 3, &sum)

	assert.Equal(t, 2, sum.Analytics)
	assert.Equal(t, 2, sum.Stale)
	assert.Equal(t, 4, sum.Reports)
	assert.Equal(t, 6, sum.Notifications)
	assert.Empty(t, sum.Failed)
}
