// internal/workers/scheduler.go
package workers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Schedule holds the cron specs of the periodic tasks. An empty spec
// disables that task.
type Schedule struct {
	RecomputeCron string
	SnapshotCron  string
	Timezone      string
}

// Registrar is the part of *asynq.Scheduler used to register entries.
type Registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// NewScheduler builds an asynq scheduler in the schedule's timezone (UTC by
// default) and registers the periodic tasks on it.
func NewScheduler(redisOpt asynq.RedisConnOpt, schedule Schedule, logger *slog.Logger) (*asynq.Scheduler, error) {
	loc := time.UTC
	if schedule.Timezone != "" {
		l, err := time.LoadLocation(schedule.Timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone %q: %w", schedule.Timezone, err)
		}
		loc = l
	}

	log := logger.With(slog.String("component", "scheduler"))
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   NewAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("failed to enqueue scheduled task", slog.String("error", err.Error()))
				return
			}
			log.Info("scheduled task enqueued",
				slog.String("type", info.Type),
				slog.String("task_id", info.ID))
		},
	})

	if _, err := RegisterSchedule(scheduler, schedule); err != nil {
		return nil, err
	}
	return scheduler, nil
}

// RegisterSchedule registers the recompute sweep and the snapshot and returns
// the entry ids by task type.
func RegisterSchedule(r Registrar, schedule Schedule) (map[string]string, error) {
	entries := make(map[string]string)
	for _, e := range []struct {
		spec string
		typ  string
	}{
		{schedule.RecomputeCron, TypeAnalyticsRecomputeStale},
		{schedule.SnapshotCron, TypeAnalyticsSnapshot},
	} {
		if e.spec == "" {
			continue
		}
		id, err := r.Register(e.spec, asynq.NewTask(e.typ, nil),
			asynq.Queue("default"),
			asynq.MaxRetry(3),
			asynq.Unique(time.Hour))
		if err != nil {
			return nil, fmt.Errorf("failed to register %s (%q): %w", e.typ, e.spec, err)
		}
		entries[e.typ] = id
	}
	return entries, nil
}
