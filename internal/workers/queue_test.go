package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/workers"
	"github.com/ammerola/analytics-reports/test/helpers"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: "default"}, nil
}

func optionValues(opts []asynq.Option) map[asynq.OptionType]interface{} {
	values := make(map[asynq.OptionType]interface{}, len(opts))
	for _, o := range opts {
		values[o.Type()] = o.Value()
	}
	return values
}

func TestDeliveryQueue_EnqueueRedelivery(t *testing.T) {
	t.Run("schedules_delayed_task", func(t *testing.T) {
		enqueuer := &fakeEnqueuer{}
		queue := workers.NewDeliveryQueue(enqueuer, 30*time.Second, 5, helpers.TestLogger())
		n := helpers.CreateTestNotification(func(n *domain.Notification) { n.ID = "notif-7" })

		require.NoError(t, queue.EnqueueRedelivery(context.Background(), n))

		require.Len(t, enqueuer.tasks, 1)
		assert.Equal(t, workers.TypeNotificationRedeliver, enqueuer.tasks[0].Type())
		assert.Contains(t, string(enqueuer.tasks[0].Payload()), `"id":"notif-7"`)

		values := optionValues(enqueuer.opts[0])
		assert.Equal(t, 30*time.Second, values[asynq.ProcessInOpt])
		assert.Equal(t, 5, values[asynq.MaxRetryOpt])
		assert.Equal(t, "default", values[asynq.QueueOpt])
	})

	t.Run("defaults_max_retry", func(t *testing.T) {
		enqueuer := &fakeEnqueuer{}
		queue := workers.NewDeliveryQueue(enqueuer, time.Second, 0, helpers.TestLogger())

		require.NoError(t, queue.EnqueueRedelivery(context.Background(), helpers.CreateTestNotification()))
		assert.Equal(t, 3, optionValues(enqueuer.opts[0])[asynq.MaxRetryOpt])
	})

	t.Run("enqueue_failure_is_wrapped", func(t *testing.T) {
		redisDown := errors.New("dial tcp: connection refused")
		queue := workers.NewDeliveryQueue(&fakeEnqueuer{err: redisDown}, time.Second, 3, helpers.TestLogger())

		err := queue.EnqueueRedelivery(context.Background(), helpers.CreateTestNotification())
		assert.ErrorIs(t, err, redisDown)
	})
}

func TestEnqueueRecompute(t *testing.T) {
	enqueuer := &fakeEnqueuer{}

	id, err := workers.EnqueueRecompute(context.Background(), enqueuer, "analytic-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, workers.TypeAnalyticsRecompute, enqueuer.tasks[0].Type())
}

type fakeRegistrar struct {
	specs map[string]string
	err   error
}

func (f *fakeRegistrar) Register(cronspec string, task *asynq.Task, _ ...asynq.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.specs == nil {
		f.specs = make(map[string]string)
	}
	f.specs[task.Type()] = cronspec
	return "entry-" + task.Type(), nil
}

func TestRegisterSchedule(t *testing.T) {
	tests := []struct {
		name          string
		schedule      workers.Schedule
		registerErr   error
		expectedSpecs map[string]string
		expectedError bool
	}{
		{
			name:     "registers_both_jobs",
			schedule: workers.Schedule{RecomputeCron: "0 0 * * *", SnapshotCron: "30 0 * * *"},
			expectedSpecs: map[string]string{
				workers.TypeAnalyticsRecomputeStale: "0 0 * * *",
				workers.TypeAnalyticsSnapshot:       "30 0 * * *",
			},
		},
		{
			name:     "empty_spec_disables_job",
			schedule: workers.Schedule{RecomputeCron: "0 0 * * *"},
			expectedSpecs: map[string]string{
				workers.TypeAnalyticsRecomputeStale: "0 0 * * *",
			},
		},
		{
			name:          "register_failure",
			schedule:      workers.Schedule{RecomputeCron: "not a cron"},
			registerErr:   errors.New("invalid cron spec"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRegistrar{err: tt.registerErr}
			entries, err := workers.RegisterSchedule(r, tt.schedule)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSpecs, r.specs)
			assert.Len(t, entries, len(tt.expectedSpecs))
		})
	}
}

func TestNewScheduler_RejectsUnknownTimezone(t *testing.T) {
	_, err := workers.NewScheduler(asynq.RedisClientOpt{Addr: "localhost:0"},
		workers.Schedule{RecomputeCron: "0 0 * * *", Timezone: "Mars/Olympus"}, helpers.TestLogger())
	assert.Error(t, err)
}
