// internal/pkg/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "analytics_reports"

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Itinerary service
	ItineraryFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "itinerary_fetch_total",
			Help:      "Itinerary fetches by outcome (ok, empty, unreachable, upstream_error)",
		},
		[]string{"outcome"},
	)

	ItineraryFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "itinerary_fetch_duration_seconds",
			Help:      "Latency of itinerary fetches",
			Buckets:   prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Notifications
	NotificationPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_publish_total",
			Help:      "Notification publishes by outcome (delivered, undeliverable, failed)",
		},
		[]string{"outcome"},
	)

	NotificationReadinessChecks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_readiness_checks_total",
			Help:      "Times the publisher found the queue connection not ready",
		},
	)

	NotificationRedeliveriesEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_redeliveries_enqueued_total",
			Help:      "Undeliverable notifications handed to the task queue",
		},
	)

	// Analytics
	RecomputeRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_records_total",
			Help:      "Analytics processed by the recompute job, by outcome",
		},
		[]string{"outcome"},
	)

	AnalyticsSaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_save_total",
			Help:      "Outcomes of staleness-guarded saves",
		},
		[]string{"outcome"},
	)

	// Background tasks
	TasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Worker tasks handled, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Worker task handling time in seconds",
			Buckets:   []float64{.05, .25, 1, 5, 15, 60, 300},
		},
		[]string{"type"},
	)

	// Cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Redis cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Redis cache misses",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordItineraryFetch records one itinerary fetch.
func RecordItineraryFetch(outcome string, duration time.Duration) {
	ItineraryFetchTotal.WithLabelValues(outcome).Inc()
	ItineraryFetchDuration.Observe(duration.Seconds())
}

// RecordTask records one handled worker task.
func RecordTask(taskType string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TasksProcessedTotal.WithLabelValues(taskType, outcome).Inc()
	TaskDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}
