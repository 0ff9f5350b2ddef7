// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/config"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// QueueInspector is the part of *asynq.Inspector the health check reads.
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Readiness is implemented by dependencies whose outage the service rides
// out: the NATS connection (notifications are redelivered later) and the
// itinerary client breaker (computes fail fast with 502).
type Readiness interface {
	IsReady() bool
}

// HealthHandler serves /health, /health/live and /ready. Checkers are
// critical and degrade the service; advisory dependencies are only reported.
type HealthHandler struct {
	checkers  map[string]ports.HealthChecker
	advisory  map[string]Readiness
	inspector QueueInspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler builds the handler. inspector and advisory may be nil.
func NewHealthHandler(
	checkers map[string]ports.HealthChecker,
	inspector QueueInspector,
	advisory map[string]Readiness,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		checkers:  checkers,
		advisory:  advisory,
		inspector: inspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	Runtime     RuntimeInfo            `json:"runtime"`
}

type ServiceInfo struct {
	Status       string                 `json:"status"`
	Critical     bool                   `json:"critical"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
	NumGC      uint32 `json:"num_gc"`
}

func (h *HealthHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/live", h.Liveness)
	mux.HandleFunc("GET /ready", h.Readiness)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := h.checkCritical(ctx)
	if h.inspector != nil {
		services["asynq"] = h.checkQueues(ctx)
	}
	for name, dep := range h.advisory {
		info := ServiceInfo{Status: statusHealthy}
		if !dep.IsReady() {
			info.Status = statusUnhealthy
			info.Message = "unavailable, requests are deferred or rejected"
		}
		services[name] = info
	}

	overall := statusHealthy
	for _, info := range services {
		if info.Critical && info.Status != statusHealthy {
			overall = statusDegraded
			break
		}
	}

	code := http.StatusOK
	if overall != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	h.write(ctx, w, code, HealthStatus{
		Status:      overall,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now().UTC(),
		Services:    services,
		Runtime:     readRuntime(),
	})
}

// Liveness never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.write(r.Context(), w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness pings every critical dependency in name order.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	details := make(map[string]string, len(names))
	for _, name := range names {
		details[name] = "ready"
		if err := h.checkers[name].Ping(ctx); err != nil {
			ready = false
			details[name] = "not ready"
		}
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	h.write(ctx, w, code, map[string]interface{}{"ready": ready, "details": details})
}

// checkCritical runs the dependency checks in parallel.
func (h *HealthHandler) checkCritical(ctx context.Context) map[string]ServiceInfo {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]ServiceInfo, len(h.checkers)+len(h.advisory)+1)
	)
	for name, checker := range h.checkers {
		wg.Add(1)
		go func(name string, checker ports.HealthChecker) {
			defer wg.Done()
			info := h.checkDependency(ctx, name, checker)
			mu.Lock()
			out[name] = info
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()
	return out
}

func (h *HealthHandler) checkDependency(ctx context.Context, name string, checker ports.HealthChecker) ServiceInfo {
	started := time.Now()
	if err := checker.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Critical: true, Message: err.Error()}
	}

	return ServiceInfo{
		Status:       statusHealthy,
		Critical:     true,
		Details:      checker.Health(ctx),
		ResponseTime: time.Since(started).String(),
	}
}

// checkQueues summarises the asynq queues holding recompute, snapshot and
// redelivery tasks.
func (h *HealthHandler) checkQueues(ctx context.Context) ServiceInfo {
	started := time.Now()
	queues, err := h.inspector.Queues()
	if err != nil {
		h.logger.ErrorContext(ctx, "asynq health check failed", slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Critical: true, Message: err.Error()}
	}

	stats := make(map[string]interface{}, len(queues))
	for _, q := range queues {
		qi, err := h.inspector.GetQueueInfo(q)
		if err != nil {
			continue
		}
		stats[q] = map[string]int{
			"size":      qi.Size,
			"active":    qi.Active,
			"pending":   qi.Pending,
			"scheduled": qi.Scheduled,
			"retry":     qi.Retry,
			"archived":  qi.Archived,
		}
	}

	return ServiceInfo{
		Status:       statusHealthy,
		Critical:     true,
		Details:      map[string]interface{}{"queues": stats},
		ResponseTime: time.Since(started).String(),
	}
}

func (h *HealthHandler) write(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response", slog.String("error", err.Error()))
	}
}

func readRuntime() RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     m.HeapAlloc >> 20,
		NumGC:      m.NumGC,
	}
}
