// internal/handlers/recompute.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/workers"
)

// RecomputeHandler triggers the recompute job by hand.
type RecomputeHandler struct {
	responder
	runner ports.RecomputeRunner
	queue  workers.Enqueuer
}

// NewRecomputeHandler creates a new recompute handler. queue may be nil, in
// which case ?async=true is rejected.
func NewRecomputeHandler(runner ports.RecomputeRunner, queue workers.Enqueuer, logger *slog.Logger) *RecomputeHandler {
	return &RecomputeHandler{
		responder: responder{logger: logger.With(slog.String("handler", "recompute"))},
		runner:    runner,
		queue:     queue,
	}
}

func (h *RecomputeHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/updateAnalytics", h.Recompute)
}

// Recompute handles POST /api/updateAnalytics {id, userId}. It runs the job
// inline, or hands it to the worker with ?async=true.
func (h *RecomputeHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if h.queue == nil {
			h.respond(w, http.StatusServiceUnavailable, nil, "task queue not configured")
			return
		}
		taskID, err := workers.EnqueueRecompute(r.Context(), h.queue, req.ID, req.UserID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respond(w, http.StatusAccepted, map[string]string{"taskId": taskID}, "recompute queued")
		return
	}

	summary, err := h.runner.Run(r.Context(), req.ID, req.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "manual recompute finished",
		slog.String("id", req.ID),
		slog.String("user_id", req.UserID),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated))
	h.respond(w, http.StatusOK, summary, "analytics recomputed")
}
