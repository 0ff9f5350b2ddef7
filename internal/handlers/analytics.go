// internal/handlers/analytics.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/handlers/middleware"
	"github.com/ammerola/analytics-reports/internal/pkg/export"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	responder
	service ports.AnalyticService
	now     func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service ports.AnalyticService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		responder: responder{logger: logger.With(slog.String("handler", "analytics"))},
		service:   service,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Routes registers the analytics endpoints on mux.
func (h *AnalyticsHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.List)
	mux.HandleFunc("POST /api/v1/analytics", h.Create)
	mux.HandleFunc("GET /api/v1/analytics/export", h.Export)
	mux.HandleFunc("POST /api/v1/analytics/saveAnalytic", h.Save)
	mux.HandleFunc("POST /api/v1/analytics/saveAnalytic/{id}", h.Save)
	mux.HandleFunc("GET /api/v1/analytics/user/{userId}", h.GetByUser)
	mux.HandleFunc("POST /api/v1/analytics/user", h.Compute)
	mux.HandleFunc("POST /api/v1/analytics/user/{userId}", h.Compute)
	mux.HandleFunc("GET /api/v1/analytics/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/analytics/{id}", h.GetOrCreate)
	mux.HandleFunc("PUT /api/v1/analytics/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/analytics/{id}", h.Delete)
}

// List handles GET /api/v1/analytics
func (h *AnalyticsHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result, "")
}

// Get handles GET /api/v1/analytics/{id}
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, a, "")
}

// GetByUser handles GET /api/v1/analytics/user/{userId}. A user without
// analytics gets an empty list.
func (h *AnalyticsHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, items, "")
}

// Create handles POST /api/v1/analytics
func (h *AnalyticsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AnalyticRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	a := req.ToDomain()
	if err := h.service.Create(r.Context(), a); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analytic created",
		slog.String("id", a.ID),
		slog.String("user_id", a.UserID))
	h.respond(w, http.StatusCreated, a, "analytic created")
}

// Update handles PUT /api/v1/analytics/{id}
func (h *AnalyticsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var patch domain.UserAnalyticPatch
	if err := decode(w, r, &patch, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	a, err := h.service.Update(r.Context(), id, &patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, a, "analytic updated")
}

// Delete handles DELETE /api/v1/analytics/{id}
func (h *AnalyticsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"id": id}, "analytic deleted")
}

// GetOrCreate handles POST /api/v1/analytics/{id}. The body is optional;
// without one the record is initialized for the caller's identity.
func (h *AnalyticsHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req AnalyticRequest
	if err := decode(w, r, &req, true); err != nil {
		h.respondError(w, r, err)
		return
	}

	a := req.ToDomain()
	if a.UserID == "" {
		a.UserID, _ = middleware.UserIDFromContext(r.Context())
	}

	saved, created, err := h.service.GetOrCreate(r.Context(), id, a)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if created {
		h.respond(w, http.StatusCreated, saved, "analytic created")
		return
	}
	h.respond(w, http.StatusOK, saved, "")
}

// Save handles POST /api/v1/analytics/saveAnalytic[/{id}]: create when
// missing, refresh when stale, leave alone when fresh.
func (h *AnalyticsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req AnalyticRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	id := req.ID
	if r.PathValue("id") != "" {
		pid, err := pathID(r, "id")
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		id = pid
	}

	saved, outcome, err := h.service.Save(r.Context(), id, req.ToDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	switch outcome {
	case domain.SaveCreated:
		h.respond(w, http.StatusCreated, saved, "analytic created")
	case domain.SaveUpdated:
		h.respond(w, http.StatusOK, saved, "stale analytic refreshed")
	default:
		h.respond(w, http.StatusOK, saved, "analytic is fresh; not modified")
	}
}

// Compute handles POST /api/v1/analytics/user[/{userId}]. The path user wins
// over the X-User-ID identity. ?scope=user stores one user-wide record
// instead of one per itinerary.
func (h *AnalyticsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		userID, _ = middleware.UserIDFromContext(r.Context())
	}
	if userID == "" {
		h.respondError(w, r, domain.NewValidationError("userId", "is required"))
		return
	}
	if !IsObjectID(userID) {
		h.respondError(w, r, domain.NewValidationError("userId", "must be 1 to 64 letters, digits, '_' or '-'"))
		return
	}

	scope := domain.ScopeItinerary
	switch s := r.URL.Query().Get("scope"); s {
	case "", string(domain.ScopeItinerary):
	case string(domain.ScopeUser):
		scope = domain.ScopeUser
	default:
		h.respondError(w, r, domain.NewValidationError("scope", "must be one of user, itinerary"))
		return
	}

	items, err := h.service.ComputeForUser(r.Context(), userID, scope)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analytics computed",
		slog.String("user_id", userID),
		slog.String("scope", string(scope)),
		slog.Int("records", len(items)))
	h.respond(w, http.StatusOK, items, "analytics computed")
}

// Export handles GET /api/v1/analytics/export
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	params.PageSize = 100

	items, err := export.CollectAll[domain.UserAnalytic](r.Context(), h.service.List, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	now := h.now()
	data, err := export.AnalyticsWorkbook(items, now)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeWorkbook(w, export.FilenameFor("analytics", now), data)
	h.logger.InfoContext(r.Context(), "analytics export completed",
		slog.Int("total_rows", len(items)))
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
