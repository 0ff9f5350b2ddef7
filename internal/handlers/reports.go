// internal/handlers/reports.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/export"
)

// ReportsHandler handles report-related HTTP requests
type ReportsHandler struct {
	responder
	service ports.ReportService
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(service ports.ReportService, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		responder: responder{logger: logger.With(slog.String("handler", "reports"))},
		service:   service,
	}
}

// Routes registers the report endpoints on mux.
func (h *ReportsHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/reports", h.List)
	mux.HandleFunc("POST /api/v1/reports", h.Create)
	mux.HandleFunc("GET /api/v1/reports/export", h.Export)
	mux.HandleFunc("GET /api/v1/reports/user/{userId}", h.GetByUser)
	mux.HandleFunc("GET /api/v1/reports/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/reports/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/reports/{id}", h.Delete)
}

// List handles GET /api/v1/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
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

// Get handles GET /api/v1/reports/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	report, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, report, "")
}

// GetByUser handles GET /api/v1/reports/user/{userId}
func (h *ReportsHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
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

// Create handles POST /api/v1/reports
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	report := req.ToDomain()
	if err := h.service.Create(r.Context(), report); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, report, "report created")
}

// Update handles PUT /api/v1/reports/{id}
func (h *ReportsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req UpdateReportRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	report, err := h.service.Update(r.Context(), id, req.ToDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, report, "report updated")
}

// Delete handles DELETE /api/v1/reports/{id}
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"id": id}, "report deleted")
}

// Export handles GET /api/v1/reports/export
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	params.PageSize = 100

	items, err := export.CollectAll[domain.Report](r.Context(), h.service.List, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	data, err := export.ReportsWorkbook(items)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeWorkbook(w, export.FilenameFor("reports", time.Now()), data)
	h.logger.InfoContext(r.Context(), "reports export completed",
		slog.Int("total_rows", len(items)))
}
