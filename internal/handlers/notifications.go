// internal/handlers/notifications.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// NotificationsHandler handles notification-related HTTP requests
type NotificationsHandler struct {
	responder
	service ports.NotificationService
}

func NewNotificationsHandler(service ports.NotificationService, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		responder: responder{logger: logger.With(slog.String("handler", "notifications"))},
		service:   service,
	}
}

// Routes registers the notification endpoints on mux.
func (h *NotificationsHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/notifications", h.List)
	mux.HandleFunc("POST /api/v1/notifications", h.Create)
	mux.HandleFunc("PUT /api/v1/notifications/{id}/seen", h.MarkSeen)
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", h.Delete)
}

// List handles GET /api/v1/notifications?userId=&status=
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
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

// Create handles POST /api/v1/notifications. A notification that could not
// reach the queue but was scheduled for redelivery is answered with 202.
func (h *NotificationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if err := decode(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	n := req.ToDomain()
	outcome, err := h.service.Create(r.Context(), n)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if outcome == domain.DeliveryDeferred {
		h.respond(w, http.StatusAccepted, n, "notification queued for redelivery")
		return
	}
	h.respond(w, http.StatusCreated, n, "notification delivered")
}

// MarkSeen handles PUT /api/v1/notifications/{id}/seen
func (h *NotificationsHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	n, err := h.service.MarkSeen(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, n, "")
}

// Delete handles DELETE /api/v1/notifications/{id}
func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"id": id}, "notification deleted")
}
