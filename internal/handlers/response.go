// internal/handlers/response.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

const maxBodyBytes = 1 << 20

// Envelope is the body of every JSON response.
type Envelope struct {
	Data    any                 `json:"data"`
	Message string              `json:"message,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

var objectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// IsObjectID reports whether s is a well-formed record identifier.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsObjectID(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags and converts failures into a
// domain.ValidationError keyed by json field path.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	v := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		v.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
	}
	return v
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "objectid":
		return "must be 1 to 64 letters, digits, '_' or '-'"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), "'", "")
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// responder carries the logger shared by the JSON helpers.
type responder struct {
	logger *slog.Logger
}

func (h responder) respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Data: data, Message: message}); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// respondError maps err onto a status. Unclassified errors are logged and
// answered with a generic message.
func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	} else {
		h.logger.DebugContext(r.Context(), "request rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(env); encErr != nil {
		h.logger.Error("failed to encode error response",
			slog.String("error", encErr.Error()))
	}
}

func classify(err error) (int, Envelope) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, Envelope{Message: "validation failed", Errors: vErr.Fields}
	case errors.Is(err, domain.ErrNoItineraries):
		return http.StatusNotFound, Envelope{Message: "no itineraries found for user"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Envelope{Message: "resource not found"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, Envelope{Message: "resource conflict"}
	case errors.Is(err, domain.ErrUpstreamResponse):
		return http.StatusBadGateway, Envelope{Message: "itinerary service returned an error"}
	case errors.Is(err, domain.ErrUpstreamUnreachable):
		return http.StatusServiceUnavailable, Envelope{Message: "itinerary service unavailable"}
	case errors.Is(err, domain.ErrUndeliverable):
		return http.StatusServiceUnavailable, Envelope{Message: "notification could not be delivered"}
	default:
		return http.StatusInternalServerError, Envelope{Message: "internal server error"}
	}
}

// decode reads a JSON body into dst and validates it. An empty body is an
// error unless optional is set.
func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return domain.NewValidationError("body", "is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
		}
		return domain.NewValidationError("body", "must be valid JSON")
	}
	return validateStruct(dst)
}

// pathID reads and checks an identifier path segment.
func pathID(r *http.Request, name string) (string, error) {
	id := r.PathValue(name)
	if !IsObjectID(id) {
		return "", domain.NewValidationError(name, "must be 1 to 64 letters, digits, '_' or '-'")
	}
	return id, nil
}

// parseListParams reads paging and filters. Malformed identifiers are
// rejected; malformed numbers fall back to defaults.
func parseListParams(r *http.Request) (ports.ListParams, error) {
	q := r.URL.Query()
	params := ports.ListParams{
		Page:       1,
		PageSize:   20,
		UserID:     q.Get("userId"),
		ResourceID: q.Get("resourceId"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.PageSize = min(limit, 100)
	}
	if stale, err := strconv.ParseBool(q.Get("stale")); err == nil {
		params.StaleOnly = stale
	}

	v := &domain.ValidationError{}
	if params.UserID != "" && !IsObjectID(params.UserID) {
		v.Add("userId", "must be 1 to 64 letters, digits, '_' or '-'")
	}
	if params.ResourceID != "" && !IsObjectID(params.ResourceID) {
		v.Add("resourceId", "must be 1 to 64 letters, digits, '_' or '-'")
	}
	return params, v.OrNil()
}
