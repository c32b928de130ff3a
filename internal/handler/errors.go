package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request. TripID and TripTitle are set only for
// schedule conflicts and name the trip the user already holds that day.
type ErrorDetail struct {
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	TripID    *uuid.UUID `json:"trip_id,omitempty"`
	TripTitle string     `json:"trip_title,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service error onto its HTTP status and error body.
// Unrecognised errors are logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		id := conflict.TripID
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:      "schedule_conflict",
			Message:   unwrapMessage(err, domain.ErrConflict),
			TripID:    &id,
			TripTitle: conflict.TripTitle,
		}})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", unwrapMessage(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
	case errors.Is(err, domain.ErrUnavailable):
		s.log.Warn("store unavailable", "error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable, please try again")
	default:
		s.log.Error("request failed", "error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows a sentinel in a
// wrapped error, e.g.
// "service.MembershipService.Create: validation error: title required" → "title required".
// The sentinel's own text is returned when nothing follows it.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 && len(msg) > i+len(marker) {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
