package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/cafe-core/internal/cafe"
	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/recommend"
	"github.com/nerrad567/cafe-core/internal/reservation"
	"github.com/nerrad567/cafe-core/internal/space"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeInternal     = "internal_error"
	ErrCodeSeatOccupied = "seat_occupied"
	ErrCodeDuplicate    = "duplicate_user"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON decodes the request body into v. An empty body leaves v at its
// zero value when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a domain error onto an HTTP status.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reservation.ErrSeatOccupied):
		writeError(w, http.StatusConflict, ErrCodeSeatOccupied, err.Error())
	case errors.Is(err, presence.ErrDuplicateUser):
		writeError(w, http.StatusConflict, ErrCodeDuplicate, err.Error())
	case errors.Is(err, presence.ErrUnknownUser),
		errors.Is(err, space.ErrSeatNotFound),
		errors.Is(err, space.ErrZoneNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, presence.ErrInvalidUserID),
		errors.Is(err, presence.ErrInvalidPosition),
		errors.Is(err, recommend.ErrInvalidProfile),
		errors.Is(err, reservation.ErrInvalidRequest):
		writeBadRequest(w, err.Error())
	case errors.Is(err, cafe.ErrNotStarted),
		errors.Is(err, presence.ErrStoreClosed),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
			"error", err,
		)
		writeInternalError(w, "internal server error")
	}
}
