package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/cafe-core/internal/journal"
)

// handleListJournal pages through reservation outcomes.
//
// Query parameters: action, user_id, seat_id, outcome, since (RFC 3339),
// limit, offset.
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "journal not configured")
		return
	}

	q := r.URL.Query()
	filter := journal.Filter{
		Action:  q.Get("action"),
		UserID:  q.Get("user_id"),
		SeatID:  q.Get("seat_id"),
		Outcome: q.Get("outcome"),
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}
	var ok bool
	if filter.Limit, ok = intParam(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if filter.Offset, ok = intParam(w, q.Get("offset"), "offset"); !ok {
		return
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func intParam(w http.ResponseWriter, v, name string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeBadRequest(w, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
