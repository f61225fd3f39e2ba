package api

import (
	"net/http"

	"github.com/nerrad567/cafe-core/internal/space"
)

// positionRequest is the body of join and move.
type positionRequest struct {
	Position *space.Point `json:"position"`
}

// Presence endpoints always act on the authenticated subject.

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	pos, ok := readPosition(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Join(r.Context(), claimsFromContext(r.Context()).UserID(), pos)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	pos, ok := readPosition(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Move(r.Context(), claimsFromContext(r.Context()).UserID(), pos)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Leave(r.Context(), claimsFromContext(r.Context()).UserID()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Heartbeat(r.Context(), claimsFromContext(r.Context()).UserID())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func readPosition(w http.ResponseWriter, r *http.Request) (space.Point, bool) {
	var req positionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return space.Point{}, false
	}
	if req.Position == nil {
		writeBadRequest(w, "position is required")
		return space.Point{}, false
	}
	return *req.Position, true
}
