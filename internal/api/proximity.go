package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/cafe-core/internal/auth"
)

// Guests may only query their own neighbourhood; staff may query anyone.

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.proximitySubject(w, r)
	if !ok {
		return
	}
	nearby := s.svc.GetNearbyUsers(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"nearby":  nearby,
		"count":   len(nearby),
	})
}

func (s *Server) handleGains(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.proximitySubject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"gains":   s.svc.GetAudioGains(userID),
	})
}

func (s *Server) proximitySubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := claimsFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if userID != claims.UserID() && !auth.HasPermission(claims.Role, auth.PermSeatAdmin) {
		writeForbidden(w, "cannot query another user's proximity")
		return "", false
	}
	return userID, true
}
