package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/cafe-core/internal/auth"
)

// vacateRequest lets staff release another user's seat.
type vacateRequest struct {
	UserID string `json:"user_id,omitempty"`
}

func (s *Server) handleClaimSeat(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	claim, err := s.svc.ClaimSeat(r.Context(), claims.UserID(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (s *Server) handleVacateSeat(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req vacateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	userID := claims.UserID()
	if target := strings.TrimSpace(req.UserID); target != "" && target != userID {
		if !auth.HasPermission(claims.Role, auth.PermSeatAdmin) {
			writeForbidden(w, "vacating another user's seat requires staff role")
			return
		}
		userID = target
	}

	claim, err := s.svc.VacateSeat(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}
