package api

import (
	"fmt"
	"net/http"

	"github.com/nerrad567/cafe-core/internal/recommend"
)

// maxBatchProfiles caps a single batch request.
const maxBatchProfiles = 100

type recommendationRequest struct {
	recommend.Profile
	Limit int `json:"limit,omitempty"`
}

type batchRequest struct {
	Profiles []recommend.Profile `json:"profiles"`
	Limit    int                 `json:"limit,omitempty"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	recs, err := s.svc.GetRecommendations(req.Profile, req.Limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleRecommendationsBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Profiles) == 0 {
		writeBadRequest(w, "profiles must not be empty")
		return
	}
	if len(req.Profiles) > maxBatchProfiles {
		writeBadRequest(w, fmt.Sprintf("at most %d profiles per batch", maxBatchProfiles))
		return
	}
	results, err := s.svc.GetRecommendationsBatch(r.Context(), req.Profiles, req.Limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
