package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/cafe-core/internal/auth"
	"github.com/nerrad567/cafe-core/internal/panel"
)

const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Counter display. Public, like occupancy itself.
	r.Get("/panel", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/panel/", http.StatusMovedPermanently)
	})
	r.Handle("/panel/*", http.StripPrefix("/panel", panel.Handler(s.cfg.PanelDir)))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Catalog and occupancy are public.
		r.Route("/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.Get("/occupancy", s.handleListOccupancy)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetZone)
				r.Get("/occupancy", s.handleGetOccupancy)
				r.Get("/seats", s.handleListZoneSeats)
			})
		})
		r.Get("/seats", s.handleListSeats)
		r.Get("/seats/{id}", s.handleGetSeat)

		// WebSocket authenticates with a ticket in the handler.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermPresenceWrite))
				r.Post("/presence/join", s.handleJoin)
				r.Post("/presence/leave", s.handleLeave)
				r.Post("/presence/move", s.handleMove)
				r.Post("/presence/heartbeat", s.handleHeartbeat)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermSeatClaim))
				r.Post("/seats/{id}/claim", s.handleClaimSeat)
				r.Post("/seats/vacate", s.handleVacateSeat)
			})

			r.Get("/users/{id}/nearby", s.handleNearby)
			r.Get("/users/{id}/gains", s.handleGains)
			r.Post("/recommendations", s.handleRecommendations)
			r.Post("/recommendations/batch", s.handleRecommendationsBatch)

			r.With(s.requirePermission(auth.PermJournalRead)).Get("/journal", s.handleListJournal)
		})
	})

	return r
}

// handleHealth reports version and the state of each dependency check.
// Any failing check turns the response into 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name].HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
		"users":   s.svc.Snapshot().Len(),
	})
}
