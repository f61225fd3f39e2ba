package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/cafe-core/internal/auth"
	"github.com/nerrad567/cafe-core/internal/cafe"
	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
	"github.com/nerrad567/cafe-core/internal/infrastructure/logging"
	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/space"
)

const testSecret = "test-secret-that-is-at-least-32-chars-long"

type failingCheck struct{ err error }

func (f failingCheck) HealthCheck(context.Context) error { return f.err }

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

func testService(t *testing.T) *cafe.Service {
	t.Helper()
	reg, err := space.NewRegistry(space.Catalog{
		Zones: []space.Zone{
			{ID: "quiet", Name: "Quiet", NoiseLevel: 10, ActivityType: space.ActivityStudy, LightingQuality: 90},
			{ID: "bar", Name: "Bar", NoiseLevel: 80, ActivityType: space.ActivitySocial, LightingQuality: 50},
		},
		Seats: []space.Seat{
			{ID: "q1", ZoneID: "quiet", Position: space.Point{X: 0, Y: 0}},
			{ID: "b1", ZoneID: "bar", Position: space.Point{X: 10, Y: 0}, Capacity: 2},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	svc := cafe.New(reg, cafe.Options{Presence: presence.Options{SweepInterval: -1}})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { svc.Close() }) //nolint:errcheck // test cleanup
	return svc
}

func testServer(t *testing.T, mutate func(*Deps)) (*Server, http.Handler) {
	t.Helper()
	deps := Deps{
		WS:       config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}},
		Logger:   testLogger(),
		Service:  testService(t),
		Version:  "test",
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, srv.Handler()
}

func token(t *testing.T, userID string, role auth.Role) string {
	t.Helper()
	tok, err := auth.IssueToken(userID, role, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return tok
}

func do(t *testing.T, h http.Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("decoding error body: %v (body %q)", err, w.Body.String())
	}
	return e
}

func TestNew_RequiresDeps(t *testing.T) {
	svc := testService(t)
	tests := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{Service: svc, Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}}}},
		{"no service", Deps{Logger: testLogger(), Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}}}},
		{"no secret", Deps{Logger: testLogger(), Service: svc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		_, h := testServer(t, nil)
		w := do(t, h, http.MethodGet, "/api/v1/health", "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "ok" || body["version"] != "test" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		_, h := testServer(t, func(d *Deps) {
			d.Checks = map[string]HealthChecker{"mqtt": failingCheck{errors.New("down")}}
		})
		w := do(t, h, http.MethodGet, "/api/v1/health", "", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", w.Code)
		}
	})
}

func TestCatalogRoutes(t *testing.T) {
	_, h := testServer(t, nil)
	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/zones", http.StatusOK},
		{"/api/v1/zones/quiet", http.StatusOK},
		{"/api/v1/zones/nope", http.StatusNotFound},
		{"/api/v1/zones/bar/seats", http.StatusOK},
		{"/api/v1/zones/nope/seats", http.StatusNotFound},
		{"/api/v1/zones/occupancy", http.StatusOK},
		{"/api/v1/zones/bar/occupancy", http.StatusOK},
		{"/api/v1/seats", http.StatusOK},
		{"/api/v1/seats/q1", http.StatusOK},
		{"/api/v1/seats/zz", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := do(t, h, http.MethodGet, tt.path, "", ""); w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d (%s)", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestZoneView_Capacity(t *testing.T) {
	_, h := testServer(t, nil)
	w := do(t, h, http.MethodGet, "/api/v1/zones/bar", "", "")
	var z zoneView
	if err := json.NewDecoder(w.Body).Decode(&z); err != nil {
		t.Fatal(err)
	}
	if z.Capacity != 2 || z.Seats != 1 {
		t.Errorf("zone = %+v, want capacity 2 with 1 seat", z)
	}
}

func TestAuthRequired(t *testing.T) {
	_, h := testServer(t, nil)

	w := do(t, h, http.MethodPost, "/api/v1/presence/join", "", `{"position":{"x":1,"y":1}}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/presence/join", "garbage", `{"position":{"x":1,"y":1}}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", w.Code)
	}
}

func TestPresenceAndClaimFlow(t *testing.T) {
	_, h := testServer(t, nil)
	alice := token(t, "alice", auth.RoleGuest)
	bob := token(t, "bob", auth.RoleGuest)

	if w := do(t, h, http.MethodPost, "/api/v1/presence/join", alice, `{"position":{"x":1,"y":1}}`); w.Code != http.StatusCreated {
		t.Fatalf("join alice = %d (%s)", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodPost, "/api/v1/presence/join", alice, `{"position":{"x":1,"y":1}}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate join = %d, want 409", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/presence/join", bob, `{"position":{"x":2,"y":1}}`); w.Code != http.StatusCreated {
		t.Fatalf("join bob = %d", w.Code)
	}

	if w := do(t, h, http.MethodPost, "/api/v1/seats/q1/claim", alice, ""); w.Code != http.StatusOK {
		t.Fatalf("claim alice = %d (%s)", w.Code, w.Body.String())
	}
	w := do(t, h, http.MethodPost, "/api/v1/seats/q1/claim", bob, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("claim bob = %d, want 409", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeSeatOccupied {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeSeatOccupied)
	}

	w = do(t, h, http.MethodGet, "/api/v1/seats/q1", "", "")
	var seat seatView
	if err := json.NewDecoder(w.Body).Decode(&seat); err != nil {
		t.Fatal(err)
	}
	if seat.Occupant != "alice" || seat.State != "occupied" {
		t.Errorf("seat = %+v, want occupied by alice", seat)
	}

	if w := do(t, h, http.MethodPost, "/api/v1/seats/zz/claim", bob, ""); w.Code != http.StatusNotFound {
		t.Errorf("claim unknown seat = %d, want 404", w.Code)
	}

	if w := do(t, h, http.MethodPost, "/api/v1/presence/move", bob, `{"position":{"x":3,"y":1}}`); w.Code != http.StatusOK {
		t.Errorf("move = %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/presence/heartbeat", bob, ""); w.Code != http.StatusOK {
		t.Errorf("heartbeat = %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/presence/leave", alice, ""); w.Code != http.StatusNoContent {
		t.Errorf("leave = %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/presence/heartbeat", alice, ""); w.Code != http.StatusNotFound {
		t.Errorf("heartbeat after leave = %d, want 404", w.Code)
	}
}

func TestPresence_BadBodies(t *testing.T) {
	_, h := testServer(t, nil)
	tok := token(t, "carol", auth.RoleGuest)
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing position", `{}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, h, http.MethodPost, "/api/v1/presence/join", tok, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("join %s = %d, want 400", tt.name, w.Code)
			}
		})
	}
}

func TestVacate_StaffOverride(t *testing.T) {
	_, h := testServer(t, nil)
	alice := token(t, "alice", auth.RoleGuest)
	bob := token(t, "bob", auth.RoleGuest)
	staff := token(t, "barista", auth.RoleStaff)

	do(t, h, http.MethodPost, "/api/v1/presence/join", alice, `{"position":{"x":0,"y":0}}`)
	do(t, h, http.MethodPost, "/api/v1/seats/q1/claim", alice, "")

	if w := do(t, h, http.MethodPost, "/api/v1/seats/vacate", bob, `{"user_id":"alice"}`); w.Code != http.StatusForbidden {
		t.Errorf("guest vacating other = %d, want 403", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/seats/vacate", staff, `{"user_id":"alice"}`); w.Code != http.StatusOK {
		t.Errorf("staff vacate = %d (%s)", w.Code, w.Body.String())
	}
	// Vacating with nothing held succeeds without a change.
	if w := do(t, h, http.MethodPost, "/api/v1/seats/vacate", alice, ""); w.Code != http.StatusOK {
		t.Errorf("self vacate = %d", w.Code)
	}
}

func TestProximityRoutes(t *testing.T) {
	_, h := testServer(t, nil)
	alice := token(t, "alice", auth.RoleGuest)
	bob := token(t, "bob", auth.RoleGuest)
	staff := token(t, "barista", auth.RoleStaff)

	do(t, h, http.MethodPost, "/api/v1/presence/join", alice, `{"position":{"x":0,"y":0}}`)
	do(t, h, http.MethodPost, "/api/v1/presence/join", bob, `{"position":{"x":3,"y":4}}`)

	w := do(t, h, http.MethodGet, "/api/v1/users/alice/nearby", alice, "")
	if w.Code != http.StatusOK {
		t.Fatalf("nearby = %d", w.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Errorf("nearby count = %d, want 1", body.Count)
	}

	if w := do(t, h, http.MethodGet, "/api/v1/users/alice/gains", bob, ""); w.Code != http.StatusForbidden {
		t.Errorf("guest querying other = %d, want 403", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/users/alice/gains", staff, ""); w.Code != http.StatusOK {
		t.Errorf("staff gains = %d", w.Code)
	}
}

func TestRecommendations(t *testing.T) {
	_, h := testServer(t, nil)
	tok := token(t, "alice", auth.RoleGuest)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"single", "/api/v1/recommendations", `{"social_level":10,"noise_preference":10,"activity_type":"study","limit":1}`, http.StatusOK},
		{"invalid profile", "/api/v1/recommendations", `{"social_level":150}`, http.StatusBadRequest},
		{"bad json", "/api/v1/recommendations", `nope`, http.StatusBadRequest},
		{"batch", "/api/v1/recommendations/batch", `{"profiles":[{"activity_type":"study"},{"activity_type":"social"}]}`, http.StatusOK},
		{"batch empty", "/api/v1/recommendations/batch", `{"profiles":[]}`, http.StatusBadRequest},
		{"batch invalid", "/api/v1/recommendations/batch", `{"profiles":[{"noise_preference":-1}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, h, http.MethodPost, tt.path, tok, tt.body); w.Code != tt.want {
				t.Errorf("%s = %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRecommendations_TopSeat(t *testing.T) {
	_, h := testServer(t, nil)
	tok := token(t, "alice", auth.RoleGuest)
	w := do(t, h, http.MethodPost, "/api/v1/recommendations", tok,
		`{"social_level":0,"noise_preference":10,"activity_type":"study","limit":1}`)
	var body struct {
		Recommendations []struct {
			SeatID string `json:"seat_id"`
		} `json:"recommendations"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Recommendations) != 1 || body.Recommendations[0].SeatID != "q1" {
		t.Errorf("recommendations = %+v, want [q1]", body.Recommendations)
	}
}

func TestJournalRoute(t *testing.T) {
	_, h := testServer(t, nil)
	guest := token(t, "alice", auth.RoleGuest)
	staff := token(t, "barista", auth.RoleStaff)

	if w := do(t, h, http.MethodGet, "/api/v1/journal", guest, ""); w.Code != http.StatusForbidden {
		t.Errorf("guest journal = %d, want 403", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/journal", staff, ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("journal without repository = %d, want 503", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	_, h := testServer(t, func(d *Deps) {
		d.Config.CORS.AllowedOrigins = []string{"http://till.local"}
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/zones", nil)
	req.Header.Set("Origin", "http://till.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://till.local" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestRequestID_Header(t *testing.T) {
	_, h := testServer(t, nil)
	w := do(t, h, http.MethodGet, "/api/v1/health", "", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestPanelMounted(t *testing.T) {
	_, h := testServer(t, nil)

	if w := do(t, h, http.MethodGet, "/panel", "", ""); w.Code != http.StatusMovedPermanently {
		t.Errorf("GET /panel = %d, want 301", w.Code)
	}
	w := do(t, h, http.MethodGet, "/panel/", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Errorf("GET /panel/ = %d", w.Code)
	}
}
