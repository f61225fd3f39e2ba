package presence

import (
	"time"

	"github.com/nerrad567/cafe-core/internal/space"
)

// UserPresence is the live record of one connected user.
type UserPresence struct {
	UserID          string      `json:"user_id"`
	Position        space.Point `json:"position"`
	SeatID          string      `json:"seat_id,omitempty"` // empty when unseated
	ConnectedAt     time.Time   `json:"connected_at"`
	LastHeartbeatAt time.Time   `json:"last_heartbeat_at"`
}

// Seated reports whether the user currently holds a seat.
func (p UserPresence) Seated() bool {
	return p.SeatID != ""
}

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeJoin   ChangeKind = "join"
	ChangeLeave  ChangeKind = "leave"
	ChangeMove   ChangeKind = "move"
	ChangeSeat   ChangeKind = "seat"
	ChangeExpire ChangeKind = "expire"
)

// Change describes one applied mutation. For seat changes SeatID is the
// new seat (empty when vacated) and PreviousSeatID the released one.
// For leave and expire SeatID is the seat that was implicitly released.
type Change struct {
	Kind           ChangeKind  `json:"kind"`
	UserID         string      `json:"user_id"`
	SeatID         string      `json:"seat_id,omitempty"`
	PreviousSeatID string      `json:"previous_seat_id,omitempty"`
	Position       space.Point `json:"position"`
	Version        uint64      `json:"version"`
	At             time.Time   `json:"at"`
}

// SeatLookup is the subset of the spatial registry the store needs to
// validate seat references.
type SeatLookup interface {
	HasSeat(id string) bool
}

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
