package reservation

import (
	"context"
	"time"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/space"
)

// State is the derived state of a seat.
type State string

const (
	StateAvailable    State = "available"
	StateClaimPending State = "claim_pending"
	StateOccupied     State = "occupied"
)

// Action is the kind of reservation request.
type Action string

const (
	ActionClaim  Action = "claim"
	ActionVacate Action = "vacate"
)

// Result classifies how a request ended.
type Result string

const (
	ResultClaimed          Result = "claimed"
	ResultUnchanged        Result = "unchanged"
	ResultVacated          Result = "vacated"
	ResultRejectedOccupied Result = "rejected_occupied"
	ResultRejectedUser     Result = "rejected_unknown_user"
	ResultRejectedSeat     Result = "rejected_unknown_seat"
	ResultFailed           Result = "failed"
)

// Claim is the occupancy change produced by a successful request.
type Claim struct {
	UserID         string    `json:"user_id"`
	SeatID         string    `json:"seat_id,omitempty"`          // empty after a vacate
	PreviousSeatID string    `json:"previous_seat_id,omitempty"` // released by this request
	ZoneID         string    `json:"zone_id,omitempty"`
	Changed        bool      `json:"changed"`
	At             time.Time `json:"at"`
}

// Outcome is reported to recorders for every request, successful or not.
type Outcome struct {
	Action         Action
	UserID         string
	SeatID         string
	PreviousSeatID string
	Result         Result
	Err            error
	At             time.Time
}

// Recorder receives reservation outcomes after the critical section has
// been released. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordOutcome(ctx context.Context, o Outcome)
}

// SeatStore is the presence store surface the machine depends on.
type SeatStore interface {
	Snapshot() *presence.Snapshot
	SetSeat(ctx context.Context, userID, seatID string) (presence.UserPresence, error)
}

// SeatCatalog resolves seat IDs.
type SeatCatalog interface {
	GetSeat(id string) (space.Seat, error)
}

// Logger defines the logging interface used by the Machine.
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
