package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/cafe-core/internal/reservation"
	"github.com/nerrad567/cafe-core/internal/space"
)

// EventType names an inbound event.
type EventType string

const (
	EventJoin       EventType = "join"
	EventLeave      EventType = "leave"
	EventMove       EventType = "move"
	EventHeartbeat  EventType = "heartbeat"
	EventClaimSeat  EventType = "claim_seat"
	EventVacateSeat EventType = "vacate_seat"
)

// Event is one decoded inbound message.
type Event struct {
	Type      EventType    `json:"type"`
	UserID    string       `json:"user_id"`
	SeatID    string       `json:"seat_id,omitempty"`
	Position  *space.Point `json:"position,omitempty"`
	Timestamp time.Time    `json:"timestamp,omitempty"`
}

// Result is the outcome of applying an Event.
type Result struct {
	Type   EventType          `json:"type"`
	UserID string             `json:"user_id"`
	SeatID string             `json:"seat_id,omitempty"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Claim  *reservation.Claim `json:"claim,omitempty"`
}

// Decode parses and validates a payload.
func Decode(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	ev.UserID = strings.TrimSpace(ev.UserID)
	return ev, nil
}

// Validate checks the fields each type needs.
func (e Event) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	switch e.Type {
	case EventJoin, EventMove:
		if e.Position == nil {
			return fmt.Errorf("%w: %s requires position", ErrInvalidEvent, e.Type)
		}
	case EventClaimSeat:
		if e.SeatID == "" {
			return fmt.Errorf("%w: claim_seat requires seat_id", ErrInvalidEvent)
		}
	case EventLeave, EventHeartbeat, EventVacateSeat:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// IsSeatCommand reports whether the event goes through the reservation machine.
func (e Event) IsSeatCommand() bool {
	return e.Type == EventClaimSeat || e.Type == EventVacateSeat
}
