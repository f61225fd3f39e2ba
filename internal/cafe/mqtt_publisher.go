package cafe

import (
	"context"
	"time"

	"github.com/nerrad567/cafe-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/reservation"
)

// jsonPublisher is the part of *mqtt.Client the publisher needs.
type jsonPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTPublisher mirrors occupancy and seat state onto retained MQTT topics
// so late subscribers see the current value immediately.
type MQTTPublisher struct {
	client jsonPublisher
	topics mqtt.Topics
}

// NewMQTTPublisher wraps a connected MQTT client.
func NewMQTTPublisher(client jsonPublisher) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

type seatStateMessage struct {
	SeatID string            `json:"seat_id"`
	State  reservation.State `json:"state"`
	UserID string            `json:"user_id,omitempty"`
	At     time.Time         `json:"at"`
}

// PublishOccupancy writes cafecore/core/zone/{id}/occupancy.
func (p *MQTTPublisher) PublishOccupancy(_ context.Context, occ Occupancy) error {
	return p.client.PublishJSON(p.topics.ZoneOccupancy(occ.ZoneID), occ, true)
}

// PublishChange writes the state of every seat the change touched.
// Joins and moves carry no seat transition and publish nothing.
func (p *MQTTPublisher) PublishChange(_ context.Context, c presence.Change) error {
	switch c.Kind {
	case presence.ChangeSeat:
		if c.PreviousSeatID != "" {
			if err := p.seat(c.PreviousSeatID, reservation.StateAvailable, "", c.At); err != nil {
				return err
			}
		}
		if c.SeatID != "" {
			return p.seat(c.SeatID, reservation.StateOccupied, c.UserID, c.At)
		}
	case presence.ChangeLeave, presence.ChangeExpire:
		if c.SeatID != "" {
			return p.seat(c.SeatID, reservation.StateAvailable, "", c.At)
		}
	}
	return nil
}

func (p *MQTTPublisher) seat(seatID string, state reservation.State, userID string, at time.Time) error {
	return p.client.PublishJSON(p.topics.SeatState(seatID), seatStateMessage{
		SeatID: seatID,
		State:  state,
		UserID: userID,
		At:     at,
	}, true)
}
