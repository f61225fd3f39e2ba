package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/cafe-core/internal/infrastructure/mqtt"
)

const mqttHandleTimeout = 10 * time.Second

// mqttClient is the part of *mqtt.Client the subscription needs.
type mqttClient interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTSource feeds presence and seat command topics into a Dispatcher and
// answers seat commands on cafecore/core/seat/result/{user}.
type MQTTSource struct {
	client mqttClient
	d      *Dispatcher
	qos    byte
	topics mqtt.Topics
	ctx    context.Context //nolint:containedctx // paho handlers carry no context
}

// NewMQTTSource binds d to client. Handlers run with ctx as parent.
func NewMQTTSource(ctx context.Context, client mqttClient, d *Dispatcher, qos byte) *MQTTSource {
	return &MQTTSource{client: client, d: d, qos: qos, ctx: ctx}
}

// Subscribe registers both wildcard subscriptions.
func (s *MQTTSource) Subscribe() error {
	if err := s.client.Subscribe(s.topics.AllPresenceEvents(), s.qos, s.handle); err != nil {
		return fmt.Errorf("subscribing presence events: %w", err)
	}
	if err := s.client.Subscribe(s.topics.AllSeatCommands(), s.qos, s.handle); err != nil {
		return fmt.Errorf("subscribing seat commands: %w", err)
	}
	return nil
}

// handle decodes one message. The topic's last segment is the user; a
// payload naming a different user is rejected.
func (s *MQTTSource) handle(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(s.ctx, mqttHandleTimeout)
	defer cancel()

	ev, err := Decode(payload)
	if err != nil {
		return err
	}

	topicUser := mqtt.LastSegment(topic)
	switch {
	case ev.UserID == "":
		ev.UserID = topicUser
	case ev.UserID != topicUser:
		return fmt.Errorf("%w: topic %s, payload %s", ErrUserMismatch, topicUser, ev.UserID)
	}

	res, err := s.d.Apply(ctx, ev)
	if ev.IsSeatCommand() {
		if pubErr := s.client.PublishJSON(s.topics.SeatResult(ev.UserID), res, false); pubErr != nil {
			s.d.logger.Warn("publishing seat result failed", "user_id", ev.UserID, "error", pubErr)
		}
	}
	return err
}
