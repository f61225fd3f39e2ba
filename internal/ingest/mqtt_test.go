package ingest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/cafe-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/cafe-core/internal/reservation"
)

type fakeMQTT struct {
	handlers  map[string]mqtt.MessageHandler
	published map[string]any
	subErr    error
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{handlers: map[string]mqtt.MessageHandler{}, published: map[string]any{}}
}

func (f *fakeMQTT) Subscribe(topic string, _ byte, h mqtt.MessageHandler) error {
	if f.subErr != nil {
		return f.subErr
	}
	f.handlers[topic] = h
	return nil
}

func (f *fakeMQTT) PublishJSON(topic string, v any, _ bool) error {
	f.published[topic] = v
	return nil
}

func TestMQTTSource_Subscribe(t *testing.T) {
	client := newFakeMQTT()
	src := NewMQTTSource(context.Background(), client, NewDispatcher(&fakeService{}), 1)
	if err := src.Subscribe(); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	var topics []string
	for topic := range client.handlers {
		topics = append(topics, topic)
	}
	for _, want := range []string{"cafecore/presence/+", "cafecore/seat/command/+"} {
		if _, ok := client.handlers[want]; !ok {
			t.Errorf("missing subscription %s (have %v)", want, topics)
		}
	}

	client.subErr = errors.New("broker down")
	if err := src.Subscribe(); err == nil {
		t.Error("Subscribe() should fail when the client does")
	}
}

func TestMQTTSource_Handle(t *testing.T) {
	svc := &fakeService{}
	client := newFakeMQTT()
	src := NewMQTTSource(context.Background(), client, NewDispatcher(svc), 1)

	// User taken from the topic when the payload omits it.
	if err := src.handle("cafecore/presence/alice", []byte(`{"type":"heartbeat"}`)); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	// Mismatched user is refused before reaching the service.
	err := src.handle("cafecore/presence/alice", []byte(`{"type":"leave","user_id":"mallory"}`))
	if !errors.Is(err, ErrUserMismatch) {
		t.Errorf("handle() error = %v, want ErrUserMismatch", err)
	}

	if err := src.handle("cafecore/seat/command/alice", []byte(`{"type":"claim_seat","seat_id":"q1"}`)); err != nil {
		t.Fatalf("claim handle() error = %v", err)
	}

	if want := []string{"heartbeat alice", "claim alice q1"}; !reflect.DeepEqual(svc.calls, want) {
		t.Errorf("calls = %v, want %v", svc.calls, want)
	}

	res, ok := client.published["cafecore/core/seat/result/alice"].(Result)
	if !ok {
		t.Fatalf("no seat result published: %v", client.published)
	}
	if !res.OK || res.Claim == nil || res.Claim.SeatID != "q1" {
		t.Errorf("seat result = %+v", res)
	}
	if len(client.published) != 1 {
		t.Errorf("published %d topics, want only the seat result", len(client.published))
	}
}

func TestMQTTSource_RejectedClaimPublishesResult(t *testing.T) {
	svc := &fakeService{err: reservation.ErrSeatOccupied}
	client := newFakeMQTT()
	src := NewMQTTSource(context.Background(), client, NewDispatcher(svc), 0)

	err := src.handle("cafecore/seat/command/bob", []byte(`{"type":"claim_seat","seat_id":"q1"}`))
	if !errors.Is(err, reservation.ErrSeatOccupied) {
		t.Fatalf("handle() error = %v, want ErrSeatOccupied", err)
	}
	res := client.published["cafecore/core/seat/result/bob"].(Result)
	if res.OK || res.Error == "" {
		t.Errorf("seat result = %+v, want failure", res)
	}
}
