//go:build integration

package mqtt

import (
	"context"
	"testing"
	"time"
)

// Integration tests need a broker at 127.0.0.1:1883.
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

func TestIntegration_PublishSubscribeRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "cafecore-int-roundtrip"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan string, 1)
	if err := client.Subscribe(Topics{}.AllPresenceEvents(), 1, func(topic string, payload []byte) error {
		received <- LastSegment(topic) + ":" + string(payload)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(Topics{}.AllPresenceEvents()) {
		t.Error("subscription not tracked")
	}

	if err := client.Publish(Topics{}.PresenceEvent("user-7"), []byte(`{"type":"heartbeat"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != `user-7:{"type":"heartbeat"}` {
			t.Errorf("received %q", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	if err := client.Unsubscribe(Topics{}.AllPresenceEvents()); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
}

func TestIntegration_RetainedOccupancy(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "cafecore-int-retained"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer pub.Close()

	topic := Topics{}.ZoneOccupancy("it-zone")
	if err := pub.PublishJSON(topic, map[string]int{"occupied": 2, "capacity": 4}, true); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	cfg.Broker.ClientID = "cafecore-int-retained-sub"
	sub, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer sub.Close()

	got := make(chan []byte, 1)
	if err := sub.Subscribe(topic, 1, func(_ string, p []byte) error {
		got <- p
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if string(p) != `{"capacity":4,"occupied":2}` {
			t.Errorf("retained payload = %s", p)
		}
	case <-ctx.Done():
		t.Fatal("no retained message delivered")
	}

	// clear the retained state
	_ = pub.Publish(topic, nil, 1, true)
}
