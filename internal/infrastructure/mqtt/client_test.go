package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
)

// testConfig returns a broker config pointing at a local Mosquitto.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "cafecore-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"PresenceEvent", Topics{}.PresenceEvent("user-1"), "cafecore/presence/user-1"},
		{"SeatCommand", Topics{}.SeatCommand("user-1"), "cafecore/seat/command/user-1"},
		{"AllPresenceEvents", Topics{}.AllPresenceEvents(), "cafecore/presence/+"},
		{"AllSeatCommands", Topics{}.AllSeatCommands(), "cafecore/seat/command/+"},
		{"ZoneOccupancy", Topics{}.ZoneOccupancy("bar"), "cafecore/core/zone/bar/occupancy"},
		{"SeatState", Topics{}.SeatState("bar-1"), "cafecore/core/seat/bar-1/state"},
		{"SeatResult", Topics{}.SeatResult("user-1"), "cafecore/core/seat/result/user-1"},
		{"AllZoneOccupancy", Topics{}.AllZoneOccupancy(), "cafecore/core/zone/+/occupancy"},
		{"SystemStatus", Topics{}.SystemStatus(), "cafecore/system/status"},
		{"AllTopics", Topics{}.AllTopics(), "cafecore/#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLastSegment(t *testing.T) {
	tests := map[string]string{
		"cafecore/presence/user-9":     "user-9",
		"cafecore/seat/command/user-3": "user-3",
		"plain":                        "plain",
		"trailing/":                    "",
	}
	for topic, want := range tests {
		if got := LastSegment(topic); got != want {
			t.Errorf("LastSegment(%q) = %q, want %q", topic, got, want)
		}
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "core", Password: "secret"}

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "cafecore-test" || opts.Username != "core" || opts.Password != "secret" {
		t.Errorf("identity = %q/%q/%q", opts.ClientID, opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
	if !opts.WillEnabled || opts.WillTopic != "cafecore/system/status" || !opts.WillRetained {
		t.Errorf("LWT = %v %q retained=%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}

	var will statusMessage
	if err := json.Unmarshal(opts.WillPayload, &will); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if will.Status != "offline" || will.Reason != "unexpected_disconnect" {
		t.Errorf("will = %+v", will)
	}

	cfg.Broker.TLS = true
	tlsOpts := buildClientOptions(cfg)
	if tlsOpts.Servers[0].Scheme != "ssl" || tlsOpts.TLSConfig == nil {
		t.Error("TLS config should switch to ssl:// with a tls.Config")
	}
}

func TestStatusPayload(t *testing.T) {
	var msg statusMessage
	if err := json.Unmarshal(statusPayload("core-1", "online", ""), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Status != "online" || msg.ClientID != "core-1" || msg.Reason != "" {
		t.Errorf("payload = %+v", msg)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", msg.Timestamp, err)
	}
}

func TestUnconnectedClient(t *testing.T) {
	c := &Client{subscriptions: map[string]subscription{}}
	noop := func(string, []byte) error { return nil }

	if c.IsConnected() {
		t.Error("zero client should not be connected")
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"publish empty topic", c.Publish("", nil, 0, false), ErrInvalidTopic},
		{"publish bad qos", c.Publish("t", nil, 3, false), ErrInvalidQoS},
		{"publish oversized", c.Publish("t", make([]byte, maxPayloadSize+1), 0, false), ErrPublishFailed},
		{"publish disconnected", c.Publish("t", []byte("x"), 1, false), ErrNotConnected},
		{"publish json unencodable", c.PublishJSON("t", func() {}, false), ErrPublishFailed},
		{"subscribe empty topic", c.Subscribe("", 0, noop), ErrInvalidTopic},
		{"subscribe bad qos", c.Subscribe("t", 5, noop), ErrInvalidQoS},
		{"subscribe nil handler", c.Subscribe("t", 0, nil), ErrSubscribeFailed},
		{"subscribe disconnected", c.Subscribe("t", 0, noop), ErrNotConnected},
		{"unsubscribe empty", c.Unsubscribe(""), ErrInvalidTopic},
		{"unsubscribe disconnected", c.Unsubscribe("t"), ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}

	if c.SubscriptionCount() != 0 || c.HasSubscription("t") {
		t.Error("failed subscribes must not be tracked")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) = %v", err)
	}

	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1 // nothing listens here

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

type recordingLogger struct {
	errors, warns int
}

func (l *recordingLogger) Error(string, ...any) { l.errors++ }
func (l *recordingLogger) Warn(string, ...any)  { l.warns++ }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestWrapHandler(t *testing.T) {
	c := &Client{}
	logger := &recordingLogger{}
	c.SetLogger(logger)

	msg := fakeMessage{topic: "cafecore/presence/u1", payload: []byte("{}")}

	var gotTopic string
	c.wrapHandler(func(topic string, _ []byte) error {
		gotTopic = topic
		return nil
	})(nil, msg)
	if gotTopic != msg.topic {
		t.Errorf("handler topic = %q", gotTopic)
	}

	c.wrapHandler(func(string, []byte) error { return errors.New("bad event") })(nil, msg)
	if logger.warns != 1 {
		t.Errorf("warns = %d, want 1", logger.warns)
	}

	c.wrapHandler(func(string, []byte) error { panic("boom") })(nil, msg)
	if logger.errors != 1 {
		t.Errorf("errors = %d, want 1 after panic", logger.errors)
	}
}
