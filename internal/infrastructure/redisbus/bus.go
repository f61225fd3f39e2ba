package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
)

const (
	defaultChannel     = "cafecore.presence"
	defaultDialTimeout = 5 * time.Second
)

// Handler processes one payload received on the bus.
type Handler func(ctx context.Context, payload []byte) error

// Logger is the logging surface the bus needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Bus is a Redis pub/sub connection bound to one channel.
type Bus struct {
	rdb     *goredis.Client
	channel string
	logger  Logger
}

// Connect dials Redis and verifies it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*Bus, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	channel := cfg.Channel
	if channel == "" {
		channel = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrConnectionFailed, cfg.Addr, err)
	}

	return &Bus{rdb: rdb, channel: channel, logger: noopLogger{}}, nil
}

// SetLogger replaces the bus logger.
func (b *Bus) SetLogger(l Logger) {
	if l != nil {
		b.logger = l
	}
}

// Channel returns the pub/sub channel name.
func (b *Bus) Channel() string { return b.channel }

// Publish sends a raw payload.
func (b *Bus) Publish(ctx context.Context, payload []byte) error {
	if b == nil || b.rdb == nil {
		return ErrNotConnected
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// PublishJSON marshals v and publishes it.
func (b *Bus) PublishJSON(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redisbus: marshal: %w", err)
	}
	return b.Publish(ctx, raw)
}

// Forward subscribes to the channel and starts a goroutine delivering each
// message to h until ctx is cancelled. It returns once the subscription is
// confirmed by the server.
func (b *Bus) Forward(ctx context.Context, h Handler) error {
	if b == nil || b.rdb == nil {
		return ErrNotConnected
	}
	if h == nil {
		return ErrNilHandler
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redisbus: subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close() //nolint:errcheck // best-effort on shutdown
		b.pump(ctx, sub.Channel(), h)
	}()
	return nil
}

// pump drains msgs until ctx ends or the channel closes. Handler errors are
// logged and do not stop delivery.
func (b *Bus) pump(ctx context.Context, msgs <-chan *goredis.Message, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if m == nil {
				continue
			}
			if err := h(ctx, []byte(m.Payload)); err != nil {
				b.logger.Warn("redis event rejected", "channel", m.Channel, "error", err)
				continue
			}
			b.logger.Debug("redis event handled", "channel", m.Channel)
		}
	}
}

// HealthCheck pings Redis.
func (b *Bus) HealthCheck(ctx context.Context) error {
	if b == nil || b.rdb == nil {
		return ErrNotConnected
	}
	return b.rdb.Ping(ctx).Err()
}

// Close releases the connection pool. Safe on nil.
func (b *Bus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
