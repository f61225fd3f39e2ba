package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/cafe-core/internal/cafe"
	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
	"github.com/nerrad567/cafe-core/internal/infrastructure/logging"
	"github.com/nerrad567/cafe-core/internal/presence"
)

// Broadcast channels a client may subscribe to.
const (
	ChannelOccupancy = "seat.occupancy_changed"
	ChannelPresence  = "presence.changed"
)

var knownChannels = map[string]struct{}{
	ChannelOccupancy: {},
	ChannelPresence:  {},
}

// Hub tracks WebSocket clients and delivers café events to the ones whose
// subscription matches. It implements cafe.Publisher.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

var _ cafe.Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{cfg: cfg, logger: logger, clients: make(map[*wsClient]struct{})}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
	}
}

// PublishOccupancy delivers occ to occupancy subscribers whose zone filter
// is empty or names occ.ZoneID.
func (h *Hub) PublishOccupancy(_ context.Context, occ cafe.Occupancy) error {
	h.broadcast(ChannelOccupancy, occ.ZoneID, occ)
	return nil
}

// PublishChange delivers c to every presence subscriber.
func (h *Hub) PublishChange(_ context.Context, c presence.Change) error {
	h.broadcast(ChannelPresence, "", c)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "user_id", c.userID, "role", c.role, "clients", n)
}

// remove drops c and reports whether it was still registered. Only the
// caller that gets true may close c's outbox.
func (h *Hub) remove(c *wsClient) bool {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("websocket client disconnected", "user_id", c.userID)
	}
	return ok
}

// broadcast encodes once and hands the frame to matching clients. zoneID
// is empty for events that are not zone-scoped.
func (h *Hub) broadcast(channel, zoneID string, payload any) {
	frame, err := json.Marshal(wsMessage{
		Type:      msgEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("encoding websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.wants(channel, zoneID) && c.enqueue(frame) {
			delivered++
		}
	}
	if delivered > 0 {
		h.logger.Debug("websocket event delivered", "channel", channel, "zone_id", zoneID, "clients", delivered)
	}
}
