package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/cafe-core/internal/auth"
	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
)

// Message types on the socket.
const (
	msgSubscribe   = "subscribe"
	msgUnsubscribe = "unsubscribe"
	msgPing        = "ping"
	msgPong        = "pong"
	msgEvent       = "event"
	msgAck         = "ack"
	msgError       = "error"

	outboxSize = 256
)

// wsMessage is the envelope for every frame in both directions.
type wsMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// subscribeRequest is the payload of subscribe and unsubscribe. Zones
// narrows occupancy events; an empty list means every zone.
type subscribeRequest struct {
	Channels []string `json:"channels"`
	Zones    []string `json:"zones,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers on the café network connect from the panel origin; the
	// ticket is the access control.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsClient struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	role   auth.Role

	outbox    chan []byte
	closeOnce sync.Once

	mu       sync.RWMutex
	channels map[string]struct{}
	zones    map[string]struct{}
}

// handleWebSocket upgrades a request carrying a valid single-use ticket
// from POST /auth/ws-ticket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	entry, ok := s.tickets.redeem(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "user_id", entry.userID, "error", err)
		return
	}

	c := &wsClient{
		hub:      s.hub,
		conn:     conn,
		userID:   entry.userID,
		role:     entry.role,
		outbox:   make(chan []byte, outboxSize),
		channels: make(map[string]struct{}),
		zones:    make(map[string]struct{}),
	}
	s.hub.add(c)

	go c.writeLoop(s.wsCfg)
	go c.readLoop(s.wsCfg)
}

// shutdown closes the outbox once; writeLoop then sends a close frame.
func (c *wsClient) shutdown() {
	c.closeOnce.Do(func() { close(c.outbox) })
}

// enqueue never blocks. A full outbox drops the frame for this client only.
func (c *wsClient) enqueue(frame []byte) (sent bool) {
	defer func() {
		if recover() != nil { // outbox closed concurrently
			sent = false
		}
	}()
	select {
	case c.outbox <- frame:
		return true
	default:
		return false
	}
}

func (c *wsClient) wants(channel, zoneID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.channels[channel]; !ok {
		return false
	}
	if zoneID == "" || len(c.zones) == 0 {
		return true
	}
	_, ok := c.zones[zoneID]
	return ok
}

func (c *wsClient) readLoop(cfg config.WebSocketConfig) {
	defer func() {
		if c.hub.remove(c) {
			c.shutdown()
		}
		c.conn.Close()
	}()

	wait := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(wait)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	if err := extend(); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}
		if err := extend(); err != nil {
			return
		}
		c.dispatch(data)
	}
}

func (c *wsClient) writeLoop(cfg config.WebSocketConfig) {
	ping := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	write := func(kind int, data []byte) error {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case frame, ok := <-c.outbox:
			if !ok {
				//nolint:errcheck // peer may already be gone
				write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := write(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) dispatch(data []byte) {
	var in struct {
		Type    string           `json:"type"`
		ID      string           `json:"id"`
		Payload subscribeRequest `json:"payload"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		c.reply(msgError, "", map[string]string{"message": "invalid JSON message"})
		return
	}

	switch in.Type {
	case msgSubscribe, msgUnsubscribe:
		for _, ch := range in.Payload.Channels {
			if _, ok := knownChannels[ch]; !ok {
				c.reply(msgError, in.ID, map[string]string{"message": "unknown channel: " + ch})
				return
			}
		}
		c.update(in.Type == msgSubscribe, in.Payload)
		c.reply(msgAck, in.ID, in.Payload)
	case msgPing:
		c.reply(msgPong, in.ID, nil)
	default:
		c.reply(msgError, in.ID, map[string]string{"message": "unknown message type: " + in.Type})
	}
}

func (c *wsClient) update(add bool, req subscribeRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range req.Channels {
		if add {
			c.channels[ch] = struct{}{}
		} else {
			delete(c.channels, ch)
		}
	}
	for _, z := range req.Zones {
		if add {
			c.zones[z] = struct{}{}
		} else {
			delete(c.zones, z)
		}
	}
}

func (c *wsClient) reply(kind, id string, payload any) {
	frame, err := json.Marshal(wsMessage{
		Type:      kind,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.enqueue(frame)
}
