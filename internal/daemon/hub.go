package daemon

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harun/atrium/internal/observability"
)

// EventMessage is the envelope broadcast to websocket clients.
type EventMessage struct {
	Type      string      `json:"type"`
	Event     string      `json:"event"`
	Seq       int64       `json:"seq"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// client is one connected websocket subscriber. Writes are serialized per
// connection.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// EventHub tracks connected websocket clients and broadcasts deployment
// lifecycle events to all of them.
type EventHub struct {
	logger  zerolog.Logger
	mu      sync.RWMutex
	clients map[string]*client
	seq     uint64
}

// NewEventHub creates an empty hub.
func NewEventHub(logger zerolog.Logger) *EventHub {
	return &EventHub{
		logger:  logger.With().Str("component", "event-hub").Logger(),
		clients: make(map[string]*client),
	}
}

// Add registers a connected client under id.
func (h *EventHub) Add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[id] = &client{id: id, conn: conn}
	count := len(h.clients)
	h.mu.Unlock()

	observability.SetWebsocketClients(count)
	h.logger.Debug().Str("client_id", id).Int("clients", count).Msg("Client connected")
}

// Remove drops a client from the hub. The connection itself is closed by the
// caller.
func (h *EventHub) Remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	count := len(h.clients)
	h.mu.Unlock()

	observability.SetWebsocketClients(count)
	h.logger.Debug().Str("client_id", id).Int("clients", count).Msg("Client disconnected")
}

// Count returns the number of connected clients.
func (h *EventHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every connected client.
func (h *EventHub) Broadcast(event string, data interface{}) {
	msg := EventMessage{
		Type:      "event",
		Event:     event,
		Seq:       int64(atomic.AddUint64(&h.seq, 1)),
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	successCount := 0
	failureCount := 0
	for _, c := range clients {
		if err := c.write(jsonData); err != nil {
			h.logger.Warn().Err(err).Str("client_id", c.id).Str("event", event).Msg("Failed to broadcast to client")
			failureCount++
		} else {
			successCount++
		}
	}

	h.logger.Debug().
		Str("event", event).
		Int64("seq", msg.Seq).
		Int("success", successCount).
		Int("failed", failureCount).
		Msg("Event broadcast complete")
}

// CloseAll closes every client connection and empties the hub.
func (h *EventHub) CloseAll() {
	h.mu.Lock()
	for id, c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, id)
	}
	h.mu.Unlock()

	observability.SetWebsocketClients(0)
}
