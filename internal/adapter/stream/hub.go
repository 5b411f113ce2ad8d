// Package stream pushes committed ledger events to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/assetvault/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 64
)

// Message is the JSON frame sent to stream clients.
type Message struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ClientGauge reports the number of connected clients.
type ClientGauge interface {
	SetStreamClients(n int)
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	types map[string]bool
}

func (c *client) wants(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

type frame struct {
	eventType string
	data      []byte
}

// Hub fans committed events out to connected websocket clients.
// A client that cannot keep up is disconnected.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan frame
	done       chan struct{}
	count      atomic.Int64
	gauge      ClientGauge
	logger     zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewHub creates a new hub. gauge may be nil.
func NewHub(logger zerolog.Logger, gauge ClientGauge) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan frame, 256),
		done:       make(chan struct{}),
		gauge:      gauge,
		logger:     logger.With().Str("component", "stream").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Run owns the client set until ctx is cancelled. Must be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()
			h.logger.Debug().Int("total", len(h.clients)).Msg("stream client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case f := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(f.eventType) {
					continue
				}
				select {
				case c.send <- f.data:
				default:
					h.logger.Warn().Msg("dropping slow stream client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	if h.gauge != nil {
		h.gauge.SetStreamClients(len(h.clients))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish queues event for broadcast. It never blocks the caller; when the
// broadcast buffer is full the event is dropped for stream clients only.
func (h *Hub) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	data, err := json.Marshal(Message{
		ID:            event.ID,
		Type:          event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- frame{eventType: event.EventType, data: data}:
	default:
		h.logger.Warn().Str("event_id", event.ID).Msg("stream buffer full, event not streamed")
	}
	return nil
}

// ServeHTTP upgrades the request and streams events to the client.
// The optional "types" query parameter is a comma separated event type filter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		types: parseTypes(r.URL.Query().Get("types")),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump detects disconnects; clients never send anything meaningful.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func parseTypes(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	types := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}
