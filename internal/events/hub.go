package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexdziarn/fool.fun/internal/domain"
)

// envelope is the wire format of the event stream.
type envelope struct {
	Type    string      `json:"type"` // INITIALIZE | STEAL | TRANSFER
	Payload interface{} `json:"payload"`
}

// SubscriberGauge tracks the live subscriber count. Satisfied by
// prometheus.Gauge.
type SubscriberGauge interface {
	Inc()
	Dec()
}

// HubConfig configures WebSocket hub behavior.
type HubConfig struct {
	// WriteTimeout is timeout for writing a message to a subscriber.
	WriteTimeout time.Duration
	// SendBuffer is the per-subscriber outbound queue length. A
	// subscriber that falls this far behind is dropped.
	SendBuffer int
	// Gauge, when set, mirrors the subscriber count.
	Gauge SubscriberGauge
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout: 10 * time.Second,
		SendBuffer:   64,
	}
}

// Hub broadcasts engine events to WebSocket subscribers. Delivery is
// best-effort; slow subscribers are disconnected rather than blocking
// the broadcast path.
type Hub struct {
	config   HubConfig
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a WebSocket broadcast hub.
func NewHub(config HubConfig, logger *log.Logger) *Hub {
	return &Hub{
		config: config,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

var _ Sink = (*Hub)(nil)

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	if h.config.Gauge != nil {
		h.config.Gauge.Inc()
	}

	go h.writeLoop(sub)
	h.readLoop(sub)
}

// writeLoop drains the subscriber queue onto the connection.
func (h *Hub) writeLoop(sub *subscriber) {
	for msg := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(sub)
			return
		}
	}
	// Queue closed by drop; finish the close handshake.
	_ = sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = sub.conn.Close()
}

// readLoop discards inbound messages and detects disconnects.
func (h *Hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

// drop removes a subscriber and closes its queue exactly once.
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.send)
	if h.config.Gauge != nil {
		h.config.Gauge.Dec()
	}
}

// broadcast queues a message for every subscriber, dropping any whose
// queue is full.
func (h *Hub) broadcast(eventType string, payload interface{}) {
	msg, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Printf("marshal %s event: %v", eventType, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			delete(h.subs, sub)
			close(sub.send)
			if h.config.Gauge != nil {
				h.config.Gauge.Dec()
			}
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) EmitInitialize(e domain.InitializeEvent) { h.broadcast("INITIALIZE", e) }
func (h *Hub) EmitSteal(e domain.StealEvent)           { h.broadcast("STEAL", e) }
func (h *Hub) EmitTransfer(e domain.TransferEvent)     { h.broadcast("TRANSFER", e) }
