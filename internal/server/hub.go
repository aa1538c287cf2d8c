package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/spritekit/internal/service"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// Hub fans service events out to websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	messages chan service.Event
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub creates a hub buffering up to backlog undelivered events.
func NewHub(backlog int, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		messages: make(chan service.Event, max(1, backlog)),
		logger:   logger,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Publish queues an event for broadcast. When the backlog is full the event
// is dropped.
func (h *Hub) Publish(e service.Event) {
	select {
	case h.messages <- e:
	default:
		h.logger.Warn("event dropped, websocket backlog full", "type", e.Type)
	}
}

// Run broadcasts queued events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-h.messages:
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			h.broadcast(payload)
		}
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu *sync.Mutex
}

// broadcast writes payload to a snapshot of the clients, so a slow client
// delays only the broadcast and never holds h.mu.
func (h *Hub) broadcast(payload []byte) {
	for _, c := range h.snapshot() {
		if err := writeMessage(c.conn, c.writeMu, websocket.TextMessage, payload); err != nil {
			h.remove(c.conn)
		}
	}
}

func (h *Hub) snapshot() []client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]client, 0, len(h.clients))
	for conn, writeMu := range h.clients {
		out = append(out, client{conn: conn, writeMu: writeMu})
	}
	return out
}

// ServeHTTP upgrades the request and keeps the connection alive with pings
// until the client goes away. Incoming messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

func writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
