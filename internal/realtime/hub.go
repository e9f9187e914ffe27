// Package realtime pushes document updates to connected clients over
// WebSocket. Each user has an independent set of connections; a broadcast
// for one user never reaches another.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agusantonetti/smartmoney/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	sendBufferSize = 8
)

// Hub tracks WebSocket connections grouped by user.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn

	// mu orders sends against close: remove closes the send channel while
	// Broadcast may be sending from another goroutine, and a send on a
	// closed channel panics even under select/default.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// trySend queues a message without blocking. It reports false when the
// client is already closed or its buffer is full.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is same-origin in production and origin checks are
			// handled by the CORS middleware for the REST surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[string]map[*client]struct{}),
	}
}

// ServeWS upgrades the request and registers the connection under userID.
// The first message sent is the current document so a client can render
// without a separate fetch.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string, current *store.Document) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	if current != nil {
		if raw, err := json.Marshal(current); err == nil {
			c.trySend(raw)
		}
	}

	go h.writePump(userID, c)
	go h.readPump(userID, c)
}

// Broadcast sends the document to every connection of userID. Slow clients
// are disconnected rather than allowed to stall the rest.
func (h *Hub) Broadcast(userID string, doc *store.Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Document encode failed")
		return
	}

	h.mu.RLock()
	conns := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.trySend(raw) {
			h.remove(userID, c)
		}
	}
}

func (h *Hub) writePump(userID string, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(userID, c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(userID, c)
				return
			}
		}
	}
}

// readPump drains inbound frames. Clients never send application data; the
// read loop exists to process control frames and detect closure.
func (h *Hub) readPump(userID string, c *client) {
	defer h.remove(userID, c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	set := h.clients[userID]
	if _, ok := set[c]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}

// ClientCount reports the number of open connections for a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
