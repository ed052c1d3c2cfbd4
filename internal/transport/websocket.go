// Package transport pushes job state changes to interested subscribers.
// The WebSocket hub is the push half of the notification contract; the
// HTTP status endpoint remains the polling half.
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"voiceforge/internal/log"
)

// Hub broadcasts job events to every connected WebSocket client. It is
// mounted as an http.Handler (typically at /ws). Slow clients never
// block publishers: the broadcast channel drops on overflow.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	closeOnce sync.Once
}

// NewHub creates a hub and starts its broadcast loop. bufferSize bounds
// the number of undelivered events held before dropping.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // origin policy belongs to the proxy in front
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, bufferSize),
	}
	go h.run()
	return h
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("transport: websocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientsMu.Unlock()
	log.Debugf("transport: client connected, total %d", total)

	// Reads are only used to notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// Publish queues an event for broadcast. Never blocks; events are
// dropped when the buffer is full.
func (h *Hub) Publish(event any) {
	select {
	case h.broadcast <- event:
	default:
		log.Debugf("transport: broadcast buffer full, dropping event")
	}
}

func (h *Hub) run() {
	for event := range h.broadcast {
		h.clientsMu.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(event); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMu.Unlock()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	total := len(h.clients)
	h.clientsMu.Unlock()
	log.Debugf("transport: client disconnected, total %d", total)
}

// Close disconnects all clients and stops the broadcast loop.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.broadcast)
		h.clientsMu.Lock()
		for client := range h.clients {
			client.Close()
		}
		h.clients = make(map[*websocket.Conn]bool)
		h.clientsMu.Unlock()
	})
	return nil
}
