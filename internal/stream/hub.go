// Package stream pushes receiver status snapshots to WebSocket subscribers.
package stream

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	writeDeadline  = 10 * time.Second
	sendBufferSize = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans status events out to every connected subscriber. Slow clients
// whose send buffer fills are dropped rather than allowed to stall the rest.
type Hub struct {
	logger *log.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Register adopts an upgraded connection and services it until it drops.
func (hub *Hub) Register(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	count := len(hub.clients)
	hub.mu.Unlock()

	hub.logger.Printf("Stream client connected (%d total)", count)

	go hub.writeLoop(c)
	go hub.readLoop(c)
}

// Broadcast sends an event to every connected client.
func (hub *Hub) Broadcast(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		hub.logger.Printf("Failed to encode stream event: %v", err)
		return
	}

	hub.mu.RLock()
	clients := make([]*client, 0, len(hub.clients))
	for c := range hub.clients {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			hub.unregister(c)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (hub *Hub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Close disconnects every client.
func (hub *Hub) Close() {
	hub.mu.Lock()
	clients := make([]*client, 0, len(hub.clients))
	for c := range hub.clients {
		clients = append(clients, c)
	}
	hub.mu.Unlock()

	for _, c := range clients {
		hub.unregister(c)
	}
}

func (hub *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				hub.unregister(c)
				return
			}
		}
	}
}

func (hub *Hub) readLoop(c *client) {
	// Subscribers never send application messages; the read loop exists to
	// observe close frames and pong responses.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			hub.unregister(c)
			return
		}
	}
}

func (hub *Hub) unregister(c *client) {
	hub.mu.Lock()
	_, registered := hub.clients[c]
	if registered {
		delete(hub.clients, c)
		close(c.send)
	}
	count := len(hub.clients)
	hub.mu.Unlock()

	if registered {
		c.conn.Close()
		hub.logger.Printf("Stream client disconnected (%d total)", count)
	}
}
