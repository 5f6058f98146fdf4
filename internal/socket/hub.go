// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/yard"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	userID string
	conn   Conn
	send   chan []byte
}

// Hub keeps every open yard feed connection and fans events out to them.
type Hub struct {
	// clients is keyed by connection id: one user may have several tabs open.
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register adds a connection and starts its writer.
func (h *Hub) Register(connID, userID string, conn Conn) {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[connID] = c
	h.mu.Unlock()

	go c.writePump()
	logger.Log.WithFields(logrus.Fields{"conn": connID, "user": userID}).Debug("websocket client registered")
}

// Unregister removes a connection and stops its writer.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(c.send)
		logger.Log.WithField("conn", connID).Debug("websocket client unregistered")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues message for every client. A client whose buffer is full
// is skipped rather than blocking the writer that caused the event.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		select {
		case c.send <- message:
		default:
			logger.Log.WithField("conn", id).Warn("websocket client too slow, message dropped")
		}
	}
}

// Notify implements yard.Notifier.
func (h *Hub) Notify(e yard.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		logger.Log.WithError(err).Error("could not encode yard event")
		return
	}
	h.Broadcast(message)
}

func (c *client) writePump() {
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Log.WithError(err).WithField("user", c.userID).Debug("websocket write failed")
			_ = c.conn.Close()
			// drain so Broadcast never sees a stuck buffer
			for range c.send {
			}
			return
		}
	}
}
