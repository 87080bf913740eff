// websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Event is the envelope pushed to clients.
type Event struct {
	Type      string      `json:"type"` // "welcome" or "audit"
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type message struct {
	owner string
	data  []byte
}

// Hub fans audit events out to connected clients. Admins get everything, other
// users only events whose owner is themselves.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.Logger
}

type Client struct {
	userID string
	admin  bool
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.log.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.admin && (msg.owner == "" || msg.owner != client.userID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish queues an audit entry for delivery. It never blocks the caller.
func (h *Hub) Publish(entry *models.AuditLog, owner string) {
	data, err := json.Marshal(Event{Type: "audit", Data: entry, Timestamp: time.Now().UTC()})
	if err != nil {
		h.log.Warn("failed to marshal audit event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{owner: owner, data: data}:
	case <-h.done:
	default:
		h.log.Warn("websocket broadcast queue full, dropping event", zap.String("action", entry.Action))
	}
}

// Serve attaches an upgraded connection for the given session and returns
// once the client is registered.
func (h *Hub) Serve(conn *websocket.Conn, session models.Session) {
	client := &Client{
		userID: session.ID,
		admin:  session.IsAdmin(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}

	welcome, _ := json.Marshal(Event{
		Type: "welcome",
		Data: map[string]interface{}{
			"message": "Connected to audit log stream",
			"userId":  session.ID,
			"role":    session.Role,
		},
		Timestamp: time.Now().UTC(),
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.leave()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
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

// writePump is the only goroutine that writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
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
