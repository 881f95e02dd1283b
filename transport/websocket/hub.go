package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/snake-game/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed for one client action to be applied.
	inputTimeout = 5 * time.Second

	// Pending broadcasts before new ones are dropped.
	broadcastBuffer = 1024
)

// Events sent to clients
const (
	EventStateUpdate   = "state_update"
	EventError         = "error"
	EventSessionClosed = "session_closed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents an outbound WebSocket message
type Message struct {
	SessionID string           `json:"session_id"`
	Event     string           `json:"event"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
	Data      interface{}      `json:"data,omitempty"`

	// disconnect the session's clients once the message is sent
	closeSession bool
}

// InputMessage is an action sent by a client
type InputMessage struct {
	Action    string `json:"action"` // "direction", "start", "reset"
	Direction string `json:"direction,omitempty"`
}

// InputHandler applies client actions to a session
type InputHandler interface {
	HandleInput(ctx context.Context, sessionID string, input InputMessage) error
}

// InputHandlerFunc adapts a function to the InputHandler interface
type InputHandlerFunc func(ctx context.Context, sessionID string, input InputMessage) error

// HandleInput calls f
func (f InputHandlerFunc) HandleInput(ctx context.Context, sessionID string, input InputMessage) error {
	return f(ctx, sessionID, input)
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for session clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	input InputHandler
}

// NewHub creates a new WebSocket hub. input may be nil for a broadcast-only hub.
func NewHub(input InputHandler) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		input:      input,
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the client to a session.
// initial, when set, is sent before any broadcast.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, Event: EventStateUpdate, Snapshot: initial}); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastSnapshot queues a state update for all clients in a session.
// It never blocks; updates are dropped while the hub is saturated.
func (h *Hub) BroadcastSnapshot(sessionID string, snapshot engine.Snapshot) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     EventStateUpdate,
		Snapshot:  &snapshot,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// CloseSession tells the session's clients it is gone and disconnects them.
// Messages queued before it are still delivered.
func (h *Hub) CloseSession(sessionID string) {
	message := &Message{
		SessionID:    sessionID,
		Event:        EventSessionClosed,
		closeSession: true,
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s for session %s", message.Event, message.SessionID)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Printf("Client unregistered from session %s (remaining clients: %d)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
			if message.closeSession {
				h.unregisterClient(client)
			}
		default:
			// Client's send channel is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump reads client actions and hands them to the input handler
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handleInput(data)
	}
}

func (c *Client) handleInput(data []byte) {
	if c.hub.input == nil {
		return
	}

	var input InputMessage
	if err := json.Unmarshal(data, &input); err != nil {
		c.hub.BroadcastEvent(c.sessionID, EventError, "invalid message: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inputTimeout)
	defer cancel()

	if err := c.hub.input.HandleInput(ctx, c.sessionID, input); err != nil {
		log.Printf("WebSocket input %q for session %s failed: %v", input.Action, c.sessionID, err)
		c.hub.BroadcastEvent(c.sessionID, EventError, err.Error())
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
