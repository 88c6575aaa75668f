package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
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

	// Time allowed for a client command to run against the service.
	commandTimeout = 5 * time.Second
)

// Events sent by the hub in addition to engine event types
const (
	EventStateUpdate  = "state_update"
	EventActionResult = "action_result"
	EventError        = "error"
)

// Client actions
const (
	ActionReveal  = "reveal"
	ActionHide    = "hide"
	ActionNewGame = "new_game"
	ActionState   = "state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The page may be served through a tunnel with a different host
		return true
	},
}

// Message represents a server to client WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Command represents a client to server WebSocket message
type Command struct {
	Action     string            `json:"action"`
	Index      int               `json:"index"`
	ConfigID   string            `json:"config_id,omitempty"`
	SymbolType engine.SymbolType `json:"symbol_type,omitempty"`
	Size       int               `json:"size,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Messages for every client of a session
	broadcast chan *Message

	// Replies for a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Executes client commands; nil makes the hub push-only
	service service.GameService

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		direct:     make(chan directMessage, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetService lets clients send reveal, hide and new game commands
func (h *Hub) SetService(svc service.GameService) {
	h.service = svc
}

// Run starts the hub's event loop. It returns after Close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			h.sendDirect(dm)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Close stops the event loop and disconnects every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	select {
	case client.hub.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()

	// New clients get the current board right away
	if h.service != nil {
		if state, err := h.service.GetGameState(r.Context(), sessionID); err == nil {
			h.reply(client, &Message{SessionID: sessionID, GameState: state, Event: EventStateUpdate})
		}
	}
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends an engine event with the state it produced to all
// clients in a session. It implements service.Notifier.
func (h *Hub) BroadcastEvent(sessionID string, event engine.Event, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     string(event.Type),
		Data:      event,
	})
}

// BroadcastCustom sends an arbitrary event to all clients in a session
func (h *Hub) BroadcastCustom(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ClientCount returns the number of clients connected to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// reply queues a message for a single client
func (h *Hub) reply(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal websocket reply")
		return
	}
	select {
	case h.direct <- directMessage{client: client, data: data}:
	case <-h.done:
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Debug().
		Str("session", client.sessionID).
		Int("clients", len(h.sessions[client.sessionID])).
		Msg("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.Debug().
		Str("session", client.sessionID).
		Int("remaining", len(clients)).
		Msg("websocket client unregistered")
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.removeLocked(client)
		}
	}
}

// sendDirect delivers a reply if the client is still registered
func (h *Hub) sendDirect(dm directMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.sessions[dm.client.sessionID][dm.client] {
		return
	}
	select {
	case dm.client.send <- dm.data:
	default:
		h.removeLocked(dm.client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// handleCommand runs a client command and replies to that client. State
// changes reach every client of the session through the service's notifier.
func (h *Hub) handleCommand(c *Client, cmd Command) {
	if h.service == nil {
		h.reply(c, errorMessage(c.sessionID, errors.New("commands are not enabled")))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var (
		result *service.ActionResult
		err    error
	)

	switch cmd.Action {
	case ActionReveal:
		result, err = h.service.RevealCard(ctx, c.sessionID, cmd.Index)
	case ActionHide:
		result, err = h.service.HideCard(ctx, c.sessionID, cmd.Index)
	case ActionNewGame:
		var state *engine.GameState
		state, err = h.service.NewGame(ctx, c.sessionID, service.GameOptions{
			ConfigID:   cmd.ConfigID,
			SymbolType: cmd.SymbolType,
			Size:       cmd.Size,
		})
		if err == nil {
			result = &service.ActionResult{Changed: true, GameState: state, Message: state.Message}
		}
	case ActionState:
		var state *engine.GameState
		state, err = h.service.GetGameState(ctx, c.sessionID)
		if err == nil {
			h.reply(c, &Message{SessionID: c.sessionID, GameState: state, Event: EventStateUpdate})
			return
		}
	default:
		err = errors.New("unknown action: " + cmd.Action)
	}

	if err != nil {
		log.Warn().Err(err).Str("session", c.sessionID).Str("action", cmd.Action).Msg("websocket command failed")
		h.reply(c, errorMessage(c.sessionID, err))
		return
	}

	h.reply(c, &Message{
		SessionID: c.sessionID,
		GameState: result.GameState,
		Event:     EventActionResult,
		Data:      result,
	})
}

func errorMessage(sessionID string, err error) *Message {
	return &Message{
		SessionID: sessionID,
		Event:     EventError,
		Data:      map[string]string{"error": err.Error()},
	}
}

// readPump pumps commands from the WebSocket connection to the hub
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
				log.Warn().Err(err).Str("session", c.sessionID).Msg("websocket error")
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.hub.reply(c, errorMessage(c.sessionID, errors.New("invalid command")))
			continue
		}
		c.hub.handleCommand(c, cmd)
	}
}

// writePump pumps messages from the hub to the WebSocket connection, one frame per message
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
