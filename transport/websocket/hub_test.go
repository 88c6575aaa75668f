package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.direct == nil {
		t.Error("Hub direct channel is nil")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// The send channel is closed so the write pump can stop
	if _, ok := <-client.send; ok {
		t.Error("Expected client send channel to be closed")
	}

	// A second unregister must not panic on the closed channel
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastOnlyReachesSession(t *testing.T) {
	hub := NewHub()
	inSession := newTestClient(hub, "a")
	otherSession := newTestClient(hub, "b")
	hub.registerClient(inSession)
	hub.registerClient(otherSession)

	hub.broadcastMessage(&Message{SessionID: "a", Event: EventStateUpdate})

	select {
	case <-inSession.send:
	default:
		t.Error("Expected client in session a to receive the message")
	}
	select {
	case <-otherSession.send:
		t.Error("Client in session b should not receive session a messages")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "one"})
	hub.broadcastMessage(&Message{SessionID: "slow", Event: "two"})

	if hub.ClientCount("slow") != 0 {
		t.Errorf("Expected slow client to be dropped, got %d clients", hub.ClientCount("slow"))
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	sessionID := "broadcast-test"
	client := newTestClient(hub, sessionID)
	hub.register <- client

	state := &engine.GameState{GameID: "g1", Size: 2, Matches: 1, TotalPairs: 2}
	hub.BroadcastToSession(sessionID, state)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || message.GameState.GameID != "g1" || message.GameState.Matches != 1 {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	case <-time.After(time.Second):
		t.Error("No message received within timeout")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	event := engine.Event{Seq: 3, Type: engine.EventCardsMatched, GameID: "g1", Index: 0, Index2: 1}
	go hub.BroadcastEvent("event-test", event, &engine.GameState{GameID: "g1"})

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != string(engine.EventCardsMatched) {
			t.Errorf("Expected event %q, got %s", engine.EventCardsMatched, message.Event)
		}
		got, ok := message.Data.(engine.Event)
		if !ok || got.Seq != 3 || got.Index2 != 1 {
			t.Errorf("Expected event data to be carried, got %v", message.Data)
		}
	case <-time.After(time.Second):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubCloseUnblocksBroadcast(t *testing.T) {
	hub := NewHub()
	hub.Close()
	hub.Close()

	done := make(chan struct{})
	go func() {
		// Fill the buffer, then one more must not block after Close
		for i := 0; i <= engine.WebSocketBufferSize; i++ {
			hub.BroadcastCustom("x", "ping", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastCustom blocked after Close")
	}
}

// wsFixture runs a hub backed by a real game service
type wsFixture struct {
	hub      *Hub
	server   *httptest.Server
	svc      service.GameService
	sessions *session.Manager
	sched    *engine.ManualScheduler
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("config.NewManager failed: %v", err)
	}

	hub := NewHub()
	sched := engine.NewManualScheduler()
	sessions := session.NewManager()
	svc := service.NewGameService(sessions, configs,
		service.WithNotifier(hub),
		service.WithEngineOptions(engine.WithScheduler(sched)),
	)
	hub.SetService(svc)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))

	t.Cleanup(func() {
		server.Close()
		hub.Close()
		sessions.Close()
	})

	return &wsFixture{hub: hub, server: server, svc: svc, sessions: sessions, sched: sched}
}

func (f *wsFixture) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one with the given event arrives
func readUntil(t *testing.T, conn *websocket.Conn, event string) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed waiting for %q: %v", event, err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event == event {
			return message
		}
	}
}

func sendCommand(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("Failed to send command: %v", err)
	}
}

func findPair(board engine.Board) (int, int) {
	for i := range board.Cards {
		for j := i + 1; j < len(board.Cards); j++ {
			if board.Cards[i].Symbol == board.Cards[j].Symbol {
				return i, j
			}
		}
	}
	return -1, -1
}

func TestWebSocketUpgrade(t *testing.T) {
	f := newWSFixture(t)
	info, err := f.svc.CreateSession(context.Background(), service.GameOptions{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	conn := f.dial(t, info.ID)

	// The initial board arrives without asking
	msg := readUntil(t, conn, EventStateUpdate)
	if msg.GameState == nil || msg.GameState.GameID != info.GameState.GameID {
		t.Fatalf("Expected initial state for game %s, got %+v", info.GameState.GameID, msg.GameState)
	}
	if f.hub.ClientCount(info.ID) != 1 {
		t.Errorf("Expected 1 client in session, got %d", f.hub.ClientCount(info.ID))
	}

	conn.Close()

	deadline := time.Now().Add(time.Second)
	for f.hub.ClientCount(info.ID) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.hub.ClientCount(info.ID) != 0 {
		t.Error("Session should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketRevealCommands(t *testing.T) {
	f := newWSFixture(t)
	info, err := f.svc.CreateSession(context.Background(), service.GameOptions{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	player := f.dial(t, info.ID)
	watcher := f.dial(t, info.ID)
	readUntil(t, player, EventStateUpdate)
	readUntil(t, watcher, EventStateUpdate)

	sess, err := f.sessions.Get(info.ID)
	if err != nil {
		t.Fatalf("Get session failed: %v", err)
	}
	a, b := findPair(sess.Engine.BoardSnapshot())

	sendCommand(t, player, Command{Action: ActionReveal, Index: a})
	result := readUntil(t, player, EventActionResult)
	if result.GameState == nil || result.GameState.Phase != engine.PhaseOneRevealed {
		t.Fatalf("Expected one_revealed after first reveal, got %+v", result.GameState)
	}

	// The other client sees the flip
	flip := readUntil(t, watcher, string(engine.EventCardFlipped))
	if flip.GameState == nil || !flip.GameState.Cards[a].FaceUp {
		t.Errorf("Expected card %d face-up in broadcast state", a)
	}

	sendCommand(t, player, Command{Action: ActionReveal, Index: b})
	result = readUntil(t, player, EventActionResult)
	if result.GameState.Phase != engine.PhaseResolving {
		t.Fatalf("Expected resolving after second reveal, got %s", result.GameState.Phase)
	}

	if fired := f.sched.RunAll(); fired != 1 {
		t.Fatalf("Expected 1 pending resolution, got %d", fired)
	}

	matched := readUntil(t, watcher, string(engine.EventCardsMatched))
	if matched.GameState.Matches != 1 {
		t.Errorf("Expected 1 match in broadcast state, got %d", matched.GameState.Matches)
	}
}

func TestWebSocketCommandErrors(t *testing.T) {
	f := newWSFixture(t)
	info, err := f.svc.CreateSession(context.Background(), service.GameOptions{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	conn := f.dial(t, info.ID)
	readUntil(t, conn, EventStateUpdate)

	sendCommand(t, conn, Command{Action: "jump"})
	msg := readUntil(t, conn, EventError)
	if !strings.Contains(msg.Data.(map[string]interface{})["error"].(string), "unknown action") {
		t.Errorf("Expected unknown action error, got %v", msg.Data)
	}

	sendCommand(t, conn, Command{Action: ActionNewGame, Size: 3})
	readUntil(t, conn, EventError)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	readUntil(t, conn, EventError)
}

func TestWebSocketNewGameCommand(t *testing.T) {
	f := newWSFixture(t)
	info, err := f.svc.CreateSession(context.Background(), service.GameOptions{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	conn := f.dial(t, info.ID)
	readUntil(t, conn, EventStateUpdate)

	sendCommand(t, conn, Command{Action: ActionNewGame, SymbolType: engine.Numbers, Size: 2})
	started := readUntil(t, conn, string(engine.EventGameStarted))
	if started.GameState.Size != 2 || started.GameState.SymbolType != engine.Numbers {
		t.Errorf("Expected numbers 2x2 game, got %s %dx%d",
			started.GameState.SymbolType, started.GameState.Size, started.GameState.Size)
	}

	sendCommand(t, conn, Command{Action: ActionState})
	state := readUntil(t, conn, EventStateUpdate)
	if state.GameState.GameID == info.GameState.GameID {
		t.Error("Expected a new game ID after new_game")
	}
}
