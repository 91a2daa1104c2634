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

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

func testBoard(state engine.State) *arena.Snapshot {
	return &arena.Snapshot{
		Snapshot: engine.Snapshot{
			ConfigName: "classic",
			State:      state,
			Rounds:     3,
			Rows:       []string{"......", "..R..."},
		},
		Clock: 2 * time.Second,
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
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

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
	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// a second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

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

func TestHubBroadcastToSession(t *testing.T) {
	tests := []struct {
		name  string
		state engine.State
		event string
	}{
		{name: "board update", state: engine.StateInteractive, event: EventBoardUpdate},
		{name: "game over", state: engine.StateGameOver, event: EventGameOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			client := &Client{hub: hub, sessionID: "broadcast-test", send: make(chan []byte, 256)}
			other := &Client{hub: hub, sessionID: "other", send: make(chan []byte, 256)}
			hub.registerClient(client)
			hub.registerClient(other)

			hub.BroadcastToSession("broadcast-test", testBoard(tt.state))
			hub.broadcastMessage(<-hub.broadcast)

			select {
			case data := <-client.send:
				var message Message
				if err := json.Unmarshal(data, &message); err != nil {
					t.Fatalf("Failed to unmarshal message: %v", err)
				}
				if message.SessionID != "broadcast-test" {
					t.Errorf("Expected sessionID broadcast-test, got %s", message.SessionID)
				}
				if message.Event != tt.event {
					t.Errorf("Expected event %s, got %s", tt.event, message.Event)
				}
				if message.Board == nil || message.Board.State != tt.state || message.Board.Rounds != 3 {
					t.Errorf("Board not correctly transmitted: %+v", message.Board)
				}
			default:
				t.Error("No message queued for client")
			}

			if len(other.send) != 0 {
				t.Error("Client of another session received the broadcast")
			}
		})
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.BroadcastEvent("s", "custom", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastEvent blocked without a running hub")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected a full queue of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "custom"})

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected a client with a full send buffer to be dropped")
	}
}

func startServer(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	return hub, server, cancel
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub, server, cancel := startServer(t)
	defer cancel()
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for registration
	time.Sleep(20 * time.Millisecond)

	hub.BroadcastToSession("msg-test", testBoard(engine.StateResolving))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Event != EventBoardUpdate {
		t.Errorf("Expected board_update, got %s", message.Event)
	}
	if message.Board.State != engine.StateResolving || message.Board.Clock != 2*time.Second {
		t.Errorf("Board not correctly received: %+v", message.Board)
	}
	if len(message.Board.Rows) != 2 || message.Board.Rows[1] != "..R..." {
		t.Errorf("Rows not correctly received: %v", message.Board.Rows)
	}
}

func TestWebSocketClosesWhenHubStops(t *testing.T) {
	_, server, cancel := startServer(t)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=stop-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	time.Sleep(20 * time.Millisecond)

	cancel()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to close after the hub stopped")
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws?session=ab12", false},
		{"https://beans.example.com/", "wss://beans.example.com/ws?session=ab12", false},
		{"ftp://host", "", true},
	}
	for _, tt := range tests {
		got, err := wsURL(tt.base, "ab12")
		if tt.wantErr {
			if err == nil {
				t.Errorf("wsURL(%q): expected error", tt.base)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("wsURL(%q) = %q, %v; want %q", tt.base, got, err, tt.want)
		}
	}
}

func TestWatch(t *testing.T) {
	hub, server, cancel := startServer(t)
	defer cancel()
	defer server.Close()

	received := make(chan *Message, 128)
	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), server.URL, "watch-test", func(m *Message) bool {
			received <- m
			return m.Event != EventGameOver
		})
	}()

	// broadcast until the watcher is registered
	got := false
	for deadline := time.Now().Add(time.Second); !got && time.Now().Before(deadline); {
		hub.BroadcastToSession("watch-test", testBoard(engine.StateInteractive))
		select {
		case m := <-received:
			if m.Event != EventBoardUpdate {
				t.Fatalf("Expected board_update, got %s", m.Event)
			}
			got = true
		case <-time.After(20 * time.Millisecond):
		}
	}
	if !got {
		t.Fatal("Watcher never received a board update")
	}

	hub.BroadcastToSession("watch-test", testBoard(engine.StateGameOver))
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after game over")
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	_, server, cancel := startServer(t)
	defer cancel()
	defer server.Close()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, server.URL, "ctx-test", func(*Message) bool { return true })
	}()
	time.Sleep(20 * time.Millisecond)
	stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop with its context")
	}
}

func TestWatchDialError(t *testing.T) {
	if err := Watch(context.Background(), "http://127.0.0.1:1", "x", func(*Message) bool { return true }); err == nil {
		t.Error("Expected dial error")
	}
}
