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

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

func newClient(hub *Hub, gameID string) *Client {
	return &Client{
		hub:    hub,
		gameID: gameID,
		send:   make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.games == nil {
		t.Error("Hub games map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newClient(hub, "game-1")

	hub.registerClient(client)

	if !hub.games["game-1"][client] {
		t.Error("Client was not registered for game")
	}
	if len(hub.games["game-1"]) != 1 {
		t.Errorf("Expected 1 client, got %d", len(hub.games["game-1"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newClient(hub, "game-1")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.games["game-1"]; exists {
		t.Error("Game entry should be removed after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Unregistering twice must not panic on a closed channel
	hub.unregisterClient(client)
}

func TestHubMultipleClients(t *testing.T) {
	hub := NewHub(nil)
	client1 := newClient(hub, "shared")
	client2 := newClient(hub, "shared")
	other := newClient(hub, "other")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{GameID: "shared", Event: EventStateUpdate})

	for i, c := range []*Client{client1, client2} {
		select {
		case <-c.send:
		default:
			t.Errorf("client%d did not receive broadcast", i+1)
		}
	}

	select {
	case <-other.send:
		t.Error("Client of another game received broadcast")
	default:
	}

	hub.unregisterClient(client1)
	if len(hub.games["shared"]) != 1 || !hub.games["shared"][client2] {
		t.Error("client2 should remain registered")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, gameID: "g", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{GameID: "g", Event: "a"})
	hub.broadcastMessage(&Message{GameID: "g", Event: "b"})

	if _, exists := hub.games["g"]; exists {
		t.Error("Slow client should have been dropped")
	}
}

func TestHubBroadcastState(t *testing.T) {
	hub := NewHub(nil)
	client := newClient(hub, "state-test")
	hub.registerClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	view := &service.GameView{
		GameID:   "state-test",
		Board:    engine.Board{{2, 4}},
		Score:    12,
		PowerUps: engine.PowerUps{Undo: 1, Swap: 2, Delete: 3},
	}
	hub.BroadcastState("state-test", view)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.GameID != "state-test" {
			t.Errorf("Expected game_id state-test, got %s", message.GameID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event state_update, got %s", message.Event)
		}
		if message.State == nil || message.State.Score != 12 || message.State.Board[0][1] != 4 {
			t.Errorf("State not transmitted correctly: %+v", message.State)
		}
	case <-time.After(time.Second):
		t.Error("No message received within timeout")
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	client := newClient(hub, "g")
	hub.registerClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("Hub did not stop")
	}

	if _, ok := <-client.send; ok {
		t.Error("Client channel should be closed on shutdown")
	}

	// Calls after shutdown return instead of blocking
	hub.BroadcastEvent("g", "late", nil)
	if n := hub.ClientCount("g"); n != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %d", n)
	}
}

func waitForClients(t *testing.T, hub *Hub, gameID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(gameID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients for %s, got %d", want, gameID, hub.ClientCount(gameID))
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("game_id"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?game_id=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, "ws-test", 1)

	hub.BroadcastState("ws-test", &service.GameView{GameID: "ws-test", Score: 200, GameOver: true})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.State.Score != 200 || !message.State.GameOver {
		t.Errorf("Unexpected state %+v", message.State)
	}

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}
