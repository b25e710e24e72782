package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/power-2048/game/config"
	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
	"github.com/wricardo/power-2048/game/session"
	"github.com/wricardo/power-2048/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	NewGameFunc    func(ctx context.Context, rulesName string) (*service.GameView, error)
	GetGameFunc    func(ctx context.Context, gameID string) (*service.GameView, error)
	ListGamesFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteGameFunc func(ctx context.Context, gameID string) error

	MoveFunc   func(ctx context.Context, gameID, direction string) (*service.MoveResult, error)
	UndoFunc   func(ctx context.Context, gameID string) (*service.PowerUpResult, error)
	SwapFunc   func(ctx context.Context, gameID string, pos1, pos2 engine.Position) (*service.PowerUpResult, error)
	DeleteFunc func(ctx context.Context, gameID string, value int) (*service.PowerUpResult, error)

	GetHistoryFunc func(ctx context.Context, gameID string) (*service.HistoryResponse, error)

	ListRulesFunc func(ctx context.Context) ([]*service.RulesInfo, error)
	LoadRulesFunc func(ctx context.Context, name string) (*engine.Rules, error)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", service.ErrGameNotFound, id)
}

func (m *MockGameService) NewGame(ctx context.Context, rulesName string) (*service.GameView, error) {
	if m.NewGameFunc != nil {
		return m.NewGameFunc(ctx, rulesName)
	}
	return &service.GameView{GameID: "test-game", Rules: "classic"}, nil
}

func (m *MockGameService) GetGame(ctx context.Context, gameID string) (*service.GameView, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(ctx, gameID)
	}
	return &service.GameView{GameID: gameID}, nil
}

func (m *MockGameService) ListGames(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteGame(ctx context.Context, gameID string) error {
	if m.DeleteGameFunc != nil {
		return m.DeleteGameFunc(ctx, gameID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, gameID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, gameID, direction)
	}
	return &service.MoveResult{GameView: service.GameView{GameID: gameID}, Moved: true, Direction: direction}, nil
}

func (m *MockGameService) Undo(ctx context.Context, gameID string) (*service.PowerUpResult, error) {
	if m.UndoFunc != nil {
		return m.UndoFunc(ctx, gameID)
	}
	return &service.PowerUpResult{GameView: service.GameView{GameID: gameID}, Success: true, Message: "Undo successful"}, nil
}

func (m *MockGameService) Swap(ctx context.Context, gameID string, pos1, pos2 engine.Position) (*service.PowerUpResult, error) {
	if m.SwapFunc != nil {
		return m.SwapFunc(ctx, gameID, pos1, pos2)
	}
	return &service.PowerUpResult{GameView: service.GameView{GameID: gameID}, Success: true, Message: "Swap successful"}, nil
}

func (m *MockGameService) Delete(ctx context.Context, gameID string, value int) (*service.PowerUpResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, gameID, value)
	}
	return &service.PowerUpResult{GameView: service.GameView{GameID: gameID}, Success: true}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, gameID string) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, gameID)
	}
	return &service.HistoryResponse{GameID: gameID}, nil
}

func (m *MockGameService) ListRules(ctx context.Context) ([]*service.RulesInfo, error) {
	if m.ListRulesFunc != nil {
		return m.ListRulesFunc(ctx)
	}
	return []*service.RulesInfo{{RulesID: "classic", Name: "classic"}}, nil
}

func (m *MockGameService) LoadRules(ctx context.Context, name string) (*engine.Rules, error) {
	if m.LoadRulesFunc != nil {
		return m.LoadRulesFunc(ctx, name)
	}
	return engine.DefaultRules(), nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService service.GameService) *Server {
	t.Helper()
	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestNewGame(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		wantRules      string
		serviceErr     error
		expectedStatus int
	}{
		{"default rules", nil, "", nil, http.StatusOK},
		{"named rules", map[string]string{"rules": "relaxed"}, "relaxed", nil, http.StatusOK},
		{"unknown rules", map[string]string{"rules": "nope"}, "nope", service.ErrRulesNotFound, http.StatusNotFound},
		{"service error", nil, "", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				NewGameFunc: func(ctx context.Context, rulesName string) (*service.GameView, error) {
					if rulesName != tt.wantRules {
						t.Errorf("Expected rules %q, got %q", tt.wantRules, rulesName)
					}
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.GameView{GameID: "g-1", Rules: "classic"}, nil
				},
			}

			server := setupTestServer(t, mock)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/new-game", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["game_id"] != "g-1" {
					t.Errorf("Expected game_id g-1, got %v", resp["game_id"])
				}
			}
		})
	}
}

func TestNewGame_MalformedBody(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	req := httptest.NewRequest("POST", "/api/new-game", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "successful move",
			body: map[string]string{"game_id": "g-1", "direction": "left"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, gameID, direction string) (*service.MoveResult, error) {
					return &service.MoveResult{
						GameView:  service.GameView{GameID: gameID, Board: engine.Board{{4}}, Score: 4},
						Moved:     true,
						Direction: direction,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["moved"] != true {
					t.Errorf("Expected moved=true, got %v", resp["moved"])
				}
				if resp["score"] != float64(4) {
					t.Errorf("Expected score 4, got %v", resp["score"])
				}
				for _, field := range []string{"board", "game_over", "power_ups"} {
					if _, ok := resp[field]; !ok {
						t.Errorf("Response missing %q", field)
					}
				}
			},
		},
		{
			name: "invalid direction is not an error",
			body: map[string]string{"game_id": "g-1", "direction": "sideways"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, gameID, direction string) (*service.MoveResult, error) {
					return &service.MoveResult{GameView: service.GameView{GameID: gameID}, Moved: false, Direction: direction}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if resp.Moved {
					t.Error("Expected moved=false")
				}
			},
		},
		{
			name: "unknown game",
			body: map[string]string{"game_id": "missing", "direction": "left"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, gameID, direction string) (*service.MoveResult, error) {
					return nil, notFound(gameID)
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "Game not found" {
					t.Errorf("Expected 'Game not found', got %q", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			server := setupTestServer(t, mock)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/move", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestUndo(t *testing.T) {
	mock := &MockGameService{
		UndoFunc: func(ctx context.Context, gameID string) (*service.PowerUpResult, error) {
			return &service.PowerUpResult{
				GameView:  service.GameView{GameID: gameID},
				Success:   false,
				Message:   "No moves to undo",
				ErrorKind: engine.KindNothingToUndo,
			}, nil
		},
	}

	server := setupTestServer(t, mock)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/undo", map[string]string{"game_id": "g-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Rejected power-up should still be 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["success"] != false || resp["message"] != "No moves to undo" {
		t.Errorf("Unexpected response %v", resp)
	}
	if resp["error_kind"] != "nothing_to_undo" {
		t.Errorf("Expected error_kind nothing_to_undo, got %v", resp["error_kind"])
	}
}

func TestSwap(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]interface{}
		wantPos1 engine.Position
		wantPos2 engine.Position
	}{
		{
			name:     "valid pairs",
			body:     map[string]interface{}{"game_id": "g-1", "pos1": []int{0, 1}, "pos2": []int{3, 2}},
			wantPos1: engine.Position{Row: 0, Col: 1},
			wantPos2: engine.Position{Row: 3, Col: 2},
		},
		{
			name:     "missing positions",
			body:     map[string]interface{}{"game_id": "g-1"},
			wantPos1: engine.Position{Row: -1, Col: -1},
			wantPos2: engine.Position{Row: -1, Col: -1},
		},
		{
			name:     "wrong arity",
			body:     map[string]interface{}{"game_id": "g-1", "pos1": []int{1}, "pos2": []int{1, 2, 3}},
			wantPos1: engine.Position{Row: -1, Col: -1},
			wantPos2: engine.Position{Row: -1, Col: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got1, got2 engine.Position
			mock := &MockGameService{
				SwapFunc: func(ctx context.Context, gameID string, pos1, pos2 engine.Position) (*service.PowerUpResult, error) {
					got1, got2 = pos1, pos2
					return &service.PowerUpResult{GameView: service.GameView{GameID: gameID}, Success: true}, nil
				},
			}

			server := setupTestServer(t, mock)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/swap", tt.body))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got1 != tt.wantPos1 || got2 != tt.wantPos2 {
				t.Errorf("Expected %v/%v, got %v/%v", tt.wantPos1, tt.wantPos2, got1, got2)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	var gotValue int
	mock := &MockGameService{
		DeleteFunc: func(ctx context.Context, gameID string, value int) (*service.PowerUpResult, error) {
			gotValue = value
			return &service.PowerUpResult{GameView: service.GameView{GameID: gameID}, Success: true, Message: "Deleted all 8 tiles"}, nil
		},
	}

	server := setupTestServer(t, mock)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/delete", map[string]interface{}{"game_id": "g-1", "number": 8}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotValue != 8 {
		t.Errorf("Expected number 8, got %d", gotValue)
	}
}

func TestGetGame(t *testing.T) {
	mock := &MockGameService{
		GetGameFunc: func(ctx context.Context, gameID string) (*service.GameView, error) {
			if gameID != "g-1" {
				return nil, notFound(gameID)
			}
			return &service.GameView{GameID: gameID, Score: 128}, nil
		},
	}
	server := setupTestServer(t, mock)

	t.Run("existing game", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/game/g-1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var resp service.GameView
		parseResponse(t, w, &resp)
		if resp.Score != 128 {
			t.Errorf("Expected score 128, got %d", resp.Score)
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/game/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestDeleteGame(t *testing.T) {
	mock := &MockGameService{
		DeleteGameFunc: func(ctx context.Context, gameID string) error {
			if gameID != "g-1" {
				return notFound(gameID)
			}
			return nil
		},
	}
	server := setupTestServer(t, mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/game/g-1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/game/g-2", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestListGamesAndHistory(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListGamesFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", Rules: "classic", CreatedAt: now, LastAccessedAt: now},
				{ID: "b", Rules: "classic", CreatedAt: now, LastAccessedAt: now},
			}, nil
		},
		GetHistoryFunc: func(ctx context.Context, gameID string) (*service.HistoryResponse, error) {
			return &service.HistoryResponse{
				GameID:    gameID,
				Snapshots: []engine.Snapshot{{}, {Score: 4}},
				Count:     2,
				Limit:     10,
			}, nil
		},
	}
	server := setupTestServer(t, mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/games", nil))
	var list struct {
		Count int                    `json:"count"`
		Games []*service.SessionInfo `json:"games"`
	}
	parseResponse(t, w, &list)
	if list.Count != 2 || len(list.Games) != 2 {
		t.Errorf("Expected 2 games, got %+v", list)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/game/a/history", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.Count != 2 || history.Snapshots[1].Score != 4 {
		t.Errorf("Unexpected history %+v", history)
	}
}

func TestRules(t *testing.T) {
	mock := &MockGameService{
		LoadRulesFunc: func(ctx context.Context, name string) (*engine.Rules, error) {
			if name != "classic" {
				return nil, fmt.Errorf("%w: %s", service.ErrRulesNotFound, name)
			}
			return engine.DefaultRules(), nil
		},
	}
	server := setupTestServer(t, mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/rules", nil))
	var list []*service.RulesInfo
	parseResponse(t, w, &list)
	if len(list) != 1 || list[0].RulesID != "classic" {
		t.Errorf("Unexpected rules list %+v", list)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/rules/classic.json", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/rules/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/move", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestWebSocket(t *testing.T) {
	mock := &MockGameService{
		GetGameFunc: func(ctx context.Context, gameID string) (*service.GameView, error) {
			if gameID != "g-1" {
				return nil, notFound(gameID)
			}
			return &service.GameView{GameID: gameID}, nil
		},
	}
	server := setupTestServer(t, mock)

	t.Run("missing game_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws?game_id=nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("move is pushed to subscribers", func(t *testing.T) {
		ts := httptest.NewServer(server)
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game_id=g-1"
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for server.hub.ClientCount("g-1") != 1 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/move", map[string]string{"game_id": "g-1", "direction": "up"}))

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		if msg.Event != websocket.EventStateUpdate || msg.GameID != "g-1" {
			t.Errorf("Unexpected message %+v", msg)
		}
	})
}

// TestFullGameOverHTTP drives the real service, session and rules stack
func TestFullGameOverHTTP(t *testing.T) {
	rules, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewGameService(session.NewManager(nil), rules)
	server := setupTestServer(t, svc)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/new-game", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("new-game returned %d", w.Code)
	}
	var game service.GameView
	parseResponse(t, w, &game)
	if engine.TileCount(game.Board) != 2 {
		t.Fatalf("Expected 2 tiles, got %v", game.Board)
	}
	if game.PowerUps != (engine.PowerUps{Undo: 3, Swap: 3, Delete: 3}) {
		t.Errorf("Unexpected power-ups %+v", game.PowerUps)
	}

	// Undo before any move
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/undo", map[string]string{"game_id": game.GameID}))
	var undo service.PowerUpResult
	parseResponse(t, w, &undo)
	if undo.Success || undo.ErrorKind != engine.KindNothingToUndo {
		t.Errorf("Expected nothing_to_undo, got %+v", undo)
	}

	// Some direction always moves on a fresh board with two tiles
	moved := false
	for _, d := range engine.Directions {
		w = httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/move", map[string]string{"game_id": game.GameID, "direction": string(d)}))
		var res service.MoveResult
		parseResponse(t, w, &res)
		if res.Moved {
			moved = true
			if engine.TileCount(res.Board) != 3 && res.ScoreDelta == 0 {
				t.Errorf("Expected a spawned tile after a move, got %v", res.Board)
			}
			break
		}
	}
	if !moved {
		t.Fatal("No direction moved on a fresh board")
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/undo", map[string]string{"game_id": game.GameID}))
	parseResponse(t, w, &undo)
	if !undo.Success || undo.Board != game.Board || undo.PowerUps.Undo != 2 {
		t.Errorf("Undo should restore the initial board, got %+v", undo)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/game/"+game.GameID+"/history", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.Count != 1 {
		t.Errorf("Expected one snapshot after undo, got %d", history.Count)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/delete", map[string]interface{}{"game_id": game.GameID, "number": 4096}))
	var del service.PowerUpResult
	parseResponse(t, w, &del)
	if del.Success || del.Message != "No tiles with number 4096 found" {
		t.Errorf("Unexpected delete result %+v", del)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/game/not-a-game", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
