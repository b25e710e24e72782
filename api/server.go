package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
	"github.com/wricardo/power-2048/transport/websocket"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 16

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger.Named("api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Game operations
	api.HandleFunc("/new-game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/move", s.handleMove).Methods("POST")
	api.HandleFunc("/undo", s.handleUndo).Methods("POST")
	api.HandleFunc("/swap", s.handleSwap).Methods("POST")
	api.HandleFunc("/delete", s.handleDelete).Methods("POST")

	// Game lookup
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/game/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/game/{id}", s.handleDeleteGame).Methods("DELETE")
	api.HandleFunc("/game/{id}/history", s.handleGetHistory).Methods("GET")

	// Rules
	api.HandleFunc("/rules", s.handleListRules).Methods("GET")
	api.HandleFunc("/rules/{name}", s.handleGetRules).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP statuses
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, service.ErrRulesNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) broadcast(view *service.GameView) {
	if s.hub != nil {
		s.hub.BroadcastState(view.GameID, view)
	}
}

// Game Handlers

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rules string `json:"rules,omitempty"`
	}

	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.service.NewGame(r.Context(), req.Rules)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.logger.Info("new game", zap.String("game_id", view.GameID), zap.String("rules", view.Rules))
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID    string `json:"game_id"`
		Direction string `json:"direction"`
	}

	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Move(r.Context(), req.GameID, req.Direction)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if result.Moved {
		s.broadcast(&result.GameView)
	}

	s.logger.Debug("move",
		zap.String("game_id", req.GameID),
		zap.String("direction", req.Direction),
		zap.Bool("moved", result.Moved),
		zap.Int("score", result.Score),
		zap.Bool("game_over", result.GameOver))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"game_id"`
	}

	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Undo(r.Context(), req.GameID)
	s.respondPowerUp(w, "undo", req.GameID, result, err)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"game_id"`
		Pos1   []int  `json:"pos1"`
		Pos2   []int  `json:"pos2"`
	}

	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Swap(r.Context(), req.GameID, toPosition(req.Pos1), toPosition(req.Pos2))
	s.respondPowerUp(w, "swap", req.GameID, result, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"game_id"`
		Number int    `json:"number"`
	}

	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Delete(r.Context(), req.GameID, req.Number)
	s.respondPowerUp(w, "delete", req.GameID, result, err)
}

// respondPowerUp writes a power-up result. Rejected power-ups are still 200.
func (s *Server) respondPowerUp(w http.ResponseWriter, op, gameID string, result *service.PowerUpResult, err error) {
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if result.Success {
		s.broadcast(&result.GameView)
	}

	s.logger.Debug("power-up",
		zap.String("op", op),
		zap.String("game_id", gameID),
		zap.Bool("success", result.Success),
		zap.String("message", result.Message))

	respondJSON(w, http.StatusOK, result)
}

// toPosition converts a [row, col] pair. Anything else becomes an
// out-of-bounds position so the engine reports invalid positions.
func toPosition(pair []int) engine.Position {
	if len(pair) != 2 {
		return engine.Position{Row: -1, Col: -1}
	}
	return engine.Position{Row: pair[0], Col: pair[1]}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	view, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(gameID, websocket.EventGameDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s deleted", gameID),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	history, err := s.service.GetHistory(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

// Rules Handlers

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.ListRules(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	rules, err := s.service.LoadRules(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "WebSocket not available")
		return
	}

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game_id parameter required")
		return
	}

	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.hub.ServeWS(w, r, gameID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request. WebSocket upgrades bypass the
// recorder because the upgrader needs the original http.Hijacker.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
