package service

import (
	"time"

	"github.com/wricardo/power-2048/game/engine"
)

// GameView is the full state snapshot sent to clients
type GameView struct {
	GameID   string          `json:"game_id"`
	Board    engine.Board    `json:"board"`
	Score    int             `json:"score"`
	GameOver bool            `json:"game_over"`
	PowerUps engine.PowerUps `json:"power_ups"`
	MaxTile  int             `json:"max_tile"`
	Moves    int             `json:"moves"`
	Rules    string          `json:"rules"`
}

// MoveResult contains the result of a move
type MoveResult struct {
	GameView
	Moved      bool   `json:"moved"`
	Direction  string `json:"direction"`
	ScoreDelta int    `json:"score_delta"`
}

// PowerUpResult contains the result of an undo, swap or delete.
// A rejected power-up has Success false and an ErrorKind; the state is unchanged.
type PowerUpResult struct {
	GameView
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	ErrorKind engine.ErrorKind `json:"error_kind,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string    `json:"id"`
	Rules          string    `json:"rules"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Score          int       `json:"score"`
	MaxTile        int       `json:"max_tile"`
	GameOver       bool      `json:"game_over"`
}

// HistoryResponse lists the undo snapshots of a game, oldest first
type HistoryResponse struct {
	GameID    string            `json:"game_id"`
	Snapshots []engine.Snapshot `json:"snapshots"`
	Count     int               `json:"count"`
	Limit     int               `json:"limit"`
}

// RulesInfo provides information about a rule set
type RulesInfo struct {
	Filename        string          `json:"filename,omitempty"`
	RulesID         string          `json:"rules_id"` // The identifier to use for game creation
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	PowerUps        engine.PowerUps `json:"power_ups"`
	HistoryLimit    int             `json:"history_limit"`
	FourProbability float64         `json:"four_probability"`
}

func newGameView(sess *Session) GameView {
	v := sess.Engine.View()
	return GameView{
		GameID:   sess.ID,
		Board:    v.Board,
		Score:    v.Score,
		GameOver: v.GameOver,
		PowerUps: v.PowerUps,
		MaxTile:  v.MaxTile,
		Moves:    v.Moves,
		Rules:    sess.Rules.Name,
	}
}
