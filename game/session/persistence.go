package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage. The caller holds the session lock.
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The rules travel
// with the state so a session survives edits to the rules directory.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	Rules          *engine.Rules     `json:"rules"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

func newPersistedData(sess *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             sess.ID,
		Rules:          sess.Rules,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      sess.Engine.GetState(),
	}
}

// restoreSession rebuilds a live session from its stored form
func restoreSession(data *PersistedSessionData) (*service.Session, error) {
	if data.Rules == nil {
		data.Rules = engine.DefaultRules()
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", data.ID)
	}

	eng, err := engine.NewEngine(data.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if err := eng.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	sess := service.NewSession(data.ID, eng, data.Rules, data.CreatedAt)
	sess.SetLastAccessed(data.LastAccessedAt)
	return sess, nil
}

func decodeSession(raw []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return restoreSession(&data)
}
