package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/power-2048/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	NewGame(ctx context.Context, rulesName string) (*GameView, error)
	GetGame(ctx context.Context, gameID string) (*GameView, error)
	ListGames(ctx context.Context) ([]*SessionInfo, error)
	DeleteGame(ctx context.Context, gameID string) error

	// Game Operations
	Move(ctx context.Context, gameID, direction string) (*MoveResult, error)
	Undo(ctx context.Context, gameID string) (*PowerUpResult, error)
	Swap(ctx context.Context, gameID string, pos1, pos2 engine.Position) (*PowerUpResult, error)
	Delete(ctx context.Context, gameID string, value int) (*PowerUpResult, error)

	// History
	GetHistory(ctx context.Context, gameID string) (*HistoryResponse, error)

	// Rules
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	LoadRules(ctx context.Context, name string) (*engine.Rules, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(rules *engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	Save(id string) error
}

// RulesManager handles rule set loading
type RulesManager interface {
	LoadRules(name string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
}

// Session represents an active game. Its mutex serializes operations on
// the game; the engine itself does no locking.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	Rules     *engine.Rules
	CreatedAt time.Time

	lastAccess atomic.Int64
	mu         sync.Mutex
}

// NewSession wraps an engine in a session accessed now
func NewSession(id string, eng *engine.GameEngine, rules *engine.Rules, createdAt time.Time) *Session {
	s := &Session{
		ID:        id,
		Engine:    eng,
		Rules:     rules,
		CreatedAt: createdAt,
	}
	s.Touch()
	return s
}

// Touch records an access at the current time
func (s *Session) Touch() {
	s.SetLastAccessed(time.Now())
}

// SetLastAccessed overrides the last access time (used when restoring sessions)
func (s *Session) SetLastAccessed(t time.Time) {
	s.lastAccess.Store(t.UnixNano())
}

// LastAccessed returns the time of the latest access
func (s *Session) LastAccessed() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

// Lock acquires exclusive access to the session's game
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session's game
func (s *Session) Unlock() {
	s.mu.Unlock()
}
