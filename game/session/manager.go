package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the retries when a generated ID collides
const maxIDAttempts = 5

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	logger      *zap.Logger
	newID       func() string
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager(logger *zap.Logger) *Manager {
	return NewManagerWithPersistence(nil, logger)
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
		logger:      logger.Named("session"),
		newID:       uuid.NewString,
	}
}

// Create starts a new game with the given rules under a fresh ID
func (m *Manager) Create(rules *engine.Rules) (*service.Session, error) {
	eng, err := engine.NewEngine(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := ""
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := m.newID()
		if !m.sessionExists(candidate) {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, ErrSessionAlreadyExists
	}

	sess := service.NewSession(id, eng, rules, time.Now())
	m.sessions[normalizeID(id)] = sess

	if m.persistence != nil {
		if err := m.persistence.Save(sess); err != nil {
			m.logger.Warn("failed to persist new session", zap.String("game_id", id), zap.Error(err))
		}
	}

	m.logger.Debug("session created", zap.String("game_id", id), zap.String("rules", rules.Name))
	return sess, nil
}

// Get retrieves a session by ID, loading it from persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, exists := m.sessions[normalizeID(id)]
	m.mu.RUnlock()

	if exists {
		return sess, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		loaded, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		// Another request may have loaded it meanwhile
		if existing, ok := m.sessions[normalizeID(id)]; ok {
			return existing, nil
		}
		m.sessions[normalizeID(id)] = loaded
		return loaded, nil
	}

	return nil, ErrSessionNotFound
}

// List returns all sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}

	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[normalizeID(id)]
	delete(m.sessions, normalizeID(id))
	m.mu.Unlock()

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[normalizeID(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, normalizeID(id))
	return nil
}

// Save persists one session. The caller must hold the session lock.
// Failures are logged and returned.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sess, exists := m.sessions[normalizeID(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	if err := m.persistence.Save(sess); err != nil {
		m.logger.Warn("failed to persist session", zap.String("game_id", id), zap.Error(err))
		return err
	}
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration, from memory and from persistence. It returns the number removed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []string
	for key, sess := range m.sessions {
		if sess.LastAccessed().Before(cutoff) {
			delete(m.sessions, key)
			expired = append(expired, sess.ID)
		}
	}
	m.mu.Unlock()

	if m.persistence != nil {
		for _, id := range expired {
			if err := m.persistence.Delete(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
				m.logger.Warn("failed to delete expired session", zap.String("game_id", id), zap.Error(err))
			}
		}
	}

	if len(expired) > 0 {
		m.logger.Info("expired sessions removed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory. Sessions
// that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		if _, exists := m.sessions[normalizeID(id)]; exists {
			continue
		}

		sess, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("game_id", id), zap.Error(err))
			continue
		}

		m.sessions[normalizeID(id)] = sess
		loadedCount++
	}

	if loadedCount > 0 {
		m.logger.Info("loaded persisted sessions", zap.Int("count", loadedCount))
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessions := m.List()

	errorCount := 0
	for _, sess := range sessions {
		sess.Lock()
		err := m.persistence.Save(sess)
		sess.Unlock()

		if err != nil {
			m.logger.Warn("failed to save session", zap.String("game_id", sess.ID), zap.Error(err))
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}

// sessionExists checks if a session exists; the caller holds m.mu
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[normalizeID(id)]
	if !exists && m.persistence != nil {
		exists = m.persistence.Exists(id)
	}
	return exists
}

// normalizeID makes lookups case-insensitive
func normalizeID(id string) string {
	return strings.ToLower(id)
}
