package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wricardo/power-2048/game/engine"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrRulesNotFound = errors.New("rules not found")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	rules    RulesManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, rules RulesManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		rules:    rules,
	}
}

// NewGame creates a new game session. An empty rulesName selects the default rules.
func (s *gameServiceImpl) NewGame(ctx context.Context, rulesName string) (*GameView, error) {
	rules := s.rules.GetDefault()
	if rulesName != "" {
		loaded, err := s.rules.LoadRules(rulesName)
		if err != nil {
			return nil, s.rulesError(rulesName, err)
		}
		rules = loaded
	}

	sess, err := s.sessions.Create(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()

	view := newGameView(sess)
	return &view, nil
}

// GetGame returns the current state of a game
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameView, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Touch()
	view := newGameView(sess)
	return &view, nil
}

// ListGames returns all active sessions, most recently used first
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		v := sess.Engine.View()
		sess.Unlock()

		result = append(result, &SessionInfo{
			ID:             sess.ID,
			Rules:          sess.Rules.Name,
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessed(),
			Score:          v.Score,
			MaxTile:        v.MaxTile,
			GameOver:       v.GameOver,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessedAt.After(result[j].LastAccessedAt)
	})

	return result, nil
}

// DeleteGame removes a session
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	if err := s.sessions.Delete(gameID); err != nil {
		return fmt.Errorf("%w: %v", ErrGameNotFound, err)
	}
	return nil
}

// Move slides the board of a game. An unknown direction is not an error;
// the result reports moved=false.
func (s *gameServiceImpl) Move(ctx context.Context, gameID, direction string) (*MoveResult, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	before := sess.Engine.GetScore()
	moved := sess.Engine.Move(direction)
	if moved {
		s.persist(sess)
	}

	return &MoveResult{
		GameView:   newGameView(sess),
		Moved:      moved,
		Direction:  direction,
		ScoreDelta: sess.Engine.GetScore() - before,
	}, nil
}

// Undo reverts the latest mutation of a game
func (s *gameServiceImpl) Undo(ctx context.Context, gameID string) (*PowerUpResult, error) {
	return s.applyPowerUp(gameID, func(e *engine.GameEngine) (string, error) {
		return e.Undo()
	})
}

// Swap exchanges two tiles of a game
func (s *gameServiceImpl) Swap(ctx context.Context, gameID string, pos1, pos2 engine.Position) (*PowerUpResult, error) {
	return s.applyPowerUp(gameID, func(e *engine.GameEngine) (string, error) {
		return e.SwapTiles(pos1, pos2)
	})
}

// Delete clears every tile with the given value
func (s *gameServiceImpl) Delete(ctx context.Context, gameID string, value int) (*PowerUpResult, error) {
	return s.applyPowerUp(gameID, func(e *engine.GameEngine) (string, error) {
		return e.DeleteTile(value)
	})
}

// applyPowerUp runs one power-up under the session lock. Engine rejections
// become an unsuccessful result rather than an error.
func (s *gameServiceImpl) applyPowerUp(gameID string, op func(e *engine.GameEngine) (string, error)) (*PowerUpResult, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	msg, err := op(sess.Engine)
	if err != nil {
		kind := engine.KindOf(err)
		if kind == "" {
			return nil, err
		}
		return &PowerUpResult{
			GameView:  newGameView(sess),
			Success:   false,
			Message:   err.Error(),
			ErrorKind: kind,
		}, nil
	}

	s.persist(sess)

	return &PowerUpResult{
		GameView: newGameView(sess),
		Success:  true,
		Message:  msg,
	}, nil
}

// GetHistory returns the undo snapshots of a game
func (s *gameServiceImpl) GetHistory(ctx context.Context, gameID string) (*HistoryResponse, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	history := sess.Engine.GetHistory()
	return &HistoryResponse{
		GameID:    sess.ID,
		Snapshots: history,
		Count:     len(history),
		Limit:     sess.Rules.HistoryLimit,
	}, nil
}

// ListRules returns the available rule sets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// LoadRules returns a rule set by name
func (s *gameServiceImpl) LoadRules(ctx context.Context, name string) (*engine.Rules, error) {
	rules, err := s.rules.LoadRules(name)
	if err != nil {
		return nil, s.rulesError(name, err)
	}
	return rules, nil
}

func (s *gameServiceImpl) lookup(gameID string) (*Session, error) {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGameNotFound, err)
	}
	return sess, nil
}

// persist saves a session; the caller holds the session lock.
// The session manager logs persistence failures, so they never fail the request.
func (s *gameServiceImpl) persist(sess *Session) {
	_ = s.sessions.Save(sess.ID)
}

// rulesError lists the available rule sets in the error for unknown names
func (s *gameServiceImpl) rulesError(name string, err error) error {
	available, listErr := s.rules.ListRules()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, r := range available {
			ids = append(ids, r.RulesID)
		}
		return fmt.Errorf("%w: '%s' (available: %v): %v", ErrRulesNotFound, name, ids, err)
	}
	return fmt.Errorf("%w: '%s': %v", ErrRulesNotFound, name, err)
}
