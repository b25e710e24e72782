package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	SetState(state *GameState) error
	View() View
	IsGameOver() bool
	GetScore() int
	GetPowerUps() PowerUps

	// Movement
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []Direction

	// Power-ups
	Undo() (string, error)
	SwapTiles(pos1, pos2 Position) (string, error)
	DeleteTile(value int) (string, error)

	// Rules and history
	GetRules() *Rules
	GetHistory() []Snapshot
}

// GameEngine implements the Engine interface for a single game.
// It is not safe for concurrent use; callers serialize access per game.
type GameEngine struct {
	state *GameState
	rules *Rules
	rng   *rand.Rand
}

// NewEngine creates a new game with the provided rules
func NewEngine(rules *Rules) (*GameEngine, error) {
	return NewEngineWithRand(rules, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand creates a new game drawing tile placement from rng
func NewEngineWithRand(rules *Rules, rng *rand.Rand) (*GameEngine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	e := &GameEngine{
		rules: rules,
		rng:   rng,
	}
	e.state = e.initialize()
	return e, nil
}

// initialize builds a fresh state: empty board, two tiles, one snapshot
func (e *GameEngine) initialize() *GameState {
	state := &GameState{
		PowerUps: e.rules.PowerUps,
		History:  make([]Snapshot, 0, e.rules.HistoryLimit),
	}
	e.addRandomTile(state)
	e.addRandomTile(state)
	state.pushSnapshot(e.rules.HistoryLimit)
	return state
}

// addRandomTile puts a 2 (or a 4, with the rules' probability) on a random empty
// cell. A full board is left untouched.
func (e *GameEngine) addRandomTile(state *GameState) {
	empty := state.Board.emptyCells()
	if len(empty) == 0 {
		return
	}
	pos := empty[e.rng.Intn(len(empty))]
	value := 2
	if e.rng.Float64() < e.rules.FourProbability {
		value = 4
	}
	state.Board[pos.Row][pos.Col] = value
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state (used when loading persisted sessions)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.History) == 0 {
		return fmt.Errorf("state must contain at least one history snapshot")
	}
	if len(state.History) > e.rules.HistoryLimit {
		return fmt.Errorf("state history has %d snapshots, limit is %d", len(state.History), e.rules.HistoryLimit)
	}
	if state.PowerUps.Undo < 0 || state.PowerUps.Swap < 0 || state.PowerUps.Delete < 0 {
		return fmt.Errorf("state power-up counters cannot be negative")
	}
	e.state = state
	return nil
}

// View returns the client-facing snapshot of the current state
func (e *GameEngine) View() View {
	return View{
		Board:    e.state.Board,
		Score:    e.state.Score,
		GameOver: e.IsGameOver(),
		PowerUps: e.state.PowerUps,
		MaxTile:  MaxTile(e.state.Board),
		Moves:    e.state.Moves,
	}
}

// IsGameOver is recomputed from the board on every call
func (e *GameEngine) IsGameOver() bool {
	return e.state.Board.IsGameOver()
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetPowerUps returns the remaining power-up uses
func (e *GameEngine) GetPowerUps() PowerUps {
	return e.state.PowerUps
}

// GetRules returns the rules the game was created with
func (e *GameEngine) GetRules() *Rules {
	return e.rules
}

// GetHistory returns a copy of the undo history, oldest first
func (e *GameEngine) GetHistory() []Snapshot {
	return append([]Snapshot(nil), e.state.History...)
}

// Move slides the board in the given direction. When anything moved a new
// tile is spawned and a snapshot recorded. Unknown directions return false.
func (e *GameEngine) Move(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}

	if !e.state.slide(d) {
		return false
	}

	e.addRandomTile(e.state)
	e.state.Moves++
	e.state.pushSnapshot(e.rules.HistoryLimit)
	return true
}

// CanMove reports whether a move in direction would change the board
func (e *GameEngine) CanMove(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	probe := GameState{Board: e.state.Board}
	return probe.slide(d)
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, d := range Directions {
		if e.CanMove(string(d)) {
			possible = append(possible, d)
		}
	}
	return possible
}
