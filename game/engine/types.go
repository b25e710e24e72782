package engine

import "fmt"

const (
	// BoardSize is the width and height of the board
	BoardSize = 4

	// Rule defaults
	DefaultPowerUpCount    = 3
	DefaultHistoryLimit    = 10
	DefaultFourProbability = 0.1

	// Validation constants
	MinHistoryLimit = 2
	MaxHistoryLimit = 100
	MaxPowerUpCount = 99
)

// Board is a 4x4 grid of tile values. Zero marks an empty cell.
// Board is an array, so assigning it copies every cell.
type Board [BoardSize][BoardSize]int

// Direction is a move direction as sent by clients
type Direction string

const (
	Left  Direction = "left"
	Down  Direction = "down"
	Right Direction = "right"
	Up    Direction = "up"
)

// Directions lists the valid directions in quarter-turn order
var Directions = []Direction{Left, Down, Right, Up}

// quarterTurns maps a direction to the clockwise rotations that turn it into a left move
var quarterTurns = map[Direction]int{
	Left:  0,
	Down:  1,
	Right: 2,
	Up:    3,
}

// ParseDirection validates a direction string
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if _, ok := quarterTurns[d]; !ok {
		return "", newError(KindInvalidDirection, fmt.Sprintf("Invalid direction: %q", s))
	}
	return d, nil
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the position lies on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// PowerUps holds the remaining uses of each power-up
type PowerUps struct {
	Undo   int `json:"undo"`
	Swap   int `json:"swap"`
	Delete int `json:"delete"`
}

// Snapshot is a recorded copy of board, score and move count used by undo
type Snapshot struct {
	Board Board `json:"board"`
	Score int   `json:"score"`
	Moves int   `json:"moves"`
}

// GameState represents the complete game state
type GameState struct {
	Board    Board      `json:"board"`
	Score    int        `json:"score"`
	PowerUps PowerUps   `json:"power_ups"`
	History  []Snapshot `json:"history"`
	Moves    int        `json:"moves"`
}

// View is the state snapshot returned to clients
type View struct {
	Board    Board    `json:"board"`
	Score    int      `json:"score"`
	GameOver bool     `json:"game_over"`
	PowerUps PowerUps `json:"power_ups"`
	MaxTile  int      `json:"max_tile"`
	Moves    int      `json:"moves"`
}

// Rules configures a game variant. DefaultRules matches the classic game.
type Rules struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PowerUps        PowerUps `json:"power_ups"`
	HistoryLimit    int      `json:"history_limit"`
	FourProbability float64  `json:"four_probability"`
}
