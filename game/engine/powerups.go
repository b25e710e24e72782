package engine

import "fmt"

// Undo reverts to the snapshot before the latest one. It consumes an undo
// power-up but does not record a new snapshot.
func (e *GameEngine) Undo() (string, error) {
	if e.state.PowerUps.Undo <= 0 {
		return "", newError(KindPowerUpExhausted, "No undo power-ups left")
	}
	if len(e.state.History) < 2 {
		return "", ErrNothingToUndo
	}

	// The top snapshot mirrors the current state
	e.state.History = e.state.History[:len(e.state.History)-1]

	prev := e.state.History[len(e.state.History)-1]
	e.state.Board = prev.Board
	e.state.Score = prev.Score
	e.state.Moves = prev.Moves
	e.state.PowerUps.Undo--

	return "Undo successful", nil
}

// SwapTiles exchanges the values of two cells
func (e *GameEngine) SwapTiles(pos1, pos2 Position) (string, error) {
	if e.state.PowerUps.Swap <= 0 {
		return "", newError(KindPowerUpExhausted, "No swap power-ups left")
	}
	if !pos1.InBounds() || !pos2.InBounds() {
		return "", ErrInvalidPosition
	}

	b := &e.state.Board
	b[pos1.Row][pos1.Col], b[pos2.Row][pos2.Col] = b[pos2.Row][pos2.Col], b[pos1.Row][pos1.Col]

	e.state.PowerUps.Swap--
	e.state.pushSnapshot(e.rules.HistoryLimit)
	return "Swap successful", nil
}

// DeleteTile clears every cell holding value. The power-up is only consumed
// when at least one cell matched. 0 matches empty cells, so deleting 0 on a
// board with space is a legal no-op that still spends the power-up.
func (e *GameEngine) DeleteTile(value int) (string, error) {
	if e.state.PowerUps.Delete <= 0 {
		return "", newError(KindPowerUpExhausted, "No delete power-ups left")
	}
	if CountValue(e.state.Board, value) == 0 {
		return "", newError(KindValueNotFound, fmt.Sprintf("No tiles with number %d found", value))
	}

	for i := range e.state.Board {
		for j := range e.state.Board[i] {
			if e.state.Board[i][j] == value {
				e.state.Board[i][j] = 0
			}
		}
	}

	e.state.PowerUps.Delete--
	e.state.pushSnapshot(e.rules.HistoryLimit)
	return fmt.Sprintf("Deleted all %d tiles", value), nil
}
