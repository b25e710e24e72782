package tui

import (
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/power-2048/game/engine"
)

func seededFactory(rules *engine.Rules) (*engine.GameEngine, error) {
	return engine.NewEngineWithRand(rules, rand.New(rand.NewSource(7)))
}

func newTestModel(t *testing.T, board engine.Board) Model {
	t.Helper()
	m, err := newModel(engine.DefaultRules(), seededFactory)
	require.NoError(t, err)

	state := m.game.GetState()
	state.Board = board
	state.Score = 0
	state.History = []engine.Snapshot{{Board: board}}
	require.NoError(t, m.game.SetState(state))
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestNewDefaultsToClassicRules(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, "classic", m.rules.Name)
	assert.Equal(t, 2, engine.TileCount(m.game.GetState().Board))
}

func TestNewRejectsInvalidRules(t *testing.T) {
	_, err := New(&engine.Rules{Name: "broken", HistoryLimit: -1})
	assert.Error(t, err)
}

func TestMoveMergesAndReportsScore(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 2, 0, 0}})

	m = press(t, m, keyLeft)

	state := m.game.GetState()
	assert.Equal(t, 4, state.Board[0][0])
	assert.Equal(t, 4, state.Score)
	assert.Equal(t, "+4", m.message)
	assert.Equal(t, 2, engine.TileCount(state.Board), "merged tile plus spawned tile")
}

func TestWASDMoves(t *testing.T) {
	m := newTestModel(t, engine.Board{{0, 0, 0, 2}})

	m = press(t, m, runeKey('a'))
	assert.Equal(t, 2, m.game.GetState().Board[0][0])
	assert.Empty(t, m.message)
}

func TestNoOpMove(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 0, 0, 0}})

	m = press(t, m, keyLeft)

	assert.Equal(t, "Nothing moved", m.message)
	assert.Equal(t, 1, engine.TileCount(m.game.GetState().Board))
}

func TestUndo(t *testing.T) {
	board := engine.Board{{2, 2, 0, 0}}
	m := newTestModel(t, board)

	m = press(t, m, runeKey('u'))
	assert.Equal(t, "No moves to undo", m.message)

	m = press(t, m, keyLeft, runeKey('u'))
	assert.Equal(t, "Undo successful", m.message)
	assert.Equal(t, board, m.game.GetState().Board)
	assert.Equal(t, 0, m.game.GetScore())
	assert.Equal(t, 2, m.game.GetPowerUps().Undo)
}

func TestSwapSelection(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 8, 0, 0}})

	m = press(t, m, runeKey('e'))
	assert.Equal(t, modeSwapFirst, m.mode)

	// pick (0,0) then (0,1)
	m = press(t, m, keyEnter)
	assert.Equal(t, modeSwapSecond, m.mode)
	m = press(t, m, keyRight, keyEnter)

	assert.Equal(t, modePlay, m.mode)
	assert.Equal(t, "Swap successful", m.message)
	state := m.game.GetState()
	assert.Equal(t, 8, state.Board[0][0])
	assert.Equal(t, 2, state.Board[0][1])
	assert.Equal(t, 2, state.PowerUps.Swap)
}

func TestSelectionKeysDoNotMove(t *testing.T) {
	board := engine.Board{{0, 0, 0, 0}, {4, 0, 0, 0}}
	m := newTestModel(t, board)

	m = press(t, m, runeKey('x'), keyDown, keyDown)

	assert.Equal(t, engine.Position{Row: 2, Col: 0}, m.cursor)
	assert.Equal(t, board, m.game.GetState().Board)
}

func TestDeleteSelection(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 4, 2, 0}, {0, 2, 0, 0}})

	m = press(t, m, runeKey('x'), keyEnter)

	assert.Equal(t, modePlay, m.mode)
	assert.Equal(t, "Deleted all 2 tiles", m.message)
	assert.Equal(t, 0, engine.CountValue(m.game.GetState().Board, 2))
	assert.Equal(t, 4, m.game.GetState().Board[0][1])
	assert.Equal(t, 2, m.game.GetPowerUps().Delete)
}

func TestDeleteEmptyCell(t *testing.T) {
	m := newTestModel(t, engine.Board{{0, 4, 0, 0}})

	m = press(t, m, runeKey('x'), keyEnter)

	assert.Equal(t, modeDelete, m.mode, "still picking")
	assert.Equal(t, "Delete: pick a tile, not an empty cell", m.message)
	assert.Equal(t, 3, m.game.GetPowerUps().Delete)

	m = press(t, m, keyRight, keyEnter)
	assert.Equal(t, modePlay, m.mode)
	assert.Equal(t, "Deleted all 4 tiles", m.message)
	assert.Equal(t, 2, m.game.GetPowerUps().Delete)
}

func TestCancelSelection(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 0, 0, 0}})

	m = press(t, m, runeKey('e'), keyEsc)

	assert.Equal(t, modePlay, m.mode)
	assert.Equal(t, "Cancelled", m.message)
	assert.Equal(t, 3, m.game.GetPowerUps().Swap)
}

func TestNewGameKey(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 2, 0, 0}})
	m = press(t, m, keyLeft)
	require.Equal(t, 4, m.game.GetScore())

	m = press(t, m, runeKey('n'))

	assert.Equal(t, "New game", m.message)
	assert.Equal(t, 0, m.game.GetScore())
	assert.Equal(t, 2, engine.TileCount(m.game.GetState().Board))
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, engine.Board{})

	next, cmd := m.Update(runeKey('q'))

	assert.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}

func TestView(t *testing.T) {
	m := newTestModel(t, engine.Board{{2, 2, 0, 0}, {0, 0, 1024, 0}})
	m = press(t, m, keyLeft)

	out := m.View()
	assert.Contains(t, out, "Score: 4")
	assert.Contains(t, out, "1024")
	assert.Contains(t, out, "Undo 3  Swap 3  Delete 3")
	assert.NotContains(t, out, "GAME OVER")
}

func TestViewGameOver(t *testing.T) {
	m := newTestModel(t, engine.Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})

	assert.True(t, strings.Contains(m.View(), "GAME OVER"))
}

func TestMoveCursorClamps(t *testing.T) {
	assert.Equal(t, engine.Position{}, moveCursor(engine.Position{}, engine.Up))
	assert.Equal(t, engine.Position{}, moveCursor(engine.Position{}, engine.Left))

	corner := engine.Position{Row: engine.BoardSize - 1, Col: engine.BoardSize - 1}
	assert.Equal(t, corner, moveCursor(corner, engine.Down))
	assert.Equal(t, corner, moveCursor(corner, engine.Right))
	assert.Equal(t, engine.Position{Row: 2, Col: 3}, moveCursor(corner, engine.Up))
}
