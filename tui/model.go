package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/power-2048/game/engine"
)

type inputMode int

const (
	modePlay inputMode = iota
	modeSwapFirst
	modeSwapSecond
	modeDelete
)

// engineFactory starts a new game for the given rules
type engineFactory func(rules *engine.Rules) (*engine.GameEngine, error)

// Model is the Bubble Tea model for a game played in the terminal.
// The engine runs in-process; no server is involved.
type Model struct {
	rules   *engine.Rules
	newGame engineFactory
	game    *engine.GameEngine

	keys KeyMap
	help help.Model

	mode    inputMode
	cursor  engine.Position
	first   engine.Position
	message string

	width    int
	height   int
	quitting bool
}

// New creates a model with a fresh game. nil rules selects the classic rules.
func New(rules *engine.Rules) (Model, error) {
	return newModel(rules, engine.NewEngine)
}

func newModel(rules *engine.Rules, factory engineFactory) (Model, error) {
	if rules == nil {
		rules = engine.DefaultRules()
	}

	game, err := factory(rules)
	if err != nil {
		return Model{}, fmt.Errorf("start game: %w", err)
	}

	return Model{
		rules:   rules,
		newGame: factory,
		game:    game,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}, nil
}

// Run plays a game until the user quits
func Run(rules *engine.Rules) error {
	m, err := New(rules)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode == modePlay {
			return m.updatePlay(msg), nil
		}
		return m.updateSelect(msg), nil
	}

	return m, nil
}

// direction maps a key to a move direction
func (m Model) direction(msg tea.KeyMsg) (engine.Direction, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return engine.Up, true
	case key.Matches(msg, m.keys.Down):
		return engine.Down, true
	case key.Matches(msg, m.keys.Left):
		return engine.Left, true
	case key.Matches(msg, m.keys.Right):
		return engine.Right, true
	}
	return "", false
}

func (m Model) updatePlay(msg tea.KeyMsg) Model {
	if d, ok := m.direction(msg); ok {
		before := m.game.GetScore()
		switch {
		case !m.game.Move(string(d)):
			m.message = "Nothing moved"
		case m.game.GetScore() > before:
			m.message = fmt.Sprintf("+%d", m.game.GetScore()-before)
		default:
			m.message = ""
		}
		return m
	}

	switch {
	case key.Matches(msg, m.keys.Undo):
		m.report(m.game.Undo())

	case key.Matches(msg, m.keys.Swap):
		m.mode = modeSwapFirst
		m.message = "Swap: pick the first cell"

	case key.Matches(msg, m.keys.Delete):
		m.mode = modeDelete
		m.message = "Delete: pick a tile"

	case key.Matches(msg, m.keys.NewGame):
		game, err := m.newGame(m.rules)
		if err != nil {
			m.message = err.Error()
			break
		}
		m.game = game
		m.cursor = engine.Position{}
		m.message = "New game"

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m
}

// updateSelect moves the cell cursor while a swap or delete is pending
func (m Model) updateSelect(msg tea.KeyMsg) Model {
	if d, ok := m.direction(msg); ok {
		m.cursor = moveCursor(m.cursor, d)
		return m
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modePlay
		m.message = "Cancelled"

	case key.Matches(msg, m.keys.Select):
		switch m.mode {
		case modeSwapFirst:
			m.first = m.cursor
			m.mode = modeSwapSecond
			m.message = "Swap: pick the second cell"

		case modeSwapSecond:
			m.mode = modePlay
			m.report(m.game.SwapTiles(m.first, m.cursor))

		case modeDelete:
			value := m.game.GetState().Board[m.cursor.Row][m.cursor.Col]
			if value == 0 {
				m.message = "Delete: pick a tile, not an empty cell"
				break
			}
			m.mode = modePlay
			m.report(m.game.DeleteTile(value))
		}
	}

	return m
}

// report shows the outcome of a power-up
func (m *Model) report(message string, err error) {
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = message
}

func moveCursor(p engine.Position, d engine.Direction) engine.Position {
	switch d {
	case engine.Up:
		p.Row--
	case engine.Down:
		p.Row++
	case engine.Left:
		p.Col--
	case engine.Right:
		p.Col++
	}
	p.Row = clamp(p.Row, 0, engine.BoardSize-1)
	p.Col = clamp(p.Col, 0, engine.BoardSize-1)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
