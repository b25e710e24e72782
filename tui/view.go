package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/power-2048/game/engine"
)

const cellWidth = 7

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	gameOverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(3).
			Align(lipgloss.Center, lipgloss.Center).
			Margin(0, 1, 0, 0)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// tileColors maps tile values to background colors (ANSI 256)
var tileColors = map[int]string{
	0:    "236",
	2:    "252",
	4:    "223",
	8:    "215",
	16:   "209",
	32:   "203",
	64:   "196",
	128:  "229",
	256:  "228",
	512:  "227",
	1024: "226",
	2048: "220",
}

func tileStyle(value int) lipgloss.Style {
	bg, ok := tileColors[value]
	if !ok {
		bg = "93"
	}
	fg := "235"
	if value == 0 || value >= 4096 {
		fg = "255"
	}
	return cellStyle.
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg))
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	view := m.game.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("2048"))
	b.WriteString("  ")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Score: %d  Max: %d  Moves: %d", view.Score, view.MaxTile, view.Moves)))
	b.WriteString("\n")

	b.WriteString(boardStyle.Render(m.renderBoard(view.Board)))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Undo %d  Swap %d  Delete %d  (%s)",
		view.PowerUps.Undo, view.PowerUps.Swap, view.PowerUps.Delete, m.rules.Name)))
	b.WriteString("\n")

	if view.GameOver {
		b.WriteString(gameOverStyle.Render("GAME OVER"))
		b.WriteString(infoStyle.Render("  undo, swap or delete may still save it"))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderBoard(board engine.Board) string {
	rows := make([]string, 0, engine.BoardSize)
	for r := 0; r < engine.BoardSize; r++ {
		cells := make([]string, 0, engine.BoardSize)
		for c := 0; c < engine.BoardSize; c++ {
			cells = append(cells, m.renderCell(engine.Position{Row: r, Col: c}, board[r][c]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCell(pos engine.Position, value int) string {
	text := ""
	if value != 0 {
		text = strconv.Itoa(value)
	}

	style := tileStyle(value)
	if m.mode != modePlay {
		switch {
		case pos == m.cursor:
			style = style.Reverse(true).Bold(true)
			if text == "" {
				text = "·"
			}
		case m.mode == modeSwapSecond && pos == m.first:
			style = style.Underline(true).Bold(true)
		}
	}

	return style.Render(text)
}
