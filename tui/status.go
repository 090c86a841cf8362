package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/remarqUK/sixstones/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// mode, the player to move, the scores and the turn count.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	left := " " + m.engine.Mode().Name
	switch {
	case state.GetFlag(s, "game_over"):
		left += " | Game over"
	default:
		if p := state.CurrentPlayer(s); p != nil {
			left += " | To move: " + p.Name
		}
	}

	scores := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		scores = append(scores, fmt.Sprintf("%s %d", p.Name, p.Score))
	}
	right := fmt.Sprintf("%s | T:%d ", strings.Join(scores, "  "), s.TurnCount)

	// Drop the scores when they do not fit.
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > m.width {
		right = fmt.Sprintf("T:%d ", s.TurnCount)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
