package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHighlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleCoord = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleBoardPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// gemColors maps each piece to its terminal colour.
var gemColors = map[types.Piece]lipgloss.Color{
	types.Red:    lipgloss.Color("196"),
	types.Blue:   lipgloss.Color("33"),
	types.Green:  lipgloss.Color("40"),
	types.Yellow: lipgloss.Color("226"),
	types.Purple: lipgloss.Color("129"),
	types.White:  lipgloss.Color("255"),
	types.Skull:  lipgloss.Color("245"),
}

// gemStyle returns the style for one piece. Empty cells are dim.
func gemStyle(p types.Piece) lipgloss.Style {
	c, ok := gemColors[p]
	if !ok {
		return styleCoord
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHighlight
	kindBoard
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isBoardRow(line):
		return kindBoard
	case strings.HasPrefix(line, "You can only"),
		strings.HasPrefix(line, "There is nothing"),
		strings.HasPrefix(line, "That cell"),
		strings.HasPrefix(line, "I don't understand"),
		strings.HasPrefix(line, "It is "),
		strings.HasPrefix(line, "swap what?"),
		strings.Contains(line, "is not a cell"):
		return kindError
	case strings.Contains(line, "plays again"),
		strings.HasPrefix(line, "Game over"),
		strings.HasPrefix(line, "Cascade"),
		strings.HasSuffix(line, "wins."):
		return kindHighlight
	default:
		return kindNarrative
	}
}

// isBoardRow reports whether line is a rendered board row: a right-aligned
// row number followed by single-letter cells.
func isBoardRow(line string) bool {
	if len(line) < 4 || line[2] != ' ' {
		return false
	}
	label := strings.TrimSpace(line[:2])
	if label == "" {
		return false
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	for i, r := range line[2:] {
		if i%2 == 0 {
			if r != ' ' {
				return false
			}
		} else if !strings.ContainsRune("RBGYPWS.", r) {
			return false
		}
	}
	return true
}

// styledBoardRow colours the cells of a rendered board row.
func styledBoardRow(line string) string {
	var sb strings.Builder
	sb.WriteString(styleCoord.Render(line[:2]))
	for i := 2; i < len(line); i++ {
		c := line[i]
		if c == ' ' {
			sb.WriteByte(' ')
			continue
		}
		p, _ := grid.ParseLetter(rune(c))
		sb.WriteString(gemStyle(p).Render(string(c)))
	}
	return sb.String()
}

// styledPlayerInput renders the echoed player input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
