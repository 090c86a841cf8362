package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/remarqUK/sixstones/engine"
	"github.com/remarqUK/sixstones/engine/grid"
)

// renderBoardPanel draws the settled board with coloured gems inside a
// bordered panel titled with the mode name.
func renderBoardPanel(title string, g *grid.Grid) string {
	rows := engine.RenderBoard(g)
	styled := make([]string, 0, len(rows)+2)
	styled = append(styled, styleHighlight.Render(title), "")
	for i, row := range rows {
		if i == len(rows)-1 {
			styled = append(styled, styleCoord.Render(row))
			continue
		}
		styled = append(styled, styledBoardRow(row))
	}
	return styleBoardPanel.Render(lipgloss.JoinVertical(lipgloss.Left, styled...))
}

// boardPanelWidth is the rendered width of the panel for g, so the
// narrative can take the rest of the screen.
func boardPanelWidth(title string, g *grid.Grid) int {
	return lipgloss.Width(renderBoardPanel(title, g))
}
