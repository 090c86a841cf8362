package engine

import (
	"strings"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/types"
)

// RenderBoard draws g as text with column letters along the bottom and row
// numbers down the side, top row first.
func RenderBoard(g *grid.Grid) []string {
	lines := make([]string, 0, g.Height()+1)
	for y := g.Height() - 1; y >= 0; y-- {
		var sb strings.Builder
		sb.WriteString(rowLabel(y + 1))
		for x := 0; x < g.Width(); x++ {
			sb.WriteByte(' ')
			sb.WriteByte(grid.Letter(g.At(types.Pos{X: x, Y: y})))
		}
		lines = append(lines, sb.String())
	}
	lines = append(lines, "   "+columnLabels(g.Width()))
	return lines
}

func rowLabel(n int) string {
	if n < 10 {
		return " " + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func columnLabels(width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		if x > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte('a' + x))
	}
	return sb.String()
}
