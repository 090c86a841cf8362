// Package match finds runs of three or more identical pieces on a grid.
// It only reads the grid.
package match

import (
	"sort"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/types"
)

// MinRun is the shortest run that counts as a match.
const MinRun = 3

var (
	horizontal = [2]types.Pos{{X: -1}, {X: 1}}
	vertical   = [2]types.Pos{{Y: -1}, {Y: 1}}
)

// run collects the contiguous cells through p that hold the same piece as p,
// walking both directions along one axis. Every probe is bounds-checked by
// grid.At, which returns Empty off the board.
func run(g *grid.Grid, p types.Pos, axis [2]types.Pos) []types.Pos {
	piece := g.At(p)
	if piece == types.Empty {
		return nil
	}
	cells := []types.Pos{p}
	for _, d := range axis {
		q := types.Pos{X: p.X + d.X, Y: p.Y + d.Y}
		for g.At(q) == piece {
			cells = append(cells, q)
			q = types.Pos{X: q.X + d.X, Y: q.Y + d.Y}
		}
	}
	return cells
}

// HasMatchAt reports whether the cell at p is part of a horizontal or
// vertical run of at least MinRun.
func HasMatchAt(g *grid.Grid, p types.Pos) bool {
	return len(run(g, p, horizontal)) >= MinRun || len(run(g, p, vertical)) >= MinRun
}

// PositionsAt returns every cell matched through p: the horizontal run if it
// is long enough, unioned with the vertical run if it is long enough.
// The result is sorted row-major and is empty when p is not matched.
func PositionsAt(g *grid.Grid, p types.Pos) []types.Pos {
	seen := map[types.Pos]bool{}
	var out []types.Pos
	for _, axis := range [][2]types.Pos{horizontal, vertical} {
		cells := run(g, p, axis)
		if len(cells) < MinRun {
			continue
		}
		for _, c := range cells {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sortPositions(out)
	return out
}

// Union merges position sets, dropping duplicates. Sorted row-major.
func Union(sets ...[]types.Pos) []types.Pos {
	seen := map[types.Pos]bool{}
	var out []types.Pos
	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sortPositions(out)
	return out
}

// FindAll returns every matched cell on the grid exactly once, sorted
// row-major. Runs longer than MinRun are a single match; crossing runs
// (L, T, +) share their common cell.
func FindAll(g *grid.Grid) []types.Pos {
	w, h := g.Width(), g.Height()
	marked := make([]bool, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; {
			n := runLength(g, types.Pos{X: x, Y: y}, types.Pos{X: 1})
			if n >= MinRun {
				for i := 0; i < n; i++ {
					marked[y*w+x+i] = true
				}
			}
			x += n
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; {
			n := runLength(g, types.Pos{X: x, Y: y}, types.Pos{Y: 1})
			if n >= MinRun {
				for i := 0; i < n; i++ {
					marked[(y+i)*w+x] = true
				}
			}
			y += n
		}
	}

	var out []types.Pos
	for i, m := range marked {
		if m {
			out = append(out, types.Pos{X: i % w, Y: i / w})
		}
	}
	return out
}

// runLength counts identical pieces starting at p and walking along d.
// Empty cells count as runs of length one so scans always advance.
func runLength(g *grid.Grid, p types.Pos, d types.Pos) int {
	piece := g.At(p)
	if piece == types.Empty {
		return 1
	}
	n := 1
	q := types.Pos{X: p.X + d.X, Y: p.Y + d.Y}
	for g.At(q) == piece {
		n++
		q = types.Pos{X: q.X + d.X, Y: q.Y + d.Y}
	}
	return n
}

// Groups splits a matched set into contiguous same-piece components.
// Groups are ordered by their first cell in row-major order.
func Groups(g *grid.Grid, cells []types.Pos) []types.MatchGroup {
	in := make(map[types.Pos]bool, len(cells))
	for _, c := range cells {
		in[c] = true
	}
	sorted := append([]types.Pos(nil), cells...)
	sortPositions(sorted)

	visited := map[types.Pos]bool{}
	var groups []types.MatchGroup
	for _, start := range sorted {
		if visited[start] {
			continue
		}
		piece := g.At(start)
		group := types.MatchGroup{Piece: piece}
		stack := []types.Pos{start}
		visited[start] = true
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group.Cells = append(group.Cells, c)
			for _, d := range [...]types.Pos{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
				n := types.Pos{X: c.X + d.X, Y: c.Y + d.Y}
				if in[n] && !visited[n] && g.At(n) == piece {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
		sortPositions(group.Cells)
		groups = append(groups, group)
	}
	return groups
}

// GroupByPiece groups a matched set by piece kind only, so two disjoint
// matches of the same colour form one group.
func GroupByPiece(g *grid.Grid, cells []types.Pos) []types.MatchGroup {
	sorted := append([]types.Pos(nil), cells...)
	sortPositions(sorted)

	index := map[types.Piece]int{}
	var groups []types.MatchGroup
	for _, c := range sorted {
		piece := g.At(c)
		i, ok := index[piece]
		if !ok {
			i = len(groups)
			index[piece] = i
			groups = append(groups, types.MatchGroup{Piece: piece})
		}
		groups[i].Cells = append(groups[i].Cells, c)
	}
	return groups
}

// Largest returns the size of the biggest group, or 0.
func Largest(groups []types.MatchGroup) int {
	best := 0
	for _, gr := range groups {
		if len(gr.Cells) > best {
			best = len(gr.Cells)
		}
	}
	return best
}

func sortPositions(ps []types.Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
