// Package search evaluates candidate swaps for CPU players. It works on
// scratch copies and never mutates the grid it is given.
package search

import (
	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/match"
	"github.com/remarqUK/sixstones/types"
)

// CascadeBonus is added to a move whose predicted cascade clears at least
// CascadeThreshold pieces.
const (
	CascadeBonus     = 1000
	CascadeThreshold = 4
)

// Score weighs a predicted cascade far above the immediate clear.
func Score(immediate, cascade int) int {
	s := immediate
	if cascade >= CascadeThreshold {
		s += CascadeBonus
	}
	return s
}

// Candidates lists every unordered adjacent pair once, row-major, the right
// neighbour before the upper one.
func Candidates(g *grid.Grid) [][2]types.Pos {
	var out [][2]types.Pos
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			a := types.Pos{X: x, Y: y}
			for _, b := range []types.Pos{{X: x + 1, Y: y}, {X: x, Y: y + 1}} {
				if g.InBounds(b) {
					out = append(out, [2]types.Pos{a, b})
				}
			}
		}
	}
	return out
}

// Evaluate scores swapping a and b. It returns false when the swap would not
// make a match.
func Evaluate(g *grid.Grid, a, b types.Pos) (types.MoveCandidate, bool) {
	if !g.InBounds(a) || !g.InBounds(b) || !grid.Adjacent(a, b) {
		return types.MoveCandidate{}, false
	}
	if g.At(a) == types.Empty || g.At(b) == types.Empty || g.At(a) == g.At(b) {
		return types.MoveCandidate{}, false
	}

	scratch := g.Clone()
	scratch.Swap(a, b)
	cells := match.Union(match.PositionsAt(scratch, a), match.PositionsAt(scratch, b))
	if len(cells) < match.MinRun {
		return types.MoveCandidate{}, false
	}

	immediate := len(cells)
	cascade := cascadeSize(scratch, cells)
	return types.MoveCandidate{
		A:         a,
		B:         b,
		Immediate: immediate,
		Cascade:   cascade,
		Score:     Score(immediate, cascade),
	}, true
}

// cascadeSize clears cells, lets the columns fall and counts every cell in a
// run that touches a piece which moved. Refill is not predicted.
func cascadeSize(g *grid.Grid, cells []types.Pos) int {
	after := g.Clone()
	after.Clear(cells)

	lowest := map[int]int{}
	for _, c := range cells {
		if y, ok := lowest[c.X]; !ok || c.Y < y {
			lowest[c.X] = c.Y
		}
	}
	after.Collapse()

	var runs [][]types.Pos
	for x, y0 := range lowest {
		for y := y0; y < after.Height(); y++ {
			p := types.Pos{X: x, Y: y}
			if after.At(p) != types.Empty {
				runs = append(runs, match.PositionsAt(after, p))
			}
		}
	}
	return len(match.Union(runs...))
}

// All evaluates every candidate and returns the legal ones in scan order.
func All(g *grid.Grid) []types.MoveCandidate {
	var out []types.MoveCandidate
	for _, pair := range Candidates(g) {
		if mc, ok := Evaluate(g, pair[0], pair[1]); ok {
			out = append(out, mc)
		}
	}
	return out
}

// FindBestMove returns the highest scoring legal swap. Ties go to the first
// in scan order. ok is false when no swap makes a match.
func FindBestMove(g *grid.Grid) (best types.MoveCandidate, ok bool) {
	for _, mc := range All(g) {
		if !ok || mc.Score > best.Score {
			best, ok = mc, true
		}
	}
	return best, ok
}
