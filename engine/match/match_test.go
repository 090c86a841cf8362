package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/rng"
	"github.com/remarqUK/sixstones/types"
)

func pos(x, y int) types.Pos { return types.Pos{X: x, Y: y} }

func TestFindAll_BasicHorizontalRun(t *testing.T) {
	g := grid.MustParse(
		"GBY",
		"BYG",
		"RRR",
	)
	assert.Equal(t, []types.Pos{pos(0, 0), pos(1, 0), pos(2, 0)}, FindAll(g))
}

func TestFindAll_NoMatches(t *testing.T) {
	g := grid.MustParse(
		"RGBY",
		"GBYR",
		"RGBY",
	)
	assert.Empty(t, FindAll(g))
}

func TestFindAll_VerticalRunAtEdge(t *testing.T) {
	g := grid.MustParse(
		"RGB",
		"RBG",
		"RGB",
	)
	assert.Equal(t, []types.Pos{pos(0, 0), pos(0, 1), pos(0, 2)}, FindAll(g))
}

func TestFindAll_LongRunIsOneMatch(t *testing.T) {
	g := grid.MustParse(
		"GBYGBY",
		"PPPPPP",
	)
	got := FindAll(g)
	require.Len(t, got, 6)
	groups := Groups(g, got)
	require.Len(t, groups, 1)
	assert.Equal(t, types.Purple, groups[0].Piece)
	assert.Len(t, groups[0].Cells, 6)
}

func TestFindAll_LShapeSharesCorner(t *testing.T) {
	g := grid.MustParse(
		"YGB",
		"YBG",
		"YYY",
	)
	got := FindAll(g)
	assert.Equal(t, []types.Pos{pos(0, 0), pos(1, 0), pos(2, 0), pos(0, 1), pos(0, 2)}, got)

	groups := Groups(g, got)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Cells, 5)
}

func TestFindAll_IgnoresEmpty(t *testing.T) {
	g := grid.MustParse(
		"...",
		"R.R",
	)
	assert.Empty(t, FindAll(g))
}

func TestHasMatchAt(t *testing.T) {
	g := grid.MustParse(
		"GBRY",
		"GYRB",
		"GBRR",
	)
	assert.True(t, HasMatchAt(g, pos(0, 0)))
	assert.True(t, HasMatchAt(g, pos(0, 2)))
	assert.True(t, HasMatchAt(g, pos(2, 1)))
	assert.False(t, HasMatchAt(g, pos(3, 0)), "two-in-a-row is not a match")
	assert.False(t, HasMatchAt(g, pos(1, 1)))
	assert.False(t, HasMatchAt(g, pos(9, 9)), "out of bounds")
}

func TestPositionsAt_UnionsBothAxes(t *testing.T) {
	g := grid.MustParse(
		"BRB",
		"BRB",
		"RRR",
	)
	got := PositionsAt(g, pos(1, 0))
	assert.Equal(t, []types.Pos{pos(0, 0), pos(1, 0), pos(2, 0), pos(1, 1), pos(1, 2)}, got)

	assert.Equal(t, []types.Pos{pos(0, 0), pos(1, 0), pos(2, 0)}, PositionsAt(g, pos(0, 0)))
	assert.Empty(t, PositionsAt(g, pos(0, 1)))
}

func TestGroups_SplitsDisjointSameColour(t *testing.T) {
	g := grid.MustParse(
		"RRRGRRR",
		"GBYBYBG",
	)
	cells := FindAll(g)
	require.Len(t, cells, 6)

	groups := Groups(g, cells)
	require.Len(t, groups, 2)
	assert.Equal(t, []types.Pos{pos(0, 1), pos(1, 1), pos(2, 1)}, groups[0].Cells)
	assert.Equal(t, []types.Pos{pos(4, 1), pos(5, 1), pos(6, 1)}, groups[1].Cells)
	assert.Equal(t, 3, Largest(groups))

	legacy := GroupByPiece(g, cells)
	require.Len(t, legacy, 1)
	assert.Equal(t, types.Red, legacy[0].Piece)
	assert.Equal(t, 6, Largest(legacy))
}

func TestGroups_SeparatesAdjacentColours(t *testing.T) {
	g := grid.MustParse(
		"GGG",
		"RRR",
	)
	groups := Groups(g, FindAll(g))
	require.Len(t, groups, 2)
	assert.Equal(t, types.Red, groups[0].Piece)
	assert.Equal(t, types.Green, groups[1].Piece)
}

func TestUnion_Dedups(t *testing.T) {
	got := Union([]types.Pos{pos(1, 0), pos(0, 0)}, []types.Pos{pos(0, 0), pos(0, 1)})
	assert.Equal(t, []types.Pos{pos(0, 0), pos(1, 0), pos(0, 1)}, got)
	assert.Equal(t, 0, Largest(nil))
}

// Every cell FindAll reports must sit in a run of at least three on some
// axis, and every such cell must be reported.
func TestFindAll_MatchesBruteForceOnRandomGrids(t *testing.T) {
	r := rng.New(7)
	for trial := 0; trial < 200; trial++ {
		g := grid.New(6, 5)
		for y := 0; y < 5; y++ {
			for x := 0; x < 6; x++ {
				g.Set(pos(x, y), types.Piece(r.Roll(3)))
			}
		}

		want := map[types.Pos]bool{}
		for y := 0; y < 5; y++ {
			for x := 0; x < 6; x++ {
				if bruteRun(g, x, y, 1, 0) >= MinRun || bruteRun(g, x, y, 0, 1) >= MinRun {
					want[pos(x, y)] = true
				}
			}
		}

		got := FindAll(g)
		require.Len(t, got, len(want), "trial %d grid:\n%s", trial, g)
		for _, p := range got {
			require.True(t, want[p], "trial %d: %v reported but not in a run", trial, p)
			require.True(t, HasMatchAt(g, p))
		}
	}
}

func bruteRun(g *grid.Grid, x, y, dx, dy int) int {
	piece := g.At(pos(x, y))
	n := 1
	for i := 1; g.At(pos(x+i*dx, y+i*dy)) == piece; i++ {
		n++
	}
	for i := 1; g.At(pos(x-i*dx, y-i*dy)) == piece; i++ {
		n++
	}
	return n
}
