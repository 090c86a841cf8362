package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/types"
)

func pos(x, y int) types.Pos { return types.Pos{X: x, Y: y} }

func TestScore(t *testing.T) {
	tests := []struct {
		immediate, cascade, want int
	}{
		{3, 0, 3},
		{5, 3, 5},
		{3, 4, 1003},
		{4, 7, 1004},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.immediate, tt.cascade), "Score(%d, %d)", tt.immediate, tt.cascade)
	}
}

func TestCandidates_ScanOrder(t *testing.T) {
	g := grid.New(3, 3)
	c := Candidates(g)

	require.Len(t, c, 12)
	assert.Equal(t, [2]types.Pos{pos(0, 0), pos(1, 0)}, c[0])
	assert.Equal(t, [2]types.Pos{pos(0, 0), pos(0, 1)}, c[1])
	assert.Equal(t, [2]types.Pos{pos(1, 0), pos(2, 0)}, c[2])
	assert.Equal(t, [2]types.Pos{pos(2, 0), pos(2, 1)}, c[4])
	assert.Equal(t, [2]types.Pos{pos(1, 2), pos(2, 2)}, c[11])
}

func TestEvaluate_ImmediateOnly(t *testing.T) {
	g := grid.MustParse(
		"GYB",
		"BGR",
		"RRB",
	)
	mc, ok := Evaluate(g, pos(2, 0), pos(2, 1))
	require.True(t, ok)
	assert.Equal(t, 3, mc.Immediate)
	assert.Equal(t, 0, mc.Cascade)
	assert.Equal(t, 3, mc.Score)

	_, ok = Evaluate(g, pos(0, 1), pos(1, 1))
	assert.False(t, ok)
	_, ok = Evaluate(g, pos(0, 0), pos(1, 0))
	assert.False(t, ok, "identical pieces never match by swapping")
	_, ok = Evaluate(g, pos(0, 0), pos(1, 1))
	assert.False(t, ok, "diagonal")
	_, ok = Evaluate(g, pos(2, 0), pos(3, 0))
	assert.False(t, ok, "off the board")
}

func TestEvaluate_PredictsCascade(t *testing.T) {
	// Clearing RRR on row 1 drops W pieces into a five-piece group.
	g := grid.MustParse(
		"GWPG",
		"YWWB",
		"RRBW",
		"PWRY",
	)
	before := g.Clone()

	mc, ok := Evaluate(g, pos(2, 0), pos(2, 1))
	require.True(t, ok)
	assert.Equal(t, 3, mc.Immediate)
	assert.Equal(t, 5, mc.Cascade)
	assert.Equal(t, 1003, mc.Score)
	assert.True(t, g.Equal(before), "evaluation must not touch the grid")
}

func TestEvaluate_CascadeCountsDisjointRuns(t *testing.T) {
	// Clearing RRR on row 0 drops BBB into row 1 and PPP into row 2.
	g := grid.MustParse(
		"WPPGYW",
		"YBBPGY",
		"GYWBWG",
		"RRYRWG",
	)
	mc, ok := Evaluate(g, pos(2, 0), pos(3, 0))
	require.True(t, ok)
	assert.Equal(t, 3, mc.Immediate)
	assert.Equal(t, 6, mc.Cascade)
	assert.Equal(t, 1003, mc.Score)
}

func TestAll_ScanOrder(t *testing.T) {
	g := grid.MustParse(
		"GWPG",
		"YWWB",
		"RRBW",
		"PWRY",
	)
	moves := All(g)
	require.Len(t, moves, 3)
	assert.Equal(t, pos(1, 0), moves[0].A)
	assert.Equal(t, pos(1, 1), moves[0].B)
	assert.Equal(t, pos(2, 0), moves[1].A)
	assert.Equal(t, pos(3, 1), moves[2].A)
	assert.Equal(t, pos(3, 2), moves[2].B)
}

func TestFindBestMove_CascadeDominates(t *testing.T) {
	g := grid.MustParse(
		"GWPG",
		"YWWB",
		"RRBW",
		"PWRY",
	)
	best, ok := FindBestMove(g)
	require.True(t, ok)
	assert.Equal(t, pos(2, 0), best.A)
	assert.Equal(t, pos(2, 1), best.B)
	assert.Equal(t, 1003, best.Score)
}

func TestFindBestMove_TieGoesToFirst(t *testing.T) {
	g := grid.MustParse(
		"RRBGGY",
		"YPRWYG",
	)
	moves := All(g)
	require.Len(t, moves, 2)
	assert.Equal(t, moves[0].Score, moves[1].Score)

	best, ok := FindBestMove(g)
	require.True(t, ok)
	assert.Equal(t, pos(2, 0), best.A)
	assert.Equal(t, pos(2, 1), best.B)
}

func TestFindBestMove_NoMove(t *testing.T) {
	g := grid.MustParse(
		"RGB",
		"GBR",
	)
	_, ok := FindBestMove(g)
	assert.False(t, ok)
}
