package selfplay

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Title: "Bench", Mode: "small"},
		Modes: map[string]types.ModeDef{
			"small": {ID: "small", Width: 6, Height: 6, Pieces: 5, Spawn: true, Regenerate: true},
		},
		Players: []types.PlayerDef{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
		},
	}
}

func TestRun_PlaysCappedGames(t *testing.T) {
	defs := testDefs()
	rep, err := Run(context.Background(), Config{Defs: defs, Games: 4, Seed: 100, MaxTurns: 20})
	require.NoError(t, err)

	require.Len(t, rep.Games, 4)
	for i, g := range rep.Games {
		assert.Equal(t, int64(100+i), g.Seed)
		assert.LessOrEqual(t, g.Turns, 20)
		assert.Greater(t, g.Turns, 0)
		assert.Len(t, g.Scores, 2)
		assert.NotEmpty(t, g.Reason)
		assert.GreaterOrEqual(t, g.MaxChain, 1, "every committed turn clears at least one group")
	}
	assert.Equal(t, 4, rep.Summary.Games)
	wins := 0
	for _, n := range rep.Summary.Wins {
		wins += n
	}
	assert.Equal(t, 4, wins+rep.Summary.Draws)

	// The caller's definitions are untouched.
	assert.False(t, defs.Players[0].CPU)
	assert.Equal(t, 0, defs.Modes["small"].MaxTurns)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := Config{Defs: testDefs(), Games: 3, Seed: 7, MaxTurns: 15}
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_DefaultTurnCap(t *testing.T) {
	defs, err := cpuDefs(testDefs(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTurns, defs.Modes["small"].MaxTurns)
	assert.True(t, defs.Players[0].CPU)
	assert.True(t, defs.Players[1].CPU)

	src := testDefs()
	m := src.Modes["small"]
	m.MaxTurns = 12
	src.Modes["small"] = m
	defs, err = cpuDefs(src, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, defs.Modes["small"].MaxTurns, "a mode's own limit is kept")
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), Config{Games: 1})
	assert.Error(t, err)

	defs := testDefs()
	defs.Mode = "nope"
	_, err = Run(context.Background(), Config{Defs: defs, Games: 1})
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Run(ctx, Config{Defs: testDefs(), Games: 5, MaxTurns: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Games)
	assert.Equal(t, 0, rep.Summary.Games)
}

func TestSummarize(t *testing.T) {
	games := []GameStats{
		{Turns: 10, Scores: []int{10, 20}, Winner: "b", MaxChain: 2, Regenerations: 1},
		{Turns: 20, Scores: []int{30, 40}, MaxChain: 4},
	}
	s := Summarize(games)

	assert.Equal(t, 2, s.Games)
	assert.InDelta(t, 25.0, s.MeanScore, 1e-9)
	assert.InDelta(t, math.Sqrt(500.0/3.0), s.StdDevScore, 1e-9)
	assert.Equal(t, 40.0, s.MaxScore)
	assert.Equal(t, 15.0, s.MeanTurns)
	assert.Equal(t, 3.0, s.MeanChain)
	assert.Equal(t, 4.0, s.MaxChain)
	assert.Equal(t, 0.5, s.MeanRegenerations)
	assert.Equal(t, map[string]int{"b": 1}, s.Wins)
	assert.Equal(t, 1, s.Draws)
}

func TestSummarize_Edges(t *testing.T) {
	assert.Equal(t, 0, Summarize(nil).Games)

	one := Summarize([]GameStats{{Turns: 3, Scores: []int{9}}})
	assert.Equal(t, 9.0, one.MeanScore)
	assert.Equal(t, 0.0, one.StdDevScore)
}

func TestReport_Lines(t *testing.T) {
	games := []GameStats{{Seed: 1, Turns: 5, Scores: []int{3, 6}, Winner: "b", Reason: "turn_limit", MaxChain: 2}}
	rep := Report{Games: games, Summary: Summarize(games)}

	joined := strings.Join(rep.Lines(), "\n")
	assert.Contains(t, joined, "game   1")
	assert.Contains(t, joined, "b (turn_limit)")
	assert.Contains(t, joined, "games: 1  draws: 0")
	assert.Contains(t, joined, "cascade depth: mean 2.00  max 2")
}
