package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/match"
	"github.com/remarqUK/sixstones/engine/rng"
	"github.com/remarqUK/sixstones/types"
)

func pos(x, y int) types.Pos { return types.Pos{X: x, Y: y} }

func eventTypes(evts []types.Event) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.Type)
	}
	return out
}

// staticMode never spawns, so cascades are fully determined by the fixture.
func staticMode() types.ModeDef {
	return types.ModeDef{ID: "static", Pieces: 7, Spawn: false, Regenerate: false}
}

// cascadeGrid: swapping (2,1) with (2,0) makes RRR on row 1. After the fall,
// column 1 and row 1 form a five-piece W group.
func cascadeGrid() *grid.Grid {
	return grid.MustParse(
		"GWPG",
		"YWWB",
		"RRBW",
		"PWRY",
	)
}

func TestNew_GeneratesPlayableBoard(t *testing.T) {
	modes := []types.ModeDef{
		{ID: "classic", Spawn: true, Regenerate: true},
		{ID: "small", Width: 5, Height: 5, Pieces: 4, Spawn: true, Regenerate: true},
		{ID: "skulls", Spawn: true, Regenerate: true, BottomRowScoring: true, ScoringPiece: types.Skull},
	}
	for _, mode := range modes {
		for seed := int64(1); seed <= 25; seed++ {
			b := New(mode, rng.New(seed), nil)
			g := b.Grid()

			require.True(t, g.Full(), "mode %s seed %d", mode.ID, seed)
			require.Empty(t, match.FindAll(g), "mode %s seed %d:\n%s", mode.ID, seed, g)
			require.True(t, b.HasAvailableMove(), "mode %s seed %d", mode.ID, seed)
			assert.Equal(t, Idle, b.Phase())

			if mode.BottomRowScoring {
				for x := 0; x < g.Width(); x++ {
					require.NotEqual(t, types.Skull, g.At(pos(x, 0)), "skull on row 0, seed %d", seed)
				}
			}
		}
	}
}

func TestNew_SameSeedSameBoard(t *testing.T) {
	mode := types.ModeDef{ID: "classic", Spawn: true, Regenerate: true}
	a := New(mode, rng.New(99), nil)
	b := New(mode, rng.New(99), nil)
	assert.True(t, a.Grid().Equal(b.Grid()))
}

func TestNormalize_Defaults(t *testing.T) {
	m := Normalize(types.ModeDef{Pieces: 2, BottomRowScoring: true})
	assert.Equal(t, 8, m.Width)
	assert.Equal(t, 8, m.Height)
	assert.Equal(t, 3, m.Pieces)
	assert.Equal(t, 4, m.BonusMatch)
	assert.Equal(t, 100, m.MaxRegenerations)
	assert.Equal(t, types.Skull, m.ScoringPiece)
	assert.NotNil(t, m.Points)
}

func TestSwap_NoMatchIsReverted(t *testing.T) {
	g := grid.MustParse(
		"RGBY",
		"GBYR",
		"RGBY",
	)
	b := Restore(staticMode(), g, rng.New(1), nil)
	var matched int
	b.Subscribe(types.EventPiecesMatched, func(types.Event) { matched++ })

	out := b.SwapPieces(pos(0, 0), pos(1, 0))

	assert.True(t, out.Accepted())
	assert.True(t, out.Reverted)
	assert.False(t, out.Committed())
	assert.Equal(t, []string{types.EventSwapReverted}, eventTypes(out.Events))
	assert.Zero(t, matched)
	assert.True(t, b.Grid().Equal(g), "grid must be identical after a reverted swap")
	assert.Equal(t, Idle, b.Phase())
	assert.False(t, b.Processing())
}

func TestSwap_ReversibilityOnGeneratedBoards(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		b := New(types.ModeDef{ID: "classic", Spawn: true, Regenerate: true}, rng.New(seed), nil)
		before := b.Grid()

		// Find the first swap that does not match and play it.
		probe := before.Clone()
		var a, c types.Pos
		found := false
		for y := 0; y < probe.Height() && !found; y++ {
			for x := 0; x+1 < probe.Width() && !found; x++ {
				a, c = pos(x, y), pos(x+1, y)
				probe.Swap(a, c)
				found = !match.HasMatchAt(probe, a) && !match.HasMatchAt(probe, c)
				probe.Swap(a, c)
			}
		}
		require.True(t, found)

		out := b.SwapPieces(a, c)
		require.True(t, out.Reverted)
		require.True(t, b.Grid().Equal(before), "seed %d", seed)
	}
}

func TestSwap_Rejections(t *testing.T) {
	g := cascadeGrid()
	g.Set(pos(3, 3), types.Empty)

	tests := []struct {
		name string
		a, b types.Pos
		want Reason
	}{
		{"out of bounds", pos(3, 0), pos(4, 0), ReasonOutOfBounds},
		{"negative", pos(0, 0), pos(0, -1), ReasonOutOfBounds},
		{"diagonal", pos(0, 0), pos(1, 1), ReasonNotAdjacent},
		{"same cell", pos(1, 1), pos(1, 1), ReasonNotAdjacent},
		{"far apart", pos(0, 0), pos(2, 0), ReasonNotAdjacent},
		{"empty cell", pos(3, 3), pos(3, 2), ReasonEmptyCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Restore(staticMode(), g, rng.New(1), nil)
			out := b.SwapPieces(tt.a, tt.b)

			assert.Equal(t, tt.want, out.Rejected)
			assert.False(t, out.Accepted())
			require.Len(t, out.Events, 1)
			assert.Equal(t, types.EventSwapRejected, out.Events[0].Type)
			assert.Equal(t, string(tt.want), out.Events[0].Data["reason"])
			assert.True(t, b.Grid().Equal(g))
		})
	}
}

func TestSwap_RejectedWhenGameOver(t *testing.T) {
	b := Restore(staticMode(), cascadeGrid(), rng.New(1), nil)
	b.SetGameOver(true)
	require.True(t, b.GameOver())

	out := b.SwapPieces(pos(2, 1), pos(2, 0))
	assert.Equal(t, ReasonGameOver, out.Rejected)
	assert.True(t, b.Grid().Equal(cascadeGrid()))

	b.SetGameOver(false)
	out = b.SwapPieces(pos(2, 1), pos(2, 0))
	assert.True(t, out.Committed())
}

func TestSwap_RejectedWhileProcessing(t *testing.T) {
	b := Restore(staticMode(), cascadeGrid(), rng.New(1), nil)

	var inner Outcome
	var seen *grid.Grid
	b.Subscribe(types.EventSwapCommitted, func(types.Event) {
		inner = b.SwapPieces(pos(0, 0), pos(0, 1))
		seen = b.Grid()
	})

	out := b.SwapPieces(pos(2, 1), pos(2, 0))

	assert.True(t, out.Committed())
	assert.Equal(t, ReasonBusy, inner.Rejected)
	// Readers only see settled grids: mid-resolution, that is the pre-swap grid.
	assert.True(t, seen.Equal(cascadeGrid()))
}

func TestSwap_CascadeChain(t *testing.T) {
	b := Restore(staticMode(), cascadeGrid(), rng.New(1), nil)

	var groups [][]types.MatchGroup
	b.Subscribe(types.EventPiecesMatched, func(e types.Event) {
		groups = append(groups, e.Data["groups"].([]types.MatchGroup))
		assert.Equal(t, true, e.Data["scored"])
	})
	var turnLargest int
	b.Subscribe(types.EventTurnEnded, func(e types.Event) {
		turnLargest = e.Data["largest"].(int)
	})

	out := b.SwapPieces(pos(2, 1), pos(2, 0))

	require.True(t, out.Committed())
	assert.Equal(t, 2, out.Chain)
	assert.Equal(t, 8, out.Cleared)
	assert.Equal(t, 5, out.Largest, "largest must cover the cascade, not just the swap")
	assert.Equal(t, 5, turnLargest)
	assert.True(t, out.NoMoves)

	require.Len(t, groups, 2)
	require.Len(t, groups[0], 1)
	assert.Equal(t, types.Red, groups[0][0].Piece)
	assert.Len(t, groups[0][0].Cells, 3)
	require.Len(t, groups[1], 1)
	assert.Equal(t, types.White, groups[1][0].Piece)
	assert.Equal(t, []types.Pos{pos(1, 0), pos(1, 1), pos(2, 1), pos(3, 1), pos(1, 2)}, groups[1][0].Cells)

	assert.Equal(t, []string{
		types.EventSwapCommitted,
		types.EventPiecesMatched,
		types.EventPiecesMatched,
		types.EventNoMoves,
		types.EventTurnEnded,
	}, eventTypes(out.Events))

	assert.Equal(t, []string{
		"....",
		"G..G",
		"Y.PB",
		"P.BY",
	}, b.Grid().Rows())
}

func TestSwap_SettleHookSeesEveryStep(t *testing.T) {
	b := Restore(staticMode(), cascadeGrid(), rng.New(1), nil)
	var phases []Phase
	b.Settle = func(p Phase, g *grid.Grid) {
		phases = append(phases, p)
		if p == Falling {
			for x := 0; x < g.Width(); x++ {
				col := g.Column(x)
				for y := 1; y < len(col); y++ {
					require.False(t, col[y-1] == types.Empty && col[y] != types.Empty, "gap below a piece after falling")
				}
			}
		}
	}

	b.SwapPieces(pos(2, 1), pos(2, 0))

	assert.Equal(t, []Phase{SwapPending, Clearing, Falling, Clearing, Falling}, phases)
	assert.Equal(t, Idle, b.Phase())
}

func TestSwap_NoMovesRegenerates(t *testing.T) {
	mode := staticMode()
	mode.Regenerate = true
	b := Restore(mode, cascadeGrid(), rng.New(5), nil)
	var regenerated int
	b.Subscribe(types.EventBoardRegenerated, func(types.Event) { regenerated++ })

	out := b.SwapPieces(pos(2, 1), pos(2, 0))

	require.True(t, out.Committed())
	assert.False(t, out.NoMoves)
	assert.GreaterOrEqual(t, out.Regenerated, 1)
	assert.Equal(t, out.Regenerated, regenerated)

	g := b.Grid()
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 4, g.Height())
	assert.True(t, g.Full())
	assert.Empty(t, match.FindAll(g))
	assert.True(t, b.HasAvailableMove())
}

func TestSwap_GroupByColorMergesDisjointRuns(t *testing.T) {
	// Clearing GGG on row 0 drops two separate RRR runs into rows 1 and 3.
	fixture := func() *grid.Grid {
		return grid.MustParse(
			"PRRYB",
			"BPBRG",
			"YRRBY",
			"WYGRW",
			"GGYBP",
		)
	}
	tests := []struct {
		name         string
		groupByColor bool
		wantGroups   int
		wantLargest  int
	}{
		{"contiguous", false, 2, 3},
		{"by colour", true, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := staticMode()
			mode.GroupByColor = tt.groupByColor
			b := Restore(mode, fixture(), rng.New(1), nil)

			var groups [][]types.MatchGroup
			b.Subscribe(types.EventPiecesMatched, func(e types.Event) {
				groups = append(groups, e.Data["groups"].([]types.MatchGroup))
			})

			out := b.SwapPieces(pos(2, 0), pos(2, 1))

			require.True(t, out.Committed())
			assert.Equal(t, 2, out.Chain)
			assert.Equal(t, 9, out.Cleared)
			assert.Equal(t, tt.wantLargest, out.Largest)
			require.Len(t, groups, 2)
			require.Len(t, groups[1], tt.wantGroups)
			for _, g := range groups[1] {
				assert.Equal(t, types.Red, g.Piece)
			}
		})
	}
}

func TestSwap_BottomRowScoring(t *testing.T) {
	mode := staticMode()
	mode.BottomRowScoring = true
	mode.ScoringPiece = types.Skull
	g := grid.MustParse(
		"GBY",
		"BYB",
		"SGR",
		"RRG",
	)
	b := Restore(mode, g, rng.New(1), nil)

	var scored []bool
	b.Subscribe(types.EventPiecesMatched, func(e types.Event) {
		scored = append(scored, e.Data["scored"].(bool))
	})

	out := b.SwapPieces(pos(2, 0), pos(2, 1))

	require.True(t, out.Committed())
	assert.Equal(t, 1, out.Chain)
	assert.Equal(t, 1, out.BottomRow)
	assert.Equal(t, []bool{false}, scored, "matches clear but do not score in bottom-row mode")
	assert.Equal(t, []string{
		types.EventSwapCommitted,
		types.EventPiecesMatched,
		types.EventBottomRowScored,
		types.EventTurnEnded,
	}, eventTypes(out.Events))
	assert.Equal(t, []string{
		"...",
		".BY",
		"GYB",
		"BGG",
	}, b.Grid().Rows())
}

// Settle invariant: after every resolved swap the grid is full and has no
// matches, whatever cascades happened along the way.
func TestSwap_SettleInvariantOverManyTurns(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		b := New(types.ModeDef{ID: "classic", Width: 7, Height: 7, Pieces: 5, Spawn: true, Regenerate: true}, rng.New(seed), nil)
		b.Strict = true

		for turn := 0; turn < 40; turn++ {
			a, c, ok := firstMatchingSwap(b.Grid())
			require.True(t, ok, "seed %d turn %d: no move on a board that should regenerate", seed, turn)

			out := b.SwapPieces(a, c)
			require.True(t, out.Committed())
			require.GreaterOrEqual(t, out.Largest, 3)

			g := b.Grid()
			require.True(t, g.Full())
			require.Empty(t, match.FindAll(g), "seed %d turn %d:\n%s", seed, turn, g)
		}
	}
}

func TestReset_RegeneratesPlayableBoard(t *testing.T) {
	b := New(types.ModeDef{ID: "classic", Spawn: true, Regenerate: true}, rng.New(3), nil)
	before := b.Grid()

	out := b.Reset()

	assert.True(t, out.Accepted())
	assert.GreaterOrEqual(t, out.Regenerated, 1)
	assert.Equal(t, types.EventBoardRegenerated, out.Events[0].Type)
	after := b.Grid()
	assert.False(t, after.Equal(before))
	assert.Empty(t, match.FindAll(after))
	assert.True(t, b.HasAvailableMove())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "checking_moves", CheckingMoves.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func firstMatchingSwap(g *grid.Grid) (types.Pos, types.Pos, bool) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			a := pos(x, y)
			for _, c := range []types.Pos{pos(x+1, y), pos(x, y+1)} {
				if !g.InBounds(c) {
					continue
				}
				g.Swap(a, c)
				ok := match.HasMatchAt(g, a) || match.HasMatchAt(g, c)
				g.Swap(a, c)
				if ok {
					return a, c, true
				}
			}
		}
	}
	return types.Pos{}, types.Pos{}, false
}
