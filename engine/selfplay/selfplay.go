// Package selfplay runs CPU-only games on consecutive seeds and summarises
// how the board and the move search behave.
package selfplay

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/remarqUK/sixstones/engine"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// DefaultMaxTurns caps games whose mode sets no turn limit.
const DefaultMaxTurns = 200

// Config describes a batch of games.
type Config struct {
	Defs     *state.Defs
	Games    int
	Seed     int64 // game i uses Seed+i
	MaxTurns int   // 0 = the mode's limit, or DefaultMaxTurns if it has none
	Logger   log.Logger
}

// GameStats is the outcome of one game.
type GameStats struct {
	Seed          int64
	Turns         int
	Scores        []int // by seat
	Winner        string
	Reason        string
	MaxChain      int
	Regenerations int
}

// Summary aggregates a batch.
type Summary struct {
	Games             int
	MeanScore         float64
	StdDevScore       float64
	MaxScore          float64
	MeanTurns         float64
	MeanChain         float64
	MaxChain          float64
	MeanRegenerations float64
	Wins              map[string]int
	Draws             int
}

// Report is the result of Run.
type Report struct {
	Games   []GameStats
	Summary Summary
}

// Run plays cfg.Games games with every seat CPU controlled. It stops early,
// returning the games finished so far, when ctx is cancelled.
func Run(ctx context.Context, cfg Config) (Report, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "selfplay")

	defs, err := cpuDefs(cfg.Defs, cfg.MaxTurns)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i := 0; i < cfg.Games; i++ {
		if err := ctx.Err(); err != nil {
			rep.Summary = Summarize(rep.Games)
			return rep, err
		}
		g, err := playOne(defs, cfg.Seed+int64(i), logger)
		if err != nil {
			return rep, fmt.Errorf("game %d: %w", i+1, err)
		}
		level.Debug(logger).Log("msg", "game finished", "seed", g.Seed, "turns", g.Turns, "reason", g.Reason, "winner", g.Winner)
		rep.Games = append(rep.Games, g)
	}
	rep.Summary = Summarize(rep.Games)
	level.Info(logger).Log("msg", "self-play done", "games", rep.Summary.Games,
		"mean_score", rep.Summary.MeanScore, "max_chain", rep.Summary.MaxChain)
	return rep, nil
}

// cpuDefs copies defs with every seat CPU controlled and a turn cap on the
// selected mode.
func cpuDefs(src *state.Defs, maxTurns int) (*state.Defs, error) {
	if src == nil {
		return nil, fmt.Errorf("no game definitions")
	}
	mode, ok := src.SelectedMode()
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", src.Mode)
	}
	switch {
	case maxTurns > 0:
		mode.MaxTurns = maxTurns
	case mode.MaxTurns == 0:
		mode.MaxTurns = DefaultMaxTurns
	}

	defs := *src
	defs.Mode = mode.ID
	defs.Modes = map[string]types.ModeDef{}
	for id, m := range src.Modes {
		defs.Modes[id] = m
	}
	defs.Modes[mode.ID] = mode
	defs.Players = make([]types.PlayerDef, len(src.Players))
	for i, p := range src.Players {
		p.CPU = true
		defs.Players[i] = p
	}
	return &defs, nil
}

func playOne(defs *state.Defs, seed int64, logger log.Logger) (GameStats, error) {
	eng, err := engine.New(defs, engine.Options{Seed: seed, Logger: logger})
	if err != nil {
		return GameStats{}, err
	}
	g := GameStats{Seed: seed}

	// Turns run in bursts of at most the engine's CPU cap; keep going
	// until the game ends.
	for !state.GetFlag(eng.State, "game_over") {
		before := eng.State.TurnCount
		res := eng.PlayCPU()
		observe(&g, res.Events)
		if eng.State.TurnCount == before && !state.GetFlag(eng.State, "game_over") {
			return g, fmt.Errorf("no progress at turn %d", before)
		}
	}

	g.Turns = eng.State.TurnCount
	g.Regenerations = eng.State.Regenerations
	for _, p := range eng.State.Players {
		g.Scores = append(g.Scores, p.Score)
	}
	return g, nil
}

func observe(g *GameStats, evts []types.Event) {
	for _, evt := range evts {
		switch evt.Type {
		case types.EventTurnEnded:
			if c, _ := evt.Data["chain"].(int); c > g.MaxChain {
				g.MaxChain = c
			}
		case types.EventGameOver:
			g.Reason, _ = evt.Data["reason"].(string)
			g.Winner, _ = evt.Data["winner"].(string)
		}
	}
}

// Summarize computes batch statistics. Scores pool every seat of every
// game.
func Summarize(games []GameStats) Summary {
	sum := Summary{Games: len(games), Wins: map[string]int{}}
	if len(games) == 0 {
		return sum
	}

	var scores, turns, chains, regens []float64
	for _, g := range games {
		for _, s := range g.Scores {
			scores = append(scores, float64(s))
		}
		turns = append(turns, float64(g.Turns))
		chains = append(chains, float64(g.MaxChain))
		regens = append(regens, float64(g.Regenerations))
		if g.Winner == "" {
			sum.Draws++
		} else {
			sum.Wins[g.Winner]++
		}
	}

	if len(scores) > 0 {
		sum.MeanScore, sum.StdDevScore = stat.MeanStdDev(scores, nil)
		if len(scores) == 1 {
			sum.StdDevScore = 0
		}
		sum.MaxScore = floats.Max(scores)
	}
	sum.MeanTurns = stat.Mean(turns, nil)
	sum.MeanChain = stat.Mean(chains, nil)
	sum.MaxChain = floats.Max(chains)
	sum.MeanRegenerations = stat.Mean(regens, nil)
	return sum
}

// Lines formats a report for the terminal.
func (r Report) Lines() []string {
	s := r.Summary
	lines := make([]string, 0, len(r.Games)+6)
	for i, g := range r.Games {
		winner := g.Winner
		if winner == "" {
			winner = "draw"
		}
		lines = append(lines, fmt.Sprintf("game %3d  seed %-6d turns %3d  scores %v  chain %d  regen %d  %s (%s)",
			i+1, g.Seed, g.Turns, g.Scores, g.MaxChain, g.Regenerations, winner, g.Reason))
	}
	lines = append(lines,
		fmt.Sprintf("games: %d  draws: %d  wins: %v", s.Games, s.Draws, s.Wins),
		fmt.Sprintf("score: mean %.1f  stddev %.1f  max %.0f", s.MeanScore, s.StdDevScore, s.MaxScore),
		fmt.Sprintf("turns: mean %.1f", s.MeanTurns),
		fmt.Sprintf("cascade depth: mean %.2f  max %.0f", s.MeanChain, s.MaxChain),
		fmt.Sprintf("regenerations: mean %.2f", s.MeanRegenerations),
	)
	return lines
}
