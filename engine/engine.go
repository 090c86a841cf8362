// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, the board, effects, and events into a single turn.
package engine

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/remarqUK/sixstones/engine/board"
	"github.com/remarqUK/sixstones/engine/effects"
	"github.com/remarqUK/sixstones/engine/events"
	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/parser"
	"github.com/remarqUK/sixstones/engine/resolve"
	"github.com/remarqUK/sixstones/engine/rng"
	"github.com/remarqUK/sixstones/engine/rules"
	"github.com/remarqUK/sixstones/engine/search"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// maxCPUTurns bounds one run of consecutive CPU turns. An all-CPU table with
// no score or turn limit would otherwise never hand control back.
const maxCPUTurns = 10000

// Options configures a new engine.
type Options struct {
	Seed   int64
	Logger log.Logger
}

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *rng.RNG
	Board *board.Board

	mode     types.ModeDef
	base     log.Logger
	logger   log.Logger
	handlers map[string][]events.Handler

	// Collected from the board bus while a swap resolves.
	pending []types.Effect
	// Narration appended by game event handlers during a step.
	narration []string
}

// New creates a new engine from definitions, with a freshly generated board
// for the selected mode.
func New(defs *state.Defs, opts Options) (*Engine, error) {
	mode, ok := defs.SelectedMode()
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", firstNonEmpty(defs.Mode, defs.Game.Mode))
	}
	if len(defs.Players) == 0 {
		return nil, fmt.Errorf("game %q has no players", defs.Game.Title)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	s := state.NewState(defs)
	s.RNGSeed = opts.Seed
	e := &Engine{
		Defs:   defs,
		State:  s,
		RNG:    rng.New(opts.Seed),
		base:   logger,
		logger: log.With(logger, "component", "engine"),
	}
	e.registerHandlers()
	e.attach(board.New(mode, e.RNG, logger))
	e.State.RNGPosition = e.RNG.Position()
	return e, nil
}

// attach installs b as the live board and subscribes the scoring pipeline
// to its events.
func (e *Engine) attach(b *board.Board) {
	e.Board = b
	e.mode = b.Mode()
	b.Subscribe(types.EventPiecesMatched, e.onPiecesMatched)
	b.Subscribe(types.EventBottomRowScored, e.onBottomRowScored)
	b.Subscribe(events.Wildcard, func(evt types.Event) {
		level.Debug(e.logger).Log("msg", "board event", "event", evt.Type)
	})
}

// RestoreBoard replaces the board with g, continuing the RNG from the saved
// position.
func (e *Engine) RestoreBoard(g *grid.Grid, seed, position int64) error {
	mode, ok := e.Defs.Modes[e.State.Mode]
	if !ok {
		return fmt.Errorf("unknown mode %q", e.State.Mode)
	}
	m := board.Normalize(mode)
	if g.Width() != m.Width || g.Height() != m.Height {
		return fmt.Errorf("board is %dx%d, mode %q wants %dx%d", g.Width(), g.Height(), mode.ID, m.Width, m.Height)
	}
	e.RNG = rng.Restore(seed, position)
	b := board.Restore(mode, g, e.RNG, e.base)
	b.SetGameOver(state.GetFlag(e.State, "game_over"))
	e.attach(b)
	return nil
}

// Mode returns the normalized mode in play.
func (e *Engine) Mode() types.ModeDef { return e.mode }

// Start returns the opening text and lets CPU players move if one of them
// is seated first.
func (e *Engine) Start() types.Result {
	var result types.Result
	g := e.Defs.Game
	result.Output = append(result.Output, g.Title)
	if g.Intro != "" {
		result.Output = append(result.Output, g.Intro)
	}
	result.Output = append(result.Output, RenderBoard(e.Board.Grid())...)
	e.runCPU(&result)
	if p := state.CurrentPlayer(e.State); p != nil && !state.GetFlag(e.State, "game_over") {
		result.Output = append(result.Output, fmt.Sprintf("%s to move.", p.Name))
	}
	return result
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 0. Game over: block all gameplay commands.
	if state.GetFlag(e.State, "game_over") {
		result.Output = append(result.Output, "Game over. Use /load to restore a save or /quit to exit.")
		return result
	}

	// 1. Parse input and log the command.
	intent := parser.Parse(input)
	e.State.CommandLog = append(e.State.CommandLog, input)
	level.Debug(e.logger).Log("msg", "step", "input", input, "verb", intent.Verb)

	switch intent.Verb {
	case "":
		result.Output = append(result.Output, "What do you want to do?")
		return result

	case "look":
		result.Output = append(result.Output, RenderBoard(e.Board.Grid())...)
		return result

	case "score":
		result.Output = append(result.Output, e.standings()...)
		return result

	case "hint":
		result.Output = append(result.Output, e.hint())
		return result

	case "swap":
		// handled below

	default:
		result.Output = append(result.Output, "I don't understand that. Try: swap c4 d4, swap c4 up, hint, board, score.")
		return result
	}

	// 2. Resolve cells.
	p := state.CurrentPlayer(e.State)
	if p.CPU {
		result.Output = append(result.Output, fmt.Sprintf("It is %s's turn.", p.Name))
		return result
	}
	if e.unstick(&result, p) || state.GetFlag(e.State, "game_over") {
		return result
	}
	m := e.mode
	res, err := resolve.Resolve(resolve.Bounds{Width: m.Width, Height: m.Height}, intent)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	// 3-4. Swap, score and pass the turn.
	e.playTurn(&result, p, res.A, res.B)

	// 5. CPU players answer through the same pipeline.
	e.runCPU(&result)

	if p := state.CurrentPlayer(e.State); p != nil && !state.GetFlag(e.State, "game_over") && len(e.Defs.Players) > 1 {
		result.Output = append(result.Output, fmt.Sprintf("%s to move.", p.Name))
	}
	return result
}

// PlayCPU runs CPU turns until a human is to move or the game ends. Used by
// self-play, where every seat is a CPU.
func (e *Engine) PlayCPU() types.Result {
	var result types.Result
	e.runCPU(&result)
	return result
}

func (e *Engine) runCPU(result *types.Result) {
	for i := 0; i < maxCPUTurns; i++ {
		if state.GetFlag(e.State, "game_over") {
			return
		}
		p := state.CurrentPlayer(e.State)
		if p == nil || !p.CPU {
			return
		}
		best, ok := search.FindBestMove(e.Board.Grid())
		if !ok {
			if !e.unstick(result, p) && !state.GetFlag(e.State, "game_over") {
				e.finish(result, p, "no_moves")
			}
			continue
		}
		level.Debug(e.logger).Log("msg", "cpu move", "player", p.ID, "a", resolve.Name(best.A), "b", resolve.Name(best.B), "score", best.Score)
		if !e.playTurn(result, p, best.A, best.B) {
			level.Error(e.logger).Log("msg", "cpu move not committed", "player", p.ID, "a", resolve.Name(best.A), "b", resolve.Name(best.B))
			return
		}
	}
	level.Warn(e.logger).Log("msg", "cpu turn limit reached", "turns", maxCPUTurns)
}

// unstick handles a settled board with no move, which only a restored grid
// can leave behind. The board is reshuffled when the mode regenerates,
// otherwise the game ends. It reports whether the board was reshuffled.
func (e *Engine) unstick(result *types.Result, p *types.PlayerState) bool {
	if e.Board.HasAvailableMove() {
		return false
	}
	if e.mode.Regenerate {
		out := e.Board.Reset()
		if out.Accepted() && !out.NoMoves {
			level.Info(e.logger).Log("msg", "restored board had no moves", "regenerated", out.Regenerated)
			result.Events = append(result.Events, out.Events...)
			result.Output = append(result.Output, swapText(out)...)
			result.Output = append(result.Output, RenderBoard(e.Board.Grid())...)
			e.State.Regenerations += out.Regenerated
			e.State.RNGPosition = e.RNG.Position()
			return true
		}
	}
	e.finish(result, p, "no_moves")
	return false
}

// playTurn swaps a and b for p and applies everything the swap produced.
// It reports whether the swap was committed.
func (e *Engine) playTurn(result *types.Result, p *types.PlayerState, a, b types.Pos) bool {
	playerID, name := p.ID, p.Name
	e.pending = nil
	e.narration = nil

	out := e.Board.SwapPieces(a, b)
	result.Events = append(result.Events, out.Events...)

	switch {
	case !out.Accepted():
		result.Output = append(result.Output, rejectText(out.Rejected))
		return false
	case out.Reverted:
		result.Output = append(result.Output, fmt.Sprintf("%s swaps %s and %s. No match; the pieces slide back.", name, resolve.Name(a), resolve.Name(b)))
		return false
	}

	result.Output = append(result.Output, fmt.Sprintf("%s swaps %s and %s.", name, resolve.Name(a), resolve.Name(b)))
	result.Output = append(result.Output, swapText(out)...)

	effs := e.pending
	if out.Largest >= e.mode.BonusMatch {
		effs = append(effs, types.Effect{Type: "extra_turn", Params: map[string]any{"player": playerID, "largest": out.Largest}})
	} else {
		effs = append(effs, types.Effect{Type: "end_turn", Params: map[string]any{"player": playerID, "largest": out.Largest}})
	}
	effs = append(effs, rules.Triggered(out.Events, e.State, e.Defs)...)
	e.apply(result, effs, playerID)

	e.State.TurnCount++
	e.State.Regenerations += out.Regenerated
	e.State.RNGPosition = e.RNG.Position()

	if reason := e.endReason(out); reason != "" {
		e.finish(result, state.PlayerByID(e.State, playerID), reason)
	}
	return true
}

// endReason decides whether the game is over after a resolved turn.
func (e *Engine) endReason(out board.Outcome) string {
	if t := e.mode.TargetScore; t > 0 {
		for _, p := range e.State.Players {
			if p.Score >= t {
				return "target_score"
			}
		}
	}
	if e.mode.MaxTurns > 0 && e.State.TurnCount >= e.mode.MaxTurns {
		return "turn_limit"
	}
	if out.NoMoves {
		return "no_moves"
	}
	return ""
}

func (e *Engine) finish(result *types.Result, p *types.PlayerState, reason string) {
	var playerID string
	if p != nil {
		playerID = p.ID
	}
	e.apply(result, []types.Effect{{Type: "end_game", Params: map[string]any{"reason": reason}}}, playerID)
	e.Board.SetGameOver(true)
}

// apply runs effects, then dispatches the resulting events once.
func (e *Engine) apply(result *types.Result, effs []types.Effect, playerID string) {
	ctx := effects.Context{Verb: "swap", Player: playerID}
	evts, output := effects.Apply(e.State, e.Defs, effs, ctx)
	result.Effects = append(result.Effects, effs...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)

	e.narration = nil
	events.Dispatch(evts, e.handlers)
	result.Output = append(result.Output, e.narration...)

	// Lua handlers run once; the events their effects emit are not dispatched.
	if triggered := rules.Triggered(evts, e.State, e.Defs); len(triggered) > 0 {
		evts2, output2 := effects.Apply(e.State, e.Defs, triggered, ctx)
		result.Effects = append(result.Effects, triggered...)
		result.Events = append(result.Events, evts2...)
		result.Output = append(result.Output, output2...)
	}
}

// onPiecesMatched turns scored groups into score and gem effects.
func (e *Engine) onPiecesMatched(evt types.Event) {
	if scored, _ := evt.Data["scored"].(bool); !scored {
		return
	}
	groups, _ := evt.Data["groups"].([]types.MatchGroup)
	for _, g := range groups {
		e.score(g.Piece, len(g.Cells))
	}
}

func (e *Engine) onBottomRowScored(evt types.Event) {
	piece, _ := evt.Data["piece"].(types.Piece)
	count, _ := evt.Data["count"].(int)
	e.score(piece, count)
}

func (e *Engine) score(piece types.Piece, count int) {
	player := ""
	if p := state.CurrentPlayer(e.State); p != nil {
		player = p.ID
	}
	e.pending = append(e.pending,
		types.Effect{Type: "add_score", Params: map[string]any{
			"player": player, "amount": count * e.points(piece), "piece": grid.Name(piece), "size": count,
		}},
		types.Effect{Type: "add_gems", Params: map[string]any{
			"player": player, "gem": grid.Name(piece), "count": count,
		}},
	)
}

func (e *Engine) points(p types.Piece) int {
	if v, ok := e.mode.Points[p]; ok {
		return v
	}
	return 1
}

func (e *Engine) registerHandlers() {
	name := func(id any) string {
		if p := state.PlayerByID(e.State, fmt.Sprint(id)); p != nil {
			return p.Name
		}
		return fmt.Sprint(id)
	}
	e.handlers = map[string][]events.Handler{
		types.EventExtraTurn: {func(evt types.Event) {
			e.narration = append(e.narration, fmt.Sprintf("A match of %v! %s plays again.", evt.Data["largest"], name(evt.Data["player"])))
		}},
		types.EventGameOver: {func(evt types.Event) {
			reason, _ := evt.Data["reason"].(string)
			line := "Game over (" + strings.ReplaceAll(reason, "_", " ") + ")."
			if w, ok := evt.Data["winner"]; ok {
				line += " " + name(w) + " wins."
			} else if len(e.State.Players) > 1 {
				line += " It's a draw."
			}
			e.narration = append(e.narration, line)
			e.narration = append(e.narration, e.standings()...)
			level.Info(e.logger).Log("msg", "game over", "reason", reason, "turns", e.State.TurnCount)
		}},
	}
}

func (e *Engine) hint() string {
	best, ok := search.FindBestMove(e.Board.Grid())
	if !ok {
		return "There are no moves left."
	}
	text := fmt.Sprintf("Try swapping %s and %s (clears %d", resolve.Name(best.A), resolve.Name(best.B), best.Immediate)
	if best.Cascade >= search.CascadeThreshold {
		text += fmt.Sprintf(", then a cascade of %d", best.Cascade)
	}
	return text + ")."
}

func (e *Engine) standings() []string {
	var lines []string
	for i, p := range state.Standings(e.State) {
		lines = append(lines, fmt.Sprintf("%d. %-12s %5d  (best match %d, %d turns)", i+1, p.Name, p.Score, p.BestMatch, p.Turns))
	}
	return lines
}

func swapText(out board.Outcome) []string {
	var lines []string
	if out.Chain > 1 {
		lines = append(lines, fmt.Sprintf("Cascade x%d! %d pieces cleared, largest match %d.", out.Chain, out.Cleared, out.Largest))
	} else if out.Chain == 1 {
		lines = append(lines, fmt.Sprintf("%d pieces cleared.", out.Cleared))
	}
	if out.BottomRow > 0 {
		lines = append(lines, fmt.Sprintf("%d scoring pieces reach the bottom row.", out.BottomRow))
	}
	if out.Regenerated > 0 {
		lines = append(lines, "No moves left. The board is reshuffled.")
	}
	if out.NoMoves {
		lines = append(lines, "No moves left.")
	}
	return lines
}

func rejectText(r board.Reason) string {
	switch r {
	case board.ReasonOutOfBounds:
		return "That cell is off the board."
	case board.ReasonNotAdjacent:
		return "You can only swap neighbouring pieces."
	case board.ReasonEmptyCell:
		return "There is nothing there to swap."
	case board.ReasonBusy:
		return "The board is still settling."
	case board.ReasonGameOver:
		return "The game is over."
	}
	return "You can't swap those."
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
