// Package board implements the match-3 board state machine: swap, validate,
// clear, fall, refill and re-detect until stable, then make sure a move is
// still available.
package board

import (
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/remarqUK/sixstones/engine/events"
	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/match"
	"github.com/remarqUK/sixstones/engine/rng"
	"github.com/remarqUK/sixstones/types"
)

// maxResolveSteps bounds one cascade chain. A chain this long means the
// mode cannot settle (e.g. a one-row board in bottom-row scoring).
const maxResolveSteps = 10000

// Outcome reports what one board operation did.
type Outcome struct {
	Rejected    Reason // empty when the request was accepted
	Reverted    bool   // swap made no match and was undone
	Chain       int    // clear steps, cascades included
	Largest     int    // largest group across the whole chain
	Cleared     int    // pieces removed by matches
	BottomRow   int    // pieces scored on row 0
	Regenerated int
	NoMoves     bool // no move left and the board could not regenerate
	Events      []types.Event
}

// Accepted reports whether the request passed admission.
func (o Outcome) Accepted() bool { return o.Rejected == "" }

// Committed reports whether a swap was kept and resolved.
func (o Outcome) Committed() bool { return o.Accepted() && !o.Reverted }

// Board owns the live grid. All mutation goes through SwapPieces and Reset;
// readers get a copy of the last settled grid.
type Board struct {
	mode   types.ModeDef
	kinds  []types.Piece
	rng    *rng.RNG
	logger log.Logger
	bus    *events.Bus

	// Settle is called at every suspension point with the phase that just
	// finished and a copy of the grid. Front ends use it to animate.
	Settle func(Phase, *grid.Grid)

	// Strict turns integrity violations into panics.
	Strict bool

	mu         sync.Mutex
	phase      Phase
	processing bool
	gameOver   bool
	live       *grid.Grid
	settled    *grid.Grid
}

// New builds a board for mode with a freshly generated grid that has no
// matches and at least one available move.
func New(mode types.ModeDef, r *rng.RNG, logger log.Logger) *Board {
	b := newBoard(mode, r, logger)
	b.live = b.generate()
	b.ensurePlayable(nil)
	b.settled = b.live.Clone()
	return b
}

// Restore builds a board around an existing grid without touching it.
func Restore(mode types.ModeDef, g *grid.Grid, r *rng.RNG, logger log.Logger) *Board {
	b := newBoard(mode, r, logger)
	b.live = g.Clone()
	b.settled = g.Clone()
	return b
}

func newBoard(mode types.ModeDef, r *rng.RNG, logger log.Logger) *Board {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	mode = Normalize(mode)
	kinds := grid.Kinds(mode.Pieces)
	if mode.BottomRowScoring && !containsPiece(kinds, mode.ScoringPiece) {
		kinds = append(kinds, mode.ScoringPiece)
	}
	return &Board{
		mode:   mode,
		kinds:  kinds,
		rng:    r,
		logger: log.With(logger, "component", "board", "mode", mode.ID),
		bus:    events.NewBus(),
	}
}

// Normalize fills mode defaults and clamps out-of-range values.
func Normalize(m types.ModeDef) types.ModeDef {
	if m.Width <= 0 {
		m.Width = 8
	}
	if m.Height <= 0 {
		m.Height = 8
	}
	if m.Pieces <= 0 || m.Pieces > types.PieceKinds {
		m.Pieces = types.PieceKinds
	}
	if m.Pieces < match.MinRun {
		m.Pieces = match.MinRun
	}
	if m.BonusMatch <= 0 {
		m.BonusMatch = 4
	}
	if m.MaxRegenerations <= 0 {
		m.MaxRegenerations = 100
	}
	if m.BottomRowScoring && m.ScoringPiece == types.Empty {
		m.ScoringPiece = types.Skull
	}
	if m.Points == nil {
		m.Points = map[types.Piece]int{}
	}
	return m
}

// Mode returns the normalized mode descriptor.
func (b *Board) Mode() types.ModeDef { return b.mode }

// Kinds returns the pieces that can spawn on this board.
func (b *Board) Kinds() []types.Piece {
	return append([]types.Piece(nil), b.kinds...)
}

// RNG returns the random source used for spawning.
func (b *Board) RNG() *rng.RNG { return b.rng }

// Subscribe registers a handler for a board event type.
func (b *Board) Subscribe(eventType string, h events.Handler) {
	b.bus.Subscribe(eventType, h)
}

// Grid returns a copy of the last settled grid.
func (b *Board) Grid() *grid.Grid {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settled.Clone()
}

// Phase returns the current state machine phase.
func (b *Board) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Processing reports whether a swap or reset is being resolved.
func (b *Board) Processing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processing
}

// SetGameOver freezes (or unfreezes) swap input.
func (b *Board) SetGameOver(over bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gameOver = over
}

// GameOver reports whether swap input is frozen.
func (b *Board) GameOver() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gameOver
}

// HasAvailableMove reports whether any adjacent swap on the settled grid
// would create a match.
func (b *Board) HasAvailableMove() bool {
	return hasMove(b.Grid())
}

// SwapPieces is the single input to the board. A request is refused without
// any state change when a position is off the board, the cells are not
// neighbours or not both occupied, another request is resolving, or the game
// is over. A swap that makes no match is undone and does not end the turn.
func (b *Board) SwapPieces(a, c types.Pos) Outcome {
	var out Outcome

	b.mu.Lock()
	reason := b.admit(a, c)
	if reason == "" {
		b.processing = true
		b.phase = SwapPending
	}
	b.mu.Unlock()

	if reason != "" {
		level.Debug(b.logger).Log("msg", "swap rejected", "a", fmtPos(a), "b", fmtPos(c), "reason", reason)
		out.Rejected = reason
		b.emit(&out, types.EventSwapRejected, map[string]any{"a": a, "b": c, "reason": string(reason)})
		return out
	}
	defer b.finish()

	g := b.live
	g.Swap(a, c)
	b.settle(SwapPending)

	b.setPhase(Validating)
	if !match.HasMatchAt(g, a) && !match.HasMatchAt(g, c) {
		g.Swap(a, c)
		b.settle(Validating)
		out.Reverted = true
		level.Debug(b.logger).Log("msg", "swap reverted", "a", fmtPos(a), "b", fmtPos(c))
		b.emit(&out, types.EventSwapReverted, map[string]any{"a": a, "b": c})
		return out
	}

	b.emit(&out, types.EventSwapCommitted, map[string]any{"a": a, "b": c})
	b.setPhase(Resolving)
	b.resolve(&out)
	b.ensurePlayable(&out)
	b.publishSettled()

	b.emit(&out, types.EventTurnEnded, map[string]any{
		"largest":     out.Largest,
		"chain":       out.Chain,
		"cleared":     out.Cleared,
		"bottom_row":  out.BottomRow,
		"regenerated": out.Regenerated,
		"no_moves":    out.NoMoves,
	})
	return out
}

// Reset discards the grid and generates a new playable one.
func (b *Board) Reset() Outcome {
	var out Outcome

	b.mu.Lock()
	if b.processing {
		b.mu.Unlock()
		out.Rejected = ReasonBusy
		return out
	}
	b.processing = true
	b.phase = Regenerating
	b.mu.Unlock()
	defer b.finish()

	b.regenerate(&out)
	b.ensurePlayable(&out)
	b.publishSettled()
	return out
}

// admit must be called with mu held.
func (b *Board) admit(a, c types.Pos) Reason {
	switch {
	case b.processing:
		return ReasonBusy
	case b.gameOver:
		return ReasonGameOver
	case !b.live.InBounds(a) || !b.live.InBounds(c):
		return ReasonOutOfBounds
	case !grid.Adjacent(a, c):
		return ReasonNotAdjacent
	case b.live.At(a) == types.Empty || b.live.At(c) == types.Empty:
		return ReasonEmptyCell
	}
	return ""
}

// resolve runs clear → fall → refill until neither the match rule nor the
// bottom-row rule fires.
func (b *Board) resolve(out *Outcome) {
	for step := 0; ; step++ {
		if step >= maxResolveSteps {
			level.Error(b.logger).Log("msg", "cascade did not settle", "steps", step)
			return
		}
		if b.clearMatches(out) {
			continue
		}
		if b.mode.BottomRowScoring && b.clearBottomRow(out) {
			continue
		}
		return
	}
}

func (b *Board) clearMatches(out *Outcome) bool {
	g := b.live
	cells := match.FindAll(g)
	if len(cells) == 0 {
		return false
	}

	var groups []types.MatchGroup
	if b.mode.GroupByColor {
		groups = match.GroupByPiece(g, cells)
	} else {
		groups = match.Groups(g, cells)
	}
	out.Chain++
	largest := match.Largest(groups)
	if largest > out.Largest {
		out.Largest = largest
	}

	b.setPhase(Clearing)
	b.emit(out, types.EventPiecesMatched, map[string]any{
		"groups":  groups,
		"chain":   out.Chain,
		"largest": largest,
		"scored":  !b.mode.BottomRowScoring,
	})
	out.Cleared += g.Clear(cells)
	b.settle(Clearing)

	b.fallAndRefill()
	return true
}

func (b *Board) clearBottomRow(out *Outcome) bool {
	g := b.live
	var cells []types.Pos
	for x := 0; x < g.Width(); x++ {
		p := types.Pos{X: x, Y: 0}
		if g.At(p) == b.mode.ScoringPiece {
			cells = append(cells, p)
		}
	}
	if len(cells) == 0 {
		return false
	}

	b.setPhase(Clearing)
	b.emit(out, types.EventBottomRowScored, map[string]any{
		"piece": b.mode.ScoringPiece,
		"cells": cells,
		"count": len(cells),
	})
	out.BottomRow += g.Clear(cells)
	b.settle(Clearing)

	b.fallAndRefill()
	return true
}

func (b *Board) fallAndRefill() {
	b.setPhase(Falling)
	b.live.Collapse()
	b.settle(Falling)

	if !b.mode.Spawn {
		return
	}
	b.setPhase(Refilling)
	b.refill(b.live)
	b.settle(Refilling)
	b.checkIntegrity()
}

// refill gives every empty cell, top row first, a random piece. Setup and
// regeneration go through generate instead.
func (b *Board) refill(g *grid.Grid) {
	for _, p := range g.Empties() {
		g.Set(p, b.kinds[b.rng.Choose(len(b.kinds))])
	}
}

// generate builds a full grid with no run of three anywhere. Cells are
// filled bottom-up, left to right, so only the two cells to the left and
// the two below can complete a run.
func (b *Board) generate() *grid.Grid {
	g := grid.New(b.mode.Width, b.mode.Height)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			allowed := b.kinds
			if b.mode.BottomRowScoring && y == 0 {
				allowed = without(allowed, b.mode.ScoringPiece)
			}
			if x >= 2 {
				l1, l2 := g.At(types.Pos{X: x - 1, Y: y}), g.At(types.Pos{X: x - 2, Y: y})
				if l1 == l2 {
					allowed = without(allowed, l1)
				}
			}
			if y >= 2 {
				d1, d2 := g.At(types.Pos{X: x, Y: y - 1}), g.At(types.Pos{X: x, Y: y - 2})
				if d1 == d2 {
					allowed = without(allowed, d1)
				}
			}
			if len(allowed) == 0 {
				allowed = b.kinds
			}
			g.Set(types.Pos{X: x, Y: y}, allowed[b.rng.Choose(len(allowed))])
		}
	}
	return g
}

func (b *Board) regenerate(out *Outcome) {
	b.setPhase(Regenerating)
	b.live = b.generate()
	if out == nil {
		return
	}
	out.Regenerated++
	level.Info(b.logger).Log("msg", "board regenerated", "attempt", out.Regenerated)
	b.emit(out, types.EventBoardRegenerated, map[string]any{"attempt": out.Regenerated})
	b.settle(Regenerating)
}

// ensurePlayable regenerates until a move exists, when the mode allows it.
// out is nil during construction, where nothing is published.
func (b *Board) ensurePlayable(out *Outcome) {
	for attempt := 0; ; attempt++ {
		b.setPhase(CheckingMoves)
		if hasMove(b.live) {
			return
		}
		if !b.mode.Regenerate || attempt >= b.mode.MaxRegenerations {
			if b.mode.Regenerate {
				level.Error(b.logger).Log("msg", "no playable board after regenerating", "attempts", attempt)
			}
			if out != nil {
				out.NoMoves = true
				b.emit(out, types.EventNoMoves, map[string]any{"regenerated": out.Regenerated})
			}
			return
		}
		b.regenerate(out)
	}
}

func (b *Board) checkIntegrity() {
	if b.live.Full() {
		return
	}
	level.Error(b.logger).Log("msg", "integrity violation: empty cell after refill", "empties", len(b.live.Empties()))
	if b.Strict {
		panic(fmt.Sprintf("board integrity violation: empty cell after refill\n%s", b.live))
	}
}

func (b *Board) emit(out *Outcome, eventType string, data map[string]any) {
	evt := types.Event{Type: eventType, Data: data}
	if out != nil {
		out.Events = append(out.Events, evt)
	}
	b.bus.Publish(evt)
}

func (b *Board) settle(p Phase) {
	if b.Settle != nil {
		b.Settle(p, b.live.Clone())
	}
}

func (b *Board) setPhase(p Phase) {
	b.mu.Lock()
	b.phase = p
	b.mu.Unlock()
}

func (b *Board) publishSettled() {
	b.mu.Lock()
	b.settled = b.live.Clone()
	b.mu.Unlock()
}

func (b *Board) finish() {
	b.mu.Lock()
	b.settled = b.live.Clone()
	b.phase = Idle
	b.processing = false
	b.mu.Unlock()
}

// hasMove probes every adjacent pair with swap, check, swap back.
func hasMove(g *grid.Grid) bool {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			a := types.Pos{X: x, Y: y}
			for _, c := range []types.Pos{{X: x + 1, Y: y}, {X: x, Y: y + 1}} {
				if !g.InBounds(c) || g.At(a) == types.Empty || g.At(c) == types.Empty || g.At(a) == g.At(c) {
					continue
				}
				g.Swap(a, c)
				ok := match.HasMatchAt(g, a) || match.HasMatchAt(g, c)
				g.Swap(a, c)
				if ok {
					return true
				}
			}
		}
	}
	return false
}

func without(kinds []types.Piece, p types.Piece) []types.Piece {
	out := make([]types.Piece, 0, len(kinds))
	for _, k := range kinds {
		if k != p {
			out = append(out, k)
		}
	}
	return out
}

func containsPiece(kinds []types.Piece, p types.Piece) bool {
	for _, k := range kinds {
		if k == p {
			return true
		}
	}
	return false
}

func fmtPos(p types.Pos) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
