package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/remarqUK/sixstones/engine/board"
	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Board dimension limits. Columns are addressed by a single letter.
const (
	minSide = 3
	maxSide = 26
)

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":        true,
	"add_score":  true,
	"add_gems":   true,
	"set_flag":   true,
	"extra_turn": true,
	"end_turn":   true,
	"end_game":   true,
	"emit_event": true,
	"stop":       true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"flag_set":       true,
	"flag_not":       true,
	"flag_is":        true,
	"score_at_least": true,
	"turn_at_least":  true,
	"event_at_least": true,
	"is_cpu":         true,
	"mode_is":        true,
	"not":            true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Warnings are returned even when validation succeeds.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}

	if len(defs.Modes) == 0 {
		ve.Errors = append(ve.Errors, "at least one Mode is required")
	} else if defs.Game.Mode == "" {
		ve.Errors = append(ve.Errors, "Game.mode is required when several modes are defined")
	} else if _, ok := defs.Modes[defs.Game.Mode]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"default mode %q not found in defined modes", defs.Game.Mode))
	}

	// Map iteration order is random; report in a stable order.
	ids := make([]string, 0, len(defs.Modes))
	for id := range defs.Modes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		validateMode(defs.Modes[id], ve)
	}

	if len(defs.Players) == 0 {
		ve.Errors = append(ve.Errors, "at least one Player is required")
	}
	seen := map[string]bool{}
	humans := 0
	for _, p := range defs.Players {
		if seen[p.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("player %q defined twice", p.ID))
		}
		seen[p.ID] = true
		if !p.CPU {
			humans++
		}
	}
	if len(defs.Players) > 0 && humans == 0 {
		ve.Warnings = append(ve.Warnings, "every player is CPU controlled; the game plays itself")
	}

	for i, h := range defs.Handlers {
		where := fmt.Sprintf("handler %d (%s)", i+1, h.EventType)
		if h.EventType == "" {
			ve.Errors = append(ve.Errors, where+": event type is required")
		}
		if len(h.Effects) == 0 {
			ve.Warnings = append(ve.Warnings, where+": has no effects")
		}
		for _, c := range h.Conditions {
			validateCondition(c, where, ve)
		}
		for _, eff := range h.Effects {
			if !validEffectTypes[eff.Type] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: unknown effect type %q", where, eff.Type))
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateMode(m types.ModeDef, ve *ValidationError) {
	if m.Width != 0 && (m.Width < minSide || m.Width > maxSide) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"mode %q: width %d out of range %d..%d", m.ID, m.Width, minSide, maxSide))
	}
	if m.Height != 0 && (m.Height < minSide || m.Height > maxSide) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"mode %q: height %d out of range %d..%d", m.ID, m.Height, minSide, maxSide))
	}
	if m.Pieces != 0 && (m.Pieces < minSide || m.Pieces > types.PieceKinds) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"mode %q: pieces %d out of range %d..%d", m.ID, m.Pieces, minSide, types.PieceKinds))
	}
	for _, n := range []struct {
		name  string
		value int
	}{
		{"bonus_match", m.BonusMatch},
		{"target_score", m.TargetScore},
		{"max_turns", m.MaxTurns},
		{"max_regenerations", m.MaxRegenerations},
	} {
		if n.value < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("mode %q: %s must not be negative", m.ID, n.name))
		}
	}

	if m.BottomRowScoring {
		if !m.Spawn {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"mode %q: bottom_row_scoring without spawn drains the board", m.ID))
		}
		norm := board.Normalize(m)
		inPlay := false
		for _, k := range grid.Kinds(norm.Pieces) {
			if k == norm.ScoringPiece {
				inPlay = true
			}
		}
		if !inPlay {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"mode %q: scoring piece %s never spawns with %d kinds", m.ID, grid.Name(norm.ScoringPiece), norm.Pieces))
		}
	}
}

func validateCondition(c types.Condition, where string, ve *ValidationError) {
	if !validConditionTypes[c.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown condition type %q", where, c.Type))
		return
	}
	if c.Type == "not" {
		if c.Inner == nil {
			ve.Errors = append(ve.Errors, where+": Not() needs a condition")
			return
		}
		validateCondition(*c.Inner, where, ve)
	}
}
