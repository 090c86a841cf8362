// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"strconv"
	"strings"

	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// Context carries the acting player for template interpolation.
type Context struct {
	Verb   string
	Player string // ID of the player whose turn produced the effects
}

// Apply applies a list of effects to the game state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, defs *state.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, ctx))

		case "add_score":
			p := player(s, eff, ctx)
			if p == nil {
				continue
			}
			amount := toInt(eff.Params["amount"])
			p.Score += amount
			events = append(events, types.Event{
				Type: types.EventScoreChanged,
				Data: map[string]any{"player": p.ID, "amount": amount, "score": p.Score},
			})

		case "add_gems":
			p := player(s, eff, ctx)
			if p == nil {
				continue
			}
			gem, _ := eff.Params["gem"].(string)
			if p.Gems == nil {
				p.Gems = map[string]int{}
			}
			p.Gems[gem] += toInt(eff.Params["count"])

		case "extra_turn":
			p := player(s, eff, ctx)
			if p == nil {
				continue
			}
			largest := toInt(eff.Params["largest"])
			recordTurn(p, largest)
			events = append(events, types.Event{
				Type: types.EventExtraTurn,
				Data: map[string]any{"player": p.ID, "largest": largest},
			})

		case "end_turn":
			p := player(s, eff, ctx)
			if p == nil {
				continue
			}
			recordTurn(p, toInt(eff.Params["largest"]))
			if len(s.Players) == 0 {
				continue
			}
			s.Current = (s.Current + 1) % len(s.Players)
			events = append(events, types.Event{
				Type: types.EventTurnPassed,
				Data: map[string]any{"from": p.ID, "to": s.Players[s.Current].ID},
			})

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, _ := eff.Params["value"].(bool)
			s.Flags[flag] = value

		case "end_game":
			reason, _ := eff.Params["reason"].(string)
			s.Flags["game_over"] = true
			data := map[string]any{"reason": reason}
			if leader, ok := state.Leader(s); ok {
				data["winner"] = leader.ID
			}
			events = append(events, types.Event{Type: types.EventGameOver, Data: data})

		case "emit_event":
			event, _ := eff.Params["event"].(string)
			events = append(events, types.Event{
				Type: event,
				Data: map[string]any{},
			})

		case "stop":
			return events, output

		default:
			// Unknown effect type: ignore silently.
		}
	}

	return events, output
}

// player resolves the "player" param, falling back to the acting player.
func player(s *types.State, eff types.Effect, ctx Context) *types.PlayerState {
	id, _ := eff.Params["player"].(string)
	if id == "" {
		id = ctx.Player
	}
	if id == "" {
		return state.CurrentPlayer(s)
	}
	return state.PlayerByID(s, id)
}

func recordTurn(p *types.PlayerState, largest int) {
	p.Turns++
	if largest > p.BestMatch {
		p.BestMatch = largest
	}
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.State, ctx Context) string {
	name, score := "", ""
	if p := state.PlayerByID(s, ctx.Player); p != nil {
		name, score = p.Name, strconv.Itoa(p.Score)
	}
	r := strings.NewReplacer(
		"{verb}", ctx.Verb,
		"{player}", name,
		"{player.score}", score,
		"{turn}", strconv.Itoa(s.TurnCount),
	)
	return r.Replace(text)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
