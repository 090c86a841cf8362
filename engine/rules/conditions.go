package rules

import (
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// EvalCondition evaluates a single condition against the current state and
// the event that triggered it.
func EvalCondition(c types.Condition, s *types.State, evt types.Event) bool {
	switch c.Type {
	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return state.GetFlag(s, flag) == value

	case "score_at_least":
		p := state.CurrentPlayer(s)
		return p != nil && p.Score >= toInt(c.Params["value"])

	case "turn_at_least":
		return s.TurnCount >= toInt(c.Params["value"])

	case "event_at_least":
		key, _ := c.Params["key"].(string)
		v, ok := evt.Data[key]
		return ok && toInt(v) >= toInt(c.Params["value"])

	case "is_cpu":
		p := state.CurrentPlayer(s)
		return p != nil && p.CPU

	case "mode_is":
		mode, _ := c.Params["mode"].(string)
		return s.Mode == mode

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s, evt)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.State, evt types.Event) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s, evt) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
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
