// Package rules evaluates Lua-authored event handlers: each handler whose
// event type and conditions match contributes its effects.
package rules

import (
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// Triggered returns the effects of every handler matching evts, in event
// order and then declaration order. Single pass: the caller applies the
// effects without dispatching the events they produce.
func Triggered(evts []types.Event, s *types.State, defs *state.Defs) []types.Effect {
	var effs []types.Effect
	for _, evt := range evts {
		for _, h := range defs.Handlers {
			if h.EventType != evt.Type {
				continue
			}
			if EvalAllConditions(h.Conditions, s, evt) {
				effs = append(effs, h.Effects...)
			}
		}
	}
	return effs
}
