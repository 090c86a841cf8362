// Package state manages the mutable game state outside the board grid:
// players, scores, flags and turn bookkeeping.
package state

import (
	"sort"

	"github.com/remarqUK/sixstones/types"
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game     types.GameDef
	Mode     string
	Modes    map[string]types.ModeDef
	Players  []types.PlayerDef
	Handlers []types.EventHandler
}

// SelectedMode returns the mode in play: Defs.Mode when set, else the game's
// default mode.
func (d *Defs) SelectedMode() (types.ModeDef, bool) {
	id := d.Mode
	if id == "" {
		id = d.Game.Mode
	}
	m, ok := d.Modes[id]
	return m, ok
}

// NewState creates a fresh game state from definitions.
func NewState(defs *Defs) *types.State {
	mode, _ := defs.SelectedMode()
	players := make([]types.PlayerState, 0, len(defs.Players))
	for _, p := range defs.Players {
		players = append(players, types.PlayerState{
			ID:   p.ID,
			Name: p.Name,
			CPU:  p.CPU,
			Gems: map[string]int{},
		})
	}
	return &types.State{
		Mode:       mode.ID,
		Players:    players,
		Current:    0,
		Flags:      map[string]bool{},
		TurnCount:  0,
		RNGSeed:    0,
		CommandLog: []string{},
	}
}

// CurrentPlayer returns the player whose turn it is, or nil when there are
// no players.
func CurrentPlayer(s *types.State) *types.PlayerState {
	if s.Current < 0 || s.Current >= len(s.Players) {
		return nil
	}
	return &s.Players[s.Current]
}

// PlayerByID returns the player with the given ID.
func PlayerByID(s *types.State, id string) *types.PlayerState {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// Leader returns the player with the highest score. Ties go to the player
// seated first; ok is false when scores are tied at the top.
func Leader(s *types.State) (leader *types.PlayerState, ok bool) {
	for i := range s.Players {
		p := &s.Players[i]
		switch {
		case leader == nil || p.Score > leader.Score:
			leader, ok = p, true
		case p.Score == leader.Score:
			ok = false
		}
	}
	return leader, ok
}

// Standings returns players ordered by score, highest first. Seat order
// breaks ties.
func Standings(s *types.State) []types.PlayerState {
	out := append([]types.PlayerState(nil), s.Players...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
