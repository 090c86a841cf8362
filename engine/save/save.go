// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// FormatVersion is bumped whenever SaveData changes shape.
const FormatVersion = 1

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format        int                 `json:"format"`
	Version       string              `json:"version"`
	Game          string              `json:"game"`
	Mode          string              `json:"mode"`
	Turn          int                 `json:"turn"`
	Players       []types.PlayerState `json:"players"`
	Current       int                 `json:"current"`
	Flags         map[string]bool     `json:"flags"`
	Regenerations int                 `json:"regenerations"`
	RNGSeed       int64               `json:"rng_seed"`
	RNGPosition   int64               `json:"rng_position"`
	Board         []string            `json:"board"`
	CommandLog    []string            `json:"command_log"`
}

// Save serializes game state and the settled board to JSON bytes.
func Save(s *types.State, defs *state.Defs, g *grid.Grid) ([]byte, error) {
	data := SaveData{
		Format:        FormatVersion,
		Version:       defs.Game.Version,
		Game:          defs.Game.Title,
		Mode:          s.Mode,
		Turn:          s.TurnCount,
		Players:       s.Players,
		Current:       s.Current,
		Flags:         s.Flags,
		Regenerations: s.Regenerations,
		RNGSeed:       s.RNGSeed,
		RNGPosition:   s.RNGPosition,
		Board:         g.Rows(),
		CommandLog:    s.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format > FormatVersion {
		return nil, fmt.Errorf("save format %d is newer than supported %d", sd.Format, FormatVersion)
	}
	if len(sd.Players) == 0 {
		return nil, fmt.Errorf("save has no players")
	}
	if sd.Current < 0 || sd.Current >= len(sd.Players) {
		return nil, fmt.Errorf("current player %d out of range", sd.Current)
	}
	// Ensure maps are never nil after load.
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	for i := range sd.Players {
		if sd.Players[i].Gems == nil {
			sd.Players[i].Gems = map[string]int{}
		}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// Grid parses the saved board.
func (sd *SaveData) Grid() (*grid.Grid, error) {
	g, err := grid.Parse(sd.Board...)
	if err != nil {
		return nil, fmt.Errorf("saved board: %w", err)
	}
	return g, nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.Mode = sd.Mode
	s.Players = sd.Players
	s.Current = sd.Current
	s.Flags = sd.Flags
	s.TurnCount = sd.Turn
	s.Regenerations = sd.Regenerations
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.CommandLog = sd.CommandLog
}
