package engine

import (
	"fmt"

	"github.com/go-kit/log/level"

	"github.com/remarqUK/sixstones/engine/board"
	"github.com/remarqUK/sixstones/engine/save"
)

// SaveGame serializes the game and its settled board.
func (e *Engine) SaveGame() ([]byte, error) {
	return save.Save(e.State, e.Defs, e.Board.Grid())
}

// LoadGame replaces the running game with a saved one. Nothing changes when
// the save does not belong to this game or its board does not fit the mode.
func (e *Engine) LoadGame(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Errorf("reading save: %w", err)
	}
	if sd.Game != e.Defs.Game.Title {
		return fmt.Errorf("save is for %q, not %q", sd.Game, e.Defs.Game.Title)
	}
	mode, ok := e.Defs.Modes[sd.Mode]
	if !ok {
		return fmt.Errorf("save uses unknown mode %q", sd.Mode)
	}
	g, err := sd.Grid()
	if err != nil {
		return err
	}
	if m := board.Normalize(mode); g.Width() != m.Width || g.Height() != m.Height {
		return fmt.Errorf("saved board is %dx%d, mode %q wants %dx%d", g.Width(), g.Height(), mode.ID, m.Width, m.Height)
	}

	save.ApplySave(e.State, sd)
	if err := e.RestoreBoard(g, sd.RNGSeed, sd.RNGPosition); err != nil {
		return err
	}
	level.Info(e.logger).Log("msg", "game loaded", "mode", sd.Mode, "turn", sd.Turn)
	return nil
}
