// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading: zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// rawMode holds a mode table before compilation.
type rawMode struct {
	id    string
	table *lua.LTable
}

// rawPlayer holds a player table before compilation.
type rawPlayer struct {
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs := &state.Defs{
		Game:  compileGame(coll.game),
		Modes: map[string]types.ModeDef{},
	}

	for _, raw := range coll.modes {
		if _, dup := defs.Modes[raw.id]; dup {
			return nil, fmt.Errorf("mode %q defined twice", raw.id)
		}
		mode, err := compileMode(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling mode %s: %w", raw.id, err)
		}
		defs.Modes[mode.ID] = mode
	}

	// A lone mode is the default.
	if defs.Game.Mode == "" && len(coll.modes) == 1 {
		defs.Game.Mode = coll.modes[0].id
	}

	for _, raw := range coll.players {
		defs.Players = append(defs.Players, compilePlayer(raw))
	}

	for _, raw := range coll.handlers {
		handler, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler for %s: %w", raw.eventType, err)
		}
		defs.Handlers = append(defs.Handlers, handler)
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
		Mode:    getString(tbl, "mode"),
	}
}

// compileMode compiles a mode table. Spawning and regeneration default on;
// sizes left at zero take the board defaults.
func compileMode(raw rawMode) (types.ModeDef, error) {
	tbl := raw.table
	mode := types.ModeDef{
		ID:               raw.id,
		Name:             getString(tbl, "name"),
		Width:            getInt(tbl, "width"),
		Height:           getInt(tbl, "height"),
		Pieces:           getInt(tbl, "pieces"),
		Spawn:            getBool(tbl, "spawn", true),
		Regenerate:       getBool(tbl, "regenerate", true),
		BottomRowScoring: getBool(tbl, "bottom_row_scoring", false),
		GroupByColor:     getBool(tbl, "group_by_color", false),
		BonusMatch:       getInt(tbl, "bonus_match"),
		TargetScore:      getInt(tbl, "target_score"),
		MaxTurns:         getInt(tbl, "max_turns"),
		MaxRegenerations: getInt(tbl, "max_regenerations"),
		Points:           map[types.Piece]int{},
	}
	if mode.Name == "" {
		mode.Name = raw.id
	}

	if name := getString(tbl, "scoring_piece"); name != "" {
		p, ok := grid.PieceByName(name)
		if !ok {
			return mode, fmt.Errorf("unknown scoring_piece %q", name)
		}
		mode.ScoringPiece = p
	}

	if pts := getTable(tbl, "points"); pts != nil {
		var err error
		pts.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			name, ok := k.(lua.LString)
			if !ok {
				err = fmt.Errorf("points keys must be piece names")
				return
			}
			p, ok := grid.PieceByName(string(name))
			if !ok {
				err = fmt.Errorf("points: unknown piece %q", string(name))
				return
			}
			n, ok := v.(lua.LNumber)
			if !ok {
				err = fmt.Errorf("points: %s must be a number", string(name))
				return
			}
			mode.Points[p] = int(n)
		})
		if err != nil {
			return mode, err
		}
	}
	return mode, nil
}

func compilePlayer(raw rawPlayer) types.PlayerDef {
	p := types.PlayerDef{
		ID:   raw.id,
		Name: getString(raw.table, "name"),
		CPU:  getBool(raw.table, "cpu", false),
	}
	if p.Name == "" {
		p.Name = raw.id
	}
	return p
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")
	params := map[string]any{}
	var inner *types.Condition

	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		key := string(ks)
		switch key {
		case "type":
		case "inner":
			if innerTbl, ok := v.(*lua.LTable); ok {
				c := compileCondition(innerTbl)
				inner = &c
			}
		default:
			params[key] = toGoValue(v)
		}
	})

	return types.Condition{
		Type:   condType,
		Params: params,
		Inner:  inner,
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{
		Type:   effType,
		Params: params,
	}
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	handler := types.EventHandler{
		EventType: raw.eventType,
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	effTbl := getTable(raw.table, "effects")
	if effTbl == nil {
		return handler, fmt.Errorf("handler has no effects table")
	}
	handler.Effects = compileEffects(effTbl)
	return handler, nil
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
