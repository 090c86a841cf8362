package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Mode "id" { ... }: curried: Mode("id") returns a function that takes a table.
	L.SetGlobal("Mode", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.modes = append(coll.modes, rawMode{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Player "id" { ... }: curried. Seats follow declaration order.
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.players = append(coll.players, rawPlayer{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// On("event_type", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

// marker builds a {type = typ, ...} table from key/value pairs.
func marker(L *lua.LState, typ string, kv ...any) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	for i := 0; i+1 < len(kv); i += 2 {
		tbl.RawSetString(kv[i].(string), kv[i+1].(lua.LValue))
	}
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "flag_set", "flag", lua.LString(L.CheckString(1))))
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "flag_not", "flag", lua.LString(L.CheckString(1))))
		return 1
	}))

	// FlagIs("flag", value)
	L.SetGlobal("FlagIs", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.CheckBool(2)
		L.Push(marker(L, "flag_is", "flag", lua.LString(flag), "value", lua.LBool(value)))
		return 1
	}))

	// ScoreAtLeast(n): the player to move.
	L.SetGlobal("ScoreAtLeast", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "score_at_least", "value", L.CheckNumber(1)))
		return 1
	}))

	// TurnAtLeast(n)
	L.SetGlobal("TurnAtLeast", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "turn_at_least", "value", L.CheckNumber(1)))
		return 1
	}))

	// EventAtLeast("largest", 5): a numeric field of the triggering event.
	L.SetGlobal("EventAtLeast", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.CheckNumber(2)
		L.Push(marker(L, "event_at_least", "key", lua.LString(key), "value", value))
		return 1
	}))

	// IsCPU()
	L.SetGlobal("IsCPU", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "is_cpu"))
		return 1
	}))

	// ModeIs("id")
	L.SetGlobal("ModeIs", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "mode_is", "mode", lua.LString(L.CheckString(1))))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "not", "inner", L.CheckTable(1)))
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "say", "text", lua.LString(L.CheckString(1))))
		return 1
	}))

	// SetFlag("flag", value)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.CheckBool(2)
		L.Push(marker(L, "set_flag", "flag", lua.LString(flag), "value", lua.LBool(value)))
		return 1
	}))

	// AddScore(n): credited to the player who made the move.
	L.SetGlobal("AddScore", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "add_score", "amount", L.CheckNumber(1)))
		return 1
	}))

	// EmitEvent("name")
	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "emit_event", "event", lua.LString(L.CheckString(1))))
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		L.Push(marker(L, "stop"))
		return 1
	}))
}
