package loader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lua "github.com/yuin/gopher-lua"

	"github.com/remarqUK/sixstones/engine/state"
)

//go:embed builtin/*.lua
var builtin embed.FS

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	modes    []rawMode
	players  []rawPlayer
	handlers []rawHandler
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates them, and returns the immutable Defs. The Lua VM is discarded
// after loading.
func Load(dir string, logger log.Logger) (*state.Defs, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir), logger)
}

// Default loads the built-in game.
func Default(logger log.Logger) (*state.Defs, error) {
	sub, err := fs.Sub(builtin, "builtin")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub, logger)
}

// LoadFS is Load over any file system; .lua files at its root are read.
func LoadFS(fsys fs.FS, logger log.Logger) (*state.Defs, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading game directory: %w", err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := run(L, f, string(src)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	return finish(coll, logger)
}

// LoadString compiles a single Lua chunk. Used for inline game data and
// tests.
func LoadString(name, src string, logger log.Logger) (*state.Defs, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)
	if err := run(L, name, src); err != nil {
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}
	return finish(coll, logger)
}

func finish(coll *collector, logger log.Logger) (*state.Defs, error) {
	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	warnings, err := validate(defs)
	for _, w := range warnings {
		level.Warn(logger).Log("component", "loader", "msg", w)
	}
	if err != nil {
		return nil, err
	}
	level.Debug(logger).Log("component", "loader", "msg", "game loaded", "title", defs.Game.Title,
		"modes", len(defs.Modes), "players", len(defs.Players), "handlers", len(defs.Handlers))
	return defs, nil
}

func run(L *lua.LState, name, src string) error {
	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// newVM creates a sandboxed VM with only the safe libraries open.
func newVM() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Board randomness comes from the game seed only.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}
