// SixStones is a two-seat falling-gem duel played in the terminal, over a
// WebSocket, or CPU against CPU.
// Usage: sixstones [global options] [play|serve|selfplay] [options]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/urfave/cli"

	console "github.com/remarqUK/sixstones/cli"
	"github.com/remarqUK/sixstones/engine"
	"github.com/remarqUK/sixstones/engine/selfplay"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/loader"
	"github.com/remarqUK/sixstones/server"
	"github.com/remarqUK/sixstones/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var playFlags = []cli.Flag{
	cli.BoolFlag{Name: "plain", Usage: "line-oriented play instead of the full-screen UI"},
	cli.StringFlag{Name: "script", Usage: "read commands from `FILE` (implies --plain)"},
	cli.BoolFlag{Name: "trace", Usage: "print effects and events after each command"},
	cli.StringFlag{Name: "save-dir", Usage: "directory for /save and /load", Value: console.DefaultSaveDir()},
}

func main() {
	app := cli.NewApp()
	app.Name = "sixstones"
	app.Usage = "a falling-gem duel"
	app.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	app.Flags = append([]cli.Flag{
		cli.StringFlag{Name: "game", Usage: "load Lua game content from `DIR` instead of the built-in game"},
		cli.StringFlag{Name: "mode", Usage: "board mode `ID` (default: the game's default mode)"},
		cli.Int64Flag{Name: "seed", Usage: "random seed (default: time based)"},
		cli.StringFlag{Name: "log", Usage: "write logs to `FILE` instead of stderr"},
		cli.BoolFlag{Name: "verbose", Usage: "log at debug level"},
	}, playFlags...)
	app.Action = play
	app.Commands = []cli.Command{
		{
			Name:   "play",
			Usage:  "play against the CPU (default)",
			Flags:  playFlags,
			Action: play,
		},
		{
			Name:  "serve",
			Usage: "serve one game over HTTP and WebSocket",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Usage: "listen address", Value: server.DefaultConfig().Addr},
			},
			Action: serve,
		},
		{
			Name:  "selfplay",
			Usage: "play CPU-only games and report statistics",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "games", Usage: "number of games", Value: 20},
				cli.IntFlag{Name: "max-turns", Usage: "turn cap per game (0: the mode's, or 200)"},
			},
			Action: selfPlay,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flag helpers read a global flag from either the app or a subcommand
// context.
func globalString(c *cli.Context, name string) string {
	if c.GlobalIsSet(name) {
		return c.GlobalString(name)
	}
	return c.String(name)
}

func globalBool(c *cli.Context, name string) bool {
	return c.GlobalBool(name) || c.Bool(name)
}

// newLogger builds the logfmt logger selected by --log and --verbose.
// Without --verbose only records at min and above are kept.
func newLogger(c *cli.Context, min level.Option) (log.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if path := globalString(c, "log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if globalBool(c, "verbose") {
		min = level.AllowDebug()
	}
	return level.NewFilter(logger, min), closer, nil
}

// loadDefs loads the game content and applies --mode.
func loadDefs(c *cli.Context, logger log.Logger) (*state.Defs, error) {
	var (
		defs *state.Defs
		err  error
	)
	if dir := globalString(c, "game"); dir != "" {
		defs, err = loader.Load(dir, logger)
	} else {
		defs, err = loader.Default(logger)
	}
	if err != nil {
		return nil, fmt.Errorf("loading game: %w", err)
	}
	if mode := globalString(c, "mode"); mode != "" {
		if _, ok := defs.Modes[mode]; !ok {
			return nil, fmt.Errorf("unknown mode %q", mode)
		}
		defs.Mode = mode
	}
	return defs, nil
}

func seed(c *cli.Context) int64 {
	if c.GlobalIsSet("seed") {
		return c.GlobalInt64("seed")
	}
	return time.Now().UnixNano()
}

func newEngine(c *cli.Context, logger log.Logger) (*engine.Engine, error) {
	defs, err := loadDefs(c, logger)
	if err != nil {
		return nil, err
	}
	s := seed(c)
	level.Info(logger).Log("msg", "new game", "title", defs.Game.Title, "seed", s)
	return engine.New(defs, engine.Options{Seed: s, Logger: logger})
}

func play(c *cli.Context) error {
	logger, closer, err := newLogger(c, level.AllowWarn())
	if err != nil {
		return err
	}
	defer closer.Close()

	eng, err := newEngine(c, logger)
	if err != nil {
		return err
	}

	saveDir := c.String("save-dir")
	trace := globalBool(c, "trace")

	// Script mode: open file, force plain, echo commands.
	if script := globalString(c, "script"); script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		con := console.New(eng)
		con.In = f
		con.EchoInput = true
		con.Trace = trace
		con.SaveDir = saveDir
		con.Run()
		return nil
	}

	// Use the plain CLI if asked or stdout is not a terminal.
	if globalBool(c, "plain") || !isTerminal() {
		con := console.New(eng)
		con.Trace = trace
		con.SaveDir = saveDir
		con.Run()
		return nil
	}

	return tui.Run(eng, saveDir)
}

func serve(c *cli.Context) error {
	logger, closer, err := newLogger(c, level.AllowInfo())
	if err != nil {
		return err
	}
	defer closer.Close()

	eng, err := newEngine(c, logger)
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	cfg.Addr = c.String("addr")
	cfg.Version = version
	srv := server.New(eng, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func selfPlay(c *cli.Context) error {
	logger, closer, err := newLogger(c, level.AllowInfo())
	if err != nil {
		return err
	}
	defer closer.Close()

	defs, err := loadDefs(c, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := selfplay.Run(ctx, selfplay.Config{
		Defs:     defs,
		Games:    c.Int("games"),
		Seed:     seed(c),
		MaxTurns: c.Int("max-turns"),
		Logger:   logger,
	})
	for _, line := range rep.Lines() {
		fmt.Println(line)
	}
	return err
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
