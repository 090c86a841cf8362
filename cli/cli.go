// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the SixStones engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/remarqUK/sixstones/engine"
	"github.com/remarqUK/sixstones/engine/grid"
	"github.com/remarqUK/sixstones/engine/state"
	"github.com/remarqUK/sixstones/types"
)

// CLI handles line-oriented interaction with the players.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// DefaultSaveDir is where /save and /load keep their files.
func DefaultSaveDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sixstones", "saves")
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: DefaultSaveDir(),
	}
}

// Run starts the game loop. It shows the title and board, lets any CPU
// seated first move, then loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printResult(c.Engine.Start())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		for _, line := range HelpLines() {
			c.printLine(line)
		}

	case "/state":
		for _, line := range StateLines(c.Engine) {
			c.printSystem(line)
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if err := SaveTo(c.Engine, c.SaveDir, name); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", slotName(name)))
}

func (c *CLI) cmdLoad(name string) {
	if err := LoadFrom(c.Engine, c.SaveDir, name); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", slotName(name), c.Engine.State.TurnCount))
	for _, line := range engine.RenderBoard(c.Engine.Board.Grid()) {
		c.printLine(line)
	}
}

// SaveTo writes the running game to dir/<name>.json; an empty name is
// "quicksave".
func SaveTo(eng *engine.Engine, dir, name string) error {
	data, err := eng.SaveGame()
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	path := filepath.Join(dir, slotName(name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing save %s: %w", path, err)
	}
	return nil
}

// LoadFrom restores a game written by SaveTo.
func LoadFrom(eng *engine.Engine, dir, name string) error {
	path := filepath.Join(dir, slotName(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading save %s: %w", path, err)
	}
	if err := eng.LoadGame(data); err != nil {
		return fmt.Errorf("loading save %s: %w", path, err)
	}
	return nil
}

func slotName(name string) string {
	if name == "" {
		return "quicksave"
	}
	return name
}

// HelpLines lists the commands understood by the line front ends.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  - Save game (default: quicksave)",
		"  /load [name]  - Load game (default: quicksave)",
		"  /quit         - Exit game",
		"  /help         - Show this help",
		"  /state        - Debug: dump current state",
		"  /trace        - Toggle debug trace output",
		"",
		"Game commands:",
		"  swap c4 d4            - Swap two neighbouring gems",
		"  swap c4 up (u/d/l/r)  - Swap a gem with its neighbour",
		"  swap 2,3 3,3          - Zero-based x,y cells also work",
		"  hint (h)              - Suggest the best move",
		"  board (look, l)       - Show the board",
		"  score                 - Show the standings",
		"  again (g)             - Repeat your last command",
	}
}

// StateLines dumps the engine state for /state.
func StateLines(eng *engine.Engine) []string {
	s := eng.State
	lines := []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Mode: %s", s.Mode),
	}
	if p := state.CurrentPlayer(s); p != nil {
		lines = append(lines, fmt.Sprintf("To move: %s", p.Name))
	}
	for _, p := range s.Players {
		kind := "human"
		if p.CPU {
			kind = "cpu"
		}
		lines = append(lines, fmt.Sprintf("%s (%s): score %d, gems %v", p.Name, kind, p.Score, p.Gems))
	}
	if len(s.Flags) > 0 {
		lines = append(lines, fmt.Sprintf("Flags: %v", s.Flags))
	}
	lines = append(lines,
		fmt.Sprintf("Regenerations: %d", s.Regenerations),
		fmt.Sprintf("RNG: seed %d, position %d", s.RNGSeed, s.RNGPosition),
	)
	return lines
}

// TraceLines formats the effects and events of a step for /trace.
func TraceLines(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, "[trace]   "+e.Type+traceDetail(e))
		}
	}
	return lines
}

func traceDetail(e types.Event) string {
	switch e.Type {
	case types.EventPiecesMatched:
		groups, _ := e.Data["groups"].([]types.MatchGroup)
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			parts = append(parts, fmt.Sprintf("%s×%d", grid.Name(g.Piece), len(g.Cells)))
		}
		return fmt.Sprintf(" chain=%v [%s]", e.Data["chain"], strings.Join(parts, " "))
	case types.EventTurnEnded:
		return fmt.Sprintf(" chain=%v cleared=%v", e.Data["chain"], e.Data["cleared"])
	}
	return ""
}

func (c *CLI) printTrace(result types.Result) {
	for _, line := range TraceLines(result) {
		c.printLine(line)
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
