// Package types defines the shared data structures for the SixStones engine.
// This package contains only type definitions: no logic, no methods.
package types

// Piece is the content of one grid cell. Empty is the explicit "no piece"
// sentinel; it only ever appears on an unsettled grid or in modes that
// disable spawning.
type Piece uint8

const (
	Empty Piece = iota
	Red
	Blue
	Green
	Yellow
	Purple
	White
	Skull
)

// PieceKinds is the number of non-empty piece kinds.
const PieceKinds = 7

// Pos is a grid coordinate. Y == 0 is the bottom row; gravity pulls toward
// lower Y.
type Pos struct {
	X int
	Y int
}

// MatchGroup is one scored group produced by a clear step.
type MatchGroup struct {
	Piece Piece
	Cells []Pos
}

// MoveCandidate is one legal swap evaluated by the CPU move search.
type MoveCandidate struct {
	A         Pos
	B         Pos
	Immediate int // cells cleared by the swap itself
	Cascade   int // largest group formed by pieces falling into place
	Score     int
}

// ModeDef is a board/game mode descriptor, authored in Lua.
type ModeDef struct {
	ID               string
	Name             string
	Width            int
	Height           int
	Pieces           int  // number of piece kinds in play, starting at Red
	Spawn            bool // refill emptied cells with new pieces
	Regenerate       bool // rebuild the board when no move is available
	BottomRowScoring bool
	ScoringPiece     Piece // scores on reaching row 0 when BottomRowScoring
	GroupByColor     bool  // legacy scoring: group matches by colour, not contiguity
	BonusMatch       int   // largest match size that grants an extra turn
	TargetScore      int   // 0 = no score limit
	MaxTurns         int   // 0 = no turn limit
	MaxRegenerations int
	Points           map[Piece]int // points per cleared piece; missing = 1
}

// PlayerDef is a seat at the table.
type PlayerDef struct {
	ID   string
	Name string
	CPU  bool
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
	Mode    string // default mode ID
}

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Condition is a predicate evaluated against state and the triggering event.
type Condition struct {
	Type   string
	Params map[string]any
	Inner  *Condition // used by "not" conditions
}

// EventHandler is a Lua-authored reaction to a game or board event.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}

// Event is emitted by the board or by applied effects.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
}

// Board events.
const (
	EventSwapRejected     = "swap_rejected"
	EventSwapReverted     = "swap_reverted"
	EventSwapCommitted    = "swap_committed"
	EventPiecesMatched    = "pieces_matched"
	EventBottomRowScored  = "bottom_row_scored"
	EventTurnEnded        = "turn_ended"
	EventBoardRegenerated = "board_regenerated"
	EventNoMoves          = "no_moves"
)

// Game events emitted by effects.
const (
	EventScoreChanged = "score_changed"
	EventTurnPassed   = "turn_passed"
	EventExtraTurn    = "extra_turn"
	EventGameOver     = "game_over"
)

// PlayerState holds one player's runtime state.
type PlayerState struct {
	ID        string
	Name      string
	CPU       bool
	Score     int
	Gems      map[string]int // cleared pieces by kind name
	Turns     int
	BestMatch int
}

// State is the complete mutable game state outside the board grid.
type State struct {
	Mode          string
	Players       []PlayerState
	Current       int
	Flags         map[string]bool
	TurnCount     int
	RNGSeed       int64
	RNGPosition   int64
	Regenerations int
	CommandLog    []string
}
