package server

import "encoding/json"

// WSMessage is a client request.
type WSMessage struct {
	Type    string          `json:"type"`              // "command", "board", "ping"
	ID      string          `json:"id"`                // echoed in the response
	Payload json.RawMessage `json:"payload,omitempty"` // type-specific
}

// WSResponse is a server reply or push.
type WSResponse struct {
	Type    string `json:"type"` // "welcome", "result", "board", "pong", "error"
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CommandRequest is the payload of a "command" message.
type CommandRequest struct {
	Input string `json:"input"`
}

// CommandResult is the payload of the reply to a command.
type CommandResult struct {
	Output []string      `json:"output"`
	Events []string      `json:"events"`
	Board  BoardSnapshot `json:"board"`
}

// PlayerScore is one seat in a snapshot.
type PlayerScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	CPU   bool   `json:"cpu"`
	Score int    `json:"score"`
}

// BoardSnapshot is the settled board and scoreboard at one moment.
type BoardSnapshot struct {
	Seq      uint64        `json:"seq"` // bumped by every command
	Mode     string        `json:"mode"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Rows     []string      `json:"rows"` // top row first
	Turn     int           `json:"turn"`
	Current  string        `json:"current,omitempty"`
	GameOver bool          `json:"game_over"`
	Players  []PlayerScore `json:"players"`
}

// Welcome is pushed to each client when it connects.
type Welcome struct {
	Title   string        `json:"title"`
	Opening []string      `json:"opening"`
	Board   BoardSnapshot `json:"board"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Game    string `json:"game"`
	Clients int    `json:"clients"`
}

// ErrorResponse is the body of a failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}
