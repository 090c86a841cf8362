package board

// Phase is the board state machine position.
type Phase int

const (
	Idle Phase = iota
	SwapPending
	Validating
	Resolving
	Clearing
	Falling
	Refilling
	CheckingMoves
	Regenerating
)

var phaseNames = [...]string{
	Idle:          "idle",
	SwapPending:   "swap_pending",
	Validating:    "validating",
	Resolving:     "resolving",
	Clearing:      "clearing",
	Falling:       "falling",
	Refilling:     "refilling",
	CheckingMoves: "checking_moves",
	Regenerating:  "regenerating",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Reason explains why a swap request was refused.
type Reason string

const (
	ReasonOutOfBounds Reason = "out_of_bounds"
	ReasonNotAdjacent Reason = "not_adjacent"
	ReasonEmptyCell   Reason = "empty_cell"
	ReasonBusy        Reason = "busy"
	ReasonGameOver    Reason = "game_over"
)
