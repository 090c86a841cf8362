// Package resolve maps the cell references in parsed intents to board
// positions.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/remarqUK/sixstones/types"
)

// Bounds is the board size references are checked against.
type Bounds struct {
	Width  int
	Height int
}

// Result holds the resolved positions for a swap.
type Result struct {
	A types.Pos
	B types.Pos
}

// CoordError indicates a cell reference that does not name a cell on the
// board.
type CoordError struct {
	Token  string
	Reason string
}

func (e *CoordError) Error() string {
	return fmt.Sprintf("%q is not a cell: %s", e.Token, e.Reason)
}

// MissingError indicates a swap without both cells.
type MissingError struct {
	What string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("swap what? (missing %s)", e.What)
}

var directions = map[string]types.Pos{
	"up":    {Y: 1},
	"down":  {Y: -1},
	"left":  {X: -1},
	"right": {X: 1},
}

// Resolve maps a swap intent's object and target to positions. The target
// may be a second cell or a direction from the first.
func Resolve(b Bounds, intent types.Intent) (Result, error) {
	var res Result
	if intent.Object == "" {
		return res, &MissingError{What: "first cell"}
	}
	if intent.Target == "" {
		return res, &MissingError{What: "second cell or direction"}
	}

	a, err := Coord(b, intent.Object)
	if err != nil {
		return res, err
	}
	res.A = a

	if d, ok := directions[intent.Target]; ok {
		res.B = types.Pos{X: a.X + d.X, Y: a.Y + d.Y}
		if !inBounds(b, res.B) {
			return res, &CoordError{Token: intent.Target, Reason: "that direction leaves the board"}
		}
		return res, nil
	}

	res.B, err = Coord(b, intent.Target)
	return res, err
}

// Coord parses one cell reference. "c4" is column c, row 4 counted from the
// bottom starting at 1. "2,3" is x=2, y=3 counted from zero.
func Coord(b Bounds, tok string) (types.Pos, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	var p types.Pos

	if i := strings.IndexByte(tok, ','); i >= 0 {
		x, errX := strconv.Atoi(tok[:i])
		y, errY := strconv.Atoi(tok[i+1:])
		if errX != nil || errY != nil {
			return p, &CoordError{Token: tok, Reason: "want x,y"}
		}
		p = types.Pos{X: x, Y: y}
	} else {
		if len(tok) < 2 || tok[0] < 'a' || tok[0] > 'z' {
			return p, &CoordError{Token: tok, Reason: "want a column letter and a row number"}
		}
		row, err := strconv.Atoi(tok[1:])
		if err != nil {
			return p, &CoordError{Token: tok, Reason: "want a column letter and a row number"}
		}
		p = types.Pos{X: int(tok[0] - 'a'), Y: row - 1}
	}

	if !inBounds(b, p) {
		return p, &CoordError{Token: tok, Reason: fmt.Sprintf("off the %dx%d board", b.Width, b.Height)}
	}
	return p, nil
}

// Name formats a position in column-letter notation.
func Name(p types.Pos) string {
	return fmt.Sprintf("%c%d", 'a'+rune(p.X), p.Y+1)
}

func inBounds(b Bounds, p types.Pos) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}
