// Package grid implements the fixed-size board of pieces and the gravity
// rule shared by the board engine and the CPU search.
package grid

import (
	"fmt"
	"strings"

	"github.com/remarqUK/sixstones/types"
)

// Grid is a width × height array of pieces, stored row-major with row 0 at
// the bottom. Dimensions never change after creation.
type Grid struct {
	width  int
	height int
	cells  []types.Piece
}

// New creates an empty grid.
func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]types.Piece, width*height),
	}
}

// Parse builds a grid from letter rows listed top row first, e.g.
//
//	Parse("RGB", "GBR", "RRY")
//
// puts "RRY" on row 0. Spaces are ignored; '.' is an empty cell.
func Parse(rows ...string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	clean := make([]string, len(rows))
	for i, row := range rows {
		clean[i] = strings.ReplaceAll(row, " ", "")
	}
	width := len(clean[0])
	if width == 0 {
		return nil, fmt.Errorf("grid row 0 is empty")
	}

	g := New(width, len(clean))
	for i, row := range clean {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, want %d", i, len(row), width)
		}
		y := g.height - 1 - i
		for x, r := range row {
			p, ok := ParseLetter(r)
			if !ok {
				return nil, fmt.Errorf("row %d col %d: unknown piece %q", i, x, r)
			}
			g.Set(types.Pos{X: x, Y: y}, p)
		}
	}
	return g, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(rows ...string) *Grid {
	g, err := Parse(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p is a cell of the grid.
func (g *Grid) InBounds(p types.Pos) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// At returns the piece at p, or Empty when p is out of bounds.
func (g *Grid) At(p types.Pos) types.Piece {
	if !g.InBounds(p) {
		return types.Empty
	}
	return g.cells[p.Y*g.width+p.X]
}

// Set places a piece at p. Out-of-bounds writes are ignored.
func (g *Grid) Set(p types.Pos, piece types.Piece) {
	if !g.InBounds(p) {
		return
	}
	g.cells[p.Y*g.width+p.X] = piece
}

// Swap exchanges the contents of two cells.
func (g *Grid) Swap(a, b types.Pos) {
	pa, pb := g.At(a), g.At(b)
	g.Set(a, pb)
	g.Set(b, pa)
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([]types.Piece, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Full reports whether every cell is occupied.
func (g *Grid) Full() bool {
	for _, c := range g.cells {
		if c == types.Empty {
			return false
		}
	}
	return true
}

// Empties returns the empty cells from the top row down, left to right.
func (g *Grid) Empties() []types.Pos {
	var out []types.Pos
	for y := g.height - 1; y >= 0; y-- {
		for x := 0; x < g.width; x++ {
			p := types.Pos{X: x, Y: y}
			if g.At(p) == types.Empty {
				out = append(out, p)
			}
		}
	}
	return out
}

// Clear empties the given cells and returns how many were occupied.
func (g *Grid) Clear(cells []types.Pos) int {
	n := 0
	for _, p := range cells {
		if g.At(p) != types.Empty {
			n++
		}
		g.Set(p, types.Empty)
	}
	return n
}

// Collapse applies gravity: each column is compacted toward row 0 keeping
// the relative order of its pieces. Columns never exchange pieces.
// Returns the number of pieces that moved.
func (g *Grid) Collapse() int {
	moved := 0
	for x := 0; x < g.width; x++ {
		write := 0
		for y := 0; y < g.height; y++ {
			p := g.cells[y*g.width+x]
			if p == types.Empty {
				continue
			}
			if y != write {
				g.cells[write*g.width+x] = p
				g.cells[y*g.width+x] = types.Empty
				moved++
			}
			write++
		}
	}
	return moved
}

// Column returns column x from the bottom up.
func (g *Grid) Column(x int) []types.Piece {
	col := make([]types.Piece, g.height)
	for y := 0; y < g.height; y++ {
		col[y] = g.At(types.Pos{X: x, Y: y})
	}
	return col
}

// Rows returns the grid as letter rows, top row first (the Parse format).
func (g *Grid) Rows() []string {
	rows := make([]string, 0, g.height)
	for y := g.height - 1; y >= 0; y-- {
		var b strings.Builder
		for x := 0; x < g.width; x++ {
			b.WriteByte(Letter(g.At(types.Pos{X: x, Y: y})))
		}
		rows = append(rows, b.String())
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

// Adjacent reports whether a and b are orthogonal neighbours.
func Adjacent(a, b types.Pos) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
}
