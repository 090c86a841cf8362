package grid

import (
	"strings"

	"github.com/remarqUK/sixstones/types"
)

var pieceLetters = [...]byte{
	types.Empty:  '.',
	types.Red:    'R',
	types.Blue:   'B',
	types.Green:  'G',
	types.Yellow: 'Y',
	types.Purple: 'P',
	types.White:  'W',
	types.Skull:  'S',
}

var pieceNames = [...]string{
	types.Empty:  "empty",
	types.Red:    "red",
	types.Blue:   "blue",
	types.Green:  "green",
	types.Yellow: "yellow",
	types.Purple: "purple",
	types.White:  "white",
	types.Skull:  "skull",
}

// Letter returns the one-letter code of a piece ('.' for empty, '?' if unknown).
func Letter(p types.Piece) byte {
	if int(p) >= len(pieceLetters) {
		return '?'
	}
	return pieceLetters[p]
}

// Name returns the lower-case name of a piece.
func Name(p types.Piece) string {
	if int(p) >= len(pieceNames) {
		return "unknown"
	}
	return pieceNames[p]
}

// ParseLetter maps a one-letter code back to a piece. Lower case is accepted.
func ParseLetter(r rune) (types.Piece, bool) {
	up := byte(strings.ToUpper(string(r))[0])
	for i, l := range pieceLetters {
		if l == up {
			return types.Piece(i), true
		}
	}
	return types.Empty, false
}

// PieceByName maps a piece name ("red", "skull") to a piece.
func PieceByName(name string) (types.Piece, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range pieceNames {
		if i > 0 && n == name {
			return types.Piece(i), true
		}
	}
	return types.Empty, false
}

// Kinds returns the first n non-empty piece kinds, Red first.
func Kinds(n int) []types.Piece {
	if n > types.PieceKinds {
		n = types.PieceKinds
	}
	kinds := make([]types.Piece, 0, n)
	for i := 1; i <= n; i++ {
		kinds = append(kinds, types.Piece(i))
	}
	return kinds
}
