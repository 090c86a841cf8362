// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/remarqUK/sixstones/types"
)

var directionExpansions = map[string]string{
	"u":     "up",
	"d":     "down",
	"l":     "left",
	"r":     "right",
	"n":     "up",
	"s":     "down",
	"w":     "left",
	"e":     "right",
	"north": "up",
	"south": "down",
	"west":  "left",
	"east":  "right",
}

var directionNames = map[string]bool{
	"up": true, "down": true, "left": true, "right": true,
}

var verbAliases = map[string]string{
	// Swap
	"s":      "swap",
	"sw":     "swap",
	"move":   "swap",
	"switch": "swap",
	"trade":  "swap",
	"play":   "swap",

	// Board
	"l":     "look",
	"b":     "look",
	"board": "look",
	"show":  "look",
	"map":   "look",

	// Hint
	"h":       "hint",
	"?":       "hint",
	"suggest": "hint",
	"help":    "hint",

	// Score
	"scores":    "score",
	"standings": "score",
	"sc":        "score",
}

var prepositions = map[string]bool{
	"with": true, "and": true, "to": true, "for": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent. Swaps read
// "swap c4 d4", "swap c4 with d4" or "swap c4 up"; a bare pair of cells
// ("c4 d4", "c4 up") is a swap as well.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))
	words = stripFiller(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	// Bare coordinates: "c4 d4" → swap c4 d4.
	if IsCoord(words[0]) {
		words = append([]string{"swap"}, words...)
	}

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]
	intent := types.Intent{Verb: verb}

	if len(rest) > 0 {
		intent.Object = rest[0]
	}
	if len(rest) > 1 {
		intent.Target = rest[1]
		if verb == "swap" {
			intent.Target = expandDirection(rest[1])
		}
	}
	return intent
}

// IsCoord reports whether tok looks like a cell reference: a column letter
// followed by a row number ("c4"), or "x,y".
func IsCoord(tok string) bool {
	if strings.Contains(tok, ",") {
		parts := strings.Split(tok, ",")
		return len(parts) == 2 && isDigits(parts[0]) && isDigits(parts[1])
	}
	return len(tok) >= 2 && tok[0] >= 'a' && tok[0] <= 'z' && isDigits(tok[1:])
}

// IsDirection reports whether tok names a swap direction.
func IsDirection(tok string) bool {
	return directionNames[expandDirection(tok)]
}

func expandDirection(tok string) string {
	if d, ok := directionExpansions[tok]; ok {
		return d
	}
	return tok
}

// stripFiller removes articles and prepositions ("swap c4 with d4").
func stripFiller(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] && !prepositions[w] {
			result = append(result, w)
		}
	}
	return result
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
