package parser

import (
	"testing"

	"github.com/remarqUK/sixstones/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{"empty string", "", types.Intent{}},
		{"whitespace only", "   ", types.Intent{}},
		{"filler only", "the", types.Intent{}},

		// Basic verbs
		{"look", "look", types.Intent{Verb: "look"}},
		{"hint", "hint", types.Intent{Verb: "hint"}},
		{"score", "score", types.Intent{Verb: "score"}},

		// Verb aliases
		{"l → look", "l", types.Intent{Verb: "look"}},
		{"board → look", "board", types.Intent{Verb: "look"}},
		{"? → hint", "?", types.Intent{Verb: "hint"}},
		{"standings → score", "standings", types.Intent{Verb: "score"}},

		// Swaps
		{"swap two cells", "swap c4 d4", types.Intent{Verb: "swap", Object: "c4", Target: "d4"}},
		{"swap with preposition", "swap c4 with d4", types.Intent{Verb: "swap", Object: "c4", Target: "d4"}},
		{"swap with direction", "swap c4 up", types.Intent{Verb: "swap", Object: "c4", Target: "up"}},
		{"direction shorthand", "swap c4 r", types.Intent{Verb: "swap", Object: "c4", Target: "right"}},
		{"compass direction", "swap c4 north", types.Intent{Verb: "swap", Object: "c4", Target: "up"}},
		{"move alias", "move a1 b1", types.Intent{Verb: "swap", Object: "a1", Target: "b1"}},
		{"s alias", "s a1 a2", types.Intent{Verb: "swap", Object: "a1", Target: "a2"}},
		{"xy coordinates", "swap 2,3 3,3", types.Intent{Verb: "swap", Object: "2,3", Target: "3,3"}},
		{"bare cells", "c4 d4", types.Intent{Verb: "swap", Object: "c4", Target: "d4"}},
		{"bare cell and direction", "c4 down", types.Intent{Verb: "swap", Object: "c4", Target: "down"}},
		{"incomplete swap", "swap c4", types.Intent{Verb: "swap", Object: "c4"}},

		// Case and whitespace
		{"uppercase", "SWAP C4 D4", types.Intent{Verb: "swap", Object: "c4", Target: "d4"}},
		{"extra spaces", "  swap   c4   d4  ", types.Intent{Verb: "swap", Object: "c4", Target: "d4"}},

		// Unknown verbs pass through.
		{"unknown verb", "dance wildly", types.Intent{Verb: "dance", Object: "wildly"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsCoord(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"c4", true},
		{"h12", true},
		{"3,4", true},
		{"0,0", true},
		{"c", false},
		{"4", false},
		{"c4x", false},
		{"3,", false},
		{",4", false},
		{"1,2,3", false},
		{"up", false},
	}
	for _, tt := range tests {
		if got := IsCoord(tt.tok); got != tt.want {
			t.Errorf("IsCoord(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestIsDirection(t *testing.T) {
	for _, tok := range []string{"up", "down", "left", "right", "u", "e", "south"} {
		if !IsDirection(tok) {
			t.Errorf("IsDirection(%q) = false", tok)
		}
	}
	for _, tok := range []string{"c4", "sideways", ""} {
		if IsDirection(tok) {
			t.Errorf("IsDirection(%q) = true", tok)
		}
	}
}
