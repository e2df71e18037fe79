package repl

import (
	"context"
	"slices"
	"testing"

	"github.com/ardnew/hvql/lang"
)

const teamScript = `
palette { gold: #FFD700; }
map status.team {
  yellow -> player-color: gold, opacity: 0.7;
  blue   -> player-color: #0055FF;
  *      -> label: unknown;
}
map status.hand {
  ace -> icon: star;
}
map objectType {
  coin -> point-size: 4;
}
`

func mustProgram(t *testing.T) *lang.Program {
	t.Helper()

	prog, err := lang.ParseString(context.Background(), teamScript)
	if err != nil {
		t.Fatal(err)
	}

	return prog
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_brace", "{sta", 4, "sta", 1, 4},
		{"nested_key", "{status: {te", 12, "te", 10, 12},
		{"after_colon_space", "{status: ", 9, "", 9, 9},
		{"in_quotes", `{team: "yel`, 11, "yel", 8, 11},
		{"after_comma", "{player: 1, po", 14, "po", 12, 14},
		{"mid_word", "{objectType", 4, "objectType", 1, 11},
		{"hyphenated", "{hit-points", 11, "hit-points", 1, 11},
		{"cursor_past_end", "abc", 10, "abc", 0, 3},
		{"empty", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestScanLiteral(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPath  string
		wantValue bool
	}{
		{"empty", "", "", false},
		{"top_key", "{", "", false},
		{"top_value", "{player: ", "player", true},
		{"nested_key", "{status: {", "status", false},
		{"nested_value", "{status: {team: ", "status.team", true},
		{"quoted_value", `{status: {team: "`, "status.team", true},
		{"after_comma", "{status: {team: \"blue\", ", "status", false},
		{"closed_nested", "{status: {team: \"blue\"}, ", "", false},
		{"quoted_brace", `{label: "{", `, "", false},
		{"array_value", "{pos: [1, ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanLiteral(tt.input, len(tt.input))
			if got.path() != tt.wantPath || got.value != tt.wantValue {
				t.Errorf("scanLiteral(%q) = (%q, %v), want (%q, %v)",
					tt.input, got.path(), got.value, tt.wantPath, tt.wantValue)
			}
		})
	}
}

func TestKeyCandidates(t *testing.T) {
	prog := mustProgram(t)

	tests := []struct {
		parent string
		want   []string
	}{
		{"", []string{"status", "player", "pos", "t", "objectType"}},
		{"status", []string{"team", "hand"}},
		{"status.team", nil},
		{"player", nil},
	}

	for _, tt := range tests {
		if got := keyCandidates(prog, tt.parent); !slices.Equal(got, tt.want) {
			t.Errorf("keyCandidates(%q) = %v, want %v", tt.parent, got, tt.want)
		}
	}
}

func TestValueCandidates(t *testing.T) {
	prog := mustProgram(t)

	tests := []struct {
		path string
		want []string
	}{
		{"status.team", []string{"yellow", "blue"}},
		{"status.hand", []string{"ace"}},
		{"player", nil},
	}

	for _, tt := range tests {
		if got := valueCandidates(prog, tt.path); !slices.Equal(got, tt.want) {
			t.Errorf("valueCandidates(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
