package lang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{""}},
		{"trim", "  a: 1  ", []string{"a: 1"}},
		{"crlf", "a\r\nb\rc\n", []string{"a", "b", "c", ""}},
		{"comment", "a: 1 # note", []string{"a: 1"}},
		{"full line comment", "# note\nb", []string{"", "b"}},
		{"rgb", "c: #FFF;", []string{"c: #FFF;"}},
		{"rrggbb", "c: #FFD400 # yellow", []string{"c: #FFD400"}},
		{"rrggbbaa", "c: #FFD40080", []string{"c: #FFD40080"}},
		{"four digits", "c: #FFFF", []string{"c:"}},
		{"longer token", "c: #abcdefg", []string{"c:"}},
		{"hex prefix word", "#add more", []string{"#add more"}},
		{"hex then word", "#fade-in", []string{""}},
		{"quoted hash", `label: "# not a comment" # comment`, []string{`label: "# not a comment"`}},
		{"single quoted hash", `label: 'a#b'`, []string{`label: 'a#b'`}},
		{"two literals", "#000 -> player-color: #fff", []string{"#000 -> player-color: #fff"}},
		{"apostrophe", "label: don't # note", []string{"label: don't"}},
		{"unmatched double quote", `label: 5" screen # note`, []string{`label: 5" screen`}},
		{"quote after unmatched", `a: it's "#x" # note`, []string{`a: it's "#x"`}},
		{"hex inside token", "icon: x#abc", []string{"icon: x"}},
		{"hex after separator", "player-color:#abc", []string{"player-color:#abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preprocess(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Preprocess(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestStripLines_KeepsColumns(t *testing.T) {
	got := stripLines("  a: #abc  # c\n\tb")
	want := []string{"  a: #abc", "\tb"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stripLines() mismatch (-want +got):\n%s", diff)
	}
}
