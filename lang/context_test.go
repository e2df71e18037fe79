package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestContextFromExpr(t *testing.T) {
	ctx, err := ContextFromExpr(`{status: {team: "yellow", hp: 40 * 2}, player: 3, pos: [1.5, 0, -2]}`)
	if err != nil {
		t.Fatalf("ContextFromExpr() error: %v", err)
	}

	e := mustCompile(t, `
map status.team { yellow -> player-color: #FF0 }
map status.hp   { 80 -> opacity: 0.7 }
map pos.x       { 1.5 -> label: east }
`, nil)

	got := e.Apply(ctx)

	if got.Color == nil || *got.Color != "#FF0" {
		t.Errorf("Color = %v, want #FF0", got.Color)
	}

	if got.Opacity == nil || *got.Opacity != 0.7 {
		t.Errorf("Opacity = %v, want 0.7", got.Opacity)
	}

	if got.Label == nil || *got.Label != "east" {
		t.Errorf("Label = %v, want east", got.Label)
	}
}

func TestContextFromExpr_Errors(t *testing.T) {
	for _, src := range []string{
		`[1, 2]`,
		`"status"`,
		`{status: `,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ContextFromExpr(src)
			if !errors.Is(err, ErrInvalidContext) {
				t.Errorf("error = %v, want %v", err, ErrInvalidContext)
			}
		})
	}
}

func TestDecodeContexts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"object", `{"status": {"team": "yellow"}}`, 1},
		{"array", `[{"player": 1}, {"player": 2}]`, 2},
		{"yaml", "- status:\n    team: red\n- player: 2\n", 2},
		{"empty", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeContexts(context.Background(), strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("DecodeContexts() error: %v", err)
			}

			if len(got) != tt.count {
				t.Errorf("len = %d, want %d", len(got), tt.count)
			}
		})
	}

	for _, bad := range []string{`[1, 2]`, `"text"`, `{unclosed`} {
		_, err := DecodeContexts(context.Background(), strings.NewReader(bad))
		if !errors.Is(err, ErrInvalidContext) {
			t.Errorf("DecodeContexts(%q) error = %v, want %v", bad, err, ErrInvalidContext)
		}
	}
}
