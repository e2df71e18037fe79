package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

const formatScript = `
# team colors
palette { yellow: #FFD400; gray: #888 }

map status.team
{
  *      -> player-color: gray   # fallback first
  yellow -> player-color: ${yellow}, label: 'Team, Y';
}

map status.hp { 80 -> opacity: 0.7, point-size: 12; }
`

func TestProgram_Format(t *testing.T) {
	prog, err := ParseString(context.Background(), formatScript)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer

	if err := prog.Format(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := `palette {
  gray: #888;
  yellow: #FFD400;
}

map status.team {
  yellow -> player-color: ${yellow}, label: 'Team, Y';
  * -> player-color: gray;
}

map status.hp {
  80 -> opacity: 0.7, point-size: 12;
}
`

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestProgram_FormatRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, indent := range []int{0, 2, 4} {
		prog, err := ParseString(ctx, formatScript)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		var buf bytes.Buffer

		if err := prog.Format(ctx, &buf, indent); err != nil {
			t.Fatalf("format error: %v", err)
		}

		again, err := ParseString(ctx, buf.String())
		if err != nil {
			t.Fatalf("indent %d: reparse error: %v\n%s", indent, err, buf.String())
		}

		if diff := cmp.Diff(prog, again, ignorePositions); diff != "" {
			t.Errorf("indent %d: round trip mismatch (-want +got):\n%s", indent, diff)
		}
	}
}

func TestProgram_FormatOneLine(t *testing.T) {
	prog := NewBuilder().Program(
		NewBuilder().Map("a", NewBuilder().Case("1", NewBuilder().Assign("icon", "x"))),
	)

	var buf bytes.Buffer

	if err := prog.Format(context.Background(), &buf, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got, want := buf.String(), "map a { 1 -> icon: x; }\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestProgram_FormatJSON(t *testing.T) {
	prog, err := ParseString(context.Background(), formatScript)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer

	if err := prog.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	want := map[string]any{
		"palette": map[string]any{"yellow": "#FFD400", "gray": "#888"},
		"maps": []any{
			map[string]any{
				"path": "status.team",
				"cases": []any{
					map[string]any{
						"match": "yellow",
						"assign": []any{
							map[string]any{"player-color": "${yellow}"},
							map[string]any{"label": "'Team, Y'"},
						},
					},
				},
				"default": []any{
					map[string]any{"player-color": "gray"},
				},
			},
			map[string]any{
				"path": "status.hp",
				"cases": []any{
					map[string]any{
						"match": 80.0,
						"assign": []any{
							map[string]any{"opacity": "0.7"},
							map[string]any{"point-size": "12"},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestProgram_FormatYAML(t *testing.T) {
	prog, err := ParseString(context.Background(), formatScript)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for _, indent := range []int{2, 4} {
		var buf bytes.Buffer

		if err := prog.FormatYAML(context.Background(), &buf, indent); err != nil {
			t.Fatalf("format error: %v", err)
		}

		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
		}

		maps, ok := got["maps"].([]any)
		if !ok || len(maps) != 2 {
			t.Errorf("indent %d: maps = %#v", indent, got["maps"])
		}
	}
}

func TestProgram_PrintAndDump(t *testing.T) {
	prog, err := ParseString(context.Background(), formatScript)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer

	prog.Print(context.Background(), &buf)

	for _, want := range []string{
		"Palette:",
		"Entry: yellow: #FFD400",
		"Map: status.team @5:1",
		"Case: String: yellow",
		"Assign: player-color -> color: ${yellow}",
		"Default:",
		"Case: Number: 80",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Print() output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	prog.Dump(&buf)

	if !strings.Contains(buf.String(), "status.hp") {
		t.Errorf("Dump() output missing map path:\n%s", buf.String())
	}
}

func TestFormatStyle(t *testing.T) {
	style := ViewStyle{Color: ptr("#FFD400"), Opacity: ptr(0.7)}

	tests := []struct {
		format string
		want   string
	}{
		{"native", "{ color: #FFD400, opacity: 0.7 }\n"},
		{"json", `{"color":"#FFD400","opacity":0.7}` + "\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		if err := FormatStyle(context.Background(), &buf, style, tt.format, 0); err != nil {
			t.Fatalf("FormatStyle(%s) error: %v", tt.format, err)
		}

		if got := buf.String(); got != tt.want {
			t.Errorf("FormatStyle(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}

	if got := StyleString(ViewStyle{}); got != "{}" {
		t.Errorf("StyleString(empty) = %q", got)
	}
}
