package lang

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustCompile(t testing.TB, script string, env *Environment) *Evaluator {
	t.Helper()

	e, err := Compile(context.Background(), script, env, WithCache(false))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	return e
}

func status(kv ...any) ViewContext {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}

	return ViewContext{Status: m}
}

const teamScript = `palette { yellow: #FFD400; }
map status.team { yellow -> player-color: ${yellow}; * -> player-color: #888; }`

func TestApply_PaletteSubstitution(t *testing.T) {
	e := mustCompile(t, teamScript, nil)

	got := e.Apply(status("team", "yellow"))
	want := ViewStyle{Color: ptr("#FFD400")}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_DefaultFallback(t *testing.T) {
	e := mustCompile(t, teamScript, nil)

	tests := []struct {
		name string
		ctx  any
	}{
		{"unmatched", status("team", "green")},
		{"missing field", status("hand", "rock")},
		{"nil status", ViewContext{}},
		{"nil context", nil},
		{"wrong type", status("team", 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(tt.ctx)
			if diff := cmp.Diff(ViewStyle{Color: ptr("#888")}, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_NoDefaultContributesNothing(t *testing.T) {
	e := mustCompile(t, `map status.team { red -> player-color: #f00; }`, nil)

	if got := e.Apply(status("team", "blue")); !got.IsZero() {
		t.Errorf("expected empty style, got %+v", got)
	}
}

func TestApply_CrossBlockMerge(t *testing.T) {
	script := `
map status.team {
  yellow -> player-color: #FFD400;
}

map status.hand {
  rock -> icon: 'hand-rock';
}
`
	e := mustCompile(t, script, nil)

	got := e.Apply(status("team", "yellow", "hand", "rock"))
	want := ViewStyle{Color: ptr("#FFD400"), Icon: ptr("hand-rock")}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_LastWriteWins(t *testing.T) {
	script := `
map status.team { yellow -> player-color: #000; * -> player-color: #000; }
map status.hand { rock -> player-color: #111; * -> player-color: #111; }
`
	e := mustCompile(t, script, nil)

	for _, ctx := range []ViewContext{
		status("team", "yellow", "hand", "rock"),
		status("team", "yellow"),
		status("hand", "paper"),
		{},
	} {
		got := e.Apply(ctx)
		if got.Color == nil || *got.Color != "#111" {
			t.Errorf("Apply(%v).Color = %v, want #111", ctx.Status, got.Color)
		}
	}
}

func TestApply_NumericMultiAssign(t *testing.T) {
	e := mustCompile(t,
		`map status.hp { 80 -> opacity: 0.7, point-size: 12; * -> opacity: 0.3; }`,
		nil)

	tests := []struct {
		name string
		hp   any
		want ViewStyle
	}{
		{"int", 80, ViewStyle{Opacity: ptr(0.7), PointSize: ptr(12.0)}},
		{"float", 80.0, ViewStyle{Opacity: ptr(0.7), PointSize: ptr(12.0)}},
		{"int64", int64(80), ViewStyle{Opacity: ptr(0.7), PointSize: ptr(12.0)}},
		{"unmatched", 82, ViewStyle{Opacity: ptr(0.3)}},
		{"string is not a number", "80", ViewStyle{Opacity: ptr(0.3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(status("hp", tt.hp))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_QuotedValue(t *testing.T) {
	e := mustCompile(t, `map status.hand { rock -> icon: 'hand-rock'; }`, nil)

	got := e.Apply(status("hand", "ROCK"))
	if got.Icon == nil || *got.Icon != "hand-rock" {
		t.Fatalf("Icon = %v, want hand-rock", got.Icon)
	}
}

func TestApply_Matching(t *testing.T) {
	script := `
map status.flag {
  true  -> label: yes;
  false -> label: no;
}
map status.n {
  -1.5 -> icon: neg;
  +3   -> icon: three;
  "3"  -> icon: string;
}
map objectType {
  Marker -> player-icon: pin;
}
`
	e := mustCompile(t, script, nil)

	tests := []struct {
		name string
		ctx  any
		want ViewStyle
	}{
		{"bool true", status("flag", true), ViewStyle{Label: ptr("yes")}},
		{"bool false", status("flag", false), ViewStyle{Label: ptr("no")}},
		{"bool string", status("flag", "true"), ViewStyle{}},
		{"negative", status("n", -1.5), ViewStyle{Icon: ptr("neg")}},
		{"signed", status("n", 3), ViewStyle{Icon: ptr("three")}},
		{"quoted number", status("n", "3"), ViewStyle{Icon: ptr("string")}},
		{
			"object type folded",
			ViewContext{ObjectType: "MARKER"},
			ViewStyle{PlayerIcon: ptr("pin")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.Apply(tt.ctx)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_FirstMatchWins(t *testing.T) {
	e := mustCompile(t, `map status.team { yellow -> label: a; YELLOW -> label: b; }`, nil)

	got := e.Apply(status("team", "Yellow"))
	if got.Label == nil || *got.Label != "a" {
		t.Errorf("Label = %v, want a", got.Label)
	}
}

func TestApply_DuplicateDefaultLastWins(t *testing.T) {
	e := mustCompile(t, `map status.team { * -> label: first; * -> label: second; }`, nil)

	got := e.Apply(nil)
	if got.Label == nil || *got.Label != "second" {
		t.Errorf("Label = %v, want second", got.Label)
	}
}

func TestApply_DroppedAssignments(t *testing.T) {
	script := `map status.team {
  * -> unknown: x, opacity: half, point-size: ${size}, label: kept
}`
	e := mustCompile(t, script, &Environment{Vars: Vars{"size": "big"}})

	got := e.Apply(nil)
	if diff := cmp.Diff(ViewStyle{Label: ptr("kept")}, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Environment(t *testing.T) {
	base := &Environment{
		Palette: Palette{"yellow": "#FFFF00", "gray": "#777"},
		Vars:    Vars{"size": 9, "name": "P"},
	}

	script := `
palette { yellow: #FFD400; }
map status.team {
  yellow -> player-color: yellow, label: "${name}-${player}", point-size: ${size};
  *      -> player-color: gray, trail-color: ${missing}x;
}
`
	e := mustCompile(t, script, base)

	tests := []struct {
		name string
		ctx  any
		want ViewStyle
	}{
		{
			"script palette wins",
			status("team", "yellow"),
			ViewStyle{
				Color:     ptr("#FFD400"),
				Label:     ptr("P-"),
				PointSize: ptr(9.0),
			},
		},
		{
			"base palette alias",
			status("team", "red"),
			ViewStyle{Color: ptr("#777"), TrailColor: ptr("x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.Apply(tt.ctx)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// The base environment is not modified by the merge.
	if base.Palette["yellow"] != "#FFFF00" {
		t.Errorf("base palette mutated: %v", base.Palette)
	}
}

func TestApply_FreshStyle(t *testing.T) {
	e := mustCompile(t, teamScript, nil)

	a := e.Apply(status("team", "yellow"))
	*a.Color = "mutated"

	b := e.Apply(status("team", "yellow"))
	if *b.Color != "#FFD400" {
		t.Errorf("style storage shared between calls: %q", *b.Color)
	}
}

func TestApply_Concurrent(t *testing.T) {
	e := mustCompile(t, teamScript, nil)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			team := "yellow"
			want := "#FFD400"

			if i%2 == 1 {
				team, want = "green", "#888"
			}

			for range 200 {
				got := e.Apply(status("team", team))
				if got.Color == nil || *got.Color != want {
					t.Errorf("Apply(%s).Color = %v, want %s", team, got.Color, want)

					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestApply_NilEvaluator(t *testing.T) {
	var e *Evaluator

	if got := e.Apply(status("team", "yellow")); !got.IsZero() {
		t.Errorf("expected empty style, got %+v", got)
	}

	if got := NopEvaluator().Apply(nil); !got.IsZero() {
		t.Errorf("expected empty style, got %+v", got)
	}
}

func TestCompile_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   *Error
	}{
		{"unclosed palette", "palette { yellow: #FFD400;", ErrMissingCloseBrace},
		{
			"assignment without value",
			"map status.team { yellow -> player-color; }",
			ErrInvalidAssignment,
		},
		{"unknown statement", "bogus something", ErrUnknownStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(context.Background(), tt.script, nil, WithCache(false))
			if err == nil {
				t.Fatalf("expected error, got evaluator %v", e)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}

			if e != nil {
				t.Errorf("expected nil evaluator on error")
			}
		})
	}
}

func TestEvaluator_Accessors(t *testing.T) {
	e := mustCompile(t, teamScript, &Environment{Vars: Vars{"x": 1}})

	if got := e.Program().Paths(); !cmp.Equal(got, []string{"status.team"}) {
		t.Errorf("Paths() = %v", got)
	}

	env := e.Environment()
	env.Palette["yellow"] = "changed"

	if e.Environment().Palette["yellow"] != "#FFD400" {
		t.Errorf("Environment() returned shared storage")
	}

	f := e.Func()
	if got := f(status("team", "green")); *got.Color != "#888" {
		t.Errorf("Func()() = %v", *got.Color)
	}
}
