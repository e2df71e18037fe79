package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvironment_Merge(t *testing.T) {
	base := &Environment{
		Palette: Palette{"a": "1", "b": "2"},
		Vars:    Vars{"v": "x"},
	}

	got := base.Merge(Palette{"b": "script", "c": "3"})
	want := &Environment{
		Palette: Palette{"a": "1", "b": "script", "c": "3"},
		Vars:    Vars{"v": "x"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	got.Vars["v"] = "changed"
	if base.Vars["v"] != "x" {
		t.Errorf("Merge() shares vars with base")
	}

	var empty *Environment
	if e := empty.Merge(nil); e.Palette == nil || e.Vars == nil {
		t.Errorf("nil Merge() = %+v, want initialized maps", e)
	}
}

func TestLoadEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Environment
	}{
		{
			name: "yaml",
			input: `
palette:
  yellow: "#FFD400"
  width: 3
vars:
  name: Ann
  hp: 80
  ratio: 0.5
`,
			want: &Environment{
				Palette: Palette{"yellow": "#FFD400", "width": "3"},
				Vars:    Vars{"name": "Ann", "hp": 80.0, "ratio": 0.5},
			},
		},
		{
			name:  "json",
			input: `{"palette": {"gray": "#888"}, "vars": {"n": 1}}`,
			want: &Environment{
				Palette: Palette{"gray": "#888"},
				Vars:    Vars{"n": 1.0},
			},
		},
		{
			name:  "empty",
			input: ``,
			want:  &Environment{Palette: Palette{}, Vars: Vars{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadEnvironment(context.Background(), strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("LoadEnvironment() error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadEnvironment() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadEnvironment_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "palette: [unclosed"},
		{"palette list", "palette:\n  a: [1, 2]\n"},
		{"var map", "vars:\n  a: {b: c}\n"},
		{"var bool", "vars:\n  a: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEnvironment(context.Background(), strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidEnvironment) {
				t.Errorf("error = %v, want %v", err, ErrInvalidEnvironment)
			}
		})
	}
}
