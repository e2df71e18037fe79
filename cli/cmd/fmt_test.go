package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/hvql/lang"
)

func TestNativeRun_RoundTrip(t *testing.T) {
	for _, indent := range []int{0, 2, 4} {
		ctx, buf := capture(t)

		f := &Native{Indent: indent, Source: writeFile(t, "team.hvql", teamScript)}
		if err := f.Run(ctx); err != nil {
			t.Fatalf("indent %d: Run() error = %v", indent, err)
		}

		want, err := lang.ParseString(context.Background(), teamScript)
		if err != nil {
			t.Fatal(err)
		}

		got, err := lang.ParseString(context.Background(), buf.String())
		if err != nil {
			t.Fatalf("indent %d: formatted output does not parse: %v\n%s", indent, err, buf.String())
		}

		if diff := cmp.Diff(want.ToMap(), got.ToMap()); diff != "" {
			t.Errorf("indent %d: round trip mismatch (-want +got):\n%s", indent, diff)
		}
	}
}

func TestJSONRun(t *testing.T) {
	ctx, buf := capture(t)

	j := &JSON{Indent: 2, Source: writeFile(t, "team.hvql", teamScript)}
	if err := j.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got struct {
		Palette map[string]string `json:"palette"`
		Maps    []struct {
			Path  string `json:"path"`
			Cases []struct {
				Match any `json:"match"`
			} `json:"cases"`
		} `json:"maps"`
	}

	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got.Palette["gold"] != "#FFD700" {
		t.Errorf("palette = %v", got.Palette)
	}

	if len(got.Maps) != 1 || got.Maps[0].Path != "status.team" || len(got.Maps[0].Cases) != 2 {
		t.Errorf("maps = %+v", got.Maps)
	}
}

func TestYAMLRun(t *testing.T) {
	ctx, buf := capture(t)

	y := &YAML{Indent: 2, Source: writeFile(t, "team.hvql", teamScript)}
	if err := y.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}

	if _, ok := got["maps"]; !ok {
		t.Errorf("YAML output missing maps: %v", got)
	}
}

func TestTreeRun(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, src string) error
		want []string
	}{
		{
			name: "ast",
			run:  func(ctx context.Context, src string) error { return (&AST{Source: src}).Run(ctx) },
			want: []string{"Palette", "Map", "status.team", "Default"},
		},
		{
			name: "dump",
			run:  func(ctx context.Context, src string) error { return (&Dump{Source: src}).Run(ctx) },
			want: []string{"lang.Palette", "MapBlock", "status.team"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := capture(t)

			if err := tt.run(ctx, writeFile(t, "team.hvql", teamScript)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestFmtRun_ParseError(t *testing.T) {
	ctx, _ := capture(t)

	f := &Native{Indent: 2, Source: writeFile(t, "bad.hvql", "palette {\n  yellow #FFD400\n}")}

	if err := f.Run(ctx); !errors.Is(err, lang.ErrInvalidPaletteLine) {
		t.Errorf("Run() error = %v, want %v", err, lang.ErrInvalidPaletteLine)
	}
}
