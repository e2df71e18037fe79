package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

var fuzzSeeds = []string{
	"",
	teamScript,
	formatScript,
	"palette { a: #abc }",
	"map a.b { 1 -> opacity: 0.5, point-size: 2; * -> label: x }",
	"map a { 'q' -> label: \"x, y\" }",
	"map a {\n-1 -> icon: -${x}-\n}",
	"# comment only",
	"palette {",
	"map {",
	"}",
	"map a { -> }",
	"map a { x -> : }",
	"\"unterminated",
	"-- -> ->",
}

// FuzzPreprocess checks that preprocessing never changes the line count.
func FuzzPreprocess(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		lines := Preprocess(input)

		normalized := strings.ReplaceAll(strings.ReplaceAll(input, "\r\n", "\n"), "\r", "\n")
		if want := strings.Count(normalized, "\n") + 1; len(lines) != want {
			t.Errorf("Preprocess(%q) returned %d lines, want %d", input, len(lines), want)
		}
	})
}

// FuzzParseString checks that parsing never panics and that any program it
// accepts survives a format round trip and evaluation.
func FuzzParseString(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		ctx := context.Background()

		prog, err := ParseString(ctx, input)
		if err != nil {
			if prog != nil {
				t.Errorf("ParseString(%q) returned a program with error %v", input, err)
			}

			return
		}

		var buf bytes.Buffer

		if err := prog.Format(ctx, &buf, 2); err != nil {
			t.Fatalf("Format error: %v", err)
		}

		if _, err := ParseString(ctx, buf.String()); err != nil {
			t.Errorf("formatted program does not parse: %v\ninput: %q\nformatted:\n%s",
				err, input, buf.String())
		}

		e, err := CompileProgram(ctx, prog, nil)
		if err != nil {
			t.Fatalf("CompileProgram error: %v", err)
		}

		_ = e.Apply(nil)
		_ = e.Apply(ViewContext{Status: map[string]any{"a": "x", "b": 1}})
	})
}
