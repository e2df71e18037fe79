package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-yaml"
)

// Format writes the program in canonical HVQL syntax: the palette first, then
// each map block in declaration order with its default branch last.
//
// With indent 0 the whole program is written on a single line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	var b strings.Builder

	eol, pad := "\n", strings.Repeat(" ", indent)
	if indent <= 0 {
		eol, pad = " ", ""
	}

	sep := ""

	if len(p.Palette) > 0 {
		b.WriteString("palette {" + eol)

		for _, name := range sortedKeys(p.Palette) {
			b.WriteString(pad + name + ": " + p.Palette[name] + ";" + eol)
		}

		b.WriteString("}")

		sep = eol
		if indent > 0 {
			sep += "\n"
		}
	}

	for m := range p.All() {
		b.WriteString(sep + "map " + m.Path + " {" + eol)

		for _, c := range m.Cases {
			b.WriteString(pad + c.Source + " -> " + formatAssigns(c.Assigns) + ";" + eol)
		}

		if m.HasDefault {
			b.WriteString(pad + defaultMatch + " -> " + formatAssigns(m.Default) + ";" + eol)
		}

		b.WriteString("}")

		sep = eol
		if indent > 0 {
			sep += "\n"
		}
	}

	// Final newline
	_, err := fmt.Fprintln(w, b.String())

	return err
}

func formatAssigns(assigns []*Assign) string {
	part := make([]string, len(assigns))
	for i, a := range assigns {
		part[i] = a.Key + ": " + a.Value
	}

	return strings.Join(part, ", ")
}

// FormatJSON writes the program as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the program as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, p.ToMap(), indent)
}

// Dump writes a Go-syntax dump of the program's data structures.
func (p *Program) Dump(w io.Writer) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	cfg.Fdump(w, p.Palette, p.Maps)
}

// FormatStyle writes a style as JSON, YAML, or native "field: value" lines,
// selected by format ("json", "yaml", or anything else for native).
func FormatStyle(
	ctx context.Context,
	w io.Writer,
	style ViewStyle,
	format string,
	indent int,
) error {
	switch strings.ToLower(format) {
	case "json":
		var (
			data []byte
			err  error
		)

		if indent > 0 {
			data, err = json.MarshalIndent(style, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(style)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		return writeYAML(ctx, w, style.ToMap(), indent)

	default:
		_, err := fmt.Fprintln(w, StyleString(style))

		return err
	}
}

// StyleString renders the set fields of a style as "{ field: value, ... }"
// in field order.
func StyleString(style ViewStyle) string {
	part := make([]string, 0, fieldCount)

	for f := range Fields() {
		v, ok := style.Get(f)
		if !ok {
			continue
		}

		switch val := v.(type) {
		case float64:
			part = append(part, f.String()+": "+formatNumber(val))
		default:
			part = append(part, f.String()+": "+fmt.Sprint(val))
		}
	}

	if len(part) == 0 {
		return "{}"
	}

	return "{ " + strings.Join(part, ", ") + " }"
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
