package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Palette maps names to verbatim values (typically colors).
type Palette map[string]string

// Vars maps names to caller-supplied string or number values. Vars are only
// reachable from scripts through explicit "${name}" interpolation.
type Vars map[string]any

// Environment is the set of named values available to template expansion.
type Environment struct {
	Palette Palette `json:"palette,omitempty" yaml:"palette,omitempty"`
	Vars    Vars    `json:"vars,omitempty"    yaml:"vars,omitempty"`
}

// Merge returns a new Environment whose palette is the union of e's palette
// and script, with script entries taking precedence. Vars are copied from e.
// A nil receiver is treated as an empty environment.
func (e *Environment) Merge(script Palette) *Environment {
	out := &Environment{
		Palette: make(Palette, len(script)),
		Vars:    make(Vars),
	}

	if e != nil {
		maps.Copy(out.Palette, e.Palette)
		maps.Copy(out.Vars, e.Vars)
	}

	maps.Copy(out.Palette, script)

	return out
}

// lookup resolves a template reference: palette first, then vars.
func (e *Environment) lookup(name string) (string, bool) {
	if v, ok := e.Palette[name]; ok {
		return v, true
	}

	if v, ok := e.Vars[name]; ok {
		s, ok := scalarString(v)

		return s, ok
	}

	return "", false
}

// LoadEnvironment decodes a YAML or JSON document of the form
//
//	palette: { name: value, ... }
//	vars:    { name: value, ... }
//
// Palette values may be strings or numbers. Var values must be strings or
// numbers; any other type is rejected with [ErrInvalidEnvironment].
func LoadEnvironment(ctx context.Context, r io.Reader) (*Environment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "environment"))
	}

	var doc struct {
		Palette map[string]any `yaml:"palette"`
		Vars    map[string]any `yaml:"vars"`
	}

	// YAML is a superset of JSON, so one decoder serves both.
	err = yaml.UnmarshalContext(ctx, data, &doc)
	if err != nil {
		return nil, ErrInvalidEnvironment.Wrap(err)
	}

	env := &Environment{
		Palette: make(Palette, len(doc.Palette)),
		Vars:    make(Vars, len(doc.Vars)),
	}

	for name, v := range doc.Palette {
		s, ok := scalarString(v)
		if !ok {
			return nil, ErrInvalidEnvironment.With(
				slog.String("palette", name),
				slog.String("type", fmt.Sprintf("%T", v)),
			)
		}

		env.Palette[name] = s
	}

	for name, v := range doc.Vars {
		n, ok := normalizeVar(v)
		if !ok {
			return nil, ErrInvalidEnvironment.With(
				slog.String("var", name),
				slog.String("type", fmt.Sprintf("%T", v)),
			)
		}

		env.Vars[name] = n
	}

	return env, nil
}

// normalizeVar converts v to a string or float64.
func normalizeVar(v any) (any, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}

	n, ok := toNumber(v)
	if !ok {
		return nil, false
	}

	return n, true
}

// scalarString formats a string or number as template text.
func scalarString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}

	n, ok := toNumber(v)
	if !ok {
		return "", false
	}

	return formatNumber(n), true
}

// toNumber converts any Go numeric type to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)

		return f, err == nil
	default:
		return 0, false
	}
}
