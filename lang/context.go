package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
)

// ContextFromExpr evaluates an expr-lang map literal into a context value
// suitable for [Evaluator.Apply]:
//
//	{status: {team: "yellow", hp: 80}, player: 3, pos: [1.5, 0, -2]}
//
// The expression is evaluated with no environment. Any result other than a
// map is rejected with [ErrInvalidContext].
func ContextFromExpr(src string) (map[string]any, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, ErrInvalidContext.Wrap(err).
			With(slog.String("source", src))
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return nil, ErrInvalidContext.Wrap(err).
			With(slog.String("source", src))
	}

	m, ok := out.(map[string]any)
	if !ok {
		return nil, ErrInvalidContext.With(
			slog.String("source", src),
			slog.String("type", fmt.Sprintf("%T", out)),
		)
	}

	return m, nil
}

// DecodeContexts reads a YAML or JSON document holding either one context
// object or an array of them.
func DecodeContexts(ctx context.Context, r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "context"))
	}

	var doc any

	err = yaml.UnmarshalContext(ctx, data, &doc)
	if err != nil {
		return nil, ErrInvalidContext.Wrap(err)
	}

	switch v := doc.(type) {
	case nil:
		return nil, nil

	case map[string]any:
		return []map[string]any{v}, nil

	case []any:
		out := make([]map[string]any, 0, len(v))

		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, ErrInvalidContext.With(
					slog.Int("index", i),
					slog.String("type", fmt.Sprintf("%T", elem)),
				)
			}

			out = append(out, m)
		}

		return out, nil

	default:
		return nil, ErrInvalidContext.With(
			slog.String("type", fmt.Sprintf("%T", doc)),
		)
	}
}
