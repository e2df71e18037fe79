package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ardnew/hvql/lang"
)

const contextSchemaURL = "hvql://schema/context.json"

// contextSchemaJSON constrains the well-known view context fields. Unknown
// fields are allowed since scripts may address any path.
const contextSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "status": { "type": ["object", "null"] },
    "objectType": { "type": "string" },
    "player": { "type": ["number", "string"] },
    "t": { "type": "number" },
    "pos": {
      "oneOf": [
        {
          "type": "array",
          "items": { "type": "number" },
          "minItems": 3,
          "maxItems": 3
        },
        {
          "type": "object",
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" },
            "z": { "type": "number" }
          }
        }
      ]
    }
  }
}`

var contextSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	err := compiler.AddResource(contextSchemaURL, strings.NewReader(contextSchemaJSON))
	if err != nil {
		return nil, err
	}

	return compiler.Compile(contextSchemaURL)
})

// validateContext checks one decoded context against the context schema.
func validateContext(v map[string]any) *Error {
	schema, err := contextSchema()
	if err != nil {
		return ErrInvalidContext.Wrap(err)
	}

	// The validator expects encoding/json shaped values.
	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidContext.Wrap(err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return ErrInvalidContext.Wrap(err)
	}

	if err := schema.Validate(doc); err != nil {
		return ErrInvalidContext.Wrap(err)
	}

	return nil
}

// readContexts collects the contexts from every file (YAML or JSON, one
// object or an array) followed by every expr-lang literal. Each context is
// validated before it is returned.
func readContexts(ctx context.Context, files, exprs []string) ([]map[string]any, error) {
	var out []map[string]any

	for src := range uniqueSources(files) {
		docs, err := decodeSource(ctx, src)
		if err != nil {
			return nil, err
		}

		for i, doc := range docs {
			if err := validateContext(doc); err != nil {
				return nil, err.With(
					slog.String("path", src.name),
					slog.Int("index", i),
				)
			}
		}

		out = append(out, docs...)
	}

	for _, src := range exprs {
		doc, err := lang.ContextFromExpr(src)
		if err != nil {
			return nil, ErrReadContext.Wrap(err)
		}

		if err := validateContext(doc); err != nil {
			return nil, err.With(slog.String("expr", src))
		}

		out = append(out, doc)
	}

	return out, nil
}

func decodeSource(ctx context.Context, src source) ([]map[string]any, error) {
	r, err := src.open()
	if err != nil {
		return nil, ErrReadContext.Wrap(err).With(slog.String("path", src.name))
	}
	defer r.Close()

	docs, err := lang.DecodeContexts(ctx, r)
	if err != nil {
		return nil, ErrReadContext.Wrap(err).With(slog.String("path", src.name))
	}

	return docs, nil
}
