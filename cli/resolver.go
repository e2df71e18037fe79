package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/hvql/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags. Nested mappings are joined with hyphens, and underscores
// may stand in for hyphens, so these are equivalent:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// A file that cannot be parsed is logged and ignored so that "hvql init
// --force" can still replace it. Command-line flags override file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any

		if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
			log.WarnContext(ctx, "ignoring invalid configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		c := config{}
		c.flatten("", doc)

		return c, nil
	}
}

// config implements [kong.Resolver] over flattened configuration keys.
type config map[string]any

// flatten stores the leaves of m under hyphen-joined, underscore-free keys.
// Integers become float64, matching kong's JSON resolver.
func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := normalizeKey(k)
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch val := v.(type) {
		case map[string]any:
			c.flatten(key, val)

		case uint64:
			c[key] = float64(val)

		case int64:
			c[key] = float64(val)

		case int:
			c[key] = float64(val)

		default:
			c[key] = val
		}
	}
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.TrimSpace(k), "_", "-")
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[normalizeKey(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}
