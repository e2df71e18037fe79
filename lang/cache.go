package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// globalCache stores compiled evaluators keyed by the hash of the script
// and its base environment.
var globalCache sync.Map

// entry tracks compilation state for one cache key.
type entry struct {
	once sync.Once
	eval *Evaluator
	err  error
}

// hashEnvironment hashes the environment in sorted key order so that equal
// environments produce equal hashes.
func hashEnvironment(env *Environment) uint64 {
	h := xxh3.New()

	if env == nil {
		return h.Sum64()
	}

	for _, name := range sortedKeys(env.Palette) {
		_, _ = h.WriteString("p\x00" + name + "\x00" + env.Palette[name] + "\x00")
	}

	for _, name := range sortedKeys(env.Vars) {
		v, _ := scalarString(env.Vars[name])
		_, _ = h.WriteString("v\x00" + name + "\x00" + v + "\x00")
	}

	return h.Sum64()
}

// cacheKey combines the script and environment hashes.
func cacheKey(script string, env *Environment) string {
	sourceHash := xxh3.HashString(script)
	envHash := hashEnvironment(env)

	return strconv.FormatUint(sourceHash, 36) + ":" +
		strconv.FormatUint(envHash, 36)
}

// compileCached compiles script once per distinct (script, env) pair.
// Parse errors are cached as well, so a broken script is not reparsed.
func compileCached(
	ctx context.Context,
	script string,
	base *Environment,
	opts ...Option,
) (*Evaluator, error) {
	cfg := makeConfig(opts...)
	key := cacheKey(script, base)

	value, cacheHit := globalCache.LoadOrStore(key, new(entry))

	ent, ok := value.(*entry)
	if !ok {
		return compileString(ctx, script, base, opts...)
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", cacheHit))

	ent.once.Do(func() {
		ent.eval, ent.err = compileString(ctx, script, base, opts...)
		if ent.err != nil {
			ent.err = WrapError(ent.err).With(
				slog.Int("source_length", len(script)),
			)
		}
	})

	return ent.eval, ent.err
}

// ClearCache removes all cached evaluators.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
