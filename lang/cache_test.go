package lang

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCompile_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()
	env := &Environment{Palette: Palette{"gray": "#888"}}

	a, err := Compile(ctx, teamScript, env)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	b, err := Compile(ctx, teamScript, &Environment{Palette: Palette{"gray": "#888"}})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if a != b {
		t.Errorf("equal script and environment compiled twice")
	}

	c, err := Compile(ctx, teamScript, &Environment{Palette: Palette{"gray": "#999"}})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if a == c {
		t.Errorf("different environments share an evaluator")
	}

	d, err := Compile(ctx, teamScript, env, WithCache(false))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if a == d {
		t.Errorf("WithCache(false) returned a cached evaluator")
	}
}

func TestCompile_CacheError(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		_, err := Compile(context.Background(), "bogus", nil)
		if !errors.Is(err, ErrUnknownStatement) {
			t.Fatalf("error = %v, want %v", err, ErrUnknownStatement)
		}
	}
}

func TestCompile_CacheConcurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const workers = 16

	var (
		wg      sync.WaitGroup
		results [workers]*Evaluator
	)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			e, err := Compile(context.Background(), teamScript, nil)
			if err != nil {
				t.Errorf("compile error: %v", err)

				return
			}

			results[i] = e
		}()
	}

	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a different evaluator", i)
		}
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("x", &Environment{Vars: Vars{"n": 1}})
	b := cacheKey("x", &Environment{Vars: Vars{"n": 1.0}})
	c := cacheKey("x", &Environment{Palette: Palette{"n": "1"}})

	if a != b {
		t.Errorf("equal var values hash differently: %s != %s", a, b)
	}

	if a == c {
		t.Errorf("palette and var entries hash equally: %s", a)
	}

	if cacheKey("x", nil) != cacheKey("x", &Environment{}) {
		t.Errorf("nil and empty environments hash differently")
	}
}
