package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
)

// readScript returns the full text of the script at path; "-" is stdin.
func readScript(path string) (string, error) {
	f, err := openSource(path)
	if err != nil {
		return "", ErrReadScript.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", ErrReadScript.Wrap(err).With(slog.String("path", path))
	}

	return string(data), nil
}

// loadEnv reads the environment file at path. An empty path yields a nil
// environment.
func loadEnv(ctx context.Context, path string) (*lang.Environment, error) {
	if path == "" {
		return nil, nil //nolint:nilnil
	}

	f, err := openSource(path)
	if err != nil {
		return nil, ErrReadEnv.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	env, err := lang.LoadEnvironment(ctx, f)
	if err != nil {
		return nil, ErrReadEnv.Wrap(err).With(slog.String("path", path))
	}

	return env, nil
}

// compileScript reads and compiles the script at path against the
// environment file at envPath.
func compileScript(ctx context.Context, path, envPath string) (*lang.Evaluator, error) {
	env, err := loadEnv(ctx, envPath)
	if err != nil {
		return nil, err
	}

	src, err := readScript(path)
	if err != nil {
		return nil, err
	}

	eval, err := lang.Compile(ctx, src, env, lang.WithLogger(log.Default()))
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	return eval, nil
}
