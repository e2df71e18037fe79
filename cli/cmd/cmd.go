package cmd

import (
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	kongContextKey struct{}
	outputKey      struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongContextKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source name for reading from stdin.
const stdinSource = "-"

// source is one named input.
type source struct {
	name string
	open func() (io.ReadCloser, error)
}

// fileKey uniquely identifies a file by its device and inode numbers, so the
// same file named through a symlink or a relative path is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	if info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// uniqueSources yields the distinct inputs named by paths, in order, with
// stdin ("-" or a path naming the stdin file) yielded once, last. Paths that
// cannot be resolved are yielded as-is so that opening them reports the
// error.
func uniqueSources(paths []string) iter.Seq[source] {
	return func(yield func(source) bool) {
		seen := make(map[fileKey]struct{}, len(paths))

		stdinInfo, _ := os.Stdin.Stat()
		stdinKey, stdinOK := makeFileKey(stdinInfo)
		hasStdin := false

		for _, path := range paths {
			if path == stdinSource {
				hasStdin = true

				continue
			}

			if key, ok := resolveKey(path); ok {
				if stdinOK && key == stdinKey {
					hasStdin = true

					continue
				}

				if _, dup := seen[key]; dup {
					continue
				}

				seen[key] = struct{}{}
			}

			if !yield(source{name: path, open: openFile(path)}) {
				return
			}
		}

		if hasStdin {
			yield(source{name: stdinSource, open: openStdin})
		}
	}
}

func resolveKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

func openFile(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return os.Open(path) }
}

func openStdin() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil }

// openSource opens a single named input; "-" is stdin.
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource || path == "" {
		return openStdin()
	}

	return os.Open(path)
}
