package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const teamScript = `
palette { gold: #FFD700; }
map status.team {
  yellow -> player-color: gold, opacity: 0.7;
  blue   -> player-color: #0055FF;
  *      -> label: unknown;
}
`

// writeFile creates name under a fresh temp directory with content and
// returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// capture returns a context whose commands write to the returned buffer.
func capture(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return WithOutput(t.Context(), &buf), &buf
}
