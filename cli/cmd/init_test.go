package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initFlags struct {
	LogLevel string   `default:"info"`
	Pretty   bool     `default:"true"`
	Origins  []string `sep:","`
	Empty    string
	Hidden   string `default:"secret" hidden:""`

	Init Init `cmd:""`
}

func parseInit(t *testing.T, confPath string, args ...string) *kong.Context {
	t.Helper()

	var cli initFlags

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return ktx
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

			if tt.exists {
				if err := os.MkdirAll(filepath.Dir(confPath), 0o755); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			ctx := WithContext(t.Context(), parseInit(t, confPath, "--log-level=debug", "--origins=a,b"))

			err := (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, data)
			}

			if got["log-level"] != "debug" || got["pretty"] != true {
				t.Errorf("config = %v", got)
			}

			if origins, ok := got["origins"].([]any); !ok || len(origins) != 2 {
				t.Errorf("origins = %#v", got["origins"])
			}

			for _, key := range []string{"empty", "hidden", "help", "existing"} {
				if _, ok := got[key]; ok {
					t.Errorf("config contains %q: %v", key, got)
				}
			}
		})
	}
}
