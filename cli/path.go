package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/hvql/pkg"
)

// baseConfig is the base name of the configuration file. A JSON variant is
// read from baseConfig with its extension replaced by ".json".
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// jsonConfigPath returns the JSON variant of the configuration file path.
func jsonConfigPath() string {
	yamlPath := configPath(baseConfig)

	return yamlPath[:len(yamlPath)-len(filepath.Ext(yamlPath))] + ".json"
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
