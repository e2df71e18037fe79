// Package cmd implements the hvql subcommands: evaluating scripts against
// view contexts, checking and formatting scripts, serving styles over HTTP,
// and the interactive REPL.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
