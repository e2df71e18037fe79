// Package cli contains the command line interface for hvql.
//
// # Commands
//
//	hvql eval   SCRIPT [-c FILE]... [-e LITERAL]... [--env FILE] [-o json|yaml|native]
//	hvql check  SCRIPT...
//	hvql fmt    {native|json|yaml|ast|dump} SCRIPT
//	hvql repl   SCRIPT [--env FILE]
//	hvql serve  SCRIPT [--addr :8080] [--env FILE] [--[no-]watch]
//	hvql init   [--force]
//
// eval is the default command, so "hvql script.hvql -e '{player: 1}'" works.
//
// # Configuration
//
// Flag defaults are read from config.yaml (and config.json) in the
// configuration directory, typically ~/.config/hvql. Keys are flag names;
// nested mappings join with hyphens and underscores may replace hyphens:
//
//	log:
//	  level: debug
//	  format: json
//
// "hvql init" writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hvql .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/hvql/pprof)
package cli
