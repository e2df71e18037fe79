//go:build !pprof

package profile

import "net/http"

// Enabled reports whether the binary was built with the pprof tag.
const Enabled = false

// Modes returns nil when built without the pprof tag.
func Modes() []string { return nil }

func start(Config) Stopper { return ignore{} }

// Handler returns nil when built without the pprof tag.
func Handler() http.Handler { return nil }
