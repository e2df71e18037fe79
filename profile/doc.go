// Package profile provides optional runtime profiling for hvql.
//
// It wraps [github.com/pkg/profile] behind the "pprof" build tag. Without
// the tag every operation is a no-op and the profiler is not linked in:
//
//	go build -tags pprof -o hvql .
//
// # File-Based Profiling
//
//	stop := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	).Start()
//	defer stop.Stop()
//
// Profiles are named after their mode (cpu.pprof, mem.pprof, ...) and can be
// analyzed with go tool pprof:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// The hvql command exposes the same settings as --pprof-mode and
// --pprof-dir. The default directory is the pprof subdirectory of the user
// cache directory ($XDG_CACHE_HOME/hvql/pprof on Linux).
//
// # HTTP Profiling
//
// [Handler] returns the [net/http/pprof] handlers. "hvql serve" mounts them
// at /debug/pprof/ in pprof builds, which is useful when profiling Apply
// under real request load:
//
//	go tool pprof http://localhost:8080/debug/pprof/profile?seconds=30
//
// Block and mutex profiling add noticeable overhead; keep those runs short.
package profile
