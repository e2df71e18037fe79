package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Config selects a profiling mode and the directory profiles are written to.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a [Config].
type Option func(*Config)

// New returns a Config with opts applied.
func New(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithMode sets the profiling mode; see [Modes].
func WithMode(mode string) Option {
	return func(c *Config) { c.Mode = mode }
}

// WithPath sets the profile output directory.
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithQuiet suppresses the profiler's own start and stop messages.
func WithQuiet(quiet bool) Option {
	return func(c *Config) { c.Quiet = quiet }
}

// Start starts the profiler. If the binary was built without the pprof tag,
// or c.Mode is empty or unknown, Start returns a no-op Stopper.
// Stop is always safe to call.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
