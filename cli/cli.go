package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hvql/cli/cmd"
	"github.com/ardnew/hvql/pkg"
)

// CLI is the top-level command-line interface for hvql.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Eval  cmd.Eval  `cmd:"" default:"withargs" help:"Apply a script to view contexts"`
	Check cmd.Check `cmd:""                    help:"Check scripts for errors"`
	Fmt   cmd.Fmt   `cmd:""                    help:"Format a script"`
	Repl  cmd.Repl  `cmd:""                    help:"Try contexts against a script interactively"`
	Serve cmd.Serve `cmd:""                    help:"Serve a script over HTTP"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the hvql CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports any parse error.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		// The provider reads ctx when a command runs, after the kong
		// context has been attached below.
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, jsonConfigPath()),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Apply the fully parsed logger configuration, including options with
	// no early hook such as the time layout.
	cli.Log.start(ctx)

	// No-op unless built with the pprof tag and a mode was selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
