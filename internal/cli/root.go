// Package cli provides the command-line interface of runtests.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/output"
)

// Version is set at build time.
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Quiet   bool
	Verbose bool
	NoColor bool
	History string
}

// App holds the process-wide dependencies shared by every command.
type App struct {
	out    *output.Writer
	getenv func(string) string
}

// NewApp creates an App writing through out.
func NewApp(out *output.Writer, getenv func(string) string) *App {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &App{out: out, getenv: getenv}
}

// configure applies the global output flags.
func (a *App) configure(opts *RootOptions) {
	a.out.SetQuiet(opts.Quiet)
	a.out.SetVerbose(opts.Verbose)
	if opts.NoColor || a.getenv("NO_COLOR") != "" {
		a.out.SetColor(false)
	}
}

// NewRootCommand creates the runtests command. Run without a subcommand it
// executes the test suite.
func NewRootCommand(app *App) *cobra.Command {
	opts := &RootOptions{}
	runOpts := &RunOptions{RootOptions: opts}

	cmd := &cobra.Command{
		Use:   "runtests",
		Short: "Discover and run the Mojo test suite",
		Long: `Discover every test file under the test root, run each one with the
configured toolchain, and report the failed files or the total test count.

Configuration is read from runtests.json in the current directory or any
parent. Flags override environment variables (RUNTESTS_ROOT,
RUNTESTS_TOOLCHAIN, RUNTESTS_PARALLEL), which override the file.

Exit codes:
  0 - All test files passed
  1 - One or more test files failed
  2 - Configuration error
  3 - Test root missing or unreadable
  4 - Aborted: a test report could not be parsed`,
		Version:       Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.configure(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runHarness(cmd, runOpts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to runtests.json (default: search upwards)")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress informational output")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print debug diagnostics to stderr")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured output")
	cmd.PersistentFlags().StringVar(&opts.History, "history", "", "SQLite run history database")

	addRunFlags(cmd, runOpts)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Config(err.Error())
	})

	cmd.AddCommand(NewHistoryCommand(app, opts))
	cmd.AddCommand(NewRecipeCommand(app, opts))

	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.Configf("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(output.New(), os.Getenv)
	return Execute(ctx, NewRootCommand(app), app, args)
}

// Execute runs cmd with args and maps the outcome to an exit code,
// printing a diagnostic for every non-silent error.
func Execute(ctx context.Context, cmd *cobra.Command, app *App, args []string) int {
	cmd.SetArgs(args)
	cmd.SetOut(app.out.Out())
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}
	if !isSilent(err) {
		app.out.ErrorPrefix("%v", err)
	}
	return GetExitCode(err)
}
