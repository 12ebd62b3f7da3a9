package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/history"
)

const defaultHistoryLimit = 10

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	Failed string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(app *App, rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show the most recent runs recorded in the history database, or the
failed test files of one run.

The database is taken from --history or the "history" field of runtests.json.`,
		Example: `  runtests history --history .runtests/history.db
  runtests history --failed 3f2a9c1e`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", defaultHistoryLimit, "number of runs to show")
	cmd.Flags().StringVar(&opts.Failed, "failed", "", "list the failed test files of a run (ID or prefix)")

	return cmd
}

func (a *App) showHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()

	if opts.Limit < 1 {
		return errors.Configf("--limit must be at least 1, got %d", opts.Limit)
	}

	path, err := a.historyPath(opts)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Environment("no run history at " + path)
	}

	store, err := history.Open(path)
	if err != nil {
		return errors.Wrap(err, "cannot open run history")
	}
	defer store.Close()

	if opts.Failed != "" {
		id, err := store.ResolveRunID(ctx, opts.Failed)
		if err != nil {
			return errors.Configf("%v", err)
		}
		paths, err := store.FailedArtifacts(ctx, id)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			a.out.Info("run %s had no failed tests", id)
			return nil
		}
		a.out.FailedList(paths)
		return nil
	}

	runs, err := store.Recent(ctx, opts.Limit)
	if err != nil {
		return err
	}
	history.RenderTable(a.out.Out(), runs)
	return nil
}

// historyPath resolves the database from --history, then the project configuration.
func (a *App) historyPath(opts *HistoryOptions) (string, error) {
	if opts.History != "" {
		return opts.History, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Environment("cannot determine working directory")
	}
	p, err := a.loadProject(cwd, opts.Config)
	if err != nil {
		return "", err
	}
	if p.Config.History == "" {
		return "", errors.Config(`no history database configured; pass --history or set "history" in runtests.json`)
	}
	return p.Resolve(p.Config.History), nil
}
