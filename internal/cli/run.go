package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emberjson/runtests/internal/aggregate"
	"github.com/emberjson/runtests/internal/config"
	"github.com/emberjson/runtests/internal/discover"
	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/history"
	"github.com/emberjson/runtests/internal/metrics"
	"github.com/emberjson/runtests/internal/project"
	"github.com/emberjson/runtests/internal/report"
	"github.com/emberjson/runtests/internal/runner"
	"github.com/emberjson/runtests/internal/toolchain"
)

// RunOptions holds the flags of a harness run.
type RunOptions struct {
	*RootOptions
	Root      string
	Toolchain string
	Suffix    string
	Exclude   []string
	Workdir   string
	Parallel  int
	Timeout   string
	Report    string
	Metrics   string
	List      bool
}

func addRunFlags(cmd *cobra.Command, opts *RunOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Root, "root", "", "test tree to discover (default test/emberjson)")
	f.StringVar(&opts.Toolchain, "toolchain", "", `toolchain name, or "auto" to detect`)
	f.StringVar(&opts.Suffix, "suffix", "", "test-file suffix (default from toolchain)")
	f.StringArrayVar(&opts.Exclude, "exclude", nil, "doublestar pattern to skip, relative to the test root (repeatable)")
	f.StringVar(&opts.Workdir, "workdir", "", "working directory for toolchain runs (default project root)")
	f.IntVarP(&opts.Parallel, "parallel", "j", 1, "concurrent toolchain runs (0 = number of CPUs)")
	f.StringVar(&opts.Timeout, "timeout", "", "per-file timeout, e.g. 2m (default none)")
	f.StringVar(&opts.Report, "report", "", "write a .json or .yaml run report")
	f.StringVar(&opts.Metrics, "metrics", "", "write a Prometheus textfile")
	f.BoolVar(&opts.List, "list", false, "print discovered test files and exit")
}

// apply overrides cfg with every flag set on the command line.
// Path flags are made absolute so they stay relative to the working directory.
func (o *RunOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("root") {
		cfg.Root = o.Root
	}
	if flags.Changed("toolchain") {
		cfg.Toolchain = o.Toolchain
	}
	if flags.Changed("suffix") {
		cfg.Suffix = o.Suffix
	}
	if flags.Changed("exclude") {
		cfg.Exclude = o.Exclude
	}
	if flags.Changed("parallel") {
		cfg.Parallel = o.Parallel
		if cfg.Parallel == 0 {
			cfg.Parallel = runner.DefaultWorkerCount()
		}
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}

	paths := []struct {
		name string
		val  string
		dst  *string
	}{
		{"root", o.Root, &cfg.Root},
		{"workdir", o.Workdir, &cfg.Workdir},
		{"report", o.Report, &cfg.Report},
		{"metrics", o.Metrics, &cfg.Metrics},
		{"history", o.History, &cfg.History},
	}
	for _, p := range paths {
		if !flags.Changed(p.name) || p.val == "" {
			continue
		}
		abs, err := filepath.Abs(p.val)
		if err != nil {
			return errors.Configf("--%s: %v", p.name, err)
		}
		*p.dst = abs
	}
	return nil
}

// loadProject locates and loads the project for the current directory,
// or the one named by --config.
func (a *App) loadProject(cwd, configPath string) (*project.Project, error) {
	var (
		p   *project.Project
		err error
	)
	if configPath != "" {
		abs, absErr := filepath.Abs(configPath)
		if absErr != nil {
			return nil, errors.Configf("--config: %v", absErr)
		}
		p, err = project.LoadConfigFile(filepath.Dir(abs), abs)
	} else {
		p, err = project.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings {
		a.out.Warning("%s", w)
	}
	return p, nil
}

// runHarness discovers, executes, and aggregates the test suite.
func (a *App) runHarness(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Environment("cannot determine working directory")
	}

	p, err := a.loadProject(cwd, opts.Config)
	if err != nil {
		return err
	}
	cfg := p.Config

	for _, w := range config.ApplyEnv(cfg, a.getenv) {
		a.out.Warning("%s", w)
	}
	if err := opts.apply(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return errors.Configf("%v", err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return errors.Configf("%v", err)
	}

	resolver, err := toolchain.NewResolver(cfg.Toolchains)
	if err != nil {
		return err
	}
	tc, err := resolver.Resolve(cfg.Toolchain, p.Root)
	if err != nil {
		return err
	}
	suffix := cfg.Suffix
	if suffix == "" {
		suffix = tc.Suffix
	}

	root := p.TestRoot(cwd)
	seq, err := discover.Discover(root, discover.Options{Suffix: suffix, Exclude: cfg.Exclude})
	if err != nil {
		return err
	}

	if opts.List {
		artifacts, err := seq.Collect()
		if err != nil {
			return err
		}
		for _, art := range artifacts {
			a.out.Println("%s", art.Path)
		}
		return nil
	}

	if resolver.Overrides(tc.Name) {
		a.out.Debug("custom toolchain %q overrides the built-in preset", tc.Name)
	}
	a.out.Debug("%s toolchain: %s", tc.Title(), tc)
	a.out.Debug("discovering *%s under %s (workers: %d)", suffix, root, cfg.Parallel)

	meta := report.Meta{
		RunID:     report.NewRunID(),
		Toolchain: tc.Name,
		Command:   tc.String(),
		Root:      root,
		StartedAt: time.Now(),
	}

	exec := runner.NewProcessExecutor(tc, p.Workdir(), a.out)
	r := runner.New(exec, aggregate.New(a.out), runner.Options{Parallel: cfg.Parallel, Timeout: timeout}, a.out)

	rep, err := r.Run(ctx, seq)
	if err != nil {
		if errors.IsParse(err) {
			a.out.Debug("aborting without a summary: a test report could not be parsed")
		}
		return err
	}
	meta.FinishedAt = time.Now()

	rep.Print(a.out)
	a.writeSideOutputs(ctx, p, rep, meta)

	if !rep.Success() {
		return silentExit(rep.ExitCode())
	}
	return nil
}

// writeSideOutputs persists the run report, history, and metrics.
// Failures here never change the run's outcome and are reported as warnings.
func (a *App) writeSideOutputs(ctx context.Context, p *project.Project, rep *aggregate.Report, meta report.Meta) {
	cfg := p.Config

	if path := p.Resolve(cfg.Report); path != "" {
		if err := report.Write(path, rep, meta); err != nil {
			a.out.Warning("report not written: %v", err)
		} else {
			a.out.Debug("report written to %s", path)
		}
	}

	if path := p.Resolve(cfg.History); path != "" {
		if err := recordHistory(ctx, path, rep, meta); err != nil {
			a.out.Warning("history not recorded: %v", err)
		} else {
			a.out.Debug("run %s recorded in %s", meta.RunID, path)
		}
	}

	if path := p.Resolve(cfg.Metrics); path != "" {
		m := metrics.New(meta.Toolchain)
		m.Observe(rep)
		if err := m.WriteTextfile(path); err != nil {
			a.out.Warning("metrics not written: %v", err)
		} else {
			a.out.Debug("metrics written to %s", path)
		}
	}
}

func recordHistory(ctx context.Context, path string, rep *aggregate.Report, meta report.Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.RunFromReport(meta.RunID, meta.StartedAt, meta.Toolchain, meta.Root, rep)
	return store.RecordRun(ctx, run, rep)
}
