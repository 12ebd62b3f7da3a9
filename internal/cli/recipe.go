package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/output"
	"github.com/emberjson/runtests/internal/templater"
)

// RecipeOptions holds flags for recipe rendering.
type RecipeOptions struct {
	*RootOptions
	Repo     string
	Manifest string
	Template string
	Output   string
	DryRun   bool
}

const recipeLong = `Render the package recipe from its template, substituting {{TOKEN}}
placeholders with values from the project manifest.

Placeholders: NAME, DESCRIPTION, LICENSE, LICENSE_FILE, HOMEPAGE,
REPOSITORY, VERSION, PREFIX, DEPENDENCIES. Unknown placeholders are left
in place and reported as warnings.`

func addRecipeFlags(cmd *cobra.Command, opts *RecipeOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Repo, "repo", "", "repository directory (default current directory)")
	f.StringVar(&opts.Manifest, "manifest", templater.DefaultManifest, "project manifest, relative to --repo")
	f.StringVar(&opts.Template, "template", templater.DefaultTemplate, "recipe template, relative to --repo")
	f.StringVar(&opts.Output, "output", templater.DefaultOutput, "rendered recipe, relative to --repo")
	f.BoolVar(&opts.DryRun, "dry-run", false, "print the rendered recipe instead of writing it")
}

// NewRecipeCommand creates the recipe command.
func NewRecipeCommand(app *App, rootOpts *RootOptions) *cobra.Command {
	opts := &RecipeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "recipe",
		Short:         "Render the package recipe from its template",
		Long:          recipeLong,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.renderRecipe(opts)
		},
	}
	addRecipeFlags(cmd, opts)

	return cmd
}

// NewTemplaterCommand creates the standalone templater command,
// equivalent to "runtests recipe".
func NewTemplaterCommand(app *App) *cobra.Command {
	rootOpts := &RootOptions{}
	opts := &RecipeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "templater",
		Short:         "Render the package recipe from its template",
		Long:          recipeLong,
		Version:       Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.configure(rootOpts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.renderRecipe(opts)
		},
	}

	cmd.Flags().BoolVarP(&rootOpts.Quiet, "quiet", "q", false, "suppress informational output")
	cmd.Flags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "print debug diagnostics to stderr")
	cmd.Flags().BoolVar(&rootOpts.NoColor, "no-color", false, "disable coloured output")
	addRecipeFlags(cmd, opts)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Config(err.Error())
	})

	return cmd
}

// RunTemplater executes the standalone templater and returns an exit code.
func RunTemplater(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(output.New(), os.Getenv)
	return Execute(ctx, NewTemplaterCommand(app), app, args)
}

func (a *App) renderRecipe(opts *RecipeOptions) error {
	repo := opts.Repo
	if repo == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.Environment("cannot determine working directory")
		}
		repo = cwd
	}

	genOpts := templater.DefaultOptions(repo)
	if opts.Manifest != "" {
		genOpts.Manifest = opts.Manifest
	}
	if opts.Template != "" {
		genOpts.Template = opts.Template
	}
	if opts.Output != "" {
		genOpts.Output = opts.Output
	}
	gen := templater.NewGenerator(genOpts)

	var (
		res *templater.Result
		err error
	)
	if opts.DryRun {
		res, err = gen.Render()
	} else {
		res, err = gen.Generate()
	}
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		a.out.Warning("%s", w)
	}

	if opts.DryRun {
		a.out.Print("%s", res.Content)
		return nil
	}

	m := res.Manifest
	a.out.Info("Rendered %s to %s (%d dependencies)", m.Project, res.Path, len(m.Dependencies))
	return nil
}
