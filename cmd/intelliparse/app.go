package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/config"
	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/index"
	"github.com/dusk-indust/intelliparse/internal/lang"
	"github.com/dusk-indust/intelliparse/internal/parser"
)

// app is the wired engine behind every subcommand.
type app struct {
	cfg    *config.ProjectConfig
	loader parser.ChainLoader
	pool   *parser.Pool
	router *extract.Router
	store  index.Store
	model  *hierarchy.Model
	errOut io.Writer
}

// newApp loads the project config, applies the flags that were set on cmd,
// and wires loader, pool, router, index and model. onProgress may be nil.
func newApp(cmd *cobra.Command, flags *cliFlags, onProgress func(extract.ProgressEvent)) (*app, error) {
	if !flags.Verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mergeFlags(cmd, flags, cfg)

	language := lang.Default
	if cfg.Language != "" {
		if language, err = lang.Parse(cfg.Language); err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg, errOut: cmd.ErrOrStderr()}
	if dirs := cfg.ResolvedGrammarDirs(); len(dirs) > 0 {
		a.loader = append(a.loader, parser.NewDynamicLoader(parser.DirLocator(dirs...)))
	}
	a.loader = append(a.loader, parser.BuiltinLoader{})
	a.pool = parser.NewPool(a.loader)
	a.router = extract.NewRouter(a.pool, extract.Options{
		TolerateErrors: cfg.TolerateErrors,
		Concurrency:    cfg.Concurrency,
	})

	if a.store, err = index.Open(cfg.Index); err != nil {
		a.Close()
		return nil, err
	}

	a.model, err = hierarchy.NewModel(a.router, hierarchy.Options{
		Language:    language,
		IgnoreDirs:  cfg.ExcludeDirs,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.Concurrency,
		Observer:    index.Observer(a.store),
		OnProgress:  onProgress,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// mergeFlags copies every flag the user set over the config value.
func mergeFlags(cmd *cobra.Command, flags *cliFlags, cfg *config.ProjectConfig) {
	set := cmd.Flags().Changed
	if set("language") {
		cfg.Language = flags.Language
	}
	if set("exclude-dir") {
		cfg.ExcludeDirs = append(cfg.ExcludeDirs, flags.ExcludeDirs...)
	}
	if set("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.Exclude...)
	}
	if set("grammar-dir") {
		cfg.GrammarDirs = append(cfg.GrammarDirs, flags.GrammarDirs...)
	}
	if set("concurrency") {
		cfg.Concurrency = flags.Concurrency
	}
	if set("tolerate-errors") {
		cfg.TolerateErrors = flags.TolerateErrors
	}
	if set("index") {
		cfg.Index = flags.Index
	}
}

// roots returns args, else the configured roots, else the current directory.
func (a *app) roots(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if roots := a.cfg.ResolvedRoots(); len(roots) > 0 {
		return roots
	}
	return []string{"."}
}

// load adds the roots and blocks until their pass has been applied. Bad
// roots are reported but do not stop the others.
func (a *app) load(ctx context.Context, args []string) error {
	if err := a.model.AddRoots(a.roots(args)...); err != nil {
		var rpe *hierarchy.RootPathError
		if !errors.As(err, &rpe) || len(a.model.Roots()) == 0 {
			return err
		}
		fmt.Fprintf(a.errOut, "warning: %v\n", err)
	}
	return a.model.WaitIdle(ctx)
}

// Close tears everything down in reverse order.
func (a *app) Close() error {
	var errs []error
	if a.model != nil {
		errs = append(errs, a.model.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.pool != nil {
		errs = append(errs, a.pool.Close())
	}
	a.loader.Close()
	return errors.Join(errs...)
}
