package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CLI flags shared by every subcommand. Set flags override intelliparse.yml.
type cliFlags struct {
	ConfigDir      string
	Language       string
	ExcludeDirs    []string
	Exclude        []string
	GrammarDirs    []string
	Concurrency    int
	TolerateErrors bool
	Index          string
	Verbose        bool
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "intelliparse",
		Short: "Browse the methods of a source tree",
		Long: `intelliparse lists the functions, methods and constructors of every
source file of one language beneath a set of root directories, using
tree-sitter grammars. It can print the tree, search it, export it, or
serve it to an editor over MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigDir, "config-dir", ".", "directory holding intelliparse.yml")
	pf.StringVarP(&flags.Language, "language", "l", "", "active language (default python)")
	pf.StringSliceVar(&flags.ExcludeDirs, "exclude-dir", nil, "directory names to skip, in addition to the defaults")
	pf.StringSliceVar(&flags.Exclude, "exclude", nil, "doublestar globs, relative to each root, to hide")
	pf.StringSliceVar(&flags.GrammarDirs, "grammar-dir", nil, "directories searched for tree-sitter grammar libraries")
	pf.IntVar(&flags.Concurrency, "concurrency", 0, "files extracted in parallel (default 8)")
	pf.BoolVar(&flags.TolerateErrors, "tolerate-errors", false, "extract what parses from files with syntax errors")
	pf.StringVar(&flags.Index, "index", "", "method index backend: memory or kuzu")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newTreeCmd(flags),
		newScanCmd(flags),
		newSearchCmd(flags),
		newExportCmd(flags),
		newServeCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
