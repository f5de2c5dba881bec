package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/index"
)

func newSearchCmd(flags *cliFlags) *cobra.Command {
	var (
		limit int
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "search <query> [roots...]",
		Short: "Search extracted methods by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.load(cmd.Context(), args[1:]); err != nil {
				return err
			}

			if limit <= 0 {
				limit = index.DefaultLimit
			}
			entries, err := a.store.Query(cmd.Context(), args[0], limit*4)
			if err != nil {
				return fmt.Errorf("query methods: %w", err)
			}

			out := cmd.OutOrStdout()
			shown := 0
			for _, e := range entries {
				if kind != "" && e.Kind != extract.Kind(strings.ToLower(kind)) {
					continue
				}
				if shown == limit {
					break
				}
				name := e.Name
				if e.Container != "" {
					name = e.Container + "." + e.Name
				}
				fmt.Fprintf(out, "%s:%d\t%s\t%s\t%.2f\n", e.Path, e.Span.Start.Row+1, e.Kind, name, e.Score)
				shown++
			}
			if shown == 0 {
				fmt.Fprintf(out, "No methods match %q.\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", index.DefaultLimit, "maximum number of results")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: function, method, constructor, destructor")
	return cmd
}
