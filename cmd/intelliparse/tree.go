package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/export"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
)

func newTreeCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [roots...]",
		Short: "Print the folder, file and method tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.load(cmd.Context(), args); err != nil {
				return err
			}
			roots, err := export.Build(a.model)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), roots, 0)
			return nil
		},
	}
}

func printTree(w io.Writer, nodes []export.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n.Kind {
		case hierarchy.MethodNode.String():
			line := ""
			if n.Span != nil {
				line = fmt.Sprintf(" L%d", n.Span.Start.Row+1)
			}
			name := n.Label
			if n.Container != "" {
				name = n.Container + "." + n.Label
			}
			fmt.Fprintf(w, "%s%s (%s)%s\n", indent, name, n.MethodKind, line)
		case hierarchy.FolderNode.String():
			fmt.Fprintf(w, "%s%s/\n", indent, n.Label)
		default:
			fmt.Fprintf(w, "%s%s\n", indent, n.Label)
		}
		printTree(w, n.Children, depth+1)
	}
}
