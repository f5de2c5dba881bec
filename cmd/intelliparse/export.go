package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/export"
)

func newExportCmd(flags *cliFlags) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [roots...]",
		Short: "Export the tree as JSON or Mermaid",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.load(cmd.Context(), args); err != nil {
				return err
			}

			var data []byte
			switch strings.ToLower(format) {
			case "json":
				if data, err = export.JSON(a.model, a.model.Language()); err != nil {
					return err
				}
				data = append(data, '\n')
			case "mermaid":
				s, err := export.Mermaid(a.model)
				if err != nil {
					return err
				}
				data = []byte(s)
			default:
				return fmt.Errorf("unknown format %q (want json or mermaid)", format)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or mermaid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
