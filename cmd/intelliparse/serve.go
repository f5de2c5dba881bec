package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/mcptools"
	"github.com/dusk-indust/intelliparse/internal/watcher"
)

func newServeCmd(flags *cliFlags) *cobra.Command {
	var (
		transport string
		addr      string
		watch     bool
		debounce  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve [roots...]",
		Short: "Serve the tree to an editor as MCP tools",
		Long: `serve exposes the tree over the Model Context Protocol. Roots given on
the command line (or in intelliparse.yml) are added before the server
starts; clients can add more with the add_roots tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) > 0 || len(a.cfg.Roots) > 0 {
				if err := a.model.AddRoots(a.roots(args)...); err != nil {
					fmt.Fprintf(a.errOut, "warning: %v\n", err)
				}
			}

			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watch
			}
			if !cmd.Flags().Changed("debounce") && a.cfg.Debounce() > 0 {
				debounce = a.cfg.Debounce()
			}
			if a.cfg.Watch {
				changes, unsubscribe := a.model.Subscribe()
				defer unsubscribe()
				w, err := watcher.New(a.model, watcher.Options{
					Debounce:     debounce,
					IgnoreDirs:   a.cfg.ExcludeDirs,
					RootsChanged: changes,
				})
				if err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
				defer w.Close()
			}

			server := mcptools.NewTreeMCPServer(mcptools.NewTreeService(a.model, a.store))
			switch transport {
			case "stdio":
				return mcptools.RunMCPServerStdio(ctx, server)
			case "http":
				fmt.Fprintf(a.errOut, "Serving MCP on %s\n", addr)
				return mcptools.RunMCPServer(ctx, server, addr)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8765", "listen address for the http transport")
	cmd.Flags().BoolVar(&watch, "watch", false, "refresh automatically when concerned files change")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a watched change triggers a refresh")
	return cmd
}
