package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/intelliparse/internal/extract"
)

// scanProgress drives a progress bar from extraction events. Batch emits
// pending for every file before any work starts, so the bar grows first
// and then fills.
type scanProgress struct {
	quiet bool

	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	total int
}

func (p *scanProgress) onEvent(event extract.ProgressEvent) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Status {
	case extract.ProgressPending:
		p.total++
		if p.bar == nil {
			p.bar = progressbar.NewOptions(p.total,
				progressbar.OptionSetDescription("Extracting methods"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
			return
		}
		p.bar.ChangeMax(p.total)
	case extract.ProgressComplete, extract.ProgressFailed:
		if p.bar != nil {
			p.bar.Add(1)
		}
	}
}

// scanBase is the directory file lines are printed relative to: the single
// root when there is one, otherwise nothing.
func scanBase(args []string) string {
	if len(args) != 1 {
		return ""
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return ""
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

func newScanCmd(flags *cliFlags) *cobra.Command {
	var quiet, files bool

	cmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Extract every concerned file and report counts and failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := &scanProgress{quiet: quiet}
			onEvent := progress.onEvent
			if files {
				plog := extract.NewProgressLog(cmd.OutOrStdout(), scanBase(args))
				onEvent = extract.TeeProgress(progress.onEvent, plog.Handle)
			}
			a, err := newApp(cmd, flags, onEvent)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			if err := a.load(cmd.Context(), args); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := a.model.Stats()
			fmt.Fprintf(out, "Language:  %s\n", st.Language)
			fmt.Fprintf(out, "Roots:     %d\n", st.Roots)
			fmt.Fprintf(out, "Files:     %d\n", st.Files)
			fmt.Fprintf(out, "Methods:   %d\n", st.Methods)
			fmt.Fprintf(out, "Errors:    %d\n", st.Errors)
			fmt.Fprintf(out, "Time:      %s\n", time.Since(start).Round(time.Millisecond))
			for _, err := range a.model.LastErrors() {
				fmt.Fprintf(out, "  ✗ %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the progress bar")
	cmd.Flags().BoolVar(&files, "files", false, "print a line per file as it is extracted")
	return cmd
}
