package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// ProgressStatus is the state of one file within a batch.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent reports a per-file state change during Batch.
type ProgressEvent struct {
	Path    string
	Status  ProgressStatus
	Methods int
	Message string
}

// Done reports whether the event ends the file's extraction.
func (e ProgressEvent) Done() bool {
	return e.Status == ProgressComplete || e.Status == ProgressFailed
}

// TeeProgress fans every event out to each non-nil handler in order.
func TeeProgress(handlers ...func(ProgressEvent)) func(ProgressEvent) {
	var live []func(ProgressEvent)
	for _, h := range handlers {
		if h != nil {
			live = append(live, h)
		}
	}
	return func(ev ProgressEvent) {
		for _, h := range live {
			h(ev)
		}
	}
}

// ProgressLog writes one line per finished file. Batch calls handlers from
// several workers, so writes are serialised.
type ProgressLog struct {
	mu  sync.Mutex
	w   io.Writer
	rel string
}

// NewProgressLog returns a ProgressLog writing to w. Paths under base are
// printed relative to it; an empty base prints them as given.
func NewProgressLog(w io.Writer, base string) *ProgressLog {
	return &ProgressLog{w: w, rel: base}
}

// Handle is a Batch progress callback.
func (l *ProgressLog) Handle(ev ProgressEvent) {
	if !ev.Done() {
		return
	}
	if l.rel != "" {
		if r, err := filepath.Rel(l.rel, ev.Path); err == nil && filepath.IsLocal(r) {
			ev.Path = r
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, FormatProgress(ev))
}

// FormatProgress renders an event as a single status line.
func FormatProgress(ev ProgressEvent) string {
	switch ev.Status {
	case ProgressPending:
		return fmt.Sprintf("  · %s", ev.Path)
	case ProgressWorking:
		return fmt.Sprintf("  … %s", ev.Path)
	case ProgressComplete:
		if ev.Methods == 1 {
			return fmt.Sprintf("  ✓ %s: 1 method", ev.Path)
		}
		return fmt.Sprintf("  ✓ %s: %d methods", ev.Path, ev.Methods)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s: %s", ev.Path, ev.Message)
	default:
		return fmt.Sprintf("  ? %s", ev.Path)
	}
}
