// Package watcher triggers a tree refresh when concerned files change on
// disk. Every directory under the current roots is watched; bursts of events
// (editors often write several times per save) collapse into one Refresh.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/lang"
)

// DefaultDebounce is the quiet period after the last relevant event before
// Refresh is called.
const DefaultDebounce = 300 * time.Millisecond

// Target is what the watcher observes and refreshes. *hierarchy.Model
// implements it.
type Target interface {
	Roots() []string
	Language() lang.Language
	Refresh()
}

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration

	// IgnoreDirs are directory names not watched, in addition to
	// hierarchy.DefaultIgnoreDirs.
	IgnoreDirs []string

	// RootsChanged, when set, makes the watcher re-sync its watch set each
	// time a value arrives (wire it to Model.Subscribe).
	RootsChanged <-chan struct{}
}

// Watcher watches the roots of a Target.
type Watcher struct {
	fw       *fsnotify.Watcher
	target   Target
	debounce time.Duration
	ignore   map[string]bool
	changes  <-chan struct{}

	mu      sync.Mutex
	watched map[string]bool
	timer   *time.Timer
	stopped bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher and registers watches for the target's current roots.
func New(target Target, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ignore := make(map[string]bool)
	for _, d := range hierarchy.DefaultIgnoreDirs {
		ignore[d] = true
	}
	for _, d := range opts.IgnoreDirs {
		ignore[d] = true
	}

	w := &Watcher{
		fw:       fw,
		target:   target,
		debounce: debounce,
		ignore:   ignore,
		changes:  opts.RootsChanged,
		watched:  make(map[string]bool),
		done:     make(chan struct{}),
	}
	if err := w.Sync(); err != nil {
		fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Sync brings the watch set in line with the target's roots: directories
// under new roots are added, directories no longer under any root removed.
func (w *Watcher) Sync() error {
	roots := w.target.Roots()

	want := make(map[string]bool)
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip inaccessible paths
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.ignore[d.Name()] {
				return filepath.SkipDir
			}
			want[path] = true
			return nil
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	for dir := range w.watched {
		if !want[dir] {
			_ = w.fw.Remove(dir)
			delete(w.watched, dir)
		}
	}
	for dir := range want {
		if w.watched[dir] {
			continue
		}
		if err := w.fw.Add(dir); err != nil {
			log.Printf("watcher: cannot watch %s: %v", dir, err)
			continue
		}
		w.watched[dir] = true
	}
	return nil
}

// Watched returns how many directories are being watched.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)

		case _, ok := <-w.changes:
			if !ok {
				w.changes = nil
				continue
			}
			if err := w.Sync(); err != nil {
				log.Printf("watcher: resync: %v", err)
			}

		case <-w.done:
			return
		}
	}
}

// relevant reports whether event may change the tree: a file of the active
// language, or a directory appearing or disappearing.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	path := event.Name
	if w.ignoredPath(path) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			w.addTree(path)
			return true
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.mu.Lock()
		wasDir := w.watched[path]
		if wasDir {
			delete(w.watched, path)
		}
		w.mu.Unlock()
		if wasDir {
			return true
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return lang.Is(path, w.target.Language())
}

// addTree watches a newly created directory and everything already inside it.
func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.ignore[d.Name()] {
			return filepath.SkipDir
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped || w.watched[path] {
			return nil
		}
		if err := w.fw.Add(path); err == nil {
			w.watched[path] = true
		}
		return nil
	})
}

// ignoredPath checks the base name only; ignored directories are never
// watched, so deeper paths inside them do not produce events.
func (w *Watcher) ignoredPath(path string) bool {
	return w.ignore[filepath.Base(path)]
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.timer = nil
	w.mu.Unlock()
	if !stopped {
		w.target.Refresh()
	}
}

// Close stops watching. Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
