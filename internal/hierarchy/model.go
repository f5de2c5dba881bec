// Package hierarchy owns the tree of root folders, files, and the methods
// inside them. Mutations return immediately and schedule a background
// extraction pass; each pass carries a sequence number and only the newest
// pass may replace the snapshot.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/lang"
)

// ErrClosed is returned by mutations on a closed Model.
var ErrClosed = errors.New("hierarchy: model closed")

// Extractor hands out an adapter per language. *extract.Router implements it.
type Extractor interface {
	Route(l lang.Language) (extract.Adapter, error)
}

// Observer is called with every snapshot that a pass applies, in sequence
// order. Snapshots superseded before delivery are skipped.
type Observer func(Snapshot)

// Options configure a Model.
type Options struct {
	// Language is the initial active language; empty means lang.Default.
	Language lang.Language

	// IgnoreDirs are directory names skipped in addition to DefaultIgnoreDirs.
	IgnoreDirs []string

	// Exclude are doublestar globs, relative to each root, hidden from the
	// tree and from extraction.
	Exclude []string

	// Concurrency bounds per-pass extraction fan-out.
	Concurrency int

	Observer   Observer
	OnProgress func(extract.ProgressEvent)
}

// Stats summarises the current state.
type Stats struct {
	Roots    int           `json:"roots"`
	Files    int           `json:"files"`
	Methods  int           `json:"methods"`
	Errors   int           `json:"errors"`
	Seq      uint64        `json:"seq"`
	Language lang.Language `json:"language"`
	Busy     bool          `json:"busy"`
}

// Model is the hierarchy tree state machine. All methods are safe for
// concurrent use.
type Model struct {
	extractor Extractor
	opts      Options
	filter    *filter

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	obsMu sync.Mutex // serialises observer delivery

	mu       sync.Mutex
	roots    []string
	prefix   string
	language lang.Language
	snapshot *Snapshot
	seq      uint64
	cancel   context.CancelFunc // cancels the newest in-flight pass
	running  int
	idle     chan struct{} // closed when running drops to zero
	subs     map[int]chan struct{}
	nextSub  int
	closed   bool
}

// NewModel creates an empty Model. Nothing is extracted until roots are added.
func NewModel(extractor Extractor, opts Options) (*Model, error) {
	f, err := newFilter(opts.IgnoreDirs, opts.Exclude)
	if err != nil {
		return nil, err
	}
	language := opts.Language
	if language == "" {
		language = lang.Default
	}
	if !language.Valid() {
		return nil, fmt.Errorf("hierarchy: unknown language %q", string(language))
	}

	idle := make(chan struct{})
	close(idle)

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		extractor:  extractor,
		opts:       opts,
		filter:     f,
		baseCtx:    ctx,
		baseCancel: cancel,
		language:   language,
		snapshot:   emptySnapshot(0, language),
		idle:       idle,
		subs:       make(map[int]chan struct{}),
	}, nil
}

// AddRoots adds directories to the root set. Paths that do not exist or are
// not directories are reported as *RootPathError (joined); the valid ones
// are still added. Paths beneath an existing root are absorbed by it, and an
// added ancestor absorbs existing roots beneath it.
func (m *Model) AddRoots(paths ...string) error {
	var errs []error
	var valid []string
	for _, p := range paths {
		root, err := canonicalRoot(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, root)
	}

	if len(valid) > 0 {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return errors.Join(append(errs, ErrClosed)...)
		}
		m.setRootsLocked(normalizeRoots(append(slices.Clone(m.roots), valid...)))
		m.triggerLocked()
		m.mu.Unlock()
		m.notify()
	}
	return errors.Join(errs...)
}

// RemoveRoot removes the root equal to path and reports whether it was present.
func (m *Model) RemoveRoot(path string) bool {
	target := lookupPath(path)

	m.mu.Lock()
	i := slices.Index(m.roots, target)
	if i < 0 || m.closed {
		m.mu.Unlock()
		return false
	}
	roots := slices.Delete(slices.Clone(m.roots), i, i+1)
	m.setRootsLocked(roots)
	m.triggerLocked()
	m.mu.Unlock()

	m.notify()
	return true
}

// ClearRoots empties the root set and the snapshot. Any in-flight pass is
// cancelled and its result discarded.
func (m *Model) ClearRoots() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.setRootsLocked(nil)
	m.seq++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snapshot = emptySnapshot(m.seq, m.language)
	snap := m.snapshot.clone()
	m.mu.Unlock()

	m.notify()
	m.publish(snap)
}

// SetLanguage switches the active language. The adapter and grammar are
// resolved synchronously so an unsupported language or a grammar that fails
// to load is returned here and the model keeps its previous language.
func (m *Model) SetLanguage(l lang.Language) error {
	if _, err := m.extractor.Route(l); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.language = l
	m.triggerLocked()
	m.mu.Unlock()

	m.notify()
	return nil
}

// Refresh re-enumerates and re-extracts the current roots. File nodes have
// no children until the new pass completes.
func (m *Model) Refresh() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.triggerLocked()
	m.mu.Unlock()
	m.notify()
}

// Language returns the active language.
func (m *Model) Language() lang.Language {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

// Roots returns the canonical root set in sorted order.
func (m *Model) Roots() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roots)
}

func (m *Model) setRootsLocked(roots []string) {
	m.roots = roots
	m.prefix = commonPrefix(roots)
}

// triggerLocked starts a new pass over the current roots and language and
// cancels the previous one. The snapshot is reset so nothing from an older
// pass is served while the new one runs. m.mu must be held.
func (m *Model) triggerLocked() {
	m.seq++
	seq := m.seq
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.cancel = cancel

	if m.running == 0 {
		m.idle = make(chan struct{})
	}
	m.running++

	roots := slices.Clone(m.roots)
	language := m.language
	m.snapshot = emptySnapshot(seq, language)
	m.snapshot.Roots = slices.Clone(roots)

	m.wg.Add(1)
	go m.runPass(ctx, cancel, seq, roots, language)
}

func (m *Model) runPass(ctx context.Context, cancel context.CancelFunc, seq uint64, roots []string, l lang.Language) {
	defer m.wg.Done()
	defer m.passDone()
	defer cancel()

	snap, err := m.extractPass(ctx, seq, roots, l)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("hierarchy: pass %d failed: %v", seq, err)
		}
		return
	}

	m.mu.Lock()
	if m.closed || seq != m.seq {
		latest := m.seq
		m.mu.Unlock()
		log.Printf("hierarchy: pass %d discarded, superseded by %d", seq, latest)
		return
	}
	m.snapshot = snap
	m.mu.Unlock()

	m.notify()
	m.publish(snap.clone())
}

// publish hands snap to the observer unless a newer trigger has superseded
// it. Holding obsMu across the check and the call keeps deliveries ordered.
func (m *Model) publish(snap Snapshot) {
	if m.opts.Observer == nil {
		return
	}
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	m.mu.Lock()
	current := !m.closed && snap.Seq == m.seq
	m.mu.Unlock()
	if current {
		m.opts.Observer(snap)
	}
}

// extractPass enumerates the concerned files and extracts them. Per-file
// failures end up in the snapshot; only cancellation aborts.
func (m *Model) extractPass(ctx context.Context, seq uint64, roots []string, l lang.Language) (*Snapshot, error) {
	snap := emptySnapshot(seq, l)
	snap.Roots = roots

	files, err := enumerate(ctx, roots, l, m.filter)
	if err != nil {
		return nil, err
	}
	snap.Files = files
	if len(files) == 0 {
		return snap, nil
	}

	adapter, err := m.extractor.Route(l)
	if err != nil {
		// The language was valid when set; a failure now (for example a
		// grammar removed from disk) leaves every file without methods.
		snap.Errors = append(snap.Errors, err)
		return snap, nil
	}

	res, err := extract.Batch(ctx, adapter, files, m.opts.Concurrency, m.opts.OnProgress)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Files {
		if f.Err != nil {
			log.Printf("hierarchy: %v", f.Err)
			snap.Errors = append(snap.Errors, f.Err)
			continue
		}
		snap.Methods[f.Path] = f.Methods
	}
	return snap, nil
}

func (m *Model) passDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running--
	if m.running == 0 {
		close(m.idle)
	}
}

// WaitIdle blocks until no pass is running or ctx is done.
func (m *Model) WaitIdle(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.running == 0 {
			m.mu.Unlock()
			return nil
		}
		idle := m.idle
		m.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe returns a channel that receives a value whenever the tree
// changed and should be re-queried. Notifications coalesce: a slow reader
// sees one pending signal, not a backlog. The returned func unsubscribes.
func (m *Model) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

func (m *Model) notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// RootNodes returns one folder node per root, labelled relative to the
// roots' common prefix.
func (m *Model) RootNodes() []Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	nodes := make([]Node, len(m.roots))
	for i, r := range m.roots {
		nodes[i] = rootNode(r, m.prefix)
	}
	return nodes
}

// Children expands a node. Folders list subfolders and files of the active
// language; files list the methods of the current snapshot, which is empty
// until the pass covering the file has completed.
func (m *Model) Children(n Node) ([]Node, error) {
	switch n.Kind {
	case FolderNode:
		m.mu.Lock()
		root := m.rootOfLocked(n.Path)
		l := m.language
		m.mu.Unlock()
		if root == "" {
			return nil, fmt.Errorf("hierarchy: %s is not under any root", n.Path)
		}
		return listChildren(root, n.Path, l, m.filter)

	case FileNode:
		m.mu.Lock()
		methods := m.snapshot.Methods[n.Path]
		m.mu.Unlock()
		nodes := make([]Node, len(methods))
		for i, rec := range methods {
			nodes[i] = methodNode(n.Path, rec)
		}
		return nodes, nil

	default:
		return nil, nil
	}
}

// Emphasized reports whether a node is, or for a folder contains, a file of
// the active language. It is evaluated on every call.
func (m *Model) Emphasized(n Node) bool {
	m.mu.Lock()
	root := m.rootOfLocked(n.Path)
	l := m.language
	m.mu.Unlock()

	switch n.Kind {
	case MethodNode:
		return lang.Is(n.Path, l)
	case FileNode:
		return lang.Is(n.Path, l) && (root == "" || !m.filter.skipFile(root, n.Path))
	case FolderNode:
		if root == "" {
			return false
		}
		return containsLanguage(root, n.Path, l, m.filter)
	}
	return false
}

// Resolve finds the node with the given ID among the roots, the visible
// folders and files beneath them, and the methods of the snapshot.
func (m *Model) Resolve(id string) (Node, bool) {
	for _, r := range m.RootNodes() {
		if r.ID() == id {
			return r, true
		}
	}

	m.mu.Lock()
	snap := m.snapshot
	roots := slices.Clone(m.roots)
	l := m.language
	m.mu.Unlock()

	for path, methods := range snap.Methods {
		for _, rec := range methods {
			if n := methodNode(path, rec); n.ID() == id {
				return n, true
			}
		}
	}

	for _, root := range roots {
		var found *Node
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || path == root {
				return nil
			}
			if d.IsDir() {
				if m.filter.skipDir(root, path) {
					return filepath.SkipDir
				}
			} else if hiddenLink(path, d) || !lang.Is(path, l) || m.filter.skipFile(root, path) {
				return nil
			}
			if n := entryNode(path, d.IsDir()); n.ID() == id {
				found = &n
				return filepath.SkipAll
			}
			return nil
		})
		if found != nil {
			return *found, true
		}
	}
	return Node{}, false
}

// rootOfLocked returns the root containing path, or "".
func (m *Model) rootOfLocked(path string) string {
	for _, r := range m.roots {
		if isWithin(r, path) {
			return r
		}
	}
	return ""
}

// Snapshot returns a copy of the current snapshot. While a pass is running
// it is the empty snapshot installed by the trigger.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.clone()
}

// LastErrors returns the per-file errors recorded by the latest applied pass.
func (m *Model) LastErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.snapshot.Errors)
}

// Stats returns counts for the current state.
func (m *Model) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{
		Roots:    len(m.roots),
		Files:    len(m.snapshot.Files),
		Errors:   len(m.snapshot.Errors),
		Seq:      m.snapshot.Seq,
		Language: m.language,
		Busy:     m.running > 0,
	}
	for _, ms := range m.snapshot.Methods {
		st.Methods += len(ms)
	}
	return st
}

// Close cancels in-flight passes, waits for them, and closes subscriber
// channels. The model is unusable afterwards.
func (m *Model) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.baseCancel()
	m.wg.Wait()

	m.mu.Lock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()
	return nil
}
