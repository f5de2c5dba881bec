package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// DefaultIgnoreDirs are directory names never descended into.
var DefaultIgnoreDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor",
	"__pycache__", ".venv", ".tox", ".mypy_cache",
}

// filter decides which directories and files are visible. Exclude patterns
// are doublestar globs matched against the slash-separated path relative to
// the owning root.
type filter struct {
	ignoreDirs map[string]bool
	exclude    []string
}

func newFilter(ignoreDirs, exclude []string) (*filter, error) {
	f := &filter{ignoreDirs: make(map[string]bool)}
	for _, d := range DefaultIgnoreDirs {
		f.ignoreDirs[d] = true
	}
	for _, d := range ignoreDirs {
		f.ignoreDirs[d] = true
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		f.exclude = append(f.exclude, p)
	}
	return f, nil
}

func (f *filter) excluded(root, path string) bool {
	if len(f.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (f *filter) skipDir(root, path string) bool {
	if path == root {
		return false
	}
	return f.ignoreDirs[filepath.Base(path)] || f.excluded(root, path)
}

func (f *filter) skipFile(root, path string) bool {
	return f.excluded(root, path)
}

// hiddenLink reports whether d is a symbolic link to a directory or a
// dangling link. Linked files are treated as files; linked directories are
// never followed, so the tree, enumeration, and lookup agree.
func hiddenLink(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err != nil || info.IsDir()
}

// enumerate lists the concerned files under roots: every visible file whose
// detected language is l. Roots are walked in the given order and each walk
// is lexical, so the result order is deterministic.
func enumerate(ctx context.Context, roots []string, l lang.Language, f *filter) ([]string, error) {
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				// Unreadable entries are skipped, not fatal to the pass.
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if f.skipDir(root, path) {
					return fs.SkipDir
				}
				return nil
			}
			if hiddenLink(path, d) {
				return nil
			}
			if lang.Is(path, l) && !f.skipFile(root, path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// listChildren returns the visible immediate children of dir: directories
// first, then files of language l, each group sorted by name.
func listChildren(root, dir string, l lang.Language, f *filter) ([]Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs, files []Node
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if hiddenLink(path, e) {
			continue
		}
		switch {
		case e.IsDir():
			if !f.skipDir(root, path) {
				dirs = append(dirs, entryNode(path, true))
			}
		case lang.Is(path, l) && !f.skipFile(root, path):
			files = append(files, entryNode(path, false))
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Label < dirs[j].Label })
	sort.Slice(files, func(i, j int) bool { return files[i].Label < files[j].Label })
	return append(dirs, files...), nil
}

// errFound stops a walk early once a match is found.
var errFound = errors.New("found")

// containsLanguage reports whether any visible file beneath dir has
// language l.
func containsLanguage(root, dir string, l lang.Language, f *filter) bool {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && f.skipDir(root, path) {
				return fs.SkipDir
			}
			return nil
		}
		if !hiddenLink(path, d) && lang.Is(path, l) && !f.skipFile(root, path) {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}
