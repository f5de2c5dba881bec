package hierarchy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDirectory is wrapped by RootPathError when a root exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// RootPathError reports a root that does not exist or is not a directory.
// Other roots passed in the same AddRoots call are still added.
type RootPathError struct {
	Path string
	Err  error
}

func (e *RootPathError) Error() string {
	return fmt.Sprintf("root %s: %v", e.Path, e.Err)
}

func (e *RootPathError) Unwrap() error {
	return e.Err
}

// canonicalRoot resolves path to an absolute, symlink-free, clean directory.
func canonicalRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &RootPathError{Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &RootPathError{Path: path, Err: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootPathError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return "", &RootPathError{Path: path, Err: ErrNotDirectory}
	}
	return filepath.Clean(resolved), nil
}

// lookupPath canonicalises a path that may no longer exist, falling back to
// Abs+Clean when symlinks cannot be resolved.
func lookupPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return filepath.Clean(resolved)
	}
	return filepath.Clean(abs)
}

// isWithin reports whether path equals dir or lies beneath it.
func isWithin(dir, path string) bool {
	if dir == path {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// normalizeRoots deduplicates, drops every path that lies beneath another
// member, and sorts the survivors.
func normalizeRoots(paths []string) []string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	// After sorting, an ancestor precedes all of its descendants, though
	// unrelated siblings ("/a-b" sorts between "/a" and "/a/b") may sit in
	// between, so compare against every kept path.
	var out []string
	for _, p := range sorted {
		covered := false
		for _, kept := range out {
			if isWithin(kept, p) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, p)
		}
	}
	return out
}

// commonPrefix returns the longest shared leading run of path segments.
// A single root (or none) has no prefix.
func commonPrefix(roots []string) string {
	if len(roots) < 2 {
		return ""
	}
	sep := string(filepath.Separator)
	first := strings.Split(roots[0], sep)
	n := len(first)
	for _, r := range roots[1:] {
		segs := strings.Split(r, sep)
		if len(segs) < n {
			n = len(segs)
		}
		for i := 0; i < n; i++ {
			if segs[i] != first[i] {
				n = i
				break
			}
		}
	}
	return strings.Join(first[:n], sep)
}
