//go:build e2e

package e2e

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/lang"
	"github.com/dusk-indust/intelliparse/internal/parser"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fixtures", "project"))
	require.NoError(t, err)
	abs, err = filepath.EvalSymlinks(abs)
	require.NoError(t, err)
	return abs
}

// renderLanguage extracts the fixture project for l and renders one line
// per method: "<relpath>:<line> <kind> <qualified name>".
func renderLanguage(t *testing.T, pool *parser.Pool, l lang.Language) string {
	t.Helper()
	root := fixtureRoot(t)

	m, err := hierarchy.NewModel(extract.NewRouter(pool, extract.Options{}), hierarchy.Options{Language: l})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.AddRoots(root))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	require.NoError(t, m.WaitIdle(ctx))
	require.Empty(t, m.LastErrors())

	snap := m.Snapshot()
	var sb strings.Builder
	for _, path := range snap.Files {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		for _, rec := range snap.Methods[path] {
			fmt.Fprintf(&sb, "%s:%d %s %s\n", filepath.ToSlash(rel), rec.Span.Start.Row+1, rec.Kind, rec.QualifiedName())
		}
	}
	return sb.String()
}

// TestGolden compares the extracted trees against golden files. If golden
// files do not exist, the test is skipped with a message to run with -update.
func TestGolden(t *testing.T) {
	pool := parser.NewPool(nil)
	defer pool.Close()

	for _, l := range lang.All() {
		t.Run(string(l), func(t *testing.T) {
			goldenPath := filepath.Join(goldenDir(), string(l)+".txt")
			golden, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", goldenPath)
				return
			}
			require.NoError(t, err)

			actual := renderLanguage(t, pool, l)
			assert.Equal(t, string(golden), actual, "methods for %s do not match golden file", l)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current extraction.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	pool := parser.NewPool(nil)
	defer pool.Close()

	require.NoError(t, os.MkdirAll(goldenDir(), 0o755))
	for _, l := range lang.All() {
		path := filepath.Join(goldenDir(), string(l)+".txt")
		require.NoError(t, os.WriteFile(path, []byte(renderLanguage(t, pool, l)), 0o644))
		t.Logf("updated %s", path)
	}
}
