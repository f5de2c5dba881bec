//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/index"
	"github.com/dusk-indust/intelliparse/internal/lang"
	"github.com/dusk-indust/intelliparse/internal/parser"
	"github.com/dusk-indust/intelliparse/internal/watcher"
)

// copyTree copies the python files of the fixture project into dst.
func copyTree(t *testing.T, dst string) {
	t.Helper()
	src := filepath.Join(fixtureRoot(t), "python")
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
}

// TestPipeline_E2E_WatchAndIndex wires model, index and watcher together
// and checks that a file written on disk becomes searchable.
func TestPipeline_E2E_WatchAndIndex(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	copyTree(t, root)

	pool := parser.NewPool(nil)
	defer pool.Close()
	store := index.NewMemStore()
	defer store.Close()

	m, err := hierarchy.NewModel(extract.NewRouter(pool, extract.Options{}), hierarchy.Options{
		Language: lang.Python,
		Observer: index.Observer(store),
	})
	require.NoError(t, err)
	defer m.Close()

	changes, unsubscribe := m.Subscribe()
	defer unsubscribe()
	w, err := watcher.New(m, watcher.Options{Debounce: 50 * time.Millisecond, RootsChanged: changes})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, m.AddRoots(root))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	require.NoError(t, m.WaitIdle(ctx))

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Methods)

	// The watcher picks up the root once the model announces it.
	require.Eventually(t, func() bool { return w.Watched() > 0 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "late.py"), []byte("def arrived_late():\n    pass\n"), 0o644))

	require.Eventually(t, func() bool {
		got, err := store.Query(context.Background(), "arrived_late", 1)
		return err == nil && len(got) == 1
	}, 10*time.Second, 50*time.Millisecond, "new file should be indexed after the watcher refresh")

	got, err := store.Query(ctx, "arrived_late", 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pkg", "late.py"), got[0].Path)
	assert.Equal(t, extract.KindFunction, got[0].Kind)
}

// TestPipeline_E2E_LanguageSwitch checks that a language switch replaces
// the whole snapshot and that tree emphasis follows it.
func TestPipeline_E2E_LanguageSwitch(t *testing.T) {
	root := fixtureRoot(t)
	pool := parser.NewPool(nil)
	defer pool.Close()

	m, err := hierarchy.NewModel(extract.NewRouter(pool, extract.Options{}), hierarchy.Options{})
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, m.AddRoots(root))
	require.NoError(t, m.WaitIdle(ctx))
	assert.Equal(t, lang.Python, m.Stats().Language)
	assert.Equal(t, 5, m.Stats().Methods)

	for _, tc := range []struct {
		lang    lang.Language
		files   int
		methods int
	}{
		{lang.Go, 2, 4},
		{lang.Rust, 1, 3},
		{lang.JavaScript, 1, 3},
		{lang.CSharp, 1, 2},
	} {
		require.NoError(t, m.SetLanguage(tc.lang))
		require.NoError(t, m.WaitIdle(ctx))
		st := m.Stats()
		assert.Equal(t, tc.files, st.Files, "%s files", tc.lang)
		assert.Equal(t, tc.methods, st.Methods, "%s methods", tc.lang)

		emphasized := 0
		children, err := m.Children(m.RootNodes()[0])
		require.NoError(t, err)
		for _, c := range children {
			if m.Emphasized(c) {
				emphasized++
			}
		}
		assert.Equal(t, 1, emphasized, "exactly one language folder is emphasized for %s", tc.lang)
	}
}
