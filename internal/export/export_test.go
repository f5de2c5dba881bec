package export

import (
	"context"
	"encoding/json"
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

// newModel builds a python model over:
//
//	a.py        f, C.m
//	docs/x.txt  (pruned)
//	sub/b.py    g
func newModel(t *testing.T) (*hierarchy.Model, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for rel, content := range map[string]string{
		"a.py":       "def f():\n    pass\n\nclass C:\n    def m(self):\n        pass\n",
		"docs/x.txt": "notes\n",
		"sub/b.py":   "def g():\n    return 1\n",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	pool := parser.NewPool(nil)
	t.Cleanup(func() { pool.Close() })
	m, err := hierarchy.NewModel(extract.NewRouter(pool, extract.Options{}), hierarchy.Options{Language: lang.Python})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	require.NoError(t, m.AddRoots(root))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.WaitIdle(ctx))
	return m, root
}

func TestBuild_PrunesUnconcernedFolders(t *testing.T) {
	m, root := newModel(t)

	roots, err := Build(m)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	r := roots[0]
	assert.Equal(t, root, r.Path)
	assert.Equal(t, hierarchy.ContextRootDir, r.Context)
	assert.True(t, r.Emphasized)

	// Folders first, docs/ pruned.
	require.Len(t, r.Children, 2)
	assert.Equal(t, "sub", r.Children[0].Label)
	assert.Equal(t, "a.py", r.Children[1].Label)

	a := r.Children[1]
	require.Len(t, a.Children, 2)
	assert.Equal(t, "f", a.Children[0].Label)
	assert.Equal(t, "m", a.Children[1].Label)
	assert.Equal(t, extract.KindMethod, a.Children[1].MethodKind)
	assert.Equal(t, "C", a.Children[1].Container)
	require.NotNil(t, a.Children[1].Span)
	assert.EqualValues(t, 4, a.Children[1].Span.Start.Row)
	assert.Equal(t, hierarchy.ContextFunction, a.Children[0].Context)
}

func TestJSON(t *testing.T) {
	m, _ := newModel(t)

	data, err := JSON(m, lang.Python)
	require.NoError(t, err)

	var got TreeExport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, lang.Python, got.Language)
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 3, got.Methods)
	assert.NotEmpty(t, got.ExportedAt)
	require.Len(t, got.Roots, 1)
}

func TestMermaid(t *testing.T) {
	m, _ := newModel(t)

	out, err := Mermaid(m)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "graph TD", lines[0])
	assert.Contains(t, out, `/b.py"]`)
	assert.Contains(t, out, `N2("g")`)
	assert.Contains(t, out, "  N0 --> N1\n")
	assert.Contains(t, out, "  N1 --> N2\n")
	assert.NotContains(t, out, "x.txt")
	// root, 2 files, 3 methods.
	assert.Equal(t, 6, strings.Count(out, "[\"")+strings.Count(out, "(\""))
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "sub/b.py", shortPath("/tmp/root/sub/b.py"))
	assert.Equal(t, "b.py", shortPath("b.py"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "#lt;anonymous#gt;", escape(extract.AnonymousName))
	assert.Equal(t, "a#quot;b", escape(`a"b`))
}
