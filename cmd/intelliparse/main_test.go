package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/project")
	require.NoError(t, err)
	return abs
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestTree(t *testing.T) {
	out, err := execute(t, "tree", "-l", "go", fixture(t))
	require.NoError(t, err)

	assert.Contains(t, out, "\n  go/\n")
	assert.Contains(t, out, "\n    service.go\n")
	assert.Contains(t, out, "\n      UserService.GetUser (method) L16\n")
	assert.Contains(t, out, "newUser (function) L16")
	assert.NotContains(t, out, "python/", "folders without go files are pruned")
}

func TestSearch(t *testing.T) {
	out, err := execute(t, "search", "-l", "rust", "norm", fixture(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "geometry.rs:11\tmethod\tPoint.norm\t3.00")

	out, err = execute(t, "search", "-l", "java", "--kind", "constructor", "", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "constructor\tAccount.Account")
	assert.NotContains(t, out, "deposit")

	out, err = execute(t, "search", "-l", "java", "zzzz", fixture(t))
	require.NoError(t, err)
	assert.Equal(t, "No methods match \"zzzz\".\n", out)
}

func TestScan(t *testing.T) {
	out, err := execute(t, "scan", "-q", "-l", "cpp", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Language:  cpp\n")
	assert.Contains(t, out, "Files:     1\n")
	assert.Contains(t, out, "Methods:   4\n")
	assert.Contains(t, out, "Errors:    0\n")
}

func TestScanFiles(t *testing.T) {
	out, err := execute(t, "scan", "-q", "--files", "-l", "cpp", fixture(t))
	require.NoError(t, err)

	files, summary, ok := strings.Cut(out, "Language:")
	require.True(t, ok)
	assert.Equal(t, "  ✓ "+filepath.Join("cpp", "stack.cpp")+": 4 methods\n", files)
	assert.Contains(t, summary, "Methods:   4\n")
}

func TestExport(t *testing.T) {
	out, err := execute(t, "export", "-f", "mermaid", "-l", "python", fixture(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `("__init__")`)

	path := filepath.Join(t.TempDir(), "tree.json")
	_, err = execute(t, "export", "-l", "typescript", "-o", path, fixture(t))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var tree struct {
		Language string `json:"language"`
		Files    int    `json:"files"`
		Methods  int    `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(data, &tree))
	assert.Equal(t, "typescript", tree.Language)
	assert.Equal(t, 1, tree.Files)
	assert.Equal(t, 4, tree.Methods)

	_, err = execute(t, "export", "-f", "dot", fixture(t))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "language: rust\nroots:\n  - " + fixture(t) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intelliparse.yml"), []byte(cfg), 0o644))

	out, err := execute(t, "tree", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Point.new (constructor) L7")

	// Flags win over the file.
	out, err = execute(t, "tree", "--config-dir", dir, "-l", "c")
	require.NoError(t, err)
	assert.Contains(t, out, "buffer_new (function) L8")
	assert.NotContains(t, out, "Point.new")
}

func TestUnknownLanguage(t *testing.T) {
	_, err := execute(t, "tree", "-l", "cobol", fixture(t))
	assert.Error(t, err)
}

func TestMissingRoot(t *testing.T) {
	_, err := execute(t, "tree", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
