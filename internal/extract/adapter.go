// Package extract discovers function and method declarations in source files.
// A Router hands out one Adapter per language; every adapter shares the same
// tree walk and differs only in the grammar productions it recognises.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/intelliparse/internal/lang"
	"github.com/dusk-indust/intelliparse/internal/parser"
)

// ErrSyntax marks source that does not parse as its detected language.
var ErrSyntax = errors.New("source has syntax errors")

// Adapter extracts method records from files of a single language.
type Adapter interface {
	Language() lang.Language

	// Extract reads the file at path and returns its declarations in
	// document order. Unreadable or malformed files fail with
	// *ExtractionError; a file without declarations yields an empty slice.
	Extract(ctx context.Context, path string) ([]MethodRecord, error)

	// ExtractSource is Extract for text already in memory.
	ExtractSource(ctx context.Context, path string, source []byte) ([]MethodRecord, error)
}

// decl is what a grammar rule set reports for a matching node.
type decl struct {
	name      string
	kind      Kind
	container string
}

// rules encode one language's grammar shape of a function declaration.
type rules interface {
	// declaration reports whether n is a function/method/constructor-like
	// declaration and returns its name and kind. enclosing is the innermost
	// container name seen so far, "" at top level.
	declaration(n *tree_sitter.Node, source []byte, enclosing string) (decl, bool)

	// container reports whether n introduces a named scope (class, impl,
	// struct) whose name should be attached to declarations inside it.
	container(n *tree_sitter.Node, source []byte) (string, bool)
}

// treeAdapter implements Adapter over a loaded grammar and a rule set.
type treeAdapter struct {
	lang    lang.Language
	pool    *parser.Pool
	grammar *parser.Grammar
	rules   rules
	opts    Options
}

// Compile-time check that treeAdapter satisfies Adapter.
var _ Adapter = (*treeAdapter)(nil)

func (a *treeAdapter) Language() lang.Language {
	return a.lang
}

func (a *treeAdapter) Extract(ctx context.Context, path string) ([]MethodRecord, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Lang: a.lang, Err: err}
	}
	return a.ExtractSource(ctx, path, source)
}

func (a *treeAdapter) ExtractSource(ctx context.Context, path string, source []byte) ([]MethodRecord, error) {
	tree, err := a.pool.Parse(ctx, a.grammar, source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ExtractionError{Path: path, Lang: a.lang, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !a.opts.TolerateErrors {
		pos := firstErrorPosition(root)
		return nil, &ExtractionError{
			Path:   path,
			Lang:   a.lang,
			Line:   pos.Row,
			Column: pos.Column,
			Err:    fmt.Errorf("%w at %d:%d", ErrSyntax, pos.Row+1, pos.Column+1),
		}
	}

	w := walker{rules: a.rules, source: source, methods: []MethodRecord{}}
	cursor := root.Walk()
	defer cursor.Close()
	w.walk(cursor)
	return w.methods, nil
}

// walker collects declarations in pre-order while tracking enclosing
// containers.
type walker struct {
	rules      rules
	source     []byte
	containers []string
	methods    []MethodRecord
}

func (w *walker) walk(cursor *tree_sitter.TreeCursor) {
	node := cursor.Node()

	enclosing := ""
	if len(w.containers) > 0 {
		enclosing = w.containers[len(w.containers)-1]
	}
	if d, ok := w.rules.declaration(node, w.source, enclosing); ok {
		if d.name == "" {
			d.name = AnonymousName
		}
		if d.container == "" {
			d.container = enclosing
		}
		w.methods = append(w.methods, MethodRecord{
			Name:      d.name,
			Kind:      d.kind,
			Container: d.container,
			Span:      spanOf(node),
		})
	}

	pushed := false
	if name, ok := w.rules.container(node, w.source); ok {
		w.containers = append(w.containers, name)
		pushed = true
	}

	if cursor.GotoFirstChild() {
		w.walk(cursor)
		for cursor.GotoNextSibling() {
			w.walk(cursor)
		}
		cursor.GotoParent()
	}

	if pushed {
		w.containers = w.containers[:len(w.containers)-1]
	}
}

// firstErrorPosition returns the start of the first ERROR or MISSING node in
// document order, or the root start when none is found.
func firstErrorPosition(root *tree_sitter.Node) tree_sitter.Point {
	var found *tree_sitter.Node
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if found != nil || n == nil || !n.HasError() && !n.IsMissing() {
			return
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	if found == nil {
		return root.StartPosition()
	}
	return found.StartPosition()
}
