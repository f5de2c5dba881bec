// Package export renders the method tree of a hierarchy model as JSON or
// as a Mermaid diagram.
package export

import (
	"fmt"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
)

// Tree is the read side of a hierarchy model.
type Tree interface {
	RootNodes() []hierarchy.Node
	Children(n hierarchy.Node) ([]hierarchy.Node, error)
	Emphasized(n hierarchy.Node) bool
}

// TreeNode is the exported form of one hierarchy node and its subtree.
type TreeNode struct {
	ID         string              `json:"id"`
	Kind       string              `json:"kind"`
	Label      string              `json:"label"`
	Path       string              `json:"path"`
	Context    string              `json:"context"`
	Emphasized bool                `json:"emphasized,omitempty"`
	MethodKind extract.Kind        `json:"methodKind,omitempty"`
	Container  string              `json:"container,omitempty"`
	Span       *extract.SourceSpan `json:"span,omitempty"`
	Children   []TreeNode          `json:"children,omitempty"`
}

// Build expands every root of t depth-first. Folders without any file of
// the active language are pruned.
func Build(t Tree) ([]TreeNode, error) {
	roots := t.RootNodes()
	out := make([]TreeNode, 0, len(roots))
	for _, r := range roots {
		// Roots are always shown, even when empty.
		n, _, err := build(t, r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func build(t Tree, n hierarchy.Node) (TreeNode, bool, error) {
	tn := TreeNode{
		ID:         n.ID(),
		Kind:       n.Kind.String(),
		Label:      n.Label,
		Path:       n.Path,
		Context:    n.ContextValue(),
		Emphasized: t.Emphasized(n),
	}
	if n.Kind == hierarchy.MethodNode {
		if n.Method != nil {
			span := n.Method.Span
			tn.Span = &span
			tn.MethodKind = n.Method.Kind
			tn.Container = n.Method.Container
		}
		return tn, true, nil
	}
	if n.Kind == hierarchy.FolderNode && !tn.Emphasized {
		return tn, false, nil
	}

	children, err := t.Children(n)
	if err != nil {
		return TreeNode{}, false, fmt.Errorf("export: expand %s: %w", n.Path, err)
	}
	for _, c := range children {
		ct, keep, err := build(t, c)
		if err != nil {
			return TreeNode{}, false, err
		}
		if keep {
			tn.Children = append(tn.Children, ct)
		}
	}
	return tn, true, nil
}

// files collects the file nodes under tn in display order.
func files(tn TreeNode, out []TreeNode) []TreeNode {
	for _, c := range tn.Children {
		switch c.Kind {
		case hierarchy.FileNode.String():
			out = append(out, c)
		case hierarchy.FolderNode.String():
			out = files(c, out)
		}
	}
	return out
}
