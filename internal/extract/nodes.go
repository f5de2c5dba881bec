package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// fieldText returns the text of n's child under field, or "" when absent.
func fieldText(n *tree_sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(source)
}

// parentKind returns the kind of n's parent, or "" at the root.
func parentKind(n *tree_sitter.Node) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	return p.Kind()
}

// namedContainer is the common container rule: a node of one of the given
// kinds, named by its "name" field.
func namedContainer(kinds map[string]bool, n *tree_sitter.Node, source []byte) (string, bool) {
	if !kinds[n.Kind()] {
		return "", false
	}
	name := fieldText(n, "name", source)
	if name == "" {
		return "", false
	}
	return name, true
}

// lastSegment returns the part of a qualified name after the final sep.
func lastSegment(name, sep string) string {
	if i := strings.LastIndex(name, sep); i >= 0 {
		return name[i+len(sep):]
	}
	return name
}

// stripTypeArgs drops a generic argument list: "List<T>" -> "List".
func stripTypeArgs(name string) string {
	if i := strings.IndexAny(name, "<["); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}
