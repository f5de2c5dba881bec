package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goRules match functions, methods, and function literals. A literal takes
// the name it is bound to by a var, := or = statement.
type goRules struct{}

func (goRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	switch n.Kind() {
	case "function_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindFunction}, true

	case "method_declaration":
		return decl{
			name:      fieldText(n, "name", source),
			kind:      KindMethod,
			container: goReceiverType(n, source),
		}, true

	case "func_literal":
		return decl{name: goBindingName(n, source), kind: KindFunction}, true
	}
	return decl{}, false
}

func (goRules) container(*tree_sitter.Node, []byte) (string, bool) {
	return "", false
}

// goReceiverType returns the receiver's base type name:
// "(s *Server[T])" -> "Server".
func goReceiverType(n *tree_sitter.Node, source []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := uint(0); i < recv.NamedChildCount(); i++ {
		param := recv.NamedChild(i)
		if param == nil || param.Kind() != "parameter_declaration" {
			continue
		}
		typ := fieldText(param, "type", source)
		typ = strings.TrimLeft(typ, "*")
		return stripTypeArgs(typ)
	}
	return ""
}

// goBindingName pairs a func literal on the right-hand side with the
// identifier at the same position on the left: "a, h := 1, func() {}" -> "h".
func goBindingName(n *tree_sitter.Node, source []byte) string {
	list := n.Parent()
	if list == nil || list.Kind() != "expression_list" {
		return ""
	}
	stmt := list.Parent()
	if stmt == nil {
		return ""
	}

	var names []*tree_sitter.Node
	switch stmt.Kind() {
	case "var_spec":
		for i := uint(0); i < stmt.NamedChildCount(); i++ {
			if c := stmt.NamedChild(i); c != nil && c.Kind() == "identifier" {
				names = append(names, c)
			}
		}
	case "short_var_declaration", "assignment_statement":
		left := stmt.ChildByFieldName("left")
		if left == nil {
			return ""
		}
		for i := uint(0); i < left.NamedChildCount(); i++ {
			names = append(names, left.NamedChild(i))
		}
	default:
		return ""
	}

	idx := -1
	for i := uint(0); i < list.NamedChildCount(); i++ {
		if c := list.NamedChild(i); c != nil && c.StartByte() == n.StartByte() && c.EndByte() == n.EndByte() {
			idx = int(i)
			break
		}
	}
	if idx < 0 || idx >= len(names) || names[idx] == nil {
		return ""
	}
	return names[idx].Utf8Text(source)
}
