package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// declaratorWrappers are the declarator kinds that sit between a
// function_definition and the identifier it defines.
var declaratorWrappers = map[string]bool{
	"function_declarator":      true,
	"pointer_declarator":       true,
	"reference_declarator":     true,
	"parenthesized_declarator": true,
	"attributed_declarator":    true,
}

// declaratorName unwraps a C/C++ declarator chain down to the defined name,
// e.g. "*(*make_handler(int))(void)" -> "make_handler".
func declaratorName(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil && declaratorWrappers[n.Kind()] {
		next := n.ChildByFieldName("declarator")
		if next == nil {
			// parenthesized_declarator has no field; its payload is the
			// first named child.
			next = n.NamedChild(0)
		}
		n = next
	}
	return n
}

// cRules match function_definition.
type cRules struct{}

func (cRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	if n.Kind() != "function_definition" {
		return decl{}, false
	}
	d := decl{kind: KindFunction}
	if name := declaratorName(n.ChildByFieldName("declarator")); name != nil {
		d.name = name.Utf8Text(source)
	}
	return d, true
}

func (cRules) container(*tree_sitter.Node, []byte) (string, bool) {
	return "", false
}

var cppContainers = map[string]bool{
	"class_specifier":  true,
	"struct_specifier": true,
	"union_specifier":  true,
}

// cppRules match function_definition, both free and member, including
// out-of-line definitions such as "Widget::Widget()".
type cppRules struct{}

func (cppRules) declaration(n *tree_sitter.Node, source []byte, enclosing string) (decl, bool) {
	if n.Kind() != "function_definition" {
		return decl{}, false
	}
	d := decl{kind: KindFunction}
	name := declaratorName(n.ChildByFieldName("declarator"))
	if name == nil {
		return d, true
	}

	full := name.Utf8Text(source)
	if name.Kind() == "qualified_identifier" {
		d.container = stripTypeArgs(scopeOf(full))
		d.name = lastSegment(full, "::")
	} else {
		d.name = full
	}

	owner := d.container
	if owner == "" && parentKind(n) == "field_declaration_list" {
		owner = enclosing
	}
	switch {
	case owner == "":
	case strings.HasPrefix(d.name, "~"):
		d.kind = KindDestructor
	case d.name == lastSegment(owner, "::"):
		d.kind = KindConstructor
	default:
		d.kind = KindMethod
	}
	return d, true
}

func (cppRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	return namedContainer(cppContainers, n, source)
}

// scopeOf returns everything before the final "::".
func scopeOf(qualified string) string {
	if i := strings.LastIndex(qualified, "::"); i >= 0 {
		return qualified[:i]
	}
	return ""
}
