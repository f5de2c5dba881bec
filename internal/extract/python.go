package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pythonRules match function_definition. Decorators are outside the span;
// the span covers the def itself.
type pythonRules struct{}

func (pythonRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	if n.Kind() != "function_definition" {
		return decl{}, false
	}
	d := decl{name: fieldText(n, "name", source), kind: KindFunction}
	if inPythonClassBody(n) {
		d.kind = KindMethod
		if d.name == "__init__" {
			d.kind = KindConstructor
		}
	}
	return d, true
}

func (pythonRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	if n.Kind() != "class_definition" {
		return "", false
	}
	return fieldText(n, "name", source), true
}

// inPythonClassBody reports whether the def sits directly in a class body,
// looking through a decorated_definition wrapper.
func inPythonClassBody(n *tree_sitter.Node) bool {
	p := n.Parent()
	if p != nil && p.Kind() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Kind() != "block" {
		return false
	}
	return parentKind(p) == "class_definition"
}
