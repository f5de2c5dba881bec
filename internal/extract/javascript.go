package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var jsContainers = map[string]bool{
	"class_declaration":          true,
	"class":                      true,
	"abstract_class_declaration": true,
}

// jsRules serve both JavaScript and TypeScript; the TypeScript grammar is a
// superset for every production matched here.
type jsRules struct{}

func (jsRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindFunction}, true

	case "method_definition":
		name := fieldText(n, "name", source)
		if name == "constructor" {
			return decl{name: name, kind: KindConstructor}, true
		}
		return decl{name: name, kind: KindMethod}, true

	case "function_expression", "function", "generator_function", "arrow_function":
		name := fieldText(n, "name", source)
		if name == "" {
			name = jsBindingName(n, source)
		}
		kind := KindFunction
		switch parentKind(n) {
		case "public_field_definition", "field_definition":
			kind = KindMethod
		}
		return decl{name: name, kind: kind}, true
	}
	return decl{}, false
}

func (jsRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	return namedContainer(jsContainers, n, source)
}

// jsBindingName returns the name a function expression is bound to:
// "const f = () => {}", "{ f: function() {} }", "this.f = () => {}",
// "class A { f = () => {} }". Anything else is anonymous.
func jsBindingName(n *tree_sitter.Node, source []byte) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	switch p.Kind() {
	case "variable_declarator", "public_field_definition":
		return fieldText(p, "name", source)
	case "field_definition":
		return fieldText(p, "property", source)
	case "pair":
		return fieldText(p, "key", source)
	case "assignment_expression":
		left := p.ChildByFieldName("left")
		if left == nil {
			return ""
		}
		if left.Kind() == "member_expression" {
			return fieldText(left, "property", source)
		}
		return left.Utf8Text(source)
	}
	return ""
}
