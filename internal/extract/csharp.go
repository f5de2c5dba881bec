package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var csharpContainers = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"record_declaration":    true,
}

type csharpRules struct{}

func (csharpRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	switch n.Kind() {
	case "method_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindMethod}, true

	case "constructor_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindConstructor}, true

	case "destructor_declaration":
		name := fieldText(n, "name", source)
		if name != "" && !strings.HasPrefix(name, "~") {
			name = "~" + name
		}
		return decl{name: name, kind: KindDestructor}, true

	case "local_function_statement":
		return decl{name: fieldText(n, "name", source), kind: KindFunction}, true

	case "operator_declaration":
		op := fieldText(n, "operator", source)
		if op == "" {
			return decl{kind: KindMethod}, true
		}
		return decl{name: "operator " + op, kind: KindMethod}, true

	case "conversion_operator_declaration":
		typ := fieldText(n, "type", source)
		if typ == "" {
			return decl{kind: KindMethod}, true
		}
		return decl{name: "operator " + typ, kind: KindMethod}, true
	}
	return decl{}, false
}

func (csharpRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	return namedContainer(csharpContainers, n, source)
}
