package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var javaContainers = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

// javaRules match methods, constructors, and record compact constructors.
type javaRules struct{}

func (javaRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	switch n.Kind() {
	case "method_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindMethod}, true
	case "constructor_declaration", "compact_constructor_declaration":
		return decl{name: fieldText(n, "name", source), kind: KindConstructor}, true
	}
	return decl{}, false
}

func (javaRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	return namedContainer(javaContainers, n, source)
}
