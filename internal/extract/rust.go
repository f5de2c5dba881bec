package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rustRules match function_item. Functions inside impl or trait blocks are
// methods of that type; bodiless trait signatures are not matched.
type rustRules struct{}

func (rustRules) declaration(n *tree_sitter.Node, source []byte, _ string) (decl, bool) {
	if n.Kind() != "function_item" {
		return decl{}, false
	}
	d := decl{name: fieldText(n, "name", source), kind: KindFunction}
	if p := n.Parent(); p != nil && p.Kind() == "declaration_list" {
		switch parentKind(p) {
		case "impl_item", "trait_item":
			d.kind = KindMethod
			if d.name == "new" {
				d.kind = KindConstructor
			}
		}
	}
	return d, true
}

func (rustRules) container(n *tree_sitter.Node, source []byte) (string, bool) {
	switch n.Kind() {
	case "impl_item":
		// impl Trait for Type: the type owns the methods.
		typ := stripTypeArgs(fieldText(n, "type", source))
		if typ == "" {
			return "", false
		}
		return lastSegment(typ, "::"), true
	case "trait_item":
		return namedContainer(map[string]bool{"trait_item": true}, n, source)
	}
	return "", false
}
