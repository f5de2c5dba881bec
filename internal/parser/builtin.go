package parser

import (
	"fmt"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// builtinGrammars holds the compiled-in grammar constructors.
var builtinGrammars = map[lang.Language]func() unsafe.Pointer{
	lang.C:          tree_sitter_c.Language,
	lang.Cpp:        tree_sitter_cpp.Language,
	lang.CSharp:     tree_sitter_csharp.Language,
	lang.Go:         tree_sitter_go.Language,
	lang.Java:       tree_sitter_java.Language,
	lang.JavaScript: tree_sitter_javascript.Language,
	lang.Python:     tree_sitter_python.Language,
	lang.Rust:       tree_sitter_rust.Language,
	lang.TypeScript: tree_sitter_typescript.LanguageTypescript,
}

// BuiltinLoader loads grammars compiled into the binary via CGo.
type BuiltinLoader struct{}

// Load implements GrammarLoader.
func (BuiltinLoader) Load(l lang.Language) (*tree_sitter.Language, error) {
	ctor, ok := builtinGrammars[l]
	if !ok {
		return nil, fmt.Errorf("builtin %s: %w", l, ErrGrammarNotFound)
	}
	ptr := ctor()
	if ptr == nil {
		return nil, fmt.Errorf("builtin %s: grammar constructor returned nil", l)
	}
	return tree_sitter.NewLanguage(ptr), nil
}
