package parser

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// GrammarLoader turns a language identifier into a ready tree-sitter grammar.
// Implementations: BuiltinLoader (compiled in), DynamicLoader (shared
// libraries), ChainLoader (first success wins).
type GrammarLoader interface {
	Load(l lang.Language) (*tree_sitter.Language, error)
}

// LoaderFunc adapts a plain function to GrammarLoader.
type LoaderFunc func(l lang.Language) (*tree_sitter.Language, error)

// Load calls f(l).
func (f LoaderFunc) Load(l lang.Language) (*tree_sitter.Language, error) {
	return f(l)
}

// ErrGrammarNotFound is returned by loaders that have no grammar resource
// for the requested language.
var ErrGrammarNotFound = errors.New("grammar resource not found")

// ErrIncompatibleABI is returned when a grammar was generated for a
// tree-sitter ABI this runtime cannot parse with.
var ErrIncompatibleABI = errors.New("incompatible grammar ABI")

// checkABI rejects ABI versions outside the range the linked runtime accepts.
func checkABI(l lang.Language, version uint32) error {
	if version < tree_sitter.MIN_COMPATIBLE_LANGUAGE_VERSION || version > tree_sitter.LANGUAGE_VERSION {
		return fmt.Errorf("%s: ABI %d outside %d..%d: %w", l, version,
			tree_sitter.MIN_COMPATIBLE_LANGUAGE_VERSION, tree_sitter.LANGUAGE_VERSION, ErrIncompatibleABI)
	}
	return nil
}

// ChainLoader tries each loader in order and returns the first grammar that
// loads. If every loader fails the errors are joined.
type ChainLoader []GrammarLoader

// Load implements GrammarLoader.
func (c ChainLoader) Load(l lang.Language) (*tree_sitter.Language, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%s: %w", l, ErrGrammarNotFound)
	}
	var errs []error
	for _, loader := range c {
		g, err := loader.Load(l)
		if err == nil {
			return g, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// GrammarLoadError reports that the grammar for Lang could not be located or
// initialised. It is fatal for that language only.
type GrammarLoadError struct {
	Lang lang.Language
	Err  error
}

func (e *GrammarLoadError) Error() string {
	return fmt.Sprintf("load grammar %s: %v", e.Lang, e.Err)
}

func (e *GrammarLoadError) Unwrap() error {
	return e.Err
}

// Close closes every member loader that holds resources.
func (c ChainLoader) Close() {
	for _, loader := range c {
		if cl, ok := loader.(interface{ Close() }); ok {
			cl.Close()
		}
	}
}
