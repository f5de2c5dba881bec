package extract

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// AnonymousName labels function expressions that have no binding name.
const AnonymousName = "<anonymous>"

// Kind classifies an extracted declaration.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindDestructor  Kind = "destructor"
)

// Position is a zero-based (row, column) location in a file.
type Position struct {
	Row    uint `json:"row"`
	Column uint `json:"column"`
}

// Before reports whether p comes strictly before o in document order.
func (p Position) Before(o Position) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Column < o.Column)
}

// SourceSpan is a half-open range [Start, End) in a file's text as it was
// when parsed. Spans go stale when the file changes; re-extract to refresh.
type SourceSpan struct {
	Start     Position `json:"start"`
	End       Position `json:"end"`
	StartByte uint     `json:"startByte"`
	EndByte   uint     `json:"endByte"`
}

func (s SourceSpan) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Row, s.Start.Column, s.End.Row, s.End.Column)
}

// spanOf returns the full source range of node.
func spanOf(node *tree_sitter.Node) SourceSpan {
	start, end := node.StartPosition(), node.EndPosition()
	return SourceSpan{
		Start:     Position{Row: start.Row, Column: start.Column},
		End:       Position{Row: end.Row, Column: end.Column},
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
	}
}

// MethodRecord is one function, method, or constructor-like declaration.
// Records are produced fresh on every extraction and have no identity beyond
// (file path, index in the result).
type MethodRecord struct {
	Name      string     `json:"name"`
	Kind      Kind       `json:"kind"`
	Container string     `json:"container,omitempty"`
	Span      SourceSpan `json:"span"`
}

// QualifiedName joins Container and Name the way most languages display it.
func (m MethodRecord) QualifiedName() string {
	if m.Container == "" {
		return m.Name
	}
	return m.Container + "." + m.Name
}

// ExtractionError reports that one file could not be turned into method
// records. It is isolated to that file; batch callers treat it as "zero
// methods" and carry on.
type ExtractionError struct {
	Path   string
	Lang   lang.Language
	Line   uint // zero-based row of the first syntax error, when known
	Column uint
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Lang, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// UnsupportedLanguageError is returned by the Router for a language it has
// no adapter for.
type UnsupportedLanguageError struct {
	Lang lang.Language
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("no method adapter for language %q", string(e.Lang))
}
