// Package lang maps source files to the closed set of languages the method
// tree understands.
package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a programming language for parsing.
type Language string

const (
	C          Language = "c"
	Cpp        Language = "cpp"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Java       Language = "java"
	JavaScript Language = "javascript"
	Python     Language = "python"
	Rust       Language = "rust"
	TypeScript Language = "typescript"
)

// Default is used when the user has not picked a language.
const Default = Python

// all lists every supported language in display order.
var all = []Language{C, Cpp, CSharp, Go, Java, JavaScript, Python, Rust, TypeScript}

// extToLanguage maps lower-cased file extensions to a Language.
var extToLanguage = map[string]Language{
	".c":    C,
	".h":    C,
	".cpp":  Cpp,
	".cc":   Cpp,
	".cxx":  Cpp,
	".hpp":  Cpp,
	".hh":   Cpp,
	".hxx":  Cpp,
	".cs":   CSharp,
	".go":   Go,
	".java": Java,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".jsx":  JavaScript,
	".py":   Python,
	".pyi":  Python,
	".rs":   Rust,
	".ts":   TypeScript,
	".mts":  TypeScript,
	".cts":  TypeScript,
}

// aliases accepts the spellings users commonly type for a language.
var aliases = map[string]Language{
	"c#":     CSharp,
	"cs":     CSharp,
	"c++":    Cpp,
	"cxx":    Cpp,
	"golang": Go,
	"js":     JavaScript,
	"ts":     TypeScript,
	"py":     Python,
	"rs":     Rust,
}

// Of returns the language of the file at path, judged by its extension.
// ok is false for unknown or missing extensions; such files are excluded
// from every language-filtered view.
func Of(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	l, ok := extToLanguage[ext]
	return l, ok
}

// Is reports whether the file at path is written in l.
func Is(path string, l Language) bool {
	got, ok := Of(path)
	return ok && got == l
}

// Parse converts a user-supplied name into a Language.
func Parse(name string) (Language, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, l := range all {
		if string(l) == n {
			return l, nil
		}
	}
	if l, ok := aliases[n]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unknown language %q (supported: %s)", name, strings.Join(Names(), ", "))
}

// All returns every supported language.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Names returns the identifiers of every supported language.
func Names() []string {
	names := make([]string, len(all))
	for i, l := range all {
		names[i] = string(l)
	}
	return names
}

// Extensions returns the extensions registered for l, sorted.
func Extensions(l Language) []string {
	var exts []string
	for ext, got := range extToLanguage {
		if got == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Valid reports whether l belongs to the supported set.
func (l Language) Valid() bool {
	for _, known := range all {
		if known == l {
			return true
		}
	}
	return false
}

func (l Language) String() string {
	return string(l)
}
