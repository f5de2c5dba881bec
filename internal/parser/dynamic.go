package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// Locator resolves the on-disk location of a language's grammar resource.
// An empty path with a nil error means "not available here".
type Locator func(l lang.Language) (string, error)

// DirLocator returns a Locator that searches dirs in order for a shared
// library named after the grammar (e.g. c_sharp.so, typescript.dylib).
// First match wins.
func DirLocator(dirs ...string) Locator {
	return func(l lang.Language) (string, error) {
		name := libBaseName(l) + LibExtension()
		for _, dir := range dirs {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		return "", nil
	}
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// libNames maps languages to the grammar names used by the upstream
// tree-sitter repositories where they differ from our identifiers.
var libNames = map[lang.Language]string{
	lang.CSharp: "c_sharp",
}

func libBaseName(l lang.Language) string {
	if name, ok := libNames[l]; ok {
		return name
	}
	return string(l)
}

// CSymbolName returns the C function exported by a grammar library.
func CSymbolName(l lang.Language) string {
	return "tree_sitter_" + strings.ReplaceAll(libBaseName(l), "-", "_")
}

// DynamicLoader loads tree-sitter grammars from shared libraries (.so on
// Linux, .dylib on macOS) using purego. The library location comes from the
// Locator; caching is left to the Pool.
type DynamicLoader struct {
	locate Locator

	mu      sync.Mutex
	handles []uintptr
}

// NewDynamicLoader creates a loader that resolves grammar files with locate.
func NewDynamicLoader(locate Locator) *DynamicLoader {
	return &DynamicLoader{locate: locate}
}

// Load implements GrammarLoader.
func (dl *DynamicLoader) Load(l lang.Language) (*tree_sitter.Language, error) {
	if dl.locate == nil {
		return nil, fmt.Errorf("dynamic %s: no locator: %w", l, ErrGrammarNotFound)
	}
	path, err := dl.locate(l)
	if err != nil {
		return nil, fmt.Errorf("dynamic %s: locate: %w", l, err)
	}
	if path == "" {
		return nil, fmt.Errorf("dynamic %s: %w", l, ErrGrammarNotFound)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dynamic %s: dlopen %s: %w", l, path, err)
	}

	sym, err := purego.Dlsym(handle, CSymbolName(l))
	if err != nil {
		purego.Dlclose(handle)
		return nil, fmt.Errorf("dynamic %s: %s: %w", l, path, err)
	}

	var langFunc func() uintptr
	purego.RegisterFunc(&langFunc, sym)
	ptr := langFunc()
	if ptr == 0 {
		purego.Dlclose(handle)
		return nil, fmt.Errorf("dynamic %s: %s() returned null", l, CSymbolName(l))
	}

	// ptr is a static TSLanguage* owned by the shared library, not Go memory.
	language := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	if err := checkABI(l, language.AbiVersion()); err != nil {
		purego.Dlclose(handle)
		return nil, fmt.Errorf("dynamic %s: %w", path, err)
	}

	dl.mu.Lock()
	dl.handles = append(dl.handles, handle)
	dl.mu.Unlock()
	return language, nil
}

// Close forgets the library handles. Libraries stay mapped because grammars
// handed out earlier may still be referenced by live trees.
func (dl *DynamicLoader) Close() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.handles = nil
}
