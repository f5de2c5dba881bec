// Package parser owns the tree-sitter grammars. A Pool loads each language's
// grammar at most once per process and hands out read-only handles that can
// parse concurrently.
package parser

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/singleflight"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// Grammar is a loaded grammar handle. It is never mutated after load and is
// shared by every parse of its language.
type Grammar struct {
	lang     lang.Language
	language *tree_sitter.Language
}

// Language returns the language this grammar parses.
func (g *Grammar) Language() lang.Language {
	return g.lang
}

// Pool caches one grammar per language for the lifetime of the process.
// Concurrent Acquire calls for the same uncached language share a single
// load.
type Pool struct {
	loader GrammarLoader

	mu       sync.RWMutex
	grammars map[lang.Language]*Grammar
	group    singleflight.Group
	loads    atomic.Int64
	closed   bool
}

// NewPool creates a Pool that loads grammars through loader. A nil loader
// means the compiled-in grammars.
func NewPool(loader GrammarLoader) *Pool {
	if loader == nil {
		loader = BuiltinLoader{}
	}
	return &Pool{
		loader:   loader,
		grammars: make(map[lang.Language]*Grammar),
	}
}

// Acquire returns the grammar for l, loading it on first use. Failures are
// reported as *GrammarLoadError and are not cached, so a later call retries.
func (p *Pool) Acquire(l lang.Language) (*Grammar, error) {
	p.mu.RLock()
	g, ok := p.grammars[l]
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, &GrammarLoadError{Lang: l, Err: fmt.Errorf("parser pool closed")}
	}
	if ok {
		return g, nil
	}

	v, err, _ := p.group.Do(string(l), func() (any, error) {
		// Another flight may have finished between the read above and here.
		p.mu.RLock()
		cached, ok := p.grammars[l]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}

		p.loads.Add(1)
		tsLang, err := p.loader.Load(l)
		if err != nil {
			log.Printf("parser: grammar %s failed to load: %v", l, err)
			return nil, &GrammarLoadError{Lang: l, Err: err}
		}
		if tsLang == nil {
			return nil, &GrammarLoadError{Lang: l, Err: fmt.Errorf("loader returned nil grammar")}
		}
		if err := checkABI(l, tsLang.AbiVersion()); err != nil {
			log.Printf("parser: grammar %s rejected: %v", l, err)
			return nil, &GrammarLoadError{Lang: l, Err: err}
		}

		loaded := &Grammar{lang: l, language: tsLang}
		p.mu.Lock()
		p.grammars[l] = loaded
		p.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Grammar), nil
}

// Parse parses source with g. A fresh tree-sitter parser is created per call,
// so Parse is safe to call concurrently on the same handle. The caller owns
// the returned tree and must Close it.
func (p *Pool) Parse(ctx context.Context, g *Grammar, source []byte) (*tree_sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tsParser := tree_sitter.NewParser()
	defer tsParser.Close()

	if err := tsParser.SetLanguage(g.language); err != nil {
		return nil, fmt.Errorf("set language %s: %w", g.lang, err)
	}

	tree := tsParser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s source", g.lang)
	}
	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, err
	}
	return tree, nil
}

// Loaded reports whether the grammar for l is cached.
func (p *Pool) Loaded(l lang.Language) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.grammars[l]
	return ok
}

// Loads returns how many grammar loads the pool has attempted.
func (p *Pool) Loads() int {
	return int(p.loads.Load())
}

// Close drops every cached grammar. Acquire fails afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.grammars = make(map[lang.Language]*Grammar)
	if dl, ok := p.loader.(interface{ Close() }); ok {
		dl.Close()
	}
	return nil
}
