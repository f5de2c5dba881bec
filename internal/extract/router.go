package extract

import (
	"sort"

	"github.com/dusk-indust/intelliparse/internal/lang"
	"github.com/dusk-indust/intelliparse/internal/parser"
)

// Options tune how adapters treat input.
type Options struct {
	// TolerateErrors extracts whatever the parser recovered from malformed
	// source instead of failing the file with *ExtractionError.
	TolerateErrors bool `yaml:"tolerateErrors" json:"tolerateErrors"`

	// Concurrency bounds Batch fan-out. Zero or negative means 8.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

const defaultConcurrency = 8

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return defaultConcurrency
	}
	return o.Concurrency
}

// Router maps a language to its Adapter. Adapters share the Router's Pool,
// so a grammar is loaded once no matter how many adapters use it.
type Router struct {
	pool  *parser.Pool
	opts  Options
	rules map[lang.Language]rules
}

// NewRouter creates a Router with an adapter registered for every supported
// language.
func NewRouter(pool *parser.Pool, opts Options) *Router {
	return &Router{
		pool: pool,
		opts: opts,
		rules: map[lang.Language]rules{
			lang.C:          cRules{},
			lang.Cpp:        cppRules{},
			lang.CSharp:     csharpRules{},
			lang.Go:         goRules{},
			lang.Java:       javaRules{},
			lang.JavaScript: jsRules{},
			lang.Python:     pythonRules{},
			lang.Rust:       rustRules{},
			lang.TypeScript: jsRules{},
		},
	}
}

// Route returns the adapter for l. The grammar is acquired eagerly so a
// missing or broken grammar surfaces here as *parser.GrammarLoadError rather
// than on every file. Languages without rules fail with
// *UnsupportedLanguageError.
func (r *Router) Route(l lang.Language) (Adapter, error) {
	rs, ok := r.rules[l]
	if !ok {
		return nil, &UnsupportedLanguageError{Lang: l}
	}
	g, err := r.pool.Acquire(l)
	if err != nil {
		return nil, err
	}
	return &treeAdapter{
		lang:    l,
		pool:    r.pool,
		grammar: g,
		rules:   rs,
		opts:    r.opts,
	}, nil
}

// Supported lists the languages Route can serve, sorted.
func (r *Router) Supported() []lang.Language {
	out := make([]lang.Language, 0, len(r.rules))
	for l := range r.rules {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Options returns the options adapters are created with.
func (r *Router) Options() Options {
	return r.opts
}
