// Package index answers "where is the method called X" over the latest tree
// snapshot. It is rebuilt wholesale after every applied extraction pass.
package index

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
)

// Store is the method index backend.
// Implementations: MemStore (default), KuzuStore (cgo).
type Store interface {
	io.Closer

	// Replace discards the previous contents and indexes snap.
	Replace(ctx context.Context, snap hierarchy.Snapshot) error

	// Query returns up to limit methods matching text, best match first.
	Query(ctx context.Context, text string, limit int) ([]Entry, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Entry is one indexed method.
type Entry struct {
	Path      string             `json:"path"`
	Name      string             `json:"name"`
	Kind      extract.Kind       `json:"kind"`
	Container string             `json:"container,omitempty"`
	Span      extract.SourceSpan `json:"span"`
	Score     float64            `json:"score"`
}

// Stats reports index size.
type Stats struct {
	Files   int    `json:"files"`
	Methods int    `json:"methods"`
	Seq     uint64 `json:"seq"`
}

// DefaultLimit caps Query results when limit <= 0.
const DefaultLimit = 20

// FuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit.
const FuzzyThreshold = 0.8

const (
	scoreExact     = 3.0
	scorePrefix    = 2.0
	scoreSubstring = 1.0
)

// Open returns the store named by kind: "memory" (or "") or "kuzu".
func Open(kind string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemStore(), nil
	case "kuzu":
		return NewKuzuStore()
	default:
		return nil, fmt.Errorf("index: unknown store %q (want memory or kuzu)", kind)
	}
}

// Observer adapts a Store to the model's snapshot hook.
func Observer(s Store) hierarchy.Observer {
	return func(snap hierarchy.Snapshot) {
		if err := s.Replace(context.Background(), snap); err != nil {
			log.Printf("index: replace snapshot %d: %v", snap.Seq, err)
		}
	}
}

// entriesOf flattens a snapshot into entries in discovery order.
func entriesOf(snap hierarchy.Snapshot) []Entry {
	var out []Entry
	for _, path := range snap.Files {
		for _, m := range snap.Methods[path] {
			out = append(out, Entry{
				Path:      path,
				Name:      m.Name,
				Kind:      m.Kind,
				Container: m.Container,
				Span:      m.Span,
			})
		}
	}
	return out
}

// substringScore ranks a case-insensitive literal match, 0 if none.
func substringScore(name, query string) float64 {
	n, q := strings.ToLower(name), strings.ToLower(query)
	switch {
	case n == q:
		return scoreExact
	case strings.HasPrefix(n, q):
		return scorePrefix
	case strings.Contains(n, q):
		return scoreSubstring
	}
	return 0
}

// fuzzyScore returns the Jaro-Winkler similarity when it clears the
// threshold, else 0.
func fuzzyScore(name, query string) float64 {
	sim, err := edlib.StringsSimilarity(strings.ToLower(name), strings.ToLower(query), edlib.JaroWinkler)
	if err != nil || float64(sim) < FuzzyThreshold {
		return 0
	}
	return float64(sim)
}

// rank sorts by score, then name, path and position, and truncates.
func rank(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Span.Start.Before(b.Span.Start)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
