package index

import (
	"context"
	"sync"

	"github.com/dusk-indust/intelliparse/internal/hierarchy"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore keeps entries in a slice. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	files   int
	seq     uint64
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Replace swaps in the entries of snap.
func (m *MemStore) Replace(_ context.Context, snap hierarchy.Snapshot) error {
	entries := entriesOf(snap)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	m.files = len(snap.Methods)
	m.seq = snap.Seq
	return nil
}

// Query ranks literal matches (exact, prefix, substring) above fuzzy
// matches. An empty query lists everything.
func (m *MemStore) Query(ctx context.Context, text string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Entry
	for _, e := range m.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := 0.0
		switch {
		case text == "":
			score = scoreSubstring
		default:
			score = substringScore(e.Name, text)
			if score == 0 {
				score = fuzzyScore(e.Name, text)
			}
		}
		if score > 0 {
			e.Score = score
			hits = append(hits, e)
		}
	}
	return rank(hits, limit), nil
}

// Stats returns the number of indexed files and methods.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Stats{Files: m.files, Methods: len(m.entries), Seq: m.seq}, nil
}

// Close drops the entries.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}
