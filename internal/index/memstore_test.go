package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/lang"
)

func record(name string, row uint) extract.MethodRecord {
	return extract.MethodRecord{
		Name: name,
		Kind: extract.KindFunction,
		Span: extract.SourceSpan{
			Start: extract.Position{Row: row},
			End:   extract.Position{Row: row + 2},
		},
	}
}

func testSnapshot() hierarchy.Snapshot {
	return hierarchy.Snapshot{
		Seq:      7,
		Language: lang.Python,
		Files:    []string{"/p/a.py", "/p/b.py", "/p/empty.py"},
		Methods: map[string][]extract.MethodRecord{
			"/p/a.py":     {record("parse_header", 0), record("parse", 4), record("render", 9)},
			"/p/b.py":     {record("reparse", 0), record("pasre", 3)},
			"/p/empty.py": {},
		},
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestMemStore_QueryRanking(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, testSnapshot()))

	got, err := s.Query(ctx, "parse", 0)
	require.NoError(t, err)
	// exact, prefix, substring, then the fuzzy typo.
	assert.Equal(t, []string{"parse", "parse_header", "reparse", "pasre"}, names(got))
	assert.Equal(t, scoreExact, got[0].Score)
	assert.Less(t, got[3].Score, scoreSubstring)
	assert.Equal(t, "/p/a.py", got[0].Path)
	assert.EqualValues(t, 4, got[0].Span.Start.Row)
}

func TestMemStore_QueryCaseInsensitiveAndLimit(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, testSnapshot()))

	got, err := s.Query(ctx, "PARSE", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"parse", "parse_header"}, names(got))

	all, err := s.Query(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.Query(ctx, "zzzzzz", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_ReplaceIsWholesale(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, testSnapshot()))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Files: 3, Methods: 5, Seq: 7}, st)

	require.NoError(t, s.Replace(ctx, hierarchy.Snapshot{
		Seq:     8,
		Files:   []string{"/q/c.py"},
		Methods: map[string][]extract.MethodRecord{"/q/c.py": {record("only", 0)}},
	}))
	got, err := s.Query(ctx, "parse", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Methods)
}

func TestObserver_ReplacesStore(t *testing.T) {
	s := NewMemStore()
	Observer(s)(testSnapshot())

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, st.Methods)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory")
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, s)

	_, err = Open("bolt")
	assert.Error(t, err)
}
