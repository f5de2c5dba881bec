//go:build cgo

package index

import (
	"context"
	"fmt"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
)

// KuzuStore implements Store on an in-memory KuzuDB graph:
// (File)-[:DEFINES]->(Method). It requires CGO because the go-kuzu driver
// wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex // a kuzu connection is not safe for concurrent queries
	db   *kuzu.Database
	conn *kuzu.Connection
	seq  uint64
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore with its schema in place.
func NewKuzuStore() (Store, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn}
	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	return nil
}

// ddlStatements must create node tables before the relationship table.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Method(
		id STRING,
		name STRING,
		kind STRING,
		container STRING,
		file_path STRING,
		start_row INT64,
		start_col INT64,
		end_row INT64,
		end_col INT64,
		start_byte INT64,
		end_byte INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM File TO Method)`,
}

func (s *KuzuStore) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Replace clears both node tables and loads snap.
func (s *KuzuStore) Replace(ctx context.Context, snap hierarchy.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{
		"MATCH (m:Method) DETACH DELETE m",
		"MATCH (f:File) DELETE f",
	} {
		if _, err := s.query(stmt, nil); err != nil {
			return err
		}
	}

	for _, path := range snap.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		methods, ok := snap.Methods[path]
		if !ok {
			continue
		}
		if err := s.exec(
			"CREATE (f:File {path: $path, language: $lang})",
			map[string]any{"path": path, "lang": string(snap.Language)},
		); err != nil {
			return err
		}
		for i, m := range methods {
			id := methodID(path, i)
			if err := s.exec(
				`CREATE (m:Method {
					id: $id,
					name: $name,
					kind: $kind,
					container: $container,
					file_path: $fp,
					start_row: $sr,
					start_col: $sc,
					end_row: $er,
					end_col: $ec,
					start_byte: $sb,
					end_byte: $eb
				})`,
				map[string]any{
					"id":        id,
					"name":      m.Name,
					"kind":      string(m.Kind),
					"container": m.Container,
					"fp":        path,
					"sr":        int64(m.Span.Start.Row),
					"sc":        int64(m.Span.Start.Column),
					"er":        int64(m.Span.End.Row),
					"ec":        int64(m.Span.End.Column),
					"sb":        int64(m.Span.StartByte),
					"eb":        int64(m.Span.EndByte),
				},
			); err != nil {
				return err
			}
			if err := s.exec(
				`MATCH (a:File {path: $src}), (b:Method {id: $dst})
				 CREATE (a)-[:DEFINES]->(b)`,
				map[string]any{"src": path, "dst": id},
			); err != nil {
				return err
			}
		}
	}
	s.seq = snap.Seq
	return nil
}

// Query returns methods whose name contains text, case-insensitively.
func (s *KuzuStore) Query(_ context.Context, text string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (f:File)-[:DEFINES]->(m:Method)
		 WHERE lower(m.name) CONTAINS lower($q)
		 RETURN m.name, m.kind, m.container, f.path,
		        m.start_row, m.start_col, m.end_row, m.end_col, m.start_byte, m.end_byte`,
		map[string]any{"q": text},
	)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := rowToEntry(r)
		e.Score = substringScore(e.Name, text)
		if text == "" {
			e.Score = scoreSubstring
		}
		out = append(out, e)
	}
	return rank(out, limit), nil
}

// Stats returns counts of both node tables.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	methods, err := s.countTable("Method")
	if err != nil {
		return nil, err
	}
	return &Stats{Files: files, Methods: methods, Seq: s.seq}, nil
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

func methodID(path string, index int) string {
	return fmt.Sprintf("%s#%d", path, index)
}

// rowToEntry converts a 10-column Query row.
func rowToEntry(r []any) Entry {
	return Entry{
		Name:      toString(r[0]),
		Kind:      extract.Kind(toString(r[1])),
		Container: toString(r[2]),
		Path:      toString(r[3]),
		Span: extract.SourceSpan{
			Start:     extract.Position{Row: uint(toInt(r[4])), Column: uint(toInt(r[5]))},
			End:       extract.Position{Row: uint(toInt(r[6])), Column: uint(toInt(r[7]))},
			StartByte: uint(toInt(r[8])),
			EndByte:   uint(toInt(r[9])),
		},
	}
}

// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
