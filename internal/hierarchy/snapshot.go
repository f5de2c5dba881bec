package hierarchy

import (
	"slices"

	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/lang"
)

// Snapshot is the result of one completed extraction pass: the methods of
// every concerned file under the roots at the time the pass started. A
// snapshot is replaced wholesale and never merged.
type Snapshot struct {
	Seq      uint64                            `json:"seq"`
	Language lang.Language                     `json:"language"`
	Roots    []string                          `json:"roots"`
	Files    []string                          `json:"files"` // discovery order
	Methods  map[string][]extract.MethodRecord `json:"methods"`
	Errors   []error                           `json:"-"`
}

func emptySnapshot(seq uint64, l lang.Language) *Snapshot {
	return &Snapshot{
		Seq:      seq,
		Language: l,
		Methods:  make(map[string][]extract.MethodRecord),
	}
}

// MethodCount returns the total number of records.
func (s Snapshot) MethodCount() int {
	n := 0
	for _, ms := range s.Methods {
		n += len(ms)
	}
	return n
}

func (s *Snapshot) clone() Snapshot {
	out := Snapshot{
		Seq:      s.Seq,
		Language: s.Language,
		Roots:    slices.Clone(s.Roots),
		Files:    slices.Clone(s.Files),
		Methods:  make(map[string][]extract.MethodRecord, len(s.Methods)),
		Errors:   slices.Clone(s.Errors),
	}
	for path, ms := range s.Methods {
		out.Methods[path] = slices.Clone(ms)
	}
	return out
}
