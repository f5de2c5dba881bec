package export

import (
	"encoding/json"
	"time"

	"github.com/dusk-indust/intelliparse/internal/lang"
)

// TreeExport is the top-level JSON export structure.
type TreeExport struct {
	Language   lang.Language `json:"language"`
	ExportedAt string        `json:"exportedAt"`
	Files      int           `json:"files"`
	Methods    int           `json:"methods"`
	Roots      []TreeNode    `json:"roots"`
}

// ExportTree builds a TreeExport for the current state of t.
func ExportTree(t Tree, l lang.Language) (*TreeExport, error) {
	roots, err := Build(t)
	if err != nil {
		return nil, err
	}
	export := &TreeExport{
		Language:   l,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Roots:      roots,
	}
	for _, r := range roots {
		for _, f := range files(r, nil) {
			export.Files++
			export.Methods += len(f.Children)
		}
	}
	return export, nil
}

// JSON renders t as indented JSON.
func JSON(t Tree, l lang.Language) ([]byte, error) {
	export, err := ExportTree(t, l)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(export, "", "  ")
}
