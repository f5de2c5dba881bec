package mcptools

import (
	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/index"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// NodeView is a tree node as a host renders it.
type NodeView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Path        string `json:"path"`
	Context     string `json:"context"`
	Collapsible bool   `json:"collapsible"`
	Emphasized  bool   `json:"emphasized"`
}

// AddRootsInput is the input for the add_roots MCP tool.
type AddRootsInput struct {
	Paths []string `json:"paths" jsonschema:"absolute directory paths to add as tree roots"`
}

// RootsOutput carries the root set after a mutation.
type RootsOutput struct {
	Roots []string `json:"roots"`
}

// RemoveRootInput is the input for the remove_root MCP tool.
type RemoveRootInput struct {
	Path string `json:"path" jsonschema:"the root directory to remove"`
}

// RemoveRootOutput is the result of the remove_root MCP tool.
type RemoveRootOutput struct {
	Removed bool     `json:"removed"`
	Roots   []string `json:"roots"`
}

// ClearRootsInput is the input for the clear_roots MCP tool.
type ClearRootsInput struct{}

// SetLanguageInput is the input for the set_language MCP tool.
type SetLanguageInput struct {
	Language string `json:"language" jsonschema:"active language: c, cpp, csharp, go, java, javascript, python, rust, typescript"`
}

// SetLanguageOutput is the result of the set_language MCP tool.
type SetLanguageOutput struct {
	Language string `json:"language"`
}

// RefreshInput is the input for the refresh MCP tool.
type RefreshInput struct {
	Wait bool `json:"wait,omitempty" jsonschema:"block until the extraction pass has completed"`
}

// RefreshOutput is the result of the refresh MCP tool.
type RefreshOutput struct {
	Stats hierarchy.Stats `json:"stats"`
}

// GetRootNodesInput is the input for the get_root_nodes MCP tool.
type GetRootNodesInput struct{}

// NodesOutput lists tree nodes.
type NodesOutput struct {
	Nodes []NodeView `json:"nodes"`
}

// GetChildrenInput is the input for the get_children MCP tool.
type GetChildrenInput struct {
	ID string `json:"id" jsonschema:"node id returned by get_root_nodes or get_children"`
}

// GetMethodLocationInput is the input for the get_method_location MCP tool.
type GetMethodLocationInput struct {
	ID string `json:"id" jsonschema:"id of a method node"`
}

// GetMethodLocationOutput is the result of the get_method_location MCP tool.
type GetMethodLocationOutput struct {
	Path string             `json:"path"`
	Name string             `json:"name"`
	Span extract.SourceSpan `json:"span"`
}

// QueryMethodsInput is the input for the query_methods MCP tool.
type QueryMethodsInput struct {
	Query string `json:"query" jsonschema:"search query for method names (substring, then fuzzy match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by kind: function, method, constructor, destructor"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryMethodsOutput is the result of the query_methods MCP tool.
type QueryMethodsOutput struct {
	Methods []index.Entry `json:"methods"`
	Total   int           `json:"total"`
}

// ExportTreeInput is the input for the export_tree MCP tool.
type ExportTreeInput struct {
	Format string `json:"format,omitempty" jsonschema:"json (default) or mermaid"`
}

// ExportTreeOutput is the result of the export_tree MCP tool.
type ExportTreeOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}
