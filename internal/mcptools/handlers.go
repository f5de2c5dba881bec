package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/intelliparse/internal/export"
	"github.com/dusk-indust/intelliparse/internal/extract"
	"github.com/dusk-indust/intelliparse/internal/hierarchy"
	"github.com/dusk-indust/intelliparse/internal/index"
	"github.com/dusk-indust/intelliparse/internal/lang"
)

// TreeService holds the tree model and method index used by MCP tool handlers.
type TreeService struct {
	model *hierarchy.Model
	store index.Store
}

// NewTreeService creates a TreeService. The store should be fed by the
// model's Observer.
func NewTreeService(model *hierarchy.Model, store index.Store) *TreeService {
	return &TreeService{model: model, store: store}
}

// AddRoots adds directories to the root set.
func (s *TreeService) AddRoots(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AddRootsInput,
) (*mcp.CallToolResult, RootsOutput, error) {
	if len(input.Paths) == 0 {
		return nil, RootsOutput{}, fmt.Errorf("paths is required")
	}
	if err := s.model.AddRoots(input.Paths...); err != nil {
		return nil, RootsOutput{}, fmt.Errorf("add roots: %w", err)
	}
	return nil, RootsOutput{Roots: s.roots()}, nil
}

// RemoveRoot removes one root.
func (s *TreeService) RemoveRoot(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RemoveRootInput,
) (*mcp.CallToolResult, RemoveRootOutput, error) {
	if input.Path == "" {
		return nil, RemoveRootOutput{}, fmt.Errorf("path is required")
	}
	removed := s.model.RemoveRoot(input.Path)
	return nil, RemoveRootOutput{Removed: removed, Roots: s.roots()}, nil
}

// ClearRoots empties the root set.
func (s *TreeService) ClearRoots(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ClearRootsInput,
) (*mcp.CallToolResult, RootsOutput, error) {
	s.model.ClearRoots()
	return nil, RootsOutput{Roots: s.roots()}, nil
}

// SetLanguage switches the active language.
func (s *TreeService) SetLanguage(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetLanguageInput,
) (*mcp.CallToolResult, SetLanguageOutput, error) {
	l, err := lang.Parse(input.Language)
	if err != nil {
		return nil, SetLanguageOutput{}, err
	}
	if err := s.model.SetLanguage(l); err != nil {
		return nil, SetLanguageOutput{}, fmt.Errorf("set language: %w", err)
	}
	return nil, SetLanguageOutput{Language: string(l)}, nil
}

// Refresh re-extracts the current roots, optionally waiting for the pass.
func (s *TreeService) Refresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	s.model.Refresh()
	if input.Wait {
		if err := s.model.WaitIdle(ctx); err != nil {
			return nil, RefreshOutput{}, fmt.Errorf("wait for refresh: %w", err)
		}
	}
	return nil, RefreshOutput{Stats: s.model.Stats()}, nil
}

// GetRootNodes returns the top-level nodes.
func (s *TreeService) GetRootNodes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetRootNodesInput,
) (*mcp.CallToolResult, NodesOutput, error) {
	return nil, NodesOutput{Nodes: s.views(s.model.RootNodes())}, nil
}

// GetChildren expands the node with the given ID.
func (s *TreeService) GetChildren(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetChildrenInput,
) (*mcp.CallToolResult, NodesOutput, error) {
	n, err := s.resolve(input.ID)
	if err != nil {
		return nil, NodesOutput{}, err
	}
	children, err := s.model.Children(n)
	if err != nil {
		return nil, NodesOutput{}, fmt.Errorf("get children: %w", err)
	}
	return nil, NodesOutput{Nodes: s.views(children)}, nil
}

// GetMethodLocation returns the file and span a host should reveal for a
// method node.
func (s *TreeService) GetMethodLocation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetMethodLocationInput,
) (*mcp.CallToolResult, GetMethodLocationOutput, error) {
	n, err := s.resolve(input.ID)
	if err != nil {
		return nil, GetMethodLocationOutput{}, err
	}
	path, span, ok := n.Location()
	if !ok {
		return nil, GetMethodLocationOutput{}, fmt.Errorf("node %s is a %s, not a method", input.ID, n.Kind)
	}
	return nil, GetMethodLocationOutput{Path: path, Name: n.Method.Name, Span: span}, nil
}

// QueryMethods searches the method index.
func (s *TreeService) QueryMethods(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryMethodsInput,
) (*mcp.CallToolResult, QueryMethodsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = index.DefaultLimit
	}

	// Over-fetch when filtering so the limit applies after the filter.
	fetch := limit
	if input.Kind != "" {
		fetch = limit * 4
	}
	entries, err := s.store.Query(ctx, input.Query, fetch)
	if err != nil {
		return nil, QueryMethodsOutput{}, fmt.Errorf("query methods: %w", err)
	}

	// Filter by kind if specified.
	if input.Kind != "" {
		kind := extract.Kind(strings.ToLower(input.Kind))
		filtered := entries[:0]
		for _, e := range entries {
			if e.Kind == kind {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []index.Entry{}
	}

	return nil, QueryMethodsOutput{Methods: entries, Total: len(entries)}, nil
}

// ExportTree renders the whole tree.
func (s *TreeService) ExportTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExportTreeInput,
) (*mcp.CallToolResult, ExportTreeOutput, error) {
	format := strings.ToLower(input.Format)
	switch format {
	case "", "json":
		data, err := export.JSON(s.model, s.model.Language())
		if err != nil {
			return nil, ExportTreeOutput{}, err
		}
		return nil, ExportTreeOutput{Format: "json", Content: string(data)}, nil
	case "mermaid":
		out, err := export.Mermaid(s.model)
		if err != nil {
			return nil, ExportTreeOutput{}, err
		}
		return nil, ExportTreeOutput{Format: format, Content: out}, nil
	default:
		return nil, ExportTreeOutput{}, fmt.Errorf("unknown format %q (want json or mermaid)", input.Format)
	}
}

func (s *TreeService) resolve(id string) (hierarchy.Node, error) {
	if id == "" {
		return hierarchy.Node{}, fmt.Errorf("id is required")
	}
	n, ok := s.model.Resolve(id)
	if !ok {
		return hierarchy.Node{}, fmt.Errorf("node %s not found", id)
	}
	return n, nil
}

func (s *TreeService) roots() []string {
	roots := s.model.Roots()
	if roots == nil {
		roots = []string{}
	}
	return roots
}

func (s *TreeService) views(nodes []hierarchy.Node) []NodeView {
	out := make([]NodeView, len(nodes))
	for i, n := range nodes {
		out[i] = NodeView{
			ID:          n.ID(),
			Kind:        n.Kind.String(),
			Label:       n.Label,
			Path:        n.Path,
			Context:     n.ContextValue(),
			Collapsible: n.Collapsible(),
			Emphasized:  s.model.Emphasized(n),
		}
	}
	return out
}
