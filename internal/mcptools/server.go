package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewTreeMCPServer creates an MCP server with the tree and index tools registered.
func NewTreeMCPServer(svc *TreeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "intelliparse",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_roots",
		Description: "Add directories as tree roots. Paths beneath an existing root are absorbed by it. Starts a background extraction pass.",
	}, svc.AddRoots)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_root",
		Description: "Remove one root directory from the tree.",
	}, svc.RemoveRoot)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_roots",
		Description: "Remove every root and drop all extracted methods.",
	}, svc.ClearRoots)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_language",
		Description: "Switch the active language. Only files of this language are shown and extracted.",
	}, svc.SetLanguage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh",
		Description: "Re-enumerate and re-extract all roots. Returns the model statistics.",
	}, svc.Refresh)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_root_nodes",
		Description: "Return one folder node per root.",
	}, svc.GetRootNodes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_children",
		Description: "Expand a node: folders list subfolders and files of the active language, files list their methods.",
	}, svc.GetChildren)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_method_location",
		Description: "Return the file path and source span of a method node, for revealing it in an editor.",
	}, svc.GetMethodLocation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_methods",
		Description: "Search extracted methods by name. Literal matches rank above fuzzy ones. Optionally filter by kind and limit results.",
	}, svc.QueryMethods)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_tree",
		Description: "Render the whole tree as JSON or as a Mermaid diagram.",
	}, svc.ExportTree)

	return server
}

// RunMCPServer starts an HTTP server exposing the MCP tools.
func RunMCPServer(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking
// until stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
