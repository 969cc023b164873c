// Package mcpserver exposes document composition as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kingrea/promptlayers/internal/workspace"
)

// Version is reported to MCP clients; the CLI overrides it at startup.
var Version = "dev"

// NewServer creates an MCP server with compose_documents, list_documents and
// validate_request registered against ws.
func NewServer(ws *workspace.Workspace) *mcp.Server {
	svc := NewService(ws)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "promptlayers",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compose_documents",
		Description: "Compose a base instruction document with ordered preference documents. Missing preferences are skipped with a warning.",
	}, svc.Compose)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the known base and preference documents with their last-updated dates.",
	}, svc.List)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Check a composition request without composing it: id problems, self-composition, and which ids resolve.",
	}, svc.Validate)

	return server
}

// RunStdio serves on stdin/stdout until the client disconnects or ctx ends.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
