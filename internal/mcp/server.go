// Package mcp exposes retrieval over the Model Context Protocol: a
// streamable HTTP server with tools for record search, PR lookup, and
// question answering.
package mcp

import (
	"context"
	"log"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/debaditya-mohankudo/prmailhub/internal/db"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
	DB      *db.Database
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"prmailhub-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	toolDefinitions := map[string]mcp.Tool{
		"search_records": mcp.NewTool("search_records",
			mcp.WithDescription("Search merged pull request notification records. The query is dispatched automatically: a commit hash triggers commit lookup, a PR reference triggers an exact PR filter, anything else runs semantic search with layered reranking."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query (e.g., 'PR #8040 file changes', 'abc1234def', 'authentication fixes')"),
			),
		),
		"get_pr_details": mcp.NewTool("get_pr_details",
			mcp.WithDescription("Retrieve every stored record for a pull request number. When the number exists in several repositories all of them are returned and the response is flagged ambiguous."),
			mcp.WithNumber("pr_number",
				mcp.Required(),
				mcp.Description("The pull request number (e.g., 1234)"),
			),
		),
		"ask": mcp.NewTool("ask",
			mcp.WithDescription("Answer a question about the notification corpus. Runs retrieval, assembles a bounded context from the top records, and synthesizes an answer with the configured LLM."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Natural language question (e.g., 'What changed in the billing service last week?')"),
			),
		),
	}

	for name, adapter := range cfg.ToolAdapters {
		tool := toolDefinitions[name]
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
		DB:      cfg.Database,
	}
}

func (s *Server) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}
}
