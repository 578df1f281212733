// Package tools implements the MCP tool handlers exposed by the server.
package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/debaditya-mohankudo/prmailhub/internal/mcp/tools/types"
	"github.com/debaditya-mohankudo/prmailhub/internal/query"
)

// RetrieveService runs the dispatched retrieval pipeline for a raw query.
type RetrieveService interface {
	Retrieve(ctx context.Context, raw string) (query.Result, error)
}

type SearchRecordsHandler struct {
	Service RetrieveService
}

func (h *SearchRecordsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := req.GetArguments()["query"].(string)
	if raw == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	result, err := h.Service.Retrieve(ctx, raw)
	if err != nil {
		if errors.Is(err, query.ErrNoMatches) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	response := types.SearchResponse{
		Mode:      result.Mode,
		Ambiguous: result.Ambiguous,
		Repos:     result.Repos,
		Records:   toRecordResults(result.Records),
	}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
