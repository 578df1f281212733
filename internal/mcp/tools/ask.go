package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/mcp/tools/types"
	"github.com/debaditya-mohankudo/prmailhub/internal/query"
)

// AskService runs retrieval plus answer synthesis. MCP sessions carry no
// transcript, so every call is a fresh conversation.
type AskService interface {
	Ask(ctx context.Context, raw string, history []llm.Turn) (query.Result, error)
}

type AskHandler struct {
	Service AskService
}

func (h *AskHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := req.GetArguments()["query"].(string)
	if raw == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	result, err := h.Service.Ask(ctx, raw, nil)
	if err != nil {
		if errors.Is(err, query.ErrNoMatches) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	response := types.AskResponse{
		Mode:    result.Mode,
		Answer:  result.Answer,
		Records: toRecordResults(result.Records),
	}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
