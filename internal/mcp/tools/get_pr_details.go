package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	"github.com/debaditya-mohankudo/prmailhub/internal/mcp/tools/types"
	"github.com/debaditya-mohankudo/prmailhub/internal/query"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

// DetailsService fetches every stored record for a PR number.
type DetailsService interface {
	GetByPRNumber(ctx context.Context, number int) ([]record.Record, error)
}

type GetPRDetailsHandler struct {
	Service DetailsService
}

type dbDetailsService struct {
	repo *db.SearchRepository
}

func NewDBDetailsService(repo *db.SearchRepository) DetailsService {
	return &dbDetailsService{repo: repo}
}

func (s *dbDetailsService) GetByPRNumber(ctx context.Context, number int) ([]record.Record, error) {
	return s.repo.ByPRNumber(ctx, number)
}

func (h *GetPRDetailsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := parseIntArgument(req.GetArguments()["pr_number"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := h.Service.GetByPRNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%v: no record for PR #%d", query.ErrNoMatches, number)), nil
	}

	response := types.DetailsResponse{
		PRNumber: number,
		Records:  toRecordResults(records),
	}
	repos := map[string]struct{}{}
	for i := range records {
		if records[i].Repo != "" {
			repos[records[i].Repo] = struct{}{}
		}
	}
	if len(repos) > 1 {
		response.Ambiguous = true
		for repo := range repos {
			response.Repos = append(response.Repos, repo)
		}
		sort.Strings(response.Repos)
	}
	return mcp.NewToolResultJSON(response)
}
