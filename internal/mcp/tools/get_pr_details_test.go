package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

type fakeDetailsService struct {
	records []record.Record
}

func (s *fakeDetailsService) GetByPRNumber(ctx context.Context, number int) ([]record.Record, error) {
	var out []record.Record
	for _, r := range s.records {
		if r.PRNumber != nil && *r.PRNumber == number {
			out = append(out, r)
		}
	}
	return out, nil
}

func detailsRequest(number any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"pr_number": number}
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestGetPRDetailsUnknownNumberIsError(t *testing.T) {
	n := 8040
	handler := &GetPRDetailsHandler{Service: &fakeDetailsService{
		records: []record.Record{{PRNumber: &n, Repo: "acme/billing", Title: "Fix rounding"}},
	}}

	res, err := handler.ToolAdapter(context.Background(), detailsRequest(float64(9999)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result for unknown PR number")
	}
	if text := resultText(t, res); !strings.Contains(text, "no record for PR #9999") {
		t.Fatalf("unexpected error text: %q", text)
	}
}

func TestGetPRDetailsKnownNumber(t *testing.T) {
	n := 8040
	handler := &GetPRDetailsHandler{Service: &fakeDetailsService{
		records: []record.Record{{PRNumber: &n, Repo: "acme/billing", Title: "Fix rounding"}},
	}}

	res, err := handler.ToolAdapter(context.Background(), detailsRequest(float64(8040)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %q", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "acme/billing") || !strings.Contains(text, "Fix rounding") {
		t.Fatalf("record missing from response: %q", text)
	}
}
