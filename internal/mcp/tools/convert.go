package tools

import (
	"github.com/debaditya-mohankudo/prmailhub/internal/mcp/tools/types"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

func toRecordResult(r *record.Record) types.RecordResult {
	out := types.RecordResult{
		PRNumber:     r.PRNumber,
		Repo:         r.Repo,
		Title:        r.Title,
		Tags:         r.Tags,
		Tickets:      r.Tickets,
		Contributors: r.Contributors,
		Files:        r.Files,
		Headings:     r.Markdown.Headings,
	}
	for _, c := range r.Commits {
		out.Commits = append(out.Commits, types.CommitResult{Short: c.Short, Message: c.Message})
	}
	return out
}

func toRecordResults(records []record.Record) []types.RecordResult {
	out := make([]types.RecordResult, 0, len(records))
	for i := range records {
		out = append(out, toRecordResult(&records[i]))
	}
	return out
}
