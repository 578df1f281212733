package query

import (
	"fmt"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

// excerptCap bounds the body excerpt rendered per record; the full excerpts
// already stored on the record can be much longer.
const excerptCap = 500

// BuildContext assembles the prompt context from records in ranking order.
// Each record renders as one structured block; a record whose whole block
// would push the running total past budget is omitted entirely and later,
// smaller records may still fit. Whole-block omission is deliberate: cutting
// inside a block would break its lists mid-item. The result never exceeds
// budget and is deterministic for identical inputs.
func BuildContext(records []record.Record, budget int) string {
	var out strings.Builder
	total := 0
	for i := range records {
		block := renderBlock(&records[i], i+1)
		if total+len(block) > budget {
			continue
		}
		out.WriteString(block)
		total += len(block)
	}
	return out.String()
}

func renderBlock(r *record.Record, position int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- RECORD %d ---\n", position)
	if r.PRNumber != nil {
		fmt.Fprintf(&b, "PR: #%d\n", *r.PRNumber)
	}
	if r.Repo != "" {
		fmt.Fprintf(&b, "Repo: %s\n", r.Repo)
	}
	if r.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", r.Title)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	if len(r.Tickets) > 0 {
		fmt.Fprintf(&b, "Tickets: %s\n", strings.Join(r.Tickets, ", "))
	}
	if len(r.Contributors) > 0 {
		fmt.Fprintf(&b, "Contributors: %s\n", strings.Join(r.Contributors, ", "))
	}
	if len(r.Commits) > 0 {
		b.WriteString("Commits:\n")
		for _, c := range r.Commits {
			if c.Message != "" {
				fmt.Fprintf(&b, "  - %s %s\n", c.Short, c.Message)
			} else {
				fmt.Fprintf(&b, "  - %s\n", c.Short)
			}
		}
	}
	if len(r.Files) > 0 {
		fmt.Fprintf(&b, "Files: %s\n", strings.Join(r.Files, ", "))
	}
	if len(r.Markdown.Headings) > 0 {
		fmt.Fprintf(&b, "Sections: %s\n", strings.Join(r.Markdown.Headings, " | "))
	}
	if len(r.Markdown.ListItems) > 0 {
		b.WriteString("Items:\n")
		for _, item := range r.Markdown.ListItems {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	for _, block := range r.Markdown.CodeBlocks {
		fmt.Fprintf(&b, "Code:\n%s\n", block)
	}
	if excerpt := longestExcerpt(r.BodyExcerpts); excerpt != "" {
		fmt.Fprintf(&b, "Body:\n%s\n", excerpt)
	}
	b.WriteString("\n")
	return b.String()
}

func longestExcerpt(excerpts []string) string {
	longest := ""
	for _, e := range excerpts {
		if len(e) > len(longest) {
			longest = e
		}
	}
	if len(longest) > excerptCap {
		longest = longest[:excerptCap]
	}
	return strings.TrimSpace(longest)
}
