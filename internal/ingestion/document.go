package ingestion

import (
	"fmt"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

const (
	maxDocBody  = 2000
	maxDocItems = 20
)

// BuildDocument renders the embedding text for a record. Fields appear in a
// fixed order so identical records embed identically; long sections are
// truncated to keep the document inside the embedding model's window.
func BuildDocument(r record.Record) string {
	var b strings.Builder

	if r.PRNumber != nil {
		fmt.Fprintf(&b, "PR #%d", *r.PRNumber)
		if r.Repo != "" {
			fmt.Fprintf(&b, " in %s", r.Repo)
		}
		b.WriteString("\n")
	} else if r.Repo != "" {
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
		for _, c := range capStrings(commitLines(r.Commits), maxDocItems) {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if len(r.Files) > 0 {
		fmt.Fprintf(&b, "Files: %s\n", strings.Join(capStrings(r.Files, maxDocItems), ", "))
	}
	if len(r.Markdown.Headings) > 0 {
		fmt.Fprintf(&b, "Sections: %s\n", strings.Join(r.Markdown.Headings, " | "))
	}
	for _, item := range capStrings(r.Markdown.ListItems, maxDocItems) {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	if body := longestString(r.BodyExcerpts); body != "" {
		if len(body) > maxDocBody {
			body = body[:maxDocBody]
		}
		fmt.Fprintf(&b, "Body: %s\n", body)
	}
	return b.String()
}

func commitLines(commits []record.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		if c.Message != "" {
			out = append(out, c.Short+" "+c.Message)
		} else {
			out = append(out, c.Short)
		}
	}
	return out
}

func capStrings(values []string, max int) []string {
	if len(values) <= max {
		return values
	}
	return values[:max]
}

func longestString(values []string) string {
	longest := ""
	for _, v := range values {
		if len(v) > len(longest) {
			longest = v
		}
	}
	return longest
}
