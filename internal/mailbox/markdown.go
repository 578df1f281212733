package mailbox

import (
	"regexp"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_\\-]*\n(.*?)```")
	headingRe     = regexp.MustCompile(`^#{1,6}\s+(.*)$`)

	// GitHub notification bodies use plain-text section titles instead of
	// markdown headings.
	plainHeadingRe = regexp.MustCompile(`(?i)^(Commit Summary|File Changes|What changed\??|Summary|Implementation Details|Implementation|Testing Notes|Changelog|Description)\s*(?:\(.+\))?$`)

	listItemRe = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)\s+(.+)$`)
)

// ExtractMarkdown pulls fenced code blocks, headings (markdown and plain
// GitHub section titles) and list items out of a notification body. Order is
// preserved; merge concatenates these lists across emails for the same PR.
func ExtractMarkdown(body string) record.Markdown {
	var md record.Markdown

	for _, m := range fencedBlockRe.FindAllStringSubmatch(body, -1) {
		if block := strings.TrimSpace(m[1]); block != "" {
			md.CodeBlocks = append(md.CodeBlocks, block)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		raw := strings.TrimRight(line, " \t")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if m := headingRe.FindStringSubmatch(raw); m != nil {
			md.Headings = append(md.Headings, strings.TrimSpace(m[1]))
			continue
		}
		if m := plainHeadingRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			md.Headings = append(md.Headings, m[1])
			continue
		}
		if m := listItemRe.FindStringSubmatch(raw); m != nil {
			md.ListItems = append(md.ListItems, strings.TrimSpace(m[1]))
		}
	}
	return md
}
