package mailbox

import (
	"regexp"
	"strings"

	vcsurl "github.com/gitsight/go-vcsurl"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

// Subject lines look like "[org/repo] PR #8040: Fix login DIGI-2044".
var (
	prFromSubjectRe   = regexp.MustCompile(`(?i)(?:PR\s*#|pull request\s*#|#)(\d+)`)
	repoFromSubjectRe = regexp.MustCompile(`\[([^\]]+)\]`)
	ticketRe          = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,10}-\d{1,6})\b`)
	mentionRe         = regexp.MustCompile(`@([A-Za-z0-9-]+)`)

	// Commit lines in text/plain bodies: SHA at start of line, optional message.
	commitLineRe = regexp.MustCompile(`(?mi)^[ \t]*([0-9a-f]{7,40})\b(?:[ \t]+(.+))?`)

	// Git-style change summaries: "M path", "A path", "R100 a/x b/x".
	filePathRe = regexp.MustCompile(`(?m)^[ \t]*(?:M|A|D|R\d{1,3})\s+(?:a/|b/)?([A-Za-z0-9_./\-\+]+)`)

	prFromMessageIDRe = regexp.MustCompile(`/pull/(\d+)/`)
	prLinkRe          = regexp.MustCompile(`(?i)https?://github\.com/[^/\s]+/[^/\s]+/pull/(\d+)`)
	repoLinkRe        = regexp.MustCompile(`(?i)https?://github\.com/[\w\-.]+/[\w\-.]+`)
)

// SubjectMeta is what a subject line yields after extraction.
type SubjectMeta struct {
	Repos     []string
	PRNumbers []int
	Tickets   []string
	Title     string
}

// ExtractSubjectMeta pulls repos, PR numbers and tickets out of a subject
// line and returns the subject with all of them removed as the title.
func ExtractSubjectMeta(subject string) SubjectMeta {
	meta := SubjectMeta{
		Repos:   repoFromSubjectRe.FindAllString(subject, -1),
		Tickets: findTickets(subject),
	}
	for i, r := range meta.Repos {
		meta.Repos[i] = strings.Trim(r, "[]")
	}
	for _, m := range prFromSubjectRe.FindAllStringSubmatch(subject, -1) {
		if n, err := record.ParsePRNumber(m[1]); err == nil {
			meta.PRNumbers = append(meta.PRNumbers, n)
		}
	}

	title := repoFromSubjectRe.ReplaceAllString(subject, "")
	title = prFromSubjectRe.ReplaceAllString(title, "")
	title = ticketRe.ReplaceAllString(title, "")
	meta.Title = strings.Trim(strings.TrimSpace(title), " -:_")
	return meta
}

func findTickets(text string) []string {
	var out []string
	for _, m := range ticketRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// ExtractCommits returns commit references found in a body, deduplicated by
// short hash later during normalization.
func ExtractCommits(body string) []record.Commit {
	var out []record.Commit
	for _, m := range commitLineRe.FindAllStringSubmatch(body, -1) {
		out = append(out, record.Commit{Short: record.ShortenCommit(m[1]), Message: strings.TrimSpace(m[2])})
	}
	return out
}

// ExtractFileTokens returns the path-component tokens of every modified file
// mentioned in a change summary.
func ExtractFileTokens(body string) []string {
	var out []string
	for _, m := range filePathRe.FindAllStringSubmatch(body, -1) {
		out = append(out, record.SplitPathComponents(m[1])...)
	}
	return out
}

// ExtractContributors returns @mentioned usernames.
func ExtractContributors(text string) []string {
	var out []string
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// ExtractPRFromMessageID reads the PR number GitHub encodes into
// notification Message-IDs ("<org/repo/pull/8040/issue_event/...>").
func ExtractPRFromMessageID(messageID string) (int, bool) {
	m := prFromMessageIDRe.FindStringSubmatch(messageID)
	if m == nil {
		return 0, false
	}
	n, err := record.ParsePRNumber(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractRepoLinks canonicalises github.com links in a body to "owner/name"
// form. Links that go-vcsurl cannot parse are skipped.
func ExtractRepoLinks(body string) []string {
	var out []string
	for _, raw := range repoLinkRe.FindAllString(body, -1) {
		info, err := vcsurl.Parse(raw)
		if err != nil || info.FullName == "" {
			continue
		}
		out = append(out, info.FullName)
	}
	return out
}

// ToRecord turns one decoded message into a partial record, classified and
// normalized. The merger folds partials sharing a (pr_number, repo) key.
func ToRecord(msg *Message, classifier *tags.RuleClassifier) record.Record {
	meta := ExtractSubjectMeta(msg.Subject)

	prNumber := firstPRNumber(meta, msg)
	repo := ""
	if len(meta.Repos) > 0 {
		repo = meta.Repos[0]
	} else if repos := ExtractRepoLinks(msg.Body); len(repos) > 0 {
		repo = repos[0]
	}

	commits := ExtractCommits(msg.Body)
	fileTokens := ExtractFileTokens(msg.Body)
	md := ExtractMarkdown(msg.Body)

	commitMessages := make([]string, 0, len(commits))
	for _, c := range commits {
		if c.Message != "" {
			commitMessages = append(commitMessages, c.Message)
		}
	}

	r := record.Record{
		PRNumber:     prNumber,
		Repo:         repo,
		Title:        meta.Title,
		Tickets:      append(meta.Tickets, findTickets(msg.Body)...),
		Commits:      commits,
		Files:        fileTokens,
		Contributors: append(ExtractContributors(msg.Subject), ExtractContributors(msg.Body)...),
		Tags:         tags.ForRecord(classifier, meta.Title, commitMessages, fileTokens, md.Headings),
		Markdown:     md,
		BodyExcerpts: []string{msg.Body},
	}
	return record.Normalize(r)
}

func firstPRNumber(meta SubjectMeta, msg *Message) *int {
	if len(meta.PRNumbers) > 0 {
		return &meta.PRNumbers[0]
	}
	if n, ok := ExtractPRFromMessageID(msg.MessageID); ok {
		return &n
	}
	if m := prLinkRe.FindStringSubmatch(msg.Body); m != nil {
		if n, err := record.ParsePRNumber(m[1]); err == nil {
			return &n
		}
	}
	return nil
}
