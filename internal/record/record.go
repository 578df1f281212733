package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxExcerptLen bounds each stored body excerpt. Notification bodies can be
// huge (quoted threads, inline diffs); anything past this point adds noise to
// both embeddings and prompts.
const MaxExcerptLen = 2000

// CommitShortLen is the number of hex characters kept as the commit key.
const CommitShortLen = 7

// Commit is one commit reference extracted from a notification body.
// Short is the 7-character prefix used for identity and matching.
type Commit struct {
	Short   string `json:"short"`
	Message string `json:"message,omitempty"`
}

// Markdown holds the structured fragments extracted from notification bodies.
// Lists are concatenated across merges, not deduplicated: different emails
// for the same PR carry different body fragments and all of them matter.
type Markdown struct {
	CodeBlocks []string `json:"code_blocks,omitempty"`
	Headings   []string `json:"headings,omitempty"`
	ListItems  []string `json:"list_items,omitempty"`
}

// Record is the canonical retrieval document: one per distinct pull request,
// folded together from every notification email that references it.
type Record struct {
	PRNumber     *int     `json:"pr_number,omitempty"`
	Repo         string   `json:"repo,omitempty"`
	Title        string   `json:"title,omitempty"`
	Tickets      []string `json:"tickets,omitempty"`
	Commits      []Commit `json:"commits,omitempty"`
	Files        []string `json:"files,omitempty"`
	Contributors []string `json:"contributors,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Markdown     Markdown `json:"markdown,omitempty"`
	BodyExcerpts []string `json:"body_excerpts,omitempty"`
}

// Key identifies a merge group. Records without a PR number have no key and
// are never merge-eligible.
type Key struct {
	PRNumber int
	Repo     string
}

// Key returns the merge key, or false when the record has no PR number.
func (r *Record) Key() (Key, bool) {
	if r.PRNumber == nil {
		return Key{}, false
	}
	return Key{PRNumber: *r.PRNumber, Repo: r.Repo}, true
}

// ParsePRNumber converts a numeric-looking PR reference into an int.
// Anything that is not a positive integer is rejected, never coerced.
func ParsePRNumber(s string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid PR number %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid PR number %q: must be positive", s)
	}
	return n, nil
}

// Normalize brings a freshly parsed record into canonical form: set fields
// deduplicated and sorted, commits deduplicated in first-seen order with
// shortened hashes, excerpts truncated. It is applied once at construction;
// retrieval never mutates records.
func Normalize(r Record) Record {
	r.Title = strings.TrimSpace(r.Title)
	r.Tickets = normalizeSet(r.Tickets)
	r.Files = normalizeSet(r.Files)
	r.Contributors = normalizeSet(r.Contributors)
	r.Tags = normalizeSet(r.Tags)
	r.Commits = dedupeCommits(r.Commits)

	excerpts := make([]string, 0, len(r.BodyExcerpts))
	for _, e := range r.BodyExcerpts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if len(e) > MaxExcerptLen {
			e = e[:MaxExcerptLen]
		}
		excerpts = append(excerpts, e)
	}
	r.BodyExcerpts = excerpts
	return r
}

// SplitPathComponents breaks a modified-file path into its individual
// components so queries can match at any granularity: "src/utils/helpers.js"
// yields src, utils and helpers.js.
func SplitPathComponents(path string) []string {
	parts := strings.Split(strings.TrimSpace(path), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ShortenCommit reduces a full or partial hash to the canonical short form.
func ShortenCommit(sha string) string {
	sha = strings.ToLower(strings.TrimSpace(sha))
	if len(sha) > CommitShortLen {
		return sha[:CommitShortLen]
	}
	return sha
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func dedupeCommits(commits []Commit) []Commit {
	seen := make(map[string]struct{}, len(commits))
	out := make([]Commit, 0, len(commits))
	for _, c := range commits {
		c.Short = ShortenCommit(c.Short)
		if c.Short == "" {
			continue
		}
		if _, ok := seen[c.Short]; ok {
			continue
		}
		seen[c.Short] = struct{}{}
		c.Message = strings.TrimSpace(c.Message)
		out = append(out, c)
	}
	return out
}

func unionSet(a, b []string) []string {
	return normalizeSet(append(append([]string{}, a...), b...))
}

// HasCommitPrefix reports whether any commit in the record matches the token,
// comparing up to the shorter of the two lengths.
func (r *Record) HasCommitPrefix(token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	for _, c := range r.Commits {
		short := c.Short
		n := len(short)
		if len(token) < n {
			n = len(token)
		}
		if short[:n] == token[:n] {
			return true
		}
	}
	return false
}
