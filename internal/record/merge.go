package record

import (
	"errors"
	"fmt"
)

// ErrKeyMismatch reports an attempt to merge two records that do not share
// the same (pr_number, repo) key. Callers group records by key before
// merging; a mismatch here is a corrupted pipeline, not recoverable input.
var ErrKeyMismatch = errors.New("merge key mismatch")

// Merge folds incoming into existing. When existing is nil the result is the
// normalized incoming record. Set fields are unioned, commits keep the
// existing order with new entries appended, the first non-empty title wins,
// and markdown lists plus body excerpts are concatenated existing-first.
//
// Merge is idempotent and, over the set-valued fields, associative and
// commutative. Title and list concatenation depend on input order, which the
// pipeline keeps chronological.
func Merge(existing *Record, incoming Record) (Record, error) {
	incoming = Normalize(incoming)
	if existing == nil {
		return incoming, nil
	}

	ek, eok := existing.Key()
	ik, iok := incoming.Key()
	if !eok || !iok {
		return Record{}, fmt.Errorf("%w: records without a PR number are not merge-eligible", ErrKeyMismatch)
	}
	if ek != ik {
		return Record{}, fmt.Errorf("%w: %d/%s vs %d/%s", ErrKeyMismatch, ek.PRNumber, ek.Repo, ik.PRNumber, ik.Repo)
	}

	out := *existing
	out.Tickets = unionSet(existing.Tickets, incoming.Tickets)
	out.Files = unionSet(existing.Files, incoming.Files)
	out.Contributors = unionSet(existing.Contributors, incoming.Contributors)
	out.Tags = unionSet(existing.Tags, incoming.Tags)
	out.Commits = appendNewCommits(existing.Commits, incoming.Commits)
	if out.Title == "" {
		out.Title = incoming.Title
	}
	out.Markdown = Markdown{
		CodeBlocks: concat(existing.Markdown.CodeBlocks, incoming.Markdown.CodeBlocks),
		Headings:   concat(existing.Markdown.Headings, incoming.Markdown.Headings),
		ListItems:  concat(existing.Markdown.ListItems, incoming.Markdown.ListItems),
	}
	out.BodyExcerpts = concat(existing.BodyExcerpts, incoming.BodyExcerpts)
	return out, nil
}

// MergeAll folds partial records into one canonical record per merge key,
// preserving first-seen group order. Records without a PR number bypass
// merging and come through as independent entries.
func MergeAll(parts []Record) ([]Record, error) {
	byKey := make(map[Key]int)
	out := make([]Record, 0, len(parts))

	for _, part := range parts {
		key, ok := part.Key()
		if !ok {
			out = append(out, Normalize(part))
			continue
		}
		idx, seen := byKey[key]
		if !seen {
			out = append(out, Normalize(part))
			byKey[key] = len(out) - 1
			continue
		}
		merged, err := Merge(&out[idx], part)
		if err != nil {
			return nil, fmt.Errorf("merge PR %d/%s: %w", key.PRNumber, key.Repo, err)
		}
		out[idx] = merged
	}
	return out, nil
}

func appendNewCommits(existing, incoming []Commit) []Commit {
	out := append([]Commit{}, existing...)
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[c.Short] = struct{}{}
	}
	for _, c := range incoming {
		if _, ok := seen[c.Short]; ok {
			continue
		}
		seen[c.Short] = struct{}{}
		out = append(out, c)
	}
	return out
}

// concat appends b after a, except when b is already the tail of a. The
// exception keeps merge idempotent under duplicate notification deliveries
// without deduplicating genuinely distinct fragments.
func concat(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	if isSuffix(a, b) {
		return a
	}
	return append(append([]string{}, a...), b...)
}

func isSuffix(a, b []string) bool {
	if len(b) > len(a) {
		return false
	}
	offset := len(a) - len(b)
	for i, v := range b {
		if a[offset+i] != v {
			return false
		}
	}
	return true
}
