// Package query implements the retrieval-and-ranking engine: the three-mode
// dispatcher, the layered scoring function, the context builder, and the
// engine that ties them to the corpus, the vector index, and the LLM.
package query

import (
	"regexp"
	"strconv"
)

// Query is the dispatched form of a raw question. Exactly one of the three
// variants is produced per input, each carrying only what its retrieval
// path needs.
type Query interface {
	mode() string
}

// CommitQuery routes to the commit-prefix corpus scan.
type CommitQuery struct {
	Hash string
	Raw  string
}

// PRQuery routes to the strict PR-number filter.
type PRQuery struct {
	Number int
	Raw    string
}

// SemanticQuery routes to vector search with tag augmentation.
type SemanticQuery struct {
	Text string
}

func (CommitQuery) mode() string   { return ModeCommit }
func (PRQuery) mode() string       { return ModePR }
func (SemanticQuery) mode() string { return ModeSemantic }

const (
	ModeCommit   = "commit"
	ModePR       = "pr"
	ModeSemantic = "semantic"
)

var (
	// A contiguous hex token of 7-40 characters is treated as a commit
	// hash. Checked before PR detection: hex is the stronger, less
	// ambiguous signal when a query happens to contain both patterns.
	hexTokenRe = regexp.MustCompile(`(?i)\b[0-9a-f]{7,40}\b`)

	prRefRe = regexp.MustCompile(`(?i)\b(?:PR|pull\s+request)\s*[:#]?\s*#?\s*(\d+)\b`)
)

// Dispatch classifies a raw query string into one of the three retrieval
// modes. It is a pure function: no state survives between queries.
func Dispatch(raw string) Query {
	if m := hexTokenRe.FindString(raw); m != "" {
		return CommitQuery{Hash: m, Raw: raw}
	}
	if m := prRefRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return PRQuery{Number: n, Raw: raw}
		}
	}
	return SemanticQuery{Text: raw}
}
