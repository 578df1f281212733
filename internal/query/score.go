package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

// Scoring is layered: signals are grouped into priority tiers and any
// nonzero score in a higher tier outweighs everything the lower tiers can
// add up to. Within a tier the contribution is proportional to the number
// of matching elements, saturating at tierCap so a flood of weak matches
// can never cross a tier boundary. This is what keeps a record that merely
// shares many common tokens from outranking the one record that is actually
// about the queried PR.
const tierCap = 99

// Tier weights, highest priority first. Each weight is 100x the next, and
// with counts capped at 99 the maximum cumulative score of all lower tiers
// stays strictly below a single match in the tier above.
var tierWeights = [8]float64{
	1e14, // PR number
	1e12, // commit prefix
	1e10, // ticket
	1e8,  // repo
	1e6,  // file path component
	1e4,  // tag overlap
	1e2,  // title token overlap
	1,    // contributor
}

var (
	repoTokenRe = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
	pathTokenRe = regexp.MustCompile(`^[\w.-]+(?:/[\w.-]+)+$`)
	ticketTokRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,10}-\d{1,6})\b`)
	numberRe    = regexp.MustCompile(`\b(\d+)\b`)
)

// ParsedQuery is the query-side feature set the scorer matches against.
type ParsedQuery struct {
	Raw          string
	Tokens       []string // lowercased, punctuation-trimmed
	PRNumbers    []int
	CommitTokens []string // hex tokens of commit-hash length
	Tickets      []string
	Repos        []string
	PathTokens   []string // components of path-like tokens
	Tags         []string
}

// ParseQuery derives the feature set once per query. Tags come from the
// rule classifier over the full text plus the file-path rules over any
// path-like tokens.
func ParseQuery(raw string, classifier *tags.RuleClassifier) ParsedQuery {
	pq := ParsedQuery{Raw: raw}

	for _, field := range strings.Fields(raw) {
		token := strings.Trim(field, ".,!?;:'\"()[]{}<>")
		if token == "" {
			continue
		}
		if repoTokenRe.MatchString(token) && strings.Count(token, "/") == 1 {
			pq.Repos = append(pq.Repos, strings.ToLower(token))
		}
		if pathTokenRe.MatchString(token) {
			pq.PathTokens = append(pq.PathTokens, record.SplitPathComponents(token)...)
		}
		pq.Tokens = append(pq.Tokens, strings.ToLower(token))
	}

	for _, tok := range pq.Tokens {
		if hexTokenRe.MatchString(tok) && len(tok) >= record.CommitShortLen {
			pq.CommitTokens = append(pq.CommitTokens, tok)
		}
	}
	for _, m := range ticketTokRe.FindAllStringSubmatch(raw, -1) {
		pq.Tickets = append(pq.Tickets, m[1])
	}
	for _, m := range prRefRe.FindAllStringSubmatch(raw, -1) {
		if n, err := record.ParsePRNumber(m[1]); err == nil {
			pq.PRNumbers = append(pq.PRNumbers, n)
		}
	}
	// Bare numbers still count for PR matching; a query like "what changed
	// in 8040" should find the PR even without the keyword.
	for _, m := range numberRe.FindAllStringSubmatch(raw, -1) {
		if n, err := record.ParsePRNumber(m[1]); err == nil && !containsInt(pq.PRNumbers, n) {
			pq.PRNumbers = append(pq.PRNumbers, n)
		}
	}

	tagSet := map[string]struct{}{}
	for _, t := range classifier.Classify(raw) {
		tagSet[t] = struct{}{}
	}
	for _, t := range classifier.ClassifyFiles(pq.PathTokens) {
		tagSet[t] = struct{}{}
	}
	for t := range tagSet {
		pq.Tags = append(pq.Tags, t)
	}
	sort.Strings(pq.Tags)
	return pq
}

// Score computes the layered relevance of a record for a parsed query.
// Pure and deterministic over immutable inputs.
func Score(r *record.Record, q ParsedQuery) float64 {
	counts := [8]int{
		matchPRNumber(r, q),
		matchCommits(r, q),
		intersectFold(r.Tickets, q.Tickets),
		matchRepo(r, q),
		intersectFold(r.Files, append(append([]string{}, q.PathTokens...), q.Tokens...)),
		intersectExact(r.Tags, q.Tags),
		titleOverlap(r.Title, q.Tokens),
		intersectFold(r.Contributors, q.Tokens),
	}

	var score float64
	for i, c := range counts {
		if c > tierCap {
			c = tierCap
		}
		score += tierWeights[i] * float64(c)
	}
	return score
}

// TagOverlap counts shared tags; the semantic path uses it as a stable
// secondary sort among equal composite scores.
func TagOverlap(r *record.Record, q ParsedQuery) int {
	return intersectExact(r.Tags, q.Tags)
}

func matchPRNumber(r *record.Record, q ParsedQuery) int {
	if r.PRNumber == nil {
		return 0
	}
	count := 0
	for _, n := range q.PRNumbers {
		if n == *r.PRNumber {
			count++
		}
	}
	return count
}

func matchCommits(r *record.Record, q ParsedQuery) int {
	count := 0
	for _, tok := range q.CommitTokens {
		if r.HasCommitPrefix(tok) {
			count++
		}
	}
	return count
}

func matchRepo(r *record.Record, q ParsedQuery) int {
	if r.Repo == "" {
		return 0
	}
	full := strings.ToLower(r.Repo)
	name := full
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		name = full[idx+1:]
	}
	count := 0
	for _, candidate := range q.Repos {
		if candidate == full {
			count++
		}
	}
	for _, tok := range q.Tokens {
		if tok == name {
			count++
		}
	}
	return count
}

func titleOverlap(title string, tokens []string) int {
	if title == "" {
		return 0
	}
	titleSet := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(title)) {
		titleSet[strings.Trim(w, ".,!?;:'\"()[]{}")] = struct{}{}
	}
	count := 0
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if _, ok := titleSet[tok]; ok {
			count++
		}
	}
	return count
}

func intersectExact(values, candidates []string) int {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	count := 0
	seen := map[string]struct{}{}
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if _, ok := set[c]; ok {
			count++
		}
	}
	return count
}

func intersectFold(values, candidates []string) int {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	count := 0
	seen := map[string]struct{}{}
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if _, dup := seen[lc]; dup {
			continue
		}
		seen[lc] = struct{}{}
		if _, ok := set[lc]; ok {
			count++
		}
	}
	return count
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
