package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

// ErrNoMatches reports an empty candidate set. Callers surface "no matching
// PR/commit found" instead of falling through to an unrelated semantic
// answer.
var ErrNoMatches = errors.New("no matching records")

// Corpus is the read-only record store the engine retrieves from.
type Corpus interface {
	ByPRNumber(ctx context.Context, number int) ([]record.Record, error)
	ByCommitPrefix(ctx context.Context, token string) ([]record.Record, error)
}

// VectorSearcher is the approximate nearest-neighbor index over record
// embeddings.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, k int) ([]record.Record, error)
}

// Embedder produces fixed-length vectors for text.
type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
}

// Generator synthesizes an answer from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tune the engine without touching its contracts.
type Options struct {
	TopK          int
	ContextBudget int
}

// Engine runs the per-query pipeline: dispatch, candidate retrieval,
// scoring, context assembly, synthesis. The corpus is immutable at query
// time; everything here is synchronous and runs to completion or first
// error.
type Engine struct {
	corpus     Corpus
	searcher   VectorSearcher
	embedder   Embedder
	generator  Generator
	classifier *tags.RuleClassifier
	topK       int
	budget     int
	log        logging.Logger
}

// Result is a retrieval outcome, with or without a synthesized answer.
type Result struct {
	Mode      string          `json:"mode"`
	Records   []record.Record `json:"records"`
	Ambiguous bool            `json:"ambiguous,omitempty"`
	Repos     []string        `json:"repos,omitempty"`
	Context   string          `json:"-"`
	Answer    string          `json:"answer,omitempty"`
}

// NewEngine wires the engine to its collaborators. All handles are passed
// in explicitly; there is no process-wide index or model state.
func NewEngine(corpus Corpus, searcher VectorSearcher, embedder Embedder, generator Generator, classifier *tags.RuleClassifier, opts Options, log logging.Logger) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = 12000
	}
	return &Engine{
		corpus:     corpus,
		searcher:   searcher,
		embedder:   embedder,
		generator:  generator,
		classifier: classifier,
		topK:       opts.TopK,
		budget:     opts.ContextBudget,
		log:        log,
	}
}

// Retrieve dispatches the query and returns the ranked candidate set.
func (e *Engine) Retrieve(ctx context.Context, raw string) (Result, error) {
	switch q := Dispatch(raw).(type) {
	case CommitQuery:
		return e.retrieveCommit(ctx, q)
	case PRQuery:
		return e.retrievePR(ctx, q)
	case SemanticQuery:
		return e.retrieveSemantic(ctx, q)
	default:
		return Result{}, fmt.Errorf("unknown query mode")
	}
}

// BuildContext renders the bounded context for a retrieval result.
func (e *Engine) BuildContext(res Result) string {
	return BuildContext(res.Records, e.budget)
}

func (e *Engine) retrieveCommit(ctx context.Context, q CommitQuery) (Result, error) {
	e.log.Debug("commit mode", "hash", q.Hash)
	candidates, err := e.corpus.ByCommitPrefix(ctx, q.Hash)
	if err != nil {
		return Result{}, fmt.Errorf("commit lookup: %w", err)
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: no record references commit %s", ErrNoMatches, q.Hash)
	}
	pq := ParseQuery(q.Raw, e.classifier)
	rankByScore(candidates, pq)
	return Result{Mode: ModeCommit, Records: candidates}, nil
}

func (e *Engine) retrievePR(ctx context.Context, q PRQuery) (Result, error) {
	e.log.Debug("pr mode", "number", q.Number)
	candidates, err := e.corpus.ByPRNumber(ctx, q.Number)
	if err != nil {
		return Result{}, fmt.Errorf("pr lookup: %w", err)
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: no record for PR #%d", ErrNoMatches, q.Number)
	}

	repos := distinctRepos(candidates)
	result := Result{Mode: ModePR, Records: candidates}
	if len(repos) > 1 {
		// The same PR number can exist in several repositories. That is an
		// ambiguity for the caller to resolve, not for retrieval to guess.
		result.Ambiguous = true
		result.Repos = repos
		e.log.Info("ambiguous PR number across repos", "number", q.Number, "repos", strings.Join(repos, ","))
	}
	pq := ParseQuery(q.Raw, e.classifier)
	rankByScore(result.Records, pq)
	return result, nil
}

func (e *Engine) retrieveSemantic(ctx context.Context, q SemanticQuery) (Result, error) {
	pq := ParseQuery(q.Text, e.classifier)
	augmented := AugmentQuery(q.Text, pq)
	e.log.Debug("semantic mode", "augmented", augmented)

	vectors, err := e.embedder.EmbedTexts(ctx, []string{augmented})
	if err != nil {
		return Result{}, fmt.Errorf("retrieval unavailable: embed query: %w", err)
	}
	if len(vectors) == 0 {
		return Result{}, fmt.Errorf("retrieval unavailable: embedder returned no vector")
	}

	candidates, err := e.searcher.SearchSimilar(ctx, vectors[0], e.topK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieval unavailable: vector search: %w", err)
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: vector search returned nothing", ErrNoMatches)
	}

	// Rerank with the original query, not the augmented one; augmentation
	// exists only to improve index recall.
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := Score(&candidates[i], pq), Score(&candidates[j], pq)
		if si != sj {
			return si > sj
		}
		return TagOverlap(&candidates[i], pq) > TagOverlap(&candidates[j], pq)
	})
	return Result{Mode: ModeSemantic, Records: candidates}, nil
}

// Ask runs retrieval and then answer synthesis over the assembled context.
func (e *Engine) Ask(ctx context.Context, raw string, history []llm.Turn) (Result, error) {
	result, err := e.Retrieve(ctx, raw)
	if err != nil {
		return Result{}, err
	}
	result.Context = BuildContext(result.Records, e.budget)

	prompt := llm.BuildAnswerPrompt(raw, result.Context, history)
	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("generation unavailable: %w", err)
	}
	result.Answer = answer
	return result, nil
}

// AugmentQuery extends the query text with extracted tags, repos, tickets
// and PR numbers to improve vector-index recall. The augmented form is
// never used for reranking.
func AugmentQuery(raw string, pq ParsedQuery) string {
	var extras []string
	if len(pq.Tags) > 0 {
		extras = append(extras, "Tags: "+strings.Join(pq.Tags, ", "))
	}
	if len(pq.Repos) > 0 {
		extras = append(extras, "Repos: "+strings.Join(pq.Repos, ", "))
	}
	if len(pq.Tickets) > 0 {
		extras = append(extras, "Tickets: "+strings.Join(pq.Tickets, ", "))
	}
	if len(pq.PRNumbers) > 0 {
		nums := make([]string, 0, len(pq.PRNumbers))
		for _, n := range pq.PRNumbers {
			nums = append(nums, fmt.Sprintf("#%d", n))
		}
		extras = append(extras, "PRs: "+strings.Join(nums, ", "))
	}
	if len(extras) == 0 {
		return raw
	}
	return raw + "\n\n" + strings.Join(extras, "\n")
}

// rankByScore orders candidates by descending layered score with a
// deterministic key tie-break so equal scores never depend on input order.
func rankByScore(records []record.Record, pq ParsedQuery) {
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := Score(&records[i], pq), Score(&records[j], pq)
		if si != sj {
			return si > sj
		}
		return lessByKey(&records[i], &records[j])
	})
}

func lessByKey(a, b *record.Record) bool {
	an, bn := 0, 0
	if a.PRNumber != nil {
		an = *a.PRNumber
	}
	if b.PRNumber != nil {
		bn = *b.PRNumber
	}
	if an != bn {
		return an < bn
	}
	return a.Repo < b.Repo
}

func distinctRepos(records []record.Record) []string {
	seen := map[string]struct{}{}
	var out []string
	for i := range records {
		if records[i].Repo == "" {
			continue
		}
		if _, ok := seen[records[i].Repo]; ok {
			continue
		}
		seen[records[i].Repo] = struct{}{}
		out = append(out, records[i].Repo)
	}
	sort.Strings(out)
	return out
}
