package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

type fakeCorpus struct {
	byPR     map[int][]record.Record
	byCommit map[string][]record.Record
	err      error
}

func (f *fakeCorpus) ByPRNumber(_ context.Context, number int) ([]record.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byPR[number], nil
}

func (f *fakeCorpus) ByCommitPrefix(_ context.Context, token string) ([]record.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCommit[token], nil
}

type fakeSearcher struct {
	results []record.Record
	err     error
	gotK    int
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, _ []float32, k int) ([]record.Record, error) {
	f.gotK = k
	return f.results, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, inputs []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeGenerator struct {
	answer string
	prompt string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func testEngine(corpus Corpus, searcher VectorSearcher, embedder Embedder, generator Generator) *Engine {
	return NewEngine(corpus, searcher, embedder, generator, tags.Default(),
		Options{TopK: 3, ContextBudget: 4000}, logging.New(logr.Discard()))
}

func prRecord(number int, repo, title string) record.Record {
	return record.Record{PRNumber: &number, Repo: repo, Title: title}
}

func TestRetrievePRStrictFilter(t *testing.T) {
	corpus := &fakeCorpus{byPR: map[int][]record.Record{
		8040: {prRecord(8040, "acme/billing", "Fix rounding")},
	}}
	e := testEngine(corpus, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})

	res, err := e.Retrieve(context.Background(), "PR #8040 commits and file changes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != ModePR {
		t.Fatalf("expected pr mode, got %s", res.Mode)
	}
	if len(res.Records) != 1 || *res.Records[0].PRNumber != 8040 {
		t.Fatalf("expected exactly the matching record, got %v", res.Records)
	}
	if res.Ambiguous {
		t.Fatal("single-repo match must not be flagged ambiguous")
	}
}

func TestRetrievePRNoMatch(t *testing.T) {
	e := testEngine(&fakeCorpus{byPR: map[int][]record.Record{}}, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})
	_, err := e.Retrieve(context.Background(), "PR #12 status")
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
}

func TestRetrievePRAmbiguousAcrossRepos(t *testing.T) {
	corpus := &fakeCorpus{byPR: map[int][]record.Record{
		42: {
			prRecord(42, "acme/billing", "Billing change"),
			prRecord(42, "acme/frontend", "Frontend change"),
		},
	}}
	e := testEngine(corpus, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})

	res, err := e.Retrieve(context.Background(), "pull request 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Ambiguous {
		t.Fatal("same PR number in two repos must surface as ambiguous")
	}
	if len(res.Repos) != 2 || res.Repos[0] != "acme/billing" || res.Repos[1] != "acme/frontend" {
		t.Fatalf("expected sorted repo list, got %v", res.Repos)
	}
	if len(res.Records) != 2 {
		t.Fatal("ambiguous result must keep all matching records")
	}
}

func TestRetrieveCommitMode(t *testing.T) {
	corpus := &fakeCorpus{byCommit: map[string][]record.Record{
		"abc1234": {
			{PRNumber: intPtr(7), Repo: "acme/billing",
				Commits: []record.Commit{{Short: "abc1234", Message: "fix"}}},
		},
	}}
	e := testEngine(corpus, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})

	res, err := e.Retrieve(context.Background(), "what is commit abc1234 about?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != ModeCommit || len(res.Records) != 1 {
		t.Fatalf("expected one commit-mode record, got %+v", res)
	}
}

func TestRetrieveCommitNoMatch(t *testing.T) {
	e := testEngine(&fakeCorpus{byCommit: map[string][]record.Record{}}, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})
	_, err := e.Retrieve(context.Background(), "who wrote deadbeef99?")
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
}

func TestRetrieveSemanticRerank(t *testing.T) {
	// The searcher returns the weak match first; the layered rerank on the
	// original query must reorder by tag and title signals.
	searcher := &fakeSearcher{results: []record.Record{
		{Repo: "acme/infra", Title: "Unrelated refactor"},
		{Repo: "acme/auth", Title: "Harden login flow", Tags: []string{"auth", "security"}},
	}}
	e := testEngine(&fakeCorpus{}, searcher, &fakeEmbedder{}, &fakeGenerator{})

	res, err := e.Retrieve(context.Background(), "security problems in the login flow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != ModeSemantic {
		t.Fatalf("expected semantic mode, got %s", res.Mode)
	}
	if res.Records[0].Repo != "acme/auth" {
		t.Fatalf("rerank failed, got order %v then %v", res.Records[0].Repo, res.Records[1].Repo)
	}
	if searcher.gotK != 3 {
		t.Fatalf("expected top-k 3 passed to searcher, got %d", searcher.gotK)
	}
}

func TestRetrieveSemanticEmbedderFailure(t *testing.T) {
	e := testEngine(&fakeCorpus{}, &fakeSearcher{}, &fakeEmbedder{err: errors.New("connection refused")}, &fakeGenerator{})
	_, err := e.Retrieve(context.Background(), "anything semantic")
	if err == nil || !strings.Contains(err.Error(), "retrieval unavailable") {
		t.Fatalf("embedder failure must surface as retrieval unavailable, got %v", err)
	}
}

func TestRetrieveSemanticEmptyIndex(t *testing.T) {
	e := testEngine(&fakeCorpus{}, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{})
	_, err := e.Retrieve(context.Background(), "anything semantic")
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
}

func TestAskBuildsPromptAndAnswer(t *testing.T) {
	corpus := &fakeCorpus{byPR: map[int][]record.Record{
		8040: {prRecord(8040, "acme/billing", "Fix rounding")},
	}}
	gen := &fakeGenerator{answer: "The PR fixed invoice rounding."}
	e := testEngine(corpus, &fakeSearcher{}, &fakeEmbedder{}, gen)

	history := []llm.Turn{{Role: "user", Content: "earlier question"}}
	res, err := e.Ask(context.Background(), "PR #8040 summary", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "The PR fixed invoice rounding." {
		t.Fatalf("unexpected answer %q", res.Answer)
	}
	if !strings.Contains(gen.prompt, "PR: #8040") {
		t.Fatal("prompt missing retrieval context")
	}
	if !strings.Contains(gen.prompt, "earlier question") {
		t.Fatal("prompt missing conversation history")
	}
}

func TestAskGeneratorFailure(t *testing.T) {
	corpus := &fakeCorpus{byPR: map[int][]record.Record{
		1: {prRecord(1, "acme/billing", "x")},
	}}
	e := testEngine(corpus, &fakeSearcher{}, &fakeEmbedder{}, &fakeGenerator{err: errors.New("model not loaded")})
	_, err := e.Ask(context.Background(), "PR #1", nil)
	if err == nil || !strings.Contains(err.Error(), "generation unavailable") {
		t.Fatalf("generator failure must surface as generation unavailable, got %v", err)
	}
}

func TestAugmentQuery(t *testing.T) {
	pq := ParsedQuery{
		Tags:      []string{"auth", "security"},
		Repos:     []string{"acme/auth"},
		Tickets:   []string{"SEC-9"},
		PRNumbers: []int{12},
	}
	out := AugmentQuery("login is broken", pq)
	for _, want := range []string{"login is broken", "Tags: auth, security", "Repos: acme/auth", "Tickets: SEC-9", "PRs: #12"} {
		if !strings.Contains(out, want) {
			t.Fatalf("augmented query missing %q:\n%s", want, out)
		}
	}
	if plain := AugmentQuery("nothing extractable here", ParsedQuery{}); plain != "nothing extractable here" {
		t.Fatalf("no-feature query must pass through unchanged, got %q", plain)
	}
}
