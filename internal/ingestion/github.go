package ingestion

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// Enricher fills gaps in parsed records from the GitHub API. Mailbox
// exports often lose the PR title or author in forwarding; when the record
// has a resolvable repo and PR number the API is authoritative for those.
type Enricher struct {
	client *github.Client
	log    logging.Logger
}

func NewEnricher(client *github.Client, log logging.Logger) *Enricher {
	return &Enricher{client: client, log: log}
}

// Enrich fills the missing title and the author of a record in place.
// Enrichment failures are logged and swallowed: the parsed record is still
// worth storing.
func (e *Enricher) Enrich(ctx context.Context, r *record.Record) {
	if r.PRNumber == nil || r.Repo == "" {
		return
	}
	owner, name, ok := splitRepo(r.Repo)
	if !ok {
		return
	}

	pr, _, err := e.client.PullRequests.Get(ctx, owner, name, *r.PRNumber)
	if err != nil {
		e.log.Debug("enrichment skipped", "repo", r.Repo, "pr", *r.PRNumber, "error", err.Error())
		return
	}

	if r.Title == "" {
		r.Title = pr.GetTitle()
	}
	if author := pr.GetUser().GetLogin(); author != "" && !containsFold(r.Contributors, author) {
		r.Contributors = append(r.Contributors, author)
	}
	*r = record.Normalize(*r)
}

func splitRepo(full string) (owner, name string, ok bool) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
