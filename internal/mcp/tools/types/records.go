// Package types holds the wire shapes the MCP tools return.
package types

// CommitResult is one referenced commit on a record.
type CommitResult struct {
	Short   string `json:"short"`
	Message string `json:"message,omitempty"`
}

// RecordResult is the tool-facing shape of a merged notification record.
type RecordResult struct {
	PRNumber     *int           `json:"pr_number,omitempty"`
	Repo         string         `json:"repo,omitempty"`
	Title        string         `json:"title,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Tickets      []string       `json:"tickets,omitempty"`
	Contributors []string       `json:"contributors,omitempty"`
	Commits      []CommitResult `json:"commits,omitempty"`
	Files        []string       `json:"files,omitempty"`
	Headings     []string       `json:"headings,omitempty"`
}

// SearchResponse is the payload of the search_records tool.
type SearchResponse struct {
	Mode      string         `json:"mode"`
	Ambiguous bool           `json:"ambiguous,omitempty"`
	Repos     []string       `json:"repos,omitempty"`
	Records   []RecordResult `json:"records"`
}

// DetailsResponse is the payload of the get_pr_details tool. When the PR
// number exists in several repositories every match is returned and the
// ambiguity is called out rather than resolved silently.
type DetailsResponse struct {
	PRNumber  int            `json:"pr_number"`
	Ambiguous bool           `json:"ambiguous,omitempty"`
	Repos     []string       `json:"repos,omitempty"`
	Records   []RecordResult `json:"records"`
}

// AskResponse is the payload of the ask tool.
type AskResponse struct {
	Mode    string         `json:"mode"`
	Answer  string         `json:"answer"`
	Records []RecordResult `json:"records"`
}
