package record

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergeIdempotent(t *testing.T) {
	r := Normalize(Record{
		PRNumber:     intPtr(8040),
		Repo:         "fuzzycert/fuzzycert_codecops",
		Title:        "Fix login flow",
		Tickets:      []string{"FIZZY-2044"},
		Commits:      []Commit{{Short: "abc1234", Message: "fix"}},
		Files:        []string{"src", "auth", "login.go"},
		Tags:         []string{"bug", "fix"},
		Markdown:     Markdown{Headings: []string{"Commit Summary"}},
		BodyExcerpts: []string{"PR merged"},
	})
	merged, err := Merge(&r, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(merged, r) {
		t.Fatalf("merge(r, r) != r:\n got %+v\nwant %+v", merged, r)
	}
}

func TestMergeFieldUnion(t *testing.T) {
	a := Record{
		PRNumber: intPtr(1),
		Repo:     "org/repo",
		Commits:  []Commit{{Short: "abc1234"}},
		Tags:     []string{"auth"},
	}
	b := Record{
		PRNumber: intPtr(1),
		Repo:     "org/repo",
		Commits:  []Commit{{Short: "abc1234"}, {Short: "def5678"}},
		Tags:     []string{"ui"},
	}
	an := Normalize(a)
	merged, err := Merge(&an, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Commits) != 2 || merged.Commits[0].Short != "abc1234" || merged.Commits[1].Short != "def5678" {
		t.Fatalf("unexpected commits: %v", merged.Commits)
	}
	if !reflect.DeepEqual(merged.Tags, []string{"auth", "ui"}) {
		t.Fatalf("unexpected tags: %v", merged.Tags)
	}
}

func TestMergeTitleFirstSeenWins(t *testing.T) {
	a := Normalize(Record{PRNumber: intPtr(1), Title: "first title"})
	merged, err := Merge(&a, Record{PRNumber: intPtr(1), Title: "second title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Title != "first title" {
		t.Fatalf("expected first title to win, got %q", merged.Title)
	}

	empty := Normalize(Record{PRNumber: intPtr(1)})
	merged, err = Merge(&empty, Record{PRNumber: intPtr(1), Title: "late title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Title != "late title" {
		t.Fatalf("expected incoming title to fill empty slot, got %q", merged.Title)
	}
}

func TestMergeKeyMismatch(t *testing.T) {
	a := Normalize(Record{PRNumber: intPtr(1), Repo: "org/repo"})
	if _, err := Merge(&a, Record{PRNumber: intPtr(2), Repo: "org/repo"}); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
	if _, err := Merge(&a, Record{}); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch for keyless incoming, got %v", err)
	}
}

func TestMergeAllGroupsByKey(t *testing.T) {
	parts := []Record{
		{PRNumber: intPtr(1234), Repo: "org/a", Tickets: []string{"T-1"}},
		{Repo: "org/a", Title: "standalone notification"},
		{PRNumber: intPtr(1234), Repo: "org/a", Tickets: []string{"T-2"}},
		{PRNumber: intPtr(1234), Repo: "org/b", Tickets: []string{"T-3"}},
	}
	out, err := MergeAll(parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	if !reflect.DeepEqual(out[0].Tickets, []string{"T-1", "T-2"}) {
		t.Fatalf("expected merged tickets, got %v", out[0].Tickets)
	}
	if out[1].PRNumber != nil {
		t.Fatalf("keyless record should pass through unmerged")
	}
	if out[2].Repo != "org/b" {
		t.Fatalf("same PR number in another repo must stay separate, got %+v", out[2])
	}
}
