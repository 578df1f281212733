package record

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestParsePRNumber(t *testing.T) {
	n, err := ParsePRNumber(" #8040 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8040 {
		t.Fatalf("expected 8040, got %d", n)
	}
	if _, err := ParsePRNumber("abc"); err == nil {
		t.Fatalf("expected error for non-numeric PR reference")
	}
	if _, err := ParsePRNumber("-3"); err == nil {
		t.Fatalf("expected error for negative PR reference")
	}
}

func TestSplitPathComponents(t *testing.T) {
	got := SplitPathComponents("src/utils/helpers.js")
	want := []string{"src", "utils", "helpers.js"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeDedupesAndSorts(t *testing.T) {
	r := Normalize(Record{
		Tickets: []string{"FIZZY-2", "FIZZY-1", "FIZZY-2", " "},
		Commits: []Commit{
			{Short: "abc1234def5678", Message: "first"},
			{Short: "ABC1234", Message: "dup of first"},
			{Short: "def5678"},
		},
	})
	if !reflect.DeepEqual(r.Tickets, []string{"FIZZY-1", "FIZZY-2"}) {
		t.Fatalf("unexpected tickets: %v", r.Tickets)
	}
	if len(r.Commits) != 2 {
		t.Fatalf("expected 2 commits, got %v", r.Commits)
	}
	if r.Commits[0].Short != "abc1234" || r.Commits[1].Short != "def5678" {
		t.Fatalf("commit order not preserved: %v", r.Commits)
	}
}

func TestNormalizeTruncatesExcerpts(t *testing.T) {
	long := make([]byte, MaxExcerptLen+500)
	for i := range long {
		long[i] = 'x'
	}
	r := Normalize(Record{BodyExcerpts: []string{string(long)}})
	if len(r.BodyExcerpts) != 1 {
		t.Fatalf("expected 1 excerpt, got %d", len(r.BodyExcerpts))
	}
	if len(r.BodyExcerpts[0]) != MaxExcerptLen {
		t.Fatalf("expected excerpt capped at %d, got %d", MaxExcerptLen, len(r.BodyExcerpts[0]))
	}
}

func TestHasCommitPrefix(t *testing.T) {
	r := Record{Commits: []Commit{{Short: "abc1234"}}}
	if !r.HasCommitPrefix("abc1234def5678abc1234def5678abc1234def56") {
		t.Fatalf("expected long token to match short stored prefix")
	}
	if !r.HasCommitPrefix("abc12") {
		t.Fatalf("expected shorter token to match as prefix")
	}
	if r.HasCommitPrefix("def5678") {
		t.Fatalf("did not expect match for unrelated hash")
	}
}
