package ingestion

import (
	"strings"
	"testing"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

func TestBuildDocumentFieldOrder(t *testing.T) {
	pr := 8040
	r := record.Record{
		PRNumber:     &pr,
		Repo:         "acme/billing",
		Title:        "Fix rounding in invoices",
		Tags:         []string{"bug"},
		Tickets:      []string{"PROJ-123"},
		Contributors: []string{"alice"},
		Commits:      []record.Commit{{Short: "abc1234", Message: "fix rounding"}},
		Files:        []string{"src/invoice.go"},
		BodyExcerpts: []string{"short", "this longer excerpt is the one embedded"},
	}
	doc := BuildDocument(r)

	wantInOrder := []string{
		"PR #8040 in acme/billing",
		"Title: Fix rounding in invoices",
		"Tags: bug",
		"Tickets: PROJ-123",
		"Contributors: alice",
		"abc1234 fix rounding",
		"Files: src/invoice.go",
		"Body: this longer excerpt",
	}
	last := -1
	for _, want := range wantInOrder {
		idx := strings.Index(doc, want)
		if idx < 0 {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
		if idx < last {
			t.Fatalf("%q out of order in:\n%s", want, doc)
		}
		last = idx
	}
}

func TestBuildDocumentDeterministic(t *testing.T) {
	r := record.Record{Repo: "acme/billing", Title: "same input"}
	if BuildDocument(r) != BuildDocument(r) {
		t.Fatal("identical records must embed identically")
	}
}

func TestBuildDocumentTruncatesBody(t *testing.T) {
	r := record.Record{
		Title:        "big",
		BodyExcerpts: []string{strings.Repeat("x", maxDocBody+500)},
	}
	doc := BuildDocument(r)
	if strings.Count(doc, "x") > maxDocBody {
		t.Fatalf("body not truncated: %d x's", strings.Count(doc, "x"))
	}
}

func TestBuildDocumentCapsLists(t *testing.T) {
	r := record.Record{Title: "many files"}
	for i := 0; i < maxDocItems+10; i++ {
		r.Files = append(r.Files, strings.Repeat("f", 3))
	}
	doc := BuildDocument(r)
	if strings.Count(doc, "fff") != maxDocItems {
		t.Fatalf("expected %d file tokens, got %d", maxDocItems, strings.Count(doc, "fff"))
	}
}
