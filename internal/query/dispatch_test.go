package query

import "testing"

func TestDispatchCommitMode(t *testing.T) {
	q := Dispatch("what changed in abc1234def?")
	cq, ok := q.(CommitQuery)
	if !ok {
		t.Fatalf("expected CommitQuery, got %T", q)
	}
	if cq.Hash != "abc1234def" {
		t.Fatalf("expected hash abc1234def, got %q", cq.Hash)
	}
}

func TestDispatchFullLengthHash(t *testing.T) {
	hash := "0123456789abcdef0123456789abcdef01234567"
	q := Dispatch("show me " + hash)
	cq, ok := q.(CommitQuery)
	if !ok {
		t.Fatalf("expected CommitQuery, got %T", q)
	}
	if cq.Hash != hash {
		t.Fatalf("expected full hash, got %q", cq.Hash)
	}
}

func TestDispatchHexWinsOverPRReference(t *testing.T) {
	// Both patterns present: the hex token is the stronger signal.
	q := Dispatch("PR #1234 introduced commit deadbeef1")
	if _, ok := q.(CommitQuery); !ok {
		t.Fatalf("expected CommitQuery, got %T", q)
	}
}

func TestDispatchShortHexIsNotACommit(t *testing.T) {
	// Six hex chars is below the minimum prefix length and common in
	// ordinary words, so it must not trigger commit mode.
	q := Dispatch("tell me about decade fallacy")
	if _, ok := q.(SemanticQuery); !ok {
		t.Fatalf("expected SemanticQuery, got %T", q)
	}
}

func TestDispatchPRMode(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"PR #8040 commits and file changes", 8040},
		{"pull request 512", 512},
		{"what happened in PR: 99?", 99},
		{"PR#7", 7},
	}
	for _, tc := range cases {
		q := Dispatch(tc.raw)
		pq, ok := q.(PRQuery)
		if !ok {
			t.Fatalf("%q: expected PRQuery, got %T", tc.raw, q)
		}
		if pq.Number != tc.want {
			t.Fatalf("%q: expected PR %d, got %d", tc.raw, tc.want, pq.Number)
		}
	}
}

func TestDispatchSemanticFallback(t *testing.T) {
	q := Dispatch("which changes touched the login flow?")
	sq, ok := q.(SemanticQuery)
	if !ok {
		t.Fatalf("expected SemanticQuery, got %T", q)
	}
	if sq.Text == "" {
		t.Fatal("semantic query lost its text")
	}
}

func TestDispatchBareNumberIsSemantic(t *testing.T) {
	// A number without a PR keyword is not enough to force PR mode at the
	// dispatch layer; scoring still rewards a PR-number match later.
	q := Dispatch("issue 42 keeps coming back")
	if _, ok := q.(SemanticQuery); !ok {
		t.Fatalf("expected SemanticQuery, got %T", q)
	}
}
