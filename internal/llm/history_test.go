package llm

import (
	"path/filepath"
	"testing"
)

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	turns := []Turn{
		{Role: "user", Content: "what changed in PR #8040?"},
		{Role: "assistant", Content: "Invoice rounding was fixed."},
	}
	if err := SaveHistory(path, turns); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Content != turns[0].Content || loaded[1].Role != "assistant" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	turns, err := LoadHistory(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if turns != nil {
		t.Fatalf("expected empty history, got %+v", turns)
	}
}

func TestSaveHistoryTrimsOldTurns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	var turns []Turn
	for i := 0; i < maxHistoryTurns+10; i++ {
		turns = append(turns, Turn{Role: "user", Content: "turn"})
	}
	if err := SaveHistory(path, turns); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != maxHistoryTurns {
		t.Fatalf("expected %d turns after trim, got %d", maxHistoryTurns, len(loaded))
	}
}
